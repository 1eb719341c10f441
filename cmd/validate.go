package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stellab.xyz/argus/internal/config"
	"stellab.xyz/argus/internal/mib"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a job or MIB file",
	Long: `Validate a job configuration file (JSON or YAML) or a MIB file without
running anything.

This is useful for pre-checking configuration before a run. File format is
auto-detected from extension (.json, .yaml, .yml).

Examples:
  argus validate -f job.yaml
  argus validate --mib mission.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		runValidateCommand()
	},
}

var (
	validateJobFile string
	validateMIBFile string
)

func init() {
	validateCmd.Flags().StringVarP(&validateJobFile, "file", "f", "",
		"job configuration file to validate")
	validateCmd.Flags().StringVar(&validateMIBFile, "mib", "",
		"MIB file to validate")
}

func runValidateCommand() {
	if validateJobFile == "" && validateMIBFile == "" {
		exitWithError("either --file or --mib is required", nil)
	}

	if validateJobFile != "" {
		data, err := os.ReadFile(validateJobFile)
		if err != nil {
			exitWithError(fmt.Sprintf("failed to read file %s", validateJobFile), err)
		}
		jobConfig, err := config.ParseJobConfigAuto(data, validateJobFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
			os.Exit(1)
		}
		loader := "none"
		if jobConfig.Loader != nil {
			loader = jobConfig.Loader.Name
		}
		fmt.Printf("VALID: Job %q (source %q, %d transformer(s), loader %q)\n",
			jobConfig.Name, jobConfig.Source.Name, len(jobConfig.Transformers), loader)
	}

	if validateMIBFile != "" {
		m, err := mib.Load(validateMIBFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("VALID: MIB %q (%d parameter(s), %d calibration(s))\n",
			m.Mission, len(m.Parameters), len(m.Calibrations))
	}
}
