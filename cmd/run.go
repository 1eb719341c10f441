package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stellab.xyz/argus/internal/config"
	"stellab.xyz/argus/internal/eventbus"
	"stellab.xyz/argus/internal/log"
	"stellab.xyz/argus/internal/metrics"
	"stellab.xyz/argus/internal/pipeline"
	_ "stellab.xyz/argus/plugins"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a processing job",
	Long: `Run a telemetry processing job described by a job file (JSON or YAML).

The job names an extractor, an ordered transformer chain, and a loader.
File format is auto-detected from extension (.json, .yaml, .yml).

Examples:
  argus run -f job.yaml
  argus run -f job.json --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		runRunCommand()
	},
}

var (
	runJobFile string
	runDryRun  bool
)

func init() {
	runCmd.Flags().StringVarP(&runJobFile, "file", "f", "",
		"job configuration file (required)")
	runCmd.MarkFlagRequired("file")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"skip the loader; run extraction and transforms only")
}

func runRunCommand() {
	cfg := loadGlobalConfig()
	log.Init(&log.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		FileEnabled:    cfg.Log.File.Enabled,
		FilePath:       cfg.Log.File.Path,
		FileMaxSizeMB:  cfg.Log.File.MaxSizeMB,
		FileMaxAgeDays: cfg.Log.File.MaxAgeDays,
		FileMaxBackups: cfg.Log.File.MaxBackups,
		FileCompress:   cfg.Log.File.Compress,
	})

	data, err := os.ReadFile(runJobFile)
	if err != nil {
		exitWithError(fmt.Sprintf("failed to read file %s", runJobFile), err)
	}
	jobConfig, err := config.ParseJobConfigAuto(data, runJobFile)
	if err != nil {
		exitWithError("invalid job config", err)
	}
	if runDryRun {
		jobConfig.DryRun = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		server := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := server.Start(ctx); err != nil {
			exitWithError("failed to start metrics server", err)
		}
		defer server.Stop(context.Background())
	}

	bus := eventbus.NewInMemoryEventBus(4, 1024)
	defer bus.Close()
	if err := pipeline.AttachLogObserver(bus); err != nil {
		exitWithError("failed to attach event observer", err)
	}

	p, err := pipeline.Assemble(jobConfig, bus)
	if err != nil {
		exitWithError("failed to assemble pipeline", err)
	}

	result := p.Run(ctx)
	fmt.Print(result.Summary())

	if !result.OK() {
		os.Exit(1)
	}
}

func loadGlobalConfig() *config.GlobalConfig {
	if configFile == "" {
		return config.Default()
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		exitWithError(fmt.Sprintf("failed to load config %s", configFile), err)
	}
	return cfg
}
