package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stellab.xyz/argus/pkg/plugin"
	_ "stellab.xyz/argus/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List available plugins",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Extractors:")
		for _, name := range plugin.ListExtractors() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("Transformers:")
		for _, name := range plugin.ListTransformers() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("Loaders:")
		for _, name := range plugin.ListLoaders() {
			fmt.Printf("  %s\n", name)
		}
	},
}
