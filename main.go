// Package main is the entry point for the Argus telemetry decommutation pipeline.
package main

import (
	"fmt"
	"os"

	"stellab.xyz/argus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
