// Package cmd wires the codec binary's cobra subcommands: run (drive a
// full agent session), render (stand-alone final render), and export
// (stand-alone exchange export).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codec",
	Short: "An autonomous, tool-driven video editing agent",
	Long: `codec drives a conversational loop with a large-language model,
invoking a fixed catalog of editing tools (add_clips, split, delete,
transform, preview, render, export) until the model calls the terminal
finish_job tool.`,
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportCmd)
}
