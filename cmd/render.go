package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codec/render"
	"codec/timeline"
)

var renderOutPath string

var renderCmd = &cobra.Command{
	Use:   "render <timeline.json>",
	Short: "Render a serialized timeline to a final MP4, exercising C5 without the agent loop",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutPath, "output", "o", "out.mp4", "output file path")
}

func runRender(cmd *cobra.Command, args []string) error {
	tl, err := loadTimeline(args[0])
	if err != nil {
		return err
	}
	tmpDir, err := os.MkdirTemp("", "codec-render-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	if err := render.FinalRender(tl, tmpDir, renderOutPath); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s\n", renderOutPath)
	return nil
}

func loadTimeline(path string) (*timeline.Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	tl := timeline.New()
	if err := decodeTimeline(data, tl); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return tl, nil
}
