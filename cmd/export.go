package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"codec/export"
	"codec/timeline"
)

var (
	exportOutPath     string
	exportConsolidate bool
)

var exportCmd = &cobra.Command{
	Use:   "export <timeline.json>",
	Short: "Export a serialized timeline to OTIO or FCP7-XML, exercising C6 without the agent loop",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutPath, "output", "o", "out.otio", "output file path (.otio or .xml)")
	exportCmd.Flags().BoolVar(&exportConsolidate, "consolidate", false, "copy source media alongside the exchange file")
}

func runExport(cmd *cobra.Command, args []string) error {
	tl, err := loadTimeline(args[0])
	if err != nil {
		return err
	}
	outputDir := filepath.Dir(exportOutPath)
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	path, err := export.ConsolidateAndExport(tl, outputDir, filepath.Base(exportOutPath), exportConsolidate, timestamp)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
	return nil
}

// decodeTimeline unmarshals the workspace's plain JSON rendering of a
// timeline.Timeline (exported fields only — this is an internal
// interchange shape for the stand-alone render/export commands, distinct
// from the OTIO/FCP7 exchange formats C6 emits).
func decodeTimeline(data []byte, tl *timeline.Timeline) error {
	return json.Unmarshal(data, tl)
}
