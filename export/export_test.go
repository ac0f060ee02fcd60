package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"codec/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleTimeline() *timeline.Timeline {
	tl := timeline.New()
	tl.AddClip(&timeline.Clip{
		ClipID: "c1", SourcePath: "/assets/a.mp4",
		SourceInSec: 0, SourceOutSec: 2, DurationSec: 2,
		TimelineStartSec: 0, TrackType: timeline.TrackVideo, TrackNumber: 1,
	})
	tl.AddClip(&timeline.Clip{
		ClipID: "c2", SourcePath: "/assets/a.mp4",
		SourceInSec: 2, SourceOutSec: 4, DurationSec: 2,
		TimelineStartSec: 5, TrackType: timeline.TrackVideo, TrackNumber: 1,
	})
	return tl
}

func TestBuildOTIOTimelineInsertsGaps(t *testing.T) {
	tl := buildSampleTimeline()
	doc := BuildOTIOTimeline(tl, "test", func(s string) string { return s })
	require.Len(t, doc.Tracks, 1)
	assert.Len(t, doc.Tracks[0].Children, 3) // clip, gap, clip

	data, err := WriteOTIO(doc)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
}

func TestFormatFromExtension(t *testing.T) {
	f, err := FormatFromExtension("out.otio")
	require.NoError(t, err)
	assert.Equal(t, FormatOTIO, f)

	f, err = FormatFromExtension("out.xml")
	require.NoError(t, err)
	assert.Equal(t, FormatFCP7XML, f)

	_, err = FormatFromExtension("out.mov")
	assert.Error(t, err)
}

func TestConsolidateAndExportCopiesMedia(t *testing.T) {
	assetDir := t.TempDir()
	srcPath := filepath.Join(assetDir, "a.mp4")
	require.NoError(t, os.WriteFile(srcPath, []byte("fake media"), 0o644))

	tl := timeline.New()
	tl.AddClip(&timeline.Clip{
		ClipID: "c1", SourcePath: srcPath,
		SourceInSec: 0, SourceOutSec: 2, DurationSec: 2,
		TimelineStartSec: 0, TrackType: timeline.TrackVideo, TrackNumber: 1,
	})

	outDir := t.TempDir()
	path, err := ConsolidateAndExport(tl, outDir, "edit.otio", true, "20260731")
	require.NoError(t, err)
	assert.FileExists(t, path)

	mediaPath := filepath.Join(outDir, "edit_20260731", "media", "a.mp4")
	assert.FileExists(t, mediaPath)
}
