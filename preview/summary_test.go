package preview

import (
	"strings"
	"testing"

	"codec/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTimelineSummaryMarksGapsAndListsClips(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(&timeline.Clip{
		ClipID: "c1", SourcePath: "a.mp4", SourceOutSec: 2, SourceTotalDurationSec: 10,
		SourceWidth: 1920, SourceHeight: 1080, SourceFrameRate: 24,
		TimelineStartSec: 0, DurationSec: 2, TrackType: timeline.TrackVideo, TrackNumber: 1,
	})
	tl.AddClip(&timeline.Clip{
		ClipID: "c2", SourcePath: "a.mp4", SourceOutSec: 2, SourceTotalDurationSec: 10,
		SourceWidth: 1920, SourceHeight: 1080, SourceFrameRate: 24,
		TimelineStartSec: 5, DurationSec: 2, TrackType: timeline.TrackVideo, TrackNumber: 1,
	})

	out, err := GetTimelineSummary(tl, "", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "[GAP from")
	assert.Contains(t, out, "Clip \"c1\"")
	assert.Contains(t, out, "Clip \"c2\"")
}

func TestGetTimelineSummaryFiltersByTrack(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(&timeline.Clip{ClipID: "v1", SourcePath: "a.mp4", SourceOutSec: 1, DurationSec: 1, TrackType: timeline.TrackVideo, TrackNumber: 1})
	tl.AddClip(&timeline.Clip{ClipID: "a1", SourcePath: "a.mp4", SourceOutSec: 1, DurationSec: 1, TrackType: timeline.TrackAudio, TrackNumber: 1})

	out, err := GetTimelineSummary(tl, "V1", nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "v1"))
	assert.False(t, strings.Contains(out, "Clip \"a1\""))
}
