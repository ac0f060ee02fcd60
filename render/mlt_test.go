package render

import (
	"encoding/xml"
	"testing"

	"codec/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameMathMatchesScenarioS6(t *testing.T) {
	tl := timeline.New()
	tl.SetSequenceProperties(24, 1920, 1080)
	tl.AddClip(&timeline.Clip{
		ClipID: "x", SourcePath: "a.mp4",
		SourceInSec: 0, SourceOutSec: 2, SourceTotalDurationSec: 10,
		SourceWidth: 1920, SourceHeight: 1080, SourceFrameRate: 24, HasAudio: true,
		TimelineStartSec: 1.0, DurationSec: 2.0,
		TrackType: timeline.TrackVideo, TrackNumber: 1,
	})

	p := BuildProject(tl)
	require.Len(t, p.Playlists, 1)
	entries := p.Playlists[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "blank", entries[0].XMLName.Local)
	assert.Equal(t, "24", entries[0].Length)
	assert.Equal(t, "entry", entries[1].XMLName.Local)
	assert.Equal(t, "48", entries[1].Length)

	assert.Equal(t, 36, frameOf(1.5, 24))
}

func TestNTSCFrameRateSnapsToExactRational(t *testing.T) {
	num, den := ntscFrameRate(23.976)
	assert.Equal(t, 24000, num)
	assert.Equal(t, 1001, den)

	num, den = ntscFrameRate(30.0)
	assert.Equal(t, 30, num)
	assert.Equal(t, 1, den)
}

func TestMarshalProducesWellFormedXML(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(&timeline.Clip{
		ClipID: "x", SourcePath: "a.mp4",
		SourceInSec: 0, SourceOutSec: 2, SourceTotalDurationSec: 10,
		SourceWidth: 1920, SourceHeight: 1080, SourceFrameRate: 24, HasAudio: true,
		TimelineStartSec: 0, DurationSec: 2,
		TrackType: timeline.TrackVideo, TrackNumber: 1,
	})
	project := BuildProject(tl)
	data, err := Marshal(project)
	require.NoError(t, err)

	var decoded Project
	require.NoError(t, xml.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Producers, 1)
}

func TestAffineFilterEmittedOnlyForKeyframedClips(t *testing.T) {
	tl := timeline.New()
	scale := 1.5
	tl.AddClip(&timeline.Clip{
		ClipID: "x", SourcePath: "a.mp4",
		SourceInSec: 0, SourceOutSec: 2, SourceTotalDurationSec: 10,
		SourceWidth: 1920, SourceHeight: 1080, SourceFrameRate: 24, HasAudio: true,
		TimelineStartSec: 0, DurationSec: 2,
		TrackType: timeline.TrackVideo, TrackNumber: 1,
		Transformations: []*timeline.Keyframe{{TimeSec: 0, Scale: &scale}},
	})
	tl.AddClip(&timeline.Clip{
		ClipID: "y", SourcePath: "a.mp4",
		SourceInSec: 0, SourceOutSec: 2, SourceTotalDurationSec: 10,
		SourceWidth: 1920, SourceHeight: 1080, SourceFrameRate: 24, HasAudio: true,
		TimelineStartSec: 2, DurationSec: 2,
		TrackType: timeline.TrackVideo, TrackNumber: 1,
	})

	p := BuildProject(tl)
	assert.Len(t, p.Tractor.Filters, 1)
}
