package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func videoClip(id string, start, dur float64, track int) *Clip {
	return &Clip{
		ClipID:                 id,
		SourcePath:             "a.mp4",
		SourceInSec:            0,
		SourceOutSec:           dur,
		SourceTotalDurationSec: 10,
		SourceWidth:            1920,
		SourceHeight:           1080,
		SourceFrameRate:        24,
		HasAudio:               true,
		TimelineStartSec:       start,
		DurationSec:            dur,
		TrackType:              TrackVideo,
		TrackNumber:            track,
	}
}

func TestAddClipSortsAndInfersSequence(t *testing.T) {
	tl := New()
	tl.AddClip(videoClip("c2", 3, 2, 1))
	tl.AddClip(videoClip("c1", 0, 3, 1))

	require.Len(t, tl.Clips, 2)
	assert.Equal(t, "c1", tl.Clips[0].ClipID)
	assert.Equal(t, "c2", tl.Clips[1].ClipID)

	seq := tl.GetSequenceProperties()
	assert.Equal(t, 24.0, seq.FrameRate)
	assert.Equal(t, 1920, seq.Width)
}

func TestTopmostClipAtTieBreakByTrackNumber(t *testing.T) {
	tl := New()
	tl.AddClip(videoClip("low", 0, 5, 1))
	tl.AddClip(videoClip("high", 0, 5, 2))

	got := tl.TopmostClipAt(2.5)
	require.NotNil(t, got)
	assert.Equal(t, "high", got.ClipID)
}

func TestTopmostClipAtGapReturnsNil(t *testing.T) {
	tl := New()
	tl.AddClip(videoClip("c1", 0, 2, 1))
	assert.Nil(t, tl.TopmostClipAt(5))
}

func TestDeleteClip(t *testing.T) {
	tl := New()
	tl.AddClip(videoClip("c1", 0, 2, 1))
	assert.True(t, tl.DeleteClip("c1"))
	assert.False(t, tl.ClipIDExists("c1"))
	assert.False(t, tl.DeleteClip("c1"))
}

func TestCloneIsIndependent(t *testing.T) {
	tl := New()
	c := videoClip("c1", 0, 2, 1)
	c.Transformations = append(c.Transformations, &Keyframe{TimeSec: 0})
	tl.AddClip(c)

	clone := tl.Clone()
	clone.Clips[0].Transformations[0].TimeSec = 99
	assert.Equal(t, 0.0, tl.Clips[0].Transformations[0].TimeSec)
}

func TestDistinctTrackKeysOrdering(t *testing.T) {
	tl := New()
	tl.AddClip(&Clip{ClipID: "a1", TrackType: TrackAudio, TrackNumber: 1, SourcePath: "x"})
	tl.AddClip(videoClip("v2", 0, 1, 2))
	tl.AddClip(videoClip("v1", 0, 1, 1))

	keys := tl.DistinctTrackKeys()
	require.Len(t, keys, 3)
	assert.Equal(t, TrackKey{TrackVideo, 1}, keys[0])
	assert.Equal(t, TrackKey{TrackVideo, 2}, keys[1])
	assert.Equal(t, TrackKey{TrackAudio, 1}, keys[2])
}
