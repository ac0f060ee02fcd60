package mutate

import (
	"os"
	"path/filepath"
	"testing"

	"codec/timeline"
	"codec/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeAsset creates a placeholder file so os.Stat succeeds. The file is
// not real media, so the ffprobe-backed probe step would reject it; these
// unit tests therefore exercise the commit-side helpers directly instead of
// the full AddClips entrypoint for scenarios that need a real probe.
func writeFakeAsset(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("not a real media file"), 0o644))
	return path
}

func sampleClip(id string, start, dur float64, track int, tt timeline.TrackType) *timeline.Clip {
	return &timeline.Clip{
		ClipID:                 id,
		SourcePath:             "a.mp4",
		SourceInSec:            0,
		SourceOutSec:           dur,
		SourceTotalDurationSec: 100,
		SourceWidth:            1920,
		SourceHeight:           1080,
		SourceFrameRate:        24,
		HasAudio:               true,
		TimelineStartSec:       start,
		DurationSec:            dur,
		TrackType:              tt,
		TrackNumber:            track,
	}
}

// TestInsertShiftsLaterClips exercises S2-style insert ripple directly
// against commitOne, since the full AddClips path requires ffprobe.
func TestInsertShiftsLaterClips(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(sampleClip("c1", 0, 3, 1, timeline.TrackVideo))
	tl.AddClip(sampleClip("c2", 3, 2, 1, timeline.TrackVideo))

	c3 := sampleClip("c3", 3, 2, 1, timeline.TrackVideo)
	commitOne(tl, validatedClip{clip: c3, insertionBehavior: "insert"})

	c1 := tl.FindClipByID("c1")
	c2 := tl.FindClipByID("c2")
	got3 := tl.FindClipByID("c3")
	assert.Equal(t, 0.0, c1.TimelineStartSec)
	assert.Equal(t, 3.0, got3.TimelineStartSec)
	assert.Equal(t, 5.0, c2.TimelineStartSec)
	assert.Equal(t, 7.0, tl.Duration())
}

func TestReplaceDeletesFullOverlap(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(sampleClip("c1", 0, 3, 1, timeline.TrackVideo))
	tl.AddClip(sampleClip("c2", 3, 2, 1, timeline.TrackVideo))

	cR := sampleClip("cR", 2, 2, 1, timeline.TrackVideo)
	tl = commitStaged(tl, []validatedClip{{clip: cR, insertionBehavior: "replace"}})

	assert.False(t, tl.ClipIDExists("c1"))
	assert.False(t, tl.ClipIDExists("c2"))
	require.True(t, tl.ClipIDExists("cR"))
}

func TestSplitClipPartitionsSourceRanges(t *testing.T) {
	tl := timeline.New()
	c := sampleClip("x", 0, 6, 1, timeline.TrackVideo)
	c.SourceInSec = 10
	c.SourceOutSec = 16
	tl.AddClip(c)

	next, err := SplitClip(tl, "x", 2)
	require.NoError(t, err)

	p1 := next.FindClipByID("x_p1")
	p2 := next.FindClipByID("x_p2")
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	assert.False(t, next.ClipIDExists("x"))
	assert.Equal(t, 10.0, p1.SourceInSec)
	assert.Equal(t, 12.0, p1.SourceOutSec)
	assert.Equal(t, 12.0, p2.SourceInSec)
	assert.Equal(t, 16.0, p2.SourceOutSec)
	assert.InDelta(t, c.DurationSec, p1.DurationSec+p2.DurationSec, 1e-9)
}

func TestSplitClipRejectsBoundaryTimes(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(sampleClip("x", 0, 6, 1, timeline.TrackVideo))

	_, err := SplitClip(tl, "x", 0)
	assert.Error(t, err)
	_, err = SplitClip(tl, "x", 6)
	assert.Error(t, err)
}

func TestTransformUpsertThenClearsScale(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(sampleClip("y", 0, 4, 1, timeline.TrackVideo))

	scale := 1.0
	pos := &timeline.Point{X: 0.5, Y: 0.5}
	at := 0.0
	next, err := Transform(tl, []Transformation{{
		ClipID:      "y",
		TimelineSec: &at,
		Properties:  TransformProperties{Position: pos, Scale: &scale},
	}})
	require.NoError(t, err)

	c := next.FindClipByID("y")
	require.Len(t, c.Transformations, 1)
	assert.NotNil(t, c.Transformations[0].Position)
	assert.NotNil(t, c.Transformations[0].Scale)

	next2, err := Transform(next, []Transformation{{
		ClipID:      "y",
		TimelineSec: &at,
		Properties:  TransformProperties{Clear: map[string]bool{"Scale": true}},
	}})
	require.NoError(t, err)
	c2 := next2.FindClipByID("y")
	require.Len(t, c2.Transformations, 1)
	assert.NotNil(t, c2.Transformations[0].Position)
	assert.Nil(t, c2.Transformations[0].Scale, "explicit null must clear scale")
}

func TestTransformOmittedPropertyLeavesExistingValue(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(sampleClip("y", 0, 4, 1, timeline.TrackVideo))

	scale := 1.0
	at := 0.0
	next, err := Transform(tl, []Transformation{{
		ClipID:      "y",
		TimelineSec: &at,
		Properties:  TransformProperties{Scale: &scale},
	}})
	require.NoError(t, err)

	rotation := 90.0
	next2, err := Transform(next, []Transformation{{
		ClipID:      "y",
		TimelineSec: &at,
		Properties:  TransformProperties{Rotation: &rotation},
	}})
	require.NoError(t, err)
	c := next2.FindClipByID("y")
	require.Len(t, c.Transformations, 1)
	require.NotNil(t, c.Transformations[0].Scale, "omitting scale must not clear it")
	assert.Equal(t, 1.0, *c.Transformations[0].Scale)
	require.NotNil(t, c.Transformations[0].Rotation)
	assert.Equal(t, 90.0, *c.Transformations[0].Rotation)
}

// TestCommitStagedReplaceUsesOriginalPositionsNotShiftedOnes guards against
// a combined insert+replace call deleting the wrong clips: an insert earlier
// in request order must not shift a clip out of a later replace's target
// range before the replace's overlap is evaluated.
func TestCommitStagedReplaceUsesOriginalPositionsNotShiftedOnes(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(sampleClip("w", 6, 2, 1, timeline.TrackVideo)) // [6,8)

	insert := sampleClip("i", 0, 2, 1, timeline.TrackVideo)
	replace := sampleClip("r", 6, 2, 1, timeline.TrackVideo) // target [6,8), overlaps w's original position

	next := commitStaged(tl, []validatedClip{
		{clip: insert, insertionBehavior: "insert"},
		{clip: replace, insertionBehavior: "replace"},
	})

	assert.False(t, next.ClipIDExists("w"), "w overlapped replace's original target range and must be deleted")
	assert.True(t, next.ClipIDExists("i"))
	assert.True(t, next.ClipIDExists("r"))
}

func TestDeleteClipsRippleShiftsLaterClips(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(sampleClip("c1", 0, 3, 1, timeline.TrackVideo))
	tl.AddClip(sampleClip("c2", 3, 2, 1, timeline.TrackVideo))

	next, err := DeleteClips(tl, []string{"c1"}, true)
	require.NoError(t, err)
	c2 := next.FindClipByID("c2")
	assert.Equal(t, 0.0, c2.TimelineStartSec)
}

func TestDeleteClipsRippleRejectsMultiple(t *testing.T) {
	tl := timeline.New()
	tl.AddClip(sampleClip("c1", 0, 3, 1, timeline.TrackVideo))
	tl.AddClip(sampleClip("c2", 3, 2, 1, timeline.TrackVideo))

	_, err := DeleteClips(tl, []string{"c1", "c2"}, true)
	assert.Error(t, err)
}

func TestBaseClipSetsImageTotalDurationToDisplayDuration(t *testing.T) {
	// ffprobe reports no duration field for a static image, so
	// MediaInfo.DurationSec comes back zero; baseClip must not let that
	// leave SourceOutSec exceeding SourceTotalDurationSec.
	info := timeutil.MediaInfo{HasVideo: true, Width: 1920, Height: 1080}
	c := baseClip("img1", "photo.png", 0, 5, info, true, 0, 5, timeline.TrackVideo, 1, "")
	assert.Equal(t, 5.0, c.SourceOutSec)
	assert.Equal(t, 5.0, c.SourceTotalDurationSec)
	assert.LessOrEqual(t, c.SourceOutSec, c.SourceTotalDurationSec)
}

func TestAddClipsAtomicOnError(t *testing.T) {
	dir := t.TempDir()
	writeFakeAsset(t, dir, "a.mp4")

	tl := timeline.New()
	before := tl.Clone()

	_, err := AddClips(tl, dir, []ClipToAdd{{
		ClipID:            "c1",
		SourceFilename:    "missing.mp4",
		SourceIn:          "00:00:00.000",
		SourceOut:         "00:00:01.000",
		VideoTrack:        "V1",
		InsertionBehavior: "append",
	}})
	assert.Error(t, err)
	assert.Equal(t, before.Clips, tl.Clips)
}
