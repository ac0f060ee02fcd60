// Package timeline implements the multi-track, keyframed composition model:
// clips, tracks, and keyframes, with the query and mutation primitives every
// editing tool is built on. Ordering and overlap invariants are maintained
// here so callers never observe an inconsistent timeline.
package timeline

import "sort"

// Interpolation identifies how a keyframed property eases between samples.
type Interpolation string

const (
	InterpolationLinear   Interpolation = "linear"
	InterpolationEasyEase Interpolation = "easy_ease"
	InterpolationHold     Interpolation = "hold"
)

// Point is a normalized (x, y) pair in [0, 1] relative to the sequence frame
// ((0,0) top-left, (1,1) bottom-right), or relative to a clip's own frame for
// anchor points.
type Point struct {
	X, Y float64
}

// Keyframe is a timed set of independently-nullable affine properties.
// TimeSec is relative to the owning clip's start on the timeline.
type Keyframe struct {
	TimeSec       float64
	Position      *Point
	Scale         *float64
	Rotation      *float64
	Opacity       *float64
	AnchorPoint   *Point
	Interpolation Interpolation
}

// HasAnyProperty reports whether the keyframe still carries at least one
// affine property. A non-base keyframe with no properties left is removed
// by the transform tool.
func (k *Keyframe) HasAnyProperty() bool {
	return k.Position != nil || k.Scale != nil || k.Rotation != nil ||
		k.Opacity != nil || k.AnchorPoint != nil
}

// TrackType distinguishes video from audio tracks.
type TrackType string

const (
	TrackVideo TrackType = "video"
	TrackAudio TrackType = "audio"
)

// Clip is one placement of a source-media region onto one track.
type Clip struct {
	ClipID string

	SourcePath              string
	SourceInSec             float64
	SourceOutSec            float64
	SourceTotalDurationSec  float64
	SourceWidth             int
	SourceHeight            int
	SourceFrameRate         float64
	HasAudio                bool

	TimelineStartSec float64
	DurationSec      float64

	TrackType   TrackType
	TrackNumber int

	Description string

	// Transformations is kept sorted by TimeSec ascending.
	Transformations []*Keyframe
}

// TimelineEndSec returns the clip's end time on the timeline (exclusive).
func (c *Clip) TimelineEndSec() float64 {
	return c.TimelineStartSec + c.DurationSec
}

// SortTransformations restores ascending TimeSec order; called after every
// keyframe mutation.
func (c *Clip) SortTransformations() {
	sort.SliceStable(c.Transformations, func(i, j int) bool {
		return c.Transformations[i].TimeSec < c.Transformations[j].TimeSec
	})
}

// SequenceProperties are the composition's frame rate and frame dimensions,
// fixed once inferred from the first qualifying video clip (or an explicit
// override).
type SequenceProperties struct {
	FrameRate float64
	Width     int
	Height    int
	set       bool
}

// DefaultSequenceProperties is used when no clip has yet established the
// sequence.
var DefaultSequenceProperties = SequenceProperties{FrameRate: 24.0, Width: 1920, Height: 1080}

// Timeline is the in-memory composition: an ordered collection of clips plus
// derived sequence properties.
type Timeline struct {
	Clips    []*Clip
	Sequence SequenceProperties
}

// New returns an empty timeline.
func New() *Timeline {
	return &Timeline{}
}

// sortClips restores the canonical (track_type, track_number,
// timeline_start_sec) order. video sorts before audio so summaries and
// rendering see tracks in a stable, human-meaningful order.
func (t *Timeline) sortClips() {
	sort.SliceStable(t.Clips, func(i, j int) bool {
		a, b := t.Clips[i], t.Clips[j]
		if a.TrackType != b.TrackType {
			return a.TrackType == TrackVideo
		}
		if a.TrackNumber != b.TrackNumber {
			return a.TrackNumber < b.TrackNumber
		}
		return a.TimelineStartSec < b.TimelineStartSec
	})
}

// EnsureSequenceProperties establishes the sequence from the first
// qualifying video clip if it has not been set yet (or via explicit
// override, applied by the caller before any clips are added).
func (t *Timeline) EnsureSequenceProperties(c *Clip) {
	if t.Sequence.set {
		return
	}
	if c.TrackType == TrackVideo && c.SourceWidth > 0 && c.SourceHeight > 0 && c.SourceFrameRate > 0 {
		t.Sequence = SequenceProperties{
			FrameRate: c.SourceFrameRate,
			Width:     c.SourceWidth,
			Height:    c.SourceHeight,
			set:       true,
		}
	}
}

// GetSequenceProperties returns the composition's fps/width/height, falling
// back to DefaultSequenceProperties if no clip has established them yet.
func (t *Timeline) GetSequenceProperties() SequenceProperties {
	if t.Sequence.set {
		return t.Sequence
	}
	return DefaultSequenceProperties
}

// SetSequenceProperties explicitly overrides the sequence; intended for use
// before any clips are added.
func (t *Timeline) SetSequenceProperties(fps float64, width, height int) {
	t.Sequence = SequenceProperties{FrameRate: fps, Width: width, Height: height, set: true}
}

// AddClip inserts c into the timeline and re-sorts. Callers are responsible
// for invariant validation (uniqueness, non-overlap) before calling this;
// AddClip itself performs no validation so it can be used as the commit
// step of an already-validated batch.
func (t *Timeline) AddClip(c *Clip) {
	t.EnsureSequenceProperties(c)
	t.Clips = append(t.Clips, c)
	t.sortClips()
}

// DeleteClip removes the clip with the given ID, if present, and reports
// whether it was found.
func (t *Timeline) DeleteClip(clipID string) bool {
	for i, c := range t.Clips {
		if c.ClipID == clipID {
			t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
			return true
		}
	}
	return false
}

// FindClipByID returns the clip with the given ID, or nil.
func (t *Timeline) FindClipByID(clipID string) *Clip {
	for _, c := range t.Clips {
		if c.ClipID == clipID {
			return c
		}
	}
	return nil
}

// ClipIDExists reports whether clipID is already present on the timeline.
func (t *Timeline) ClipIDExists(clipID string) bool {
	return t.FindClipByID(clipID) != nil
}

// ClipsOnTrack returns all clips on the given (trackType, trackNumber) in
// timeline order.
func (t *Timeline) ClipsOnTrack(trackType TrackType, number int) []*Clip {
	var out []*Clip
	for _, c := range t.Clips {
		if c.TrackType == trackType && c.TrackNumber == number {
			out = append(out, c)
		}
	}
	return out
}

// TrackDuration returns the end time of the last clip on the given track, or
// zero if the track is empty.
func (t *Timeline) TrackDuration(trackType TrackType, number int) float64 {
	end := 0.0
	for _, c := range t.ClipsOnTrack(trackType, number) {
		if e := c.TimelineEndSec(); e > end {
			end = e
		}
	}
	return end
}

// Duration returns the overall timeline duration: the maximum end time
// across all clips on all tracks.
func (t *Timeline) Duration() float64 {
	end := 0.0
	for _, c := range t.Clips {
		if e := c.TimelineEndSec(); e > end {
			end = e
		}
	}
	return end
}

// TopmostClipAt returns the active video clip containing t in
// [start, start+duration) with the highest TrackNumber, or nil if no video
// clip is active at that time. Ties cannot occur because clips on the same
// track never overlap.
func (t *Timeline) TopmostClipAt(timeSec float64) *Clip {
	var best *Clip
	for _, c := range t.Clips {
		if c.TrackType != TrackVideo {
			continue
		}
		if timeSec < c.TimelineStartSec || timeSec >= c.TimelineEndSec() {
			continue
		}
		if best == nil || c.TrackNumber > best.TrackNumber {
			best = c
		}
	}
	return best
}

// DistinctTrackKeys returns every (trackType, trackNumber) pair currently in
// use, sorted video-before-audio and ascending by number — the order the
// renderer and the summary tool both lay tracks out in.
type TrackKey struct {
	Type   TrackType
	Number int
}

func (t *Timeline) DistinctTrackKeys() []TrackKey {
	seen := map[TrackKey]bool{}
	var keys []TrackKey
	for _, c := range t.Clips {
		k := TrackKey{c.TrackType, c.TrackNumber}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type == TrackVideo
		}
		return keys[i].Number < keys[j].Number
	})
	return keys
}

// Clone returns a deep-enough copy of the timeline suitable for snapshotting
// before a speculative mutation (property 5: atomicity on error).
func (t *Timeline) Clone() *Timeline {
	clone := &Timeline{Sequence: t.Sequence}
	clone.Clips = make([]*Clip, len(t.Clips))
	for i, c := range t.Clips {
		cc := *c
		cc.Transformations = make([]*Keyframe, len(c.Transformations))
		for j, k := range c.Transformations {
			kk := *k
			cc.Transformations[j] = &kk
		}
		clone.Clips[i] = &cc
	}
	return clone
}
