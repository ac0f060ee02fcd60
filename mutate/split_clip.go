package mutate

import (
	"fmt"

	"codec/timeline"
)

// SplitClip divides clipID into two clips, "<clipID>_p1" and "<clipID>_p2",
// at splitTimeSec (a timeline time, not clip-relative). splitTimeSec must
// lie strictly inside the clip's timeline extent. Per the open question on
// keyframe distribution under split, this implementation copies every
// keyframe onto both halves, clamping each copy's time into the half's
// local range and dropping any that fall outside it.
func SplitClip(tl *timeline.Timeline, clipID string, splitTimeSec float64) (*timeline.Timeline, error) {
	c := tl.FindClipByID(clipID)
	if c == nil {
		return tl, fmt.Errorf("Error: clip %q not found", clipID)
	}
	start, end := c.TimelineStartSec, c.TimelineEndSec()
	if !(splitTimeSec > start && splitTimeSec < end) {
		return tl, fmt.Errorf("Error: split_time must lie strictly within clip %q's extent [%.3f, %.3f)", clipID, start, end)
	}

	p1ID := clipID + "_p1"
	p2ID := clipID + "_p2"
	for _, id := range []string{p1ID, p2ID} {
		if id != clipID && tl.ClipIDExists(id) {
			return tl, fmt.Errorf("Error: clip_id %q already exists", id)
		}
	}

	p1Duration := splitTimeSec - start
	p2Duration := end - splitTimeSec
	splitSourceTime := c.SourceInSec + p1Duration

	p1 := *c
	p1.ClipID = p1ID
	p1.TimelineStartSec = start
	p1.DurationSec = p1Duration
	p1.SourceOutSec = splitSourceTime
	p1.Transformations = clampKeyframes(c.Transformations, 0, p1Duration)

	p2 := *c
	p2.ClipID = p2ID
	p2.TimelineStartSec = splitTimeSec
	p2.DurationSec = p2Duration
	p2.SourceInSec = splitSourceTime
	p2.Transformations = clampKeyframes(c.Transformations, p1Duration, c.DurationSec)
	shiftKeyframes(p2.Transformations, -p1Duration)

	next := tl.Clone()
	next.DeleteClip(clipID)
	next.AddClip(&p1)
	next.AddClip(&p2)
	return next, nil
}

// clampKeyframes copies keyframes whose TimeSec falls within [lo, hi),
// keeping their original times; SplitClip re-bases the second half's copies
// with shiftKeyframes.
func clampKeyframes(src []*timeline.Keyframe, lo, hi float64) []*timeline.Keyframe {
	var out []*timeline.Keyframe
	for _, k := range src {
		if k.TimeSec < lo || k.TimeSec >= hi {
			if !(lo == 0 && k.TimeSec == 0) {
				continue
			}
		}
		kk := *k
		out = append(out, &kk)
	}
	return out
}

func shiftKeyframes(kfs []*timeline.Keyframe, delta float64) {
	for _, k := range kfs {
		k.TimeSec += delta
	}
}
