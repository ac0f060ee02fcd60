package mutate

import (
	"fmt"

	"codec/timeline"
)

// DeleteClips removes the named clips, leaving gaps. Ripple is permitted
// only when exactly one clip is targeted; it shifts every later clip on the
// same track earlier by the deleted clip's duration.
func DeleteClips(tl *timeline.Timeline, clipIDs []string, ripple bool) (*timeline.Timeline, error) {
	if len(clipIDs) == 0 {
		return tl, fmt.Errorf("delete_clips requires at least one clip_id")
	}
	if ripple && len(clipIDs) > 1 {
		return tl, fmt.Errorf("Error: ripple is only permitted when deleting a single clip")
	}

	var errs []string
	for _, id := range clipIDs {
		if !tl.ClipIDExists(id) {
			errs = append(errs, fmt.Sprintf("clip %q not found", id))
		}
	}
	if len(errs) > 0 {
		msg := "Operation failed. Please fix the following errors:\n- " + errs[0]
		for _, e := range errs[1:] {
			msg += "\n- " + e
		}
		return tl, fmt.Errorf("%s", msg)
	}

	next := tl.Clone()
	if ripple {
		target := next.FindClipByID(clipIDs[0])
		deletedDuration := target.DurationSec
		deletedStart := target.TimelineStartSec
		trackType, trackNumber := target.TrackType, target.TrackNumber
		next.DeleteClip(clipIDs[0])
		for _, c := range next.ClipsOnTrack(trackType, trackNumber) {
			if c.TimelineStartSec > deletedStart {
				c.TimelineStartSec -= deletedDuration
			}
		}
		return next, nil
	}

	for _, id := range clipIDs {
		next.DeleteClip(id)
	}
	return next, nil
}
