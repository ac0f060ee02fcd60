// Package preview implements the introspection and visualization tools
// (get_timeline_summary, view_video, view_timeline, visualize_timeline) and
// the overlay/compositing primitives they share.
package preview

import (
	"fmt"
	"path/filepath"
	"strings"

	"codec/timeline"
	"codec/timeutil"
)

const overlapTolerance = 0.001

// GetTimelineSummary produces the deterministic plain-text report described
// a fixed-width header, then per-track sections listing clips
// in order with gap and overlap markers.
func GetTimelineSummary(tl *timeline.Timeline, trackFilter string, startTime, endTime *float64) (string, error) {
	var filterType timeline.TrackType
	var filterNumber int
	hasFilter := trackFilter != ""
	if hasFilter {
		tt, n, err := timeutil.ParseTrack(trackFilter)
		if err != nil {
			return "", err
		}
		filterType = timeline.TrackType(tt)
		filterNumber = n
	}

	var b strings.Builder
	const width = 40
	seq := tl.GetSequenceProperties()

	b.WriteString(strings.Repeat("=", width) + "\n")
	b.WriteString(center("TIMELINE SUMMARY", width) + "\n")
	b.WriteString(strings.Repeat("=", width) + "\n")
	fmt.Fprintf(&b, "Total Duration: %s\n", timeutil.SecondsToHMS(tl.Duration()))
	fmt.Fprintf(&b, "Sequence: %dx%d @ %.3g fps\n", seq.Width, seq.Height, seq.FrameRate)
	fmt.Fprintf(&b, "Total Clips: %d\n", len(tl.Clips))

	for _, key := range tl.DistinctTrackKeys() {
		if hasFilter && (key.Type != filterType || key.Number != filterNumber) {
			continue
		}
		clips := filterByTime(tl.ClipsOnTrack(key.Type, key.Number), startTime, endTime)
		if len(clips) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n--- Track %s ---\n", trackLabel(key))

		lastEnd := 0.0
		for _, c := range clips {
			if gap := c.TimelineStartSec - lastEnd; gap > overlapTolerance {
				fmt.Fprintf(&b, "[GAP from %s to %s (duration: %s)]\n",
					timeutil.SecondsToHMS(lastEnd), timeutil.SecondsToHMS(c.TimelineStartSec), timeutil.SecondsToHMS(gap))
			} else if c.TimelineStartSec < lastEnd-overlapTolerance {
				fmt.Fprintf(&b, "[!!! WARNING: OVERLAP DETECTED on track %s at %s !!!]\n",
					trackLabel(key), timeutil.SecondsToHMS(c.TimelineStartSec))
			}
			fmt.Fprintf(&b, "Clip %q: [%s - %s] (%s)\n", c.ClipID,
				timeutil.SecondsToHMS(c.TimelineStartSec), timeutil.SecondsToHMS(c.TimelineEndSec()),
				timeutil.SecondsToHMS(c.DurationSec))
			fmt.Fprintf(&b, "  Source: %s, In: %s, Out: %s\n", filepath.Base(c.SourcePath),
				timeutil.SecondsToHMS(c.SourceInSec), timeutil.SecondsToHMS(c.SourceOutSec))
			if c.Description != "" {
				fmt.Fprintf(&b, "  Description: %s\n", c.Description)
			}
			if e := c.TimelineEndSec(); e > lastEnd {
				lastEnd = e
			}
		}
	}

	return b.String(), nil
}

func trackLabel(k timeline.TrackKey) string {
	prefix := "V"
	if k.Type == timeline.TrackAudio {
		prefix = "A"
	}
	return fmt.Sprintf("%s%d", prefix, k.Number)
}

func filterByTime(clips []*timeline.Clip, start, end *float64) []*timeline.Clip {
	if start == nil && end == nil {
		return clips
	}
	var out []*timeline.Clip
	for _, c := range clips {
		if start != nil && c.TimelineEndSec() <= *start {
			continue
		}
		if end != nil && c.TimelineStartSec >= *end {
			continue
		}
		out = append(out, c)
	}
	return out
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
