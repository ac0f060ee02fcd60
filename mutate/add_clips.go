// Package mutate implements the validate-then-commit editing tools:
// add_clips, split_clip, delete_clips, and transform. Every exported
// operation collects all validation errors across every requested
// sub-operation before touching the timeline (Phase V), then applies every
// sub-operation only if Phase V found nothing wrong (Phase C). A failing
// call returns the timeline unchanged.
package mutate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codec/timeline"
	"codec/timeutil"
)

// ClipToAdd is one requested placement in an add_clips call.
type ClipToAdd struct {
	ClipID             string
	SourceFilename     string
	SourceIn           string // HH:MM:SS.mmm
	SourceOut          string // HH:MM:SS.mmm
	VideoTrack         string // e.g. "V1"; empty if not targeting video
	AudioTrack         string // e.g. "A1"; empty if not targeting audio
	TimelineStart      string // HH:MM:SS.mmm; defaults to "00:00:00.000"
	InsertionBehavior  string // "append" | "insert" | "replace"
	Description        string
}

// validatedClip is the internal staging record built during Phase V and
// applied verbatim during Phase C.
type validatedClip struct {
	clip              *timeline.Clip
	insertionBehavior string
}

// AddClips validates every requested clip placement, and — only if every
// placement is valid — commits all of them atomically. assetsDir resolves
// SourceFilename. On success it returns the new timeline; on failure it
// returns the original tl untouched plus an aggregated error.
func AddClips(tl *timeline.Timeline, assetsDir string, clips []ClipToAdd) (*timeline.Timeline, error) {
	if len(clips) == 0 {
		return tl, fmt.Errorf("add_clips requires at least one clip")
	}

	var errs []string
	var staged []validatedClip
	tempClipIDs := map[string]bool{}
	for _, c := range tl.Clips {
		tempClipIDs[c.ClipID] = true
	}

	// scratch table of per-track end times, seeded from the current
	// timeline and updated as appends within this call stack.
	trackEnds := map[timeline.TrackKey]float64{}
	for _, k := range tl.DistinctTrackKeys() {
		trackEnds[k] = tl.TrackDuration(k.Type, k.Number)
	}

	seq := tl.GetSequenceProperties()
	cutTolerance := (1.0 / seq.FrameRate) / 2.0

	for i, req := range clips {
		group, groupErrs := validateOne(tl, assetsDir, req, i, tempClipIDs, trackEnds, cutTolerance)
		if len(groupErrs) > 0 {
			errs = append(errs, groupErrs...)
			continue
		}
		staged = append(staged, group...)
	}

	if len(errs) > 0 {
		return tl, fmt.Errorf("Operation failed. Please fix the following errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return commitStaged(tl, staged), nil
}

// commitStaged applies every staged placement to a clone of tl. Every
// replace's overlap deletions are resolved against tl's original positions
// before any insert-shift runs, so an insert earlier in request order can't
// move a clip out of (or into) a replace's target range before the replace
// is evaluated.
func commitStaged(tl *timeline.Timeline, staged []validatedClip) *timeline.Timeline {
	next := tl.Clone()

	toDelete := map[string]bool{}
	for _, g := range staged {
		if g.insertionBehavior != "replace" {
			continue
		}
		newStart, newEnd := g.clip.TimelineStartSec, g.clip.TimelineEndSec()
		for _, existing := range tl.ClipsOnTrack(g.clip.TrackType, g.clip.TrackNumber) {
			exStart, exEnd := existing.TimelineStartSec, existing.TimelineEndSec()
			if maxF(exStart, newStart) < minF(exEnd, newEnd) {
				toDelete[existing.ClipID] = true
			}
		}
	}
	for id := range toDelete {
		next.DeleteClip(id)
	}

	for _, g := range staged {
		commitOne(next, g)
	}
	return next
}

func validateOne(tl *timeline.Timeline, assetsDir string, req ClipToAdd, index int,
	tempClipIDs map[string]bool, trackEnds map[timeline.TrackKey]float64, cutTolerance float64) ([]validatedClip, []string) {

	label := req.ClipID
	if label == "" {
		label = fmt.Sprintf("clip #%d", index+1)
	}
	var errs []string

	if req.VideoTrack == "" && req.AudioTrack == "" {
		errs = append(errs, fmt.Sprintf("%s: at least one of video_track or audio_track is required", label))
		return nil, errs
	}

	path := filepath.Join(assetsDir, req.SourceFilename)
	if _, statErr := os.Stat(path); statErr != nil {
		errs = append(errs, fmt.Sprintf("%s: source file %q not found", label, req.SourceFilename))
		return nil, errs
	}
	info := timeutil.ProbeMediaFile(path)
	if info.Error != "" {
		errs = append(errs, fmt.Sprintf("%s: %s", label, info.Error))
		return nil, errs
	}

	sourceIn, err := timeutil.HMSToSeconds(req.SourceIn)
	if err != nil {
		errs = append(errs, fmt.Sprintf("%s: source_in %v", label, err))
	}
	sourceOut, err := timeutil.HMSToSeconds(req.SourceOut)
	if err != nil {
		errs = append(errs, fmt.Sprintf("%s: source_out %v", label, err))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	isImage := looksLikeImage(path)
	if isImage {
		if sourceIn != 0 {
			errs = append(errs, fmt.Sprintf("%s: image sources must have source_in = 0", label))
		}
		if req.AudioTrack != "" {
			errs = append(errs, fmt.Sprintf("%s: image sources cannot target an audio track", label))
		}
	} else {
		if sourceIn < 0 || sourceIn >= sourceOut {
			errs = append(errs, fmt.Sprintf("%s: source_in must be < source_out", label))
		}
		if sourceOut > info.DurationSec+0.01 {
			errs = append(errs, fmt.Sprintf("%s: source_out %.3fs exceeds source duration %.3fs", label, sourceOut, info.DurationSec))
		}
	}

	if req.VideoTrack != "" && !info.HasVideo {
		errs = append(errs, fmt.Sprintf("%s: source has no video stream for video_track %s", label, req.VideoTrack))
	}
	if req.AudioTrack != "" && !info.HasAudio {
		errs = append(errs, fmt.Sprintf("%s: source has no audio stream for audio_track %s", label, req.AudioTrack))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	behavior := req.InsertionBehavior
	if behavior == "" {
		behavior = "append"
	}
	if behavior != "append" && behavior != "insert" && behavior != "replace" {
		errs = append(errs, fmt.Sprintf("%s: invalid insertion_behavior %q", label, behavior))
		return nil, errs
	}

	duration := sourceOut - sourceIn

	var videoKey, audioKey *timeline.TrackKey
	if req.VideoTrack != "" {
		tt, n, err := timeutil.ParseTrack(req.VideoTrack)
		if err != nil || tt != "video" {
			errs = append(errs, fmt.Sprintf("%s: invalid video_track %q", label, req.VideoTrack))
		} else {
			videoKey = &timeline.TrackKey{Type: timeline.TrackVideo, Number: n}
		}
	}
	if req.AudioTrack != "" {
		tt, n, err := timeutil.ParseTrack(req.AudioTrack)
		if err != nil || tt != "audio" {
			errs = append(errs, fmt.Sprintf("%s: invalid audio_track %q", label, req.AudioTrack))
		} else {
			audioKey = &timeline.TrackKey{Type: timeline.TrackAudio, Number: n}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	timelineStartStr := req.TimelineStart
	if timelineStartStr == "" {
		timelineStartStr = "00:00:00.000"
	}
	var timelineStart float64
	switch behavior {
	case "append":
		timelineStart = 0
		if videoKey != nil {
			timelineStart = trackEnds[*videoKey]
		}
		if audioKey != nil && trackEnds[*audioKey] > timelineStart {
			timelineStart = trackEnds[*audioKey]
		}
	default:
		var perr error
		timelineStart, perr = timeutil.HMSToSeconds(timelineStartStr)
		if perr != nil {
			errs = append(errs, fmt.Sprintf("%s: timeline_start %v", label, perr))
			return nil, errs
		}
	}

	if behavior == "insert" {
		for _, key := range []*timeline.TrackKey{videoKey, audioKey} {
			if key == nil {
				continue
			}
			if !isCutPoint(tl, *key, timelineStart, cutTolerance) {
				errs = append(errs, fmt.Sprintf("%s: timeline_start is not a valid cut point on track", label))
			}
		}
		if len(errs) > 0 {
			return nil, errs
		}
	}

	// clip_id collisions, including within this same request.
	var ids []string
	if videoKey != nil && audioKey != nil {
		ids = []string{req.ClipID + "_v", req.ClipID + "_a"}
	} else {
		ids = []string{req.ClipID}
	}
	for _, id := range ids {
		if tempClipIDs[id] {
			errs = append(errs, fmt.Sprintf("%s: clip_id %q already exists", label, id))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	for _, id := range ids {
		tempClipIDs[id] = true
	}

	var group []validatedClip
	if videoKey != nil {
		c := baseClip(ids[0], path, sourceIn, sourceOut, info, isImage, timelineStart, duration, timeline.TrackVideo, videoKey.Number, req.Description)
		group = append(group, validatedClip{clip: c, insertionBehavior: behavior})
	}
	if audioKey != nil {
		id := req.ClipID
		if videoKey != nil {
			id = req.ClipID + "_a"
		}
		c := baseClip(id, path, sourceIn, sourceOut, info, isImage, timelineStart, duration, timeline.TrackAudio, audioKey.Number, req.Description)
		group = append(group, validatedClip{clip: c, insertionBehavior: behavior})
	}

	// update the append scratch table so subsequent requests in this same
	// call see this placement.
	if behavior == "append" {
		end := timelineStart + duration
		if videoKey != nil {
			trackEnds[*videoKey] = end
		}
		if audioKey != nil {
			trackEnds[*audioKey] = end
		}
	}

	return group, nil
}

func baseClip(id, path string, sourceIn, sourceOut float64, info timeutil.MediaInfo, isImage bool,
	timelineStart, duration float64, trackType timeline.TrackType, trackNumber int, desc string) *timeline.Clip {
	// ffprobe reports no duration for a static image; its total duration is
	// defined as the display duration the caller requested.
	totalDuration := info.DurationSec
	if isImage {
		totalDuration = sourceOut
	}
	return &timeline.Clip{
		ClipID:                 id,
		SourcePath:             path,
		SourceInSec:            sourceIn,
		SourceOutSec:           sourceOut,
		SourceTotalDurationSec: totalDuration,
		SourceWidth:            info.Width,
		SourceHeight:           info.Height,
		SourceFrameRate:        info.FrameRate,
		HasAudio:               info.HasAudio,
		TimelineStartSec:       timelineStart,
		DurationSec:            duration,
		TrackType:              trackType,
		TrackNumber:            trackNumber,
		Description:            desc,
	}
}

func isCutPoint(tl *timeline.Timeline, key timeline.TrackKey, t, tolerance float64) bool {
	if abs(t) <= tolerance {
		return true
	}
	for _, c := range tl.ClipsOnTrack(key.Type, key.Number) {
		if abs(c.TimelineEndSec()-t) <= tolerance {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func looksLikeImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		return true
	}
	return false
}

// commitOne applies one already-validated clip placement to tl. Replace's
// overlap deletions are resolved up front in commitStaged against the
// original timeline, so this only handles insert-shift semantics before
// adding c.
func commitOne(tl *timeline.Timeline, g validatedClip) {
	c := g.clip
	switch g.insertionBehavior {
	case "insert":
		insertPoint := c.TimelineStartSec
		shift := c.DurationSec
		for _, existing := range tl.ClipsOnTrack(c.TrackType, c.TrackNumber) {
			if existing.TimelineStartSec >= insertPoint {
				existing.TimelineStartSec += shift
			}
		}
	}
	tl.AddClip(c)
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
