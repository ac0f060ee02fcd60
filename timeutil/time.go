// Package timeutil converts between the canonical HH:MM:SS.mmm timecode
// grammar and fractional seconds, and probes media files via ffprobe.
package timeutil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// TimePattern matches the canonical timecode grammar used across tool args.
var TimePattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d{1,3})?$`)

// HMSToSeconds parses "HH:MM:SS" or "HH:MM:SS.mmm" into fractional seconds.
func HMSToSeconds(hms string) (float64, error) {
	if !TimePattern.MatchString(hms) {
		return 0, fmt.Errorf("invalid time format %q, expected HH:MM:SS.mmm", hms)
	}
	whole := hms
	msPart := "000"
	if i := strings.IndexByte(hms, '.'); i >= 0 {
		whole = hms[:i]
		msPart = (hms[i+1:] + "000")[:3]
	}
	parts := strings.Split(whole, ":")
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", hms, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", hms, err)
	}
	s, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", hms, err)
	}
	ms, err := strconv.Atoi(msPart)
	if err != nil {
		return 0, fmt.Errorf("invalid milliseconds in %q: %w", hms, err)
	}
	total := float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000.0
	return total, nil
}

// SecondsToHMS formats fractional seconds as "HH:MM:SS.mmm", clamping
// negative input to zero.
func SecondsToHMS(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(math.Round(seconds * 1000))
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	s := totalSec % 60
	totalMin := totalSec / 60
	m := totalMin % 60
	h := totalMin / 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// TrackGrammar matches a track reference like "V1" or "A2".
var TrackGrammar = regexp.MustCompile(`^[VAva]\d+$`)

// ParseTrack splits a track reference into its type ("video"/"audio") and
// 1-indexed number.
func ParseTrack(ref string) (trackType string, number int, err error) {
	if !TrackGrammar.MatchString(ref) {
		return "", 0, fmt.Errorf("invalid track reference %q, expected form like V1 or A2", ref)
	}
	switch ref[0] {
	case 'V', 'v':
		trackType = "video"
	case 'A', 'a':
		trackType = "audio"
	}
	number, err = strconv.Atoi(ref[1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid track number in %q: %w", ref, err)
	}
	return trackType, number, nil
}
