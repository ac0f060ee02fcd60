package timeutil

import (
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
)

// MediaInfo is the result of probing a source file. Error is populated on
// failure rather than returned as a Go error, so batch validation callers
// (the add_clips mutation, in particular) can collect every failure before
// deciding whether to commit anything.
type MediaInfo struct {
	DurationSec float64
	Width       int
	Height      int
	FrameRate   float64
	HasVideo    bool
	HasAudio    bool
	Error       string
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	Duration     string `json:"duration"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

// ProbeMediaFile shells out to ffprobe and reports duration, dimensions,
// frame rate, and stream presence for path. It never returns a Go error;
// all failures are carried in MediaInfo.Error.
func ProbeMediaFile(path string) MediaInfo {
	out, err := exec.Command("ffprobe", "-v", "quiet", "-print_format", "json",
		"-show_format", "-show_streams", path).Output()
	if err != nil {
		return MediaInfo{Error: "failed to probe media file: " + err.Error()}
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return MediaInfo{Error: "failed to parse ffprobe output: " + err.Error()}
	}

	var video, audio *ffprobeStream
	for i := range probe.Streams {
		st := &probe.Streams[i]
		switch st.CodecType {
		case "video":
			if video == nil {
				video = st
			}
		case "audio":
			if audio == nil {
				audio = st
			}
		}
	}

	if video == nil && audio == nil {
		return MediaInfo{Error: "Not a valid media file (no video or audio streams)."}
	}

	info := MediaInfo{HasVideo: video != nil, HasAudio: audio != nil}

	durationStr := ""
	if video != nil && video.Duration != "" {
		durationStr = video.Duration
	} else if audio != nil && audio.Duration != "" {
		durationStr = audio.Duration
	} else {
		durationStr = probe.Format.Duration
	}
	if durationStr != "" {
		if d, err := strconv.ParseFloat(durationStr, 64); err == nil {
			info.DurationSec = d
		}
	}

	if video != nil {
		info.Width = video.Width
		info.Height = video.Height
		info.FrameRate = parseRational(video.RFrameRate)
	}

	return info
}

// parseRational parses an ffprobe "num/den" rate string, guarding against a
// zero denominator.
func parseRational(rate string) float64 {
	parts := strings.SplitN(rate, "/", 2)
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
