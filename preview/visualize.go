package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"codec/timeline"
)

const (
	laneHeight      = 60
	thumbsPerClip   = 3
	pixelsPerSecond = 40
)

var (
	colorVideoClip = color.RGBA{0x2A, 0x6F, 0x97, 0xFF}
	colorAudioClip = color.RGBA{0x3A, 0x8F, 0x4A, 0xFF}
	colorRuler     = color.RGBA{0x80, 0x80, 0x80, 0xFF}
)

// VisualizeTimeline renders a single ruler-plus-lanes overview image: tracks
// stacked video-above-audio, higher video tracks above lower ones (matching
// compositing order), every clip drawn as a solid colored block labeled
// with its (possibly truncated) clip_id. No thumbnails are drawn; video and
// audio clips differ only in color.
func VisualizeTimeline(tl *timeline.Timeline, tmpDir string) (string, error) {
	duration := tl.Duration()
	width := Padding*2 + int(duration*pixelsPerSecond)
	if width < 200 {
		width = 200
	}

	keys := tl.DistinctTrackKeys()
	ordered := orderForDisplay(keys)
	height := Padding*2 + HeaderHeight + len(ordered)*laneHeight

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRect(canvas, canvas.Bounds(), color.Black)

	drawText(canvas, Padding, HeaderHeight/2, fmt.Sprintf("Timeline (%.2fs)", duration), colorHeaderText)

	for i := 0; i < int(duration)+1; i++ {
		x := Padding + i*pixelsPerSecond
		drawLine(canvas, x, HeaderHeight, x, height-Padding, colorRuler)
	}

	y := HeaderHeight + Padding
	for _, key := range ordered {
		label := trackLabel(key)
		drawText(canvas, 4, y+laneHeight/2, label, colorHeaderText)
		for _, c := range tl.ClipsOnTrack(key.Type, key.Number) {
			x0 := Padding + int(c.TimelineStartSec*pixelsPerSecond)
			x1 := Padding + int(c.TimelineEndSec()*pixelsPerSecond)
			col := colorAudioClip
			if key.Type == timeline.TrackVideo {
				col = colorVideoClip
			}
			fillRect(canvas, image.Rect(x0, y, x1, y+laneHeight-4), col)
			drawText(canvas, x0+2, y+laneHeight/2, truncateLabel(c.ClipID, (x1-x0)/7), colorHeaderText)
		}
		y += laneHeight
	}

	outPath := filepath.Join(tmpDir, "visualize_timeline.png")
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, canvas); err != nil {
		return "", err
	}
	return outPath, nil
}

// orderForDisplay stacks video above audio, with higher-numbered video
// tracks drawn above lower-numbered ones (matching compositing order), and
// audio tracks ascending below.
func orderForDisplay(keys []timeline.TrackKey) []timeline.TrackKey {
	var video, audio []timeline.TrackKey
	for _, k := range keys {
		if k.Type == timeline.TrackVideo {
			video = append(video, k)
		} else {
			audio = append(audio, k)
		}
	}
	for i, j := 0, len(video)-1; i < j; i, j = i+1, j-1 {
		video[i], video[j] = video[j], video[i]
	}
	return append(video, audio...)
}

func truncateLabel(id string, maxChars int) string {
	if maxChars < 1 {
		maxChars = 1
	}
	if len(id) <= maxChars {
		return id
	}
	if maxChars <= 1 {
		return id[:1]
	}
	return id[:maxChars-1] + "…"
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}
