package preview

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"

	"codec/render"
	"codec/timeline"
)

// maxWorkers bounds the pure-I/O fan-out (frame extraction) inside a single
// tool call: the CPU count, capped at 16 workers.
func maxWorkers() int {
	if n := runtime.NumCPU(); n > 0 && n < 16 {
		return n
	}
	return 16
}

// Frame is one rendered/extracted frame ready for upload, keyed by its
// position in the original request so output stays deterministic despite
// concurrent extraction.
type Frame struct {
	Index int
	Path  string
	Image image.Image
}

// sampleTimestamps returns the midpoint of each of n equal segments over
// [start, end], or a single timestamp if the range is degenerate.
func sampleTimestamps(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if end <= start {
		return []float64{start}
	}
	segment := (end - start) / float64(n)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = start + segment*(float64(i)+0.5)
	}
	return out
}

// runBounded executes work(i) for every i in [0, n) over a bounded worker
// pool, joining all goroutines before returning. Results are collected by
// index so callers see deterministic ordering regardless of completion
// order (ground: Bobarinn-video-genie's semaphore-bounded worker pattern).
func runBounded(n int, work func(i int) (Frame, error)) ([]Frame, []error) {
	sem := make(chan struct{}, maxWorkers())
	results := make([]Frame, n)
	errs := make([]error, n)
	done := make(chan int, n)

	for i := 0; i < n; i++ {
		i := i
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; done <- i }()
			f, err := work(i)
			results[i] = f
			errs[i] = err
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	var outFrames []Frame
	var outErrs []error
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			outErrs = append(outErrs, errs[i])
			continue
		}
		outFrames = append(outFrames, results[i])
	}
	sort.Slice(outFrames, func(a, b int) bool { return outFrames[a].Index < outFrames[b].Index })
	return outFrames, outErrs
}

// extractSourceFrame pulls a single frame from a source media file at
// sourceTimeSec via ffmpeg, writing a PNG to outPath.
func extractSourceFrame(sourcePath string, sourceTimeSec float64, outPath string) error {
	cmd := exec.Command("ffmpeg", "-y", "-ss", fmt.Sprintf("%.3f", sourceTimeSec),
		"-i", sourcePath, "-frames:v", "1", outPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg frame extraction failed: %s", string(out))
	}
	return nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// ViewVideoArgs configures a view_video call.
type ViewVideoArgs struct {
	SourcePath   string
	NumFrames    int
	StartTime    float64
	EndTime      float64
	Overlays     []string
	SideBySide   bool
}

// ViewVideo samples NumFrames evenly-spaced frames from a source file,
// optionally compositing overlays (and an original|overlaid pair when
// SideBySide is set). tmpDir receives intermediate extraction output.
func ViewVideo(args ViewVideoArgs, tmpDir string) ([]Frame, []error) {
	timestamps := sampleTimestamps(args.StartTime, args.EndTime, args.NumFrames)
	frames, errs := runBounded(len(timestamps), func(i int) (Frame, error) {
		rawPath := filepath.Join(tmpDir, fmt.Sprintf("src_%d.png", i))
		if err := extractSourceFrame(args.SourcePath, timestamps[i], rawPath); err != nil {
			return Frame{}, err
		}
		img, err := loadImage(rawPath)
		if err != nil {
			return Frame{}, err
		}
		final := applyViewOverlays(img, args.Overlays, nil, 0, args.SideBySide, "Original", "Overlaid")
		outPath := filepath.Join(tmpDir, fmt.Sprintf("view_video_%d.png", i))
		if err := savePNG(final, outPath); err != nil {
			return Frame{}, err
		}
		return Frame{Index: i, Path: outPath, Image: final}, nil
	})
	return frames, errs
}

// ViewTimelineArgs configures a view_timeline call.
type ViewTimelineArgs struct {
	Timeline          *timeline.Timeline
	NumFrames         int
	StartTime         float64
	EndTime           float64
	Overlays          []string
	SideBySide        bool
	SideBySideClipID  string
}

// ViewTimeline samples NumFrames fully-composited frames from the rendered
// timeline via the same path used for final export, optionally pairing each
// with the corresponding source frame.
func ViewTimeline(args ViewTimelineArgs, tmpDir string) ([]Frame, []error) {
	timestamps := sampleTimestamps(args.StartTime, args.EndTime, args.NumFrames)
	frames, errs := runBounded(len(timestamps), func(i int) (Frame, error) {
		t := timestamps[i]
		jpgPath := filepath.Join(tmpDir, fmt.Sprintf("timeline_%d.jpg", i))
		if err := render.PreviewFrame(args.Timeline, tmpDir, t, jpgPath); err != nil {
			return Frame{}, err
		}
		timelineImg, err := loadImage(jpgPath)
		if err != nil {
			return Frame{}, err
		}

		contextClip := resolveContextClip(args.Timeline, args.SideBySideClipID, t)

		if !args.SideBySide {
			final := applyViewOverlays(timelineImg, args.Overlays, contextClip, relativeTime(contextClip, t), false, "", "")
			outPath := filepath.Join(tmpDir, fmt.Sprintf("view_timeline_%d.png", i))
			if err := savePNG(final, outPath); err != nil {
				return Frame{}, err
			}
			return Frame{Index: i, Path: outPath, Image: final}, nil
		}

		var sourceImg image.Image
		if contextClip != nil {
			sourceTime := contextClip.SourceInSec + (t - contextClip.TimelineStartSec)
			rawPath := filepath.Join(tmpDir, fmt.Sprintf("source_%d.png", i))
			if err := extractSourceFrame(contextClip.SourcePath, sourceTime, rawPath); err == nil {
				sourceImg, _ = loadImage(rawPath)
			}
		}
		if sourceImg == nil {
			sourceImg = blackImage(timelineImg.Bounds().Dx(), timelineImg.Bounds().Dy())
		}

		rel := relativeTime(contextClip, t)
		sourceOverlaid := applyOverlayImage(sourceImg, args.Overlays, contextClip, rel)
		timelineOverlaid := applyOverlayImage(timelineImg, args.Overlays, contextClip, rel)
		final := ComposeSideBySide(sourceOverlaid, "Source View", timelineOverlaid, "Timeline View")
		outPath := filepath.Join(tmpDir, fmt.Sprintf("view_timeline_sbs_%d.png", i))
		if err := savePNG(final, outPath); err != nil {
			return Frame{}, err
		}
		return Frame{Index: i, Path: outPath, Image: final}, nil
	})
	return frames, errs
}

func resolveContextClip(tl *timeline.Timeline, explicitID string, t float64) *timeline.Clip {
	if explicitID != "" {
		return tl.FindClipByID(explicitID)
	}
	return tl.TopmostClipAt(t)
}

func relativeTime(c *timeline.Clip, timelineSec float64) float64 {
	if c == nil {
		return 0
	}
	return timelineSec - c.TimelineStartSec
}

func blackImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return img
}

func applyViewOverlays(img image.Image, overlays []string, clip *timeline.Clip, relSec float64, sideBySide bool, leftLabel, rightLabel string) image.Image {
	overlaid := applyOverlayImage(img, overlays, clip, relSec)
	if !sideBySide {
		return overlaid
	}
	return ComposeSideBySide(img, leftLabel, overlaid, rightLabel)
}

func applyOverlayImage(img image.Image, overlays []string, clip *timeline.Clip, relSec float64) image.Image {
	canvas := PadToCanvas(img)
	b := img.Bounds()
	for _, o := range overlays {
		switch o {
		case "coordinate_grid":
			DrawCoordinateGrid(canvas, b.Dx(), b.Dy())
		case "anchor_point":
			if clip != nil {
				DrawAnchorPoint(canvas, clip, relSec, b.Dx(), b.Dy())
			} else {
				DrawDefaultAnchorPoint(canvas, b.Dx(), b.Dy())
			}
		}
	}
	return canvas
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
