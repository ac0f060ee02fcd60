package render

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"codec/timeline"
)

// writeProjectFile marshals tl to MLT XML and writes it into dir, returning
// the file's path.
func writeProjectFile(tl *timeline.Timeline, dir, name string) (string, error) {
	project := BuildProject(tl)
	data, err := Marshal(project)
	if err != nil {
		return "", fmt.Errorf("failed to marshal MLT project: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write MLT project: %w", err)
	}
	return path, nil
}

// consumerArgs picks the video codec by platform, matching the original's
// hardware-encoder selection: videotoolbox on Apple Silicon, libx264
// elsewhere with a fast preset.
func consumerArgs(outPath string) []string {
	args := []string{"avformat:" + outPath, "acodec=aac", "pix_fmt=yuv420p"}
	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		return append(args, "vcodec=h264_videotoolbox")
	}
	return append(args, "vcodec=libx264", "preset=ultrafast", fmt.Sprintf("threads=%d", runtime.NumCPU()))
}

// FinalRender renders the full timeline to outPath using the melt binary on
// PATH. tmpDir holds the generated MLT project file.
func FinalRender(tl *timeline.Timeline, tmpDir, outPath string) error {
	projectPath, err := writeProjectFile(tl, tmpDir, "project.mlt")
	if err != nil {
		return err
	}
	args := append([]string{projectPath, "-consumer"}, consumerArgs(outPath)...)
	cmd := exec.Command("melt", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("render failed: %s", string(out))
	}
	return nil
}

// PreviewFrame renders a single frame at timelineSec to a JPEG at outPath,
// via the same XML used for final renders, restricted to a single in=out
// frame window.
func PreviewFrame(tl *timeline.Timeline, tmpDir string, timelineSec float64, outPath string) error {
	projectPath, err := writeProjectFile(tl, tmpDir, fmt.Sprintf("preview_%d.mlt", int(timelineSec*1000)))
	if err != nil {
		return err
	}
	seq := tl.GetSequenceProperties()
	frameNum := frameOf(timelineSec, seq.FrameRate)
	cmd := exec.Command("melt", projectPath,
		fmt.Sprintf("in=%d", frameNum), fmt.Sprintf("out=%d", frameNum),
		"-consumer", "avformat:"+outPath, "vcodec=mjpeg")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("preview render failed: %s", string(out))
	}
	return nil
}
