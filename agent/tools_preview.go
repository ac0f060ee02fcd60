package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codec/preview"
	"codec/session"
	"codec/timeutil"
)

// --- get_timeline_summary ------------------------------------------------

type summaryArgs struct {
	Track     string   `json:"track"`
	StartTime *float64 `json:"start_time"`
	EndTime   *float64 `json:"end_time"`
}

// SummaryTool wraps preview.GetTimelineSummary.
type SummaryTool struct{}

func (SummaryTool) Name() string { return "get_timeline_summary" }
func (SummaryTool) Description() string {
	return "Produce a deterministic plain-text report of the current timeline, with gap and overlap markers."
}
func (SummaryTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"track":      map[string]interface{}{"type": "string", "description": "e.g. V1, optional"},
			"start_time": map[string]interface{}{"type": "number"},
			"end_time":   map[string]interface{}{"type": "number"},
		},
	}
}

func (SummaryTool) Execute(_ context.Context, st *session.State, argsJSON string) (ToolOutcome, error) {
	var args summaryArgs
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
		}
	}
	out, err := preview.GetTimelineSummary(st.Timeline, args.Track, args.StartTime, args.EndTime)
	if err != nil {
		return Continue(fmt.Sprintf("Error: %v", err)), nil
	}
	return Continue(out), nil
}

// --- view_video ------------------------------------------------------------

type viewVideoArgs struct {
	SourceFilename string   `json:"source_filename"`
	NumFrames      int      `json:"num_frames"`
	StartTime      float64  `json:"start_time"`
	EndTime        float64  `json:"end_time"`
	Overlays       []string `json:"overlays"`
	SideBySide     bool     `json:"side_by_side"`
}

// ViewVideoTool wraps preview.ViewVideo and uploads every produced frame.
type ViewVideoTool struct {
	Uploader Uploader
	TmpDir   string
}

func (ViewVideoTool) Name() string { return "view_video" }
func (ViewVideoTool) Description() string {
	return "Extract N evenly-spaced frames from a source file in a time range, optionally with overlays."
}
func (ViewVideoTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"source_filename": map[string]interface{}{"type": "string"},
			"num_frames":      map[string]interface{}{"type": "integer"},
			"start_time":      map[string]interface{}{"type": "number"},
			"end_time":        map[string]interface{}{"type": "number"},
			"overlays":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"side_by_side":    map[string]interface{}{"type": "boolean"},
		},
		"required": []string{"source_filename", "num_frames", "start_time", "end_time"},
	}
}

func (t ViewVideoTool) Execute(ctx context.Context, st *session.State, argsJSON string) (ToolOutcome, error) {
	var args viewVideoArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
	}
	sourcePath := filepath.Join(st.AssetsDirectory, args.SourceFilename)
	tmpDir := tmpDirOrDefault(t.TmpDir)
	frames, errs := preview.ViewVideo(preview.ViewVideoArgs{
		SourcePath: sourcePath,
		NumFrames:  args.NumFrames,
		StartTime:  args.StartTime,
		EndTime:    args.EndTime,
		Overlays:   args.Overlays,
		SideBySide: args.SideBySide,
	}, tmpDir)
	return uploadFramesOutcome(ctx, st, t.Uploader, frames, errs, "view_video")
}

// --- view_timeline -----------------------------------------------------

type viewTimelineArgs struct {
	NumFrames        int      `json:"num_frames"`
	StartTime        float64  `json:"start_time"`
	EndTime          float64  `json:"end_time"`
	Overlays         []string `json:"overlays"`
	SideBySide       bool     `json:"side_by_side"`
	SideBySideClipID string   `json:"side_by_side_clip_id"`
}

// ViewTimelineTool wraps preview.ViewTimeline.
type ViewTimelineTool struct {
	Uploader Uploader
	TmpDir   string
}

func (ViewTimelineTool) Name() string { return "view_timeline" }
func (ViewTimelineTool) Description() string {
	return "Render N fully-composited frames from the timeline via the same path used for final export."
}
func (ViewTimelineTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"num_frames":           map[string]interface{}{"type": "integer"},
			"start_time":           map[string]interface{}{"type": "number"},
			"end_time":             map[string]interface{}{"type": "number"},
			"overlays":             map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"side_by_side":         map[string]interface{}{"type": "boolean"},
			"side_by_side_clip_id": map[string]interface{}{"type": "string"},
		},
		"required": []string{"num_frames", "start_time", "end_time"},
	}
}

func (t ViewTimelineTool) Execute(ctx context.Context, st *session.State, argsJSON string) (ToolOutcome, error) {
	var args viewTimelineArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
	}
	tmpDir := tmpDirOrDefault(t.TmpDir)
	frames, errs := preview.ViewTimeline(preview.ViewTimelineArgs{
		Timeline:         st.Timeline,
		NumFrames:        args.NumFrames,
		StartTime:        args.StartTime,
		EndTime:          args.EndTime,
		Overlays:         args.Overlays,
		SideBySide:       args.SideBySide,
		SideBySideClipID: args.SideBySideClipID,
	}, tmpDir)
	return uploadFramesOutcome(ctx, st, t.Uploader, frames, errs, "view_timeline")
}

// --- visualize_timeline --------------------------------------------------

// VisualizeTimelineTool wraps preview.VisualizeTimeline.
type VisualizeTimelineTool struct {
	Uploader Uploader
	TmpDir   string
}

func (VisualizeTimelineTool) Name() string { return "visualize_timeline" }
func (VisualizeTimelineTool) Description() string {
	return "Render a single ruler-plus-lanes image of the entire timeline."
}
func (VisualizeTimelineTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}

func (t VisualizeTimelineTool) Execute(ctx context.Context, st *session.State, _ string) (ToolOutcome, error) {
	tmpDir := tmpDirOrDefault(t.TmpDir)
	path, err := preview.VisualizeTimeline(st.Timeline, tmpDir)
	if err != nil {
		return Continue(fmt.Sprintf("Error: %v", err)), nil
	}
	if t.Uploader == nil {
		return Continue(fmt.Sprintf("Rendered timeline visualization at %s.", path)), nil
	}
	fileID, err := t.Uploader.UploadFile(ctx, path)
	if err != nil {
		return Continue(fmt.Sprintf("Rendered timeline visualization but failed to upload: %v", err)), nil
	}
	st.QueueMultimodalFile(fileID, path)
	return Continue("Rendered and uploaded a timeline visualization."), nil
}

// --- get_asset_info (supplemented, original_source/tools/get_asset_info.py) ---

type assetInfoArgs struct {
	SourceFilename string `json:"source_filename"`
}

// GetAssetInfoTool probes a single named asset without touching the
// timeline, matching the original agent's pre-add_clips reconnaissance
// step not covered by the other preview tools.
type GetAssetInfoTool struct{}

func (GetAssetInfoTool) Name() string        { return "get_asset_info" }
func (GetAssetInfoTool) Description() string { return "Probe a single asset file for duration, resolution, frame rate, and audio presence." }
func (GetAssetInfoTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"source_filename": map[string]interface{}{"type": "string"}},
		"required":   []string{"source_filename"},
	}
}

func (GetAssetInfoTool) Execute(_ context.Context, st *session.State, argsJSON string) (ToolOutcome, error) {
	var args assetInfoArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
	}
	path := filepath.Join(st.AssetsDirectory, args.SourceFilename)
	if _, err := os.Stat(path); err != nil {
		return Continue(fmt.Sprintf("Error: %s not found in assets directory", args.SourceFilename)), nil
	}
	info := timeutil.ProbeMediaFile(path)
	if info.Error != "" {
		return Continue(fmt.Sprintf("Error: %s", info.Error)), nil
	}
	return Continue(fmt.Sprintf(
		"%s: duration=%s, %dx%d, %.3f fps, has_audio=%v",
		args.SourceFilename, timeutil.SecondsToHMS(info.DurationSec), info.Width, info.Height, info.FrameRate, info.HasAudio,
	)), nil
}

// --- list_assets (supplemented, original_source/tools/list_assets.py) -------

// ListAssetsTool lists the assets directory's contents so the agent can
// discover source filenames without guessing.
type ListAssetsTool struct{}

func (ListAssetsTool) Name() string        { return "list_assets" }
func (ListAssetsTool) Description() string { return "List the files available in the session's assets directory." }
func (ListAssetsTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}

func (ListAssetsTool) Execute(_ context.Context, st *session.State, _ string) (ToolOutcome, error) {
	entries, err := os.ReadDir(st.AssetsDirectory)
	if err != nil {
		return Continue(fmt.Sprintf("Error: %v", err)), nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return Continue("The assets directory is empty."), nil
	}
	return Continue("Assets:\n- " + strings.Join(names, "\n- ")), nil
}

// --- shared helpers --------------------------------------------------------

func tmpDirOrDefault(dir string) string {
	if dir != "" {
		return dir
	}
	return os.TempDir()
}

func uploadFramesOutcome(ctx context.Context, st *session.State, up Uploader, frames []preview.Frame, errs []error, toolName string) (ToolOutcome, error) {
	if len(frames) == 0 && len(errs) > 0 {
		return Continue(fmt.Sprintf("Error: %s produced no frames: %v", toolName, errs[0])), nil
	}
	uploaded := 0
	if up != nil {
		for _, f := range frames {
			fileID, err := up.UploadFile(ctx, f.Path)
			if err != nil {
				continue
			}
			st.QueueMultimodalFile(fileID, f.Path)
			uploaded++
		}
	}
	msg := fmt.Sprintf("%s produced %d frame(s), uploaded %d.", toolName, len(frames), uploaded)
	if len(errs) > 0 {
		msg += fmt.Sprintf(" %d frame(s) failed.", len(errs))
	}
	return Continue(msg), nil
}
