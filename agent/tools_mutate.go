package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"codec/mutate"
	"codec/preview"
	"codec/session"
	"codec/timeline"
	"codec/timeutil"
)

// --- add_clips ---------------------------------------------------------

type addClipsArgs struct {
	Clips []struct {
		ClipID            string `json:"clip_id"`
		SourceFilename    string `json:"source_filename"`
		SourceIn          string `json:"source_in"`
		SourceOut         string `json:"source_out"`
		VideoTrack        string `json:"video_track"`
		AudioTrack        string `json:"audio_track"`
		TimelineStart     string `json:"timeline_start"`
		InsertionBehavior string `json:"insertion_behavior"`
		Description       string `json:"description"`
	} `json:"clips"`
}

// AddClipsTool wraps mutate.AddClips.
type AddClipsTool struct{}

func (AddClipsTool) Name() string { return "add_clips" }
func (AddClipsTool) Description() string {
	return "Place one or more source-media regions onto tracks, with append/insert/replace placement semantics."
}
func (AddClipsTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"clips": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"clip_id":            map[string]interface{}{"type": "string"},
						"source_filename":    map[string]interface{}{"type": "string"},
						"source_in":          map[string]interface{}{"type": "string", "description": "HH:MM:SS.mmm"},
						"source_out":         map[string]interface{}{"type": "string", "description": "HH:MM:SS.mmm"},
						"video_track":        map[string]interface{}{"type": "string", "description": "e.g. V1"},
						"audio_track":        map[string]interface{}{"type": "string", "description": "e.g. A1"},
						"timeline_start":     map[string]interface{}{"type": "string", "description": "HH:MM:SS.mmm"},
						"insertion_behavior": map[string]interface{}{"type": "string", "enum": []string{"append", "insert", "replace"}},
						"description":        map[string]interface{}{"type": "string"},
					},
					"required": []string{"clip_id", "source_filename", "source_in", "source_out", "insertion_behavior"},
				},
			},
		},
		"required": []string{"clips"},
	}
}

func (AddClipsTool) Execute(_ context.Context, st *session.State, argsJSON string) (ToolOutcome, error) {
	var args addClipsArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
	}
	req := make([]mutate.ClipToAdd, 0, len(args.Clips))
	for _, c := range args.Clips {
		req = append(req, mutate.ClipToAdd{
			ClipID:            c.ClipID,
			SourceFilename:    c.SourceFilename,
			SourceIn:          c.SourceIn,
			SourceOut:         c.SourceOut,
			VideoTrack:        c.VideoTrack,
			AudioTrack:        c.AudioTrack,
			TimelineStart:     c.TimelineStart,
			InsertionBehavior: c.InsertionBehavior,
			Description:       c.Description,
		})
	}
	next, err := mutate.AddClips(st.Timeline, st.AssetsDirectory, req)
	if err != nil {
		return Continue(fmt.Sprintf("Error: %v", err)), nil
	}
	st.Timeline = next
	return Continue(fmt.Sprintf("Added %d clip placement(s). Timeline duration is now %s.",
		len(req), timeutil.SecondsToHMS(next.Duration()))), nil
}

// --- split_clip ----------------------------------------------------------

type splitClipArgs struct {
	ClipID    string `json:"clip_id"`
	SplitTime string `json:"split_time"`
}

// SplitClipTool wraps mutate.SplitClip.
type SplitClipTool struct{}

func (SplitClipTool) Name() string        { return "split_clip" }
func (SplitClipTool) Description() string { return "Divide a clip into two clips at a timeline time." }
func (SplitClipTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"clip_id":    map[string]interface{}{"type": "string"},
			"split_time": map[string]interface{}{"type": "string", "description": "HH:MM:SS.mmm, a timeline time"},
		},
		"required": []string{"clip_id", "split_time"},
	}
}

func (SplitClipTool) Execute(_ context.Context, st *session.State, argsJSON string) (ToolOutcome, error) {
	var args splitClipArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
	}
	splitSec, err := timeutil.HMSToSeconds(args.SplitTime)
	if err != nil {
		return Continue(fmt.Sprintf("Error: invalid split_time: %v", err)), nil
	}
	next, err := mutate.SplitClip(st.Timeline, args.ClipID, splitSec)
	if err != nil {
		return Continue(fmt.Sprintf("Error: %v", err)), nil
	}
	st.Timeline = next
	return Continue(fmt.Sprintf("Split %q into %s_p1 and %s_p2.", args.ClipID, args.ClipID, args.ClipID)), nil
}

// --- delete_clips ----------------------------------------------------------

type deleteClipsArgs struct {
	ClipIDs []string `json:"clip_ids"`
	Ripple  bool     `json:"ripple"`
}

// DeleteClipsTool wraps mutate.DeleteClips.
type DeleteClipsTool struct{}

func (DeleteClipsTool) Name() string { return "delete_clips" }
func (DeleteClipsTool) Description() string {
	return "Remove one or more clips, optionally rippling later clips on the same track earlier."
}
func (DeleteClipsTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"clip_ids": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"ripple":   map[string]interface{}{"type": "boolean"},
		},
		"required": []string{"clip_ids"},
	}
}

func (DeleteClipsTool) Execute(_ context.Context, st *session.State, argsJSON string) (ToolOutcome, error) {
	var args deleteClipsArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
	}
	next, err := mutate.DeleteClips(st.Timeline, args.ClipIDs, args.Ripple)
	if err != nil {
		return Continue(fmt.Sprintf("Error: %v", err)), nil
	}
	st.Timeline = next
	return Continue(fmt.Sprintf("Deleted %d clip(s).", len(args.ClipIDs))), nil
}

// --- transform ----------------------------------------------------------

type transformArgs struct {
	Transformations []json.RawMessage `json:"transformations"`
}

type transformationFields struct {
	ClipID      string   `json:"clip_id"`
	TimelineSec *float64 `json:"timeline_sec"`
	Position    *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"position"`
	Scale       *float64 `json:"scale"`
	Rotation    *float64 `json:"rotation"`
	Opacity     *float64 `json:"opacity"`
	AnchorPoint *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"anchor_point"`
	Interpolation string `json:"interpolation"`
}

// clearableProperties maps each transform property's JSON key to the
// mutate.TransformProperties.Clear key it sets when the caller sends an
// explicit `null`, distinguishing that from simply omitting the property.
var clearableProperties = map[string]string{
	"position":     "Position",
	"scale":        "Scale",
	"rotation":     "Rotation",
	"opacity":      "Opacity",
	"anchor_point": "AnchorPoint",
}

// explicitNulls inspects one transformation's raw JSON object and reports
// which clearable properties were present with a literal `null` value, as
// opposed to omitted entirely.
func explicitNulls(raw json.RawMessage) (map[string]bool, error) {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil {
		return nil, err
	}
	clear := map[string]bool{}
	for jsonKey, structKey := range clearableProperties {
		if v, ok := present[jsonKey]; ok && string(v) == "null" {
			clear[structKey] = true
		}
	}
	return clear, nil
}

// TransformTool wraps mutate.Transform and additionally produces the
// Source-vs-Program side-by-side preview by
// reusing the view_timeline rendering path for the last-affected clip.
type TransformTool struct {
	Uploader Uploader
	TmpDir   string
}

func (TransformTool) Name() string { return "transform" }
func (TransformTool) Description() string {
	return "Apply keyframed affine transformations (position, scale, rotation, opacity, anchor) to clips."
}
func (TransformTool) ArgsSchema() map[string]interface{} {
	point := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"transformations": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"clip_id":       map[string]interface{}{"type": "string"},
						"timeline_sec":  map[string]interface{}{"type": "number"},
						"position":      point,
						"scale":         map[string]interface{}{"type": "number"},
						"rotation":      map[string]interface{}{"type": "number"},
						"opacity":       map[string]interface{}{"type": "number"},
						"anchor_point":  point,
						"interpolation": map[string]interface{}{"type": "string", "enum": []string{"linear", "easy_ease", "hold"}},
					},
					"required": []string{"clip_id"},
				},
			},
		},
		"required": []string{"transformations"},
	}
}

func (tool TransformTool) Execute(ctx context.Context, st *session.State, argsJSON string) (ToolOutcome, error) {
	var args transformArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
	}
	reqs := make([]mutate.Transformation, 0, len(args.Transformations))
	for _, raw := range args.Transformations {
		var tr transformationFields
		if err := json.Unmarshal(raw, &tr); err != nil {
			return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
		}
		clear, err := explicitNulls(raw)
		if err != nil {
			return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
		}

		props := mutate.TransformProperties{Scale: tr.Scale, Rotation: tr.Rotation, Opacity: tr.Opacity, Clear: clear}
		if tr.Position != nil {
			props.Position = &timeline.Point{X: tr.Position.X, Y: tr.Position.Y}
		}
		if tr.AnchorPoint != nil {
			props.AnchorPoint = &timeline.Point{X: tr.AnchorPoint.X, Y: tr.AnchorPoint.Y}
		}
		interp := timeline.Interpolation(tr.Interpolation)
		if interp == "" {
			interp = timeline.InterpolationLinear
		}
		reqs = append(reqs, mutate.Transformation{
			ClipID:        tr.ClipID,
			TimelineSec:   tr.TimelineSec,
			Properties:    props,
			Interpolation: interp,
		})
	}
	next, err := mutate.Transform(st.Timeline, reqs)
	if err != nil {
		return Continue(fmt.Sprintf("Error: %v", err)), nil
	}
	st.Timeline = next

	last := reqs[len(reqs)-1]
	affectedClip := next.FindClipByID(last.ClipID)
	message := fmt.Sprintf("Applied %d transformation(s).", len(reqs))
	if affectedClip != nil && tool.Uploader != nil {
		affectedTime := affectedClip.TimelineStartSec
		if last.TimelineSec != nil {
			affectedTime = *last.TimelineSec
		}
		if previewPath, perr := tool.renderPreview(next, affectedClip.ClipID, affectedTime); perr == nil {
			if fileID, uerr := tool.Uploader.UploadFile(ctx, previewPath); uerr == nil {
				st.QueueMultimodalFile(fileID, previewPath)
				message += " Uploaded a Source Monitor vs Program Monitor preview for verification."
			}
		}
	}
	return Continue(message), nil
}

// renderPreview produces the mandated Source-vs-Program side-by-side image
// for the clip/time a transform touched, reusing view_timeline's rendering
// path so the preview is bit-faithful to the same compositing the renderer
// would produce.
func (tool TransformTool) renderPreview(tl *timeline.Timeline, clipID string, atSec float64) (string, error) {
	tmpDir := tool.TmpDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", err
	}
	frames, errs := preview.ViewTimeline(preview.ViewTimelineArgs{
		Timeline:         tl,
		NumFrames:        1,
		StartTime:        atSec,
		EndTime:          atSec,
		SideBySide:       true,
		SideBySideClipID: clipID,
	}, tmpDir)
	if len(frames) == 0 {
		if len(errs) > 0 {
			return "", errs[0]
		}
		return "", fmt.Errorf("no preview frame produced")
	}
	return frames[0].Path, nil
}
