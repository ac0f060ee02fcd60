package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"codec/export"
	"codec/render"
	"codec/session"
)

// --- render_video ------------------------------------------------------

type renderVideoArgs struct {
	OutputFilename string `json:"output_filename"`
}

// RenderVideoTool drives C5's final-render path, translating the current
// timeline to MLT XML and invoking melt.
type RenderVideoTool struct {
	OutputDir string
	TmpDir    string
}

func (RenderVideoTool) Name() string        { return "render_video" }
func (RenderVideoTool) Description() string { return "Render the current timeline to a final MP4 via melt." }
func (RenderVideoTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"output_filename": map[string]interface{}{"type": "string"}},
		"required":   []string{"output_filename"},
	}
}

func (t RenderVideoTool) Execute(_ context.Context, st *session.State, argsJSON string) (ToolOutcome, error) {
	var args renderVideoArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
	}
	outPath := filepath.Join(outputDirOrDefault(t.OutputDir, st), args.OutputFilename)
	if err := render.FinalRender(st.Timeline, tmpDirOrDefault(t.TmpDir), outPath); err != nil {
		return Continue(fmt.Sprintf("Error: render failed: %v", err)), nil
	}
	return Continue(fmt.Sprintf("Rendered final video to %s.", outPath)), nil
}

// --- export_timeline -----------------------------------------------------

type exportTimelineArgs struct {
	OutputFilename string `json:"output_filename"`
	Consolidate    bool   `json:"consolidate"`
}

// ExportTimelineTool drives C6, emitting an OTIO or FCP7-XML exchange file.
type ExportTimelineTool struct {
	OutputDir string
}

func (ExportTimelineTool) Name() string { return "export_timeline" }
func (ExportTimelineTool) Description() string {
	return "Emit an OTIO (.otio) or FCP7-XML (.xml) exchange file for the current timeline, optionally consolidating media."
}
func (ExportTimelineTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"output_filename": map[string]interface{}{"type": "string"},
			"consolidate":     map[string]interface{}{"type": "boolean"},
		},
		"required": []string{"output_filename"},
	}
}

func (t ExportTimelineTool) Execute(_ context.Context, st *session.State, argsJSON string) (ToolOutcome, error) {
	var args exportTimelineArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
	}
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	path, err := export.ConsolidateAndExport(st.Timeline, outputDirOrDefault(t.OutputDir, st), args.OutputFilename, args.Consolidate, timestamp)
	if err != nil {
		return Continue(fmt.Sprintf("Error: export failed: %v", err)), nil
	}
	return Continue(fmt.Sprintf("Exported timeline to %s.", path)), nil
}

// --- finish_job ------------------------------------------------------------

type finishJobArgs struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	OutputPath string `json:"output_path"`
}

// FinishJobTool is the terminal tool: raising it unwinds RunToCompletion
// with the final {status, message, output_path} payload.
type FinishJobTool struct{}

func (FinishJobTool) Name() string        { return "finish_job" }
func (FinishJobTool) Description() string { return "Terminate the editing session with a final status, message, and optional output path." }
func (FinishJobTool) ArgsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"status":      map[string]interface{}{"type": "string"},
			"message":     map[string]interface{}{"type": "string"},
			"output_path": map[string]interface{}{"type": "string"},
		},
		"required": []string{"status", "message"},
	}
}

func (FinishJobTool) Execute(_ context.Context, _ *session.State, argsJSON string) (ToolOutcome, error) {
	var args finishJobArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Continue(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
	}
	return Finish(FinishResult{Status: args.Status, Message: args.Message, OutputPath: args.OutputPath}), nil
}

func outputDirOrDefault(dir string, st *session.State) string {
	if dir != "" {
		return dir
	}
	return filepath.Join(st.AssetsDirectory, "..", "output")
}
