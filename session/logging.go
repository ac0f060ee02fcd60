package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ContextLogger writes two append-only files per job: a raw JSONL event
// stream and a narrative text transcript. Every write is flushed
// immediately so a crash mid-session leaves a readable partial log.
type ContextLogger struct {
	jobID  string
	raw    *os.File
	readable *os.File
}

// NewContextLogger opens (creating if necessary) "<jobID>.agent.raw.log" and
// "<jobID>.agent.readable.log" under logsDir, in append mode.
func NewContextLogger(jobID, logsDir string) (*ContextLogger, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	raw, err := os.OpenFile(filepath.Join(logsDir, jobID+".agent.raw.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	readable, err := os.OpenFile(filepath.Join(logsDir, jobID+".agent.readable.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return &ContextLogger{jobID: jobID, raw: raw, readable: readable}, nil
}

func (l *ContextLogger) writeRaw(event string, fields map[string]interface{}) {
	rec := map[string]interface{}{"event": event, "timestamp": time.Now().UTC().Format(time.RFC3339Nano)}
	for k, v := range fields {
		rec[k] = v
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	l.raw.Write(append(data, '\n'))
	l.raw.Sync()
}

func (l *ContextLogger) writeReadable(text string) {
	l.readable.WriteString(text)
	l.readable.Sync()
}

// ToolDescriptor is the minimal shape logged for each tool at session
// setup: its name, description, and argument schema.
type ToolDescriptor struct {
	Name        string
	Description string
	Parameters  interface{}
}

// LogInitialSetup records the job ID, model, system prompt, and tool
// catalog at the start of a session.
func (l *ContextLogger) LogInitialSetup(jobID, model, systemPrompt string, tools []ToolDescriptor) {
	l.writeRaw("initial_setup", map[string]interface{}{
		"job_id": jobID, "model": model, "system_prompt": systemPrompt, "tools": tools,
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Job ID: %s\nModel: %s\nStart Time: %s\n\n%s\n\nTools:\n", jobID, model, time.Now().UTC().Format(time.RFC3339), systemPrompt)
	for _, t := range tools {
		params, _ := json.MarshalIndent(t.Parameters, "  ", "  ")
		fmt.Fprintf(&b, "- %s: %s\n  %s\n", t.Name, t.Description, string(params))
	}
	l.writeReadable(b.String())
}

// LogUserPrompt records a user-supplied prompt for the current turn.
func (l *ContextLogger) LogUserPrompt(prompt string) {
	l.writeRaw("user_prompt", map[string]interface{}{"prompt": prompt})
	l.writeReadable(fmt.Sprintf("\n\nUser: %s", prompt))
}

// LogModelText records one text part of a model's response.
func (l *ContextLogger) LogModelText(text string) {
	l.writeRaw("model_output_item", map[string]interface{}{"type": "message", "text": text})
	l.writeReadable(fmt.Sprintf("\n\nModel: %s", text))
}

// LogModelToolCall records one tool call the model requested.
func (l *ContextLogger) LogModelToolCall(name, argumentsJSON string) {
	l.writeRaw("model_output_item", map[string]interface{}{"type": "function_call", "name": name, "arguments": argumentsJSON})
	pretty := prettyJSON(argumentsJSON)
	l.writeReadable(fmt.Sprintf("\n\n[Tool Call]\n  Name: %s\n  Arguments:\n%s", name, pretty))
}

// LogToolResult records a tool's output string.
func (l *ContextLogger) LogToolResult(toolName, output string) {
	l.writeRaw("tool_result", map[string]interface{}{"tool_name": toolName, "output": output})
	l.writeReadable(fmt.Sprintf("\n\n  [Tool Result: %s]\n  %s", toolName, indent(output, "  ")))
}

// LogRateLimitHit records a rate-limit retry.
func (l *ContextLogger) LogRateLimitHit(waitSec float64, attempt int) {
	l.writeRaw("rate_limit_hit", map[string]interface{}{"wait_sec": waitSec, "attempt": attempt})
}

// LogServerErrorRetry records a transient-server-error retry.
func (l *ContextLogger) LogServerErrorRetry(waitSec float64, attempt int, detail string) {
	l.writeRaw("server_error_retry", map[string]interface{}{"wait_sec": waitSec, "attempt": attempt, "detail": detail})
}

// LogMultimodalRequest records the synthetic user message carrying uploaded
// file references into the next turn.
func (l *ContextLogger) LogMultimodalRequest(fileIDs []string) {
	l.writeRaw("multimodal_request", map[string]interface{}{"file_ids": fileIDs})
}

// LogSessionEnd writes the session_end event and footer, then closes both
// files.
func (l *ContextLogger) LogSessionEnd(status string) error {
	l.writeRaw("session_end", map[string]interface{}{"status": status})
	l.writeReadable(fmt.Sprintf("\n\n--- Session ended: %s ---\n", status))
	return l.Close()
}

// Close closes both log files.
func (l *ContextLogger) Close() error {
	err1 := l.raw.Close()
	err2 := l.readable.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func prettyJSON(s string) string {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s
	}
	return string(out)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
