package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextLoggerCreatesBothLogFiles(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewContextLogger("job-1", dir)
	require.NoError(t, err)
	defer logger.Close()

	assert.FileExists(t, filepath.Join(dir, "job-1.agent.raw.log"))
	assert.FileExists(t, filepath.Join(dir, "job-1.agent.readable.log"))
}

func TestLoggingWritesRawEventsAndReadableNarrative(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewContextLogger("job-2", dir)
	require.NoError(t, err)

	logger.LogInitialSetup("job-2", "gpt-5", "system prompt", []ToolDescriptor{
		{Name: "add_clips", Description: "add clips", Parameters: map[string]string{"clip_id": "string"}},
	})
	logger.LogUserPrompt("cut the intro to 10 seconds")
	logger.LogModelToolCall("add_clips", `{"clips":[]}`)
	logger.LogToolResult("add_clips", "Added 0 clips.")
	logger.LogRateLimitHit(1.5, 1)
	require.NoError(t, logger.LogSessionEnd("success"))

	raw, err := os.ReadFile(filepath.Join(dir, "job-2.agent.raw.log"))
	require.NoError(t, err)
	rawStr := string(raw)
	assert.Contains(t, rawStr, `"event":"initial_setup"`)
	assert.Contains(t, rawStr, `"event":"user_prompt"`)
	assert.Contains(t, rawStr, `"event":"model_output_item"`)
	assert.Contains(t, rawStr, `"event":"tool_result"`)
	assert.Contains(t, rawStr, `"event":"rate_limit_hit"`)
	assert.Contains(t, rawStr, `"event":"session_end"`)

	readable, err := os.ReadFile(filepath.Join(dir, "job-2.agent.readable.log"))
	require.NoError(t, err)
	readableStr := string(readable)
	assert.Contains(t, readableStr, "Job ID: job-2")
	assert.Contains(t, readableStr, "User: cut the intro to 10 seconds")
	assert.Contains(t, readableStr, "[Tool Call]")
	assert.Contains(t, readableStr, "Name: add_clips")
	assert.Contains(t, readableStr, "[Tool Result: add_clips]")
	assert.Contains(t, readableStr, "Session ended: success")
}

func TestIndentPrefixesEveryLine(t *testing.T) {
	out := indent("line one\nline two", "  ")
	assert.Equal(t, "  line one\n  line two", out)
}
