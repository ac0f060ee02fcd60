package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"codec/session"
)

type stubTool struct{ name string }

func (s stubTool) Name() string                          { return s.name }
func (s stubTool) Description() string                   { return "stub" }
func (s stubTool) ArgsSchema() map[string]interface{}     { return map[string]interface{}{} }
func (s stubTool) Execute(context.Context, *session.State, string) (ToolOutcome, error) {
	return Continue("ok"), nil
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{"b"})
	r.Register(stubTool{"a"})
	r.Register(stubTool{"b"}) // re-register keeps original position

	names := make([]string, 0, 3)
	for _, t := range r.List() {
		names = append(names, t.Name())
	}
	assert.Equal(t, []string{"b", "a"}, names)
}

func TestRegistryGetMissing(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("nonexistent")
	assert.False(t, ok)
}

func TestContinueAndFinishOutcomes(t *testing.T) {
	c := Continue("hello")
	assert.False(t, c.Finished)
	assert.Equal(t, "hello", c.Text)

	f := Finish(FinishResult{Status: "ok"})
	assert.True(t, f.Finished)
	assert.Equal(t, "ok", f.Result.Status)
}
