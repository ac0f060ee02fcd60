// Package agent implements the conversational turn executor (C7): the
// retry-aware loop that drives an LLM through a fixed catalog of editing
// tools until one of them raises the terminal "job finished" signal.
//
// Every tool returns a ToolOutcome instead of raising an exception to
// terminate the loop instead of non-local control
// flow out explicitly as something a systems language should avoid, so
// "finish" is modeled as a result variant the executor branches on.
package agent

import (
	"context"

	"codec/session"
)

// FinishResult is the payload a terminal tool call hands back to the
// caller of RunToCompletion: a rendered video, an exchange-format
// timeline, or a plain status message.
type FinishResult struct {
	Status     string
	Message    string
	OutputPath string
}

// ToolOutcome is the result of one tool invocation: either the loop
// continues with Text threaded back to the model, or the job is Finished
// and Result carries the terminal payload.
type ToolOutcome struct {
	Text     string
	Finished bool
	Result   *FinishResult
}

// Continue builds a non-terminal outcome: text travels back to the model
// as the tool-call result.
func Continue(text string) ToolOutcome {
	return ToolOutcome{Text: text}
}

// Finish builds a terminal outcome that unwinds RunToCompletion.
func Finish(result FinishResult) ToolOutcome {
	return ToolOutcome{Finished: true, Result: &result}
}

// Tool is one entry in the fixed editing-tool catalog. ArgsSchema returns a
// JSON-schema-compatible description of Execute's expected argsJSON shape;
// the executor serializes it once per turn for the provider's
// function-calling feature.
type Tool interface {
	Name() string
	Description() string
	ArgsSchema() map[string]interface{}
	Execute(ctx context.Context, st *session.State, argsJSON string) (ToolOutcome, error)
}

// Registry is an explicit name -> Tool map, replacing directory-introspection
// discovery with a
// constructor-time registration list in a systems language.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, keyed by its own Name(). Registering a name twice
// replaces the earlier entry but keeps its original position in List().
func (r *Registry) Register(t Tool) {
	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns every registered tool in registration order, for stable
// schema serialization.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}
