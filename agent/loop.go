package agent

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"codec/session"
)

// ChatClient is the narrow surface of *openai.Client the loop depends on,
// so tests can substitute a fake without a live API key. *openai.Client
// satisfies this interface as-is.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Loop is the retry-aware turn executor (C7): it sends history plus the
// tool catalog to the provider each turn, dispatches every returned tool
// call in order, threads uploaded multimodal references into the next
// turn, and stops on the finish_job sentinel or an empty (no-tool-call)
// response.
//
// Continuation note (§4.8, Open decision): the stable go-openai
// chat-completions surface this module targets has no
// previous_response_id field, so each turn resends the full accumulated
// st.History rather than only new input; st.LastResponseID is still
// populated from each response's ID for the session log's audit trail,
// keeping every response's ID for the audit trail without
// depending on an unreleased Responses-API binding.
type Loop struct {
	Client       ChatClient
	Registry     *Registry
	Model        string
	SystemPrompt string
	JobID        string
}

// sleepFunc is overridden in tests to avoid real sleeps.
var sleepFunc = time.Sleep

// RunToCompletion drives st through turns until a tool raises finish_job or
// a response carries no tool calls. If st.History does not yet start with a
// system message, the system prompt is placed at its head first (a caller
// may already have appended the user's prompt). logger may be nil.
func (l *Loop) RunToCompletion(ctx context.Context, st *session.State, logger *session.ContextLogger) (*FinishResult, error) {
	if len(st.History) == 0 || st.History[0].Role != openai.ChatMessageRoleSystem {
		st.History = append([]openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: l.SystemPrompt,
		}}, st.History...)
		if logger != nil {
			logger.LogInitialSetup(l.JobID, l.Model, l.SystemPrompt, l.toolDescriptors())
		}
	}

	for {
		resp, err := l.callWithRetry(ctx, st, logger)
		if err != nil {
			return nil, err
		}
		st.LastResponseID = resp.ID
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("provider returned no choices")
		}
		message := resp.Choices[0].Message
		st.History = append(st.History, message)
		if message.Content != "" && logger != nil {
			logger.LogModelText(message.Content)
		}

		if len(message.ToolCalls) == 0 {
			return nil, nil
		}

		for _, call := range message.ToolCalls {
			if logger != nil {
				logger.LogModelToolCall(call.Function.Name, call.Function.Arguments)
			}
			outcome := l.dispatch(ctx, st, call)
			if logger != nil {
				logger.LogToolResult(call.Function.Name, outcome.Text)
			}
			st.History = append(st.History, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    outcome.Text,
				ToolCallID: call.ID,
			})
			if outcome.Finished {
				if logger != nil {
					logger.LogSessionEnd(outcome.Result.Status)
				}
				return outcome.Result, nil
			}
		}

		l.threadMultimodalFiles(st, logger)
	}
}

// dispatch executes one tool call, converting an unknown tool name or a Go
// error into a recoverable tool-result string rather than propagating it —
// validation/I-O failures never
// propagate out of a turn.
func (l *Loop) dispatch(ctx context.Context, st *session.State, call openai.ToolCall) ToolOutcome {
	tool, ok := l.Registry.Get(call.Function.Name)
	if !ok {
		return Continue(fmt.Sprintf("Error: unknown tool %q", call.Function.Name))
	}
	outcome, err := tool.Execute(ctx, st, call.Function.Arguments)
	if err != nil {
		return Continue(fmt.Sprintf("Error: %v", err))
	}
	return outcome
}

// threadMultimodalFiles appends a single synthetic user message carrying
// any newly uploaded file references.
func (l *Loop) threadMultimodalFiles(st *session.State, logger *session.ContextLogger) {
	files := st.DrainMultimodalFiles()
	if len(files) == 0 {
		return
	}
	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: "New visual/audio references from the tool calls above, for you to inspect:",
	}}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.FileID)
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: "file-id://" + f.FileID},
		})
	}
	if logger != nil {
		logger.LogMultimodalRequest(ids)
	}
	st.History = append(st.History, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	})
}

// callWithRetry sends the current history to the provider, retrying
// rate-limit and transient-server errors with the backoff policy in
// retry.go, up to maxAttempts. Other 4xx errors are fatal for the turn.
func (l *Loop) callWithRetry(ctx context.Context, st *session.State, logger *session.ContextLogger) (openai.ChatCompletionResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:    l.Model,
		Messages: st.History,
		Tools:    l.openAITools(),
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := l.Client.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		switch classify(err) {
		case errClassRateLimit:
			wait, ok := parseWaitTime(err.Error())
			if ok {
				wait += 500 * time.Millisecond
			} else {
				wait = backoff(attempt)
			}
			if logger != nil {
				logger.LogRateLimitHit(wait.Seconds(), attempt)
			}
			sleepFunc(wait)
		case errClassTransient:
			wait := backoff(attempt)
			if logger != nil {
				logger.LogServerErrorRetry(wait.Seconds(), attempt, err.Error())
			}
			sleepFunc(wait)
		default:
			return openai.ChatCompletionResponse{}, fmt.Errorf("fatal provider error: %w", err)
		}
	}
	return openai.ChatCompletionResponse{}, fmt.Errorf("exhausted %d attempts: %w", maxAttempts, lastErr)
}

func (l *Loop) toolDescriptors() []session.ToolDescriptor {
	tools := l.Registry.List()
	out := make([]session.ToolDescriptor, 0, len(tools))
	for _, t := range tools {
		out = append(out, session.ToolDescriptor{Name: t.Name(), Description: t.Description(), Parameters: t.ArgsSchema()})
	}
	return out
}

// openAITools converts the registry into the []openai.Tool shape the
// provider's function-calling feature expects.
func (l *Loop) openAITools() []openai.Tool {
	tools := l.Registry.List()
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.ArgsSchema(),
			},
		})
	}
	return out
}
