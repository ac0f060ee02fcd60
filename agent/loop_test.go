package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec/session"
)

// fakeChatClient replays a fixed sequence of responses, one per call,
// regardless of the request contents — enough to drive the loop through a
// tool-call turn and a terminal turn without a live provider.
type fakeChatClient struct {
	responses []openai.ChatCompletionResponse
	errs      []error
	calls     int
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return f.responses[i], nil
}

func toolCallMessage(name, argsJSON string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleAssistant,
		ToolCalls: []openai.ToolCall{{
			ID:   "call_1",
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      name,
				Arguments: argsJSON,
			},
		}},
	}
}

func TestRunToCompletionStopsOnEmptyToolCalls(t *testing.T) {
	client := &fakeChatClient{responses: []openai.ChatCompletionResponse{
		{ID: "r1", Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleAssistant, Content: "Here is a plan.",
		}}}},
	}}
	registry := NewRegistry()
	loop := &Loop{Client: client, Registry: registry, Model: "gpt-5", SystemPrompt: "you edit video"}
	st := session.New(t.TempDir())
	st.History = append(st.History, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "trim the intro"})

	result, err := loop.RunToCompletion(context.Background(), st, nil)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "r1", st.LastResponseID)
}

func TestRunToCompletionDispatchesToolAndFinishes(t *testing.T) {
	finishArgs, _ := json.Marshal(map[string]string{"status": "ok", "message": "done", "output_path": "/tmp/out.mp4"})
	client := &fakeChatClient{responses: []openai.ChatCompletionResponse{
		{ID: "r1", Choices: []openai.ChatCompletionChoice{{Message: toolCallMessage("finish_job", string(finishArgs))}}},
	}}
	registry := NewRegistry()
	registry.Register(FinishJobTool{})
	loop := &Loop{Client: client, Registry: registry, Model: "gpt-5", SystemPrompt: "you edit video"}
	st := session.New(t.TempDir())
	st.History = append(st.History, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "finish up"})

	result, err := loop.RunToCompletion(context.Background(), st, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "/tmp/out.mp4", result.OutputPath)
}

func TestDispatchUnknownToolIsRecoverable(t *testing.T) {
	loop := &Loop{Registry: NewRegistry()}
	st := session.New(t.TempDir())
	outcome := loop.dispatch(context.Background(), st, openai.ToolCall{
		Function: openai.FunctionCall{Name: "not_a_real_tool", Arguments: "{}"},
	})
	assert.False(t, outcome.Finished)
	assert.Contains(t, outcome.Text, "unknown tool")
}

func TestCallWithRetryRetriesRateLimitThenSucceeds(t *testing.T) {
	old := sleepFunc
	var slept []time.Duration
	sleepFunc = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleepFunc = old })

	client := &fakeChatClient{
		errs: []error{&openai.APIError{HTTPStatusCode: 429, Message: "try again in 10ms"}},
		responses: []openai.ChatCompletionResponse{
			{},
			{ID: "r2", Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}}}},
		},
	}
	loop := &Loop{Client: client, Registry: NewRegistry(), Model: "gpt-5"}
	st := session.New(t.TempDir())
	st.History = append(st.History, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "go"})

	resp, err := loop.callWithRetry(context.Background(), st, nil)
	require.NoError(t, err)
	assert.Equal(t, "r2", resp.ID)
	require.Len(t, slept, 1)
	assert.Equal(t, 10*time.Millisecond+500*time.Millisecond, slept[0])
}
