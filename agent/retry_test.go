package agent

import (
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestParseWaitTimeExtractsSeconds(t *testing.T) {
	wait, ok := parseWaitTime("rate limit exceeded, please try again in 3.5s")
	assert.True(t, ok)
	assert.Equal(t, 3500*time.Millisecond, wait)
}

func TestParseWaitTimeExtractsMilliseconds(t *testing.T) {
	wait, ok := parseWaitTime("Please try again in 250ms.")
	assert.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, wait)
}

func TestParseWaitTimeNoHint(t *testing.T) {
	_, ok := parseWaitTime("internal server error")
	assert.False(t, ok)
}

func TestBackoffDoublesAndAddsJitter(t *testing.T) {
	first := backoff(1)
	second := backoff(2)
	assert.GreaterOrEqual(t, first, time.Second)
	assert.Less(t, first, 2*time.Second)
	assert.GreaterOrEqual(t, second, 2*time.Second)
	assert.Less(t, second, 3*time.Second)
}

func TestClassifyRateLimitVsFatal(t *testing.T) {
	rateLimited := &openai.APIError{HTTPStatusCode: 429, Message: "try again in 1s"}
	assert.Equal(t, errClassRateLimit, classify(rateLimited))

	serverErr := &openai.APIError{HTTPStatusCode: 503}
	assert.Equal(t, errClassTransient, classify(serverErr))

	badRequest := &openai.APIError{HTTPStatusCode: 400}
	assert.Equal(t, errClassFatal, classify(badRequest))
}
