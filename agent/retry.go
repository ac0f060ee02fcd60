package agent

import (
	"errors"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// maxAttempts bounds retries per turn.
const maxAttempts = 6

var waitHintPattern = regexp.MustCompile(`(?i)try again in\s+([\d.]+)\s*(ms|s)`)

// parseWaitTime extracts a "Please try again in Xs|Xms" hint from a
// rate-limit error body. ok is false if no hint is present.
func parseWaitTime(message string) (time.Duration, bool) {
	m := waitHintPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	unit := strings.ToLower(m[2])
	if unit == "ms" {
		return time.Duration(value * float64(time.Millisecond)), true
	}
	return time.Duration(value * float64(time.Second)), true
}

// backoff returns the exponential-backoff-plus-jitter sleep duration for a
// 1-indexed attempt number: 1s, doubling each attempt, plus
// uniform [0,1) jitter.
func backoff(attempt int) time.Duration {
	base := math.Pow(2, float64(attempt-1))
	jitter := rand.Float64()
	return time.Duration((base + jitter) * float64(time.Second))
}

// errorClass buckets a provider error into the retry
// taxonomy.
type errorClass int

const (
	errClassFatal errorClass = iota
	errClassRateLimit
	errClassTransient
)

// classify inspects err, preferring the typed openai.APIError the SDK
// returns for HTTP-level failures; a nil or unrecognized error is treated
// as transient so a bare network error still gets retried.
func classify(err error) errorClass {
	if err == nil {
		return errClassTransient
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return errClassRateLimit
		case apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 408:
			return errClassTransient
		case apiErr.HTTPStatusCode >= 400:
			return errClassFatal
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 429 {
			return errClassRateLimit
		}
		if reqErr.HTTPStatusCode >= 500 {
			return errClassTransient
		}
		return errClassFatal
	}
	return errClassTransient
}
