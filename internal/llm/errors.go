package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/sashabaranov/go-openai"
)

// Outcome is the result class of one completion attempt.
type Outcome int

const (
	OK Outcome = iota
	Retryable
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Retryable:
		return "retryable"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// StatusError is a provider failure with an HTTP status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model endpoint status %d: %s", e.StatusCode, Truncate(e.Message, 200))
}

// Classify decides whether a failed attempt is worth repeating.
// Rate limits, server errors, timeouts, network failures, unparseable
// output and anything unrecognised are Retryable. Request errors the
// provider will reject again (bad request, auth, not found) and caller
// cancellation are Fatal.
func Classify(err error) Outcome {
	if err == nil {
		return OK
	}
	if errors.Is(err, context.Canceled) {
		return Fatal
	}
	if status, ok := statusCode(err); ok {
		return classifyStatus(status)
	}
	return Retryable
}

func classifyStatus(status int) Outcome {
	switch {
	case status == http.StatusRequestTimeout,
		status == http.StatusConflict,
		status == http.StatusTooEarly,
		status == http.StatusTooManyRequests,
		status >= 500:
		return Retryable
	case status >= 400:
		return Fatal
	default:
		return Retryable
	}
}

func statusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	var oaAPI *openai.APIError
	if errors.As(err, &oaAPI) && oaAPI.HTTPStatusCode != 0 {
		return oaAPI.HTTPStatusCode, true
	}
	var oaReq *openai.RequestError
	if errors.As(err, &oaReq) && oaReq.HTTPStatusCode != 0 {
		return oaReq.HTTPStatusCode, true
	}
	var anth *sdk.Error
	if errors.As(err, &anth) && anth.StatusCode != 0 {
		return anth.StatusCode, true
	}
	return 0, false
}
