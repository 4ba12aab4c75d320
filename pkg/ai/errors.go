package ai

import (
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Failure taxonomy for gateway calls. Callers branch on these with
// errors.Is to decide between retry, fallback, and surfacing.
var (
	// ErrRateLimited maps HTTP 429: retryable after a delay.
	ErrRateLimited = errors.New("ai gateway rate limited")
	// ErrQuotaExhausted maps HTTP 402: the credit pool is empty.
	ErrQuotaExhausted = errors.New("ai gateway quota exhausted")
	// ErrParse means the completion text did not contain the expected structure.
	ErrParse = errors.New("ai response could not be parsed")
	// ErrUnavailable covers transport failures and other non-2xx statuses.
	ErrUnavailable = errors.New("ai gateway unavailable")
)

// ClassifyError wraps a transport error with the matching sentinel so
// callers never have to inspect provider-specific types.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case 402:
			return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
		}
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
