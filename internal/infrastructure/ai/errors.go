package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingAPIKey is returned when a request needs a key and none was configured.
var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY is not set: add it to your environment or a .env file (get a key at https://openrouter.ai/keys)")

// ErrEmptyResponse is returned when a completion carries no choices.
var ErrEmptyResponse = errors.New("no response from OpenRouter API")

// APIError is a non-2xx answer from OpenRouter.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		msg := "invalid API key: check OPENROUTER_API_KEY in your environment or .env file"
		if e.Message != "" {
			msg += " (" + e.Message + ")"
		}
		return msg
	case http.StatusPaymentRequired:
		return "insufficient credits: add credits to your OpenRouter account at https://openrouter.ai/credits"
	case http.StatusTooManyRequests:
		return "rate limit exceeded: please try again later"
	}
	if e.Message != "" {
		return fmt.Sprintf("OpenRouter API error: %s", e.Message)
	}
	return fmt.Sprintf("OpenRouter API error (%d): %s", e.StatusCode, e.Body)
}

// IsAuthError reports whether err is an OpenRouter 401.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Message:    errorMessage(body),
		Body:       strings.TrimSpace(string(body)),
	}
}

// errorMessage extracts "error.message" or a string "error" from a payload.
func errorMessage(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return ""
	}
	var detailed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &detailed); err == nil && detailed.Message != "" {
		return detailed.Message
	}
	var plain string
	if err := json.Unmarshal(payload.Error, &plain); err == nil {
		return plain
	}
	return string(payload.Error)
}
