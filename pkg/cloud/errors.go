package cloud

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrNoBaseURL is returned by New when no base URL is given.
	ErrNoBaseURL = errors.New("no api base url configured")

	// ErrInvalidBaseURL is returned by New for a URL without scheme or host.
	ErrInvalidBaseURL = errors.New("invalid api base url")

	// ErrEmptyResponse is returned when a JSON body was expected but none
	// was sent.
	ErrEmptyResponse = errors.New("empty response body")

	// ErrUnauthorized matches 401 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden matches 403 responses.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrServer matches 5xx responses.
	ErrServer = errors.New("server error")
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// APIError is returned for every non-2xx response. Use errors.Is with the
// sentinel errors above to branch on the kind of failure.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrServer:
		return e.StatusCode >= 500
	}
	return false
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(resp *http.Response, requestID string) *APIError {
	if id := resp.Header.Get(RequestIDHeader); id != "" {
		requestID = id
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			msg = parsed.Message
		case parsed.Error != "":
			msg = parsed.Error
		}
	}

	if msg == "" {
		msg = defaultMessage(resp.StatusCode)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		RequestID:  requestID,
	}
}

func defaultMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "Unauthorized"
	case status == http.StatusForbidden:
		return "Forbidden"
	case status >= 500:
		return "Server error"
	default:
		return "Request failed"
	}
}
