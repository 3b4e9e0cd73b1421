package valapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrTimeout marks a request that hit the client-side deadline. Callers
// surface it with a retry affordance; there is no automatic retry.
var ErrTimeout = errors.New("Request timed out - please try again")

// Error is a normalized backend failure: one HTTP status and one
// human-readable message, regardless of how the backend encoded it.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// sessionInvalidMarkers are the backend's assorted ways of saying the
// session row is gone or already closed. Matching them turns a generic
// failure into a recoverable claim-a-new-provider condition.
var sessionInvalidMarkers = []string{
	"session not found",
	"already completed",
	"Session expired",
	"no rows in result set",
}

// IsSessionInvalid reports whether err indicates the validation session is
// no longer valid on the backend.
func IsSessionInvalid(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range sessionInvalidMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsAuth reports whether err is a 401 authentication failure.
func IsAuth(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404, e.g. no providers left to claim.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsTimeout reports whether err is the client-side timeout condition.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// normalizeError collapses the backend's inconsistent error encodings into
// one message: a JSON object with message/error/detail, a raw text body, or
// nothing but the status code.
func normalizeError(status int, statusText string, body []byte) *Error {
	if msg := extractMessage(body); msg != "" {
		return &Error{Status: status, Message: msg}
	}

	var msg string
	switch status {
	case http.StatusBadRequest:
		msg = "Bad request - please check your input"
	case http.StatusUnauthorized:
		msg = "Authentication required - please login"
	case http.StatusForbidden:
		msg = "Access denied"
	case http.StatusNotFound:
		msg = "Resource not found"
	case http.StatusInternalServerError:
		msg = "Server error - please try again later"
	default:
		if statusText == "" {
			statusText = "Unknown error"
		}
		msg = fmt.Sprintf("HTTP %d: %s", status, statusText)
	}
	return &Error{Status: status, Message: msg}
}

func extractMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		Err     string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Err != "":
			return payload.Err
		case payload.Detail != "":
			return payload.Detail
		}
		// Valid JSON without a known message field falls through to the
		// status-based default, not the raw body.
		return ""
	}

	return text
}
