package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/and161185/socialclient/internal/errs"
)

// GenericMessage is shown when the API gives no usable message or nothing came back at all.
const GenericMessage = "Request failed, try again"

// RemoteError is the single failure shape of every API call.
type RemoteError struct {
	Status  int    // 0 for transport failures
	Message string // user-facing text
	kind    error
	cause   error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s: %v", e.Message, e.cause)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Unwrap exposes the taxonomy sentinel and, for transport failures, the cause.
func (e *RemoteError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func kindFor(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return errs.ErrAuthRequired
	case http.StatusForbidden:
		return errs.ErrForbidden
	case http.StatusNotFound:
		return errs.ErrNotFound
	default:
		return errs.ErrRemote
	}
}

func networkError(cause error) *RemoteError {
	return &RemoteError{Message: GenericMessage, kind: errs.ErrNetwork, cause: cause}
}

// remoteError builds a RemoteError from a non-2xx response body.
func remoteError(status int, body []byte) *RemoteError {
	return &RemoteError{Status: status, Message: decodeMessage(body), kind: kindFor(status)}
}

// decodeMessage pulls a message out of {"detail": "..."}, {"detail": [{"msg": "..."}]}
// or {"message": "..."}.
func decodeMessage(body []byte) string {
	var env struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if len(body) == 0 || json.Unmarshal(body, &env) != nil {
		return GenericMessage
	}
	if len(env.Detail) > 0 {
		var s string
		if json.Unmarshal(env.Detail, &s) == nil && s != "" {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(env.Detail, &list) == nil && len(list) > 0 && list[0].Msg != "" {
			return list[0].Msg
		}
	}
	if env.Message != "" {
		return env.Message
	}
	return GenericMessage
}
