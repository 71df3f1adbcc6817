package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StatusMessage is one entry of the mirror node's _status.messages array
type StatusMessage struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Data    string `json:"data,omitempty"`
}

type statusEnvelope struct {
	Status struct {
		Messages []StatusMessage `json:"messages"`
	} `json:"_status"`
}

// APIError is returned for any non-2xx mirror response
type APIError struct {
	Status   int
	URL      string
	Messages []StatusMessage
	Body     string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		body := strings.TrimSpace(e.Body)
		if len(body) > 200 {
			body = body[:200] + "..."
		}
		return fmt.Sprintf("mirror: %s returned HTTP %d: %s", e.URL, e.Status, body)
	}
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		if m.Detail != "" {
			parts = append(parts, m.Message+" ("+m.Detail+")")
		} else {
			parts = append(parts, m.Message)
		}
	}
	return fmt.Sprintf("mirror: HTTP %d: %s", e.Status, strings.Join(parts, "; "))
}

// NotFound reports whether the mirror answered 404
func (e *APIError) NotFound() bool {
	return e.Status == 404
}

// CallError is a contract call the EVM reverted. Data holds the raw revert
// payload when the mirror returns one.
type CallError struct {
	Message string
	Detail  string
	Data    string
}

func (e *CallError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Data != "" && e.Data != "0x" {
		msg += " (data " + e.Data + ")"
	}
	return "contract call reverted: " + msg
}

func newAPIError(status int, target string, body []byte) *APIError {
	var env statusEnvelope
	_ = json.Unmarshal(body, &env)
	return &APIError{
		Status:   status,
		URL:      target,
		Messages: env.Status.Messages,
		Body:     string(body),
	}
}

// asCallError maps a 400 from /contracts/call into a CallError when it
// carries a revert
func asCallError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 400 || len(apiErr.Messages) == 0 {
		return err
	}
	m := apiErr.Messages[0]
	if m.Data == "" && !strings.Contains(strings.ToUpper(m.Message), "REVERT") {
		return err
	}
	return &CallError{Message: m.Message, Detail: m.Detail, Data: m.Data}
}

// IsNotFound reports whether err is a mirror 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}
