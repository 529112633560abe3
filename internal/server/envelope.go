package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// envelope is the uniform tool response. Success carries a data payload;
// errors carry only the message. Timestamps are RFC3339 UTC and every
// envelope gets a short trace id for log correlation.
type envelope struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
	TraceID   string `json:"trace_id"`
}

func newEnvelope(status, message string, data any) envelope {
	return envelope{
		Status:    status,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   uuid.NewString()[:8],
	}
}

// successResult wraps a payload in the success envelope as indented JSON.
func successResult(message string, data any) *mcp.CallToolResult {
	env := newEnvelope("success", message, data)
	body, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encoding response payload: %w", err))
	}
	return mcp.NewToolResultText(string(body))
}

// errorResult turns any failure into an error envelope. The message is the
// error text verbatim; typed errors from the lower layers already carry the
// triggering condition or HTTP status.
func errorResult(err error) *mcp.CallToolResult {
	env := newEnvelope("error", err.Error(), nil)
	body, merr := json.MarshalIndent(env, "", "  ")
	if merr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(body))
}
