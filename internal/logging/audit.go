// Audit logging: a JSONL trail of externally visible activity (tool calls,
// upstream API requests, cache decisions) written alongside the category
// logs. Each line is one self-contained event, so the trail can be replayed
// or grepped without a parser.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType labels what kind of activity an event records.
type AuditEventType string

const (
	// Tool dispatch events
	AuditToolInvoke   AuditEventType = "tool_invoke"
	AuditToolComplete AuditEventType = "tool_complete"
	AuditToolError    AuditEventType = "tool_error"

	// Upstream request events
	AuditUpstreamRequest AuditEventType = "upstream_request"
	AuditUpstreamRetry   AuditEventType = "upstream_retry"
	AuditUpstreamError   AuditEventType = "upstream_error"

	// Cache events
	AuditCacheHit   AuditEventType = "cache_hit"
	AuditCacheMiss  AuditEventType = "cache_miss"
	AuditCacheStore AuditEventType = "cache_store"

	// Session pool events
	AuditSessionAcquire AuditEventType = "session_acquire"
	AuditSessionRelease AuditEventType = "session_release"

	// Advisory model events
	AuditModelRequest  AuditEventType = "model_request"
	AuditModelResponse AuditEventType = "model_response"
	AuditModelError    AuditEventType = "model_error"
)

// AuditEvent is one line of the audit trail.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"` // Unix milliseconds
	EventType  AuditEventType         `json:"event"`
	Category   string                 `json:"cat,omitempty"`
	RequestID  string                 `json:"req,omitempty"`
	Target     string                 `json:"target,omitempty"` // Endpoint, tool name or cache key
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Message    string                 `json:"msg,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger writes audit events, optionally scoped to a request ID.
type AuditLogger struct {
	requestID string
	category  Category
}

// InitAudit initializes the audit trail. No-op unless debug mode is on.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	header := fmt.Sprintf("# Audit trail started at %s\n", time.Now().Format(time.RFC3339))
	auditFile.WriteString(header)

	return nil
}

// CloseAudit closes the trail file. Later events are dropped silently.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the unscoped audit logger.
func Audit() *AuditLogger {
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithRequest creates an audit logger scoped to a request ID, so the
// retries and fan-out legs of one tool invocation share a correlation key.
func AuditWithRequest(requestID string, category Category) *AuditLogger {
	return &AuditLogger{requestID: requestID, category: category}
}

// Log writes one event, filling the timestamp and scope defaults.
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() || auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.RequestID == "" && a.requestID != "" {
		event.RequestID = a.requestID
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.WriteString(string(data) + "\n")
	}
}

// ToolInvoked records the start of a tool call.
func (a *AuditLogger) ToolInvoked(tool string) {
	a.Log(AuditEvent{EventType: AuditToolInvoke, Target: tool, Success: true})
}

// ToolCompleted records a finished tool call with its outcome.
func (a *AuditLogger) ToolCompleted(tool string, dur time.Duration, err error) {
	event := AuditEvent{
		EventType:  AuditToolComplete,
		Target:     tool,
		Success:    err == nil,
		DurationMs: dur.Milliseconds(),
	}
	if err != nil {
		event.EventType = AuditToolError
		event.Error = err.Error()
	}
	a.Log(event)
}

// UpstreamRequest records one attempt against an upstream endpoint.
func (a *AuditLogger) UpstreamRequest(endpoint string, status int, attempt int, dur time.Duration) {
	a.Log(AuditEvent{
		EventType:  AuditUpstreamRequest,
		Target:     endpoint,
		Success:    status >= 200 && status < 300,
		DurationMs: dur.Milliseconds(),
		Fields: map[string]interface{}{
			"status":  status,
			"attempt": attempt,
		},
	})
}

// CacheDecision records a cache hit or miss for a key.
func (a *AuditLogger) CacheDecision(key string, hit bool) {
	eventType := AuditCacheMiss
	if hit {
		eventType = AuditCacheHit
	}
	a.Log(AuditEvent{EventType: eventType, Target: key, Success: true})
}

// ModelCall records an advisory model round trip.
func (a *AuditLogger) ModelCall(model string, dur time.Duration, err error) {
	event := AuditEvent{
		EventType:  AuditModelResponse,
		Target:     model,
		Success:    err == nil,
		DurationMs: dur.Milliseconds(),
	}
	if err != nil {
		event.EventType = AuditModelError
		event.Error = err.Error()
	}
	a.Log(event)
}
