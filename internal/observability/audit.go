package observability

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// AuditInput describes a catalog mutation worth an audit line.
type AuditInput struct {
	EventName  string
	TargetType string
	TargetID   string
	Action     string
	Outcome    string
	Reason     string
}

type AuditEvent struct {
	EventVersion int    `json:"event_version"`
	EventName    string `json:"event_name"`
	ActorIP      string `json:"actor_ip"`
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
	Action       string `json:"action"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason"`
	RequestID    string `json:"request_id"`
	TS           string `json:"ts"`
}

func BuildAuditEvent(r *http.Request, in AuditInput) AuditEvent {
	requestID := chimiddleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = r.Header.Get("X-Request-Id")
	}
	return AuditEvent{
		EventVersion: 1,
		EventName:    in.EventName,
		ActorIP:      remoteIP(r),
		TargetType:   in.TargetType,
		TargetID:     in.TargetID,
		Action:       in.Action,
		Outcome:      in.Outcome,
		Reason:       in.Reason,
		RequestID:    requestID,
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
}

func (e AuditEvent) Validate() error {
	var missing []string
	if e.EventName == "" {
		missing = append(missing, "event_name")
	}
	if e.TargetType == "" {
		missing = append(missing, "target_type")
	}
	if e.Action == "" {
		missing = append(missing, "action")
	}
	if e.Outcome == "" {
		missing = append(missing, "outcome")
	}
	if len(missing) > 0 {
		return errors.New("audit event missing fields: " + strings.Join(missing, ", "))
	}
	return nil
}

func EmitAudit(r *http.Request, in AuditInput, attrs ...any) {
	ev := BuildAuditEvent(r, in)
	if err := ev.Validate(); err != nil {
		slog.WarnContext(r.Context(), "audit event dropped", "error", err.Error())
		return
	}
	base := []any{
		"event_version", ev.EventVersion,
		"event_name", ev.EventName,
		"actor_ip", ev.ActorIP,
		"target_type", ev.TargetType,
		"target_id", ev.TargetID,
		"action", ev.Action,
		"outcome", ev.Outcome,
		"reason", ev.Reason,
		"request_id", ev.RequestID,
		"ts", ev.TS,
	}
	base = append(base, attrs...)
	slog.InfoContext(r.Context(), "audit", base...)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
