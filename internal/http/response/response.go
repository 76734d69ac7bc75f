// Package response writes JSON bodies and the shared error envelope.
package response

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
}

// JSON writes data inside a success envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	Raw(w, r, status, Envelope{Success: true, Data: data, RequestID: requestID(r)})
}

// Error writes the failure envelope.
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	Raw(w, r, status, Envelope{
		Success:   false,
		Error:     &ErrorBody{Code: code, Message: message, Details: details},
		RequestID: requestID(r),
	})
}

// Raw writes v as the whole JSON body with no envelope. A nil v is written
// as the literal null.
func Raw(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.WarnContext(requestContext(r), "write json response failed", "error", err)
	}
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-Id")
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}
