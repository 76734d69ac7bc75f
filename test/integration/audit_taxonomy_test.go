package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
)

func TestAuditEventsForProductInsert(t *testing.T) {
	var logBuf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() {
		slog.SetDefault(previous)
	})

	s := newCatalogTestServer(t, catalogTestServerOptions{})
	mustInsert(t, s, insertPayload("Flat White", 4800, "x,aGVsbG8="))
	if resp, _ := s.do(t, http.MethodPost, "/product/insert", insertPayload("Broken", 1, "no-comma")); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected failing insert, got %d", resp.StatusCode)
	}

	events := parseAuditEvents(t, logBuf.String())
	if len(events) != 2 {
		t.Fatalf("expected two audit events, got %d: %s", len(events), logBuf.String())
	}
	for _, event := range events {
		assertAuditRequiredFields(t, event)
	}
	success := assertAuditEventOutcome(t, events, "product.insert", "success")
	if success["target_id"] != "1" {
		t.Fatalf("expected target_id 1, got %#v", success["target_id"])
	}
	if img, _ := success["image"].(string); !strings.HasPrefix(img, "product_") || filepath.Ext(img) != ".jpg" {
		t.Fatalf("unexpected image attribute %#v", success["image"])
	}
	failure := assertAuditEventOutcome(t, events, "product.insert", "failure")
	if failure["reason"] != "image_payload_malformed" {
		t.Fatalf("unexpected failure reason %#v", failure["reason"])
	}
}

func parseAuditEvents(t *testing.T, logs string) []map[string]any {
	t.Helper()
	events := make([]map[string]any, 0)
	scanner := bufio.NewScanner(strings.NewReader(logs))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if msg, _ := entry["msg"].(string); msg == "audit" {
			events = append(events, entry)
		}
	}
	return events
}

func assertAuditRequiredFields(t *testing.T, event map[string]any) {
	t.Helper()
	required := []string{
		"event_name", "event_version", "actor_ip", "target_type",
		"action", "outcome", "reason", "request_id", "ts",
	}
	for _, key := range required {
		v, ok := event[key]
		if !ok {
			t.Fatalf("missing required audit field %q in event %#v", key, event)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			t.Fatalf("empty required audit field %q in event %#v", key, event)
		}
	}
}

func assertAuditEventOutcome(t *testing.T, events []map[string]any, eventName, outcome string) map[string]any {
	t.Helper()
	for _, event := range events {
		gotEventName, _ := event["event_name"].(string)
		gotOutcome, _ := event["outcome"].(string)
		if gotEventName == eventName && gotOutcome == outcome {
			return event
		}
	}
	t.Fatalf("expected audit event_name=%q outcome=%q, got events=%#v", eventName, outcome, events)
	return nil
}
