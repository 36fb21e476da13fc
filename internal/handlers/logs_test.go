package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"load_transient/internal/models"
	"load_transient/internal/service"
)

func TestLogsHandler_FilterValidation(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"bad from", "from=notatime"},
		{"bad to", "to=2026-13-40"},
		{"inverted range", "from=2026-03-02&to=2026-03-01"},
		{"zero limit", "limit=0"},
		{"limit too large", "limit=5000"},
		{"limit not a number", "limit=ten"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs := &mockEventLog{}
			r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 99}, EventLog: logs})
			w := doAuthed(r, http.MethodGet, "/api/v1/logs/?"+tc.query, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status=%d, want 400 (body=%s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestLogsHandler_PassesFilterAndReturnsCursor(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	logs := &mockEventLog{resp: []models.RunEvent{
		{EventID: "e2", OccurredAt: now, Type: models.EventStateChange, Description: "START -> CONFIGURE_TEMPERATURE"},
		{EventID: "e3", OccurredAt: now.Add(time.Second), Type: models.EventStateChange, Description: "CONFIGURE_TEMPERATURE -> CONFIGURE_SUPPLY"},
	}}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 99}, EventLog: logs})

	w := doAuthed(r, http.MethodGet, "/api/v1/logs/?from=2026-03-02&to=2026-03-02&type=state_change&after=e1&limit=50", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int               `json:"count"`
		LastID string            `json:"last_id"`
		Events []models.RunEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 2 || out.LastID != "e3" {
		t.Fatalf("unexpected response: %+v", out)
	}

	f := logs.last
	if f.Type != models.EventStateChange || f.AfterID != "e1" || f.Limit != 50 {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if !f.From.Equal(now.Truncate(24*time.Hour)) || f.To.Format(time.RFC3339Nano) != "2026-03-02T23:59:59.999999999Z" {
		t.Fatalf("unexpected range: from=%v to=%v", f.From, f.To)
	}
}

func TestLogsHandler_EmptyPageKeepsCursor(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 99}, EventLog: &mockEventLog{}})
	w := doAuthed(r, http.MethodGet, "/api/v1/logs/?after=e9", nil)
	var out struct {
		LastID string `json:"last_id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if w.Code != http.StatusOK || out.LastID != "e9" {
		t.Fatalf("status=%d last_id=%q", w.Code, out.LastID)
	}
}
