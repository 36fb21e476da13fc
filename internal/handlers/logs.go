package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"load_transient/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"

	maxLogLimit = 1000
)

var errLogRange = errors.New("'from' must be <= 'to'")

// @Summary      List events of the current run
// @Description  The log only holds the current (or last) run. Dates accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day. Pass the returned last_id as 'after' to fetch only newer events; an id from an earlier run returns the whole log.
// @Tags         logs
// @Produce      json
// @Param        from   query   string  false  "Start of range"  example(2026-03-02)
// @Param        to     query   string  false  "End of range; date-only means end of day"  example(2026-03-02)
// @Param        type   query   string  false  "Event type"  Enums(START,STATE_CHANGE,TELEMETRY,STOP,ERROR,CANCEL)
// @Param        after  query   string  false  "Event ID cursor"
// @Param        limit  query   int     false  "Maximum number of events (1-1000)"
// @Success      200    {object}  map[string]interface{}  "count, last_id, events"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	f, err := parseLogFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := h.services.EventLog.List(c.Request.Context(), f)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("logs_list_failed", "err", err, "type", f.Type, "after", f.AfterID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load logs"})
		return
	}

	lastID := f.AfterID
	if n := len(events); n > 0 {
		lastID = events[n-1].EventID
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(events),
		"last_id": lastID,
		"events":  events,
	})
}

// parseLogFilter reads the log query parameters.
func parseLogFilter(c *gin.Context) (service.LogFilter, error) {
	f := service.LogFilter{
		Type:    strings.ToUpper(strings.TrimSpace(c.Query("type"))),
		AfterID: strings.TrimSpace(c.Query("after")),
	}
	if qs := c.Query("from"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			return f, fmt.Errorf("invalid 'from': %w", err)
		}
		f.From = t
	}
	if qs := c.Query("to"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			return f, fmt.Errorf("invalid 'to': %w", err)
		}
		if !strings.ContainsAny(qs, "T ") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, errLogRange
	}
	if qs := c.Query("limit"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil || n < 1 || n > maxLogLimit {
			return f, fmt.Errorf("invalid 'limit' %q: want 1..%d", qs, maxLogLimit)
		}
		f.Limit = n
	}
	return f, nil
}

// parseQueryTime accepts RFC3339, date-time and date-only layouts, normalized to UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'", s)
}
