package service

import (
	"context"
	"errors"
	"strings"

	"load_transient/internal/models"
	"load_transient/internal/repository"
)

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errNegativeLimit    = errors.New("limit must not be negative")
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// List returns the current run's events matching f, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.RunEvent, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx, f.From, f.To, f.Type)
	if err != nil {
		return nil, err
	}
	events = EventsAfter(events, f.AfterID)
	if f.Limit > 0 && len(events) > f.Limit {
		events = events[:f.Limit]
	}
	return events, nil
}

// EventsAfter returns the events following the one with ID afterID. The log
// is cleared whenever a run starts, so an ID that is not present belongs to
// an earlier run and every event is returned.
func EventsAfter(events []models.RunEvent, afterID string) []models.RunEvent {
	if afterID == "" {
		return events
	}
	for i, ev := range events {
		if ev.EventID == afterID {
			return events[i+1:]
		}
	}
	return events
}

// normalizeFilter converts the bounds to UTC, uppercases the type and
// rejects inverted ranges.
func normalizeFilter(f LogFilter) (LogFilter, error) {
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return LogFilter{}, errInvalidTimeRange
	}
	if f.Limit < 0 {
		return LogFilter{}, errNegativeLimit
	}
	f.Type = strings.ToUpper(strings.TrimSpace(f.Type))
	f.AfterID = strings.TrimSpace(f.AfterID)
	return f, nil
}
