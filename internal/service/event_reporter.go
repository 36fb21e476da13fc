package service

import (
	"context"
	"fmt"

	"load_transient/internal/models"
	"load_transient/internal/repository"
)

// EventReporter records every step result as a TELEMETRY event.
type EventReporter struct {
	eventRepo repository.EventRepo
}

func NewEventReporter(eventRepo repository.EventRepo) *EventReporter {
	return &EventReporter{eventRepo: eventRepo}
}

func (r *EventReporter) Report(ctx context.Context, res models.StepResult) error {
	return r.eventRepo.Append(ctx, models.RunEvent{
		OccurredAt: res.MeasuredAt,
		Type:       models.EventTelemetry,
		Description: fmt.Sprintf("step %d at %.1f C: %.3f W with %.3f A commanded",
			res.StepIndex, res.TemperatureTarget, res.OutputPower, res.CommandedCurrent),
		Metadata: res,
	})
}
