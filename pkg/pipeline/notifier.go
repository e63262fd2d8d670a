package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowgen-io/flowgen/pkg/eventbus"
	"github.com/flowgen-io/flowgen/pkg/events"
)

// CredentialGap describes a missing provider credential detected by a stage
// executor.
type CredentialGap struct {
	Service        string
	CredentialName string
	WorkflowID     string
	Stage          string
}

// CredentialNotifier receives fire-and-forget credential-gap notifications.
// Notification failures never influence the pipeline outcome.
type CredentialNotifier interface {
	NotifyCredentialGap(ctx context.Context, gap CredentialGap)
}

// EventBusNotifier publishes credential gaps on the event bus.
type EventBusNotifier struct {
	bus    eventbus.EventBus
	logger *slog.Logger
}

func NewEventBusNotifier(bus eventbus.EventBus, logger *slog.Logger) *EventBusNotifier {
	return &EventBusNotifier{bus: bus, logger: logger.With("module", "credential_notifier")}
}

func (n *EventBusNotifier) NotifyCredentialGap(ctx context.Context, gap CredentialGap) {
	event := events.CredentialGapDetected{
		BaseEvent: events.BaseEvent{
			ID:         n.bus.GenerateID(),
			Type:       events.CredentialGapDetectedEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: gap.WorkflowID,
		},
		Service:        gap.Service,
		CredentialName: gap.CredentialName,
		Stage:          gap.Stage,
	}

	if err := n.bus.Publish(ctx, gap.WorkflowID, event); err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish credential gap notification",
			"workflow_id", gap.WorkflowID,
			"stage", gap.Stage,
			"error", err)
	}
}

// LogNotifier records credential gaps in the log only. Used by the one-shot
// CLI where no event bus is wired.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "credential_notifier")}
}

func (n *LogNotifier) NotifyCredentialGap(ctx context.Context, gap CredentialGap) {
	n.logger.WarnContext(ctx, "Provider credential missing",
		"service", gap.Service,
		"credential", gap.CredentialName,
		"workflow_id", gap.WorkflowID,
		"stage", gap.Stage)
}
