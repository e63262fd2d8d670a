// Package events defines the event types published over the generation
// lifecycle: pipeline start/finish, per-stage progress, and credential gaps.
package events

import (
	"time"

	"github.com/flowgen-io/flowgen/pkg/models"
)

type EventType string

// Topic carries every generation lifecycle event.
const Topic = "flowgen.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	GenerationStartedEvent  EventType = "generation.started"
	GenerationFinishedEvent EventType = "generation.finished"

	StageStartedEvent  EventType = "stage.started"
	StageFinishedEvent EventType = "stage.finished"

	CredentialGapDetectedEvent EventType = "credential.gap.detected"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// GenerationStarted marks the creation of a workflow placeholder record and
// the start of the four-stage pipeline.
type GenerationStarted struct {
	BaseEvent

	UserID string `json:"user_id"`
	DryRun bool   `json:"dry_run"`
}

func (e GenerationStarted) GetType() EventType {
	return GenerationStartedEvent
}

// GenerationFinished carries the terminal status of a pipeline run.
type GenerationFinished struct {
	BaseEvent

	Status       models.WorkflowStatus `json:"status"`
	ErrorStage   string                `json:"error_stage,omitempty"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Duration     time.Duration         `json:"duration"`
}

func (e GenerationFinished) GetType() EventType {
	return GenerationFinishedEvent
}

type StageStarted struct {
	BaseEvent

	StageNumber int    `json:"stage_number"`
	StageName   string `json:"stage_name"`
}

func (e StageStarted) GetType() EventType {
	return StageStartedEvent
}

type StageFinished struct {
	BaseEvent

	StageNumber     int                `json:"stage_number"`
	StageName       string             `json:"stage_name"`
	Status          models.StageStatus `json:"status"`
	Degraded        bool               `json:"degraded"`
	ExecutionTimeMS int64              `json:"execution_time_ms"`
	ErrorMessage    string             `json:"error_message,omitempty"`
}

func (e StageFinished) GetType() EventType {
	return StageFinishedEvent
}

// CredentialGapDetected is the fire-and-forget side-channel notification for
// a missing provider credential. It accompanies, and never replaces, the
// stage failure itself.
type CredentialGapDetected struct {
	BaseEvent

	Service        string `json:"service"`
	CredentialName string `json:"required_credential_name"`
	Stage          string `json:"stage"`
}

func (e CredentialGapDetected) GetType() EventType {
	return CredentialGapDetectedEvent
}
