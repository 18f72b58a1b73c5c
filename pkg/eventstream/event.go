// Package eventstream forwards decoded stream events to an event backend.
// Events travel in a versioned, transport-neutral envelope so consumers can
// evolve independently of the cloud API payloads they carry.
package eventstream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event envelope schema.
	SchemaVersionV1 = 1

	// EventTypeRequestProgress carries an application request state change.
	EventTypeRequestProgress = "cloudctl.request.progress"

	// EventTypeBuildLog carries one line of image build output.
	EventTypeBuildLog = "cloudctl.build.log"
)

// StreamEvent is a transport-neutral envelope for one streamed event.
type StreamEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Source        EventSource     `json:"source"`
	Payload       json.RawMessage `json:"payload"`
}

// EventSource identifies the cloud resource an event belongs to.
type EventSource struct {
	OrganizationID string `json:"organization_id,omitempty"`
	ProjectID      string `json:"project_id,omitempty"`
	Namespace      string `json:"namespace,omitempty"`
	Application    string `json:"application,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
	BuildID        string `json:"build_id,omitempty"`
}

// NewStreamEvent wraps payload in a new envelope.
func NewStreamEvent(eventType string, source EventSource, payload any) (*StreamEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s payload: %w", eventType, err)
	}

	return &StreamEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Payload:       data,
	}, nil
}

// Key groups events of the same request or build so backends that
// partition by key keep them in order.
func (e *StreamEvent) Key() string {
	switch {
	case e.Source.RequestID != "":
		return e.Source.RequestID
	case e.Source.BuildID != "":
		return e.Source.BuildID
	default:
		return e.EventID
	}
}
