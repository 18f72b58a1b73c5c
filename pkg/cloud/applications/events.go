package applications

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownEvent is returned when decoding a progress event of a kind this
// client does not know about.
var ErrUnknownEvent = errors.New("unknown request event")

// EventKind names a RequestStateChangeEvent variant. It is the single key of
// the externally tagged JSON encoding.
type EventKind string

const (
	KindRequestStarted          EventKind = "RequestStarted"
	KindFunctionRunCreated      EventKind = "FunctionRunCreated"
	KindFunctionRunAssigned     EventKind = "FunctionRunAssigned"
	KindFunctionRunCompleted    EventKind = "FunctionRunCompleted"
	KindFunctionRunMatchedCache EventKind = "FunctionRunMatchedCache"
	KindRequestProgressUpdated  EventKind = "RequestProgressUpdated"
	KindRequestFinished         EventKind = "RequestFinished"
)

// Timestamp is an RFC 3339 time. Values sent without a zone are read as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing timestamp: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, s+"Z")
		if err != nil {
			return fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
	}
	t.Time = parsed.UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// EventMetadata is shared by every request event.
type EventMetadata struct {
	Namespace          string     `json:"namespace,omitempty"`
	ApplicationName    string     `json:"application_name,omitempty"`
	ApplicationVersion string     `json:"application_version"`
	RequestID          string     `json:"request_id"`
	CreatedAt          *Timestamp `json:"created_at,omitempty"`
}

type RequestStarted struct {
	EventMetadata
}

type FunctionRunCreated struct {
	EventMetadata
	FunctionName  string `json:"function_name"`
	FunctionRunID string `json:"function_run_id"`
}

type FunctionRunAssigned struct {
	EventMetadata
	FunctionName  string `json:"function_name"`
	FunctionRunID string `json:"function_run_id"`
	AllocationID  string `json:"allocation_id"`
	ExecutorID    string `json:"executor_id"`
}

type FunctionRunCompleted struct {
	EventMetadata
	FunctionName  string `json:"function_name"`
	FunctionRunID string `json:"function_run_id"`
	AllocationID  string `json:"allocation_id"`

	// Outcome is "success", "failure" or "unknown".
	Outcome string `json:"outcome"`
}

type FunctionRunMatchedCache struct {
	EventMetadata
	FunctionName  string `json:"function_name"`
	FunctionRunID string `json:"function_run_id"`
}

// RequestProgressUpdated is a progress report emitted by a running function.
// Step and Total are accepted as JSON numbers or numeric strings.
type RequestProgressUpdated struct {
	EventMetadata
	FunctionName  string          `json:"function_name"`
	FunctionRunID string          `json:"function_run_id"`
	AllocationID  string          `json:"allocation_id"`
	Message       string          `json:"message"`
	Step          *float64        `json:"step,omitempty"`
	Total         *float64        `json:"total,omitempty"`
	Attributes    json.RawMessage `json:"attributes,omitempty"`
}

func (e *RequestProgressUpdated) UnmarshalJSON(data []byte) error {
	var raw struct {
		EventMetadata
		FunctionName  string          `json:"function_name"`
		FunctionRunID string          `json:"function_run_id"`
		AllocationID  string          `json:"allocation_id"`
		Message       json.RawMessage `json:"message"`
		Step          json.RawMessage `json:"step"`
		Total         json.RawMessage `json:"total"`
		Attributes    json.RawMessage `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = RequestProgressUpdated{
		EventMetadata: raw.EventMetadata,
		FunctionName:  raw.FunctionName,
		FunctionRunID: raw.FunctionRunID,
		AllocationID:  raw.AllocationID,
		Message:       looseString(raw.Message),
		Step:          looseFloat(raw.Step),
		Total:         looseFloat(raw.Total),
	}
	if len(raw.Attributes) > 0 && string(raw.Attributes) != "null" {
		e.Attributes = raw.Attributes
	}
	return nil
}

// looseString returns a JSON string's value, or the raw JSON text of any
// other value.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// looseFloat parses a JSON number or numeric string. Anything else is nil.
func looseFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

type RequestFinished struct {
	EventMetadata
	Outcome RequestOutcome `json:"outcome"`
}

// RequestStateChangeEvent is one entry of a request's progress feed. Exactly
// one of the variant fields is set, matching Kind.
type RequestStateChangeEvent struct {
	Kind EventKind

	RequestStarted          *RequestStarted
	FunctionRunCreated      *FunctionRunCreated
	FunctionRunAssigned     *FunctionRunAssigned
	FunctionRunCompleted    *FunctionRunCompleted
	FunctionRunMatchedCache *FunctionRunMatchedCache
	RequestProgressUpdated  *RequestProgressUpdated
	RequestFinished         *RequestFinished
}

func (e *RequestStateChangeEvent) UnmarshalJSON(data []byte) error {
	var tagged map[EventKind]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("%w: expected exactly one event kind, got %d", ErrUnknownEvent, len(tagged))
	}

	var (
		kind EventKind
		body json.RawMessage
	)
	for k, v := range tagged {
		kind, body = k, v
	}

	out := RequestStateChangeEvent{Kind: kind}
	var target any
	switch kind {
	case KindRequestStarted:
		out.RequestStarted = &RequestStarted{}
		target = out.RequestStarted
	case KindFunctionRunCreated:
		out.FunctionRunCreated = &FunctionRunCreated{}
		target = out.FunctionRunCreated
	case KindFunctionRunAssigned:
		out.FunctionRunAssigned = &FunctionRunAssigned{}
		target = out.FunctionRunAssigned
	case KindFunctionRunCompleted:
		out.FunctionRunCompleted = &FunctionRunCompleted{}
		target = out.FunctionRunCompleted
	case KindFunctionRunMatchedCache:
		out.FunctionRunMatchedCache = &FunctionRunMatchedCache{}
		target = out.FunctionRunMatchedCache
	case KindRequestProgressUpdated:
		out.RequestProgressUpdated = &RequestProgressUpdated{}
		target = out.RequestProgressUpdated
	case KindRequestFinished:
		out.RequestFinished = &RequestFinished{}
		target = out.RequestFinished
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("parsing %s event: %w", kind, err)
	}
	*e = out
	return nil
}

func (e RequestStateChangeEvent) MarshalJSON() ([]byte, error) {
	payload := e.payload()
	if payload == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Kind)
	}
	return json.Marshal(map[EventKind]any{e.Kind: payload})
}

func (e RequestStateChangeEvent) payload() any {
	switch e.Kind {
	case KindRequestStarted:
		return e.RequestStarted
	case KindFunctionRunCreated:
		return e.FunctionRunCreated
	case KindFunctionRunAssigned:
		return e.FunctionRunAssigned
	case KindFunctionRunCompleted:
		return e.FunctionRunCompleted
	case KindFunctionRunMatchedCache:
		return e.FunctionRunMatchedCache
	case KindRequestProgressUpdated:
		return e.RequestProgressUpdated
	case KindRequestFinished:
		return e.RequestFinished
	}
	return nil
}

// Metadata returns the fields shared by every variant. It is the zero value
// for an event with no variant set.
func (e RequestStateChangeEvent) Metadata() EventMetadata {
	switch {
	case e.RequestStarted != nil:
		return e.RequestStarted.EventMetadata
	case e.FunctionRunCreated != nil:
		return e.FunctionRunCreated.EventMetadata
	case e.FunctionRunAssigned != nil:
		return e.FunctionRunAssigned.EventMetadata
	case e.FunctionRunCompleted != nil:
		return e.FunctionRunCompleted.EventMetadata
	case e.FunctionRunMatchedCache != nil:
		return e.FunctionRunMatchedCache.EventMetadata
	case e.RequestProgressUpdated != nil:
		return e.RequestProgressUpdated.EventMetadata
	case e.RequestFinished != nil:
		return e.RequestFinished.EventMetadata
	}
	return EventMetadata{}
}

// IsTerminal reports whether no further events will follow for the request.
func (e RequestStateChangeEvent) IsTerminal() bool {
	return e.Kind == KindRequestFinished
}

// Describe returns a one line human readable summary of the event.
func (e RequestStateChangeEvent) Describe() string {
	switch e.Kind {
	case KindRequestStarted:
		return "Request Started"
	case KindFunctionRunCreated:
		return "Function Run Created: " + e.FunctionRunCreated.FunctionName
	case KindFunctionRunAssigned:
		return fmt.Sprintf("Function Run Assigned: %s on %s", e.FunctionRunAssigned.FunctionName, e.FunctionRunAssigned.ExecutorID)
	case KindFunctionRunCompleted:
		return fmt.Sprintf("Function Run Completed: %s (%s)", e.FunctionRunCompleted.FunctionName, e.FunctionRunCompleted.Outcome)
	case KindFunctionRunMatchedCache:
		return "Function Run Matched a Cached output: " + e.FunctionRunMatchedCache.FunctionName
	case KindRequestProgressUpdated:
		p := e.RequestProgressUpdated
		if p.Step != nil && p.Total != nil {
			return fmt.Sprintf("Request Progress Updated: %s [%g/%g]", p.Message, *p.Step, *p.Total)
		}
		return "Request Progress Updated: " + p.Message
	case KindRequestFinished:
		return "Request Finished: " + e.RequestFinished.Outcome.String()
	}
	return string(e.Kind)
}
