package applications

import (
	"encoding/json"
	"fmt"
)

// CursorDirection selects which way a cursor paginated listing walks.
type CursorDirection string

const (
	Forward  CursorDirection = "forward"
	Backward CursorDirection = "backward"
)

// ListOptions paginates List and ListRequests. Zero values are omitted.
type ListOptions struct {
	Limit     int
	Cursor    string
	Direction CursorDirection
}

// Application is a deployed application manifest.
type Application struct {
	Name        string                         `json:"name"`
	Namespace   string                         `json:"namespace,omitempty"`
	Description string                         `json:"description"`
	Version     string                         `json:"version"`
	Tags        map[string]string              `json:"tags"`
	CreatedAt   *int64                         `json:"created_at,omitempty"`
	Tombstoned  *bool                          `json:"tombstoned,omitempty"`
	Entrypoint  EntryPointManifest             `json:"entrypoint"`
	Functions   map[string]ApplicationFunction `json:"functions"`
	State       *ApplicationState              `json:"state,omitempty"`
}

type EntryPointManifest struct {
	FunctionName          string `json:"function_name"`
	InputSerializer       string `json:"input_serializer"`
	OutputSerializer      string `json:"output_serializer"`
	OutputTypeHintsBase64 string `json:"output_type_hints_base64"`
}

type ApplicationFunction struct {
	Name                     string               `json:"name"`
	Description              string               `json:"description"`
	CacheKey                 string               `json:"cache_key,omitempty"`
	InitializationTimeoutSec *int                 `json:"initialization_timeout_sec,omitempty"`
	MaxConcurrency           int                  `json:"max_concurrency"`
	TimeoutSec               int                  `json:"timeout_sec"`
	SecretNames              []string             `json:"secret_names"`
	Resources                FunctionResources    `json:"resources"`
	RetryPolicy              RetryPolicy          `json:"retry_policy"`
	PlacementConstraints     PlacementConstraints `json:"placement_constraints"`
	ReturnType               json.RawMessage      `json:"return_type,omitempty"`
}

type FunctionResources struct {
	CPUs            float64        `json:"cpus"`
	MemoryMB        int64          `json:"memory_mb"`
	EphemeralDiskMB int64          `json:"ephemeral_disk_mb"`
	GPUs            []GPUResources `json:"gpus"`
}

type GPUResources struct {
	Count int    `json:"count"`
	Model string `json:"model"`
}

type RetryPolicy struct {
	MaxRetries      int     `json:"max_retries"`
	InitialDelaySec float64 `json:"initial_delay_sec"`
	MaxDelaySec     float64 `json:"max_delay_sec"`
	DelayMultiplier float64 `json:"delay_multiplier"`
}

type PlacementConstraints struct {
	Locations []string `json:"locations,omitempty"`
}

// ApplicationState is "active", or disabled with a reason. It is encoded as
// either the string "active" or {"disabled": {"reason": "..."}}.
type ApplicationState struct {
	Disabled bool
	Reason   string
}

func (s *ApplicationState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		switch name {
		case "active":
			*s = ApplicationState{}
			return nil
		case "disabled":
			*s = ApplicationState{Disabled: true}
			return nil
		}
		return fmt.Errorf("unknown application state %q", name)
	}

	var obj struct {
		Disabled *struct {
			Reason string `json:"reason"`
		} `json:"disabled"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("parsing application state: %w", err)
	}
	if obj.Disabled == nil {
		return fmt.Errorf("unknown application state %s", data)
	}
	*s = ApplicationState{Disabled: true, Reason: obj.Disabled.Reason}
	return nil
}

func (s ApplicationState) MarshalJSON() ([]byte, error) {
	if !s.Disabled {
		return json.Marshal("active")
	}
	return json.Marshal(map[string]any{"disabled": map[string]string{"reason": s.Reason}})
}

func (s ApplicationState) String() string {
	if !s.Disabled {
		return "active"
	}
	if s.Reason == "" {
		return "disabled"
	}
	return "disabled: " + s.Reason
}

// ApplicationsList is one page of applications.
type ApplicationsList struct {
	Applications []Application `json:"applications"`
	Cursor       *string       `json:"cursor,omitempty"`
}

// ShallowRequest is a request as it appears in listings.
type ShallowRequest struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

// ApplicationRequests is one page of an application's requests.
type ApplicationRequests struct {
	Requests []ShallowRequest `json:"requests"`
	Cursor   *string          `json:"cursor,omitempty"`
}

// Request is the full state of one application invocation.
type Request struct {
	ID                 string          `json:"id"`
	ApplicationVersion string          `json:"application_version"`
	CreatedAt          int64           `json:"created_at"`
	Outcome            *RequestOutcome `json:"outcome,omitempty"`
	FailureReason      string          `json:"failure_reason,omitempty"`
	RequestError       *RequestError   `json:"request_error,omitempty"`
	FunctionRuns       []FunctionRun   `json:"function_runs"`
}

type RequestError struct {
	FunctionName string `json:"function_name"`
	Message      string `json:"message"`
}

// RequestOutcome is "unknown", "success", or {"failure": "<reason>"}.
type RequestOutcome struct {
	Status        string
	FailureReason string
}

const (
	OutcomeUnknown = "unknown"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

func (o *RequestOutcome) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*o = RequestOutcome{Status: name}
		return nil
	}

	var obj struct {
		Failure string `json:"failure"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("parsing request outcome: %w", err)
	}
	*o = RequestOutcome{Status: OutcomeFailure, FailureReason: obj.Failure}
	return nil
}

func (o RequestOutcome) MarshalJSON() ([]byte, error) {
	if o.Status == OutcomeFailure {
		return json.Marshal(map[string]string{"failure": o.FailureReason})
	}
	status := o.Status
	if status == "" {
		status = OutcomeUnknown
	}
	return json.Marshal(status)
}

func (o RequestOutcome) String() string {
	switch {
	case o.Status == "":
		return OutcomeUnknown
	case o.Status == OutcomeFailure && o.FailureReason != "":
		return "failure (" + o.FailureReason + ")"
	default:
		return o.Status
	}
}

type FunctionRun struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Namespace          string       `json:"namespace"`
	Application        string       `json:"application"`
	ApplicationVersion string       `json:"application_version"`
	CreatedAt          int64        `json:"created_at"`
	Status             string       `json:"status"`
	Outcome            string       `json:"outcome,omitempty"`
	Allocations        []Allocation `json:"allocations"`
}

type Allocation struct {
	ID                  string `json:"id"`
	AttemptNumber       int    `json:"attempt_number"`
	CreatedAt           int64  `json:"created_at"`
	ExecutionDurationMS *int64 `json:"execution_duration_ms,omitempty"`
	ExecutorID          string `json:"executor_id"`
	FunctionExecutorID  string `json:"function_executor_id"`
	FunctionName        string `json:"function_name"`
	Outcome             string `json:"outcome"`
}

// InvokeResponse is returned when an application is invoked.
type InvokeResponse struct {
	RequestID string `json:"request_id"`
}

// Output is a downloaded request or function output.
type Output struct {
	Content     []byte
	ContentType string
}

// ProgressUpdates is one page of a request's progress events.
type ProgressUpdates struct {
	Updates   []RequestStateChangeEvent `json:"updates"`
	NextToken *string                   `json:"next_token,omitempty"`
}
