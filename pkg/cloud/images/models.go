package images

// BuildStatus is the lifecycle state of an image build.
type BuildStatus string

const (
	StatusPending   BuildStatus = "pending"
	StatusEnqueued  BuildStatus = "enqueued"
	StatusBuilding  BuildStatus = "building"
	StatusSucceeded BuildStatus = "succeeded"
	StatusFailed    BuildStatus = "failed"
	StatusCanceling BuildStatus = "canceling"
	StatusCanceled  BuildStatus = "canceled"

	// statusCompleted is reported by older build services for success.
	statusCompleted BuildStatus = "completed"
)

// Succeeded reports whether the build produced an image.
func (s BuildStatus) Succeeded() bool {
	return s == StatusSucceeded || s == statusCompleted
}

// Terminal reports whether the build will not change state again.
func (s BuildStatus) Terminal() bool {
	return s.Succeeded() || s == StatusFailed || s == StatusCanceled
}

// BuildInfo is the detailed state of one build.
type BuildInfo struct {
	ID           string      `json:"id"`
	Status       BuildStatus `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
	FinishedAt   string      `json:"finished_at,omitempty"`
	ImageHash    string      `json:"image_hash"`
	ImageName    string      `json:"image_name,omitempty"`
}

// BuildListItem is a build as it appears in listings.
type BuildListItem struct {
	PublicID     string      `json:"public_id"`
	Name         string      `json:"name"`
	Tags         []string    `json:"tags"`
	CreationTime string      `json:"creation_time"`
	Status       BuildStatus `json:"status"`
}

// Page is one page of a page-number paginated listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalItems int64 `json:"total_items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// ListBuildsOptions filters ListBuilds. Zero values are omitted.
type ListBuildsOptions struct {
	Page            int
	PageSize        int
	Status          BuildStatus
	ApplicationName string
	ImageName       string
	FunctionName    string
}

type CancelBuildResponse struct {
	Status string `json:"status"`
}

// LogEntry is one line of build output from the log stream.
type LogEntry struct {
	BuildID        string `json:"build_id"`
	Timestamp      string `json:"timestamp"`
	Stream         string `json:"stream"`
	Message        string `json:"message"`
	SequenceNumber int64  `json:"sequence_number"`
	BuildStatus    string `json:"build_status"`
}
