package job

type Status string

const (
	StatusPending   Status = "pending"
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusPending, StatusQueued, StatusRunning,
	StatusCompleted, StatusFailed, StatusCancelled,
}

type Type string

const (
	TypeNewCreators      Type = "new_creators"
	TypeRescrapeAll      Type = "rescrape_all"
	TypeRescrapePlatform Type = "rescrape_platform"
)

func (t Type) IsRescrape() bool {
	return t == TypeRescrapeAll || t == TypeRescrapePlatform
}

type NicheStats struct {
	PrimaryNiches   map[string]int `json:"primary_niches,omitempty"`
	SecondaryNiches map[string]int `json:"secondary_niches,omitempty"`
}

// Results holds the creator handles a job touched, grouped by outcome.
type Results struct {
	Added      []string    `json:"added,omitempty"`
	Updated    []string    `json:"updated,omitempty"`
	Deleted    []string    `json:"deleted,omitempty"`
	Failed     []string    `json:"failed,omitempty"`
	Skipped    []string    `json:"skipped,omitempty"`
	Filtered   []string    `json:"filtered,omitempty"`
	NicheStats *NicheStats `json:"niche_stats,omitempty"`
}

type Job struct {
	ID             string    `json:"id"`
	Type           Type      `json:"job_type"`
	Status         Status    `json:"status"`
	Description    string    `json:"description"`
	TotalItems     int       `json:"total_items,omitempty"`
	ProcessedItems int       `json:"processed_items,omitempty"`
	FailedItems    int       `json:"failed_items,omitempty"`
	Results        *Results  `json:"results,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      Timestamp `json:"created_at"`
	UpdatedAt      Timestamp `json:"updated_at"`
}
