package api

import (
	"strings"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
)

const (
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"

	// DefaultJobLimit matches the backend's default page size.
	DefaultJobLimit = 50
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() *apperror.AppError {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return apperror.New(apperror.BadRequest, "username and password are required")
	}
	return nil
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RescrapeRequest struct {
	JobType     job.Type `json:"job_type"`
	Platform    string   `json:"platform,omitempty"`
	Description string   `json:"description,omitempty"`
}

func (r RescrapeRequest) Validate() *apperror.AppError {
	switch r.JobType {
	case job.TypeRescrapeAll:
		return nil
	case job.TypeRescrapePlatform:
		if !ValidPlatform(r.Platform) {
			return apperror.New(apperror.BadRequest, "platform must be instagram or tiktok")
		}
		return nil
	default:
		return apperror.New(apperror.BadRequest, "invalid job type")
	}
}

type AutoRescrapeRequest struct {
	Platform    string `json:"platform,omitempty"`
	MaxCreators int    `json:"max_creators,omitempty"`
}

func (r AutoRescrapeRequest) Validate() *apperror.AppError {
	if r.Platform != "" && !ValidPlatform(r.Platform) {
		return apperror.New(apperror.BadRequest, "platform must be instagram or tiktok")
	}
	if r.MaxCreators < 0 {
		return apperror.New(apperror.BadRequest, "max creators cannot be negative")
	}
	return nil
}

func ValidPlatform(p string) bool {
	return p == PlatformInstagram || p == PlatformTikTok
}

// ActionResult is the acknowledgement every mutation returns. Only
// Message is always present.
type ActionResult struct {
	Message         string `json:"message"`
	JobID           string `json:"job_id,omitempty"`
	TotalItems      int    `json:"total_items,omitempty"`
	CreatorsCount   int    `json:"creators_count,omitempty"`
	UpdatedCount    int    `json:"updated_count,omitempty"`
	FixedCount      int    `json:"fixed_count,omitempty"`
	TaskID          string `json:"task_id,omitempty"`
	ResumeFromIndex int    `json:"resume_from_index,omitempty"`
}

type Health struct {
	Status string         `json:"status"`
	Raw    map[string]any `json:"-"`
}

func validateID(id string) *apperror.AppError {
	if strings.TrimSpace(id) == "" {
		return apperror.New(apperror.BadRequest, "invalid job id")
	}
	return nil
}
