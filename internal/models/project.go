package models

import (
	"strings"
	"time"
)

// ProjectStatus identifies a project's publication state
type ProjectStatus string

// Project statuses
const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusPublished ProjectStatus = "published"
)

// Valid reports whether the status is one of the known values
func (s ProjectStatus) Valid() bool {
	return s == ProjectStatusDraft || s == ProjectStatusPublished
}

// Project represents a portfolio project.
// Tools is stored as a single comma-delimited string; the tag vocabulary is
// derived entirely from that field on read.
type Project struct {
	ID          int           `json:"id"`
	UserID      int           `json:"user_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Tools       string        `json:"tools"`
	Year        int           `json:"year"`
	Image       string        `json:"image"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Username    string        `json:"username"` // joined owner username, not persisted on projects
}

// ToolList splits the delimited tools string into trimmed labels
func (p *Project) ToolList() []string {
	return SplitTools(p.Tools)
}

// SplitTools splits a comma-delimited tools string into trimmed labels,
// dropping empty entries
func SplitTools(tools string) []string {
	parts := strings.Split(tools, ",")
	labels := make([]string, 0, len(parts))
	for _, part := range parts {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// ProjectInput carries the raw form fields for project creation. Year and
// Status arrive as untyped form values and are parsed by the service.
type ProjectInput struct {
	Title       string
	Description string
	Category    string
	Tools       string
	Year        string
	Status      string
}

// ProjectUpdate carries a partial update. Nil fields are left untouched;
// a non-nil empty string is applied as-is.
type ProjectUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Tools       *string
	Year        *int
	Image       *string
	Status      *ProjectStatus
}

// Empty reports whether the update carries no fields
func (u *ProjectUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil &&
		u.Tools == nil && u.Year == nil && u.Image == nil && u.Status == nil
}
