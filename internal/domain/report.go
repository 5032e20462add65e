package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	ReportSubmitted ReportStatus = "Submitted"
	ReportInReview  ReportStatus = "In Review"
	ReportResolved  ReportStatus = "Resolved"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportSubmitted, ReportInReview, ReportResolved:
		return true
	}
	return false
}

// Report is an incident report. Reports are never deleted; only an admin
// mutates Status, and transitions are not ordered.
type Report struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	AuthorName  string       `json:"author_name,omitempty"` // joined on list queries
	Description string       `json:"description"`
	Status      ReportStatus `json:"status"`
	Point       GeoPoint     `json:"location"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ReportEvent is the public-safe projection broadcast to live viewers.
// It carries the author's name only, never email or any credential data.
type ReportEvent struct {
	ID          uuid.UUID    `json:"id"`
	Description string       `json:"description"`
	Status      ReportStatus `json:"status"`
	Point       GeoPoint     `json:"location"`
	AuthorName  string       `json:"author_name"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (r Report) Event() ReportEvent {
	return ReportEvent{
		ID:          r.ID,
		Description: r.Description,
		Status:      r.Status,
		Point:       r.Point,
		AuthorName:  r.AuthorName,
		CreatedAt:   r.CreatedAt,
	}
}
