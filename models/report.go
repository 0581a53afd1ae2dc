package models

import "time"

// ReportCategory enum (UI vocabulary)
type ReportCategory string

const (
	CategoryPothole     ReportCategory = "pothole"
	CategoryStreetlight ReportCategory = "streetlight"
	CategoryGarbage     ReportCategory = "garbage"
	CategoryGraffiti    ReportCategory = "graffiti"
	CategoryRoadDamage  ReportCategory = "road_damage"
	CategoryFlooding    ReportCategory = "flooding"
	CategorySignDamage  ReportCategory = "sign_damage"
	CategoryOther       ReportCategory = "other"
)

// ReportCategories lists every valid UI category.
var ReportCategories = []ReportCategory{
	CategoryPothole, CategoryStreetlight, CategoryGarbage, CategoryGraffiti,
	CategoryRoadDamage, CategoryFlooding, CategorySignDamage, CategoryOther,
}

func (c ReportCategory) Valid() bool {
	for _, v := range ReportCategories {
		if c == v {
			return true
		}
	}
	return false
}

// ReportSeverity enum
type ReportSeverity string

const (
	SeverityLow    ReportSeverity = "low"
	SeverityMedium ReportSeverity = "medium"
	SeverityHigh   ReportSeverity = "high"
)

func (s ReportSeverity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// ReportStatus enum. There is no enforced transition graph: any authorized
// update may set any status, and resolved/closed reports can be reopened.
type ReportStatus string

const (
	StatusReported    ReportStatus = "reported"
	StatusUnderReview ReportStatus = "under_review"
	StatusInProgress  ReportStatus = "in_progress"
	StatusResolved    ReportStatus = "resolved"
	StatusClosed      ReportStatus = "closed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case StatusReported, StatusUnderReview, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// UserRef is a lightweight reference to a user embedded in reports.
type UserRef struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Location is an address plus coordinates in floating point degrees.
type Location struct {
	Address   string  `bson:"address" json:"address"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Report is the UI-facing shape of a citizen-submitted issue.
type Report struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    ReportCategory `json:"category"`
	Severity    ReportSeverity `json:"severity"`
	Status      ReportStatus   `json:"status"`
	Location    Location       `json:"location"`
	Images      []string       `json:"images"`
	ReportedBy  UserRef        `json:"reportedBy"`
	AssignedTo  *UserRef       `json:"assignedTo,omitempty"`
	Upvotes     int            `json:"upvotes"`
	UpvotedBy   []string       `json:"upvotedBy"`
	Comments    []Comment      `json:"comments"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// HasUpvoted reports whether userID is already in the voter set.
func (r *Report) HasUpvoted(userID string) bool {
	for _, id := range r.UpvotedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// ReportDraft is the input for creating a report. ID, timestamps, upvotes and
// comments are assigned by the store; severity and status default when empty.
type ReportDraft struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    ReportCategory `json:"category"`
	Severity    ReportSeverity `json:"severity"`
	Status      ReportStatus   `json:"status"`
	Location    *Location      `json:"location"`
	Images      []string       `json:"images"`
	ReportedBy  UserRef        `json:"reportedBy"`
	AssignedTo  *UserRef       `json:"assignedTo,omitempty"`
}

// ReportUpdate is a partial set of field changes. Nil fields are left
// untouched. Only title, description, category, severity, location, images
// and status are forwarded to the remote store; assignedTo is merged into
// local state only.
type ReportUpdate struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Category    *ReportCategory `json:"category,omitempty"`
	Severity    *ReportSeverity `json:"severity,omitempty"`
	Status      *ReportStatus   `json:"status,omitempty"`
	Location    *Location       `json:"location,omitempty"`
	Images      []string        `json:"images,omitempty"`
	AssignedTo  *UserRef        `json:"assignedTo,omitempty"`
}
