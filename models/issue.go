package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum (storage vocabulary). The UI categories collapse
// many-to-one onto these, see mapping.go.
type IssueCategory string

const (
	IssueCategoryRoad        IssueCategory = "road"
	IssueCategoryElectricity IssueCategory = "electricity"
	IssueCategoryWaste       IssueCategory = "waste"
	IssueCategoryOther       IssueCategory = "other"
)

// IssuePriority enum (storage name for severity)
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "low"
	IssuePriorityMedium IssuePriority = "medium"
	IssuePriorityHigh   IssuePriority = "high"
)

// IssueStatus enum. The storage statuses are a subset of the UI statuses:
// there is no under_review remotely.
type IssueStatus string

const (
	IssueStatusReported   IssueStatus = "reported"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

// Issue is the persisted shape of a report in the issues collection.
type Issue struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Category      IssueCategory      `bson:"category" json:"category"`
	Priority      IssuePriority      `bson:"priority" json:"priority"`
	Status        IssueStatus        `bson:"status" json:"status"`
	Location      Location           `bson:"location" json:"location"`
	Images        []string           `bson:"images" json:"images"`
	CreatedBy     string             `bson:"createdBy" json:"createdBy"`
	CreatedByName string             `bson:"createdByName" json:"createdByName"`
	AssignedTo    *UserRef           `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Vote bookkeeping aggregated from the votes collection, never stored
	// on the issue document itself.
	Upvotes   int      `bson:"-" json:"upvotes"`
	UpvotedBy []string `bson:"-" json:"upvotedBy"`
}

// IssueFilter narrows ListIssues. Empty fields match everything.
type IssueFilter struct {
	Status   IssueStatus
	Category IssueCategory
	Priority IssuePriority
	UserID   string
}

// IssuePatch is a partial update of an issue document. Nil fields are not
// written.
type IssuePatch struct {
	Title       *string
	Description *string
	Category    *IssueCategory
	Priority    *IssuePriority
	Status      *IssueStatus
	Location    *Location
	Images      []string
}

// IssueComment is the persisted shape of a comment in the comments
// collection. UserName and UserRole are joined from the users collection on
// read.
type IssueComment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID   primitive.ObjectID `bson:"issue" json:"issue"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	UserName string `bson:"-" json:"userName,omitempty"`
	UserRole string `bson:"-" json:"userRole,omitempty"`
}
