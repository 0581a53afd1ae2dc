package store

import (
	"context"

	"github.com/Revanthgowda45/CityFix1/models"
)

// ChangeEvent is a notification that something in the issues collection
// changed. The payload carries no guarantees; consumers must treat it as
// opaque and refetch.
type ChangeEvent struct {
	Op      string `json:"op"`
	IssueID string `json:"issueId,omitempty"`
}

// RemoteStore is the persistence collaborator of the ReportStore. All
// methods speak the storage vocabulary (Issue); the store owns the
// translation to and from the UI vocabulary.
type RemoteStore interface {
	// CreateIssue persists a new issue and returns it with a generated ID
	// and authoritative timestamps.
	CreateIssue(ctx context.Context, issue models.Issue) (models.Issue, error)

	// ListIssues returns issues matching the filter, newest first, with
	// vote bookkeeping populated.
	ListIssues(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error)

	// UpdateIssue applies a partial update. Fails if the id is unknown.
	UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error)

	// DeleteIssue removes an issue and its votes and comments. Fails if
	// the id is unknown.
	DeleteIssue(ctx context.Context, id string) error

	// Vote records an upvote. Repeated votes by the same user are a no-op
	// enforced server-side.
	Vote(ctx context.Context, issueID, userID string) error

	// CreateComment persists a comment and returns it with a generated ID
	// and CreatedAt.
	CreateComment(ctx context.Context, issueID, userID, content string) (models.IssueComment, error)

	// ListComments returns an issue's comments oldest first.
	ListComments(ctx context.Context, issueID string) ([]models.IssueComment, error)

	// Subscribe delivers a ChangeEvent for every issue insert, update or
	// delete until the returned cancel func is called.
	Subscribe(ctx context.Context, onEvent func(ChangeEvent)) (func(), error)
}
