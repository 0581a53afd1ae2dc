package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Revanthgowda45/CityFix1/models"
)

// ErrInvalidDraft is returned by Add before any remote call when the draft
// is missing its reporter or location.
var ErrInvalidDraft = errors.New("report draft must include reportedBy and location")

// ReportStore is the single source of truth for the report collection
// visible to API consumers. It mirrors the remote issues collection into
// memory, translates between the UI and storage vocabularies, and
// reconciles local state after every confirmed remote write.
//
// Within a single operation the remote write always completes (or fails)
// before the local merge, so local state never reflects an unconfirmed
// write — except Upvote, which advances locally even when the remote vote
// fails. There is no mutual exclusion between operations on the same
// report: the last merge to complete wins.
type ReportStore struct {
	remote RemoteStore
	now    func() time.Time

	mu      sync.Mutex
	reports []models.Report
	subs    map[int]func([]models.Report)
	nextSub int
}

// New constructs a ReportStore around the given remote. The collection is
// empty until Refresh is called.
func New(remote RemoteStore) *ReportStore {
	return &ReportStore{
		remote: remote,
		now:    time.Now,
		subs:   make(map[int]func([]models.Report)),
	}
}

// List returns a snapshot of the in-memory report collection.
func (s *ReportStore) List() []models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Add persists a new report and appends it to local state. The returned
// report keeps the draft's category and severity verbatim, so they survive
// the trip through the storage vocabulary within the session. On remote
// failure nothing is inserted locally.
func (s *ReportStore) Add(ctx context.Context, draft models.ReportDraft) (models.Report, error) {
	if draft.ReportedBy.ID == "" || draft.Location == nil {
		return models.Report{}, ErrInvalidDraft
	}

	severity := draft.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	status := draft.Status
	if status == "" {
		status = models.StatusReported
	}
	images := draft.Images
	if images == nil {
		images = []string{}
	}

	issue := models.Issue{
		Title:         draft.Title,
		Description:   draft.Description,
		Category:      models.CategoryToIssue(draft.Category),
		Priority:      models.SeverityToPriority(severity),
		Status:        models.StatusToIssue(status),
		Location:      *draft.Location,
		Images:        images,
		CreatedBy:     draft.ReportedBy.ID,
		CreatedByName: draft.ReportedBy.Name,
		AssignedTo:    draft.AssignedTo,
	}

	created, err := s.remote.CreateIssue(ctx, issue)
	if err != nil {
		return models.Report{}, err
	}

	report := models.Report{
		ID:          created.ID.Hex(),
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Severity:    severity,
		Status:      status,
		Location:    *draft.Location,
		Images:      images,
		ReportedBy:  draft.ReportedBy,
		AssignedTo:  draft.AssignedTo,
		Upvotes:     0,
		UpvotedBy:   []string{},
		Comments:    []models.Comment{},
		CreatedAt:   created.CreatedAt,
		UpdatedAt:   created.UpdatedAt,
	}

	s.mu.Lock()
	s.reports = append(s.reports, report)
	s.mu.Unlock()

	return report, nil
}

// ListByUser fetches the given user's reports straight from the remote
// store, newest first. It reads through rather than filtering the local
// snapshot so the listing reflects authoritative vote counts; local state
// is not touched.
func (s *ReportStore) ListByUser(ctx context.Context, userID string) ([]models.Report, error) {
	issues, err := s.remote.ListIssues(ctx, models.IssueFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	reports := make([]models.Report, 0, len(issues))
	for _, issue := range issues {
		reports = append(reports, reportFromIssue(issue))
	}
	return reports, nil
}

// Update forwards the recognized fields of the patch to the remote store,
// then merges the whole patch into the local record and refreshes
// UpdatedAt. The local merge intentionally applies every patch field, even
// ones the remote update did not carry (assignedTo). Returns the merged
// report, or the zero Report if the id is no longer in local state.
func (s *ReportStore) Update(ctx context.Context, id string, patch models.ReportUpdate) (models.Report, error) {
	issuePatch := models.IssuePatch{
		Title:       patch.Title,
		Description: patch.Description,
		Location:    patch.Location,
		Images:      patch.Images,
	}
	if patch.Category != nil {
		c := models.CategoryToIssue(*patch.Category)
		issuePatch.Category = &c
	}
	if patch.Severity != nil {
		p := models.SeverityToPriority(*patch.Severity)
		issuePatch.Priority = &p
	}
	if patch.Status != nil {
		st := models.StatusToIssue(*patch.Status)
		issuePatch.Status = &st
	}

	if _, err := s.remote.UpdateIssue(ctx, id, issuePatch); err != nil {
		return models.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reports {
		if s.reports[i].ID != id {
			continue
		}
		r := &s.reports[i]
		if patch.Title != nil {
			r.Title = *patch.Title
		}
		if patch.Description != nil {
			r.Description = *patch.Description
		}
		if patch.Category != nil {
			r.Category = *patch.Category
		}
		if patch.Severity != nil {
			r.Severity = *patch.Severity
		}
		if patch.Status != nil {
			r.Status = *patch.Status
		}
		if patch.Location != nil {
			r.Location = *patch.Location
		}
		if patch.Images != nil {
			r.Images = patch.Images
		}
		if patch.AssignedTo != nil {
			r.AssignedTo = patch.AssignedTo
		}
		r.UpdatedAt = s.now()
		return *r, nil
	}
	return models.Report{}, nil
}

// Delete removes the report remotely, then locally. On remote failure
// (including not-found) local state is left untouched.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	if err := s.remote.DeleteIssue(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reports {
		if s.reports[i].ID == id {
			s.reports = append(s.reports[:i], s.reports[i+1:]...)
			break
		}
	}
	return nil
}

// GetByID looks the report up in local state; ok is false when absent. On a
// hit the comment list is fetched fresh from the remote store. If that
// fetch fails the report is still returned with the comments already held
// locally.
func (s *ReportStore) GetByID(ctx context.Context, id string) (models.Report, bool) {
	s.mu.Lock()
	var report models.Report
	found := false
	for i := range s.reports {
		if s.reports[i].ID == id {
			report = s.reports[i]
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return models.Report{}, false
	}

	records, err := s.remote.ListComments(ctx, id)
	if err != nil {
		log.Printf("ReportStore: failed to fetch comments for %s: %v", id, err)
		return report, true
	}

	comments := make([]models.Comment, 0, len(records))
	for _, rec := range records {
		comments = append(comments, models.Comment{
			ID:   rec.ID.Hex(),
			Text: rec.Content,
			Author: models.CommentAuthor{
				ID:   rec.UserID.Hex(),
				Name: rec.UserName,
				Role: rec.UserRole,
			},
			CreatedAt: rec.CreatedAt,
		})
	}
	report.Comments = comments
	return report, true
}

// Upvote records a vote best-effort: the remote call is attempted first and
// its failure is logged rather than propagated, local bookkeeping advances
// regardless. A user already in the voter set is a no-op. ok is false when
// the id is not in local state.
func (s *ReportStore) Upvote(ctx context.Context, id, userID string) (models.Report, bool) {
	if err := s.remote.Vote(ctx, id, userID); err != nil {
		log.Printf("ReportStore: remote vote failed for %s: %v", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reports {
		if s.reports[i].ID != id {
			continue
		}
		r := &s.reports[i]
		if r.HasUpvoted(userID) {
			return *r, true
		}
		r.Upvotes++
		r.UpvotedBy = append(r.UpvotedBy, userID)
		r.UpdatedAt = s.now()
		return *r, true
	}
	return models.Report{}, false
}

// AddComment persists the comment, then appends it to the local report and
// refreshes UpdatedAt. On remote failure nothing is appended locally.
func (s *ReportStore) AddComment(ctx context.Context, reportID string, draft models.CommentDraft) (models.Comment, error) {
	rec, err := s.remote.CreateComment(ctx, reportID, draft.Author.ID, draft.Text)
	if err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		ID:        rec.ID.Hex(),
		Text:      draft.Text,
		Author:    draft.Author,
		CreatedAt: rec.CreatedAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reports {
		if s.reports[i].ID == reportID {
			s.reports[i].Comments = append(s.reports[i].Comments, comment)
			s.reports[i].UpdatedAt = s.now()
			break
		}
	}
	return comment, nil
}

// Subscribe registers a callback invoked with the full collection after
// every remote-triggered refetch. The returned func cancels the
// registration.
func (s *ReportStore) Subscribe(onChange func([]models.Report)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = onChange
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Refresh refetches the full issue list and replaces local state wholesale,
// then notifies subscribers. There is no incremental merge; an in-flight
// CRUD merge and a refetch are not coordinated and the later write wins.
func (s *ReportStore) Refresh(ctx context.Context) error {
	issues, err := s.remote.ListIssues(ctx, models.IssueFilter{})
	if err != nil {
		return err
	}

	reports := make([]models.Report, 0, len(issues))
	for _, issue := range issues {
		reports = append(reports, reportFromIssue(issue))
	}

	s.mu.Lock()
	s.reports = reports
	snapshot := make([]models.Report, len(reports))
	copy(snapshot, reports)
	callbacks := make([]func([]models.Report), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(snapshot)
	}
	return nil
}

// Start hooks the store to the remote change feed: every notification
// triggers a full Refresh. This is the only path where remote-initiated
// state changes reach local state. The returned func stops the feed.
func (s *ReportStore) Start(ctx context.Context) (func(), error) {
	return s.remote.Subscribe(ctx, func(ChangeEvent) {
		if err := s.Refresh(ctx); err != nil {
			log.Printf("ReportStore: refresh after change notification failed: %v", err)
		}
	})
}

// reportFromIssue maps a storage record back into the UI shape. Collapsed
// categories come back as their canonical representative.
func reportFromIssue(issue models.Issue) models.Report {
	upvotedBy := issue.UpvotedBy
	if upvotedBy == nil {
		upvotedBy = []string{}
	}
	images := issue.Images
	if images == nil {
		images = []string{}
	}
	return models.Report{
		ID:          issue.ID.Hex(),
		Title:       issue.Title,
		Description: issue.Description,
		Category:    models.CategoryFromIssue(issue.Category),
		Severity:    models.PriorityToSeverity(issue.Priority),
		Status:      models.StatusFromIssue(issue.Status),
		Location:    issue.Location,
		Images:      images,
		ReportedBy:  models.UserRef{ID: issue.CreatedBy, Name: issue.CreatedByName},
		AssignedTo:  issue.AssignedTo,
		Upvotes:     issue.Upvotes,
		UpvotedBy:   upvotedBy,
		Comments:    []models.Comment{},
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}
