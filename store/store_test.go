package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Revanthgowda45/CityFix1/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRemote is an in-memory RemoteStore that mimics the backend contract:
// generated ids, newest-first listing, server-side vote idempotency and a
// synchronous change feed.
type fakeRemote struct {
	mu       sync.Mutex
	issues   []models.Issue
	comments map[string][]models.IssueComment
	votes    map[string]map[string]bool
	handlers []func(ChangeEvent)
	pending  []ChangeEvent

	failCreate   error
	failUpdate   error
	failDelete   error
	failVote     error
	failComments error
	failList     error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		comments: make(map[string][]models.IssueComment),
		votes:    make(map[string]map[string]bool),
	}
}

var errUnknownIssue = errors.New("issue not found")

// emit queues a change notification; flush delivers the queue the way the
// real feed would, after the triggering write has fully completed.
func (f *fakeRemote) emit(ev ChangeEvent) {
	f.pending = append(f.pending, ev)
}

func (f *fakeRemote) flush() {
	events := f.pending
	f.pending = nil
	for _, ev := range events {
		for _, h := range f.handlers {
			h(ev)
		}
	}
}

func (f *fakeRemote) CreateIssue(ctx context.Context, issue models.Issue) (models.Issue, error) {
	if f.failCreate != nil {
		return models.Issue{}, f.failCreate
	}
	f.mu.Lock()
	now := time.Now()
	issue.ID = primitive.NewObjectID()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	f.issues = append(f.issues, issue)
	f.mu.Unlock()
	f.emit(ChangeEvent{Op: "insert", IssueID: issue.ID.Hex()})
	return issue, nil
}

func (f *fakeRemote) ListIssues(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Issue, 0, len(f.issues))
	// Newest first.
	for i := len(f.issues) - 1; i >= 0; i-- {
		issue := f.issues[i]
		if filter.Status != "" && issue.Status != filter.Status {
			continue
		}
		if filter.Category != "" && issue.Category != filter.Category {
			continue
		}
		if filter.Priority != "" && issue.Priority != filter.Priority {
			continue
		}
		if filter.UserID != "" && issue.CreatedBy != filter.UserID {
			continue
		}
		voters := f.votes[issue.ID.Hex()]
		issue.UpvotedBy = make([]string, 0, len(voters))
		for u := range voters {
			issue.UpvotedBy = append(issue.UpvotedBy, u)
		}
		issue.Upvotes = len(voters)
		out = append(out, issue)
	}
	return out, nil
}

func (f *fakeRemote) UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error) {
	if f.failUpdate != nil {
		return models.Issue{}, f.failUpdate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.issues {
		if f.issues[i].ID.Hex() != id {
			continue
		}
		if patch.Title != nil {
			f.issues[i].Title = *patch.Title
		}
		if patch.Description != nil {
			f.issues[i].Description = *patch.Description
		}
		if patch.Category != nil {
			f.issues[i].Category = *patch.Category
		}
		if patch.Priority != nil {
			f.issues[i].Priority = *patch.Priority
		}
		if patch.Status != nil {
			f.issues[i].Status = *patch.Status
		}
		if patch.Location != nil {
			f.issues[i].Location = *patch.Location
		}
		if patch.Images != nil {
			f.issues[i].Images = patch.Images
		}
		f.issues[i].UpdatedAt = time.Now()
		return f.issues[i], nil
	}
	return models.Issue{}, errUnknownIssue
}

func (f *fakeRemote) DeleteIssue(ctx context.Context, id string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	f.mu.Lock()
	for i := range f.issues {
		if f.issues[i].ID.Hex() == id {
			f.issues = append(f.issues[:i], f.issues[i+1:]...)
			f.mu.Unlock()
			f.emit(ChangeEvent{Op: "delete", IssueID: id})
			return nil
		}
	}
	f.mu.Unlock()
	return errUnknownIssue
}

func (f *fakeRemote) Vote(ctx context.Context, issueID, userID string) error {
	if f.failVote != nil {
		return f.failVote
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.votes[issueID] == nil {
		f.votes[issueID] = make(map[string]bool)
	}
	f.votes[issueID][userID] = true
	return nil
}

func (f *fakeRemote) CreateComment(ctx context.Context, issueID, userID, content string) (models.IssueComment, error) {
	if f.failComments != nil {
		return models.IssueComment{}, f.failComments
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	userObjID, _ := primitive.ObjectIDFromHex(userID)
	issueObjID, _ := primitive.ObjectIDFromHex(issueID)
	rec := models.IssueComment{
		ID:        primitive.NewObjectID(),
		IssueID:   issueObjID,
		UserID:    userObjID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	f.comments[issueID] = append(f.comments[issueID], rec)
	return rec, nil
}

func (f *fakeRemote) ListComments(ctx context.Context, issueID string) ([]models.IssueComment, error) {
	if f.failComments != nil {
		return nil, f.failComments
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.IssueComment(nil), f.comments[issueID]...), nil
}

func (f *fakeRemote) Subscribe(ctx context.Context, onEvent func(ChangeEvent)) (func(), error) {
	f.handlers = append(f.handlers, onEvent)
	return func() { f.handlers = nil }, nil
}

func validDraft() models.ReportDraft {
	return models.ReportDraft{
		Title:       "Broken streetlight on Elm St",
		Description: "The light has been out for a week",
		Category:    models.CategoryStreetlight,
		Severity:    models.SeverityMedium,
		Location:    &models.Location{Address: "12 Elm St", Latitude: 17.38, Longitude: 78.48},
		ReportedBy:  models.UserRef{ID: primitive.NewObjectID().Hex(), Name: "Asha"},
	}
}

func TestAddAssignsFreshIDs(t *testing.T) {
	s := New(newFakeRemote())
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		report, err := s.Add(ctx, validDraft())
		require.NoError(t, err)
		assert.NotEmpty(t, report.ID)
		assert.False(t, seen[report.ID], "id %s reused", report.ID)
		seen[report.ID] = true
	}
	assert.Len(t, s.List(), 5)
}

func TestAddKeepsCategoryAndSeverity(t *testing.T) {
	remote := newFakeRemote()
	s := New(remote)

	draft := validDraft()
	draft.Category = models.CategoryPothole
	draft.Severity = models.SeverityHigh

	report, err := s.Add(context.Background(), draft)
	require.NoError(t, err)

	// The session keeps the UI vocabulary verbatim...
	assert.Equal(t, models.CategoryPothole, report.Category)
	assert.Equal(t, models.SeverityHigh, report.Severity)

	// ...while the remote record carries the storage vocabulary.
	require.Len(t, remote.issues, 1)
	assert.Equal(t, models.IssueCategoryRoad, remote.issues[0].Category)
	assert.Equal(t, models.IssuePriorityHigh, remote.issues[0].Priority)
}

func TestAddDefaultsSeverityAndStatus(t *testing.T) {
	s := New(newFakeRemote())

	draft := validDraft()
	draft.Severity = ""
	draft.Status = ""

	report, err := s.Add(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, models.SeverityMedium, report.Severity)
	assert.Equal(t, models.StatusReported, report.Status)
}

func TestAddNormalizesNilImages(t *testing.T) {
	remote := newFakeRemote()
	s := New(remote)

	draft := validDraft()
	draft.Images = nil

	report, err := s.Add(context.Background(), draft)
	require.NoError(t, err)

	// A report with no photos serializes as [], never null, the same as
	// records coming back from a refetch.
	assert.NotNil(t, report.Images)
	assert.Empty(t, report.Images)
	assert.NotNil(t, s.List()[0].Images)

	require.Len(t, remote.issues, 1)
	assert.NotNil(t, remote.issues[0].Images)
}

func TestAddRejectsIncompleteDraft(t *testing.T) {
	s := New(newFakeRemote())

	draft := validDraft()
	draft.Location = nil
	_, err := s.Add(context.Background(), draft)
	assert.ErrorIs(t, err, ErrInvalidDraft)

	draft = validDraft()
	draft.ReportedBy = models.UserRef{}
	_, err = s.Add(context.Background(), draft)
	assert.ErrorIs(t, err, ErrInvalidDraft)

	assert.Empty(t, s.List())
}

func TestAddRemoteFailureLeavesStateUnchanged(t *testing.T) {
	remote := newFakeRemote()
	remote.failCreate = errors.New("backend down")
	s := New(remote)

	_, err := s.Add(context.Background(), validDraft())
	assert.Error(t, err)
	assert.Empty(t, s.List())
}

func TestUpvoteIdempotentPerUser(t *testing.T) {
	s := New(newFakeRemote())
	ctx := context.Background()

	report, err := s.Add(ctx, validDraft())
	require.NoError(t, err)
	user := primitive.NewObjectID().Hex()

	first, ok := s.Upvote(ctx, report.ID, user)
	require.True(t, ok)
	assert.Equal(t, 1, first.Upvotes)
	assert.Equal(t, []string{user}, first.UpvotedBy)

	second, ok := s.Upvote(ctx, report.ID, user)
	require.True(t, ok)
	assert.Equal(t, 1, second.Upvotes)
	assert.Equal(t, []string{user}, second.UpvotedBy)
}

func TestUpvoteTwoUsers(t *testing.T) {
	s := New(newFakeRemote())
	ctx := context.Background()

	report, err := s.Add(ctx, validDraft())
	require.NoError(t, err)
	u1 := primitive.NewObjectID().Hex()
	u2 := primitive.NewObjectID().Hex()

	s.Upvote(ctx, report.ID, u1)
	voted, ok := s.Upvote(ctx, report.ID, u2)
	require.True(t, ok)

	assert.Equal(t, 2, voted.Upvotes)
	assert.ElementsMatch(t, []string{u1, u2}, voted.UpvotedBy)
	assert.Equal(t, len(voted.UpvotedBy), voted.Upvotes)
}

func TestUpvoteAdvancesLocallyWhenRemoteFails(t *testing.T) {
	remote := newFakeRemote()
	remote.failVote = errors.New("vote service down")
	s := New(remote)
	ctx := context.Background()

	report, err := s.Add(ctx, validDraft())
	require.NoError(t, err)

	voted, ok := s.Upvote(ctx, report.ID, "u1")
	require.True(t, ok)
	assert.Equal(t, 1, voted.Upvotes)
}

func TestUpvoteUnknownReport(t *testing.T) {
	s := New(newFakeRemote())
	_, ok := s.Upvote(context.Background(), primitive.NewObjectID().Hex(), "u1")
	assert.False(t, ok)
}

func TestDeleteRemovesFromList(t *testing.T) {
	s := New(newFakeRemote())
	ctx := context.Background()

	report, err := s.Add(ctx, validDraft())
	require.NoError(t, err)
	keep, err := s.Add(ctx, validDraft())
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, report.ID))

	for _, r := range s.List() {
		assert.NotEqual(t, report.ID, r.ID)
	}
	assert.Len(t, s.List(), 1)

	// Deleting again surfaces the remote not-found error and leaves the
	// already-absent local state alone.
	err = s.Delete(ctx, report.ID)
	assert.Error(t, err)
	assert.Len(t, s.List(), 1)
	assert.Equal(t, keep.ID, s.List()[0].ID)
}

func TestDeleteRemoteFailureKeepsLocal(t *testing.T) {
	remote := newFakeRemote()
	s := New(remote)
	ctx := context.Background()

	report, err := s.Add(ctx, validDraft())
	require.NoError(t, err)

	remote.failDelete = errors.New("backend down")
	assert.Error(t, s.Delete(ctx, report.ID))
	assert.Len(t, s.List(), 1)
}

func TestUpdateStatusMovesFreely(t *testing.T) {
	s := New(newFakeRemote())
	ctx := context.Background()

	report, err := s.Add(ctx, validDraft())
	require.NoError(t, err)

	resolved := models.StatusResolved
	updated, err := s.Update(ctx, report.ID, models.ReportUpdate{Status: &resolved})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)

	// No forward-only constraint: a resolved report can be reopened.
	reported := models.StatusReported
	updated, err = s.Update(ctx, report.ID, models.ReportUpdate{Status: &reported})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReported, updated.Status)
}

func TestUpdateMergesPatchAndRefreshesUpdatedAt(t *testing.T) {
	s := New(newFakeRemote())
	ctx := context.Background()

	report, err := s.Add(ctx, validDraft())
	require.NoError(t, err)

	stamp := time.Now().Add(time.Hour)
	s.now = func() time.Time { return stamp }

	title := "New title"
	assignee := &models.UserRef{ID: "admin1", Name: "Ravi"}
	updated, err := s.Update(ctx, report.ID, models.ReportUpdate{Title: &title, AssignedTo: assignee})
	require.NoError(t, err)

	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, assignee, updated.AssignedTo)
	assert.Equal(t, stamp, updated.UpdatedAt)
	// Untouched fields survive the merge.
	assert.Equal(t, report.Description, updated.Description)
	assert.Equal(t, report.Category, updated.Category)
}

func TestUpdateUnknownIDPropagatesError(t *testing.T) {
	s := New(newFakeRemote())

	title := "nope"
	_, err := s.Update(context.Background(), primitive.NewObjectID().Hex(), models.ReportUpdate{Title: &title})
	assert.Error(t, err)
}

func TestCommentScenario(t *testing.T) {
	s := New(newFakeRemote())
	ctx := context.Background()

	draft := validDraft()
	draft.Category = models.CategoryStreetlight
	draft.Severity = models.SeverityMedium
	report, err := s.Add(ctx, draft)
	require.NoError(t, err)

	comment, err := s.AddComment(ctx, report.ID, models.CommentDraft{
		Text:   "test",
		Author: models.CommentAuthor{ID: draft.ReportedBy.ID, Name: "Asha", Role: "citizen"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)

	got, ok := s.GetByID(ctx, report.ID)
	require.True(t, ok)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "test", got.Comments[0].Text)
}

func TestAddCommentRemoteFailureNoLocalAppend(t *testing.T) {
	remote := newFakeRemote()
	s := New(remote)
	ctx := context.Background()

	report, err := s.Add(ctx, validDraft())
	require.NoError(t, err)

	remote.failComments = errors.New("backend down")
	_, err = s.AddComment(ctx, report.ID, models.CommentDraft{Text: "lost"})
	assert.Error(t, err)

	remote.failComments = nil
	got, ok := s.GetByID(ctx, report.ID)
	require.True(t, ok)
	assert.Empty(t, got.Comments)
}

func TestGetByIDCommentFetchFailureReturnsLocalComments(t *testing.T) {
	remote := newFakeRemote()
	s := New(remote)
	ctx := context.Background()

	report, err := s.Add(ctx, validDraft())
	require.NoError(t, err)
	_, err = s.AddComment(ctx, report.ID, models.CommentDraft{Text: "kept locally"})
	require.NoError(t, err)

	remote.failComments = errors.New("backend down")
	got, ok := s.GetByID(ctx, report.ID)
	require.True(t, ok)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "kept locally", got.Comments[0].Text)
}

func TestGetByIDUnknown(t *testing.T) {
	s := New(newFakeRemote())
	_, ok := s.GetByID(context.Background(), primitive.NewObjectID().Hex())
	assert.False(t, ok)
}

func TestListByUserReturnsOnlyOwnReports(t *testing.T) {
	s := New(newFakeRemote())
	ctx := context.Background()

	asha := validDraft()
	mine, err := s.Add(ctx, asha)
	require.NoError(t, err)

	other := validDraft()
	other.ReportedBy = models.UserRef{ID: primitive.NewObjectID().Hex(), Name: "Ravi"}
	_, err = s.Add(ctx, other)
	require.NoError(t, err)

	got, err := s.ListByUser(ctx, asha.ReportedBy.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
	assert.Equal(t, asha.ReportedBy, got[0].ReportedBy)

	// The read-through does not disturb the mirrored collection.
	assert.Len(t, s.List(), 2)
}

func TestListByUserRemoteFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.failList = errors.New("backend down")
	s := New(remote)

	_, err := s.ListByUser(context.Background(), "u1")
	assert.Error(t, err)
}

func TestSubscribeCallbackFiresAfterAdd(t *testing.T) {
	remote := newFakeRemote()
	s := New(remote)
	ctx := context.Background()

	calls := 0
	var lastSnapshot []models.Report
	cancel := s.Subscribe(func(reports []models.Report) {
		calls++
		lastSnapshot = reports
	})
	defer cancel()

	stop, err := s.Start(ctx)
	require.NoError(t, err)
	defer stop()

	report, err := s.Add(ctx, validDraft())
	require.NoError(t, err)
	remote.flush()

	assert.GreaterOrEqual(t, calls, 1)
	require.Len(t, lastSnapshot, 1)
	assert.Equal(t, report.ID, lastSnapshot[0].ID)
}

func TestRefreshReplacesStateWholesale(t *testing.T) {
	remote := newFakeRemote()
	s := New(remote)
	ctx := context.Background()

	draft := validDraft()
	draft.Category = models.CategoryFlooding
	report, err := s.Add(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryFlooding, s.List()[0].Category)

	require.NoError(t, s.Refresh(ctx))

	// After a wholesale refetch the collapsed category comes back as its
	// canonical representative (flooding -> waste -> garbage).
	got := s.List()
	require.Len(t, got, 1)
	assert.Equal(t, report.ID, got[0].ID)
	assert.Equal(t, models.CategoryGarbage, got[0].Category)
}
