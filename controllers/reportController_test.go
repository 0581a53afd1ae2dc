package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Revanthgowda45/CityFix1/models"
	"github.com/Revanthgowda45/CityFix1/remote"
	"github.com/Revanthgowda45/CityFix1/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// issueBackend is an in-memory store.RemoteStore covering what the handler
// tests exercise. Comment and vote calls succeed as no-ops.
type issueBackend struct {
	issues []models.Issue
}

func (b *issueBackend) CreateIssue(ctx context.Context, issue models.Issue) (models.Issue, error) {
	now := time.Now()
	issue.ID = primitive.NewObjectID()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	b.issues = append(b.issues, issue)
	return issue, nil
}

func (b *issueBackend) ListIssues(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	out := make([]models.Issue, 0, len(b.issues))
	for i := len(b.issues) - 1; i >= 0; i-- {
		issue := b.issues[i]
		if filter.UserID != "" && issue.CreatedBy != filter.UserID {
			continue
		}
		issue.UpvotedBy = []string{}
		out = append(out, issue)
	}
	return out, nil
}

func (b *issueBackend) UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error) {
	return models.Issue{}, remote.ErrNotFound
}

func (b *issueBackend) DeleteIssue(ctx context.Context, id string) error {
	for i := range b.issues {
		if b.issues[i].ID.Hex() == id {
			b.issues = append(b.issues[:i], b.issues[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}

func (b *issueBackend) Vote(ctx context.Context, issueID, userID string) error { return nil }

func (b *issueBackend) CreateComment(ctx context.Context, issueID, userID, content string) (models.IssueComment, error) {
	return models.IssueComment{ID: primitive.NewObjectID(), Content: content, CreatedAt: time.Now()}, nil
}

func (b *issueBackend) ListComments(ctx context.Context, issueID string) ([]models.IssueComment, error) {
	return nil, nil
}

func (b *issueBackend) Subscribe(ctx context.Context, onEvent func(store.ChangeEvent)) (func(), error) {
	return func() {}, nil
}

// userDirectory is a RemoteDirectory backed by a fixed user set.
type userDirectory struct {
	users map[string]models.User
}

func (d *userDirectory) GetUser(ctx context.Context, id string) (models.User, error) {
	u, ok := d.users[id]
	if !ok {
		return models.User{}, errors.New("user not found")
	}
	return u, nil
}

func (d *userDirectory) RecentIssues(ctx context.Context, limit int64) ([]remote.MapPoint, error) {
	return nil, nil
}

func (d *userDirectory) Analytics(ctx context.Context) (remote.Analytics, error) {
	return remote.Analytics{}, nil
}

func newTestController(backend *issueBackend, users ...models.User) (*ReportController, *store.ReportStore) {
	gin.SetMode(gin.TestMode)
	dir := &userDirectory{users: make(map[string]models.User)}
	for _, u := range users {
		dir.users[u.ID.Hex()] = u
	}
	st := store.New(backend)
	return NewReportController(st, dir), st
}

func newTestUser(name string, role models.UserRole) models.User {
	return models.User{ID: primitive.NewObjectID(), Name: name, Role: role}
}

func draftBy(u models.User) models.ReportDraft {
	return models.ReportDraft{
		Title:       "Overflowing bin at the park gate",
		Description: "Has not been emptied in days",
		Category:    models.CategoryGarbage,
		Severity:    models.SeverityLow,
		Location:    &models.Location{Address: "Park gate", Latitude: 17.4, Longitude: 78.5},
		ReportedBy:  u.Ref(),
	}
}

func performDelete(rc *ReportController, userID, reportID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/reports/"+reportID, nil)
	c.Params = gin.Params{{Key: "id", Value: reportID}}
	c.Set("user_id", userID)
	rc.DeleteReport(c)
	return w
}

func TestDeleteReportOwnerSucceeds(t *testing.T) {
	owner := newTestUser("Asha", models.RoleCitizen)
	backend := &issueBackend{}
	rc, st := newTestController(backend, owner)

	report, err := st.Add(context.Background(), draftBy(owner))
	require.NoError(t, err)

	w := performDelete(rc, owner.ID.Hex(), report.ID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, st.List())
	assert.Empty(t, backend.issues)
}

func TestDeleteReportForbiddenForNonOwner(t *testing.T) {
	owner := newTestUser("Asha", models.RoleCitizen)
	other := newTestUser("Mallory", models.RoleCitizen)
	backend := &issueBackend{}
	rc, st := newTestController(backend, owner, other)

	report, err := st.Add(context.Background(), draftBy(owner))
	require.NoError(t, err)

	w := performDelete(rc, other.ID.Hex(), report.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, st.List(), 1)
	assert.Len(t, backend.issues, 1)
}

func TestDeleteReportAdminCanDeleteAny(t *testing.T) {
	owner := newTestUser("Asha", models.RoleCitizen)
	admin := newTestUser("Ravi", models.RoleAdmin)
	backend := &issueBackend{}
	rc, st := newTestController(backend, owner, admin)

	report, err := st.Add(context.Background(), draftBy(owner))
	require.NoError(t, err)

	w := performDelete(rc, admin.ID.Hex(), report.ID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, st.List())
}

func TestDeleteReportUnknownLocallyIs404(t *testing.T) {
	owner := newTestUser("Asha", models.RoleCitizen)
	other := newTestUser("Mallory", models.RoleCitizen)
	backend := &issueBackend{}

	// Seed the backend directly so the mirror has never seen the record,
	// as after a restart before the first refresh.
	seeded, err := backend.CreateIssue(context.Background(), models.Issue{
		Title:     "Pothole on Main St",
		Category:  models.IssueCategoryRoad,
		CreatedBy: owner.ID.Hex(),
	})
	require.NoError(t, err)

	rc, st := newTestController(backend, owner, other)
	require.Empty(t, st.List())

	w := performDelete(rc, other.ID.Hex(), seeded.ID.Hex())
	assert.Equal(t, http.StatusNotFound, w.Code)
	// The delete never reached the backend.
	assert.Len(t, backend.issues, 1)
}

func TestMyReportsListsOnlyOwn(t *testing.T) {
	owner := newTestUser("Asha", models.RoleCitizen)
	other := newTestUser("Ravi", models.RoleCitizen)
	backend := &issueBackend{}
	rc, st := newTestController(backend, owner, other)

	mine, err := st.Add(context.Background(), draftBy(owner))
	require.NoError(t, err)
	_, err = st.Add(context.Background(), draftBy(other))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/reports/mine", nil)
	c.Set("user_id", owner.ID.Hex())
	rc.MyReports(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Reports []models.Report `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Reports, 1)
	assert.Equal(t, mine.ID, body.Reports[0].ID)
	assert.Equal(t, owner.ID.Hex(), body.Reports[0].ReportedBy.ID)
}
