package controllers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/Revanthgowda45/CityFix1/models"
	"github.com/Revanthgowda45/CityFix1/remote"
	"github.com/Revanthgowda45/CityFix1/store"

	"github.com/gin-gonic/gin"
)

// RemoteDirectory bundles the remote lookups the report endpoints need
// beyond the store itself. *remote.MongoStore satisfies it.
type RemoteDirectory interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	RecentIssues(ctx context.Context, limit int64) ([]remote.MapPoint, error)
	Analytics(ctx context.Context) (remote.Analytics, error)
}

// ReportController serves the report endpoints from the shared ReportStore.
type ReportController struct {
	store  *store.ReportStore
	remote RemoteDirectory
}

func NewReportController(st *store.ReportStore, rm RemoteDirectory) *ReportController {
	return &ReportController{store: st, remote: rm}
}

// currentUser resolves the authenticated user set by the auth middleware.
func (rc *ReportController) currentUser(c *gin.Context) (models.User, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.User{}, false
	}

	user, err := rc.remote.GetUser(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return models.User{}, false
	}
	return user, true
}

// findLocal scans the store snapshot for a report id without touching the
// remote store.
func (rc *ReportController) findLocal(id string) (models.Report, bool) {
	for _, r := range rc.store.List() {
		if r.ID == id {
			return r, true
		}
	}
	return models.Report{}, false
}

// CreateReport handles the submission of a new report
func (rc *ReportController) CreateReport(c *gin.Context) {
	user, ok := rc.currentUser(c)
	if !ok {
		return
	}

	var input struct {
		Title       string                `json:"title" binding:"required,max=200"`
		Description string                `json:"description" binding:"required,max=1000"`
		Category    models.ReportCategory `json:"category" binding:"required"`
		Severity    models.ReportSeverity `json:"severity,omitempty"`
		Location    *models.Location      `json:"location" binding:"required"`
		Images      []string              `json:"images,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !input.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}
	if input.Severity != "" && !input.Severity.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid severity"})
		return
	}

	draft := models.ReportDraft{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Severity:    input.Severity,
		Location:    input.Location,
		Images:      input.Images,
		ReportedBy:  user.Ref(),
	}

	report, err := rc.store.Add(c.Request.Context(), draft)
	if err != nil {
		if errors.Is(err, store.ErrInvalidDraft) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create report"})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports returns the store snapshot with in-memory filtering, sorting
// and pagination
func (rc *ReportController) ListReports(c *gin.Context) {
	category := c.Query("category")
	status := c.Query("status")
	search := c.Query("search")
	sortBy := c.DefaultQuery("sort", "newest")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	reports := rc.store.List()

	filtered := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if category != "" && category != "all" && string(r.Category) != category {
			continue
		}
		if status != "" && status != "all" && string(r.Status) != status {
			continue
		}
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(r.Title), needle) &&
				!strings.Contains(strings.ToLower(r.Description), needle) {
				continue
			}
		}
		filtered = append(filtered, r)
	}

	switch sortBy {
	case "oldest":
		sort.Slice(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		})
	case "votes":
		sort.Slice(filtered, func(i, j int) bool {
			return filtered[i].Upvotes > filtered[j].Upvotes
		})
	default: // newest
		sort.Slice(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	}

	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"reports":      filtered[start:end],
		"totalReports": total,
		"totalPages":   totalPages,
		"currentPage":  page,
	})
}

// MyReports lists the authenticated user's own reports, newest first
func (rc *ReportController) MyReports(c *gin.Context) {
	user, ok := rc.currentUser(c)
	if !ok {
		return
	}

	reports, err := rc.store.ListByUser(c.Request.Context(), user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve your reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// GetReport retrieves a report by its ID with a fresh comment list
func (rc *ReportController) GetReport(c *gin.Context) {
	report, ok := rc.store.GetByID(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateReport allows the reporter or an admin to update a report
func (rc *ReportController) UpdateReport(c *gin.Context) {
	user, ok := rc.currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	existing, found := rc.findLocal(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	if existing.ReportedBy.ID != user.ID.Hex() && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to update this report"})
		return
	}

	var patch models.ReportUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if patch.Category != nil && !patch.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}
	if patch.Severity != nil && !patch.Severity.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid severity"})
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	report, err := rc.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// DeleteReport allows the reporter or an admin to delete a report
func (rc *ReportController) DeleteReport(c *gin.Context) {
	user, ok := rc.currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	existing, found := rc.findLocal(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	if existing.ReportedBy.ID != user.ID.Hex() && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to delete this report"})
		return
	}

	if err := rc.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
}

// VoteReport records the authenticated user's upvote on a report
func (rc *ReportController) VoteReport(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	report, ok := rc.store.Upvote(c.Request.Context(), c.Param("id"), userID.(string))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upvotes":      report.Upvotes,
		"upvotedBy":    report.UpvotedBy,
		"userHasVoted": true,
	})
}

// AddComment appends a comment to a report
func (rc *ReportController) AddComment(c *gin.Context) {
	user, ok := rc.currentUser(c)
	if !ok {
		return
	}

	var input struct {
		Text string `json:"text" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := models.CommentDraft{
		Text: input.Text,
		Author: models.CommentAuthor{
			ID:   user.ID.Hex(),
			Name: user.Name,
			Role: string(user.Role),
		},
	}

	comment, err := rc.store.AddComment(c.Request.Context(), c.Param("id"), draft)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// RecentReports returns the most recent geotagged reports for the map
func (rc *ReportController) RecentReports(c *gin.Context) {
	points, err := rc.remote.RecentIssues(c.Request.Context(), 19)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recent reports"})
		return
	}
	c.JSON(http.StatusOK, points)
}

// GetAnalytics returns dashboard data; admins only
func (rc *ReportController) GetAnalytics(c *gin.Context) {
	user, ok := rc.currentUser(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	analytics, err := rc.remote.Analytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analytics"})
		return
	}
	c.JSON(http.StatusOK, analytics)
}
