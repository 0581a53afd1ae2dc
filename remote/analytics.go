package remote

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Revanthgowda45/CityFix1/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryCount is one slice of the issues-by-category breakdown.
type CategoryCount struct {
	Name  string `bson:"name" json:"name"`
	Value int64  `bson:"value" json:"value"`
}

// DailyCount is the number of issues created on one calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// TopIssue is an issue ranked by vote count.
type TopIssue struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Votes    int64  `json:"votes"`
}

// Analytics is the admin dashboard summary.
type Analytics struct {
	IssuesByCategory []CategoryCount `json:"issuesByCategory"`
	Last7Days        []DailyCount    `json:"last7Days"`
	TopVotedIssues   []TopIssue      `json:"topVotedIssues"`
	TotalIssues      int64           `json:"totalIssues"`
	TotalVotes       int64           `json:"totalVotes"`
	OpenIssues       int64           `json:"openIssues"`
}

// Analytics aggregates dashboard data: counts by category, daily counts for
// the last seven days, the five most voted recent issues and the totals.
func (m *MongoStore) Analytics(ctx context.Context) (Analytics, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var out Analytics

	categoryPipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$category",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	categoryCursor, err := m.issues().Aggregate(ctx, categoryPipeline)
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to get category analytics: %w", err)
	}
	defer categoryCursor.Close(ctx)

	if err := categoryCursor.All(ctx, &out.IssuesByCategory); err != nil {
		return Analytics{}, fmt.Errorf("failed to decode category analytics: %w", err)
	}

	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		nextDate := date.AddDate(0, 0, 1)

		count, err := m.issues().CountDocuments(ctx, bson.M{
			"createdAt": bson.M{
				"$gte": date,
				"$lt":  nextDate,
			},
		})
		if err != nil {
			count = 0
		}

		out.Last7Days = append(out.Last7Days, DailyCount{
			Date:  date.Format("2006-01-02"),
			Count: count,
		})
	}

	// Rank the 50 most recent issues by vote count and keep the top 5.
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(50)

	cursor, err := m.issues().Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to retrieve issues for vote analysis: %w", err)
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return Analytics{}, fmt.Errorf("failed to decode issues: %w", err)
	}

	top := make([]TopIssue, 0, len(issues))
	for _, issue := range issues {
		voteCount, err := m.votes().CountDocuments(ctx, bson.M{"issue": issue.ID})
		if err != nil {
			voteCount = 0
		}
		top = append(top, TopIssue{
			ID:       issue.ID.Hex(),
			Title:    issue.Title,
			Category: string(issue.Category),
			Votes:    voteCount,
		})
	}

	sort.Slice(top, func(i, j int) bool {
		return top[i].Votes > top[j].Votes
	})
	if len(top) > 5 {
		top = top[:5]
	}
	out.TopVotedIssues = top

	if out.TotalIssues, err = m.issues().CountDocuments(ctx, bson.M{}); err != nil {
		out.TotalIssues = 0
	}
	if out.TotalVotes, err = m.votes().CountDocuments(ctx, bson.M{}); err != nil {
		out.TotalVotes = 0
	}
	out.OpenIssues, err = m.issues().CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []models.IssueStatus{models.IssueStatusReported, models.IssueStatusInProgress}},
	})
	if err != nil {
		out.OpenIssues = 0
	}

	return out, nil
}

// MapPoint is a geotagged issue for the map feed.
type MapPoint struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecentIssues returns the newest geotagged issues for the map feed.
func (m *MongoStore) RecentIssues(ctx context.Context, limit int64) ([]MapPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{
		"location.latitude":  bson.M{"$exists": true, "$ne": 0},
		"location.longitude": bson.M{"$exists": true, "$ne": 0},
	}

	projection := bson.M{
		"_id":       1,
		"title":     1,
		"location":  1,
		"category":  1,
		"createdAt": 1,
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetProjection(projection)

	cursor, err := m.issues().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve recent issues: %w", err)
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("failed to decode recent issues: %w", err)
	}

	points := make([]MapPoint, 0, len(issues))
	for _, issue := range issues {
		points = append(points, MapPoint{
			ID:        issue.ID.Hex(),
			Title:     issue.Title,
			Latitude:  issue.Location.Latitude,
			Longitude: issue.Location.Longitude,
			Address:   issue.Location.Address,
			Category:  string(issue.Category),
			CreatedAt: issue.CreatedAt,
		})
	}
	return points, nil
}
