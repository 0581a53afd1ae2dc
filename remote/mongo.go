package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Revanthgowda45/CityFix1/models"
	"github.com/Revanthgowda45/CityFix1/store"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when an issue, comment target or user id does not
// exist.
var ErrNotFound = errors.New("not found")

const opTimeout = 10 * time.Second

// MongoStore implements store.RemoteStore against MongoDB collections
// (issues, votes, comments, users) and publishes a change notification to
// Redis for every issue mutation.
type MongoStore struct {
	db    *mongo.Database
	redis *redis.Client
}

func NewMongoStore(db *mongo.Database, rdb *redis.Client) *MongoStore {
	return &MongoStore{db: db, redis: rdb}
}

func (m *MongoStore) issues() *mongo.Collection   { return m.db.Collection("issues") }
func (m *MongoStore) votes() *mongo.Collection    { return m.db.Collection("votes") }
func (m *MongoStore) comments() *mongo.Collection { return m.db.Collection("comments") }
func (m *MongoStore) users() *mongo.Collection    { return m.db.Collection("users") }

// CreateIssue persists a new issue and returns it with the generated ID and
// timestamps.
func (m *MongoStore) CreateIssue(ctx context.Context, issue models.Issue) (models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now()
	issue.ID = primitive.NewObjectID()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	if issue.Status == "" {
		issue.Status = models.IssueStatusReported
	}
	if issue.Images == nil {
		issue.Images = []string{}
	}

	if _, err := m.issues().InsertOne(ctx, issue); err != nil {
		return models.Issue{}, fmt.Errorf("failed to create issue: %w", err)
	}

	m.publish(ctx, store.ChangeEvent{Op: "insert", IssueID: issue.ID.Hex()})
	return issue, nil
}

// ListIssues returns issues matching the filter, newest first, with vote
// counts and voter ids aggregated from the votes collection.
func (m *MongoStore) ListIssues(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.UserID != "" {
		query["createdBy"] = filter.UserID
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.issues().Find(ctx, query, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve issues: %w", err)
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("failed to decode issues: %w", err)
	}

	for i := range issues {
		if err := m.loadVotes(ctx, &issues[i]); err != nil {
			return nil, err
		}
	}
	return issues, nil
}

// UpdateIssue applies the non-nil patch fields and refreshes updatedAt.
func (m *MongoStore) UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error) {
	issueID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Issue{}, fmt.Errorf("issue %s: %w", id, ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"updatedAt": time.Now()}
	if patch.Title != nil {
		update["title"] = *patch.Title
	}
	if patch.Description != nil {
		update["description"] = *patch.Description
	}
	if patch.Category != nil {
		update["category"] = *patch.Category
	}
	if patch.Priority != nil {
		update["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		update["status"] = *patch.Status
	}
	if patch.Location != nil {
		update["location"] = *patch.Location
	}
	if patch.Images != nil {
		update["images"] = patch.Images
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Issue
	err = m.issues().FindOneAndUpdate(ctx, bson.M{"_id": issueID}, bson.M{"$set": update}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Issue{}, fmt.Errorf("issue %s: %w", id, ErrNotFound)
		}
		return models.Issue{}, fmt.Errorf("failed to update issue: %w", err)
	}

	m.publish(ctx, store.ChangeEvent{Op: "update", IssueID: id})
	return updated, nil
}

// DeleteIssue removes the issue along with its votes and comments.
func (m *MongoStore) DeleteIssue(ctx context.Context, id string) error {
	issueID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("issue %s: %w", id, ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := m.issues().DeleteOne(ctx, bson.M{"_id": issueID})
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("issue %s: %w", id, ErrNotFound)
	}

	// Orphaned votes and comments are useless; failures here are not fatal.
	_, _ = m.votes().DeleteMany(ctx, bson.M{"issue": issueID})
	_, _ = m.comments().DeleteMany(ctx, bson.M{"issue": issueID})

	m.publish(ctx, store.ChangeEvent{Op: "delete", IssueID: id})
	return nil
}

// Vote inserts a vote document. A duplicate (issue, user) pair trips the
// unique index and is treated as success.
func (m *MongoStore) Vote(ctx context.Context, issueID, userID string) error {
	issueObjID, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return fmt.Errorf("issue %s: %w", issueID, ErrNotFound)
	}
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	count, err := m.issues().CountDocuments(ctx, bson.M{"_id": issueObjID})
	if err != nil {
		return fmt.Errorf("failed to check issue: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("issue %s: %w", issueID, ErrNotFound)
	}

	vote := models.Vote{
		ID:        primitive.NewObjectID(),
		Issue:     issueObjID,
		User:      userObjID,
		CreatedAt: time.Now(),
	}
	if _, err := m.votes().InsertOne(ctx, vote); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to cast vote: %w", err)
	}
	return nil
}

// loadVotes fills the aggregated vote fields of an issue.
func (m *MongoStore) loadVotes(ctx context.Context, issue *models.Issue) error {
	cursor, err := m.votes().Find(ctx, bson.M{"issue": issue.ID})
	if err != nil {
		return fmt.Errorf("failed to retrieve votes: %w", err)
	}
	defer cursor.Close(ctx)

	var votes []models.Vote
	if err := cursor.All(ctx, &votes); err != nil {
		return fmt.Errorf("failed to decode votes: %w", err)
	}

	issue.Upvotes = len(votes)
	issue.UpvotedBy = make([]string, 0, len(votes))
	for _, v := range votes {
		issue.UpvotedBy = append(issue.UpvotedBy, v.User.Hex())
	}
	return nil
}

// GetUser looks up a user by hex id.
func (m *MongoStore) GetUser(ctx context.Context, id string) (models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var user models.User
	if err := m.users().FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return models.User{}, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}
