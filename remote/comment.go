package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/Revanthgowda45/CityFix1/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateComment persists a comment against an existing issue and returns it
// with the generated ID and CreatedAt.
func (m *MongoStore) CreateComment(ctx context.Context, issueID, userID, content string) (models.IssueComment, error) {
	issueObjID, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return models.IssueComment{}, fmt.Errorf("issue %s: %w", issueID, ErrNotFound)
	}
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.IssueComment{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	count, err := m.issues().CountDocuments(ctx, bson.M{"_id": issueObjID})
	if err != nil {
		return models.IssueComment{}, fmt.Errorf("failed to check issue: %w", err)
	}
	if count == 0 {
		return models.IssueComment{}, fmt.Errorf("issue %s: %w", issueID, ErrNotFound)
	}

	comment := models.IssueComment{
		ID:        primitive.NewObjectID(),
		IssueID:   issueObjID,
		UserID:    userObjID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if _, err := m.comments().InsertOne(ctx, comment); err != nil {
		return models.IssueComment{}, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// ListComments returns an issue's comments oldest first with author name
// and role joined from the users collection.
func (m *MongoStore) ListComments(ctx context.Context, issueID string) ([]models.IssueComment, error) {
	issueObjID, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return nil, fmt.Errorf("issue %s: %w", issueID, ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := m.comments().Find(ctx, bson.M{"issue": issueObjID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve comments: %w", err)
	}
	defer cursor.Close(ctx)

	var comments []models.IssueComment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	for i := range comments {
		var author models.User
		if err := m.users().FindOne(ctx, bson.M{"_id": comments[i].UserID}).Decode(&author); err == nil {
			comments[i].UserName = author.Name
			comments[i].UserRole = string(author.Role)
		}
	}
	return comments, nil
}
