package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meetmate-ai/server/domain/entities"
	"github.com/meetmate-ai/server/domain/repositories"
)

type MeetingRepository struct {
	collection *mongo.Collection
}

// NewMeetingRepository creates a MongoDB meeting repository.
func NewMeetingRepository(db *mongo.Database) repositories.MeetingRepository {
	return &MeetingRepository{
		collection: db.Collection("meetings"),
	}
}

func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	if err := meeting.Validate(); err != nil {
		return err
	}

	doc := bson.M{
		"title":      meeting.Title,
		"language":   meeting.Language,
		"created_at": meeting.CreatedAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		meeting.ID = oid.Hex()
	}

	return nil
}

func (r *MeetingRepository) GetByID(ctx context.Context, id string) (*entities.Meeting, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Malformed IDs are indistinguishable from missing meetings to the
		// caller.
		return nil, nil
	}

	var doc meetingDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meeting %s: %w", id, err)
	}

	return doc.toEntity(), nil
}

func (r *MeetingRepository) List(ctx context.Context) ([]*entities.Meeting, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer cursor.Close(ctx)

	var meetings []*entities.Meeting
	for cursor.Next(ctx) {
		var doc meetingDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode meeting: %w", err)
		}
		meetings = append(meetings, doc.toEntity())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meetings: %w", err)
	}

	return meetings, nil
}

func (r *MeetingRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid meeting ID format: %w", err)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("meeting with ID %s not found", id)
	}

	return nil
}

type meetingDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Language  string             `bson:"language"`
	CreatedAt primitive.DateTime `bson:"created_at"`
}

func (d meetingDoc) toEntity() *entities.Meeting {
	return &entities.Meeting{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Language:  d.Language,
		CreatedAt: d.CreatedAt.Time(),
	}
}
