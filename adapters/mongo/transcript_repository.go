package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meetmate-ai/server/domain/entities"
	"github.com/meetmate-ai/server/domain/repositories"
)

type TranscriptRepository struct {
	collection *mongo.Collection
}

// NewTranscriptRepository creates a MongoDB transcript repository.
func NewTranscriptRepository(db *mongo.Database) repositories.TranscriptRepository {
	return &TranscriptRepository{
		collection: db.Collection("transcripts"),
	}
}

func (r *TranscriptRepository) Save(ctx context.Context, record *entities.TranscriptRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	if record.MeetingID == "" {
		return errors.New("meeting ID cannot be empty")
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	doc := bson.M{
		"meeting_id": record.MeetingID,
		"text":       record.Text,
		"suggestion": record.Suggestion,
		"created_at": record.CreatedAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}

	return nil
}

func (r *TranscriptRepository) ListByMeeting(ctx context.Context, meetingID string) ([]*entities.TranscriptRecord, error) {
	if meetingID == "" {
		return nil, errors.New("meeting ID cannot be empty")
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"meeting_id": meetingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts for meeting %s: %w", meetingID, err)
	}
	defer cursor.Close(ctx)

	var records []*entities.TranscriptRecord
	for cursor.Next(ctx) {
		var doc transcriptDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode transcript: %w", err)
		}
		records = append(records, &entities.TranscriptRecord{
			ID:         doc.ID.Hex(),
			MeetingID:  doc.MeetingID,
			Text:       doc.Text,
			Suggestion: doc.Suggestion,
			CreatedAt:  doc.CreatedAt.Time(),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcripts: %w", err)
	}

	return records, nil
}

type transcriptDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	MeetingID  string             `bson:"meeting_id"`
	Text       string             `bson:"text"`
	Suggestion string             `bson:"suggestion"`
	CreatedAt  primitive.DateTime `bson:"created_at"`
}
