package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/meetmate-ai/server/domain/entities"
	"github.com/meetmate-ai/server/domain/repositories"
)

type StyleRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewStyleRepository creates a MongoDB answer style repository.
func NewStyleRepository(db *mongo.Database, logger *zap.Logger) repositories.StyleRepository {
	return &StyleRepository{
		collection: db.Collection("answer_styles"),
		logger:     logger,
	}
}

func (r *StyleRepository) Create(ctx context.Context, style *entities.AnswerStyle) error {
	if style == nil {
		return errors.New("style cannot be nil")
	}
	if err := style.Validate(); err != nil {
		return err
	}

	doc := bson.M{
		"name":   style.Name,
		"prompt": style.Prompt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		style.ID = oid.Hex()
	}

	return nil
}

// GetPrompt resolves a style ID to its prompt. Any miss or lookup failure
// resolves to the default prompt so suggestion dispatch is never blocked on
// a stale style selection.
func (r *StyleRepository) GetPrompt(ctx context.Context, id string) string {
	if id == "" {
		return entities.DefaultStylePrompt
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return entities.DefaultStylePrompt
	}

	var doc styleDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Warn("style lookup failed, using default prompt",
				zap.String("styleID", id),
				zap.Error(err))
		}
		return entities.DefaultStylePrompt
	}

	return doc.Prompt
}

func (r *StyleRepository) List(ctx context.Context) ([]*entities.AnswerStyle, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list styles: %w", err)
	}
	defer cursor.Close(ctx)

	var styles []*entities.AnswerStyle
	for cursor.Next(ctx) {
		var doc styleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode style: %w", err)
		}
		styles = append(styles, &entities.AnswerStyle{
			ID:     doc.ID.Hex(),
			Name:   doc.Name,
			Prompt: doc.Prompt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate styles: %w", err)
	}

	return styles, nil
}

func (r *StyleRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid style ID format: %w", err)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete style: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("style with ID %s not found", id)
	}

	return nil
}

type styleDoc struct {
	ID     primitive.ObjectID `bson:"_id"`
	Name   string             `bson:"name"`
	Prompt string             `bson:"prompt"`
}
