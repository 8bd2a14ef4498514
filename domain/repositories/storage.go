package repositories

import (
	"context"

	"github.com/meetmate-ai/server/domain/entities"
)

// MeetingRepository defines data access methods for meetings.
// GetByID returns (nil, nil) when no meeting exists with the given ID.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	GetByID(ctx context.Context, id string) (*entities.Meeting, error)
	List(ctx context.Context) ([]*entities.Meeting, error)
	Delete(ctx context.Context, id string) error
}

// StyleRepository defines data access methods for answer styles.
type StyleRepository interface {
	Create(ctx context.Context, style *entities.AnswerStyle) error
	// GetPrompt resolves a style ID to its prompt text. Unknown IDs and
	// lookup failures resolve to the default prompt; a missing style must
	// never block suggestion generation.
	GetPrompt(ctx context.Context, id string) string
	List(ctx context.Context) ([]*entities.AnswerStyle, error)
	Delete(ctx context.Context, id string) error
}

// TranscriptRepository persists final transcript segments paired with their
// suggestions.
type TranscriptRepository interface {
	Save(ctx context.Context, record *entities.TranscriptRecord) error
	ListByMeeting(ctx context.Context, meetingID string) ([]*entities.TranscriptRecord, error)
}
