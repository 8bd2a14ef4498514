package usecase

import (
	"context"
	"errors"

	"github.com/meetmate-ai/server/domain/entities"
	"github.com/meetmate-ai/server/domain/repositories"
)

// ErrMeetingNotFound is returned when a meeting lookup finds nothing.
var ErrMeetingNotFound = errors.New("meeting not found")

// MeetingService handles meeting, answer style, and transcript history logic
// behind the REST API.
type MeetingService struct {
	meetings    repositories.MeetingRepository
	styles      repositories.StyleRepository
	transcripts repositories.TranscriptRepository
}

// NewMeetingService creates a new meeting service
func NewMeetingService(
	meetings repositories.MeetingRepository,
	styles repositories.StyleRepository,
	transcripts repositories.TranscriptRepository,
) *MeetingService {
	return &MeetingService{
		meetings:    meetings,
		styles:      styles,
		transcripts: transcripts,
	}
}

// CreateMeeting creates a meeting, applying the default title and language
// when they are omitted.
func (s *MeetingService) CreateMeeting(ctx context.Context, title, language string) (*entities.Meeting, error) {
	meeting := entities.NewMeeting(title, language)
	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

// GetMeeting fetches one meeting by ID.
func (s *MeetingService) GetMeeting(ctx context.Context, id string) (*entities.Meeting, error) {
	meeting, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrMeetingNotFound
	}
	return meeting, nil
}

// ListMeetings returns all meetings, newest first.
func (s *MeetingService) ListMeetings(ctx context.Context) ([]*entities.Meeting, error) {
	return s.meetings.List(ctx)
}

// DeleteMeeting removes a meeting.
func (s *MeetingService) DeleteMeeting(ctx context.Context, id string) error {
	return s.meetings.Delete(ctx, id)
}

// CreateStyle registers an answer style.
func (s *MeetingService) CreateStyle(ctx context.Context, name, prompt string) (*entities.AnswerStyle, error) {
	style := &entities.AnswerStyle{Name: name, Prompt: prompt}
	if err := s.styles.Create(ctx, style); err != nil {
		return nil, err
	}
	return style, nil
}

// ListStyles returns all answer styles.
func (s *MeetingService) ListStyles(ctx context.Context) ([]*entities.AnswerStyle, error) {
	return s.styles.List(ctx)
}

// DeleteStyle removes an answer style. Sessions currently holding the style
// fall back to the default prompt on their next suggestion.
func (s *MeetingService) DeleteStyle(ctx context.Context, id string) error {
	return s.styles.Delete(ctx, id)
}

// MeetingTranscripts returns the persisted transcript history of a meeting in
// chronological order.
func (s *MeetingService) MeetingTranscripts(ctx context.Context, meetingID string) ([]*entities.TranscriptRecord, error) {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrMeetingNotFound
	}
	return s.transcripts.ListByMeeting(ctx, meetingID)
}
