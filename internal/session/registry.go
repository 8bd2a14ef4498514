package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetmate-ai/server/domain/entities"
	"github.com/meetmate-ai/server/domain/repositories"
)

// StartStatus is the outcome of a session start request. It is only
// meaningful when the accompanying error is nil.
type StartStatus int

const (
	StartOK StartStatus = iota
	StartAlreadyActive
	StartMeetingNotFound
)

func (s StartStatus) String() string {
	switch s {
	case StartOK:
		return "ok"
	case StartAlreadyActive:
		return "already_active"
	case StartMeetingNotFound:
		return "meeting_not_found"
	default:
		return "unknown"
	}
}

// Registry tracks the active session workers keyed by connection ID and
// enforces at most one worker per connection. The workers map is the only
// structure in the pipeline mutated from multiple goroutines; every access
// goes through the registry mutex.
type Registry struct {
	mu      sync.Mutex
	workers map[string]*Worker

	meetings    repositories.MeetingRepository
	styles      repositories.StyleRepository
	transcripts repositories.TranscriptRepository
	stt         repositories.SpeechToText
	suggester   repositories.SuggestionGenerator
	archiver    repositories.AudioArchiver
	sink        EventSink
	logger      *zap.Logger

	channelCapacity int
}

// NewRegistry creates a session registry.
func NewRegistry(
	meetings repositories.MeetingRepository,
	styles repositories.StyleRepository,
	transcripts repositories.TranscriptRepository,
	stt repositories.SpeechToText,
	suggester repositories.SuggestionGenerator,
	archiver repositories.AudioArchiver,
	sink EventSink,
	logger *zap.Logger,
) *Registry {
	return &Registry{
		workers:         make(map[string]*Worker),
		meetings:        meetings,
		styles:          styles,
		transcripts:     transcripts,
		stt:             stt,
		suggester:       suggester,
		archiver:        archiver,
		sink:            sink,
		logger:          logger,
		channelCapacity: DefaultAudioChannelCapacity,
	}
}

// StartSession creates and launches a session worker for the connection. The
// map slot is reserved before the slow meeting lookup and stream open, so a
// concurrent second start is rejected without side effects; the reservation
// is rolled back if setup fails.
func (r *Registry) StartSession(ctx context.Context, connectionID, meetingID string) (string, StartStatus, error) {
	w := &Worker{
		sessionID:    uuid.NewString(),
		connectionID: connectionID,
		meetingID:    meetingID,
		state:        entities.SessionStateIdle,
		audio:        NewAudioChannel(r.channelCapacity, r.logger),
		finals:       make(chan finalSegment, finalsBuffer),
		styles:       r.styles,
		transcripts:  r.transcripts,
		suggester:    r.suggester,
		archiver:     r.archiver,
		sink:         r.sink,
		logger:       r.logger,
		startedAt:    time.Now(),
		onClose:      r.remove,
	}

	r.mu.Lock()
	if _, exists := r.workers[connectionID]; exists {
		r.mu.Unlock()
		return "", StartAlreadyActive, nil
	}
	r.workers[connectionID] = w
	r.mu.Unlock()

	meeting, err := r.meetings.GetByID(ctx, meetingID)
	if err != nil {
		r.remove(connectionID)
		return "", StartOK, fmt.Errorf("failed to look up meeting: %w", err)
	}
	if meeting == nil {
		r.remove(connectionID)
		return "", StartMeetingNotFound, nil
	}
	w.language = meeting.Language

	if err := w.start(r.stt); err != nil {
		r.remove(connectionID)
		return "", StartOK, fmt.Errorf("failed to open transcription stream: %w", err)
	}

	r.logger.Info("session started",
		zap.String("sessionID", w.sessionID),
		zap.String("connectionID", connectionID),
		zap.String("meetingID", meetingID),
		zap.String("language", w.language))

	return w.sessionID, StartOK, nil
}

// PushAudio forwards one audio chunk to the connection's worker. A no-op
// when no session is active.
func (r *Registry) PushAudio(connectionID string, chunk []byte) {
	if w, ok := r.lookup(connectionID); ok {
		w.PushAudio(chunk)
	}
}

// ChangeStyle updates the answer style for subsequent suggestions. A no-op
// when no session is active.
func (r *Registry) ChangeStyle(connectionID, styleID string) {
	if w, ok := r.lookup(connectionID); ok {
		w.SetStyle(styleID)
	}
}

// StopSession signals end-of-stream for the connection's session. Repeated
// stops are safely ignored.
func (r *Registry) StopSession(connectionID string) {
	if w, ok := r.lookup(connectionID); ok {
		w.Stop()
	}
}

// OnDisconnect tears down whatever session the connection still has. Stop is
// idempotent, so a disconnect after an explicit stop is harmless; delivery of
// any still-draining results becomes a no-op once the connection is
// unregistered from the sink.
func (r *Registry) OnDisconnect(connectionID string) {
	if w, ok := r.lookup(connectionID); ok {
		w.Stop()
	}
}

// Sessions returns snapshots of all active sessions.
func (r *Registry) Sessions() []entities.Session {
	r.mu.Lock()
	workers := make([]*Worker, 0, len(r.workers))
	for _, w := range r.workers {
		workers = append(workers, w)
	}
	r.mu.Unlock()

	sessions := make([]entities.Session, 0, len(workers))
	for _, w := range workers {
		sessions = append(sessions, w.Snapshot())
	}
	return sessions
}

// ActiveCount returns the number of registered workers.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}

// StopStale stops sessions that have been running longer than maxAge and
// returns how many were stopped. Their workers drain and unregister through
// the normal teardown path.
func (r *Registry) StopStale(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	r.mu.Lock()
	var stale []*Worker
	for _, w := range r.workers {
		if w.startedAt.Before(cutoff) {
			stale = append(stale, w)
		}
	}
	r.mu.Unlock()

	for _, w := range stale {
		r.logger.Warn("stopping stale session",
			zap.String("sessionID", w.sessionID),
			zap.String("connectionID", w.connectionID),
			zap.Time("startedAt", w.startedAt))
		w.Stop()
	}
	return len(stale)
}

// Shutdown stops every active session. Used on graceful server exit.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	workers := make([]*Worker, 0, len(r.workers))
	for _, w := range r.workers {
		workers = append(workers, w)
	}
	r.mu.Unlock()

	for _, w := range workers {
		w.Stop()
	}
}

func (r *Registry) lookup(connectionID string) (*Worker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[connectionID]
	return w, ok
}

func (r *Registry) remove(connectionID string) {
	r.mu.Lock()
	delete(r.workers, connectionID)
	r.mu.Unlock()
}
