package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meetmate-ai/server/domain/entities"
	"github.com/meetmate-ai/server/domain/repositories"
)

const (
	// finalsBuffer bounds how many finalized segments may be awaiting
	// suggestion dispatch before the drain loop applies backpressure.
	finalsBuffer = 16

	// maxArchiveBytes caps the raw audio kept in memory for archival.
	maxArchiveBytes = 32 << 20

	archiveTimeout = 60 * time.Second
)

type finalSegment struct {
	text      string
	emittedAt time.Time
}

// Worker drives one session's pipeline end to end: it drains the audio
// channel into the transcription stream, forwards result events to the
// owning connection, and serializes suggestion dispatch plus persistence for
// finalized segments. Three goroutines run per streaming worker: the feed
// loop, the drain loop, and the finalize loop.
type Worker struct {
	sessionID    string
	connectionID string
	meetingID    string
	language     string

	mu       sync.Mutex
	state    entities.SessionState
	styleID  string
	rawAudio []byte

	audio  *AudioChannel
	stream repositories.TranscriptionStream
	finals chan finalSegment

	styles      repositories.StyleRepository
	transcripts repositories.TranscriptRepository
	suggester   repositories.SuggestionGenerator
	archiver    repositories.AudioArchiver
	sink        EventSink
	logger      *zap.Logger

	startedAt time.Time
	onClose   func(connectionID string)
	closeOnce sync.Once
}

// start opens the transcription stream and launches the pipeline. An open
// failure is returned synchronously and the worker never enters streaming.
func (w *Worker) start(stt repositories.SpeechToText) error {
	// The stream must outlive the request that started the session.
	stream, err := stt.OpenStream(context.Background(), repositories.StreamConfig{
		Encoding: "LINEAR16",
		Language: w.language,
	})
	if err != nil {
		return err
	}

	w.stream = stream
	w.transition(entities.SessionStateStreaming)

	go w.feedLoop()
	go w.drainLoop()
	go w.finalizeLoop()

	return nil
}

// PushAudio appends one chunk. Chunks arriving outside the streaming state
// are discarded.
func (w *Worker) PushAudio(chunk []byte) {
	w.mu.Lock()
	if w.state != entities.SessionStateStreaming {
		w.mu.Unlock()
		return
	}
	if len(w.rawAudio)+len(chunk) <= maxArchiveBytes {
		w.rawAudio = append(w.rawAudio, chunk...)
	}
	w.mu.Unlock()

	w.audio.Push(chunk)
}

// SetStyle updates the answer style used for subsequent suggestion calls.
// Requests already dispatched keep the style they were dispatched with.
func (w *Worker) SetStyle(styleID string) {
	w.mu.Lock()
	w.styleID = styleID
	w.mu.Unlock()
}

// Stop signals end-of-stream. New audio is refused immediately; results the
// transcription stream already buffered keep flowing until it is exhausted.
// Idempotent.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.state == entities.SessionStateStreaming {
		w.state = entities.SessionStateStopping
	}
	w.mu.Unlock()

	w.audio.Close()
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() entities.SessionState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Snapshot returns a read-only view of the session.
func (w *Worker) Snapshot() entities.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return entities.Session{
		ID:           w.sessionID,
		ConnectionID: w.connectionID,
		MeetingID:    w.meetingID,
		Language:     w.language,
		StyleID:      w.styleID,
		State:        w.state,
		StartedAt:    w.startedAt,
	}
}

func (w *Worker) transition(next entities.SessionState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.state.CanTransition(next) {
		return
	}
	w.state = next
}

// feedLoop forwards buffered audio to the transcription stream in arrival
// order and closes the send side once the audio channel is exhausted. After
// a send failure it keeps draining so the channel never backs up; the
// receive side reports the terminal error.
func (w *Worker) feedLoop() {
	var feedErr error
	for chunk := range w.audio.Drain() {
		if feedErr != nil {
			continue
		}
		if err := w.stream.Feed(chunk); err != nil {
			feedErr = err
			w.logger.Error("failed to feed audio chunk",
				zap.String("sessionID", w.sessionID),
				zap.Error(err))
		}
	}
	if err := w.stream.CloseSend(); err != nil {
		w.logger.Warn("failed to close transcription send stream",
			zap.String("sessionID", w.sessionID),
			zap.Error(err))
	}
}

// drainLoop consumes recognition results until the stream is exhausted or
// fails. Interim and final transcripts are delivered in emission order;
// finalized segments are additionally handed to the finalize loop.
func (w *Worker) drainLoop() {
	defer w.teardown()

	for result := range w.stream.Results() {
		if result.Err != nil {
			// Mid-stream failures are terminal: a partial utterance cannot
			// be resumed, the client is expected to reconnect.
			w.logger.Error("transcription stream failed, closing session",
				zap.String("sessionID", w.sessionID),
				zap.Error(result.Err))
			w.audio.Close()
			return
		}

		if result.IsFinal {
			w.sink.Deliver(w.connectionID, Event{
				Type:      EventFinalTranscript,
				SessionID: w.sessionID,
				Text:      result.Transcript,
			})
			w.finals <- finalSegment{text: result.Transcript, emittedAt: time.Now()}
		} else {
			w.sink.Deliver(w.connectionID, Event{
				Type:      EventInterimTranscript,
				SessionID: w.sessionID,
				Text:      result.Transcript,
			})
		}
	}
}

// finalizeLoop serializes per-segment suggestion dispatch, persistence, and
// delivery in segment emission order. It may outlive the drain loop: a late
// suggestion for an already-closed session is still persisted, and its
// delivery is a no-op once the connection is gone.
func (w *Worker) finalizeLoop() {
	for seg := range w.finals {
		if strings.TrimSpace(seg.text) == "" {
			continue
		}

		w.mu.Lock()
		styleID := w.styleID
		w.mu.Unlock()

		ctx := context.Background()
		prompt := w.styles.GetPrompt(ctx, styleID)
		suggestion := w.suggester.Suggest(ctx, repositories.SuggestionRequest{
			Transcript:  seg.text,
			StylePrompt: prompt,
			Language:    w.language,
		})
		if !suggestion.OK {
			w.logger.Warn("suggestion fell back to default text",
				zap.String("sessionID", w.sessionID),
				zap.String("language", w.language))
		}

		record := &entities.TranscriptRecord{
			MeetingID:  w.meetingID,
			Text:       seg.text,
			Suggestion: suggestion.Text,
			CreatedAt:  seg.emittedAt,
		}
		if err := w.transcripts.Save(ctx, record); err != nil {
			w.logger.Error("failed to persist transcript",
				zap.String("sessionID", w.sessionID),
				zap.String("meetingID", w.meetingID),
				zap.Error(err))
		}

		w.sink.Deliver(w.connectionID, Event{
			Type:      EventAIResponse,
			SessionID: w.sessionID,
			Text:      suggestion.Text,
		})
	}
}

// teardown releases the session's resources exactly once: the audio channel
// and finals queue close, registry bookkeeping is released without waiting
// for in-flight suggestion calls, and captured audio is archived in the
// background.
func (w *Worker) teardown() {
	w.closeOnce.Do(func() {
		w.audio.Close()
		close(w.finals)
		w.transition(entities.SessionStateClosed)

		w.mu.Lock()
		raw := w.rawAudio
		w.rawAudio = nil
		w.mu.Unlock()

		if w.onClose != nil {
			w.onClose(w.connectionID)
		}

		if len(raw) > 0 {
			go w.archive(raw)
		}

		w.logger.Info("session closed",
			zap.String("sessionID", w.sessionID),
			zap.String("meetingID", w.meetingID),
			zap.Int64("droppedChunks", w.audio.Dropped()))
	})
}

func (w *Worker) archive(raw []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := w.archiver.Archive(ctx, w.meetingID, w.sessionID, raw); err != nil {
		w.logger.Error("failed to archive session audio",
			zap.String("sessionID", w.sessionID),
			zap.String("meetingID", w.meetingID),
			zap.Error(err))
	}
}
