package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/meetmate-ai/server/domain/entities"
	"github.com/meetmate-ai/server/domain/repositories"
)

// scriptedStream is a transcription stream whose results are pushed by the
// test itself.
type scriptedStream struct {
	mu       sync.Mutex
	fed      [][]byte
	feedErr  error
	sendDone bool
	results  chan repositories.StreamingResult
}

func newScriptedStream() *scriptedStream {
	return &scriptedStream{
		results: make(chan repositories.StreamingResult, 64),
	}
}

func (s *scriptedStream) Feed(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fed = append(s.fed, data)
	return s.feedErr
}

func (s *scriptedStream) CloseSend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendDone = true
	return nil
}

func (s *scriptedStream) Results() <-chan repositories.StreamingResult {
	return s.results
}

func (s *scriptedStream) emit(text string, final bool) {
	s.results <- repositories.StreamingResult{Transcript: text, IsFinal: final}
}

func (s *scriptedStream) fail(err error) {
	s.results <- repositories.StreamingResult{Err: err}
	close(s.results)
}

func (s *scriptedStream) finish() {
	close(s.results)
}

func (s *scriptedStream) fedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fed)
}

func (s *scriptedStream) sendClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendDone
}

type scriptedSTT struct {
	mu      sync.Mutex
	openErr error
	streams []*scriptedStream
}

func (f *scriptedSTT) OpenStream(ctx context.Context, config repositories.StreamConfig) (repositories.TranscriptionStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	s := newScriptedStream()
	f.streams = append(f.streams, s)
	return s, nil
}

func (f *scriptedSTT) stream(i int) *scriptedStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streams[i]
}

type memMeetings struct {
	mu   sync.Mutex
	byID map[string]*entities.Meeting
}

func newMemMeetings(meetings ...*entities.Meeting) *memMeetings {
	m := &memMeetings{byID: make(map[string]*entities.Meeting)}
	for _, meeting := range meetings {
		m.byID[meeting.ID] = meeting
	}
	return m
}

func (m *memMeetings) Create(ctx context.Context, meeting *entities.Meeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[meeting.ID] = meeting
	return nil
}

func (m *memMeetings) GetByID(ctx context.Context, id string) (*entities.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id], nil
}

func (m *memMeetings) List(ctx context.Context) ([]*entities.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Meeting
	for _, meeting := range m.byID {
		out = append(out, meeting)
	}
	return out, nil
}

func (m *memMeetings) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

type memStyles struct {
	mu      sync.Mutex
	prompts map[string]string
}

func newMemStyles() *memStyles {
	return &memStyles{prompts: make(map[string]string)}
}

func (s *memStyles) Create(ctx context.Context, style *entities.AnswerStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[style.ID] = style.Prompt
	return nil
}

func (s *memStyles) GetPrompt(ctx context.Context, id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prompt, ok := s.prompts[id]; ok {
		return prompt
	}
	return entities.DefaultStylePrompt
}

func (s *memStyles) List(ctx context.Context) ([]*entities.AnswerStyle, error) {
	return nil, nil
}

func (s *memStyles) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prompts, id)
	return nil
}

type memTranscripts struct {
	mu      sync.Mutex
	records []*entities.TranscriptRecord
	saveErr error
}

func (m *memTranscripts) Save(ctx context.Context, record *entities.TranscriptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	saved := *record
	m.records = append(m.records, &saved)
	return nil
}

func (m *memTranscripts) ListByMeeting(ctx context.Context, meetingID string) ([]*entities.TranscriptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.TranscriptRecord
	for _, r := range m.records {
		if r.MeetingID == meetingID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memTranscripts) saved() []*entities.TranscriptRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entities.TranscriptRecord, len(m.records))
	copy(out, m.records)
	return out
}

// echoSuggester answers with a deterministic transformation of the request,
// or the fallback text when failing is set.
type echoSuggester struct {
	mu      sync.Mutex
	failing bool
	delay   time.Duration
	calls   []repositories.SuggestionRequest
}

func (s *echoSuggester) Suggest(ctx context.Context, req repositories.SuggestionRequest) entities.SuggestionResult {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	failing := s.failing
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	result := entities.SuggestionResult{
		RequestText: req.Transcript,
		StylePrompt: req.StylePrompt,
		Language:    req.Language,
	}
	if failing {
		result.Text = entities.FallbackText(req.Language)
		return result
	}
	result.Text = "Reply to: " + req.Transcript
	result.OK = true
	return result
}

func (s *echoSuggester) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordedArchive struct {
	meetingID string
	sessionID string
	size      int
}

type memArchiver struct {
	mu    sync.Mutex
	calls []recordedArchive
}

func (a *memArchiver) Archive(ctx context.Context, meetingID, sessionID string, audio []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, recordedArchive{meetingID: meetingID, sessionID: sessionID, size: len(audio)})
	return nil
}

func (a *memArchiver) archived() []recordedArchive {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]recordedArchive, len(a.calls))
	copy(out, a.calls)
	return out
}

// recordingSink captures delivered events per connection.
type recordingSink struct {
	mu     sync.Mutex
	events map[string][]Event
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(map[string][]Event)}
}

func (s *recordingSink) Deliver(connectionID string, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[connectionID] = append(s.events[connectionID], event)
}

func (s *recordingSink) eventsFor(connectionID string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events[connectionID]))
	copy(out, s.events[connectionID])
	return out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

var errStream = errors.New("stream broken")
