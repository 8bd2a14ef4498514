package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/meetmate-ai/server/domain/entities"
)

const testMeetingID = "meeting-1"

type testEnv struct {
	registry    *Registry
	stt         *scriptedSTT
	sink        *recordingSink
	meetings    *memMeetings
	styles      *memStyles
	transcripts *memTranscripts
	suggester   *echoSuggester
	archiver    *memArchiver
}

func newTestEnv() *testEnv {
	env := &testEnv{
		stt:         &scriptedSTT{},
		sink:        newRecordingSink(),
		meetings:    newMemMeetings(&entities.Meeting{ID: testMeetingID, Title: "Standup", Language: "en-US"}),
		styles:      newMemStyles(),
		transcripts: &memTranscripts{},
		suggester:   &echoSuggester{},
		archiver:    &memArchiver{},
	}
	env.registry = NewRegistry(
		env.meetings,
		env.styles,
		env.transcripts,
		env.stt,
		env.suggester,
		env.archiver,
		env.sink,
		zap.NewNop(),
	)
	return env
}

func TestStartSessionMeetingNotFound(t *testing.T) {
	env := newTestEnv()

	_, status, err := env.registry.StartSession(context.Background(), "conn-1", "no-such-meeting")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StartMeetingNotFound {
		t.Errorf("expected StartMeetingNotFound, got %v", status)
	}
	if env.registry.ActiveCount() != 0 {
		t.Errorf("expected no active sessions, got %d", env.registry.ActiveCount())
	}
}

func TestStartSessionAlreadyActive(t *testing.T) {
	env := newTestEnv()

	sessionID, status, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID)
	if err != nil || status != StartOK {
		t.Fatalf("first start failed: status=%v err=%v", status, err)
	}
	if sessionID == "" {
		t.Fatal("expected a session ID")
	}

	_, status, err = env.registry.StartSession(context.Background(), "conn-1", testMeetingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StartAlreadyActive {
		t.Errorf("expected StartAlreadyActive, got %v", status)
	}
	if env.registry.ActiveCount() != 1 {
		t.Errorf("expected exactly one active session, got %d", env.registry.ActiveCount())
	}

	env.registry.StopSession("conn-1")
	env.stt.stream(0).finish()
}

func TestStartSessionStreamOpenFailure(t *testing.T) {
	env := newTestEnv()
	env.stt.openErr = errors.New("recognizer unavailable")

	_, _, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID)
	if err == nil {
		t.Fatal("expected an error")
	}
	if env.registry.ActiveCount() != 0 {
		t.Errorf("expected reservation rollback, got %d active sessions", env.registry.ActiveCount())
	}

	// The connection can start a new session after the failure.
	env.stt.openErr = nil
	_, status, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID)
	if err != nil || status != StartOK {
		t.Fatalf("restart after failure: status=%v err=%v", status, err)
	}

	env.registry.StopSession("conn-1")
	env.stt.stream(0).finish()
}

func TestSessionPipelineEndToEnd(t *testing.T) {
	env := newTestEnv()

	sessionID, status, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID)
	if err != nil || status != StartOK {
		t.Fatalf("start failed: status=%v err=%v", status, err)
	}

	env.registry.PushAudio("conn-1", []byte("chunk-a"))
	env.registry.PushAudio("conn-1", []byte("chunk-b"))

	stream := env.stt.stream(0)
	waitFor(t, time.Second, func() bool { return stream.fedCount() == 2 })

	stream.emit("hel", false)
	stream.emit("hello every", false)
	stream.emit("Hello everyone, shall we start?", true)

	env.registry.StopSession("conn-1")
	waitFor(t, time.Second, func() bool { return stream.sendClosed() })
	stream.finish()

	waitFor(t, time.Second, func() bool {
		events := env.sink.eventsFor("conn-1")
		return len(events) >= 4
	})

	events := env.sink.eventsFor("conn-1")
	wantTypes := []EventType{EventInterimTranscript, EventInterimTranscript, EventFinalTranscript, EventAIResponse}
	if len(events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d: %v", len(wantTypes), len(events), events)
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d: expected %s, got %s", i, want, events[i].Type)
		}
		if events[i].SessionID != sessionID {
			t.Errorf("event %d: expected session %s, got %s", i, sessionID, events[i].SessionID)
		}
	}
	if events[2].Text != "Hello everyone, shall we start?" {
		t.Errorf("unexpected final transcript: %q", events[2].Text)
	}
	if events[3].Text != "Reply to: Hello everyone, shall we start?" {
		t.Errorf("unexpected suggestion: %q", events[3].Text)
	}

	waitFor(t, time.Second, func() bool { return len(env.transcripts.saved()) == 1 })
	record := env.transcripts.saved()[0]
	if record.MeetingID != testMeetingID {
		t.Errorf("expected meeting %s, got %s", testMeetingID, record.MeetingID)
	}
	if record.Text != "Hello everyone, shall we start?" {
		t.Errorf("unexpected persisted transcript: %q", record.Text)
	}
	if record.Suggestion != "Reply to: Hello everyone, shall we start?" {
		t.Errorf("unexpected persisted suggestion: %q", record.Suggestion)
	}

	waitFor(t, time.Second, func() bool { return env.registry.ActiveCount() == 0 })
	waitFor(t, time.Second, func() bool { return len(env.archiver.archived()) == 1 })
	archived := env.archiver.archived()[0]
	if archived.meetingID != testMeetingID || archived.sessionID != sessionID {
		t.Errorf("unexpected archive target: %+v", archived)
	}
	if archived.size != len("chunk-a")+len("chunk-b") {
		t.Errorf("unexpected archived size: %d", archived.size)
	}
}

func TestStopDrainsBufferedResults(t *testing.T) {
	env := newTestEnv()

	if _, _, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	stream := env.stt.stream(0)

	stream.emit("first final.", true)
	stream.emit("second final.", true)
	env.registry.StopSession("conn-1")
	stream.finish()

	waitFor(t, time.Second, func() bool { return len(env.transcripts.saved()) == 2 })
	records := env.transcripts.saved()
	if records[0].Text != "first final." || records[1].Text != "second final." {
		t.Errorf("expected finals persisted in emission order, got %q then %q", records[0].Text, records[1].Text)
	}
	if env.suggester.callCount() != 2 {
		t.Errorf("expected one suggestion call per final, got %d", env.suggester.callCount())
	}
}

func TestStopRejectsFurtherAudio(t *testing.T) {
	env := newTestEnv()

	if _, _, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	stream := env.stt.stream(0)

	env.registry.StopSession("conn-1")
	env.registry.PushAudio("conn-1", []byte("late audio"))
	stream.finish()

	waitFor(t, time.Second, func() bool { return stream.sendClosed() })
	if stream.fedCount() != 0 {
		t.Errorf("expected no audio fed after stop, got %d chunks", stream.fedCount())
	}
}

func TestBlankFinalSkipsSuggestionAndPersistence(t *testing.T) {
	env := newTestEnv()

	if _, _, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	stream := env.stt.stream(0)

	stream.emit("   ", true)
	env.registry.StopSession("conn-1")
	stream.finish()

	waitFor(t, time.Second, func() bool { return env.registry.ActiveCount() == 0 })

	// The blank final is still delivered to the client.
	waitFor(t, time.Second, func() bool { return len(env.sink.eventsFor("conn-1")) == 1 })
	if env.suggester.callCount() != 0 {
		t.Errorf("expected no suggestion call for blank final, got %d", env.suggester.callCount())
	}
	if len(env.transcripts.saved()) != 0 {
		t.Errorf("expected no persisted record for blank final, got %d", len(env.transcripts.saved()))
	}
}

func TestSuggestionFallbackIsPersisted(t *testing.T) {
	env := newTestEnv()
	env.suggester.failing = true

	if _, _, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	stream := env.stt.stream(0)

	stream.emit("What do you think?", true)
	env.registry.StopSession("conn-1")
	stream.finish()

	waitFor(t, time.Second, func() bool { return len(env.transcripts.saved()) == 1 })
	record := env.transcripts.saved()[0]
	if record.Suggestion != entities.FallbackText("en-US") {
		t.Errorf("expected fallback suggestion persisted, got %q", record.Suggestion)
	}
}

func TestStreamErrorClosesSession(t *testing.T) {
	env := newTestEnv()

	if _, _, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	stream := env.stt.stream(0)

	stream.emit("partial utterance", false)
	stream.fail(errStream)

	waitFor(t, time.Second, func() bool { return env.registry.ActiveCount() == 0 })

	// The connection can start a fresh session afterwards.
	_, status, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID)
	if err != nil || status != StartOK {
		t.Fatalf("restart after stream error: status=%v err=%v", status, err)
	}
	env.registry.StopSession("conn-1")
	env.stt.stream(1).finish()
}

func TestDisconnectWithPendingSuggestion(t *testing.T) {
	env := newTestEnv()
	env.suggester.delay = 50 * time.Millisecond

	if _, _, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	stream := env.stt.stream(0)

	stream.emit("Should we ship on Friday?", true)
	env.registry.OnDisconnect("conn-1")
	stream.finish()

	waitFor(t, time.Second, func() bool { return env.registry.ActiveCount() == 0 })

	// The in-flight suggestion still completes and the record is persisted
	// even though the connection is gone.
	waitFor(t, time.Second, func() bool { return len(env.transcripts.saved()) == 1 })
	if env.transcripts.saved()[0].Text != "Should we ship on Friday?" {
		t.Errorf("unexpected persisted transcript: %q", env.transcripts.saved()[0].Text)
	}
}

func TestChangeStyleAppliesToSubsequentSuggestions(t *testing.T) {
	env := newTestEnv()
	env.styles.Create(context.Background(), &entities.AnswerStyle{ID: "style-1", Name: "Casual", Prompt: "Answer casually."})

	if _, _, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	stream := env.stt.stream(0)

	env.registry.ChangeStyle("conn-1", "style-1")
	stream.emit("Any updates on the release?", true)
	env.registry.StopSession("conn-1")
	stream.finish()

	waitFor(t, time.Second, func() bool { return env.suggester.callCount() == 1 })
	env.suggester.mu.Lock()
	prompt := env.suggester.calls[0].StylePrompt
	env.suggester.mu.Unlock()
	if prompt != "Answer casually." {
		t.Errorf("expected selected style prompt, got %q", prompt)
	}
}

func TestStopStale(t *testing.T) {
	env := newTestEnv()

	if _, _, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if n := env.registry.StopStale(time.Hour); n != 0 {
		t.Errorf("expected no stale sessions, got %d", n)
	}
	if n := env.registry.StopStale(-time.Second); n != 1 {
		t.Errorf("expected one stale session, got %d", n)
	}

	env.stt.stream(0).finish()
	waitFor(t, time.Second, func() bool { return env.registry.ActiveCount() == 0 })
}

func TestSessionsSnapshot(t *testing.T) {
	env := newTestEnv()

	sessionID, _, err := env.registry.StartSession(context.Background(), "conn-1", testMeetingID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	sessions := env.registry.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.ID != sessionID || got.MeetingID != testMeetingID || got.Language != "en-US" {
		t.Errorf("unexpected snapshot: %+v", got)
	}
	if got.State != entities.SessionStateStreaming {
		t.Errorf("expected streaming state, got %s", got.State)
	}

	env.registry.StopSession("conn-1")
	env.stt.stream(0).finish()
}
