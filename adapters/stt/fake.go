package stt

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/meetmate-ai/server/domain/repositories"
)

// FakeSpeechToText is a deterministic recognizer for development and tests.
// It emits an interim segment per fed chunk and one final segment, chosen by
// cumulative audio size, when the send side closes.
type FakeSpeechToText struct {
	logger *zap.Logger
}

// NewFakeSpeechToText creates a fake recognizer.
func NewFakeSpeechToText(logger *zap.Logger) *FakeSpeechToText {
	return &FakeSpeechToText{logger: logger}
}

func (f *FakeSpeechToText) OpenStream(ctx context.Context, config repositories.StreamConfig) (repositories.TranscriptionStream, error) {
	f.logger.Info("opening fake transcription stream",
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding),
		zap.String("language", config.Language))

	return &fakeStream{
		results: make(chan repositories.StreamingResult, 64),
	}, nil
}

type fakeStream struct {
	mu         sync.Mutex
	totalBytes int
	closed     bool
	results    chan repositories.StreamingResult
}

func (s *fakeStream) Feed(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(data) == 0 {
		return nil
	}
	s.totalBytes += len(data)
	s.results <- repositories.StreamingResult{Transcript: s.transcript()}
	return nil
}

func (s *fakeStream) CloseSend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.totalBytes > 0 {
		s.results <- repositories.StreamingResult{Transcript: s.transcript(), IsFinal: true}
	}
	close(s.results)
	return nil
}

func (s *fakeStream) Results() <-chan repositories.StreamingResult {
	return s.results
}

func (s *fakeStream) transcript() string {
	switch {
	case s.totalBytes > 10000:
		return "Let's walk through the quarterly numbers before we decide on next steps."
	case s.totalBytes > 5000:
		return "Thanks everyone for joining the call today."
	case s.totalBytes > 1000:
		return "Hello, can everyone hear me?"
	default:
		return "Hello"
	}
}
