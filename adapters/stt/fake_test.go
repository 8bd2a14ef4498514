package stt

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/meetmate-ai/server/domain/repositories"
)

func TestFakeStreamEmitsInterimPerChunkAndFinalOnClose(t *testing.T) {
	fake := NewFakeSpeechToText(zap.NewNop())

	stream, err := fake.OpenStream(context.Background(), repositories.StreamConfig{Language: "en-US"})
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}

	chunk := make([]byte, 2048)
	if err := stream.Feed(chunk); err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if err := stream.Feed(chunk); err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if err := stream.CloseSend(); err != nil {
		t.Fatalf("close send failed: %v", err)
	}

	var results []repositories.StreamingResult
	for r := range stream.Results() {
		results = append(results, r)
	}

	if len(results) != 3 {
		t.Fatalf("expected 2 interims and 1 final, got %d results", len(results))
	}
	if results[0].IsFinal || results[1].IsFinal {
		t.Error("expected the first two results to be interim")
	}
	if !results[2].IsFinal {
		t.Error("expected the last result to be final")
	}
	if results[2].Transcript == "" {
		t.Error("expected a non-empty final transcript")
	}
}

func TestFakeStreamNoFinalWithoutAudio(t *testing.T) {
	fake := NewFakeSpeechToText(zap.NewNop())

	stream, err := fake.OpenStream(context.Background(), repositories.StreamConfig{Language: "en-US"})
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	if err := stream.CloseSend(); err != nil {
		t.Fatalf("close send failed: %v", err)
	}

	if _, ok := <-stream.Results(); ok {
		t.Error("expected no results for an empty stream")
	}
}

func TestFakeStreamFeedAfterCloseIsIgnored(t *testing.T) {
	fake := NewFakeSpeechToText(zap.NewNop())

	stream, err := fake.OpenStream(context.Background(), repositories.StreamConfig{Language: "en-US"})
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	if err := stream.CloseSend(); err != nil {
		t.Fatalf("close send failed: %v", err)
	}
	if err := stream.Feed(make([]byte, 128)); err != nil {
		t.Errorf("feed after close should be a no-op, got %v", err)
	}
}
