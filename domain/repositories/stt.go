package repositories

import "context"

// StreamConfig represents audio configuration for a streaming recognition
// session.
type StreamConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// StreamingResult is one event from the transcription stream. A non-nil Err
// is terminal: the stream emits it once and then closes the results channel.
type StreamingResult struct {
	Transcript string
	IsFinal    bool
	Err        error
}

// SpeechToText abstracts a streaming speech recognition service. OpenStream
// failures are reported synchronously so the caller can refuse to start a
// session.
type SpeechToText interface {
	OpenStream(ctx context.Context, config StreamConfig) (TranscriptionStream, error)
}

// TranscriptionStream is one live recognition stream. Feed and CloseSend are
// called by a single producer goroutine; Results is consumed by a single
// reader until the channel closes.
type TranscriptionStream interface {
	Feed(data []byte) error
	CloseSend() error
	Results() <-chan StreamingResult
}
