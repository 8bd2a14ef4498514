package archive

import (
	"context"

	"go.uber.org/zap"
)

// NopAudioArchiver discards session audio. Used when no archive bucket is
// configured.
type NopAudioArchiver struct {
	logger *zap.Logger
}

// NewNopAudioArchiver creates an archiver that discards audio.
func NewNopAudioArchiver(logger *zap.Logger) *NopAudioArchiver {
	return &NopAudioArchiver{logger: logger}
}

func (a *NopAudioArchiver) Archive(ctx context.Context, meetingID, sessionID string, audio []byte) error {
	a.logger.Debug("audio archival disabled, discarding session audio",
		zap.String("meetingID", meetingID),
		zap.String("sessionID", sessionID),
		zap.Int("bytes", len(audio)))
	return nil
}
