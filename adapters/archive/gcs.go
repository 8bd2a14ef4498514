package archive

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSAudioArchiver uploads raw session audio to a Cloud Storage bucket as
// <meetingID>/<sessionID>_<timestamp>.raw.
type GCSAudioArchiver struct {
	bucket string
	logger *zap.Logger
}

// NewGCSAudioArchiver creates an archiver targeting the given bucket.
func NewGCSAudioArchiver(bucket string, logger *zap.Logger) (*GCSAudioArchiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &GCSAudioArchiver{bucket: bucket, logger: logger}, nil
}

func (a *GCSAudioArchiver) Archive(ctx context.Context, meetingID, sessionID string, audio []byte) error {
	if len(audio) == 0 {
		return nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	defer client.Close()

	timestamp := time.Now().UTC().Format("20060102-150405")
	name := fmt.Sprintf("%s/%s_%s.raw", meetingID, sessionID, timestamp)

	w := client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "audio/l16"
	if _, err := w.Write(audio); err != nil {
		w.Close()
		return fmt.Errorf("failed to write audio object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize audio object: %w", err)
	}

	a.logger.Info("session audio archived",
		zap.String("bucket", a.bucket),
		zap.String("object", name),
		zap.Int("bytes", len(audio)))

	return nil
}
