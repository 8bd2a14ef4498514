package repositories

import "context"

// AudioArchiver stores the raw audio captured during a session after the
// session ends. Archival is best effort; failures are logged by the caller
// and never affect session teardown.
type AudioArchiver interface {
	Archive(ctx context.Context, meetingID, sessionID string, audio []byte) error
}
