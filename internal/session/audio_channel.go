package session

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultAudioChannelCapacity is the high-water mark for buffered audio
// chunks per session. When the buffer is full, new chunks are dropped rather
// than blocking the connection handler.
const DefaultAudioChannelCapacity = 50

// AudioChannel is a bounded, ordered conduit of audio chunks for one session
// with a single producer (the connection handler) and a single consumer (the
// session worker's feed loop). Closing the underlying channel is the one
// end-of-stream marker, so an empty payload is never ambiguous.
type AudioChannel struct {
	mu      sync.Mutex
	ch      chan []byte
	closed  bool
	dropped int64
	logger  *zap.Logger
}

// NewAudioChannel creates an audio channel with the given capacity.
func NewAudioChannel(capacity int, logger *zap.Logger) *AudioChannel {
	if capacity <= 0 {
		capacity = DefaultAudioChannelCapacity
	}
	return &AudioChannel{
		ch:     make(chan []byte, capacity),
		logger: logger,
	}
}

// Push enqueues one chunk. Chunks pushed after Close, or while the buffer is
// at capacity, are dropped and counted; Push never blocks.
func (c *AudioChannel) Push(chunk []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.dropped++
		c.logger.Debug("audio chunk dropped on closed channel")
		return
	}

	select {
	case c.ch <- chunk:
	default:
		c.dropped++
		c.logger.Warn("audio channel full, dropping chunk",
			zap.Int64("totalDropped", c.dropped))
	}
}

// Close enqueues the end-of-stream marker. Idempotent.
func (c *AudioChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// Drain returns the receive side of the channel. Buffered chunks arrive in
// push order; the channel closes after the last chunk pushed before Close.
func (c *AudioChannel) Drain() <-chan []byte {
	return c.ch
}

// Dropped returns the number of chunks discarded due to overflow or pushes
// after close.
func (c *AudioChannel) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
