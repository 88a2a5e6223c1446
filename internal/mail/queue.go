package mail

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed = errors.New("mail queue is closed")
	ErrQueueFull   = errors.New("mail queue is full")
)

// Queue is a bounded, non-blocking message buffer.
type Queue struct {
	messages chan Message
	logger   *slog.Logger
	mu       sync.RWMutex
	closed   bool
}

// NewQueue creates a new queue holding at most size messages.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		messages: make(chan Message, size),
		logger:   logger,
	}
}

// Enqueue adds a message without blocking.
// Returns ErrQueueFull when the buffer is at capacity and ErrQueueClosed after Close.
func (q *Queue) Enqueue(msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.messages <- msg:
		q.logger.Debug("message enqueued",
			"subject", msg.Subject,
			"queue_len", len(q.messages),
			"queue_cap", cap(q.messages))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.messages))
	}
}

// Close stops accepting messages. Messages already queued can still be read.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.messages)
		q.logger.Info("mail queue closed")
	}
}

// Messages returns the channel workers consume from.
func (q *Queue) Messages() <-chan Message {
	return q.messages
}

// Len reports how many messages are waiting.
func (q *Queue) Len() int {
	return len(q.messages)
}
