package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/tasker-api/internal/redact"
)

// DispatcherConfig holds configuration options for the Dispatcher.
type DispatcherConfig struct {
	// WorkerCount determines how many concurrent senders to start.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// SendTimeout bounds a single delivery attempt. Zero means no timeout.
	SendTimeout time.Duration
}

// Dispatcher manages a pool of worker goroutines that drain a Queue through
// a Mailer. It handles graceful shutdown and worker lifecycle.
type Dispatcher struct {
	queue       *Queue
	mailer      Mailer
	workerCount int
	sendTimeout time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewDispatcher creates a dispatcher for queue. Call Start to begin delivery.
func NewDispatcher(queue *Queue, mailer Mailer, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mail_dispatcher")

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", cfg.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		queue:       queue,
		mailer:      mailer,
		workerCount: workerCount,
		sendTimeout: cfg.SendTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Enqueue places msg on the dispatcher's queue without blocking.
func (d *Dispatcher) Enqueue(msg Message) error {
	return d.queue.Enqueue(msg)
}

// Start launches the workers. Calling Start more than once has no effect.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		d.logger.Info("starting mail dispatcher", "worker_count", d.workerCount)
		for i := 0; i < d.workerCount; i++ {
			d.wg.Add(1)
			go d.worker(i)
		}
	})
}

// Stop closes the queue and waits for workers to deliver what is already
// queued, or until ctx is done, whichever comes first. Messages still queued
// when ctx expires are dropped.
func (d *Dispatcher) Stop(ctx context.Context) {
	d.stopOnce.Do(func() {
		d.queue.Close()

		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			d.logger.Info("mail dispatcher stopped")
		case <-ctx.Done():
			d.cancel()
			<-done
			d.logger.Warn("mail dispatcher stopped before draining queue",
				"dropped", d.queue.Len())
		}
		d.cancel()
	})
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	log := d.logger.With("worker_id", id)

	for {
		select {
		case <-d.ctx.Done():
			return
		case msg, ok := <-d.queue.Messages():
			if !ok {
				return
			}
			d.deliver(log, msg)
		}
	}
}

func (d *Dispatcher) deliver(log *slog.Logger, msg Message) {
	ctx := d.ctx
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		log.Error("failed to send email",
			"error", redact.Error(err),
			"subject", msg.Subject)
		return
	}

	log.Debug("email sent", "subject", msg.Subject)
}
