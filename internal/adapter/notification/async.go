package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/memledger/internal/domain"
	"github.com/iho/memledger/internal/usecase"
)

var (
	// ErrQueueFull is returned when the delivery queue has no free slot.
	ErrQueueFull = errors.New("notification queue is full")
	// ErrNotifierClosed is returned after Close has been called.
	ErrNotifierClosed = errors.New("notifier is closed")
)

// DeliveryRecorder receives delivery outcomes.
type DeliveryRecorder interface {
	NotificationDelivered()
	NotificationFailed()
	NotificationDropped()
}

type nopDelivery struct{}

func (nopDelivery) NotificationDelivered() {}
func (nopDelivery) NotificationFailed()    {}
func (nopDelivery) NotificationDropped()   {}

// AsyncConfig for AsyncNotifier.
type AsyncConfig struct {
	Next            usecase.Notifier
	Logger          zerolog.Logger
	Recorder        DeliveryRecorder
	Workers         int
	QueueSize       int
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type job struct {
	account domain.Account
	message string
}

// AsyncNotifier queues notifications and delivers them from a worker pool,
// retrying failed deliveries with exponential backoff.
type AsyncNotifier struct {
	next            usecase.Notifier
	logger          zerolog.Logger
	recorder        DeliveryRecorder
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration

	queue  chan job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewAsyncNotifier creates an AsyncNotifier and starts its workers.
func NewAsyncNotifier(cfg AsyncConfig) *AsyncNotifier {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopDelivery{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	n := &AsyncNotifier{
		next:            cfg.Next,
		logger:          cfg.Logger,
		recorder:        cfg.Recorder,
		maxRetries:      cfg.MaxRetries,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
		queue:           make(chan job, cfg.QueueSize),
		ctx:             ctx,
		cancel:          cancel,
	}

	n.wg.Add(cfg.Workers)
	for range cfg.Workers {
		go n.worker()
	}

	n.logger.Info().
		Int("workers", cfg.Workers).
		Int("queue_size", cfg.QueueSize).
		Msg("notification workers started")

	return n
}

// NotifyAboutTransfer enqueues the notification without blocking.
func (n *AsyncNotifier) NotifyAboutTransfer(_ context.Context, account domain.Account, message string) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return ErrNotifierClosed
	}

	select {
	case n.queue <- job{account: account, message: message}:
		return nil
	default:
		n.recorder.NotificationDropped()
		return ErrQueueFull
	}
}

// Close stops accepting notifications and waits for queued ones to be
// delivered. Deliveries still running when ctx expires are cancelled.
func (n *AsyncNotifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		n.cancel()
		return nil
	case <-ctx.Done():
		n.cancel()
		<-done
		return ctx.Err()
	}
}

func (n *AsyncNotifier) worker() {
	defer n.wg.Done()

	for j := range n.queue {
		if err := n.deliver(j); err != nil {
			n.recorder.NotificationFailed()
			n.logger.Error().
				Err(err).
				Str("account_id", j.account.ID).
				Msg("notification delivery failed")

			continue
		}

		n.recorder.NotificationDelivered()
	}
}

func (n *AsyncNotifier) deliver(j job) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = n.initialInterval
	b.MaxInterval = n.maxInterval
	b.MaxElapsedTime = 0

	attempt := 0

	return backoff.Retry(func() error {
		err := n.next.NotifyAboutTransfer(n.ctx, j.account, j.message)
		if err == nil {
			return nil
		}

		attempt++
		if attempt > n.maxRetries {
			return backoff.Permanent(err)
		}

		n.logger.Warn().
			Err(err).
			Str("account_id", j.account.ID).
			Int("retry", attempt).
			Msg("notification delivery failed, retrying")

		return err
	}, backoff.WithContext(b, n.ctx))
}
