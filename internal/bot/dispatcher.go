package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Dispatcher defaults
const (
	DefaultMaxConcurrentChats = 16
	DefaultChatQueueSize      = 32
	DefaultWorkerIdleTimeout  = 5 * time.Minute
)

var (
	// ErrDispatcherStopped is returned by Dispatch after Stop
	ErrDispatcherStopped = errors.New("dispatcher stopped")

	// ErrChatBusy is returned by Dispatch when the chat queue is full
	ErrChatBusy = errors.New("chat queue full")
)

// HandleFunc processes one update
type HandleFunc func(context.Context, Update)

// Dispatcher runs one worker per chat so updates of a chat are handled in
// order, while a shared semaphore bounds how many chats run at once.
// A worker with nothing to do for idleTimeout exits and frees its queue.
type Dispatcher struct {
	ctx         context.Context
	handle      HandleFunc
	sem         *semaphore.Weighted
	queueSize   int
	idleTimeout time.Duration
	logger      *slog.Logger

	mu      sync.RWMutex
	queues  map[int64]chan Update
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose workers live until ctx is done or Stop is called
func NewDispatcher(ctx context.Context, maxConcurrent int, handle HandleFunc, logger *slog.Logger) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentChats
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		ctx:         ctx,
		handle:      handle,
		sem:         semaphore.NewWeighted(int64(maxConcurrent)),
		queueSize:   DefaultChatQueueSize,
		idleTimeout: DefaultWorkerIdleTimeout,
		logger:      logger,
		queues:      make(map[int64]chan Update),
	}
}

// Dispatch queues u on its chat worker, starting the worker on first use.
// It never blocks: a full chat queue yields ErrChatBusy and u is dropped.
func (d *Dispatcher) Dispatch(u Update) error {
	for {
		d.mu.RLock()
		if d.stopped {
			d.mu.RUnlock()
			return ErrDispatcherStopped
		}
		q, ok := d.queues[u.ChatID]
		if ok {
			err := d.enqueue(q, u)
			d.mu.RUnlock()
			return err
		}
		d.mu.RUnlock()

		d.mu.Lock()
		if !d.stopped {
			if _, ok := d.queues[u.ChatID]; !ok {
				q := make(chan Update, d.queueSize)
				d.queues[u.ChatID] = q
				d.wg.Add(1)
				go d.worker(u.ChatID, q)
			}
		}
		d.mu.Unlock()
	}
}

func (d *Dispatcher) enqueue(q chan<- Update, u Update) error {
	if err := d.ctx.Err(); err != nil {
		return err
	}
	select {
	case q <- u:
		return nil
	default:
		return ErrChatBusy
	}
}

func (d *Dispatcher) worker(chatID int64, q chan Update) {
	defer d.wg.Done()
	idle := time.NewTimer(d.idleTimeout)
	defer idle.Stop()
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-idle.C:
			if d.retire(chatID, q) {
				return
			}
			idle.Reset(d.idleTimeout)
		case u, ok := <-q:
			if !ok {
				return
			}
			if err := d.sem.Acquire(d.ctx, 1); err != nil {
				return
			}
			d.run(chatID, u)
			d.sem.Release(1)
			idle.Reset(d.idleTimeout)
		}
	}
}

// retire drops the chat queue if it is still empty. Dispatch enqueues under
// the read lock, so nothing can slip into q once the write lock is held.
func (d *Dispatcher) retire(chatID int64, q chan Update) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || len(q) > 0 || d.queues[chatID] != q {
		return false
	}
	delete(d.queues, chatID)
	d.logger.Debug("chat_worker_retired", "chat_id", chatID)
	return true
}

func (d *Dispatcher) run(chatID int64, u Update) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch_panic", "chat_id", chatID, "panic", fmt.Sprint(r))
		}
	}()
	d.handle(d.ctx, u)
}

// Chats returns the number of chats with a live worker
func (d *Dispatcher) Chats() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.queues)
}

// Stop closes all chat queues and waits for queued updates to drain
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}
