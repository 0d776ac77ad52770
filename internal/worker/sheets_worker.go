package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"labcare/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrQueueFull = errors.New("sync queue is full")

// SheetsClient is the spreadsheet a booking is mirrored into.
type SheetsClient interface {
	UpsertBooking(ctx context.Context, booking models.Booking) error
}

// SyncTask is one booking waiting to be written to the spreadsheet.
type SyncTask struct {
	Booking   models.Booking `json:"booking"`
	Attempt   int            `json:"attempt"`
	NotBefore time.Time      `json:"not_before,omitempty"`
	LastError string         `json:"last_error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// SheetsWorker mirrors new bookings into Google Sheets in the background.
// Tasks go to a Redis list when a client is configured, otherwise to an
// in-memory queue that is lost on restart.
type SheetsWorker struct {
	sheets        SheetsClient
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
	now           func() time.Time

	mu          sync.Mutex
	deadLetters []SyncTask
	parked      []SyncTask
}

// NewSheetsWorker builds a worker with sane defaults.
func NewSheetsWorker(sheets SheetsClient, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &SheetsWorker{
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		queue:         make(chan SyncTask, 128),
		redisQueueKey: "labcare:sheets:queue",
		deadLetterKey: "labcare:sheets:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
		now:           time.Now,
	}
}

// EnqueueBooking schedules a booking for the spreadsheet.
func (w *SheetsWorker) EnqueueBooking(ctx context.Context, booking models.Booking) error {
	if booking.ID == "" {
		return errors.New("booking id is required")
	}
	return w.push(ctx, SyncTask{Booking: booking, CreatedAt: w.now()})
}

func (w *SheetsWorker) push(ctx context.Context, task SyncTask) error {
	if w.redis != nil {
		if err := w.pushRedis(ctx, w.redisQueueKey, task); err != nil {
			w.logger.Warn().Err(err).Msg("redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		w.logger.Error().Str("booking_id", task.Booking.ID).Msg("in-memory queue full, task dropped")
		return ErrQueueFull
	}
}

// Start launches main loop; stops when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets worker started")
	defer w.logger.Info().Msg("sheets worker stopped")
	defer w.requeueParked()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.takeDue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case t := <-w.queue:
			w.processTask(ctx, &t)
		case <-time.After(w.nextWait()):
		}
	}
}

func (w *SheetsWorker) tryLocalQueue() (SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return SyncTask{}, false
	}
}

func (w *SheetsWorker) tryRedis(ctx context.Context) (SyncTask, bool) {
	if w.redis == nil {
		return SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, redis.Nil) {
			return SyncTask{}, false
		}
		w.logger.Error().Err(err).Msg("redis BRPOP error")
		return SyncTask{}, false
	}
	if len(res) != 2 {
		return SyncTask{}, false
	}
	var task SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("decode redis task")
		return SyncTask{}, false
	}
	return task, true
}

func (w *SheetsWorker) processTask(ctx context.Context, task *SyncTask) {
	if task.NotBefore.After(w.now()) {
		w.park(*task)
		return
	}

	if err := w.sheets.UpsertBooking(ctx, task.Booking); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	w.logger.Debug().Str("booking_id", task.Booking.ID).Int("attempt", task.Attempt+1).Msg("booking synced")
}

// park holds a task that is not due yet; the loop keeps serving the queue.
func (w *SheetsWorker) park(task SyncTask) {
	w.mu.Lock()
	w.parked = append(w.parked, task)
	w.mu.Unlock()
}

func (w *SheetsWorker) takeDue() (SyncTask, bool) {
	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, t := range w.parked {
		if !t.NotBefore.After(now) {
			w.parked = append(w.parked[:i], w.parked[i+1:]...)
			return t, true
		}
	}
	return SyncTask{}, false
}

// nextWait is how long the loop may idle before the earliest parked task is due.
func (w *SheetsWorker) nextWait() time.Duration {
	wait := w.pollInterval
	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.parked {
		if d := t.NotBefore.Sub(now); d < wait {
			wait = d
		}
	}
	if wait < 0 {
		return 0
	}
	return wait
}

// requeueParked puts parked tasks back so a restart with Redis does not lose them.
func (w *SheetsWorker) requeueParked() {
	w.mu.Lock()
	parked := w.parked
	w.parked = nil
	w.mu.Unlock()

	for _, t := range parked {
		if err := w.push(context.Background(), t); err != nil {
			w.logger.Error().Err(err).Str("booking_id", t.Booking.ID).Msg("requeue parked task")
		}
	}
}

func (w *SheetsWorker) parkedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.parked)
}

func (w *SheetsWorker) retryOrFail(ctx context.Context, task *SyncTask, cause error) {
	task.Attempt++
	task.LastError = cause.Error()

	if w.retryPolicy.Exhausted(task.Attempt) {
		w.logger.Error().Err(cause).Str("booking_id", task.Booking.ID).Int("attempts", task.Attempt).Msg("sync failed, moved to dead letter")
		w.pushDeadLetter(ctx, *task)
		return
	}

	delay := w.retryPolicy.NextDelay(task.Attempt)
	task.NotBefore = w.now().Add(delay)
	w.logger.Warn().Err(cause).Str("booking_id", task.Booking.ID).Dur("retry_in", delay).Msg("sync failed, will retry")
	if err := w.push(ctx, *task); err != nil {
		w.pushDeadLetter(ctx, *task)
	}
}

func (w *SheetsWorker) pushRedis(ctx context.Context, key string, task SyncTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	return w.redis.LPush(ctx, key, data).Err()
}

func (w *SheetsWorker) pushDeadLetter(ctx context.Context, task SyncTask) {
	w.mu.Lock()
	w.deadLetters = append(w.deadLetters, task)
	w.mu.Unlock()

	if w.redis == nil {
		return
	}
	if err := w.pushRedis(ctx, w.deadLetterKey, task); err != nil {
		w.logger.Error().Err(err).Str("booking_id", task.Booking.ID).Msg("deadletter push failed")
	}
}

// DeadLetters returns tasks that ran out of retries since the worker started.
func (w *SheetsWorker) DeadLetters() []SyncTask {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]SyncTask, len(w.deadLetters))
	copy(out, w.deadLetters)
	return out
}
