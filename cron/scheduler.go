package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fundigo/config"

	"github.com/hibiken/asynq"
)

const TypeOfferExpire = "offer:expire"

// offerExpirePayload identifies which batch deadline fired.
type offerExpirePayload struct {
	BookingID  string `json:"bookingId"`
	BatchIndex int    `json:"batchIndex"`
}

// AsynqDeadlineScheduler arms deferred batch-expiry checks through asynq,
// which persists the deferred task in Redis so deadlines survive restarts of
// this process alongside the re-arm scan.
type AsynqDeadlineScheduler struct {
	client *asynq.Client
}

func NewAsynqDeadlineScheduler() *AsynqDeadlineScheduler {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSchedDB,
	}
	return &AsynqDeadlineScheduler{client: asynq.NewClient(redisOpts)}
}

// ArmExpiry schedules the expiry check at the batch deadline. Enqueueing is
// retried with backoff; a task id conflict means the deadline is already
// armed (e.g. during a restart re-arm scan) and counts as success.
func (s *AsynqDeadlineScheduler) ArmExpiry(ctx context.Context, bookingID string, batchIndex int, at time.Time) error {
	payload, err := json.Marshal(offerExpirePayload{BookingID: bookingID, BatchIndex: batchIndex})
	if err != nil {
		return fmt.Errorf("failed to marshal expiry payload: %w", err)
	}
	task := asynq.NewTask(TypeOfferExpire, payload)
	opts := []asynq.Option{
		asynq.ProcessAt(at),
		asynq.TaskID(fmt.Sprintf("%s:%s:%d", TypeOfferExpire, bookingID, batchIndex)),
		asynq.MaxRetry(5),
	}

	const maxAttempts = 3
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		_, lastErr = s.client.EnqueueContext(ctx, task, opts...)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, asynq.ErrTaskIDConflict) {
			return nil
		}
		time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
	}
	return fmt.Errorf("failed to enqueue expiry task after %d attempts: %w", maxAttempts, lastErr)
}
