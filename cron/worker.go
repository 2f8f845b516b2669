package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"fundigo/config"
	"fundigo/services/dispatch"

	"github.com/hibiken/asynq"
)

// InitDispatchWorker runs the deadline worker in background. Each fired task
// settles one batch deadline through the dispatch engine.
func InitDispatchWorker(engine dispatch.DispatchService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSchedDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOfferExpire, handleOfferExpire(engine))

	// Start async worker with retry logic
	go func() {
		log.Println("[DispatchWorker] starting deadline worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[DispatchWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[DispatchWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleOfferExpire(engine dispatch.DispatchService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p offerExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[DispatchWorker] invalid payload: %v", err)
			return err
		}

		if err := engine.HandleBatchExpiry(ctx, p.BookingID, p.BatchIndex); err != nil {
			log.Printf("[DispatchWorker] failed to settle deadline for booking %s batch %d: %v",
				p.BookingID, p.BatchIndex, err)
			return err
		}
		return nil
	}
}
