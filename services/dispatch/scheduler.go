package dispatch

import (
	"context"
	"time"
)

// DeadlineScheduler arms a deferred expiry check for one offer batch. The
// implementation (asynq in production) must fire HandleBatchExpiry at or
// after the deadline; firing after the batch is already resolved is safe
// because expiry is a no-op on settled state. ArmExpiry failing is a
// retryable infrastructure fault: the caller rolls back batch creation so no
// batch ever exists without an armed deadline.
type DeadlineScheduler interface {
	ArmExpiry(ctx context.Context, bookingID string, batchIndex int, at time.Time) error
}
