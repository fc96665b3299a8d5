package engine

import (
	"context"

	"golang.org/x/time/rate"
)

// NewBWLimiter creates a rate.Limiter that caps aggregate throughput to
// bytesPerSec. The burst is 1 MiB, one native chunk.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// Throttle wraps next so each progress call blocks until limiter admits the
// bytes transferred since the previous call. A done ctx cancels the
// transfer. next may be nil.
func Throttle(ctx context.Context, limiter *rate.Limiter, next ProgressFunc) ProgressFunc {
	var last int64
	return func(
		total, transferred, streamSize, streamTransferred int64,
		streamNumber int, reason CallbackReason, userCtx any,
	) Disposition {
		if reason == StreamSwitch || transferred < last {
			last = transferred
		}
		delta := transferred - last
		last = transferred
		for delta > 0 {
			n := min(delta, int64(limiter.Burst()))
			if n <= 0 {
				break
			}
			if err := limiter.WaitN(ctx, int(n)); err != nil {
				return Cancel
			}
			delta -= n
		}
		if ctx.Err() != nil {
			return Cancel
		}
		if next == nil {
			return Continue
		}
		return next(total, transferred, streamSize, streamTransferred, streamNumber, reason, userCtx)
	}
}
