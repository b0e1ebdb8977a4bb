package chat

import (
	"context"

	"score-ledger/feature/comparison"

	"golang.org/x/time/rate"
)

// RateLimited spaces out marker calls to stay within a chat API quota.
type RateLimited struct {
	next    comparison.FeedbackPort
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a limit of perSecond calls and the given burst.
// A non-positive rate returns next unchanged.
func NewRateLimited(next comparison.FeedbackPort, perSecond float64, burst int) comparison.FeedbackPort {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// AddReaction waits for a token, then forwards the call.
func (r *RateLimited) AddReaction(ctx context.Context, icon, channelID, ts string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.next.AddReaction(ctx, icon, channelID, ts)
}

// RemoveReaction waits for a token, then forwards the call.
func (r *RateLimited) RemoveReaction(ctx context.Context, icon, channelID, ts string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.next.RemoveReaction(ctx, icon, channelID, ts)
}
