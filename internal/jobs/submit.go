package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ansarii/autopromo-video/internal/config"
)

// ErrRateLimited is returned when a client submits inside its rate window.
var ErrRateLimited = errors.New("rate limited")

// Submit validates a request, applies the per-client rate limit, persists
// the job and queues it. This is the only entry point for new jobs; the
// serving layer in front of it owns transport and auth.
func Submit(ctx context.Context, store Store, clientID string, req config.Request, window time.Duration) (*Job, error) {
	if err := config.ValidateRequest(&req); err != nil {
		return nil, err
	}

	limited, err := store.ClaimRate(ctx, clientID, window)
	if err != nil {
		return nil, fmt.Errorf("rate check: %w", err)
	}
	if limited {
		return nil, ErrRateLimited
	}

	job := NewJob(clientID, req)
	if err := store.SaveJob(ctx, job); err != nil {
		return nil, err
	}
	if err := store.Enqueue(ctx, job.ID); err != nil {
		return nil, err
	}
	return job, nil
}
