package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ansarii/autopromo-video/internal/logs"
)

// Runner generates the video for one job. It reports progress through the
// callback; the worker persists each update.
type Runner interface {
	Run(ctx context.Context, job *Job, progress func(int)) error
}

// Worker is the queue's single consumer. One worker per process; rendering
// saturates the machine, so there is nothing to gain from parallel jobs.
type Worker struct {
	Store  Store
	Runner Runner
	Log    zerolog.Logger
}

// Run polls the queue until the context is cancelled. Store errors back off
// exponentially up to 30 seconds instead of hot-looping a dead Redis.
func (w *Worker) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		jobID, err := w.Store.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			w.Log.Error().Err(err).Dur("backoff", backoff).Msg("dequeue failed")
			if serr := sleepCtx(ctx, backoff); serr != nil {
				return serr
			}
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			continue
		}
		backoff = time.Second

		if jobID == "" {
			continue
		}
		w.process(ctx, jobID)
	}
}

func (w *Worker) process(ctx context.Context, jobID string) {
	log := logs.ForJob(jobID)

	job, err := w.Store.GetJob(ctx, jobID)
	if err != nil {
		log.Error().Err(err).Msg("dequeued job not loadable")
		return
	}

	job.MarkProcessing()
	job.AdvanceProgress(5)
	if err := w.Store.SaveJob(ctx, job); err != nil {
		log.Error().Err(err).Msg("could not mark job processing")
		return
	}

	log.Info().Str("url", job.Request.URL).Str("mode", job.Request.Options.Mode).Msg("job started")
	started := time.Now()

	progress := func(p int) {
		job.AdvanceProgress(p)
		if err := w.Store.SaveJob(ctx, job); err != nil {
			log.Warn().Err(err).Int("progress", p).Msg("progress save failed")
		}
	}

	if err := w.Runner.Run(ctx, job, progress); err != nil {
		job.MarkFailed(err)
		log.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("job failed")
	} else {
		log.Info().
			Dur("elapsed", time.Since(started)).
			Str("video", job.VideoURL).
			Msg("job completed")
	}

	if err := w.Store.SaveJob(ctx, job); err != nil {
		log.Error().Err(err).Msg("final job save failed")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
