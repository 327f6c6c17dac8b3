// Package pipeline orchestrates one job end to end: browse, observe, plan,
// shoot, assemble, publish.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/Ansarii/autopromo-video/internal/assembly"
	"github.com/Ansarii/autopromo-video/internal/captions"
	"github.com/Ansarii/autopromo-video/internal/cinema"
	"github.com/Ansarii/autopromo-video/internal/config"
	"github.com/Ansarii/autopromo-video/internal/director"
	"github.com/Ansarii/autopromo-video/internal/jobs"
	"github.com/Ansarii/autopromo-video/internal/logs"
	"github.com/Ansarii/autopromo-video/internal/semantic"
	"github.com/Ansarii/autopromo-video/internal/storage"
)

// Browser opens one capture session per job.
type Browser interface {
	Open(job *jobs.Job) (Session, error)
}

// Session is a live page plus the capture modes that can run against it.
type Session interface {
	Professional(ctx context.Context, job *jobs.Job, workDir string, progress func(int), log zerolog.Logger) ([]assembly.ShotInput, []captions.Entry, error)
	Basic(job *jobs.Job, workDir string, log zerolog.Logger) ([]assembly.ShotInput, []captions.Entry, error)
	Close()
}

// Encoder runs the final assembly.
type Encoder interface {
	Assemble(ctx context.Context, req assembly.Request) error
}

// Pipeline generates videos. It satisfies jobs.Runner.
type Pipeline struct {
	Cfg     config.Config
	Store   storage.Store
	Browser Browser
	Encoder Encoder // nil builds a fresh assembler per job
}

// New wires a pipeline with the production browser session.
func New(cfg config.Config, store storage.Store) *Pipeline {
	return &Pipeline{
		Cfg:     cfg,
		Store:   store,
		Browser: &rodBrowser{cfg: cfg, observer: semantic.PageObserver{}},
	}
}

// Run executes one job. Progress checkpoints are fixed so the caller's view
// of a job advances the same way regardless of page speed.
func (p *Pipeline) Run(ctx context.Context, job *jobs.Job, progress func(int)) error {
	log := logs.ForJob(job.ID)

	workDir := filepath.Join(p.Cfg.DataDir, job.ID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn().Err(err).Msg("work dir cleanup failed")
		}
	}()
	progress(10)

	sess, err := p.Browser.Open(job)
	if err != nil {
		return err
	}
	defer sess.Close()
	progress(15)

	var shots []assembly.ShotInput
	var capEntries []captions.Entry

	if job.Request.Options.Mode == "pro_director" {
		shots, capEntries, err = sess.Professional(ctx, job, workDir, progress, log)
		if err != nil {
			log.Warn().Err(err).Msg("professional capture failed, falling back to basic")
			shots, capEntries = nil, nil
		}
	}

	if len(shots) == 0 {
		// Basic mode, either requested or as the professional fallback.
		log.Info().Msg("running basic capture")
		shots, capEntries, err = sess.Basic(job, workDir, log)
		if err != nil {
			return err
		}
		progress(50)
	}
	progress(80)

	outputPath := filepath.Join(workDir, job.ID+".mp4")
	enc := p.Encoder
	if enc == nil {
		enc = assembly.New(log)
	}
	if err := enc.Assemble(ctx, assembly.Request{
		Shots:      shots,
		Format:     job.Request.Format,
		Options:    job.Request.Options,
		URL:        job.Request.URL,
		MusicDir:   p.Cfg.MusicDir,
		OutputPath: outputPath,
		WorkDir:    workDir,
		Captions:   capEntries,
	}); err != nil {
		return err
	}
	progress(85)

	posterPath := filepath.Join(workDir, job.ID+".jpg")
	posterName := ""
	if err := assembly.PosterFrame(shots[0].Dir, posterPath, 640); err != nil {
		log.Warn().Err(err).Msg("poster frame failed")
	} else {
		posterName = job.ID + ".jpg"
	}
	progress(95)

	videoURL, err := p.Store.Put(ctx, outputPath, job.ID+".mp4")
	if err != nil {
		return fmt.Errorf("publish video: %w", err)
	}
	posterURL := ""
	if posterName != "" {
		posterURL, err = p.Store.Put(ctx, posterPath, posterName)
		if err != nil {
			log.Warn().Err(err).Msg("poster publish failed")
			posterURL = ""
		}
	}

	job.MarkCompleted(videoURL, posterURL)
	progress(100)
	return nil
}

// shotInputs converts executed shots into assembly inputs, rendering each
// planned camera path into the zoompan stage the encoder will apply.
func shotInputs(executed []director.ExecutedShot, vp config.Viewport) ([]assembly.ShotInput, []captions.ExecutedShot) {
	shots := make([]assembly.ShotInput, 0, len(executed))
	capShots := make([]captions.ExecutedShot, 0, len(executed))
	for _, shot := range executed {
		in := assembly.ShotInput{
			Dir:      shot.Dir,
			Duration: shot.Shot.Duration,
			Tempo:    shot.Tempo,
		}
		if shot.Plan != nil {
			path := cinema.GenerateCameraPath(*shot.Plan, config.EncodeFPS)
			in.Zoompan = cinema.ZoompanFilter(path, vp.Width, vp.Height, config.EncodeFPS)
		}
		shots = append(shots, in)
		capShots = append(capShots, captions.ExecutedShot{
			StartTime: shot.StartTime,
			Duration:  shot.Shot.Duration,
			Caption:   shot.Caption,
		})
	}
	return shots, capShots
}
