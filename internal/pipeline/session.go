package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog"

	"github.com/Ansarii/autopromo-video/internal/assembly"
	"github.com/Ansarii/autopromo-video/internal/browser"
	"github.com/Ansarii/autopromo-video/internal/captions"
	"github.com/Ansarii/autopromo-video/internal/config"
	"github.com/Ansarii/autopromo-video/internal/director"
	"github.com/Ansarii/autopromo-video/internal/jobs"
	"github.com/Ansarii/autopromo-video/internal/narrative"
	"github.com/Ansarii/autopromo-video/internal/scanner"
	"github.com/Ansarii/autopromo-video/internal/semantic"
)

// rodBrowser opens real Chromium sessions.
type rodBrowser struct {
	cfg      config.Config
	observer semantic.Observer
}

func (b *rodBrowser) Open(job *jobs.Job) (Session, error) {
	br, err := browser.Launch()
	if err != nil {
		return nil, err
	}
	page, err := browser.NewPage(br, job.Request.Format)
	if err != nil {
		br.Close()
		return nil, err
	}
	if job.Request.Credentials != nil {
		browser.Login(page, job.Request.Credentials)
	}
	if err := browser.Navigate(page, job.Request.URL); err != nil {
		br.Close()
		return nil, err
	}
	return &rodSession{cfg: b.cfg, observer: b.observer, browser: br, page: page}, nil
}

type rodSession struct {
	cfg      config.Config
	observer semantic.Observer
	browser  *rod.Browser
	page     *rod.Page
}

func (s *rodSession) Close() {
	s.browser.Close()
}

// Professional runs the narrative-driven capture. Empty shots without an
// error mean the session could not plan anything and the caller should
// degrade to basic mode.
func (s *rodSession) Professional(ctx context.Context, job *jobs.Job, workDir string, progress func(int), log zerolog.Logger) ([]assembly.ShotInput, []captions.Entry, error) {
	board, story := s.storyboard(job, workDir, log)
	progress(40)
	if len(board) == 0 {
		return nil, nil, nil
	}

	d := &director.Director{Log: log}
	executed, err := d.RunStoryboard(ctx, s.page, board, workDir, s.cfg.CaptureBudget)
	if err != nil {
		return nil, nil, fmt.Errorf("storyboard execution: %w", err)
	}
	if len(executed) == 0 {
		log.Warn().Msg("no shots captured, falling back to basic")
		return nil, nil, nil
	}
	progress(50)

	shots, capShots := shotInputs(executed, config.Viewports[job.Request.Format])
	return shots, captions.Timeline(capShots, story), nil
}

// storyboard plans the shot list: the narrative plan when the page observes
// cleanly, otherwise the scanner's fixed storytelling arc.
func (s *rodSession) storyboard(job *jobs.Job, workDir string, log zerolog.Logger) ([]narrative.TimedShot, semantic.Narrative) {
	snap, err := s.observer.Observe(s.page, job.Request.URL)
	if err == nil {
		plan := narrative.Plan(snap, float64(job.Request.Duration))
		story := semantic.GenerateNarrative(snap)

		if err := narrative.WritePlan(plan, filepath.Join(workDir, "narrative.yaml")); err != nil {
			log.Warn().Err(err).Msg("plan dump failed")
		}
		board := narrative.Storyboard(plan.Beats, config.EncodeFPS)
		log.Info().
			Int("beats", len(plan.Beats)).
			Int("shots", len(board)).
			Str("hook", story.Hook).
			Msg("storyboard ready")
		return board, story
	}

	log.Warn().Err(err).Msg("semantic observation failed, scanning page structure")
	scan, scanErr := scanner.Scan(s.page, job.Request.URL)
	if scanErr != nil {
		log.Warn().Err(scanErr).Msg("page scan failed, falling back to basic")
		return nil, semantic.Narrative{}
	}
	board := scanner.BuildStoryboard(scan, float64(job.Request.Duration))
	log.Info().Int("shots", len(board)).Msg("scanner storyboard ready")
	// Scanner shots carry their own captions, so the story stays empty.
	return board, semantic.Narrative{}
}

// Basic captures the page as one continuous shot.
func (s *rodSession) Basic(job *jobs.Job, workDir string, log zerolog.Logger) ([]assembly.ShotInput, []captions.Entry, error) {
	basicDir := filepath.Join(workDir, "basic")
	if err := os.MkdirAll(basicDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("basic dir: %w", err)
	}

	res, err := browser.BasicCapture(s.page, job.Request.Duration, basicDir)
	if err != nil {
		return nil, nil, fmt.Errorf("basic capture: %w", err)
	}

	shots := []assembly.ShotInput{{Dir: basicDir, Duration: float64(job.Request.Duration)}}
	entries := captions.Timeline(
		[]captions.ExecutedShot{{Duration: float64(job.Request.Duration)}},
		semantic.Narrative{Hook: res.Metadata.Title, CTA: "Try it now"},
	)
	return shots, entries, nil
}
