// Package director executes a storyboard against a live page: per-shot
// camera work, frame capture, interaction validation and the overall
// capture budget.
package director

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Ansarii/autopromo-video/internal/cinema"
	"github.com/Ansarii/autopromo-video/internal/config"
	"github.com/Ansarii/autopromo-video/internal/narrative"
	"github.com/Ansarii/autopromo-video/internal/system"
)

// ExecutedShot is a storyboard shot that produced frames on disk. Plan is
// nil for movement-tag shots; when set, assembly renders its camera path.
type ExecutedShot struct {
	narrative.TimedShot
	Dir         string
	FrameCount  int
	ChangeScore float64
	Plan        *cinema.ExecutionPlan
}

// Result is the outcome of a single shot execution.
type Result struct {
	FrameCount  int
	ChangeScore float64
	Skipped     bool
}

// Director runs storyboards shot by shot. Shots execute strictly in order;
// only camera movement and frame capture within one shot run concurrently.
type Director struct {
	Log zerolog.Logger
}

// ShotTimeout is the hard per-shot deadline: the shot duration plus slack
// for navigation and screenshot latency, never below 10 seconds.
func ShotTimeout(duration float64) time.Duration {
	secs := math.Max(10, duration+15)
	return time.Duration(secs * float64(time.Second))
}

// FramePath names a captured frame inside a shot directory, zero padded so
// the encoder's image sequence pattern picks it up in order.
func FramePath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%04d.jpg", n))
}

// Retime lays executed shots end to end on the final timeline, recomputing
// frames from time. Skipped shots have already been dropped, so the timeline
// closes the gaps they left.
func Retime(shots []ExecutedShot, fps int) {
	cumulative := 0.0
	for i := range shots {
		shots[i].StartTime = cumulative
		shots[i].EndTime = cumulative + shots[i].Shot.Duration
		shots[i].StartFrame = int(math.Round(shots[i].StartTime * float64(fps)))
		shots[i].EndFrame = int(math.Round(shots[i].EndTime * float64(fps)))
		cumulative = shots[i].EndTime
	}
}

// RunStoryboard executes every shot in order under the capture budget. The
// budget is a hard deadline: when it expires the in-flight shot is cancelled
// and whatever completed so far is returned. An empty result signals the
// caller to fall back to basic capture.
func (d *Director) RunStoryboard(ctx context.Context, page *rod.Page, board []narrative.TimedShot, outputDir string, budget time.Duration) ([]ExecutedShot, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	var executed []ExecutedShot

	for _, shot := range board {
		if ctx.Err() != nil {
			snap := system.Probe()
			d.Log.Warn().
				Int("completed", len(executed)).
				Int("planned", len(board)).
				Float64("memUsedPct", snap.MemUsedPercent).
				Float64("cpuPct", snap.CPUPercent).
				Msg("capture budget exceeded")
			break
		}

		shotDir := filepath.Join(outputDir, fmt.Sprintf("shot_%d", shot.ID))
		if err := os.MkdirAll(shotDir, 0o755); err != nil {
			return nil, fmt.Errorf("shot dir: %w", err)
		}

		d.Log.Info().
			Int("shot", shot.ID).
			Str("type", shot.Shot.Type).
			Str("beat", shot.Beat).
			Float64("duration", shot.Shot.Duration).
			Msg("executing shot")

		var plan *cinema.ExecutionPlan
		if shot.Shot.Type != "" {
			p := cinema.PlanCameraWork(shot.Shot)
			plan = &p
		}

		res := d.ExecuteShot(ctx, page, shot, plan, shotDir)
		if res.Skipped {
			d.Log.Info().Int("shot", shot.ID).Msg("shot skipped")
			os.RemoveAll(shotDir)
			continue
		}

		executed = append(executed, ExecutedShot{
			TimedShot:   shot,
			Dir:         shotDir,
			FrameCount:  res.FrameCount,
			ChangeScore: res.ChangeScore,
			Plan:        plan,
		})
	}

	Retime(executed, config.EncodeFPS)

	d.Log.Info().
		Int("captured", len(executed)).
		Int("planned", len(board)).
		Msg("storyboard done")
	return executed, nil
}

// ExecuteShot runs one shot under its own timeout. Shots with an execution
// plan get professional camera work with concurrent capture; shots with only
// a movement tag take the sequential legacy path with click validation. Any
// failure skips the shot rather than failing the job.
func (d *Director) ExecuteShot(ctx context.Context, page *rod.Page, shot narrative.TimedShot, plan *cinema.ExecutionPlan, shotDir string) Result {
	ctx, cancel := context.WithTimeout(ctx, ShotTimeout(shot.Shot.Duration))
	defer cancel()

	var (
		res Result
		err error
	)
	if plan != nil {
		res, err = d.executeProfessional(ctx, page, *plan, shot, shotDir)
	} else {
		res, err = d.executeLegacy(ctx, &pageOps{page: page}, shot, shotDir)
	}
	if err != nil {
		d.Log.Warn().Err(err).Int("shot", shot.ID).Msg("shot failed")
		return Result{Skipped: true}
	}
	return res
}

func (d *Director) executeProfessional(ctx context.Context, page *rod.Page, plan cinema.ExecutionPlan, shot narrative.TimedShot, shotDir string) (Result, error) {
	g, gctx := errgroup.WithContext(ctx)

	var frames int
	g.Go(func() error {
		return cinema.ExecuteCameraMove(gctx, page, plan)
	})
	g.Go(func() error {
		n, err := d.captureFrames(gctx, page, shot.Shot.Duration, shotDir)
		frames = n
		return err
	})

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Result{FrameCount: frames, ChangeScore: 1.0}, nil
}

// legacyOps is the page surface the sequential path touches, carved out so
// the click-validation flow is testable without a browser.
type legacyOps interface {
	Focus(selector string)
	Cursor(selector string)
	Highlight(selector string)
	Click(selector string) error
	ScrollBy(px int) error
	Hash() string
	Frame(dir string, n int) error
}

// pageOps backs legacyOps with a live rod page.
type pageOps struct {
	page *rod.Page
}

func (o *pageOps) Focus(selector string) { cinema.FocusElement(o.page, selector) }

func (o *pageOps) Cursor(selector string) { cinema.SimulateCursorMove(o.page, selector) }

func (o *pageOps) Highlight(selector string) { cinema.HighlightElement(o.page, selector, false) }

func (o *pageOps) Click(selector string) error {
	el, err := o.page.Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (o *pageOps) ScrollBy(px int) error {
	_, err := o.page.Eval(`(step) => window.scrollBy(0, step)`, px)
	return err
}

func (o *pageOps) Hash() string { return pageHash(o.page) }

func (o *pageOps) Frame(dir string, n int) error { return captureFrame(o.page, dir, n) }

// executeLegacy runs a shot sequentially: move into view, hash the page,
// capture by movement tag, then click and validate. A click that changes
// nothing produces a dead-looking clip, so an unchanged hash skips the shot.
func (d *Director) executeLegacy(ctx context.Context, ops legacyOps, shot narrative.TimedShot, shotDir string) (Result, error) {
	var selector string
	if shot.Shot.Target != "" {
		selector = cinema.ResolveTarget(shot.Shot.Target)
		ops.Focus(selector)
		ops.Cursor(selector)
		if err := wait(ctx, 600*time.Millisecond); err != nil {
			return Result{}, err
		}
	}

	beforeHash := ops.Hash()

	var frames int
	var err error
	switch shot.Shot.CameraMove {
	case "slow_pan_down":
		frames, err = d.capturePanning(ctx, ops, shot.Shot.Duration, shotDir)
	default:
		// zoom_to_action and friends hold still here; magnification
		// happens in the assembly zoompan stage.
		frames, err = d.captureHeld(ctx, ops, shot.Shot.Duration, shotDir)
	}
	if err != nil {
		return Result{}, err
	}

	changeScore := 1.0
	if shot.Shot.Interaction == "click" && selector != "" {
		ops.Highlight(selector)
		if clickErr := ops.Click(selector); clickErr != nil {
			d.Log.Warn().Err(clickErr).Str("selector", selector).Msg("legacy click failed")
		}
		if err := wait(ctx, 1200*time.Millisecond); err != nil {
			return Result{}, err
		}

		if afterHash := ops.Hash(); beforeHash != "" && afterHash == beforeHash {
			return Result{Skipped: true}, nil
		}

		// Capture 1.5s of whatever the click opened.
		for i := 0; i < 15; i++ {
			if err := ops.Frame(shotDir, frames); err != nil {
				return Result{}, fmt.Errorf("aftermath frame %d: %w", frames, err)
			}
			frames++
			if err := wait(ctx, 100*time.Millisecond); err != nil {
				return Result{}, err
			}
		}
	}

	return Result{FrameCount: frames, ChangeScore: changeScore}, nil
}

func (d *Director) captureHeld(ctx context.Context, ops legacyOps, duration float64, shotDir string) (int, error) {
	total := int(math.Round(duration * config.LegacyCaptureFPS))
	for i := 0; i < total; i++ {
		if err := ops.Frame(shotDir, i); err != nil {
			return i, fmt.Errorf("frame %d: %w", i, err)
		}
		if err := wait(ctx, time.Second/config.LegacyCaptureFPS); err != nil {
			return i + 1, err
		}
	}
	return total, nil
}

func (d *Director) capturePanning(ctx context.Context, ops legacyOps, duration float64, shotDir string) (int, error) {
	const scrollStep = 30
	total := int(math.Round(duration * config.LegacyCaptureFPS))
	for i := 0; i < total; i++ {
		if err := ops.Frame(shotDir, i); err != nil {
			return i, fmt.Errorf("frame %d: %w", i, err)
		}
		if err := ops.ScrollBy(scrollStep); err != nil {
			d.Log.Warn().Err(err).Msg("pan scroll failed")
		}
		if err := wait(ctx, time.Second/config.LegacyCaptureFPS); err != nil {
			return i + 1, err
		}
	}
	return total, nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// captureFrames screenshots at the capture rate for the shot duration,
// compensating for screenshot latency to hold the rate steady.
func (d *Director) captureFrames(ctx context.Context, page *rod.Page, duration float64, shotDir string) (int, error) {
	fps := config.CaptureFPS
	total := int(math.Floor(duration * float64(fps)))
	interval := time.Second / time.Duration(fps)

	for i := 0; i < total; i++ {
		start := time.Now()
		if err := captureFrame(page, shotDir, i); err != nil {
			return i, fmt.Errorf("frame %d: %w", i, err)
		}

		remaining := interval - time.Since(start)
		if remaining > 0 {
			if err := wait(ctx, remaining); err != nil {
				return i + 1, err
			}
		} else if ctx.Err() != nil {
			return i + 1, ctx.Err()
		}
	}
	return total, nil
}

func captureFrame(page *rod.Page, dir string, n int) error {
	quality := 80
	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(FramePath(dir, n), data, 0o644)
}

// pageHash fingerprints the current viewport. Whole-image hashing is coarse
// (any pixel delta counts as change) but cheap, and false positives only
// keep a shot that a human would likely keep anyway.
func pageHash(page *rod.Page) string {
	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatJpeg,
	})
	if err != nil {
		return ""
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
