package assembly

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Ansarii/autopromo-video/internal/captions"
	"github.com/Ansarii/autopromo-video/internal/config"
	"github.com/Ansarii/autopromo-video/internal/system"
)

// Request carries everything Assemble needs for one job.
type Request struct {
	Shots      []ShotInput
	Format     string
	Options    config.Options
	URL        string // source site, used for the QR outro
	MusicDir   string
	OutputPath string
	WorkDir    string
	Captions   []captions.Entry
}

// Assembler invokes the external encoder. The encoder binary is probed once
// for hardware acceleration.
type Assembler struct {
	Log     zerolog.Logger
	Encoder string
}

// New probes for the best available H.264 encoder.
func New(log zerolog.Logger) *Assembler {
	return &Assembler{Log: log, Encoder: system.BestH264Encoder()}
}

// Assemble builds the filter graph and runs the encoder. Each shot's frame
// directory feeds in as an image sequence at the capture rate; the graph
// retimes everything to the encode rate.
func (a *Assembler) Assemble(ctx context.Context, req Request) error {
	vp, ok := config.Viewports[req.Format]
	if !ok {
		return fmt.Errorf("unknown format %q", req.Format)
	}

	spec := GraphSpec{
		Shots:  req.Shots,
		Width:  vp.Width,
		Height: vp.Height,
	}

	var args []string
	for _, shot := range req.Shots {
		args = append(args,
			"-framerate", strconv.Itoa(config.InputFPS),
			"-i", filepath.Join(shot.Dir, "frame_%04d.jpg"))
	}

	musicPath := a.musicPath(req)
	if musicPath != "" {
		args = append(args, "-stream_loop", "-1", "-i", musicPath)
		spec.Music = true
	}

	if req.Options.LogoPath != "" {
		if _, err := os.Stat(req.Options.LogoPath); err == nil {
			args = append(args, "-i", req.Options.LogoPath)
			spec.Overlays = append(spec.Overlays, Overlay{
				Path:     req.Options.LogoPath,
				Position: req.Options.LogoPosition,
				Size:     req.Options.LogoSize,
				Opacity:  req.Options.LogoOpacity,
			})
		} else {
			a.Log.Warn().Str("path", req.Options.LogoPath).Msg("logo file missing, skipping overlay")
		}
	}

	total := TotalDuration(req.Shots)

	if req.Options.QROutro && req.URL != "" {
		qrPath := filepath.Join(req.WorkDir, "qr_outro.png")
		if err := WriteQR(req.URL, qrPath); err != nil {
			a.Log.Warn().Err(err).Msg("qr outro generation failed")
		} else {
			args = append(args, "-i", qrPath)
			from := total - 3
			if from < 0 {
				from = 0
			}
			spec.Overlays = append(spec.Overlays, Overlay{
				Path:     qrPath,
				Position: "bottom-right",
				Size:     220,
				Opacity:  0.95,
				From:     from,
				Until:    total,
			})
		}
	}

	if req.Options.BurnCaptions && len(req.Captions) > 0 {
		spec.Captions = captions.FilterChain(req.Captions, "", req.Options.TextColor, req.Options.FontWeight, vp.Height)
	}

	graph, err := Build(spec)
	if err != nil {
		return err
	}

	args = append(args, "-filter_complex", graph.Filter)
	args = append(args, "-map", "["+graph.VideoLabel+"]")
	if graph.AudioLabel != "" {
		args = append(args, "-map", "["+graph.AudioLabel+"]")
	}
	args = append(args,
		"-c:v", a.Encoder,
		"-pix_fmt", config.PixelFormat,
		"-preset", config.Preset,
		"-crf", strconv.Itoa(config.CRF),
		"-movflags", "+faststart",
		"-shortest",
		"-t", fmt.Sprintf("%.3f", graph.TotalDuration),
		"-y", req.OutputPath,
	)

	a.Log.Info().
		Int("shots", len(req.Shots)).
		Float64("duration", graph.TotalDuration).
		Str("encoder", a.Encoder).
		Msg("starting assembly")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		a.Log.Error().Str("output", tail(string(out), 2000)).Msg("encode failed")
		return fmt.Errorf("ffmpeg: %w", err)
	}

	a.Log.Info().Str("path", req.OutputPath).Msg("assembly complete")
	return nil
}

// musicPath resolves the configured track inside the music library, falling
// back to the default track, then to silence.
func (a *Assembler) musicPath(req Request) string {
	if req.MusicDir == "" {
		return ""
	}
	track := req.Options.MusicTrack
	if track == "" {
		track = "professional-inspiring.mp3"
	}
	path := filepath.Join(req.MusicDir, track)
	if _, err := os.Stat(path); err != nil {
		a.Log.Warn().Str("track", track).Msg("music track missing, encoding without audio")
		return ""
	}
	return path
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
