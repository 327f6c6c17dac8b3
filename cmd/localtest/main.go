// Command localtest renders a single video synchronously, bypassing the
// queue. Useful for trying the pipeline against a real site.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Ansarii/autopromo-video/internal/config"
	"github.com/Ansarii/autopromo-video/internal/jobs"
	"github.com/Ansarii/autopromo-video/internal/logs"
	"github.com/Ansarii/autopromo-video/internal/pipeline"
	"github.com/Ansarii/autopromo-video/internal/storage"
	"github.com/Ansarii/autopromo-video/internal/system"
)

func main() {
	urlFlag := flag.String("url", "", "site to capture (required)")
	format := flag.String("format", "9:16", "output format: 9:16 or 16:9")
	duration := flag.Int("duration", config.DefaultDuration, "target duration in seconds (5-60)")
	mode := flag.String("mode", "pro_director", "capture mode: basic or pro_director")
	out := flag.String("out", "out", "output directory")
	music := flag.String("music", "", "music track file name inside the music dir")
	qr := flag.Bool("qr", false, "overlay a QR code of the site URL at the end")
	flag.Parse()

	if *urlFlag == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	logs.Setup(logs.FromEnv("localtest"))
	system.InitResourceLimits()

	cfg := config.FromEnv()
	cfg.PublicDir = *out

	req := config.Request{
		URL:      *urlFlag,
		Format:   *format,
		Duration: *duration,
		Options: config.Options{
			Mode:       *mode,
			MusicTrack: *music,
			QROutro:    *qr,
		},
	}
	if err := config.ValidateRequest(&req); err != nil {
		log.Fatal().Err(err).Msg("invalid request")
	}

	job := jobs.NewJob("localtest", req)
	job.MarkProcessing()

	p := pipeline.New(cfg, &storage.LocalStore{Dir: *out, BaseURL: *out})

	started := time.Now()
	err := p.Run(context.Background(), job, func(pct int) {
		job.AdvanceProgress(pct)
		log.Info().Int("progress", job.Progress).Msg("progress")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("generation failed")
	}

	fmt.Printf("done in %s: %s\n", time.Since(started).Round(time.Second), job.VideoURL)
}
