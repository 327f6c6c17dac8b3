package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Viewport holds pixel dimensions for an output format.
type Viewport struct {
	Width  int
	Height int
}

// Viewports maps the two supported output formats to capture/encode sizes.
var Viewports = map[string]Viewport{
	"9:16": {Width: 1080, Height: 1920},
	"16:9": {Width: 1920, Height: 1080},
}

// Encode settings are fixed for reproducible output. They are constants of
// the product, not derived values.
const (
	EncodeFPS        = 30
	CaptureFPS       = 8  // professional shot capture rate
	LegacyCaptureFPS = 10 // legacy storyboard capture rate
	InputFPS         = 8  // frame-sequence input rate fed to the encoder
	PixelFormat      = "yuv420p"
	Preset           = "fast"
	CRF              = 23
	TransitionSec    = 1.0
	MinDurationSec   = 5
	MaxDurationSec   = 60
	DefaultDuration  = 15
)

// Options is the typed per-job option set. Free-form option bags from the
// intake layer are folded into this once and validated up front.
type Options struct {
	Mode         string  `json:"mode"` // "basic" or "pro_director"
	MusicTrack   string  `json:"musicTrack,omitempty"`
	FontWeight   string  `json:"fontWeight,omitempty"`
	TextColor    string  `json:"textColor,omitempty"`
	LogoPath     string  `json:"logoPath,omitempty"`
	LogoPosition string  `json:"logoPosition,omitempty"` // top-left, top-right, bottom-left, bottom-right
	LogoSize     int     `json:"logoSize,omitempty"`     // width in px
	LogoOpacity  float64 `json:"logoOpacity,omitempty"`
	QROutro      bool    `json:"qrOutro,omitempty"` // overlay a QR code of the site URL at the end
	BurnCaptions bool    `json:"burnCaptions,omitempty"`
}

// ApplyDefaults fills unset option fields in place.
func (o *Options) ApplyDefaults() {
	if o.Mode == "" {
		o.Mode = "basic"
	}
	if o.LogoPath != "" {
		if o.LogoPosition == "" {
			o.LogoPosition = "top-right"
		}
		if o.LogoSize <= 0 {
			o.LogoSize = 120
		}
		if o.LogoOpacity <= 0 || o.LogoOpacity > 1 {
			o.LogoOpacity = 0.8
		}
	}
}

// Credentials are write-only login details for gated pages.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	LoginURL string `json:"loginUrl,omitempty"`
}

// Request is a validated job submission.
type Request struct {
	URL         string       `json:"url"`
	Format      string       `json:"format"`
	Duration    int          `json:"duration"`
	Options     Options      `json:"options"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

// ValidateRequest rejects malformed submissions before a job is created.
func ValidateRequest(r *Request) error {
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid URL: %q", r.URL)
	}
	if _, ok := Viewports[r.Format]; !ok {
		return fmt.Errorf("format must be 9:16 or 16:9, got %q", r.Format)
	}
	if r.Duration == 0 {
		r.Duration = DefaultDuration
	}
	if r.Duration < MinDurationSec || r.Duration > MaxDurationSec {
		return fmt.Errorf("duration must be between %d and %d seconds, got %d", MinDurationSec, MaxDurationSec, r.Duration)
	}
	if r.Options.Mode != "" && r.Options.Mode != "basic" && r.Options.Mode != "pro_director" {
		return fmt.Errorf("mode must be basic or pro_director, got %q", r.Options.Mode)
	}
	switch r.Options.FontWeight {
	case "", "normal", "bold":
	default:
		return fmt.Errorf("fontWeight must be normal or bold, got %q", r.Options.FontWeight)
	}
	r.Options.ApplyDefaults()
	return nil
}

// Config is the process-level configuration, read from environment.
type Config struct {
	RedisAddr     string
	RedisPassword string
	DataDir       string        // temp working dirs per job
	PublicDir     string        // local video delivery dir
	MusicDir      string        // background track library
	StorageURL    string        // bucket base URL; "" = local passthrough
	StorageKey    string        // bearer key for bucket uploads
	StorageBucket string
	RateWindow    time.Duration // one job per client per window
	CaptureBudget time.Duration // hard per-job capture deadline
	QueueKey      string
	PollTimeout   time.Duration
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// FromEnv reads process configuration with local-dev defaults.
func FromEnv() Config {
	return Config{
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DataDir:       getenv("DATA_DIR", "/tmp/autopromo"),
		PublicDir:     getenv("PUBLIC_DIR", "public/videos"),
		MusicDir:      getenv("MUSIC_DIR", "public/music"),
		StorageURL:    os.Getenv("STORAGE_URL"),
		StorageKey:    os.Getenv("STORAGE_KEY"),
		StorageBucket: getenv("STORAGE_BUCKET", "videos"),
		RateWindow:    time.Duration(mustInt("RATE_LIMIT_HOURS", 1)) * time.Hour,
		CaptureBudget: time.Duration(mustInt("CAPTURE_BUDGET_SEC", 90)) * time.Second,
		QueueKey:      getenv("QUEUE_KEY", "queue:jobs"),
		PollTimeout:   time.Duration(mustInt("QUEUE_POLL_SEC", 5)) * time.Second,
	}
}
