// Package captions builds the on-video text timeline. The timeline is always
// computed so plans can be inspected and tested; burning it into the output
// is opt-in.
package captions

import (
	"fmt"
	"strings"

	"github.com/Ansarii/autopromo-video/internal/narrative"
	"github.com/Ansarii/autopromo-video/internal/semantic"
)

// Entry is one caption placed on the absolute job timeline.
type Entry struct {
	Text      string
	StartTime float64
	Duration  float64
	Style     string
	Position  string
}

// ExecutedShot is the minimal shot view the caption layer needs: where the
// shot sits on the final timeline and which beat caption rides on it.
type ExecutedShot struct {
	StartTime float64
	Duration  float64
	Caption   *narrative.Caption
}

// Timeline assembles the caption track: the narrative hook up front, each
// shot's beat caption shifted to absolute time, and the CTA pinned near the
// end.
func Timeline(shots []ExecutedShot, story semantic.Narrative) []Entry {
	var entries []Entry

	if story.Hook != "" {
		entries = append(entries, Entry{
			Text:      story.Hook,
			StartTime: 0.5,
			Duration:  2.5,
			Style:     "headline",
			Position:  "center",
		})
	}

	for _, shot := range shots {
		if shot.Caption == nil || shot.Caption.Text == "" {
			continue
		}
		start := shot.Caption.StartTime
		if start == 0 {
			start = 0.5
		}
		duration := shot.Caption.Duration
		if duration == 0 {
			duration = 2.5
		}
		style := shot.Caption.Style
		if style == "" {
			style = "feature"
		}
		position := shot.Caption.Position
		if position == "" {
			position = "lower_third"
		}
		entries = append(entries, Entry{
			Text:      shot.Caption.Text,
			StartTime: shot.StartTime + start,
			Duration:  duration,
			Style:     style,
			Position:  position,
		})
	}

	if story.CTA != "" {
		var total float64
		for _, s := range shots {
			total += s.Duration
		}
		start := total - 4
		if start < 0 {
			start = 0
		}
		entries = append(entries, Entry{
			Text:      story.CTA,
			StartTime: start,
			Duration:  3.5,
			Style:     "cta",
			Position:  "center",
		})
	}

	return entries
}

// Sanitize escapes caption text for use inside a single-quoted drawtext
// argument. Backslashes first, then quotes, colons and percent signs.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	r := strings.NewReplacer(
		`\`, `\\\\`,
		`'`, `\'\''`,
		`:`, `\\:`,
		`%`, `\%`,
		"\r", " ",
		"\n", " ",
	)
	return strings.TrimSpace(r.Replace(text))
}

// style settings for drawtext rendering.
var styleSizes = map[string]int{
	"headline":    72,
	"cta":         64,
	"feature":     48,
	"testimonial": 44,
	"metric":      80,
	"problem":     48,
	"question":    56,
	"benefit":     48,
}

func fontSize(style string, height int) int {
	size, ok := styleSizes[style]
	if !ok {
		size = 48
	}
	// Sizes are tuned for 1920px tall output; scale for other heights.
	return size * height / 1920
}

func yExpr(position string) string {
	switch position {
	case "lower_third":
		return "h*0.72"
	case "top":
		return "h*0.12"
	default: // center
		return "(h-text_h)/2"
	}
}

// DrawtextFilter renders one caption as a drawtext filter, gated by its time
// window. A bold weight selects the bold face through fontconfig unless an
// explicit font file overrides it.
func DrawtextFilter(e Entry, fontFile, color, weight string, height int) string {
	if color == "" {
		color = "white"
	}

	var b strings.Builder
	b.WriteString("drawtext=")
	if fontFile != "" {
		fmt.Fprintf(&b, "fontfile=%s:", fontFile)
	} else if weight == "bold" {
		fmt.Fprintf(&b, "font='%s':", Sanitize("Sans:style=Bold"))
	}
	fmt.Fprintf(&b, "text='%s'", Sanitize(e.Text))
	fmt.Fprintf(&b, ":fontsize=%d:fontcolor=%s", fontSize(e.Style, height), color)
	b.WriteString(":x=(w-text_w)/2:y=" + yExpr(e.Position))
	b.WriteString(":borderw=3:bordercolor=black@0.6")
	fmt.Fprintf(&b, ":enable='between(t,%.2f,%.2f)'", e.StartTime, e.StartTime+e.Duration)
	return b.String()
}

// FilterChain renders the whole timeline as a comma-joined drawtext chain.
func FilterChain(entries []Entry, fontFile, color, weight string, height int) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		parts = append(parts, DrawtextFilter(e, fontFile, color, weight, height))
	}
	return strings.Join(parts, ",")
}
