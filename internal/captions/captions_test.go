package captions

import (
	"math"
	"strings"
	"testing"

	"github.com/Ansarii/autopromo-video/internal/narrative"
	"github.com/Ansarii/autopromo-video/internal/semantic"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestTimelineShiftsToAbsoluteTime(t *testing.T) {
	shots := []ExecutedShot{
		{StartTime: 0, Duration: 3, Caption: &narrative.Caption{Text: "Hero line", StartTime: 0.5, Duration: 2, Style: "headline", Position: "center"}},
		{StartTime: 3, Duration: 10, Caption: &narrative.Caption{Text: "Feature one", StartTime: 1, Duration: 3.5}},
	}
	story := semantic.Narrative{Hook: "Ship faster", CTA: "Start free"}

	entries := Timeline(shots, story)

	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Text != "Ship faster" || !approx(entries[0].StartTime, 0.5, 1e-9) {
		t.Errorf("hook entry %+v", entries[0])
	}
	if !approx(entries[2].StartTime, 4, 1e-9) {
		t.Errorf("shot caption should land at shot start + offset, got %f", entries[2].StartTime)
	}
	if entries[2].Style != "feature" || entries[2].Position != "lower_third" {
		t.Errorf("defaults not applied: %+v", entries[2])
	}

	// CTA sits 4 seconds from the end of the 13s timeline.
	last := entries[len(entries)-1]
	if last.Text != "Start free" || !approx(last.StartTime, 9, 1e-9) {
		t.Errorf("cta entry %+v", last)
	}
}

func TestTimelineShortVideoCTAClamped(t *testing.T) {
	shots := []ExecutedShot{{StartTime: 0, Duration: 2}}
	entries := Timeline(shots, semantic.Narrative{CTA: "Go"})

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].StartTime != 0 {
		t.Errorf("cta start should clamp to 0, got %f", entries[0].StartTime)
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain text", "plain text"},
		{"100% faster", `100\% faster`},
		{"note: this", `note\\: this`},
		{"line\nbreak", "line break"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Errorf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDrawtextFilter(t *testing.T) {
	e := Entry{Text: "Get started", StartTime: 2, Duration: 3, Style: "cta", Position: "center"}
	f := DrawtextFilter(e, "", "white", "", 1920)

	for _, want := range []string{
		"drawtext=",
		"text='Get started'",
		"fontsize=64",
		"fontcolor=white",
		"enable='between(t,2.00,5.00)'",
		"y=(h-text_h)/2",
	} {
		if !strings.Contains(f, want) {
			t.Errorf("filter missing %q: %s", want, f)
		}
	}
	if strings.Contains(f, "font='") {
		t.Errorf("default weight should not pick a font: %s", f)
	}
}

func TestDrawtextFilterBoldWeight(t *testing.T) {
	e := Entry{Text: "x", Style: "feature"}

	f := DrawtextFilter(e, "", "", "bold", 1920)
	if !strings.Contains(f, `font='Sans\\:style=Bold':`) {
		t.Errorf("bold weight not applied: %s", f)
	}

	// An explicit font file wins over the weight.
	f = DrawtextFilter(e, "/fonts/Inter.ttf", "", "bold", 1920)
	if !strings.Contains(f, "fontfile=/fonts/Inter.ttf:") || strings.Contains(f, "font='") {
		t.Errorf("font file should override weight: %s", f)
	}
}

func TestDrawtextFilterScalesWithHeight(t *testing.T) {
	e := Entry{Text: "x", Style: "headline", Position: "lower_third"}
	f := DrawtextFilter(e, "", "", "", 1080)

	if !strings.Contains(f, "fontsize=40") { // 72 * 1080 / 1920
		t.Errorf("expected scaled font size, got %s", f)
	}
	if !strings.Contains(f, "y=h*0.72") {
		t.Errorf("expected lower third position, got %s", f)
	}
}

func TestFilterChainSkipsEmpty(t *testing.T) {
	entries := []Entry{
		{Text: "a", Style: "feature"},
		{Text: ""},
		{Text: "b", Style: "feature"},
	}
	chain := FilterChain(entries, "", "white", "", 1920)

	if strings.Count(chain, "drawtext=") != 2 {
		t.Errorf("expected 2 drawtext filters, got %s", chain)
	}
}
