package scanner

import (
	"strings"
	"testing"

	"github.com/Ansarii/autopromo-video/internal/browser"
)

func sampleScan() *Result {
	return &Result{
		URL: "https://acme.io/product",
		Hero: Hero{
			H1:       "Ship faster with Acme",
			CTA:      &CTARef{Text: "Start free trial", Selector: "#cta"},
			Selector: ".hero",
		},
		Interactions: []Interaction{
			{Text: "try the demo", Selector: "#demo", Intent: "show_demo", Score: 0.8},
			{Text: "pricing", Selector: "#pricing", Intent: "navigate", Score: 0.5},
			{Text: "sign up", Selector: "#signup", Intent: "signup", Score: 0.75},
			{Text: "docs", Selector: "#docs", Intent: "navigate", Score: 0.5},
		},
		Metadata: browser.Metadata{Title: "Acme - Ship faster", Description: "Acme helps teams ship."},
	}
}

func TestBuildStoryboardArc(t *testing.T) {
	shots := BuildStoryboard(sampleScan(), 45)

	if len(shots) != 6 {
		t.Fatalf("expected hook+intro+3 features+cta, got %d shots", len(shots))
	}

	hook := shots[0]
	if hook.Beat != "hook" || hook.Shot.Duration != 3 || hook.Shot.CameraMove != "static" {
		t.Errorf("hook shot %+v", hook)
	}
	if hook.Caption == nil || hook.Caption.Text != "Meet Acme" {
		t.Errorf("hook caption %+v", hook.Caption)
	}

	intro := shots[1]
	if intro.Beat != "intro" || intro.Shot.Duration != 9 || intro.Shot.CameraMove != "slow_pan_down" {
		t.Errorf("intro shot %+v", intro)
	}
	if intro.StartFrame != 30 || intro.EndFrame != 120 {
		t.Errorf("intro frames %d-%d, want 30-120", intro.StartFrame, intro.EndFrame)
	}

	demo := shots[2]
	if demo.Beat != "feature" || demo.Shot.CameraMove != "zoom_to_action" || demo.Shot.Interaction != "click" {
		t.Errorf("demo shot %+v", demo)
	}
	if demo.Shot.Duration != 8 {
		t.Errorf("per-feature duration %f, want 8", demo.Shot.Duration)
	}

	pricing := shots[3]
	if pricing.Beat != "discovery" || pricing.Shot.CameraMove != "slow_pan_down" || pricing.Shot.Interaction != "" {
		t.Errorf("navigate shot %+v", pricing)
	}

	cta := shots[5]
	if cta.Beat != "cta" || cta.Shot.CameraMove != "zoom_to_cta" || cta.Shot.Target != "#cta" {
		t.Errorf("cta shot %+v", cta)
	}
	if cta.Caption == nil || cta.Caption.Text != "Start free trial" {
		t.Errorf("cta caption %+v", cta.Caption)
	}

	// Movement-tag shots carry no shot archetype.
	for i, s := range shots {
		if s.Shot.Type != "" {
			t.Errorf("shot %d has archetype %q", i, s.Shot.Type)
		}
	}

	// Timeline is gap free.
	for i := 1; i < len(shots); i++ {
		if shots[i].StartTime != shots[i-1].EndTime {
			t.Errorf("gap between shots %d and %d", i-1, i)
		}
	}
}

func TestBuildStoryboardNoInteractions(t *testing.T) {
	scan := sampleScan()
	scan.Interactions = nil

	shots := BuildStoryboard(scan, 30)

	if len(shots) != 4 {
		t.Fatalf("expected hook+intro+2 fallback discoveries+cta, got %d", len(shots))
	}
	if shots[2].Beat != "discovery" || shots[3].Shot.Target != "footer" {
		t.Errorf("fallback shots %+v / %+v", shots[2], shots[3])
	}
}

func TestBuildStoryboardMinimumDurations(t *testing.T) {
	scan := sampleScan()
	scan.Interactions = scan.Interactions[:1]

	shots := BuildStoryboard(scan, 15)

	intro := shots[1]
	if intro.Shot.Duration != 7 {
		t.Errorf("short-target intro %f, want clamp to 7", intro.Shot.Duration)
	}
	feature := shots[2]
	if feature.Shot.Duration < 6 {
		t.Errorf("feature below minimum: %f", feature.Shot.Duration)
	}
	cta := shots[len(shots)-1]
	if cta.Shot.Duration < 5 {
		t.Errorf("cta below minimum: %f", cta.Shot.Duration)
	}
}

func TestHookCaptionFallsBackToDomain(t *testing.T) {
	scan := &Result{URL: "https://www.acme.io/x", Metadata: browser.Metadata{Title: "Untitled"}}
	if got := hookCaption(scan); got != "Meet acme" {
		t.Errorf("hookCaption = %q", got)
	}
}

func TestIntroCaptionPrefersShortHeadline(t *testing.T) {
	scan := sampleScan()
	if got := introCaption(scan); got != "Ship faster with Acme" {
		t.Errorf("introCaption = %q", got)
	}

	scan.Hero.H1 = strings.Repeat("long headline ", 10)
	if got := introCaption(scan); got != "Acme helps teams ship" {
		t.Errorf("introCaption fallback = %q", got)
	}
}

func TestFeatureCaptionCleansLabel(t *testing.T) {
	cases := []struct {
		in   Interaction
		want string
	}{
		{Interaction{Text: "click here to explore"}, "To explore"},
		{Interaction{Text: "pricing"}, "Pricing"},
		{Interaction{Text: strings.Repeat("x", 50)}, "X" + strings.Repeat("x", 36) + "..."},
		{Interaction{Text: "click here"}, "Take a closer look"},
	}
	for _, c := range cases {
		if got := featureCaption(c.in); got != c.want {
			t.Errorf("featureCaption(%q) = %q, want %q", c.in.Text, got, c.want)
		}
	}
}

func TestCTACaptionRequiresActionVerb(t *testing.T) {
	if got := ctaCaption(&CTARef{Text: "get started"}); got != "Get started" {
		t.Errorf("ctaCaption = %q", got)
	}
	if got := ctaCaption(&CTARef{Text: "learn more"}); got != "Try it free" {
		t.Errorf("ctaCaption = %q", got)
	}
}
