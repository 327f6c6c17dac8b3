package assembly

import (
	"math"
	"strings"
	"testing"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestTotalDurationThreeShotsWithFades(t *testing.T) {
	shots := []ShotInput{
		{Dir: "a", Duration: 5},
		{Dir: "b", Duration: 5},
		{Dir: "c", Duration: 5},
	}
	// Two 1s crossfades each consume a second of overlap: 15 - 2 = 13.
	if got := TotalDuration(shots); !approx(got, 13, 1e-9) {
		t.Errorf("TotalDuration = %f, want 13", got)
	}
}

func TestTransitionClampedForShortShots(t *testing.T) {
	if got := TransitionFor(5, 5); !approx(got, 1, 1e-9) {
		t.Errorf("normal transition %f", got)
	}
	// A shot shorter than the transition would be swallowed whole.
	if got := TransitionFor(0.8, 5); got >= 0.8 {
		t.Errorf("transition %f not clamped below 0.8", got)
	}
	if got := TransitionFor(5, 0.5); got >= 0.5 {
		t.Errorf("transition %f not clamped below 0.5", got)
	}
}

func TestBuildGraphChaining(t *testing.T) {
	spec := GraphSpec{
		Shots: []ShotInput{
			{Dir: "a", Duration: 5},
			{Dir: "b", Duration: 5},
			{Dir: "c", Duration: 5},
		},
		Width:  1080,
		Height: 1920,
	}
	g, err := Build(spec)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"[0:v]scale=2160:3840,setsar=1,fps=30,format=yuv420p[t0]",
		"[t0]zoompan=",
		"s=1080x1920",
		"[sz0][sz1]xfade=transition=fade:duration=1:offset=4[sxf1]",
		"[sxf1][sz2]xfade=transition=fade:duration=1:offset=8[sxf2]",
	} {
		if !strings.Contains(g.Filter, want) {
			t.Errorf("graph missing %q\n%s", want, g.Filter)
		}
	}
	if g.VideoLabel != "sxf2" {
		t.Errorf("video label %q", g.VideoLabel)
	}
	if !approx(g.TotalDuration, 13, 1e-9) {
		t.Errorf("total duration %f", g.TotalDuration)
	}
}

func TestBuildGraphUsesPlannedZoompan(t *testing.T) {
	// A shot with a rendered camera path keeps it; the neighbor without
	// one gets the default push.
	planned := "zoompan=z='if(lte(on,0),1,1+(1.4-1)*on/180)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=180:s=1080x1920:fps=30"
	spec := GraphSpec{
		Shots: []ShotInput{
			{Dir: "a", Duration: 6, Zoompan: planned},
			{Dir: "b", Duration: 6},
		},
		Width:  1080,
		Height: 1920,
	}
	g, err := Build(spec)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(g.Filter, "[t0]"+planned+"[sz0]") {
		t.Errorf("planned camera path missing from graph:\n%s", g.Filter)
	}
	if !strings.Contains(g.Filter, "[t1]zoompan=z='min(zoom+0.0005,1.2)'") {
		t.Errorf("plan-less shot should use the default push:\n%s", g.Filter)
	}
}

func TestBuildGraphTempoTransitions(t *testing.T) {
	spec := GraphSpec{
		Shots: []ShotInput{
			{Dir: "a", Duration: 5, Tempo: "fast"},
			{Dir: "b", Duration: 5, Tempo: "steady"},
			{Dir: "c", Duration: 5},
		},
		Width:  1080,
		Height: 1920,
	}
	g, err := Build(spec)
	if err != nil {
		t.Fatal(err)
	}

	// The outgoing shot's tempo picks the style into its successor.
	for _, want := range []string{
		"xfade=transition=fade:duration=1:offset=4",
		"xfade=transition=dissolve:duration=1:offset=8",
	} {
		if !strings.Contains(g.Filter, want) {
			t.Errorf("graph missing %q\n%s", want, g.Filter)
		}
	}
}

func TestBuildGraphOffsetsNeverNegative(t *testing.T) {
	spec := GraphSpec{
		Shots: []ShotInput{
			{Dir: "a", Duration: 0.4},
			{Dir: "b", Duration: 0.4},
		},
		Width:  1920,
		Height: 1080,
	}
	g, err := Build(spec)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(g.Filter, "offset=-") {
		t.Errorf("negative xfade offset in graph: %s", g.Filter)
	}
}

func TestBuildGraphSingleShot(t *testing.T) {
	g, err := Build(GraphSpec{
		Shots:  []ShotInput{{Dir: "a", Duration: 10}},
		Width:  1080,
		Height: 1920,
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(g.Filter, "xfade") {
		t.Error("single shot should not crossfade")
	}
	if g.VideoLabel != "sz0" {
		t.Errorf("video label %q", g.VideoLabel)
	}
	if !approx(g.TotalDuration, 10, 1e-9) {
		t.Errorf("total duration %f", g.TotalDuration)
	}
}

func TestBuildGraphMusicAndLogo(t *testing.T) {
	spec := GraphSpec{
		Shots:  []ShotInput{{Dir: "a", Duration: 5}, {Dir: "b", Duration: 5}},
		Width:  1080,
		Height: 1920,
		Music:  true,
		Overlays: []Overlay{
			{Position: "top-right", Size: 120, Opacity: 0.8},
		},
	}
	g, err := Build(spec)
	if err != nil {
		t.Fatal(err)
	}

	// Input order: shots 0-1, music 2, logo 3.
	for _, want := range []string{
		"[2:a]volume=0.2[aa]",
		"[3:v]scale=120:-1,format=rgba,colorchannelmixer=aa=0.8[ov0]",
		"overlay=x=W-w-40:y=40",
	} {
		if !strings.Contains(g.Filter, want) {
			t.Errorf("graph missing %q\n%s", want, g.Filter)
		}
	}
	if g.AudioLabel != "aa" {
		t.Errorf("audio label %q", g.AudioLabel)
	}
	if g.VideoLabel != "ovd0" {
		t.Errorf("video label %q", g.VideoLabel)
	}
}

func TestBuildGraphTimedOverlay(t *testing.T) {
	spec := GraphSpec{
		Shots:  []ShotInput{{Dir: "a", Duration: 10}},
		Width:  1080,
		Height: 1920,
		Overlays: []Overlay{
			{Position: "bottom-right", Size: 220, Opacity: 0.95, From: 7, Until: 10},
		},
	}
	g, err := Build(spec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(g.Filter, "enable='between(t,7,10)'") {
		t.Errorf("timed overlay missing enable window: %s", g.Filter)
	}
}

func TestBuildGraphEmptyShots(t *testing.T) {
	if _, err := Build(GraphSpec{Width: 1080, Height: 1920}); err == nil {
		t.Error("expected error for empty shot list")
	}
}
