// Package assembly turns executed shot frame sequences into the final
// encoded video: per-shot normalization, crossfade chaining, overlays and
// the audio mix.
package assembly

import (
	"fmt"
	"math"
	"strings"

	"github.com/Ansarii/autopromo-video/internal/cinema"
	"github.com/Ansarii/autopromo-video/internal/config"
)

// ShotInput is one frame sequence to assemble, in timeline order. Zoompan
// carries the shot's rendered camera path; when empty the graph applies the
// default slow push. Tempo picks the transition style into the next shot.
type ShotInput struct {
	Dir      string
	Duration float64
	Zoompan  string
	Tempo    string
}

// Overlay is an image drawn on top of the video chain.
type Overlay struct {
	Path     string
	Position string // top-left, top-right, bottom-left, bottom-right
	Size     int    // scaled width in px
	Opacity  float64
	From     float64 // enable window start; 0 with Until 0 means always on
	Until    float64
}

// GraphSpec is everything the filter graph builder needs. Input indices are
// assigned in order: shots first, then music, then overlays.
type GraphSpec struct {
	Shots    []ShotInput
	Width    int
	Height   int
	Music    bool
	Overlays []Overlay
	Captions string // pre-built drawtext chain, empty = no burn-in
}

// Graph is the rendered filter graph plus the labels and timing the encoder
// invocation needs.
type Graph struct {
	Filter        string
	VideoLabel    string
	AudioLabel    string
	TotalDuration float64
}

// TransitionFor clamps the standard crossfade below the shorter of the two
// adjacent shots; a transition longer than a shot would consume it entirely.
func TransitionFor(prev, next float64) float64 {
	t := config.TransitionSec
	if m := math.Min(prev, next); t >= m {
		t = m / 2
	}
	return t
}

// TotalDuration computes the assembled length: shot durations minus the
// overlap consumed by each crossfade.
func TotalDuration(shots []ShotInput) float64 {
	if len(shots) == 0 {
		return 0
	}
	total := shots[0].Duration
	for i := 1; i < len(shots); i++ {
		total += shots[i].Duration - TransitionFor(shots[i-1].Duration, shots[i].Duration)
	}
	return total
}

// Build renders the complete filter graph. Per shot: upscale to 2x target,
// normalize SAR and frame rate, then zoompan back down to target size along
// the shot's camera path. Shots chain through xfade with cumulative offsets.
func Build(spec GraphSpec) (Graph, error) {
	if len(spec.Shots) == 0 {
		return Graph{}, fmt.Errorf("no shots to assemble")
	}

	var filters []string

	for i, shot := range spec.Shots {
		filters = append(filters, fmt.Sprintf(
			"[%d:v]scale=%d:%d,setsar=1,fps=%d,format=%s[t%d]",
			i, spec.Width*2, spec.Height*2, config.EncodeFPS, config.PixelFormat, i))

		zoompan := shot.Zoompan
		if zoompan == "" {
			frames := int(math.Floor(shot.Duration * config.EncodeFPS))
			zoompan = fmt.Sprintf(
				"zoompan=z='min(zoom+0.0005,1.2)':d=%d:s=%dx%d:fps=%d:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)'",
				frames, spec.Width, spec.Height, config.EncodeFPS)
		}
		filters = append(filters, fmt.Sprintf("[t%d]%s[sz%d]", i, zoompan, i))
	}

	last := "sz0"
	cumulative := spec.Shots[0].Duration
	for i := 1; i < len(spec.Shots); i++ {
		transition := TransitionFor(spec.Shots[i-1].Duration, spec.Shots[i].Duration)
		offset := cumulative - transition
		if offset < 0 {
			offset = 0
		}
		label := fmt.Sprintf("sxf%d", i)
		filters = append(filters, fmt.Sprintf(
			"[%s][sz%d]xfade=transition=%s:duration=%g:offset=%g[%s]",
			last, i, transitionStyle(spec.Shots[i-1].Tempo), transition, offset, label))
		last = label
		cumulative += spec.Shots[i].Duration - transition
	}

	if spec.Captions != "" {
		filters = append(filters, fmt.Sprintf("[%s]%s[cap]", last, spec.Captions))
		last = "cap"
	}

	overlayBase := len(spec.Shots)
	if spec.Music {
		overlayBase++
	}
	for i, ov := range spec.Overlays {
		in := overlayBase + i
		scaled := fmt.Sprintf("ov%d", i)
		filters = append(filters, fmt.Sprintf(
			"[%d:v]scale=%d:-1,format=rgba,colorchannelmixer=aa=%g[%s]",
			in, ov.Size, ov.Opacity, scaled))

		out := fmt.Sprintf("ovd%d", i)
		overlay := fmt.Sprintf("[%s][%s]overlay=%s", last, scaled, overlayXY(ov.Position))
		if ov.Until > ov.From {
			overlay += fmt.Sprintf(":enable='between(t,%g,%g)'", ov.From, ov.Until)
		}
		filters = append(filters, overlay+"["+out+"]")
		last = out
	}

	audioLabel := ""
	if spec.Music {
		filters = append(filters, fmt.Sprintf("[%d:a]volume=0.2[aa]", len(spec.Shots)))
		audioLabel = "aa"
	}

	return Graph{
		Filter:        strings.Join(filters, ";"),
		VideoLabel:    last,
		AudioLabel:    audioLabel,
		TotalDuration: cumulative,
	}, nil
}

// transitionStyle maps the outgoing shot's narrative tempo to an xfade
// style. Duration stays under the assembly clamp regardless of tempo.
func transitionStyle(tempo string) string {
	if tempo == "" {
		return "fade"
	}
	return cinema.PlanTransition(tempo).Type
}

func overlayXY(position string) string {
	switch position {
	case "top-left":
		return "x=40:y=40"
	case "bottom-left":
		return "x=40:y=H-h-40"
	case "bottom-right":
		return "x=W-w-40:y=H-h-40"
	default: // top-right
		return "x=W-w-40:y=40"
	}
}
