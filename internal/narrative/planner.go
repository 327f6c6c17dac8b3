package narrative

import (
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Ansarii/autopromo-video/internal/semantic"
)

// PlanResult is the complete narrative plan for a job.
type PlanResult struct {
	Structure     []string `yaml:"structure"`
	Beats         []Beat   `yaml:"beats"`
	TotalDuration float64  `yaml:"totalDuration"`
	PageType      string   `yaml:"pageType"`
}

// Plan selects a template by page type, expands each beat into shots and
// captions, then renormalizes all durations so the timeline sums exactly to
// the target. Beats are not mutated after the normalization pass.
func Plan(snap *semantic.Snapshot, targetDuration float64) *PlanResult {
	tmpl := TemplateFor(snap.PageType)

	plan := &PlanResult{
		Structure:     tmpl.Structure,
		TotalDuration: targetDuration,
		PageType:      snap.PageType,
	}

	for i, name := range tmpl.Structure {
		cfg := tmpl.Beats[name]
		plan.Beats = append(plan.Beats, buildBeat(name, cfg, snap, i, targetDuration))
	}

	normalize(plan.Beats, targetDuration)

	log.Info().
		Str("pageType", snap.PageType).
		Int("beats", len(plan.Beats)).
		Float64("target", targetDuration).
		Msg("narrative planned")
	return plan
}

// buildBeat allocates the beat's nominal duration and dispatches to the
// builder for its name. Unknown beat names get the generic scroll tour.
func buildBeat(name string, cfg BeatConfig, snap *semantic.Snapshot, index int, target float64) Beat {
	duration := math.Max(1, math.Round(cfg.Proportion*target))

	beat := Beat{
		Name:     name,
		Index:    index,
		Duration: duration,
		Tempo:    cfg.Tempo,
		Music:    cfg.Music,
	}

	switch name {
	case BeatHook:
		beat.Shots = hookShots(snap, duration)
		beat.Captions = hookCaptions(snap)
	case BeatProblem:
		beat.Shots = problemShots(snap, duration)
		beat.Captions = problemCaptions(snap)
	case BeatSolution, BeatFeatures, BeatPlans:
		beat.Shots = solutionShots(snap, duration)
		beat.Captions = solutionCaptions(snap)
	case BeatProof, "social_proof":
		beat.Shots = proofShots(snap, duration)
		beat.Captions = proofCaptions(snap)
	case BeatCTA:
		beat.Shots = ctaShots(snap, duration)
		beat.Captions = ctaCaptions(snap)
	case BeatBenefits:
		beat.Shots = benefitsShots(snap, duration)
		beat.Captions = benefitsCaptions(snap)
	default:
		beat.Shots = genericShots(duration)
		beat.Captions = genericCaptions()
	}

	return beat
}

func hookShots(snap *semantic.Snapshot, duration float64) []Shot {
	if snap.Hero.Headline != "" {
		return []Shot{{
			Type:       "establishing_wide",
			Target:     "hero",
			Duration:   duration,
			CameraMove: "push_smooth",
			Zoom:       ZoomRange{Start: 0.9, End: 1.1},
			Focus:      "headline",
		}}
	}
	return []Shot{{
		Type:       "establishing_wide",
		Target:     "viewport",
		Duration:   duration,
		CameraMove: "static",
		Zoom:       ZoomRange{Start: 1.0, End: 1.0},
	}}
}

func hookCaptions(snap *semantic.Snapshot) []Caption {
	if snap.Hero.Headline != "" {
		return []Caption{{
			Text:      snap.Hero.Headline,
			StartTime: 0.5,
			Duration:  2.0,
			Position:  "center",
			Animation: "scale_bounce",
			Style:     "headline",
		}}
	}
	return []Caption{{
		Text:      "Take a look around",
		StartTime: 0.5,
		Duration:  2.0,
		Position:  "center",
		Animation: "fade",
		Style:     "headline",
	}}
}

func problemShots(snap *semantic.Snapshot, duration float64) []Shot {
	if len(snap.PainPoints) > 0 {
		n := len(snap.PainPoints)
		if n > 2 {
			n = 2
		}
		shots := make([]Shot, 0, n)
		for i := 0; i < n; i++ {
			shots = append(shots, Shot{
				Type:       "feature_medium",
				Target:     "problem_section",
				Duration:   duration / 2,
				CameraMove: "pan_right",
				Zoom:       ZoomRange{Start: 1.1, End: 1.2},
				Overlay:    "subtle_red_tint",
			})
		}
		return shots
	}
	return []Shot{{
		Type:         "scroll_reveal",
		Target:       "features",
		Duration:     duration,
		CameraMove:   "scroll_smooth",
		ScrollAmount: 0.3,
	}}
}

func problemCaptions(snap *semantic.Snapshot) []Caption {
	if len(snap.PainPoints) > 0 {
		return []Caption{{
			Text:      snap.PainPoints[0].Text,
			StartTime: 1.0,
			Duration:  3.0,
			Position:  "lower_third",
			Animation: "fade_slide_up",
			Style:     "problem",
		}}
	}
	return []Caption{{
		Text:      "Looking for a better solution?",
		StartTime: 1.0,
		Duration:  2.5,
		Position:  "center",
		Animation: "fade_slide_up",
		Style:     "question",
	}}
}

// solutionShots creates one showcase shot per value prop, capped at two.
// Targets are compound CSS selectors guessing at section layout; the
// cinematographer resolves the first that matches.
func solutionShots(snap *semantic.Snapshot, duration float64) []Shot {
	props := snap.ValueProps
	if len(props) > 2 {
		props = props[:2]
	}

	if len(props) == 0 {
		return []Shot{{
			Type:         "scroll_tour",
			Target:       "content",
			Duration:     duration,
			CameraMove:   "scroll_smooth",
			ScrollAmount: 0.5,
		}}
	}

	perFeature := duration / float64(len(props))
	shots := make([]Shot, 0, len(props))
	for i := range props {
		target := fmt.Sprintf("section:nth-of-type(%d), div[class]:nth-of-type(%d), article:nth-of-type(%d)",
			i+2, i+3, i+1)
		prop := props[i]
		shots = append(shots, Shot{
			Type:       "feature_showcase",
			Target:     target,
			Duration:   perFeature,
			CameraMove: "pan_smooth",
			Zoom:       ZoomRange{Start: 1.0, End: 1.2},
			Feature:    &prop,
		})
	}
	return shots
}

func solutionCaptions(snap *semantic.Snapshot) []Caption {
	props := snap.ValueProps
	if len(props) > 3 {
		props = props[:3]
	}

	if len(props) == 0 {
		return []Caption{{
			Text:      "Everything you need, in one place",
			StartTime: 0.5,
			Duration:  3.5,
			Position:  "lower_third",
			Animation: "kinetic_split",
			Style:     "feature",
		}}
	}

	captions := make([]Caption, 0, len(props))
	current := 0.5
	for _, p := range props {
		desc := p.Description
		if len(desc) > 80 {
			desc = desc[:80]
		}
		captions = append(captions, Caption{
			Text:        p.Title,
			Description: desc,
			StartTime:   current,
			Duration:    3.5,
			Position:    "lower_third",
			Animation:   "kinetic_split",
			Style:       "feature",
		})
		current += 4.0
	}
	return captions
}

func proofShots(snap *semantic.Snapshot, duration float64) []Shot {
	var shots []Shot

	if len(snap.SocialProof.Testimonials) > 0 {
		shots = append(shots, Shot{
			Type:       "testimonial_carousel",
			Target:     "testimonials",
			Duration:   duration * 0.6,
			CameraMove: "pan_smooth",
			Zoom:       ZoomRange{Start: 1.1, End: 1.2},
		})
	}
	if len(snap.SocialProof.Metrics) > 0 {
		shots = append(shots, Shot{
			Type:       "metrics_display",
			Target:     "stats",
			Duration:   duration * 0.4,
			CameraMove: "static_focus",
			Zoom:       ZoomRange{Start: 1.3, End: 1.3},
		})
	}
	if len(shots) == 0 {
		shots = append(shots, Shot{
			Type:       "brand_trust",
			Target:     "footer_or_logos",
			Duration:   duration,
			CameraMove: "slow_pan",
			Zoom:       ZoomRange{Start: 1.0, End: 1.1},
		})
	}
	return shots
}

func proofCaptions(snap *semantic.Snapshot) []Caption {
	var captions []Caption

	if len(snap.SocialProof.Testimonials) > 0 {
		t := snap.SocialProof.Testimonials[0]
		captions = append(captions, Caption{
			Text:      `"` + t.Text + `"`,
			Author:    t.Author,
			StartTime: 1.0,
			Duration:  4.0,
			Position:  "center",
			Animation: "fade",
			Style:     "testimonial",
		})
	}
	if len(snap.SocialProof.Metrics) > 0 {
		m := snap.SocialProof.Metrics[0]
		captions = append(captions, Caption{
			Text:        m.Value,
			Description: m.Label,
			StartTime:   5.0,
			Duration:    3.0,
			Position:    "center",
			Animation:   "scale_bounce",
			Style:       "metric",
		})
	}
	if len(captions) == 0 {
		captions = append(captions, Caption{
			Text:      "Trusted by teams everywhere",
			StartTime: 1.0,
			Duration:  3.0,
			Position:  "center",
			Animation: "fade",
			Style:     "testimonial",
		})
	}
	return captions
}

func ctaShots(snap *semantic.Snapshot, duration float64) []Shot {
	if snap.CTAs.Primary != nil {
		cta := *snap.CTAs.Primary
		return []Shot{{
			Type:        "cta_focus",
			Target:      "a, button",
			Duration:    duration,
			CameraMove:  "zoom_dramatic",
			Zoom:        ZoomRange{Start: 1.0, End: 1.4},
			Interaction: "click",
			CTA:         &cta,
		}}
	}
	return []Shot{{
		Type:         "scroll_to_footer",
		Target:       "footer",
		Duration:     duration,
		CameraMove:   "scroll_smooth",
		ScrollAmount: 0.3,
	}}
}

func ctaCaptions(snap *semantic.Snapshot) []Caption {
	if snap.CTAs.Primary != nil {
		return []Caption{{
			Text:      snap.CTAs.Primary.Text,
			StartTime: 1.0,
			Duration:  3.0,
			Position:  "center",
			Animation: "scale_bounce",
			Style:     "cta",
			Callout:   true,
		}}
	}
	return []Caption{{
		Text:      "Get Started Today",
		StartTime: 1.0,
		Duration:  2.5,
		Position:  "center",
		Animation: "fade",
		Style:     "cta",
	}}
}

// benefitsShots mirrors the solution beat with an outcome-oriented tint.
func benefitsShots(snap *semantic.Snapshot, duration float64) []Shot {
	shots := solutionShots(snap, duration)
	for i := range shots {
		shots[i].Overlay = "success_green_tint"
	}
	return shots
}

func benefitsCaptions(snap *semantic.Snapshot) []Caption {
	captions := solutionCaptions(snap)
	for i := range captions {
		captions[i].Style = "benefit"
	}
	return captions
}

func genericShots(duration float64) []Shot {
	return []Shot{{
		Type:         "scroll_tour",
		Target:       "content",
		Duration:     duration,
		CameraMove:   "scroll_smooth",
		ScrollAmount: 0.5,
	}}
}

func genericCaptions() []Caption {
	return []Caption{{
		Text:      "See it for yourself",
		StartTime: 1.0,
		Duration:  2.5,
		Position:  "center",
		Animation: "fade",
		Style:     "feature",
	}}
}

// normalize rescales beat, shot and caption timing by target/sum in a single
// multiplicative pass so the finished timeline equals the requested duration
// and relative timing inside each beat is preserved.
func normalize(beats []Beat, target float64) {
	var total float64
	for i := range beats {
		total += beats[i].Duration
	}
	if total == 0 {
		return
	}

	ratio := target / total
	for i := range beats {
		beats[i].Duration *= ratio
		for j := range beats[i].Shots {
			beats[i].Shots[j].Duration *= ratio
		}
		for j := range beats[i].Captions {
			beats[i].Captions[j].StartTime *= ratio
			beats[i].Captions[j].Duration *= ratio
		}
	}
}

// Storyboard flattens beats into an ordered shot list on the absolute job
// timeline. Frame numbers are always round(time * fps), never incremented,
// so rounding drift cannot accumulate across shots.
func Storyboard(beats []Beat, fps int) []TimedShot {
	var out []TimedShot
	id := 1
	cumulative := 0.0

	for bi := range beats {
		beat := &beats[bi]
		var caption *Caption
		if len(beat.Captions) > 0 {
			caption = &beat.Captions[0]
		}

		for _, shot := range beat.Shots {
			start := cumulative
			end := cumulative + shot.Duration
			startFrame := int(math.Round(start * float64(fps)))
			endFrame := int(math.Round(end * float64(fps)))

			out = append(out, TimedShot{
				ID:         id,
				Beat:       beat.Name,
				Tempo:      beat.Tempo,
				Music:      beat.Music,
				Shot:       shot,
				StartTime:  start,
				EndTime:    end,
				StartFrame: startFrame,
				EndFrame:   endFrame,
				FrameCount: endFrame - startFrame,
				Caption:    caption,
			})
			id++
			cumulative = end
		}
	}
	return out
}

// WritePlan dumps the plan as YAML next to the job's working files, mainly
// for debugging failed narratives.
func WritePlan(plan *PlanResult, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

// ReadPlan loads a previously dumped plan.
func ReadPlan(path string) (*PlanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var plan PlanResult
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return &plan, nil
}
