package narrative

import "github.com/Ansarii/autopromo-video/internal/semantic"

// BeatConfig is the per-beat slice of a template: its share of the target
// duration plus pacing hints consumed by the music and caption layers.
type BeatConfig struct {
	Proportion float64
	Tempo      string
	Music      string
}

// Template orders beats for one page type. Proportions are nominal; the
// planner renormalizes after beat generation, so they need not sum to 1.
type Template struct {
	Structure []string
	Beats     map[string]BeatConfig
}

// Templates keys narrative structure by page type. Unmatched page types fall
// back to the saas_landing template.
var Templates = map[string]Template{
	semantic.PageSaaSLanding: {
		Structure: []string{BeatHook, BeatSolution, BeatCTA},
		Beats: map[string]BeatConfig{
			BeatHook:     {Proportion: 0.10, Tempo: "fast", Music: "intense_build"},
			BeatSolution: {Proportion: 0.70, Tempo: "dynamic", Music: "uplifting"},
			BeatCTA:      {Proportion: 0.20, Tempo: "medium", Music: "resolution"},
		},
	},
	semantic.PageProduct: {
		Structure: []string{BeatHook, BeatFeatures, BeatCTA},
		Beats: map[string]BeatConfig{
			BeatHook:     {Proportion: 0.10, Tempo: "fast", Music: "intense_build"},
			BeatFeatures: {Proportion: 0.70, Tempo: "dynamic", Music: "uplifting"},
			BeatCTA:      {Proportion: 0.20, Tempo: "medium", Music: "resolution"},
		},
	},
	semantic.PagePricing: {
		Structure: []string{BeatHook, BeatPlans, BeatCTA},
		Beats: map[string]BeatConfig{
			BeatHook:  {Proportion: 0.10, Tempo: "fast", Music: "intense_build"},
			BeatPlans: {Proportion: 0.67, Tempo: "dynamic", Music: "uplifting"},
			BeatCTA:   {Proportion: 0.23, Tempo: "medium", Music: "resolution"},
		},
	},
}

// TemplateFor returns the template for a page type, defaulting to the
// generic landing-page structure.
func TemplateFor(pageType string) Template {
	if t, ok := Templates[pageType]; ok {
		return t
	}
	return Templates[semantic.PageSaaSLanding]
}
