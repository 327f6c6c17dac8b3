package narrative

import "github.com/Ansarii/autopromo-video/internal/semantic"

// Beat names used across templates.
const (
	BeatHook     = "hook"
	BeatProblem  = "problem"
	BeatSolution = "solution"
	BeatFeatures = "features"
	BeatPlans    = "plans"
	BeatProof    = "proof"
	BeatCTA      = "cta"
	BeatBenefits = "benefits"
)

// ZoomRange is the zoom factor at the start and end of a shot.
type ZoomRange struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// Shot is a narrative shot descriptor. Targets are semantic keys ("hero",
// "testimonials") or raw CSS selectors, resolved at execution time.
type Shot struct {
	Type         string              `yaml:"type"`
	Target       string              `yaml:"target"`
	Duration     float64             `yaml:"duration"`
	CameraMove   string              `yaml:"cameraMove"`
	Zoom         ZoomRange           `yaml:"zoom"`
	Focus        string              `yaml:"focus,omitempty"`
	Highlight    bool                `yaml:"highlight,omitempty"`
	Interaction  string              `yaml:"interaction,omitempty"` // "click" or "hover"
	Overlay      string              `yaml:"overlay,omitempty"`
	ScrollAmount float64             `yaml:"scrollAmount,omitempty"`
	Feature      *semantic.ValueProp `yaml:"feature,omitempty"`
	CTA          *semantic.CTA       `yaml:"cta,omitempty"`
}

// Caption is timed copy attached to a beat. Times are relative to the beat
// until Storyboard flattens them onto the job timeline.
type Caption struct {
	Text        string  `yaml:"text"`
	Description string  `yaml:"description,omitempty"`
	Author      string  `yaml:"author,omitempty"`
	StartTime   float64 `yaml:"startTime"`
	Duration    float64 `yaml:"duration"`
	Position    string  `yaml:"position"`
	Animation   string  `yaml:"animation"`
	Style       string  `yaml:"style"`
	Callout     bool    `yaml:"callout,omitempty"`
}

// Beat is one narrative phase with its time budget, shots and captions.
// Beats are immutable after the normalization pass in Plan.
type Beat struct {
	Name     string    `yaml:"name"`
	Index    int       `yaml:"index"`
	Duration float64   `yaml:"duration"`
	Tempo    string    `yaml:"tempo"`
	Music    string    `yaml:"music"`
	Shots    []Shot    `yaml:"shots"`
	Captions []Caption `yaml:"captions"`
}

// TimedShot is a storyboard entry: a narrative shot placed on the absolute
// job timeline with frame numbers derived from time, never incremented.
type TimedShot struct {
	ID         int      `yaml:"id"`
	Beat       string   `yaml:"beat"`
	Tempo      string   `yaml:"tempo"`
	Music      string   `yaml:"music"`
	Shot       Shot     `yaml:"shot"`
	StartTime  float64  `yaml:"startTime"`
	EndTime    float64  `yaml:"endTime"`
	StartFrame int      `yaml:"startFrame"`
	EndFrame   int      `yaml:"endFrame"`
	FrameCount int      `yaml:"frameCount"`
	Caption    *Caption `yaml:"caption,omitempty"`
}
