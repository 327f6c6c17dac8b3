package cinema

import "strings"

// Range is an inclusive float interval.
type Range struct {
	Min float64
	Max float64
}

// ShotSpec describes one entry in the shot library: zoom and duration bounds
// plus the default movement and framing for the shot type.
type ShotSpec struct {
	Description string
	Zoom        Range
	Duration    Range
	Movement    string
	Framing     string
}

// ShotLibrary is the catalog of recognized shot types. Unknown narrative shot
// types fall back to feature_medium.
var ShotLibrary = map[string]ShotSpec{
	"establishing_wide": {
		Description: "Full page view with slow push-in",
		Zoom:        Range{0.8, 1.2},
		Duration:    Range{2, 4},
		Movement:    "smooth_push_in",
		Framing:     "full_viewport",
	},
	"feature_medium": {
		Description: "Focus on specific section",
		Zoom:        Range{1.2, 1.5},
		Duration:    Range{3, 5},
		Movement:    "gentle_pan",
		Framing:     "rule_of_thirds",
	},
	"detail_closeup": {
		Description: "Zoom into specific element",
		Zoom:        Range{1.5, 2.5},
		Duration:    Range{1.5, 3},
		Movement:    "dramatic_zoom",
		Framing:     "center_focus",
	},
	"interaction_pov": {
		Description: "User perspective for interactions",
		Zoom:        Range{1.3, 1.6},
		Duration:    Range{2, 4},
		Movement:    "follow_cursor",
		Framing:     "dynamic",
	},
	"scroll_reveal": {
		Description: "Reveal content through scrolling",
		Zoom:        Range{1.0, 1.1},
		Duration:    Range{3, 6},
		Movement:    "smooth_scroll",
		Framing:     "vertical_flow",
	},
	"orbit_focus": {
		Description: "Circular motion around element",
		Zoom:        Range{1.3, 1.4},
		Duration:    Range{3, 5},
		Movement:    "subtle_orbit",
		Framing:     "center_focus",
	},
}

// Movement kinds executed against the live page.
const (
	MoveZoom   = "zoom"
	MovePan    = "pan"
	MoveScroll = "scroll"
	MoveTrack  = "track"
	MoveOrbit  = "orbit"
	MoveStatic = "static"
)

// Movement pairs a movement kind with its cubic-bezier easing curve
// (x1, y1, x2, y2).
type Movement struct {
	Type   string
	Easing string
	Curve  [4]float64
}

// Movements maps camera-move names from the narrative planner to concrete
// movement definitions. Unknown names fall back to smooth_push_in.
var Movements = map[string]Movement{
	"smooth_push_in": {Type: MoveZoom, Easing: "ease-in-out", Curve: [4]float64{0.4, 0, 0.2, 1}},
	"dramatic_zoom":  {Type: MoveZoom, Easing: "ease-in", Curve: [4]float64{0.4, 0, 1, 1}},
	"gentle_pan":     {Type: MovePan, Easing: "linear", Curve: [4]float64{0, 0, 1, 1}},
	"smooth_scroll":  {Type: MoveScroll, Easing: "ease-out", Curve: [4]float64{0, 0, 0.2, 1}},
	"follow_cursor":  {Type: MoveTrack, Easing: "ease-in-out", Curve: [4]float64{0.4, 0, 0.2, 1}},
	"subtle_orbit":   {Type: MoveOrbit, Easing: "linear", Curve: [4]float64{0, 0, 1, 1}},
	"static_focus":   {Type: MoveStatic, Easing: "none", Curve: [4]float64{0, 0, 0, 0}},
	"static":         {Type: MoveStatic, Easing: "none", Curve: [4]float64{0, 0, 0, 0}},
	"pan_smooth":     {Type: MovePan, Easing: "ease-in-out", Curve: [4]float64{0.4, 0, 0.2, 1}},
	"pan_right":      {Type: MovePan, Easing: "ease-in-out", Curve: [4]float64{0.4, 0, 0.2, 1}},
	"slow_pan":       {Type: MovePan, Easing: "linear", Curve: [4]float64{0, 0, 1, 1}},
	"zoom_dramatic":  {Type: MoveZoom, Easing: "ease-in", Curve: [4]float64{0.4, 0, 1, 1}},
	"scroll_smooth":  {Type: MoveScroll, Easing: "ease-out", Curve: [4]float64{0, 0, 0.2, 1}},
	"push_smooth":    {Type: MoveZoom, Easing: "ease-out", Curve: [4]float64{0, 0, 0.2, 1}},
	"zoom_in":        {Type: MoveZoom, Easing: "ease-in", Curve: [4]float64{0.4, 0, 1, 1}},
	"zoom_out":       {Type: MoveZoom, Easing: "ease-out", Curve: [4]float64{0, 0, 0.2, 1}},
}

// Point is a normalized position inside the frame.
type Point struct {
	X float64
	Y float64
}

// compositions places targets on rule-of-thirds intersections. Keys are
// substring-matched against the shot target.
var compositions = []struct {
	key string
	pos Point
}{
	{"hero", Point{0.5, 0.33}},
	{"headline", Point{0.5, 0.33}},
	{"feature", Point{0.33, 0.5}},
	{"cta", Point{0.5, 0.66}},
	{"testimonial", Point{0.5, 0.5}},
	{"logo", Point{0.5, 0.5}},
	{"metrics", Point{0.66, 0.33}},
}

// Composition returns the rule-of-thirds anchor for a target, defaulting to
// dead center.
func Composition(target string) Point {
	lower := strings.ToLower(target)
	for _, c := range compositions {
		if strings.Contains(lower, c.key) {
			return c.pos
		}
	}
	return Point{0.5, 0.5}
}
