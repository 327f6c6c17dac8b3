package cinema

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Ansarii/autopromo-video/internal/narrative"
)

// Camera holds the resolved movement parameters for one shot.
type Camera struct {
	ZoomStart float64
	ZoomEnd   float64
	Movement  string
	Easing    string
	Curve     [4]float64
}

// Framing describes where the subject sits in the frame.
type Framing struct {
	Type        string
	Composition Point
	FocusPoint  string
}

// Target identifies the page element the camera works against.
type Target struct {
	Selector    string
	Highlight   bool
	Overlay     string
	Interaction string
}

// Effects are post treatments derived from the shot type.
type Effects struct {
	MotionBlur float64
	Vignette   float64
	Glow       bool
	ColorGrade string
}

// ExecutionPlan is a narrative shot resolved against the shot library into
// concrete camera work.
type ExecutionPlan struct {
	ShotID   string
	Type     string
	Duration float64
	Camera   Camera
	Framing  Framing
	Target   Target
	Effects  Effects
}

// PlanCameraWork resolves a narrative shot into an execution plan. Missing
// zoom levels fall back to the shot type's library bounds.
func PlanCameraWork(shot narrative.Shot) ExecutionPlan {
	spec, ok := ShotLibrary[shot.Type]
	if !ok {
		spec = ShotLibrary["feature_medium"]
	}
	move, ok := Movements[shot.CameraMove]
	if !ok {
		move = Movements["smooth_push_in"]
	}

	zoomStart := shot.Zoom.Start
	if zoomStart == 0 {
		zoomStart = spec.Zoom.Min
	}
	zoomEnd := shot.Zoom.End
	if zoomEnd == 0 {
		zoomEnd = spec.Zoom.Max
	}

	duration := shot.Duration
	if duration == 0 {
		duration = spec.Duration.Min
	}

	focus := shot.Focus
	if focus == "" {
		focus = "element"
	}

	colorGrade := shot.Overlay
	if colorGrade == "" {
		colorGrade = "none"
	}

	motionBlur := 0.0
	if move.Type == MoveZoom {
		motionBlur = 0.3
	}
	vignette := 0.0
	if shot.Type == "detail_closeup" {
		vignette = 0.2
	}

	return ExecutionPlan{
		ShotID:   "shot_" + uuid.NewString(),
		Type:     shot.Type,
		Duration: duration,
		Camera: Camera{
			ZoomStart: zoomStart,
			ZoomEnd:   zoomEnd,
			Movement:  move.Type,
			Easing:    move.Easing,
			Curve:     move.Curve,
		},
		Framing: Framing{
			Type:        spec.Framing,
			Composition: Composition(shot.Target),
			FocusPoint:  focus,
		},
		Target: Target{
			Selector:    shot.Target,
			Highlight:   shot.Highlight,
			Overlay:     shot.Overlay,
			Interaction: shot.Interaction,
		},
		Effects: Effects{
			MotionBlur: motionBlur,
			Vignette:   vignette,
			ColorGrade: colorGrade,
		},
	}
}

// PathFrame is one sample of the camera path.
type PathFrame struct {
	Frame    int
	Zoom     float64
	X        float64
	Y        float64
	Rotation float64
}

// GenerateCameraPath samples zoom and position for every captured frame,
// easing progress along the movement's bezier curve. Orbit movements add a
// rotation that reaches 15 degrees at the end of the shot.
func GenerateCameraPath(plan ExecutionPlan, fps int) []PathFrame {
	frames := int(math.Floor(plan.Duration * float64(fps)))
	if frames <= 0 {
		return nil
	}

	path := make([]PathFrame, 0, frames)
	for i := 0; i < frames; i++ {
		progress := 0.0
		if frames > 1 {
			progress = float64(i) / float64(frames-1)
		}
		eased := ApplyEasing(progress, plan.Camera.Curve)

		rotation := 0.0
		if plan.Camera.Movement == MoveOrbit {
			rotation = eased * 15
		}

		path = append(path, PathFrame{
			Frame:    i,
			Zoom:     lerp(plan.Camera.ZoomStart, plan.Camera.ZoomEnd, eased),
			X:        plan.Framing.Composition.X,
			Y:        plan.Framing.Composition.Y,
			Rotation: rotation,
		})
	}
	return path
}

// ApplyEasing evaluates the y component of a cubic bezier at parameter t.
// The curve is sampled directly rather than inverted through x; the visual
// difference is negligible at capture frame rates. An all-zero curve means
// linear.
func ApplyEasing(t float64, curve [4]float64) float64 {
	if curve == [4]float64{} {
		return t
	}

	y1, y2 := curve[1], curve[3]
	cy := 3.0 * y1
	by := 3.0*(y2-y1) - cy
	ay := 1.0 - cy - by

	return ((ay*t+by)*t + cy) * t
}

func lerp(start, end, t float64) float64 {
	return start + (end-start)*t
}

// ZoompanFilter renders the camera path as an ffmpeg zoompan filter. Zoom
// interpolates linearly between the first and last path samples; x/y keep
// the crop centered.
func ZoompanFilter(path []PathFrame, width, height int, fps int) string {
	if len(path) == 0 {
		return ""
	}

	first := path[0]
	last := path[len(path)-1]
	frameCount := len(path)

	zoomExpr := fmt.Sprintf("'if(lte(on,0),%g,%g+(%g-%g)*on/%d)'",
		first.Zoom, first.Zoom, last.Zoom, first.Zoom, frameCount)

	return fmt.Sprintf("zoompan=z=%s:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d",
		zoomExpr, frameCount, width, height, fps)
}

// Transition describes the crossfade between two consecutive shots.
type Transition struct {
	Type     string
	Duration float64
	Offset   float64
}

// tempoTransitions keys transition choice on narrative tempo.
var tempoTransitions = map[string]Transition{
	"fast":    {Type: "fade", Duration: 0.3},
	"medium":  {Type: "wipeleft", Duration: 0.5},
	"dynamic": {Type: "fade", Duration: 0.4},
	"steady":  {Type: "dissolve", Duration: 0.6},
	"slow":    {Type: "fade", Duration: 0.8},
}

// PlanTransition picks a transition for the given tempo, defaulting to the
// medium wipe. Offset is a fixed overlap for smooth blending.
func PlanTransition(tempo string) Transition {
	t, ok := tempoTransitions[tempo]
	if !ok {
		t = tempoTransitions["medium"]
	}
	t.Offset = 0.2
	return t
}
