package director

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ansarii/autopromo-video/internal/narrative"
)

// fakeOps records legacy page operations and serves canned hashes.
type fakeOps struct {
	hashes      []string
	frames      int
	clicked     bool
	highlighted bool
	scrolls     int
}

func (f *fakeOps) Focus(string)     {}
func (f *fakeOps) Cursor(string)    {}
func (f *fakeOps) Highlight(string) { f.highlighted = true }

func (f *fakeOps) Click(string) error {
	f.clicked = true
	return nil
}

func (f *fakeOps) ScrollBy(int) error {
	f.scrolls++
	return nil
}

func (f *fakeOps) Hash() string {
	if len(f.hashes) == 0 {
		return ""
	}
	h := f.hashes[0]
	f.hashes = f.hashes[1:]
	return h
}

func (f *fakeOps) Frame(string, int) error {
	f.frames++
	return nil
}

func legacyClickShot(duration float64) narrative.TimedShot {
	return narrative.TimedShot{
		ID: 1,
		Shot: narrative.Shot{
			Target:      "hero",
			Duration:    duration,
			CameraMove:  "zoom_to_action",
			Interaction: "click",
		},
	}
}

func TestShotTimeout(t *testing.T) {
	cases := []struct {
		duration float64
		want     time.Duration
	}{
		{1, 16 * time.Second},
		{0, 15 * time.Second},
		{5, 20 * time.Second},
		{21, 36 * time.Second},
	}
	for _, c := range cases {
		if got := ShotTimeout(c.duration); got != c.want {
			t.Errorf("ShotTimeout(%f) = %v, want %v", c.duration, got, c.want)
		}
	}

	// Floor holds for degenerate durations.
	if got := ShotTimeout(-10); got != 10*time.Second {
		t.Errorf("negative duration timeout %v", got)
	}
}

func TestFramePath(t *testing.T) {
	if got := FramePath("/tmp/shot_1", 7); got != "/tmp/shot_1/frame_0007.jpg" {
		t.Errorf("FramePath = %q", got)
	}
	if got := FramePath("/tmp/shot_1", 1234); got != "/tmp/shot_1/frame_1234.jpg" {
		t.Errorf("FramePath = %q", got)
	}
}

func TestRetimeClosesGaps(t *testing.T) {
	// Three planned shots; the middle one was skipped, so the survivors
	// must close ranks on the final timeline.
	shots := []ExecutedShot{
		{TimedShot: narrative.TimedShot{ID: 1, Shot: narrative.Shot{Duration: 3}, StartTime: 0, EndTime: 3}},
		{TimedShot: narrative.TimedShot{ID: 3, Shot: narrative.Shot{Duration: 6}, StartTime: 24, EndTime: 30}},
	}

	Retime(shots, 30)

	if shots[0].StartTime != 0 || shots[0].EndTime != 3 {
		t.Errorf("first shot [%f,%f]", shots[0].StartTime, shots[0].EndTime)
	}
	if shots[1].StartTime != 3 || shots[1].EndTime != 9 {
		t.Errorf("second shot [%f,%f]", shots[1].StartTime, shots[1].EndTime)
	}
	if shots[1].StartFrame != 90 || shots[1].EndFrame != 270 {
		t.Errorf("second shot frames [%d,%d]", shots[1].StartFrame, shots[1].EndFrame)
	}
}

func TestExecuteLegacySkipsDeadClick(t *testing.T) {
	// Identical before/after hashes mean the click changed nothing on
	// screen, so the shot is dropped instead of wasting timeline.
	ops := &fakeOps{hashes: []string{"aaaa", "aaaa"}}
	d := &Director{Log: zerolog.Nop()}

	res, err := d.executeLegacy(context.Background(), ops, legacyClickShot(0.2), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Skipped {
		t.Error("unchanged page should skip the shot")
	}
	if !ops.clicked || !ops.highlighted {
		t.Errorf("click sequence incomplete: clicked=%v highlighted=%v", ops.clicked, ops.highlighted)
	}
}

func TestExecuteLegacyCapturesClickAftermath(t *testing.T) {
	ops := &fakeOps{hashes: []string{"aaaa", "bbbb"}}
	d := &Director{Log: zerolog.Nop()}

	res, err := d.executeLegacy(context.Background(), ops, legacyClickShot(0.2), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped {
		t.Fatal("changed page must keep the shot")
	}
	if res.ChangeScore != 1.0 {
		t.Errorf("change score %f", res.ChangeScore)
	}

	// 0.2s at the legacy rate plus 1.5s of aftermath.
	want := 2 + 15
	if res.FrameCount != want || ops.frames != want {
		t.Errorf("frames = %d (captured %d), want %d", res.FrameCount, ops.frames, want)
	}
}

func TestExecuteLegacyPansWithoutValidation(t *testing.T) {
	ops := &fakeOps{hashes: []string{"aaaa", "aaaa"}}
	d := &Director{Log: zerolog.Nop()}
	shot := narrative.TimedShot{
		ID:   2,
		Shot: narrative.Shot{Target: "content", Duration: 0.3, CameraMove: "slow_pan_down"},
	}

	res, err := d.executeLegacy(context.Background(), ops, shot, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped {
		t.Error("no interaction, nothing to validate")
	}
	if res.FrameCount != 3 || ops.scrolls != 3 {
		t.Errorf("frames=%d scrolls=%d, want 3 each", res.FrameCount, ops.scrolls)
	}
	if ops.clicked {
		t.Error("pan shot must not click")
	}
}

func TestRetimeFramesDerivedFromTime(t *testing.T) {
	shots := []ExecutedShot{
		{TimedShot: narrative.TimedShot{ID: 1, Shot: narrative.Shot{Duration: 1.1}}},
		{TimedShot: narrative.TimedShot{ID: 2, Shot: narrative.Shot{Duration: 1.1}}},
		{TimedShot: narrative.TimedShot{ID: 3, Shot: narrative.Shot{Duration: 1.1}}},
	}

	Retime(shots, 30)

	for i, s := range shots {
		wantStart := int(math.Round(s.StartTime * 30))
		wantEnd := int(math.Round(s.EndTime * 30))
		if s.StartFrame != wantStart || s.EndFrame != wantEnd {
			t.Errorf("shot %d frames [%d,%d], want [%d,%d]", i, s.StartFrame, s.EndFrame, wantStart, wantEnd)
		}
		if i > 0 && shots[i-1].EndFrame != s.StartFrame {
			t.Errorf("shot %d frame gap after %d", i, i-1)
		}
	}
}
