package store

import (
	"math"
	"testing"

	"github.com/san-kum/spinsim/internal/session"
	"github.com/san-kum/spinsim/internal/wedge"
)

func testResult() *session.Result {
	return &session.Result{
		Power:      0.7,
		FinalAngle: 1.234,
		Landed:     wedge.Wedge{Label: "x5", Weight: 15, Payout: 5},
		Drawn:      wedge.Wedge{Label: "lose", Weight: 30},
		Steps:      420,
		Duration:   7.0,
		Completed:  true,
		Trace: []session.Frame{
			{Time: 1.0 / 60.0, OuterAngle: 0.1, OuterVelocity: 20, InnerAngle: 0.01, InnerVelocity: 0.5},
			{Time: 2.0 / 60.0, OuterAngle: 0.4, OuterVelocity: 19.8, InnerAngle: 0.05, InnerVelocity: 1.1},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	runID, err := st.Save("classic", 42, testResult())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.ID != runID {
		t.Errorf("id = %q, want %q", meta.ID, runID)
	}
	if meta.Preset != "classic" || meta.Seed != 42 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Landed != "x5" || meta.Drawn != "lose" {
		t.Errorf("result labels mismatch: %+v", meta)
	}
	if !meta.Completed {
		t.Error("completed flag lost")
	}
}

func TestLoadTrace(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	res := testResult()
	runID, err := st.Save("classic", 1, res)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	frames, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace: %v", err)
	}
	if len(frames) != len(res.Trace) {
		t.Fatalf("frames = %d, want %d", len(frames), len(res.Trace))
	}
	for i := range frames {
		if math.Abs(frames[i].OuterVelocity-res.Trace[i].OuterVelocity) > 1e-6 {
			t.Errorf("frame %d velocity = %v, want %v", i, frames[i].OuterVelocity, res.Trace[i].OuterVelocity)
		}
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := st.Save("classic", 1, testResult()); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save("casino", 2, testResult()); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("runs = %d, want 2", len(runs))
	}
}

func TestListEmptyDir(t *testing.T) {
	st := New(t.TempDir() + "/never-created")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("runs = %d, want 0", len(runs))
	}
}
