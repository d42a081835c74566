package pipeline

import "testing"

func TestPlanSegments_ContiguousAndNonOverlapping(t *testing.T) {
	segs := planSegments(100, 30, []float64{10, 29, 31, 58, 62, 90})
	if len(segs) == 0 {
		t.Fatalf("expected at least one segment")
	}
	if segs[0].start != 0 {
		t.Fatalf("first segment must start at 0, got %v", segs[0].start)
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].start != segs[i-1].end {
			t.Fatalf("segment %d does not start where %d ended: %v vs %v", i, i-1, segs[i].start, segs[i-1].end)
		}
	}
	last := segs[len(segs)-1]
	if last.end != 100 {
		t.Fatalf("last segment must end at total duration, got %v", last.end)
	}
}

func TestPlanSegments_PrefersSilenceMidpointOverForcedCut(t *testing.T) {
	// A midpoint at 28s falls inside [0, 30]; the planner should cut there
	// instead of forcing a cut at the full 30s target.
	segs := planSegments(60, 30, []float64{28})
	if len(segs) < 1 {
		t.Fatalf("expected at least one segment")
	}
	if segs[0].end != 28 {
		t.Fatalf("expected first cut at silence midpoint 28, got %v", segs[0].end)
	}
}

func TestPlanSegments_NoMidpointsForcesCutAtTarget(t *testing.T) {
	segs := planSegments(65, 30, nil)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments of ~30s each, got %d: %v", len(segs), segs)
	}
	if segs[0].end != 30 || segs[1].end != 60 || segs[2].end != 65 {
		t.Fatalf("unexpected segment boundaries: %v", segs)
	}
}

func TestPlanSegments_ShortFileProducesSingleSegment(t *testing.T) {
	segs := planSegments(10, 30, nil)
	if len(segs) != 1 {
		t.Fatalf("expected a single segment, got %d", len(segs))
	}
	if segs[0].start != 0 || segs[0].end != 10 {
		t.Fatalf("unexpected segment: %v", segs[0])
	}
}
