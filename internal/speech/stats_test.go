package speech

import (
	"testing"
	"time"
)

func TestSynthStats_EmptySnapshot(t *testing.T) {
	s := NewSynthStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 {
		t.Errorf("expected empty snapshot, got count %d", snap.Count)
	}
}

func TestSynthStats_RecordAndSnapshot(t *testing.T) {
	s := NewSynthStats(time.Hour)
	s.Record(100, 1000)
	s.Record(200, 2000)
	s.Record(300, 3000)

	snap := s.Snapshot()
	if snap.Count != 3 {
		t.Fatalf("expected 3 samples, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 300 {
		t.Errorf("expected min 100 max 300, got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 200 {
		t.Errorf("expected avg 200, got %f", snap.AvgMs)
	}
	if snap.TotalBytes != 6000 {
		t.Errorf("expected 6000 total bytes, got %d", snap.TotalBytes)
	}
	if snap.P50Ms != 200 {
		t.Errorf("expected p50 200, got %f", snap.P50Ms)
	}
}

func TestSynthStats_NegativeDurationClamped(t *testing.T) {
	s := NewSynthStats(time.Hour)
	s.Record(-50, 10)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("expected clamped duration 0, got %d", snap.MinMs)
	}
}
