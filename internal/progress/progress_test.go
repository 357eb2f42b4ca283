package progress

import (
	"sync"
	"testing"
)

func TestTracker_UpdateAndSnapshot(t *testing.T) {
	tr := NewTracker()
	tr.Update("searching", 10, "greenhouse", 0)

	snap := tr.Snapshot()
	if snap.Step != "searching" || snap.Percent != 10 || snap.Current != "greenhouse" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Done {
		t.Error("not done yet")
	}
}

func TestTracker_PercentNeverDecreases(t *testing.T) {
	tr := NewTracker()
	tr.Update("enriching", 60, "job a", 3)
	tr.Update("enriching", 40, "job b", 4)

	snap := tr.Snapshot()
	if snap.Percent != 60 {
		t.Errorf("percent = %d, want 60", snap.Percent)
	}
	// Non-percent fields still advance with the latest update.
	if snap.Current != "job b" || snap.Added != 4 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestTracker_PercentClampedTo100(t *testing.T) {
	tr := NewTracker()
	tr.Update("saving", 250, "", 10)

	if got := tr.Snapshot().Percent; got != 100 {
		t.Errorf("percent = %d, want 100", got)
	}
}

func TestTracker_Finish(t *testing.T) {
	tr := NewTracker()
	tr.Update("saving", 80, "", 12)
	tr.Finish()

	snap := tr.Snapshot()
	if !snap.Done || snap.Percent != 100 {
		t.Errorf("snapshot = %+v, want done at 100", snap)
	}
}

func TestTracker_ConcurrentUpdates(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(pct int) {
			defer wg.Done()
			tr.Update("enriching", pct*2, "job", pct)
		}(i)
	}
	wg.Wait()

	if got := tr.Snapshot().Percent; got != 98 {
		t.Errorf("percent = %d, want 98 (highest update)", got)
	}
}
