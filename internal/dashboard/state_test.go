package dashboard

import (
	"testing"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/stats"
)

func TestState_SnapshotIsACopy(t *testing.T) {
	st := NewState()
	jobs := []job.Job{{ID: "a"}, {ID: "b"}}
	st.SetJobs(jobs)
	jobs[0].ID = "mutated"

	snap := st.Snapshot()
	if snap.Jobs[0].ID != "a" {
		t.Errorf("state aliased caller slice: %q", snap.Jobs[0].ID)
	}
	snap.Jobs[1].ID = "changed"
	if st.Snapshot().Jobs[1].ID != "b" {
		t.Error("snapshot aliased state slice")
	}

	if _, ok := snap.Job("a"); !ok {
		t.Error("expected job a in snapshot")
	}
	if _, ok := snap.Job("zzz"); ok {
		t.Error("unexpected job zzz")
	}
}

func TestState_Loaded(t *testing.T) {
	st := NewState()
	if st.Snapshot().Loaded(SourceStats) {
		t.Fatal("stats should not be loaded yet")
	}
	st.SetStats(&stats.DashboardStats{TotalCreators: 3})

	snap := st.Snapshot()
	if !snap.Loaded(SourceStats) {
		t.Error("expected stats loaded")
	}
	if snap.Loaded(SourceJobs) {
		t.Error("jobs were never set")
	}
}

func TestState_Reset(t *testing.T) {
	st := NewState()
	st.SetJobs([]job.Job{{ID: "a"}})
	st.SetStats(&stats.DashboardStats{TotalCreators: 3})

	st.Reset()

	snap := st.Snapshot()
	if len(snap.Jobs) != 0 || snap.Stats != nil || len(snap.UpdatedAt) != 0 {
		t.Errorf("expected empty state after reset, got %+v", snap)
	}
}
