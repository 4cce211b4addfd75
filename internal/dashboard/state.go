// Package dashboard keeps the polled view state fresh and dispatches the
// console's mutating actions.
package dashboard

import (
	"sync"
	"time"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/rescrape"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/stats"
)

// Source names, also used as keys of Snapshot.UpdatedAt.
const (
	SourceJobs          = "jobs"
	SourceStats         = "stats"
	SourceRescrapeStats = "rescrape-stats"
	SourceDueCreators   = "due-creators"
	SourceCorrupted     = "corrupted-creators"
)

// State is the last successfully fetched value of every source. Readers
// take a Snapshot; sources write their own slice only.
type State struct {
	mu        sync.RWMutex
	jobs      []job.Job
	stats     *stats.DashboardStats
	rescrape  *rescrape.Stats
	due       *rescrape.DueCreators
	corrupted *rescrape.CorruptedCreators
	updated   map[string]time.Time
	now       func() time.Time
}

func NewState() *State {
	return &State{updated: make(map[string]time.Time), now: time.Now}
}

type Snapshot struct {
	Jobs      []job.Job
	Stats     *stats.DashboardStats
	Rescrape  *rescrape.Stats
	Due       *rescrape.DueCreators
	Corrupted *rescrape.CorruptedCreators
	UpdatedAt map[string]time.Time
}

// Job finds a job in the snapshot by id.
func (s Snapshot) Job(id string) (job.Job, bool) {
	for _, j := range s.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return job.Job{}, false
}

// Loaded reports whether the source has been fetched at least once.
func (s Snapshot) Loaded(source string) bool {
	_, ok := s.UpdatedAt[source]
	return ok
}

func (s *State) SetJobs(jobs []job.Job) {
	cp := append([]job.Job(nil), jobs...)
	s.mu.Lock()
	s.jobs = cp
	s.touch(SourceJobs)
	s.mu.Unlock()
}

func (s *State) SetStats(v *stats.DashboardStats) {
	s.mu.Lock()
	s.stats = v
	s.touch(SourceStats)
	s.mu.Unlock()
}

func (s *State) SetRescrapeStats(v *rescrape.Stats) {
	s.mu.Lock()
	s.rescrape = v
	s.touch(SourceRescrapeStats)
	s.mu.Unlock()
}

func (s *State) SetDueCreators(v *rescrape.DueCreators) {
	s.mu.Lock()
	s.due = v
	s.touch(SourceDueCreators)
	s.mu.Unlock()
}

func (s *State) SetCorrupted(v *rescrape.CorruptedCreators) {
	s.mu.Lock()
	s.corrupted = v
	s.touch(SourceCorrupted)
	s.mu.Unlock()
}

// touch must be called with mu held.
func (s *State) touch(source string) {
	s.updated[source] = s.now()
}

// Snapshot copies the state. Pointed-to values are shared and must be
// treated as read-only; setters always replace them.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	updated := make(map[string]time.Time, len(s.updated))
	for k, v := range s.updated {
		updated[k] = v
	}
	return Snapshot{
		Jobs:      append([]job.Job(nil), s.jobs...),
		Stats:     s.stats,
		Rescrape:  s.rescrape,
		Due:       s.due,
		Corrupted: s.corrupted,
		UpdatedAt: updated,
	}
}

// Reset drops everything, as on logout.
func (s *State) Reset() {
	s.mu.Lock()
	s.jobs = nil
	s.stats = nil
	s.rescrape = nil
	s.due = nil
	s.corrupted = nil
	s.updated = make(map[string]time.Time)
	s.mu.Unlock()
}
