package models

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// OfficeStats counts office stage results.
type OfficeStats struct {
	Existing int
	New      int
	Errored  int
}

// PoliticianStats counts politician stage results. Questionable counts
// records that produced at least one questionable decision, whatever they
// finally resolved to.
type PoliticianStats struct {
	Exact        int
	Questionable int
	New          int
	Errored      int
}

// RaceStats counts race stage results.
type RaceStats struct {
	Existing int
	New      int
	Errored  int
}

// LinkStats counts race-candidate link results. Skipped links point at a
// politician that was never resolved; Existing links were already present.
type LinkStats struct {
	Inserted int
	Existing int
	Skipped  int
	Errored  int
}

// RunStats is the per-stage summary of one run. Methods are safe for
// concurrent use by politician workers.
type RunStats struct {
	mu sync.Mutex

	RunID       domain.RunID
	SourceID    string
	Offices     OfficeStats
	Politicians PoliticianStats
	Races       RaceStats
	Links       LinkStats
	Truncated   bool
	Duration    time.Duration
}

// NewRunStats returns empty stats for run.
func NewRunStats(run *RunContext) *RunStats {
	return &RunStats{RunID: run.RunID, SourceID: run.Source.ID}
}

func (s *RunStats) AddOffice(inserted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inserted {
		s.Offices.New++
	} else {
		s.Offices.Existing++
	}
}

// AddPolitician counts the decisions produced for one staging record.
func (s *RunStats) AddPolitician(decisions []Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	questionable := false
	for _, d := range decisions {
		switch d.Outcome.(type) {
		case ExactMatch:
			s.Politicians.Exact++
		case NewInsert:
			s.Politicians.New++
		case QuestionableSkipped:
			questionable = true
		}
	}
	if questionable {
		s.Politicians.Questionable++
	}
}

func (s *RunStats) AddRace(inserted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inserted {
		s.Races.New++
	} else {
		s.Races.Existing++
	}
}

func (s *RunStats) AddLink(outcome LinkOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch outcome {
	case LinkInserted:
		s.Links.Inserted++
	case LinkExisting:
		s.Links.Existing++
	case LinkSkipped:
		s.Links.Skipped++
	}
}

// AddError counts a per-record error in stage.
func (s *RunStats) AddError(stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch stage {
	case StageOffices:
		s.Offices.Errored++
	case StagePoliticians:
		s.Politicians.Errored++
	case StageRaces:
		s.Races.Errored++
	case StageLinks:
		s.Links.Errored++
	}
}

// Processed counts records that reached a decision in any stage.
func (s *RunStats) Processed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Offices.Existing + s.Offices.New +
		s.Politicians.Exact + s.Politicians.New +
		s.Races.Existing + s.Races.New +
		s.Links.Inserted + s.Links.Existing + s.Links.Skipped
}

// Skipped counts politicians flagged as questionable.
func (s *RunStats) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Politicians.Questionable
}

// Errored counts per-record errors across stages.
func (s *RunStats) Errored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Offices.Errored + s.Politicians.Errored + s.Races.Errored + s.Links.Errored
}

// Summary renders the human-readable run report.
func (s *RunStats) Summary() string {
	processed, skipped, errored := s.Processed(), s.Skipped(), s.Errored()

	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s) finished in %s\n", s.RunID, s.SourceID, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "  offices:     %d existing, %d new, %d errored\n", s.Offices.Existing, s.Offices.New, s.Offices.Errored)
	fmt.Fprintf(&b, "  politicians: %d exact, %d questionable, %d new, %d errored\n",
		s.Politicians.Exact, s.Politicians.Questionable, s.Politicians.New, s.Politicians.Errored)
	fmt.Fprintf(&b, "  races:       %d existing, %d new, %d errored\n", s.Races.Existing, s.Races.New, s.Races.Errored)
	fmt.Fprintf(&b, "  links:       %d inserted, %d existing, %d skipped, %d errored\n",
		s.Links.Inserted, s.Links.Existing, s.Links.Skipped, s.Links.Errored)
	if s.Truncated {
		b.WriteString("  staging truncated\n")
	}
	fmt.Fprintf(&b, "processed=%d skipped(questionable)=%d errored=%d\n", processed, skipped, errored)
	return b.String()
}
