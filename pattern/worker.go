package pattern

import "fmt"

// Logger is the minimal logging surface a worker needs; report.Logger
// implements it.
type Logger interface {
	Logf(importance int, format string, args ...any)
}

// RunWorker sweeps every currently-loaded pattern sector of s against disk,
// updating s's score vector. The slot must be in state NeedsCPU; the caller
// (the engine) owns the join barrier that guarantees no two workers touch
// the same slot concurrently and that no coordinator read of Scores
// overlaps a worker's writes.
//
// RunWorker does not modify any Slot field other than the Scores bytes in
// its range, except that a slot dispatched with zero loaded sectors is
// logged and set to Completed; otherwise the engine decides the next state
// once every dispatched worker has returned.
func RunWorker(s *Slot, disk []byte, log Logger) {
	if s.SectorReadCount == 0 {
		log.Logf(0, "worker dispatched on slot %s with zero loaded sectors", s.Filename)
		s.State = Completed
		return
	}

	for i := 0; i < s.SectorReadCount; i++ {
		at := s.CurrentSector + i
		ScanSector(disk, s.PatternSector(i), &s.Scores[at])
	}
}

// String is a small debugging aid that summarizes the slot's state.
func (s *Slot) String() string {
	return fmt.Sprintf("slot{file=%q state=%s cur=%d read=%d scans=%d}",
		s.Filename, s.State, s.CurrentSector, s.SectorReadCount, s.Scans)
}
