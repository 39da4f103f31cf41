// Package pattern holds per-pattern-file scanning state: the slot state
// machine, the pattern directory source, and the per-slot sector scanner
// and worker task that the engine dispatches against a loaded disk buffer.
package pattern

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sergev/slacksweep/sector"
)

// State is one state in the slot lifecycle. The engine transitions a slot
// between states; a worker only writes score bytes, apart from marking a
// slot dispatched with zero loaded sectors Completed.
type State int

const (
	// Available means the slot holds no pattern file and is ready to be
	// assigned the next filename from the pattern source.
	Available State = iota
	// NeedsData means the slot is waiting for its next pattern-file read.
	NeedsData
	// NeedsCPU means the slot's pattern buffer holds unscored sectors that
	// must be swept against the current disk buffer.
	NeedsCPU
	// Completed means the slot has nothing left to do this run and is
	// waiting to be reaped (reported, then reset to Available).
	Completed
)

func (s State) String() string {
	switch s {
	case Available:
		return "AVAILABLE"
	case NeedsData:
		return "NEEDS_DATA"
	case NeedsCPU:
		return "NEEDS_CPU"
	case Completed:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// Slot is one in-flight pattern file: its file handle, read cursor, loaded
// pattern buffer, and score vector. A slot exclusively owns these fields for
// the duration of its non-Available lifecycle; exactly one worker touches a
// slot's score vector at a time, and only between its dispatch and the
// engine's next full join barrier.
type Slot struct {
	State State

	file     *os.File
	Filename string

	// TotalSectors is the file's byte length divided by sector.Size,
	// truncated; a trailing partial sector is deliberately excluded, it can
	// never be scored (see the design notes on the final partial pattern
	// sector).
	TotalSectors int

	// patternBuf is reused across files: it is sized to FileChunk bytes at
	// construction and never reallocated.
	patternBuf []byte

	// SectorReadCount is the number of whole sector.Size sectors currently
	// valid in patternBuf, starting at offset 0.
	SectorReadCount int

	// CurrentSector is the score-vector index that patternBuf offset 0
	// corresponds to: the sum of SectorReadCount over all prior chunks of
	// this file.
	CurrentSector int

	// Scores holds one bucketed 0..10 score per pattern sector, monotonic
	// non-decreasing over the file's lifetime.
	Scores []byte

	// Scans counts full disk sweeps completed against the current
	// patternBuf contents.
	Scans int
}

// NewSlot allocates a slot with a pattern buffer of the given file chunk
// size. The buffer is allocated once and reused across every file the slot
// is ever assigned.
func NewSlot(fileChunk int) *Slot {
	return &Slot{
		State:      Available,
		patternBuf: make([]byte, fileChunk),
	}
}

// Assign opens filename and initializes the slot to read it, transitioning
// Available -> NeedsData. The caller must only call this on an Available
// slot obtained from the pattern source.
func (s *Slot) Assign(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open pattern file %s: %w", filename, err)
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return fmt.Errorf("seek to end of %s: %w", filename, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return fmt.Errorf("rewind %s: %w", filename, err)
	}

	totalSectors := int(size / sector.Size)

	s.file = f
	s.Filename = filename
	s.TotalSectors = totalSectors
	s.CurrentSector = 0
	s.SectorReadCount = 0
	s.Scans = 0
	s.Scores = make([]byte, totalSectors)
	s.State = NeedsData
	return nil
}

// Fill reads the next chunk of the pattern file into the buffer and
// transitions NeedsData -> NeedsCPU (on a successful whole-sector read) or
// NeedsData -> Completed (on EOF with zero whole sectors read).
func (s *Slot) Fill() error {
	n, err := readFull(s.file, s.patternBuf)
	if err != nil {
		return fmt.Errorf("read pattern file %s: %w", s.Filename, err)
	}

	s.SectorReadCount = n / sector.Size
	s.Scans = 0
	if s.SectorReadCount > 0 {
		s.State = NeedsCPU
	} else {
		s.State = Completed
	}
	return nil
}

// PatternSector returns the i'th loaded pattern sector (0 <= i <
// SectorReadCount) as a slice into the reused pattern buffer.
func (s *Slot) PatternSector(i int) []byte {
	off := i * sector.Size
	return s.patternBuf[off : off+sector.Size]
}

// AllTens reports whether every sector currently in scope has reached the
// maximum score, the early-exit condition that shortcuts further scanning
// of a pattern file already found byte-identical somewhere on disk.
func (s *Slot) AllTens() bool {
	for _, v := range s.Scores {
		if v != sector.MaxScore {
			return false
		}
	}
	return true
}

// AdvanceChunk moves the read cursor forward by the sectors just scored and
// transitions NeedsCPU -> NeedsData for the next pattern-file chunk.
func (s *Slot) AdvanceChunk() {
	s.CurrentSector += s.SectorReadCount
	s.Scans = 0
	s.State = NeedsData
}

// Release closes the slot's file handle and returns it to Available,
// dropping its filename, score vector, and file handle. It is the
// counterpart of Assign and must only be called on a Completed slot, after
// the engine has reported it.
func (s *Slot) Release() error {
	var err error
	if s.file != nil {
		err = s.file.Close()
		s.file = nil
	}
	s.Filename = ""
	s.Scores = nil
	s.TotalSectors = 0
	s.CurrentSector = 0
	s.SectorReadCount = 0
	s.Scans = 0
	s.State = Available
	if err != nil {
		return fmt.Errorf("close pattern file: %w", err)
	}
	return nil
}

// readFull fills buf as far as possible before hitting EOF, returning the
// number of bytes read. Unlike io.ReadFull it treats a short final read as
// success rather than io.ErrUnexpectedEOF; a trailing partial chunk is
// expected behavior for the last chunk of a pattern file.
func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				return total, nil
			}
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
	return total, nil
}
