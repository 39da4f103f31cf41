package engine

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/sergev/slacksweep/image"
	"github.com/sergev/slacksweep/pattern"
	"github.com/sergev/slacksweep/report"
)

// Engine owns the fixed pool of slots, the pattern source, and (once Run
// opens the device) the disk streamer. It drives every slot lifecycle
// transition; workers only write score bytes, apart from marking a slot
// dispatched with zero loaded sectors Completed.
type Engine struct {
	cfg    Config
	slots  []*pattern.Slot
	source *pattern.Source
	logger *report.Logger
	out    io.Writer
}

// New builds an engine ready to run: it opens the pattern directory
// (fatal on failure, per the pattern-source design) and allocates Threads
// slots, each with a pattern buffer of FileChunk bytes.
func New(cfg Config, logger *report.Logger, out io.Writer) (*Engine, error) {
	source, err := pattern.NewSource(cfg.PatternDir)
	if err != nil {
		return nil, fmt.Errorf("open pattern directory %s: %w", cfg.PatternDir, err)
	}

	slots := make([]*pattern.Slot, cfg.Threads)
	for i := range slots {
		slots[i] = pattern.NewSlot(cfg.FileChunk)
	}

	return &Engine{cfg: cfg, slots: slots, source: source, logger: logger, out: out}, nil
}

// Run opens the device and drives the outer/inner sweep until every slot is
// AVAILABLE and the pattern source is exhausted. It returns a wrapped
// image.ErrBadGeometry on a geometry violation, or another wrapped error on
// a device open/read failure or a pattern-file read failure; the caller
// maps these to exit codes.
func (e *Engine) Run() error {
	streamer, err := image.Open(e.cfg.Device, e.cfg.DiskChunk)
	if err != nil {
		return err
	}
	defer streamer.Close()

	diskLoops := streamer.Loops

	for {
		if err := streamer.Rewind(); err != nil {
			return err
		}
		n, err := streamer.FillInitial()
		if err != nil {
			return err
		}

		for n == streamer.ChunkSize {
			e.reap()
			e.assign()
			if err := e.load(); err != nil {
				return err
			}

			disk := streamer.Current()
			dispatched, wg := e.dispatch(disk)

			next, err := streamer.ReadNext()
			if err != nil {
				wg.Wait()
				return err
			}
			streamer.Flip()

			wg.Wait()
			for _, s := range dispatched {
				s.Scans++
			}
			e.settle(dispatched, diskLoops)

			if e.allIdle() && e.source.Done() {
				return nil
			}
			n = next
		}

		if e.allIdle() && e.source.Done() {
			break
		}
	}
	return nil
}

// reap emits a report line for, and releases, every COMPLETED slot.
func (e *Engine) reap() {
	for _, s := range e.slots {
		if s.State != pattern.Completed {
			continue
		}
		if err := report.Emit(e.out, filepath.Base(s.Filename), s.Scores); err != nil {
			e.logger.Logf(0, "write report for %s: %v", s.Filename, err)
		}
		if err := s.Release(); err != nil {
			e.logger.Logf(0, "release slot for %s: %v", s.Filename, err)
		}
	}
}

// assign feeds every AVAILABLE slot the next pattern filename, skipping
// over (and logging) individual open failures without giving up the slot.
func (e *Engine) assign() {
	for _, s := range e.slots {
		if s.State != pattern.Available {
			continue
		}
		for {
			name, ok := e.source.Next()
			if !ok {
				break
			}
			if err := s.Assign(name); err != nil {
				e.logger.Logf(1, "open pattern file %s: %v", name, err)
				continue
			}
			break
		}
	}
}

// load reads the next chunk of every NEEDS_DATA slot's pattern file.
func (e *Engine) load() error {
	for _, s := range e.slots {
		if s.State != pattern.NeedsData {
			continue
		}
		if err := s.Fill(); err != nil {
			return err
		}
	}
	return nil
}

// dispatch launches one worker goroutine per NEEDS_CPU slot against disk
// and returns the dispatched slots plus a WaitGroup the caller must Wait on
// before touching any of their state.
func (e *Engine) dispatch(disk []byte) ([]*pattern.Slot, *sync.WaitGroup) {
	var dispatched []*pattern.Slot
	for _, s := range e.slots {
		if s.State != pattern.NeedsCPU {
			continue
		}
		dispatched = append(dispatched, s)
	}

	var wg sync.WaitGroup
	wg.Add(len(dispatched))
	for _, s := range dispatched {
		go func(s *pattern.Slot) {
			defer wg.Done()
			pattern.RunWorker(s, disk, e.logger)
		}(s)
	}
	return dispatched, &wg
}

// settle applies the post-join early-exit and chunk-advance transitions.
func (e *Engine) settle(dispatched []*pattern.Slot, diskLoops int) {
	for _, s := range dispatched {
		if s.State != pattern.NeedsCPU {
			continue
		}
		if s.AllTens() {
			s.State = pattern.Completed
			continue
		}
		if s.Scans >= diskLoops {
			s.AdvanceChunk()
		}
	}
}

func (e *Engine) allIdle() bool {
	for _, s := range e.slots {
		if s.State != pattern.Available {
			return false
		}
	}
	return true
}
