// Package engine implements the outer/inner sweep scheduler: the slot
// lifecycle reconciliation, worker dispatch, and double-buffer overlap
// described by the comparator and scanner packages it coordinates.
package engine

import "fmt"

// Config is the engine's full, immutable configuration, assembled once at
// startup from defaults and command-line flags. Nothing downstream reads
// mutable package-level state; every component that needs configuration
// receives it (or a derived value) through an explicit parameter.
type Config struct {
	// Device is the path to the raw image or block device to scan.
	Device string
	// PatternDir is the directory of pattern files.
	PatternDir string
	// Threads is the fixed number of worker slots.
	Threads int
	// DiskChunk is the streaming read granularity over the image, in bytes.
	// Must be a positive multiple of sector.Size.
	DiskChunk int
	// FileChunk is the streaming read granularity over a pattern file, in
	// bytes. Must be a positive multiple of sector.Size, at least one
	// machine word, and no larger than DiskChunk.
	FileChunk int
	// LogLevel is the starting log verbosity, incremented once per -l flag.
	LogLevel int
}

// sectorSize and minWord duplicate the comparator's Size and wordSize
// constants for the checks in Validate; the comparator's own constants
// remain the single source of truth for the scan.
const (
	sectorSize = 512
	minWord    = 8
)

// Validate enforces the CLI-layer configuration-error preconditions from
// the external interface design: chunk sizes must be positive multiples of
// the sector size, file_chunk must be at least one machine word, and
// file_chunk must not exceed disk_chunk. Violations are configuration
// errors (exit code 1), never geometry errors (exit code 3, which concerns
// the image size, not the flags).
func (c Config) Validate() error {
	if c.Threads <= 0 {
		return fmt.Errorf("threads must be positive, got %d", c.Threads)
	}
	if c.DiskChunk <= 0 || c.DiskChunk%sectorSize != 0 {
		return fmt.Errorf("disk-chunk must be a positive multiple of %d, got %d", sectorSize, c.DiskChunk)
	}
	if c.FileChunk <= 0 || c.FileChunk%sectorSize != 0 {
		return fmt.Errorf("file-chunk must be a positive multiple of %d, got %d", sectorSize, c.FileChunk)
	}
	if c.FileChunk < minWord {
		return fmt.Errorf("file-chunk must be at least %d bytes, got %d", minWord, c.FileChunk)
	}
	if c.FileChunk > c.DiskChunk {
		return fmt.Errorf("file-chunk (%d) must not exceed disk-chunk (%d)", c.FileChunk, c.DiskChunk)
	}
	return nil
}
