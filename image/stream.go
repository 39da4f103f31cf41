// Package image implements the double-buffered streaming reader over the
// raw disk image: opening it read-only, validating its size against the
// configured chunk size, and advancing a cursor per iteration of the outer
// disk sweep.
package image

import (
	"fmt"
	"io"
	"os"
)

// Streamer owns the read-only image file descriptor and a ping-pong pair of
// equally-sized buffers. Exactly one buffer is "current" (scanned by
// workers) and the other is "next" (the target of the overlapping read);
// the engine is the only actor that flips which is which.
type Streamer struct {
	file *os.File

	// ChunkSize is the streaming read granularity; it may have been lowered
	// from the configured value if the image is smaller than requested.
	ChunkSize int
	// Loops is the number of ChunkSize-sized reads that make up one full
	// pass over the image.
	Loops int

	buffers [2][]byte
	which   int
}

// Open opens path read-only, determines its size by seeking to the end, and
// validates it against chunkSize per the rules in the design: if the image
// is smaller than chunkSize, the chunk size is lowered to the image size and
// Loops is 1; otherwise the image size must be an exact multiple of
// chunkSize, or Open returns an error the caller should treat as a fatal
// geometry error.
func Open(path string, chunkSize int) (*Streamer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", path, err)
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("seek to end of %s: %w", path, err)
	}

	if size == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: image %s is empty", ErrBadGeometry, path)
	}

	var loops int
	switch {
	case size < int64(chunkSize):
		chunkSize = int(size)
		loops = 1
	case size%int64(chunkSize) != 0:
		f.Close()
		return nil, fmt.Errorf("%w: image size %d is not a multiple of disk chunk size %d", ErrBadGeometry, size, chunkSize)
	default:
		loops = int(size / int64(chunkSize))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}

	return &Streamer{
		file:      f,
		ChunkSize: chunkSize,
		Loops:     loops,
		buffers:   [2][]byte{make([]byte, chunkSize), make([]byte, chunkSize)},
	}, nil
}

// ErrBadGeometry is returned by Open when the image is empty or its size is
// not an exact multiple of the configured disk chunk size.
var ErrBadGeometry = fmt.Errorf("image size not a multiple of disk chunk size")

// Rewind seeks the image back to its start, beginning a new outer sweep.
func (s *Streamer) Rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind device: %w", err)
	}
	return nil
}

// Close releases the underlying file descriptor.
func (s *Streamer) Close() error {
	return s.file.Close()
}

// Current returns the buffer currently scanned by workers.
func (s *Streamer) Current() []byte {
	return s.buffers[s.which]
}

// FillInitial reads one ChunkSize-sized region directly into the current
// buffer. It is used once at the start of each outer sweep, before any
// worker has been dispatched, so writing directly into "current" is safe.
func (s *Streamer) FillInitial() (int, error) {
	n, err := io.ReadFull(s.file, s.buffers[s.which])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return n, fmt.Errorf("read device: %w", err)
	}
	return n, nil
}

// ReadNext reads the next ChunkSize-sized region into the "next" buffer
// (the one workers are not currently scanning) and returns the number of
// bytes read. A short read (n < ChunkSize) signals the end of this outer
// sweep's streaming and is not itself an error.
func (s *Streamer) ReadNext() (int, error) {
	next := s.buffers[1-s.which]
	n, err := io.ReadFull(s.file, next)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return n, fmt.Errorf("read device: %w", err)
	}
	return n, nil
}

// Flip swaps which buffer is "current"; it must be called strictly after
// dispatch of the current iteration's workers and strictly before the next
// ReadNext, so the buffer being read is always disjoint from the one being
// scanned.
func (s *Streamer) Flip() {
	s.which = 1 - s.which
}
