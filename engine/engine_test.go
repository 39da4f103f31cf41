package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergev/slacksweep/image"
	"github.com/sergev/slacksweep/report"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	logger := report.NewLogger(os.Stderr, cfg.LogLevel)
	eng, err := New(cfg, logger, &bytes.Buffer{})
	require.NoError(t, err)
	return eng
}

// TestExactMatchScenario covers spec scenario 1: a pattern sector that
// appears byte-identical at the start of the image scores a perfect 10.
func TestExactMatchScenario(t *testing.T) {
	dir := t.TempDir()
	patternDir := filepath.Join(dir, "patterns")
	require.NoError(t, os.Mkdir(patternDir, 0o755))

	disk := make([]byte, 1024*1024)
	for i := 0; i < 4096; i++ {
		disk[i] = 0xAB
	}
	devicePath := writeFile(t, dir, "disk.img", disk)
	writeFile(t, patternDir, "p", bytes.Repeat([]byte{0xAB}, 512))

	out := &bytes.Buffer{}
	cfg := Config{
		Device:     devicePath,
		PatternDir: patternDir,
		Threads:    1,
		DiskChunk:  1024 * 1024,
		FileChunk:  65536,
	}
	eng, err := New(cfg, report.NewLogger(os.Stderr, 0), out)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	require.Equal(t, "p: sectors = 1 score = * by sector = *\n", out.String())
}

// TestAllZeroPatternScenario covers spec scenario 2: a zero-filled pattern
// file never scores above 0, regardless of disk content.
func TestAllZeroPatternScenario(t *testing.T) {
	dir := t.TempDir()
	patternDir := filepath.Join(dir, "patterns")
	require.NoError(t, os.Mkdir(patternDir, 0o755))

	devicePath := writeFile(t, dir, "disk.img", bytes.Repeat([]byte{0xFF}, 1024*1024))
	writeFile(t, patternDir, "p", make([]byte, 4096))

	out := &bytes.Buffer{}
	cfg := Config{
		Device:     devicePath,
		PatternDir: patternDir,
		Threads:    1,
		DiskChunk:  1024 * 1024,
		FileChunk:  65536,
	}
	eng, err := New(cfg, report.NewLogger(os.Stderr, 0), out)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	require.Equal(t, "p: sectors = 8 score = 0 by sector = 00000000\n", out.String())
}

// TestPartialMatchScenario covers spec scenario 3: a sector differing in
// exactly 52 leading bytes yields match_count 460, bucket 8.
func TestPartialMatchScenario(t *testing.T) {
	dir := t.TempDir()
	patternDir := filepath.Join(dir, "patterns")
	require.NoError(t, os.Mkdir(patternDir, 0o755))

	patternSector := bytes.Repeat([]byte{0xCD}, 512)
	diskSector := append([]byte{}, patternSector...)
	for i := 0; i < 52; i++ {
		diskSector[i] = 0x01 // differs from 0xCD in the leading 52 bytes
	}

	devicePath := writeFile(t, dir, "disk.img", diskSector)
	writeFile(t, patternDir, "p", patternSector)

	out := &bytes.Buffer{}
	cfg := Config{
		Device:     devicePath,
		PatternDir: patternDir,
		Threads:    1,
		DiskChunk:  512,
		FileChunk:  512,
	}
	eng, err := New(cfg, report.NewLogger(os.Stderr, 0), out)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	require.Equal(t, "p: sectors = 1 score = 8 by sector = 8\n", out.String())
}

// TestMultiFileSchedulingScenario covers spec scenario 4: fewer worker
// slots than pattern files still processes every file to completion.
func TestMultiFileSchedulingScenario(t *testing.T) {
	dir := t.TempDir()
	patternDir := filepath.Join(dir, "patterns")
	require.NoError(t, os.Mkdir(patternDir, 0o755))

	devicePath := writeFile(t, dir, "disk.img", bytes.Repeat([]byte{0x77}, 4096))
	for _, name := range []string{"a", "b", "c"} {
		writeFile(t, patternDir, name, bytes.Repeat([]byte{0x99}, 512))
	}

	out := &bytes.Buffer{}
	cfg := Config{
		Device:     devicePath,
		PatternDir: patternDir,
		Threads:    2,
		DiskChunk:  4096,
		FileChunk:  512,
	}
	eng, err := New(cfg, report.NewLogger(os.Stderr, 0), out)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	seen := map[string]bool{}
	for _, line := range lines {
		name := strings.SplitN(line, ":", 2)[0]
		seen[name] = true
	}
	require.True(t, seen["a"] && seen["b"] && seen["c"])
}

// TestImageSmallerThanChunkScenario covers spec scenario 5: the engine
// lowers disk_chunk to the image size instead of failing.
func TestImageSmallerThanChunkScenario(t *testing.T) {
	dir := t.TempDir()
	patternDir := filepath.Join(dir, "patterns")
	require.NoError(t, os.Mkdir(patternDir, 0o755))

	devicePath := writeFile(t, dir, "disk.img", make([]byte, 64*1024))
	writeFile(t, patternDir, "p", make([]byte, 512))

	cfg := Config{
		Device:     devicePath,
		PatternDir: patternDir,
		Threads:    1,
		DiskChunk:  1024 * 1024,
		FileChunk:  512,
	}
	eng := newEngine(t, cfg)
	require.NoError(t, eng.Run())
}

// TestBadGeometryScenario covers spec scenario 6: an image size that is not
// a multiple of disk_chunk is a fatal geometry error.
func TestBadGeometryScenario(t *testing.T) {
	dir := t.TempDir()
	patternDir := filepath.Join(dir, "patterns")
	require.NoError(t, os.Mkdir(patternDir, 0o755))

	devicePath := writeFile(t, dir, "disk.img", make([]byte, 1536*1024)) // 1.5 MiB

	cfg := Config{
		Device:     devicePath,
		PatternDir: patternDir,
		Threads:    1,
		DiskChunk:  1024 * 1024,
		FileChunk:  512,
	}
	eng := newEngine(t, cfg)

	err := eng.Run()
	require.Error(t, err)
	require.True(t, errors.Is(err, image.ErrBadGeometry))
}

// TestRoundTripPatternFollowedByNoise covers spec §8's round-trip property:
// the pattern file placed verbatim at the start of the device, followed by
// unrelated noise, must score a perfect match.
func TestRoundTripPatternFollowedByNoise(t *testing.T) {
	dir := t.TempDir()
	patternDir := filepath.Join(dir, "patterns")
	require.NoError(t, os.Mkdir(patternDir, 0o755))

	patternData := bytes.Repeat([]byte{0x5A}, 1024)
	noise := bytes.Repeat([]byte{0x11, 0x22, 0x33, 0x44}, 256) // 1024 bytes, non-matching
	disk := append(append([]byte{}, patternData...), noise...)

	devicePath := writeFile(t, dir, "disk.img", disk)
	writeFile(t, patternDir, "p", patternData)

	out := &bytes.Buffer{}
	cfg := Config{
		Device:     devicePath,
		PatternDir: patternDir,
		Threads:    1,
		DiskChunk:  512,
		FileChunk:  512,
	}
	eng, err := New(cfg, report.NewLogger(os.Stderr, 0), out)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	require.Equal(t, "p: sectors = 2 score = * by sector = **\n", out.String())
}
