package cmd

import (
	"errors"
	"os"

	"github.com/sergev/slacksweep/config"
	"github.com/sergev/slacksweep/engine"
	"github.com/sergev/slacksweep/image"
	"github.com/sergev/slacksweep/report"
	"github.com/sergev/slacksweep/version"

	"github.com/spf13/cobra"
)

var (
	flagDevice    string
	flagPatterns  string
	flagThreads   int
	flagDiskChunk int
	flagFileChunk int
	flagLogLevel  int
)

var rootCmd = &cobra.Command{
	Use:     "slacksweep",
	Short:   "A forensic slack-space scanner",
	Long:    "slacksweep scans a raw disk image for the best fractional match of every sector of every file in a pattern directory, to locate fragments of deleted or overwritten files surviving in unallocated or slack space.",
	Version: version.String(),
	Args:    cobra.NoArgs,
	RunE:    run,
}

func init() {
	defaults, err := config.Load()
	if err != nil {
		report.Fatalf(1, "slacksweep: %v", err)
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&flagDevice, "device", "d", defaults.Device, "path to raw image or block device")
	flags.StringVarP(&flagPatterns, "patterns", "p", defaults.Patterns, "pattern directory")
	flags.IntVarP(&flagThreads, "threads", "t", defaults.Threads, "number of worker slots")
	flags.IntVarP(&flagDiskChunk, "disk-chunk", "c", defaults.DiskChunk, "disk streaming chunk size in bytes, must be a multiple of 512")
	flags.IntVarP(&flagFileChunk, "file-chunk", "f", defaults.FileChunk, "pattern-file streaming chunk size in bytes, must be a multiple of 512")
	flags.CountVarP(&flagLogLevel, "log-level", "l", "increase log verbosity, may be repeated")

	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func run(cmd *cobra.Command, args []string) error {
	cfg := engine.Config{
		Device:     flagDevice,
		PatternDir: flagPatterns,
		Threads:    flagThreads,
		DiskChunk:  flagDiskChunk,
		FileChunk:  flagFileChunk,
		LogLevel:   flagLogLevel,
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := report.NewLogger(os.Stdout, cfg.LogLevel)

	eng, err := engine.New(cfg, logger, os.Stdout)
	if err != nil {
		report.Fatalf(2, "slacksweep: %v", err)
	}

	if err := eng.Run(); err != nil {
		if errors.Is(err, image.ErrBadGeometry) {
			report.Fatalf(3, "slacksweep: %v", err)
		}
		if os.Geteuid() != 0 {
			report.Fatalf(2, "slacksweep: %v (hint: opening a block device usually requires root)", err)
		}
		report.Fatalf(2, "slacksweep: %v", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
