package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sverlaine/mediadup/pkg/config"
	"github.com/sverlaine/mediadup/pkg/dedup"
	"github.com/sverlaine/mediadup/pkg/logging"
	"github.com/sverlaine/mediadup/pkg/metadata"
	"github.com/sverlaine/mediadup/pkg/models"
	"github.com/sverlaine/mediadup/pkg/output"
)

// RunFlags holds the flags shared by the move, copy, delete and print
// commands.
type RunFlags struct {
	Sources       []string
	Dest          string
	Mode          string
	IncludeVideos bool
	Exclude       []string
	FlipExclusion bool
	Script        string
	ArchiveDir    string
	Output        string
	Parallel      int
	NoCache       bool
	CachePath     string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var runFlags RunFlags

// NewMoveCommand creates the move command
func NewMoveCommand() *cobra.Command {
	return newRunCommand(models.CommandMove, "move",
		"Plan moving duplicate source files into an archive directory")
}

// NewCopyCommand creates the copy command
func NewCopyCommand() *cobra.Command {
	return newRunCommand(models.CommandCopy, "copy",
		"Plan copying duplicate source files into an archive directory")
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	return newRunCommand(models.CommandDelete, "delete",
		"Plan deleting duplicate source files")
}

// NewPrintCommand creates the print command
func NewPrintCommand() *cobra.Command {
	return newRunCommand(models.CommandPrint, "print",
		"Report duplicates without writing a script")
}

func newRunCommand(command models.Command, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

Source trees are compared against the destination tree by metadata
fingerprints. Destination files are never touched; every planned
action targets a source file only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, command)
		},
	}

	// Required flags
	cmd.Flags().StringSliceVarP(&runFlags.Sources, "src", "s", nil, "source directory (repeatable, required)")
	cmd.Flags().StringVarP(&runFlags.Dest, "dest", "d", "", "destination directory holding the trusted copies (required)")
	cmd.MarkFlagRequired("src")
	cmd.MarkFlagRequired("dest")

	// Matching flags
	cmd.Flags().StringVarP(&runFlags.Mode, "mode", "m", "", "matching mode: loose, paranoid")
	cmd.Flags().BoolVar(&runFlags.IncludeVideos, "include-videos", true, "consider video files as well as photos")
	cmd.Flags().StringSliceVar(&runFlags.Exclude, "exclude", []string{}, "substring or glob patterns to exclude")
	cmd.Flags().BoolVar(&runFlags.FlipExclusion, "flip-exclusion", false, "keep only files matching an exclusion pattern")

	// Output flags
	cmd.Flags().StringVarP(&runFlags.Output, "output", "o", "", "output format: human, json, table")
	cmd.Flags().IntVarP(&runFlags.Parallel, "parallel", "p", 0, "number of extraction workers (default: 4)")

	if command != models.CommandPrint {
		cmd.Flags().StringVar(&runFlags.Script, "script", "", "path of the shell script to write (default: dedup.sh)")
	}
	if command == models.CommandMove || command == models.CommandCopy {
		cmd.Flags().StringVar(&runFlags.ArchiveDir, "archive-dir", "", "directory duplicates are relocated to (default: duplicates)")
	}

	// Cache flags
	cmd.Flags().BoolVar(&runFlags.NoCache, "no-cache", false, "disable the metadata cache")
	cmd.Flags().StringVar(&runFlags.CachePath, "cache-path", "", "metadata cache location (default: user cache dir)")

	// Logging flags
	cmd.Flags().StringVar(&runFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&runFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&runFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runDetect(cmd *cobra.Command, command models.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateRunFlags(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagsToConfig(cfg, cmd)

	runPlan, err := createPlan(cfg, command)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	cache, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("failed to open metadata cache: %w", err)
	}
	defer cache.Close()

	formatter, err := output.NewFormatter(cfg.Output.Format, os.Stdout)
	if err != nil {
		return err
	}

	progress := cfg.Output.Progress && !cfg.Output.Quiet && cfg.Output.Format == "human"
	engine := dedup.NewEngine(runPlan, cache, logger, progress)

	report, err := engine.Run(ctx)
	if err != nil {
		if report != nil && report.Status == models.StatusFailed {
			fmt.Fprintf(os.Stderr, "Error: %s failed: %v\n", command, err)
			os.Exit(report.Status.ExitCode())
		}
		return fmt.Errorf("%s failed: %w", command, err)
	}

	if !cfg.Output.Quiet {
		if err := formatter.Render(report); err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
	}

	os.Exit(report.Status.ExitCode())
	return nil
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config) (logging.Logger, error) {
	if cfg.Logging.File == "" {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch cfg.Logging.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:    cfg.Logging.File,
		Format:  format,
		Level:   logging.ParseLevel(cfg.Logging.Level),
		MaxSize: 10 * 1024 * 1024, // 10 MB
	})
}

// openCache opens the metadata cache, or returns nil when disabled
func openCache(cfg *config.Config) (*metadata.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	path := cfg.Cache.Path
	if path == "" {
		var err error
		path, err = config.DefaultCachePath()
		if err != nil {
			return nil, err
		}
	}
	return metadata.OpenCache(path)
}
