package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sverlaine/mediadup/pkg/config"
	"github.com/sverlaine/mediadup/pkg/models"
)

// validateRunFlags validates the shared run flags
func validateRunFlags() error {
	if len(runFlags.Sources) == 0 {
		return fmt.Errorf("at least one source path is required")
	}

	destInfo, err := os.Stat(runFlags.Dest)
	if os.IsNotExist(err) {
		return fmt.Errorf("destination path does not exist: %s", runFlags.Dest)
	} else if err != nil {
		return fmt.Errorf("failed to access destination path: %w", err)
	} else if !destInfo.IsDir() {
		return fmt.Errorf("destination path exists but is not a directory: %s", runFlags.Dest)
	}

	destAbs, err := filepath.Abs(runFlags.Dest)
	if err != nil {
		return fmt.Errorf("failed to resolve destination path: %w", err)
	}

	for _, src := range runFlags.Sources {
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			return fmt.Errorf("source path does not exist: %s", src)
		} else if err != nil {
			return fmt.Errorf("failed to access source path: %w", err)
		} else if !info.IsDir() {
			return fmt.Errorf("source path exists but is not a directory: %s", src)
		}

		srcAbs, err := filepath.Abs(src)
		if err != nil {
			return fmt.Errorf("failed to resolve source path: %w", err)
		}

		if srcAbs == destAbs {
			return fmt.Errorf("source and destination cannot be the same: %s", srcAbs)
		}
		if strings.HasPrefix(destAbs, srcAbs+string(filepath.Separator)) {
			return fmt.Errorf("destination cannot be inside a source directory")
		}
		if strings.HasPrefix(srcAbs, destAbs+string(filepath.Separator)) {
			return fmt.Errorf("source cannot be inside the destination directory")
		}
	}

	if runFlags.Mode != "" {
		validModes := map[string]bool{
			"loose":    true,
			"paranoid": true,
		}
		if !validModes[runFlags.Mode] {
			return fmt.Errorf("invalid matching mode: %s (valid: loose, paranoid)", runFlags.Mode)
		}
	}

	if runFlags.Output != "" {
		validOutputs := map[string]bool{
			"human": true,
			"json":  true,
			"table": true,
		}
		if !validOutputs[runFlags.Output] {
			return fmt.Errorf("invalid output format: %s (valid: human, json, table)", runFlags.Output)
		}
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags.
// Only flags the user actually gave override the config file; defaulted
// flags leave it alone.
func applyFlagsToConfig(cfg *config.Config, cmd *cobra.Command) {
	if runFlags.Mode != "" {
		cfg.Match.Mode = models.Mode(runFlags.Mode)
	}
	// --include-videos defaults to true, so presence must be checked
	// explicitly or the flag default would shadow the config key
	if cmd.Flags().Changed("include-videos") {
		cfg.Match.IncludeVideos = runFlags.IncludeVideos
	}

	if len(runFlags.Exclude) > 0 {
		cfg.Exclude.Patterns = runFlags.Exclude
	}
	if runFlags.FlipExclusion {
		cfg.Exclude.Flip = true
	}

	// Extraction workers (default: 4)
	if runFlags.Parallel > 0 {
		cfg.Performance.MaxWorkers = runFlags.Parallel
	} else if cfg.Performance.MaxWorkers == 0 {
		cfg.Performance.MaxWorkers = 4
	}

	if runFlags.Output != "" {
		cfg.Output.Format = runFlags.Output
	}

	if runFlags.Script != "" {
		cfg.Script.Path = runFlags.Script
	}
	if runFlags.ArchiveDir != "" {
		cfg.Script.ArchiveDir = runFlags.ArchiveDir
	}

	if runFlags.NoCache {
		cfg.Cache.Enabled = false
	}
	if runFlags.CachePath != "" {
		cfg.Cache.Path = runFlags.CachePath
	}

	if runFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = runFlags.LogFile
		cfg.Logging.Format = runFlags.LogFormat
		cfg.Logging.Level = runFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Enable progress in verbose mode
	if globalFlags.Verbose {
		cfg.Output.Progress = true
	}
}

// createPlan creates a run plan from configuration
func createPlan(cfg *config.Config, command models.Command) (*models.Plan, error) {
	runPlan := &models.Plan{
		ID:            uuid.New().String(),
		SourceRoots:   runFlags.Sources,
		DestRoot:      runFlags.Dest,
		Mode:          cfg.Match.Mode,
		Command:       command,
		IncludeVideos: cfg.Match.IncludeVideos,
		Exclude:       cfg.Exclude.Patterns,
		FlipExclusion: cfg.Exclude.Flip,
		ScriptPath:    cfg.Script.Path,
		ArchiveDir:    cfg.Script.ArchiveDir,
		Shell:         cfg.Script.Shell,
		MaxWorkers:    cfg.Performance.MaxWorkers,
		CreatedAt:     time.Now(),
	}

	if err := runPlan.Validate(); err != nil {
		return nil, err
	}

	return runPlan, nil
}
