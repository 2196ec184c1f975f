package config

import (
	"github.com/sverlaine/mediadup/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Match       MatchConfig       `yaml:"match"`
	Exclude     ExcludeConfig     `yaml:"exclude"`
	Cache       CacheConfig       `yaml:"cache"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Script      ScriptConfig      `yaml:"script"`
}

// MatchConfig holds matching-related settings
type MatchConfig struct {
	Mode          models.Mode `yaml:"mode"`
	IncludeVideos bool        `yaml:"include_videos"`
}

// ExcludeConfig holds exclusion filter settings
type ExcludeConfig struct {
	Patterns []string `yaml:"patterns"`
	Flip     bool     `yaml:"flip"`
}

// CacheConfig holds metadata cache settings
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // empty = default under the user cache dir
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers int `yaml:"max_workers"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human", "json" or "table"
	Progress bool   `yaml:"progress"` // Show a progress bar during extraction
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = logging disabled)
}

// ScriptConfig holds script emission settings
type ScriptConfig struct {
	Path       string `yaml:"path"`        // Output script path
	ArchiveDir string `yaml:"archive_dir"` // Relocation target for move/copy
	Shell      string `yaml:"shell"`       // Interpreter for the shebang line
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Match: MatchConfig{
			Mode:          models.ModeLoose,
			IncludeVideos: true,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{},
			Flip:     false,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "",
		},
		Performance: PerformanceConfig{
			MaxWorkers: 4,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
			File:    "",
		},
		Script: ScriptConfig{
			Path:       "dedup.sh",
			ArchiveDir: "duplicates",
			Shell:      "/bin/sh",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Match.Mode != models.ModeLoose && c.Match.Mode != models.ModeParanoid {
		return &models.ValidationError{
			Field:   "match.mode",
			Message: "must be 'loose' or 'paranoid'",
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true, "table": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human', 'json' or 'table'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Script.Shell == "" {
		return &models.ValidationError{
			Field:   "script.shell",
			Message: "shell must not be empty",
		}
	}

	return nil
}
