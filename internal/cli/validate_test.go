package cli

import (
	"testing"

	"github.com/sverlaine/mediadup/pkg/config"
	"github.com/sverlaine/mediadup/pkg/models"
)

func TestApplyFlagsPreservesConfigIncludeVideos(t *testing.T) {
	// Flag left at its cobra default; the config file value must win.
	runFlags = RunFlags{IncludeVideos: true}
	cmd := NewPrintCommand()

	cfg := config.Default()
	cfg.Match.IncludeVideos = false

	applyFlagsToConfig(cfg, cmd)

	if cfg.Match.IncludeVideos {
		t.Error("config include_videos=false overridden by the flag default")
	}
}

func TestApplyFlagsOverridesIncludeVideosWhenGiven(t *testing.T) {
	runFlags = RunFlags{}
	cmd := NewPrintCommand()
	if err := cmd.Flags().Set("include-videos", "true"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	cfg := config.Default()
	cfg.Match.IncludeVideos = false

	applyFlagsToConfig(cfg, cmd)

	if !cfg.Match.IncludeVideos {
		t.Error("explicit --include-videos=true not applied over the config")
	}
}

func TestApplyFlagsModeAndWorkers(t *testing.T) {
	cmd := NewPrintCommand()
	runFlags = RunFlags{Mode: "paranoid", Parallel: 8}

	cfg := config.Default()
	applyFlagsToConfig(cfg, cmd)

	if cfg.Match.Mode != models.ModeParanoid {
		t.Errorf("mode = %s, want paranoid", cfg.Match.Mode)
	}
	if cfg.Performance.MaxWorkers != 8 {
		t.Errorf("max workers = %d, want 8", cfg.Performance.MaxWorkers)
	}
}
