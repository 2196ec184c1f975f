package plan

import (
	"fmt"
	"path/filepath"

	"github.com/sverlaine/mediadup/pkg/match"
	"github.com/sverlaine/mediadup/pkg/models"
)

// Planner turns resolved matches into per-file actions. One action per
// matched source file, in source scan order; destination files are
// never the object of an action.
type Planner struct {
	command    models.Command
	archiveDir string
}

// NewPlanner creates a planner for the given command. archiveDir is
// the relocation target for move and copy actions.
func NewPlanner(command models.Command, archiveDir string) *Planner {
	return &Planner{command: command, archiveDir: archiveDir}
}

// PlanActions produces the action sequence for a match result.
// Unmatched sources produce no action, except under print where they
// are reported as unique. Move and copy derive an archive path per
// source; colliding basenames get a numeric suffix.
func (p *Planner) PlanActions(result *match.Result) ([]models.Action, error) {
	var actions []models.Action
	taken := make(map[string]bool)

	for _, pair := range result.Pairs {
		action := models.Action{
			Source:      pair.Source,
			MatchedDest: pair.Dest.Path,
			Ambiguous:   pair.Ambiguous,
		}

		switch p.command {
		case models.CommandMove:
			action.Type = models.ActionMove
			action.ArchivePath = p.archivePath(pair.Source.Path, taken)
		case models.CommandCopy:
			action.Type = models.ActionCopy
			action.ArchivePath = p.archivePath(pair.Source.Path, taken)
		case models.CommandDelete:
			action.Type = models.ActionDelete
		case models.CommandPrint:
			action.Type = models.ActionPrint
		default:
			return nil, fmt.Errorf("unknown command: %s", p.command)
		}

		actions = append(actions, action)
	}

	if p.command == models.CommandPrint {
		for _, file := range result.Unmatched {
			actions = append(actions, models.Action{
				Type:   models.ActionPrint,
				Source: file,
				Unique: true,
			})
		}
	}

	return actions, nil
}

// archivePath places the source basename under the archive directory,
// appending _2, _3, ... before the extension when the name is already
// taken by an earlier action.
func (p *Planner) archivePath(sourcePath string, taken map[string]bool) string {
	base := filepath.Base(sourcePath)
	candidate := filepath.Join(p.archiveDir, base)
	if !taken[candidate] {
		taken[candidate] = true
		return candidate
	}

	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	for n := 2; ; n++ {
		candidate = filepath.Join(p.archiveDir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if !taken[candidate] {
			taken[candidate] = true
			return candidate
		}
	}
}
