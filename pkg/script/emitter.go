package script

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sverlaine/mediadup/pkg/models"
)

// PathEncodingError indicates a path cannot be rendered as a safe
// shell token. The affected action is skipped and reported; the rest
// of the script is still emitted.
type PathEncodingError struct {
	Path string
}

func (e *PathEncodingError) Error() string {
	return fmt.Sprintf("path cannot be rendered as a shell token: %q", e.Path)
}

// Emitter renders planned actions as a shell script. Pure rendering:
// one line per action, in planner order, no filtering or decisions.
type Emitter struct {
	shell string
}

// NewEmitter creates an emitter; shell is the interpreter named in the
// shebang line.
func NewEmitter(shell string) *Emitter {
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Emitter{shell: shell}
}

// Render writes the script for the given actions. Actions whose paths
// cannot be encoded are skipped and returned as per-file errors; only
// a writer failure aborts the render.
func (e *Emitter) Render(w io.Writer, plan *models.Plan, actions []models.Action) ([]models.FileError, error) {
	var b strings.Builder

	b.WriteString("#!" + e.shell + "\n")
	b.WriteString("set -e\n\n")
	b.WriteString("# mediadup action plan " + plan.ID + "\n")
	b.WriteString("# generated " + plan.CreatedAt.UTC().Format(time.RFC3339) + "\n")
	fmt.Fprintf(&b, "# command: %s, mode: %s\n", plan.Command, plan.Mode)
	fmt.Fprintf(&b, "# %d duplicate file(s)\n", len(actions))

	needsArchive := false
	for _, action := range actions {
		if action.Type == models.ActionMove || action.Type == models.ActionCopy {
			needsArchive = true
			break
		}
	}
	if needsArchive {
		if err := validatePath(plan.ArchiveDir); err != nil {
			return nil, err
		}
		b.WriteString("\nmkdir -p " + quote(plan.ArchiveDir) + "\n")
	}
	b.WriteString("\n")

	var skipped []models.FileError
	for _, action := range actions {
		line, err := e.renderAction(action)
		if err != nil {
			skipped = append(skipped, models.FileError{
				Path:      action.Source.Path,
				Stage:     "script",
				Error:     err.Error(),
				Timestamp: time.Now().UTC(),
			})
			continue
		}
		b.WriteString(line + "\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return skipped, fmt.Errorf("write script: %w", err)
	}
	return skipped, nil
}

// RenderFile renders the script to path and marks it executable
func (e *Emitter) RenderFile(path string, plan *models.Plan, actions []models.Action) ([]models.FileError, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return nil, fmt.Errorf("create script %s: %w", path, err)
	}
	skipped, renderErr := e.Render(f, plan, actions)
	if closeErr := f.Close(); renderErr == nil && closeErr != nil {
		renderErr = fmt.Errorf("close script %s: %w", path, closeErr)
	}
	return skipped, renderErr
}

func (e *Emitter) renderAction(action models.Action) (string, error) {
	paths := []string{action.Source.Path, action.MatchedDest}
	if action.ArchivePath != "" {
		paths = append(paths, action.ArchivePath)
	}
	for _, p := range paths {
		if err := validatePath(p); err != nil {
			return "", err
		}
	}

	switch action.Type {
	case models.ActionMove:
		return fmt.Sprintf("mv %s %s # duplicate of %s",
			quote(action.Source.Path), quote(action.ArchivePath), action.MatchedDest), nil
	case models.ActionCopy:
		return fmt.Sprintf("cp %s %s # duplicate of %s",
			quote(action.Source.Path), quote(action.ArchivePath), action.MatchedDest), nil
	case models.ActionDelete:
		return fmt.Sprintf("rm %s # duplicate of %s",
			quote(action.Source.Path), action.MatchedDest), nil
	default:
		return "", fmt.Errorf("action type %s cannot be rendered", action.Type)
	}
}

// validatePath rejects control characters that no quoting scheme can
// carry safely through a shell script.
func validatePath(path string) error {
	if strings.ContainsAny(path, "\x00\n\r") {
		return &PathEncodingError{Path: path}
	}
	return nil
}

// quote wraps a path in single quotes, escaping embedded quotes
func quote(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}
