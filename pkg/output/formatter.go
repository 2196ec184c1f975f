package output

import (
	"fmt"
	"io"

	"github.com/sverlaine/mediadup/pkg/models"
)

// Formatter defines the interface for report output formatting.
// Implementations include human-readable, JSON and table formatters.
type Formatter interface {
	// Render writes the final run report
	Render(report *models.Report) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter creates a formatter by name writing to w
func NewFormatter(format string, w io.Writer) (Formatter, error) {
	switch format {
	case "human", "":
		return NewHumanFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	case "table":
		return NewTableFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
