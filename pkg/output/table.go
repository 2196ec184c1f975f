package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sverlaine/mediadup/pkg/models"
)

// TableFormatter renders the duplicate groups as an aligned table,
// followed by a short stats footer.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// Render writes one row per matched source file
func (f *TableFormatter) Render(report *models.Report) error {
	w := f.writer
	if w == nil {
		w = io.Discard
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"SOURCE", "DUPLICATE OF", "ACTION", "AMBIGUOUS"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	for _, action := range report.Actions {
		dest := action.MatchedDest
		kind := string(action.Type)
		if action.Unique {
			dest = "-"
			kind = "keep"
		}
		tw.AppendRow(table.Row{
			action.Source.Path,
			dest,
			kind,
			strconv.FormatBool(action.Ambiguous),
		})
	}

	if _, err := fmt.Fprintln(w, tw.Render()); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d group(s), %d action(s), %s reclaimable, status %s\n",
		report.Stats.DuplicateGroups,
		report.Stats.ActionsPlanned,
		formatSpace(report.Stats.BytesReclaimable),
		report.Status)
	return err
}

// Name returns the formatter name
func (f *TableFormatter) Name() string {
	return "table"
}
