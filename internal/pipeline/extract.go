package pipeline

import (
	"strings"

	"csascrape/internal"
	"csascrape/internal/util"
)

// HeaderLabels returns the recipe names from a table's first row, raw
// and in order. The very first cell is the corner label and is dropped
// unconditionally; blank cells are skipped. Recipe names are display
// strings and are deliberately never normalized.
func HeaderLabels(table internal.Table) []string {
	header, ok := table.HeaderRow()
	if !ok {
		return nil
	}

	var out []string
	for i, cell := range header {
		if i == 0 {
			continue
		}
		if text := strings.TrimSpace(cell.Text); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// LabeledRow is one data row of a classified table: its normalized
// label token plus, per recipe column, whether the cell is filled.
type LabeledRow struct {
	Token string
	Used  []bool
}

// LabeledRows walks the data rows of a table, normalizing each row's
// label cell. Rows without a label cell, and labels that normalize to
// nothing, are silently skipped — a malformed row is never an error.
// The usage flags stay aligned with the kept rows.
func LabeledRows(table internal.Table, stop util.StopSet) []LabeledRow {
	if len(table.Rows) < 2 {
		return nil
	}

	var out []LabeledRow
	for _, row := range table.Rows[1:] {
		label, ok := labelCell(row)
		if !ok {
			continue
		}
		token := util.Normalize(label, stop)
		if token == "" {
			continue
		}

		used := make([]bool, 0, len(row))
		for _, cell := range row[1:] {
			used = append(used, strings.TrimSpace(cell.Text) != "")
		}
		out = append(out, LabeledRow{Token: token, Used: used})
	}
	return out
}

// RowLabels returns just the normalized label tokens, in row order.
func RowLabels(table internal.Table, stop util.StopSet) []string {
	rows := LabeledRows(table, stop)
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Token)
	}
	return out
}

func labelCell(row internal.Row) (string, bool) {
	for _, cell := range row {
		if cell.Label {
			return cell.Text, true
		}
	}
	return "", false
}
