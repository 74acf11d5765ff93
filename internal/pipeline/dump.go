package pipeline

import (
	"context"
	"fmt"
	"io"

	"csascrape/internal"
	"csascrape/internal/fetch"
)

// DumpWeek fetches one week's page and writes every table's every row
// as raw cell text. This is the manual calibration step for the
// positional strategy: run it against a new page template and inspect
// the indices before trusting them.
func (s *Service) DumpWeek(ctx context.Context, w io.Writer, year, week int) error {
	url := fetch.WeekURL(s.cfg.URLTemplate, year, week)
	raw, err := s.fetcher.Page(ctx, url)
	if err != nil {
		return err
	}
	doc, err := Parse(raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", url)
	DumpTables(w, doc.Tables())
	return nil
}

func DumpTables(w io.Writer, tables []internal.Table) {
	for ti, table := range tables {
		fmt.Fprintf(w, "table %d (%d rows)\n", ti, len(table.Rows))
		for ri, row := range table.Rows {
			fmt.Fprintf(w, "  row %d:", ri)
			for _, cell := range row {
				marker := "td"
				if cell.Label {
					marker = "th"
				}
				fmt.Fprintf(w, " [%s %q]", marker, cell.Text)
			}
			fmt.Fprintln(w)
		}
	}
}
