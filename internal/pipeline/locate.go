package pipeline

import (
	"fmt"
	"strings"

	"csascrape/internal"
	"csascrape/internal/config"
)

// Strategy classifies a page's tables into their roles. Upstream pages
// are inconsistent enough that two strategies are needed.
type Strategy interface {
	Locate(tables []internal.Table) (internal.ClassifiedTables, error)
}

// SignatureStrategy picks candidate tables by their header row: when
// Marker is set, the row's concatenated text must contain it; otherwise
// a header row with at least MinHeaderCells non-empty data cells marks
// a candidate. Exactly two candidates must turn up — the contents table
// and the extras table — and anything else is a classification failure,
// never a guess.
type SignatureStrategy struct {
	Marker         string
	MinHeaderCells int
}

func (s SignatureStrategy) Locate(tables []internal.Table) (internal.ClassifiedTables, error) {
	if len(tables) == 0 {
		return internal.ClassifiedTables{}, fmt.Errorf("%w: page has no tables", internal.ErrInsufficientTables)
	}

	var candidates []internal.Table
	for _, t := range tables {
		if s.isCandidate(t) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) != 2 {
		return internal.ClassifiedTables{}, fmt.Errorf("%w: expected 2 candidate tables, found %d", internal.ErrAmbiguousTables, len(candidates))
	}

	return internal.ClassifiedTables{
		Contents:     candidates[0],
		Ingredients:  candidates[1],
		RecipeHeader: candidates[0],
	}, nil
}

func (s SignatureStrategy) isCandidate(t internal.Table) bool {
	header, ok := t.HeaderRow()
	if !ok {
		return false
	}

	if s.Marker != "" {
		var b strings.Builder
		for _, cell := range header {
			b.WriteString(cell.Text)
		}
		return strings.Contains(b.String(), s.Marker)
	}

	min := s.MinHeaderCells
	if min <= 0 {
		min = 3
	}
	count := 0
	for _, cell := range header {
		if !cell.Label && strings.TrimSpace(cell.Text) != "" {
			count++
		}
	}
	return count >= min
}

// PositionalStrategy trusts table order: index 0 is share contents,
// index 1 recipe names, index 2 extra ingredients. On a 2-table page
// index 1 is reinterpreted as the extras and recipe names come from the
// contents table's header row. Fragile against template changes; run
// the dump-tables diagnostic before trusting the indices on a new page
// layout.
type PositionalStrategy struct{}

func (PositionalStrategy) Locate(tables []internal.Table) (internal.ClassifiedTables, error) {
	switch {
	case len(tables) >= 3:
		return internal.ClassifiedTables{
			Contents:     tables[0],
			RecipeHeader: tables[1],
			Ingredients:  tables[2],
		}, nil
	case len(tables) == 2:
		return internal.ClassifiedTables{
			Contents:     tables[0],
			RecipeHeader: tables[0],
			Ingredients:  tables[1],
		}, nil
	default:
		return internal.ClassifiedTables{}, fmt.Errorf("%w: found %d tables, need at least 2", internal.ErrInsufficientTables, len(tables))
	}
}

// StrategyFromConfig maps the configured strategy name onto an
// implementation. Unknown names are caught by Config.Validate before a
// run starts.
func StrategyFromConfig(cfg config.Config) Strategy {
	if cfg.TableStrategy == "positional" {
		return PositionalStrategy{}
	}
	return SignatureStrategy{Marker: cfg.Marker, MinHeaderCells: cfg.MinHeaderCells}
}
