package pipeline

import (
	"context"
	"fmt"

	"csascrape/internal"
	"csascrape/internal/config"
	"csascrape/internal/fetch"
	"csascrape/internal/util"
)

const (
	haulImageTemplate   = "assets/imgs/csa/%d/csa_haul_%d_%d.jpg"
	recipeImageTemplate = "assets/imgs/recipes/%d/csa_recipe_%d_%d_%d.jpg"
)

// Fetcher is the injected page-fetching capability.
type Fetcher interface {
	Page(ctx context.Context, url string) (string, error)
}

// Service runs the per-week pipeline: build URL, fetch, parse, classify
// tables, extract, assemble a WeekRecord.
type Service struct {
	cfg      config.Config
	fetcher  Fetcher
	strategy Strategy
	stop     util.StopSet
}

func NewService(cfg config.Config, fetcher Fetcher) *Service {
	return &Service{
		cfg:      cfg,
		fetcher:  fetcher,
		strategy: StrategyFromConfig(cfg),
		stop:     util.NewStopSet(cfg.StopWords),
	}
}

// ScrapeWeek processes one week. Any stage failure comes back as a
// *internal.WeekError naming the stage, so the batch runner can log it
// and move on to the next week.
func (s *Service) ScrapeWeek(ctx context.Context, year, week int) (internal.WeekRecord, error) {
	url := fetch.WeekURL(s.cfg.URLTemplate, year, week)

	raw, err := s.fetcher.Page(ctx, url)
	if err != nil {
		return internal.WeekRecord{}, &internal.WeekError{Year: year, Week: week, Stage: internal.StageFetch, Err: err}
	}

	doc, err := Parse(raw)
	if err != nil {
		return internal.WeekRecord{}, &internal.WeekError{Year: year, Week: week, Stage: internal.StageParse, Err: err}
	}

	return s.BuildRecord(doc, url, year, week)
}

// BuildRecord classifies and extracts from an already parsed document.
// Split out from ScrapeWeek so the offline one-shot command can feed a
// local HTML file through the same path.
func (s *Service) BuildRecord(doc *Document, url string, year, week int) (internal.WeekRecord, error) {
	classified, err := s.strategy.Locate(doc.Tables())
	if err != nil {
		return internal.WeekRecord{}, &internal.WeekError{Year: year, Week: week, Stage: internal.StageLocate, Err: err}
	}

	recipes := HeaderLabels(classified.RecipeHeader)
	if len(recipes) == 0 {
		return internal.WeekRecord{}, &internal.WeekError{Year: year, Week: week, Stage: internal.StageExtract, Err: fmt.Errorf("no recipe names in header row")}
	}

	contents := LabeledRows(classified.Contents, s.stop)
	extras := LabeledRows(classified.Ingredients, s.stop)

	record := internal.WeekRecord{
		Year:        year,
		Week:        week,
		URL:         url,
		TimeStamp:   util.TimeStamp(year, week),
		Title:       fmt.Sprintf("csa_haul_%d_%d", year, week),
		Alias:       fmt.Sprintf("%d CSA Week %d", year, week),
		Picture:     fmt.Sprintf(haulImageTemplate, year, year, week),
		Message:     doc.Intro(),
		CSAItems:    util.DedupePreserveOrder(tokens(contents)),
		Recipes:     recipes,
		Ingredients: util.DedupePreserveOrder(tokens(extras)),
	}

	for idx, name := range recipes {
		detail := internal.RecipeDetail{
			Alias:        name,
			Picture:      fmt.Sprintf(recipeImageTemplate, year, year, week, idx+1),
			CSAItems:     usedTokens(contents, idx),
			Ingredients:  usedTokens(extras, idx),
			Instructions: doc.Instructions(name),
		}
		record.RecipeDetails = append(record.RecipeDetails, detail)
	}

	return record, nil
}

func tokens(rows []LabeledRow) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Token)
	}
	return out
}

// usedTokens picks the row tokens whose cell in the given recipe column
// is filled.
func usedTokens(rows []LabeledRow, column int) []string {
	var out []string
	for _, row := range rows {
		if column < len(row.Used) && row.Used[column] {
			out = append(out, row.Token)
		}
	}
	return out
}
