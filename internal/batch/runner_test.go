package batch

import (
	"context"
	"path/filepath"
	"testing"

	"csascrape/internal"
	"csascrape/internal/config"
	"csascrape/internal/pipeline"
	"csascrape/internal/storage"
)

const page = `
<table>
  <tr><td></td><td>Lovage Soup</td><td>Beet Salad</td></tr>
  <tr><th>Kale</th><td>x</td><td></td></tr>
  <tr><th>Beets</th><td></td><td>x</td></tr>
</table>
<table>
  <tr><td></td><td>Lovage Soup</td><td>Beet Salad</td></tr>
  <tr><th>Olive oil</th><td>x</td><td>x</td></tr>
</table>`

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Page(_ context.Context, url string) (string, error) {
	body, ok := f.pages[url]
	if !ok {
		return "", internal.ErrFetchFailed
	}
	return body, nil
}

type memorySink struct {
	records []internal.WeekRecord
}

func (s *memorySink) Write(record internal.WeekRecord) error {
	s.records = append(s.records, record)
	return nil
}

// instantPacer counts turns without sleeping.
type instantPacer struct {
	turns int
}

func (p *instantPacer) WaitTurn() { p.turns++ }

func testConfig() config.Config {
	return config.Config{
		URLTemplate:   "https://farm.test/{year}-week-{week}",
		Year:          2017,
		WeekFrom:      1,
		WeekTo:        3,
		PacingSeconds: 1,
		TableStrategy: "signature",
		Marker:        "Lovage Soup",
		StopWords:     config.DefaultStopWords,
	}
}

func TestRunSkipsFailedWeek(t *testing.T) {
	cfg := testConfig()
	// week 2 is missing, so its fetch fails
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://farm.test/2017-week-1": page,
		"https://farm.test/2017-week-3": page,
	}}
	sink := &memorySink{}
	runner := NewRunner(cfg, pipeline.NewService(cfg, fetcher), nil, sink)
	pacing := &instantPacer{}
	runner.pacer = pacing

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if pacing.turns != 3 {
		t.Fatalf("pacer turns = %d, want one per week including the failed one", pacing.turns)
	}
	if summary.Scraped != 2 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.FailedWeeks) != 1 || summary.FailedWeeks[0] != 2 {
		t.Fatalf("failed weeks = %v", summary.FailedWeeks)
	}
	if len(sink.records) != 2 {
		t.Fatalf("sink has %d records", len(sink.records))
	}
	if sink.records[0].Week != 1 || sink.records[1].Week != 3 {
		t.Fatalf("sink weeks = %d, %d", sink.records[0].Week, sink.records[1].Week)
	}
}

func TestRunSurvivesRunCounterWriteFailure(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "csa.db"))
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	// every week fails, so only the closing InsertRun touches the db
	cfg := testConfig()
	runner := NewRunner(cfg, pipeline.NewService(cfg, &fakeFetcher{}), db, &memorySink{})
	runner.pacer = &instantPacer{}

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run counter failure must not abort the run: %v", err)
	}
	if summary.Failed != 3 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRunRejectsEmptyWeekRange(t *testing.T) {
	cfg := testConfig()
	cfg.WeekFrom = 5
	cfg.WeekTo = 3
	runner := NewRunner(cfg, pipeline.NewService(cfg, &fakeFetcher{}), nil, &memorySink{})

	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected a validation error for an empty week range")
	}
}

func TestRunRejectsTemplateWithoutWeekPlaceholder(t *testing.T) {
	cfg := testConfig()
	cfg.URLTemplate = "https://farm.test/fixed-page"
	runner := NewRunner(cfg, pipeline.NewService(cfg, &fakeFetcher{}), nil, &memorySink{})

	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected a validation error for a template without {week}")
	}
}
