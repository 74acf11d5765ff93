package batch

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"csascrape/internal"
	"csascrape/internal/config"
	"csascrape/internal/fetch"
	"csascrape/internal/pipeline"
	"csascrape/internal/storage"
)

// Sink receives one record per successfully processed week.
type Sink interface {
	Write(record internal.WeekRecord) error
}

// pacer spaces consecutive fetches; satisfied by fetch.Pacer.
type pacer interface {
	WaitTurn()
}

// Runner drives a sequential week-range scrape. A failed week is
// logged and skipped; the batch carries on. Records are written to the
// sink and the store inside the loop, so a crash loses only the
// in-flight week.
type Runner struct {
	cfg   config.Config
	svc   *pipeline.Service
	db    *storage.DB
	sink  Sink
	pacer pacer
}

func NewRunner(cfg config.Config, svc *pipeline.Service, db *storage.DB, sink Sink) *Runner {
	return &Runner{
		cfg:   cfg,
		svc:   svc,
		db:    db,
		sink:  sink,
		pacer: fetch.NewPacer(cfg.PacingFloor()),
	}
}

type Summary struct {
	Scraped     int
	Failed      int
	FailedWeeks []int
}

// Run validates the batch options once, then processes every week in
// the configured inclusive range. Only misconfiguration and sink/store
// write failures abort the whole run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if err := r.cfg.Validate(); err != nil {
		return Summary{}, err
	}

	started := time.Now().UTC().Format(time.RFC3339)
	summary := Summary{}

	for week := r.cfg.WeekFrom; week <= r.cfg.WeekTo; week++ {
		r.pacer.WaitTurn()

		record, err := r.svc.ScrapeWeek(ctx, r.cfg.Year, week)
		if err != nil {
			log.Error("skipping week", "year", r.cfg.Year, "week", week, "err", err)
			summary.Failed++
			summary.FailedWeeks = append(summary.FailedWeeks, week)
			continue
		}

		if err := r.sink.Write(record); err != nil {
			return summary, err
		}
		if r.db != nil {
			if err := r.db.SaveWeek(record); err != nil {
				return summary, err
			}
		}

		log.Info("week scraped",
			"year", record.Year,
			"week", record.Week,
			"csa_items", len(record.CSAItems),
			"recipes", len(record.Recipes),
			"ingredients", len(record.Ingredients))
		summary.Scraped++
	}

	if r.db != nil {
		if err := r.db.InsertRun(started, map[string]int{"scraped": summary.Scraped, "failed": summary.Failed}); err != nil {
			log.Error("recording run counters", "err", err)
		}
	}

	return summary, nil
}
