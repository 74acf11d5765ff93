package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"

	"csascrape/internal/config"
	"csascrape/internal/fetch"
	"csascrape/internal/pipeline"
)

// maxRecipeImages caps the recipe photos taken per week page; upstream
// pages occasionally embed unrelated inline images further down.
const maxRecipeImages = 5

// ImageClient is the fetch capability the image runner needs: the week
// page HTML plus raw asset downloads.
type ImageClient interface {
	Page(ctx context.Context, url string) (string, error)
	Download(ctx context.Context, url, dest string) error
}

// ImageRunner downloads the weekly haul photo and up to maxRecipeImages
// recipe photos per week into the configured image directory, laid out
// to match the asset paths on the scraped records. A missing photo or a
// missing week page is logged and skipped, same as the scrape runner.
type ImageRunner struct {
	cfg    config.Config
	client ImageClient
	pacer  pacer
}

func NewImageRunner(cfg config.Config, client ImageClient) *ImageRunner {
	return &ImageRunner{
		cfg:    cfg,
		client: client,
		pacer:  fetch.NewPacer(cfg.PacingFloor()),
	}
}

type ImageSummary struct {
	Hauls        int
	Recipes      int
	SkippedWeeks []int
}

func (r *ImageRunner) Run(ctx context.Context) (ImageSummary, error) {
	if err := r.cfg.Validate(); err != nil {
		return ImageSummary{}, err
	}

	summary := ImageSummary{}
	year := r.cfg.Year
	for week := r.cfg.WeekFrom; week <= r.cfg.WeekTo; week++ {
		r.pacer.WaitTurn()

		shareURL := r.cfg.ImageBase + pipeline.InlineImagePrefix + fmt.Sprintf("%d-csa-week-%d-share.jpg", year, week)
		haulDest := filepath.Join(r.cfg.ImageDir, "csa", strconv.Itoa(year), fmt.Sprintf("csa_haul_%d_%d.jpg", year, week))
		if err := r.client.Download(ctx, shareURL, haulDest); err != nil {
			log.Warn("no haul image", "year", year, "week", week, "err", err)
		} else {
			summary.Hauls++
		}

		raw, err := r.client.Page(ctx, fetch.WeekURL(r.cfg.URLTemplate, year, week))
		if err != nil {
			log.Error("skipping week images", "year", year, "week", week, "err", err)
			summary.SkippedWeeks = append(summary.SkippedWeeks, week)
			continue
		}
		doc, err := pipeline.Parse(raw)
		if err != nil {
			log.Error("skipping week images", "year", year, "week", week, "err", err)
			summary.SkippedWeeks = append(summary.SkippedWeeks, week)
			continue
		}

		srcs := doc.RecipeImageSources(r.cfg.ImageBase)
		if len(srcs) > maxRecipeImages {
			srcs = srcs[:maxRecipeImages]
		}
		for idx, src := range srcs {
			dest := filepath.Join(r.cfg.ImageDir, "recipes", strconv.Itoa(year), fmt.Sprintf("csa_recipe_%d_%d_%d.jpg", year, week, idx+1))
			if err := r.client.Download(ctx, r.cfg.ImageBase+src, dest); err != nil {
				log.Warn("no recipe image", "year", year, "week", week, "src", src, "err", err)
				continue
			}
			summary.Recipes++
		}
	}

	return summary, nil
}
