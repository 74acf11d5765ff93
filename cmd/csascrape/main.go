package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"csascrape/internal/batch"
	"csascrape/internal/config"
	"csascrape/internal/export"
	"csascrape/internal/fetch"
	"csascrape/internal/pipeline"
	"csascrape/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "scrape":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", cfg.Year, "share year")
		from := fs.Int("from", cfg.WeekFrom, "first week (inclusive)")
		to := fs.Int("to", cfg.WeekTo, "last week (inclusive)")
		_ = fs.Parse(os.Args[2:])
		cfg.Year, cfg.WeekFrom, cfg.WeekTo = *year, *from, *to

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		sink, err := export.NewSink(filepath.Join(cfg.OutputDir, fmt.Sprintf("csa_%d_weeks.jsonl", cfg.Year)))
		must(err)
		defer sink.Close()

		svc := pipeline.NewService(cfg, fetch.NewClient(cfg))
		runner := batch.NewRunner(cfg, svc, db, sink)
		summary, err := runner.Run(context.Background())
		must(err)
		fmt.Printf("scrape done year=%d scraped=%d failed=%d\n", cfg.Year, summary.Scraped, summary.Failed)

	case "scrape:week":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", cfg.Year, "share year")
		week := fs.Int("week", 0, "week number")
		_ = fs.Parse(os.Args[2:])
		if *week == 0 {
			must(fmt.Errorf("--week is required"))
		}

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		svc := pipeline.NewService(cfg, fetch.NewClient(cfg))
		record, err := svc.ScrapeWeek(context.Background(), *year, *week)
		must(err)
		must(db.SaveWeek(record))
		fmt.Printf("week %d/%d scraped: %d csa items, %d recipes, %d ingredients\n",
			*year, *week, len(record.CSAItems), len(record.Recipes), len(record.Ingredients))

	case "scrape:file":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "local HTML file")
		year := fs.Int("year", cfg.Year, "share year")
		week := fs.Int("week", 0, "week number")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || *week == 0 {
			must(fmt.Errorf("--input and --week are required"))
		}

		blob, err := os.ReadFile(*input)
		must(err)
		doc, err := pipeline.Parse(string(blob))
		must(err)

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		svc := pipeline.NewService(cfg, fetch.NewClient(cfg))
		record, err := svc.BuildRecord(doc, "file://"+*input, *year, *week)
		must(err)
		must(db.SaveWeek(record))
		fmt.Printf("file processed: %d csa items, %d recipes, %d ingredients\n",
			len(record.CSAItems), len(record.Recipes), len(record.Ingredients))

	case "dump:tables":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", cfg.Year, "share year")
		week := fs.Int("week", 0, "week number")
		_ = fs.Parse(os.Args[2:])
		if *week == 0 {
			must(fmt.Errorf("--week is required"))
		}

		svc := pipeline.NewService(cfg, fetch.NewClient(cfg))
		must(svc.DumpWeek(context.Background(), os.Stdout, *year, *week))

	case "images:download":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", cfg.Year, "share year")
		from := fs.Int("from", cfg.WeekFrom, "first week (inclusive)")
		to := fs.Int("to", cfg.WeekTo, "last week (inclusive)")
		_ = fs.Parse(os.Args[2:])
		cfg.Year, cfg.WeekFrom, cfg.WeekTo = *year, *from, *to

		runner := batch.NewImageRunner(cfg, fetch.NewClient(cfg))
		summary, err := runner.Run(context.Background())
		must(err)
		fmt.Printf("images done year=%d hauls=%d recipes=%d skipped=%d\n",
			cfg.Year, summary.Hauls, summary.Recipes, len(summary.SkippedWeeks))

	case "export:json":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", cfg.OutputDir, "output directory")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		hauls, err := db.ListHaulEntries()
		must(err)
		recipes, err := db.ListRecipeEntries()
		must(err)
		ingredients, err := db.ListIngredients()
		must(err)

		must(export.WriteHaulsJSON(hauls, filepath.Join(*out, "csa_hauls.json")))
		must(export.WriteRecipesJSON(recipes, filepath.Join(*out, "csa_recipes.json")))
		must(export.WriteIngredientsJSON(ingredients, filepath.Join(*out, "ingredients.json")))
		fmt.Printf("exported %d hauls, %d recipes, %d ingredients to %s\n", len(hauls), len(recipes), len(ingredients), *out)

	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		records, err := db.ListWeekRecords()
		must(err)
		recipes, err := db.ListRecipeEntries()
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("nothing scraped yet"))
		}
		must(export.WriteReviewXLSX(records, recipes, *out))
		fmt.Printf("exported %d weeks to %s\n", len(records), *out)

	case "ingredients:index":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "ingredients.json"), "output path")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		ingredients, err := db.ListIngredients()
		must(err)
		must(export.WriteIngredientsJSON(ingredients, *out))
		fmt.Printf("indexed %d unique ingredients into %s\n", len(ingredients), *out)

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: csascrape <command>")
	fmt.Println("commands:")
	fmt.Println("  scrape            --year=2017 --from=1 --to=26")
	fmt.Println("  scrape:week       --year=2017 --week=3")
	fmt.Println("  scrape:file       --input=page.html --year=2017 --week=3")
	fmt.Println("  dump:tables       --year=2017 --week=3")
	fmt.Println("  images:download   --year=2017 --from=1 --to=26")
	fmt.Println("  export:json       --out=./out")
	fmt.Println("  export:xlsx       --out=./out/review.xlsx")
	fmt.Println("  ingredients:index --out=./out/ingredients.json")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
