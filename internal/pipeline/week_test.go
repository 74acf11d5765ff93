package pipeline

import (
	"context"
	"errors"
	"testing"

	"csascrape/internal"
	"csascrape/internal/config"
)

const weekPage = `
<h2>Welcome to CSA Week 3!</h2>
<table>
  <tr><td></td><td>Lovage Soup</td><td>Beet Salad</td><td>Kale Pie</td><td>Herb Butter</td></tr>
  <tr><th>Baby oakleaf lettuce (about 96g)</th><td>x</td><td></td><td></td><td></td></tr>
  <tr><th>Beets (2 lb)</th><td></td><td>x</td><td></td><td></td></tr>
  <tr><th>Kale</th><td></td><td></td><td>x</td><td></td></tr>
  <tr><th>Lovage</th><td>x</td><td></td><td></td><td>x</td></tr>
</table>
<table>
  <tr><td></td><td>Lovage Soup</td><td>Beet Salad</td><td>Kale Pie</td><td>Herb Butter</td></tr>
  <tr><th>Olive oil (2 tbsp)</th><td>x</td><td>x</td><td></td><td></td></tr>
  <tr><th>Butter</th><td></td><td></td><td>x</td><td>x</td></tr>
</table>
<h3>Lovage Soup</h3>
<p>Chop the lovage.</p>
<p>Simmer for an hour.</p>`

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Page(_ context.Context, url string) (string, error) {
	page, ok := f.pages[url]
	if !ok {
		return "", internal.ErrFetchFailed
	}
	return page, nil
}

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

func TestScrapeWeek(t *testing.T) {
	cfg := testConfig()
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://farm.test/2017-week-3": weekPage,
	}}
	svc := NewService(cfg, fetcher)

	record, err := svc.ScrapeWeek(context.Background(), 2017, 3)
	if err != nil {
		t.Fatal(err)
	}

	if record.Week != 3 || record.URL != "https://farm.test/2017-week-3" {
		t.Fatalf("record meta: %+v", record)
	}
	if record.TimeStamp != "2017_05_15" {
		t.Fatalf("timestamp = %q", record.TimeStamp)
	}
	if record.Message != "Welcome to CSA Week 3!" {
		t.Fatalf("message = %q", record.Message)
	}

	if len(record.Recipes) != 4 || record.Recipes[0] != "Lovage Soup" {
		t.Fatalf("recipes = %v", record.Recipes)
	}
	wantItems := []string{"oakleaf_lettuce", "beets", "kale", "lovage"}
	if len(record.CSAItems) != len(wantItems) {
		t.Fatalf("csa items = %v", record.CSAItems)
	}
	for i := range wantItems {
		if record.CSAItems[i] != wantItems[i] {
			t.Fatalf("csa items = %v, want %v", record.CSAItems, wantItems)
		}
	}
	if len(record.Ingredients) != 2 || record.Ingredients[0] != "olive_oil" || record.Ingredients[1] != "butter" {
		t.Fatalf("ingredients = %v", record.Ingredients)
	}

	if len(record.RecipeDetails) != 4 {
		t.Fatalf("details = %v", record.RecipeDetails)
	}
	soup := record.RecipeDetails[0]
	if len(soup.CSAItems) != 2 || soup.CSAItems[0] != "oakleaf_lettuce" || soup.CSAItems[1] != "lovage" {
		t.Fatalf("soup csa items = %v", soup.CSAItems)
	}
	if len(soup.Ingredients) != 1 || soup.Ingredients[0] != "olive_oil" {
		t.Fatalf("soup ingredients = %v", soup.Ingredients)
	}
	if len(soup.Instructions) != 2 {
		t.Fatalf("soup instructions = %v", soup.Instructions)
	}
	if soup.Picture != "assets/imgs/recipes/2017/csa_recipe_2017_3_1.jpg" {
		t.Fatalf("soup picture = %q", soup.Picture)
	}
}

func TestScrapeWeekFetchFailure(t *testing.T) {
	svc := NewService(testConfig(), &fakeFetcher{pages: map[string]string{}})

	_, err := svc.ScrapeWeek(context.Background(), 2017, 9)
	var weekErr *internal.WeekError
	if !errors.As(err, &weekErr) {
		t.Fatalf("err = %v, want *WeekError", err)
	}
	if weekErr.Stage != internal.StageFetch || weekErr.Week != 9 {
		t.Fatalf("weekErr = %+v", weekErr)
	}
	if !errors.Is(err, internal.ErrFetchFailed) {
		t.Fatal("cause should unwrap to ErrFetchFailed")
	}
}

func TestScrapeWeekAmbiguousTables(t *testing.T) {
	page := `<table><tr><td></td><td>Lovage Soup</td></tr><tr><th>Kale</th><td>x</td></tr></table>`
	svc := NewService(testConfig(), &fakeFetcher{pages: map[string]string{
		"https://farm.test/2017-week-4": page,
	}})

	_, err := svc.ScrapeWeek(context.Background(), 2017, 4)
	var weekErr *internal.WeekError
	if !errors.As(err, &weekErr) {
		t.Fatalf("err = %v", err)
	}
	if weekErr.Stage != internal.StageLocate {
		t.Fatalf("stage = %q", weekErr.Stage)
	}
	if !errors.Is(err, internal.ErrAmbiguousTables) {
		t.Fatalf("cause = %v", err)
	}
}
