package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"csascrape/internal"
)

// WriteReviewXLSX writes the scraped weeks and recipes to a two-sheet
// spreadsheet for manual inspection before the JSON catalogs are
// published.
func WriteReviewXLSX(records []internal.WeekRecord, recipes []internal.RecipeEntry, outputPath string) error {
	f := excelize.NewFile()
	haulSheet := f.GetSheetName(0)
	_ = f.SetSheetName(haulSheet, "hauls")

	haulHeaders := []string{"year", "week", "time_stamp", "alias", "url", "csa_items", "recipes", "ingredients", "message"}
	for i, h := range haulHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue("hauls", cell, h)
	}

	for i, record := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue("hauls", cell, value)
		}

		set(1, record.Year)
		set(2, record.Week)
		set(3, record.TimeStamp)
		set(4, record.Alias)
		set(5, record.URL)
		set(6, strings.Join(record.CSAItems, ", "))
		set(7, strings.Join(record.Recipes, ", "))
		set(8, strings.Join(record.Ingredients, ", "))
		set(9, record.Message)
	}

	if _, err := f.NewSheet("recipes"); err != nil {
		return err
	}
	recipeHeaders := []string{"recipe_id", "alias", "picture", "csa_items", "ingredients", "paragraphs"}
	for i, h := range recipeHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue("recipes", cell, h)
	}

	for i, recipe := range recipes {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue("recipes", cell, value)
		}

		set(1, recipe.RecipeID)
		set(2, recipe.Alias)
		set(3, recipe.Picture)
		set(4, joinAliases(recipe.CSAItems))
		set(5, joinAliases(recipe.Ingredients))
		set(6, len(recipe.Message))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func joinAliases(refs []internal.AliasRef) string {
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, ref.Alias)
	}
	return strings.Join(parts, ", ")
}
