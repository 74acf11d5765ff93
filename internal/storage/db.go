package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"csascrape/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS hauls (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  year INTEGER NOT NULL,
  week INTEGER NOT NULL,
  url TEXT NOT NULL,
  timeStamp TEXT NOT NULL,
  title TEXT NOT NULL,
  alias TEXT NOT NULL,
  picture TEXT NOT NULL,
  message TEXT,
  csaItemsJson TEXT NOT NULL,
  recipesJson TEXT NOT NULL,
  ingredientsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(year, week)
);
CREATE INDEX IF NOT EXISTS idx_hauls_year ON hauls(year);

CREATE TABLE IF NOT EXISTS recipe_ids (
  recipeId TEXT PRIMARY KEY,
  alias TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS recipes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  recipeId TEXT NOT NULL,
  alias TEXT NOT NULL,
  year INTEGER NOT NULL,
  week INTEGER NOT NULL,
  picture TEXT NOT NULL,
  csaItemsJson TEXT NOT NULL,
  ingredientsJson TEXT NOT NULL,
  instructionsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(year, week, alias),
  FOREIGN KEY(recipeId) REFERENCES recipe_ids(recipeId)
);

CREATE TABLE IF NOT EXISTS ingredients (
  ingredientId TEXT PRIMARY KEY,
  alias TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  startedAt TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// SaveWeek persists one processed week: the haul row, the week's recipe
// rows, and new entries in the stable recipe/ingredient ID catalogs.
// IDs are 3-digit zero-padded strings assigned once per alias and
// reused on every later run.
func (d *DB) SaveWeek(record internal.WeekRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	csaJSON, _ := json.Marshal(record.CSAItems)
	recipesJSON, _ := json.Marshal(record.Recipes)
	ingredientsJSON, _ := json.Marshal(record.Ingredients)

	if _, err := tx.Exec(`
INSERT INTO hauls (year, week, url, timeStamp, title, alias, picture, message, csaItemsJson, recipesJson, ingredientsJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(year, week) DO UPDATE SET
  url=excluded.url,
  timeStamp=excluded.timeStamp,
  title=excluded.title,
  alias=excluded.alias,
  picture=excluded.picture,
  message=excluded.message,
  csaItemsJson=excluded.csaItemsJson,
  recipesJson=excluded.recipesJson,
  ingredientsJson=excluded.ingredientsJson,
  updatedAt=CURRENT_TIMESTAMP
`, record.Year, record.Week, record.URL, record.TimeStamp, record.Title, record.Alias, record.Picture, record.Message,
		string(csaJSON), string(recipesJSON), string(ingredientsJSON)); err != nil {
		return err
	}

	for _, detail := range record.RecipeDetails {
		recipeID, err := ensureID(tx, "recipe_ids", "recipeId", detail.Alias)
		if err != nil {
			return err
		}

		itemsJSON, _ := json.Marshal(detail.CSAItems)
		extrasJSON, _ := json.Marshal(detail.Ingredients)
		stepsJSON, _ := json.Marshal(detail.Instructions)
		if _, err := tx.Exec(`
INSERT INTO recipes (recipeId, alias, year, week, picture, csaItemsJson, ingredientsJson, instructionsJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(year, week, alias) DO UPDATE SET
  recipeId=excluded.recipeId,
  picture=excluded.picture,
  csaItemsJson=excluded.csaItemsJson,
  ingredientsJson=excluded.ingredientsJson,
  instructionsJson=excluded.instructionsJson
`, recipeID, detail.Alias, record.Year, record.Week, detail.Picture, string(itemsJSON), string(extrasJSON), string(stepsJSON)); err != nil {
			return err
		}
	}

	for _, token := range record.Ingredients {
		if _, err := ensureID(tx, "ingredients", "ingredientId", token); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ensureID looks an alias up in an ID catalog table and assigns the
// next sequential 3-digit ID when it is new.
func ensureID(tx *sql.Tx, table, idColumn, alias string) (string, error) {
	var id string
	err := tx.QueryRow(fmt.Sprintf(`SELECT %s FROM %s WHERE alias = ?`, idColumn, table), alias).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	var max sql.NullInt64
	if err := tx.QueryRow(fmt.Sprintf(`SELECT MAX(CAST(%s AS INTEGER)) FROM %s`, idColumn, table)).Scan(&max); err != nil {
		return "", err
	}
	id = fmt.Sprintf("%03d", max.Int64+1)
	if _, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s (%s, alias) VALUES (?, ?)`, table, idColumn), id, alias); err != nil {
		return "", err
	}
	return id, nil
}

func (d *DB) ListWeekRecords() ([]internal.WeekRecord, error) {
	rows, err := d.conn.Query(`
SELECT year, week, url, timeStamp, title, alias, picture, COALESCE(message, ''), csaItemsJson, recipesJson, ingredientsJson
FROM hauls ORDER BY year ASC, week ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.WeekRecord
	for rows.Next() {
		var r internal.WeekRecord
		var csaJSON, recipesJSON, ingredientsJSON string
		if err := rows.Scan(&r.Year, &r.Week, &r.URL, &r.TimeStamp, &r.Title, &r.Alias, &r.Picture, &r.Message, &csaJSON, &recipesJSON, &ingredientsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(csaJSON), &r.CSAItems); err != nil {
			return nil, fmt.Errorf("haul %d/%d csa items: %w", r.Year, r.Week, err)
		}
		if err := json.Unmarshal([]byte(recipesJSON), &r.Recipes); err != nil {
			return nil, fmt.Errorf("haul %d/%d recipes: %w", r.Year, r.Week, err)
		}
		if err := json.Unmarshal([]byte(ingredientsJSON), &r.Ingredients); err != nil {
			return nil, fmt.Errorf("haul %d/%d ingredients: %w", r.Year, r.Week, err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

func (d *DB) ListHaulEntries() ([]internal.HaulEntry, error) {
	records, err := d.ListWeekRecords()
	if err != nil {
		return nil, err
	}

	out := make([]internal.HaulEntry, 0, len(records))
	for _, r := range records {
		entry := internal.HaulEntry{
			TimeStamp: r.TimeStamp,
			Title:     r.Title,
			Alias:     r.Alias,
			Picture:   r.Picture,
			CSAItems:  aliasRefs(r.CSAItems),
			Message:   r.Message,
		}
		out = append(out, entry)
	}
	return out, nil
}

func (d *DB) ListRecipeEntries() ([]internal.RecipeEntry, error) {
	rows, err := d.conn.Query(`
SELECT recipeId, alias, picture, csaItemsJson, ingredientsJson, instructionsJson
FROM recipes ORDER BY year ASC, week ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RecipeEntry
	for rows.Next() {
		var entry internal.RecipeEntry
		var itemsJSON, extrasJSON, stepsJSON string
		if err := rows.Scan(&entry.RecipeID, &entry.Alias, &entry.Picture, &itemsJSON, &extrasJSON, &stepsJSON); err != nil {
			return nil, err
		}

		var items, extras, steps []string
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			return nil, fmt.Errorf("recipe %s %q csa items: %w", entry.RecipeID, entry.Alias, err)
		}
		if err := json.Unmarshal([]byte(extrasJSON), &extras); err != nil {
			return nil, fmt.Errorf("recipe %s %q ingredients: %w", entry.RecipeID, entry.Alias, err)
		}
		if err := json.Unmarshal([]byte(stepsJSON), &steps); err != nil {
			return nil, fmt.Errorf("recipe %s %q instructions: %w", entry.RecipeID, entry.Alias, err)
		}
		entry.CSAItems = aliasRefs(items)
		entry.Ingredients = aliasRefs(extras)
		if len(steps) > 0 {
			paragraphs := map[string]string{}
			for i, step := range steps {
				paragraphs[fmt.Sprintf("paragraph_%d", i+1)] = step
			}
			entry.Message = []map[string]string{paragraphs}
		}
		out = append(out, entry)
	}

	return out, rows.Err()
}

type IngredientRow struct {
	IngredientID string `json:"ingredient_id"`
	Alias        string `json:"alias"`
}

func (d *DB) ListIngredients() ([]IngredientRow, error) {
	rows, err := d.conn.Query(`SELECT ingredientId, alias FROM ingredients ORDER BY CAST(ingredientId AS INTEGER) ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IngredientRow
	for rows.Next() {
		var row IngredientRow
		if err := rows.Scan(&row.IngredientID, &row.Alias); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(startedAt string, counts map[string]int) error {
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (startedAt, countsJson) VALUES (?, ?)`, startedAt, string(countsJSON))
	return err
}

// aliasRefs wraps tokens in the exported {product_id, alias} shape;
// product IDs are assigned by hand downstream, so they start out as the
// "leave_empty" placeholder.
func aliasRefs(tokens []string) []internal.AliasRef {
	out := make([]internal.AliasRef, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, internal.AliasRef{ProductID: "leave_empty", Alias: token})
	}
	return out
}
