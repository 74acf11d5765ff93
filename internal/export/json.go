package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	"csascrape/internal"
	"csascrape/internal/storage"
)

// Sink is the append-only week-record output: one JSON object per
// line, synced after every write so a crash mid-batch loses only the
// in-flight week.
type Sink struct {
	file *os.File
	enc  *json.Encoder
}

func NewSink(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Sink{file: file, enc: json.NewEncoder(file)}, nil
}

func (s *Sink) Write(record internal.WeekRecord) error {
	if err := s.enc.Encode(record); err != nil {
		return err
	}
	return s.file.Sync()
}

func (s *Sink) Close() error {
	return s.file.Close()
}

// WriteHaulsJSON writes the csa_hauls.json shape.
func WriteHaulsJSON(entries []internal.HaulEntry, path string) error {
	return writeJSON(map[string]any{"csa_hauls": entries}, path)
}

// WriteRecipesJSON writes the csa_recipes.json shape.
func WriteRecipesJSON(entries []internal.RecipeEntry, path string) error {
	return writeJSON(map[string]any{"csa_recipes": entries}, path)
}

// WriteIngredientsJSON writes the ingredients.json catalog shape.
func WriteIngredientsJSON(rows []storage.IngredientRow, path string) error {
	return writeJSON(map[string]any{"ingredients": rows}, path)
}

func writeJSON(payload any, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}
