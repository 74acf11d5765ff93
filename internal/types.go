package internal

import (
	"errors"
	"fmt"
)

// Cell is one table cell. Label marks cells that were semantic row
// labels in the source markup (th elements).
type Cell struct {
	Text  string
	Label bool
}

type Row []Cell

// Table is an ordered sequence of rows; the first row is conventionally
// a header. Tables with zero rows are discarded before classification.
type Table struct {
	Rows []Row
}

func (t Table) HeaderRow() (Row, bool) {
	if len(t.Rows) == 0 {
		return nil, false
	}
	return t.Rows[0], true
}

// ClassifiedTables binds each page table to its role. RecipeHeader is
// the table whose first row carries the recipe names; on 2-table pages
// it is the contents table itself.
type ClassifiedTables struct {
	Contents     Table
	Ingredients  Table
	RecipeHeader Table
}

type RecipeDetail struct {
	Alias        string   `json:"alias"`
	Picture      string   `json:"picture"`
	CSAItems     []string `json:"csa_items"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions,omitempty"`
}

// WeekRecord is the one entity that crosses the pipeline boundary.
// CSAItems and Ingredients hold normalized tokens; Recipes hold the raw
// display strings from the header row.
type WeekRecord struct {
	Year          int            `json:"year"`
	Week          int            `json:"week"`
	URL           string         `json:"url"`
	TimeStamp     string         `json:"time_stamp"`
	Title         string         `json:"title"`
	Alias         string         `json:"alias"`
	Picture       string         `json:"picture"`
	Message       string         `json:"message,omitempty"`
	CSAItems      []string       `json:"csa_items"`
	Recipes       []string       `json:"recipes"`
	Ingredients   []string       `json:"ingredients"`
	RecipeDetails []RecipeDetail `json:"-"`
}

// AliasRef is the {product_id, alias} pair used throughout the exported
// JSON. ProductID stays "leave_empty" until assigned by hand downstream.
type AliasRef struct {
	ProductID string `json:"product_id"`
	Alias     string `json:"alias"`
}

type HaulEntry struct {
	TimeStamp string     `json:"time_stamp"`
	Title     string     `json:"title"`
	Alias     string     `json:"alias"`
	Picture   string     `json:"picture"`
	CSAItems  []AliasRef `json:"csa_items"`
	Message   string     `json:"message,omitempty"`
}

type RecipeEntry struct {
	RecipeID    string              `json:"recipe_id"`
	Alias       string              `json:"alias"`
	Picture     string              `json:"picture"`
	CSAItems    []AliasRef          `json:"csa_items"`
	Ingredients []AliasRef          `json:"ingredients"`
	Message     []map[string]string `json:"message,omitempty"`
}

// Pipeline stages, used to tag per-week failures.
const (
	StageFetch   = "fetch"
	StageParse   = "parse"
	StageLocate  = "locate"
	StageExtract = "extract"
)

var (
	// ErrFetchFailed covers network and HTTP-status failures. An empty
	// 200 body is reported separately so the two are distinguishable.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrEmptyPage means the server answered but sent no usable body.
	ErrEmptyPage = errors.New("empty page")

	// ErrInsufficientTables means the page has fewer tables than the
	// active classification strategy requires.
	ErrInsufficientTables = errors.New("insufficient table structure")

	// ErrAmbiguousTables means signature matching found the wrong
	// number of candidate tables. The pipeline never guesses.
	ErrAmbiguousTables = errors.New("ambiguous table structure")
)

// WeekError tags a per-week failure with the failing stage so the batch
// runner can log it and continue with the next week.
type WeekError struct {
	Year  int
	Week  int
	Stage string
	Err   error
}

func (e *WeekError) Error() string {
	return fmt.Sprintf("week %d/%d %s: %v", e.Year, e.Week, e.Stage, e.Err)
}

func (e *WeekError) Unwrap() error { return e.Err }
