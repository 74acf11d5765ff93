package util

import (
	"regexp"
	"strings"
	"time"
)

var (
	reParen = regexp.MustCompile(`\(.*?\)`)
	reDigit = regexp.MustCompile(`[0-9]`)
)

type StopSet map[string]struct{}

func NewStopSet(words []string) StopSet {
	set := make(StopSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func (s StopSet) Has(word string) bool {
	_, ok := s[word]
	return ok
}

// Normalize maps a raw item label to a canonical lowercase token:
// "Baby oakleaf lettuce (about 96g)" -> "oakleaf_lettuce". Parenthetical
// asides, digits, and stop words are removed, the remaining words joined
// with underscores. The order of steps matters: digits go before word
// splitting so artifacts like "2-3" collapse to a separable "-". An
// unmatched "(" with no closing ")" is left as-is. Empty output is a
// valid return; callers discard it.
func Normalize(text string, stop StopSet) string {
	t := strings.ToLower(strings.TrimSpace(text))
	t = reParen.ReplaceAllString(t, "")
	t = reDigit.ReplaceAllString(t, "")
	t = strings.NewReplacer(",", " ", ".", " ", "/", " ").Replace(t)

	words := strings.Fields(t)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if stop.Has(w) {
			continue
		}
		kept = append(kept, w)
	}

	return strings.Trim(strings.Join(kept, "_"), "_")
}

// WeekDate returns the date of a share week: the first Monday in May
// plus 7*(week-1) days.
func WeekDate(year, week int) time.Time {
	d := time.Date(year, time.May, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 7*(week-1))
}

// TimeStamp renders a week date in the YYYY_MM_DD form the exported
// JSON uses.
func TimeStamp(year, week int) string {
	return WeekDate(year, week).Format("2006_01_02")
}

func DedupePreserveOrder(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
