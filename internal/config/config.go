package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	CacheDir  string
	OutputDir string

	URLTemplate string
	Year        int
	WeekFrom    int
	WeekTo      int

	ImageBase string
	ImageDir  string

	PacingSeconds int
	HTTPTimeoutMs int
	UserAgent     string

	TableStrategy  string
	Marker         string
	MinHeaderCells int

	StopWords []string
}

// DefaultStopWords is the union of the filler, measurement, and
// adjective drop sets used by the upstream pages. CSA_STOP_WORDS
// replaces the whole set when present.
var DefaultStopWords = []string{
	"about", "g", "lb", "lbs", "quart", "cup", "cups",
	"tsp", "tbsp", "pinches", "large", "small", "medium",
	"clove", "cloves", "of", "baby",
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "csa.db")),
		CacheDir:  getEnv("CACHE_DIR", filepath.Join(cwd, "data", "cache")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		URLTemplate: getEnv("CSA_URL_TEMPLATE", "https://front9farm.com/index.php/{year}-csa-week-{week}-recipes"),
		Year:        getEnvInt("CSA_YEAR", 2017),
		WeekFrom:    getEnvInt("CSA_WEEK_FROM", 1),
		WeekTo:      getEnvInt("CSA_WEEK_TO", 26),

		ImageBase: getEnv("CSA_IMAGE_BASE", "https://front9farm.com"),
		ImageDir:  getEnv("IMAGE_DIR", filepath.Join(cwd, "data", "imgs")),

		PacingSeconds: getEnvInt("CSA_PACING_SECONDS", 1),
		HTTPTimeoutMs: getEnvInt("HTTP_TIMEOUT_MS", 15000),
		UserAgent:     getEnv("HTTP_USER_AGENT", "csascrape/1.0"),

		TableStrategy:  getEnv("CSA_TABLE_STRATEGY", "signature"),
		Marker:         getEnv("CSA_MARKER", ""),
		MinHeaderCells: getEnvInt("CSA_MIN_HEADER_CELLS", 3),

		StopWords: getEnvList("CSA_STOP_WORDS", DefaultStopWords),
	}

	return cfg, nil
}

// Validate checks the batch options once before a run starts; this is
// the only error class that is fatal to a whole run.
func (c Config) Validate() error {
	if c.WeekFrom < 1 || c.WeekTo < c.WeekFrom {
		return fmt.Errorf("empty week range: from=%d to=%d", c.WeekFrom, c.WeekTo)
	}
	if !strings.Contains(c.URLTemplate, "{week}") {
		return fmt.Errorf("url template missing {week} placeholder: %s", c.URLTemplate)
	}
	switch c.TableStrategy {
	case "signature", "positional":
	default:
		return fmt.Errorf("unknown table strategy: %s", c.TableStrategy)
	}
	return nil
}

// PacingFloor returns the pacing delay clamped to the mandatory 1s
// minimum between consecutive fetches.
func (c Config) PacingFloor() int {
	if c.PacingSeconds < 1 {
		return 1
	}
	return c.PacingSeconds
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
