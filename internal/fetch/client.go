package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"csascrape/internal"
	"csascrape/internal/config"
)

// Client fetches weekly share pages. A fetched page is cached on disk
// and served from the cache on later runs. There is no retry loop; a
// failed week is skipped by the batch runner.
type Client struct {
	http     *resty.Client
	cacheDir string
}

func NewClient(cfg config.Config) *Client {
	httpClient := resty.New().
		SetTimeout(time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond).
		SetHeader("User-Agent", cfg.UserAgent)
	return &Client{http: httpClient, cacheDir: cfg.CacheDir}
}

// WeekURL substitutes the year and week into the page URL template.
func WeekURL(template string, year, week int) string {
	out := strings.ReplaceAll(template, "{year}", strconv.Itoa(year))
	return strings.ReplaceAll(out, "{week}", strconv.Itoa(week))
}

// Page returns the raw HTML for a URL. HTTP-level failure is reported
// as ErrFetchFailed; a 200 with a blank body as ErrEmptyPage.
func (c *Client) Page(ctx context.Context, url string) (string, error) {
	if body, ok := c.cached(url); ok {
		return body, nil
	}

	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", internal.ErrFetchFailed, err)
	}
	if res.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: status %d for %s", internal.ErrFetchFailed, res.StatusCode(), url)
	}

	body := string(res.Body())
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("%w: %s", internal.ErrEmptyPage, url)
	}

	c.store(url, body)
	return body, nil
}

// Download saves a binary asset to dest. A file already on disk is
// left alone; a missing or failed asset is reported as ErrFetchFailed.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("%w: %v", internal.ErrFetchFailed, err)
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: status %d for %s", internal.ErrFetchFailed, res.StatusCode(), url)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, res.Body(), 0o644)
}

func (c *Client) cached(url string) (string, bool) {
	if c.cacheDir == "" {
		return "", false
	}
	blob, err := os.ReadFile(c.cachePath(url))
	if err != nil {
		return "", false
	}
	return string(blob), true
}

func (c *Client) store(url, body string) {
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(c.cachePath(url), []byte(body), 0o644)
}

func (c *Client) cachePath(url string) string {
	return filepath.Join(c.cacheDir, sanitizeFilename(url)+".html")
}

func sanitizeFilename(url string) string {
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")
	repl := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "?", "_", "*", "_", "<", "_", ">", "_", "|", "_", "\"", "_", " ", "_")
	out := repl.Replace(url)
	if len(out) > 150 {
		out = out[:150]
	}
	return out
}
