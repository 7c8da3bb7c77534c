// Package fetcher downloads raw game logs from a remote directory listing.
// It discovers .log links in the listing HTML, pulls each file under a rate
// limit, tolerates the mixed encodings of historical logs, and keeps only
// logs that reached a finished-game result.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/time/rate"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

var gameFilePattern = regexp.MustCompile(`^game(\d+)$`)

// Client fetches remote log directories. Requests share one rate limiter so
// a large listing does not hammer the archive server.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *logrus.Logger
}

// New creates a fetch client limited to requestsPerSecond.
func New(logger *logrus.Logger, requestsPerSecond float64, timeout time.Duration, userAgent string) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		userAgent: userAgent,
		logger:    logger,
	}
}

// Summary reports what one FetchDirectory run did.
type Summary struct {
	LinksFound int
	Processed  int
	Saved      []string
	Skipped    int
}

// FetchDirectory discovers every .log link under baseURL, downloads each and
// saves the ones that pass the acceptance filter into outDir as gameN files,
// continuing the existing numbering. Individual download failures are logged
// and skipped.
func (c *Client) FetchDirectory(ctx context.Context, baseURL, outDir string) (*Summary, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	links, err := c.DiscoverLogLinks(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"source_url": baseURL,
		"log_links":  len(links),
	}).Info("Discovered log links")

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &Summary{LinksFound: len(links)}
	gameNum := NextGameNumber(outDir)
	for _, link := range links {
		body, err := c.get(ctx, link)
		if err != nil {
			c.logger.WithError(err).WithField("url", link).Warn("Failed to fetch log")
			continue
		}
		summary.Processed++

		content := DecodeContent(body)
		if !Acceptable(content) {
			summary.Skipped++
			c.logger.WithField("url", link).Debug("Log skipped, no finished result")
			continue
		}

		name := fmt.Sprintf("game%d", gameNum)
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return summary, fmt.Errorf("failed to save %s: %w", path, err)
		}
		summary.Saved = append(summary.Saved, name)
		gameNum++
		c.logger.WithFields(logrus.Fields{
			"url":       link,
			"game_file": name,
		}).Info("Saved game log")
	}
	return summary, nil
}

// DiscoverLogLinks parses the directory listing at baseURL and returns the
// absolute URLs of all .log files, sorted for deterministic processing.
// Parent-directory links are skipped.
func (c *Client) DiscoverLogLinks(ctx context.Context, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid directory URL: %w", err)
	}

	body, err := c.get(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch directory page: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse directory page: %w", err)
	}

	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := attr.Val
				if !strings.HasSuffix(href, ".log") || strings.HasPrefix(href, "../") {
					continue
				}
				ref, err := url.Parse(href)
				if err != nil {
					continue
				}
				seen[base.ResolveReference(ref).String()] = true
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// DecodeContent decodes raw log bytes, trying UTF-8 (with or without BOM),
// then Shift-JIS, falling back to Latin-1 which accepts any byte sequence.
func DecodeContent(b []byte) string {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b)
	}
	if decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(b); err == nil {
		return string(decoded)
	}
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(decoded)
}

// Acceptable reports whether a log reached a finished game: its last
// non-empty line must be a result record won by WEREWOLF or VILLAGER.
func Acceptable(content string) bool {
	line := lastNonEmptyLine(content)
	if line == "" {
		return false
	}
	fields := strings.Split(line, ",")
	if len(fields) < 5 {
		return false
	}
	return fields[1] == "result" && (fields[4] == "WEREWOLF" || fields[4] == "VILLAGER")
}

// NextGameNumber returns one past the highest gameN number present in dir,
// starting at 1 for a fresh directory.
func NextGameNumber(dir string) int {
	maxNum := 0
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}
	for _, entry := range entries {
		m := gameFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if num, err := strconv.Atoi(m[1]); err == nil && num > maxNum {
			maxNum = num
		}
	}
	return maxNum + 1
}

func lastNonEmptyLine(content string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
