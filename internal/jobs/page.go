package jobs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
)

const (
	pageUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	maxRedirects    = 5
	maxPageBytes    = 5 << 20
	DefaultMaxChars = 10000
)

var (
	reScript = regexp.MustCompile(`(?is)<script[\s\S]*?</script>`)
	reStyle  = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
	reBlock  = regexp.MustCompile(`(?is)</(p|div|section|article|li|h[1-6]|tr)>|<(br|hr)\s*/?>`)
	reTags   = regexp.MustCompile(`<[^>]+>`)
)

// PageScraper fetches a job posting and extracts its readable text.
type PageScraper struct {
	client   *http.Client
	maxChars int
}

// NewPageScraper returns a PageScraper. maxChars defaults to 10000.
func NewPageScraper(timeout time.Duration, maxChars int) *PageScraper {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return &PageScraper{client: client, maxChars: maxChars}
}

// Scrape returns the posting text at rawURL, one phrase per line, truncated
// to the configured length.
func (p *PageScraper) Scrape(ctx context.Context, rawURL string) (string, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return "", err
	}
	slog.Info("Scraping job description", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", pageUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP %d for url %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}

	var text string
	article, err := readability.FromReader(bytes.NewReader(body), resp.Request.URL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		text = article.TextContent
		if article.Title != "" {
			text = article.Title + "\n" + text
		}
	} else {
		text = stripHTML(string(body))
	}
	return truncateRunes(cleanLines(text), p.maxChars), nil
}

func validateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("only http/https allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing domain in URL")
	}
	return u, nil
}

func stripHTML(s string) string {
	s = reScript.ReplaceAllString(s, "")
	s = reStyle.ReplaceAllString(s, "")
	s = reBlock.ReplaceAllString(s, "\n")
	return reTags.ReplaceAllString(s, "")
}

// cleanLines trims every line, splits runs of double spaces into separate
// lines and drops blank ones.
func cleanLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				out = append(out, phrase)
			}
		}
	}
	return strings.Join(out, "\n")
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
