package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:126.0) Gecko/20100101 Firefox/126.0",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// ScraperOptions tune board scraping.
type ScraperOptions struct {
	// RequestInterval and Burst shape the limiter shared by all boards.
	RequestInterval time.Duration
	Burst           int
	Timeout         time.Duration
	UserAgent       string
	Transport       http.RoundTripper
}

func (o ScraperOptions) withDefaults() ScraperOptions {
	if o.RequestInterval <= 0 {
		o.RequestInterval = 2 * time.Second
	}
	if o.Burst <= 0 {
		o.Burst = 2
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	return o
}

// Scraper searches a set of boards concurrently and merges the results.
type Scraper struct {
	boards  []Board
	limiter *rate.Limiter
	opts    ScraperOptions
}

func NewScraper(boards []Board, opts ScraperOptions) *Scraper {
	opts = opts.withDefaults()
	return &Scraper{
		boards:  boards,
		limiter: rate.NewLimiter(rate.Every(opts.RequestInterval), opts.Burst),
		opts:    opts,
	}
}

// Search queries every board, de-duplicates by (title, company) and caps the
// result at q.Limit. A failing board is logged and skipped; the search fails
// only when every board fails.
func (s *Scraper) Search(ctx context.Context, q Query) ([]Listing, error) {
	if strings.TrimSpace(q.Term) == "" {
		return nil, errors.New("search term is required")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	results := make([][]Listing, len(s.boards))
	errs := make([]error, len(s.boards))
	var g errgroup.Group
	for i, b := range s.boards {
		g.Go(func() error {
			results[i], errs[i] = s.scrape(ctx, b, q)
			if errs[i] != nil {
				slog.Warn("Job board scrape failed", "board", b.Name, "term", q.Term, "err", errs[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	var all []Listing
	failed := 0
	for i := range s.boards {
		if errs[i] != nil {
			failed++
			continue
		}
		all = append(all, results[i]...)
	}
	if len(s.boards) > 0 && failed == len(s.boards) {
		return nil, fmt.Errorf("all job boards failed: %w", errors.Join(errs...))
	}

	all = Dedupe(all)
	if len(all) > q.Limit {
		all = all[:q.Limit]
	}
	slog.Info("Job search", "term", q.Term, "location", q.Location, "boards", len(s.boards), "results", len(all))
	return all, nil
}

func (s *Scraper) scrape(ctx context.Context, b Board, q Query) ([]Listing, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ua := s.opts.UserAgent
	if ua == "" {
		ua = randomUserAgent()
	}
	c := colly.NewCollector(colly.UserAgent(ua), colly.AllowURLRevisit())
	c.SetRequestTimeout(s.opts.Timeout)
	if s.opts.Transport != nil {
		c.WithTransport(s.opts.Transport)
	}
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	})

	var (
		mu       sync.Mutex
		listings []Listing
	)
	sel := b.Selectors
	c.OnHTML(sel.Container, func(e *colly.HTMLElement) {
		l := Listing{
			Site:       b.Name,
			Title:      childText(e, sel.Title),
			Company:    childText(e, sel.Company),
			Location:   childText(e, sel.Location),
			Salary:     childText(e, sel.Salary),
			Summary:    childText(e, sel.Summary),
			PostedDate: childText(e, sel.Posted),
		}
		if l.Title == "" || l.Company == "" {
			return
		}
		if l.Location == "" && b.Remote {
			l.Location = "Remote"
		}
		if sel.Link != "" {
			if href := e.ChildAttr(sel.Link, "href"); href != "" {
				l.URL = e.Request.AbsoluteURL(href)
			}
		}
		if l.URL == "" {
			l.URL = e.Request.URL.String()
		}

		mu.Lock()
		defer mu.Unlock()
		if len(listings) < q.Limit {
			listings = append(listings, l)
		}
	})

	if err := c.Visit(b.SearchURL(q)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", b.Name, err)
	}
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	return listings, nil
}

func childText(e *colly.HTMLElement, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.Join(strings.Fields(e.ChildText(selector)), " ")
}
