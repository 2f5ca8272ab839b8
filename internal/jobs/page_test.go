package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const postingFixture = `<!DOCTYPE html><html><head><title>Senior Data Scientist - Acme</title>
<style>.x{color:red}</style><script>var tracking = 1;</script></head>
<body><nav>Home | Jobs</nav>
<article>
<h1>Senior Data Scientist</h1>
<p>Acme is hiring a senior data scientist to build forecasting models for our logistics platform.
You will work with product and engineering teams on experimentation, causal inference and model deployment.</p>
<h2>Requirements</h2>
<ul><li>5+ years of Python and SQL</li><li>Experience with A/B testing and statistics</li><li>Strong communication skills with stakeholders</li></ul>
<p>We offer competitive pay, remote flexibility and a generous learning budget for every member of the team.</p>
</article></body></html>`

func TestPageScraper_ExtractsText(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.UserAgent()
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(postingFixture))
	}))
	defer srv.Close()

	text, err := NewPageScraper(0, 0).Scrape(context.Background(), srv.URL+"/job/1")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if !strings.Contains(text, "5+ years of Python and SQL") {
		t.Errorf("missing requirement text: %q", text)
	}
	if strings.Contains(text, "tracking") || strings.Contains(text, "color:red") {
		t.Errorf("scripts or styles leaked: %q", text)
	}
	if strings.Contains(text, "\n\n") {
		t.Error("blank lines must be collapsed")
	}
	if !strings.Contains(ua, "Mozilla/5.0") {
		t.Errorf("user agent = %q", ua)
	}
}

func TestPageScraper_Truncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(postingFixture))
	}))
	defer srv.Close()

	text, err := NewPageScraper(0, 40).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(text) > 40 {
		t.Errorf("len = %d", len(text))
	}
}

func TestPageScraper_Errors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := NewPageScraper(0, 0)
	if _, err := p.Scrape(context.Background(), srv.URL); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 error, got %v", err)
	}
	if _, err := p.Scrape(context.Background(), "ftp://example.com/job"); err == nil {
		t.Error("non-http scheme must fail")
	}
}

func TestCleanLines(t *testing.T) {
	got := cleanLines("  Title  \n\n\n Location:  Austin \n")
	if got != "Title\nLocation:\nAustin" {
		t.Errorf("cleanLines = %q", got)
	}
}
