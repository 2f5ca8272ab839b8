package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const indeedFixture = `<html><body>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/viewjob?jk=1">Data Scientist</a></h2>
  <span class="companyName">Acme</span>
  <div class="companyLocation">Austin, TX</div>
  <div class="salary-snippet">$120,000 - $140,000 a year</div>
  <div class="job-snippet">Build   models.</div>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/viewjob?jk=2">Data Analyst</a></h2>
  <span class="companyName">Globex</span>
  <div class="companyLocation">Remote</div>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/viewjob?jk=3">No Company</a></h2>
</div>
</body></html>`

const remoteOKFixture = `<html><body><table id="jobsboard">
<tr class="job"><td></td><td></td><td><a href="/remote-jobs/9"><h2>Data Scientist</h2></a><h3>Acme</h3><div class="tags">python sql</div></td></tr>
<tr class="job"><td></td><td></td><td><a href="/remote-jobs/10"><h2>ML Engineer</h2></a><h3>Initech</h3><div class="salary">$150k</div></td></tr>
</table></body></html>`

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "data scientist" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(indeedFixture))
	})
	mux.HandleFunc("/remote-data-scientist-jobs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(remoteOKFixture))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testBoards(t *testing.T, base string, names ...string) []Board {
	t.Helper()
	boards, err := BoardsByName(names)
	if err != nil {
		t.Fatal(err)
	}
	for i := range boards {
		boards[i].BaseURL = base
	}
	return boards
}

func fastOptions() ScraperOptions {
	return ScraperOptions{RequestInterval: time.Millisecond, Burst: 10, Timeout: 5 * time.Second}
}

func TestScraper_MergesAndDedupes(t *testing.T) {
	srv := fixtureServer(t)
	s := NewScraper(testBoards(t, srv.URL, BoardIndeed, BoardRemoteOK), fastOptions())

	got, err := s.Search(context.Background(), Query{Term: "data scientist", Location: "Austin", Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 listings, got %d: %+v", len(got), got)
	}
	seen := map[string]Listing{}
	for _, l := range got {
		seen[l.Title+"|"+l.Company] = l
	}
	ds, ok := seen["Data Scientist|Acme"]
	if !ok {
		t.Fatal("missing Data Scientist at Acme")
	}
	if ds.Site == "Indeed" {
		if ds.Salary != "$120,000 - $140,000 a year" || ds.Summary != "Build models." {
			t.Errorf("indeed listing = %+v", ds)
		}
		if !strings.HasSuffix(ds.URL, "/viewjob?jk=1") {
			t.Errorf("url = %q", ds.URL)
		}
	}
	ml := seen["ML Engineer|Initech"]
	if ml.Location != "Remote" || ml.Salary != "$150k" || !strings.HasSuffix(ml.URL, "/remote-jobs/10") {
		t.Errorf("remoteok listing = %+v", ml)
	}
}

func TestScraper_Limit(t *testing.T) {
	srv := fixtureServer(t)
	s := NewScraper(testBoards(t, srv.URL, BoardIndeed), fastOptions())
	got, err := s.Search(context.Background(), Query{Term: "data scientist", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d listings", len(got))
	}
}

func TestScraper_FailingBoardSkipped(t *testing.T) {
	srv := fixtureServer(t)
	boards := testBoards(t, srv.URL, BoardIndeed, BoardWeWorkRemotely)
	s := NewScraper(boards, fastOptions())

	got, err := s.Search(context.Background(), Query{Term: "data scientist", Limit: 10})
	if err != nil {
		t.Fatalf("one healthy board should be enough: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d listings", len(got))
	}
}

func TestScraper_AllBoardsFail(t *testing.T) {
	srv := fixtureServer(t)
	s := NewScraper(testBoards(t, srv.URL, BoardIndeed), fastOptions())
	if _, err := s.Search(context.Background(), Query{Term: "plumber"}); err == nil {
		t.Fatal("expected error when every board fails")
	}
	if _, err := s.Search(context.Background(), Query{Term: "  "}); err == nil {
		t.Fatal("expected error for empty term")
	}
}

func TestBoardsByName(t *testing.T) {
	all, err := BoardsByName(nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("default boards = %d, %v", len(all), err)
	}
	if _, err := BoardsByName([]string{"monster"}); err == nil {
		t.Error("unknown board must fail")
	}
	ro := DefaultBoards()[BoardRemoteOK]
	if got := ro.SearchURL(Query{Term: "Data Scientist (Senior)"}); got != "https://remoteok.com/remote-data-scientist-senior-jobs" {
		t.Errorf("SearchURL = %q", got)
	}
}
