package jobs

import (
	"fmt"
	"net/url"
	"strings"
)

// Selectors are the CSS selectors that pick a listing apart on a board's
// search results page. Container is matched once per listing; the others
// are relative to it.
type Selectors struct {
	Container string
	Title     string
	Company   string
	Location  string
	Salary    string
	Summary   string
	Posted    string
	Link      string
}

// Board describes one job board.
type Board struct {
	Name    string
	BaseURL string

	// Path builds the search path and query for q, relative to BaseURL.
	Path func(q Query) string

	Selectors Selectors

	// Remote boards only list remote jobs; listings without a location are
	// marked "Remote".
	Remote bool
}

// SearchURL returns the results page URL for q.
func (b Board) SearchURL(q Query) string {
	return strings.TrimRight(b.BaseURL, "/") + b.Path(q)
}

const (
	BoardIndeed         = "indeed"
	BoardRemoteOK       = "remoteok"
	BoardWeWorkRemotely = "weworkremotely"
)

// DefaultBoards returns the built-in boards keyed by name.
func DefaultBoards() map[string]Board {
	return map[string]Board{
		BoardIndeed: {
			Name:    "Indeed",
			BaseURL: "https://www.indeed.com",
			Path: func(q Query) string {
				return fmt.Sprintf("/jobs?q=%s&l=%s", url.QueryEscape(q.Term), url.QueryEscape(q.Location))
			},
			Selectors: Selectors{
				Container: ".job_seen_beacon",
				Title:     ".jobTitle",
				Company:   ".companyName",
				Location:  ".companyLocation",
				Salary:    ".salary-snippet",
				Summary:   ".job-snippet",
				Posted:    ".date",
				Link:      ".jobTitle a",
			},
		},
		BoardRemoteOK: {
			Name:    "RemoteOK",
			BaseURL: "https://remoteok.com",
			Path: func(q Query) string {
				return "/remote-" + slug(q.Term) + "-jobs"
			},
			Selectors: Selectors{
				Container: "table#jobsboard tr.job",
				Title:     "td:nth-child(3) h2",
				Company:   "td:nth-child(3) h3",
				Location:  "td:nth-child(3) .location",
				Salary:    "td:nth-child(3) .salary",
				Summary:   "td:nth-child(3) .tags",
				Posted:    "td.time",
				Link:      "td:nth-child(3) a",
			},
			Remote: true,
		},
		BoardWeWorkRemotely: {
			Name:    "WeWorkRemotely",
			BaseURL: "https://weworkremotely.com",
			Path: func(q Query) string {
				return "/remote-jobs/search?term=" + url.QueryEscape(q.Term)
			},
			Selectors: Selectors{
				Container: "section.jobs article",
				Title:     "h2",
				Company:   ".company",
				Location:  ".region",
				Posted:    "time",
				Link:      "a",
			},
			Remote: true,
		},
	}
}

// BoardsByName picks boards from DefaultBoards. Unknown names are an error;
// no names selects every board.
func BoardsByName(names []string) ([]Board, error) {
	all := DefaultBoards()
	if len(names) == 0 {
		names = []string{BoardIndeed, BoardRemoteOK, BoardWeWorkRemotely}
	}
	out := make([]Board, 0, len(names))
	for _, n := range names {
		b, ok := all[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown job board %q", n)
		}
		out = append(out, b)
	}
	return out, nil
}

func slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(sb.String(), "-")
}
