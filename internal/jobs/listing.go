// Package jobs scrapes job boards and job posting pages and generates
// application documents.
package jobs

import (
	"context"
	"fmt"
	"strings"
)

// Listing is one job posting scraped from a board.
type Listing struct {
	Site       string `json:"site"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location,omitempty"`
	Salary     string `json:"salary,omitempty"`
	Summary    string `json:"summary,omitempty"`
	PostedDate string `json:"posted_date,omitempty"`
	URL        string `json:"url,omitempty"`
}

// Query is a board search.
type Query struct {
	Term     string
	Location string
	Limit    int
}

// Source searches one or more job boards.
type Source interface {
	Search(ctx context.Context, q Query) ([]Listing, error)
}

// FormatListings renders listings as a numbered plain-text list.
func FormatListings(listings []Listing) string {
	if len(listings) == 0 {
		return "No jobs found for that search."
	}
	var sb strings.Builder
	for i, l := range listings {
		fmt.Fprintf(&sb, "%d. %s at %s", i+1, l.Title, l.Company)
		if l.Location != "" {
			fmt.Fprintf(&sb, " (%s)", l.Location)
		}
		if l.Salary != "" {
			fmt.Fprintf(&sb, " - %s", l.Salary)
		}
		if l.Site != "" {
			fmt.Fprintf(&sb, " [%s]", l.Site)
		}
		sb.WriteByte('\n')
		if l.Summary != "" {
			fmt.Fprintf(&sb, "   %s\n", l.Summary)
		}
		if l.URL != "" {
			fmt.Fprintf(&sb, "   %s\n", l.URL)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
