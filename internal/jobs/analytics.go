package jobs

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Dedupe drops listings whose (title, company) pair was already seen,
// keeping the first.
func Dedupe(listings []Listing) []Listing {
	seen := make(map[string]bool, len(listings))
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		id := strings.ToLower(strings.TrimSpace(l.Title)) + "|" + strings.ToLower(strings.TrimSpace(l.Company))
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, l)
	}
	return out
}

// FilterCompany keeps listings whose company contains name, case-insensitively.
func FilterCompany(listings []Listing, name string) []Listing {
	name = strings.ToLower(strings.TrimSpace(name))
	var out []Listing
	for _, l := range listings {
		if name != "" && strings.Contains(strings.ToLower(l.Company), name) {
			out = append(out, l)
		}
	}
	return out
}

// CompanyCount is the number of postings a company has in a result set.
type CompanyCount struct {
	Company  string `json:"company"`
	Postings int    `json:"num_postings"`
}

// TopCompanies counts postings per company and returns the n largest,
// ties broken by name.
func TopCompanies(listings []Listing, n int) []CompanyCount {
	counts := make(map[string]int)
	for _, l := range listings {
		if l.Company != "" {
			counts[l.Company]++
		}
	}
	out := make([]CompanyCount, 0, len(counts))
	for c, k := range counts {
		out = append(out, CompanyCount{Company: c, Postings: k})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Postings != out[j].Postings {
			return out[i].Postings > out[j].Postings
		}
		return out[i].Company < out[j].Company
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// FormatTopCompanies renders the ranking as text.
func FormatTopCompanies(counts []CompanyCount) string {
	if len(counts) == 0 {
		return "No companies found for that role."
	}
	var sb strings.Builder
	for i, c := range counts {
		fmt.Fprintf(&sb, "%d. %s: %d posting", i+1, c.Company, c.Postings)
		if c.Postings != 1 {
			sb.WriteByte('s')
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SalaryStats summarises the parseable salaries in a result set.
type SalaryStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min_salary"`
	Max   float64 `json:"max_salary"`
	Avg   float64 `json:"avg_salary"`
}

// NoSalaryData is reported when no listing carries a parseable salary.
const NoSalaryData = "No salary data available for that role or location."

// SummarizeSalaries computes stats over annualised salaries. ok is false
// when no salary could be parsed.
func SummarizeSalaries(listings []Listing) (stats SalaryStats, ok bool) {
	var sum float64
	for _, l := range listings {
		v, parsed := ParseSalary(l.Salary)
		if !parsed {
			continue
		}
		if stats.Count == 0 || v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
		stats.Count++
	}
	if stats.Count == 0 {
		return SalaryStats{}, false
	}
	stats.Avg = sum / float64(stats.Count)
	return stats, true
}

// String renders the stats as text.
func (s SalaryStats) String() string {
	return fmt.Sprintf("Salaries from %d postings: min $%.0f, max $%.0f, average $%.0f (annualised)", s.Count, s.Min, s.Max, s.Avg)
}

var reAmount = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*([kK])?`)

// ParseSalary turns a salary snippet such as "$45,000 - $65,000 a year",
// "$80K" or "$30 an hour" into one annual figure (the midpoint of a range).
func ParseSalary(s string) (float64, bool) {
	matches := reAmount.FindAllStringSubmatch(s, 2)
	if len(matches) == 0 {
		return 0, false
	}
	var vals []float64
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			v *= 1000
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return 0, false
	}
	v := vals[0]
	if len(vals) == 2 {
		v = (vals[0] + vals[1]) / 2
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "hour") || strings.Contains(lower, "/hr"):
		v *= 2080
	case strings.Contains(lower, "month"):
		v *= 12
	case strings.Contains(lower, "week"):
		v *= 52
	}
	if v <= 0 {
		return 0, false
	}
	return v, true
}
