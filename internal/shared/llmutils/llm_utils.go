package llmutils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jobpilot/jobpilot/internal/schema"
)

var (
	reThink     = regexp.MustCompile(`(?s)<think>.*?</think>`)
	reDocxLink  = regexp.MustCompile(`!?\[[^\]]*\]\([^)]*\.docx\)`)
	reDocxPath  = regexp.MustCompile(`(?:sandbox:)?/(?:tmp|var/folders)/[^\s)\]]+\.docx`)
	reBlankRuns = regexp.MustCompile(`\n{3,}`)
)

// Truncate shortens a string to at most n bytes, adding "..." if it was
// truncated. It never splits a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}

// TruncateRunes returns the first n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return reThink.ReplaceAllString(s, "")
}

// CleanReply prepares a final model reply for display: think blocks,
// Markdown links to .docx files and local .docx paths are removed since
// documents are delivered separately.
func CleanReply(s string) string {
	s = StripThink(s)
	s = reDocxLink.ReplaceAllString(s, "")
	s = reDocxPath.ReplaceAllString(s, "")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ToolHint generates a short hint string for a list of tool calls, e.g. `search_jobs("data scientist")`.
func ToolHint(tcs []schema.ToolCallRequest) string {
	parts := make([]string, 0, len(tcs))
	for _, tc := range tcs {
		firstVal := firstStringArg(tc.ToToolCall().ArgumentsMap())
		if firstVal == "" {
			parts = append(parts, tc.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%q)", tc.Name, Truncate(firstVal, 40)))
	}
	return strings.Join(parts, ", ")
}

func firstStringArg(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := args[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
