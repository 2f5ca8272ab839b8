package tools

import (
	"encoding/json"
	"sort"

	"github.com/jobpilot/jobpilot/internal/schema"
)

// ToolName is the canonical name of a tool served by the job backend or
// defined locally.
type ToolName string

const (
	ToolSearchJobs          ToolName = "search_jobs"
	ToolJobsByCompany       ToolName = "jobs_by_company"
	ToolTopCompanies        ToolName = "top_companies_for_role"
	ToolSalaryTrends        ToolName = "summarize_salary_trends"
	ToolRemoteJobs          ToolName = "remote_jobs"
	ToolScrapeJob           ToolName = "scrape_job_description"
	ToolTailorResume        ToolName = "tailor_resume"
	ToolGenerateCoverLetter ToolName = "generate_cover_letter"
	ToolExportDocx          ToolName = "export_docx"
)

// DefaultArtifactTools lists the backend tools whose replies carry documents.
var DefaultArtifactTools = []string{string(ToolTailorResume), string(ToolGenerateCoverLetter)}

// Registry is an immutable name-keyed set of tools for one turn.
// Remote entries come first in catalog order, then local entries.
type Registry struct {
	tools map[string]schema.Tool
	order []string
}

// Build merges backend and local tools into a Registry. Any repeated name,
// within one side or across both, fails with *DuplicateToolError.
func Build(remote, local []schema.Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]schema.Tool, len(remote)+len(local))}
	for _, t := range remote {
		if !r.put(t) {
			return nil, &DuplicateToolError{Name: t.Name(), Within: "backend"}
		}
	}
	remoteCount := len(r.tools)
	for _, t := range local {
		if !r.put(t) {
			if r.indexOf(t.Name()) < remoteCount {
				return nil, &DuplicateToolError{Name: t.Name()}
			}
			return nil, &DuplicateToolError{Name: t.Name(), Within: "local"}
		}
	}
	return r, nil
}

// put adds t and reports false if the name is already taken.
func (r *Registry) put(t schema.Tool) bool {
	if _, exists := r.tools[t.Name()]; exists {
		return false
	}
	r.order = append(r.order, t.Name())
	r.tools[t.Name()] = t
	return true
}

func (r *Registry) indexOf(name string) int {
	for i, n := range r.order {
		if n == name {
			return i
		}
	}
	return -1
}

// Get returns the tool with the given name, or nil if not found.
func (r *Registry) Get(name string) schema.Tool {
	if r == nil {
		return nil
	}
	return r.tools[name]
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tools)
}

// Names returns the registered names in catalog order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// SortedNames returns the registered names alphabetically.
func (r *Registry) SortedNames() []string {
	out := r.Names()
	sort.Strings(out)
	return out
}

// Descriptors returns the descriptors in catalog order.
func (r *Registry) Descriptors() []schema.ToolDescriptor {
	if r == nil {
		return nil
	}
	out := make([]schema.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, schema.DescriptorOf(r.tools[name]))
	}
	return out
}

// Definitions returns all tool definitions in OpenAI function-calling format.
func (r *Registry) Definitions() []map[string]any {
	if r == nil {
		return nil
	}
	list := make([]map[string]any, 0, len(r.order))
	for _, d := range r.Descriptors() {
		list = append(list, Definition(d))
	}
	return list
}

// Definition renders one descriptor as
// {"type":"function","function":{"name","description","parameters"}}.
func Definition(d schema.ToolDescriptor) map[string]any {
	var params any
	if err := json.Unmarshal(d.InputSchema, &params); err != nil || params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        d.Name,
			"description": d.Description,
			"parameters":  params,
		},
	}
}
