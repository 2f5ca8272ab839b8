package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jobpilot/jobpilot/internal/schema"
	"github.com/jobpilot/jobpilot/internal/shared/llmutils"
)

// ToolJobAlerts is the local tool that manages saved-search alerts.
const ToolJobAlerts ToolName = "job_alerts"

// AlertSpec describes a saved search to schedule.
type AlertSpec struct {
	Name     string
	Schedule string
	TZ       string
	Term     string
	Location string
	Limit    int
	Channel  string
	ChatID   string
}

// AlertSummary is a lightweight view of a saved alert.
type AlertSummary struct {
	ID       string
	Name     string
	Schedule string
	Term     string
}

// AlertManager is the alert service as seen by JobAlertsTool.
type AlertManager interface {
	AddAlert(spec AlertSpec) (string, error)
	ListAlerts(channel, chatID string) []AlertSummary
	RemoveAlert(channel, chatID, id string) (bool, error)
}

// JobAlertsTool lets the model schedule recurring job searches that are
// delivered to the current conversation.
type JobAlertsTool struct {
	svc AlertManager
}

func NewJobAlertsTool(svc AlertManager) *JobAlertsTool {
	return &JobAlertsTool{svc: svc}
}

func (t *JobAlertsTool) Name() string { return string(ToolJobAlerts) }

func (t *JobAlertsTool) Description() string {
	return "Schedule recurring job searches whose results are posted to this conversation. Actions: add, list, remove."
}

func (t *JobAlertsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"action": {
				"type": "string",
				"enum": ["add", "list", "remove"],
				"description": "Action to perform"
			},
			"search_term": {
				"type": "string",
				"description": "Job title or keywords to search (for add)"
			},
			"location": {
				"type": "string",
				"description": "Location filter (for add)"
			},
			"limit": {
				"type": "integer",
				"description": "Number of listings per alert (for add)"
			},
			"cron_expr": {
				"type": "string",
				"description": "Cron expression like '0 9 * * 1-5' (for add)"
			},
			"tz": {
				"type": "string",
				"description": "IANA timezone for the cron expression (e.g. 'America/Vancouver')"
			},
			"alert_id": {
				"type": "string",
				"description": "Alert ID (for remove)"
			}
		},
		"required": ["action"]
	}`)
}

func (t *JobAlertsTool) Execute(ctx context.Context, params map[string]any) (schema.Content, error) {
	tc := TurnCtx(ctx)
	action, _ := params["action"].(string)
	switch action {
	case "add":
		return schema.TextContent(t.add(tc, params)), nil
	case "list":
		return schema.TextContent(t.list(tc)), nil
	case "remove":
		return schema.TextContent(t.remove(tc, params)), nil
	}
	return schema.Content{}, fmt.Errorf("unknown action %q", action)
}

func (t *JobAlertsTool) add(tc TurnContext, params map[string]any) string {
	term, _ := params["search_term"].(string)
	if strings.TrimSpace(term) == "" {
		return "Error: search_term is required for add"
	}
	expr, _ := params["cron_expr"].(string)
	if strings.TrimSpace(expr) == "" {
		return "Error: cron_expr is required for add"
	}
	if tc.Channel == "" || tc.ChatID == "" {
		return "Error: no conversation to deliver alerts to"
	}
	location, _ := params["location"].(string)
	tz, _ := params["tz"].(string)
	limit, _ := intArg(params["limit"])

	name := term
	if location != "" {
		name += " in " + location
	}
	name = llmutils.TruncateRunes(name, 40)

	id, err := t.svc.AddAlert(AlertSpec{
		Name:     name,
		Schedule: expr,
		TZ:       tz,
		Term:     term,
		Location: location,
		Limit:    limit,
		Channel:  tc.Channel,
		ChatID:   tc.ChatID,
	})
	if err != nil {
		return fmt.Sprintf("Error creating alert: %v", err)
	}
	return fmt.Sprintf("Created alert '%s' (id: %s, schedule: %s)", name, id, expr)
}

func (t *JobAlertsTool) list(tc TurnContext) string {
	alerts := t.svc.ListAlerts(tc.Channel, tc.ChatID)
	if len(alerts) == 0 {
		return "No job alerts for this conversation."
	}
	var sb strings.Builder
	sb.WriteString("Job alerts:\n")
	for _, a := range alerts {
		fmt.Fprintf(&sb, "- %s (id: %s, %s)\n", a.Name, a.ID, a.Schedule)
	}
	return sb.String()
}

func (t *JobAlertsTool) remove(tc TurnContext, params map[string]any) string {
	id, _ := params["alert_id"].(string)
	if id == "" {
		return "Error: alert_id is required for remove"
	}
	ok, err := t.svc.RemoveAlert(tc.Channel, tc.ChatID, id)
	if err != nil {
		return fmt.Sprintf("Error removing alert: %v", err)
	}
	if ok {
		return fmt.Sprintf("Removed alert %s", id)
	}
	return fmt.Sprintf("Alert %s not found", id)
}

// intArg converts a JSON number argument to int.
func intArg(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}
