// Package alerts runs saved job searches on a cron schedule and delivers
// the listings to a chat.
//
// Alerts persist as JSON:
//
//	{ "version": 1, "alerts": [ { "id":"…", "name":"…", "enabled":true,
//	    "schedule":"0 9 * * 1-5", "tz":"Europe/Berlin",
//	    "search":{"term":"go developer","location":"remote","limit":10},
//	    "destination":{"channel":"slack","chatId":"D123"},
//	    "state":{"nextRunAt":"…","lastRunAt":"…","lastStatus":"ok"},
//	    "createdAt":"…" } ] }
package alerts

import (
	"fmt"
	"strings"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/jobpilot/jobpilot/internal/bus"
)

// DefaultLimit is the number of listings requested when an alert sets none.
const DefaultLimit = 10

// Search is the saved query an alert runs.
type Search struct {
	Term     string `json:"term"`
	Location string `json:"location,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Destination names the chat that receives an alert.
type Destination struct {
	Channel bus.Channel `json:"channel"`
	ChatID  string      `json:"chatId"`
}

// State records the outcome of the last run.
type State struct {
	NextRunAt  *time.Time `json:"nextRunAt,omitempty"`
	LastRunAt  *time.Time `json:"lastRunAt,omitempty"`
	LastStatus string     `json:"lastStatus,omitempty"` // "ok" or "error"
	LastError  string     `json:"lastError,omitempty"`
}

// Alert is one saved search.
type Alert struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Enabled     bool        `json:"enabled"`
	Schedule    string      `json:"schedule"`
	TZ          string      `json:"tz,omitempty"`
	Search      Search      `json:"search"`
	Destination Destination `json:"destination"`
	State       State       `json:"state"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type alertStore struct {
	Version int     `json:"version"`
	Alerts  []Alert `json:"alerts"`
}

var parser = robfigcron.NewParser(
	robfigcron.Minute | robfigcron.Hour | robfigcron.Dom | robfigcron.Month | robfigcron.Dow | robfigcron.Descriptor,
)

// schedule parses the alert's cron expression in its time zone.
func (a Alert) schedule() (robfigcron.Schedule, error) {
	sched, err := parser.Parse(a.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", a.Schedule, err)
	}
	loc, err := a.location()
	if err != nil {
		return nil, err
	}
	return locSchedule{inner: sched, loc: loc}, nil
}

func (a Alert) location() (*time.Location, error) {
	if a.TZ == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.TZ)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", a.TZ, err)
	}
	return loc, nil
}

func (a Alert) validate() error {
	if strings.TrimSpace(a.Search.Term) == "" {
		return fmt.Errorf("search term is required")
	}
	if a.Search.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	switch a.Destination.Channel {
	case bus.ChannelSlack, bus.ChannelTelegram:
	default:
		return fmt.Errorf("unsupported destination channel %q (use slack or telegram)", a.Destination.Channel)
	}
	if a.Destination.ChatID == "" {
		return fmt.Errorf("destination chat id is required")
	}
	_, err := a.schedule()
	return err
}

// locSchedule evaluates a schedule in a fixed location.
type locSchedule struct {
	inner robfigcron.Schedule
	loc   *time.Location
}

func (l locSchedule) Next(t time.Time) time.Time {
	return l.inner.Next(t.In(l.loc))
}

// Describe renders a one-line summary for listings.
func (a Alert) Describe() string {
	where := a.Search.Location
	if where == "" {
		where = "anywhere"
	}
	status := "enabled"
	if !a.Enabled {
		status = "disabled"
	}
	return fmt.Sprintf("%s  %-20s  %q in %s  [%s]  -> %s  (%s)",
		a.ID, a.Name, a.Search.Term, where, a.Schedule,
		bus.RoutingKey(a.Destination.Channel, a.Destination.ChatID), status)
}
