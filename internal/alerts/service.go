package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	robfigcron "github.com/robfig/cron/v3"

	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/tools"
)

// reloadSpec is how often a running service checks the store for changes
// made by other processes (the alerts CLI).
const reloadSpec = "@every 1m"

// Searcher runs a saved search and returns the listing text.
type Searcher interface {
	SearchJobs(ctx context.Context, q Search) (string, error)
}

// Publisher delivers alert messages to chat channels.
type Publisher interface {
	PublishOutbound(ctx context.Context, msg bus.OutboundMessage) error
}

// Service manages saved-search alerts.
// It also implements tools.AlertManager so the assistant can manage alerts.
type Service struct {
	storePath string
	searcher  Searcher
	out       Publisher

	mu      sync.Mutex
	store   alertStore
	loaded  bool
	modTime time.Time

	cron    *robfigcron.Cron
	entries map[string]robfigcron.EntryID // alert ID → cron entry
	runCtx  context.Context               // set while Start is running
}

// NewService creates a Service persisting to storePath. searcher and out may
// be nil when the service is only used to edit alerts.
func NewService(storePath string, searcher Searcher, out Publisher) *Service {
	return &Service{
		storePath: storePath,
		searcher:  searcher,
		out:       out,
		cron:      robfigcron.New(),
		entries:   make(map[string]robfigcron.EntryID),
	}
}

// Start loads alerts, schedules the enabled ones and blocks until ctx is
// cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if err := s.loadLocked(true); err != nil {
		slog.Warn("alerts: load failed, starting empty", "err", err)
	}
	s.runCtx = ctx
	s.scheduleAllLocked()
	if err := s.saveLocked(); err != nil {
		slog.Warn("alerts: save failed", "err", err)
	}
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(reloadSpec, s.reloadIfChanged); err != nil {
		return fmt.Errorf("alerts: schedule reload: %w", err)
	}
	s.cron.Start()
	slog.Info("alerts: started", "alerts", len(s.store.Alerts))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.mu.Lock()
	s.runCtx = nil
	s.mu.Unlock()
	return ctx.Err()
}

// Add validates and stores a new alert. ID, state and creation time are
// assigned here.
func (s *Service) Add(a Alert) (Alert, error) {
	a.ID = uuid.NewString()[:8]
	a.Enabled = true
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		a.Name = a.Search.Term
	}
	if a.Search.Limit == 0 {
		a.Search.Limit = DefaultLimit
	}
	a.CreatedAt = time.Now().UTC()
	a.State = State{}
	if err := a.validate(); err != nil {
		return Alert{}, err
	}
	a.State.NextRunAt = nextRun(a, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.loadLocked(false)
	prev := s.store.Alerts
	s.store.Alerts = append(append([]Alert(nil), prev...), a)
	if err := s.saveLocked(); err != nil {
		s.store.Alerts = prev
		return Alert{}, err
	}
	if s.runCtx != nil {
		s.scheduleLocked(a)
	}

	slog.Info("alerts: added", "id", a.ID, "name", a.Name, "schedule", a.Schedule)
	return a, nil
}

// List returns all alerts, oldest first.
func (s *Service) List() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.loadLocked(false)
	out := make([]Alert, len(s.store.Alerts))
	copy(out, s.store.Alerts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Remove deletes an alert and reports whether it existed.
func (s *Service) Remove(id string) (bool, error) {
	return s.removeWhere(func(a Alert) bool { return a.ID == id })
}

func (s *Service) removeWhere(match func(Alert) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.loadLocked(false)
	prev := s.store.Alerts
	var (
		kept    = make([]Alert, 0, len(prev))
		removed []string
	)
	for _, a := range prev {
		if match(a) {
			removed = append(removed, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	if len(removed) == 0 {
		return false, nil
	}
	s.store.Alerts = kept
	if err := s.saveLocked(); err != nil {
		s.store.Alerts = prev
		return false, err
	}
	for _, id := range removed {
		s.unscheduleLocked(id)
	}
	return true, nil
}

// Enable turns an alert on or off and reports whether it exists.
func (s *Service) Enable(id string, enabled bool) (Alert, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.loadLocked(false)
	for i := range s.store.Alerts {
		a := &s.store.Alerts[i]
		if a.ID != id {
			continue
		}
		prev := *a
		a.Enabled = enabled
		a.State.NextRunAt = nil
		if enabled {
			a.State.NextRunAt = nextRun(*a, time.Now())
		}
		if err := s.saveLocked(); err != nil {
			*a = prev
			return Alert{}, true, err
		}
		s.unscheduleLocked(id)
		if enabled && s.runCtx != nil {
			s.scheduleLocked(*a)
		}
		return *a, true, nil
	}
	return Alert{}, false, nil
}

// AddAlert implements tools.AlertManager.
func (s *Service) AddAlert(spec tools.AlertSpec) (string, error) {
	a, err := s.Add(Alert{
		Name:        spec.Name,
		Schedule:    spec.Schedule,
		TZ:          spec.TZ,
		Search:      Search{Term: spec.Term, Location: spec.Location, Limit: spec.Limit},
		Destination: Destination{Channel: bus.Channel(spec.Channel), ChatID: spec.ChatID},
	})
	return a.ID, err
}

// ListAlerts implements tools.AlertManager. Only alerts delivered to the
// given conversation are returned.
func (s *Service) ListAlerts(channel, chatID string) []tools.AlertSummary {
	var out []tools.AlertSummary
	for _, a := range s.List() {
		if string(a.Destination.Channel) != channel || a.Destination.ChatID != chatID {
			continue
		}
		out = append(out, tools.AlertSummary{ID: a.ID, Name: a.Name, Schedule: a.Schedule, Term: a.Search.Term})
	}
	return out
}

// RemoveAlert implements tools.AlertManager. Only an alert delivered to the
// given conversation can be removed.
func (s *Service) RemoveAlert(channel, chatID, id string) (bool, error) {
	return s.removeWhere(func(a Alert) bool {
		return a.ID == id && string(a.Destination.Channel) == channel && a.Destination.ChatID == chatID
	})
}

// RunNow executes an alert immediately.
func (s *Service) RunNow(ctx context.Context, id string) error {
	s.mu.Lock()
	_ = s.loadLocked(false)
	_, ok := s.findLocked(id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("alert %s not found", id)
	}
	return s.fire(ctx, id)
}

// fire runs the alert's search and publishes the listing to its destination.
func (s *Service) fire(ctx context.Context, id string) error {
	s.mu.Lock()
	a, ok := s.findLocked(id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("alert %s not found", id)
	}
	if s.searcher == nil || s.out == nil {
		return fmt.Errorf("alerts: no search backend configured")
	}

	started := time.Now().UTC()
	slog.Info("alerts: running", "id", a.ID, "name", a.Name)

	err := s.deliver(ctx, a)
	if err != nil {
		slog.Error("alerts: run failed", "id", a.ID, "err", err)
	}
	s.recordRun(a, started, err)
	return err
}

func (s *Service) deliver(ctx context.Context, a Alert) error {
	listing, err := s.searcher.SearchJobs(ctx, a.Search)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("🔔 Job alert: %s\n\n%s", a.Name, strings.TrimSpace(listing))
	return s.out.PublishOutbound(ctx, bus.NewOutboundMessage(a.Destination.Channel, a.Destination.ChatID, text))
}

func (s *Service) recordRun(a Alert, started time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.store.Alerts {
		if s.store.Alerts[i].ID != a.ID {
			continue
		}
		st := &s.store.Alerts[i].State
		st.LastRunAt = &started
		st.LastStatus = "ok"
		st.LastError = ""
		if err != nil {
			st.LastStatus = "error"
			st.LastError = err.Error()
		}
		st.NextRunAt = nextRun(s.store.Alerts[i], time.Now())
		break
	}
	if err := s.saveLocked(); err != nil {
		slog.Warn("alerts: save run state failed", "id", a.ID, "err", err)
	}
}

func (s *Service) findLocked(id string) (Alert, bool) {
	for _, a := range s.store.Alerts {
		if a.ID == id {
			return a, true
		}
	}
	return Alert{}, false
}

// --------------------------------------------------------------------------
// Scheduling
// --------------------------------------------------------------------------

func (s *Service) scheduleAllLocked() {
	for id := range s.entries {
		s.unscheduleLocked(id)
	}
	now := time.Now()
	for i, a := range s.store.Alerts {
		if !a.Enabled {
			continue
		}
		s.store.Alerts[i].State.NextRunAt = nextRun(a, now)
		s.scheduleLocked(a)
	}
}

func (s *Service) scheduleLocked(a Alert) {
	sched, err := a.schedule()
	if err != nil {
		slog.Warn("alerts: invalid schedule", "id", a.ID, "err", err)
		return
	}
	ctx := s.runCtx
	id := a.ID
	s.entries[id] = s.cron.Schedule(sched, robfigcron.FuncJob(func() {
		_ = s.fire(ctx, id)
	}))
}

func (s *Service) unscheduleLocked(id string) {
	if eid, ok := s.entries[id]; ok {
		s.cron.Remove(eid)
		delete(s.entries, id)
	}
}

// reloadIfChanged picks up edits made to the store by another process.
func (s *Service) reloadIfChanged() {
	info, err := os.Stat(s.storePath)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if info.ModTime().Equal(s.modTime) {
		return
	}
	if err := s.loadLocked(true); err != nil {
		slog.Warn("alerts: reload failed", "err", err)
		return
	}
	if s.runCtx != nil {
		s.scheduleAllLocked()
	}
	slog.Info("alerts: reloaded", "alerts", len(s.store.Alerts))
}

func nextRun(a Alert, now time.Time) *time.Time {
	sched, err := a.schedule()
	if err != nil {
		return nil
	}
	next := sched.Next(now).UTC()
	return &next
}

// --------------------------------------------------------------------------
// Persistence
// --------------------------------------------------------------------------

func (s *Service) loadLocked(force bool) error {
	if s.loaded && !force {
		return nil
	}
	s.loaded = true
	data, err := os.ReadFile(s.storePath)
	if os.IsNotExist(err) {
		s.store = alertStore{Version: 1}
		return nil
	}
	if err != nil {
		return err
	}
	var st alertStore
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	s.store = st
	if info, err := os.Stat(s.storePath); err == nil {
		s.modTime = info.ModTime()
	}
	return nil
}

func (s *Service) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.storePath), 0o755); err != nil {
		return fmt.Errorf("alerts: create store dir: %w", err)
	}
	if s.store.Version == 0 {
		s.store.Version = 1
	}
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("alerts: encode store: %w", err)
	}
	if err := os.WriteFile(s.storePath, data, 0o644); err != nil {
		return fmt.Errorf("alerts: write store: %w", err)
	}
	if info, err := os.Stat(s.storePath); err == nil {
		s.modTime = info.ModTime()
	}
	return nil
}
