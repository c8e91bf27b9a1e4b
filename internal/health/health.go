package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Pinger is anything whose connectivity can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the last observed store state.
type Status struct {
	Up        bool      `json:"up"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Monitor pings the store on a cron schedule and serves the last result.
type Monitor struct {
	store   Pinger
	log     *logrus.Logger
	timeout time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	status Status
	cron   *cron.Cron
}

func NewMonitor(store Pinger, log *logrus.Logger, timeout time.Duration) *Monitor {
	return &Monitor{
		store:   store,
		log:     log,
		timeout: timeout,
		now:     time.Now,
	}
}

// Check probes the store once and records the outcome.
func (m *Monitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	st := Status{Up: true, CheckedAt: m.now()}
	if err := m.store.Ping(ctx); err != nil {
		st.Up = false
		st.Error = err.Error()
	}

	m.mu.Lock()
	wasUp := m.status.Up || m.status.CheckedAt.IsZero()
	m.status = st
	m.mu.Unlock()

	switch {
	case !st.Up:
		m.log.WithField("error", st.Error).Error("Store health check failed")
	case !wasUp:
		m.log.Info("Store health check recovered")
	default:
		m.log.Debug("Store health check passed")
	}
	return st
}

// Status returns the last recorded result.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Start schedules Check according to spec, a cron expression or descriptor
// such as "@every 30s".
func (m *Monitor) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { m.Check(context.Background()) }); err != nil {
		return fmt.Errorf("invalid health check schedule %q: %w", spec, err)
	}
	c.Start()

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (m *Monitor) Stop() {
	m.mu.RLock()
	c := m.cron
	m.mu.RUnlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// ServeHTTP reports the last status: 200 when up, 503 otherwise.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	st := m.Status()
	code := http.StatusOK
	if !st.Up {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(st)
}
