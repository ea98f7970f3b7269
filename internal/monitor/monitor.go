// Package monitor follows the AI server's sentinel files in the shared
// channel and reports status transitions.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/puzpuzpuz/xsync/v3"
)

const eventChannelBuffer = 64

// StatusChange is emitted whenever the derived server status changes.
type StatusChange struct {
	Status exchange.ServerStatus
	Time   time.Time
}

type Monitor struct {
	layout  exchange.Layout
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// sentinel artifact path -> present
	present  *xsync.MapOf[string, bool]
	request  string
	response string

	lastMu sync.Mutex
	last   exchange.ServerStatus

	events  chan StatusChange
	dropped atomic.Int64
}

func New(layout exchange.Layout, logger *slog.Logger) (*Monitor, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		layout:   layout,
		watcher:  fsw,
		logger:   logger,
		present:  xsync.NewMapOf[string, bool](),
		request:  filepath.Clean(layout.Path(exchange.RequestSentinel)),
		response: filepath.Clean(layout.Path(exchange.ResponseSentinel)),
		events:   make(chan StatusChange, eventChannelBuffer),
	}, nil
}

// Events returns the channel of status changes. The first value is the
// status observed by Start. It is closed when the monitor stops.
func (m *Monitor) Events() <-chan StatusChange {
	return m.events
}

// Start creates the shared directory if needed and begins watching it.
func (m *Monitor) Start(ctx context.Context) error {
	dir := m.layout.SharedPath()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create shared directory: %w", err)
	}
	if err := m.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	m.refresh(m.request)
	m.refresh(m.response)
	m.publish()

	go m.processEvents(ctx)

	m.logger.Info("server monitor started", "shared_dir", dir, "status", string(m.Status()))
	return nil
}

// Stop stops the watcher. The events channel is closed by processEvents.
func (m *Monitor) Stop() error {
	return m.watcher.Close()
}

// Status derives the server status from the sentinels seen so far.
func (m *Monitor) Status() exchange.ServerStatus {
	req, _ := m.present.Load(m.request)
	resp, _ := m.present.Load(m.response)
	return exchange.StatusFromSentinels(req, resp)
}

// Dropped counts status changes lost because no one was reading Events.
func (m *Monitor) Dropped() int64 {
	return m.dropped.Load()
}

func (m *Monitor) processEvents(ctx context.Context) {
	defer close(m.events)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			path := filepath.Clean(event.Name)
			if path != m.request && path != m.response {
				continue
			}
			m.logger.Debug("sentinel changed", "path", path, "op", event.Op.String())
			m.refresh(path)
			m.publish()

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error("watcher error", "error", err)
		}
	}
}

// refresh re-reads the presence of one sentinel; the event op alone is
// not trusted since writes and renames arrive in bursts.
func (m *Monitor) refresh(path string) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		m.present.Store(path, true)
	case errors.Is(err, os.ErrNotExist):
		m.present.Store(path, false)
	default:
		m.logger.Warn("failed to stat sentinel", "path", path, "error", err)
	}
}

func (m *Monitor) publish() {
	status := m.Status()

	m.lastMu.Lock()
	changed := status != m.last
	m.last = status
	m.lastMu.Unlock()
	if !changed {
		return
	}

	select {
	case m.events <- StatusChange{Status: status, Time: time.Now()}:
		m.logger.Info("server status changed", "status", string(status))
	default:
		m.dropped.Add(1)
		m.logger.Warn("status change dropped, channel full", "status", string(status))
	}
}
