// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/corpit/core"
	"github.com/poiesic/corpit/storage"
)

// ProcessingStatus is a transient, in-memory view of one file's progress
// through the pipeline. It is a best-effort projection: the persisted
// KnowledgeFile record is the durable source of truth and the monitor
// reconciles one-way from it.
type ProcessingStatus struct {
	FileId         core.ID
	Name           string
	Status         core.EmbeddingStatus
	Progress       float64 // 0-100
	StartedAt      time.Time
	CompletedAt    time.Time     // zero until terminal
	ProcessingTime time.Duration // zero until terminal
	EstimatedDone  time.Time     // zero until progress > 0
	Error          string

	expiresAt time.Time // zero until terminal
}

// Monitor tracks in-flight file processing so callers can poll progress
// without hitting the database. Entries are evicted a grace period after they
// reach a terminal status: short for success, longer for failure so operators
// have time to inspect what went wrong.
//
// A Monitor is an injected component; create one per Database (or per test)
// rather than sharing globally.
type Monitor struct {
	mu      sync.Mutex
	entries map[core.ID]*ProcessingStatus

	files             storage.FileRepository
	successGrace      time.Duration
	failureGrace      time.Duration
	reconcileInterval time.Duration
	logger            *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithSuccessGrace sets how long completed entries linger before eviction.
// Default is 1 minute.
func WithSuccessGrace(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.successGrace = d
		}
	}
}

// WithFailureGrace sets how long failed entries linger before eviction.
// Default is 10 minutes.
func WithFailureGrace(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.failureGrace = d
		}
	}
}

// WithReconcileInterval sets the cadence of the background reconciliation
// loop. Default is 30 seconds.
func WithReconcileInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.reconcileInterval = d
		}
	}
}

// WithMonitorLogger sets a custom logger. Default is slog.Default().
func WithMonitorLogger(logger *slog.Logger) MonitorOption {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMonitor creates a progress monitor backed by the given file repository.
// The repository is only read, and only by the reconciliation loop.
func NewMonitor(files storage.FileRepository, opts ...MonitorOption) (*Monitor, error) {
	if files == nil {
		return nil, ErrFileRepositoryRequired
	}

	m := &Monitor{
		entries:           make(map[core.ID]*ProcessingStatus),
		files:             files,
		successGrace:      time.Minute,
		failureGrace:      10 * time.Minute,
		reconcileInterval: 30 * time.Second,
		logger:            slog.Default().With("component", "ingestion-monitor"),
		stop:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Register starts tracking a file with zero progress.
// Re-registering an already tracked file resets its entry.
func (m *Monitor) Register(fileID core.ID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[fileID] = &ProcessingStatus{
		FileId:    fileID,
		Name:      name,
		Status:    core.StatusPending,
		StartedAt: time.Now().UTC(),
	}
}

// UpdateProgress overwrites the tracked progress percentage and, when given,
// the status. The estimated completion time is recomputed by linear
// extrapolation from elapsed time; it is left untouched while progress is 0.
// Updates for untracked files are ignored.
func (m *Monitor) UpdateProgress(fileID core.ID, percent float64, status ...core.EmbeddingStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[fileID]
	if !ok {
		return
	}

	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	entry.Progress = percent
	if len(status) > 0 {
		entry.Status = status[0]
	}

	if percent > 0 {
		elapsed := time.Since(entry.StartedAt)
		estimatedTotal := time.Duration(float64(elapsed) / percent * 100)
		entry.EstimatedDone = entry.StartedAt.Add(estimatedTotal)
	}
}

// MarkCompleted records successful completion: progress 100, total processing
// time, and eviction after the success grace period.
func (m *Monitor) MarkCompleted(fileID core.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finish(fileID, core.StatusCompleted, "", m.successGrace)
}

// MarkFailed records failure with the given message and schedules eviction
// after the failure grace period.
func (m *Monitor) MarkFailed(fileID core.ID, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finish(fileID, core.StatusFailed, message, m.failureGrace)
}

// finish transitions an entry to a terminal state. Caller holds m.mu.
func (m *Monitor) finish(fileID core.ID, status core.EmbeddingStatus, message string, grace time.Duration) {
	entry, ok := m.entries[fileID]
	if !ok {
		return
	}

	now := time.Now().UTC()
	entry.Status = status
	entry.Error = message
	entry.CompletedAt = now
	entry.ProcessingTime = now.Sub(entry.StartedAt)
	entry.expiresAt = now.Add(grace)
	if status == core.StatusCompleted {
		entry.Progress = 100
	}
}

// Status returns a copy of the tracked entry for a file.
// Entries whose grace period has elapsed are evicted and reported as absent.
func (m *Monitor) Status(fileID core.ID) (ProcessingStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[fileID]
	if !ok {
		return ProcessingStatus{}, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, fileID)
		return ProcessingStatus{}, false
	}
	return *entry, true
}

// Tracked returns the IDs of all currently tracked files.
func (m *Monitor) Tracked() []core.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]core.ID, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	return ids
}

// Start launches the background reconciliation loop. On each tick the loop
// re-reads the persisted status of every tracked file and overwrites the
// in-memory view when they disagree. This is how a monitor that missed a
// direct notification self-heals. The loop never raises; query failures are
// logged and skipped for that cycle.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.reconcileInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.reconcile(ctx)
			}
		}
	}()
}

// Stop terminates the reconciliation loop. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// reconcile runs one reconciliation cycle against persisted status.
func (m *Monitor) reconcile(ctx context.Context) {
	for _, id := range m.Tracked() {
		file, err := m.files.GetFile(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Record is gone; stop tracking it.
				m.mu.Lock()
				delete(m.entries, id)
				m.mu.Unlock()
				continue
			}
			m.logger.Warn("reconciliation query failed", "fileId", id, "err", err)
			continue
		}

		m.mu.Lock()
		entry, ok := m.entries[id]
		if !ok || entry.Status == file.Status {
			m.mu.Unlock()
			continue
		}
		switch file.Status {
		case core.StatusCompleted:
			m.finish(id, core.StatusCompleted, "", m.successGrace)
		case core.StatusFailed:
			m.finish(id, core.StatusFailed, file.Error, m.failureGrace)
		default:
			entry.Status = file.Status
		}
		m.mu.Unlock()
	}

	m.evictExpired()
}

// evictExpired drops terminal entries whose grace period has elapsed.
func (m *Monitor) evictExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, entry := range m.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(m.entries, id)
		}
	}
}
