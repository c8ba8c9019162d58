// Package monitor periodically snapshots the discovery engine and the
// navigation supervisor into a status file the host or operator can poll.
package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/helionav/starcharts/internal/logging"
	"github.com/helionav/starcharts/internal/session"
	"github.com/helionav/starcharts/internal/storage"
	"github.com/helionav/starcharts/pkg/core"
)

// DefaultInterval is the status write cadence.
const DefaultInterval = 30 * time.Second

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	LogManager   *logging.SlogManager
	Session      *session.Context
	EngineStatus func() core.EngineStatus
	NavStatus    func() core.NavStatus

	// Backend is the persistence backend when it tracks write timings.
	// Optional.
	Backend storage.WriteTimed

	// StatusDir is where status.json is written. Empty disables the file.
	StatusDir string
	Interval  time.Duration
}

// ProgramStatus is the periodic snapshot layout.
type ProgramStatus struct {
	Time                time.Time         `json:"time"`
	Sector              string            `json:"sector"`
	StarName            string            `json:"starName"`
	Engine              core.EngineStatus `json:"engine"`
	Nav                 core.NavStatus    `json:"nav"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus builds the current snapshot.
func (s *Service) GetProgramStatus() ProgramStatus {
	status := ProgramStatus{Time: time.Now()}

	if s.deps.Session != nil {
		status.Sector = s.deps.Session.SectorID()
		status.StarName = s.deps.Session.StarName()
	}
	if s.deps.EngineStatus != nil {
		status.Engine = s.deps.EngineStatus()
	}
	if s.deps.NavStatus != nil {
		status.Nav = s.deps.NavStatus()
	}
	if s.deps.Backend != nil {
		status.LastWriteDurationMs = float32(s.deps.Backend.LastWriteDuration().Milliseconds())
	}
	return status
}

// Start starts the status monitor goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine")

		var statusFile *os.File
		if s.deps.StatusDir != "" {
			var err error
			statusFile, err = os.Create(filepath.Join(s.deps.StatusDir, "status.json"))
			if err != nil {
				logger.Error("Error creating status file", "error", err)
			} else {
				defer statusFile.Close()
			}
		}

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				// nothing worth reporting before a sector is active
				if s.deps.Session != nil && !s.deps.Session.Active() {
					continue
				}

				status := s.GetProgramStatus()

				logger.Debug("Status",
					"sector", status.Sector,
					"discovered", status.Engine.Discovered,
					"queueDepth", status.Engine.QueueDepth,
					"navMode", status.Nav.Mode)

				if statusFile != nil {
					data, err := json.MarshalIndent(status, "", "  ")
					if err != nil {
						logger.Error("Error marshaling status", "error", err)
						continue
					}
					statusFile.Truncate(0)
					statusFile.Seek(0, 0)
					statusFile.Write(data)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
