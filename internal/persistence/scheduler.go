package persistence

import (
	"sync"

	"ade/internal/engine"
	"ade/internal/persistence/interfaces"
	"ade/internal/providers"
	"ade/internal/structures"
)

// Scheduler periodically saves the engine state file. It re-arms a one-shot
// timer through the engine clock after every save, mirroring how the display
// scheduler owns its cadence.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	clock       engine.Clock
	fileManager *FileManager

	mu      sync.Mutex
	opsMu   sync.Mutex
	token   engine.CancelToken
	running bool
}

func (s *Scheduler) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = true
	s.armLocked()
}

func (s *Scheduler) armLocked() {
	s.token = s.clock.Schedule(s.config.Persistence.SaveInterval, s.run)
}

func (s *Scheduler) run() {
	err := s.Persist()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
	} else {
		s.logger.Infof(providers.TypeApp, "Persisted state to file %s", s.config.Persistence.FilePath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.armLocked()
	}
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if s.token != nil {
		s.token.Cancel()
		s.token = nil
	}
}

func (s *Scheduler) Restore() error {
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := s.clock.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	s.metrics.ObservePersistenceDuration(s.clock.Now().Sub(start))
	return err
}

func NewScheduler(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, clock engine.Clock, fileManager *FileManager) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		fileManager: fileManager,
	}
}
