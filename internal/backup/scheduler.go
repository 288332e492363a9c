package backup

import (
	"github.com/roylee0704/gron"
	"go.uber.org/atomic"
	"streakd/internal/backup/interfaces"
	"streakd/internal/providers"
	"streakd/internal/structures"
	"sync"
	"time"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
	lastBackup  atomic.Time
}

func (s *Scheduler) enabled() bool {
	return s.config.Backup.FilePath != ""
}

// Init starts periodic backups. It does nothing when backups are disabled.
func (s *Scheduler) Init() {
	if !s.enabled() || s.config.Backup.Interval <= 0 {
		s.logger.Infof(providers.TypeApp, "Periodic backups disabled")
		return
	}

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Backup.Interval), func() {
		if err := s.save(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while backing up data: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Backed up data to file %s", s.config.Backup.FilePath)
	})
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore loads the backup file, but only into an empty store: the database
// is the source of truth once it holds data.
func (s *Scheduler) Restore() error {
	if !s.enabled() {
		return nil
	}
	empty, err := s.fileManager.IsStoreEmpty()
	if err != nil {
		return err
	}
	if !empty {
		s.logger.Infof(providers.TypeApp, "Store already holds data, skipping restore from %s", s.config.Backup.FilePath)
		return nil
	}
	return s.fileManager.LoadFromFile(s.config.Backup.FilePath)
}

// Persist writes a final backup at shutdown.
func (s *Scheduler) Persist() error {
	if !s.enabled() {
		return nil
	}
	s.logger.Infof(providers.TypeApp, "Backing up streaks to file...")
	if err := s.save(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while backing up data: %s", err)
		return err
	}
	return nil
}

func (s *Scheduler) save() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	if err := s.fileManager.SaveToFile(s.config.Backup.FilePath); err != nil {
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	s.lastBackup.Store(time.Now())
	return nil
}

// LastBackup returns when the last backup succeeded, or the zero time.
func (s *Scheduler) LastBackup() time.Time {
	return s.lastBackup.Load()
}

func NewScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, metrics providers.MetricsProviderInterface) *Scheduler {
	return &Scheduler{
		config:      config,
		logger:      logger,
		fileManager: fileManager,
		metrics:     metrics,
	}
}

var _ interfaces.SchedulerInterface = (*Scheduler)(nil)
