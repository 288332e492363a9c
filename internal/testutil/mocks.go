package testutil

import (
	"sort"
	"streakd/internal/models"
	"streakd/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// record outcomes and milestones.
type MockMetrics struct {
	mu          sync.Mutex
	Outcomes    map[string]int
	Milestones  []int
	Persistence int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Outcomes: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persistence++
}

func (m *MockMetrics) IncRecords(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes[outcome]++
}

func (m *MockMetrics) IncMilestones(length int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Milestones = append(m.Milestones, length)
}

// MockStreakService implements services.StreakServiceInterface.
type MockStreakService struct {
	mu            sync.Mutex
	RecordCalls   []RecordCall
	RecordResult  *models.RecordResult
	RecordErr     error
	Streaks       map[string]*models.UserStreak // key: "channel:user"
	Entries       map[string][]models.LeaderboardEntry
	LeaderboardFn func(channelID string, limit int) ([]models.LeaderboardEntry, error)
	QueryErr      error
	Latest        map[string]models.Date
	Processed     int64
	Milestones    int64
}

type RecordCall struct {
	Channel string
	User    string
	Ts      *float64
}

func (m *MockStreakService) Record(channelID, userID string, ts *float64) (*models.RecordResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordCalls = append(m.RecordCalls, RecordCall{Channel: channelID, User: userID, Ts: ts})
	if m.RecordErr != nil {
		return nil, m.RecordErr
	}
	if m.RecordResult != nil {
		return m.RecordResult, nil
	}
	return &models.RecordResult{ChannelID: channelID, UserID: userID, StreakLength: 1, IsNewDay: true, CountedTowardStreak: true}, nil
}

func (m *MockStreakService) GetUserStreak(channelID, userID string) (*models.UserStreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.Streaks[channelID+":"+userID], nil
}

func (m *MockStreakService) GetStreak(channelID, userID string) (int, bool, error) {
	s, err := m.GetUserStreak(channelID, userID)
	if err != nil || s == nil {
		return 0, false, err
	}
	return s.CurrentStreak, true, nil
}

func (m *MockStreakService) Leaderboard(channelID string, limit int) ([]models.LeaderboardEntry, error) {
	if m.LeaderboardFn != nil {
		return m.LeaderboardFn(channelID, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.Entries[channelID], nil
}

func (m *MockStreakService) LatestPostDate(channelID string) (*models.Date, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.Latest[channelID]; ok {
		return &d, nil
	}
	return nil, m.QueryErr
}

func (m *MockStreakService) RecordsProcessed() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Processed
}

func (m *MockStreakService) MilestonesSent() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Milestones
}

// MockTrackingService implements services.TrackingServiceInterface in memory.
type MockTrackingService struct {
	mu         sync.Mutex
	Restricted bool
	Channels   map[string]bool
	Err        error
}

func NewMockTrackingService() *MockTrackingService {
	return &MockTrackingService{Channels: make(map[string]bool)}
}

func (m *MockTrackingService) IsChannelTracked(channelID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	return !m.Restricted || m.Channels[channelID], nil
}

func (m *MockTrackingService) EnableChannel(channelID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	m.Restricted = true
	if m.Channels[channelID] {
		return false, nil
	}
	m.Channels[channelID] = true
	return true, nil
}

func (m *MockTrackingService) DisableChannel(channelID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if !m.Channels[channelID] {
		return false, nil
	}
	delete(m.Channels, channelID)
	return true, nil
}

func (m *MockTrackingService) ResetChannelTracking() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Restricted = false
	m.Channels = make(map[string]bool)
	return nil
}

func (m *MockTrackingService) TrackedChannels() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []string{}
	if !m.Restricted {
		return out, nil
	}
	for ch := range m.Channels {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MockTrackingService) IsTrackingRestricted() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Restricted, m.Err
}

func (m *MockTrackingService) TrackingMode() (models.TrackingMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Restricted {
		return models.TrackingModeLimited, m.Err
	}
	return models.TrackingModeAll, m.Err
}

func (m *MockTrackingService) SetTrackingMode(mode string) error {
	parsed, err := models.ParseTrackingMode(mode)
	if err != nil {
		return err
	}
	if parsed == models.TrackingModeAll {
		return m.ResetChannelTracking()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Restricted = true
	return m.Err
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu     sync.Mutex
	Data   map[string][]byte
	Clears int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.Clears++
}

// MockCompressor implements backup.Compressor with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}
