package services

import (
	"sort"
	"streakd/internal/models"
	"streakd/internal/providers"
	"streakd/internal/storage"
	"time"
)

const DefaultLeaderboardLimit = 10

type StreakServiceInterface interface {
	Record(channelID, userID string, ts *float64) (*models.RecordResult, error)
	GetUserStreak(channelID, userID string) (*models.UserStreak, error)
	GetStreak(channelID, userID string) (int, bool, error)
	Leaderboard(channelID string, limit int) ([]models.LeaderboardEntry, error)
	LatestPostDate(channelID string) (*models.Date, error)
	RecordsProcessed() int64
	MilestonesSent() int64
}

type StreakService struct {
	store   *storage.Store
	config  *models.StreakConfig
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	stats   *RecordStats
	now     func() time.Time
}

func NewStreakService(store *storage.Store, config *models.StreakConfig, logger providers.Logger, metrics providers.MetricsProviderInterface, stats *RecordStats) *StreakService {
	return &StreakService{
		store:   store,
		config:  config,
		logger:  logger,
		metrics: metrics,
		stats:   stats,
		now:     time.Now,
	}
}

// Record counts one qualifying message. A nil ts means the message was sent
// now. Tracking policy is not consulted here; callers gate on it first.
func (ss *StreakService) Record(channelID, userID string, ts *float64) (*models.RecordResult, error) {
	if err := validatePair(channelID, userID); err != nil {
		return nil, err
	}

	at := ss.now()
	if ts != nil {
		if err := models.ValidateTimestamp(*ts); err != nil {
			return nil, err
		}
		at = models.TimeOf(*ts)
	}
	// The zone can push an in-range instant past 9999-12-31 or before 0001-01-01.
	day := ss.config.DateOf(at)
	if err := day.Validate(); err != nil {
		return nil, err
	}

	var (
		result  *models.RecordResult
		outcome string
	)
	err := ss.store.Update(func(tx *storage.Tx) (err error) {
		result, outcome, err = ss.apply(tx, channelID, userID, day)
		return err
	})
	if err != nil {
		ss.logger.Errorf(providers.TypeRecord, "Record %s/%s on %s failed: %v", channelID, userID, day, err)
		return nil, err
	}

	ss.stats.processed.Inc()
	ss.metrics.IncRecords(outcome)
	if result.MilestoneMessage != nil {
		ss.stats.milestones.Inc()
		ss.metrics.IncMilestones(result.StreakLength)
		ss.logger.Infof(providers.TypeRecord, "Milestone: %s in %s reached %d days", userID, channelID, result.StreakLength)
	}
	return result, nil
}

func (ss *StreakService) apply(tx *storage.Tx, channelID, userID string, day models.Date) (*models.RecordResult, string, error) {
	result := &models.RecordResult{ChannelID: channelID, UserID: userID}
	offDay := ss.config.IsOffDay(day)

	inserted, err := tx.InsertPost(channelID, userID, day)
	if err != nil {
		return nil, "", err
	}
	row, err := tx.GetStreak(channelID, userID)
	if err != nil {
		return nil, "", err
	}

	if !inserted {
		result.CountedTowardStreak = !offDay
		if row != nil {
			result.StreakLength = row.CurrentStreak
		}
		return result, providers.OutcomeDuplicate, nil
	}
	result.IsNewDay = true

	if offDay {
		if row == nil {
			row = &models.StreakState{ChannelID: channelID, UserID: userID}
			if err := tx.PutStreak(row); err != nil {
				return nil, "", err
			}
		}
		result.StreakLength = row.CurrentStreak
		return result, providers.OutcomeOffDay, nil
	}

	if row == nil {
		row = &models.StreakState{ChannelID: channelID, UserID: userID}
	}

	outcome := providers.OutcomeStarted
	if row.LastCountedDate == nil {
		row.CurrentStreak = 1
		row.StreakStartDate = datePtr(day)
	} else {
		expected := ss.nextRequiredDate(*row.LastCountedDate)
		switch {
		case day.Equal(expected):
			row.CurrentStreak++
			if row.StreakStartDate == nil {
				row.StreakStartDate = datePtr(day)
			}
			outcome = providers.OutcomeContinued
		case day.Before(expected):
			ss.logger.Debugf(providers.TypeRecord, "Out-of-order message for %s in %s on %s (expected %s)", userID, channelID, day, expected)
			result.StreakLength = row.CurrentStreak
			return result, providers.OutcomeOutOfOrder, nil
		default:
			row.CurrentStreak = 1
			row.StreakStartDate = datePtr(day)
			outcome = providers.OutcomeReset
		}
	}
	row.LastCountedDate = datePtr(day)

	if row.CurrentStreak > row.LongestStreak {
		row.LongestStreak = row.CurrentStreak
		row.LongestStreakStart = datePtr(day)
		if row.CurrentStreak > 1 {
			row.LongestStreakStart = datePtr(*row.StreakStartDate)
		}
		row.LongestStreakEnd = datePtr(day)
	}

	if err := tx.PutStreak(row); err != nil {
		return nil, "", err
	}

	result.StreakLength = row.CurrentStreak
	result.CountedTowardStreak = true
	if msg, ok := MilestoneMessage(userID, row.CurrentStreak); ok {
		result.MilestoneMessage = &msg
	}
	return result, outcome, nil
}

// nextRequiredDate is the first day after last that is not an off-day. The
// walk stops after a week so a config with every day off cannot spin.
func (ss *StreakService) nextRequiredDate(last models.Date) models.Date {
	next := last.AddDays(1)
	for i := 0; i < 7 && ss.config.IsOffDay(next); i++ {
		next = next.AddDays(1)
	}
	return next
}

// GetUserStreak returns nil when the user has no row in the channel.
func (ss *StreakService) GetUserStreak(channelID, userID string) (*models.UserStreak, error) {
	if err := validatePair(channelID, userID); err != nil {
		return nil, err
	}
	var snapshot *models.UserStreak
	err := ss.store.View(func(tx *storage.Tx) error {
		row, err := tx.GetStreak(channelID, userID)
		if err != nil || row == nil {
			return err
		}
		snapshot = row.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (ss *StreakService) GetStreak(channelID, userID string) (int, bool, error) {
	snapshot, err := ss.GetUserStreak(channelID, userID)
	if err != nil || snapshot == nil {
		return 0, false, err
	}
	return snapshot.CurrentStreak, true, nil
}

// Leaderboard orders by current streak, highest first, breaking ties by user
// id. A non-positive limit falls back to DefaultLeaderboardLimit.
func (ss *StreakService) Leaderboard(channelID string, limit int) ([]models.LeaderboardEntry, error) {
	if err := models.ValidateID("channel", channelID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	var rows []*models.StreakState
	err := ss.store.View(func(tx *storage.Tx) (err error) {
		rows, err = tx.Streaks(channelID)
		return err
	})
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.LeaderboardEntry{UserID: row.UserID, CurrentStreak: row.CurrentStreak})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CurrentStreak != entries[j].CurrentStreak {
			return entries[i].CurrentStreak > entries[j].CurrentStreak
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (ss *StreakService) LatestPostDate(channelID string) (*models.Date, error) {
	if err := models.ValidateID("channel", channelID); err != nil {
		return nil, err
	}
	var latest *models.Date
	err := ss.store.View(func(tx *storage.Tx) (err error) {
		latest, err = tx.LatestPostDate(channelID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}

func (ss *StreakService) RecordsProcessed() int64 {
	return ss.stats.RecordsProcessed()
}

func (ss *StreakService) MilestonesSent() int64 {
	return ss.stats.MilestonesSent()
}

func validatePair(channelID, userID string) error {
	if err := models.ValidateID("channel", channelID); err != nil {
		return err
	}
	return models.ValidateID("user", userID)
}

func datePtr(d models.Date) *models.Date {
	return &d
}
