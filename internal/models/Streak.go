package models

// StreakState is the persisted row for one (channel, user) pair.
type StreakState struct {
	ChannelID          string `json:"channel_id"`
	UserID             string `json:"user_id"`
	CurrentStreak      int    `json:"current_streak"`
	LongestStreak      int    `json:"longest_streak"`
	StreakStartDate    *Date  `json:"streak_start_date"`
	LastCountedDate    *Date  `json:"last_counted_date"`
	LongestStreakStart *Date  `json:"longest_streak_start"`
	LongestStreakEnd   *Date  `json:"longest_streak_end"`
}

// Snapshot returns the read-only view of the row.
func (s *StreakState) Snapshot() *UserStreak {
	return &UserStreak{
		CurrentStreak:      s.CurrentStreak,
		LongestStreak:      s.LongestStreak,
		StreakStartDate:    s.StreakStartDate,
		LastCountedDate:    s.LastCountedDate,
		LongestStreakStart: s.LongestStreakStart,
		LongestStreakEnd:   s.LongestStreakEnd,
	}
}

type UserStreak struct {
	CurrentStreak      int   `json:"current_streak"`
	LongestStreak      int   `json:"longest_streak"`
	StreakStartDate    *Date `json:"streak_start_date"`
	LastCountedDate    *Date `json:"last_counted_date"`
	LongestStreakStart *Date `json:"longest_streak_start"`
	LongestStreakEnd   *Date `json:"longest_streak_end"`
}

// RecordResult is what the engine reports for one recorded message.
type RecordResult struct {
	ChannelID           string  `json:"channel_id"`
	UserID              string  `json:"user_id"`
	StreakLength        int     `json:"streak_length"`
	MilestoneMessage    *string `json:"milestone_message,omitempty"`
	IsNewDay            bool    `json:"is_new_day"`
	CountedTowardStreak bool    `json:"counted_toward_streak"`
}

type LeaderboardEntry struct {
	UserID        string `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
}

// PostRecord marks that a user already has a qualifying day in a channel.
type PostRecord struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Date      Date   `json:"date"`
}
