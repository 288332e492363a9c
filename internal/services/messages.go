package services

import (
	"fmt"
	"streakd/internal/models"
	"strings"
)

var milestones = map[int]struct{}{
	7: {}, 14: {}, 30: {}, 60: {}, 90: {}, 180: {}, 365: {}, 730: {},
}

// MilestoneMessage returns the celebration text when length is a milestone.
func MilestoneMessage(userID string, length int) (string, bool) {
	if _, ok := milestones[length]; !ok {
		return "", false
	}
	return fmt.Sprintf(":tada: <@%s> just hit a %s streak!", userID, streakPeriod(length)), true
}

// streakPeriod prefers years, then months, then weeks.
func streakPeriod(days int) string {
	switch {
	case days%365 == 0:
		return plural(days/365, "year")
	case days%30 == 0 && days >= 30:
		return plural(days/30, "month")
	default:
		return plural(days/7, "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatUserStreak renders a user's streak for a chat reply. A nil streak
// means the user never posted in the channel.
func FormatUserStreak(userID string, streak *models.UserStreak) string {
	if streak == nil || streak.CurrentStreak == 0 {
		message := fmt.Sprintf("<@%s> does not have an active streak yet.", userID)
		if streak != nil && streak.LongestStreak > 0 {
			message += fmt.Sprintf(" Their longest streak so far is %s.", plural(streak.LongestStreak, "day"))
		}
		return message
	}

	message := fmt.Sprintf("<@%s> is on a %d-day streak!", userID, streak.CurrentStreak)
	if streak.LongestStreak > streak.CurrentStreak {
		message += fmt.Sprintf(" Their longest streak is %s.", plural(streak.LongestStreak, "day"))
	} else if streak.LongestStreak == streak.CurrentStreak {
		message += " That's their personal best!"
	}
	return message
}

func FormatLeaderboard(entries []models.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "No streaks recorded yet."
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, ":trophy: Current streak leaderboard:")
	for i, entry := range entries {
		lines = append(lines, fmt.Sprintf("%d. <@%s> — %s", i+1, entry.UserID, plural(entry.CurrentStreak, "day")))
	}
	return strings.Join(lines, "\n")
}

func FormatTrackingStatus(restricted bool, channels []string) string {
	if !restricted {
		return "Streaks are currently tracked in every channel."
	}
	if len(channels) == 0 {
		return "Streaks are currently not tracked in any channel. Enable tracking in a channel to add it."
	}
	quoted := make([]string, len(channels))
	for i, ch := range channels {
		quoted[i] = "`" + ch + "`"
	}
	return fmt.Sprintf("Streaks are tracked only in these channels: %s.", strings.Join(quoted, ", "))
}

// FormatTrackingChange renders the reply to a tracking action. changed
// reports whether enable/disable actually altered the tracked set.
func FormatTrackingChange(action string, changed bool) string {
	switch action {
	case TrackingActionEnable:
		if changed {
			return "Streaks will now be tracked in this channel. Other channels must also opt in to be tracked."
		}
		return "Streak tracking is already enabled in this channel."
	case TrackingActionDisable:
		if changed {
			return "Streaks will no longer be tracked in this channel."
		}
		return "Streak tracking was already disabled in this channel."
	case TrackingActionReset:
		return "Tracked channel list cleared. Streaks are tracked in every channel again."
	}
	return ""
}

const (
	TrackingActionEnable  = "enable"
	TrackingActionDisable = "disable"
	TrackingActionReset   = "reset"
	TrackingActionStatus  = "status"
)

// ParseTrackingAction normalises the accepted synonyms for each action.
func ParseTrackingAction(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enable", "on", "start":
		return TrackingActionEnable, nil
	case "disable", "off", "stop":
		return TrackingActionDisable, nil
	case "reset", "all", "any":
		return TrackingActionReset, nil
	case "status", "list":
		return TrackingActionStatus, nil
	}
	return "", fmt.Errorf("%w: unknown tracking action %q (use enable|disable|status|reset)", models.ErrInvalidInput, s)
}
