package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"streakd/internal/models"
	"streakd/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks struct tags first, then the settings that need domain rules.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	if _, err := models.NewStreakConfig(cv.conf.Streak.OffDays, cv.conf.Streak.Timezone); err != nil {
		return fmt.Errorf("streak: %w", err)
	}
	if cv.conf.Backup.FilePath != "" && cv.conf.Backup.Interval < 0 {
		return fmt.Errorf("backup: interval must not be negative")
	}
	if cv.conf.Cache.Enabled && cv.conf.Cache.TTL < 0 {
		return fmt.Errorf("cache: ttl must not be negative")
	}
	return nil
}

// NewStreakConfigProvider builds the engine configuration from the daemon config.
func NewStreakConfigProvider(conf *structures.Config) (*models.StreakConfig, error) {
	return models.NewStreakConfig(conf.Streak.OffDays, conf.Streak.Timezone)
}
