package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"streakd/internal/structures"
	"strings"
	"time"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("streak.timezone", "UTC")
	v.SetDefault("backup.interval", 10*time.Minute)
	v.SetDefault("cache.ttl", 5*time.Second)

	v.BindEnv("logger.level", "STREAKD_LOG_LEVEL")
	v.BindEnv("streak.timezone", "STREAKD_TIMEZONE")
	v.BindEnv("streak.offDays", "STREAKD_OFF_DAYS")
	v.BindEnv("storage.path", "STREAKD_STORAGE_PATH")
	v.BindEnv("backup.interval", "STREAKD_BACKUP_INTERVAL")
	v.BindEnv("cache.enabled", "STREAKD_CACHE_ENABLED")
	v.BindEnv("cache.size", "STREAKD_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "StreakDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
