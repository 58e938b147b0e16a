package update

import (
	"os"
	"strconv"
	"strings"
)

type RuntimeConfig struct {
	DBPath               string
	FeedPath             string
	LogPath              string
	Capacity             int
	SyncIntervalMinutes  int
	SchedulerBuffer      int
	DesktopNotifications bool
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DBPath:               "remindd.db",
		FeedPath:             "desired_reminders.json",
		LogPath:              "",
		Capacity:             64,
		SyncIntervalMinutes:  5,
		SchedulerBuffer:      64,
		DesktopNotifications: false,
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvStr("REMINDD_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvStr("REMINDD_FEED_PATH"); ok {
		cfg.FeedPath = v
	}
	if v, ok := getEnvStr("REMINDD_LOG_PATH"); ok {
		cfg.LogPath = v
	}
	if v, ok := getEnvInt("REMINDD_CAPACITY"); ok && v >= 0 {
		cfg.Capacity = v
	}
	if v, ok := getEnvInt("REMINDD_SYNC_INTERVAL_MINUTES"); ok && v > 0 {
		cfg.SyncIntervalMinutes = v
	}
	if v, ok := getEnvInt("REMINDD_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvBool("REMINDD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	return cfg
}

func getEnvStr(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
