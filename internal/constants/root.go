package constants

import "time"

const (
	AppName            = "streakly"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/streakly/streakly.db"
	Version            = "v0.3.0"

	// DateFormat is the calendar-day stamp format used for completions (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat is the format accepted by the calendar command (YYYY-MM)
	MonthFormat = "2006-01"

	// Storage keys
	HabitsKey       = "habits"
	AchievementsKey = "achievements"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "streakly-"

	// Notify constants
	NotifierLockfileName   = "streakly-tray.lock"
	NotificationDurationMs = 4000
	TrayAppIdentifier      = "com.julianstephens.streakly"
	TrayExecutablePrefix   = "streakly-tray"
	TrayRequestTimeout     = 2 * time.Second

	// Env var names
	EnvConfig       = "STREAKLY_CONFIG"
	EnvDebug        = "STREAKLY_DEBUG"
	EnvTimezone     = "STREAKLY_TIMEZONE"
	EnvDBConnection = "STREAKLY_DB_CONNECTION"
)
