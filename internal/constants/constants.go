package constants

import "time"

const (
	AppName            = "habitlit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitlit"
	DefaultDBName      = "habitlit.db"
	ConfigFileName     = "config.toml"
	Version            = "v0.3.0"

	// DateFormat is the canonical day-key layout (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the reminder time layout (HH:MM)
	TimeFormat = "15:04"

	// Habit defaults
	DefaultCategory = "Other"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitlit-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "habitlit-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitlit"
	TrayProcessPrefix      = "habitlit-tray"
	DefaultReminderWindow  = 15 * time.Minute

	// Analytics
	DefaultCompletionWindowDays = 30

	// Environment
	EnvTestPostgresURL = "HABITLIT_TEST_POSTGRES_URL"
	EnvDBConnection    = "HABITLIT_DB_CONNECTION"
)

// Categories offered by the add-habit form.
var Categories = []string{
	"Health",
	"Fitness",
	"Learning",
	"Productivity",
	"Mindfulness",
	"Social",
	DefaultCategory,
}
