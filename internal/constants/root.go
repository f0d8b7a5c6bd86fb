package constants

import "time"

const (
	AppName            = "foodplannery"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/foodplannery"
	DefaultConfigPath  = "~/.config/foodplannery/config.yaml"
	DefaultStoragePath = "~/.config/foodplannery/foodplannery.db"
	Version            = "v0.3.0"

	// DateFormat is the calendar date format stored in meal and consultation records (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the consultation time-of-day format (HH:MM)
	TimeFormat = "15:04"

	// Slot keys
	SlotMeals         = "foodplannery_meals"
	SlotConsultations = "foodplannery_consultations"
	SlotUser          = "foodplannery_user"
	SlotOTP           = "foodplannery_otp"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "foodplannery-"
	BackupFileSuffix = ".json"

	// Instance lock
	LockfileName = "foodplannery.lock"

	// OTP constants
	OTPLength     = 6
	DefaultOTPTTL = 10 * time.Minute

	// MaxOTPAttempts wrong codes discard the pending code
	MaxOTPAttempts = 5

	// Consultation scheduling window, in days from today
	DefaultConsultationWindowDays = 30
)

// DefaultConsultationSlots are the bookable consultation start times.
var DefaultConsultationSlots = []string{
	"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00",
}
