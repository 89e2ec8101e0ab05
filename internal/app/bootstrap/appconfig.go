// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (INTERNHUB_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings: ports, TLS, logging, CORS and
// request limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Optional Redis for the shared leaderboard cache (blank keeps it in process)
	RedisURL string

	// Session management configuration
	SessionKey    string        // Secret for signing session cookies (≥32 chars in production)
	SessionName   string        // Cookie name (default: internhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Google sign-in
	BaseURL            string // e.g., "https://internhub.example.org"; the OAuth callback hangs off it
	GoogleClientID     string
	GoogleClientSecret string
	StaffEmails        string // comma-separated allow-list granted the staff role

	// Track catalog (TOML); blank uses the built-in tracks
	TracksFile string

	// Submission file storage: "local" or "drive"
	StorageType          string
	StorageLocalPath     string // e.g., "./uploads"
	StorageLocalURL      string // URL prefix the local files are served under, e.g., "/files"
	DriveCredentialsFile string
	DriveFolderID        string

	// Optional Google Sheets export
	SheetsCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsRange           string

	// Leaderboard cache lifetime
	LeaderboardCacheTTL time.Duration

	// Per-student submission attempts allowed per window
	SubmitRateLimit  int
	SubmitRateWindow time.Duration

	// Audit destinations per category: all, db, log or off
	AuditAuth  string
	AuditStaff string

	// Background job intervals (0 disables the job)
	ReconcileInterval time.Duration
	BackfillInterval  time.Duration

	// Database operation timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c AppConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// SheetsEnabled reports whether the spreadsheet push is configured.
func (c AppConfig) SheetsEnabled() bool {
	return c.SheetsSpreadsheetID != "" && c.SheetsCredentialsFile != ""
}
