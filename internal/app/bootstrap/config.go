// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/app/system/authz"
	"github.com/dalemusser/internhub/internal/app/system/inputval"
	"github.com/dalemusser/internhub/internal/app/system/lbcache"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for InternHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: INTERNHUB_MONGO_URI, INTERNHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "internhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},
	{Name: "redis_url", Default: "", Desc: "Redis URL for the shared leaderboard cache (blank: in-process cache)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "internhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	// Google sign-in
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL, used for the OAuth callback"},
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "staff_emails", Default: "", Desc: "Comma-separated emails granted the staff role at sign-in"},

	{Name: "tracks_file", Default: "", Desc: "TOML track catalog (blank: built-in tracks)"},

	// Submission storage
	{Name: "storage_type", Default: "local", Desc: "Submission storage backend: 'local' or 'drive'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for submission files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},
	{Name: "drive_credentials_file", Default: "", Desc: "Service-account JSON for Google Drive storage"},
	{Name: "drive_folder_id", Default: "", Desc: "Google Drive folder receiving submissions"},

	// Sheets export
	{Name: "sheets_credentials_file", Default: "", Desc: "Service-account JSON for the Google Sheets export"},
	{Name: "sheets_spreadsheet_id", Default: "", Desc: "Spreadsheet receiving the submissions export (blank disables)"},
	{Name: "sheets_range", Default: "Submissions!A1", Desc: "A1 range overwritten by the export"},

	{Name: "leaderboard_cache_ttl", Default: "5m", Desc: "Leaderboard read cache lifetime"},
	{Name: "submit_rate_limit", Default: 10, Desc: "Submission attempts allowed per student per window"},
	{Name: "submit_rate_window", Default: "1m", Desc: "Submission rate-limit window"},

	{Name: "audit_log_auth", Default: "all", Desc: "Sign-in audit destination: all, db, log or off"},
	{Name: "audit_log_staff", Default: "all", Desc: "Staff action audit destination: all, db, log or off"},

	{Name: "reconcile_interval", Default: "1h", Desc: "Leaderboard rebuild interval (0 disables)"},
	{Name: "backfill_interval", Default: "24h", Desc: "Profile directory backfill interval (0 disables)"},

	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for aggregations"},
	{Name: "timeout_long", Default: "60s", Desc: "Timeout for uploads, exports and rebuilds"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, INTERNHUB_* for app) and flags,
// with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "INTERNHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		RedisURL:         appValues.String("redis_url"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		BaseURL:            appValues.String("base_url"),
		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		StaffEmails:        appValues.String("staff_emails"),

		TracksFile: appValues.String("tracks_file"),

		StorageType:          strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath:     appValues.String("storage_local_path"),
		StorageLocalURL:      appValues.String("storage_local_url"),
		DriveCredentialsFile: appValues.String("drive_credentials_file"),
		DriveFolderID:        appValues.String("drive_folder_id"),

		SheetsCredentialsFile: appValues.String("sheets_credentials_file"),
		SheetsSpreadsheetID:   appValues.String("sheets_spreadsheet_id"),
		SheetsRange:           appValues.String("sheets_range"),

		LeaderboardCacheTTL: appValues.Duration("leaderboard_cache_ttl", lbcache.DefaultTTL),
		SubmitRateLimit:     appValues.Int("submit_rate_limit"),
		SubmitRateWindow:    appValues.Duration("submit_rate_window", time.Minute),

		AuditAuth:  strings.ToLower(strings.TrimSpace(appValues.String("audit_log_auth"))),
		AuditStaff: strings.ToLower(strings.TrimSpace(appValues.String("audit_log_staff"))),

		ReconcileInterval: appValues.Duration("reconcile_interval", time.Hour),
		BackfillInterval:  appValues.Duration("backfill_interval", 24*time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 60*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Every problem found is reported at once.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	err := validateAppConfig(appCfg, coreCfg.Env == "prod")
	if err != nil {
		logger.Error("invalid app configuration", zap.Error(err))
	}
	return err
}

func validateAppConfig(c AppConfig, prod bool) error {
	var errs []error
	if err := wafflemongo.ValidateURI(c.MongoURI); err != nil {
		errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
	}
	if strings.TrimSpace(c.MongoDatabase) == "" {
		errs = append(errs, errors.New("mongo_database is required"))
	}
	if c.SessionKey == "" {
		errs = append(errs, errors.New("session_key is required"))
	} else if prod && len(c.SessionKey) < 32 {
		errs = append(errs, errors.New("session_key must be at least 32 characters in production"))
	}
	if (c.GoogleClientID == "") != (c.GoogleClientSecret == "") {
		errs = append(errs, errors.New("google_client_id and google_client_secret must be set together"))
	}
	if c.GoogleEnabled() && strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("base_url is required for Google sign-in"))
	}
	switch c.StorageType {
	case "local":
		if strings.TrimSpace(c.StorageLocalPath) == "" {
			errs = append(errs, errors.New("storage_local_path is required for local storage"))
		}
		if !strings.HasPrefix(c.StorageLocalURL, "/") {
			errs = append(errs, errors.New("storage_local_url must start with '/'"))
		}
	case "drive":
		if c.DriveCredentialsFile == "" || c.DriveFolderID == "" {
			errs = append(errs, errors.New("drive storage requires drive_credentials_file and drive_folder_id"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage_type must be 'local' or 'drive', got %q", c.StorageType))
	}
	if (c.SheetsSpreadsheetID == "") != (c.SheetsCredentialsFile == "") {
		errs = append(errs, errors.New("sheets_spreadsheet_id and sheets_credentials_file must be set together"))
	}
	if c.SubmitRateLimit < 1 {
		errs = append(errs, errors.New("submit_rate_limit must be at least 1"))
	}
	if !auditlog.ValidSetting(c.AuditAuth) || !auditlog.ValidSetting(c.AuditStaff) {
		errs = append(errs, errors.New("audit_log_auth and audit_log_staff must be all, db, log or off"))
	}
	var badStaff []string
	for email := range authz.ParseStaffList(c.StaffEmails) {
		if !inputval.IsValidEmail(email) {
			badStaff = append(badStaff, email)
		}
	}
	if len(badStaff) > 0 {
		sort.Strings(badStaff)
		errs = append(errs, fmt.Errorf("staff_emails has invalid addresses: %s", strings.Join(badStaff, ", ")))
	}
	if c.ReconcileInterval < 0 || c.BackfillInterval < 0 {
		errs = append(errs, errors.New("job intervals must not be negative"))
	}
	return errors.Join(errs...)
}
