// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for GeoGroups.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: GEOGROUPS_MONGO_URI, GEOGROUPS_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "geogroups", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "geogroups-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "csrf_key", Default: "", Desc: "32-byte CSRF key (blank reuses session_key)"},

	// Group search
	{Name: "search_index_path", Default: "", Desc: "Bleve index directory (blank keeps the index in memory)"},
	{Name: "search_resync_interval", Default: "15m", Desc: "How often to rebuild the search index from MongoDB (0 disables)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables invitation e-mails)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@geogroups.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "GeoGroups", Desc: "From display name"},

	// Base URL for email links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for links in invitation e-mails"},

	// First account
	{Name: "seed_username", Default: "", Desc: "Username created on startup if missing"},
	{Name: "seed_password", Default: "", Desc: "Password for seed_username"},

	{Name: "list_page_size", Default: 25, Desc: "Groups per page on the list"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_group", Default: "all", Desc: "Group event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, GEOGROUPS_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "GEOGROUPS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		CSRFKey:          appValues.String("csrf_key"),

		// Search
		SearchIndexPath:      appValues.String("search_index_path"),
		SearchResyncInterval: appValues.Duration("search_resync_interval", 15*time.Minute),

		// Email/SMTP
		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL: appValues.String("base_url"),

		SeedUsername: appValues.String("seed_username"),
		SeedPassword: appValues.String("seed_password"),

		ListPageSize: appValues.Int("list_page_size"),

		// Audit logging
		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogGroup: appValues.String("audit_log_group"),
	}

	return coreCfg, appCfg, nil
}

var auditSettings = map[string]bool{"": true, "all": true, "db": true, "log": true, "off": true}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// GeoGroups checks the MongoDB URI format before attempting to connect,
// and rejects settings that would otherwise fail on first use.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if appCfg.CSRFKey != "" && len(appCfg.CSRFKey) != 32 {
		return fmt.Errorf("csrf_key must be exactly 32 bytes, got %d", len(appCfg.CSRFKey))
	}
	if appCfg.SeedUsername != "" && appCfg.SeedPassword == "" {
		return fmt.Errorf("seed_username %q is set but seed_password is empty", appCfg.SeedUsername)
	}
	if appCfg.ListPageSize < 0 {
		return fmt.Errorf("list_page_size must not be negative")
	}
	if !auditSettings[appCfg.AuditLogAuth] {
		return fmt.Errorf("audit_log_auth: unknown value %q", appCfg.AuditLogAuth)
	}
	if !auditSettings[appCfg.AuditLogGroup] {
		return fmt.Errorf("audit_log_group: unknown value %q", appCfg.AuditLogGroup)
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return fmt.Errorf("session_key must be changed in production")
	}
	return nil
}

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
