// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the framework-level settings (ports, TLS, logging, CORS, body limits);
// everything specific to the groups service lives here.
//
// The struct is passed to most lifecycle hooks, so any configuration
// needed during startup, request handling, or shutdown should live here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: geogroups-session)
	SessionDomain string // Cookie domain (blank means current host)

	// CSRF protection; blank falls back to SessionKey
	CSRFKey string

	// Group search index (blank keeps the index in memory)
	SearchIndexPath      string
	SearchResyncInterval time.Duration // zero disables the periodic rebuild

	// Email/SMTP configuration for invitation e-mails.
	// A blank host disables sending; invitations are still stored.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Base URL for links in e-mails (e.g., "https://geo.example.org")
	BaseURL string

	// Account created on first start when no user has this username
	SeedUsername string
	SeedPassword string

	// Groups per page on the list
	ListPageSize int

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAuth  string
	AuditLogGroup string
}
