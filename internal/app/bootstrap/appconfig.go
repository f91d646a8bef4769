// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, and request limits. AppConfig is
// where everything specific to this application lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Notification configuration
	NotifyDebounce  time.Duration // Duplicate-suppression window; zero disables
	NotifyRedisAddr string        // Redis address for the debounce store; blank means in-process

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty disables auth)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address
	MailFromName string // From display name

	// Base URL for notification links
	BaseURL string // e.g., "https://mentorhub.example" or "http://localhost:3000"

	// Meeting room links
	MeetDomain string // Video-conference domain used to mint room links

	// Scheduling defaults
	DefaultTimezone string // Timezone applied to batches published without one
	BatchExpiryDays int    // Days until a published batch stops accepting bookings

	// Background maintenance
	RepairInterval time.Duration // How often the duplicate repair pass runs; zero disables
}
