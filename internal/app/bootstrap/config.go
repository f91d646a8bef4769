// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for MentorHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, base_url, etc.
//   - Environment variables: MENTORHUB_MONGO_URI, MENTORHUB_BASE_URL, etc.
//   - Command-line flags: --mongo_uri, --base_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "mentorhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Notification configuration
	{Name: "notify_debounce_ms", Default: 120000, Desc: "Notification duplicate-suppression window in milliseconds (0 disables)"},
	{Name: "notify_redis_addr", Default: "", Desc: "Redis address for the debounce store (blank means in-process)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@mentorhub.example", Desc: "From email address"},
	{Name: "mail_from_name", Default: "MentorHub", Desc: "From display name"},

	// Base URL for notification links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for notification links"},

	// Meeting rooms
	{Name: "meet_domain", Default: "meet.jit.si", Desc: "Video-conference domain for minted room links"},

	// Scheduling defaults
	{Name: "default_timezone", Default: "UTC", Desc: "Timezone applied to batches published without one"},
	{Name: "batch_expiry_days", Default: 7, Desc: "Days until a published batch stops accepting bookings (0 means never)"},

	// Background maintenance
	{Name: "repair_interval", Default: "24h", Desc: "Interval between duplicate-enrollment repair passes (0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, MENTORHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MENTORHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		NotifyDebounce:  time.Duration(appValues.Int("notify_debounce_ms")) * time.Millisecond,
		NotifyRedisAddr: appValues.String("notify_redis_addr"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL:    appValues.String("base_url"),
		MeetDomain: appValues.String("meet_domain"),

		DefaultTimezone: appValues.String("default_timezone"),
		BatchExpiryDays: appValues.Int("batch_expiry_days"),

		RepairInterval: appValues.Duration("repair_interval", 24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig verifies configuration before any backends are touched.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.NotifyDebounce < 0 {
		return fmt.Errorf("notify_debounce_ms must not be negative")
	}
	if appCfg.BatchExpiryDays < 0 {
		return fmt.Errorf("batch_expiry_days must not be negative")
	}
	if _, err := time.LoadLocation(appCfg.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid default_timezone %q: %w", appCfg.DefaultTimezone, err)
	}

	return nil
}
