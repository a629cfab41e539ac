package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	SendGrid   SendGridConfig   `yaml:"sendgrid"`
	Escrow     EscrowConfig     `yaml:"escrow"`
	Commission CommissionConfig `yaml:"commission"`
	Discount   DiscountConfig   `yaml:"discount"`
	Log        LogConfig        `yaml:"log"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// GatewayConfig contains payment gateway settings
type GatewayConfig struct {
	BaseURL           string `yaml:"base_url"`
	AccessToken       string `yaml:"access_token"`
	WebhookSecret     string `yaml:"webhook_secret"`
	EnforceSignatures bool   `yaml:"enforce_signatures"` // false only in non-production setups
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
}

// SendGridConfig contains notification email settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// EscrowConfig contains escrow policy settings
type EscrowConfig struct {
	ConfirmationWindowHours   int `yaml:"confirmation_window_hours"`
	CancellationLeadTimeHours int `yaml:"cancellation_lead_time_hours"`
}

// CommissionConfig contains the platform commission schedule, in whole
// percentage points. The premium rate applies when the tutor's premium
// flag is active at payment time.
type CommissionConfig struct {
	StandardPct int32 `yaml:"standard_pct"`
	PremiumPct  int32 `yaml:"premium_pct"`
	PayoutPct   int32 `yaml:"payout_pct"`
}

// DiscountConfig contains promotional discount policy settings
type DiscountConfig struct {
	Percentage   int32 `yaml:"percentage"`
	CooldownDays int   `yaml:"cooldown_days"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SweepExpiredEscrows      string `yaml:"sweep_expired_escrows"`
	ReconcilePendingPayments string `yaml:"reconcile_pending_payments"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Gateway
	if val := os.Getenv("GATEWAY_BASE_URL"); val != "" {
		c.Gateway.BaseURL = val
	}
	if val := os.Getenv("GATEWAY_ACCESS_TOKEN"); val != "" {
		c.Gateway.AccessToken = val
	}
	if val := os.Getenv("GATEWAY_WEBHOOK_SECRET"); val != "" {
		c.Gateway.WebhookSecret = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and applies policy defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Gateway validation
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway base URL is required")
	}
	if c.Gateway.AccessToken == "" {
		return fmt.Errorf("gateway access token is required")
	}
	if c.Gateway.EnforceSignatures && c.Gateway.WebhookSecret == "" {
		return fmt.Errorf("gateway webhook secret is required when signature enforcement is on")
	}
	if c.Gateway.TimeoutSeconds == 0 {
		c.Gateway.TimeoutSeconds = 10
	}

	// Escrow policy defaults
	if c.Escrow.ConfirmationWindowHours == 0 {
		c.Escrow.ConfirmationWindowHours = 24
	}
	if c.Escrow.CancellationLeadTimeHours == 0 {
		c.Escrow.CancellationLeadTimeHours = 2
	}

	// Commission schedule defaults
	if c.Commission.StandardPct == 0 {
		c.Commission.StandardPct = 20
	}
	if c.Commission.PremiumPct == 0 {
		c.Commission.PremiumPct = 15
	}
	if c.Commission.PayoutPct == 0 {
		c.Commission.PayoutPct = 10
	}
	if c.Commission.StandardPct < 0 || c.Commission.StandardPct > 100 ||
		c.Commission.PremiumPct < 0 || c.Commission.PremiumPct > 100 ||
		c.Commission.PayoutPct < 0 || c.Commission.PayoutPct > 100 {
		return fmt.Errorf("commission percentages must be between 0 and 100")
	}

	// Discount policy defaults
	if c.Discount.Percentage == 0 {
		c.Discount.Percentage = 10
	}
	if c.Discount.Percentage < 0 || c.Discount.Percentage > 100 {
		return fmt.Errorf("discount percentage must be between 0 and 100")
	}
	if c.Discount.CooldownDays == 0 {
		c.Discount.CooldownDays = 180
	}

	// Scheduler defaults
	if c.Scheduler.SweepExpiredEscrows == "" {
		c.Scheduler.SweepExpiredEscrows = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.ReconcilePendingPayments == "" {
		c.Scheduler.ReconcilePendingPayments = "0 15 * * * *" // hourly at :15
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ConfirmationWindow returns the escrow confirmation window as a duration
func (c *EscrowConfig) ConfirmationWindow() time.Duration {
	return time.Duration(c.ConfirmationWindowHours) * time.Hour
}

// CancellationLeadTime returns the minimum cancellation lead time
func (c *EscrowConfig) CancellationLeadTime() time.Duration {
	return time.Duration(c.CancellationLeadTimeHours) * time.Hour
}

// Cooldown returns the discount eligibility cooldown as a duration
func (c *DiscountConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownDays) * 24 * time.Hour
}
