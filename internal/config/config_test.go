package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "tutorlink", Database: "tutorlink"},
		Gateway:  GatewayConfig{BaseURL: "https://gateway.example.com", AccessToken: "token"},
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("Applies policy defaults", func(t *testing.T) {
		cfg := validConfig()

		assert.NoError(t, cfg.Validate())
		assert.Equal(t, 24, cfg.Escrow.ConfirmationWindowHours)
		assert.Equal(t, 2, cfg.Escrow.CancellationLeadTimeHours)
		assert.Equal(t, int32(20), cfg.Commission.StandardPct)
		assert.Equal(t, int32(15), cfg.Commission.PremiumPct)
		assert.Equal(t, int32(10), cfg.Discount.Percentage)
		assert.Equal(t, 180, cfg.Discount.CooldownDays)
		assert.NotEmpty(t, cfg.Scheduler.SweepExpiredEscrows)
		assert.NotEmpty(t, cfg.Scheduler.ReconcilePendingPayments)
	})

	t.Run("Keeps explicit values", func(t *testing.T) {
		cfg := validConfig()
		cfg.Escrow.ConfirmationWindowHours = 48
		cfg.Commission.StandardPct = 25

		assert.NoError(t, cfg.Validate())
		assert.Equal(t, 48, cfg.Escrow.ConfirmationWindowHours)
		assert.Equal(t, int32(25), cfg.Commission.StandardPct)
	})

	t.Run("Rejects enforced signatures without a secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Gateway.EnforceSignatures = true

		assert.Error(t, cfg.Validate())

		cfg.Gateway.WebhookSecret = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Rejects an out-of-range commission", func(t *testing.T) {
		cfg := validConfig()
		cfg.Commission.StandardPct = 120

		assert.Error(t, cfg.Validate())
	})

	t.Run("Rejects a missing database host", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Host = ""

		assert.Error(t, cfg.Validate())
	})

	t.Run("Rejects an invalid server port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Port = 0

		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_DurationHelpers(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 24*time.Hour, cfg.Escrow.ConfirmationWindow())
	assert.Equal(t, 2*time.Hour, cfg.Escrow.CancellationLeadTime())
	assert.Equal(t, 180*24*time.Hour, cfg.Discount.Cooldown())
}

func TestConfig_GetDatabaseConnectionString(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "pw"
	cfg.Database.SSLMode = "disable"

	assert.Equal(t, "postgres://tutorlink:pw@localhost:5432/tutorlink?sslmode=disable", cfg.GetDatabaseConnectionString())
}
