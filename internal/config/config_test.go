package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{HTTPPort: 8080},
		Database: DatabaseConfig{Host: "localhost", DBName: "bookings"},
		Booking: BookingConfig{
			SlotDurationMinutes:   30,
			DefaultCapacity:       1,
			HoldTimeoutSeconds:    600,
			LockWaitMilliseconds:  500,
			ReaperIntervalSeconds: 30,
		},
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Booking = BookingConfig{}

	cfg.applyDefaults()

	assert.Equal(t, domain.DefaultSlotDurationMinutes, cfg.Booking.SlotDurationMinutes)
	assert.Equal(t, domain.DefaultCapacity, cfg.Booking.DefaultCapacity)
	assert.Equal(t, int(domain.DefaultHoldTimeout.Seconds()), cfg.Booking.HoldTimeoutSeconds)
	assert.Equal(t, int(domain.DefaultLockWait.Milliseconds()), cfg.Booking.LockWaitMilliseconds)
	assert.Equal(t, int(domain.DefaultReaperInterval.Seconds()), cfg.Booking.ReaperIntervalSeconds)

	require.NoError(t, cfg.validate())
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Booking.SlotDurationMinutes = 15
	cfg.Booking.DefaultCapacity = 2

	cfg.applyDefaults()

	assert.Equal(t, 15, cfg.Booking.SlotDurationMinutes)
	assert.Equal(t, 2, cfg.Booking.DefaultCapacity)
}

func TestValidateBookingBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "slot duration below minimum", mutate: func(c *Config) {
			c.Booking.SlotDurationMinutes = domain.MinSlotDurationMinutes - 1
		}},
		{name: "slot duration above maximum", mutate: func(c *Config) {
			c.Booking.SlotDurationMinutes = domain.MaxSlotDurationMinutes + 1
		}},
		{name: "capacity below minimum", mutate: func(c *Config) {
			c.Booking.DefaultCapacity = domain.MinCapacity - 1
		}},
		{name: "capacity above maximum", mutate: func(c *Config) {
			c.Booking.DefaultCapacity = domain.MaxCapacity + 1
		}},
		{name: "negative hold timeout", mutate: func(c *Config) {
			c.Booking.HoldTimeoutSeconds = -1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.Server.HTTPPort = 0
	assert.Error(t, cfg.validate())
}
