package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
)

// Config конфигурация сервиса, загружается из config.toml.
// Секреты БД можно переопределить через переменные окружения
// (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME).
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Booking  BookingConfig  `toml:"booking"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// BookingConfig параметры движка бронирований
type BookingConfig struct {
	SlotDurationMinutes   int `toml:"slot_duration_minutes"`
	DefaultCapacity       int `toml:"default_capacity"`
	HoldTimeoutSeconds    int `toml:"hold_timeout_seconds"`
	LockWaitMilliseconds  int `toml:"lock_wait_milliseconds"`
	ReaperIntervalSeconds int `toml:"reaper_interval_seconds"`
}

// Load читает конфигурацию из TOML-файла и применяет переопределения
// из окружения
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load - failed to decode %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load - invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DSN строит строку подключения к PostgreSQL
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.DBName = v
	}
}

// applyDefaults подставляет значения по умолчанию для незаданных параметров
// движка. Исходная система их не фиксировала, поэтому это конфигурация,
// а не константы.
func (c *Config) applyDefaults() {
	if c.Booking.SlotDurationMinutes == 0 {
		c.Booking.SlotDurationMinutes = domain.DefaultSlotDurationMinutes
	}
	if c.Booking.DefaultCapacity == 0 {
		c.Booking.DefaultCapacity = domain.DefaultCapacity
	}
	if c.Booking.HoldTimeoutSeconds == 0 {
		c.Booking.HoldTimeoutSeconds = int(domain.DefaultHoldTimeout.Seconds())
	}
	if c.Booking.LockWaitMilliseconds == 0 {
		c.Booking.LockWaitMilliseconds = int(domain.DefaultLockWait.Milliseconds())
	}
	if c.Booking.ReaperIntervalSeconds == 0 {
		c.Booking.ReaperIntervalSeconds = int(domain.DefaultReaperInterval.Seconds())
	}
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("server.http_port must be positive")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database.dbname is required")
	}
	if c.Booking.SlotDurationMinutes < domain.MinSlotDurationMinutes ||
		c.Booking.SlotDurationMinutes > domain.MaxSlotDurationMinutes {
		return fmt.Errorf("booking.slot_duration_minutes must be between %d and %d",
			domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}
	if c.Booking.DefaultCapacity < domain.MinCapacity ||
		c.Booking.DefaultCapacity > domain.MaxCapacity {
		return fmt.Errorf("booking.default_capacity must be between %d and %d",
			domain.MinCapacity, domain.MaxCapacity)
	}
	if c.Booking.HoldTimeoutSeconds <= 0 {
		return fmt.Errorf("booking.hold_timeout_seconds must be positive")
	}
	if c.Booking.LockWaitMilliseconds <= 0 {
		return fmt.Errorf("booking.lock_wait_milliseconds must be positive")
	}
	if c.Booking.ReaperIntervalSeconds <= 0 {
		return fmt.Errorf("booking.reaper_interval_seconds must be positive")
	}
	return nil
}
