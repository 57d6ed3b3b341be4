package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружаемая из config.toml
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Redis          RedisConfig          `toml:"redis"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Booking        BookingConfig        `toml:"booking"`
	Otp            OtpConfig            `toml:"otp"`
	DoctorService  IntegrationConfig    `toml:"doctor_service"`
	BillingService IntegrationConfig    `toml:"billing_service"`
	SmsGateway     IntegrationConfig    `toml:"sms_gateway"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

// DatabaseConfig настройки подключения к PostgreSQL
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

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig настройки Redis для хранилища OTP сессий
// Если disabled, используется in-memory хранилище
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig бизнес-политики бронирования и очереди
type BookingConfig struct {
	HospitalID         int    `toml:"hospital_id"`
	MaxReschedules     int    `toml:"max_reschedules"`
	TokenDisplayPrefix string `toml:"token_display_prefix"`
	GuestTokenTTLHours int    `toml:"guest_token_ttl_hours"`
}

// OtpConfig политика OTP верификации для гостевых бронирований
type OtpConfig struct {
	TTLSeconds int    `toml:"ttl_seconds"`
	Region     string `toml:"region"`   // регион для валидации номеров, например "IN"
	DevMode    bool   `toml:"dev_mode"` // в dev-режиме OTP не отправляется по SMS, а возвращается в ответе
}

// IntegrationConfig настройки HTTP клиента внешнего сервиса
type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// Load загружает конфигурацию из TOML файла и применяет значения по умолчанию
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if cfg.Database.Host == "" {
		return nil, fmt.Errorf("config: database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, fmt.Errorf("config: database.dbname is required")
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}

	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "hms-appointment-service"
	}

	if cfg.Booking.HospitalID == 0 {
		cfg.Booking.HospitalID = 1
	}
	if cfg.Booking.MaxReschedules == 0 {
		cfg.Booking.MaxReschedules = 3
	}
	if cfg.Booking.TokenDisplayPrefix == "" {
		cfg.Booking.TokenDisplayPrefix = "OPD"
	}
	if cfg.Booking.GuestTokenTTLHours == 0 {
		cfg.Booking.GuestTokenTTLHours = 24
	}

	if cfg.Otp.TTLSeconds == 0 {
		cfg.Otp.TTLSeconds = 300
	}
	if cfg.Otp.Region == "" {
		cfg.Otp.Region = "IN"
	}

	if cfg.DoctorService.Timeout == 0 {
		cfg.DoctorService.Timeout = 5
	}
	if cfg.BillingService.Timeout == 0 {
		cfg.BillingService.Timeout = 5
	}
	if cfg.SmsGateway.Timeout == 0 {
		cfg.SmsGateway.Timeout = 5
	}
}
