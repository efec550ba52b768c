package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Gateway  GatewayConfig
	Webhook  WebhookConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// GatewayConfig holds payment gateway client settings
type GatewayConfig struct {
	ProvidersFile  string
	Provider       string
	RequestTimeout time.Duration
	NotifyUrl      string
}

// WebhookConfig holds inbound webhook settings
type WebhookConfig struct {
	Secret string
}
