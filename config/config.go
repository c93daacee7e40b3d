package config

import (
	"net"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config is filled from a YAML file and then overlaid with environment
// variables. See Load for the lookup order.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	Server   ServerConfig   `yaml:"server"`
	JWT      JWTConfig      `yaml:"jwt"`
	Cookie   CookieConfig   `yaml:"cookie"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Auth     AuthConfig     `yaml:"auth"`
}

type ServerConfig struct {
	Host              string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port              string        `yaml:"port" env:"SERVER_PORT,PORT" env-default:"4000"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"SERVER_READ_HEADER_TIMEOUT" env-default:"5s"`
	RequestTimeout    time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"3s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
	CORSOrigin        string        `yaml:"cors_origin" env:"CORS_ORIGIN" env-default:"http://localhost:3000"`
}

func (server ServerConfig) Addr() string {
	return net.JoinHostPort(server.Host, server.Port)
}

type JWTConfig struct {
	AccessSecret    string        `yaml:"access_secret" env:"ACCESS_TOKEN_SECRET"`
	RenewalSecret   string        `yaml:"renewal_secret" env:"RENEWAL_TOKEN_SECRET,REFRESH_TOKEN_SECRET"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RenewalTokenTTL time.Duration `yaml:"renewal_token_ttl" env:"RENEWAL_TOKEN_TTL" env-default:"1m"`
	Issuer          string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"auth-tokens-service"`
}

// CookieConfig describes the renewal token cookie.
type CookieConfig struct {
	Name     string `yaml:"name" env:"COOKIE_NAME" env-default:"refreshtoken"`
	Path     string `yaml:"path" env:"COOKIE_PATH" env-default:"/refresh_token"`
	Domain   string `yaml:"domain" env:"COOKIE_DOMAIN"`
	Secure   bool   `yaml:"secure" env:"COOKIE_SECURE"`
	SameSite string `yaml:"same_site" env:"COOKIE_SAME_SITE" env-default:"lax"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
}

type DatabaseConfig struct {
	Driver           string `yaml:"driver" env:"DATABASE_DRIVER" env-default:"postgres"`
	ConnectionString string `yaml:"connection_string" env:"DATABASE_CONNECTION_URL"`
}

type RedisConfig struct {
	URL    string `yaml:"url" env:"REDIS_URL"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"auth:"`
}

type WebhookConfig struct {
	URL     string        `yaml:"url" env:"WEBHOOK_URL"`
	Timeout time.Duration `yaml:"timeout" env:"WEBHOOK_TIMEOUT" env-default:"5s"`
}

type AuthConfig struct {
	RevokeBindingOnLogout bool `yaml:"revoke_binding_on_logout" env:"AUTH_REVOKE_ON_LOGOUT"`
	BcryptCost            int  `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"10"`
}
