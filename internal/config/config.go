package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Audit     AuditConfig     `yaml:"audit"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Mode     string `yaml:"mode"` // debug, release, test
	LogLevel string `yaml:"log_level"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret               string `yaml:"secret"`
	AccessTTLMinutes     int    `yaml:"access_ttl_minutes"`
	RefreshTTLDays       int    `yaml:"refresh_ttl_days"`
	SecretPostTTLMinutes int    `yaml:"secret_post_ttl_minutes"`
}

type AuditConfig struct {
	RetentionDays int `yaml:"retention_days"`
	// SessionGraceDays controls how long expired or revoked refresh-token
	// records are kept before the maintenance job purges them.
	SessionGraceDays int `yaml:"session_grace_days"`
}

// RateLimitConfig applies to the credential-bearing routes (login,
// secret-post password verification).
type RateLimitConfig struct {
	LoginRPS   float64 `yaml:"login_rps"`
	LoginBurst int     `yaml:"login_burst"`
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.overrideFromEnv()
	cfg.applyFallbacks()
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     "8080",
			Mode:     "debug",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "openboard.db",
		},
		JWT: JWTConfig{
			Secret:               "openboard-secret-key-change-in-production",
			AccessTTLMinutes:     30,
			RefreshTTLDays:       7,
			SecretPostTTLMinutes: 30,
		},
		Audit: AuditConfig{
			RetentionDays:    90,
			SessionGraceDays: 30,
		},
		RateLimit: RateLimitConfig{
			LoginRPS:   5,
			LoginBurst: 10,
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Server.LogLevel = level
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.JWT.AccessTTLMinutes = n
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.JWT.RefreshTTLDays = n
		}
	}
	if v := os.Getenv("SECRET_POST_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.JWT.SecretPostTTLMinutes = n
		}
	}
	if v := os.Getenv("AUDIT_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Audit.RetentionDays = n
		}
	}
}

// applyFallbacks fills zero values left by a partial config file.
func (c *Config) applyFallbacks() {
	def := DefaultConfig()
	if c.Server.Port == "" {
		c.Server.Port = def.Server.Port
	}
	if c.Server.Mode == "" {
		c.Server.Mode = def.Server.Mode
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Database.Driver == "" {
		c.Database.Driver = def.Database.Driver
	}
	if c.Database.DSN == "" {
		c.Database.DSN = def.Database.DSN
	}
	if c.JWT.Secret == "" {
		c.JWT.Secret = def.JWT.Secret
	}
	if c.JWT.AccessTTLMinutes <= 0 {
		c.JWT.AccessTTLMinutes = def.JWT.AccessTTLMinutes
	}
	if c.JWT.RefreshTTLDays <= 0 {
		c.JWT.RefreshTTLDays = def.JWT.RefreshTTLDays
	}
	if c.JWT.SecretPostTTLMinutes <= 0 {
		c.JWT.SecretPostTTLMinutes = def.JWT.SecretPostTTLMinutes
	}
	if c.Audit.RetentionDays <= 0 {
		c.Audit.RetentionDays = def.Audit.RetentionDays
	}
	if c.Audit.SessionGraceDays <= 0 {
		c.Audit.SessionGraceDays = def.Audit.SessionGraceDays
	}
	if c.RateLimit.LoginRPS <= 0 {
		c.RateLimit.LoginRPS = def.RateLimit.LoginRPS
	}
	if c.RateLimit.LoginBurst <= 0 {
		c.RateLimit.LoginBurst = def.RateLimit.LoginBurst
	}
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
