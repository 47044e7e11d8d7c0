package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Database DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Identity IdentityConfig
	Storage  string
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	UserTTL  time.Duration
}

type JWTConfig struct {
	SecretKey string
	Issuer    string
	Expiry    time.Duration
}

type IdentityConfig struct {
	BaseAddress string
	APIKey      string
}

type LogConfig struct {
	Level       string
	Development bool
}

var envBindings = map[string]string{
	"server.port":                "PORT",
	"server.read_timeout":        "SERVER_READ_TIMEOUT",
	"server.write_timeout":       "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":        "SERVER_IDLE_TIMEOUT",
	"server.shutdown_timeout":    "SERVER_SHUTDOWN_TIMEOUT",
	"server.allowed_origins":     "CORS_ALLOWED_ORIGINS",
	"database.host":              "DATABASE_HOST",
	"database.port":              "DATABASE_PORT",
	"database.user":              "DATABASE_USER",
	"database.password":          "DATABASE_PASSWORD",
	"database.name":              "DATABASE_NAME",
	"database.ssl_mode":          "DATABASE_SSL_MODE",
	"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",
	"database.auto_migrate":      "DATABASE_AUTO_MIGRATE",
	"redis.enabled":              "REDIS_ENABLED",
	"redis.host":                 "REDIS_HOST",
	"redis.port":                 "REDIS_PORT",
	"redis.password":             "REDIS_PASSWORD",
	"redis.db":                   "REDIS_DB",
	"redis.user_ttl":             "REDIS_USER_TTL",
	"jwt.secret_key":             "JWT_SECRET_KEY",
	"jwt.issuer":                 "JWT_ISSUER",
	"jwt.expiry":                 "JWT_EXPIRY",
	"identity.base_address":      "IDENTITY_BASE_ADDRESS",
	"identity.api_key":           "IDENTITY_API_KEY",
	"storage.driver":             "STORAGE_DRIVER",
	"log.level":                  "LOG_LEVEL",
	"log.development":            "LOG_DEVELOPMENT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "ibanking")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.user_ttl", 24*time.Hour)

	v.SetDefault("server.allowed_origins", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.expiry", 24*time.Hour)
	v.SetDefault("identity.base_address", "https://identitytoolkit.googleapis.com/v1/accounts")
	v.SetDefault("storage.driver", StoragePostgres)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads .env (when present) and the environment into a Config.
// Environment variables win over the file.
func Load() *Config {
	return load(viper.New(), ".env")
}

func load(v *viper.Viper, file string) *Config {
	setDefaults(v)
	if file != "" {
		readEnvFile(v, file)
	}
	for key, env := range envBindings {
		v.BindEnv(key, env)
	}
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			AllowedOrigins:  splitList(v.GetString("server.allowed_origins")),
		},
		Database: DBConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			UserTTL:  v.GetDuration("redis.user_ttl"),
		},
		JWT: JWTConfig{
			SecretKey: v.GetString("jwt.secret_key"),
			Issuer:    v.GetString("jwt.issuer"),
			Expiry:    v.GetDuration("jwt.expiry"),
		},
		Identity: IdentityConfig{
			BaseAddress: v.GetString("identity.base_address"),
			APIKey:      v.GetString("identity.api_key"),
		},
		Storage: v.GetString("storage.driver"),
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
	}
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return errors.New("JWT_SECRET_KEY must be set")
	}
	if c.JWT.Expiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	return nil
}

// splitList parses a comma separated value, dropping blanks.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// readEnvFile layers KEY=value pairs from file over the defaults. The file uses
// the same variable names as the environment.
func readEnvFile(v *viper.Viper, file string) {
	fileCfg := viper.New()
	fileCfg.SetConfigFile(file)
	fileCfg.SetConfigType("env")
	if err := fileCfg.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
		return
	}
	for key, env := range envBindings {
		if fileCfg.IsSet(env) {
			v.SetDefault(key, fileCfg.Get(env))
		}
	}
}
