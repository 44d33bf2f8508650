// Package config loads the typed service configuration from the
// environment. Every knob has a default so the service boots in
// development with nothing but a database.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Security  SecurityConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	GitHub    GitHubConfig
}

type ServerConfig struct {
	Port        int
	Host        string
	Environment string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	Username string
	Password string
	SSL      bool
}

type SecurityConfig struct {
	JWTSecret    string
	JWTExpiresIn time.Duration
	APIKeyHeader string
	BcryptRounds int
}

type SessionConfig struct {
	DefaultExpirationHours int
	MaxConcurrentSessions  int
}

type RateLimitConfig struct {
	WindowMs    int
	MaxRequests int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type GitHubConfig struct {
	Token      string
	BaseBranch string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("environment", "development")
	v.SetDefault("cors.origins", "http://localhost:3000")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "surakshit")
	v.SetDefault("db.username", "surakshit")
	v.SetDefault("db.password", "password")
	v.SetDefault("db.ssl", false)

	v.SetDefault("jwt.secret", "your-secret-key-change-in-production")
	v.SetDefault("jwt.expires.in", "24h")
	v.SetDefault("api.key.header", "x-api-key")
	v.SetDefault("bcrypt.rounds", 12)

	v.SetDefault("session.expiration.hours", 24)
	v.SetDefault("max.concurrent.sessions", 10)

	v.SetDefault("rate.limit.window.ms", 900000)
	v.SetDefault("rate.limit.max.requests", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("github.base.branch", "main")
}

// Load binds environment variables (SESSION_EXPIRATION_HOURS,
// MAX_CONCURRENT_SESSIONS, JWT_SECRET, ...) onto the typed config.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	expiresIn, err := time.ParseDuration(v.GetString("jwt.expires.in"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server: ServerConfig{
			Port:        v.GetInt("port"),
			Host:        v.GetString("host"),
			Environment: v.GetString("environment"),
			CORSOrigins: strings.Split(v.GetString("cors.origins"), ","),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			Name:     v.GetString("db.name"),
			Username: v.GetString("db.username"),
			Password: v.GetString("db.password"),
			SSL:      v.GetBool("db.ssl"),
		},
		Security: SecurityConfig{
			JWTSecret:    v.GetString("jwt.secret"),
			JWTExpiresIn: expiresIn,
			APIKeyHeader: v.GetString("api.key.header"),
			BcryptRounds: v.GetInt("bcrypt.rounds"),
		},
		Session: SessionConfig{
			DefaultExpirationHours: v.GetInt("session.expiration.hours"),
			MaxConcurrentSessions:  v.GetInt("max.concurrent.sessions"),
		},
		RateLimit: RateLimitConfig{
			WindowMs:    v.GetInt("rate.limit.window.ms"),
			MaxRequests: v.GetInt("rate.limit.max.requests"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		GitHub: GitHubConfig{
			Token:      v.GetString("github.token"),
			BaseBranch: v.GetString("github.base.branch"),
		},
	}, nil
}
