package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Session SessionConfig `mapstructure:"session"`
	OIDC    OIDCConfig    `mapstructure:"oidc"`
	Log     LogConfig     `mapstructure:"log"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Site    SiteConfig    `mapstructure:"site"`
	Admin   AdminConfig   `mapstructure:"admin"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port string    `mapstructure:"port"`
	TLS  TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
type DBConfig struct {
	Driver string `mapstructure:"driver"` // "mysql" or "sqlite3"
	DSN    string `mapstructure:"dsn"`
}

// SessionConfig holds session cookie configuration.
type SessionConfig struct {
	SecretKey string `mapstructure:"secretKey"`
	Lifetime  int    `mapstructure:"lifetime"` // hours
}

// OIDCConfig holds OIDC client configuration.
type OIDCConfig struct {
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// Enabled reports whether an identity provider is configured.
func (c OIDCConfig) Enabled() bool {
	return c.IssuerURL != "" && c.ClientID != ""
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// CacheConfig holds the page-content cache configuration.
type CacheConfig struct {
	FilePath      string        `mapstructure:"filePath"`
	TTL           time.Duration `mapstructure:"ttl"`
	PurgeSchedule string        `mapstructure:"purgeSchedule"` // cron spec
}

// RedisConfig configures the optional content broadcast relay.
type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Channel string `mapstructure:"channel"`
}

// SiteConfig holds public-site settings.
type SiteConfig struct {
	Name            string        `mapstructure:"name"`
	BaseURL         string        `mapstructure:"baseURL"`
	DefaultLanguage string        `mapstructure:"defaultLanguage"`
	Languages       []string      `mapstructure:"languages"`
	MenuCloseDelay  time.Duration `mapstructure:"menuCloseDelay"`
	ScrollThreshold int           `mapstructure:"scrollThreshold"`
}

// AdminConfig lists the identities granted the admin role at startup.
type AdminConfig struct {
	Emails     []string `mapstructure:"emails"`
	WriteRate  float64  `mapstructure:"writeRate"` // requests per second per client
	WriteBurst int      `mapstructure:"writeBurst"`
}

const insecureSessionSecret = "CHANGE_ME_IN_PRODUCTION_SECRET!!"

// ErrInsecureSessionSecret is returned by Validate when the session secret was left at its default.
var ErrInsecureSessionSecret = errors.New("session secret key not set")

// Validate checks settings the server cannot safely start without.
func (c *Config) Validate() error {
	if c.Session.SecretKey == "" || c.Session.SecretKey == insecureSessionSecret {
		return ErrInsecureSessionSecret
	}
	if c.DB.Driver != "mysql" && c.DB.Driver != "sqlite3" {
		return errors.New("db.driver must be 'mysql' or 'sqlite3'")
	}
	return nil
}

// LoadConfig reads configuration from file and environment variables.
// A .env file in the working directory, when present, is loaded into the
// environment first.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New(), "")
}

// LoadConfigFile is LoadConfig with an explicit config file path.
func LoadConfigFile(path string) (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "file:dahabiya.db?_foreign_keys=on")
	v.SetDefault("session.secretKey", insecureSessionSecret)
	v.SetDefault("session.lifetime", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("cache.filePath", "cache.db")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.purgeSchedule", "@every 10m")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.channel", "content-updates")
	v.SetDefault("oidc.issuer_url", "")
	v.SetDefault("oidc.client_id", "")
	v.SetDefault("oidc.client_secret", "")
	v.SetDefault("oidc.redirect_url", "http://localhost:8080/auth/callback")
	v.SetDefault("admin.emails", []string{})
	v.SetDefault("site.name", "Cleopatra Dahabiyat")
	v.SetDefault("site.baseURL", "http://localhost:8080")
	v.SetDefault("site.defaultLanguage", "en")
	v.SetDefault("site.languages", []string{"en", "ar", "es", "pt", "fr", "ru", "it"})
	v.SetDefault("site.menuCloseDelay", 250*time.Millisecond)
	v.SetDefault("site.scrollThreshold", 20)
	v.SetDefault("admin.writeRate", 2.0)
	v.SetDefault("admin.writeBurst", 10)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Set up viper to read from config file
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/dahabiya-site/")
		v.AddConfigPath("$HOME/.dahabiya-site")
	}

	// Attempt to read the config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	// Set up viper to read from environment variables
	v.SetEnvPrefix("NILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal the config into the Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
