// Package config resolves runtime settings. Precedence, lowest first:
// defaults, YAML config file, environment (PORTFOLIO_*), command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PORTFOLIO"

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings for the site.
type Config struct {
	Host               string        `mapstructure:"host"`
	Port               string        `mapstructure:"port"`
	WebhookURL         string        `mapstructure:"webhook_url"`
	WebhookTimeout     time.Duration `mapstructure:"webhook_timeout"`
	DatabasePath       string        `mapstructure:"database_path"`
	AdminUsername      string        `mapstructure:"admin_username"`
	AdminPassword      string        `mapstructure:"admin_password"`
	HashSalt           string        `mapstructure:"hash_salt"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	MaxAttachmentBytes int64         `mapstructure:"max_attachment_bytes"`
	MaxSessions        int           `mapstructure:"max_sessions"`
	AttachmentBudget   int64         `mapstructure:"attachment_budget"`
	DefaultLocale      string        `mapstructure:"default_locale"`
	Retention          time.Duration `mapstructure:"retention"`
	Debug              bool          `mapstructure:"debug"`
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// option ties a config key to its flag.
type option struct {
	key   string
	flag  string
	value any
	usage string
}

var options = []option{
	{"host", "host", "", "interface to listen on"},
	{"port", "port", "8080", "port to listen on"},
	{"webhook_url", "webhook-url", "", "contact form webhook endpoint"},
	{"webhook_timeout", "webhook-timeout", 15 * time.Second, "webhook request timeout"},
	{"database_path", "db", "./data/portfolio.db", "sqlite database file"},
	{"admin_username", "admin-user", "admin", "admin login name"},
	{"admin_password", "admin-password", "", "admin password; empty disables admin login"},
	{"hash_salt", "hash-salt", "", "salt for visitor IP hashing; random when empty"},
	{"session_ttl", "session-ttl", 2 * time.Hour, "idle lifetime of a contact form session"},
	{"max_attachment_bytes", "max-attachment", int64(10 << 20), "maximum CV upload size in bytes"},
	{"max_sessions", "max-sessions", 1000, "live contact form sessions kept in memory; 0 means unlimited"},
	{"attachment_budget", "attachment-budget", int64(256 << 20), "total bytes of CV uploads held across sessions; 0 means unlimited"},
	{"default_locale", "locale", "en", "fallback locale"},
	{"retention", "retention", 365 * 24 * time.Hour, "how long submission records are kept"},
	{"debug", "debug", false, "verbose logging and gin debug mode"},
}

// BindFlags declares every setting on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "path to YAML config file")
	for _, o := range options {
		switch v := o.value.(type) {
		case string:
			fs.String(o.flag, v, o.usage)
		case time.Duration:
			fs.Duration(o.flag, v, o.usage)
		case int:
			fs.Int(o.flag, v, o.usage)
		case int64:
			fs.Int64(o.flag, v, o.usage)
		case bool:
			fs.Bool(o.flag, v, o.usage)
		}
	}
}

// Load builds a Config from v. fs may be nil; when given, only flags the
// user actually set override lower layers.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	for _, o := range options {
		v.SetDefault(o.key, o.value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", envPrefix+"_PORT", "PORT"); err != nil {
		return nil, err
	}

	if fs != nil {
		for _, o := range options {
			if f := fs.Lookup(o.flag); f != nil {
				if err := v.BindPFlag(o.key, f); err != nil {
					return nil, err
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}

	if file := v.ConfigFileUsed(); file != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("%w: port is empty", ErrInvalidConfig)
	case c.WebhookTimeout <= 0:
		return fmt.Errorf("%w: webhook timeout must be positive", ErrInvalidConfig)
	case c.MaxAttachmentBytes <= 0:
		return fmt.Errorf("%w: max attachment size must be positive", ErrInvalidConfig)
	case c.MaxSessions < 0 || c.AttachmentBudget < 0:
		return fmt.Errorf("%w: session limits must not be negative", ErrInvalidConfig)
	case c.SessionTTL <= 0:
		return fmt.Errorf("%w: session ttl must be positive", ErrInvalidConfig)
	case c.DefaultLocale == "":
		return fmt.Errorf("%w: default locale is empty", ErrInvalidConfig)
	}
	return nil
}
