// Package settings loads the goconsole command's configuration from goconsole.yaml and
// GOCONSOLE_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	goConsole "github.com/MrEthical07/goConsole"
	"github.com/MrEthical07/goConsole/session"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GOCONSOLE_BACKEND_BASE_URL.
const EnvPrefix = "GOCONSOLE"

// Settings is the decoded goconsole.yaml with environment overrides applied.
type Settings struct {
	Backend    BackendSettings    `mapstructure:"backend"`
	Storage    StorageSettings    `mapstructure:"storage"`
	Permission PermissionSettings `mapstructure:"permission"`
	Session    SessionSettings    `mapstructure:"session"`
	Audit      AuditSettings      `mapstructure:"audit"`
	Logging    LoggingSettings    `mapstructure:"logging"`
	Console    ConsoleSettings    `mapstructure:"console"`
}

// BackendSettings locates the admin backend and paces calls to it.
type BackendSettings struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	CurrentUserPaths []string      `mapstructure:"current_user_paths"`
	RateLimit        float64       `mapstructure:"rate_limit"`
	RateBurst        int           `mapstructure:"rate_burst"`
}

// StorageSettings selects where the session token and caches live between runs.
type StorageSettings struct {
	Driver        string        `mapstructure:"driver"` // memory, file, redis or sqlite
	Path          string        `mapstructure:"path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
}

// PermissionSettings tunes permission resolution.
type PermissionSettings struct {
	AdminRole              string   `mapstructure:"admin_role"`
	Universe               []string `mapstructure:"universe"`
	SkipSupplementaryFetch bool     `mapstructure:"skip_supplementary_fetch"`
}

// SessionSettings tunes logout and token expiry handling.
type SessionSettings struct {
	NotifyBackendOnLogout bool          `mapstructure:"notify_backend_on_logout"`
	LogoutNotifyTimeout   time.Duration `mapstructure:"logout_notify_timeout"`
	CheckTokenExpiry      bool          `mapstructure:"check_token_expiry"`
}

// AuditSettings enables the slog audit sink.
type AuditSettings struct {
	Enabled    bool `mapstructure:"enabled"`
	BufferSize int  `mapstructure:"buffer_size"`
}

// LoggingSettings selects the slog level and handler format (text or json).
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ConsoleSettings configures the serve command.
type ConsoleSettings struct {
	Addr    string `mapstructure:"addr"`
	Metrics bool   `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	def := goConsole.DefaultConfig()

	v.SetDefault("backend.base_url", def.Backend.BaseURL)
	v.SetDefault("backend.timeout", def.Backend.Timeout.String())
	v.SetDefault("backend.current_user_paths", def.Backend.CurrentUserPaths)
	v.SetDefault("backend.rate_limit", 0)
	v.SetDefault("backend.rate_burst", 0)

	v.SetDefault("storage.driver", session.DriverFile)
	v.SetDefault("storage.path", defaultSessionPath())
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "goconsole")
	v.SetDefault("storage.redis_ttl", "0s")

	v.SetDefault("permission.admin_role", def.Permission.AdminRole)
	v.SetDefault("permission.universe", []string{})
	v.SetDefault("permission.skip_supplementary_fetch", false)

	v.SetDefault("session.notify_backend_on_logout", def.Session.NotifyBackendOnLogout)
	v.SetDefault("session.logout_notify_timeout", def.Session.LogoutNotifyTimeout.String())
	v.SetDefault("session.check_token_expiry", true)

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.buffer_size", def.Audit.BufferSize)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")

	v.SetDefault("console.addr", "127.0.0.1:8088")
	v.SetDefault("console.metrics", false)
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".goconsole-session.json"
	}
	return filepath.Join(dir, "goconsole", "session.json")
}

// Load reads file when non-empty, otherwise goconsole.yaml from the working directory
// if present, then applies environment overrides.
func Load(file string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("goconsole")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	err := v.Unmarshal(&s, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	s.Backend.CurrentUserPaths = trimAll(s.Backend.CurrentUserPaths)
	s.Permission.Universe = trimAll(s.Permission.Universe)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate checks the settings and the engine config they produce.
func (s *Settings) Validate() error {
	drivers := []string{session.DriverMemory, session.DriverFile, session.DriverRedis, session.DriverSQLite}
	if !slices.Contains(drivers, s.Storage.Driver) {
		return fmt.Errorf("storage.driver must be one of: %s", strings.Join(drivers, ", "))
	}
	if (s.Storage.Driver == session.DriverFile || s.Storage.Driver == session.DriverSQLite) && s.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for the %s driver", s.Storage.Driver)
	}
	if s.Storage.Driver == session.DriverRedis && strings.TrimSpace(s.Storage.RedisAddr) == "" {
		return errors.New("storage.redis_addr is required for the redis driver")
	}
	if _, err := parseLevel(s.Logging.Level); err != nil {
		return err
	}
	if f := strings.ToLower(s.Logging.Format); f != "text" && f != "json" {
		return errors.New("logging.format must be text or json")
	}
	cfg := s.EngineConfig()
	return cfg.Validate()
}

// EngineConfig maps the settings onto the engine defaults.
func (s *Settings) EngineConfig() goConsole.Config {
	cfg := goConsole.DefaultConfig()

	cfg.Backend.BaseURL = s.Backend.BaseURL
	if s.Backend.Timeout > 0 {
		cfg.Backend.Timeout = s.Backend.Timeout
	}
	if len(s.Backend.CurrentUserPaths) > 0 {
		cfg.Backend.CurrentUserPaths = s.Backend.CurrentUserPaths
	}
	cfg.Backend.RateLimit = s.Backend.RateLimit
	cfg.Backend.RateBurst = s.Backend.RateBurst

	cfg.Permission.AdminRole = s.Permission.AdminRole
	cfg.Permission.Universe = s.Permission.Universe
	cfg.Permission.SkipSupplementaryFetch = s.Permission.SkipSupplementaryFetch

	cfg.Session.NotifyBackendOnLogout = s.Session.NotifyBackendOnLogout
	if s.Session.LogoutNotifyTimeout > 0 {
		cfg.Session.LogoutNotifyTimeout = s.Session.LogoutNotifyTimeout
	}
	cfg.Session.CheckTokenExpiry = s.Session.CheckTokenExpiry

	cfg.Audit.Enabled = s.Audit.Enabled
	if s.Audit.BufferSize > 0 {
		cfg.Audit.BufferSize = s.Audit.BufferSize
	}
	return cfg
}

// StorageOptions maps the storage section onto session.Options.
func (s *Settings) StorageOptions() session.Options {
	return session.Options{
		Driver:        s.Storage.Driver,
		Path:          s.Storage.Path,
		RedisAddr:     s.Storage.RedisAddr,
		RedisPassword: s.Storage.RedisPassword,
		RedisDB:       s.Storage.RedisDB,
		RedisPrefix:   s.Storage.RedisPrefix,
		RedisTTL:      s.Storage.RedisTTL,
	}
}

// NewLogger builds the command's logger writing to w.
func (s *Settings) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(s.Logging.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(s.Logging.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
