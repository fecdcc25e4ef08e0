package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/redscorpix/npf-sub003/internal/errors"
	"github.com/redscorpix/npf-sub003/pkg/server"
	"github.com/redscorpix/npf-sub003/pkg/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "incdom.json"

	// DefaultAddr is the default server listen address.
	DefaultAddr = ":3000"

	// DefaultContainer is the default container tag.
	DefaultContainer = "div"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "incdom"
)

// Environment variables that override file values.
const (
	EnvAddr       = "INCDOM_ADDR"
	EnvLogLevel   = "INCDOM_LOG_LEVEL"
	EnvAssertions = "INCDOM_ASSERTIONS"
	EnvMetrics    = "INCDOM_METRICS"
)

// Config represents the complete incdom.json configuration.
type Config struct {
	// Assertions enables the patcher's protocol checks.
	Assertions bool `json:"assertions"`

	// Container is the tag of the root container for patches and sessions.
	Container string `json:"container,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// ServerConfig contains server settings. Durations use time.ParseDuration
// syntax ("10s", "5m").
type ServerConfig struct {
	Addr         string `json:"addr,omitempty"`
	ReadTimeout  string `json:"readTimeout,omitempty"`
	WriteTimeout string `json:"writeTimeout,omitempty"`
	MaxBodyBytes int64  `json:"maxBodyBytes,omitempty"`
	MaxSessions  int    `json:"maxSessions,omitempty"`
	IdleTimeout  string `json:"idleTimeout,omitempty"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Assertions: true,
		Container:  DefaultContainer,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  "10s",
			WriteTimeout: "10s",
			MaxBodyBytes: 4 << 20,
			MaxSessions:  1000,
			IdleTimeout:  "10m",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
	}
}

// Load reads incdom.json from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No " + ConfigFileName + " found at " + path).
				WithSuggestion("Create one with 'incdom config init' or pass --config")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E120").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	def := New()
	if c.Container == "" {
		c.Container = def.Container
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = def.Server.MaxBodyBytes
	}
	if c.Server.MaxSessions == 0 {
		c.Server.MaxSessions = def.Server.MaxSessions
	}
	if c.Server.IdleTimeout == "" {
		c.Server.IdleTimeout = def.Server.IdleTimeout
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = def.Metrics.Namespace
	}
}

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	for name, dst := range map[string]*bool{
		EnvAssertions: &c.Assertions,
		EnvMetrics:    &c.Metrics.Enabled,
	} {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("E122").WithDetailf("%s=%q is not a boolean", name, v)
		}
		*dst = b
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E122").WithDetailf("log.format %q must be text or json", c.Log.Format)
	}
	for field, v := range map[string]string{
		"server.readTimeout":  c.Server.ReadTimeout,
		"server.writeTimeout": c.Server.WriteTimeout,
		"server.idleTimeout":  c.Server.IdleTimeout,
	} {
		if _, err := parseDuration(field, v); err != nil {
			return err
		}
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New("E122").WithDetail("server.maxBodyBytes must not be negative")
	}
	if c.Server.MaxSessions < 0 {
		return errors.New("E122").WithDetail("server.maxSessions must not be negative")
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("E122").
			WithDetailf("log.level %q is not a level", c.Log.Level).
			WithSuggestion("Use debug, info, warn or error")
	}
	return level, nil
}

// Logger builds the process logger writing to w.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// ServerConfig converts the file settings into a server.Config.
func (c *Config) ServerConfig(logger *slog.Logger) (server.Config, error) {
	if err := c.Validate(); err != nil {
		return server.Config{}, err
	}
	read, _ := parseDuration("server.readTimeout", c.Server.ReadTimeout)
	write, _ := parseDuration("server.writeTimeout", c.Server.WriteTimeout)
	idle, _ := parseDuration("server.idleTimeout", c.Server.IdleTimeout)

	sessions := session.DefaultManagerConfig()
	sessions.MaxSessions = c.Server.MaxSessions
	sessions.IdleTimeout = idle
	sessions.ContainerTag = c.Container

	cfg := server.DefaultConfig()
	cfg.Addr = c.Server.Addr
	cfg.ReadTimeout = read
	cfg.WriteTimeout = write
	cfg.MaxBodyBytes = c.Server.MaxBodyBytes
	cfg.Assertions = c.Assertions
	cfg.Sessions = sessions
	cfg.MetricsNamespace = c.Metrics.Namespace
	cfg.DisableMetrics = !c.Metrics.Enabled
	cfg.Logger = logger
	return cfg, nil
}

func parseDuration(field, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, errors.New("E122").
			WithDetailf("%s %q is not a valid duration", field, v).
			WithSuggestion(`Use Go duration syntax such as "10s" or "5m"`)
	}
	return d, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
