// ABOUTME: Configuration loading and parsing for savet-portal
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete savet-portal configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Matrix   MatrixConfig   `yaml:"matrix"`
	Site     SiteConfig     `yaml:"site"`
	Content  ContentConfig  `yaml:"content"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	// BaseURL is the external URL of the site (used in feeds and announcements)
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds session and access-gate configuration
type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	ProtectedPrefix string `yaml:"protected_prefix"`
	LoginPath       string `yaml:"login_path"`

	// DisableGate bypasses the admin access gate entirely. Local development only.
	DisableGate bool `yaml:"disable_gate"`

	SessionTTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	SessionTTLRaw string `yaml:"session_ttl"`
}

// MatrixConfig holds Matrix bot integration configuration
type MatrixConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Homeserver    string   `yaml:"homeserver"`
	UserID        string   `yaml:"user_id"`
	AccessToken   string   `yaml:"access_token"`
	AnnounceRoom  string   `yaml:"announce_room"`
	AllowedRooms  []string `yaml:"allowed_rooms"`
	CommandPrefix string   `yaml:"command_prefix"`
}

// SiteConfig holds site identity and localization configuration
type SiteConfig struct {
	NameBG      string `yaml:"name_bg"`
	NameEN      string `yaml:"name_en"`
	DefaultLang string `yaml:"default_lang"`
}

// ContentConfig holds file-based content configuration
type ContentConfig struct {
	// TeamFile is the path to the TOML team roster
	TeamFile string `yaml:"team_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults applied when the corresponding fields are absent from the file.
const (
	DefaultProtectedPrefix = "/admin"
	DefaultLoginPath       = "/login"
	DefaultSessionTTL      = 7 * 24 * time.Hour
	DefaultCommandPrefix   = "!"
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in defaults for optional fields
func (c *Config) applyDefaults() {
	if c.Auth.ProtectedPrefix == "" {
		c.Auth.ProtectedPrefix = DefaultProtectedPrefix
	}
	if c.Auth.LoginPath == "" {
		c.Auth.LoginPath = DefaultLoginPath
	}
	if c.Matrix.CommandPrefix == "" {
		c.Matrix.CommandPrefix = DefaultCommandPrefix
	}
	if c.Site.DefaultLang == "" {
		c.Site.DefaultLang = "bg"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if !strings.HasPrefix(c.Auth.ProtectedPrefix, "/") {
		return fmt.Errorf("auth.protected_prefix must start with /")
	}

	// The login page must live outside the protected prefix, otherwise the
	// gate would redirect to itself forever.
	if strings.HasPrefix(c.Auth.LoginPath, c.Auth.ProtectedPrefix) {
		return fmt.Errorf("auth.login_path must not be under auth.protected_prefix")
	}

	if c.Matrix.Enabled && c.Matrix.Homeserver == "" {
		return fmt.Errorf("matrix.homeserver is required when matrix is enabled")
	}

	if c.Site.DefaultLang != "bg" && c.Site.DefaultLang != "en" {
		return fmt.Errorf("site.default_lang must be bg or en")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	cfg.Auth.SessionTTL = DefaultSessionTTL

	if cfg.Auth.SessionTTLRaw != "" {
		ttl, err := time.ParseDuration(cfg.Auth.SessionTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session_ttl %q: %w", cfg.Auth.SessionTTLRaw, err)
		}
		cfg.Auth.SessionTTL = ttl
	}

	return nil
}
