package basekit

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/basekit/basekit/pkg/logger"
	"github.com/basekit/basekit/pkg/oauth"
	"github.com/basekit/basekit/pkg/store"
)

// Config is the application configuration, loaded from a YAML file with
// ${VAR} references expanded from the environment.
type Config struct {
	// Name is the installation name, used for the session cookie.
	Name string `yaml:"name"`
	// Domain is the public domain the cookie is scoped to.
	Domain string `yaml:"domain"`

	Store        store.Config       `yaml:"store"`
	Auth         AuthConfig         `yaml:"auth"`
	Registration oauth.Registration `yaml:"registration"`
	OAuth        OAuthConfig        `yaml:"oauth"`
	Logging      logger.Config      `yaml:"logging"`
	Dev          DevConfig          `yaml:"dev"`
}

// AuthConfig holds session settings.
type AuthConfig struct {
	// CookieName overrides the default "<name>_session" cookie.
	CookieName   string `yaml:"cookie_name"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

// OAuthConfig holds per-provider client credentials. A provider with no
// section configured is not offered.
type OAuthConfig struct {
	GitHub   *oauth.Config `yaml:"github"`
	Google   *oauth.Config `yaml:"google"`
	Discord  *oauth.Config `yaml:"discord"`
	Facebook *oauth.Config `yaml:"facebook"`
}

// DevConfig holds local-development switches.
type DevConfig struct {
	// Autologin authenticates every unauthenticated request as this email.
	Autologin string `yaml:"autologin"`
}

// DefaultConfig returns a runnable local-development configuration.
func DefaultConfig() Config {
	return Config{
		Name:  "basekit",
		Store: store.DefaultConfig(),
		Registration: oauth.Registration{
			Enabled: true,
			OAuth:   true,
		},
		Logging: logger.Config{Format: "json", Level: "info"},
	}
}

// LoadConfig reads a YAML configuration file, expands ${VAR} environment
// references and fills unset sections with defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "basekit"
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = c.Name + "_session"
	}
	if c.Store.Driver == "" {
		c.Store = store.DefaultConfig()
	}
}

// expandEnvVars replaces ${VAR} with environment variable values. Unset
// variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(name)
	})
}
