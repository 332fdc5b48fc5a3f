package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig      `yaml:"server"`
	Skill    SkillConfig       `yaml:"skill"`
	Quandl   QuandlConfig      `yaml:"quandl"`
	Tickers  map[string]string `yaml:"tickers"`
	Pushover PushoverConfig    `yaml:"pushover"`
	Recorder RecorderConfig    `yaml:"recorder"`
	Log      LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	HTTPAddr  string `yaml:"http_addr"`
	AuthToken string `yaml:"auth_token"`
	RateLimit int    `yaml:"rate_limit"` // requests per minute per IP
}

type SkillConfig struct {
	AppID   string   `yaml:"app_id"`
	Locales []string `yaml:"locales"`
}

type QuandlConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Namespace string `yaml:"namespace"`
	Timeout   string `yaml:"timeout"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type RecorderConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path, expanding ${VAR} references. An empty
// path skips the file, which is how the Lambda deployment runs.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ID"); v != "" {
		c.Skill.AppID = v
	}
	if v := os.Getenv("QUANDL_API_KEY"); v != "" {
		c.Quandl.APIKey = v
	}
	if v := os.Getenv("SKILL_AUTH_TOKEN"); v != "" {
		c.Server.AuthToken = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.HTTPAddr = ":" + v
	}
}

func (c *Config) setDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 30
	}
	if len(c.Skill.Locales) == 0 {
		c.Skill.Locales = []string{"de-DE"}
	}
	if c.Quandl.BaseURL == "" {
		c.Quandl.BaseURL = "https://www.quandl.com"
	}
	if c.Quandl.Namespace == "" {
		c.Quandl.Namespace = "SSE"
	}
	if c.Quandl.Timeout == "" {
		c.Quandl.Timeout = "7s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports every problem at once so a broken deployment fails on
// the first start.
func (c *Config) Validate() error {
	var errs []error

	if c.Quandl.APIKey == "" {
		errs = append(errs, errors.New("quandl.api_key (QUANDL_API_KEY) is required"))
	}
	if _, err := c.Quandl.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative, got %d", c.Server.RateLimit))
	}
	for _, locale := range c.Skill.Locales {
		if strings.TrimSpace(locale) == "" {
			errs = append(errs, errors.New("skill.locales contains an empty locale"))
		}
	}
	for name, ticker := range c.Tickers {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(ticker) == "" {
			errs = append(errs, fmt.Errorf("tickers: invalid entry %q: %q", name, ticker))
		}
	}
	if c.Pushover.Enabled && (c.Pushover.Token == "" || c.Pushover.UserKey == "") {
		errs = append(errs, errors.New("pushover.token and pushover.user_key are required when pushover is enabled"))
	}

	return errors.Join(errs...)
}

// TimeoutDuration parses quandl.timeout. Zero means no timeout.
func (q QuandlConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(q.Timeout)
	if err != nil {
		return 0, fmt.Errorf("quandl.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("quandl.timeout must not be negative, got %s", d)
	}
	return d, nil
}
