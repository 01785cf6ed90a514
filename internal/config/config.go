// Load envs from .env
// Load YAML config
// Override with env vars
// Validate config
// Provide default values

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go-jobsearch-automation/internal/stealth"
)

const DefaultPath = "configs/config.yaml"

var ErrMissingCredentials = errors.New("linkedin credentials are required when no session cookies are available")

type Config struct {
	Sites        []string `yaml:"sites" validate:"required,min=1,dive,oneof=linkedin indeed"`
	Keywords     []string `yaml:"keywords" validate:"required,min=1,dive,required"`
	Locations    []string `yaml:"locations" validate:"required,min=1,dive,required"`
	PostedWithin string   `yaml:"posted_within" validate:"omitempty,oneof=24h week month any"`
	// MaxPages caps the page ceiling of every site. Zero keeps the site ceiling.
	MaxPages int `yaml:"max_pages" validate:"gte=0"`
	// Stride overrides the site's scroll stride. Zero keeps the site stride.
	Stride      int           `yaml:"stride" validate:"gte=0"`
	PageTimeout time.Duration `yaml:"page_timeout" validate:"gte=0"`
	EasyApply   bool          `yaml:"easy_apply"`

	CredentialsFile string      `yaml:"credentials_file"`
	Credentials     Credentials `yaml:"-"`

	Delays   Delays              `yaml:"delays"`
	Retries  Retries             `yaml:"retries"`
	Extract  ExtractConfig       `yaml:"extract"`
	Output   OutputConfig        `yaml:"output"`
	Browser  BrowserConfig       `yaml:"browser"`
	Dedup    DedupConfig         `yaml:"dedup"`
	Labels   map[string][]string `yaml:"labels"`
	Telegram TelegramConfig      `yaml:"telegram"`
	Database DatabaseConfig      `yaml:"database"`
	Logging  LoggingConfig       `yaml:"logging"`
	Server   ServerConfig        `yaml:"server"`
}

// Delays are jittered pause windows, e.g. {min: 1s, max: 3s}.
type Delays struct {
	Scroll       stealth.Range `yaml:"scroll"`
	Detail       stealth.Range `yaml:"detail"`
	Settle       stealth.Range `yaml:"settle"`
	ControlRetry stealth.Range `yaml:"control_retry"`
	Backoff      stealth.Range `yaml:"backoff"`
	Search       stealth.Range `yaml:"search"`
}

type Retries struct {
	Page    int `yaml:"page" validate:"gte=1"`
	Control int `yaml:"control" validate:"gte=1"`
	Search  int `yaml:"search" validate:"gte=1"`
}

type ExtractConfig struct {
	DescriptionFormat string `yaml:"description_format" validate:"oneof=text markdown"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir" validate:"required"`
	Format string `yaml:"format" validate:"oneof=csv xlsx"`
}

type BrowserConfig struct {
	Driver         string `yaml:"driver" validate:"oneof=playwright chromedp"`
	Headless       bool   `yaml:"headless"`
	UserAgent      string `yaml:"user_agent"`
	Width          int    `yaml:"width" validate:"gte=0"`
	Height         int    `yaml:"height" validate:"gte=0"`
	CookiesPath    string `yaml:"cookies_path"`
	ScreenshotsDir string `yaml:"screenshots_dir"`
}

type DedupConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CacheDir string `yaml:"cache_dir" validate:"required_if=Enabled true"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token" validate:"required_if=Enabled true"`
	ChatID  int64  `yaml:"chat_id" validate:"required_if=Enabled true"`
	// MinInterval spaces out consecutive messages.
	MinInterval time.Duration `yaml:"min_interval"`
}

type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Dir   string `yaml:"dir"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Credentials is the {"email","password"} login file.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Empty() bool {
	return c.Email == "" || c.Password == ""
}

// Default returns the configuration used for any key the YAML file leaves out.
func Default() *Config {
	return &Config{
		Sites:        []string{"linkedin"},
		PostedWithin: "24h",
		PageTimeout:  10 * time.Minute,
		Delays: Delays{
			Scroll:       stealth.Seconds(1, 3),
			Detail:       stealth.Seconds(1, 3),
			Settle:       stealth.Seconds(3, 6),
			ControlRetry: stealth.Seconds(1, 2),
			Backoff:      stealth.Seconds(3, 6),
			Search:       stealth.Seconds(1, 4),
		},
		Retries: Retries{Page: 5, Control: 5, Search: 5},
		Extract: ExtractConfig{DescriptionFormat: "text"},
		Output:  OutputConfig{Dir: "data/output", Format: "csv"},
		Browser: BrowserConfig{
			Driver:   "playwright",
			Headless: true,
			Width:    1366,
			Height:   900,
		},
		Dedup:           DedupConfig{CacheDir: ".cache"},
		CredentialsFile: "data/config.json",
		Telegram:        TelegramConfig{MinInterval: time.Second},
		Logging:         LoggingConfig{Level: "info", Dir: "data/logs"},
		Server:          ServerConfig{Addr: ":8080"},
	}
}

// Load reads path on top of Default, applies .env and environment
// overrides, loads the credentials file and validates the result.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.loadCredentials(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadCredentials() error {
	if c.CredentialsFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.CredentialsFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}
	if err := json.Unmarshal(data, &c.Credentials); err != nil {
		return fmt.Errorf("parse credentials %s: %w", c.CredentialsFile, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LINKEDIN_EMAIL"); v != "" {
		c.Credentials.Email = v
	}
	if v := os.Getenv("LINKEDIN_PASSWORD"); v != "" {
		c.Credentials.Password = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// CookieFile is the cookie export used for site, e.g. cookies-linkedin.json.
func (c *Config) CookieFile(site string) string {
	if c.Browser.CookiesPath == "" {
		return ""
	}
	return filepath.Join(c.Browser.CookiesPath, fmt.Sprintf("cookies-%s.json", site))
}

// CheckCredentials fails when LinkedIn is selected with neither a login nor
// a cookie export to restore the session from.
func (c *Config) CheckCredentials() error {
	if !slices.Contains(c.Sites, "linkedin") || !c.Credentials.Empty() {
		return nil
	}
	if f := c.CookieFile("linkedin"); f != "" {
		if _, err := os.Stat(f); err == nil {
			return nil
		}
	}
	return ErrMissingCredentials
}

// PostedFilter maps "any" to no filter.
func (c *Config) PostedFilter() string {
	if c.PostedWithin == "any" {
		return ""
	}
	return c.PostedWithin
}
