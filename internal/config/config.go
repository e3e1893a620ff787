package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/dukerupert/swimschool/internal/ratelimit"
)

// Config is read from SWIM_* environment variables, optionally seeded from
// a .env file. Form policies come from defaults overlaid by SWIM_FORMS_FILE.
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	BaseURL   string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	DBPath    string `envconfig:"DB_PATH" default:"swimschool.db"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	FormsFile string `envconfig:"FORMS_FILE"`

	Mail     MailConfig     `envconfig:"MAIL"`
	Session  SessionConfig  `envconfig:"SESSION"`
	Throttle ThrottleConfig `envconfig:"THROTTLE"`

	Forms Forms `ignored:"true"`
}

type MailConfig struct {
	Transport     string `envconfig:"TRANSPORT" default:"log"`
	PostmarkToken string `envconfig:"POSTMARK_TOKEN"`
	MessageStream string `envconfig:"MESSAGE_STREAM" default:"outbound"`
	From          string `envconfig:"FROM" default:"noreply@localhost"`
	Owner         string `envconfig:"OWNER" default:"office@localhost"`
	SiteName      string `envconfig:"SITE_NAME" default:"Swim School"`
}

type SessionConfig struct {
	Backend      string        `envconfig:"BACKEND" default:"memory"`
	RedisURL     string        `envconfig:"REDIS_URL"`
	TTL          time.Duration `envconfig:"TTL" default:"24h"`
	SecureCookie bool          `envconfig:"SECURE_COOKIE" default:"false"`
}

// ThrottleConfig bounds POST requests per client IP, independent of the
// per-session form limits.
type ThrottleConfig struct {
	RPS   float64 `envconfig:"RPS" default:"1"`
	Burst int     `envconfig:"BURST" default:"10"`
}

type Forms struct {
	Contact ratelimit.Policy `yaml:"contact"`
	Booking BookingForms     `yaml:"booking"`
}

type BookingForms struct {
	ratelimit.Policy `yaml:",inline"`
	CoursePeriod     string   `yaml:"course_period"`
	TimeSlots        []string `yaml:"time_slots"`
}

func DefaultForms() Forms {
	return Forms{
		Contact: ratelimit.Policy{MinInterval: 20 * time.Second, MaxPerWindow: 5, Window: time.Hour},
		Booking: BookingForms{
			Policy:       ratelimit.Policy{MinInterval: 30 * time.Second, MaxPerWindow: 5, Window: time.Hour},
			CoursePeriod: "04.11.2025 - 27.01.2026",
			TimeSlots:    []string{"15:00-15:45", "16:00-16:45"},
		},
	}
}

// Load reads .env (if present), the environment and the forms file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("swim", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	cfg.Forms = DefaultForms()
	if cfg.FormsFile != "" {
		if err := loadForms(cfg.FormsFile, &cfg.Forms); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadForms overlays the YAML file onto f. Keys missing from the file keep
// their current values.
func loadForms(path string, f *Forms) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read forms file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), f); err != nil {
		return fmt.Errorf("parse forms file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}

	switch c.Mail.Transport {
	case "log":
	case "postmark":
		if c.Mail.PostmarkToken == "" {
			return errors.New("postmark transport requires SWIM_MAIL_POSTMARK_TOKEN")
		}
	default:
		return fmt.Errorf("unknown mail transport %q", c.Mail.Transport)
	}
	if c.Mail.Owner == "" {
		return errors.New("owner email is required")
	}

	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return errors.New("redis session backend requires SWIM_SESSION_REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	if err := validatePolicy("contact", c.Forms.Contact); err != nil {
		return err
	}
	if err := validatePolicy("booking", c.Forms.Booking.Policy); err != nil {
		return err
	}
	if len(c.Forms.Booking.TimeSlots) == 0 {
		return errors.New("booking needs at least one time slot")
	}
	return nil
}

func validatePolicy(name string, p ratelimit.Policy) error {
	if p.MaxPerWindow <= 0 {
		return fmt.Errorf("%s: max_per_window must be positive", name)
	}
	if p.Window <= 0 {
		return fmt.Errorf("%s: window must be positive", name)
	}
	if p.MinInterval < 0 {
		return fmt.Errorf("%s: min_interval must not be negative", name)
	}
	return nil
}
