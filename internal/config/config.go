package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "DEALS_TRACKER_CONFIG"
	appEnvEnv          = "APP_ENV"
	listenAddrEnv      = "LISTEN_ADDR"
	databaseDSNEnv     = "DATABASE_DSN"
	newsAPIKeyEnv      = "NEWS_API_KEY"
	llmAPIKeyEnv       = "LLM_API_KEY"
	groqAPIKeyEnv      = "GROQ_API_KEY"
	llmModelEnv        = "LLM_MODEL"
	cronSecretEnv      = "CRON_SECRET"
	schedulerSecretEnv = "SCHEDULER_SECRET"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	logLevelEnv        = "LOG_LEVEL"
	logFormatEnv       = "LOG_FORMAT"

	// EnvDevelopment relaxes scan-trigger authorization and allows the in-memory
	// store. It must be selected explicitly.
	EnvDevelopment = "development"
	// EnvProduction is the default; it requires a database and a trigger secret.
	EnvProduction = "production"
)

// Config holds high-level settings required across the application.
type Config struct {
	Env           string             `yaml:"env"`
	Logging       LoggingConfig      `yaml:"logging"`
	HTTP          HTTPConfig         `yaml:"http"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	News          NewsConfig         `yaml:"news"`
	LLM           LLMConfig          `yaml:"llm"`
	Ingestion     IngestionConfig    `yaml:"ingestion"`
	Trigger       TriggerConfig      `yaml:"trigger"`
	Notifications NotificationConfig `yaml:"notifications"`
	Seed          SeedConfig         `yaml:"seed"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig describes the API listener.
type HTTPConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

// SchedulerConfig defines when the scheduled scan should run.
type SchedulerConfig struct {
	Enabled    bool           `yaml:"enabled"`
	Interval   time.Duration  `yaml:"interval"`
	RunOnStart bool           `yaml:"runOnStart"`
	Timezone   string         `yaml:"timezone"`
	location   *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NewsConfig defines how to contact the news-search API.
type NewsConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"apiKey"`
	Language string        `yaml:"language"`
	SortBy   string        `yaml:"sortBy"`
	PageSize int           `yaml:"pageSize"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LLMConfig defines how to contact the OpenAI-compatible completion API.
type LLMConfig struct {
	Endpoint        string        `yaml:"endpoint"`
	Model           string        `yaml:"model"`
	APIKey          string        `yaml:"apiKey"`
	Timeout         time.Duration `yaml:"timeout"`
	ExtractMaxChars int           `yaml:"extractMaxChars"`
	ChatPrompt      string        `yaml:"chatPrompt"`
}

// IngestionConfig paces the scheduled scan.
type IngestionConfig struct {
	QueryDelay   time.Duration `yaml:"queryDelay"`
	ExtractDelay time.Duration `yaml:"extractDelay"`
	PageMaxChars int           `yaml:"pageMaxChars"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
}

// TriggerConfig governs who may start a scan over HTTP. The scheduler header
// is honoured only when its value equals SchedulerSecret.
type TriggerConfig struct {
	Secret          string `yaml:"secret"`
	SchedulerHeader string `yaml:"schedulerHeader"`
	SchedulerSecret string `yaml:"schedulerSecret"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SeedConfig points at the YAML file with curated historical deals.
type SeedConfig struct {
	Path string `yaml:"path"`
}

// SourceConfig names a search provider and the fixed phrases it runs.
type SourceConfig struct {
	Name     string            `yaml:"name"`
	Provider string            `yaml:"provider"`
	Queries  []string          `yaml:"queries"`
	Options  map[string]string `yaml:"options"`
}

// Development reports whether the process runs outside production.
func (c Config) Development() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

func (c Config) envName() string {
	if strings.TrimSpace(c.Env) == "" {
		return EnvProduction
	}
	return c.Env
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit file path; an empty path skips the file.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg := defaultConfig()
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// Validate reports settings that make the process unable to start. Missing
// API keys are not fatal here; they surface when the dependent call is made.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.ListenAddr == "" {
		errs = append(errs, errors.New("http.listenAddr is required"))
	}
	if !c.Development() {
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required in %s", c.envName()))
		}
		if c.Trigger.Secret == "" {
			errs = append(errs, fmt.Errorf("trigger.secret is required in %s", c.envName()))
		}
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		errs = append(errs, errors.New("scheduler.interval must be positive"))
	}
	for _, src := range c.Sources {
		if src.Provider == "" {
			errs = append(errs, fmt.Errorf("source %s: provider is required", src.Name))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(appEnvEnv); v != "" {
		c.Env = v
	}

	if v := os.Getenv(listenAddrEnv); v != "" {
		c.HTTP.ListenAddr = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.News.APIKey = v
	}

	if v := os.Getenv(groqAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(cronSecretEnv); v != "" {
		c.Trigger.Secret = v
	}

	if v := os.Getenv(schedulerSecretEnv); v != "" {
		c.Trigger.SchedulerSecret = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Env:      EnvProduction,
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		HTTP:     HTTPConfig{ListenAddr: ":8080", ShutdownTimeout: 10 * time.Second},
		Database: DatabaseConfig{DSN: "", AutoMigrate: true},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Interval: 24 * time.Hour,
			Timezone: defaultTimezone,
			location: tz,
		},
		News: NewsConfig{
			Endpoint: "https://newsapi.org/v2/everything",
			Language: "en",
			SortBy:   "publishedAt",
			PageSize: 2,
			Timeout:  15 * time.Second,
		},
		LLM: LLMConfig{
			Endpoint:        "https://api.groq.com/openai/v1/chat/completions",
			Model:           "llama-3.3-70b-versatile",
			Timeout:         30 * time.Second,
			ExtractMaxChars: 3000,
		},
		Ingestion: IngestionConfig{
			QueryDelay:   300 * time.Millisecond,
			ExtractDelay: 8 * time.Second,
			PageMaxChars: 4000,
			FetchTimeout: 15 * time.Second,
		},
		Trigger: TriggerConfig{SchedulerHeader: "X-Cron-Signature"},
		Seed:    SeedConfig{Path: "configs/seed.yaml"},
		Sources: []SourceConfig{
			{
				Name:     "newsapi-default",
				Provider: "newsapi",
				Queries: []string{
					"India defence deal signed",
					"India trade agreement bilateral",
					"India strategic partnership signed",
					"India arms deal fighter jet submarine",
				},
			},
		},
	}
}
