package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LogAdapterSpec describes one logging sink, parsed out of the
// LOGGING_ADAPTERS_CONFIG environment variable's YAML document.
type LogAdapterSpec struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}

// Config represents the application configuration. This system has no
// config-file surface: every value is sourced from the environment (plus an
// optional .env file).
type Config struct {
	Database struct {
		URL             string        `default:""`
		MaxConns        int32         `default:"10"`
		ConnMaxLifetime time.Duration `default:"1h"`
	}

	Scheduler struct {
		FillTagsInterval time.Duration `default:"5m"`
		PurgeCron        string        `default:"0 0 * * *"`
		WellfoundCron    string        `default:"0 12 * * *"`
		DefaultCron      string        `default:"0 1,13 * * *"`
		ShutdownGrace    time.Duration `default:"30s"`
	}

	Sources struct {
		JobAgeLimitDays         int           `default:"90"`
		DefaultHTTPTimeout      time.Duration `default:"30s"`
		HimalayasBatchSize      int           `default:"5"`
		WellfoundBatchSize      int           `default:"5"`
		WorkAtAStartupCookie    string
		WorkAtAStartupCSRFToken string
	}

	LLM struct {
		Provider          string `default:"openai"`
		OpenAIAPIKey      string
		OpenAIModel       string        `default:"gpt-4o"`
		OpenAIReadTimeout time.Duration `default:"60s"`
		AnthropicAPIKey   string
		AnthropicModel    string `default:"claude-3-7-sonnet-latest"`
		MaxTagsPerJob     int    `default:"5"`
		BatchSize         int    `default:"20"`
	}

	AntiBot struct {
		ScrapflyAPIKey         string
		ScrapflyRequestTimeout time.Duration `default:"500s"`
	}

	Currency struct {
		DefaultCurrency string `default:"USD"`
		DefaultLocale   string `default:"en_US"`
	}

	Retry struct {
		MaxAttempts int           `default:"5"`
		MinWait     time.Duration `default:"1s"`
		MaxWait     time.Duration `default:"5s"`
	}

	Logging struct {
		Level    string           `default:"info"`
		Adapters []LogAdapterSpec `yaml:"adapters"`
	}

	Reporting struct {
		SentryDSN        string
		Environment      string  `default:"dev"`
		TracesSampleRate float64 `default:"0.0"`
	}
}

// LoadConfig loads an optional .env file, applies defaults, then overrides
// from the process environment. There is no YAML config-file path in this
// system; gopkg.in/yaml.v3 is used only to parse LOGGING_ADAPTERS_CONFIG.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Database.MaxConns = 10
	cfg.Database.ConnMaxLifetime = time.Hour

	cfg.Scheduler.FillTagsInterval = 5 * time.Minute
	cfg.Scheduler.PurgeCron = "0 0 * * *"
	cfg.Scheduler.WellfoundCron = "0 12 * * *"
	cfg.Scheduler.DefaultCron = "0 1,13 * * *"
	cfg.Scheduler.ShutdownGrace = 30 * time.Second

	cfg.Sources.JobAgeLimitDays = 90
	cfg.Sources.DefaultHTTPTimeout = 30 * time.Second
	cfg.Sources.HimalayasBatchSize = 5
	cfg.Sources.WellfoundBatchSize = 5

	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAIModel = "gpt-4o"
	cfg.LLM.OpenAIReadTimeout = 60 * time.Second
	cfg.LLM.AnthropicModel = "claude-3-7-sonnet-latest"
	cfg.LLM.MaxTagsPerJob = 5
	cfg.LLM.BatchSize = 20

	cfg.AntiBot.ScrapflyRequestTimeout = 500 * time.Second

	cfg.Currency.DefaultCurrency = "USD"
	cfg.Currency.DefaultLocale = "en_US"

	cfg.Retry.MaxAttempts = 5
	cfg.Retry.MinWait = 1 * time.Second
	cfg.Retry.MaxWait = 5 * time.Second

	cfg.Logging.Level = "info"

	cfg.Reporting.Environment = "dev"

	cfg.loadFromEnv()

	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Database.MaxConns = int32(n)
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOGGING_ADAPTERS_CONFIG"); v != "" {
		var doc struct {
			Adapters []LogAdapterSpec `yaml:"adapters"`
		}
		if err := yaml.Unmarshal([]byte(v), &doc); err == nil {
			c.Logging.Adapters = doc.Adapters
		}
	}

	if v := os.Getenv("JOB_AGE_LIMIT_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sources.JobAgeLimitDays = n
		}
	}
	if v := os.Getenv("DEFAULT_HTTP_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sources.DefaultHTTPTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("HIMALAYAS_REQUESTS_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sources.HimalayasBatchSize = n
		}
	}
	if v := os.Getenv("WELLFOUND_REQUESTS_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sources.WellfoundBatchSize = n
		}
	}
	if v := os.Getenv("WORK_AT_A_STARTUP_COOKIE"); v != "" {
		c.Sources.WorkAtAStartupCookie = v
	}
	if v := os.Getenv("WORK_AT_A_STARTUP_CSRF_TOKEN"); v != "" {
		c.Sources.WorkAtAStartupCSRFToken = v
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLM.OpenAIModel = v
	}
	if v := os.Getenv("OPENAI_READ_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.OpenAIReadTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.LLM.AnthropicAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
		c.LLM.AnthropicModel = v
	}

	if v := os.Getenv("SCRAPFLY_API_KEY"); v != "" {
		c.AntiBot.ScrapflyAPIKey = v
	}
	if v := os.Getenv("SCRAPFLY_REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AntiBot.ScrapflyRequestTimeout = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("DEFAULT_CURRENCY"); v != "" {
		c.Currency.DefaultCurrency = v
	}
	if v := os.Getenv("DEFAULT_LOCALE"); v != "" {
		c.Currency.DefaultLocale = v
	}

	if v := os.Getenv("RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxAttempts = n
		}
	}

	if v := os.Getenv("SENTRY_DSN"); v != "" {
		c.Reporting.SentryDSN = v
	}
	if v := os.Getenv("ENV"); v != "" {
		c.Reporting.Environment = v
	}
	if v := os.Getenv("SENTRY_TRACES_SAMPLE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Reporting.TracesSampleRate = f
		}
	}
}
