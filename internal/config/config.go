package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	LogDir      string `env:"LOG_DIR" envDefault:"logs"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"both-sides"`
	Version     string `env:"VERSION" envDefault:"dev"`

	DBUser            string        `env:"DB_USER" envDefault:"postgres"`
	DBPassword        string        `env:"DB_PASSWORD" envDefault:"postgres"`
	DBHost            string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort            string        `env:"DB_PORT" envDefault:"5432"`
	DBName            string        `env:"DB_NAME" envDefault:"bothsides"`
	DBSSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns        int           `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`

	// AdminAPIKey guards the moderation endpoints
	AdminAPIKey    string   `env:"ADMIN_API_KEY"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	ChallengeExpiry  time.Duration `env:"DUEL_CHALLENGE_EXPIRY" envDefault:"24h"`
	InactivityWindow time.Duration `env:"DUEL_INACTIVITY_WINDOW" envDefault:"5m"`
	MaxConcurrent    int           `env:"DUEL_MAX_CONCURRENT" envDefault:"1"`
	MinDuration      int           `env:"DUEL_MIN_DURATION_SECONDS" envDefault:"60"`
	MaxDuration      int           `env:"DUEL_MAX_DURATION_SECONDS" envDefault:"3600"`
	MaxGroundLength  int           `env:"DUEL_MAX_GROUND_LENGTH" envDefault:"2000"`

	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m"`
	JanitorNudgeGap time.Duration `env:"JANITOR_NUDGE_GAP" envDefault:"15s"`
	WorkerCount     int           `env:"WORKER_COUNT" envDefault:"2"`

	OpenAIAPIKey   string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `env:"OPENAI_BASE_URL"`
	JudgeModel     string        `env:"JUDGE_MODEL"`
	JudgeTimeout   time.Duration `env:"JUDGE_TIMEOUT" envDefault:"15s"`
	HostLinesPath  string        `env:"HOST_LINES_PATH"`
	DiscordToken   string        `env:"DISCORD_BOT_TOKEN"`
	DiscordChannel string        `env:"DISCORD_CHANNEL_ID"`
	DuelURLFormat  string        `env:"DUEL_URL_FORMAT"`
	SSEKeepalive   time.Duration `env:"SSE_KEEPALIVE" envDefault:"30s"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// JudgeEnabled reports whether an LLM judge is configured. Without one every
// verdict falls back to the neutral fail-open outcome.
func (c *Config) JudgeEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// DiscordEnabled reports whether duel notices are posted to Discord
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannel != ""
}
