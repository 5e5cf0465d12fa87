package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Example values shipped in .env.example that must not reach production
const (
	ExampleDBPassword  = "change_this_secure_password"
	ExampleAdminAPIKey = "generate_with_openssl_rand_hex_32"
)

var validLogFormats = map[string]bool{"json": true, "text": true}

// Validate checks ranges and required values. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.AdminAPIKey == "" {
		errs = append(errs, errors.New("ADMIN_API_KEY environment variable must be set for security"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if c.MaxConcurrent < 1 {
		errs = append(errs, fmt.Errorf("DUEL_MAX_CONCURRENT must be at least 1, got %d", c.MaxConcurrent))
	}
	if c.MinDuration < 1 {
		errs = append(errs, fmt.Errorf("DUEL_MIN_DURATION_SECONDS must be positive, got %d", c.MinDuration))
	}
	if c.MinDuration > c.MaxDuration {
		errs = append(errs, fmt.Errorf("DUEL_MIN_DURATION_SECONDS (%d) exceeds DUEL_MAX_DURATION_SECONDS (%d)", c.MinDuration, c.MaxDuration))
	}
	if c.MaxGroundLength < 1 {
		errs = append(errs, fmt.Errorf("DUEL_MAX_GROUND_LENGTH must be positive, got %d", c.MaxGroundLength))
	}
	if c.DBMaxConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount))
	}

	for name, d := range map[string]time.Duration{
		"DUEL_CHALLENGE_EXPIRY":  c.ChallengeExpiry,
		"DUEL_INACTIVITY_WINDOW": c.InactivityWindow,
		"JANITOR_INTERVAL":       c.JanitorInterval,
		"JANITOR_NUDGE_GAP":      c.JanitorNudgeGap,
		"JUDGE_TIMEOUT":          c.JudgeTimeout,
		"SSE_KEEPALIVE":          c.SSEKeepalive,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}

	return errors.Join(errs...)
}

// Warnings returns non-fatal configuration issues, such as example secrets
// left in place or a missing judge.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.DBPassword == ExampleDBPassword {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value - please use a secure password")
	}
	if c.AdminAPIKey == ExampleAdminAPIKey {
		warnings = append(warnings, "ADMIN_API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}
	if !c.JudgeEnabled() {
		warnings = append(warnings, "OPENAI_API_KEY is not set - every argument will receive the neutral fallback verdict")
	}
	if c.DiscordToken != "" && c.DiscordChannel == "" {
		warnings = append(warnings, "DISCORD_BOT_TOKEN is set without DISCORD_CHANNEL_ID - Discord notices are disabled")
	}

	return warnings
}
