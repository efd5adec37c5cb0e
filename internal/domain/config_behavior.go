package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Rich Domain Model: 將業務邏輯封裝在 Domain 實體中

// ExecutionTimeout returns the configured command timeout, defaulting to 30s.
func (c *Config) ExecutionTimeout() time.Duration {
	if c.Execution.TimeoutMS <= 0 {
		return DefaultExecutionTimeout
	}
	return time.Duration(c.Execution.TimeoutMS) * time.Millisecond
}

// MaxOutputBytes returns the combined output cap.
func (c *Config) MaxOutputBytes() int {
	if c.Execution.MaxOutputBytes <= 0 {
		return DefaultMaxOutputBytes
	}
	return c.Execution.MaxOutputBytes
}

// ConfirmLiteral returns the token a user must type for dangerous commands.
func (c *Config) ConfirmLiteral() string {
	if strings.TrimSpace(c.Execution.ConfirmLiteral) == "" {
		return DefaultConfirmLiteral
	}
	return c.Execution.ConfirmLiteral
}

// ExecutionShell returns the configured interpreter path; "auto" when unset.
func (c *Config) ExecutionShell() string {
	if strings.TrimSpace(c.Execution.Shell) == "" {
		return ShellAuto
	}
	return c.Execution.Shell
}

// RequestTimeout bounds a single OpenRouter HTTP request.
func (c *Config) RequestTimeout() time.Duration {
	if c.OpenRouter.TimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.OpenRouter.TimeoutSeconds) * time.Second
}

// ChatModel returns override when set, else the configured model.
func (c *Config) ChatModel(override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if c.OpenRouter.Model == "" {
		return DefaultModel
	}
	return c.OpenRouter.Model
}

// ChatTemperature returns the sampling temperature, defaulting to 0.7.
func (c *Config) ChatTemperature() float64 {
	if c.OpenRouter.Temperature == nil {
		return DefaultTemperature
	}
	return *c.OpenRouter.Temperature
}

// ChatMaxTokens returns the completion token cap.
func (c *Config) ChatMaxTokens() int {
	if c.OpenRouter.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.OpenRouter.MaxTokens
}

// HasAPIKey reports whether a non-blank API key was resolved.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// RedactedAPIKey shows only the first 10 and last 4 characters of the key.
func (c *Config) RedactedAPIKey() string {
	key := c.APIKey
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 14 {
		return strings.Repeat("*", len(key))
	}
	return key[:10] + "..." + key[len(key)-4:]
}

// HistoryRetention returns how long run records are kept; zero disables pruning.
func (c *Config) HistoryRetention() time.Duration {
	if c.History.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.History.RetentionDays) * 24 * time.Hour
}

// ModelsCacheTTL parses cache.models_ttl, falling back to one hour.
func (c *Config) ModelsCacheTTL() time.Duration {
	ttl, err := time.ParseDuration(strings.TrimSpace(c.Cache.ModelsTTL))
	if err != nil || ttl <= 0 {
		return DefaultModelsTTL
	}
	return ttl
}

// ToolProbeTimeout bounds each tool lookup during context collection.
func (c *Config) ToolProbeTimeout() time.Duration {
	if c.Context.ToolProbeTimeout <= 0 {
		return DefaultToolProbeTimeout
	}
	return time.Duration(c.Context.ToolProbeTimeout) * time.Millisecond
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Execution.TimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("execution.timeout_ms must not be negative"))
	}
	if c.Execution.MaxOutputBytes < 0 {
		errs = append(errs, fmt.Errorf("execution.max_output_bytes must not be negative"))
	}
	if c.Execution.ConfirmLiteral != "" && strings.TrimSpace(c.Execution.ConfirmLiteral) != c.Execution.ConfirmLiteral {
		errs = append(errs, fmt.Errorf("execution.confirm_literal must not contain surrounding whitespace"))
	}
	if t := c.OpenRouter.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("openrouter.temperature must be between 0 and 2"))
	}
	if c.OpenRouter.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("openrouter.max_tokens must not be negative"))
	}
	if c.OpenRouter.BaseURL != "" && !strings.HasPrefix(c.OpenRouter.BaseURL, "http://") && !strings.HasPrefix(c.OpenRouter.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("openrouter.base_url must be an http(s) URL"))
	}
	if p := c.OpenRouter.Provider; p != nil && p.DataCollection != "" && p.DataCollection != "allow" && p.DataCollection != "deny" {
		errs = append(errs, fmt.Errorf("openrouter.provider.data_collection must be allow or deny"))
	}
	if c.History.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("history.retention_days must not be negative"))
	}
	if ttl := strings.TrimSpace(c.Cache.ModelsTTL); ttl != "" {
		if _, err := time.ParseDuration(ttl); err != nil {
			errs = append(errs, fmt.Errorf("cache.models_ttl: %w", err))
		}
	}
	return errors.Join(errs...)
}
