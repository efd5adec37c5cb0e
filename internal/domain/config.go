package domain

// Config mirrors ~/.codecraft/config.yaml after environment overlay.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	OpenRouter          OpenRouterSettings `yaml:"openrouter"`
	Execution           ExecutionSettings  `yaml:"execution"`
	Security            SecuritySettings   `yaml:"security"`
	History             HistorySettings    `yaml:"history"`
	Context             ContextSettings    `yaml:"context"`
	Cache               CacheSettings      `yaml:"cache"`

	// APIKey is resolved by the loader from the environment and never written back.
	APIKey string `yaml:"-"`
	// Offline selects the local heuristic generator instead of OpenRouter.
	Offline bool `yaml:"-"`
}

// OpenRouterSettings configures the generation collaborator.
type OpenRouterSettings struct {
	BaseURL        string               `yaml:"base_url"`
	APIKeyEnv      string               `yaml:"api_key_env"`
	Model          string               `yaml:"model"`
	SiteURL        string               `yaml:"site_url"`
	SiteName       string               `yaml:"site_name"`
	Temperature    *float64             `yaml:"temperature,omitempty"`
	MaxTokens      int                  `yaml:"max_tokens"`
	TimeoutSeconds int                  `yaml:"timeout"`
	Provider       *ProviderPreferences `yaml:"provider,omitempty"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell          string `yaml:"shell"`
	TimeoutMS      int    `yaml:"timeout_ms"`
	MaxOutputBytes int    `yaml:"max_output_bytes"`
	ConfirmLiteral string `yaml:"confirm_literal"`
}

// SecuritySettings points at optional extra classification rules.
type SecuritySettings struct {
	RulesFile string `yaml:"rules_file"`
}

// HistorySettings configures the run history store.
type HistorySettings struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// ContextSettings configures system context collection.
type ContextSettings struct {
	Tools            []string `yaml:"tools"`
	ToolProbeTimeout int      `yaml:"tool_probe_timeout_ms"`
}

// CacheSettings configures the on-disk model catalog cache.
type CacheSettings struct {
	Dir       string `yaml:"dir"`
	ModelsTTL string `yaml:"models_ttl"`
}
