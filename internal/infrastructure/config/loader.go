package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/codecraft/assets"
	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/pkg/filesystem"
	"github.com/doeshing/codecraft/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "CODECRAFT_CONFIG"

// Environment variables layered over the YAML file.
const (
	EnvModel             = "OPENROUTER_MODEL"
	EnvProviderOrder     = "OPENROUTER_PROVIDER_ORDER"
	EnvAllowFallbacks    = "OPENROUTER_ALLOW_FALLBACKS"
	EnvRequireParameters = "OPENROUTER_REQUIRE_PARAMETERS"
	EnvDataCollection    = "OPENROUTER_DATA_COLLECTION"
	EnvTemperature       = "OPENROUTER_TEMPERATURE"
	EnvMaxTokens         = "OPENROUTER_MAX_TOKENS"
	EnvSiteURL           = "CODECRAFT_SITE_URL"
	EnvSiteName          = "CODECRAFT_SITE_NAME"
)

// FileLoader loads YAML configuration from ~/.codecraft/config.yaml (overridable via CODECRAFT_CONFIG).
type FileLoader struct {
	overridePath string
	envFile      string
	logger       ports.Logger
}

// NewFileLoader builds a new loader. An empty path uses the default location.
func NewFileLoader(path string, logger ports.Logger) *FileLoader {
	return &FileLoader{overridePath: path, envFile: ".env", logger: logger}
}

// WithEnvFile changes the dotenv file consulted before the environment overlay.
func (l *FileLoader) WithEnvFile(path string) *FileLoader {
	l.envFile = path
	return l
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := writeDefault(path); err != nil {
			return domain.Config{}, fmt.Errorf("write default config: %w", err)
		}
		l.debug("wrote default config", map[string]interface{}{"path": path})
		data = assets.DefaultConfigYAML
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := l.loadDotEnv(); err != nil {
		return domain.Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return domain.Config{}, err
	}

	cfg = hydrateDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// EnvFile returns the dotenv path consulted by Load.
func (l *FileLoader) EnvFile() string {
	return l.envFile
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

// loadDotEnv reads the dotenv file if present. Existing variables win.
func (l *FileLoader) loadDotEnv() error {
	if l.envFile == "" {
		return nil
	}
	if _, err := os.Stat(l.envFile); err != nil {
		return nil
	}
	if err := godotenv.Load(l.envFile); err != nil {
		return fmt.Errorf("load %s: %w", l.envFile, err)
	}
	l.debug("loaded dotenv", map[string]interface{}{"path": l.envFile})
	return nil
}

func (l *FileLoader) debug(msg string, fields map[string]interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, fields)
	}
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func writeDefault(path string) error {
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

func applyEnv(cfg *domain.Config) error {
	or := &cfg.OpenRouter

	keyEnv := or.APIKeyEnv
	if keyEnv == "" {
		keyEnv = domain.DefaultAPIKeyEnv
	}
	cfg.APIKey = os.Getenv(keyEnv)

	if v, ok := lookup(EnvModel); ok {
		or.Model = v
	}
	if v, ok := lookup(EnvSiteURL); ok {
		or.SiteURL = v
	}
	if v, ok := lookup(EnvSiteName); ok {
		or.SiteName = v
	}
	if v, ok := lookup(EnvTemperature); ok {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTemperature, err)
		}
		or.Temperature = &t
	}
	if v, ok := lookup(EnvMaxTokens); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxTokens, err)
		}
		or.MaxTokens = n
	}

	prefs := domain.ProviderPreferences{}
	if or.Provider != nil {
		prefs = *or.Provider
	}
	if v, ok := lookup(EnvProviderOrder); ok {
		prefs.Order = splitList(v)
	}
	if v, ok := lookup(EnvAllowFallbacks); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAllowFallbacks, err)
		}
		prefs.AllowFallbacks = &b
	}
	if v, ok := lookup(EnvRequireParameters); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequireParameters, err)
		}
		prefs.RequireParameters = &b
	}
	if v, ok := lookup(EnvDataCollection); ok {
		prefs.DataCollection = strings.ToLower(v)
	}
	if !prefs.IsZero() {
		or.Provider = &prefs
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.OpenRouter.BaseURL == "" {
		cfg.OpenRouter.BaseURL = domain.DefaultBaseURL
	}
	if cfg.OpenRouter.APIKeyEnv == "" {
		cfg.OpenRouter.APIKeyEnv = domain.DefaultAPIKeyEnv
	}
	if cfg.OpenRouter.Model == "" {
		cfg.OpenRouter.Model = domain.DefaultModel
	}
	if cfg.Execution.Shell == "" {
		cfg.Execution.Shell = domain.ShellAuto
	}
	if cfg.Execution.ConfirmLiteral == "" {
		cfg.Execution.ConfirmLiteral = domain.DefaultConfirmLiteral
	}
	if cfg.History.Path != "" {
		cfg.History.Path = filesystem.ExpandPath(cfg.History.Path)
	}
	if cfg.Security.RulesFile != "" {
		cfg.Security.RulesFile = filesystem.ExpandPath(cfg.Security.RulesFile)
	}
	if cfg.Cache.Dir != "" {
		cfg.Cache.Dir = filesystem.ExpandPath(cfg.Cache.Dir)
	}
	if len(cfg.Context.Tools) == 0 {
		cfg.Context.Tools = DefaultTools()
	}
	return cfg
}

// DefaultConfig parses the embedded bootstrap configuration.
func DefaultConfig() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse embedded config: %w", err)
	}
	return hydrateDefaults(cfg), nil
}

// DefaultTools is the probe list used when the config names none.
func DefaultTools() []string {
	return []string{
		"git", "docker", "npm", "node", "python", "pip", "curl", "wget",
		"tar", "zip", "unzip", "grep", "find", "sed", "awk", "jq",
		"kubectl", "terraform", "ansible", "make", "gcc", "go", "rustc",
		"cargo", "java", "mvn", "gradle",
	}
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
