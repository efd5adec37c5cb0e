package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Execution constants
const (
	// DefaultExecutionTimeout bounds a single command run
	DefaultExecutionTimeout = 30 * time.Second
	// DefaultMaxOutputBytes caps combined stdout and stderr (10 MiB)
	DefaultMaxOutputBytes = 10 << 20
	// DefaultConfirmLiteral must be typed verbatim to run a dangerous command
	DefaultConfirmLiteral = "CONFIRM"
	// NoOutputMarker replaces empty output of a successful command
	NoOutputMarker = "Command executed successfully (no output)"
	// TimeoutExitCode is reported when a command is killed on timeout
	TimeoutExitCode = 124
	// ShellAuto resolves the interpreter from the host
	ShellAuto = "auto"
)

// OpenRouter constants
const (
	DefaultBaseURL        = "https://openrouter.ai/api/v1"
	DefaultAPIKeyEnv      = "OPENROUTER_API_KEY"
	DefaultModel          = "openai/gpt-4o-mini"
	DefaultSiteURL        = "https://github.com/codecraft-cli"
	DefaultSiteName       = "CodeCraft CLI"
	DefaultTemperature    = 0.7
	DefaultMaxTokens      = 2000
	DefaultRequestTimeout = 60 * time.Second
)

// Context constants
const (
	// DefaultToolProbeTimeout bounds each PATH lookup
	DefaultToolProbeTimeout = time.Second
)

// Cache constants
const (
	// DefaultModelsTTL is how long the model catalog stays fresh
	DefaultModelsTTL = time.Hour
	// DefaultMaxCacheEntries is the maximum number of cache entries
	DefaultMaxCacheEntries = 16
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
)

// Chat constants
const (
	// MaxChatHistory is how many non-system messages a chat session keeps
	MaxChatHistory = 20
)
