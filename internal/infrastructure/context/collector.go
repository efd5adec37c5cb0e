package contextcollector

import (
	"context"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/pkg/filesystem"
	"github.com/doeshing/codecraft/internal/ports"
)

// Options tunes tool detection.
type Options struct {
	Tools        []string
	ProbeTimeout time.Duration
	Logger       ports.Logger
}

// BasicCollector implements ContextCollector with environment and PATH probing.
// The first successful snapshot is memoized.
type BasicCollector struct {
	toolsToCheck []string
	probeTimeout time.Duration
	logger       ports.Logger

	// lookPath and getenv are swapped in tests.
	lookPath func(string) (string, error)
	getenv   func(string) string
	goos     string

	mu       sync.Mutex
	snapshot *domain.SystemContext
}

// NewBasicCollector builds a collector.
func NewBasicCollector(opts Options) *BasicCollector {
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = domain.DefaultToolProbeTimeout
	}
	return &BasicCollector{
		toolsToCheck: opts.Tools,
		probeTimeout: timeout,
		logger:       opts.Logger,
		lookPath:     exec.LookPath,
		getenv:       os.Getenv,
		goos:         runtime.GOOS,
	}
}

// Collect gathers context data.
func (c *BasicCollector) Collect(ctx context.Context) (domain.SystemContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot != nil {
		return *c.snapshot, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	tools, err := c.detectTools(ctx)
	if err != nil {
		return domain.SystemContext{}, err
	}

	snapshot := domain.SystemContext{
		OS:             osName(c.goos),
		Platform:       platformName(c.goos),
		Shell:          c.detectShell(),
		WorkingDir:     wd,
		AvailableTools: tools,
		HomeDir:        filesystem.UserHomeDir(),
		Username:       c.username(),
	}
	if c.logger != nil {
		c.logger.Debug("collected system context", map[string]interface{}{
			"os":    snapshot.OS,
			"shell": snapshot.Shell,
			"tools": len(tools),
		})
	}
	c.snapshot = &snapshot
	return snapshot, nil
}

// detectTools probes PATH for each configured tool, bounded by probeTimeout each.
func (c *BasicCollector) detectTools(ctx context.Context) ([]string, error) {
	var available []string
	for _, tool := range c.toolsToCheck {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.probe(ctx, tool) {
			available = append(available, tool)
		}
	}
	sort.Strings(available)
	return available, nil
}

func (c *BasicCollector) probe(ctx context.Context, tool string) bool {
	pctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	found := make(chan bool, 1)
	go func() {
		_, err := c.lookPath(tool)
		found <- err == nil
	}()
	select {
	case ok := <-found:
		return ok
	case <-pctx.Done():
		return false
	}
}

func (c *BasicCollector) detectShell() string {
	if c.goos == "windows" {
		shell := strings.ToLower(c.getenv("SHELL") + c.getenv("ComSpec"))
		if strings.Contains(shell, "powershell") || c.getenv("PSModulePath") != "" {
			return "PowerShell"
		}
		return "cmd"
	}
	shell := c.getenv("SHELL")
	for _, known := range []string{"zsh", "bash", "fish"} {
		if strings.Contains(shell, known) {
			return known
		}
	}
	if shell == "" {
		return "unknown"
	}
	return filepath.Base(shell)
}

func (c *BasicCollector) username() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if v := c.getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}

func osName(goos string) string {
	switch goos {
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	default:
		return goos
	}
}

// platformName maps GOOS to the conventional platform identifier.
func platformName(goos string) string {
	if goos == "windows" {
		return "win32"
	}
	return goos
}

var _ ports.ContextCollector = (*BasicCollector)(nil)
