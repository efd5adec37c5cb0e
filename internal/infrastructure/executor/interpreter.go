package executor

import (
	"path/filepath"
	"strings"

	"github.com/doeshing/codecraft/internal/domain"
)

// Interpreter is the argv prefix that precedes the command text.
type Interpreter struct {
	Path string
	Args []string
}

// Argv returns the full argument list for command, which is passed verbatim.
func (i Interpreter) Argv(command string) []string {
	args := make([]string, 0, len(i.Args)+1)
	args = append(args, i.Args...)
	return append(args, command)
}

func (i Interpreter) String() string {
	return strings.TrimSpace(i.Path + " " + strings.Join(i.Args, " "))
}

// ResolveInterpreter picks the flags for shell on goos. An empty or "auto"
// shell falls back to /bin/sh on Unix and powershell.exe on Windows.
func ResolveInterpreter(shell, goos string) Interpreter {
	shell = strings.TrimSpace(shell)
	if shell == "" || shell == domain.ShellAuto {
		if goos == "windows" {
			shell = "powershell.exe"
		} else {
			shell = "/bin/sh"
		}
	}

	base := strings.ToLower(filepath.Base(strings.ReplaceAll(shell, `\`, "/")))
	base = strings.TrimSuffix(base, ".exe")
	switch base {
	case "powershell", "pwsh":
		return Interpreter{Path: shell, Args: []string{"-NoProfile", "-NonInteractive", "-Command"}}
	case "cmd":
		return Interpreter{Path: shell, Args: []string{"/C"}}
	default:
		return Interpreter{Path: shell, Args: []string{"-c"}}
	}
}
