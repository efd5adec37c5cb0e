package filesystem

import (
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	tests := []struct {
		in   string
		want string
	}{
		{in: "~", want: home},
		{in: "~/history.db", want: filepath.Join(home, "history.db")},
		{in: "/tmp/x", want: "/tmp/x"},
		{in: "relative/~", want: "relative/~"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := AppDir(); got != filepath.Join(home, ".codecraft") {
		t.Errorf("AppDir() = %q", got)
	}
}
