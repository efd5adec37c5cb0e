package cli

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClipboardCommand(t *testing.T) {
	installed := func(names ...string) func(string) (string, error) {
		return func(name string) (string, error) {
			for _, n := range names {
				if n == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		}
	}

	tests := []struct {
		name    string
		goos    string
		tools   []string
		want    []string
		wantErr bool
	}{
		{name: "macOS", goos: "darwin", want: []string{"pbcopy"}},
		{name: "windows", goos: "windows", want: []string{"clip"}},
		{name: "wayland first", goos: "linux", tools: []string{"xclip", "wl-copy"}, want: []string{"wl-copy"}},
		{name: "xclip", goos: "linux", tools: []string{"xclip"}, want: []string{"xclip", "-selection", "clipboard"}},
		{name: "nothing installed", goos: "linux", wantErr: true},
		{name: "unsupported", goos: "plan9", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Clipboard{goos: tt.goos, lookPath: installed(tt.tools...)}
			got, err := c.command()
			if (err != nil) != tt.wantErr {
				t.Fatalf("command() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("command() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
