package shellparse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBreakdown(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []Segment
	}{
		{
			name:    "single",
			command: "ls -la /tmp",
			want:    []Segment{{Program: "ls", Args: []string{"-la", "/tmp"}}},
		},
		{
			name:    "pipeline and list",
			command: "ps aux | grep node && echo done > out.txt",
			want: []Segment{
				{Program: "ps", Args: []string{"aux"}, Operator: "|"},
				{Program: "grep", Args: []string{"node"}, Operator: "&&"},
				{Program: "echo", Args: []string{"done"}, Redirects: []Redirect{{Op: ">", Target: "out.txt"}}},
			},
		},
		{
			name:    "sequence",
			command: "cd /srv; make build",
			want: []Segment{
				{Program: "cd", Args: []string{"/srv"}, Operator: ";"},
				{Program: "make", Args: []string{"build"}},
			},
		},
		{
			name:    "fd redirect and assignment",
			command: "GOOS=linux go build ./... 2>/dev/null",
			want: []Segment{{
				Assigns:   []string{"GOOS=linux"},
				Program:   "go",
				Args:      []string{"build", "./..."},
				Redirects: []Redirect{{Op: "2>", Target: "/dev/null"}},
			}},
		},
		{
			name:    "quoted words keep quotes",
			command: `git commit -m "fix: typo"`,
			want:    []Segment{{Program: "git", Args: []string{"commit", "-m", `"fix: typo"`}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Breakdown(tt.command)
			if err != nil {
				t.Fatalf("Breakdown() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("segments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBreakdownParseError(t *testing.T) {
	if _, err := Breakdown(`echo "unterminated`); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSegmentText(t *testing.T) {
	seg := Segment{
		Assigns:   []string{"A=1"},
		Program:   "sort",
		Args:      []string{"-u"},
		Redirects: []Redirect{{Op: "<", Target: "in.txt"}},
	}
	if got := seg.Text(); got != "A=1 sort -u < in.txt" {
		t.Errorf("Text() = %q", got)
	}
}
