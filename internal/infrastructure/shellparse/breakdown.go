// Package shellparse splits a command line into its pipeline segments for
// display. Classification never depends on it.
package shellparse

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Redirect is one I/O redirection attached to a segment.
type Redirect struct {
	Op     string
	Target string
}

func (r Redirect) String() string {
	return r.Op + " " + r.Target
}

// Segment is a single simple command and the operator joining it to the next one.
type Segment struct {
	Assigns   []string
	Program   string
	Args      []string
	Redirects []Redirect
	// Operator is "|", "&&", "||", ";" or "&"; empty for the last segment.
	Operator string
}

// Text renders the segment without its trailing operator.
func (s Segment) Text() string {
	parts := append([]string{}, s.Assigns...)
	if s.Program != "" {
		parts = append(parts, s.Program)
	}
	parts = append(parts, s.Args...)
	for _, r := range s.Redirects {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " ")
}

// Breakdown parses command with the bash dialect.
func Breakdown(command string) ([]Segment, error) {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}
	var b builder
	b.stmts(file.Stmts, "")
	return b.segments, nil
}

type builder struct {
	segments []Segment
}

// stmts walks a statement list; statements are joined by ";" (or "&" when
// backgrounded) and the last one inherits next.
func (b *builder) stmts(list []*syntax.Stmt, next string) {
	for i, stmt := range list {
		op := next
		if i < len(list)-1 {
			op = ";"
		}
		if stmt.Background {
			op = "&"
		}
		b.stmt(stmt, op)
	}
}

func (b *builder) stmt(stmt *syntax.Stmt, next string) {
	if stmt.Cmd == nil {
		return
	}
	switch cmd := stmt.Cmd.(type) {
	case *syntax.CallExpr:
		seg := callSegment(cmd)
		seg.Redirects = redirects(stmt.Redirs)
		seg.Operator = next
		b.segments = append(b.segments, seg)
	case *syntax.BinaryCmd:
		b.stmt(cmd.X, cmd.Op.String())
		b.stmt(cmd.Y, next)
	case *syntax.Subshell:
		b.stmts(cmd.Stmts, next)
	case *syntax.Block:
		b.stmts(cmd.Stmts, next)
	default:
		b.segments = append(b.segments, Segment{
			Program:   nodeString(cmd),
			Redirects: redirects(stmt.Redirs),
			Operator:  next,
		})
	}
}

func callSegment(call *syntax.CallExpr) Segment {
	var seg Segment
	for _, assign := range call.Assigns {
		text := assign.Name.Value + "="
		if assign.Value != nil {
			text += nodeString(assign.Value)
		}
		seg.Assigns = append(seg.Assigns, text)
	}
	for i, word := range call.Args {
		if i == 0 {
			seg.Program = nodeString(word)
			continue
		}
		seg.Args = append(seg.Args, nodeString(word))
	}
	return seg
}

func redirects(list []*syntax.Redirect) []Redirect {
	var out []Redirect
	for _, redir := range list {
		op := redir.Op.String()
		if redir.N != nil {
			op = redir.N.Value + op
		}
		r := Redirect{Op: op}
		if redir.Word != nil {
			r.Target = nodeString(redir.Word)
		}
		out = append(out, r)
	}
	return out
}

func nodeString(node syntax.Node) string {
	var sb strings.Builder
	_ = syntax.NewPrinter().Print(&sb, node)
	return strings.TrimSpace(sb.String())
}
