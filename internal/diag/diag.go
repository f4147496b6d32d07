// Package diag accumulates compiler diagnostics across pipeline
// stages and renders them with source-excerpt carets.
package diag

import (
	"fmt"
	"strings"

	"github.com/otterlang/otterc/internal/token"
)

type Stage string

const (
	Lex     Stage = "lex"
	Parse   Stage = "parse"
	Resolve Stage = "resolve"
	Type    Stage = "type"
	Emit    Stage = "emit"
)

// Severity cap applied per stage: once a stage accumulates this many
// diagnostics, further diagnostics for that stage are dropped and a
// single synthetic "too many errors" diagnostic takes their place.
const SoftCap = 100

type Code string

const (
	ExpectedToken     Code = "E0001"
	ExpectedOneOf     Code = "E0002"
	DuplicateField    Code = "E0003"
	DuplicateVariant  Code = "E0004"
	DuplicateParam    Code = "E0005"
	UnterminatedLayer Code = "E0006"
	BadIndent         Code = "E0007"
	InvalidPattern    Code = "E0008"
	MissingColon      Code = "E0009"
	MissingBlock      Code = "E0010"
	UnknownSymbol     Code = "E0101"
	UnresolvedImport  Code = "E0102"
	CyclicImport      Code = "E0103"
	TypeMismatch      Code = "E0201"
	NotExhaustive     Code = "E0202"
	UnknownField      Code = "E0203"
	TooManyErrors     Code = "E0999"
)

type Diagnostic struct {
	Stage   Stage
	Code    Code
	Message string
	Span    token.Span
	Hint    string
}

func (d Diagnostic) String() string {
	if d.Hint != "" {
		return fmt.Sprintf("%s: [%s] %s (%s)\n  hint: %s", d.Span, d.Code, d.Message, d.Stage, d.Hint)
	}
	return fmt.Sprintf("%s: [%s] %s (%s)", d.Span, d.Code, d.Message, d.Stage)
}

// Bag accumulates diagnostics per stage up to SoftCap each.
type Bag struct {
	items  []Diagnostic
	counts map[Stage]int
}

func NewBag() *Bag {
	return &Bag{counts: make(map[Stage]int)}
}

func (b *Bag) Add(d Diagnostic) {
	if b.counts[d.Stage] >= SoftCap {
		return
	}
	b.counts[d.Stage]++
	if b.counts[d.Stage] == SoftCap {
		b.items = append(b.items, Diagnostic{
			Stage:   d.Stage,
			Code:    TooManyErrors,
			Message: fmt.Sprintf("too many %s errors, remaining diagnostics suppressed", d.Stage),
			Span:    d.Span,
		})
		return
	}
	b.items = append(b.items, d)
}

func (b *Bag) Errorf(stage Stage, code Code, span token.Span, format string, args ...any) {
	b.Add(Diagnostic{Stage: stage, Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

func (b *Bag) HasErrors() bool { return len(b.items) > 0 }

func (b *Bag) Diagnostics() []Diagnostic { return b.items }

func (b *Bag) Len() int { return len(b.items) }

// Render formats a single diagnostic with a caret pointing at its
// span, given the originating source text.
func Render(d Diagnostic, source string) string {
	lines := strings.Split(source, "\n")
	lineIdx := d.Span.From.Line - 1
	var excerpt string
	if lineIdx >= 0 && lineIdx < len(lines) {
		line := lines[lineIdx]
		col := d.Span.From.Column
		if col < 0 {
			col = 0
		}
		if col > len(line) {
			col = len(line)
		}
		caret := strings.Repeat(" ", col) + "^"
		excerpt = fmt.Sprintf("\n  %s\n  %s", line, caret)
	}
	return d.String() + excerpt
}

// RenderAll renders every diagnostic in the bag against source,
// joined by blank lines, in the style of a batch compiler report.
func RenderAll(b *Bag, source string) string {
	var sb strings.Builder
	for _, d := range b.Diagnostics() {
		sb.WriteString(Render(d, source))
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
