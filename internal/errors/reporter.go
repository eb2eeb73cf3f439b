package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/eddie-c-davis/gt4py/internal/ast"
)

// ErrorLevel represents the severity of an error
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
)

var levelColors = map[ErrorLevel]*color.Color{
	Error:   color.New(color.FgRed, color.Bold),
	Warning: color.New(color.FgYellow, color.Bold),
}

func (l ErrorLevel) paint(s string) string {
	c, ok := levelColors[l]
	if !ok {
		c = levelColors[Error]
	}
	return c.Sprint(s)
}

// CompilerError represents a structured error with suggestions and context
type CompilerError struct {
	Level       ErrorLevel
	Code        string       // Error code like E0100
	Message     string       // Primary error message
	Position    ast.Position // Location in source
	Length      int          // Length of the problematic region
	Suggestions []Suggestion // Suggested fixes
	Notes       []string     // Additional context notes
	HelpText    string       // Help text for the error
	Cause       error        // Underlying error, if any
}

func (e *CompilerError) Error() string {
	var b strings.Builder
	if e.Position.Line > 0 {
		if e.Position.Filename != "" {
			b.WriteString(e.Position.Filename + ":")
		}
		b.WriteString(fmt.Sprintf("%d:%d: ", e.Position.Line, e.Position.Column))
	}
	b.WriteString(fmt.Sprintf("%s[%s]: %s", e.Level, e.Code, e.Message))
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *CompilerError) Unwrap() error {
	return e.Cause
}

// As extracts the first CompilerError in err's chain.
func As(err error) (*CompilerError, bool) {
	var ce *CompilerError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HasCode reports whether err carries a CompilerError with the given code.
func HasCode(err error, code string) bool {
	ce, ok := As(err)
	return ok && ce.Code == code
}

// Suggestion is a one-line fix offered with a diagnostic.
type Suggestion struct {
	Message string
}

// ErrorReporter renders diagnostics against the source of one stencil file.
type ErrorReporter struct {
	filename string
	lines    []string
}

// NewErrorReporter creates a new error reporter for a file
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

var (
	dim   = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	blue  = color.New(color.FgBlue).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

// FormatError renders the header, the offending line between its neighbours
// with a caret span, then suggestions, notes and help.
func (er *ErrorReporter) FormatError(err *CompilerError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]: %s\n", err.Level.paint(string(err.Level)), err.Code, err.Message)

	line := err.Position.Line
	width := max(3, len(strconv.Itoa(line)))
	gutter := strings.Repeat(" ", width)

	// Tool failures and internal checks have no source location; their
	// notes carry multi-line tool output.
	if line <= 0 {
		for _, note := range err.Notes {
			for _, l := range strings.Split(note, "\n") {
				fmt.Fprintf(&b, "%s %s %s\n", gutter, dim("="), l)
			}
		}
		if err.Cause != nil {
			fmt.Fprintf(&b, "%s %s %s\n", gutter, dim("="), err.Cause.Error())
		}
		return b.String()
	}

	source := func(n int, style func(...interface{}) string) {
		if n >= 1 && n <= len(er.lines) {
			fmt.Fprintf(&b, "%s %s %s\n", style(fmt.Sprintf("%*d", width, n)), dim("│"), er.lines[n-1])
		}
	}
	fmt.Fprintf(&b, "%s %s %s:%d:%d\n", gutter, dim("-->"), er.filename, line, err.Position.Column)
	fmt.Fprintf(&b, "%s %s\n", gutter, dim("│"))
	source(line-1, dim)
	if line <= len(er.lines) {
		source(line, bold)
		caret := strings.Repeat(" ", max(0, err.Position.Column-1)) + err.Level.paint(strings.Repeat("^", max(1, err.Length)))
		fmt.Fprintf(&b, "%s %s %s\n", gutter, dim("│"), caret)
		source(line+1, dim)
	}

	for i, s := range err.Suggestions {
		if i == 0 {
			fmt.Fprintf(&b, "%s %s\n", gutter, dim("│"))
		}
		fmt.Fprintf(&b, "%s %s: %s\n", gutter, cyan("help"), s.Message)
	}
	for _, note := range err.Notes {
		fmt.Fprintf(&b, "%s %s %s %s\n", gutter, dim("│"), blue("note:"), note)
	}
	if err.HelpText != "" {
		fmt.Fprintf(&b, "%s %s %s %s\n", gutter, dim("│"), green("help:"), err.HelpText)
	}
	b.WriteString("\n")
	return b.String()
}

// FormatAll formats every error of err, descending into errors.Join trees.
func (er *ErrorReporter) FormatAll(err error) string {
	var b strings.Builder
	er.formatInto(&b, err)
	return b.String()
}

func (er *ErrorReporter) formatInto(b *strings.Builder, err error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			er.formatInto(b, e)
		}
		return
	}
	if ce, ok := As(err); ok {
		b.WriteString(er.FormatError(ce))
		return
	}
	fmt.Fprintf(b, "%s: %s\n\n", Error.paint(string(Error)), err.Error())
}
