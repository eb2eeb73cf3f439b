package errors

import (
	"fmt"
	"strings"

	"github.com/eddie-c-davis/gt4py/internal/ast"
)

// DiagnosticBuilder provides a fluent interface for creating errors with suggestions
type DiagnosticBuilder struct {
	err CompilerError
}

// NewDiagnostic creates a new error builder
func NewDiagnostic(code, message string, pos ast.Position) *DiagnosticBuilder {
	return &DiagnosticBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// NewWarning creates a new warning builder
func NewWarning(code, message string, pos ast.Position) *DiagnosticBuilder {
	b := NewDiagnostic(code, message, pos)
	b.err.Level = Warning
	return b
}

// WithLength sets the length of the error span
func (b *DiagnosticBuilder) WithLength(length int) *DiagnosticBuilder {
	b.err.Length = length
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *DiagnosticBuilder) WithSuggestion(message string) *DiagnosticBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithNote adds a note to the error
func (b *DiagnosticBuilder) WithNote(note string) *DiagnosticBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *DiagnosticBuilder) WithHelp(help string) *DiagnosticBuilder {
	b.err.HelpText = help
	return b
}

// WithCause records the underlying error
func (b *DiagnosticBuilder) WithCause(cause error) *DiagnosticBuilder {
	b.err.Cause = cause
	return b
}

// Build returns the completed compiler error
func (b *DiagnosticBuilder) Build() *CompilerError {
	err := b.err
	return &err
}

// UnsupportedConstruct reports a node kind or operator that has no lowering rule.
func UnsupportedConstruct(what string, pos ast.Position) *CompilerError {
	return NewDiagnostic(ErrorUnsupportedConstruct, fmt.Sprintf("unsupported %s", what), pos).
		WithHelp("lowering aborted; no partial output is produced").
		Build()
}

// UnsupportedOperator reports an operator without a lowering rule.
func UnsupportedOperator(kind, symbol string, pos ast.Position, supported []string) *CompilerError {
	b := NewDiagnostic(ErrorUnsupportedConstruct, fmt.Sprintf("unsupported %s operator '%s'", kind, symbol), pos).
		WithLength(len(symbol))
	if len(supported) > 0 {
		b = b.WithNote(fmt.Sprintf("supported %s operators: %s", kind, strings.Join(supported, " ")))
	}
	return b.Build()
}

// UnresolvedSymbol reports a name that is neither a declared field, a parameter nor an external.
func UnresolvedSymbol(kind, name string, pos ast.Position, candidates []string) *CompilerError {
	b := NewDiagnostic(ErrorUnresolvedSymbol, fmt.Sprintf("unresolved %s '%s'", kind, name), pos).
		WithLength(len(name))

	similar := findSimilarNames(name, candidates)
	switch len(similar) {
	case 0:
		b = b.WithSuggestion(fmt.Sprintf("declare '%s' before use", name))
	case 1:
		b = b.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similar[0]))
	default:
		b = b.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '")))
	}
	if kind == "variable" {
		b = b.WithNote("scalar variables must be stencil parameters or numeric externals")
	}
	return b.Build()
}

// UndefinedValue reports a read of a field that has not been loaded or written.
func UndefinedValue(field string, pos ast.Position) *CompilerError {
	return NewDiagnostic(ErrorUndefinedValue, fmt.Sprintf("field '%s' is read before it is written", field), pos).
		WithLength(len(field)).
		WithSuggestion(fmt.Sprintf("assign '%s' in an earlier statement", field)).
		Build()
}

// InvariantViolation reports an internal consistency failure of the lowering engine.
func InvariantViolation(format string, args ...any) *CompilerError {
	return NewDiagnostic(ErrorStructuralInvariant, fmt.Sprintf(format, args...), ast.Position{}).
		WithNote("the input tree is malformed or uses an unsupported shape").
		Build()
}

// ExternalToolFailure carries a downstream tool's diagnostics verbatim.
func ExternalToolFailure(tool string, diagnostics string) *CompilerError {
	return NewDiagnostic(ErrorExternalTool, fmt.Sprintf("%s failed", tool), ast.Position{}).
		WithNote(strings.TrimRight(diagnostics, "\n")).
		Build()
}

// ToolNotFound reports a tool that could not be started.
func ToolNotFound(tool string, cause error) *CompilerError {
	return NewDiagnostic(ErrorToolNotFound, fmt.Sprintf("cannot run %s", tool), ast.Position{}).
		WithCause(cause).
		WithHelp("check the tools section of the build options").
		Build()
}

// ResourceFailure reports an output that cannot be created or written.
func ResourceFailure(op, path string, cause error) *CompilerError {
	return NewDiagnostic(ErrorResource, fmt.Sprintf("cannot %s %s", op, path), ast.Position{}).
		WithCause(cause).
		Build()
}

// UnsetIntent reports an api field that is declared but never read nor written.
func UnsetIntent(field string, pos ast.Position) *CompilerError {
	return NewDiagnostic(ErrorUnsetIntent, fmt.Sprintf("field '%s' is never referenced", field), pos).
		WithLength(len(field)).
		WithSuggestion(fmt.Sprintf("remove '%s' from the signature", field)).
		Build()
}

// DuplicateDeclaration reports a name declared twice.
func DuplicateDeclaration(name string, pos ast.Position) *CompilerError {
	return NewDiagnostic(ErrorDuplicateDeclaration, fmt.Sprintf("'%s' is declared more than once", name), pos).
		WithLength(len(name)).
		Build()
}

// SyntaxError reports a DSL parse failure.
func SyntaxError(message string, pos ast.Position) *CompilerError {
	return NewDiagnostic(ErrorSyntax, message, pos).Build()
}

// InvalidDeclaration reports a bad type or axis spelling.
func InvalidDeclaration(message string, pos ast.Position) *CompilerError {
	return NewDiagnostic(ErrorInvalidDeclaration, message, pos).
		WithNote("types: f32 f64 i8 i16 i32 i64 bool; axes: any of I J K").
		Build()
}

// UpperBoundIgnored warns that an interval's upper offset is recorded but not masked.
func UpperBoundIgnored(offset int, pos ast.Position) *CompilerError {
	return NewWarning(WarningUpperBoundIgnored, fmt.Sprintf("upper interval offset %d is not masked", offset), pos).
		WithNote("only the lower bound of a vertical interval produces a guard").
		Build()
}

func findSimilarNames(target string, candidates []string) []string {
	var similar []string

	for _, candidate := range candidates {
		if levenshteinDistance(target, candidate) <= 2 && len(candidate) > 2 {
			similar = append(similar, candidate)
		}
	}

	return similar
}

// Simple Levenshtein distance implementation for finding similar names
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
