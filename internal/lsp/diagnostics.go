package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/eddie-c-davis/gt4py/internal/errors"
)

const diagnosticSource = "stencil"

// ConvertErrors transforms a parse, analysis or lowering error into LSP
// diagnostics. Joined errors yield one diagnostic each.
func ConvertErrors(err error) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	for _, e := range flatten(err) {
		ce, ok := errors.As(e)
		if !ok {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Severity: ptrSeverity(protocol.DiagnosticSeverityError),
				Source:   ptrString(diagnosticSource),
				Message:  e.Error(),
			})
			continue
		}
		diagnostics = append(diagnostics, ConvertError(ce))
	}
	return diagnostics
}

// ConvertError maps one compiler error onto a diagnostic. Errors without a
// source position are reported on the first line.
func ConvertError(ce *errors.CompilerError) protocol.Diagnostic {
	line := uint32(max(ce.Position.Line-1, 0))
	start := uint32(max(ce.Position.Column-1, 0))
	length := uint32(max(ce.Length, 1))

	severity := protocol.DiagnosticSeverityError
	if ce.Level == errors.Warning {
		severity = protocol.DiagnosticSeverityWarning
	}

	message := ce.Message
	for _, s := range ce.Suggestions {
		message += "\n" + s.Message
	}
	for _, note := range ce.Notes {
		message += "\n" + note
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: start},
			End:   protocol.Position{Line: line, Character: start + length},
		},
		Severity: ptrSeverity(severity),
		Code:     &protocol.IntegerOrString{Value: ce.Code},
		Source:   ptrString(diagnosticSource),
		Message:  message,
	}
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var errs []error
		for _, e := range joined.Unwrap() {
			errs = append(errs, flatten(e)...)
		}
		return errs
	}
	return []error{err}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}

