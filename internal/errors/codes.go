package errors

// Error codes for the stencil toolchain
// These codes are used in diagnostics and build logs
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0100-E0199: Lowering errors (unsupported input)
// E0200-E0299: Internal consistency errors
// E0300-E0399: External tool errors
// E0400-E0499: Resource errors
// E0500-E0599: Field analysis errors
// E0600-E0699: Front-end (DSL) errors
// E0800-E0899: Warning codes

const (
	// E0100: Node kind or operator without a lowering rule
	ErrorUnsupportedConstruct = "E0100"

	// E0101: Reference to an undeclared field or an unresolved variable
	ErrorUnresolvedSymbol = "E0101"

	// E0102: Read of a field that has no value yet
	ErrorUndefinedValue = "E0102"

	// E0200: Evaluation stack or emission order mismatch
	ErrorStructuralInvariant = "E0200"

	// E0300: Downstream process reported diagnostics
	ErrorExternalTool = "E0300"

	// E0301: Downstream process could not be started
	ErrorToolNotFound = "E0301"

	// E0400: Output sink cannot be created, written or committed
	ErrorResource = "E0400"

	// E0500: Declared field with no inferred intent
	ErrorUnsetIntent = "E0500"

	// E0501: Duplicate field or parameter declaration
	ErrorDuplicateDeclaration = "E0501"

	// E0600: DSL syntax error
	ErrorSyntax = "E0600"

	// E0601: Invalid type or axis spelling in the DSL
	ErrorInvalidDeclaration = "E0601"

	// W0800: Upper interval bound offsets are not masked
	WarningUpperBoundIgnored = "W0800"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUnsupportedConstruct:
		return "Construct has no lowering rule"
	case ErrorUnresolvedSymbol:
		return "Symbol is not a declared field, parameter or external"
	case ErrorUndefinedValue:
		return "Field is read before any value is available"
	case ErrorStructuralInvariant:
		return "Internal consistency check failed during lowering"
	case ErrorExternalTool:
		return "External tool reported diagnostics"
	case ErrorToolNotFound:
		return "External tool could not be started"
	case ErrorResource:
		return "Output could not be created or written"
	case ErrorUnsetIntent:
		return "Declared field is never referenced"
	case ErrorDuplicateDeclaration:
		return "Duplicate declaration found"
	case ErrorSyntax:
		return "Syntax error"
	case ErrorInvalidDeclaration:
		return "Invalid type or axis specification"
	case WarningUpperBoundIgnored:
		return "Upper interval bound offset is not masked"
	default:
		return "Unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than an error
func IsWarning(code string) bool {
	return code >= "E0800" && code < "E0900" || (code != "" && code[0] == 'W')
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case IsWarning(code):
		return "Warning"
	case code >= "E0100" && code < "E0200":
		return "Lowering"
	case code >= "E0200" && code < "E0300":
		return "Internal"
	case code >= "E0300" && code < "E0400":
		return "Toolchain"
	case code >= "E0400" && code < "E0500":
		return "Resource"
	case code >= "E0500" && code < "E0600":
		return "Field Analysis"
	case code >= "E0600" && code < "E0700":
		return "Parser"
	default:
		return "Unknown"
	}
}
