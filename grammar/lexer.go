package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var StencilLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{Name: "Comment", Pattern: `//[^\n]*`, Action: nil},

		// Keywords and Identifiers (order matters)
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},

		// Numeric literals, floats first
		{Name: "Float", Pattern: `[0-9]+\.[0-9]*([eE][-+]?[0-9]+)?|[0-9]+[eE][-+]?[0-9]+`, Action: nil},
		{Name: "Int", Pattern: `[0-9]+`, Action: nil},

		// Operators
		{Name: "Operator", Pattern: `(\*\*|\|\||&&|==|!=|<=|>=|\+=|-=|\*=|/=|[-+*/%<>=?!])`, Action: nil},

		// Punctuation (must come after operators)
		{Name: "Punctuation", Pattern: `[{}[\](),;:]`, Action: nil},

		// Whitespace
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
	},
})
