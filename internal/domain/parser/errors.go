package parser

import "github.com/texpr-go/texpr/internal/domain/lexer"

// suggestFor produces the handful of canned suggestions spec.md §4.2 and
// §4.8 ask for: unbalanced braces/parentheses, missing differential,
// ambiguous braceless fraction, missing \frac argument, environment
// mismatch. Anything else gets no suggestion rather than a guess.
func suggestFor(expected lexer.Kind, context string) string {
	switch expected {
	case lexer.RBrace:
		return "add a closing '}'"
	case lexer.RParen:
		return "add a closing ')'"
	case lexer.LBrace:
		if context == "frac argument" {
			return `\frac needs two braced arguments, e.g. \frac{1}{2}`
		}
		return "add an opening '{'"
	default:
		return ""
	}
}
