// Package lexer turns LaTeX source into a token stream: a single-pass,
// context-sensitive scanner that recognises LaTeX commands, Unicode
// mathematical symbols, and inserts synthetic multiplication tokens where
// juxtaposition implies a product (spec.md §4.1).
package lexer

import "fmt"

// Kind is a tagged variant identifying the lexical category of a Token.
type Kind int

const (
	Illegal Kind = iota
	Eof

	Number
	Variable
	Constant
	Function

	Plus
	Minus
	Multiply
	Divide
	Power

	CmpLess
	CmpGreater
	CmpLessEq
	CmpGreaterEq
	CmpEqual
	CmpNotEqual
	CmpMember

	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Pipe
	LAngle
	RAngle

	Underscore
	Ampersand
	Backslash
	Comma

	Begin
	End
	To

	Lim
	Sum
	Prod
	Int
	IInt
	IIIt
	OInt
	Frac
	Sqrt
	Binom
	Partial
	Nabla
	Infty
	Text
	FontCommand
	LetKeyword

	Bang // postfix factorial '!'
)

var kindNames = map[Kind]string{
	Illegal: "ILLEGAL", Eof: "EOF",
	Number: "NUMBER", Variable: "VARIABLE", Constant: "CONSTANT", Function: "FUNCTION",
	Plus: "PLUS", Minus: "MINUS", Multiply: "MULTIPLY", Divide: "DIVIDE", Power: "POWER",
	CmpLess: "LESS", CmpGreater: "GREATER", CmpLessEq: "LESSEQ", CmpGreaterEq: "GREATEREQ",
	CmpEqual: "EQUAL", CmpNotEqual: "NOTEQUAL", CmpMember: "MEMBER",
	LParen: "LPAREN", RParen: "RPAREN", LBrace: "LBRACE", RBrace: "RBRACE",
	LBracket: "LBRACKET", RBracket: "RBRACKET", Pipe: "PIPE", LAngle: "LANGLE", RAngle: "RANGLE",
	Underscore: "UNDERSCORE", Ampersand: "AMPERSAND", Backslash: "BACKSLASH", Comma: "COMMA",
	Begin: "BEGIN", End: "END", To: "TO",
	Lim: "LIM", Sum: "SUM", Prod: "PROD", Int: "INT", IInt: "IINT", IIIt: "IIIT", OInt: "OINT",
	Frac: "FRAC", Sqrt: "SQRT", Binom: "BINOM", Partial: "PARTIAL", Nabla: "NABLA", Infty: "INFTY",
	Text: "TEXT", FontCommand: "FONTCOMMAND", LetKeyword: "LET", Bang: "BANG",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Token is a single lexed unit: its kind, literal text, and byte offset
// into the original source. Number tokens additionally carry a
// pre-parsed float64 so the parser never re-parses the lexeme.
type Token struct {
	Kind    Kind
	Literal string
	Pos     int
	Value   float64 // valid only when Kind == Number

	// FontFamily is set when Kind == FontCommand (e.g. "mathbf", "mathrm").
	FontFamily string

	// PipeOpen is meaningful only when Kind == Pipe: true if this '|'
	// opens a new absolute-value group, false if it closes one. The
	// lexer's pipe-depth counter decides this at scan time (spec.md §4.1
	// pipe balancing); EndsOperand/StartsOperand consult it below so
	// "|x|*y" doesn't insert a multiply between the two pipes.
	PipeOpen bool
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Literal, t.Pos)
}

// EndsOperand reports whether t can be the last token of a complete
// operand, i.e. a candidate left-hand side for an implicit multiplication
// (spec.md §4.1). A Pipe only qualifies when it closes a group.
func (t Token) EndsOperand() bool {
	if t.Kind == Pipe {
		return !t.PipeOpen
	}
	switch t.Kind {
	case Number, Variable, Constant, RParen, RBrace, RBracket, Bang:
		return true
	default:
		return false
	}
}

// StartsOperand reports whether t can begin a new operand, i.e. a
// candidate right-hand side for an implicit multiplication. A Pipe only
// qualifies when it opens a group.
func (t Token) StartsOperand() bool {
	if t.Kind == Pipe {
		return t.PipeOpen
	}
	switch t.Kind {
	case Number, Variable, Constant, Function, LParen, LBrace, Frac, Sqrt,
		Int, IInt, IIIt, OInt, Sum, Prod, Lim, Begin, Binom, Nabla,
		Partial, FontCommand:
		return true
	default:
		return false
	}
}
