package lexer

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/texpr-go/texpr/internal/domain/texerr"
)

// foldCommand case-folds a command name for table lookup only; the
// lexeme stored on the resulting token keeps the original spelling so
// error messages echo exactly what the caller wrote. Case-insensitive
// command matching guards against "\Begin{Pmatrix}"-style input without
// hand-rolling ASCII-only strings.ToLower (see SPEC_FULL.md §2).
var commandCaser = cases.Fold()

func foldCommand(name string) string {
	return commandCaser.String(name)
}

// Config controls lexer behaviour that the façade exposes (spec.md §6).
type Config struct {
	// AllowImplicitMultiplication enables synthetic '*' insertion between
	// juxtaposed operands. When false, adjacent letter runs instead
	// coalesce into one multi-letter Variable (spec.md §4.1).
	AllowImplicitMultiplication bool
}

// DefaultConfig matches the façade's documented default (true).
func DefaultConfig() Config { return Config{AllowImplicitMultiplication: true} }

// Lexer is a single-pass, context-sensitive scanner over LaTeX source.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune

	cfg Config

	pipeDepth int
}

// New creates a Lexer over src. The source is first normalised to
// Unicode NFC (golang.org/x/text/unicode/norm) so a composed Greek
// letter and a decomposed combining-accent sequence denoting the same
// symbol lex identically.
func New(src string, cfg Config) *Lexer {
	l := &Lexer{input: norm.NFC.String(src), cfg: cfg}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	if r == utf8.RuneError && size == 1 {
		r = unicode.ReplacementChar
	}
	l.position = l.readPosition
	l.readPosition += size
	l.ch = r
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// Tokenize runs the scanner to completion, returning every emitted token
// (synthetic multiplication included) terminated by a single Eof token,
// or the first lexical error encountered.
func Tokenize(src string, cfg Config) ([]Token, error) {
	l := New(src, cfg)
	var out []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if cfg.AllowImplicitMultiplication && len(out) > 0 && needsImplicitMultiply(out[len(out)-1], tok) {
			out = append(out, Token{Kind: Multiply, Literal: "", Pos: tok.Pos})
		}
		out = append(out, tok)
		if tok.Kind == Eof {
			break
		}
	}
	return out, nil
}

func needsImplicitMultiply(prev, next Token) bool {
	return prev.EndsOperand() && next.StartsOperand()
}

// next scans and returns the single next token (no implicit-multiplication
// insertion; that is layered on in Tokenize since it needs the previous
// emitted token).
func (l *Lexer) next() (Token, error) {
	l.skipWhitespace()
	pos := l.position

	switch l.ch {
	case 0:
		return Token{Kind: Eof, Pos: pos}, nil
	case '+':
		l.readChar()
		return Token{Kind: Plus, Literal: "+", Pos: pos}, nil
	case '-':
		l.readChar()
		return Token{Kind: Minus, Literal: "-", Pos: pos}, nil
	case '*':
		l.readChar()
		return Token{Kind: Multiply, Literal: "*", Pos: pos}, nil
	case '/':
		l.readChar()
		return Token{Kind: Divide, Literal: "/", Pos: pos}, nil
	case '^':
		l.readChar()
		return Token{Kind: Power, Literal: "^", Pos: pos}, nil
	case '=':
		l.readChar()
		return Token{Kind: CmpEqual, Literal: "=", Pos: pos}, nil
	case '<':
		l.readChar()
		return Token{Kind: CmpLess, Literal: "<", Pos: pos}, nil
	case '>':
		l.readChar()
		return Token{Kind: CmpGreater, Literal: ">", Pos: pos}, nil
	case '!':
		l.readChar()
		return Token{Kind: Bang, Literal: "!", Pos: pos}, nil
	case '_':
		l.readChar()
		return Token{Kind: Underscore, Literal: "_", Pos: pos}, nil
	case '&':
		l.readChar()
		return Token{Kind: Ampersand, Literal: "&", Pos: pos}, nil
	case ',':
		l.readChar()
		return Token{Kind: Comma, Literal: ",", Pos: pos}, nil
	case '(':
		l.readChar()
		return Token{Kind: LParen, Literal: "(", Pos: pos}, nil
	case ')':
		l.readChar()
		return Token{Kind: RParen, Literal: ")", Pos: pos}, nil
	case '{':
		l.readChar()
		return Token{Kind: LBrace, Literal: "{", Pos: pos}, nil
	case '}':
		l.readChar()
		return Token{Kind: RBrace, Literal: "}", Pos: pos}, nil
	case '[':
		l.readChar()
		return Token{Kind: LBracket, Literal: "[", Pos: pos}, nil
	case ']':
		l.readChar()
		return Token{Kind: RBracket, Literal: "]", Pos: pos}, nil
	case '|':
		l.readChar()
		opening := l.pipeDepth%2 == 0
		l.pipeDepth++
		return Token{Kind: Pipe, Literal: "|", Pos: pos, PipeOpen: opening}, nil
	case '\\':
		return l.readBackslash(pos)
	}

	if isGreekRune(l.ch) {
		r := l.ch
		l.readChar()
		if r == 'π' || r == 'Π' {
			return Token{Kind: Constant, Literal: "pi", Pos: pos}, nil
		}
		return Token{Kind: Variable, Literal: string(r), Pos: pos}, nil
	}
	if isASCIILetter(l.ch) {
		return l.readIdentifierToken(pos)
	}
	if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
		return l.readNumberToken(pos)
	}

	bad := l.ch
	l.readChar()
	return Token{}, texerr.NewLexical(texerr.InvalidCharacter, pos, "unexpected character '"+string(bad)+"'", "")
}

func (l *Lexer) readBackslash(pos int) (Token, error) {
	l.readChar() // consume '\'

	if l.ch == '\\' {
		l.readChar()
		return Token{Kind: Backslash, Literal: `\\`, Pos: pos}, nil
	}
	if spacingPunct[byte(l.ch)] {
		l.readChar()
		return l.next() // discard, return whatever follows
	}

	start := l.position
	for isASCIILetter(l.ch) {
		l.readChar()
	}
	name := l.input[start:l.position]
	if name == "" {
		return Token{}, texerr.NewLexical(texerr.UnknownCommand, pos, "lone backslash with no command name", "")
	}

	folded := foldCommand(name)

	if name == "let" {
		return Token{Kind: LetKeyword, Literal: name, Pos: pos}, nil
	}
	if folded == "pi" {
		return Token{Kind: Constant, Literal: "pi", Pos: pos}, nil
	}
	if functionNames[name] {
		return Token{Kind: Function, Literal: name, Pos: pos}, nil
	}
	if greekLetters[name] {
		return Token{Kind: Variable, Literal: name, Pos: pos}, nil
	}
	if fontCommands[name] {
		return Token{Kind: FontCommand, Literal: name, Pos: pos, FontFamily: name}, nil
	}
	if cmd, ok := structuralCommands[foldCaseLookup(name)]; ok {
		if cmd.discard {
			return l.next()
		}
		return Token{Kind: cmd.kind, Literal: name, Pos: pos}, nil
	}

	suggestion := suggestCommand(name)
	return Token{}, texerr.NewLexical(texerr.UnknownCommand, pos, "unknown command '\\"+name+"'", suggestion)
}

// foldCaseLookup tries an exact match first, then a folded one, so
// structuralCommands keys (stored in their canonical spelling) still
// match case-varied input without requiring every key to be duplicated.
func foldCaseLookup(name string) string {
	if _, ok := structuralCommands[name]; ok {
		return name
	}
	folded := foldCommand(name)
	for k := range structuralCommands {
		if foldCommand(k) == folded {
			return k
		}
	}
	return name
}

func (l *Lexer) readIdentifierToken(pos int) (Token, error) {
	if !l.cfg.AllowImplicitMultiplication {
		start := l.position
		for isASCIILetter(l.ch) {
			l.readChar()
		}
		return Token{Kind: Variable, Literal: l.input[start:l.position], Pos: pos}, nil
	}
	// With implicit multiplication on, a bare run of ASCII letters is
	// still a single identifier (e.g. "sin" would have been caught by
	// readBackslash; here "xyz" is one three-letter variable, same as
	// the teacher's readIdentifier) — juxtaposition-as-product only
	// applies *between* separately lexed tokens, not within one run of
	// letters.
	start := l.position
	l.readChar()
	for isASCIILetter(l.ch) {
		l.readChar()
	}
	return Token{Kind: Variable, Literal: l.input[start:l.position], Pos: pos}, nil
}

func (l *Lexer) readNumberToken(pos int) (Token, error) {
	start := l.position
	hasDot := false
	for isDigit(l.ch) || (l.ch == '.' && !hasDot) {
		if l.ch == '.' {
			if !isDigit(l.peekChar()) {
				break
			}
			hasDot = true
		}
		l.readChar()
	}
	if l.ch == '.' {
		return Token{}, texerr.NewLexical(texerr.MalformedNumber, pos, "malformed number literal (second decimal point)", "")
	}
	if l.ch == 'e' || l.ch == 'E' {
		save, savePos, saveRead := l.ch, l.position, l.readPosition
		l.readChar()
		sign := false
		if l.ch == '+' || l.ch == '-' {
			sign = true
			l.readChar()
		}
		if isDigit(l.ch) {
			for isDigit(l.ch) {
				l.readChar()
			}
		} else {
			// Not actually an exponent; rewind.
			l.ch, l.position, l.readPosition = save, savePos, saveRead
			_ = sign
		}
	}
	lit := l.input[start:l.position]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Token{}, texerr.NewLexical(texerr.MalformedNumber, pos, "malformed number literal '"+lit+"'", "")
	}
	return Token{Kind: Number, Literal: lit, Pos: pos, Value: v}, nil
}

func isASCIILetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch rune) bool { return '0' <= ch && ch <= '9' }

// isGreekRune reports whether ch is a Unicode Greek-alphabet code point,
// so a literal "π" or "θ" typed directly (not via "\pi"/"\theta") lexes
// the same way the command form would.
func isGreekRune(ch rune) bool {
	return unicode.Is(unicode.Greek, ch)
}
