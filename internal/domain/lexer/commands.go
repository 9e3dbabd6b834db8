package lexer

// command describes how a recognised "\name" LaTeX command lexes.
type command struct {
	kind Kind
	// discard is true for sizing/spacing commands that produce no token
	// at all (e.g. "\left", "\,").
	discard bool
}

// functionNames is every command that lexes as a Function token, keyed
// by its textual name. The lexeme stored on the token is the name itself;
// the evaluator's function registry (internal/domain/registry) decides
// what it means.
var functionNames = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"sinh": true, "cosh": true, "tanh": true, "coth": true,
	"arcsin": true, "arccos": true, "arctan": true,
	"ln": true, "log": true, "exp": true,
	"min": true, "max": true, "gcd": true, "lcm": true,
	"floor": true, "ceil": true, "round": true, "sign": true, "abs": true,
	"fibonacci": true, "fact": true,
	"vec": true, "hat": true, "dot": true, "ddot": true, "bar": true,
	"det": true, "tr": true,
}

// greekLetters maps a command name to the Variable name it lexes to.
// \pi is deliberately absent here: it lexes as a Constant, not a Variable
// (spec.md §4.1: "Greek letters emit Variable; \pi etc. emit Constant").
var greekLetters = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"varepsilon": true, "zeta": true, "eta": true, "theta": true, "vartheta": true,
	"iota": true, "kappa": true, "lambda": true, "mu": true, "nu": true, "xi": true,
	"omicron": true, "rho": true, "sigma": true, "varsigma": true, "tau": true,
	"upsilon": true, "phi": true, "varphi": true, "chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true, "Pi": true,
	"Sigma": true, "Upsilon": true, "Phi": true, "Psi": true, "Omega": true,
}

// fontCommands wrap a single braced argument and decorate the resulting
// variable name with a family prefix (e.g. \mathbf{E} -> "mathbf:E").
var fontCommands = map[string]bool{
	"mathbf": true, "mathrm": true, "mathit": true, "mathcal": true,
	"mathbb": true, "boldsymbol": true,
}

// structuralCommands is every non-function, non-Greek, non-font command
// the lexer recognises, mapped to its dedicated token kind or marked
// discard for commands that contribute no token.
var structuralCommands = map[string]command{
	"frac": {kind: Frac}, "sqrt": {kind: Sqrt}, "binom": {kind: Binom},
	"partial": {kind: Partial}, "nabla": {kind: Nabla}, "infty": {kind: Infty},
	"text": {kind: Text},
	"begin": {kind: Begin}, "end": {kind: End},
	"to": {kind: To}, "rightarrow": {kind: To}, "longrightarrow": {kind: To},
	"lim": {kind: Lim}, "sum": {kind: Sum}, "prod": {kind: Prod},
	"int": {kind: Int}, "iint": {kind: IInt}, "iiint": {kind: IIIt}, "oint": {kind: OInt},

	"cdot": {kind: Multiply}, "times": {kind: Multiply}, "div": {kind: Divide},
	"leq": {kind: CmpLessEq}, "le": {kind: CmpLessEq},
	"geq": {kind: CmpGreaterEq}, "ge": {kind: CmpGreaterEq},
	"neq": {kind: CmpNotEqual}, "ne": {kind: CmpNotEqual},
	"in": {kind: CmpMember},

	"left": {discard: true}, "right": {discard: true},
	"big": {discard: true}, "Big": {discard: true}, "bigg": {discard: true}, "Bigg": {discard: true},
	"quad": {discard: true}, "qquad": {discard: true},
}

// spacingPunct is the set of single-punctuation spacing commands ("\,",
// "\;", "\:", "\!") that the lexer discards. These never reach the
// structuralCommands lookup because readCommand only consumes letters;
// NextToken special-cases them directly (see lexer.go).
var spacingPunct = map[byte]bool{',': true, ';': true, ':': true, '!': true}

// allCommandNames returns every command name known to the lexer, used to
// compute Levenshtein "did you mean" suggestions for unknown commands.
func allCommandNames() []string {
	names := make([]string, 0, len(functionNames)+len(greekLetters)+len(fontCommands)+len(structuralCommands)+1)
	for n := range functionNames {
		names = append(names, n)
	}
	for n := range greekLetters {
		names = append(names, n)
	}
	for n := range fontCommands {
		names = append(names, n)
	}
	for n := range structuralCommands {
		names = append(names, n)
	}
	names = append(names, "pi")
	return names
}

// levenshtein computes classic edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}
	return prev[m]
}

// suggestCommand returns the closest known command name to name if its
// edit distance is at most 2, else "".
func suggestCommand(name string) string {
	best := ""
	bestDist := 3 // anything > 2 is "no suggestion"
	for _, candidate := range allCommandNames() {
		d := levenshtein(name, candidate)
		if d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	if bestDist > 2 {
		return ""
	}
	return best
}
