// Package registry holds the built-in constant and function tables the
// evaluator consults, plus the ExtensionRegistry collaborator (spec.md §6)
// that lets a caller register additional commands and evaluators without
// touching the core dispatch tables.
package registry

import "math"

// Constants is the built-in name -> value table, consulted after the
// caller's variable environment and before the literal "i" special case
// (internal/domain/evaluator's lookup order, spec.md §4.3).
var Constants = map[string]float64{
	"pi":     math.Pi,
	"e":      math.E,
	"tau":    2 * math.Pi,
	"phi":    1.618033988749894848204586834,
	"gamma":  0.577215664901532860606512090, // Euler-Mascheroni
	"Omega":  0.567143290409783872999968662, // omega constant, W(1)
	"delta":  4.669201609102990671853203821, // Feigenbaum delta
	"zeta3":  1.202056903159594285399738162, // Apery's constant, zeta(3)
	"G":      0.915965594177219015054603514, // Catalan's constant
	"hbar":   1.054571817e-34,
	"infty":  math.Inf(1),
	"sqrt2":  math.Sqrt2,
	"sqrt3":  1.732050807568877293527446342,
	"ln2":    math.Ln2,
	"ln10":   math.Log(10),
}

// Names returns every built-in constant name, used by the "did you mean"
// suggestion search on UndefinedVariable errors.
func Names() []string {
	out := make([]string, 0, len(Constants))
	for n := range Constants {
		out = append(out, n)
	}
	return out
}
