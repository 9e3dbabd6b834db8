package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/texpr-go/texpr"
	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/evaluator"
)

// Service wraps a *texpr.Texpr the way the teacher's service wrapped a
// parser+generator pair: a thin holder other packages depend on instead of
// importing the façade directly everywhere.
type Service struct {
	engine *texpr.Texpr
}

// NewService constructs a Service around engine.
func NewService(engine *texpr.Texpr) *Service {
	return &Service{engine: engine}
}

// Evaluate parses and evaluates source against vars, rendering the result
// to a display string.
func (s *Service) Evaluate(source string, vars map[string]float64) (string, error) {
	res, err := s.engine.Evaluate(source, vars)
	if err != nil {
		return "", err
	}
	return renderResult(res), nil
}

// Differentiate renders the derivative of source with respect to variable,
// order times, back to canonical LaTeX.
func (s *Service) Differentiate(source, variable string, order uint32) (string, error) {
	d, err := s.engine.Differentiate(source, variable, order)
	if err != nil {
		return "", err
	}
	return ast.String(d), nil
}

// Integrate renders the indefinite integral of source with respect to
// variable back to canonical LaTeX.
func (s *Service) Integrate(source, variable string) (string, error) {
	antideriv, err := s.engine.Integrate(source, variable)
	if err != nil {
		return "", err
	}
	return ast.String(antideriv), nil
}

// Validate never fails; a parse problem is rendered into the result
// string rather than returned as an error.
func (s *Service) Validate(source string) string {
	result := s.engine.Validate(source)
	if result.Valid {
		return fmt.Sprintf("valid: %s", ast.String(result.AST))
	}
	msgs := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("invalid: %s", strings.Join(msgs, "; "))
}

// renderResult formats an evaluator.Result for display, covering every
// variant the evaluator can produce (spec.md §3.3).
func renderResult(r evaluator.Result) string {
	switch v := r.(type) {
	case evaluator.Numeric:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case evaluator.Complex:
		sign := "+"
		im := v.Im
		if im < 0 {
			sign = "-"
			im = -im
		}
		return fmt.Sprintf("%s%si%s", formatNum(v.Re), sign, formatNum(im))
	case evaluator.Vector:
		parts := make([]string, len(v.Components))
		for i, c := range v.Components {
			parts[i] = formatNum(c)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case evaluator.Matrix:
		rows := make([]string, len(v.Rows))
		for i, row := range v.Rows {
			parts := make([]string, len(row))
			for j, c := range row {
				parts[j] = formatNum(c)
			}
			rows[i] = "[" + strings.Join(parts, ", ") + "]"
		}
		return "[" + strings.Join(rows, ", ") + "]"
	case evaluator.Interval:
		return fmt.Sprintf("[%s, %s]", formatNum(v.Lower), formatNum(v.Upper))
	case evaluator.Boolean:
		if v {
			return "true"
		}
		return "false"
	case evaluator.FunctionDef:
		return fmt.Sprintf("%s(%s) = %s", v.Name, strings.Join(v.Parameters, ", "), ast.String(v.Body))
	default:
		return fmt.Sprintf("%v", r)
	}
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
