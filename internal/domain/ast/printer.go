package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders node as canonical LaTeX. It is the minimal printer
// spec.md §8's round-trip property needs (parse(s) == parse(String(parse(s))));
// richer output formats (MathML, SymPy, JSON) are left to external
// collaborators that can build on the Visitor contract above.
func String(node Expr) string {
	return Accept[string](node, printer{})
}

type printer struct{}

func (printer) VisitNumberLiteral(n *NumberLiteral) string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (printer) VisitVariable(n *Variable) string { return n.Name }

func (p printer) VisitBinaryOp(n *BinaryOp) string {
	return fmt.Sprintf("(%s %s %s)", String(n.Left), n.Op, String(n.Right))
}

func (p printer) VisitUnaryOp(n *UnaryOp) string {
	return fmt.Sprintf("(-%s)", String(n.Operand))
}

func (p printer) VisitAbsoluteValue(n *AbsoluteValue) string {
	return fmt.Sprintf("|%s|", String(n.Expr))
}

func (p printer) VisitFunctionCall(n *FunctionCall) string {
	var sb strings.Builder
	sb.WriteString(`\`)
	sb.WriteString(n.Name)
	if n.OptionalParam != nil {
		sb.WriteString("[")
		sb.WriteString(String(n.OptionalParam))
		sb.WriteString("]")
	}
	if n.Base != nil {
		sb.WriteString("_{")
		sb.WriteString(String(n.Base))
		sb.WriteString("}")
	}
	for _, a := range n.Args {
		sb.WriteString("{")
		sb.WriteString(String(a))
		sb.WriteString("}")
	}
	return sb.String()
}

func (p printer) VisitFactorialExpr(n *FactorialExpr) string {
	return fmt.Sprintf("%s!", String(n.Value))
}

func (p printer) VisitLimitExpr(n *LimitExpr) string {
	return fmt.Sprintf(`\lim_{%s \to %s} %s`, n.Variable, String(n.Target), String(n.Body))
}

func (p printer) VisitSumExpr(n *SumExpr) string {
	return fmt.Sprintf(`\sum_{%s=%s}^{%s} %s`, n.Variable, String(n.Start), String(n.End), String(n.Body))
}

func (p printer) VisitProductExpr(n *ProductExpr) string {
	return fmt.Sprintf(`\prod_{%s=%s}^{%s} %s`, n.Variable, String(n.Start), String(n.End), String(n.Body))
}

func (p printer) VisitIntegralExpr(n *IntegralExpr) string {
	name := `\int`
	if n.IsClosed {
		name = `\oint`
	}
	if n.Lower != nil && n.Upper != nil {
		return fmt.Sprintf(`%s_{%s}^{%s} %s \, d%s`, name, String(n.Lower), String(n.Upper), String(n.Body), n.Variable)
	}
	return fmt.Sprintf(`%s %s \, d%s`, name, String(n.Body), n.Variable)
}

func (p printer) VisitMultiIntegralExpr(n *MultiIntegralExpr) string {
	name := `\iint`
	if n.Order == 3 {
		name = `\iiint`
	}
	diffs := make([]string, len(n.Variables))
	for i, v := range n.Variables {
		diffs[i] = "d" + v
	}
	return fmt.Sprintf(`%s %s \, %s`, name, String(n.Body), strings.Join(diffs, `\, `))
}

func (p printer) VisitDerivativeExpr(n *DerivativeExpr) string {
	if n.Order == 1 {
		return fmt.Sprintf(`\frac{d}{d%s} %s`, n.Variable, String(n.Body))
	}
	return fmt.Sprintf(`\frac{d^%d}{d%s^%d} %s`, n.Order, n.Variable, n.Order, String(n.Body))
}

func (p printer) VisitPartialDerivativeExpr(n *PartialDerivativeExpr) string {
	if n.Order == 1 {
		return fmt.Sprintf(`\frac{\partial}{\partial %s} %s`, n.Variable, String(n.Body))
	}
	return fmt.Sprintf(`\frac{\partial^%d}{\partial %s^%d} %s`, n.Order, n.Variable, n.Order, String(n.Body))
}

func (p printer) VisitGradientExpr(n *GradientExpr) string {
	return fmt.Sprintf(`\nabla %s`, String(n.Body))
}

func (p printer) VisitBinomExpr(n *BinomExpr) string {
	return fmt.Sprintf(`\binom{%s}{%s}`, String(n.N), String(n.K))
}

func (p printer) VisitComparison(n *Comparison) string {
	return fmt.Sprintf("%s %s %s", String(n.Left), n.Op, String(n.Right))
}

func (p printer) VisitChainedComparison(n *ChainedComparison) string {
	var sb strings.Builder
	sb.WriteString(String(n.Exprs[0]))
	for i, op := range n.Ops {
		sb.WriteString(" ")
		sb.WriteString(op.String())
		sb.WriteString(" ")
		sb.WriteString(String(n.Exprs[i+1]))
	}
	return sb.String()
}

func (p printer) VisitConditionalExpr(n *ConditionalExpr) string {
	return fmt.Sprintf("{%s}{%s}", String(n.Expression), String(n.Condition))
}

func (p printer) VisitPiecewiseExpr(n *PiecewiseExpr) string {
	var sb strings.Builder
	sb.WriteString(`\begin{cases}`)
	for i, c := range n.Cases {
		if i > 0 {
			sb.WriteString(` \\ `)
		}
		sb.WriteString(String(c.Expression))
		if c.Condition != nil {
			sb.WriteString(" & ")
			sb.WriteString(String(c.Condition))
		} else {
			sb.WriteString(" & otherwise")
		}
	}
	sb.WriteString(`\end{cases}`)
	return sb.String()
}

func (p printer) VisitMatrixExpr(n *MatrixExpr) string {
	var sb strings.Builder
	sb.WriteString(`\begin{pmatrix}`)
	for i, row := range n.Rows {
		if i > 0 {
			sb.WriteString(` \\ `)
		}
		cols := make([]string, len(row))
		for j, e := range row {
			cols[j] = String(e)
		}
		sb.WriteString(strings.Join(cols, " & "))
	}
	sb.WriteString(`\end{pmatrix}`)
	return sb.String()
}

func (p printer) VisitVectorExpr(n *VectorExpr) string {
	name := "vec"
	if n.IsUnitVector {
		name = "hat"
	}
	parts := make([]string, len(n.Components))
	for i, c := range n.Components {
		parts[i] = String(c)
	}
	return fmt.Sprintf(`\%s{%s}`, name, strings.Join(parts, ","))
}

func (p printer) VisitAssignmentExpr(n *AssignmentExpr) string {
	return fmt.Sprintf("let %s = %s", n.Variable, String(n.Value))
}

func (p printer) VisitFunctionDefinitionExpr(n *FunctionDefinitionExpr) string {
	return fmt.Sprintf("%s(%s) = %s", n.Name, strings.Join(n.Parameters, ", "), String(n.Body))
}

func (p printer) VisitErrorSentinel(*ErrorSentinel) string {
	return "__ERROR__"
}
