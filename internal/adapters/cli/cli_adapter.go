package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/texpr-go/texpr/internal/app"
)

var operationNames = map[string]app.Operation{
	"evaluate":      app.OpEvaluate,
	"validate":      app.OpValidate,
	"differentiate": app.OpDifferentiate,
	"integrate":     app.OpIntegrate,
}

// Adapter implements app.ExpressionProvider using Cobra flags.
type Adapter struct {
	cmd *cobra.Command
}

// NewAdapter creates a new CLI adapter instance.
func NewAdapter(cmd *cobra.Command) *Adapter {
	for _, name := range []string{"expr", "operation", "vars", "variable", "order"} {
		if cmd.Flag(name) == nil {
			panic(fmt.Sprintf("CLI Adapter requires command with %q flag defined", name))
		}
	}
	return &Adapter{cmd: cmd}
}

// GetRequest retrieves an app.Request from Cobra flags.
func (a *Adapter) GetRequest() (app.Request, error) {
	expr, err := a.cmd.Flags().GetString("expr")
	if err != nil {
		return app.Request{}, fmt.Errorf("failed to get 'expr' flag: %w", err)
	}
	if expr == "" {
		return app.Request{}, fmt.Errorf("expression cannot be empty")
	}

	opName, _ := a.cmd.Flags().GetString("operation")
	op, ok := operationNames[opName]
	if !ok {
		return app.Request{}, fmt.Errorf("unknown operation %q", opName)
	}

	varsStr, _ := a.cmd.Flags().GetStringToString("vars")
	vars := make(map[string]float64, len(varsStr))
	for name, raw := range varsStr {
		var v float64
		if _, err := fmt.Sscanf(raw, "%g", &v); err != nil {
			return app.Request{}, fmt.Errorf("invalid value %q for variable %q: %w", raw, name, err)
		}
		vars[name] = v
	}

	variable, _ := a.cmd.Flags().GetString("variable")
	order, _ := a.cmd.Flags().GetUint32("order")

	return app.Request{
		Operation: op,
		Source:    expr,
		Vars:      vars,
		Variable:  variable,
		Order:     order,
	}, nil
}
