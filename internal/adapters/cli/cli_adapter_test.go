package cli_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texpr-go/texpr/internal/adapters/cli"
	"github.com/texpr-go/texpr/internal/app"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("expr", "", "expression source")
	cmd.Flags().String("operation", "evaluate", "operation to perform")
	cmd.Flags().StringToString("vars", nil, "variable bindings")
	cmd.Flags().String("variable", "", "variable name")
	cmd.Flags().Uint32("order", 1, "derivative order")
	return cmd
}

func TestCliAdapter_GetRequest_Evaluate(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("expr", "x+1"))
	require.NoError(t, cmd.Flags().Set("operation", "evaluate"))
	require.NoError(t, cmd.Flags().Set("vars", "x=2"))

	adapter := cli.NewAdapter(cmd)
	req, err := adapter.GetRequest()

	require.NoError(t, err)
	assert.Equal(t, app.OpEvaluate, req.Operation)
	assert.Equal(t, "x+1", req.Source)
	assert.Equal(t, 2.0, req.Vars["x"])
}

func TestCliAdapter_GetRequest_Differentiate(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("expr", "x^3"))
	require.NoError(t, cmd.Flags().Set("operation", "differentiate"))
	require.NoError(t, cmd.Flags().Set("variable", "x"))
	require.NoError(t, cmd.Flags().Set("order", "2"))

	adapter := cli.NewAdapter(cmd)
	req, err := adapter.GetRequest()

	require.NoError(t, err)
	assert.Equal(t, app.OpDifferentiate, req.Operation)
	assert.Equal(t, "x", req.Variable)
	assert.Equal(t, uint32(2), req.Order)
}

func TestCliAdapter_GetRequest_MissingExpr(t *testing.T) {
	cmd := newTestCommand()
	adapter := cli.NewAdapter(cmd)

	_, err := adapter.GetRequest()
	require.Error(t, err)
	assert.ErrorContains(t, err, "expression cannot be empty")
}

func TestCliAdapter_GetRequest_UnknownOperation(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("expr", "1"))
	require.NoError(t, cmd.Flags().Set("operation", "frobnicate"))

	adapter := cli.NewAdapter(cmd)
	_, err := adapter.GetRequest()
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown operation")
}

func TestCliAdapter_GetRequest_InvalidVarValue(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("expr", "x"))
	require.NoError(t, cmd.Flags().Set("vars", "x=notanumber"))

	adapter := cli.NewAdapter(cmd)
	_, err := adapter.GetRequest()
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid value")
}

func TestCliAdapter_NewAdapter_PanicMissingFlags(t *testing.T) {
	cmd := &cobra.Command{}
	assert.Panics(t, func() { cli.NewAdapter(cmd) })
}
