package app_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/texpr-go/texpr/internal/app"
	app_mocks "github.com/texpr-go/texpr/internal/app/mocks"
)

// mockEvaluatorService is a hand-written testify mock for the unexported
// evaluatorService interface app.ApplicationService depends on.
type mockEvaluatorService struct {
	mock.Mock
}

func (m *mockEvaluatorService) Evaluate(source string, vars map[string]float64) (string, error) {
	ret := m.Called(source, vars)
	return ret.String(0), ret.Error(1)
}

func (m *mockEvaluatorService) Validate(source string) string {
	return m.Called(source).String(0)
}

func (m *mockEvaluatorService) Differentiate(source, variable string, order uint32) (string, error) {
	ret := m.Called(source, variable, order)
	return ret.String(0), ret.Error(1)
}

func (m *mockEvaluatorService) Integrate(source, variable string) (string, error) {
	ret := m.Called(source, variable)
	return ret.String(0), ret.Error(1)
}

func TestApplicationService_Run_EvaluateSuccess(t *testing.T) {
	provider := app_mocks.NewMockExpressionProvider(t)
	writer := app_mocks.NewMockResultWriter(t)
	svc := new(mockEvaluatorService)

	req := app.Request{Operation: app.OpEvaluate, Source: "x+1", Vars: map[string]float64{"x": 1}}
	provider.On("GetRequest").Return(req, nil).Once()
	svc.On("Evaluate", "x+1", req.Vars).Return("2", nil).Once()
	writer.On("WriteResult", "2").Return(nil).Once()

	err := app.NewApplicationService(provider, writer, svc).Run()
	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestApplicationService_Run_GetRequestError(t *testing.T) {
	provider := app_mocks.NewMockExpressionProvider(t)
	writer := app_mocks.NewMockResultWriter(t)
	svc := new(mockEvaluatorService)

	expectedErr := errors.New("no input")
	provider.On("GetRequest").Return(app.Request{}, expectedErr).Once()

	err := app.NewApplicationService(provider, writer, svc).Run()
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to get request")
	assert.ErrorIs(t, err, expectedErr)
}

func TestApplicationService_Run_ValidateNeverErrors(t *testing.T) {
	provider := app_mocks.NewMockExpressionProvider(t)
	writer := app_mocks.NewMockResultWriter(t)
	svc := new(mockEvaluatorService)

	req := app.Request{Operation: app.OpValidate, Source: "2 +"}
	provider.On("GetRequest").Return(req, nil).Once()
	svc.On("Validate", "2 +").Return("invalid: syntax error").Once()
	writer.On("WriteResult", "invalid: syntax error").Return(nil).Once()

	err := app.NewApplicationService(provider, writer, svc).Run()
	require.NoError(t, err)
}

func TestApplicationService_Run_Differentiate(t *testing.T) {
	provider := app_mocks.NewMockExpressionProvider(t)
	writer := app_mocks.NewMockResultWriter(t)
	svc := new(mockEvaluatorService)

	req := app.Request{Operation: app.OpDifferentiate, Source: "x^2", Variable: "x", Order: 1}
	provider.On("GetRequest").Return(req, nil).Once()
	svc.On("Differentiate", "x^2", "x", uint32(1)).Return("2x", nil).Once()
	writer.On("WriteResult", "2x").Return(nil).Once()

	err := app.NewApplicationService(provider, writer, svc).Run()
	require.NoError(t, err)
}

func TestApplicationService_Run_IntegrateError(t *testing.T) {
	provider := app_mocks.NewMockExpressionProvider(t)
	writer := app_mocks.NewMockResultWriter(t)
	svc := new(mockEvaluatorService)

	req := app.Request{Operation: app.OpIntegrate, Source: "\\tan{x}", Variable: "x"}
	provider.On("GetRequest").Return(req, nil).Once()
	expectedErr := errors.New("symbolic only")
	svc.On("Integrate", "\\tan{x}", "x").Return("", expectedErr).Once()

	err := app.NewApplicationService(provider, writer, svc).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
}

func TestApplicationService_Run_WriteError(t *testing.T) {
	provider := app_mocks.NewMockExpressionProvider(t)
	writer := app_mocks.NewMockResultWriter(t)
	svc := new(mockEvaluatorService)

	req := app.Request{Operation: app.OpEvaluate, Source: "1"}
	provider.On("GetRequest").Return(req, nil).Once()
	svc.On("Evaluate", "1", req.Vars).Return("1", nil).Once()
	expectedErr := errors.New("disk full")
	writer.On("WriteResult", "1").Return(expectedErr).Once()

	err := app.NewApplicationService(provider, writer, svc).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
}
