package app

import "fmt"

// evaluatorService is the narrow interface ApplicationService depends on.
// *Service satisfies it; tests substitute a fake instead of standing up a
// real texpr.Texpr.
type evaluatorService interface {
	Evaluate(source string, vars map[string]float64) (string, error)
	Validate(source string) string
	Differentiate(source, variable string, order uint32) (string, error)
	Integrate(source, variable string) (string, error)
}

// ApplicationService orchestrates one request end-to-end: pull it from the
// input port, dispatch to the Service, push the rendered result to the
// output port.
type ApplicationService struct {
	provider ExpressionProvider
	writer   ResultWriter
	service  evaluatorService
}

// NewApplicationService creates a new application service instance.
func NewApplicationService(provider ExpressionProvider, writer ResultWriter, service evaluatorService) *ApplicationService {
	return &ApplicationService{provider: provider, writer: writer, service: service}
}

// Run executes one request: fetch it, dispatch by Operation, write the
// rendered result.
func (a *ApplicationService) Run() error {
	req, err := a.provider.GetRequest()
	if err != nil {
		return fmt.Errorf("failed to get request: %w", err)
	}

	var result string
	switch req.Operation {
	case OpEvaluate:
		result, err = a.service.Evaluate(req.Source, req.Vars)
	case OpValidate:
		result = a.service.Validate(req.Source)
	case OpDifferentiate:
		result, err = a.service.Differentiate(req.Source, req.Variable, req.Order)
	case OpIntegrate:
		result, err = a.service.Integrate(req.Source, req.Variable)
	default:
		err = fmt.Errorf("unknown operation %v", req.Operation)
	}
	if err != nil {
		return fmt.Errorf("operation failed: %w", err)
	}

	if err := a.writer.WriteResult(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
