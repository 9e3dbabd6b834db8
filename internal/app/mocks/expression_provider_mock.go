package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/texpr-go/texpr/internal/app"
)

// MockExpressionProvider is a mock type for the ExpressionProvider type.
type MockExpressionProvider struct {
	mock.Mock
}

// GetRequest provides a mock function with given fields:
func (_m *MockExpressionProvider) GetRequest() (app.Request, error) {
	ret := _m.Called()

	var r0 app.Request
	if rf, ok := ret.Get(0).(func() app.Request); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(app.Request)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func() error); ok {
		r1 = rf()
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockExpressionProvider creates a new instance of MockExpressionProvider.
// It also registers a testing interface on the mock and a cleanup function
// to assert the mock's expectations.
func NewMockExpressionProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockExpressionProvider {
	mock := &MockExpressionProvider{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
