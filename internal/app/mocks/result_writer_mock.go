package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockResultWriter is a mock type for the ResultWriter type.
type MockResultWriter struct {
	mock.Mock
}

// WriteResult provides a mock function with given fields: result
func (_m *MockResultWriter) WriteResult(result string) error {
	ret := _m.Called(result)

	var r0 error
	if rf, ok := ret.Get(0).(func(string) error); ok {
		r0 = rf(result)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockResultWriter creates a new instance of MockResultWriter. It also
// registers a testing interface on the mock and a cleanup function to
// assert the mock's expectations.
func NewMockResultWriter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockResultWriter {
	mock := &MockResultWriter{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
