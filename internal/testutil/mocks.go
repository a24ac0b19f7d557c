// Package testutil provides mock implementations for the interfaces defined
// in the deodexer core library (pkg/deodex). These mocks isolate components
// in unit tests. Configure expectations using testify/mock methods
// (e.g. .On("Invoke", ...).Return(...)).
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/odexlab/deodexer/pkg/deodex"
)

// MockInvoker provides a mock implementation of the deodex.Invoker
// interface. The engine calls Invoke concurrently from worker goroutines;
// testify/mock is safe for that, but any extra state a test attaches to the
// mock must handle its own synchronization.
type MockInvoker struct {
	mock.Mock
}

// Invoke mocks the Invoke method.
func (m *MockInvoker) Invoke(ctx context.Context, task deodex.ConversionTask, advice deodex.OptimizationAdvice) deodex.ConversionResult {
	args := m.Called(ctx, task, advice)
	result, _ := args.Get(0).(deodex.ConversionResult)
	return result
}

// MockEnvChecker provides a mock implementation of the deodex.EnvChecker
// interface.
type MockEnvChecker struct {
	mock.Mock
}

// Check mocks the Check method.
func (m *MockEnvChecker) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAdvisor provides a mock implementation of the deodex.Advisor
// interface.
type MockAdvisor struct {
	mock.Mock
}

// Advise mocks the Advise method.
func (m *MockAdvisor) Advise(meta deodex.FileMetadata, load deodex.SystemLoad) deodex.OptimizationAdvice {
	args := m.Called(meta, load)
	advice, _ := args.Get(0).(deodex.OptimizationAdvice)
	return advice
}

// MockHooks provides a mock implementation of the deodex.Hooks interface.
// Completion events arrive from the engine's single aggregator goroutine,
// discovery events from the coordinating goroutine.
type MockHooks struct {
	mock.Mock
}

// OnFileDiscovered mocks the OnFileDiscovered method.
func (m *MockHooks) OnFileDiscovered(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// OnFileCompleted mocks the OnFileCompleted method.
func (m *MockHooks) OnFileCompleted(p deodex.Progress) error {
	args := m.Called(p)
	return args.Error(0)
}

// OnBatchComplete mocks the OnBatchComplete method.
func (m *MockHooks) OnBatchComplete(report deodex.BatchReport) error {
	args := m.Called(report)
	return args.Error(0)
}
