package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/subtrack/internal/service"
)

// MockWriter is a service.ReportWriter that records what it is asked to write.
type MockWriter struct {
	WriteFunc  func(ctx context.Context, report *service.Report) error
	LastReport *service.Report
	Calls      int
	mu         sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements service.ReportWriter.
func (m *MockWriter) Write(ctx context.Context, report *service.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.LastReport = report

	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, report)
	}
	return nil
}

// CallCount returns how many times Write was called.
func (m *MockWriter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

var _ service.ReportWriter = (*MockWriter)(nil)
var _ service.ReportWriter = (*Writer)(nil)
