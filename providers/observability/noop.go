package observability

import "context"

// Noop returns a Provider that discards everything. It is the default
// observer wherever one was not injected, so instrumented code never needs a
// nil check per call site.
func Noop() Provider {
	return noopProvider{}
}

type noopProvider struct{}

func (noopProvider) StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (noopProvider) Counter(name string) Counter                 { return noopCounter{} }
func (noopProvider) Histogram(name string) Histogram             { return noopHistogram{} }
func (noopProvider) Debug(context.Context, string, ...Attribute) {}
func (noopProvider) Info(context.Context, string, ...Attribute)  {}
func (noopProvider) Warn(context.Context, string, ...Attribute)  {}
func (noopProvider) Error(context.Context, string, ...Attribute) {}

type noopSpan struct{}

func (noopSpan) End()                          {}
func (noopSpan) SetAttributes(...Attribute)    {}
func (noopSpan) SetStatus(StatusCode, string)  {}
func (noopSpan) RecordError(error)             {}
func (noopSpan) AddEvent(string, ...Attribute) {}

type noopCounter struct{}

func (noopCounter) Add(context.Context, int64, ...Attribute) {}

type noopHistogram struct{}

func (noopHistogram) Record(context.Context, float64, ...Attribute) {}
