package bus

// TestResult is the outcome of an actor's Test call: a metric the mediator
// policy can compare actors by, plus an optional human-readable rejection
// reason used for diagnostics when every actor declines a task.
type TestResult struct {
	// Accepted is false when the actor cannot handle the task at all.
	Accepted bool
	// Metric ranks competing actors under a minimum/maximum policy; lower
	// is preferred unless the mediator's policy says otherwise.
	Metric float64
	// Rejection explains why Accepted is false.
	Rejection string
}

// Accept returns an accepted TestResult with the given metric.
func Accept(metric float64) TestResult {
	return TestResult{Accepted: true, Metric: metric}
}

// Reject returns a declined TestResult carrying a reason.
func Reject(reason string) TestResult {
	return TestResult{Accepted: false, Rejection: reason}
}

// Actor is a single capability registered on a Bus. Test is called by a
// Mediator's policy to decide which actor(s) should Run a given task; Run
// performs the work and returns the task's result.
//
// Task and Result are opaque to the bus; each concrete bus (query-operation,
// join, quad-pattern-resolve, serialize, ...) defines its own pair of
// concrete types and wraps Actor in a small adapter, since Go generics on
// an interface method set would force one type parameter per bus anyway.
type Actor interface {
	// Name identifies the actor for logging and diagnostics.
	Name() string
	// Test reports whether, and how well, this actor can handle task.
	Test(bctx *Context, task any) TestResult
	// Run performs the task. Only called after a successful Test.
	Run(bctx *Context, task any) (any, error)
}
