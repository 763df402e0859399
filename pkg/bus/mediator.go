package bus

import "sort"

// Policy selects, among the actors that accepted a task, which one(s) run
// and how their results are combined.
type Policy int

const (
	// PolicyMinimumTime runs every accepting actor concurrently and returns
	// the first result to complete.
	PolicyMinimumTime Policy = iota
	// PolicyMinimumIterations runs only the single actor with the lowest
	// Metric (interpreted as an estimated iteration/cost count).
	PolicyMinimumIterations
	// PolicyNumberBased runs only the single actor with the highest Metric
	// (interpreted as a cardinality/confidence count).
	PolicyNumberBased
	// PolicyRaceFirstNonFailing runs every accepting actor concurrently and
	// returns the first one to succeed, tolerating failures of the others.
	PolicyRaceFirstNonFailing
	// PolicyCombineUnion runs every accepting actor and combines all of
	// their results with a caller-supplied combine function.
	PolicyCombineUnion
)

// Mediator owns exactly one Bus and one Policy; it never owns actors
// directly. Combine is only consulted under PolicyCombineUnion.
type Mediator struct {
	bus     *Bus
	policy  Policy
	combine func(results []any) (any, error)
}

// NewMediator constructs a Mediator over bus using policy. combine may be
// nil unless policy is PolicyCombineUnion.
func NewMediator(b *Bus, policy Policy, combine func([]any) (any, error)) *Mediator {
	return &Mediator{bus: b, policy: policy, combine: combine}
}

// Bus returns the underlying bus.
func (m *Mediator) Bus() *Bus {
	return m.bus
}

// candidate pairs an actor with its accepted TestResult.
type candidate struct {
	actor  Actor
	result TestResult
}

// candidates runs Test against every registered actor and returns those
// that accepted, in registration order.
func (m *Mediator) candidates(bctx *Context, task any) ([]candidate, []string) {
	var cands []candidate
	var rejections []string
	for _, a := range m.bus.Actors() {
		r := a.Test(bctx, task)
		if r.Accepted {
			cands = append(cands, candidate{actor: a, result: r})
		} else if r.Rejection != "" {
			rejections = append(rejections, a.Name()+": "+r.Rejection)
		}
	}
	return cands, rejections
}

// Dispatch selects actor(s) per policy and runs them, returning the
// (possibly combined) result.
func (m *Mediator) Dispatch(bctx *Context, task any) (any, error) {
	cands, rejections := m.candidates(bctx, task)
	if len(cands) == 0 {
		return nil, NewError(ErrDispatchFailure, noActorMsg(rejections), nil)
	}

	switch m.policy {
	case PolicyMinimumIterations:
		best := pickExtreme(cands, true)
		return best.actor.Run(bctx, task)
	case PolicyNumberBased:
		best := pickExtreme(cands, false)
		return best.actor.Run(bctx, task)
	case PolicyMinimumTime:
		return raceAll(bctx, task, cands, false)
	case PolicyRaceFirstNonFailing:
		return raceAll(bctx, task, cands, true)
	case PolicyCombineUnion:
		return m.runCombine(bctx, task, cands)
	default:
		return nil, NewError(ErrInvariant, "unknown mediator policy", nil)
	}
}

func noActorMsg(rejections []string) string {
	if len(rejections) == 0 {
		return "no actor registered on bus"
	}
	msg := "no actor accepted task"
	for _, r := range rejections {
		msg += "; " + r
	}
	return msg
}

func pickExtreme(cands []candidate, minimum bool) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if minimum && c.result.Metric < best.result.Metric {
			best = c
		}
		if !minimum && c.result.Metric > best.result.Metric {
			best = c
		}
	}
	return best
}

type raceOutcome struct {
	value any
	err   error
}

func raceAll(bctx *Context, task any, cands []candidate, skipFailing bool) (any, error) {
	ch := make(chan raceOutcome, len(cands))
	for _, c := range cands {
		go func(c candidate) {
			v, err := c.actor.Run(bctx, task)
			ch <- raceOutcome{value: v, err: err}
		}(c)
	}

	var lastErr error
	for i := 0; i < len(cands); i++ {
		out := <-ch
		if out.err == nil {
			return out.value, nil
		}
		lastErr = out.err
		if !skipFailing {
			return nil, out.err
		}
	}
	if lastErr == nil {
		lastErr = NewError(ErrDispatchFailure, "all candidates failed with no error", nil)
	}
	return nil, lastErr
}

func (m *Mediator) runCombine(bctx *Context, task any, cands []candidate) (any, error) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].result.Metric < cands[j].result.Metric
	})
	results := make([]any, 0, len(cands))
	for _, c := range cands {
		v, err := c.actor.Run(bctx, task)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	if m.combine == nil {
		return nil, NewError(ErrInvariant, "PolicyCombineUnion requires a combine function", nil)
	}
	return m.combine(results)
}
