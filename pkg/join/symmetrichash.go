package join

import (
	"context"
	"sync"

	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// SymmetricHash is the binary join actor that concurrently builds a hash
// table per side, keyed on the shared variables, and probes the opposite
// side's table as rows arrive. It requires at least one shared variable
// (an unconditional cross join degenerates to nested-loop). Its estimated
// cost is the minimum of the two side totals, reflecting that each side is
// only ever scanned once.
type SymmetricHash struct{}

func (SymmetricHash) Name() string { return "symmetric-hash" }

func (SymmetricHash) Test(bctx *bus.Context, task any) bus.TestResult {
	t, ok := task.(Task)
	if !ok {
		return bus.Reject("not a join.Task")
	}
	shared := sharedVariables(t.Left.Variables(), t.Right.Variables())
	if len(shared) == 0 {
		return bus.Reject("no shared variables to hash on")
	}
	l, r := estimatedTotal(t.Left), estimatedTotal(t.Right)
	cost := l
	if r < l {
		cost = r
	}
	return bus.Accept(float64(cost))
}

// hashTable maps a shared-key signature to the matching rows seen so far on
// one side. Unlike a plain map, inserts and probes against the opposite
// table are only ever done together under the shared joinState mutex, so a
// pair can never be matched from both sides at once.
type hashTable struct {
	rows map[string][]bindings.Bindings
}

func newHashTable() *hashTable {
	return &hashTable{rows: make(map[string][]bindings.Bindings)}
}

// joinState holds both side's hash tables behind one mutex. insertAndProbe
// inserts b into self and reads other's existing rows for key as a single
// atomic step, so a (L,R) pair sharing a key is matched by exactly one of
// the two probe goroutines, never both.
type joinState struct {
	mu sync.Mutex
}

func (s *joinState) insertAndProbe(self, other *hashTable, key string, b bindings.Bindings) []bindings.Bindings {
	s.mu.Lock()
	defer s.mu.Unlock()
	self.rows[key] = append(self.rows[key], b)
	return append([]bindings.Bindings(nil), other.rows[key]...)
}

func keyFor(b bindings.Bindings, shared []string) (string, bool) {
	s := bindings.Empty()
	for _, v := range shared {
		t, ok := b.Get(v)
		if !ok {
			return "", false
		}
		s = s.Bind(v, t)
	}
	return s.Signature(), true
}

func (SymmetricHash) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	shared := sharedVariables(t.Left.Variables(), t.Right.Variables())
	outVars := unionVariables(t.Left.Variables(), t.Right.Variables())

	leftTable := newHashTable()
	rightTable := newHashTable()
	state := &joinState{}

	out := stream.New(t.Ctx, outVars, func() stream.Metadata {
		return stream.Metadata{TotalItems: productTotal(t.Left, t.Right)}
	}, func(ctx context.Context, emit func(bindings.Bindings) bool) error {
		results := make(chan bindings.Bindings)
		errs := make(chan error, 2)
		done := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(2)

		probe := func(self *stream.Stream[bindings.Bindings], selfTable, otherTable *hashTable, leftSide bool) {
			defer wg.Done()
			for {
				b, ok, err := self.Next()
				if err != nil {
					errs <- err
					return
				}
				if !ok {
					return
				}
				key, complete := keyFor(b, shared)
				if !complete {
					continue
				}
				for _, match := range state.insertAndProbe(selfTable, otherTable, key, b) {
					var merged bindings.Bindings
					if leftSide {
						merged = b.Merge(match)
					} else {
						merged = match.Merge(b)
					}
					select {
					case results <- merged:
					case <-done:
						return
					case <-ctx.Done():
						return
					}
				}
			}
		}

		go probe(t.Left, leftTable, rightTable, true)
		go probe(t.Right, rightTable, leftTable, false)
		go func() {
			wg.Wait()
			close(results)
		}()

		for {
			select {
			case r, ok := <-results:
				if !ok {
					select {
					case err := <-errs:
						close(done)
						return err
					default:
						close(done)
						return nil
					}
				}
				if !emit(r) {
					close(done)
					return nil
				}
			case <-ctx.Done():
				close(done)
				return nil
			}
		}
	})
	return out, nil
}
