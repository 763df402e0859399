// Package engine wires the query-operation bus, the parser collaborator,
// and the serializer bus into the single entry point a caller drives: parse,
// mediate the root node, enforce the query's deadline, and serialize the
// result (spec.md §4.6).
package engine

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/operators"
	"github.com/gitrdm/sparqlflow/pkg/pathengine"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/serialize"
	"github.com/gitrdm/sparqlflow/pkg/source"
	"github.com/gitrdm/sparqlflow/pkg/stream"

	"github.com/gitrdm/sparqlflow/internal/logging"
)

// ErrUnknownQuery is returned by AlgebraParser.Parse when the given query
// key has no registered algebra tree.
var ErrUnknownQuery = errors.New("engine: unknown query")

// Engine is the fully wired query pipeline: a resolver-backed
// operators.Mediator plus a serialize.Mediator, driven by a Parser.
type Engine struct {
	Ops    *operators.Mediator
	Ser    *serialize.Mediator
	Parser Parser
	Logger *logging.Logger
}

// New constructs an Engine. remote may be nil if SERVICE is never queried.
func New(resolver pathengine.QuadResolver, remote *source.SPARQLEndpointClient, parser Parser, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewFromEnv()
	}
	return &Engine{
		Ops:    operators.NewMediator(resolver, remote),
		Ser:    serialize.NewMediator(),
		Parser: parser,
		Logger: logger,
	}
}

// Result is the outcome of Query prior to serialization: exactly one of
// Bindings, Quads, or Ask is populated, mirroring the algebra node's result
// shape.
type Result struct {
	Variables []string
	Bindings  *stream.Stream[bindings.Bindings]
	Quads     *stream.Stream[rdf.Quad]
	Ask       *bool
}

// Query parses query via e.Parser, mediates the resulting algebra tree on
// the query-operation bus, and enforces ctx's deadline (if any) by
// destroying the root stream once it elapses. It returns the uninterpreted
// Result; call Serialize to render it.
func (e *Engine) Query(ctx context.Context, query string) (Result, error) {
	node, err := e.Parser.Parse(query)
	if err != nil {
		return Result{}, err
	}
	return e.QueryNode(ctx, node)
}

// queryIDKey is the stdlib context key under which QueryNode stashes the
// correlation id minted for each query, readable via QueryID.
type queryIDKey struct{}

// QueryID extracts the correlation id minted by QueryNode from ctx, if any.
func QueryID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(queryIDKey{}).(string)
	return v, ok
}

// QueryNode mediates an already-built algebra tree directly, bypassing
// Parser. Production embedders that construct algebra.Node values themselves
// (rather than serialized query text) should call this instead of Query.
//
// A deadline on ctx is enforced the same way cancellation always cascades
// through the stream chain: every stream derived while evaluating node
// shares ctx's cancellation scope, so once the deadline elapses the
// producers observe ctx.Done() and stop as if the caller had called
// Destroy() on the root stream directly.
func (e *Engine) QueryNode(ctx context.Context, node algebra.Node) (Result, error) {
	ctx = context.WithValue(ctx, queryIDKey{}, uuid.New().String())

	v, err := e.Ops.Dispatch(ctx, node)
	if err != nil {
		return Result{}, err
	}

	result := Result{}
	switch val := v.(type) {
	case *stream.Stream[bindings.Bindings]:
		result.Bindings = val
		result.Variables = val.Variables()
	case *stream.Stream[rdf.Quad]:
		result.Quads = val
	case bool:
		result.Ask = &val
	default:
		return Result{}, bus.NewError(bus.ErrInvariant, "mediator returned an unrecognized result type", nil)
	}
	return result, nil
}

// Serialize renders result to w using the requested media type.
func (e *Engine) Serialize(bc *bus.Context, result Result, mediaType string, w io.Writer) error {
	return e.Ser.Serialize(bc, serialize.Result{
		Variables: result.Variables,
		Bindings:  result.Bindings,
		Quads:     result.Quads,
		Ask:       result.Ask,
	}, mediaType, w)
}
