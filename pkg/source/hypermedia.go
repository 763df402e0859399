package source

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/gammazero/workerpool"

	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// HypermediaSource is the quad-pattern-resolve actor implementing the
// six-step algorithm of spec.md §4.5: (1) expand the source's search
// template against the pattern, (2) fetch the resulting page, (3) parse it
// via the dereference cache, (4) locally filter for the pattern (defensive,
// in case the server over-returns), (5) inspect the page's next-page
// control, (6) repeat until pagination is exhausted, accumulating the
// known/estimated total along the way.
//
// Prefetching of the next page is fanned out onto a bounded worker pool so
// the network wait for page N+1 overlaps with the caller consuming page N.
type HypermediaSource struct {
	Descriptor Descriptor
	Fetcher    Fetcher
	Deref      Dereferencer
	Cache      *Cache
	Prefetch   *workerpool.WorkerPool
}

func (h *HypermediaSource) Name() string { return "hypermedia:" + h.Descriptor.ID }

func (h *HypermediaSource) Test(bctx *bus.Context, task any) bus.TestResult {
	t, ok := task.(ResolveTask)
	if !ok {
		return bus.Reject("not a source.ResolveTask")
	}
	if t.Source != "" && t.Source != h.Descriptor.ID {
		return bus.Reject("source id mismatch")
	}
	return bus.Accept(1_000_000) // hypermedia sources never know their size up front
}

func (h *HypermediaSource) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(ResolveTask)
	headers := map[string]string{}
	if h.Descriptor.AuthHeader != "" {
		headers["Authorization"] = h.Descriptor.AuthHeader
	}

	firstURL := h.expandSearchTemplate(t.Pattern)

	var total atomic.Int64
	total.Store(stream.UnknownTotal)
	out := stream.New(t.Ctx, nil, func() stream.Metadata { return stream.Metadata{TotalItems: total.Load()} },
		func(ctx context.Context, emit func(rdf.Quad) bool) error {
			url := firstURL
			for url != "" {
				doc, err := h.Cache.GetOrFetch(ctx, url, headers, h.Fetcher, h.Deref)
				if err != nil {
					return bus.NewError(bus.ErrSource, "dereference "+url, err)
				}
				if doc.Page.HasTotal {
					total.Store(doc.Page.TotalItems)
				}
				next := doc.Page.NextPage
				if next != "" && h.Prefetch != nil {
					nu := next
					h.Prefetch.Submit(func() {
						_, _ = h.Cache.GetOrFetch(context.Background(), nu, headers, h.Fetcher, h.Deref)
					})
				}
				for _, q := range doc.Quads {
					if t.Pattern.Matches(q) {
						if !emit(q) {
							return nil
						}
					}
				}
				url = next
			}
			return nil
		})
	return out, nil
}

// expandSearchTemplate expands the descriptor's Hydra-style IRI template by
// substituting "{subject}", "{predicate}", "{object}", "{graph}" with the
// pattern's bound positions, dropping unused placeholders, mirroring the
// TPF/QPF search-template-expansion step of the hypermedia protocol.
func (h *HypermediaSource) expandSearchTemplate(p rdf.Pattern) string {
	tmpl := h.Descriptor.SearchTemplate
	if tmpl == "" {
		return h.Descriptor.URL
	}
	repl := strings.NewReplacer(
		"{subject}", boundOrEmpty(p.Subject),
		"{predicate}", boundOrEmpty(p.Predicate),
		"{object}", boundOrEmpty(p.Object),
		"{graph}", boundOrEmpty(p.Graph),
	)
	return repl.Replace(tmpl)
}

func boundOrEmpty(t rdf.Term) string {
	if t.IsVariable() {
		return ""
	}
	return t.Value
}
