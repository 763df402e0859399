package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/spf13/cobra"

	"github.com/gitrdm/sparqlflow/internal/logging"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/engine"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/source"
)

// QueryOptions holds the query subcommand's flags.
type QueryOptions struct {
	*RootOptions
	Sources []string
	Format  string
	Timeout time.Duration
	Lenient bool
	Auth    string
}

// NewQueryCommand builds the `sparqlflow query` subcommand: it evaluates a
// serialized algebra tree against the sources named by --source and writes
// the result to stdout in the requested format.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <algebra-file|->",
		Short: "Evaluate a serialized SPARQL algebra tree",
		Long: `Evaluate a serialized SPARQL algebra tree against one or more
quad-pattern sources and write the result to stdout.

The argument names a file holding the JSON-encoded algebra tree described
in the engine's JSONParser, or "-" to read it from stdin.

Each --source registers one quad-pattern source: a value of the form
"id=/path/to/file.nq" registers a local N-Quads document under that id; a
value of the form "id=https://example.org/data" registers a hypermedia
source polled over HTTP. A pattern that names no source is resolved by
whichever registered source answers first; the other sources' quads are
not merged in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.Sources, "source", nil, "register a quad-pattern source as id=path-or-url (repeatable)")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "output format: sparql-json|csv|tree|table")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "query evaluation deadline")
	cmd.Flags().BoolVar(&opts.Lenient, "lenient", false, "treat a source error encountered mid-stream as end-of-results instead of failing the query")
	cmd.Flags().StringVar(&opts.Auth, "auth", "", "basic auth credentials (user:pass) sent to every hypermedia source registered by --source")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, queryArg string) error {
	if err := validateMediaFormat(opts.Format); err != nil {
		return NewExitError(ExitArgumentError, err.Error())
	}
	if len(opts.Sources) == 0 {
		return NewExitError(ExitArgumentError, "at least one --source is required")
	}

	logger := logging.New(opts.LogLevel, opts.LogFormat)

	queryText, err := readQueryArg(queryArg)
	if err != nil {
		return WrapExitError(ExitArgumentError, "read query argument", err)
	}

	resolver, prefetch, err := buildResolver(opts)
	if err != nil {
		return WrapExitError(ExitSourceError, "configure sources", err)
	}
	if prefetch != nil {
		defer prefetch.StopWait()
	}

	remote := &source.SPARQLEndpointClient{Fetcher: source.NewHTTPFetcher()}
	eng := engine.New(resolver, remote, engine.JSONParser{}, logger)

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	result, err := eng.Query(ctx, queryText)
	if err != nil {
		return classifyQueryError(err)
	}

	bc := bus.New(ctx)
	if err := eng.Serialize(bc, result, mediaType(opts.Format), os.Stdout); err != nil {
		if opts.Lenient && bus.Is(err, bus.ErrSource) {
			logger.WithQuery(bc).WithError(err).Warn("source error mid-stream, truncating results")
			return nil
		}
		return classifyQueryError(err)
	}
	return nil
}

// classifyQueryError maps an engine-level error to the exit code spec.md
// §6 assigns it: an unreachable source gets ExitSourceError, everything
// else (parse failure, operator semantic violation, cardinality mismatch)
// is ExitQueryError.
func classifyQueryError(err error) error {
	if bus.Is(err, bus.ErrSource) {
		return WrapExitError(ExitSourceError, "source unreachable", err)
	}
	return WrapExitError(ExitQueryError, "query evaluation failed", err)
}

func readQueryArg(arg string) (string, error) {
	if arg == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(arg)
	return string(b), err
}

// buildResolver registers one source actor per --source flag and returns
// the wired resolver plus the shared hypermedia prefetch pool (nil if no
// hypermedia source was registered).
func buildResolver(opts *QueryOptions) (*source.Resolver, *workerpool.WorkerPool, error) {
	resolver := source.NewResolver()

	authHeader := ""
	if opts.Auth != "" {
		authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(opts.Auth))
	}

	var prefetch *workerpool.WorkerPool
	cache := source.NewCache(256)

	for _, spec := range opts.Sources {
		id, target, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --source %q: expected id=path-or-url", spec)
		}

		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			if prefetch == nil {
				prefetch = workerpool.New(4)
			}
			resolver.Register(&source.HypermediaSource{
				Descriptor: source.Descriptor{ID: id, Type: source.TypeHypermedia, URL: target, AuthHeader: authHeader},
				Fetcher:    source.NewHTTPFetcher(),
				Deref:      source.NQuadsDereferencer{},
				Cache:      cache,
				Prefetch:   prefetch,
			})
			continue
		}

		quads, err := loadLocalQuads(target)
		if err != nil {
			return nil, nil, fmt.Errorf("load source %q: %w", id, err)
		}
		resolver.Register(&source.RDFJSSource{ID: id, Quads: quads})
	}

	return resolver, prefetch, nil
}

func loadLocalQuads(path string) ([]rdf.Quad, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	doc, err := (source.NQuadsDereferencer{}).Dereference(context.Background(), &source.FetchResponse{
		StatusCode:  http.StatusOK,
		ContentType: "application/n-quads",
		Body:        f,
	})
	if err != nil {
		return nil, err
	}
	return doc.Quads, nil
}
