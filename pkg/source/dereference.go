package source

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
)

// PageMetadata carries the hypermedia controls extracted from a
// dereferenced document: the next page to follow (if any) and the known or
// estimated total triple count for the whole paged collection.
type PageMetadata struct {
	NextPage     string
	TotalItems   int64 // stream.UnknownTotal (-1) if absent
	HasTotal     bool
}

// Dereferenced is the parsed result of fetching and parsing one hypermedia
// page: its quads plus its paging metadata.
type Dereferenced struct {
	Quads []rdf.Quad
	Page  PageMetadata
}

// Dereferencer is the consumed dereference contract: turn a fetched
// response into quads plus hypermedia paging controls. sparqlflow ships a
// minimal built-in N-Quads-subset parser as the default implementation,
// standing in for the out-of-scope general RDF parsing collaborator named
// in spec.md §6.
type Dereferencer interface {
	Dereference(ctx context.Context, resp *FetchResponse) (*Dereferenced, error)
}

// NQuadsDereferencer parses a restricted N-Quads/N-Triples subset: one
// quad per line, whitespace-separated <iri>/_:bnode/"literal" terms,
// terminated by '.'. A trailing comment line of the form
// "# next-page: <url>" or "# total-items: N" carries the hypermedia
// controls that a real Hydra/VoID document would encode in-band; this
// keeps the default parser self-contained without pulling in a full RDF/JS
// or JSON-LD library, which is explicitly out of scope.
type NQuadsDereferencer struct{}

func (NQuadsDereferencer) Dereference(ctx context.Context, resp *FetchResponse) (*Dereferenced, error) {
	defer resp.Body.Close()
	out := &Dereferenced{Page: PageMetadata{TotalItems: -1}}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# next-page:") {
			out.Page.NextPage = strings.TrimSpace(strings.TrimPrefix(line, "# next-page:"))
			continue
		}
		if strings.HasPrefix(line, "# total-items:") {
			n := parseInt(strings.TrimSpace(strings.TrimPrefix(line, "# total-items:")))
			if n >= 0 {
				out.Page.TotalItems = n
				out.Page.HasTotal = true
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		q, err := parseQuadLine(line)
		if err != nil {
			return nil, bus.NewError(bus.ErrSource, "parse dereferenced document", err)
		}
		out.Quads = append(out.Quads, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read dereferenced document")
	}
	return out, nil
}

func parseInt(s string) int64 {
	var n int64
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return -1
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int64(r-'0')
	}
	if neg {
		n = -n
	}
	return n
}

func parseQuadLine(line string) (rdf.Quad, error) {
	line = strings.TrimSuffix(strings.TrimSpace(line), ".")
	toks, err := tokenizeTerms(line)
	if err != nil {
		return rdf.Quad{}, err
	}
	if len(toks) < 3 || len(toks) > 4 {
		return rdf.Quad{}, errors.Errorf("expected 3 or 4 terms, got %d: %q", len(toks), line)
	}
	q := rdf.Quad{
		Subject:   toks[0],
		Predicate: toks[1],
		Object:    toks[2],
		Graph:     rdf.DefaultGraph,
	}
	if len(toks) == 4 {
		q.Graph = toks[3]
	}
	return q, nil
}

func tokenizeTerms(line string) ([]rdf.Term, error) {
	var terms []rdf.Term
	i := 0
	n := len(line)
	for i < n {
		for i < n && line[i] == ' ' {
			i++
		}
		if i >= n {
			break
		}
		switch line[i] {
		case '<':
			j := strings.IndexByte(line[i+1:], '>')
			if j < 0 {
				return nil, errors.Errorf("unterminated IRI in %q", line)
			}
			terms = append(terms, rdf.IRI(line[i+1:i+1+j]))
			i = i + 1 + j + 1
		case '_':
			j := i + 2
			for j < n && line[j] != ' ' {
				j++
			}
			terms = append(terms, rdf.BlankNode(line[i+2:j]))
			i = j
		case '"':
			j := i + 1
			for j < n && line[j] != '"' {
				j++
			}
			if j >= n {
				return nil, errors.Errorf("unterminated literal in %q", line)
			}
			lexical := line[i+1 : j]
			rest := j + 1
			if rest < n && line[rest] == '@' {
				k := rest + 1
				for k < n && line[k] != ' ' {
					k++
				}
				terms = append(terms, rdf.LangLiteral(lexical, line[rest+1:k]))
				i = k
			} else if rest+1 < n && line[rest] == '^' && line[rest+1] == '^' {
				k := rest + 3
				end := strings.IndexByte(line[k:], '>')
				terms = append(terms, rdf.TypedLiteral(lexical, line[k+1:k+end]))
				i = k + end + 1
			} else {
				terms = append(terms, rdf.PlainLiteral(lexical))
				i = rest
			}
		default:
			return nil, errors.Errorf("unrecognized term syntax in %q at offset %d", line, i)
		}
	}
	return terms, nil
}

// ReadAll drains r into a single string, used by non-default Dereferencer
// implementations that need the whole body (e.g. a JSON-LD parser would).
func ReadAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	return string(b), err
}
