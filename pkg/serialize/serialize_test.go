package serialize_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/serialize"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

func sampleBindingsResult() serialize.Result {
	ctx := context.Background()
	rows := []bindings.Bindings{
		bindings.Empty().Bind("s", rdf.IRI("http://example.org/alice")).Bind("o", rdf.PlainLiteral("Alice")),
		bindings.Empty().Bind("s", rdf.IRI("http://example.org/bob")),
	}
	s := stream.FromSlice(ctx, []string{"s", "o"}, rows)
	return serialize.Result{Variables: []string{"s", "o"}, Bindings: s}
}

func TestSparqlResultsJSONRendersBindings(t *testing.T) {
	md := serialize.NewMediator()
	var buf bytes.Buffer
	err := md.Serialize(bus.New(context.Background()), sampleBindingsResult(), "application/sparql-results+json", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("expected valid JSON output: %v", err)
	}
	head := doc["head"].(map[string]any)
	vars := head["vars"].([]any)
	if len(vars) != 2 {
		t.Fatalf("expected 2 head vars, got %d", len(vars))
	}
	results := doc["results"].(map[string]any)
	rows := results["bindings"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 result rows, got %d", len(rows))
	}
}

func TestSparqlResultsJSONRendersAskBoolean(t *testing.T) {
	md := serialize.NewMediator()
	var buf bytes.Buffer
	v := true
	err := md.Serialize(bus.New(context.Background()), serialize.Result{Ask: &v}, "application/sparql-results+json", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("expected valid JSON output: %v", err)
	}
	if doc["boolean"] != true {
		t.Fatalf("expected boolean:true, got %v", doc["boolean"])
	}
}

func TestCSVRendersHeaderAndRows(t *testing.T) {
	md := serialize.NewMediator()
	var buf bytes.Buffer
	err := md.Serialize(bus.New(context.Background()), sampleBindingsResult(), "text/csv", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("expected valid CSV output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 data rows, got %d", len(records))
	}
	if records[0][0] != "s" || records[0][1] != "o" {
		t.Fatalf("expected header row [s o], got %v", records[0])
	}
	if records[2][1] != "" {
		t.Fatalf("expected unbound o to render as an empty cell, got %q", records[2][1])
	}
}

func TestTreeRendersBindingsAsJSONArray(t *testing.T) {
	md := serialize.NewMediator()
	var buf bytes.Buffer
	err := md.Serialize(bus.New(context.Background()), sampleBindingsResult(), "application/json", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var docs []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &docs); err != nil {
		t.Fatalf("expected valid JSON array: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(docs))
	}
}

func TestTreeRendersQuadsAsJSONArray(t *testing.T) {
	ctx := context.Background()
	quads := stream.FromSlice(ctx, nil, []rdf.Quad{
		{Subject: rdf.IRI("http://example.org/a"), Predicate: rdf.IRI("http://example.org/b"), Object: rdf.IRI("http://example.org/c"), Graph: rdf.DefaultGraph},
	})
	md := serialize.NewMediator()
	var buf bytes.Buffer
	err := md.Serialize(bus.New(ctx), serialize.Result{Quads: quads}, "application/json", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var docs []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &docs); err != nil {
		t.Fatalf("expected valid JSON array: %v", err)
	}
	if len(docs) != 1 || docs[0]["subject"] != "<http://example.org/a>" {
		t.Fatalf("expected one quad doc with subject a, got %v", docs)
	}
}

func TestTableRendersAlignedColumns(t *testing.T) {
	md := serialize.NewMediator()
	var buf bytes.Buffer
	err := md.Serialize(bus.New(context.Background()), sampleBindingsResult(), "table", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "s") || !strings.Contains(lines[0], "o") {
		t.Fatalf("expected header row to contain both variable names, got %q", lines[0])
	}
}

func TestSerializeUnsupportedMediaTypeFails(t *testing.T) {
	md := serialize.NewMediator()
	var buf bytes.Buffer
	err := md.Serialize(bus.New(context.Background()), sampleBindingsResult(), "application/xml", &buf)
	if err == nil {
		t.Fatal("expected an unsupported media type to fail dispatch")
	}
}
