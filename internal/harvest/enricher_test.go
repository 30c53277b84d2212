package harvest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/olerom/formula/internal/domain"
	"github.com/olerom/formula/pkg/httpclient"
	"github.com/olerom/formula/pkg/queries"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient returns a single response and records the headers it saw.
type stubHTTPClient struct {
	resp    httpclient.Response
	err     error
	headers map[string]string
}

func (s *stubHTTPClient) Get(_ context.Context, _ string, headers map[string]string) (httpclient.Response, error) {
	s.headers = headers
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

const wikiPage = `
<html>
  <head>
    <title>Autodromo Nazionale di Monza</title>
    <meta property="og:description" content="Race track near Monza">
    <meta name="description" content="Plain description">
    <meta property="og:image" content="/static/monza.jpg">
  </head>
</html>`

func TestParseMetaPrefersOGTags(t *testing.T) {
	meta, err := parseMeta([]byte(wikiPage))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Description != "Race track near Monza" || meta.ImageURL != "/static/monza.jpg" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestParseMetaFallsBackToNameDescription(t *testing.T) {
	meta, err := parseMeta([]byte(`<html><head><meta name="description" content=" Plain "></head></html>`))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Description != "Plain" || meta.ImageURL != "" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestResolveURLHandlesRelative(t *testing.T) {
	got := resolveURL("/img.png", "https://en.wikipedia.org/wiki/Monza")
	if got != "https://en.wikipedia.org/img.png" {
		t.Fatalf("resolveURL got %q", got)
	}
	if got := resolveURL("https://cdn.example.com/a.png", "https://en.wikipedia.org"); got != "https://cdn.example.com/a.png" {
		t.Fatalf("absolute url changed: %q", got)
	}
	if got := resolveURL("", "https://example.com"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestEnricherFillsOnlyEmptyFields(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte(wikiPage), statusCode: 200}}
	enricher := NewEnricher(client, "formula-test", nil)

	records := []domain.Record{
		{Resource: "circuits", ID: "monza", URL: "https://en.wikipedia.org/wiki/Monza"},
		{Resource: "circuits", ID: "spa", URL: "https://en.wikipedia.org/wiki/Spa", Description: "keep"},
	}
	out := enricher.Enrich(context.Background(), queries.Query{ID: "q", RequestDelayMs: 1}, records)

	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].Description != "Race track near Monza" {
		t.Fatalf("description not filled: %q", out[0].Description)
	}
	if out[0].ImageURL != "https://en.wikipedia.org/static/monza.jpg" {
		t.Fatalf("image not resolved: %q", out[0].ImageURL)
	}
	if out[1].Description != "keep" {
		t.Fatalf("existing description overwritten: %q", out[1].Description)
	}
	if client.headers["User-Agent"] != "formula-test" {
		t.Fatalf("user agent not sent: %#v", client.headers)
	}
	if records[0].Description != "" {
		t.Fatalf("input slice was mutated")
	}
}

func TestEnricherKeepsRecordOnFailure(t *testing.T) {
	cases := map[string]*stubHTTPClient{
		"transport": {err: errors.New("dial failed")},
		"status":    {resp: stubHTTPResponse{body: []byte("gone"), statusCode: 404}},
	}
	for name, client := range cases {
		enricher := NewEnricher(client, "", nil)
		rec := domain.Record{Resource: "drivers", ID: "alonso", URL: "https://example.com", Title: "Fernando Alonso"}
		out := enricher.Enrich(context.Background(), queries.Query{ID: "q", RequestDelayMs: 1}, []domain.Record{rec})
		if len(out) != 1 || out[0].Title != rec.Title || out[0].Description != "" {
			t.Fatalf("%s: unexpected result %#v", name, out)
		}
	}
}

func TestEnricherLimitsBody(t *testing.T) {
	body := bytes.Repeat([]byte("a"), maxHTMLBodyBytes+10)
	enricher := NewEnricher(&stubHTTPClient{resp: stubHTTPResponse{body: body, statusCode: 200}}, "", nil)

	out := enricher.Enrich(context.Background(), queries.Query{ID: "q", RequestDelayMs: 1}, []domain.Record{{ID: "a1", URL: "https://example.com"}})
	if len(out) != 1 || out[0].Description != "" {
		t.Fatalf("expected unchanged record because body had no metadata, got %#v", out)
	}
}

func TestEnricherStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enricher := NewEnricher(&stubHTTPClient{resp: stubHTTPResponse{statusCode: 200}}, "", nil)
	out := enricher.Enrich(ctx, queries.Query{ID: "q"}, []domain.Record{{ID: "a", URL: "https://example.com"}})
	if len(out) != 0 {
		t.Fatalf("expected no records on cancelled context, got %d", len(out))
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", " ", "foo", "bar"); got != "foo" {
		t.Fatalf("firstNonEmpty returned %q", got)
	}
}
