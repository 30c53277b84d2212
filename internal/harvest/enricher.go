package harvest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/olerom/formula/internal/domain"
	"github.com/olerom/formula/internal/logger"
	"github.com/olerom/formula/pkg/ergast"
	"github.com/olerom/formula/pkg/httpclient"
	"github.com/olerom/formula/pkg/queries"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
)

// Enricher fetches record pages and fills gaps from their meta tags.
type Enricher struct {
	client    httpclient.Client
	userAgent string
	log       logger.Logger
}

// NewEnricher constructs an enricher with the provided HTTP client (or default).
func NewEnricher(client httpclient.Client, userAgent string, log logger.Logger) *Enricher {
	if client == nil {
		client = httpclient.NewRestyClient(httpclient.DefaultTimeout)
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = ergast.DefaultUserAgent
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Enricher{client: client, userAgent: userAgent, log: log}
}

// Enrich visits each record URL with q's request delay between fetches.
// Records that fail keep their original values.
func (e *Enricher) Enrich(ctx context.Context, q queries.Query, records []domain.Record) []domain.Record {
	delay := q.RequestDelay()
	// seed output with originals so we can return what we have on abort
	out := append([]domain.Record(nil), records...)

	for i, rec := range records {
		select {
		case <-ctx.Done():
			return out[:i]
		default:
		}

		if rec.URL == "" {
			continue
		}

		enriched, err := e.fetchAndParse(ctx, rec)
		if err != nil {
			e.log.WarnObj("record metadata scrape failed", "metadata_error", map[string]any{
				"query_id": q.ID,
				"url":      rec.URL,
				"error":    err.Error(),
			})
		} else {
			out[i] = enriched
		}

		if delay > 0 && i < len(records)-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out[:i+1]
			case <-timer.C:
			}
		}
	}

	return out
}

func (e *Enricher) fetchAndParse(ctx context.Context, rec domain.Record) (domain.Record, error) {
	resp, err := e.client.Get(ctx, rec.URL, map[string]string{"User-Agent": e.userAgent})
	if err != nil {
		return rec, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return rec, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return rec, err
	}
	updated := rec
	if updated.Description == "" {
		updated.Description = meta.Description
	}
	if updated.ImageURL == "" {
		updated.ImageURL = resolveURL(meta.ImageURL, rec.URL)
	}

	return updated, nil
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: extract(`meta[property="og:image"]`),
	}, nil
}

type pageMeta struct {
	Description string
	ImageURL    string
}

// resolveURL makes ref absolute against base. Unparseable input is returned as is.
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if refURL.IsAbs() {
		return refURL.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
