// Package tatoeba implements the example-sentence source against the
// tatoeba.org search API with a two-phase (strict → fallback) strategy.
package tatoeba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/heartmarshall/kotoba-backend/internal/provider"
)

const (
	defaultBaseURL = "https://tatoeba.org/en/api_v0"
	sourceSlug     = "tatoeba"

	// overfetchFactor pads the raw request so filtering still leaves enough
	// candidates to satisfy the caller's limit.
	overfetchFactor = 3
)

// Config holds the adapter settings, injected at construction.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Provider searches example sentences on tatoeba.org.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider. Empty config fields fall back to the
// public tatoeba.org endpoint with a 10 second timeout.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Provider{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "tatoeba"),
	}
}

// Slug is the provenance tag stored with persisted examples.
func (p *Provider) Slug() string { return sourceSlug }

// Search runs the two-phase sentence search.
//
// Phase 1 (strict) restricts the query to Japanese→English pairs sorted by
// relevance and keeps only candidates that carry an English translation.
// Phase 2 (fallback) repeats the query without the language-pair restriction;
// English text is attached when present but not required.
//
// A strict-phase transport failure degrades to the fallback phase; a
// fallback-phase failure is returned to the caller.
func (p *Provider) Search(ctx context.Context, term string, limit int) ([]provider.SentenceResult, error) {
	if limit <= 0 {
		return []provider.SentenceResult{}, nil
	}

	rawLimit := strconv.Itoa(limit * overfetchFactor)

	strictParams := url.Values{
		"query":        {term},
		"from":         {"jpn"},
		"to":           {"eng"},
		"orphans":      {"no"},
		"unapproved":   {"no"},
		"trans_filter": {"limit"},
		"trans_to":     {"eng"},
		"sort":         {"relevance"},
		"page":         {"1"},
		"limit":        {rawLimit},
	}

	strictRaw, err := p.fetch(ctx, strictParams)
	if err != nil {
		p.log.WarnContext(ctx, "tatoeba strict search failed, falling back",
			slog.String("term", term),
			slog.String("error", err.Error()),
		)
		strictRaw = nil
	}

	if parsed := parseResults(strictRaw, limit, true); len(parsed) > 0 {
		p.log.DebugContext(ctx, "tatoeba strict mode used", slog.String("term", term), slog.Int("count", len(parsed)))
		return parsed, nil
	}

	fallbackParams := url.Values{
		"query": {term},
		"sort":  {"relevance"},
		"page":  {"1"},
		"limit": {rawLimit},
	}

	fallbackRaw, err := p.fetch(ctx, fallbackParams)
	if err != nil {
		p.log.ErrorContext(ctx, "tatoeba fallback search failed",
			slog.String("term", term),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("tatoeba: search %q: %w", term, err)
	}

	parsed := parseResults(fallbackRaw, limit, false)
	p.log.DebugContext(ctx, "tatoeba fallback mode used", slog.String("term", term), slog.Int("count", len(parsed)))

	return parsed, nil
}

// fetch executes one search request and returns the raw result candidates.
func (p *Provider) fetch(ctx context.Context, params url.Values) ([]json.RawMessage, error) {
	reqURL := p.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	return payload.Results, nil
}

// parseResults converts raw candidates into sentence results, up to limit.
// Candidates without Japanese text are skipped; with requireEnglish set,
// candidates without an English translation are skipped too. Individually
// undecodable candidates are dropped, never an error.
func parseResults(raw []json.RawMessage, limit int, requireEnglish bool) []provider.SentenceResult {
	var out []provider.SentenceResult

	for _, item := range raw {
		var candidate apiResult
		if err := json.Unmarshal(item, &candidate); err != nil {
			continue
		}
		if candidate.Text == "" || candidate.ID == 0 {
			continue
		}

		var english *string
		if len(candidate.Translations.English) > 0 {
			text := candidate.Translations.English[0].Text
			english = &text
		}
		if requireEnglish && english == nil {
			continue
		}

		out = append(out, provider.SentenceResult{
			ID:       strconv.FormatInt(candidate.ID, 10),
			Japanese: candidate.Text,
			English:  english,
		})

		if len(out) >= limit {
			break
		}
	}

	return out
}
