// Package jisho implements the word-definition source against the jisho.org
// words API.
package jisho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/heartmarshall/kotoba-backend/internal/provider"
)

const defaultBaseURL = "https://jisho.org/api/v1"

// Config holds the adapter settings. The base URL and timeout are injected
// explicitly at construction; the adapter never reads the environment.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Provider fetches word definitions from the jisho.org API.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider. Empty config fields fall back to the
// public jisho.org endpoint with a 10 second timeout.
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
		log:        logger.With("adapter", "jisho"),
	}
}

// Lookup fetches dictionary entries for the given free-text query.
// Network failures, non-2xx statuses and undecodable payloads are returned
// as errors; retry policy beyond a single transport retry belongs to the caller.
func (p *Provider) Lookup(ctx context.Context, query string) ([]provider.DefinitionResult, error) {
	reqURL := p.baseURL + "/search/words?keyword=" + url.QueryEscape(query)

	p.log.DebugContext(ctx, "jisho request", slog.String("query", query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("jisho: create request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, req, query)
	if err != nil {
		p.log.ErrorContext(ctx, "jisho request failed", slog.String("query", query), slog.String("error", err.Error()))
		return nil, fmt.Errorf("jisho: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jisho: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jisho: read body: %w", err)
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("jisho: decode json: %w", err)
	}

	results := mapAPIResponse(payload)

	p.log.DebugContext(ctx, "jisho response",
		slog.String("query", query),
		slog.Int("entries", len(results)),
	)

	return results, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request, query string) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "jisho retry", slog.String("query", query), slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(500 * time.Millisecond)

	resp, err = p.httpClient.Do(req)
	return resp, err
}

// mapAPIResponse converts the API payload into provider results. The first
// Japanese-form variant supplies the headword/reading; entries with no
// Japanese forms at all are skipped.
func mapAPIResponse(payload apiResponse) []provider.DefinitionResult {
	results := make([]provider.DefinitionResult, 0, len(payload.Data))

	for _, entry := range payload.Data {
		if len(entry.Japanese) == 0 {
			continue
		}

		var result provider.DefinitionResult

		first := entry.Japanese[0]
		if first.Word != "" {
			w := first.Word
			result.Kanji = &w
		}
		if first.Reading != "" {
			r := first.Reading
			result.Kana = &r
		}
		if result.Kanji == nil && result.Kana == nil {
			continue
		}

		for _, sense := range entry.Senses {
			result.Senses = append(result.Senses, provider.DefinitionSense{
				EnglishDefinitions: sense.EnglishDefinitions,
				PartsOfSpeech:      sense.PartsOfSpeech,
			})
		}

		result.JLPTTags = entry.JLPT

		results = append(results, result)
	}

	return results
}
