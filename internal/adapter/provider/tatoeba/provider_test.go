package tatoeba

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProvider(baseURL string) *Provider {
	return NewProvider(Config{BaseURL: baseURL}, newTestLogger())
}

// recordingServer captures the query params of each request and serves the
// given bodies in order.
type recordingServer struct {
	mu       sync.Mutex
	requests []url.Values
	bodies   []string
	statuses []int
	srv      *httptest.Server
}

func newRecordingServer(t *testing.T, bodies []string, statuses []int) *recordingServer {
	t.Helper()
	rs := &recordingServer{bodies: bodies, statuses: statuses}
	rs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		i := len(rs.requests)
		rs.requests = append(rs.requests, r.URL.Query())
		rs.mu.Unlock()

		if i >= len(rs.bodies) {
			t.Errorf("unexpected extra request #%d", i+1)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(rs.statuses[i])
		w.Write([]byte(rs.bodies[i]))
	}))
	t.Cleanup(rs.srv.Close)
	return rs
}

func (rs *recordingServer) count() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.requests)
}

func (rs *recordingServer) request(i int) url.Values {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.requests[i]
}

const strictBody = `{"results": [
	{"id": 100, "text": "パンを食べる。", "translations": {"eng": [{"id": 1, "text": "I eat bread."}]}}
]}`

func TestProvider_Search_StrictModeSatisfies(t *testing.T) {
	t.Parallel()

	rs := newRecordingServer(t, []string{strictBody}, []int{http.StatusOK})

	p := newTestProvider(rs.srv.URL)
	results, err := p.Search(context.Background(), "食べる", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rs.count() != 1 {
		t.Fatalf("requests = %d, want 1 (no fallback when strict yields results)", rs.count())
	}

	q := rs.request(0)
	want := map[string]string{
		"query":        "食べる",
		"from":         "jpn",
		"to":           "eng",
		"orphans":      "no",
		"unapproved":   "no",
		"trans_filter": "limit",
		"trans_to":     "eng",
		"sort":         "relevance",
		"limit":        "15",
	}
	for key, val := range want {
		if got := q.Get(key); got != val {
			t.Errorf("strict param %s = %q, want %q", key, got, val)
		}
	}

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].ID != "100" {
		t.Errorf("ID = %q, want 100", results[0].ID)
	}
	if results[0].English == nil || *results[0].English != "I eat bread." {
		t.Errorf("English = %v", results[0].English)
	}
}

func TestProvider_Search_FallsBackWhenStrictEmpty(t *testing.T) {
	t.Parallel()

	fallbackBody := `{"results": [
		{"id": 200, "text": "翻訳のない文。"}
	]}`
	rs := newRecordingServer(t,
		[]string{`{"results": []}`, fallbackBody},
		[]int{http.StatusOK, http.StatusOK},
	)

	p := newTestProvider(rs.srv.URL)
	results, err := p.Search(context.Background(), "文", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rs.count() != 2 {
		t.Fatalf("requests = %d, want 2 (strict then fallback)", rs.count())
	}

	q := rs.request(1)
	if q.Get("from") != "" || q.Get("to") != "" {
		t.Errorf("fallback must not restrict the language pair, got from=%q to=%q", q.Get("from"), q.Get("to"))
	}

	if len(results) != 1 || results[0].ID != "200" {
		t.Fatalf("results = %v, want single id 200", results)
	}
	if results[0].English != nil {
		t.Errorf("English = %v, want nil (fallback does not require translations)", results[0].English)
	}
}

func TestProvider_Search_FallsBackWhenStrictLacksEnglish(t *testing.T) {
	t.Parallel()

	// The strict phase dropped the only candidate (no English translation),
	// so the fallback phase runs and keeps it.
	noEnglish := `{"results": [{"id": 300, "text": "翻訳なし。", "translations": {}}]}`
	rs := newRecordingServer(t,
		[]string{noEnglish, noEnglish},
		[]int{http.StatusOK, http.StatusOK},
	)

	p := newTestProvider(rs.srv.URL)
	results, err := p.Search(context.Background(), "翻訳", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rs.count() != 2 {
		t.Fatalf("requests = %d, want 2", rs.count())
	}
	if len(results) != 1 || results[0].ID != "300" {
		t.Fatalf("results = %v, want single id 300", results)
	}
}

func TestProvider_Search_StrictFailureDegradesToFallback(t *testing.T) {
	t.Parallel()

	rs := newRecordingServer(t,
		[]string{`boom`, strictBody},
		[]int{http.StatusInternalServerError, http.StatusOK},
	)

	p := newTestProvider(rs.srv.URL)
	results, err := p.Search(context.Background(), "食べる", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.count() != 2 {
		t.Fatalf("requests = %d, want 2", rs.count())
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
}

func TestProvider_Search_FallbackFailureIsReturned(t *testing.T) {
	t.Parallel()

	rs := newRecordingServer(t,
		[]string{`{"results": []}`, `boom`},
		[]int{http.StatusOK, http.StatusServiceUnavailable},
	)

	p := newTestProvider(rs.srv.URL)
	if _, err := p.Search(context.Background(), "文", 5); err == nil {
		t.Fatal("expected error when the fallback phase fails")
	}
}

func TestProvider_Search_ZeroLimit(t *testing.T) {
	t.Parallel()

	rs := newRecordingServer(t, nil, nil)

	p := newTestProvider(rs.srv.URL)
	results, err := p.Search(context.Background(), "文", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
	if rs.count() != 0 {
		t.Errorf("requests = %d, want 0", rs.count())
	}
}
