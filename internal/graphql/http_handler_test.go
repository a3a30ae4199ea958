package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rpattn/contentql/internal/domain"
)

func TestHandlerPost(t *testing.T) {
	fetcher := &fakeFetcher{
		payloads: map[string]domain.RawPayload{"blogPost": blogPayload()},
		errs:     map[string]error{"broken": errors.New("boom")},
	}
	handler := NewHTTPHandler(NewResolver(fetcher))

	body := `{"query":"query Posts($n: Int) { blogPost(limit: $n) { title } broken { title } }","variables":{"n":1}}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data   map[string]json.RawMessage `json:"data"`
		Errors []struct {
			Message string   `json:"message"`
			Path    []string `json:"path"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if _, ok := resp.Data["blogPost"]; !ok {
		t.Fatalf("expected blogPost in data, got %s", rec.Body.String())
	}
	if len(resp.Errors) != 1 || len(resp.Errors[0].Path) != 1 || resp.Errors[0].Path[0] != "broken" {
		t.Fatalf("expected error for broken root, got %+v", resp.Errors)
	}
	reqs := fetcher.requestsFor("blogPost")
	if len(reqs) != 1 {
		t.Fatalf("expected one blogPost fetch, got %d", len(reqs))
	}
	if limit, ok := reqs[0].Params.Int("limit"); !ok || limit != 1 {
		t.Fatalf("expected variable to reach the fetch, got %+v", reqs[0].Params)
	}
}

func TestHandlerGet(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string]domain.RawPayload{"blogPost": blogPayload()}}
	handler := NewHTTPHandler(NewResolver(fetcher))

	q := url.Values{}
	q.Set("query", `{ blogPost { title } }`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/query?"+q.Encode(), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"title":"Hello"`) {
		t.Fatalf("expected projected title in body, got %s", rec.Body.String())
	}
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	handler := NewHTTPHandler(NewResolver(&fakeFetcher{}))

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{name: "invalid json", method: http.MethodPost, body: `{`, status: http.StatusBadRequest},
		{name: "missing query", method: http.MethodPost, body: `{}`, status: http.StatusBadRequest},
		{name: "syntax error", method: http.MethodPost, body: `{"query":"{ blogPost {"}`, status: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodDelete, status: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/query", strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"errors"`) {
				t.Fatalf("expected errors payload, got %s", rec.Body.String())
			}
		})
	}
}

type fakeLister struct {
	collection    string
	limit, offset int
}

func (f *fakeLister) List(ctx context.Context, collection string, limit int, offset int) ([]domain.ResolutionLogEntry, error) {
	f.collection, f.limit, f.offset = collection, limit, offset
	return []domain.ResolutionLogEntry{{RootKey: "blogPost", Collection: collection}}, nil
}

func TestLogsHandler(t *testing.T) {
	lister := &fakeLister{}
	rec := httptest.NewRecorder()
	NewLogsHandler(lister).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?collection=blogPost&limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if lister.collection != "blogPost" || lister.limit != 5 || lister.offset != 0 {
		t.Fatalf("unexpected list arguments: %+v", lister)
	}
}
