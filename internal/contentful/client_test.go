package contentful

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpattn/contentql/internal/auth"
	"github.com/rpattn/contentql/internal/domain"
)

const collectionResponse = `{
  "total": 2, "skip": 0, "limit": 1,
  "items": [
    {"sys": {"id": "p1", "contentType": {"sys": {"id": "blogPost"}}},
     "fields": {"title": "Hello", "author": {"sys": {"type": "Link", "linkType": "Entry", "id": "a1"}}}}
  ],
  "includes": {
    "Entry": [{"sys": {"id": "a1", "contentType": {"sys": {"id": "person"}}}, "fields": {"name": "Ada"}}],
    "Asset": [{"sys": {"id": "img"}, "fields": {"title": "Logo", "file": {"url": "//images/logo.png",
      "details": {"image": {"width": 2000, "height": 1000}}}}}]
  }
}`

func TestFetch(t *testing.T) {
	var gotPath, gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.URL.Query().Get("content_type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(collectionResponse))
	}))
	defer srv.Close()

	client, err := New(Config{SpaceID: "space1", AccessToken: "secret", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}

	payload, err := client.Fetch(context.Background(), domain.FetchRequest{
		Collection:     "blogPost",
		SelectedFields: []string{"title", "author"},
	})
	if err != nil {
		t.Fatalf("Fetch: unexpected error: %v", err)
	}

	if gotPath != "/spaces/space1/environments/master/entries" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if gotType != "blogPost" {
		t.Fatalf("unexpected content_type %q", gotType)
	}

	if payload.Total != 2 || len(payload.Items) != 1 {
		t.Fatalf("unexpected payload totals: %+v", payload)
	}
	link, ok := payload.Items[0].Fields["author"].(domain.Link)
	if !ok || link.ID != "a1" || link.IsAsset() {
		t.Fatalf("expected entry link to a1, got %#v", payload.Items[0].Fields["author"])
	}
	if len(payload.LinkedEntries) != 1 || len(payload.LinkedAssets) != 1 {
		t.Fatalf("expected includes to decode, got %+v", payload)
	}
	if payload.LinkedAssets[0].File.Width != 2000 {
		t.Fatalf("expected asset width 2000, got %d", payload.LinkedAssets[0].File.Width)
	}
}

func TestFetchUsesTokenFromContext(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(collectionResponse))
	}))
	defer srv.Close()

	client, err := New(Config{SpaceID: "space1", AccessToken: "configured", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	ctx := auth.ContextWithAccessToken(context.Background(), "caller")
	if _, err := client.Fetch(ctx, domain.FetchRequest{Collection: "blogPost"}); err != nil {
		t.Fatalf("Fetch: unexpected error: %v", err)
	}
	if gotAuth != "Bearer caller" {
		t.Fatalf("expected caller token, got %q", gotAuth)
	}
}

func TestFetchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Contentful-Request-Id", "req-42")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"sys":{"type":"Error","id":"InvalidQuery"},"message":"The query you sent was invalid."}`))
	}))
	defer srv.Close()

	client, err := New(Config{SpaceID: "space1", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}

	_, err = client.Fetch(context.Background(), domain.FetchRequest{Collection: "blogPost"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.ID != "InvalidQuery" || apiErr.RequestID != "req-42" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestFetchHonoursCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(collectionResponse))
	}))
	defer srv.Close()

	client, err := New(Config{SpaceID: "space1", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Fetch(ctx, domain.FetchRequest{Collection: "blogPost"}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestNewDefaults(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrMissingSpace) {
		t.Fatalf("expected ErrMissingSpace, got %v", err)
	}

	client, err := New(Config{SpaceID: "s", Preview: true})
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	want := PreviewBaseURL + "/spaces/s/environments/master/entries?"
	got := client.RequestURL(domain.FetchRequest{Collection: "page"})
	if len(got) < len(want) || got[:len(want)] != want {
		t.Fatalf("expected preview url prefix %q, got %q", want, got)
	}
}
