package projection

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rpattn/contentql/internal/domain"
	"github.com/rpattn/contentql/internal/imaging"
)

func prop(key string) *domain.Prop { return &domain.Prop{Key: key} }

func join(key string, params domain.Params, children ...domain.QueryNode) *domain.Join {
	return &domain.Join{Key: key, Params: params, Children: children}
}

func blogEntry() domain.Entry {
	return domain.Entry{
		ID:       "post-1",
		TypeName: "blog",
		Fields: map[string]domain.Value{
			"title": domain.Scalar("Hello"),
			"body":  domain.Scalar("World"),
			"author": domain.Entries([]domain.Entry{
				{ID: "au-1", TypeName: "author", Fields: map[string]domain.Value{"name": domain.Scalar("Ada")}},
			}),
			"hero": domain.Image(domain.ImageDescriptor{
				URL: "//img/hero.jpg", Width: 2000, Height: 1000, Title: "Hero",
			}),
			"location": domain.Scalar(map[string]any{"lat": 52.5, "lon": 13.4}),
		},
	}
}

func TestProjectReturnsOnlyRequestedKeys(t *testing.T) {
	got, err := ProjectEntry(blogEntry(), []domain.QueryNode{prop("title"), prop("body")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"title", "body"}, got.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	if _, ok := got.Get("author"); ok {
		t.Fatalf("expected author to be absent from projection")
	}
}

func TestProjectNestedJoin(t *testing.T) {
	selection := []domain.QueryNode{
		prop("id"),
		prop("typeName"),
		join("author", nil, prop("name")),
	}
	got, err := ProjectEntry(blogEntry(), selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]any{
		"id":       "post-1",
		"typeName": "blog",
		"author":   []any{map[string]any{"name": "Ada"}},
	}
	if diff := cmp.Diff(want, got.GoValue()); diff != "" {
		t.Fatalf("projection (-want +got):\n%s", diff)
	}
}

func TestProjectScalesImagesWithParams(t *testing.T) {
	selection := []domain.QueryNode{
		join("hero", domain.Params{"width": int64(150)}, prop("url"), prop("width"), prop("height")),
	}
	got, err := ProjectEntry(blogEntry(), selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]any{
		"hero": map[string]any{"url": "//img/hero.jpg?w=150&h=75", "width": 150, "height": 75},
	}
	if diff := cmp.Diff(want, got.GoValue()); diff != "" {
		t.Fatalf("projection (-want +got):\n%s", diff)
	}
}

func TestProjectImageWithoutParamsKeepsOriginal(t *testing.T) {
	got, err := ProjectEntry(blogEntry(), []domain.QueryNode{join("hero", nil, prop("width"), prop("title"))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"hero": map[string]any{"width": 2000, "title": "Hero"}}
	if diff := cmp.Diff(want, got.GoValue()); diff != "" {
		t.Fatalf("projection (-want +got):\n%s", diff)
	}
}

func TestProjectPropCopiesVerbatim(t *testing.T) {
	got, err := ProjectEntry(blogEntry(), []domain.QueryNode{prop("hero")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"hero": map[string]any{"url": "//img/hero.jpg", "width": 2000, "height": 1000, "title": "Hero"},
	}
	if diff := cmp.Diff(want, got.GoValue()); diff != "" {
		t.Fatalf("projection (-want +got):\n%s", diff)
	}
}

func TestProjectZeroDimensionImageFails(t *testing.T) {
	entry := domain.Entry{ID: "e", Fields: map[string]domain.Value{
		"hero": domain.Image(domain.ImageDescriptor{URL: "u", Width: 0, Height: 10}),
	}}
	_, err := ProjectEntry(entry, []domain.QueryNode{join("hero", domain.Params{"width": int64(5)}, prop("url"))})
	if !errors.Is(err, imaging.ErrZeroDimension) {
		t.Fatalf("expected ErrZeroDimension, got %v", err)
	}
}

func TestProjectAliasesAndMissingFields(t *testing.T) {
	selection := []domain.QueryNode{
		&domain.Prop{Key: "title", Alias: "headline"},
		prop("subtitle"),
		join("location", nil, prop("lat")),
	}
	got, err := ProjectEntry(blogEntry(), selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("failed to marshal projection: %v", err)
	}
	want := `{"headline":"Hello","subtitle":null,"location":{"lat":52.5}}`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}
}

func TestProjectPreservesOrder(t *testing.T) {
	entries := []domain.Entry{
		{ID: "c", Fields: map[string]domain.Value{}},
		{ID: "a", Fields: map[string]domain.Value{}},
		{ID: "b", Fields: map[string]domain.Value{}},
	}
	got, err := Project(entries, []domain.QueryNode{prop("id")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []any
	for _, obj := range got {
		id, _ := obj.Get("id")
		ids = append(ids, id)
	}
	if diff := cmp.Diff([]any{"c", "a", "b"}, ids); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestProjectParamsIgnoredForNonImages(t *testing.T) {
	got, err := ProjectEntry(blogEntry(), []domain.QueryNode{join("author", domain.Params{"width": int64(10)}, prop("name"))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"author": []any{map[string]any{"name": "Ada"}}}
	if diff := cmp.Diff(want, got.GoValue()); diff != "" {
		t.Fatalf("projection (-want +got):\n%s", diff)
	}
}

func TestProjectLooksUpNormalizedFieldNames(t *testing.T) {
	entry := domain.Entry{ID: "e", Fields: map[string]domain.Value{
		"heroTitle": domain.Scalar("Hello"),
		"authorRef": domain.Entries([]domain.Entry{
			{ID: "a", Fields: map[string]domain.Value{"fullName": domain.Scalar("Ada")}},
		}),
	}}
	selection := []domain.QueryNode{
		prop("hero_title"),
		join("author_ref", nil, prop("full_name")),
	}

	got, err := ProjectEntry(entry, selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"hero_title": "Hello",
		"author_ref": []any{map[string]any{"full_name": "Ada"}},
	}
	if diff := cmp.Diff(want, got.GoValue()); diff != "" {
		t.Fatalf("projection (-want +got):\n%s", diff)
	}
}
