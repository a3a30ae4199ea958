package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseVars(t *testing.T) {
	got, err := parseVars([]string{"limit=5", "slug=hello-world", `tags=["a","b"]`, "flag=true", "empty="})
	if err != nil {
		t.Fatalf("parseVars: unexpected error: %v", err)
	}
	want := map[string]any{
		"limit": float64(5),
		"slug":  "hello-world",
		"tags":  []any{"a", "b"},
		"flag":  true,
		"empty": "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("vars (-want +got):\n%s", diff)
	}
}

func TestParseVarsRejectsMalformedPairs(t *testing.T) {
	for _, pair := range []string{"novalue", "=5"} {
		if _, err := parseVars([]string{pair}); err == nil {
			t.Fatalf("expected error for %q", pair)
		}
	}
}

func TestReadQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.graphql")
	if err := os.WriteFile(path, []byte("  { page { title } }\n"), 0o600); err != nil {
		t.Fatalf("write query: %v", err)
	}

	fromFile, err := readQuery(strings.NewReader("ignored"), []string{path})
	if err != nil || fromFile != "{ page { title } }" {
		t.Fatalf("file: got %q, %v", fromFile, err)
	}

	fromStdin, err := readQuery(strings.NewReader("{ blogPost { id } }"), nil)
	if err != nil || fromStdin != "{ blogPost { id } }" {
		t.Fatalf("stdin: got %q, %v", fromStdin, err)
	}

	if _, err := readQuery(strings.NewReader("   "), nil); err == nil {
		t.Fatalf("expected error for empty query")
	}
}
