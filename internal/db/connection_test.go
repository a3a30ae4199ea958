package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestConfigURL(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "app", Password: "p@ss/word", DBName: "contentql", SSLMode: "require"}
	want := "postgres://app:p%40ss%2Fword@db:5433/contentql?sslmode=require"
	if got := cfg.URL(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Fatalf("expected paired up/down migrations, got %d up and %d down", up, down)
	}
}
