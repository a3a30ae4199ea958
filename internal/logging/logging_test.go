package logging

import "testing"

func TestNew(t *testing.T) {
	for _, cfg := range []Config{
		{},
		{Level: "debug", Format: "console"},
		{Level: "WARN", Format: "json"},
	} {
		logger, err := New(cfg)
		if err != nil {
			t.Fatalf("New(%+v): unexpected error: %v", cfg, err)
		}
		_ = logger.Sync()
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
