package factory

import (
	"path/filepath"
	"testing"
)

func TestNewSinkFromDSNSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	for _, dsn := range []string{path, "sqlite://" + path, "sqlite://:memory:"} {
		sink, err := NewSinkFromDSN(dsn)
		if err != nil {
			t.Fatalf("NewSinkFromDSN(%q): %v", dsn, err)
		}
		_ = sink.Close()
	}
}

func TestNewSinkFromDSNErrors(t *testing.T) {
	for _, dsn := range []string{"", "   ", "redis://localhost:6379"} {
		if _, err := NewSinkFromDSN(dsn); err == nil {
			t.Fatalf("NewSinkFromDSN(%q) succeeded", dsn)
		}
	}
}
