package journal

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestNew_OpenError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(string, string) (*sql.DB, error) {
		return nil, errors.New("boom")
	}

	_, err := New(Config{DataDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "journal: open database") {
		t.Fatalf("New() error = %v, want open database failure", err)
	}
}

func TestNew_DefaultsFilledIn(t *testing.T) {
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.cfg.DatabaseName != "journal.db" || s.cfg.MaxHistory != 50 {
		t.Errorf("cfg = %+v", s.cfg)
	}
}

func TestNullableString(t *testing.T) {
	if nullableString("") != nil {
		t.Error("empty string should be NULL")
	}
	if v := nullableString("x"); v == nil || *v != "x" {
		t.Errorf("nullableString(x) = %v", v)
	}
}
