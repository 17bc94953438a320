package gormsqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildDSNIncludesPerConnectionPragmas(t *testing.T) {
	reader := buildDSN("./state.sqlite", true)
	writer := buildDSN("./state.sqlite", false)

	checks := []string{
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_pragma=trusted_schema(OFF)",
	}
	for _, c := range checks {
		if !strings.Contains(reader, c) {
			t.Fatalf("reader dsn missing %q: %s", c, reader)
		}
		if !strings.Contains(writer, c) {
			t.Fatalf("writer dsn missing %q: %s", c, writer)
		}
	}

	if !strings.HasPrefix(reader, "file:///") || !strings.Contains(reader, "/state.sqlite?") {
		t.Fatalf("reader dsn should address the file as an absolute uri: %s", reader)
	}
	if !strings.Contains(reader, "_pragma=query_only(1)") {
		t.Fatalf("reader dsn missing query_only(1): %s", reader)
	}
	if !strings.Contains(writer, "_pragma=query_only(0)") {
		t.Fatalf("writer dsn missing query_only(0): %s", writer)
	}
	if !strings.Contains(writer, "_txlock=immediate") || strings.Contains(reader, "_txlock") {
		t.Fatalf("only the writer should take immediate locks: reader=%s writer=%s", reader, writer)
	}
}

func TestOpenAndClose(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "state.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	err = db.WriteTX(context.Background(), func(tx *Tx) error {
		return tx.Exec("CREATE TABLE probe (id INTEGER PRIMARY KEY)").Error
	})
	if err != nil {
		t.Fatalf("write tx: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestBuildDSNEscapesPath(t *testing.T) {
	dsn := buildDSN("/tmp/odd?name#50%.sqlite", false)

	path, query, ok := strings.Cut(dsn, "?")
	if !ok {
		t.Fatalf("dsn has no query: %s", dsn)
	}
	if path != "file:///tmp/odd%3Fname%2350%25.sqlite" {
		t.Fatalf("unexpected escaped path: %s", path)
	}
	if !strings.HasPrefix(query, "_pragma=") {
		t.Fatalf("query should start with pragmas: %s", query)
	}
}

func TestOpenPathWithURICharacters(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "state?v=1#x.sqlite")

	db, err := Open(file)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	err = db.WriteTX(context.Background(), func(tx *Tx) error {
		return tx.Exec("CREATE TABLE runs (id INTEGER PRIMARY KEY)").Error
	})
	if err != nil {
		t.Fatalf("write tx: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := os.Stat(file); err != nil {
		t.Fatalf("database should be created at the literal path: %v", err)
	}
}
