package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	in := `
		create table t (id text primary key);
		insert into t values ('a;b');
		insert into t values ('c');
	`
	stmts := splitStatements(in)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(stmts), stmts)
	}
	if !strings.Contains(stmts[1], "'a;b'") {
		t.Fatalf("semicolon inside string literal must not split: %q", stmts[1])
	}
}

func TestSQLFilesOrderAndSuffix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.up.sql", "0001_a.up.sql", "0001_a.down.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := sqlFiles(dir, ".up.sql")
	if err != nil {
		t.Fatalf("sqlFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 up files, got %d", len(files))
	}
	if files[0].name != "0001_a.up.sql" || files[1].name != "0002_b.up.sql" {
		t.Fatalf("files out of order: %+v", files)
	}
}

func TestSQLFilesMissingDir(t *testing.T) {
	files, err := sqlFiles(filepath.Join(t.TempDir(), "nope"), ".sql")
	if err != nil || files != nil {
		t.Fatalf("missing dir must be empty, got %v / %v", files, err)
	}
}
