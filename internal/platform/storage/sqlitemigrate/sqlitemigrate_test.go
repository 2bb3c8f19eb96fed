package sqlitemigrate

import (
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyMigrationsRunsAndRecords(t *testing.T) {
	db := openMemoryDB(t)

	migrations := fstest.MapFS{
		"0001_items.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE items;"),
		},
	}
	if err := ApplyMigrations(db, migrations, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if got := ledgerCount(t, db); got != 1 {
		t.Fatalf("ledger rows = %d, want 1", got)
	}
	if !tableExists(t, db, "items") {
		t.Fatal("migrated table missing")
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	db := openMemoryDB(t)

	migrations := fstest.MapFS{
		"0001_items.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);"),
		},
	}
	if err := ApplyMigrations(db, migrations, ""); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := ApplyMigrations(db, migrations, ""); err != nil {
		t.Fatalf("replay: %v", err)
	}

	if got := ledgerCount(t, db); got != 1 {
		t.Fatalf("ledger rows after replay = %d, want 1", got)
	}
}

func TestApplyMigrationsLeavesFailureUnrecorded(t *testing.T) {
	db := openMemoryDB(t)

	broken := fstest.MapFS{
		"0001_things.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREAT table things(id INT);"),
		},
	}
	if err := ApplyMigrations(db, broken, ""); err == nil {
		t.Fatal("broken migration did not fail")
	}
	if got := ledgerCount(t, db); got != 0 {
		t.Fatalf("ledger rows after failure = %d, want 0", got)
	}

	// A corrected file under the same name applies on the next run.
	fixed := fstest.MapFS{
		"0001_things.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE things(id INTEGER PRIMARY KEY);"),
		},
	}
	if err := ApplyMigrations(db, fixed, ""); err != nil {
		t.Fatalf("apply fixed migration: %v", err)
	}
	if got := ledgerCount(t, db); got != 1 {
		t.Fatalf("ledger rows after fix = %d, want 1", got)
	}
}

func TestApplyMigrationsKeysLedgerByRoot(t *testing.T) {
	db := openMemoryDB(t)

	migrations := fstest.MapFS{
		"events/0001_events.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE event_rows(id TEXT PRIMARY KEY);"),
		},
	}
	if err := ApplyMigrations(db, migrations, "events"); err != nil {
		t.Fatalf("apply migrations with root: %v", err)
	}

	var key string
	if err := db.QueryRow("SELECT name FROM schema_migrations LIMIT 1").Scan(&key); err != nil {
		t.Fatalf("read ledger key: %v", err)
	}
	if key != "events/0001_events.sql" {
		t.Fatalf("ledger key = %q, want root-prefixed path", key)
	}
	if !tableExists(t, db, "event_rows") {
		t.Fatal("migrated table missing")
	}
}

func TestExtractUpMigrationWithoutMarkers(t *testing.T) {
	raw := "CREATE TABLE plain(id TEXT PRIMARY KEY);"
	if got := ExtractUpMigration(raw); got != raw {
		t.Fatalf("extract = %q, want unchanged content", got)
	}
}

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func ledgerCount(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	var count int64
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count ledger rows: %v", err)
	}
	return count
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("check table %s: %v", table, err)
	}
	return name == table
}
