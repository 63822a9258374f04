package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/storage/sqlite"
)

func setupSQLiteStore(t *testing.T, habits string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streakly.db")
	store := sqlite.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Put(constants.HabitsKey, []byte(habits)); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func setupJSONStore(t *testing.T, habits string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streakly.json")
	store := storage.NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Put(constants.HabitsKey, []byte(habits)); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return path
}

func readSQLiteHabits(t *testing.T, path string) string {
	t.Helper()
	store := sqlite.NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load %s: %v", path, err)
	}
	defer store.Close()
	data, err := store.Get(constants.HabitsKey)
	if err != nil {
		t.Fatalf("failed to read habits: %v", err)
	}
	return string(data)
}

// tickingClock advances one minute per call so backups get distinct names
func tickingClock() func() time.Time {
	t := time.Date(2024, 3, 13, 8, 0, 0, 0, time.Local)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestCreateBackupSQLite(t *testing.T) {
	dbPath := setupSQLiteStore(t, `[{"id":"a"}]`)

	mgr := NewManager(dbPath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(backupPath), constants.BackupFilePrefix) || filepath.Ext(backupPath) != ".db" {
		t.Errorf("unexpected backup name %s", backupPath)
	}
	if got := readSQLiteHabits(t, backupPath); got != `[{"id":"a"}]` {
		t.Errorf("backup contents = %s", got)
	}
}

func TestCreateBackupJSON(t *testing.T) {
	path := setupJSONStore(t, `[{"id":"j"}]`)

	mgr := NewManager(path)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Ext(backupPath) != ".json" {
		t.Errorf("backup should keep the store extension: %s", backupPath)
	}

	restored := storage.NewJSONStore(backupPath)
	if err := restored.Load(); err != nil {
		t.Fatal(err)
	}
	if got, _ := restored.Get(constants.HabitsKey); string(got) != `[{"id":"j"}]` {
		t.Errorf("backup contents = %s", got)
	}
}

func TestCreateBackupMissingStore(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error for missing store")
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupSQLiteStore(t, `[]`)
	mgr := NewManager(dbPath)
	mgr.now = tickingClock()

	for i := 0; i < constants.MaxBackups+3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("backup %d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("kept %d backups, want %d", len(backups), constants.MaxBackups)
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Error("backups not sorted newest first")
		}
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dbPath := setupSQLiteStore(t, `[]`)
	mgr := NewManager(dbPath)
	if _, err := mgr.CreateBackup(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"notes.txt", "streakly-garbage.db", "other-20240101-1200.db"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Errorf("ListBackups() returned %d entries, want 1", len(backups))
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupSQLiteStore(t, `[]`)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 3, 13, 8, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 4; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("backup %d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, _ := mgr.ListBackups()
	if len(backups) != 4 {
		t.Errorf("ListBackups() = %d, want 4 (counter-suffixed names must parse)", len(backups))
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupSQLiteStore(t, `[{"id":"original"}]`)
	mgr := NewManager(dbPath)
	mgr.now = tickingClock()

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(constants.HabitsKey, []byte(`[{"id":"changed"}]`)); err != nil {
		t.Fatal(err)
	}
	store.Close()

	safety, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if got := readSQLiteHabits(t, dbPath); got != `[{"id":"original"}]` {
		t.Errorf("restored contents = %s", got)
	}
	if safety == "" {
		t.Fatal("restore should take a safety backup")
	}
	if got := readSQLiteHabits(t, safety); got != `[{"id":"changed"}]` {
		t.Errorf("safety backup contents = %s", got)
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	path := setupJSONStore(t, `[]`)
	mgr := NewManager(path)

	bogus := filepath.Join(t.TempDir(), "bogus.json")
	if err := os.WriteFile(bogus, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(bogus); err == nil {
		t.Error("expected error restoring invalid backup")
	}
	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error restoring missing backup")
	}
}

func TestResolve(t *testing.T) {
	dbPath := setupSQLiteStore(t, `[]`)
	mgr := NewManager(dbPath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	if got, err := mgr.Resolve(filepath.Base(backupPath)); err != nil || got != backupPath {
		t.Errorf("Resolve(name) = %s, %v", got, err)
	}
	if _, err := mgr.Resolve("streakly-19990101-0000.db"); err == nil {
		t.Error("expected error for unknown backup")
	}
}
