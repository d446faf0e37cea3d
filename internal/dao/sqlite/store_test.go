package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"usermanagement_server/internal/dao"
	"usermanagement_server/internal/dao/daotest"
	"usermanagement_server/internal/model"
)

var _ dao.Store = (*Store)(nil)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "usermanagement.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestStoreContract(t *testing.T) {
	daotest.RunStoreSuite(t, func(t *testing.T) dao.Store { return openTempStore(t) })
}

func TestReopenKeepsRowsAndSkipsAppliedMigrations(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reopen.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	seen := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	if err := store.SaveUser(context.Background(), &model.UserInfo{UserId: 5, Name: "erin", LastSeen: seen}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	got, err := store.GetUserById(context.Background(), 5)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Name != "erin" || !got.LastSeen.Equal(seen) {
		t.Fatalf("user = %+v, want erin at %v", got, seen)
	}
}

func TestExtractUp(t *testing.T) {
	t.Parallel()

	got := extractUp("-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;")
	if got != "\nCREATE TABLE a (x INT);\n" {
		t.Fatalf("extractUp = %q", got)
	}
	if extractUp("SELECT 1;") != "SELECT 1;" {
		t.Fatal("expected whole content without markers")
	}
}
