package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hyperengineering/devtrack/internal/types"
	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "devtrack.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestGetStats_CountsRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateExpense(ctx, types.NewExpense{Date: "2024-01-01", Amount: 1})
	s.CreateExpense(ctx, types.NewExpense{Date: "2024-01-02", Amount: 2})
	s.CreateTimeEntry(ctx, types.NewTimeEntry{Date: "2024-01-01", Hours: 3})
	s.CreateFlowNode(ctx, types.NewFlowNode{Label: "Start"})
	s.AddSubscriber(ctx, "a@example.com")

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	want := types.StoreStats{Expenses: 2, TimeEntries: 1, Tasks: 0, FlowNodes: 1, Subscribers: 1}
	if *stats != want {
		t.Errorf("GetStats() = %+v, want %+v", *stats, want)
	}
}

func TestConcurrentWrites_FileBacked(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "concurrent.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreateTimeEntry(ctx, types.NewTimeEntry{Date: "2024-01-01", Hours: 1}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent insert: %v", err)
	}

	entries, err := s.ListTimeEntries(ctx, types.ListOptions{})
	if err != nil {
		t.Fatalf("ListTimeEntries: %v", err)
	}
	if len(entries) != 20 {
		t.Errorf("len(entries) = %d, want 20", len(entries))
	}
}
