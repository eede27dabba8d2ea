package store

import (
	"context"
	"testing"
	"time"

	"github.com/lanefold/lanefold/pkg/layout"
)

func testFamily(hash string) FamilyRecord {
	return FamilyRecord{
		Hash:        hash,
		Fingerprint: "n:a:1900-1930\nn:b:1931-2000",
		NodeIDs:     []string{"a", "b"},
		LinkIDs:     []string{"l1"},
		NodeCount:   2,
		LinkCount:   1,
		Discovered:  time.Now().UTC().Truncate(time.Second),
	}
}

func testLayout(hash string) LayoutRecord {
	return LayoutRecord{
		FamilyHash: hash,
		Lanes:      layout.Individual{"a": 0, "b": 1},
		Chains: []ChainSnapshot{
			{ID: "a", NodeIDs: []string{"a"}, Start: 1900, End: 1930},
			{ID: "b", NodeIDs: []string{"b"}, Start: 1931, End: 2000},
		},
		Score:     12.5,
		LaneCount: 2,
		Created:   time.Now().UTC().Truncate(time.Second),
		Updated:   time.Now().UTC().Truncate(time.Second),
	}
}

// storeUnderTest is run against every backend that can be exercised without
// external services.
func storeUnderTest(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		if err := s.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})

	t.Run("FamilyRoundtrip", func(t *testing.T) {
		f := testFamily("hash-1")
		if err := s.PutFamily(ctx, f); err != nil {
			t.Fatalf("PutFamily() error = %v", err)
		}
		got, err := s.GetFamily(ctx, "hash-1")
		if err != nil {
			t.Fatalf("GetFamily() error = %v", err)
		}
		if got.Hash != f.Hash || got.NodeCount != 2 || len(got.NodeIDs) != 2 {
			t.Errorf("GetFamily() = %+v, want %+v", got, f)
		}
	})

	t.Run("GetFamilyMissing", func(t *testing.T) {
		if _, err := s.GetFamily(ctx, "nope"); err != ErrNotFound {
			t.Errorf("GetFamily(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("LayoutRoundtrip", func(t *testing.T) {
		l := testLayout("hash-1")
		if err := s.PutLayout(ctx, l); err != nil {
			t.Fatalf("PutLayout() error = %v", err)
		}
		got, err := s.GetLayout(ctx, "hash-1")
		if err != nil {
			t.Fatalf("GetLayout() error = %v", err)
		}
		if got.Score != l.Score || got.LaneCount != 2 || len(got.Chains) != 2 {
			t.Errorf("GetLayout() = %+v, want %+v", got, l)
		}
		if got.Lanes["a"] != 0 || got.Lanes["b"] != 1 {
			t.Errorf("Lanes = %v, want a:0 b:1", got.Lanes)
		}
	})

	t.Run("MarkStaleBumpsEpoch", func(t *testing.T) {
		if err := s.MarkStale(ctx, "hash-1"); err != nil {
			t.Fatalf("MarkStale() error = %v", err)
		}
		got, err := s.GetLayout(ctx, "hash-1")
		if err != nil {
			t.Fatalf("GetLayout() error = %v", err)
		}
		if !got.Stale {
			t.Error("Stale = false after MarkStale")
		}
		first := got.StaleEpoch
		if first < 1 {
			t.Errorf("StaleEpoch = %d, want >= 1", first)
		}

		if err := s.MarkStale(ctx, "hash-1"); err != nil {
			t.Fatalf("second MarkStale() error = %v", err)
		}
		got, _ = s.GetLayout(ctx, "hash-1")
		if got.StaleEpoch != first+1 {
			t.Errorf("StaleEpoch = %d after second mark, want %d", got.StaleEpoch, first+1)
		}
	})

	t.Run("MarkStaleMissingLayoutNoop", func(t *testing.T) {
		if err := s.MarkStale(ctx, "no-layout"); err != nil {
			t.Errorf("MarkStale(missing) error = %v, want nil", err)
		}
	})

	t.Run("Pending", func(t *testing.T) {
		// hash-1 is stale from the previous subtest; hash-2 has no layout.
		if err := s.PutFamily(ctx, testFamily("hash-2")); err != nil {
			t.Fatalf("PutFamily() error = %v", err)
		}
		pending, err := Pending(ctx, s)
		if err != nil {
			t.Fatalf("Pending() error = %v", err)
		}
		if len(pending) != 2 || pending[0] != "hash-1" || pending[1] != "hash-2" {
			t.Errorf("Pending() = %v, want [hash-1 hash-2]", pending)
		}
	})

	t.Run("FreshLayoutNotPending", func(t *testing.T) {
		l := testLayout("hash-2")
		if err := s.PutLayout(ctx, l); err != nil {
			t.Fatalf("PutLayout() error = %v", err)
		}
		fresh := testLayout("hash-1")
		if err := s.PutLayout(ctx, fresh); err != nil {
			t.Fatalf("PutLayout() error = %v", err)
		}
		pending, err := Pending(ctx, s)
		if err != nil {
			t.Fatalf("Pending() error = %v", err)
		}
		if len(pending) != 0 {
			t.Errorf("Pending() = %v, want none", pending)
		}
	})

	t.Run("DeleteFamilyRemovesLayout", func(t *testing.T) {
		if err := s.DeleteFamily(ctx, "hash-2"); err != nil {
			t.Fatalf("DeleteFamily() error = %v", err)
		}
		if _, err := s.GetFamily(ctx, "hash-2"); err != ErrNotFound {
			t.Errorf("GetFamily(deleted) error = %v, want ErrNotFound", err)
		}
		if _, err := s.GetLayout(ctx, "hash-2"); err != ErrNotFound {
			t.Errorf("GetLayout(deleted) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteUnknownFamilyNoop", func(t *testing.T) {
		if err := s.DeleteFamily(ctx, "never-existed"); err != nil {
			t.Errorf("DeleteFamily(unknown) error = %v, want nil", err)
		}
	})

	t.Run("CompleteLayoutCreates", func(t *testing.T) {
		l := testLayout("hash-cl")
		if err := s.CompleteLayout(ctx, l); err != nil {
			t.Fatalf("CompleteLayout() error = %v", err)
		}
		got, err := s.GetLayout(ctx, "hash-cl")
		if err != nil {
			t.Fatalf("GetLayout() error = %v", err)
		}
		if got.Stale || got.StaleEpoch != 0 || got.Score != 12.5 {
			t.Errorf("GetLayout() = %+v, want fresh record at epoch 0", got)
		}
	})

	t.Run("CompleteLayoutReplacesAtSameEpoch", func(t *testing.T) {
		l := testLayout("hash-cl")
		l.Score = 8.0
		if err := s.CompleteLayout(ctx, l); err != nil {
			t.Fatalf("CompleteLayout() error = %v", err)
		}
		got, _ := s.GetLayout(ctx, "hash-cl")
		if got.Stale || got.Score != 8.0 {
			t.Errorf("GetLayout() = %+v, want fresh replacement", got)
		}
	})

	t.Run("CompleteLayoutKeepsAdvancedMark", func(t *testing.T) {
		// A mark that lands after an optimization read its epoch must
		// survive the persist of the result.
		if err := s.MarkStale(ctx, "hash-cl"); err != nil {
			t.Fatalf("MarkStale() error = %v", err)
		}
		l := testLayout("hash-cl")
		l.Score = 5.0 // computed against the pre-mark data
		if err := s.CompleteLayout(ctx, l); err != nil {
			t.Fatalf("CompleteLayout() error = %v", err)
		}
		got, err := s.GetLayout(ctx, "hash-cl")
		if err != nil {
			t.Fatalf("GetLayout() error = %v", err)
		}
		if !got.Stale {
			t.Error("Stale = false, want the mid-run mark to survive")
		}
		if got.StaleEpoch != 1 {
			t.Errorf("StaleEpoch = %d, want 1", got.StaleEpoch)
		}
		if got.Score != 5.0 {
			t.Errorf("Score = %v, want the new result 5.0 kept alongside the mark", got.Score)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()
	storeUnderTest(t, s)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s1, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s1.PutFamily(ctx, testFamily("persist")); err != nil {
		t.Fatalf("PutFamily() error = %v", err)
	}
	if err := s1.PutLayout(ctx, testLayout("persist")); err != nil {
		t.Fatalf("PutLayout() error = %v", err)
	}
	s1.Close()

	s2, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() reopen error = %v", err)
	}
	defer s2.Close()

	f, err := s2.GetFamily(ctx, "persist")
	if err != nil || f.NodeCount != 2 {
		t.Errorf("GetFamily() after reopen = %+v, %v", f, err)
	}
	l, err := s2.GetLayout(ctx, "persist")
	if err != nil || l.Score != 12.5 {
		t.Errorf("GetLayout() after reopen = %+v, %v", l, err)
	}
}

func TestFamilyReferences(t *testing.T) {
	f := testFamily("h")
	if !f.References("a") || !f.References("b") {
		t.Error("References() = false for member nodes")
	}
	if f.References("z") {
		t.Error("References(z) = true, want false")
	}
}
