package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yndnr/stakewatch/internal/storage"
	"github.com/yndnr/stakewatch/internal/storage/storagetest"
)

func TestStore_RecordStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.RecordStore {
		s := New()
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestStore_Len(t *testing.T) {
	s := New()
	defer s.Close()

	if s.Len("users") != 0 {
		t.Fatal("new store should be empty")
	}
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Create(t.Context(), "users", id, []byte(`{}`)); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Len("users"); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestStore_Closed(t *testing.T) {
	s := New()
	s.Close()

	if err := s.Create(t.Context(), "users", "a", nil); err != storage.ErrClosed {
		t.Errorf("Create() after Close error = %v, want ErrClosed", err)
	}
	if _, err := s.Read(t.Context(), "users", "a"); err != storage.ErrClosed {
		t.Errorf("Read() after Close error = %v, want ErrClosed", err)
	}
}

func TestStore_ConcurrentCreate(t *testing.T) {
	s := New()
	defer s.Close()

	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Create(context.Background(), "users", "5550001111", []byte(`{}`)) == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("%d creates succeeded, want 1", created.Load())
	}
	if s.Len("users") != 1 || s.Len("tokens") != 0 {
		t.Errorf("Len users=%d tokens=%d", s.Len("users"), s.Len("tokens"))
	}
}
