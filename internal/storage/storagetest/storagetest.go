// Package storagetest holds the behavioral checks every storage.RecordStore
// engine must pass.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/yndnr/stakewatch/internal/storage"
)

// Run exercises the RecordStore contract against stores produced by open.
// open is called once per subtest and must return an empty store.
func Run(t *testing.T, open func(t *testing.T) storage.RecordStore) {
	ctx := context.Background()

	t.Run("create and read", func(t *testing.T) {
		s := open(t)
		if err := s.Create(ctx, "users", "5551234567", []byte(`{"a":1}`)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		got, err := s.Read(ctx, "users", "5551234567")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if string(got) != `{"a":1}` {
			t.Errorf("Read() = %s", got)
		}
	})

	t.Run("create existing", func(t *testing.T) {
		s := open(t)
		if err := s.Create(ctx, "users", "dup", []byte(`1`)); err != nil {
			t.Fatal(err)
		}
		if err := s.Create(ctx, "users", "dup", []byte(`2`)); !errors.Is(err, storage.ErrRecordExists) {
			t.Errorf("second Create() error = %v, want ErrRecordExists", err)
		}
		got, err := s.Read(ctx, "users", "dup")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != `1` {
			t.Errorf("failed Create() overwrote the record: %s", got)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		s := open(t)
		if _, err := s.Read(ctx, "users", "nobody"); !errors.Is(err, storage.ErrRecordNotFound) {
			t.Errorf("Read() error = %v, want ErrRecordNotFound", err)
		}
		if err := s.Update(ctx, "users", "nobody", []byte(`1`)); !errors.Is(err, storage.ErrRecordNotFound) {
			t.Errorf("Update() error = %v, want ErrRecordNotFound", err)
		}
		if err := s.Delete(ctx, "users", "nobody"); !errors.Is(err, storage.ErrRecordNotFound) {
			t.Errorf("Delete() error = %v, want ErrRecordNotFound", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		s := open(t)
		if err := s.Create(ctx, "tokens", "t1", []byte(`old`)); err != nil {
			t.Fatal(err)
		}
		if err := s.Update(ctx, "tokens", "t1", []byte(`new`)); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		got, err := s.Read(ctx, "tokens", "t1")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != `new` {
			t.Errorf("Read() after Update = %s", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		if err := s.Create(ctx, "tokens", "t1", []byte(`x`)); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, "tokens", "t1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Read(ctx, "tokens", "t1"); !errors.Is(err, storage.ErrRecordNotFound) {
			t.Errorf("Read() after Delete error = %v", err)
		}
		if err := s.Create(ctx, "tokens", "t1", []byte(`y`)); err != nil {
			t.Errorf("Create() after Delete error = %v", err)
		}
	})

	t.Run("collections are separate", func(t *testing.T) {
		s := open(t)
		if err := s.Create(ctx, "users", "same", []byte(`u`)); err != nil {
			t.Fatal(err)
		}
		if err := s.Create(ctx, "tokens", "same", []byte(`t`)); err != nil {
			t.Fatalf("Create() in another collection error = %v", err)
		}
		got, err := s.Read(ctx, "users", "same")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != `u` {
			t.Errorf("Read(users) = %s", got)
		}
	})

	t.Run("invalid keys", func(t *testing.T) {
		s := open(t)
		for _, id := range []string{"", "..", "a/b", `a\b`} {
			if err := s.Create(ctx, "users", id, []byte(`1`)); !errors.Is(err, storage.ErrInvalidKey) {
				t.Errorf("Create(%q) error = %v, want ErrInvalidKey", id, err)
			}
			if _, err := s.Read(ctx, "users", id); !errors.Is(err, storage.ErrRecordNotFound) {
				t.Errorf("Read(%q) error = %v, want ErrRecordNotFound", id, err)
			}
		}
	})

	t.Run("returned data is not shared", func(t *testing.T) {
		s := open(t)
		in := []byte(`abc`)
		if err := s.Create(ctx, "users", "copy", in); err != nil {
			t.Fatal(err)
		}
		in[0] = 'z'
		got, err := s.Read(ctx, "users", "copy")
		if err != nil {
			t.Fatal(err)
		}
		got[1] = 'z'
		again, err := s.Read(ctx, "users", "copy")
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != `abc` {
			t.Errorf("stored data was aliased: %s", again)
		}
	})

	t.Run("concurrent create admits one", func(t *testing.T) {
		s := open(t)
		const workers = 16

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			others    []error
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := s.Create(ctx, "users", "race", []byte(fmt.Sprintf(`%d`, i)))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case !errors.Is(err, storage.ErrRecordExists):
					others = append(others, err)
				}
			}(i)
		}
		wg.Wait()

		if successes != 1 {
			t.Errorf("successful creates = %d, want 1", successes)
		}
		for _, err := range others {
			t.Errorf("unexpected create error: %v", err)
		}
	})
}
