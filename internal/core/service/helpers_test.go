package service

import (
	"sync"
	"testing"
	"time"

	"github.com/yndnr/stakewatch/internal/storage/memory"
	"github.com/yndnr/stakewatch/pkg/password"
)

var testParams = password.Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store  *memory.Store
	clock  *fakeClock
	users  *UserService
	tokens *TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { store.Close() })

	clock := newFakeClock()
	hasher := password.NewHasher("pepper", testParams)
	tokens := NewTokenService(store, hasher, WithClock(clock.Now))
	users := NewUserService(store, hasher, tokens)

	return &fixture{store: store, clock: clock, users: users, tokens: tokens}
}

func (f *fixture) createUser(t *testing.T, phone, pw string) {
	t.Helper()
	err := f.users.Create(t.Context(), &CreateUserRequest{
		FirstName:    "Ann",
		LastName:     "Lee",
		Phone:        phone,
		Password:     pw,
		TOSAgreement: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}
