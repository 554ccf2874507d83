package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/lovepool/lovebot/botdb"
)

// FakeStore is an in-memory botdb.Querier for unit tests. Identities
// keep insertion order so selection is deterministic.
type FakeStore struct {
	mu      sync.Mutex
	order   []string
	records map[string]botdb.Identity

	EnsureErr error
	CountErr  error
	FindErr   error
	MarkErr   error
	IndexErr  error

	EnsureCalls int
}

var _ botdb.Querier = (*FakeStore)(nil)

func NewFakeStore() *FakeStore {
	return &FakeStore{records: map[string]botdb.Identity{}}
}

// AddLoved seeds an identity that was already contacted.
func (f *FakeStore) AddLoved(id string, ts time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insert(id)
	rec := f.records[id]
	rec.LovedAt = sql.NullTime{Time: ts, Valid: true}
	f.records[id] = rec
}

func (f *FakeStore) insert(id string) {
	if _, ok := f.records[id]; !ok {
		f.order = append(f.order, id)
		f.records[id] = botdb.Identity{IdentityID: id, CreatedAt: time.Now()}
	}
}

// Record returns the stored identity and whether it exists.
func (f *FakeStore) Record(id string) (botdb.Identity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	return rec, ok
}

func (f *FakeStore) EnsureIdentity(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EnsureCalls++
	if f.EnsureErr != nil {
		return f.EnsureErr
	}
	f.insert(id)
	return nil
}

func (f *FakeStore) CountUnloved(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	var count int64
	for _, rec := range f.records {
		if rec.Unloved() {
			count++
		}
	}
	return count, nil
}

func (f *FakeStore) FindUnloved(ctx context.Context, exclude []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FindErr != nil {
		return "", f.FindErr
	}
	excluded := map[string]bool{}
	for _, id := range exclude {
		excluded[id] = true
	}
	for _, id := range f.order {
		if f.records[id].Unloved() && !excluded[id] {
			return id, nil
		}
	}
	return "", sql.ErrNoRows
}

func (f *FakeStore) ListUnloved(ctx context.Context) ([]botdb.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []botdb.Identity
	for _, id := range f.order {
		if rec := f.records[id]; rec.Unloved() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *FakeStore) MarkLoved(ctx context.Context, id string, ts time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MarkErr != nil {
		return f.MarkErr
	}
	rec, ok := f.records[id]
	if !ok {
		return fmt.Errorf("%w: %q", botdb.ErrNoIdentity, id)
	}
	rec.LovedAt = sql.NullTime{Time: ts, Valid: true}
	f.records[id] = rec
	return nil
}

func (f *FakeStore) VerifyIdentityIndex(ctx context.Context) error {
	return f.IndexErr
}
