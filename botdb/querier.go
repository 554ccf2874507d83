package botdb

import (
	"context"
	"time"
)

// Querier is implemented by *Queries and by test fakes.
type Querier interface {
	EnsureIdentity(ctx context.Context, id string) error
	CountUnloved(ctx context.Context) (int64, error)
	FindUnloved(ctx context.Context, exclude []string) (string, error)
	ListUnloved(ctx context.Context) ([]Identity, error)
	MarkLoved(ctx context.Context, id string, ts time.Time) error
	VerifyIdentityIndex(ctx context.Context) error
}

var _ Querier = (*Queries)(nil)
