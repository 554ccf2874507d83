// Package selector picks the next identity to love: any unloved
// identity that has not just been picked. No fairness guarantee;
// candidates come back in the store's natural order.
package selector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lovepool/lovebot/botdb"
)

// ErrNoCandidate means the pool has no unloved identity outside the
// recent cache.
var ErrNoCandidate = errors.New("no one to share the love with")

// Pick returns one unloved identity id, excluding the given recently
// selected ids.
func Pick(ctx context.Context, db botdb.Querier, exclude []string) (string, error) {
	id, err := db.FindUnloved(ctx, exclude)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoCandidate
		}
		return "", fmt.Errorf("finding unloved identity: %w", err)
	}
	return id, nil
}
