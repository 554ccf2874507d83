package botdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoIdentity is returned by MarkLoved when the identity does not
// exist in the store.
var ErrNoIdentity = errors.New("identity not found")

const ensureIdentity = `
INSERT INTO identities (identity_id, created_at)
  VALUES (?, ?)
  ON DUPLICATE KEY UPDATE identity_id = identity_id
`

// EnsureIdentity upserts an identity record without a loved_at
// timestamp. Calling it again for the same id leaves the existing
// row, including any loved_at value, untouched.
func (q *Queries) EnsureIdentity(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("identity id is required")
	}
	_, err := q.db.ExecContext(ctx, ensureIdentity, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ensuring identity %q: %w", id, err)
	}
	return nil
}

const countUnloved = `
SELECT COUNT(*) FROM identities WHERE loved_at IS NULL
`

// CountUnloved returns the size of the candidate pool.
func (q *Queries) CountUnloved(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnloved).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unloved identities: %w", err)
	}
	return count, nil
}

// FindUnloved returns one unloved identity id not present in the
// exclude list. It returns sql.ErrNoRows when no candidate exists;
// callers translate that into their own error.
func (q *Queries) FindUnloved(ctx context.Context, exclude []string) (string, error) {
	query := `SELECT identity_id FROM identities WHERE loved_at IS NULL`
	args := make([]any, 0, len(exclude))
	if len(exclude) > 0 {
		query += ` AND identity_id NOT IN (?` + strings.Repeat(",?", len(exclude)-1) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	query += ` LIMIT 1`

	var id string
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

const listUnloved = `
SELECT identity_id, loved_at, created_at FROM identities WHERE loved_at IS NULL
`

// ListUnloved returns the full candidate pool in no particular order.
func (q *Queries) ListUnloved(ctx context.Context) ([]Identity, error) {
	rows, err := q.db.QueryContext(ctx, listUnloved)
	if err != nil {
		return nil, fmt.Errorf("listing unloved identities: %w", err)
	}
	defer rows.Close()

	var out []Identity
	for rows.Next() {
		var i Identity
		if err := rows.Scan(&i.IdentityID, &i.LovedAt, &i.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

const markLoved = `
UPDATE identities SET loved_at = ? WHERE identity_id = ?
`

// MarkLoved records that the identity was contacted at ts. Marking an
// identity that is not in the store returns ErrNoIdentity.
func (q *Queries) MarkLoved(ctx context.Context, id string, ts time.Time) error {
	res, err := q.db.ExecContext(ctx, markLoved, ts.UTC(), id)
	if err != nil {
		return fmt.Errorf("marking identity %q loved: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// could be a no-op rewrite of the same timestamp; check existence
		var exists int
		err := q.db.QueryRowContext(ctx,
			`SELECT 1 FROM identities WHERE identity_id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %q", ErrNoIdentity, id)
		}
		return err
	}
	return nil
}
