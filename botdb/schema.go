package botdb

import (
	"context"
	"fmt"
)

const createIdentities = `
CREATE TABLE IF NOT EXISTS identities (
  identity_id VARCHAR(64) NOT NULL,
  loved_at    DATETIME NULL,
  created_at  DATETIME NOT NULL,
  PRIMARY KEY (identity_id),
  KEY idx_identities_loved_at (loved_at)
)
`

// Setup creates the identities table and its indexes.
func (q *Queries) Setup(ctx context.Context) error {
	if _, err := q.db.ExecContext(ctx, createIdentities); err != nil {
		return fmt.Errorf("creating identities table: %w", err)
	}
	return nil
}

const identityIndexQuery = `
SELECT COUNT(*) FROM information_schema.statistics
  WHERE table_schema = DATABASE()
    AND table_name = 'identities'
    AND column_name = 'identity_id'
`

// VerifyIdentityIndex confirms the identity id lookup index exists.
// The scheduler's first cycle waits on this.
func (q *Queries) VerifyIdentityIndex(ctx context.Context) error {
	var count int
	err := q.db.QueryRowContext(ctx, identityIndexQuery).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking identity index: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("identities table has no identity_id index, run setup")
	}
	return nil
}
