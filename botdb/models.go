package botdb

import (
	"database/sql"
	"time"
)

// Identity is one row in the identities table. An identity with a
// NULL loved_at is "unloved" and eligible for selection.
type Identity struct {
	IdentityID string
	LovedAt    sql.NullTime
	CreatedAt  time.Time
}

// Unloved reports whether the identity has not been loved yet.
func (i Identity) Unloved() bool {
	return !i.LovedAt.Valid
}
