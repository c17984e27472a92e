// Package remote implements the canonical, network-backed persistence tier.
// Two variants exist: an S3 object store and a Postgres document database.
// Both address items by the same (owner, scope, id) identity used by the
// local tier.
package remote

import (
	"context"
	"fmt"

	"github.com/petfolio/docsync/internal/common"
	"github.com/petfolio/docsync/internal/models"
)

// Store is the remote tier. Implementations wrap every failure (network,
// auth, quota) in common.ErrRemoteUnavailable and never retry internally;
// retry policy belongs to the caller of the sync service.
type Store interface {
	// Put writes the single canonical copy of the item.
	Put(ctx context.Context, item *models.Item) error

	// GetByOwner returns every item belonging to owner, across all scopes.
	GetByOwner(ctx context.Context, owner string) ([]*models.Item, error)

	// Delete removes the item in whichever scope it lives; a miss is not an
	// error.
	Delete(ctx context.Context, owner, id string) error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrRemoteUnavailable, err)
}
