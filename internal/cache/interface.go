// Package cache implements the capacity-bounded local persistence tier.
// Items are addressed by the flattened (owner, scope, id) storage key and
// evicted oldest-first when a write would exceed the capacity budget.
package cache

import (
	"context"
	"time"

	"github.com/petfolio/docsync/internal/models"
)

// Store is the local cache tier.
type Store interface {
	// Put stores the item, clearing the payload of items above the inline
	// threshold. A write that would exceed the capacity budget triggers one
	// eviction pass of the oldest entries followed by one retry; if the
	// retry still does not fit, the write is abandoned and the error matches
	// common.ErrCapacityExceeded. The returned PutResult carries the
	// eviction summary even when the retry fails, so callers can surface
	// entries that were removed.
	Put(ctx context.Context, item *models.Item) (*PutResult, error)

	// Get returns all items for owner, optionally narrowed by scope and/or
	// id (empty string means "any"), sorted by uploaded time then id.
	Get(ctx context.Context, owner, scope, id string) ([]*models.Item, error)

	// Delete removes the entry if present; a miss is not an error.
	Delete(ctx context.Context, owner, scope, id string) error

	// Usage reports the current usage against the capacity budget.
	Usage(ctx context.Context) (*UsageInfo, error)
}

// UsageInfo is a point-in-time snapshot of the cache budget.
type UsageInfo struct {
	Items         int64
	UsedBytes     int64
	CapacityBytes int64
}

// PutResult describes the side effects of a Put.
type PutResult struct {
	// PayloadOmitted is set when the item was stored as metadata only
	// because its payload exceeded the inline threshold.
	PayloadOmitted bool

	// Evicted lists entries removed to make room for the write.
	Evicted []EvictedItem
}

// EvictedItem identifies an entry removed by an eviction pass. Origin lets
// the caller detect entries that had no remote counterpart.
type EvictedItem struct {
	Owner      string
	Scope      string
	ID         string
	Origin     models.Origin
	UploadedAt time.Time
}
