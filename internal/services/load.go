package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/petfolio/docsync/internal/common"
	"github.com/petfolio/docsync/internal/models"
)

// LoadFiles returns every item for the owner, optionally narrowed to one
// scope. The local tier provides the default result set; when the remote
// tier is reachable its items win on id conflicts and are refreshed into the
// local tier. A remote failure degrades to a local-only read, reported as a
// warning rather than an error.
//
// Results are deduplicated by id and sorted ascending by upload time.
func (s *FileService) LoadFiles(ctx context.Context, owner, scope string) ([]*models.Item, []error, error) {
	local, err := s.cache.Get(ctx, owner, scope, "")
	if err != nil {
		return nil, nil, fmt.Errorf("reading local tier: %w", err)
	}

	merged := make(map[string]*models.Item, len(local))
	for _, item := range local {
		merged[item.ID] = item
	}

	var warnings []error
	remoteItems, rerr := s.remote.GetByOwner(ctx, owner)
	if rerr != nil {
		warnings = append(warnings, fmt.Errorf("remote read failed, serving local tier only: %w", rerr))
		s.log.Warn(ctx, "remote read failed, degraded read", "owner", owner, "error", rerr)
	} else {
		for _, item := range remoteItems {
			if scope != "" && item.Scope != scope {
				continue
			}
			merged[item.ID] = item // remote wins

			res, cerr := s.cache.Put(ctx, item)
			warnings = append(warnings, s.evictionWarnings(ctx, res)...)
			if cerr != nil {
				warnings = append(warnings, fmt.Errorf("read-through refresh failed for %s: %w", item.ID, cerr))
				s.log.Warn(ctx, "read-through refresh failed", "owner", owner, "id", item.ID, "error", cerr)
			}
		}
	}

	s.log.Debug(ctx, "merged document view",
		"owner", owner, "scope", scope, "local", len(local), "merged", len(merged))

	result := make([]*models.Item, 0, len(merged))
	for _, item := range merged {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UploadedAt.Equal(result[j].UploadedAt) {
			return result[i].UploadedAt.Before(result[j].UploadedAt)
		}
		return result[i].ID < result[j].ID
	})

	for _, item := range result {
		s.readCache.Store(item.ID, item.Clone())
	}
	return result, warnings, nil
}

// GetFile returns one item by id. The in-memory read cache answers first,
// then the local tier, then the remote tier (refreshing the local tier on
// the way back). Returns common.ErrNotFound when no tier holds the item.
func (s *FileService) GetFile(ctx context.Context, owner, scope, id string) (*models.Item, error) {
	if item, ok := s.readCache.Load(id); ok {
		if item.Owner == owner && (scope == "" || item.Scope == scope) {
			return item.Clone(), nil
		}
	}

	items, lerr := s.cache.Get(ctx, owner, scope, id)
	if lerr == nil && len(items) > 0 {
		s.readCache.Store(id, items[0].Clone())
		return items[0], nil
	}

	remoteItems, rerr := s.remote.GetByOwner(ctx, owner)
	if rerr != nil {
		if lerr != nil {
			return nil, fmt.Errorf("reading local tier: %w", lerr)
		}
		return nil, rerr
	}
	for _, item := range remoteItems {
		if item.ID != id || (scope != "" && item.Scope != scope) {
			continue
		}
		if _, cerr := s.cache.Put(ctx, item); cerr != nil {
			s.log.Warn(ctx, "read-through refresh failed", "owner", owner, "id", id, "error", cerr)
		}
		s.readCache.Store(id, item.Clone())
		return item, nil
	}
	return nil, common.ErrNotFound
}
