package services

import (
	"context"
	"fmt"

	"github.com/petfolio/docsync/internal/models"
)

// DeleteFiles removes each item from whichever tiers hold it. The remote
// delete is skipped for local-only items, which have no remote copy. Delete
// failures are collected as warnings, never escalated: a leftover item shows
// up again on the next load, surfacing the inconsistency instead of hiding
// it.
func (s *FileService) DeleteFiles(ctx context.Context, items []*models.Item) []error {
	var warnings []error
	for _, item := range items {
		if item.Origin != models.OriginLocalOnly {
			if err := s.remote.Delete(ctx, item.Owner, item.ID); err != nil {
				warnings = append(warnings, fmt.Errorf("remote delete failed for %s: %w", item.ID, err))
				s.log.Warn(ctx, "remote delete failed", "owner", item.Owner, "id", item.ID, "error", err)
			}
		}
		if err := s.cache.Delete(ctx, item.Owner, item.Scope, item.ID); err != nil {
			warnings = append(warnings, fmt.Errorf("local delete failed for %s: %w", item.ID, err))
			s.log.Warn(ctx, "local delete failed", "owner", item.Owner, "id", item.ID, "error", err)
		}
		s.readCache.Delete(item.ID)
	}
	return warnings
}

// ReUploadFiles replaces a set of items: the superseded items are deleted
// best-effort first, then the replacements are uploaded unconditionally.
// The two steps are not atomic — a failed delete can transiently leave both
// the old and the new item visible.
func (s *FileService) ReUploadFiles(ctx context.Context, old []*models.Item, reqs []UploadRequest) ([]*models.Item, []error, error) {
	warnings := s.DeleteFiles(ctx, old)

	items, upWarnings, err := s.UploadFiles(ctx, reqs)
	return items, append(warnings, upWarnings...), err
}
