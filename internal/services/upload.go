package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/petfolio/docsync/internal/cache"
	"github.com/petfolio/docsync/internal/models"
	"github.com/petfolio/docsync/internal/payload"
)

// UploadFile uploads a single document. The remote tier is attempted first;
// on remote failure the item is kept in the local tier with
// Origin=local-only and the upload still counts as a success (availability
// over consistency). Only validation, encoding, or a failure of both tiers
// produce a hard error.
//
// Warnings carry the best-effort failures: local write-through misses,
// fallback-to-local notices and evictions of items that had no remote copy.
func (s *FileService) UploadFile(ctx context.Context, req UploadRequest) (*models.Item, []error, error) {
	if err := s.ValidateFile(req.Size, req.MimeType); err != nil {
		return nil, nil, err
	}

	uploadedAt := s.now().UTC()
	enc, err := payload.Encode(req.Content, req.Size, req.MimeType, req.Progress)
	if err != nil {
		// No partial state was created.
		return nil, nil, err
	}

	item := &models.Item{
		ID:         models.NewID(uploadedAt, req.Name),
		Owner:      req.Owner,
		Scope:      req.Scope,
		Category:   req.Category,
		Name:       req.Name,
		Size:       enc.Size,
		MimeType:   req.MimeType,
		Payload:    enc.Payload,
		Checksum:   enc.Checksum,
		UploadedAt: uploadedAt,
	}

	var warnings []error
	if rerr := s.remote.Put(ctx, item); rerr != nil {
		item.Origin = models.OriginLocalOnly
		res, cerr := s.cache.Put(ctx, item)
		warnings = append(warnings, s.evictionWarnings(ctx, res)...)
		if cerr != nil {
			// Both tiers failed; the remote failure is the one surfaced.
			return nil, warnings, fmt.Errorf("upload failed on both tiers (local: %v): %w", cerr, rerr)
		}
		warnings = append(warnings, fmt.Errorf("item %s stored locally only: %w", item.ID, rerr))
		s.log.Warn(ctx, "remote write failed, falling back to local tier",
			"owner", item.Owner, "scope", item.Scope, "id", item.ID, "error", rerr)
	} else {
		item.Origin = models.OriginRemote
		res, cerr := s.cache.Put(ctx, item)
		warnings = append(warnings, s.evictionWarnings(ctx, res)...)
		if cerr != nil {
			// Remote already holds the canonical copy; not fatal.
			warnings = append(warnings, fmt.Errorf("local write-through failed for %s: %w", item.ID, cerr))
			s.log.Warn(ctx, "local write-through failed",
				"owner", item.Owner, "id", item.ID, "error", cerr)
		}
	}

	s.readCache.Store(item.ID, item.Clone())
	return item, warnings, nil
}

// UploadFiles fans the uploads out concurrently, one goroutine per request;
// batches are user-initiated and small, so no extra cap is applied. If any
// upload fails hard the batch fails as a whole, but already-uploaded items
// are not rolled back.
func (s *FileService) UploadFiles(ctx context.Context, reqs []UploadRequest) ([]*models.Item, []error, error) {
	items := make([]*models.Item, len(reqs))
	warnLists := make([][]error, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			item, warns, err := s.UploadFile(ctx, req)
			if err != nil {
				return fmt.Errorf("uploading %q: %w", req.Name, err)
			}
			items[i] = item
			warnLists[i] = warns
			return nil
		})
	}
	err := g.Wait()

	var warnings []error
	for _, w := range warnLists {
		warnings = append(warnings, w...)
	}
	if err != nil {
		return nil, warnings, err
	}
	return items, warnings, nil
}

// evictionWarnings records the fallout of an eviction pass: evicted ids are
// dropped from the read cache, and entries that had no remote counterpart
// are surfaced as warnings since their data is gone for good.
func (s *FileService) evictionWarnings(ctx context.Context, res *cache.PutResult) []error {
	if res == nil {
		return nil
	}
	var warnings []error
	for _, e := range res.Evicted {
		s.readCache.Delete(e.ID)
		if e.Origin == models.OriginLocalOnly {
			warnings = append(warnings, fmt.Errorf("evicted %s/%s/%s which had no remote copy", e.Owner, e.Scope, e.ID))
			s.log.Warn(ctx, "evicted an item with no remote copy",
				"owner", e.Owner, "scope", e.Scope, "id", e.ID)
		}
	}
	return warnings
}
