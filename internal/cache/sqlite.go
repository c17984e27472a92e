package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/petfolio/docsync/internal/common"
	"github.com/petfolio/docsync/internal/dbx"
	"github.com/petfolio/docsync/internal/models"
)

const (
	// DefaultCapacityBytes bounds the whole local tier.
	DefaultCapacityBytes = int64(10 << 20)
	// DefaultInlineThreshold is the largest encoded payload stored inline;
	// bigger items keep metadata only.
	DefaultInlineThreshold = int64(1 << 20)
	// DefaultEvictBatch is how many oldest entries one eviction pass removes.
	DefaultEvictBatch = 3

	// rowOverhead approximates the per-row cost of metadata columns when
	// accounting against the capacity budget.
	rowOverhead = int64(512)
)

// Options tune a SQLiteStore. Zero values fall back to the defaults above.
type Options struct {
	CapacityBytes   int64
	InlineThreshold int64
	EvictBatch      int
}

// SQLiteStore implements Store over a migrated sqlite database. All index
// mutations (put, delete, evict) are serialized by a single mutex so
// concurrent writers cannot lose updates to the capacity accounting.
type SQLiteStore struct {
	db   *sql.DB
	opts Options

	mu sync.Mutex
}

func NewSQLiteStore(db *sql.DB, opts Options) *SQLiteStore {
	if opts.CapacityBytes <= 0 {
		opts.CapacityBytes = DefaultCapacityBytes
	}
	if opts.InlineThreshold <= 0 {
		opts.InlineThreshold = DefaultInlineThreshold
	}
	if opts.EvictBatch <= 0 {
		opts.EvictBatch = DefaultEvictBatch
	}
	return &SQLiteStore{db: db, opts: opts}
}

func (s *SQLiteStore) Put(ctx context.Context, item *models.Item) (*PutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := item.Clone()
	res := &PutResult{}
	if int64(len(stored.Payload)) > s.opts.InlineThreshold {
		// Never store a truncated payload: metadata only.
		stored.Payload = ""
		stored.PayloadOmitted = true
		res.PayloadOmitted = true
	}

	err := s.putLocked(ctx, stored)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, common.ErrCapacityExceeded) {
		return nil, err
	}

	evicted, evErr := s.evictLocked(ctx, stored.StorageKey())
	if evErr != nil {
		return nil, fmt.Errorf("evicting: %w", evErr)
	}
	res.Evicted = evicted

	// Exactly one retry; a second capacity failure abandons the write.
	if err := s.putLocked(ctx, stored); err != nil {
		return res, err
	}
	return res, nil
}

// execItemWrite performs the actual row upsert. A function variable so tests
// can inject driver-level failures like SQLITE_FULL.
var execItemWrite = func(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	return db.ExecContext(ctx, query, args...)
}

func (s *SQLiteStore) putLocked(ctx context.Context, item *models.Item) error {
	cost := int64(len(item.Payload)) + rowOverhead

	var used sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(payload_bytes + ?) FROM items WHERE storage_key != ?`,
		rowOverhead, item.StorageKey()).Scan(&used)
	if err != nil {
		return fmt.Errorf("reading cache usage: %w", err)
	}
	if used.Int64+cost > s.opts.CapacityBytes {
		return fmt.Errorf("%w: need %d bytes, %d of %d in use",
			common.ErrCapacityExceeded, cost, used.Int64, s.opts.CapacityBytes)
	}

	query := `
		INSERT INTO items (storage_key, owner, scope, id, category, name, size,
			mime_type, payload, payload_omitted, checksum, uploaded_at, origin, payload_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(storage_key) DO UPDATE SET
			category = excluded.category,
			name = excluded.name,
			size = excluded.size,
			mime_type = excluded.mime_type,
			payload = excluded.payload,
			payload_omitted = excluded.payload_omitted,
			checksum = excluded.checksum,
			uploaded_at = excluded.uploaded_at,
			origin = excluded.origin,
			payload_bytes = excluded.payload_bytes
	`
	_, err = execItemWrite(ctx, s.db, query,
		item.StorageKey(), item.Owner, item.Scope, item.ID, item.Category, item.Name,
		item.Size, item.MimeType, item.Payload, boolToInt(item.PayloadOmitted),
		item.Checksum, item.UploadedAt.UnixMilli(), string(item.Origin),
		int64(len(item.Payload)))
	if err != nil {
		if isQuotaError(err) {
			return fmt.Errorf("%w: %w", common.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("writing item: %w", err)
	}
	return nil
}

// evictLocked removes up to EvictBatch oldest entries across all owners and
// scopes, never touching the row identified by excludeKey (no self-eviction).
func (s *SQLiteStore) evictLocked(ctx context.Context, excludeKey string) ([]EvictedItem, error) {
	var evicted []EvictedItem

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT storage_key, owner, scope, id, origin, uploaded_at FROM items
			 WHERE storage_key != ?
			 ORDER BY uploaded_at ASC, id ASC
			 LIMIT ?`, excludeKey, s.opts.EvictBatch)
		if err != nil {
			return fmt.Errorf("selecting eviction candidates: %w", err)
		}
		defer rows.Close()

		var keys []string
		for rows.Next() {
			var key, origin string
			var e EvictedItem
			var uploadedAt int64
			if err := rows.Scan(&key, &e.Owner, &e.Scope, &e.ID, &origin, &uploadedAt); err != nil {
				return err
			}
			e.Origin = models.Origin(origin)
			e.UploadedAt = time.UnixMilli(uploadedAt).UTC()
			keys = append(keys, key)
			evicted = append(evicted, e)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(keys) == 0 {
			return nil
		}

		placeholders := strings.Repeat("?,", len(keys))
		placeholders = placeholders[:len(placeholders)-1]
		args := make([]any, len(keys))
		for i, k := range keys {
			args[i] = k
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM items WHERE storage_key IN (`+placeholders+`)`, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return evicted, nil
}

func (s *SQLiteStore) Get(ctx context.Context, owner, scope, id string) ([]*models.Item, error) {
	query := `SELECT owner, scope, id, category, name, size, mime_type, payload,
		payload_omitted, checksum, uploaded_at, origin FROM items WHERE owner = ?`
	args := []any{owner}
	if scope != "" {
		query += ` AND scope = ?`
		args = append(args, scope)
	}
	if id != "" {
		query += ` AND id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY uploaded_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting items: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		var item models.Item
		var omitted int
		var uploadedAt int64
		var origin string
		if err := rows.Scan(&item.Owner, &item.Scope, &item.ID, &item.Category,
			&item.Name, &item.Size, &item.MimeType, &item.Payload, &omitted,
			&item.Checksum, &uploadedAt, &origin); err != nil {
			return nil, err
		}
		item.PayloadOmitted = omitted != 0
		item.UploadedAt = time.UnixMilli(uploadedAt).UTC()
		item.Origin = models.Origin(origin)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, owner, scope, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE owner = ? AND scope = ? AND id = ?`, owner, scope, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Usage(ctx context.Context) (*UsageInfo, error) {
	var count int64
	var used sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(payload_bytes + ?) FROM items`, rowOverhead).Scan(&count, &used)
	if err != nil {
		return nil, fmt.Errorf("reading cache usage: %w", err)
	}
	return &UsageInfo{
		Items:         count,
		UsedBytes:     used.Int64,
		CapacityBytes: s.opts.CapacityBytes,
	}, nil
}

// isQuotaError reports whether err is the driver's storage-exhaustion signal
// (SQLITE_FULL), which must be treated as a capacity condition rather than a
// generic I/O failure.
func isQuotaError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "disk is full")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
