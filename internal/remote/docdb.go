package remote

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/petfolio/docsync/internal/auth"
	"github.com/petfolio/docsync/internal/models"
)

// DocDBConfig holds the settings of the document-database variant. The
// bearer token is opaque to callers; this layer only fails fast on tokens
// that are malformed or expired.
type DocDBConfig struct {
	DSN       string
	AuthToken string
}

// DocDBStore keeps one canonical row per item in a Postgres documents table.
type DocDBStore struct {
	db    *sql.DB
	token string
	now   func() time.Time
}

func NewDocDBStore(cfg DocDBConfig) (*DocDBStore, error) {
	if cfg.AuthToken != "" {
		if err := auth.Check(cfg.AuthToken, time.Now()); err != nil {
			return nil, unavailable("checking auth token", err)
		}
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, unavailable("opening document db", err)
	}

	return &DocDBStore{db: db, token: cfg.AuthToken, now: time.Now}, nil
}

func (s *DocDBStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the documents table when it does not exist yet.
func (s *DocDBStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			owner       TEXT NOT NULL,
			scope       TEXT NOT NULL,
			id          TEXT NOT NULL,
			category    TEXT NOT NULL DEFAULT '',
			name        TEXT NOT NULL,
			size        BIGINT NOT NULL,
			mime_type   TEXT NOT NULL,
			payload     TEXT NOT NULL,
			checksum    TEXT NOT NULL DEFAULT '',
			uploaded_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (owner, scope, id)
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return unavailable("creating schema", err)
	}
	return nil
}

// checkToken re-validates the configured token before each round trip so an
// expired session surfaces as ErrRemoteUnavailable instead of a server error.
func (s *DocDBStore) checkToken() error {
	if s.token == "" {
		return nil
	}
	if err := auth.Check(s.token, s.now()); err != nil {
		return unavailable("checking auth token", err)
	}
	return nil
}

func (s *DocDBStore) Put(ctx context.Context, item *models.Item) error {
	if err := s.checkToken(); err != nil {
		return err
	}

	query := `
		INSERT INTO documents (owner, scope, id, category, name, size, mime_type, payload, checksum, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (owner, scope, id)
		DO UPDATE SET
			category = EXCLUDED.category,
			name = EXCLUDED.name,
			size = EXCLUDED.size,
			mime_type = EXCLUDED.mime_type,
			payload = EXCLUDED.payload,
			checksum = EXCLUDED.checksum,
			uploaded_at = EXCLUDED.uploaded_at
	`
	_, err := s.db.ExecContext(ctx, query,
		item.Owner, item.Scope, item.ID, item.Category, item.Name, item.Size,
		item.MimeType, item.Payload, item.Checksum, item.UploadedAt.UTC())
	if err != nil {
		return unavailable("upserting document", err)
	}
	return nil
}

func (s *DocDBStore) GetByOwner(ctx context.Context, owner string) ([]*models.Item, error) {
	if err := s.checkToken(); err != nil {
		return nil, err
	}

	query := `
		SELECT owner, scope, id, category, name, size, mime_type, payload, checksum, uploaded_at
		FROM documents
		WHERE owner = $1
		ORDER BY uploaded_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, unavailable("selecting documents", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		var item models.Item
		var uploadedAt time.Time
		if err := rows.Scan(&item.Owner, &item.Scope, &item.ID, &item.Category,
			&item.Name, &item.Size, &item.MimeType, &item.Payload,
			&item.Checksum, &uploadedAt); err != nil {
			return nil, unavailable("scanning document", err)
		}
		item.UploadedAt = uploadedAt.UTC()
		item.Origin = models.OriginRemote
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("reading documents", err)
	}
	return result, nil
}

func (s *DocDBStore) Delete(ctx context.Context, owner, id string) error {
	if err := s.checkToken(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return unavailable(fmt.Sprintf("deleting document %s", id), err)
	}
	return nil
}
