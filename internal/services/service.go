// Package services implements the sync coordinator: the single API the UI
// layer calls to upload, load, replace and delete documents across the local
// cache tier and the remote store.
package services

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/petfolio/docsync/internal/cache"
	"github.com/petfolio/docsync/internal/logging"
	"github.com/petfolio/docsync/internal/models"
	"github.com/petfolio/docsync/internal/remote"
)

// DefaultMaxUploadBytes bounds the raw size of a single upload.
const DefaultMaxUploadBytes = int64(5 << 20)

// DefaultAllowedMIMETypes lists the content types accepted by default.
var DefaultAllowedMIMETypes = []string{"image/jpeg", "image/png", "application/pdf"}

// UploadRequest describes one document to upload. Content is read exactly
// once; Progress, when set, receives a 0–100 percentage while encoding.
type UploadRequest struct {
	Owner    string
	Scope    string
	Category string
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
	Progress func(pct int)
}

// FileService orchestrates both tiers. It is safe for concurrent use across
// distinct item ids; callers must not issue concurrent upload, delete or
// re-upload calls against the same id.
//
// The in-memory read cache is per-instance and never authoritative: it only
// mirrors what the local or remote tier returned last.
type FileService struct {
	remote remote.Store
	cache  cache.Store
	log    logging.Logger

	maxUploadBytes int64
	allowedTypes   map[string]struct{}

	readCache *xsync.Map[string, *models.Item]
	now       func() time.Time
}

type Option func(*FileService)

// WithClock replaces the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *FileService) { s.now = now }
}

// WithUploadLimit overrides the maximum raw upload size.
func WithUploadLimit(maxBytes int64) Option {
	return func(s *FileService) { s.maxUploadBytes = maxBytes }
}

// WithAllowedMIMETypes overrides the accepted content types.
func WithAllowedMIMETypes(types []string) Option {
	return func(s *FileService) { s.setAllowedTypes(types) }
}

func NewFileService(remoteStore remote.Store, cacheStore cache.Store, log logging.Logger, opts ...Option) *FileService {
	s := &FileService{
		remote:         remoteStore,
		cache:          cacheStore,
		log:            log,
		maxUploadBytes: DefaultMaxUploadBytes,
		readCache:      xsync.NewMap[string, *models.Item](),
		now:            time.Now,
	}
	s.setAllowedTypes(DefaultAllowedMIMETypes)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheUsage reports the local tier's usage against its capacity budget.
func (s *FileService) CacheUsage(ctx context.Context) (*cache.UsageInfo, error) {
	return s.cache.Usage(ctx)
}

func (s *FileService) setAllowedTypes(types []string) {
	s.allowedTypes = make(map[string]struct{}, len(types))
	for _, t := range types {
		s.allowedTypes[strings.ToLower(t)] = struct{}{}
	}
}
