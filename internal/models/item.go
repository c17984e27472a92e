// Package models defines the document item types shared by the local cache
// tier, the remote store adapters and the sync service.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petfolio/docsync/internal/common"
)

// Origin records which tier currently holds the authoritative copy of an item.
type Origin string

const (
	// OriginRemote means the remote tier holds the canonical copy.
	OriginRemote Origin = "remote"
	// OriginLocalOnly means a remote write failed and the item exists solely
	// in the local cache tier.
	OriginLocalOnly Origin = "local-only"
)

// Item is one uploaded document and its provenance metadata.
//
// The identity triple (Owner, Scope, ID) is the sole addressing key for both
// tiers. Payload and Size are immutable once created; replacement happens via
// delete-then-create with a fresh ID.
type Item struct {
	// ID is unique within (Owner, Scope); generated at upload time.
	ID string

	// Owner is the account the item belongs to. Immutable.
	Owner string

	// Scope is the secondary partition key (e.g. which pet profile the
	// document is filed under). Fixed at creation.
	Scope string

	// Category is a free-form classification tag, not validated here.
	Category string

	// Name is the original file name.
	Name string

	// Size is the byte count of the raw content, before encoding.
	Size int64

	// MimeType is the declared content type of the raw bytes.
	MimeType string

	// Payload is the encoded transportable form of the content. Empty when
	// PayloadOmitted is set; the remote tier still holds the full copy then.
	Payload string

	// PayloadOmitted marks items whose payload exceeded the local-cache
	// inline threshold and was stored as metadata only.
	PayloadOmitted bool

	// Checksum is the hex digest of the raw bytes, for diagnostics.
	Checksum string

	// UploadedAt is the creation timestamp in UTC. It is the only ordering
	// and eviction key.
	UploadedAt time.Time

	// Origin tags the tier holding the authoritative copy.
	Origin Origin
}

// StorageKey flattens the identity triple into the single string key used by
// the local cache tier for storage addressing.
func (i *Item) StorageKey() string {
	return StorageKey(i.Owner, i.Scope, i.ID)
}

func StorageKey(owner, scope, id string) string {
	return common.LocalKeyPrefix + owner + "_" + scope + "_" + id
}

// Clone returns a shallow copy, so cached items can be handed out without
// aliasing the caller's value.
func (i *Item) Clone() *Item {
	c := *i
	return &c
}

var nameSanitizer = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName reduces an original file name to a token safe to embed in an
// item ID. Never returns an empty string.
func SanitizeName(name string) string {
	s := nameSanitizer.ReplaceAllString(name, "_")
	s = strings.Trim(s, "_")
	if len(s) > 64 {
		s = s[:64]
	}
	if s == "" {
		s = "file"
	}
	return s
}

// NewID builds a collision-resistant item ID from the upload time, the
// sanitized original name and a short random suffix. Collisions are
// improbable, not guaranteed impossible; uploads are not deduplicated.
func NewID(now time.Time, name string) string {
	return fmt.Sprintf("%d_%s_%s", now.UnixMilli(), SanitizeName(name), uuid.NewString()[:8])
}
