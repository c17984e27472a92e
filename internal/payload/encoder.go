// Package payload converts raw document bytes to and from the transportable
// text form stored in both tiers: a data-URI with base64 content, e.g.
//
//	data:application/pdf;base64,JVBERi0xLjQK...
//
// Encoding and decoding are a bijection for any input up to the maximum
// item size.
package payload

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/petfolio/docsync/internal/common"
)

const (
	uriPrefix    = "data:"
	base64Marker = ";base64,"
	chunkSize    = 64 * 1024
)

// Encoded is the result of a successful Encode pass.
type Encoded struct {
	// Payload is the full data-URI string.
	Payload string
	// Checksum is the blake2b-256 hex digest of the raw bytes.
	Checksum string
	// Size is the number of raw bytes actually read from the source.
	Size int64
}

// Encode streams r into a data-URI payload, reporting progress as a 0–100
// percentage through the optional progress callback. sizeHint drives the
// progress arithmetic and may be zero when the length is unknown.
//
// A read failure aborts the encode; no partial payload escapes. The returned
// error matches common.ErrEncoding under errors.Is.
func Encode(r io.Reader, sizeHint int64, mimeType string, progress func(pct int)) (*Encoded, error) {
	var sb strings.Builder
	sb.WriteString(uriPrefix)
	sb.WriteString(mimeType)
	sb.WriteString(base64Marker)

	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	hash, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: init checksum: %w", common.ErrEncoding, err)
	}

	report(progress, 0)

	buf := make([]byte, chunkSize)
	var read int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			read += int64(n)
			if _, werr := enc.Write(buf[:n]); werr != nil {
				return nil, fmt.Errorf("%w: %w", common.ErrEncoding, werr)
			}
			hash.Write(buf[:n])
			if sizeHint > 0 {
				pct := int(read * 100 / sizeHint)
				if pct > 99 {
					pct = 99 // 100 is reported only once the stream is closed
				}
				report(progress, pct)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("%w: reading content: %w", common.ErrEncoding, rerr)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrEncoding, err)
	}

	report(progress, 100)

	return &Encoded{
		Payload:  sb.String(),
		Checksum: hex.EncodeToString(hash.Sum(nil)),
		Size:     read,
	}, nil
}

// EncodeBytes encodes an in-memory buffer. Kept as a convenience for tests
// and tooling that build fixture payloads; the upload path streams through
// Encode instead.
func EncodeBytes(b []byte, mimeType string) *Encoded {
	enc, err := Encode(strings.NewReader(string(b)), int64(len(b)), mimeType, nil)
	if err != nil {
		// strings.Reader cannot fail mid-read.
		panic(err)
	}
	return enc
}

// Decode is the strict inverse of Encode: it returns the raw bytes and the
// mime type embedded in the payload. Malformed payloads match
// common.ErrEncoding under errors.Is.
func Decode(payloadStr string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(payloadStr, uriPrefix)
	if !ok {
		return nil, "", fmt.Errorf("%w: missing %q prefix", common.ErrEncoding, uriPrefix)
	}
	mimeType, data, ok := strings.Cut(rest, base64Marker)
	if !ok {
		return nil, "", fmt.Errorf("%w: missing %q marker", common.ErrEncoding, base64Marker)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", common.ErrEncoding, err)
	}
	return raw, mimeType, nil
}

// Checksum returns the blake2b-256 hex digest of b, matching the digest
// recorded by Encode.
func Checksum(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func report(progress func(int), pct int) {
	if progress != nil {
		progress(pct)
	}
}
