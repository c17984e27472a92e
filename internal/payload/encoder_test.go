package payload

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petfolio/docsync/internal/common"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"one byte", 1},
		{"small", 10 * 1024},
		{"not multiple of three", 10*1024 + 1},
		{"above chunk size", 2*chunkSize + 17},
		{"around inline threshold", 1024*1024 + 3},
	}

	rnd := rand.New(rand.NewSource(42))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := make([]byte, tc.size)
			_, _ = rnd.Read(raw)

			enc, err := Encode(bytes.NewReader(raw), int64(tc.size), "image/jpeg", nil)
			require.NoError(t, err)
			assert.Equal(t, int64(tc.size), enc.Size)
			assert.Equal(t, Checksum(raw), enc.Checksum)

			got, mimeType, err := Decode(enc.Payload)
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", mimeType)
			assert.Equal(t, raw, got)
		})
	}
}

func TestEncode_ProgressMonotonicAndComplete(t *testing.T) {
	raw := make([]byte, 3*chunkSize)
	var reports []int
	_, err := Encode(bytes.NewReader(raw), int64(len(raw)), "application/pdf", func(pct int) {
		reports = append(reports, pct)
	})
	require.NoError(t, err)

	require.NotEmpty(t, reports)
	assert.Equal(t, 0, reports[0])
	assert.Equal(t, 100, reports[len(reports)-1])
	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i], reports[i-1])
	}
}

type failingReader struct {
	n int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n > 0 {
		r.n--
		return len(p), nil
	}
	return 0, io.ErrUnexpectedEOF
}

func TestEncode_ReadFailure(t *testing.T) {
	_, err := Encode(&failingReader{n: 1}, 4*chunkSize, "image/png", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrEncoding))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no prefix", "image/png;base64,AAAA"},
		{"no marker", "data:image/png"},
		{"bad base64", "data:image/png;base64,$$$$"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.payload)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrEncoding))
		})
	}
}

func TestEncodeBytes_MatchesEncode(t *testing.T) {
	raw := []byte("travel certificate")
	enc := EncodeBytes(raw, "application/pdf")

	got, mimeType, err := Decode(enc.Payload)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	assert.Equal(t, "application/pdf", mimeType)
	assert.Equal(t, int64(len(raw)), enc.Size)
}
