package remote

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petfolio/docsync/internal/common"
	"github.com/petfolio/docsync/internal/models"
)

type fakeObject struct {
	body     string
	metadata map[string]string
}

// fakeS3 implements s3API over an in-memory map of key -> object.
type fakeS3 struct {
	objects map[string]fakeObject
	failAll error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]fakeObject{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = fakeObject{body: string(body), metadata: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{
		Body:     io.NopCloser(strings.NewReader(obj.body)),
		Metadata: obj.metadata,
	}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newTestS3Store() (*S3Store, *fakeS3) {
	api := newFakeS3()
	return &S3Store{api: api, bucket: "docs-test"}, api
}

func testS3Item(owner, scope, id string) *models.Item {
	return &models.Item{
		ID:         id,
		Owner:      owner,
		Scope:      scope,
		Category:   "vaccination",
		Name:       id + ".jpg",
		Size:       42,
		MimeType:   "image/jpeg",
		Payload:    "data:image/jpeg;base64,QUJD",
		Checksum:   "deadbeef",
		UploadedAt: time.UnixMilli(1700000000000).UTC(),
	}
}

func TestS3Store_PutGetRoundTrip(t *testing.T) {
	s, api := newTestS3Store()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testS3Item("u1", "petA", "f1")))
	require.Contains(t, api.objects, "docs/u1/petA/f1")

	got, err := s.GetByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	item := got[0]
	assert.Equal(t, "u1", item.Owner)
	assert.Equal(t, "petA", item.Scope)
	assert.Equal(t, "f1", item.ID)
	assert.Equal(t, "f1.jpg", item.Name)
	assert.Equal(t, "vaccination", item.Category)
	assert.Equal(t, int64(42), item.Size)
	assert.Equal(t, "image/jpeg", item.MimeType)
	assert.Equal(t, "data:image/jpeg;base64,QUJD", item.Payload)
	assert.Equal(t, "deadbeef", item.Checksum)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), item.UploadedAt)
	assert.Equal(t, models.OriginRemote, item.Origin)
}

func TestS3Store_GetByOwner_ScopedToOwner(t *testing.T) {
	s, _ := newTestS3Store()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testS3Item("u1", "petA", "f1")))
	require.NoError(t, s.Put(ctx, testS3Item("u1", "petB", "f2")))
	require.NoError(t, s.Put(ctx, testS3Item("u2", "petA", "f3")))

	got, err := s.GetByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, item := range got {
		assert.Equal(t, "u1", item.Owner)
	}
}

func TestS3Store_Delete_FindsAcrossScopes(t *testing.T) {
	s, api := newTestS3Store()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testS3Item("u1", "petA", "f1")))
	require.NoError(t, s.Put(ctx, testS3Item("u1", "petB", "f2")))

	require.NoError(t, s.Delete(ctx, "u1", "f2"))
	assert.Contains(t, api.objects, "docs/u1/petA/f1")
	assert.NotContains(t, api.objects, "docs/u1/petB/f2")

	// Deleting a missing id is a no-op.
	require.NoError(t, s.Delete(ctx, "u1", "absent"))
}

func TestS3Store_FailuresMapToRemoteUnavailable(t *testing.T) {
	s, api := newTestS3Store()
	ctx := context.Background()
	api.failAll = errors.New("connection refused")

	err := s.Put(ctx, testS3Item("u1", "petA", "f1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRemoteUnavailable))

	_, err = s.GetByOwner(ctx, "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRemoteUnavailable))

	err = s.Delete(ctx, "u1", "f1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRemoteUnavailable))
}
