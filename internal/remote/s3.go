package remote

import (
	"context"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/petfolio/docsync/internal/models"
)

// Seams for tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// s3API is the subset of the S3 client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds the settings of the object-store variant. BaseEndpoint is
// optional and points at S3-compatible deployments (e.g. MinIO).
type S3Config struct {
	Region       string
	Bucket       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Store keeps each item as one object at docs/<owner>/<scope>/<id>, the
// encoded payload as the object body and provenance in object metadata.
type S3Store struct {
	api    s3API
	bucket string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, unavailable("configuring s3 client", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{api: client, bucket: cfg.Bucket}, nil
}

func objectKey(owner, scope, id string) string {
	return path.Join("docs", owner, scope, id)
}

func ownerPrefix(owner string) string {
	return "docs/" + owner + "/"
}

func (s *S3Store) Put(ctx context.Context, item *models.Item) error {
	metadata := map[string]string{
		"name":        item.Name,
		"category":    item.Category,
		"size":        strconv.FormatInt(item.Size, 10),
		"mime-type":   item.MimeType,
		"checksum":    item.Checksum,
		"uploaded-at": strconv.FormatInt(item.UploadedAt.UnixMilli(), 10),
	}

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(item.Owner, item.Scope, item.ID)),
		Body:        strings.NewReader(item.Payload),
		ContentType: aws.String("text/plain; charset=utf-8"),
		Metadata:    metadata,
	})
	if err != nil {
		return unavailable("putting object", err)
	}
	return nil
}

func (s *S3Store) GetByOwner(ctx context.Context, owner string) ([]*models.Item, error) {
	keys, err := s.listKeys(ctx, owner)
	if err != nil {
		return nil, err
	}

	var result []*models.Item
	for _, key := range keys {
		item, err := s.getObject(ctx, key)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].UploadedAt.Equal(result[j].UploadedAt) {
			return result[i].UploadedAt.Before(result[j].UploadedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *S3Store) Delete(ctx context.Context, owner, id string) error {
	keys, err := s.listKeys(ctx, owner)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if path.Base(key) != id {
			continue
		}
		_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return unavailable("deleting object", err)
		}
	}
	return nil
}

func (s *S3Store) listKeys(ctx context.Context, owner string) ([]string, error) {
	var keys []string
	var continuation *string

	for {
		out, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(ownerPrefix(owner)),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, unavailable("listing objects", err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}
	return keys, nil
}

func (s *S3Store) getObject(ctx context.Context, key string) (*models.Item, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, unavailable("getting object", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, unavailable("reading object body", err)
	}

	// docs/<owner>/<scope>/<id>
	parts := strings.SplitN(key, "/", 4)
	item := &models.Item{
		Payload: string(body),
		Origin:  models.OriginRemote,
	}
	if len(parts) == 4 {
		item.Owner, item.Scope, item.ID = parts[1], parts[2], parts[3]
	}

	md := out.Metadata
	item.Name = md["name"]
	item.Category = md["category"]
	item.MimeType = md["mime-type"]
	item.Checksum = md["checksum"]
	if v, err := strconv.ParseInt(md["size"], 10, 64); err == nil {
		item.Size = v
	}
	if v, err := strconv.ParseInt(md["uploaded-at"], 10, 64); err == nil {
		item.UploadedAt = time.UnixMilli(v).UTC()
	}
	return item, nil
}
