package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/petfolio/docsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "15s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	CacheDBPath          *string         `json:"cache_db_path"`
	CacheCapacityBytes   *int64          `json:"cache_capacity_bytes"`
	InlineThresholdBytes *int64          `json:"inline_threshold_bytes"`
	EvictBatch           *int            `json:"evict_batch"`
	MaxUploadBytes       *int64          `json:"max_upload_bytes"`
	AllowedMIMETypes     []string        `json:"allowed_mime_types"`
	RemoteBackend        *string         `json:"remote_backend"`
	S3Region             *string         `json:"s3_region"`
	S3Bucket             *string         `json:"s3_bucket"`
	S3Endpoint           *string         `json:"s3_endpoint"`
	S3AccessKeyID        *string         `json:"s3_access_key_id"`
	S3SecretKey          *string         `json:"s3_secret_key"`
	DocDBDSN             *string         `json:"docdb_dsn"`
	AuthToken            *string         `json:"auth_token"`
	RemoteOpTimeout      *timex.Duration `json:"remote_op_timeout"`
	LogFile              *string         `json:"log_file"`
}

// parseJson overlays cfg with values loaded from the JSON file at path.
// An empty path means no JSON is loaded. Absent keys leave the defaults
// untouched, which is why every DTO field is a pointer.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	setIf(&cfg.CacheDBPath, jc.CacheDBPath)
	setIf(&cfg.CacheCapacityBytes, jc.CacheCapacityBytes)
	setIf(&cfg.InlineThresholdBytes, jc.InlineThresholdBytes)
	setIf(&cfg.EvictBatch, jc.EvictBatch)
	setIf(&cfg.MaxUploadBytes, jc.MaxUploadBytes)
	if jc.AllowedMIMETypes != nil {
		cfg.AllowedMIMETypes = jc.AllowedMIMETypes
	}
	setIf(&cfg.RemoteBackend, jc.RemoteBackend)
	setIf(&cfg.S3Region, jc.S3Region)
	setIf(&cfg.S3Bucket, jc.S3Bucket)
	setIf(&cfg.S3Endpoint, jc.S3Endpoint)
	setIf(&cfg.S3AccessKeyID, jc.S3AccessKeyID)
	setIf(&cfg.S3SecretKey, jc.S3SecretKey)
	setIf(&cfg.DocDBDSN, jc.DocDBDSN)
	setIf(&cfg.AuthToken, jc.AuthToken)
	if jc.RemoteOpTimeout != nil {
		cfg.RemoteOpTimeout = time.Duration(jc.RemoteOpTimeout.Duration)
	}
	setIf(&cfg.LogFile, jc.LogFile)
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
