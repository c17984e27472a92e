package config

import "time"

// Config holds runtime settings for the docsync CLI.
//
// Units: capacity and size fields are bytes; RemoteOpTimeout is a
// time.Duration (e.g., 15*time.Second).
type Config struct {
	// Local cache tier.
	CacheDBPath          string
	CacheCapacityBytes   int64
	InlineThresholdBytes int64
	EvictBatch           int

	// Upload policy.
	MaxUploadBytes   int64
	AllowedMIMETypes []string

	// Remote tier. RemoteBackend selects the adapter: "s3" or "docdb".
	RemoteBackend   string
	S3Region        string
	S3Bucket        string
	S3Endpoint      string
	S3AccessKeyID   string
	S3SecretKey     string
	DocDBDSN        string
	AuthToken       string
	RemoteOpTimeout time.Duration

	LogFile string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.CacheDBPath = "data/docsync.db"
	c.CacheCapacityBytes = 10 << 20
	c.InlineThresholdBytes = 1 << 20
	c.EvictBatch = 3
	c.MaxUploadBytes = 5 << 20
	c.AllowedMIMETypes = []string{"image/jpeg", "image/png", "application/pdf"}
	c.RemoteBackend = "s3"
	c.S3Region = "us-east-1"
	c.S3Bucket = "docsync-documents"
	c.RemoteOpTimeout = 15 * time.Second
	c.LogFile = "logs/docsync.log"
}

// Load constructs a Config, applies defaults, then overlays values from the
// JSON file at path when path is non-empty. Flag-level overrides are applied
// afterwards by the CLI layer, so later sources take precedence over earlier
// ones.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
