package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petfolio/docsync/internal/cache"
	"github.com/petfolio/docsync/internal/config"
	"github.com/petfolio/docsync/internal/filex"
	"github.com/petfolio/docsync/internal/logging"
	"github.com/petfolio/docsync/internal/remote"
	"github.com/petfolio/docsync/internal/services"
)

// app is the wired two-tier stack a subcommand operates on.
type app struct {
	cfg     *config.Config
	log     logging.Logger
	svc     *services.FileService
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// opCtx bounds one remote-touching operation with the configured timeout.
func (a *app) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.RemoteOpTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.RemoteOpTimeout)
}

// buildApp assembles config, logger, local cache, remote store and the file
// service. Flag values override what the config file provided.
func (o *options) buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.backend != "" {
		cfg.RemoteBackend = o.backend
	}
	if o.token != "" {
		cfg.AuthToken = o.token
	}

	if _, err := filex.EnsureParentDir(cfg.LogFile); err != nil {
		return nil, err
	}
	log := logging.NewRotatingLogger(cfg.LogFile, slog.LevelInfo)

	a := &app{cfg: cfg, log: log}

	if _, err := filex.EnsureParentDir(cfg.CacheDBPath); err != nil {
		return nil, err
	}
	db, err := cache.Open(ctx, cfg.CacheDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening local cache: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	cacheStore := cache.NewSQLiteStore(db, cache.Options{
		CapacityBytes:   cfg.CacheCapacityBytes,
		InlineThreshold: cfg.InlineThresholdBytes,
		EvictBatch:      cfg.EvictBatch,
	})

	remoteStore, err := o.buildRemote(ctx, a, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.svc = services.NewFileService(remoteStore, cacheStore, log,
		services.WithUploadLimit(cfg.MaxUploadBytes),
		services.WithAllowedMIMETypes(cfg.AllowedMIMETypes),
	)
	return a, nil
}

func (o *options) buildRemote(ctx context.Context, a *app, cfg *config.Config) (remote.Store, error) {
	switch cfg.RemoteBackend {
	case "s3":
		return remote.NewS3Store(ctx, remote.S3Config{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			BaseEndpoint: cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKeyID,
			SecretKey:    cfg.S3SecretKey,
		})
	case "docdb":
		token := cfg.AuthToken
		if token == "" {
			var err error
			if token, err = promptToken(); err != nil {
				return nil, err
			}
		}
		store, err := remote.NewDocDBStore(remote.DocDBConfig{DSN: cfg.DocDBDSN, AuthToken: token})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			// Remote may be down right now; every operation degrades to the
			// local tier, so this is not fatal.
			a.log.Warn(ctx, "could not verify remote schema", "error", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.RemoteBackend)
	}
}

// promptToken reads the bearer token without echo when stdin is a terminal.
// An empty token is allowed and means anonymous access.
func promptToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprint(os.Stderr, "Auth token (leave empty for anonymous): ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return string(b), nil
}

func printWarnings(cmd *cobra.Command, warnings []error) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
	}
}
