package app

import (
	"fmt"
	"log"
	"strings"

	"codecanvas/internal/gateway/config"
	"codecanvas/internal/gateway/repository/snapshot"
)

// initSnapshotStore picks the snapshot backend: S3 when fully configured,
// else Postgres when a DSN is set, else in-memory. Whichever wins is
// wrapped in the read-through cache.
func initSnapshotStore(cfg *config.Config) (snapshot.Store, error) {
	origin, label, err := chooseOrigin(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("snapshot store: %s", label)
	return snapshot.NewCachedStore(origin, snapshot.DefaultCacheConfig()), nil
}

func chooseOrigin(cfg *config.Config) (snapshot.Store, string, error) {
	if cfg.Snapshot.CanUseS3() {
		s3Store, err := snapshot.NewS3Store(snapshot.S3Config{
			Endpoint:  cfg.Snapshot.Endpoint,
			Region:    cfg.Snapshot.Region,
			AccessKey: cfg.Snapshot.AccessKey,
			SecretKey: cfg.Snapshot.SecretKey,
			Bucket:    cfg.Snapshot.Bucket,
			UseSSL:    cfg.Snapshot.UseSSL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize snapshot s3 store: %w", err)
		}
		return s3Store, fmt.Sprintf("s3 bucket=%s endpoint=%s", cfg.Snapshot.Bucket, cfg.Snapshot.Endpoint), nil
	}
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		pgStore, err := snapshot.OpenPostgres(dsn)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open snapshot db: %w", err)
		}
		return pgStore, "postgres", nil
	}
	if cfg.Snapshot.Enabled {
		log.Printf("snapshot store: s3 config incomplete, using in-memory fallback")
	}
	return snapshot.NewMemoryStore(), "in-memory", nil
}
