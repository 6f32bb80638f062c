package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/projectkeeper/project-keeper/config"
	"github.com/projectkeeper/project-keeper/internal/blobstore"
	"github.com/projectkeeper/project-keeper/internal/drafts"
	"github.com/projectkeeper/project-keeper/internal/projects/repository"
	"github.com/projectkeeper/project-keeper/internal/storage/postgres"
	"github.com/projectkeeper/project-keeper/internal/supabase"
)

// Stores holds the backends selected by configuration.
type Stores struct {
	Records repository.Store
	Blobs   blobstore.Store
	Drafts  drafts.Store

	// LocalBlobDir is set when blobs are kept on disk and must be served.
	LocalBlobDir string

	sweeper *drafts.Sweeper
	closers []func() error
}

// OpenStores builds the Record Store, Blob Store and draft store. Close
// releases whatever was opened.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	s := &Stores{}
	if err := s.open(ctx, cfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stores) open(ctx context.Context, cfg *config.Config) error {
	var sb *supabase.Client
	if cfg.UsesSupabase() {
		c, err := supabase.New(cfg.Supabase.URL, cfg.Supabase.AnonKey,
			supabase.WithRateLimit(cfg.Supabase.RateLimit, cfg.Supabase.Burst))
		if err != nil {
			return err
		}
		sb = c
	}

	switch cfg.Store.Backend {
	case config.BackendSupabase:
		s.Records = repository.NewPostgrestStore(sb)
	case config.BackendPostgres:
		db, err := postgres.NewConnection(ctx, cfg.Store.DSN)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, db.Close)
		s.Records = repository.NewPostgresStore(db)
	case config.BackendSQLite:
		db, err := repository.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			s.closers = append(s.closers, sqlDB.Close)
		}
		s.Records = repository.NewGormStore(db)
	default:
		return fmt.Errorf("unknown record store %q", cfg.Store.Backend)
	}

	switch cfg.Blob.Backend {
	case config.BackendSupabase:
		s.Blobs = blobstore.NewSupabaseStore(sb, cfg.Supabase.Bucket)
	case config.BackendS3:
		st, err := blobstore.NewS3Store(ctx, blobstore.S3Config{
			Bucket:        cfg.Blob.S3Bucket,
			Region:        cfg.Blob.S3Region,
			Endpoint:      cfg.Blob.S3Endpoint,
			PublicBaseURL: cfg.Blob.S3PublicBaseURL,
		})
		if err != nil {
			return err
		}
		s.Blobs = st
	case config.BackendLocal:
		st, err := blobstore.NewLocalStore(cfg.Blob.LocalDir, cfg.Server.PublicBaseURL+LocalFilesPath)
		if err != nil {
			return err
		}
		s.Blobs = st
		s.LocalBlobDir = st.Dir()
	default:
		return fmt.Errorf("unknown blob store %q", cfg.Blob.Backend)
	}

	ttl := time.Duration(cfg.Drafts.TTLMinutes) * time.Minute
	if cfg.Drafts.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Drafts.RedisAddr,
			Password: cfg.Drafts.RedisPassword,
			DB:       cfg.Drafts.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return fmt.Errorf("redis ping: %w", err)
		}
		s.closers = append(s.closers, rdb.Close)
		s.Drafts = drafts.NewRedisStore(rdb, ttl)
		log.Printf("Drafts stored in redis at %s", cfg.Drafts.RedisAddr)
		return nil
	}

	mem := drafts.NewMemoryStore(ttl)
	sweeper, err := drafts.NewSweeper(mem, cfg.Drafts.SweepCron)
	if err != nil {
		return fmt.Errorf("draft sweep schedule: %w", err)
	}
	sweeper.Start()
	s.sweeper = sweeper
	s.Drafts = mem
	return nil
}

func (s *Stores) Close() {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Printf("[warn] operation=stores.close error=%v", err)
		}
	}
}
