package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/klauspost/compress/zstd"
)

// PageCacheRepository stores fetched result-page text keyed by URL.
type PageCacheRepository interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Put(ctx context.Context, url, text string) error
	Prune(ctx context.Context) (int64, error)
}

type pageCacheRepo struct {
	db     *sql.DB
	ttl    time.Duration
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	now    func() time.Time
	logger *slog.Logger
}

// NewPageCacheRepository returns a zstd-compressed page cache; entries older than ttl
// are misses. A non-positive ttl never expires entries.
func NewPageCacheRepository(db *sql.DB, ttl time.Duration, logger *slog.Logger) (PageCacheRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &pageCacheRepo{
		db:     db,
		ttl:    ttl,
		enc:    enc,
		dec:    dec,
		now:    time.Now,
		logger: logger,
	}, nil
}

func (r *pageCacheRepo) Get(ctx context.Context, url string) (string, bool, error) {
	var (
		body      []byte
		fetchedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM page_cache WHERE url = ?`, url,
	).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("failed to read page cache", "url", url, "error", err)
		return "", false, err
	}
	if r.expired(fetchedAt) {
		return "", false, nil
	}

	raw, err := r.dec.DecodeAll(body, nil)
	if err != nil {
		return "", false, fmt.Errorf("decompress page %s: %w", url, err)
	}
	return string(raw), true, nil
}

func (r *pageCacheRepo) Put(ctx context.Context, url, text string) error {
	body := r.enc.EncodeAll([]byte(text), nil)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO page_cache (url, body, raw_len, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET body = excluded.body, raw_len = excluded.raw_len, fetched_at = excluded.fetched_at
	`, url, body, len(text), r.now().Unix())
	if err != nil {
		r.logger.Error("failed to write page cache", "url", url, "error", err)
		return err
	}
	r.logger.Debug("page cached", "url", url, "raw_len", len(text), "stored_len", len(body))
	return nil
}

// Prune deletes expired entries and returns how many were removed.
func (r *pageCacheRepo) Prune(ctx context.Context) (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}
	cutoff := r.now().Add(-r.ttl).Unix()
	res, err := r.db.ExecContext(ctx, `DELETE FROM page_cache WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.Info("pruned page cache", "removed", n)
	}
	return n, nil
}

func (r *pageCacheRepo) expired(fetchedAt int64) bool {
	if r.ttl <= 0 {
		return false
	}
	return r.now().Sub(time.Unix(fetchedAt, 0)) > r.ttl
}
