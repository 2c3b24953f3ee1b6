// Package analytics is the privacy-conscious visitor store behind the admin
// dashboard. Addresses are hashed with a per-process salt before they are
// written and rows older than the retention window are purged.
package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// VisitorMetric is one tracked page view.
type VisitorMetric struct {
	ID        int       `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Country   string    `json:"country,omitempty"`
}

// PathStat counts views of one path.
type PathStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// Stats is the dashboard summary.
type Stats struct {
	TotalVisitors    int64           `json:"total_visitors"`
	UniqueVisitors   int64           `json:"unique_visitors"`
	VisitorsToday    int64           `json:"visitors_today"`
	VisitorsThisWeek int64           `json:"visitors_this_week"`
	TopPaths         []PathStat      `json:"top_paths"`
	RecentVisitors   []VisitorMetric `json:"recent_visitors"`
}

// Store wraps the sqlite database.
type Store struct {
	db     *sql.DB
	salt   string
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock sets the time source used for new rows and windows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSalt fixes the hashing salt. Without it a random salt is generated, so
// hashes are stable only for the life of the process.
func WithSalt(salt string) Option {
	return func(s *Store) { s.salt = salt }
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("analytics: database path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	// sqlite serialises writers; one connection also keeps :memory: coherent.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.salt == "" {
		salt, err := RandomToken()
		if err != nil {
			db.Close()
			return nil, err
		}
		s.salt = salt
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply analytics schema: %w", err)
	}
	s.logger.Info("privacy-conscious visitor tracking initialized")
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// RandomToken returns 32 random bytes hex encoded.
func RandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashIP returns the salted, truncated hash stored in place of an address.
func (s *Store) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// stamp is the current time as stored: UTC, whole seconds, so the text
// encoding sqlite compares stays fixed width.
func (s *Store) stamp() time.Time { return s.now().UTC().Truncate(time.Second) }

// Track records one page view.
func (s *Store) Track(ctx context.Context, ip, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, s.HashIP(ip), userAgent, path, s.stamp())
	if err != nil {
		return fmt.Errorf("record visitor: %w", err)
	}
	return nil
}

// Cleanup deletes rows older than retention and returns how many went.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.stamp().Add(-retention)
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info("privacy cleanup removed old visitor records",
			zap.Int64("rows", n), zap.Duration("retention", retention))
	}
	return n, nil
}

// Stats builds the dashboard summary.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	now := s.stamp()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{dayStart}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{now.Add(-7 * 24 * time.Hour)}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count visitors: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views
		FROM visitors
		GROUP BY path
		ORDER BY views DESC, path ASC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("top paths: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ps PathStat
		if err := rows.Scan(&ps.Path, &ps.Views); err != nil {
			return nil, fmt.Errorf("scan path stat: %w", err)
		}
		stats.TopPaths = append(stats.TopPaths, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top paths: %w", err)
	}

	stats.RecentVisitors, err = s.Recent(ctx, 50)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Recent returns the latest limit visitors, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]VisitorMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp, COALESCE(country, '')
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent visitors: %w", err)
	}
	defer rows.Close()

	var visitors []VisitorMetric
	for rows.Next() {
		var v VisitorMetric
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Timestamp, &v.Country); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}
