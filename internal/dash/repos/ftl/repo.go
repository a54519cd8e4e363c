// Package ftl reads the filter's query log database. It never writes.
//
// Every windowed method takes the lower bound "since" in unix seconds and
// counts rows strictly after it; callers anchor windows to the reference
// clock rather than to wall time.
package ftl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

// BucketSeconds is the width of the over-time buckets.
const BucketSeconds = 600

// sourceLimit caps the blocklist effectiveness breakdown.
const sourceLimit = 20

// Repository is a read-only handle on the query log.
type Repository struct {
	db *sqlx.DB
}

// Open connects to the query log at path in read-only mode.
func Open(path string) (*Repository, error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open query log: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

var blocked = domain.SQLList(domain.BlockedStatuses)

// MaxTimestamp returns the newest query timestamp. ok is false when the log is empty.
func (r *Repository) MaxTimestamp(ctx context.Context) (ts int64, ok bool, err error) {
	var v sql.NullInt64
	if err := r.db.GetContext(ctx, &v, "SELECT MAX(timestamp) FROM query_storage"); err != nil {
		return 0, false, fmt.Errorf("max timestamp: %w", err)
	}
	if !v.Valid || v.Int64 == 0 {
		return 0, false, nil
	}
	return v.Int64, true, nil
}

// Summary aggregates every query after since.
func (r *Repository) Summary(ctx context.Context, since int64) (domain.Summary, error) {
	var s domain.Summary
	err := r.db.GetContext(ctx, &s, `
		SELECT
			COUNT(*) AS total_queries,
			COALESCE(SUM(CASE WHEN status IN `+blocked+` THEN 1 ELSE 0 END), 0) AS blocked_queries,
			COUNT(DISTINCT domain) AS unique_domains,
			COUNT(DISTINCT client) AS unique_clients
		FROM queries
		WHERE timestamp > ?`, since)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("summary: %w", err)
	}
	return s.WithPercentage(), nil
}

// ClientSummary aggregates one client's queries after since.
func (r *Repository) ClientSummary(ctx context.Context, ip string, since int64) (domain.Summary, error) {
	var s domain.Summary
	err := r.db.GetContext(ctx, &s, `
		SELECT
			COUNT(*) AS total_queries,
			COALESCE(SUM(CASE WHEN status IN `+blocked+` THEN 1 ELSE 0 END), 0) AS blocked_queries,
			COUNT(DISTINCT domain) AS unique_domains
		FROM queries
		WHERE timestamp > ? AND client = ?`, since, ip)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("client summary: %w", err)
	}
	return s.WithPercentage(), nil
}

func (r *Repository) TopDomains(ctx context.Context, since int64, limit int) ([]domain.DomainCount, error) {
	return r.topDomains(ctx, since, "", false, limit)
}

func (r *Repository) TopBlocked(ctx context.Context, since int64, limit int) ([]domain.DomainCount, error) {
	return r.topDomains(ctx, since, "", true, limit)
}

func (r *Repository) ClientTopDomains(ctx context.Context, ip string, since int64, limit int) ([]domain.DomainCount, error) {
	return r.topDomains(ctx, since, ip, false, limit)
}

func (r *Repository) ClientTopBlocked(ctx context.Context, ip string, since int64, limit int) ([]domain.DomainCount, error) {
	return r.topDomains(ctx, since, ip, true, limit)
}

func (r *Repository) topDomains(ctx context.Context, since int64, client string, blockedOnly bool, limit int) ([]domain.DomainCount, error) {
	conds := []string{"timestamp > ?"}
	args := []any{since}
	if client != "" {
		conds = append(conds, "client = ?")
		args = append(args, client)
	}
	if blockedOnly {
		conds = append(conds, "status IN "+blocked)
	}
	args = append(args, limit)

	out := []domain.DomainCount{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT domain, COUNT(*) AS count
		FROM queries
		WHERE `+strings.Join(conds, " AND ")+`
		GROUP BY domain
		ORDER BY count DESC, domain
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("top domains: %w", err)
	}
	return out, nil
}

// OverTime buckets queries after since into BucketSeconds-wide slots.
func (r *Repository) OverTime(ctx context.Context, since int64) ([]domain.TimeBucket, error) {
	return r.overTime(ctx, since, "")
}

// ClientActivity is OverTime restricted to one client.
func (r *Repository) ClientActivity(ctx context.Context, ip string, since int64) ([]domain.TimeBucket, error) {
	return r.overTime(ctx, since, ip)
}

func (r *Repository) overTime(ctx context.Context, since int64, client string) ([]domain.TimeBucket, error) {
	where := "timestamp > ?"
	args := []any{BucketSeconds, BucketSeconds, since}
	if client != "" {
		where += " AND client = ?"
		args = append(args, client)
	}
	out := []domain.TimeBucket{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT
			(timestamp / ?) * ? AS bucket,
			SUM(CASE WHEN status IN `+blocked+` THEN 1 ELSE 0 END) AS blocked,
			SUM(CASE WHEN status NOT IN `+blocked+` THEN 1 ELSE 0 END) AS allowed
		FROM queries
		WHERE `+where+`
		GROUP BY bucket
		ORDER BY bucket`, args...)
	if err != nil {
		return nil, fmt.Errorf("over time: %w", err)
	}
	return out, nil
}

// HourlyPattern counts queries after since per local day-of-week and hour.
func (r *Repository) HourlyPattern(ctx context.Context, since int64) ([]domain.HourlyCount, error) {
	out := []domain.HourlyCount{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT
			CAST(strftime('%w', timestamp, 'unixepoch', 'localtime') AS INTEGER) AS day_of_week,
			CAST(strftime('%H', timestamp, 'unixepoch', 'localtime') AS INTEGER) AS hour,
			COUNT(*) AS count
		FROM queries
		WHERE timestamp > ?
		GROUP BY day_of_week, hour
		ORDER BY day_of_week, hour`, since)
	if err != nil {
		return nil, fmt.Errorf("hourly pattern: %w", err)
	}
	return out, nil
}

// BlocklistSources counts blocked queries after since by the list that blocked them.
func (r *Repository) BlocklistSources(ctx context.Context, since int64) ([]domain.SourceCount, error) {
	out := []domain.SourceCount{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT
			COALESCE(additional_info, 'unknown') AS source,
			COUNT(*) AS count
		FROM queries
		WHERE timestamp > ? AND status IN `+blocked+`
			AND additional_info IS NOT NULL AND additional_info != ''
		GROUP BY source
		ORDER BY count DESC
		LIMIT ?`, since, sourceLimit)
	if err != nil {
		return nil, fmt.Errorf("blocklist sources: %w", err)
	}
	return out, nil
}

// Queries returns one page of the log, newest first. From and To must be set.
func (r *Repository) Queries(ctx context.Context, f domain.QueryFilter) (domain.QueryPage, error) {
	if f.From == nil || f.To == nil {
		return domain.QueryPage{}, errors.New("queries: time range is required")
	}
	conds := []string{"timestamp >= ?", "timestamp <= ?"}
	args := []any{*f.From, *f.To}
	if f.Domain != "" {
		conds = append(conds, "domain LIKE ?")
		args = append(args, "%"+f.Domain+"%")
	}
	if f.Client != "" {
		conds = append(conds, "client = ?")
		args = append(args, f.Client)
	}
	if codes := f.Status.Codes(); codes != nil {
		conds = append(conds, "status IN "+domain.SQLList(codes))
	}
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM queries WHERE "+where, args...); err != nil {
		return domain.QueryPage{}, fmt.Errorf("count queries: %w", err)
	}

	offset := (f.Page - 1) * f.PerPage
	var items []domain.QueryLogEntry
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, timestamp, type, status, domain, client, forward, reply_type, reply_time, dnssec
		FROM queries
		WHERE `+where+`
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?`, append(args, f.PerPage, offset)...)
	if err != nil {
		return domain.QueryPage{}, fmt.Errorf("list queries: %w", err)
	}
	return domain.NewQueryPage(items, total, f.Page, f.PerPage), nil
}

// Search returns up to limit queries after since whose domain contains q.
func (r *Repository) Search(ctx context.Context, q string, since int64, limit int) ([]domain.QueryLogEntry, error) {
	out := []domain.QueryLogEntry{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, timestamp, type, status, domain, client, forward
		FROM queries
		WHERE timestamp > ? AND domain LIKE ?
		ORDER BY timestamp DESC
		LIMIT ?`, since, "%"+q+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search queries: %w", err)
	}
	return out, nil
}

// NetworkDevices lists known hardware addresses joined with their IPs,
// most recently active first.
func (r *Repository) NetworkDevices(ctx context.Context) ([]domain.NetworkDevice, error) {
	out := []domain.NetworkDevice{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT
			n.id,
			n.hwaddr AS mac,
			n.interface,
			n.firstSeen AS first_seen,
			n.lastQuery AS last_query,
			n.numQueries AS num_queries,
			n.macVendor AS vendor,
			na.ip,
			na.name AS hostname
		FROM network n
		LEFT JOIN network_addresses na ON na.network_id = n.id
		WHERE n.hwaddr != '00:00:00:00:00:00'
		ORDER BY n.lastQuery DESC`)
	if err != nil {
		return nil, fmt.Errorf("network devices: %w", err)
	}
	return out, nil
}
