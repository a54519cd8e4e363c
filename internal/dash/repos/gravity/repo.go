// Package gravity reads the filter's list database. The only write it
// performs is toggling a domain entry's enabled flag; additions and removals
// go through the filter binary.
package gravity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

type Repository struct {
	ro *sqlx.DB
	rw *sqlx.DB
}

// Open connects to the list database at path with a read-only pool for
// queries and a separate single-connection pool for writes.
func Open(path string) (*Repository, error) {
	ro, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open list database: %w", err)
	}
	rw, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		_ = ro.Close()
		return nil, fmt.Errorf("failed to open list database: %w", err)
	}
	rw.SetMaxOpenConns(1)
	return &Repository{ro: ro, rw: rw}, nil
}

func (r *Repository) Close() error {
	return errors.Join(r.ro.Close(), r.rw.Close())
}

const domainColumns = "id, type, domain, enabled, date_added, date_modified, comment"

// Domains lists entries of one kind, newest first, or every entry grouped
// by type when kind is nil. Wildcard and regex_black share a type code.
func (r *Repository) Domains(ctx context.Context, kind *domain.ListKind) ([]domain.DomainListEntry, error) {
	out := []domain.DomainListEntry{}
	if kind == nil {
		err := r.ro.SelectContext(ctx, &out,
			"SELECT "+domainColumns+" FROM domainlist ORDER BY type, date_added DESC")
		if err != nil {
			return nil, fmt.Errorf("list domains: %w", err)
		}
		return out, nil
	}
	code, ok := kind.GravityType()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedListKind, kind)
	}
	err := r.ro.SelectContext(ctx, &out,
		"SELECT "+domainColumns+" FROM domainlist WHERE type = ? ORDER BY date_added DESC", code)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	return out, nil
}

// DomainByID returns one entry or domain.ErrNotFound.
func (r *Repository) DomainByID(ctx context.Context, id int64) (domain.DomainListEntry, error) {
	var e domain.DomainListEntry
	err := r.ro.GetContext(ctx, &e, "SELECT "+domainColumns+" FROM domainlist WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DomainListEntry{}, fmt.Errorf("domain %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.DomainListEntry{}, fmt.Errorf("get domain: %w", err)
	}
	return e, nil
}

// SetEnabled flips an entry's enabled flag. The filter only notices after a
// list reload.
func (r *Repository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	res, err := r.rw.ExecContext(ctx, "UPDATE domainlist SET enabled = ? WHERE id = ?", enabled, id)
	if err != nil {
		return fmt.Errorf("toggle domain: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("domain %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repository) Adlists(ctx context.Context) ([]domain.Adlist, error) {
	out := []domain.Adlist{}
	err := r.ro.SelectContext(ctx, &out,
		"SELECT id, address, enabled, date_added, comment, number FROM adlist ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list adlists: %w", err)
	}
	return out, nil
}
