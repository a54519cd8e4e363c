package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/haukened/pihole-dash/internal/dash/domain"
	"github.com/haukened/pihole-dash/internal/dash/repos/blockstore"
)

//go:embed migrations/*.sql
var migrations embed.FS

// sqliteStore implements blockstore.Store on the dashboard's own sqlite file.
type sqliteStore struct {
	db *sql.DB
}

// New opens (or creates) the dashboard database at path and migrates it.
// Existing databases created by earlier releases already have both tables;
// the migration only records its version for them.
func New(path string) (blockstore.Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) Insert(ctx context.Context, b domain.TimedBlock) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO timed_blocks (id, domain, created_at, expires_at, active) VALUES (?, ?, ?, ?, ?)",
		b.ID, b.Domain, b.CreatedAt, b.ExpiresAt, b.Active,
	)
	if isPrimaryKeyViolation(err) {
		return fmt.Errorf("timed block %s: %w", b.ID, domain.ErrDuplicateKey)
	}
	return domain.Persistence("insert timed block", err)
}

func (s *sqliteStore) Get(ctx context.Context, id string) (domain.TimedBlock, error) {
	var b domain.TimedBlock
	err := s.db.QueryRowContext(ctx,
		"SELECT id, domain, created_at, expires_at, active FROM timed_blocks WHERE id = ?", id,
	).Scan(&b.ID, &b.Domain, &b.CreatedAt, &b.ExpiresAt, &b.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TimedBlock{}, fmt.Errorf("timed block %s: %w", id, domain.ErrNotFound)
	}
	return b, domain.Persistence("get timed block", err)
}

func (s *sqliteStore) ListActive(ctx context.Context) ([]domain.TimedBlock, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, domain, created_at, expires_at, active FROM timed_blocks WHERE active = 1",
	)
	if err != nil {
		return nil, domain.Persistence("list active timed blocks", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.TimedBlock
	for rows.Next() {
		var b domain.TimedBlock
		if err := rows.Scan(&b.ID, &b.Domain, &b.CreatedAt, &b.ExpiresAt, &b.Active); err != nil {
			return nil, domain.Persistence("scan timed block", err)
		}
		out = append(out, b)
	}
	return out, domain.Persistence("list active timed blocks", rows.Err())
}

func (s *sqliteStore) Deactivate(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE timed_blocks SET active = 0 WHERE id = ?", id)
	return domain.Persistence("deactivate timed block", err)
}

func (s *sqliteStore) ListNicknames(ctx context.Context) (map[string]domain.DeviceNickname, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT mac, nickname, icon FROM device_nicknames")
	if err != nil {
		return nil, domain.Persistence("list nicknames", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]domain.DeviceNickname)
	for rows.Next() {
		var n domain.DeviceNickname
		var icon sql.NullString
		if err := rows.Scan(&n.MAC, &n.Nickname, &icon); err != nil {
			return nil, domain.Persistence("scan nickname", err)
		}
		if icon.Valid {
			n.Icon = &icon.String
		}
		out[n.MAC] = n
	}
	return out, domain.Persistence("list nicknames", rows.Err())
}

func (s *sqliteStore) UpsertNickname(ctx context.Context, n domain.DeviceNickname) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO device_nicknames (mac, nickname, icon)
		VALUES (?, ?, ?)
		ON CONFLICT(mac) DO UPDATE SET nickname = excluded.nickname, icon = excluded.icon`,
		n.MAC, n.Nickname, n.Icon,
	)
	return domain.Persistence("upsert nickname", err)
}

func isPrimaryKeyViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
}

var _ blockstore.Store = (*sqliteStore)(nil)
