package ftl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

const schema = `
CREATE TABLE query_storage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	type INTEGER NOT NULL,
	status INTEGER NOT NULL,
	domain TEXT NOT NULL,
	client TEXT NOT NULL,
	forward TEXT,
	additional_info TEXT,
	reply_type INTEGER,
	reply_time REAL,
	dnssec INTEGER
);
CREATE VIEW queries AS SELECT * FROM query_storage;
CREATE TABLE network (
	id INTEGER PRIMARY KEY,
	hwaddr TEXT NOT NULL,
	interface TEXT,
	firstSeen INTEGER,
	lastQuery INTEGER,
	numQueries INTEGER,
	macVendor TEXT
);
CREATE TABLE network_addresses (
	network_id INTEGER NOT NULL,
	ip TEXT NOT NULL,
	name TEXT
);
`

type row struct {
	ts     int64
	status int
	domain string
	client string
	info   *string
}

func str(s string) *string { return &s }

// newFixture writes a query log with the given rows and opens it read-only.
func newFixture(t *testing.T, rows []row) *Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pihole-FTL.db")
	rw, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = rw.Exec(schema)
	require.NoError(t, err)
	for _, r := range rows {
		_, err := rw.Exec(
			"INSERT INTO query_storage (timestamp, type, status, domain, client, forward, additional_info) VALUES (?, 1, ?, ?, ?, NULL, ?)",
			r.ts, r.status, r.domain, r.client, r.info,
		)
		require.NoError(t, err)
	}
	require.NoError(t, rw.Close())

	repo, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

var sample = []row{
	{ts: 1000, status: 2, domain: "old.example", client: "10.0.0.1"},
	{ts: 5000, status: 2, domain: "a.example", client: "10.0.0.1"},
	{ts: 5100, status: 1, domain: "ads.example", client: "10.0.0.1", info: str("list-a")},
	{ts: 5200, status: 1, domain: "ads.example", client: "10.0.0.2", info: str("list-a")},
	{ts: 5300, status: 3, domain: "a.example", client: "10.0.0.2"},
	{ts: 5700, status: 9, domain: "track.example", client: "10.0.0.2", info: str("list-b")},
}

func TestMaxTimestamp(t *testing.T) {
	repo := newFixture(t, sample)
	ts, ok, err := repo.MaxTimestamp(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5700), ts)
}

func TestMaxTimestamp_Empty(t *testing.T) {
	repo := newFixture(t, nil)
	_, ok, err := repo.MaxTimestamp(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMaxTimestamp_MissingFile(t *testing.T) {
	repo, err := Open(filepath.Join(t.TempDir(), "absent.db"))
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()

	_, _, err = repo.MaxTimestamp(context.Background())
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	repo := newFixture(t, sample)
	s, err := repo.Summary(context.Background(), 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.TotalQueries)
	assert.Equal(t, int64(3), s.BlockedQueries)
	assert.Equal(t, int64(3), s.UniqueDomains)
	assert.Equal(t, int64(2), s.UniqueClients)
	assert.Equal(t, 60.0, s.BlockedPercentage)
}

func TestSummary_EmptyWindow(t *testing.T) {
	repo := newFixture(t, sample)
	s, err := repo.Summary(context.Background(), 9999)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{}, s)
}

func TestClientSummary(t *testing.T) {
	repo := newFixture(t, sample)
	s, err := repo.ClientSummary(context.Background(), "10.0.0.1", 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.TotalQueries)
	assert.Equal(t, int64(1), s.BlockedQueries)
	assert.Equal(t, 50.0, s.BlockedPercentage)
}

func TestTopDomains(t *testing.T) {
	repo := newFixture(t, sample)
	ctx := context.Background()

	top, err := repo.TopDomains(ctx, 2000, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.DomainCount{{Domain: "a.example", Count: 2}, {Domain: "ads.example", Count: 2}}, top)

	blocked, err := repo.TopBlocked(ctx, 2000, 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.DomainCount{{Domain: "ads.example", Count: 2}, {Domain: "track.example", Count: 1}}, blocked)

	mine, err := repo.ClientTopBlocked(ctx, "10.0.0.1", 2000, 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.DomainCount{{Domain: "ads.example", Count: 1}}, mine)

	none, err := repo.ClientTopDomains(ctx, "10.9.9.9", 2000, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestOverTime(t *testing.T) {
	repo := newFixture(t, sample)
	buckets, err := repo.OverTime(context.Background(), 2000)
	require.NoError(t, err)
	assert.Equal(t, []domain.TimeBucket{
		{Bucket: 4800, Blocked: 2, Allowed: 2},
		{Bucket: 5400, Blocked: 1, Allowed: 0},
	}, buckets)

	client, err := repo.ClientActivity(context.Background(), "10.0.0.2", 2000)
	require.NoError(t, err)
	assert.Equal(t, []domain.TimeBucket{
		{Bucket: 4800, Blocked: 1, Allowed: 1},
		{Bucket: 5400, Blocked: 1, Allowed: 0},
	}, client)
}

func TestHourlyPattern(t *testing.T) {
	repo := newFixture(t, sample)
	cells, err := repo.HourlyPattern(context.Background(), 2000)
	require.NoError(t, err)
	var total int64
	for _, c := range cells {
		assert.GreaterOrEqual(t, c.DayOfWeek, 0)
		assert.LessOrEqual(t, c.DayOfWeek, 6)
		assert.GreaterOrEqual(t, c.Hour, 0)
		assert.LessOrEqual(t, c.Hour, 23)
		total += c.Count
	}
	assert.Equal(t, int64(5), total)
}

func TestBlocklistSources(t *testing.T) {
	repo := newFixture(t, sample)
	src, err := repo.BlocklistSources(context.Background(), 2000)
	require.NoError(t, err)
	assert.Equal(t, []domain.SourceCount{{Source: "list-a", Count: 2}, {Source: "list-b", Count: 1}}, src)
}

func TestQueries(t *testing.T) {
	repo := newFixture(t, sample)
	ctx := context.Background()
	from, to := int64(2000), int64(6000)

	page, err := repo.Queries(ctx, domain.QueryFilter{Page: 1, PerPage: 2, From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int64(3), page.Pages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(5700), page.Items[0].Timestamp)

	page, err = repo.Queries(ctx, domain.QueryFilter{Page: 3, PerPage: 2, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(5000), page.Items[0].Timestamp)

	page, err = repo.Queries(ctx, domain.QueryFilter{Page: 1, PerPage: 50, Status: domain.StatusCached, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a.example", page.Items[0].Domain)

	page, err = repo.Queries(ctx, domain.QueryFilter{Page: 1, PerPage: 50, Domain: "ads", Client: "10.0.0.2", From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestQueries_RequiresRange(t *testing.T) {
	repo := newFixture(t, sample)
	_, err := repo.Queries(context.Background(), domain.QueryFilter{Page: 1, PerPage: 10})
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	repo := newFixture(t, sample)
	hits, err := repo.Search(context.Background(), "example", 5150, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "track.example", hits[0].Domain)
	assert.Equal(t, "a.example", hits[1].Domain)
}

func TestNetworkDevices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pihole-FTL.db")
	rw, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = rw.Exec(schema + `
		INSERT INTO network VALUES (1, 'aa:bb:cc:dd:ee:ff', 'eth0', 10, 200, 5, 'Acme');
		INSERT INTO network VALUES (2, '00:00:00:00:00:00', 'lo', 10, 300, 1, NULL);
		INSERT INTO network VALUES (3, '11:22:33:44:55:66', 'eth0', 10, 100, 2, NULL);
		INSERT INTO network_addresses VALUES (1, '10.0.0.5', 'laptop');
	`)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	repo, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()

	devs, err := repo.NetworkDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 2)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", devs[0].MAC)
	require.NotNil(t, devs[0].IP)
	assert.Equal(t, "10.0.0.5", *devs[0].IP)
	assert.Equal(t, "laptop", *devs[0].Hostname)
	assert.Equal(t, "11:22:33:44:55:66", devs[1].MAC)
	assert.Nil(t, devs[1].IP)
}
