package devices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

type fakeNetwork struct {
	devices []domain.NetworkDevice
	err     error
	lastIP  string
	since   int64
	limit   int
}

func (f *fakeNetwork) NetworkDevices(context.Context) ([]domain.NetworkDevice, error) {
	out := make([]domain.NetworkDevice, len(f.devices))
	copy(out, f.devices)
	return out, f.err
}

func (f *fakeNetwork) ClientSummary(_ context.Context, ip string, since int64) (domain.Summary, error) {
	f.lastIP, f.since = ip, since
	return domain.Summary{TotalQueries: 4, BlockedQueries: 1, BlockedPercentage: 25}, nil
}

func (f *fakeNetwork) ClientActivity(_ context.Context, ip string, since int64) ([]domain.TimeBucket, error) {
	f.lastIP, f.since = ip, since
	return []domain.TimeBucket{{Bucket: 600, Blocked: 1}}, nil
}

func (f *fakeNetwork) ClientTopDomains(_ context.Context, ip string, since int64, limit int) ([]domain.DomainCount, error) {
	f.lastIP, f.since, f.limit = ip, since, limit
	return []domain.DomainCount{{Domain: "a.example", Count: 3}}, nil
}

func (f *fakeNetwork) ClientTopBlocked(_ context.Context, ip string, since int64, limit int) ([]domain.DomainCount, error) {
	f.lastIP, f.since, f.limit = ip, since, limit
	return []domain.DomainCount{{Domain: "ads.example", Count: 1}}, nil
}

type fakeNicknames struct {
	names map[string]domain.DeviceNickname
	err   error
}

func (f *fakeNicknames) ListNicknames(context.Context) (map[string]domain.DeviceNickname, error) {
	return f.names, f.err
}

func (f *fakeNicknames) UpsertNickname(_ context.Context, n domain.DeviceNickname) error {
	if f.err != nil {
		return f.err
	}
	if f.names == nil {
		f.names = map[string]domain.DeviceNickname{}
	}
	f.names[n.MAC] = n
	return nil
}

type fixedRef int64

func (f fixedRef) Since(_ context.Context, d time.Duration) int64 { return int64(f) - int64(d/time.Second) }

func strp(s string) *string { return &s }

func newFixture() (*Service, *fakeNetwork, *fakeNicknames) {
	net := &fakeNetwork{devices: []domain.NetworkDevice{
		{ID: 1, MAC: "aa:aa", IP: strp("10.0.0.5")},
		{ID: 2, MAC: "bb:bb"},
	}}
	nicks := &fakeNicknames{names: map[string]domain.DeviceNickname{
		"aa:aa": {MAC: "aa:aa", Nickname: "Laptop", Icon: strp("laptop")},
	}}
	return NewService(Options{Network: net, Nicknames: nicks, Clock: fixedRef(100_000)}), net, nicks
}

func TestService_ListMergesNicknames(t *testing.T) {
	svc, _, _ := newFixture()
	devs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 2)
	require.NotNil(t, devs[0].Nickname)
	assert.Equal(t, "Laptop", *devs[0].Nickname)
	assert.Equal(t, "laptop", *devs[0].Icon)
	assert.Nil(t, devs[1].Nickname)
	assert.Nil(t, devs[1].Icon)
}

func TestService_ListErrors(t *testing.T) {
	svc, net, nicks := newFixture()
	net.err = errors.New("no such table: network")
	_, err := svc.List(context.Background())
	assert.Error(t, err)

	net.err = nil
	nicks.err = errors.New("disk I/O error")
	_, err = svc.List(context.Background())
	assert.Error(t, err)
}

func TestService_SetNickname(t *testing.T) {
	svc, _, nicks := newFixture()
	n, err := svc.SetNickname(context.Background(), "bb:bb", "TV", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceNickname{MAC: "bb:bb", Nickname: "TV"}, n)
	assert.Equal(t, "TV", nicks.names["bb:bb"].Nickname)
}

func TestService_PerDeviceQueriesResolveIP(t *testing.T) {
	svc, net, _ := newFixture()
	ctx := context.Background()

	s, err := svc.Stats(ctx, "aa:aa", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.TotalQueries)
	assert.Equal(t, "10.0.0.5", net.lastIP)
	assert.Equal(t, int64(100_000-7200), net.since)

	_, err = svc.Activity(ctx, "aa:aa", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000-3600), net.since)

	top, err := svc.TopDomains(ctx, "aa:aa", 7)
	require.NoError(t, err)
	assert.Len(t, top, 1)
	assert.Equal(t, 7, net.limit)
	assert.Equal(t, int64(100_000-86400), net.since)

	blocked, err := svc.TopBlocked(ctx, "aa:aa", 3)
	require.NoError(t, err)
	assert.Equal(t, "ads.example", blocked[0].Domain)
}

func TestService_UnknownDeviceIsEmpty(t *testing.T) {
	svc, net, _ := newFixture()
	ctx := context.Background()

	for _, mac := range []string{"bb:bb", "zz:zz"} {
		s, err := svc.Stats(ctx, mac, 24)
		require.NoError(t, err)
		assert.Equal(t, domain.Summary{}, s)

		act, err := svc.Activity(ctx, mac, 24)
		require.NoError(t, err)
		assert.Empty(t, act)
		assert.NotNil(t, act)

		top, err := svc.TopDomains(ctx, mac, 10)
		require.NoError(t, err)
		assert.Empty(t, top)

		blocked, err := svc.TopBlocked(ctx, mac, 10)
		require.NoError(t, err)
		assert.Empty(t, blocked)
	}
	assert.Empty(t, net.lastIP)
}
