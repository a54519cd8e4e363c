package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haukened/pihole-dash/internal/dash/common/clock"
	"github.com/haukened/pihole-dash/internal/dash/domain"
	"github.com/haukened/pihole-dash/internal/dash/repos/querycache"
)

type MockQueryLog struct {
	mock.Mock
}

func (m *MockQueryLog) Summary(ctx context.Context, since int64) (domain.Summary, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(domain.Summary), args.Error(1)
}

func (m *MockQueryLog) TopDomains(ctx context.Context, since int64, limit int) ([]domain.DomainCount, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]domain.DomainCount), args.Error(1)
}

func (m *MockQueryLog) TopBlocked(ctx context.Context, since int64, limit int) ([]domain.DomainCount, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]domain.DomainCount), args.Error(1)
}

func (m *MockQueryLog) OverTime(ctx context.Context, since int64) ([]domain.TimeBucket, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]domain.TimeBucket), args.Error(1)
}

func (m *MockQueryLog) HourlyPattern(ctx context.Context, since int64) ([]domain.HourlyCount, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]domain.HourlyCount), args.Error(1)
}

func (m *MockQueryLog) BlocklistSources(ctx context.Context, since int64) ([]domain.SourceCount, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]domain.SourceCount), args.Error(1)
}

func (m *MockQueryLog) Queries(ctx context.Context, f domain.QueryFilter) (domain.QueryPage, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(domain.QueryPage), args.Error(1)
}

func (m *MockQueryLog) Search(ctx context.Context, q string, since int64, limit int) ([]domain.QueryLogEntry, error) {
	args := m.Called(ctx, q, since, limit)
	return args.Get(0).([]domain.QueryLogEntry), args.Error(1)
}

// fixedRef pins the reference clock.
type fixedRef int64

func (f fixedRef) Now(context.Context) int64 { return int64(f) }
func (f fixedRef) Since(_ context.Context, d time.Duration) int64 {
	return int64(f) - int64(d/time.Second)
}

const refNow = 1_000_000

func newService(t *testing.T, ql QueryLog) (*Service, *clock.MockClock) {
	t.Helper()
	clk := clock.NewMockClock(0)
	cache, err := querycache.New(querycache.Options{Size: 32, StatsTTL: 10 * time.Second, HeavyTTL: 60 * time.Second, Clock: clk})
	require.NoError(t, err)
	return NewService(Options{Log: ql, Clock: fixedRef(refNow), Cache: cache}), clk
}

func TestService_SummaryCachedForStatsTTL(t *testing.T) {
	ql := &MockQueryLog{}
	want := domain.Summary{TotalQueries: 10, BlockedQueries: 5, BlockedPercentage: 50}
	ql.On("Summary", mock.Anything, int64(refNow-24*3600)).Return(want, nil).Twice()
	svc, clk := newService(t, ql)
	ctx := context.Background()

	got, err := svc.Summary(ctx, 24)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.Summary(ctx, 24)
	require.NoError(t, err)
	ql.AssertNumberOfCalls(t, "Summary", 1)

	clk.Advance(10 * time.Second)
	_, err = svc.Summary(ctx, 24)
	require.NoError(t, err)
	ql.AssertNumberOfCalls(t, "Summary", 2)
}

func TestService_CacheKeyIncludesParameters(t *testing.T) {
	ql := &MockQueryLog{}
	ql.On("TopDomains", mock.Anything, int64(refNow-3600), 5).Return([]domain.DomainCount{{Domain: "a", Count: 1}}, nil).Once()
	ql.On("TopDomains", mock.Anything, int64(refNow-3600), 10).Return([]domain.DomainCount{{Domain: "b", Count: 2}}, nil).Once()
	svc, _ := newService(t, ql)
	ctx := context.Background()

	a, err := svc.TopDomains(ctx, 1, 5)
	require.NoError(t, err)
	b, err := svc.TopDomains(ctx, 1, 10)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	ql.AssertExpectations(t)
}

func TestService_HeavyClassOutlivesStats(t *testing.T) {
	ql := &MockQueryLog{}
	ql.On("HourlyPattern", mock.Anything, int64(refNow-7*86400)).Return([]domain.HourlyCount{{DayOfWeek: 1, Hour: 2, Count: 3}}, nil).Once()
	ql.On("BlocklistSources", mock.Anything, int64(refNow-86400)).Return([]domain.SourceCount{{Source: "x", Count: 1}}, nil).Once()
	svc, clk := newService(t, ql)
	ctx := context.Background()

	_, err := svc.HourlyPattern(ctx, 7)
	require.NoError(t, err)
	_, err = svc.BlocklistEffectiveness(ctx)
	require.NoError(t, err)

	clk.Advance(59 * time.Second)
	_, err = svc.HourlyPattern(ctx, 7)
	require.NoError(t, err)
	_, err = svc.BlocklistEffectiveness(ctx)
	require.NoError(t, err)
	ql.AssertExpectations(t)
}

func TestService_ErrorsAreNotCached(t *testing.T) {
	ql := &MockQueryLog{}
	boom := errors.New("database is locked")
	ql.On("OverTime", mock.Anything, mock.Anything).Return([]domain.TimeBucket(nil), boom).Once()
	ql.On("OverTime", mock.Anything, mock.Anything).Return([]domain.TimeBucket{{Bucket: 600}}, nil).Once()
	svc, _ := newService(t, ql)

	_, err := svc.OverTime(context.Background(), 24)
	assert.ErrorIs(t, err, boom)
	got, err := svc.OverTime(context.Background(), 24)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_TopBlocked(t *testing.T) {
	ql := &MockQueryLog{}
	ql.On("TopBlocked", mock.Anything, int64(refNow-2*3600), 3).Return([]domain.DomainCount{}, nil).Once()
	svc, _ := newService(t, ql)

	got, err := svc.TopBlocked(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	ql.AssertExpectations(t)
}

func TestService_QueriesDefaultsRange(t *testing.T) {
	ql := &MockQueryLog{}
	ql.On("Queries", mock.Anything, mock.MatchedBy(func(f domain.QueryFilter) bool {
		return f.From != nil && *f.From == refNow-86400 && f.To != nil && *f.To == refNow && f.Page == 2
	})).Return(domain.QueryPage{Page: 2}, nil).Twice()
	svc, _ := newService(t, ql)

	_, err := svc.Queries(context.Background(), domain.QueryFilter{Page: 2, PerPage: 50})
	require.NoError(t, err)
	_, err = svc.Queries(context.Background(), domain.QueryFilter{Page: 2, PerPage: 50})
	require.NoError(t, err)
	ql.AssertNumberOfCalls(t, "Queries", 2)
}

func TestService_QueriesKeepsExplicitRange(t *testing.T) {
	ql := &MockQueryLog{}
	from, to := int64(10), int64(20)
	ql.On("Queries", mock.Anything, mock.MatchedBy(func(f domain.QueryFilter) bool {
		return *f.From == 10 && *f.To == 20
	})).Return(domain.QueryPage{}, nil).Once()
	svc, _ := newService(t, ql)

	_, err := svc.Queries(context.Background(), domain.QueryFilter{Page: 1, PerPage: 50, From: &from, To: &to})
	require.NoError(t, err)
	ql.AssertExpectations(t)
}

func TestService_Search(t *testing.T) {
	ql := &MockQueryLog{}
	ql.On("Search", mock.Anything, "ads", int64(refNow-6*3600), SearchLimit).Return([]domain.QueryLogEntry{{Domain: "ads.example"}}, nil).Once()
	svc, _ := newService(t, ql)

	got, err := svc.Search(context.Background(), "ads", 6)
	require.NoError(t, err)
	require.Len(t, got, 1)
	ql.AssertExpectations(t)
}
