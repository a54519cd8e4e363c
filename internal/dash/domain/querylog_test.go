package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFilterCodes(t *testing.T) {
	assert.Equal(t, "(1,4,5,6,7,8,9,10,11)", SQLList(StatusBlocked.Codes()))
	assert.Equal(t, "(2,3,12,13,14)", SQLList(StatusAllowed.Codes()))
	assert.Equal(t, "(3)", SQLList(StatusCached.Codes()))
	assert.Nil(t, StatusAny.Codes())
	assert.Nil(t, StatusFilter("bogus").Codes())
}

func TestSummaryWithPercentage(t *testing.T) {
	s := Summary{TotalQueries: 3, BlockedQueries: 1}.WithPercentage()
	assert.Equal(t, 33.3, s.BlockedPercentage)

	s = Summary{}.WithPercentage()
	assert.Equal(t, 0.0, s.BlockedPercentage)
}

func TestNewQueryPage(t *testing.T) {
	p := NewQueryPage(nil, 101, 2, 50)
	assert.Equal(t, int64(3), p.Pages)
	assert.NotNil(t, p.Items)
	assert.Equal(t, 2, p.Page)

	p = NewQueryPage(nil, 0, 1, 50)
	assert.Equal(t, int64(0), p.Pages)
}
