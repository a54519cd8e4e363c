package domain

import (
	"strconv"
	"strings"
)

// Query status codes as written by the filter's query log.
var (
	BlockedStatuses = []int{1, 4, 5, 6, 7, 8, 9, 10, 11}
	AllowedStatuses = []int{2, 3, 12, 13, 14}
	CachedStatuses  = []int{3}
)

// StatusFilter selects a family of status codes for the query log view.
type StatusFilter string

const (
	StatusAny     StatusFilter = ""
	StatusBlocked StatusFilter = "blocked"
	StatusAllowed StatusFilter = "allowed"
	StatusCached  StatusFilter = "cached"
)

// Codes returns the status codes for the filter, or nil when it matches everything.
func (f StatusFilter) Codes() []int {
	switch f {
	case StatusBlocked:
		return BlockedStatuses
	case StatusAllowed:
		return AllowedStatuses
	case StatusCached:
		return CachedStatuses
	default:
		return nil
	}
}

// SQLList renders codes as "(1,4,5)" for use in an IN clause.
func SQLList(codes []int) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Summary aggregates query counts over a window.
type Summary struct {
	TotalQueries      int64   `db:"total_queries" json:"total_queries"`
	BlockedQueries    int64   `db:"blocked_queries" json:"blocked_queries"`
	UniqueDomains     int64   `db:"unique_domains" json:"unique_domains"`
	UniqueClients     int64   `db:"unique_clients" json:"unique_clients,omitempty"`
	BlockedPercentage float64 `db:"-" json:"blocked_percentage"`
}

// WithPercentage fills BlockedPercentage rounded to one decimal place.
func (s Summary) WithPercentage() Summary {
	if s.TotalQueries > 0 {
		pct := float64(s.BlockedQueries) / float64(s.TotalQueries) * 100
		s.BlockedPercentage = float64(int64(pct*10+0.5)) / 10
	} else {
		s.BlockedPercentage = 0
	}
	return s
}

type DomainCount struct {
	Domain string `db:"domain" json:"domain"`
	Count  int64  `db:"count" json:"count"`
}

// TimeBucket counts blocked and allowed queries starting at Bucket (unix seconds).
type TimeBucket struct {
	Bucket  int64 `db:"bucket" json:"bucket"`
	Blocked int64 `db:"blocked" json:"blocked"`
	Allowed int64 `db:"allowed" json:"allowed"`
}

// HourlyCount is one cell of the day-of-week by hour heat map (local time, Sunday=0).
type HourlyCount struct {
	DayOfWeek int   `db:"day_of_week" json:"day_of_week"`
	Hour      int   `db:"hour" json:"hour"`
	Count     int64 `db:"count" json:"count"`
}

type SourceCount struct {
	Source string `db:"source" json:"source"`
	Count  int64  `db:"count" json:"count"`
}

// QueryLogEntry is one row of the query log.
type QueryLogEntry struct {
	ID        int64    `db:"id" json:"id"`
	Timestamp int64    `db:"timestamp" json:"timestamp"`
	Type      int      `db:"type" json:"type"`
	Status    int      `db:"status" json:"status"`
	Domain    string   `db:"domain" json:"domain"`
	Client    string   `db:"client" json:"client"`
	Forward   *string  `db:"forward" json:"forward"`
	ReplyType *int     `db:"reply_type" json:"reply_type,omitempty"`
	ReplyTime *float64 `db:"reply_time" json:"reply_time,omitempty"`
	DNSSEC    *int     `db:"dnssec" json:"dnssec,omitempty"`
}

// QueryFilter narrows the paged query log. From and To are inclusive unix
// seconds; nil means "24 hours before the reference clock" and "the
// reference clock" respectively.
type QueryFilter struct {
	Page    int
	PerPage int
	Domain  string
	Client  string
	Status  StatusFilter
	From    *int64
	To      *int64
}

type QueryPage struct {
	Items   []QueryLogEntry `json:"items"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Pages   int64           `json:"pages"`
}

// NewQueryPage computes the page count for total rows.
func NewQueryPage(items []QueryLogEntry, total int64, page, perPage int) QueryPage {
	if items == nil {
		items = []QueryLogEntry{}
	}
	var pages int64
	if perPage > 0 {
		pages = (total + int64(perPage) - 1) / int64(perPage)
	}
	return QueryPage{Items: items, Total: total, Page: page, PerPage: perPage, Pages: pages}
}
