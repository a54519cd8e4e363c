package domain

import (
	"fmt"
	"strings"
)

// TimedBlock is a wildcard block that lifts itself after a fixed duration.
//
// Notes:
//   - ID, Domain, CreatedAt and ExpiresAt never change after creation.
//   - Active goes from true to false exactly once; rows are kept as history.
//   - Times are unix seconds.
type TimedBlock struct {
	ID        string `json:"id"`
	Domain    string `json:"domain"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
	Active    bool   `json:"active"`
}

// NewTimedBlock constructs an active block that expires durationMinutes after createdAt.
func NewTimedBlock(id, domain string, createdAt int64, durationMinutes int) (TimedBlock, error) {
	if durationMinutes <= 0 {
		return TimedBlock{}, fmt.Errorf("%w: duration must be positive, got %d minutes", ErrInvalidBlock, durationMinutes)
	}
	b := TimedBlock{
		ID:        strings.TrimSpace(id),
		Domain:    strings.TrimSpace(domain),
		CreatedAt: createdAt,
		ExpiresAt: createdAt + int64(durationMinutes)*60,
		Active:    true,
	}
	if err := b.Validate(); err != nil {
		return TimedBlock{}, err
	}
	return b, nil
}

// Validate checks the TimedBlock for required fields and its time invariant.
func (b TimedBlock) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: id must not be empty", ErrInvalidBlock)
	}
	if b.Domain == "" {
		return fmt.Errorf("%w: domain must not be empty", ErrInvalidBlock)
	}
	if b.ExpiresAt <= b.CreatedAt {
		return fmt.Errorf("%w: expires_at %d must be after created_at %d", ErrInvalidBlock, b.ExpiresAt, b.CreatedAt)
	}
	return nil
}

// IsExpired reports whether the block is due at unix second now.
func (b TimedBlock) IsExpired(now int64) bool { return b.ExpiresAt <= now }

// Remaining returns the seconds left at unix second now, never negative.
func (b TimedBlock) Remaining(now int64) int64 {
	return max(0, b.ExpiresAt-now)
}

// Comment is the audit tag attached to the external list entry so the
// filter's own list shows which timed block owns it and when it lapses.
func (b TimedBlock) Comment() string {
	return fmt.Sprintf("timed-block %s expires %d", b.ID, b.ExpiresAt)
}

// TimedBlockStatus is a TimedBlock as seen at read time.
type TimedBlockStatus struct {
	TimedBlock
	RemainingSeconds int64 `json:"remaining_seconds"`
}

// StatusAt computes the read-time view of b.
func (b TimedBlock) StatusAt(now int64) TimedBlockStatus {
	return TimedBlockStatus{TimedBlock: b, RemainingSeconds: b.Remaining(now)}
}
