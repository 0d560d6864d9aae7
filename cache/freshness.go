package cache

import "time"

// Policy decides whether a stored snapshot must be refreshed before serving.
// TTLPolicy covers the plain age-based endpoints; the market-hours policy in
// internal/market implements the same contract with inverted semantics.
type Policy interface {
	ShouldRefresh(snap *Snapshot, now time.Time) bool
}

// TTLPolicy refreshes once a snapshot's age reaches the configured TTL.
type TTLPolicy struct {
	TTL time.Duration
}

func (p TTLPolicy) ShouldRefresh(snap *Snapshot, now time.Time) bool {
	return !IsFresh(snap, now, p.TTL)
}

// IsFresh reports whether snap was captured within ttl of now. A nil snapshot
// is stale. So is one with a capture time in the future: that means the
// clocks disagree, and re-fetching is safer than trusting either of them.
func IsFresh(snap *Snapshot, now time.Time, ttl time.Duration) bool {
	if snap == nil {
		return false
	}
	age := now.Sub(snap.CapturedAt)
	return age >= 0 && age < ttl
}
