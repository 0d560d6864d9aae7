// Package market owns the quotes side of the dashboard: the trading-hours
// freshness policy, the per-symbol history cache, and the assembly of the
// quotes board snapshot.
package market

import (
	"fmt"
	"time"

	"github.com/homedash/homedash/cache"
)

// DefaultTimezone is the exchange's civil timezone. Quote freshness follows
// this clock, never the server's or the caller's local one.
const DefaultTimezone = "America/New_York"

const (
	openHour  = 9
	closeHour = 17
)

// HoursPolicy reports whether the market is currently trading. Weekday and
// hour are read off time.Time in the exchange's location; formatting the time
// and re-parsing it would silently drop the zone and corrupt the comparison.
type HoursPolicy struct {
	loc *time.Location
}

func NewHoursPolicy() (*HoursPolicy, error) {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("load market timezone: %w", err)
	}
	return &HoursPolicy{loc: loc}, nil
}

// Location returns the fixed civil timezone the policy evaluates against.
func (p *HoursPolicy) Location() *time.Location {
	return p.loc
}

// ActiveNow reports whether now falls inside the trading window: Monday
// through Friday, 09:00 inclusive to 17:00 exclusive, exchange time.
func (p *HoursPolicy) ActiveNow(now time.Time) bool {
	t := now.In(p.loc)
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return t.Hour() >= openHour && t.Hour() < closeHour
}

// ShouldRefresh implements cache.Policy with TTL semantics inverted: while
// the market trades every request refreshes, and once it closes the last
// captured snapshot stays valid at any age, because upstream values do not
// move outside the window.
func (p *HoursPolicy) ShouldRefresh(_ *cache.Snapshot, now time.Time) bool {
	return p.ActiveNow(now)
}
