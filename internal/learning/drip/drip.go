// Package drip computes when each milestone of a drip-released course unlocks
// for a learner.
package drip

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/platform/errs"
)

type FrequencyUnit string

const (
	Minute FrequencyUnit = "minute"
	Hour   FrequencyUnit = "hour"
	Day    FrequencyUnit = "day"
	Week   FrequencyUnit = "week"
	Month  FrequencyUnit = "month"
	Year   FrequencyUnit = "year"
)

var ErrInvalidFrequencyUnit = errors.New("invalid frequency unit")

// maxFrequencyValue caps one drip step at 100 years of its unit.
var maxFrequencyValue = map[FrequencyUnit]int{
	Minute: 100 * 365 * 24 * 60,
	Hour:   100 * 365 * 24,
	Day:    100 * 365,
	Week:   100 * 52,
	Month:  100 * 12,
	Year:   100,
}

func ParseFrequencyUnit(raw string) (FrequencyUnit, error) {
	u := FrequencyUnit(strings.ToLower(strings.TrimSpace(raw)))
	switch u {
	case Minute, Hour, Day, Week, Month, Year:
		return u, nil
	}
	return "", fmt.Errorf("%w: %w %q", errs.ErrInvalidArgument, ErrInvalidFrequencyUnit, raw)
}

// Config is the drip configuration stored on a course/cohort association.
type Config struct {
	Enabled        bool          `json:"is_drip_enabled"`
	FrequencyValue int           `json:"frequency_value"`
	FrequencyUnit  FrequencyUnit `json:"frequency_unit"`
	PublishAt      *time.Time    `json:"publish_at,omitempty"`
}

// Normalize validates c and canonicalises its unit. A disabled config is
// returned unchanged.
func (c Config) Normalize() (Config, error) {
	if !c.Enabled {
		return c, nil
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	c.FrequencyUnit, _ = ParseFrequencyUnit(string(c.FrequencyUnit))
	if c.PublishAt != nil {
		utc := c.PublishAt.UTC()
		c.PublishAt = &utc
	}
	return c, nil
}

// Validate checks the frequency fields. A disabled config is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	unit, err := ParseFrequencyUnit(string(c.FrequencyUnit))
	if err != nil {
		return err
	}
	if c.FrequencyValue < 1 {
		return errs.Invalid("frequency_value must be >= 1, got %d", c.FrequencyValue)
	}
	if limit := maxFrequencyValue[unit]; c.FrequencyValue > limit {
		return errs.Invalid("frequency_value must be <= %d for unit %q, got %d", limit, unit, c.FrequencyValue)
	}
	return nil
}

// Anchor is publish_at when set, else the learner's joined_at. The result is UTC.
func (c Config) Anchor(joinedAt *time.Time) *time.Time {
	var a *time.Time
	switch {
	case c.PublishAt != nil && !c.PublishAt.IsZero():
		a = c.PublishAt
	case joinedAt != nil && !joinedAt.IsZero():
		a = joinedAt
	default:
		return nil
	}
	utc := a.UTC()
	return &utc
}

// Milestone is the input shape: one entry per milestone in course order.
type Milestone struct {
	ID        uuid.UUID
	TaskCount int
}

type Unlock struct {
	MilestoneID uuid.UUID  `json:"milestone_id"`
	UnlockAt    *time.Time `json:"unlock_at"`
}

// ComputeUnlockDates returns one Unlock per milestone, in input order. UnlockAt
// is nil for milestones that are already visible at now.
//
// Empty milestones never lock and do not consume a slot; the first non-empty
// milestone is always open; the k-th non-empty one (0-based) opens at
// anchor + k*FrequencyValue units.
func ComputeUnlockDates(milestones []Milestone, cfg Config, anchor *time.Time, now time.Time) ([]Unlock, error) {
	out := make([]Unlock, len(milestones))
	for i, m := range milestones {
		out[i] = Unlock{MilestoneID: m.ID}
	}
	if !cfg.Enabled {
		return out, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if anchor == nil || anchor.IsZero() {
		return out, nil
	}
	base := anchor.UTC()
	unit, _ := ParseFrequencyUnit(string(cfg.FrequencyUnit))

	slot := 0
	for i, m := range milestones {
		if m.TaskCount <= 0 {
			continue
		}
		if slot > 0 {
			at, err := Add(base, unit, cfg.FrequencyValue*slot)
			if err != nil {
				return nil, err
			}
			if at.After(now) {
				out[i].UnlockAt = &at
			}
		}
		slot++
	}
	return out, nil
}

// Add advances t by n units. Months and years are calendar steps that clamp the
// day to the end of the target month; smaller units are fixed durations.
func Add(t time.Time, unit FrequencyUnit, n int) (time.Time, error) {
	switch unit {
	case Minute:
		return addFixed(t, n, 24*60, time.Minute), nil
	case Hour:
		return addFixed(t, n, 24, time.Hour), nil
	case Day:
		return addFixed(t, n, 1, 24*time.Hour), nil
	case Week:
		return addFixed(t, 7*n, 1, 24*time.Hour), nil
	case Month:
		return addMonths(t, n), nil
	case Year:
		return addMonths(t, 12*n), nil
	}
	return time.Time{}, fmt.Errorf("%w: %w %q", errs.ErrInvalidArgument, ErrInvalidFrequencyUnit, unit)
}

// addFixed adds n steps of length step, where perDay steps make one UTC day.
// Whole days go through AddDate so offsets past the ~292 year range of a
// Duration stay exact.
func addFixed(t time.Time, n, perDay int, step time.Duration) time.Time {
	days, rem := n/perDay, n%perDay
	u := t.UTC().AddDate(0, 0, days).Add(time.Duration(rem) * step)
	return u.In(t.Location())
}

func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + months
	year := y + floorDiv(total, 12)
	month := time.Month(total-floorDiv(total, 12)*12 + 1)
	if last := daysIn(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
