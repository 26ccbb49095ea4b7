package drip

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/platform/errs"
)

func ms(taskCounts ...int) []Milestone {
	out := make([]Milestone, len(taskCounts))
	for i, n := range taskCounts {
		out[i] = Milestone{ID: uuid.New(), TaskCount: n}
	}
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertUnlocks(t *testing.T, got []Unlock, want []*time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len: want=%d got=%d", len(want), len(got))
	}
	for i := range want {
		switch {
		case want[i] == nil && got[i].UnlockAt != nil:
			t.Fatalf("milestone %d: want nil got %s", i, got[i].UnlockAt)
		case want[i] != nil && got[i].UnlockAt == nil:
			t.Fatalf("milestone %d: want %s got nil", i, want[i])
		case want[i] != nil && !want[i].Equal(*got[i].UnlockAt):
			t.Fatalf("milestone %d: want %s got %s", i, want[i], got[i].UnlockAt)
		}
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestDisabledAlwaysUnlocked(t *testing.T) {
	anchor := date(2024, 1, 1)
	cfg := Config{Enabled: false, FrequencyValue: 0, FrequencyUnit: "fortnight", PublishAt: &anchor}
	got, err := ComputeUnlockDates(ms(1, 2, 3), cfg, &anchor, anchor)
	if err != nil {
		t.Fatalf("ComputeUnlockDates: %v", err)
	}
	assertUnlocks(t, got, []*time.Time{nil, nil, nil})
}

func TestDailyDrip(t *testing.T) {
	T := date(2024, 3, 10)
	cfg := Config{Enabled: true, FrequencyValue: 1, FrequencyUnit: Day}

	got, err := ComputeUnlockDates(ms(1, 1, 1), cfg, &T, T.Add(-time.Hour))
	if err != nil {
		t.Fatalf("ComputeUnlockDates: %v", err)
	}
	assertUnlocks(t, got, []*time.Time{nil, ptr(T.AddDate(0, 0, 1)), ptr(T.AddDate(0, 0, 2))})

	got, err = ComputeUnlockDates(ms(1, 1, 1), cfg, &T, T.AddDate(0, 0, 1).Add(time.Second))
	if err != nil {
		t.Fatalf("ComputeUnlockDates: %v", err)
	}
	assertUnlocks(t, got, []*time.Time{nil, nil, ptr(T.AddDate(0, 0, 2))})

	got, err = ComputeUnlockDates(ms(1, 1, 1), cfg, &T, T.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("ComputeUnlockDates: %v", err)
	}
	assertUnlocks(t, got, []*time.Time{nil, nil, nil})
}

func TestEmptyMilestonesDoNotConsumeSlots(t *testing.T) {
	T := date(2024, 3, 10)
	cfg := Config{Enabled: true, FrequencyValue: 2, FrequencyUnit: Hour}

	withGap, err := ComputeUnlockDates(ms(3, 0, 1), cfg, &T, T)
	if err != nil {
		t.Fatalf("ComputeUnlockDates: %v", err)
	}
	plain, err := ComputeUnlockDates(ms(3, 1), cfg, &T, T)
	if err != nil {
		t.Fatalf("ComputeUnlockDates: %v", err)
	}
	if withGap[1].UnlockAt != nil {
		t.Fatalf("empty milestone should be unlocked")
	}
	if withGap[2].UnlockAt == nil || plain[1].UnlockAt == nil || !withGap[2].UnlockAt.Equal(*plain[1].UnlockAt) {
		t.Fatalf("gap changed slot: withGap=%v plain=%v", withGap[2].UnlockAt, plain[1].UnlockAt)
	}
}

func TestLeadingEmptyMilestoneDoesNotLockFirstNonEmpty(t *testing.T) {
	T := date(2024, 3, 10)
	cfg := Config{Enabled: true, FrequencyValue: 1, FrequencyUnit: Week}
	got, err := ComputeUnlockDates(ms(0, 2, 1), cfg, &T, T)
	if err != nil {
		t.Fatalf("ComputeUnlockDates: %v", err)
	}
	assertUnlocks(t, got, []*time.Time{nil, nil, ptr(T.AddDate(0, 0, 7))})
}

func TestWeeklyScenario(t *testing.T) {
	publishAt := date(2024, 1, 1)
	cfg := Config{Enabled: true, FrequencyValue: 1, FrequencyUnit: Week, PublishAt: &publishAt}
	joined := date(2023, 12, 1)

	got, err := ComputeUnlockDates(ms(2, 0, 1), cfg, cfg.Anchor(&joined), date(2024, 1, 5))
	if err != nil {
		t.Fatalf("ComputeUnlockDates: %v", err)
	}
	assertUnlocks(t, got, []*time.Time{nil, nil, ptr(date(2024, 1, 8))})
	if s := got[2].UnlockAt.Format(time.RFC3339); s != "2024-01-08T00:00:00Z" {
		t.Fatalf("format: got=%s", s)
	}
}

func TestNoAnchorMeansUnlocked(t *testing.T) {
	cfg := Config{Enabled: true, FrequencyValue: 1, FrequencyUnit: Day}
	got, err := ComputeUnlockDates(ms(1, 1), cfg, cfg.Anchor(nil), time.Now())
	if err != nil {
		t.Fatalf("ComputeUnlockDates: %v", err)
	}
	assertUnlocks(t, got, []*time.Time{nil, nil})
}

func TestAnchorFallsBackToJoinedAtInUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	joined := time.Date(2024, 5, 1, 9, 0, 0, 0, loc)
	a := Config{Enabled: true}.Anchor(&joined)
	if a == nil || a.Location() != time.UTC || !a.Equal(joined) {
		t.Fatalf("anchor: got=%v", a)
	}
}

func TestUnknownUnitFails(t *testing.T) {
	T := date(2024, 1, 1)
	cfg := Config{Enabled: true, FrequencyValue: 1, FrequencyUnit: "fortnight"}
	_, err := ComputeUnlockDates(ms(1, 1), cfg, &T, T)
	if !errors.Is(err, ErrInvalidFrequencyUnit) || !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidFrequencyUnit, got %v", err)
	}
	if _, err := ParseFrequencyUnit(" Month "); err != nil {
		t.Fatalf("ParseFrequencyUnit: %v", err)
	}
}

func TestZeroFrequencyValueRejected(t *testing.T) {
	cfg := Config{Enabled: true, FrequencyValue: 0, FrequencyUnit: Day}
	if err := cfg.Validate(); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestCalendarAddition(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		unit FrequencyUnit
		n    int
		want time.Time
	}{
		{"month clamps to leap february", date(2024, 1, 31), Month, 1, date(2024, 2, 29)},
		{"month clamps to february", date(2023, 1, 31), Month, 1, date(2023, 2, 28)},
		{"month crosses year", date(2023, 11, 15), Month, 3, date(2024, 2, 15)},
		{"year from leap day", date(2024, 2, 29), Year, 1, date(2025, 2, 28)},
		{"minutes", date(2024, 1, 1), Minute, 90, date(2024, 1, 1).Add(90 * time.Minute)},
		{"weeks", date(2024, 1, 1), Week, 2, date(2024, 1, 15)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := Add(tc.in, tc.unit, tc.n)
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("want %s got %s", tc.want, got)
			}
		})
	}
}

func TestNormalizeCanonicalisesUnit(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2024, 1, 1, 2, 0, 0, 0, loc)
	cfg, err := Config{Enabled: true, FrequencyValue: 2, FrequencyUnit: " Week ", PublishAt: &at}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.FrequencyUnit != Week {
		t.Fatalf("unit: want %q got %q", Week, cfg.FrequencyUnit)
	}
	if cfg.PublishAt.Location() != time.UTC || !cfg.PublishAt.Equal(date(2024, 1, 1)) {
		t.Fatalf("publish_at should be UTC midnight, got %s", cfg.PublishAt)
	}
	if _, err := (Config{Enabled: true, FrequencyValue: 1, FrequencyUnit: "fortnight"}).Normalize(); err == nil {
		t.Fatalf("expected fortnight to be rejected")
	}
	off := Config{FrequencyUnit: "anything"}
	if got, err := off.Normalize(); err != nil || got.FrequencyUnit != "anything" {
		t.Fatalf("disabled config should pass through, got %+v err=%v", got, err)
	}
}

func TestFrequencyValueCappedPerUnit(t *testing.T) {
	cases := []struct {
		unit  FrequencyUnit
		limit int
	}{
		{Minute, 52_560_000},
		{Hour, 876_000},
		{Day, 36_500},
		{Week, 5_200},
		{Month, 1_200},
		{Year, 100},
	}
	for _, tc := range cases {
		t.Run(string(tc.unit), func(t *testing.T) {
			ok := Config{Enabled: true, FrequencyValue: tc.limit, FrequencyUnit: tc.unit}
			if err := ok.Validate(); err != nil {
				t.Fatalf("value %d should be accepted: %v", tc.limit, err)
			}
			over := Config{Enabled: true, FrequencyValue: tc.limit + 1, FrequencyUnit: tc.unit}
			if err := over.Validate(); !errors.Is(err, errs.ErrInvalidArgument) {
				t.Fatalf("value %d: want invalid argument, got %v", tc.limit+1, err)
			}
		})
	}

	T := date(2024, 1, 1)
	huge := Config{Enabled: true, FrequencyValue: 20_000_000, FrequencyUnit: Week}
	if _, err := ComputeUnlockDates(ms(1, 1), huge, &T, T.Add(time.Hour)); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
	if _, err := huge.Normalize(); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("Normalize: want invalid argument, got %v", err)
	}
}

func TestLongStepsStayLocked(t *testing.T) {
	T := date(2024, 1, 1)
	now := T.Add(time.Hour)
	for _, unit := range []FrequencyUnit{Minute, Hour, Day, Week} {
		t.Run(string(unit), func(t *testing.T) {
			cfg := Config{Enabled: true, FrequencyValue: maxFrequencyValue[unit], FrequencyUnit: unit}
			got, err := ComputeUnlockDates(ms(1, 1, 1, 1, 1), cfg, &T, now)
			if err != nil {
				t.Fatalf("ComputeUnlockDates: %v", err)
			}
			if got[0].UnlockAt != nil {
				t.Fatalf("first milestone must be open")
			}
			prev := now
			for i := 1; i < len(got); i++ {
				if got[i].UnlockAt == nil {
					t.Fatalf("milestone %d reported open", i)
				}
				if !got[i].UnlockAt.After(prev) {
					t.Fatalf("milestone %d unlocks at %s, not after %s", i, got[i].UnlockAt, prev)
				}
				prev = *got[i].UnlockAt
			}
		})
	}
}

func TestAddBeyondDurationRange(t *testing.T) {
	T := date(2024, 1, 1)
	cases := []struct {
		name string
		unit FrequencyUnit
		n    int
		want time.Time
	}{
		{"weeks", Week, 20_000_000, T.AddDate(0, 0, 140_000_000)},
		{"days", Day, 200_000, T.AddDate(0, 0, 200_000)},
		{"hours with remainder", Hour, 24*200_000 + 5, T.AddDate(0, 0, 200_000).Add(5 * time.Hour)},
		{"minutes with remainder", Minute, 24*60*200_000 + 61, T.AddDate(0, 0, 200_000).Add(61 * time.Minute)},
		{"negative minutes", Minute, -90, T.Add(-90 * time.Minute)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Add(T, tc.unit, tc.n)
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("want %s got %s", tc.want, got)
			}
		})
	}
}
