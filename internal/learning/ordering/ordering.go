// Package ordering computes ordering-column rewrites for sibling rows that share
// a parent scope (a course's milestones, or a course+milestone's tasks).
//
// The functions here never touch storage; callers load the siblings, ask for the
// minimal set of Changes and persist them inside one transaction.
package ordering

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/platform/errs"
)

var (
	ErrNoChanges  = fmt.Errorf("%w: no changes", errs.ErrInvalidArgument)
	ErrOutOfRange = fmt.Errorf("%w: position out of range", errs.ErrInvalidArgument)
)

// Item is one sibling row.
type Item struct {
	ID       uuid.UUID `json:"id"`
	Ordering int       `json:"ordering"`
}

// Change rewrites one row's ordering.
type Change struct {
	ID   uuid.UUID `json:"id"`
	From int       `json:"from"`
	To   int       `json:"to"`
}

// Violation describes an ordering value that breaks the scope invariant.
type Violation struct {
	Ordering int         `json:"ordering"`
	IDs      []uuid.UUID `json:"ids"`
	Reason   string      `json:"reason"`
}

// Next is the ordering an appended sibling receives: COALESCE(MAX(ordering), -1) + 1.
func Next(items []Item) int {
	max := -1
	for _, it := range items {
		if it.Ordering > max {
			max = it.Ordering
		}
	}
	return max + 1
}

// Sorted returns a copy of items ordered by Ordering, keeping input order for ties.
func Sorted(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ordering < out[j].Ordering })
	return out
}

// Swap exchanges the orderings of a and b. Two rows that already share an
// ordering cannot be swapped; that scope needs Renumber first.
func Swap(a, b Item) ([]Change, error) {
	if a.Ordering == b.Ordering {
		return nil, fmt.Errorf("%w: both hold ordering %d, renumber the scope", ErrNoChanges, a.Ordering)
	}
	return []Change{
		{ID: a.ID, From: a.Ordering, To: b.Ordering},
		{ID: b.ID, From: b.Ordering, To: a.Ordering},
	}, nil
}

// Move relocates the sibling at index from (in ordering order) to index to.
// The moved item takes the value held at to, every sibling in between takes its
// neighbour's value, and rows whose value would not change are left out.
func Move(items []Item, from, to int) ([]Change, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: from=%d to=%d len=%d", ErrOutOfRange, from, to, n)
	}
	if from == to {
		return nil, ErrNoChanges
	}
	s := Sorted(items)

	changes := make([]Change, 0, abs(to-from)+1)
	if from < to {
		for i := from + 1; i <= to; i++ {
			changes = append(changes, Change{ID: s[i].ID, From: s[i].Ordering, To: s[i-1].Ordering})
		}
	} else {
		for i := to; i < from; i++ {
			changes = append(changes, Change{ID: s[i].ID, From: s[i].Ordering, To: s[i+1].Ordering})
		}
	}
	changes = append(changes, Change{ID: s[from].ID, From: s[from].Ordering, To: s[to].Ordering})

	out := changes[:0]
	for _, c := range changes {
		if c.From != c.To {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoChanges
	}
	return out, nil
}

// Check reports negative and duplicated orderings.
func Check(items []Item) []Violation {
	var out []Violation
	byValue := map[int][]uuid.UUID{}
	for _, it := range Sorted(items) {
		if it.Ordering < 0 {
			out = append(out, Violation{Ordering: it.Ordering, IDs: []uuid.UUID{it.ID}, Reason: "negative"})
		}
		byValue[it.Ordering] = append(byValue[it.Ordering], it.ID)
	}
	values := make([]int, 0, len(byValue))
	for v, ids := range byValue {
		if len(ids) > 1 {
			values = append(values, v)
		}
	}
	sort.Ints(values)
	for _, v := range values {
		out = append(out, Violation{Ordering: v, IDs: byValue[v], Reason: "duplicate"})
	}
	return out
}

// Renumber rewrites the scope to 0..n-1, preserving relative order.
func Renumber(items []Item) []Change {
	var out []Change
	for i, it := range Sorted(items) {
		if it.Ordering != i {
			out = append(out, Change{ID: it.ID, From: it.Ordering, To: i})
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
