// Package ledger keeps the ordered food/exercise entries for one user and
// the day-scoped calorie total derived from them.
package ledger

import (
	"time"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

type Clock func() time.Time

// Ledger is not safe for concurrent use; the owning store serializes access.
type Ledger struct {
	entries []internal.Entry
	total   int
	now     Clock
	loc     *time.Location
}

func New(now Clock, loc *time.Location) *Ledger {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{now: now, loc: loc}
}

func (l *Ledger) Add(e internal.Entry) {
	l.entries = append(l.entries, e)
	l.Recompute()
}

// ToggleVisibility flips the visible flag of the entry with id.
// It reports whether such an entry existed.
func (l *Ledger) ToggleVisibility(id string) bool {
	found := false
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Visible = !l.entries[i].Visible
			found = true
		}
	}
	l.Recompute()
	return found
}

func (l *Ledger) Clear() {
	l.entries = nil
	l.total = 0
}

// Replace swaps in a full set of entries, e.g. after a remote pull.
func (l *Ledger) Replace(entries []internal.Entry) {
	l.entries = append([]internal.Entry(nil), entries...)
	l.Recompute()
}

func (l *Ledger) Entries() []internal.Entry {
	out := make([]internal.Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Get(id string) (internal.Entry, bool) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return internal.Entry{}, false
}

func (l *Ledger) Len() int { return len(l.entries) }

// TotalCalories is the value computed at the last mutation, not at call time.
func (l *Ledger) TotalCalories() int { return l.total }

// Recompute refreshes the cached total against the current clock.
func (l *Ledger) Recompute() {
	l.total = TotalFor(l.entries, l.now(), l.loc)
}

// HasEntryOn reports whether any entry, visible or not, falls on day's local date.
func (l *Ledger) HasEntryOn(day time.Time) bool {
	for _, e := range l.entries {
		if SameDay(e.Date, day, l.loc) {
			return true
		}
	}
	return false
}

func (l *Ledger) HasEntryToday() bool { return l.HasEntryOn(l.now()) }

func (l *Ledger) Location() *time.Location { return l.loc }

// TotalFor sums calories of visible entries dated on now's calendar day in loc.
func TotalFor(entries []internal.Entry, now time.Time, loc *time.Location) int {
	total := 0
	for _, e := range entries {
		if e.Visible && SameDay(e.Date, now, loc) {
			total += e.Calories
		}
	}
	return total
}

func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Streak counts consecutive local days, ending today, with at least one entry.
func (l *Ledger) Streak() int {
	const layout = "2006-01-02"
	days := make(map[string]bool, len(l.entries))
	for _, e := range l.entries {
		days[e.Date.In(l.loc).Format(layout)] = true
	}
	n := 0
	for d := l.now().In(l.loc); days[d.Format(layout)]; d = d.AddDate(0, 0, -1) {
		n++
	}
	return n
}
