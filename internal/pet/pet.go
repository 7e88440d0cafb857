// Package pet evolves the virtual pet from ledger activity. Status only
// ever moves forward: egg, weak, healthy.
package pet

import (
	"sync"
	"time"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

// HatchThreshold is the number of logged entries that hatches the egg.
const HatchThreshold = 3

var rank = map[internal.PetStatus]int{
	internal.PetEgg:      0,
	internal.PetHatching: 0,
	internal.PetWeak:     1,
	internal.PetHealthy:  2,
}

// Evolve applies at most one forward transition.
func Evolve(current internal.PetStatus, entryCount int, hasEntryToday bool) internal.PetStatus {
	switch current {
	case internal.PetEgg:
		if entryCount >= HatchThreshold {
			return internal.PetWeak
		}
	case internal.PetWeak:
		if hasEntryToday {
			return internal.PetHealthy
		}
	}
	return current
}

// Normalize maps unknown or transient statuses to something persistable.
func Normalize(s internal.PetStatus) internal.PetStatus {
	switch s {
	case internal.PetWeak, internal.PetHealthy:
		return s
	}
	return internal.PetEgg
}

// Ahead reports whether a is further along than b.
func Ahead(a, b internal.PetStatus) bool { return rank[a] > rank[b] }

// Machine holds the live status. With a hatch delay configured, egg moves
// to hatching and then to weak once the delay elapses; onHatch runs on the
// timer goroutine when that happens.
type Machine struct {
	mu      sync.Mutex
	status  internal.PetStatus
	delay   time.Duration
	timer   *time.Timer
	onHatch func(internal.PetStatus)
}

func NewMachine(initial internal.PetStatus, delay time.Duration, onHatch func(internal.PetStatus)) *Machine {
	return &Machine{status: Normalize(initial), delay: delay, onHatch: onHatch}
}

func (m *Machine) Status() internal.PetStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Restore adopts s, e.g. after a remote pull.
// It never moves the pet backwards.
func (m *Machine) Restore(s internal.PetStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s = Normalize(s)
	if Ahead(s, m.status) {
		m.status = s
	}
}

// Evaluate runs one transition against the current ledger facts and returns
// the (possibly unchanged) status. It never calls onHatch itself.
func (m *Machine) Evaluate(entryCount int, hasEntryToday bool) internal.PetStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == internal.PetHatching {
		return m.status
	}
	next := Evolve(m.status, entryCount, hasEntryToday)
	if next == m.status {
		return next
	}
	if m.status == internal.PetEgg && m.delay > 0 {
		m.status = internal.PetHatching
		m.timer = time.AfterFunc(m.delay, m.hatch)
		return m.status
	}
	m.status = next
	return next
}

func (m *Machine) hatch() {
	m.mu.Lock()
	if m.status != internal.PetHatching {
		m.mu.Unlock()
		return
	}
	m.status = internal.PetWeak
	m.timer = nil
	cb := m.onHatch
	m.mu.Unlock()
	if cb != nil {
		cb(internal.PetWeak)
	}
}

// Stop cancels a pending hatch. The egg stays an egg and hatches again on
// the next evaluation.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil && m.timer.Stop() {
		m.status = internal.PetEgg
	}
	m.timer = nil
}
