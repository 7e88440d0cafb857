package pet

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

func TestEvolve(t *testing.T) {
	assert.Equal(t, internal.PetEgg, Evolve(internal.PetEgg, 2, true))
	assert.Equal(t, internal.PetWeak, Evolve(internal.PetEgg, 3, false))
	assert.Equal(t, internal.PetWeak, Evolve(internal.PetWeak, 10, false))
	assert.Equal(t, internal.PetHealthy, Evolve(internal.PetWeak, 0, true))
	assert.Equal(t, internal.PetHealthy, Evolve(internal.PetHealthy, 0, false))
}

func TestEvolve_NeverRegresses(t *testing.T) {
	statuses := []internal.PetStatus{internal.PetEgg, internal.PetWeak, internal.PetHealthy}
	for _, s := range statuses {
		for _, count := range []int{0, 1, 3, 50} {
			for _, today := range []bool{false, true} {
				next := Evolve(s, count, today)
				assert.False(t, Ahead(s, next), "%s regressed to %s", s, next)
			}
		}
	}
}

func TestMachine_ImmediateHatch(t *testing.T) {
	var hatched []internal.PetStatus
	m := NewMachine(internal.PetEgg, 0, func(s internal.PetStatus) { hatched = append(hatched, s) })

	assert.Equal(t, internal.PetEgg, m.Evaluate(2, true))
	assert.Equal(t, internal.PetWeak, m.Evaluate(3, true))
	assert.Equal(t, internal.PetHealthy, m.Evaluate(3, true))
	// clearing the ledger cannot demote
	assert.Equal(t, internal.PetHealthy, m.Evaluate(0, false))
	// synchronous transitions are reported by the return value only
	assert.Empty(t, hatched)
}

func TestMachine_DelayedHatch(t *testing.T) {
	var mu sync.Mutex
	done := make(chan internal.PetStatus, 1)
	m := NewMachine(internal.PetEgg, 20*time.Millisecond, func(s internal.PetStatus) {
		mu.Lock()
		defer mu.Unlock()
		done <- s
	})

	assert.Equal(t, internal.PetHatching, m.Evaluate(3, false))
	// a second evaluation while hatching does not schedule again
	assert.Equal(t, internal.PetHatching, m.Evaluate(4, true))

	select {
	case s := <-done:
		assert.Equal(t, internal.PetWeak, s)
	case <-time.After(time.Second):
		t.Fatal("egg never hatched")
	}
	assert.Equal(t, internal.PetWeak, m.Status())
}

func TestMachine_StopCancelsHatch(t *testing.T) {
	m := NewMachine(internal.PetEgg, time.Hour, nil)
	assert.Equal(t, internal.PetHatching, m.Evaluate(3, false))
	m.Stop()
	assert.Equal(t, internal.PetEgg, m.Status())
}

func TestMachine_RestoreNormalizesAndRatchets(t *testing.T) {
	m := NewMachine(internal.PetHatching, 0, nil)
	assert.Equal(t, internal.PetEgg, m.Status())

	m.Restore(internal.PetHealthy)
	assert.Equal(t, internal.PetHealthy, m.Status())
	m.Restore(internal.PetWeak)
	assert.Equal(t, internal.PetHealthy, m.Status())
	m.Restore("zombie")
	assert.Equal(t, internal.PetHealthy, m.Status())
}
