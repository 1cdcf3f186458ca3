package core

import (
	"time"
	"weak"
)

// idleSlot holds one idle resource plus the bookkeeping the eviction sweep
// needs. Soft slots hold only a weak pointer to a heap box around the
// resource, so nothing in the pool keeps the resource reachable while it
// sits idle: any garbage collection cycle may reclaim the box, shrinking
// the idle set without any explicit eviction policy.
// Non-soft slots hold a plain strong pointer to the same box.
type idleSlot[R any] struct {
	box           *R
	weakBox       weak.Pointer[R]
	soft          bool
	idleSince     time.Time
	lastValidated time.Time
}

// value returns the resource held by the slot and whether it is still
// alive. A soft slot whose box has already been collected returns false;
// the caller must drop the slot instead of returning the zero value to a
// borrower.
func (s *idleSlot[R]) value() (R, bool) {
	if !s.soft {
		return *s.box, true
	}
	box := s.weakBox.Value()
	if box == nil {
		var zero R
		return zero, false
	}
	return *box, true
}

// idleBuffer is the Lender role: it owns idle-resource storage order
// (FIFO/LIFO/Null) and the idle/invalid eviction sweep. It is not
// separately synchronized — callers hold Pool's mutex for push/pop, and the
// eviction sweep (driven by the shared EvictionScheduler) takes the same
// lock via Pool.runEviction.
type idleBuffer[R any] struct {
	policy          BorrowPolicy
	soft            bool
	idleTimeout     time.Duration // 0 disables idle-timeout eviction
	invalidateEvery time.Duration // 0 disables periodic invalid-check eviction
	maxIdle         int           // negative means unbounded; 0 means never buffer anything idle

	slots []*idleSlot[R]
}

func newIdleBuffer[R any](policy BorrowPolicy, soft bool, idleTimeout, invalidateEvery time.Duration, maxIdle int) *idleBuffer[R] {
	return &idleBuffer[R]{
		policy:          policy,
		soft:            soft,
		idleTimeout:     idleTimeout,
		invalidateEvery: invalidateEvery,
		maxIdle:         maxIdle,
	}
}

// len reports the number of slots currently stored, without purging dead
// soft slots. Callers that need an exact live count should call purgeDead
// first.
func (b *idleBuffer[R]) len() int {
	return len(b.slots)
}

// purgeDead drops soft slots whose box has already been collected and
// reports how many were dropped.
func (b *idleBuffer[R]) purgeDead() int {
	if !b.soft {
		return 0
	}
	dropped := 0
	live := b.slots[:0]
	for _, s := range b.slots {
		if s.soft && s.weakBox.Value() == nil {
			dropped++
			continue
		}
		live = append(live, s)
	}
	b.slots = live
	return dropped
}

// push stores resource as idle and reports whether it accepted it. A Null
// policy never accepts: the caller must destroy the resource instead. push
// never evicts overflow by itself; the caller checks popOverflow after
// pushing.
func (b *idleBuffer[R]) push(resource R, now time.Time) bool {
	if b.policy == BorrowNull {
		return false
	}
	slot := &idleSlot[R]{soft: b.soft, idleSince: now, lastValidated: now}
	box := new(R)
	*box = resource
	if b.soft {
		slot.weakBox = weak.Make(box)
	} else {
		slot.box = box
	}
	b.slots = append(b.slots, slot)
	return true
}

// pop removes and returns the next resource per the buffer's order,
// skipping and discarding dead soft slots along the way.
func (b *idleBuffer[R]) pop() (R, bool) {
	for len(b.slots) > 0 {
		var slot *idleSlot[R]
		switch b.policy {
		case BorrowFIFO:
			slot = b.slots[0]
			b.slots = b.slots[1:]
		default: // BorrowLIFO; BorrowNull never has slots to pop
			n := len(b.slots) - 1
			slot = b.slots[n]
			b.slots = b.slots[:n]
		}
		if v, ok := slot.value(); ok {
			return v, true
		}
		// Dead soft slot — keep looking.
	}
	var zero R
	return zero, false
}

// popOverflow removes and returns the resource least worth keeping once the
// buffer holds more than maxIdle entries (the oldest one, regardless of
// borrow order), or false if no overflow exists. A negative maxIdle disables
// the cap entirely; a maxIdle of 0 means every entry is overflow, so nothing
// is ever left buffered idle.
func (b *idleBuffer[R]) popOverflow() (R, bool) {
	if b.maxIdle < 0 || len(b.slots) <= b.maxIdle {
		var zero R
		return zero, false
	}
	slot := b.slots[0]
	b.slots = b.slots[1:]
	if v, ok := slot.value(); ok {
		return v, true
	}
	var zero R
	return zero, false
}

// drain removes and returns every live resource currently idle, for Clear
// and Close.
func (b *idleBuffer[R]) drain() []R {
	out := make([]R, 0, len(b.slots))
	for _, s := range b.slots {
		if v, ok := s.value(); ok {
			out = append(out, v)
		}
	}
	b.slots = nil
	return out
}

// dueForEviction extracts slots that have either been idle longer than
// idleTimeout or not been validated within invalidateEvery, removing them
// from the buffer. expired holds resources past idleTimeout, which the
// caller destroys unconditionally; recheck holds slots due for periodic
// revalidation, which the caller destroys if revalidation fails and
// re-inserts via requeue otherwise.
func (b *idleBuffer[R]) dueForEviction(now time.Time) (expired []R, recheck []*idleSlot[R]) {
	if b.idleTimeout <= 0 && b.invalidateEvery <= 0 {
		return nil, nil
	}
	live := b.slots[:0]
	for _, s := range b.slots {
		v, ok := s.value()
		if !ok {
			continue // dead soft slot, just drop it
		}
		switch {
		case b.idleTimeout > 0 && now.Sub(s.idleSince) >= b.idleTimeout:
			expired = append(expired, v)
		case b.invalidateEvery > 0 && now.Sub(s.lastValidated) >= b.invalidateEvery:
			recheck = append(recheck, s)
		default:
			live = append(live, s)
		}
	}
	b.slots = live
	return expired, recheck
}

// requeue puts a slot that passed its periodic revalidation back at the
// tail of the buffer, with lastValidated refreshed.
func (b *idleBuffer[R]) requeue(s *idleSlot[R], now time.Time) {
	s.lastValidated = now
	b.slots = append(b.slots, s)
}
