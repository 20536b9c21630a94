package game

import "sync"

// Flash is a pending celebration for the presentation layer.
type Flash struct {
	Amount int  `json:"amount"`
	Major  bool `json:"major"`
	// Seq increases with every trigger so hosts can tell repeated flashes apart.
	Seq uint64 `json:"seq"`
}

// RewardSignal is a read-once notification channel between a session and its host.
// It owns no business data; the session triggers it and the host consumes it.
type RewardSignal struct {
	mu      sync.Mutex
	seq     uint64
	pending *Flash
}

func NewRewardSignal() *RewardSignal {
	return &RewardSignal{}
}

// Trigger records that a reward of amount just happened. A later trigger replaces
// an unconsumed one.
func (r *RewardSignal) Trigger(amount int, major bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.pending = &Flash{Amount: amount, Major: major, Seq: r.seq}
}

// Consume returns the pending flash and clears it.
func (r *RewardSignal) Consume() (Flash, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return Flash{}, false
	}
	f := *r.pending
	r.pending = nil
	return f, true
}

// Peek returns the pending flash without clearing it.
func (r *RewardSignal) Peek() (Flash, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return Flash{}, false
	}
	return *r.pending, true
}

// Reset returns the signal to idle.
func (r *RewardSignal) Reset() {
	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()
}
