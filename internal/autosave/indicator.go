package autosave

import (
	"sync"
	"time"
)

// Status is the save indicator shown next to the idea.
type Status int

const (
	StatusIdle Status = iota
	StatusSaving
	StatusSaved
)

func (s Status) String() string {
	switch s {
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	default:
		return "idle"
	}
}

// Indicator moves idle -> saving -> saved and back to idle after the display period.
type Indicator struct {
	display  time.Duration
	onChange func(Status)

	mu     sync.Mutex
	status Status
	timer  *time.Timer
	seq    uint64
}

// NewIndicator returns an idle indicator. onChange may be nil.
func NewIndicator(display time.Duration, onChange func(Status)) *Indicator {
	return &Indicator{display: display, onChange: onChange}
}

// Status returns the current state.
func (i *Indicator) Status() Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.status
}

// Saving marks a write as pending.
func (i *Indicator) Saving() { i.set(StatusSaving, false) }

// Saved marks the write as done and schedules the return to idle.
func (i *Indicator) Saved() { i.set(StatusSaved, true) }

// Reset returns to idle immediately.
func (i *Indicator) Reset() { i.set(StatusIdle, false) }

// Stop cancels a scheduled return to idle without changing the state.
func (i *Indicator) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopTimerLocked()
}

func (i *Indicator) set(s Status, expire bool) {
	i.mu.Lock()
	i.stopTimerLocked()
	changed := i.status != s
	i.status = s
	if expire {
		seq := i.seq
		i.timer = time.AfterFunc(i.display, func() { i.expire(seq) })
	}
	i.mu.Unlock()

	if changed {
		i.notify(s)
	}
}

func (i *Indicator) expire(seq uint64) {
	i.mu.Lock()
	if seq != i.seq || i.status != StatusSaved {
		i.mu.Unlock()
		return
	}
	i.timer = nil
	i.status = StatusIdle
	i.mu.Unlock()

	i.notify(StatusIdle)
}

func (i *Indicator) stopTimerLocked() {
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
	i.seq++
}

func (i *Indicator) notify(s Status) {
	if i.onChange != nil {
		i.onChange(s)
	}
}
