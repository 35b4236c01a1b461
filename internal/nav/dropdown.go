package nav

import (
	"sync"
	"time"
)

// DefaultCloseDelay is how long a hover-opened panel stays open after the
// pointer leaves both its trigger and the panel.
const DefaultCloseDelay = 250 * time.Millisecond

// Stopper cancels a scheduled function.
type Stopper interface {
	Stop() bool
}

// ScheduleFunc runs f after d. time.AfterFunc satisfies it.
type ScheduleFunc func(d time.Duration, f func()) Stopper

func afterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

// Dropdown is the open/close state of the mega-menu panels. At most one
// panel is open. A panel opened by click is pinned and ignores pointer
// leave; one opened by hover closes after the delay once the pointer has
// left. Dropdown is safe for concurrent use.
type Dropdown struct {
	mu       sync.Mutex
	delay    time.Duration
	schedule ScheduleFunc
	onChange func(active string)

	active  string
	pinned  string
	pending Stopper
	gen     uint64
}

// NewDropdown creates a Dropdown. A non-positive delay uses DefaultCloseDelay.
// onChange, if not nil, is called with the new active id ("" when closed)
// whenever it changes.
func NewDropdown(delay time.Duration, onChange func(active string)) *Dropdown {
	return newDropdown(delay, afterFunc, onChange)
}

func newDropdown(delay time.Duration, schedule ScheduleFunc, onChange func(string)) *Dropdown {
	if delay <= 0 {
		delay = DefaultCloseDelay
	}
	return &Dropdown{delay: delay, schedule: schedule, onChange: onChange}
}

// Active returns the id of the open panel, or "".
func (d *Dropdown) Active() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Pinned reports whether the open panel was opened by click.
func (d *Dropdown) Pinned() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active != "" && d.pinned == d.active
}

// Hover opens panel id and cancels any pending close. It is used both for
// the pointer entering a trigger and for it entering the open panel.
func (d *Dropdown) Hover(id string) {
	d.mu.Lock()
	d.cancelLocked()
	changed := d.setLocked(id)
	d.mu.Unlock()
	d.notify(changed, id)
}

// Leave schedules the panel to close after the delay, unless panel id is
// pinned. Re-entering the trigger or panel before then cancels the close.
func (d *Dropdown) Leave(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pinned == id {
		return
	}
	d.cancelLocked()
	gen := d.gen
	d.pending = d.schedule(d.delay, func() { d.fire(gen) })
}

// Click toggles the pin on panel id: a pinned open panel closes, anything
// else opens id pinned.
func (d *Dropdown) Click(id string) {
	d.mu.Lock()
	d.cancelLocked()
	var next string
	if d.active == id && d.pinned == id {
		d.pinned = ""
	} else {
		next = id
		d.pinned = id
	}
	changed := d.setLocked(next)
	d.mu.Unlock()
	d.notify(changed, next)
}

// DismissOutside closes the panel immediately, pinned or not.
func (d *Dropdown) DismissOutside() {
	d.mu.Lock()
	d.cancelLocked()
	d.pinned = ""
	changed := d.setLocked("")
	d.mu.Unlock()
	d.notify(changed, "")
}

func (d *Dropdown) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		// Cancelled after the timer had already fired.
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.pinned = ""
	changed := d.setLocked("")
	d.mu.Unlock()
	d.notify(changed, "")
}

func (d *Dropdown) cancelLocked() {
	d.gen++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

func (d *Dropdown) setLocked(id string) bool {
	if d.active == id {
		return false
	}
	d.active = id
	return true
}

func (d *Dropdown) notify(changed bool, active string) {
	if changed && d.onChange != nil {
		d.onChange(active)
	}
}
