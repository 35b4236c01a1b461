package nav

import "sync"

// Rect is a trigger's bounding box in viewport coordinates.
type Rect struct {
	Top, Left, Bottom, Right, Width, Height float64
}

// Position places a dropdown panel in document coordinates.
type Position struct {
	Top   float64 `json:"top"`
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// PanelPosition anchors a panel under its trigger: directly below the
// trigger's bottom edge, aligned with its left edge, as wide as the trigger.
func PanelPosition(trigger Rect, scrollX, scrollY float64) Position {
	return Position{
		Top:   trigger.Bottom + scrollY,
		Left:  trigger.Left + scrollX,
		Width: trigger.Width,
	}
}

// ScrollState tracks whether the page has scrolled past the header threshold.
type ScrollState struct {
	Threshold float64
	scrolled  bool
}

// Update records the vertical scroll offset and reports whether the
// scrolled state changed.
func (s *ScrollState) Update(scrollY float64) bool {
	next := scrollY > s.Threshold
	changed := next != s.scrolled
	s.scrolled = next
	return changed
}

// Scrolled reports whether the last offset was past the threshold.
func (s *ScrollState) Scrolled() bool { return s.scrolled }

// HeaderClass returns the header style for the scroll state.
func (s *ScrollState) HeaderClass() string {
	if s.scrolled {
		return "site-header site-header--solid"
	}
	return "site-header site-header--transparent"
}

// Drawer is the mobile navigation drawer.
type Drawer struct {
	mu   sync.Mutex
	open bool
}

// Toggle flips the drawer and returns the new state.
func (d *Drawer) Toggle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = !d.open
	return d.open
}

// Close shuts the drawer, e.g. after a link is followed.
func (d *Drawer) Close() {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
}

// Open reports whether the drawer is open.
func (d *Drawer) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}
