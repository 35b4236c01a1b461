//go:build unit

package nav

import (
	"sync"
	"testing"
	"time"

	"dahabiya-site/internal/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock collects scheduled functions so tests decide when time passes.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *fakeClock) schedule(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// advance fires every live timer due within d.
func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && t.d <= d {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func TestDropdown_HoverOpensAndLeaveClosesAfterDelay(t *testing.T) {
	clock := &fakeClock{}
	d := newDropdown(250*time.Millisecond, clock.schedule, nil)

	d.Hover("destinations")
	assert.Equal(t, "destinations", d.Active())

	d.Leave("destinations")
	clock.advance(100 * time.Millisecond)
	assert.Equal(t, "destinations", d.Active(), "still open before the delay")

	clock.advance(250 * time.Millisecond)
	assert.Equal(t, "", d.Active(), "closed after the delay")
}

func TestDropdown_EnteringPanelCancelsClose(t *testing.T) {
	clock := &fakeClock{}
	d := newDropdown(250*time.Millisecond, clock.schedule, nil)

	d.Hover("destinations")
	d.Leave("destinations") // pointer moves from trigger...
	d.Hover("destinations") // ...into the panel
	clock.advance(time.Second)
	assert.Equal(t, "destinations", d.Active())
}

func TestDropdown_StaleTimerIsIgnored(t *testing.T) {
	clock := &fakeClock{}
	d := newDropdown(250*time.Millisecond, clock.schedule, nil)

	d.Hover("a")
	d.Leave("a")
	stale := clock.timers[0]
	d.Hover("b")
	stale.f() // fires even though it was stopped
	assert.Equal(t, "b", d.Active())
}

func TestDropdown_ClickPins(t *testing.T) {
	clock := &fakeClock{}
	d := newDropdown(250*time.Millisecond, clock.schedule, nil)

	d.Click("dahabiyat")
	assert.Equal(t, "dahabiyat", d.Active())
	assert.True(t, d.Pinned())

	d.Leave("dahabiyat")
	clock.advance(time.Second)
	assert.Equal(t, "dahabiyat", d.Active(), "pinned panel ignores pointer leave")

	d.Click("dahabiyat")
	assert.Equal(t, "", d.Active(), "second click unpins and closes")
	assert.False(t, d.Pinned())
}

func TestDropdown_ClickAfterHoverPins(t *testing.T) {
	d := newDropdown(0, (&fakeClock{}).schedule, nil)
	d.Hover("packages")
	d.Click("packages")
	assert.Equal(t, "packages", d.Active())
	assert.True(t, d.Pinned())
}

func TestDropdown_DismissOutside(t *testing.T) {
	var changes []string
	d := newDropdown(0, (&fakeClock{}).schedule, func(active string) { changes = append(changes, active) })
	d.Click("blog")
	d.DismissOutside()
	assert.Equal(t, "", d.Active())
	assert.False(t, d.Pinned())
	assert.Equal(t, []string{"blog", ""}, changes)
}

func TestDropdown_RealTimer(t *testing.T) {
	d := NewDropdown(20*time.Millisecond, nil)
	d.Hover("destinations")
	d.Leave("destinations")
	require.Eventually(t, func() bool { return d.Active() == "" }, time.Second, 5*time.Millisecond)
}

func TestPanelPosition(t *testing.T) {
	pos := PanelPosition(Rect{Top: 10, Left: 200, Bottom: 60, Width: 120}, 5, 300)
	assert.Equal(t, Position{Top: 360, Left: 205, Width: 120}, pos)
}

func TestScrollState(t *testing.T) {
	s := &ScrollState{Threshold: 20}
	assert.False(t, s.Update(10))
	assert.True(t, s.Update(21))
	assert.True(t, s.Scrolled())
	assert.Contains(t, s.HeaderClass(), "solid")
	assert.False(t, s.Update(400))
	assert.True(t, s.Update(0))
	assert.Contains(t, s.HeaderClass(), "transparent")
}

func TestDrawer(t *testing.T) {
	var d Drawer
	assert.True(t, d.Toggle())
	assert.True(t, d.Open())
	assert.False(t, d.Toggle())
	d.Toggle()
	d.Close()
	assert.False(t, d.Open())
}

func TestMarkActive(t *testing.T) {
	items := WithDestinations(DefaultHeader, []*data.Destination{{Slug: "luxor", Name: "Luxor"}})
	marked := MarkActive(items, "/packages/classic-nile", "destinations")

	byID := map[string]Item{}
	for _, it := range marked {
		byID[it.ID] = it
	}
	assert.True(t, byID["packages"].Active)
	assert.False(t, byID["home"].Active)
	assert.True(t, byID["destinations"].Open)
	require.Len(t, byID["destinations"].Children, 1)
	assert.Equal(t, "/destinations#luxor", byID["destinations"].Children[0].Href)

	assert.Empty(t, DefaultHeader[4].Children, "defaults are not mutated")
	assert.True(t, MarkActive(DefaultHeader, "/", "")[0].Active)
}

func TestFromStore(t *testing.T) {
	parent := &data.NavigationItem{Title: "Fleet", URL: "/dahabiyat"}
	parent.Children = []*data.NavigationItem{{Title: "Royal Cleopatra", URL: "/dahabiyat/royal-cleopatra"}}
	items := FromStore([]*data.NavigationItem{parent})
	require.Len(t, items, 1)
	assert.Equal(t, "dahabiyat", items[0].ID)
	assert.Equal(t, "Royal Cleopatra", items[0].Children[0].Label)
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs(DefaultHeader, "/dahabiyat/royal-cleopatra", "Royal Cleopatra")
	require.Len(t, crumbs, 3)
	assert.Equal(t, "nav.home", crumbs[0].LabelKey)
	assert.Equal(t, "nav.dahabiyat", crumbs[1].LabelKey)
	assert.Equal(t, "Royal Cleopatra", crumbs[2].Label)
	assert.True(t, crumbs[2].Active)

	crumbs = Breadcrumbs(nil, "/travel-tips/best-season", "")
	assert.Equal(t, "Travel tips", crumbs[1].Label)
	assert.Equal(t, "Best season", crumbs[2].Label)

	assert.Len(t, Breadcrumbs(nil, "/", ""), 1)
}
