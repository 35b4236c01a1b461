package handler

import (
	"context"
	"net/http"
	"time"

	"dahabiya-site/internal/content"
	"dahabiya-site/internal/nav"
)

// Content pages read by the navigation shell.
const (
	pageBranding    = "branding_settings"
	pageFooter      = "footer"
	pageGlobalMedia = "global_media"
	pageContact     = "contact"
)

// ContentLoader resolves the content map of a page.
type ContentLoader interface {
	Load(ctx context.Context, page string) content.Map
}

// MenuBuilder builds the menu of a location.
type MenuBuilder interface {
	Menu(ctx context.Context, location string) []nav.Item
}

// ShellOptions configures the navigation shell.
type ShellOptions struct {
	SiteName        string
	MenuCloseDelay  time.Duration
	ScrollThreshold int
}

// Shell is the header and footer of every public page.
type Shell struct {
	SiteName        string
	Header          []nav.Item
	Footer          []nav.Item
	Breadcrumbs     []nav.Crumb
	Branding        content.Map
	FooterContent   content.Map
	Global          content.Map
	Contact         content.Map
	HeaderClass     string
	DrawerOpen      bool
	OpenMenu        string
	MenuCloseDelay  int64 // milliseconds
	ScrollThreshold int
}

// shellBuilder assembles the Shell of a request.
type shellBuilder struct {
	content ContentLoader
	menus   MenuBuilder
	opts    ShellOptions
}

// build resolves menus and shell content. In basic mode ?menu=<id> opens a
// mega-menu panel and ?drawer=open opens the mobile drawer, since no script
// drives them.
func (b *shellBuilder) build(r *http.Request, title string) *Shell {
	ctx := r.Context()
	q := r.URL.Query()

	dropdown := nav.NewDropdown(b.opts.MenuCloseDelay, nil)
	if id := q.Get("menu"); id != "" {
		dropdown.Click(id)
	}
	var drawer nav.Drawer
	if q.Get("drawer") == "open" {
		drawer.Toggle()
	}
	scroll := nav.ScrollState{Threshold: float64(b.opts.ScrollThreshold)}

	header := nav.MarkActive(b.menus.Menu(ctx, nav.LocationHeader), r.URL.Path, dropdown.Active())
	s := &Shell{
		SiteName:        b.opts.SiteName,
		Header:          header,
		Footer:          nav.MarkActive(b.menus.Menu(ctx, nav.LocationFooter), r.URL.Path, ""),
		Breadcrumbs:     nav.Breadcrumbs(header, r.URL.Path, title),
		Branding:        b.content.Load(ctx, pageBranding),
		FooterContent:   b.content.Load(ctx, pageFooter),
		Global:          b.content.Load(ctx, pageGlobalMedia),
		Contact:         b.content.Load(ctx, pageContact),
		HeaderClass:     scroll.HeaderClass(),
		DrawerOpen:      drawer.Open(),
		OpenMenu:        dropdown.Active(),
		MenuCloseDelay:  b.opts.MenuCloseDelay.Milliseconds(),
		ScrollThreshold: b.opts.ScrollThreshold,
	}
	if name := s.Branding.Get("site_name", ""); name != "" {
		s.SiteName = name
	}
	return s
}
