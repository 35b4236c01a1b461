// Package nav builds the site header and footer menus and holds the
// interaction state of the navigation shell.
package nav

import (
	"path"
	"strings"

	"dahabiya-site/internal/data"
)

// Item is a menu entry. Label is shown as is; otherwise LabelKey is translated.
type Item struct {
	ID       string
	Href     string
	Label    string
	LabelKey string
	Icon     string
	Children []Item
	Active   bool
	Open     bool
}

// Crumb is one breadcrumb entry. If Label is empty, LabelKey is translated.
type Crumb struct {
	Href     string
	Label    string
	LabelKey string
	Active   bool
}

// Header location names as stored on navigation items.
const (
	LocationHeader = "header"
	LocationFooter = "footer"
)

// DestinationsID identifies the mega-menu fed by the destination list.
const DestinationsID = "destinations"

// DefaultHeader is used when the store has no header menu.
var DefaultHeader = []Item{
	{ID: "home", Href: "/", LabelKey: "nav.home", Icon: "home"},
	{ID: "dahabiyat", Href: "/dahabiyat", LabelKey: "nav.dahabiyat", Icon: "ship"},
	{ID: "packages", Href: "/packages", LabelKey: "nav.packages", Icon: "package"},
	{ID: "excursions", Href: "/excursions", LabelKey: "nav.excursions", Icon: "map"},
	{ID: DestinationsID, Href: "/destinations", LabelKey: "nav.destinations", Icon: "map-pin"},
	{ID: "blog", Href: "/blog", LabelKey: "nav.blog", Icon: "file-text"},
}

// DefaultFooter is used when the store has no footer menu.
var DefaultFooter = []Item{
	{ID: "home", Href: "/", LabelKey: "nav.home"},
	{ID: "dahabiyat", Href: "/dahabiyat", LabelKey: "nav.dahabiyat"},
	{ID: "packages", Href: "/packages", LabelKey: "nav.packages"},
	{ID: "excursions", Href: "/excursions", LabelKey: "nav.excursions"},
	{ID: "blog", Href: "/blog", LabelKey: "nav.blog"},
}

// FromStore converts stored navigation entries, keeping their nesting.
func FromStore(entries []*data.NavigationItem) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, Item{
			ID:       idFromHref(e.URL),
			Href:     e.URL,
			Label:    e.Title,
			Icon:     e.Icon,
			Children: FromStore(e.Children),
		})
	}
	return items
}

// WithDestinations fills the destinations mega-menu with one child per destination.
func WithDestinations(items []Item, destinations []*data.Destination) []Item {
	out := clone(items)
	for i := range out {
		if out[i].ID != DestinationsID || len(destinations) == 0 {
			continue
		}
		children := make([]Item, 0, len(destinations))
		for _, d := range destinations {
			children = append(children, Item{ID: d.Slug, Href: "/destinations#" + d.Slug, Label: d.Name})
		}
		out[i].Children = children
	}
	return out
}

// MarkActive flags the items (and children) matching currentPath and the
// open panel.
func MarkActive(items []Item, currentPath, openID string) []Item {
	out := clone(items)
	for i := range out {
		out[i].Active = isActive(out[i].Href, currentPath)
		out[i].Open = openID != "" && out[i].ID == openID
		for j := range out[i].Children {
			child := &out[i].Children[j]
			child.Active = isActive(child.Href, currentPath)
			if child.Active {
				out[i].Active = true
			}
		}
	}
	return out
}

func isActive(itemPath, currentPath string) bool {
	if currentPath == "" {
		currentPath = "/"
	}
	if i := strings.IndexAny(itemPath, "?#"); i >= 0 {
		itemPath = itemPath[:i]
	}
	if itemPath == "" || strings.Contains(itemPath, "://") {
		return false
	}
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/packages" or "/packages/..."
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds entries from Home down to currentPath. Top-level
// sections known to items take their label; deeper segments use title (if
// set, for the last segment) or a prettified segment.
func Breadcrumbs(items []Item, currentPath, title string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	parts := strings.Split(strings.TrimPrefix(path.Clean(currentPath), "/"), "/")
	href := ""
	for i, seg := range parts {
		href += "/" + seg
		last := i == len(parts)-1
		c := Crumb{Href: href, Label: titleFromSegment(seg), Active: last}
		if i == 0 {
			for _, it := range items {
				if it.Href == href {
					c.Label, c.LabelKey = it.Label, it.LabelKey
					break
				}
			}
		}
		if last && title != "" {
			c.Label, c.LabelKey = title, ""
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}

func idFromHref(href string) string {
	trimmed := strings.Trim(href, "/")
	if trimmed == "" {
		return "home"
	}
	if i := strings.IndexAny(trimmed, "/?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

func clone(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it
		if it.Children != nil {
			out[i].Children = clone(it.Children)
		}
	}
	return out
}
