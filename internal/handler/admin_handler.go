package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/middleware"
	"dahabiya-site/internal/schema"
	"dahabiya-site/internal/service"
	"dahabiya-site/internal/session"

	"github.com/go-chi/chi/v5"
)

// ContentEditor backs the admin content manager.
type ContentEditor interface {
	Editor(ctx context.Context, pageID string) (*service.EditorPage, error)
	SavePage(ctx context.Context, pageID string, values map[string]string) (int, error)
	Counts(ctx context.Context) (map[string]int, error)
}

// AdminHandler serves the admin panel.
type AdminHandler struct {
	editor    ContentEditor
	catalog   CatalogManager
	structure *schema.Structure
	sessions  session.Manager
	view      middleware.Renderer
	log       logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(editor ContentEditor, catalog CatalogManager, structure *schema.Structure, sm session.Manager, v middleware.Renderer, log logger.Logger) *AdminHandler {
	return &AdminHandler{editor: editor, catalog: catalog, structure: structure, sessions: sm, view: v, log: log}
}

// pageSummary is a dashboard row.
type pageSummary struct {
	Page   *schema.Page
	Fields int
	Stored int
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, name, title string, data map[string]interface{}) *middleware.AppError {
	data["Title"] = title
	data["Pages"] = h.structure.Pages
	data["Flash"] = h.sessions.PopString(r.Context(), session.KeyFlash)
	if err := h.view.Render(w, r, "admin/"+name, data); err != nil {
		return middleware.Internal(err, "Failed to render admin page")
	}
	return nil
}

func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	counts, err := h.editor.Counts(r.Context())
	if err != nil {
		return middleware.Internal(err, "Failed to count content")
	}
	summaries := make([]pageSummary, 0, len(h.structure.Pages))
	for _, p := range h.structure.Pages {
		n := 0
		for _, s := range p.Sections {
			n += len(s.Fields)
		}
		summaries = append(summaries, pageSummary{Page: p, Fields: n, Stored: counts[p.StoragePage()]})
	}
	packages, err := h.catalog.AllPackages(r.Context())
	if err != nil {
		return middleware.Internal(err, "Failed to fetch packages")
	}
	boats, err := h.catalog.AllDahabiyat(r.Context())
	if err != nil {
		return middleware.Internal(err, "Failed to fetch dahabiyat")
	}
	return h.render(w, r, "dashboard.html", "Dashboard", map[string]interface{}{
		"Summaries":     summaries,
		"PackageCount":  len(packages),
		"DahabiyaCount": len(boats),
	})
}

func (h *AdminHandler) editContent(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	editor, err := h.editor.Editor(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		return lookupError(err, "Content page not found")
	}
	return h.render(w, r, "content.html", editor.Page.Title, map[string]interface{}{
		"Editor": editor,
	})
}

// saveContent stores the submitted fields of one editor page and redirects back.
func (h *AdminHandler) saveContent(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pageID := chi.URLParam(r, "page")
	p, ok := h.structure.Page(pageID)
	if !ok {
		return middleware.NotFound(fmt.Errorf("unknown content page %q", pageID))
	}
	if err := r.ParseForm(); err != nil {
		return middleware.BadRequest(err)
	}

	values := make(map[string]string)
	for _, sec := range p.Sections {
		for _, f := range sec.Fields {
			if v, ok := r.PostForm[f.Key]; ok && len(v) > 0 {
				values[f.Key] = v[0]
			}
		}
	}

	n, err := h.editor.SavePage(r.Context(), pageID, values)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			editor, lerr := h.editor.Editor(r.Context(), pageID)
			if lerr != nil {
				return middleware.Internal(lerr, "Failed to load content page")
			}
			w.WriteHeader(http.StatusUnprocessableEntity)
			return h.render(w, r, "content.html", p.Title, map[string]interface{}{
				"Editor":    editor,
				"Submitted": values,
				"Error":     verr,
			})
		}
		return middleware.Internal(err, "Failed to save content")
	}

	h.sessions.Put(r.Context(), session.KeyFlash, fmt.Sprintf("Saved %d field(s).", n))
	http.Redirect(w, r, "/admin/content/"+pageID, http.StatusSeeOther)
	return nil
}

func (h *AdminHandler) listPackages(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	packages, err := h.catalog.AllPackages(r.Context())
	if err != nil {
		return middleware.Internal(err, "Failed to fetch packages")
	}
	return h.render(w, r, "packages.html", "Packages", map[string]interface{}{
		"Packages": packages,
	})
}

func (h *AdminHandler) newPackage(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.packageForm(w, r, &data.Package{IsActive: true, DurationDays: 1}, nil)
}

func (h *AdminHandler) editPackage(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	pkg, err := h.catalog.PackageByID(r.Context(), id)
	if err != nil {
		return lookupError(err, "Package not found")
	}
	return h.packageForm(w, r, pkg, nil)
}

func (h *AdminHandler) packageForm(w http.ResponseWriter, r *http.Request, pkg *data.Package, formErr error) *middleware.AppError {
	boats, err := h.catalog.AllDahabiyat(r.Context())
	if err != nil {
		return middleware.Internal(err, "Failed to fetch dahabiyat")
	}
	title := "New Package"
	if pkg.ID != 0 {
		title = "Edit " + pkg.Name
	}
	var selected int64
	if pkg.DahabiyaID != nil {
		selected = *pkg.DahabiyaID
	}
	return h.render(w, r, "package_form.html", title, map[string]interface{}{
		"Package":   pkg,
		"Dahabiyat": boats,
		"Selected":  selected,
		"Itinerary": formatItinerary(pkg.Itinerary),
		"Error":     formErr,
	})
}

// savePackage handles both create (no id) and update.
func (h *AdminHandler) savePackage(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return middleware.BadRequest(err)
	}
	pkg, err := packageFromForm(r)
	if err != nil {
		return middleware.BadRequest(err)
	}
	if idStr := chi.URLParam(r, "id"); idStr != "" {
		id, appErr := idParam(r)
		if appErr != nil {
			return appErr
		}
		pkg.ID = id
	}

	if err := h.catalog.SavePackage(r.Context(), pkg); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return h.packageForm(w, r, pkg, verr)
		}
		return serviceError(err, "Failed to save package")
	}
	h.sessions.Put(r.Context(), session.KeyFlash, "Package saved.")
	http.Redirect(w, r, "/admin/packages", http.StatusSeeOther)
	return nil
}

func (h *AdminHandler) deletePackage(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	if err := h.catalog.DeletePackage(r.Context(), id); err != nil {
		return serviceError(err, "Failed to delete package")
	}
	h.sessions.Put(r.Context(), session.KeyFlash, "Package deleted.")
	http.Redirect(w, r, "/admin/packages", http.StatusSeeOther)
	return nil
}

// packageFromForm reads the package form. List fields hold one entry per
// line; itinerary lines are "Title | Description".
func packageFromForm(r *http.Request) (*data.Package, error) {
	f := r.PostForm
	pkg := &data.Package{
		Slug:             strings.TrimSpace(f.Get("slug")),
		Name:             f.Get("name"),
		ShortDescription: strings.TrimSpace(f.Get("short_description")),
		Description:      strings.TrimSpace(f.Get("description")),
		MainImageURL:     strings.TrimSpace(f.Get("main_image_url")),
		Highlights:       lines(f.Get("highlights")),
		Inclusions:       lines(f.Get("inclusions")),
		Exclusions:       lines(f.Get("exclusions")),
		IsFeatured:       f.Get("is_featured") != "",
		IsActive:         f.Get("is_active") != "",
	}
	var err error
	if pkg.Price, err = parseFloat(f.Get("price")); err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	if pkg.DurationDays, err = parseInt(f.Get("duration_days")); err != nil {
		return nil, fmt.Errorf("duration_days: %w", err)
	}
	if pkg.MaxGuests, err = parseInt(f.Get("max_guests")); err != nil {
		return nil, fmt.Errorf("max_guests: %w", err)
	}
	if v := strings.TrimSpace(f.Get("dahabiya_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dahabiya_id: %w", err)
		}
		pkg.DahabiyaID = &id
	}
	for i, line := range lines(f.Get("itinerary")) {
		title, desc, _ := strings.Cut(line, "|")
		pkg.Itinerary = append(pkg.Itinerary, data.ItineraryDay{
			DayNumber:   i + 1,
			Title:       strings.TrimSpace(title),
			Description: strings.TrimSpace(desc),
		})
	}
	return pkg, nil
}

func formatItinerary(days []data.ItineraryDay) string {
	sorted := append([]data.ItineraryDay(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DayNumber < sorted[j].DayNumber })
	var b strings.Builder
	for _, d := range sorted {
		b.WriteString(d.Title)
		if d.Description != "" {
			b.WriteString(" | ")
			b.WriteString(d.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func lines(s string) data.StringList {
	var out data.StringList
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func parseFloat(s string) (float64, error) {
	if s = strings.TrimSpace(s); s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int, error) {
	if s = strings.TrimSpace(s); s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
