package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"

	"dahabiya-site/internal/i18n"
)

// View represents a collection of parsed HTML templates.
type View struct {
	templates map[string]*template.Template
	catalog   *i18n.Catalog
}

// New creates a new View by parsing all templates from the given filesystem.
// Admin pages are parsed with the admin layout, all others with the site layouts.
func New(templateFS fs.FS, catalog *i18n.Catalog) (*View, error) {
	v := &View{
		templates: make(map[string]*template.Template),
		catalog:   catalog,
	}

	layouts, err := fs.Glob(templateFS, "templates/layouts/*.html")
	if err != nil {
		return nil, err
	}
	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	adminPages, err := fs.Glob(templateFS, "templates/admin/*.html")
	if err != nil {
		return nil, err
	}

	for _, page := range append(pages, adminPages...) {
		files := append(append([]string{}, layouts...), page)
		name := filepath.Base(page)
		if filepath.Base(filepath.Dir(page)) == "admin" {
			name = "admin/" + name
		}
		ts, err := template.New(filepath.Base(page)).Funcs(funcMap(catalog)).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		v.templates[name] = ts
	}

	return v, nil
}

// Has reports whether a template with the given name was parsed.
func (v *View) Has(name string) bool {
	_, ok := v.templates[name]
	return ok
}

// Render executes a specific template by name.
func (v *View) Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error {
	ts, ok := v.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	s := SettingsFrom(r.Context())
	if s.Lang == "" && v.catalog != nil {
		s.Lang = v.catalog.Default()
	}
	data["IsBasicMode"] = s.BasicMode
	data["Lang"] = s.Lang
	data["Dir"] = "ltr"
	if s.RTL {
		data["Dir"] = "rtl"
	}
	data["User"] = s.User
	data["IsAdmin"] = s.IsAdmin
	data["Path"] = r.URL.Path
	data["Query"] = r.URL.Query()
	if v.catalog != nil {
		data["Languages"] = v.catalog.Languages()
	}

	// Execute the template into a buffer first to catch any errors
	// before writing to the response writer.
	buf := new(bytes.Buffer)
	if err := ts.Execute(buf, data); err != nil {
		return err
	}

	if rw, ok := w.(http.ResponseWriter); ok && rw.Header().Get("Content-Type") == "" {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	_, err := buf.WriteTo(w)
	return err
}
