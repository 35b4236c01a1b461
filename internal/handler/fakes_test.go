//go:build unit

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dahabiya-site/internal/content"
	"dahabiya-site/internal/data"
	"dahabiya-site/internal/i18n"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/middleware"
	"dahabiya-site/internal/nav"
	"dahabiya-site/internal/schema"
	"dahabiya-site/internal/service"
	"dahabiya-site/internal/view"
	"dahabiya-site/web"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// fakeContent serves fixed page values with the structure defaults.
type fakeContent struct {
	pages map[string]map[string]string
	loads map[string]int
}

var _ ContentLoader = (*fakeContent)(nil)

func newFakeContent() *fakeContent {
	return &fakeContent{pages: make(map[string]map[string]string), loads: make(map[string]int)}
}

func (f *fakeContent) set(page, key, value string) {
	if f.pages[page] == nil {
		f.pages[page] = make(map[string]string)
	}
	f.pages[page][key] = value
}

func (f *fakeContent) Load(ctx context.Context, page string) content.Map {
	f.loads[page]++
	st := schema.MustDefault()
	return content.NewMap(page, f.pages[page], func(key string) string { return st.DefaultValue(page, key) })
}

// fakeCatalog is an in-memory CatalogManager.
type fakeCatalog struct {
	boats    []*data.Dahabiya
	packages []*data.Package
	services *service.ServicePage
	dests    []*data.Destination
	err      error
	saved    *data.Package
	saveErr  error
	deleted  int64
}

var _ CatalogManager = (*fakeCatalog)(nil)

func (f *fakeCatalog) Dahabiyat(ctx context.Context, featuredOnly bool, limit int) ([]*data.Dahabiya, error) {
	return f.boats, f.err
}

func (f *fakeCatalog) Dahabiya(ctx context.Context, slug string) (*data.Dahabiya, error) {
	for _, b := range f.boats {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, data.ErrNotFound
}

func (f *fakeCatalog) Packages(ctx context.Context, featuredOnly bool, limit int) ([]*data.Package, error) {
	return f.packages, f.err
}

func (f *fakeCatalog) Package(ctx context.Context, slug string) (*data.Package, error) {
	for _, p := range f.packages {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, data.ErrNotFound
}

func (f *fakeCatalog) Services(ctx context.Context, q service.ServiceQuery) (*service.ServicePage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.services == nil {
		return &service.ServicePage{CurrentPage: 1}, nil
	}
	return f.services, nil
}

func (f *fakeCatalog) Destinations(ctx context.Context) ([]*data.Destination, error) {
	return f.dests, f.err
}

func (f *fakeCatalog) AllDahabiyat(ctx context.Context) ([]*data.Dahabiya, error) {
	return f.boats, nil
}

func (f *fakeCatalog) DahabiyaByID(ctx context.Context, id int64) (*data.Dahabiya, error) {
	for _, b := range f.boats {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, data.ErrNotFound
}

func (f *fakeCatalog) SaveDahabiya(ctx context.Context, boat *data.Dahabiya) error {
	if boat.ID == 0 {
		boat.ID = int64(len(f.boats) + 1)
		f.boats = append(f.boats, boat)
	}
	return f.saveErr
}

func (f *fakeCatalog) DeleteDahabiya(ctx context.Context, id int64) error {
	f.deleted = id
	return f.saveErr
}

func (f *fakeCatalog) AllPackages(ctx context.Context) ([]*data.Package, error) {
	return f.packages, nil
}

func (f *fakeCatalog) PackageByID(ctx context.Context, id int64) (*data.Package, error) {
	for _, p := range f.packages {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, data.ErrNotFound
}

func (f *fakeCatalog) SavePackage(ctx context.Context, pkg *data.Package) error {
	f.saved = pkg
	if f.saveErr != nil {
		return f.saveErr
	}
	if pkg.ID == 0 {
		pkg.ID = int64(len(f.packages) + 1)
	}
	return nil
}

func (f *fakeCatalog) DeletePackage(ctx context.Context, id int64) error {
	f.deleted = id
	return f.saveErr
}

type fakeBlog struct {
	posts []*data.BlogPost
}

var _ BlogReader = (*fakeBlog)(nil)

func (f *fakeBlog) Posts(ctx context.Context, limit int) ([]*data.BlogPost, error) {
	return f.posts, nil
}

func (f *fakeBlog) Post(ctx context.Context, slug string) (*data.BlogPost, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, data.ErrNotFound
}

// fakeMenus returns the default menus with a fixed destinations panel.
type fakeMenus struct {
	dests []*data.Destination
}

func (f *fakeMenus) Menu(ctx context.Context, location string) []nav.Item {
	if location == nav.LocationFooter {
		return nav.DefaultFooter
	}
	return nav.WithDestinations(nav.DefaultHeader, f.dests)
}

func newTestView(t *testing.T) *view.View {
	t.Helper()
	catalog, err := i18n.New([]string{"en", "ar"}, "en")
	require.NoError(t, err)
	v, err := view.New(web.TemplateFS, catalog)
	require.NoError(t, err)
	return v
}

// routeOnce serves a single AppHandler behind the HTML error middleware.
func routeOnce(v *view.View, method, pattern string, fn middleware.AppHandler) http.Handler {
	r := chi.NewRouter()
	r.Method(method, pattern, middleware.Error(logger.Nop(), v)(fn))
	return r
}

// fetch runs req against h and parses the HTML response.
func fetch(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rr.Body.String()))
	require.NoError(t, err)
	return rr, doc
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	return fetch(t, h, httptest.NewRequest(http.MethodGet, target, nil))
}

// memContentRepo is an in-memory service.ContentRepository.
type memContentRepo struct {
	items map[string]*data.ContentItem // page + "/" + key
}

var _ service.ContentRepository = (*memContentRepo)(nil)

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{items: make(map[string]*data.ContentItem)}
}

func (m *memContentRepo) ListByPage(ctx context.Context, page, section string, activeOnly bool) ([]*data.ContentItem, error) {
	var out []*data.ContentItem
	for _, it := range m.items {
		if it.Page != page || (section != "" && it.Section != section) || (activeOnly && !it.IsActive) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *memContentRepo) ListActive(ctx context.Context) ([]*data.ContentItem, error) {
	var out []*data.ContentItem
	for _, it := range m.items {
		if it.IsActive {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memContentRepo) Get(ctx context.Context, page, key string) (*data.ContentItem, error) {
	if it, ok := m.items[page+"/"+key]; ok {
		return it, nil
	}
	return nil, data.ErrNotFound
}

func (m *memContentRepo) Upsert(ctx context.Context, item *data.ContentItem) error {
	cp := *item
	m.items[item.Page+"/"+item.Key] = &cp
	return nil
}

func (m *memContentRepo) Delete(ctx context.Context, page, key string) error {
	if _, ok := m.items[page+"/"+key]; !ok {
		return data.ErrNotFound
	}
	delete(m.items, page+"/"+key)
	return nil
}

func (m *memContentRepo) CountByPage(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int)
	for _, it := range m.items {
		out[it.Page]++
	}
	return out, nil
}
