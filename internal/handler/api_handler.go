package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/middleware"
	"dahabiya-site/internal/nav"
	"dahabiya-site/internal/service"

	"github.com/go-chi/chi/v5"
)

// ContentManager reads and writes editable content.
type ContentManager interface {
	List(ctx context.Context, page, section string) ([]*data.ContentItem, error)
	Settings(ctx context.Context, page string) (map[string]string, error)
	Save(ctx context.Context, in service.ContentInput) (*data.ContentItem, error)
	Delete(ctx context.Context, page, key string) error
}

// CatalogManager is the catalog with admin writes.
type CatalogManager interface {
	CatalogReader
	AllDahabiyat(ctx context.Context) ([]*data.Dahabiya, error)
	DahabiyaByID(ctx context.Context, id int64) (*data.Dahabiya, error)
	SaveDahabiya(ctx context.Context, boat *data.Dahabiya) error
	DeleteDahabiya(ctx context.Context, id int64) error
	AllPackages(ctx context.Context) ([]*data.Package, error)
	PackageByID(ctx context.Context, id int64) (*data.Package, error)
	SavePackage(ctx context.Context, pkg *data.Package) error
	DeletePackage(ctx context.Context, id int64) error
}

// NavigationManager reads and writes stored menus.
type NavigationManager interface {
	Stored(ctx context.Context, location string) ([]*data.NavigationItem, error)
	Create(ctx context.Context, item *data.NavigationItem) error
	Update(ctx context.Context, item *data.NavigationItem) error
	Delete(ctx context.Context, id int64) error
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// APIHandler serves the JSON API.
type APIHandler struct {
	content ContentManager
	catalog CatalogManager
	menus   NavigationManager
	log     logger.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(cm ContentManager, catalog CatalogManager, menus NavigationManager, log logger.Logger) *APIHandler {
	return &APIHandler{content: cm, catalog: catalog, menus: menus, log: log}
}

func (h *APIHandler) listContent(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page := r.URL.Query().Get("page")
	if page == "" {
		return middleware.BadRequest(errors.New("page is required"))
	}
	items, err := h.content.List(r.Context(), page, r.URL.Query().Get("section"))
	if err != nil {
		return middleware.Internal(err, "Failed to fetch content")
	}
	if items == nil {
		items = []*data.ContentItem{}
	}
	return writeJSON(w, http.StatusOK, items)
}

func (h *APIHandler) saveContent(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var in service.ContentInput
	if appErr := decodeJSON(w, r, &in); appErr != nil {
		return appErr
	}
	item, err := h.content.Save(r.Context(), in)
	if err != nil {
		return serviceError(err, "Failed to save content")
	}
	return writeJSON(w, http.StatusOK, item)
}

func (h *APIHandler) deleteContent(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page, key := r.URL.Query().Get("page"), r.URL.Query().Get("key")
	if page == "" || key == "" {
		return middleware.BadRequest(errors.New("page and key are required"))
	}
	if err := h.content.Delete(r.Context(), page, key); err != nil {
		return serviceError(err, "Failed to delete content")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *APIHandler) settings(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	settings, err := h.content.Settings(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		return middleware.Internal(err, "Failed to fetch settings")
	}
	return writeJSON(w, http.StatusOK, settings)
}

func (h *APIHandler) listPackages(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	packages, err := h.catalog.Packages(r.Context(), q.Get("featured") == "true", limit)
	if err != nil {
		return middleware.Internal(err, "Failed to fetch packages")
	}
	if packages == nil {
		packages = []*data.Package{}
	}
	return writeJSON(w, http.StatusOK, packages)
}

func (h *APIHandler) getPackage(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pkg, err := h.catalog.Package(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return serviceError(err, "Failed to fetch package")
	}
	return writeJSON(w, http.StatusOK, pkg)
}

func (h *APIHandler) listDahabiyat(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	boats, err := h.catalog.Dahabiyat(r.Context(), q.Get("featured") == "true", limit)
	if err != nil {
		return middleware.Internal(err, "Failed to fetch dahabiyat")
	}
	if boats == nil {
		boats = []*data.Dahabiya{}
	}
	return writeJSON(w, http.StatusOK, boats)
}

func (h *APIHandler) getDahabiya(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	boat, err := h.catalog.Dahabiya(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return serviceError(err, "Failed to fetch dahabiya")
	}
	return writeJSON(w, http.StatusOK, boat)
}

func (h *APIHandler) listDestinations(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	dests, err := h.catalog.Destinations(r.Context())
	if err != nil {
		return middleware.Internal(err, "Failed to fetch destinations")
	}
	if dests == nil {
		dests = []*data.Destination{}
	}
	return writeJSON(w, http.StatusOK, dests)
}

// listServices pages travel services: ?page=&limit=&type=&active=.
// active defaults to true.
func (h *APIHandler) listServices(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	result, err := h.catalog.Services(r.Context(), service.ServiceQuery{
		Page:   page,
		Limit:  limit,
		Type:   q.Get("type"),
		Active: q.Get("active") != "false",
	})
	if err != nil {
		return middleware.Internal(err, "Failed to fetch travel services")
	}
	return writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) navigation(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	location := r.URL.Query().Get("location")
	if location == "" {
		location = nav.LocationHeader
	}
	items, err := h.menus.Stored(r.Context(), location)
	if err != nil {
		return middleware.Internal(err, "Failed to fetch navigation")
	}
	return writeJSON(w, http.StatusOK, items)
}

func (h *APIHandler) createNavigation(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var item data.NavigationItem
	if appErr := decodeJSON(w, r, &item); appErr != nil {
		return appErr
	}
	item.ID = 0
	if err := h.menus.Create(r.Context(), &item); err != nil {
		return serviceError(err, "Failed to create navigation item")
	}
	return writeJSON(w, http.StatusCreated, &item)
}

func (h *APIHandler) updateNavigation(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	var item data.NavigationItem
	if appErr := decodeJSON(w, r, &item); appErr != nil {
		return appErr
	}
	item.ID = id
	if err := h.menus.Update(r.Context(), &item); err != nil {
		return serviceError(err, "Failed to update navigation item")
	}
	return writeJSON(w, http.StatusOK, &item)
}

func (h *APIHandler) deleteNavigation(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	if err := h.menus.Delete(r.Context(), id); err != nil {
		return serviceError(err, "Failed to delete navigation item")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *APIHandler) adminListPackages(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	packages, err := h.catalog.AllPackages(r.Context())
	if err != nil {
		return middleware.Internal(err, "Failed to fetch packages")
	}
	if packages == nil {
		packages = []*data.Package{}
	}
	return writeJSON(w, http.StatusOK, packages)
}

func (h *APIHandler) createPackage(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var pkg data.Package
	if appErr := decodeJSON(w, r, &pkg); appErr != nil {
		return appErr
	}
	pkg.ID = 0
	if err := h.catalog.SavePackage(r.Context(), &pkg); err != nil {
		return serviceError(err, "Failed to create package")
	}
	return writeJSON(w, http.StatusCreated, &pkg)
}

func (h *APIHandler) updatePackage(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	var pkg data.Package
	if appErr := decodeJSON(w, r, &pkg); appErr != nil {
		return appErr
	}
	pkg.ID = id
	if err := h.catalog.SavePackage(r.Context(), &pkg); err != nil {
		return serviceError(err, "Failed to update package")
	}
	return writeJSON(w, http.StatusOK, &pkg)
}

func (h *APIHandler) deletePackage(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	if err := h.catalog.DeletePackage(r.Context(), id); err != nil {
		return serviceError(err, "Failed to delete package")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *APIHandler) adminListDahabiyat(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	boats, err := h.catalog.AllDahabiyat(r.Context())
	if err != nil {
		return middleware.Internal(err, "Failed to fetch dahabiyat")
	}
	if boats == nil {
		boats = []*data.Dahabiya{}
	}
	return writeJSON(w, http.StatusOK, boats)
}

func (h *APIHandler) createDahabiya(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var boat data.Dahabiya
	if appErr := decodeJSON(w, r, &boat); appErr != nil {
		return appErr
	}
	boat.ID = 0
	if err := h.catalog.SaveDahabiya(r.Context(), &boat); err != nil {
		return serviceError(err, "Failed to create dahabiya")
	}
	return writeJSON(w, http.StatusCreated, &boat)
}

func (h *APIHandler) updateDahabiya(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	var boat data.Dahabiya
	if appErr := decodeJSON(w, r, &boat); appErr != nil {
		return appErr
	}
	boat.ID = id
	if err := h.catalog.SaveDahabiya(r.Context(), &boat); err != nil {
		return serviceError(err, "Failed to update dahabiya")
	}
	return writeJSON(w, http.StatusOK, &boat)
}

func (h *APIHandler) deleteDahabiya(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	if err := h.catalog.DeleteDahabiya(r.Context(), id); err != nil {
		return serviceError(err, "Failed to delete dahabiya")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) *middleware.AppError {
	if err := middleware.WriteJSON(w, code, v); err != nil {
		return middleware.Internal(err, "Failed to encode response")
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) *middleware.AppError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &middleware.AppError{Error: err, Message: "invalid JSON body: " + err.Error(), Code: http.StatusBadRequest}
	}
	return nil
}

func idParam(r *http.Request) (int64, *middleware.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, middleware.BadRequest(errors.New("invalid id"))
	}
	return id, nil
}

// serviceError maps service failures: validation to 400, missing records to 404.
func serviceError(err error, msg string) *middleware.AppError {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return middleware.BadRequest(err)
	case errors.Is(err, data.ErrNotFound):
		return &middleware.AppError{Error: err, Message: "Not Found", Code: http.StatusNotFound}
	default:
		return middleware.Internal(err, msg)
	}
}
