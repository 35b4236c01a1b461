package service

import (
	"context"
	"errors"
	"html"
	"net/url"
	"strings"

	"dahabiya-site/internal/broadcast"
	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/schema"

	"github.com/microcosm-cc/bluemonday"
)

// ContentRepository defines the interface for database operations on content items.
type ContentRepository interface {
	ListByPage(ctx context.Context, page, section string, activeOnly bool) ([]*data.ContentItem, error)
	ListActive(ctx context.Context) ([]*data.ContentItem, error)
	Get(ctx context.Context, page, key string) (*data.ContentItem, error)
	Upsert(ctx context.Context, item *data.ContentItem) error
	Delete(ctx context.Context, page, key string) error
	CountByPage(ctx context.Context) (map[string]int, error)
}

// Invalidator drops cached page content after a write.
type Invalidator interface {
	Invalidate(ctx context.Context, page string)
	InvalidateAll(ctx context.Context)
}

// Publisher announces content changes.
type Publisher interface {
	Publish(ctx context.Context, e broadcast.Event) error
}

// ContentInput is one field edit.
type ContentInput struct {
	Page        string           `json:"page"`
	Key         string           `json:"key"`
	Section     string           `json:"section"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	MediaURL    string           `json:"mediaUrl"`
	ContentType data.ContentType `json:"contentType"`
	Order       int              `json:"order"`
	IsActive    *bool            `json:"isActive"`
}

// ContentService provides business logic for editable page content.
type ContentService struct {
	repo      ContentRepository
	structure *schema.Structure
	cache     Invalidator
	events    Publisher
	log       logger.Logger
	plain     *bluemonday.Policy
	rich      *bluemonday.Policy
}

// NewContentService creates a new ContentService. cache and events may be nil.
func NewContentService(repo ContentRepository, structure *schema.Structure, cache Invalidator, events Publisher, log logger.Logger) *ContentService {
	return &ContentService{
		repo:      repo,
		structure: structure,
		cache:     cache,
		events:    events,
		log:       log,
		plain:     bluemonday.StrictPolicy(),
		rich:      bluemonday.UGCPolicy(),
	}
}

// List returns the active items of a page, optionally limited to one section.
func (s *ContentService) List(ctx context.Context, page, section string) ([]*data.ContentItem, error) {
	return s.repo.ListByPage(ctx, s.structure.StoragePage(page), section, true)
}

// Settings returns a flat key/value map of active content, for one page or all pages.
func (s *ContentService) Settings(ctx context.Context, page string) (map[string]string, error) {
	var items []*data.ContentItem
	var err error
	if page != "" {
		items, err = s.repo.ListByPage(ctx, s.structure.StoragePage(page), "", true)
	} else {
		items, err = s.repo.ListActive(ctx)
	}
	if err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(items))
	for _, item := range items {
		settings[item.Key] = item.Value()
	}
	return settings, nil
}

// EditorPage is an editor tab with the stored value of each field.
type EditorPage struct {
	Page   *schema.Page
	Stored map[string]*data.ContentItem
}

// Value returns the stored value of key, or the field default.
func (e *EditorPage) Value(key string) string {
	if item, ok := e.Stored[key]; ok {
		return item.Value()
	}
	for _, sec := range e.Page.Sections {
		for _, f := range sec.Fields {
			if f.Key == key {
				return f.Default
			}
		}
	}
	return ""
}

// Editor loads an editor tab and every stored item of its page, active or not.
func (s *ContentService) Editor(ctx context.Context, pageID string) (*EditorPage, error) {
	p, ok := s.structure.Page(pageID)
	if !ok {
		return nil, data.ErrNotFound
	}
	items, err := s.repo.ListByPage(ctx, p.StoragePage(), "", false)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]*data.ContentItem, len(items))
	for _, item := range items {
		stored[item.Key] = item
	}
	return &EditorPage{Page: p, Stored: stored}, nil
}

// Counts returns the number of stored items per storage page.
func (s *ContentService) Counts(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByPage(ctx)
}

// Save validates, sanitizes and stores one field, then announces it.
func (s *ContentService) Save(ctx context.Context, in ContentInput) (*data.ContentItem, error) {
	item, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}
	s.changed(ctx, broadcast.ContentUpdated, item.Page, item.Key, item.Value())
	return item, nil
}

// SavePage stores the submitted values of an editor tab. Unknown keys are
// rejected; values equal to the stored ones are skipped. It returns the
// number of fields written, also when a write fails part way.
func (s *ContentService) SavePage(ctx context.Context, pageID string, values map[string]string) (int, error) {
	editor, err := s.Editor(ctx, pageID)
	if err != nil {
		return 0, err
	}
	storage := editor.Page.StoragePage()

	var items []*data.ContentItem
	for key, value := range values {
		field, section, ok := s.structure.Field(storage, key)
		if !ok {
			return 0, invalid(key, "unknown field for page %s", pageID)
		}
		if existing, ok := editor.Stored[key]; ok && existing.Value() == value {
			continue
		}
		if _, ok := editor.Stored[key]; !ok && value == field.Default {
			continue
		}
		item, err := s.prepare(ContentInput{Page: storage, Key: key, Section: section, Content: value})
		if err != nil {
			return 0, err
		}
		items = append(items, item)
	}

	written := 0
	defer func() {
		// Announce whatever reached the store, even when a later write failed.
		if written > 0 {
			s.changed(ctx, broadcast.ContentUpdated, storage, "", "")
		}
	}()
	for _, item := range items {
		if err := s.repo.Upsert(ctx, item); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// Delete removes a stored field so pages fall back to its default.
func (s *ContentService) Delete(ctx context.Context, page, key string) error {
	storage := s.structure.StoragePage(page)
	if err := s.repo.Delete(ctx, storage, key); err != nil {
		return err
	}
	s.changed(ctx, broadcast.ContentDeleted, storage, key, "")
	return nil
}

// Seed stores the default of every structure field that has one and is not
// stored yet. It returns the number of fields written.
func (s *ContentService) Seed(ctx context.Context) (int, error) {
	n := 0
	for _, p := range s.structure.Pages {
		storage := p.StoragePage()
		for _, sec := range p.Sections {
			for i, f := range sec.Fields {
				if f.Default == "" {
					continue
				}
				if _, err := s.repo.Get(ctx, storage, f.Key); err == nil {
					continue
				} else if !errors.Is(err, data.ErrNotFound) {
					return n, err
				}
				item := &data.ContentItem{
					Page: storage, Section: sec.ID, Key: f.Key, Title: f.Title,
					Content: f.Default, ContentType: f.Type, Order: i, IsActive: true,
				}
				if err := s.repo.Upsert(ctx, item); err != nil {
					return n, err
				}
				n++
			}
		}
		if s.cache != nil {
			s.cache.Invalidate(ctx, storage)
		}
	}
	return n, nil
}

// prepare fills the item from the structure and applies the field's validation.
func (s *ContentService) prepare(in ContentInput) (*data.ContentItem, error) {
	page := s.structure.StoragePage(strings.TrimSpace(in.Page))
	key := strings.TrimSpace(in.Key)
	if page == "" {
		return nil, invalid("page", "is required")
	}
	if key == "" {
		return nil, invalid("key", "is required")
	}

	item := &data.ContentItem{
		Page: page, Key: key, Section: in.Section, Title: in.Title,
		Content: in.Content, MediaURL: in.MediaURL, ContentType: in.ContentType,
		Order: in.Order, IsActive: true,
	}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	if field, section, ok := s.structure.Field(page, key); ok {
		if item.Section == "" {
			item.Section = section
		}
		if item.Title == "" {
			item.Title = field.Title
		}
		if item.ContentType == "" {
			item.ContentType = field.Type
		}
	}
	if item.Section == "" {
		item.Section = "general"
	}
	if item.ContentType == "" {
		item.ContentType = data.ContentText
	}
	if !item.ContentType.Valid() {
		return nil, invalid("contentType", "unknown content type %q", item.ContentType)
	}

	switch item.ContentType.EditAs() {
	case data.ContentText:
		item.Content = html.UnescapeString(s.plain.Sanitize(strings.TrimSpace(item.Content)))
	case data.ContentTextarea:
		item.Content = s.rich.Sanitize(strings.TrimSpace(item.Content))
	default:
		item.Content = strings.TrimSpace(item.Content)
		if err := validateLink(item.Content); err != nil {
			return nil, invalid(key, "%v", err)
		}
	}
	item.MediaURL = strings.TrimSpace(item.MediaURL)
	if err := validateLink(item.MediaURL); err != nil {
		return nil, invalid("mediaUrl", "%v", err)
	}
	return item, nil
}

// validateLink accepts "", root-relative paths and absolute http(s) URLs.
func validateLink(v string) error {
	if v == "" {
		return nil
	}
	if strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//") {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http(s) URL or a path starting with /")
	}
	return nil
}

// ApplyRemote drops cached content changed by another instance.
func (s *ContentService) ApplyRemote(ctx context.Context, e broadcast.Event) {
	if s.cache == nil {
		return
	}
	switch e.Type {
	case broadcast.ContentUpdated, broadcast.ContentDeleted:
	default:
		return
	}
	if e.Page == "" {
		s.cache.InvalidateAll(ctx)
		return
	}
	s.cache.Invalidate(ctx, e.Page)
}

func (s *ContentService) changed(ctx context.Context, eventType, page, key, value string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, page)
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, broadcast.NewEvent(eventType, page, key, value)); err != nil {
			s.log.Error(err, "failed to broadcast content change")
		}
	}
}
