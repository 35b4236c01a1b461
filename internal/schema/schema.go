// Package schema describes the editable content of every site page: which
// fields exist, how they are edited, and the value shown until an editor
// changes them.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"dahabiya-site/internal/data"

	"gopkg.in/yaml.v3"
)

//go:embed structure.yaml
var structureYAML []byte

// Field is one editable slot.
type Field struct {
	Key         string           `yaml:"key"`
	Title       string           `yaml:"title"`
	Type        data.ContentType `yaml:"type"`
	Default     string           `yaml:"default"`
	Description string           `yaml:"description"`
}

// Section groups related fields of a page.
type Section struct {
	ID     string  `yaml:"id"`
	Title  string  `yaml:"title"`
	Fields []Field `yaml:"fields"`
}

// Page is an editor tab. Storage, when set, is the content page its values
// are stored under instead of ID.
type Page struct {
	ID       string    `yaml:"id"`
	Title    string    `yaml:"title"`
	Icon     string    `yaml:"icon"`
	Storage  string    `yaml:"storage"`
	Sections []Section `yaml:"sections"`
}

// StoragePage returns the content page the page's values live under.
func (p *Page) StoragePage() string {
	if p.Storage != "" {
		return p.Storage
	}
	return p.ID
}

// Structure is the parsed set of editable pages.
type Structure struct {
	Pages []*Page `yaml:"pages"`

	byID      map[string]*Page
	byStorage map[string]*Page
	fields    map[string]map[string]fieldRef
}

type fieldRef struct {
	section string
	field   Field
}

// Parse decodes and validates a structure document.
func Parse(b []byte) (*Structure, error) {
	var s Structure
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to parse content structure: %w", err)
	}
	s.byID = make(map[string]*Page, len(s.Pages))
	s.byStorage = make(map[string]*Page, len(s.Pages))
	s.fields = make(map[string]map[string]fieldRef, len(s.Pages))

	for _, p := range s.Pages {
		if p.ID == "" {
			return nil, fmt.Errorf("content structure: page without id")
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("content structure: duplicate page %q", p.ID)
		}
		s.byID[p.ID] = p
		s.byStorage[p.StoragePage()] = p

		keys := make(map[string]fieldRef)
		for _, sec := range p.Sections {
			for _, f := range sec.Fields {
				if f.Key == "" {
					return nil, fmt.Errorf("content structure: field without key in %s/%s", p.ID, sec.ID)
				}
				if !f.Type.Valid() {
					return nil, fmt.Errorf("content structure: field %s/%s has unknown type %q", p.ID, f.Key, f.Type)
				}
				if _, dup := keys[f.Key]; dup {
					return nil, fmt.Errorf("content structure: duplicate key %q on page %q", f.Key, p.ID)
				}
				keys[f.Key] = fieldRef{section: sec.ID, field: f}
			}
		}
		s.fields[p.StoragePage()] = keys
	}
	return &s, nil
}

var (
	defaultOnce      sync.Once
	defaultStructure *Structure
	defaultErr       error
)

// Default returns the embedded structure. It is parsed once.
func Default() (*Structure, error) {
	defaultOnce.Do(func() {
		defaultStructure, defaultErr = Parse(structureYAML)
	})
	return defaultStructure, defaultErr
}

// MustDefault is Default for callers that cannot continue without the structure.
func MustDefault() *Structure {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Page returns the editor page with the given id.
func (s *Structure) Page(id string) (*Page, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// PageForStorage returns the editor page whose values are stored under page.
func (s *Structure) PageForStorage(page string) (*Page, bool) {
	p, ok := s.byStorage[page]
	return p, ok
}

// Field looks up a field by storage page and key, and reports its section.
func (s *Structure) Field(page, key string) (Field, string, bool) {
	ref, ok := s.fields[page][key]
	return ref.field, ref.section, ok
}

// DefaultValue returns the declared default of a field, or "" when the field is unknown.
func (s *Structure) DefaultValue(page, key string) string {
	return s.fields[page][key].field.Default
}

// Defaults returns every field of a storage page with a non-empty default.
func (s *Structure) Defaults(page string) map[string]string {
	out := make(map[string]string)
	for key, ref := range s.fields[page] {
		if ref.field.Default != "" {
			out[key] = ref.field.Default
		}
	}
	return out
}

// StoragePage maps an editor page id to its storage page. Unknown ids map to themselves.
func (s *Structure) StoragePage(id string) string {
	if p, ok := s.byID[id]; ok {
		return p.StoragePage()
	}
	return id
}
