// Package content resolves the editable key/value content of site pages.
package content

import (
	"strings"
)

// Map is the resolved content of one page. The zero value is an empty map
// whose lookups all return their fallback.
type Map struct {
	page     string
	values   map[string]string
	defaults func(key string) string
	err      error
}

// NewMap builds a Map from raw values. defaults may be nil.
func NewMap(page string, values map[string]string, defaults func(key string) string) Map {
	return Map{page: page, values: values, defaults: defaults}
}

// Page returns the content page the map was loaded for.
func (m Map) Page() string { return m.page }

// Err returns the load error that was masked, if any.
func (m Map) Err() error { return m.err }

// Len returns the number of stored values.
func (m Map) Len() int { return len(m.values) }

// Has reports whether key has a non-empty stored value.
func (m Map) Has(key string) bool {
	return m.values[key] != ""
}

// Get returns the stored value of key, or fallback when the key is absent
// or its value is empty.
func (m Map) Get(key, fallback string) string {
	if v := m.values[key]; v != "" {
		return v
	}
	return fallback
}

// Text is Get with the field's declared default as fallback.
func (m Map) Text(key string) string {
	var fallback string
	if m.defaults != nil {
		fallback = m.defaults(key)
	}
	return m.Get(key, fallback)
}

// Textf is Text with {name} placeholders replaced by the given name/value pairs.
func (m Map) Textf(key string, pairs ...string) string {
	s := m.Text(key)
	if len(pairs) < 2 {
		return s
	}
	oldnew := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(oldnew...).Replace(s)
}

// Values returns a copy of the stored values.
func (m Map) Values() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
