// Package i18n translates UI strings and picks the visitor's language.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

//go:embed locales
var localesFS embed.FS

// Language describes a selectable site language.
type Language struct {
	Code string
	Name string // in the language itself
	RTL  bool
}

// Catalog holds the UI string bundles of the supported languages.
type Catalog struct {
	translations map[string]map[string]string // lang -> key -> translation
	languages    []Language
	supported    []language.Tag
	matcher      language.Matcher
	defaultLang  string
}

// New loads the bundles of the given languages. The default language must be
// among them and is the fallback for missing translations.
func New(codes []string, defaultLang string) (*Catalog, error) {
	c := &Catalog{
		translations: make(map[string]map[string]string, len(codes)),
		defaultLang:  defaultLang,
	}

	// The default language leads so the matcher falls back to it.
	ordered := []string{defaultLang}
	for _, code := range codes {
		if code != defaultLang {
			ordered = append(ordered, code)
		}
	}

	for _, code := range ordered {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", code, err)
		}
		if err := c.load(code); err != nil {
			return nil, err
		}
		c.supported = append(c.supported, tag)
		c.languages = append(c.languages, Language{
			Code: code,
			Name: display.Self.Name(tag),
			RTL:  isRTL(tag),
		})
	}
	if _, ok := c.translations[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q has no bundle", defaultLang)
	}
	c.matcher = language.NewMatcher(c.supported)
	return c, nil
}

func (c *Catalog) load(code string) error {
	path := fmt.Sprintf("locales/%s.json", code)
	raw, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var messages map[string]string
	if err := json.Unmarshal(raw, &messages); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	c.translations[code] = messages
	return nil
}

// T translates key into lang, falling back to the default language and then
// to the key itself.
func (c *Catalog) T(lang, key string) string {
	if s, ok := c.translations[lang][key]; ok {
		return s
	}
	if s, ok := c.translations[c.defaultLang][key]; ok {
		return s
	}
	return key
}

// Supported reports whether code is one of the catalog's languages.
func (c *Catalog) Supported(code string) bool {
	_, ok := c.translations[strings.ToLower(code)]
	return ok
}

// Default returns the default language code.
func (c *Catalog) Default() string { return c.defaultLang }

// Languages returns the selectable languages, default first.
func (c *Catalog) Languages() []Language { return c.languages }

// Language returns the description of code, or of the default language.
func (c *Catalog) Language(code string) Language {
	for _, l := range c.languages {
		if l.Code == code {
			return l
		}
	}
	return c.languages[0]
}

// Match picks the best supported language for an Accept-Language header value.
func (c *Catalog) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.defaultLang
	}
	_, idx, confidence := c.matcher.Match(tags...)
	if confidence == language.No || idx < 0 || idx >= len(c.languages) {
		return c.defaultLang
	}
	return c.languages[idx].Code
}

func isRTL(tag language.Tag) bool {
	base, _ := tag.Base()
	switch base.String() {
	case "ar", "he", "fa", "ur":
		return true
	}
	return false
}
