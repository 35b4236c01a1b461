//go:build unit

package schema

import (
	"testing"

	"dahabiya-site/internal/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Embedded(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	home, ok := s.Page("homepage")
	require.True(t, ok)
	assert.NotEmpty(t, home.Sections)

	f, section, ok := s.Field("homepage", "hero_video_title")
	require.True(t, ok)
	assert.Equal(t, "hero", section)
	assert.Equal(t, data.ContentText, f.Type)
	assert.Equal(t, "DISCOVER EGYPT", s.DefaultValue("homepage", "hero_video_title"))
	assert.Equal(t, "Our Luxury Dahabiyas", s.DefaultValue("homepage", "dahabiyat_section_title"))
	assert.Equal(t, "Featured Packages", s.DefaultValue("homepage", "packages_section_title"))
}

func TestBrandingStoredSeparately(t *testing.T) {
	s := MustDefault()
	assert.Equal(t, "branding_settings", s.StoragePage("branding"))
	assert.Equal(t, "homepage", s.StoragePage("homepage"))
	assert.Equal(t, "unknown", s.StoragePage("unknown"))

	p, ok := s.PageForStorage("branding_settings")
	require.True(t, ok)
	assert.Equal(t, "branding", p.ID)

	_, _, ok = s.Field("branding_settings", "site_logo")
	assert.True(t, ok)
}

func TestDefaults(t *testing.T) {
	s := MustDefault()
	defaults := s.Defaults("homepage")
	assert.Equal(t, "DISCOVER EGYPT", defaults["hero_video_title"])
	_, hasEmpty := defaults["hero_video_url"]
	assert.False(t, hasEmpty, "fields without a default are omitted")
	assert.Empty(t, s.DefaultValue("homepage", "no_such_key"))
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"duplicate page", "pages:\n  - id: a\n  - id: a\n"},
		{"missing id", "pages:\n  - title: x\n"},
		{"unknown type", "pages:\n  - id: a\n    sections:\n      - id: s\n        fields:\n          - {key: k, type: HTML}\n"},
		{"duplicate key", "pages:\n  - id: a\n    sections:\n      - id: s\n        fields:\n          - {key: k, type: TEXT}\n      - id: t\n        fields:\n          - {key: k, type: TEXT}\n"},
		{"bad yaml", "pages: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
