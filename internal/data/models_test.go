//go:build unit

package data

import "testing"

func TestContentItem_Value(t *testing.T) {
	tests := []struct {
		name string
		item ContentItem
		want string
	}{
		{"content wins", ContentItem{Content: "text", MediaURL: "/img.jpg"}, "text"},
		{"media fallback", ContentItem{MediaURL: "/img.jpg"}, "/img.jpg"},
		{"empty", ContentItem{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Value(); got != tt.want {
				t.Errorf("Value() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	if !ContentVideo.IsMedia() || ContentText.IsMedia() {
		t.Error("unexpected IsMedia result")
	}
	if ContentType("HTML").Valid() {
		t.Error("expected unknown type to be invalid")
	}
	if ContentRichText.EditAs() != ContentTextarea {
		t.Errorf("expected RICH_TEXT to edit as TEXTAREA, got %s", ContentRichText.EditAs())
	}
	if ContentImage.EditAs() != ContentImage {
		t.Errorf("expected IMAGE to edit as itself")
	}
}

func TestStringList_Scan(t *testing.T) {
	var l StringList
	if err := l.Scan([]byte(`["a","b"]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l) != 2 || l[1] != "b" {
		t.Errorf("unexpected list %v", l)
	}
	if err := l.Scan(nil); err != nil || l != nil {
		t.Errorf("expected nil list from NULL, got %v (%v)", l, err)
	}
	if err := l.Scan(42); err == nil {
		t.Error("expected error scanning an int")
	}
	v, err := StringList(nil).Value()
	if err != nil || v != "[]" {
		t.Errorf("expected nil list to store as [], got %v (%v)", v, err)
	}
}
