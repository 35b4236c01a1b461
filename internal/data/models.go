package data

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"time"
)

// ErrNotFound is returned by repositories when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ContentType describes how a content item is edited and rendered.
type ContentType string

const (
	ContentText     ContentType = "TEXT"
	ContentTextarea ContentType = "TEXTAREA"
	ContentImage    ContentType = "IMAGE"
	ContentVideo    ContentType = "VIDEO"
	ContentURL      ContentType = "URL"

	// Accepted for stored rows; edited as TEXTAREA.
	ContentRichText    ContentType = "RICH_TEXT"
	ContentGallery     ContentType = "GALLERY"
	ContentTestimonial ContentType = "TESTIMONIAL"
	ContentFeature     ContentType = "FEATURE"
	ContentCTA         ContentType = "CTA"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentTextarea, ContentImage, ContentVideo, ContentURL,
		ContentRichText, ContentGallery, ContentTestimonial, ContentFeature, ContentCTA:
		return true
	}
	return false
}

// IsMedia reports whether the value of t is a link to a resource.
func (t ContentType) IsMedia() bool {
	return t == ContentImage || t == ContentVideo || t == ContentURL
}

// EditAs folds the extended types onto the editor input they use.
func (t ContentType) EditAs() ContentType {
	switch t {
	case ContentText, ContentImage, ContentVideo, ContentURL:
		return t
	}
	return ContentTextarea
}

// ContentItem is one key/value slot of a site page.
type ContentItem struct {
	ID          int64       `db:"id" json:"id"`
	Key         string      `db:"content_key" json:"key"`
	Page        string      `db:"page" json:"page"`
	Section     string      `db:"section" json:"section"`
	Title       string      `db:"title" json:"title"`
	Content     string      `db:"content" json:"content"`
	MediaURL    string      `db:"media_url" json:"mediaUrl"`
	ContentType ContentType `db:"content_type" json:"contentType"`
	Order       int         `db:"sort_order" json:"order"`
	IsActive    bool        `db:"is_active" json:"isActive"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

// Value returns the content, falling back to the media URL.
func (c *ContentItem) Value() string {
	if c.Content != "" {
		return c.Content
	}
	return c.MediaURL
}

// StringList is an ordered list of strings stored as a JSON array column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Dahabiya is a sailing vessel offered as a cruise.
type Dahabiya struct {
	ID               int64      `db:"id" json:"id"`
	Slug             string     `db:"slug" json:"slug"`
	Name             string     `db:"name" json:"name"`
	ShortDescription string     `db:"short_description" json:"shortDescription"`
	Description      string     `db:"description" json:"description"`
	PricePerDay      float64    `db:"price_per_day" json:"pricePerDay"`
	Capacity         int        `db:"capacity" json:"capacity"`
	Cabins           int        `db:"cabins" json:"cabins"`
	Rating           float64    `db:"rating" json:"rating"`
	Images           StringList `db:"images" json:"images"`
	VideoURL         string     `db:"video_url" json:"videoUrl"`
	IsFeatured       bool       `db:"is_featured" json:"isFeatured"`
	IsActive         bool       `db:"is_active" json:"isActive"`
	Order            int        `db:"sort_order" json:"order"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// CoverImage returns the first gallery image, if any.
func (d *Dahabiya) CoverImage() string {
	if len(d.Images) == 0 {
		return ""
	}
	return d.Images[0]
}

// Package is a bookable tour, optionally sailed on a specific dahabiya.
type Package struct {
	ID               int64          `db:"id" json:"id"`
	Slug             string         `db:"slug" json:"slug"`
	Name             string         `db:"name" json:"name"`
	ShortDescription string         `db:"short_description" json:"shortDescription"`
	Description      string         `db:"description" json:"description"`
	Price            float64        `db:"price" json:"price"`
	DurationDays     int            `db:"duration_days" json:"durationDays"`
	MainImageURL     string         `db:"main_image_url" json:"mainImageUrl"`
	Highlights       StringList     `db:"highlights" json:"highlights"`
	Inclusions       StringList     `db:"inclusions" json:"inclusions"`
	Exclusions       StringList     `db:"exclusions" json:"exclusions"`
	MaxGuests        int            `db:"max_guests" json:"maxGuests"`
	DahabiyaID       *int64         `db:"dahabiya_id" json:"dahabiyaId,omitempty"`
	IsFeatured       bool           `db:"is_featured" json:"isFeatured"`
	IsActive         bool           `db:"is_active" json:"isActive"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
	Itinerary        []ItineraryDay `db:"-" json:"itineraryDays"`
}

// ItineraryDay is one day of a package programme.
type ItineraryDay struct {
	ID          int64  `db:"id" json:"id"`
	PackageID   int64  `db:"package_id" json:"packageId"`
	DayNumber   int    `db:"day_number" json:"dayNumber"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
}

// TravelService is an excursion or other bookable add-on.
type TravelService struct {
	ID          int64     `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	ServiceType string    `db:"service_type" json:"type"`
	Price       float64   `db:"price" json:"price"`
	Duration    string    `db:"duration" json:"duration"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Destination is a place along the Nile shown in the destinations menu.
type Destination struct {
	ID         int64  `db:"id" json:"id"`
	Slug       string `db:"slug" json:"slug"`
	Name       string `db:"name" json:"name"`
	Country    string `db:"country" json:"country"`
	Region     string `db:"region" json:"region"`
	ImageCover string `db:"image_cover" json:"imageCover"`
	IsActive   bool   `db:"is_active" json:"isActive"`
	Order      int    `db:"sort_order" json:"order"`
}

// BlogPost is a markdown article.
type BlogPost struct {
	ID          int64         `db:"id" json:"id"`
	Slug        string        `db:"slug" json:"slug"`
	Title       string        `db:"title" json:"title"`
	Excerpt     string        `db:"excerpt" json:"excerpt"`
	Body        string        `db:"body" json:"body"`
	HTMLBody    template.HTML `db:"-" json:"-"`
	CoverImage  string        `db:"cover_image" json:"coverImage"`
	Author      string        `db:"author" json:"author"`
	IsPublished bool          `db:"is_published" json:"isPublished"`
	PublishedAt *time.Time    `db:"published_at" json:"publishedAt,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// NavigationItem is a stored menu entry.
type NavigationItem struct {
	ID       int64             `db:"id" json:"id"`
	Title    string            `db:"title" json:"title"`
	URL      string            `db:"url" json:"url"`
	Icon     string            `db:"icon" json:"icon,omitempty"`
	ParentID *int64            `db:"parent_id" json:"parentId,omitempty"`
	Order    int               `db:"sort_order" json:"order"`
	IsActive bool              `db:"is_active" json:"isActive"`
	Location string            `db:"menu_location" json:"menuLocation"`
	Children []*NavigationItem `db:"-" json:"children,omitempty"`
}
