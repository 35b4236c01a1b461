package service

import (
	"bytes"
	"context"
	"html/template"
	"strings"

	"dahabiya-site/internal/data"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// BlogRepository defines the interface for database operations on blog posts.
type BlogRepository interface {
	ListPublished(ctx context.Context, limit int) ([]*data.BlogPost, error)
	GetPublished(ctx context.Context, slug string) (*data.BlogPost, error)
	Create(ctx context.Context, post *data.BlogPost) error
}

// BlogService provides business logic for blog posts.
type BlogService struct {
	repo      BlogRepository
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewBlogService creates a new BlogService.
func NewBlogService(repo BlogRepository) *BlogService {
	return &BlogService{
		repo:      repo,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Posts lists published posts, newest first.
func (s *BlogService) Posts(ctx context.Context, limit int) ([]*data.BlogPost, error) {
	return s.repo.ListPublished(ctx, limit)
}

// Post returns a published post with its body rendered to sanitized HTML.
func (s *BlogService) Post(ctx context.Context, slug string) (*data.BlogPost, error) {
	post, err := s.repo.GetPublished(ctx, slug)
	if err != nil {
		return nil, err
	}
	html, err := s.Render(post.Body)
	if err != nil {
		return nil, err
	}
	post.HTMLBody = html
	return post, nil
}

// Create validates and stores a post.
func (s *BlogService) Create(ctx context.Context, post *data.BlogPost) error {
	post.Title = strings.TrimSpace(post.Title)
	if post.Title == "" {
		return invalid("title", "is required")
	}
	slug, err := normalizeSlug(post.Slug, post.Title)
	if err != nil {
		return err
	}
	post.Slug = slug
	return s.repo.Create(ctx, post)
}

// Render converts markdown to sanitized HTML.
func (s *BlogService) Render(markdown string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return template.HTML(s.sanitizer.SanitizeBytes(buf.Bytes())), nil
}
