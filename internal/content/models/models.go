package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "atelier/pkg/domain-errors"
)

// Post is a blog entry. Unpublished posts are visible only through the admin
// surface.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Body      string    `json:"body"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

func NewPost(title, body string, published bool, now time.Time) (*Post, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "title cannot be empty")
	}
	slug := Slugify(title)
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "title must contain at least one alphanumeric character")
	}

	return &Post{
		ID:        uuid.NewString(),
		Title:     title,
		Slug:      slug,
		Body:      body,
		Published: published,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Comment is a visitor comment on a post. IP is stored pre-anonymized.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Approved  bool      `json:"approved"`
	IP        string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func NewComment(postID, author, body, anonymizedIP string, approved bool, now time.Time) (*Comment, error) {
	if postID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "post id cannot be empty")
	}
	if author == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "author cannot be empty")
	}
	if body == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "body cannot be empty")
	}

	return &Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Author:    author,
		Body:      body,
		Approved:  approved,
		IP:        anonymizedIP,
		CreatedAt: now,
	}, nil
}

// Page bounds list queries. Limit is already clamped by the service.
type Page struct {
	Limit  int
	Offset int
}
