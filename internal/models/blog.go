package models

import (
	"time"

	"gorm.io/gorm"
)

// Reaction types accepted for blog posts.
const (
	ReactionLike    = "like"
	ReactionLove    = "love"
	ReactionInsight = "insight"
)

// Blog is a post with slug-based identity. Unpublished posts are only
// visible to admins.
type Blog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Slug        string         `gorm:"unique;not null" json:"slug"`
	Summary     string         `json:"summary"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	CoverURL    string         `json:"cover_url"`
	Published   bool           `gorm:"default:false;index" json:"published"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	ViewCount   uint           `gorm:"default:0" json:"view_count"`
	AuthorID    uint           `gorm:"not null;index" json:"author_id"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CategoryID  *uint          `gorm:"index" json:"category_id,omitempty"`
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags        []Tag          `gorm:"many2many:blog_tags;" json:"tags,omitempty"`
	Comments    []Comment      `gorm:"foreignKey:BlogID" json:"comments,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// ReactionCounts is computed on fetch, never persisted.
	ReactionCounts map[string]int64 `gorm:"-" json:"reaction_counts,omitempty"`
}

// Comment is a user comment on a blog post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BlogID    uint           `gorm:"not null;index" json:"blog_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Reaction records one user's reaction to a blog post. A user holds at most
// one reaction per post; changing the type overwrites the previous row.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlogID    uint      `gorm:"not null;uniqueIndex:idx_blog_user_reaction" json:"blog_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_blog_user_reaction" json:"user_id"`
	Type      string    `gorm:"not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag labels blog posts through the blog_tags junction table.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"unique;not null" json:"slug"`
}

// Category groups blog posts; a post belongs to at most one category.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"unique;not null" json:"slug"`
}
