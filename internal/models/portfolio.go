package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is a portfolio entry managed from the admin dashboard.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Slug        string         `gorm:"unique;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	TechStack   string         `json:"tech_stack"`
	RepoURL     string         `json:"repo_url"`
	LiveURL     string         `json:"live_url"`
	ImageURL    string         `json:"image_url"`
	Featured    bool           `gorm:"default:false;index" json:"featured"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Skill is a named proficiency shown on the public site.
type Skill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Category  string    `gorm:"index" json:"category"`
	Level     int       `gorm:"default:0" json:"level"` // 0-100
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Experience is a work-history entry. EndDate is nil while Current is true.
type Experience struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Company     string     `gorm:"not null" json:"company"`
	Title       string     `gorm:"not null" json:"title"`
	Location    string     `json:"location"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Current     bool       `gorm:"default:false" json:"current"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Education is a study-history entry.
type Education struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Institution string    `gorm:"not null" json:"institution"`
	Degree      string    `json:"degree"`
	Field       string    `json:"field"`
	StartYear   int       `json:"start_year"`
	EndYear     int       `json:"end_year"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Testimonial is shown publicly only once approved by an admin.
type Testimonial struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AuthorName  string    `gorm:"not null" json:"author_name"`
	AuthorTitle string    `json:"author_title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	AvatarURL   string    `json:"avatar_url"`
	Approved    bool      `gorm:"default:false;index" json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
