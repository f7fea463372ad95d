package models

import "time"

// ContactMessage is created by anonymous visitors through the contact form.
// Only admins may read or mutate it afterwards.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Reference string    `gorm:"unique;not null" json:"reference"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	IsReplied bool      `gorm:"default:false" json:"is_replied"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
