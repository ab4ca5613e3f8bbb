package models

import "time"

// CustomTemplate is a user-authored card layout stored next to the seeded
// catalog. Only its owner can read or change it.
type CustomTemplate struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	HTMLContent string    `gorm:"type:text" json:"html_content"`
	CSSContent  string    `gorm:"type:text" json:"css_content"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
