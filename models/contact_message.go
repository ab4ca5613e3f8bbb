package models

import "time"

// ContactMessage is a contact-form submission left on a card's public page.
type ContactMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CardID      uint      `gorm:"index;not null" json:"card_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Company     string    `gorm:"size:100" json:"company"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	SubmittedAt time.Time `gorm:"index;not null" json:"submitted_at"`
}
