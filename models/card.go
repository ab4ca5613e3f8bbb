package models

import (
	"strings"
	"time"
)

// VisitingCard is a digital business card with contact, social, and styling data.
// ViewCount and LastViewed are denormalized from the CardView log; the tracker
// keeps them in sync inside the same transaction as the log insert.
type VisitingCard struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	FirstName string `gorm:"size:50;not null" json:"first_name"`
	LastName  string `gorm:"size:50" json:"last_name"`
	Email     string `gorm:"size:255" json:"email"`
	Phone     string `gorm:"size:15" json:"phone"`
	Company   string `gorm:"size:100" json:"company"`
	Address   string `gorm:"size:200" json:"address"`

	// Social links
	LinkedIn  string `gorm:"size:200" json:"linkedin"`
	Instagram string `gorm:"size:200" json:"instagram"`
	Twitter   string `gorm:"size:200" json:"twitter"`
	Facebook  string `gorm:"size:200" json:"facebook"`
	Website   string `gorm:"size:200" json:"website"`

	// Professional info
	JobTitle           string `gorm:"size:100" json:"job_title"`
	Skills             string `gorm:"size:500" json:"skills"`
	Languages          string `gorm:"size:200" json:"languages"`
	AvailabilityStatus string `gorm:"size:50" json:"availability_status"` // Available, Busy, Vacation

	// Styling
	PrimaryColor    string `gorm:"size:20" json:"primary_color"`
	SecondaryColor  string `gorm:"size:20" json:"secondary_color"`
	FontFamily      string `gorm:"size:50" json:"font_family"`
	CardOrientation string `gorm:"size:20" json:"card_orientation"` // Horizontal, Vertical, Square
	LogoPath        string `gorm:"size:500" json:"logo_path"`

	TemplateID uint `gorm:"index;not null" json:"template_id"`

	// Denormalized view analytics
	ViewCount  int64      `gorm:"not null;default:0" json:"view_count"`
	LastViewed *time.Time `json:"last_viewed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User     User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Template Template `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

// FullName joins the name parts, tolerating an empty last name.
func (c *VisitingCard) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
