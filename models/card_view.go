package models

import "time"

// Device type labels derived from the user agent at insert time.
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
	DeviceUnknown = "Unknown"
)

// Browser labels derived from the user agent at insert time.
const (
	BrowserChrome  = "Chrome"
	BrowserFirefox = "Firefox"
	BrowserSafari  = "Safari"
	BrowserEdge    = "Edge"
	BrowserOpera   = "Opera"
	BrowserOther   = "Other"
	BrowserUnknown = "Unknown"
)

// CardView is one recorded public page load of a card. Rows are append-only:
// never updated or deleted by the application. DeviceType and Browser are
// classified once from UserAgent when the row is written.
// No FK constraint to visiting_cards: deleting a card leaves its view log behind.
type CardView struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CardID       uint      `gorm:"index;not null" json:"card_id"`
	ViewedAt     time.Time `gorm:"index;not null" json:"viewed_at"`
	ViewerIP     string    `gorm:"size:45" json:"viewer_ip"`
	UserAgent    string    `gorm:"size:500" json:"user_agent"`
	Country      string    `gorm:"size:100" json:"country"`
	City         string    `gorm:"size:100" json:"city"`
	Region       string    `gorm:"size:100" json:"region"`
	DeviceType   string    `gorm:"size:50" json:"device_type"`
	Browser      string    `gorm:"size:100" json:"browser"`
	IsUniqueView bool      `json:"is_unique_view"`
}
