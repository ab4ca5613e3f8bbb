package models

import "time"

// Email delivery outcomes recorded in EmailLog.
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailLog records every outbound mail attempt for auditing delivery issues.
type EmailLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CardID    uint      `gorm:"index" json:"card_id"`
	Recipient string    `gorm:"size:255;not null" json:"recipient"`
	Subject   string    `gorm:"size:255" json:"subject"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	Error     string    `gorm:"size:500" json:"error"`
	SentAt    time.Time `gorm:"index;not null" json:"sent_at"`
}
