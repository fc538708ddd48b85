package entities

import "time"

// SessionValue is one key of a browser session's durable storage.
type SessionValue struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"size:64;uniqueIndex:idx_session_key"`
	Key       string `gorm:"column:item_key;size:64;uniqueIndex:idx_session_key"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}
