package entity

import (
	"time"
)

// IdempotencyKey stores the response of a processed request so a retry with
// the same key replays it instead of running again.
type IdempotencyKey struct {
	ID           uint      `gorm:"primaryKey"`
	Key          string    `gorm:"size:255;not null;uniqueIndex:idx_idempotency_key_endpoint"`
	Endpoint     string    `gorm:"size:255;not null;uniqueIndex:idx_idempotency_key_endpoint"` // e.g. "POST /api/v1/bills"
	RequestHash  string    `gorm:"size:64"`                                                    // SHA256 of the request body
	ResponseCode int       `gorm:"not null"`                                                   // 0 while the request is in flight
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the key has expired at now
func (i *IdempotencyKey) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsPending reports whether the request holding the key has not finished yet
func (i *IdempotencyKey) IsPending() bool {
	return i.ResponseCode == 0
}
