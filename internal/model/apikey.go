package model

import "time"

// APIKey authenticates history queries. The raw key is never stored; only a
// SHA-256 hash and a short prefix for identification are persisted. Revoked
// keys keep their row with is_active = false.
type APIKey struct {
	ID          int64      `json:"id" db:"id"`
	KeyHash     string     `json:"-" db:"key_hash"`            // SHA-256 hash, never expose
	KeyPrefix   string     `json:"key_prefix" db:"key_prefix"` // "wm_" + first 8 hex chars
	UserName    string     `json:"user_name" db:"user_name"`
	Description string     `json:"description,omitempty" db:"description"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastUsed    *time.Time `json:"last_used,omitempty" db:"last_used"`
}
