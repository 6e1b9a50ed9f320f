package model

import "time"

// HistoryPage is the response for paginated history queries. Total counts
// the whole table, not the page, so clients can compute remaining pages.
type HistoryPage struct {
	Total int64      `json:"total"`
	Data  []Location `json:"data"`
}

// DayHistory is the response for a single-day history query.
type DayHistory struct {
	Date  string     `json:"date"`
	Count int        `json:"count"`
	Data  []Location `json:"data"`
}

// DeviceHistory is the response for a per-device history query. It is
// deliberately unpaginated; device histories stay small in personal
// tracking deployments.
type DeviceHistory struct {
	DeviceID string     `json:"device_id"`
	Count    int        `json:"count"`
	Data     []Location `json:"data"`
}

// GeneratedKey is returned from key issuance. APIKey carries the raw key
// and is the only place it ever appears.
type GeneratedKey struct {
	APIKey    string    `json:"api_key"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	Message   string    `json:"message"`
}

// StatusResponse is the root health payload.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MessageResponse is a bare confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
