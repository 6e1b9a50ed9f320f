package model

import "time"

// Location is a single stored position report. Only latitude, longitude and
// the timestamps are guaranteed; everything else depends on what the client
// chose to send. RawData keeps the original request body verbatim so fields
// this schema does not model survive for later reprocessing.
type Location struct {
	ID               int64      `json:"id" db:"id"`
	Latitude         float64    `json:"latitude" db:"latitude"`
	Longitude        float64    `json:"longitude" db:"longitude"`
	Altitude         *float64   `json:"altitude,omitempty" db:"altitude"`     // meters
	Accuracy         *float64   `json:"accuracy,omitempty" db:"accuracy"`     // meters
	Timestamp        time.Time  `json:"timestamp" db:"timestamp"`             // fix time reported by the device
	DeviceID         *string    `json:"device_id,omitempty" db:"device_id"`
	TrackerID        *string    `json:"tracker_id,omitempty" db:"tracker_id"` // OwnTracks two-char tid
	Battery          *int       `json:"battery,omitempty" db:"battery"`       // percent
	Connection       *string    `json:"connection,omitempty" db:"connection"` // w/o/m per OwnTracks
	UserID           *string    `json:"user_id,omitempty" db:"user_id"`
	ServerReceivedAt time.Time  `json:"server_received_at" db:"server_received_at"`
	RawData          *string    `json:"raw_data,omitempty" db:"raw_data"`
}
