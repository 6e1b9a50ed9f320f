// Package ingest turns raw OwnTracks-style ping bodies into location rows.
//
// The payload is split into two parts: the fields waymark recognizes are
// deserialized into named attributes, and the verbatim body is kept as the
// row's raw data so unrecognized client fields survive for later
// inspection.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/waymark-io/waymark/internal/model"
)

// ErrMissingCoordinates is returned when a payload lacks lat or lon.
var ErrMissingCoordinates = errors.New("payload missing lat/lon")

// payload holds the recognized OwnTracks fields. Pointers distinguish
// absent fields from zero values.
type payload struct {
	Type      string   `json:"_type"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Tst       *int64   `json:"tst"` // epoch seconds, device clock
	Alt       *float64 `json:"alt"`
	Acc       *float64 `json:"acc"`
	DevID     string   `json:"devid"`
	DeviceID  string   `json:"deviceId"`
	TrackerID string   `json:"tid"`
	Battery   *int     `json:"batt"`
	Conn      string   `json:"conn"`
	User      string   `json:"user"`
}

// Parse decodes a ping body into a Location. The device timestamp comes
// from tst when present, otherwise now. ServerReceivedAt is left zero for
// the store to assign at insert.
func Parse(body []byte, now time.Time) (*model.Location, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	if p.Lat == nil || p.Lon == nil {
		return nil, ErrMissingCoordinates
	}

	ts := now.UTC()
	if p.Tst != nil {
		ts = time.Unix(*p.Tst, 0).UTC()
	}

	raw := string(body)
	loc := &model.Location{
		Latitude:   *p.Lat,
		Longitude:  *p.Lon,
		Altitude:   p.Alt,
		Accuracy:   p.Acc,
		Timestamp:  ts,
		DeviceID:   deviceID(p),
		TrackerID:  optString(p.TrackerID),
		Battery:    p.Battery,
		Connection: optString(p.Conn),
		UserID:     optString(p.User),
		RawData:    &raw,
	}
	return loc, nil
}

// deviceID prefers devid over deviceId when both are present.
func deviceID(p payload) *string {
	if p.DevID != "" {
		return &p.DevID
	}
	return optString(p.DeviceID)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
