package ingest

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

func TestParseFullPayload(t *testing.T) {
	body := []byte(`{"_type":"location","lat":3.139,"lon":101.6869,"tst":1700000000,` +
		`"alt":56.0,"acc":12.5,"devid":"pixel-8","tid":"al","batt":87,"conn":"w","user":"alice"}`)

	loc, err := Parse(body, now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if loc.Latitude != 3.139 || loc.Longitude != 101.6869 {
		t.Errorf("coordinates: got (%v, %v)", loc.Latitude, loc.Longitude)
	}
	want := time.Unix(1700000000, 0).UTC()
	if !loc.Timestamp.Equal(want) {
		t.Errorf("timestamp: got %v, want %v", loc.Timestamp, want)
	}
	if loc.DeviceID == nil || *loc.DeviceID != "pixel-8" {
		t.Errorf("device: got %v", loc.DeviceID)
	}
	if loc.TrackerID == nil || *loc.TrackerID != "al" {
		t.Errorf("tracker: got %v", loc.TrackerID)
	}
	if loc.Battery == nil || *loc.Battery != 87 {
		t.Errorf("battery: got %v", loc.Battery)
	}
	if loc.Connection == nil || *loc.Connection != "w" {
		t.Errorf("connection: got %v", loc.Connection)
	}
	if loc.UserID == nil || *loc.UserID != "alice" {
		t.Errorf("user: got %v", loc.UserID)
	}
	if loc.RawData == nil || *loc.RawData != string(body) {
		t.Error("expected verbatim raw body to be preserved")
	}
	if !loc.ServerReceivedAt.IsZero() {
		t.Error("expected ServerReceivedAt to stay zero until insert")
	}
}

func TestParseMinimalPayloadDefaultsTimestamp(t *testing.T) {
	loc, err := Parse([]byte(`{"lat":1.5,"lon":-2.5}`), now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !loc.Timestamp.Equal(now) {
		t.Errorf("timestamp: got %v, want now (%v)", loc.Timestamp, now)
	}
	if loc.DeviceID != nil || loc.Battery != nil || loc.Altitude != nil {
		t.Error("expected absent optional fields to stay nil")
	}
}

func TestParseDevIDPriority(t *testing.T) {
	loc, err := Parse([]byte(`{"lat":1,"lon":2,"devid":"primary","deviceId":"fallback"}`), now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if loc.DeviceID == nil || *loc.DeviceID != "primary" {
		t.Errorf("expected devid to win, got %v", loc.DeviceID)
	}

	loc, err = Parse([]byte(`{"lat":1,"lon":2,"deviceId":"fallback"}`), now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if loc.DeviceID == nil || *loc.DeviceID != "fallback" {
		t.Errorf("expected deviceId fallback, got %v", loc.DeviceID)
	}
}

func TestParseMissingCoordinates(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"lat":3.139}`,
		`{"lon":101.6869}`,
		`{"_type":"location","tst":1700000000}`,
	} {
		if _, err := Parse([]byte(body), now); !errors.Is(err, ErrMissingCoordinates) {
			t.Errorf("Parse(%s): got %v, want ErrMissingCoordinates", body, err)
		}
	}
}

func TestParseMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`not json`), now); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestParsePreservesUnrecognizedFields(t *testing.T) {
	body := []byte(`{"lat":1,"lon":2,"vel":14,"cog":270,"SSID":"home-wifi"}`)
	loc, err := Parse(body, now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if loc.RawData == nil || *loc.RawData != string(body) {
		t.Error("expected unrecognized fields preserved in raw data")
	}
}

func TestParseZeroCoordinatesAreValid(t *testing.T) {
	// Null Island is a legal fix; zero values must not read as absent.
	loc, err := Parse([]byte(`{"lat":0,"lon":0}`), now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if loc.Latitude != 0 || loc.Longitude != 0 {
		t.Errorf("coordinates: got (%v, %v)", loc.Latitude, loc.Longitude)
	}
}
