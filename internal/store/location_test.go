package store

import (
	"context"
	"testing"
	"time"

	"github.com/waymark-io/waymark/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", "") // in-memory SQLite
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

// seedLocation inserts a minimal location received at the given time.
func seedLocation(t *testing.T, s *Store, deviceID string, receivedAt time.Time) *model.Location {
	t.Helper()
	loc := &model.Location{
		Latitude:         3.139,
		Longitude:        101.6869,
		Timestamp:        receivedAt.Add(-2 * time.Second),
		ServerReceivedAt: receivedAt,
	}
	if deviceID != "" {
		loc.DeviceID = strPtr(deviceID)
	}
	if err := s.CreateLocation(context.Background(), loc); err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	return loc
}

func TestCreateLocationAssignsIDAndReceivedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	loc := &model.Location{
		Latitude:  3.139,
		Longitude: 101.6869,
		Timestamp: time.Now().UTC(),
	}
	if err := s.CreateLocation(ctx, loc); err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	if loc.ID == 0 {
		t.Error("expected assigned ID")
	}
	if loc.ServerReceivedAt.IsZero() {
		t.Error("expected ServerReceivedAt to be set")
	}

	second := &model.Location{Latitude: 1, Longitude: 2, Timestamp: time.Now().UTC()}
	if err := s.CreateLocation(ctx, second); err != nil {
		t.Fatalf("CreateLocation second: %v", err)
	}
	if second.ID <= loc.ID {
		t.Errorf("expected monotonic IDs, got %d then %d", loc.ID, second.ID)
	}
	if second.ServerReceivedAt.Before(loc.ServerReceivedAt) {
		t.Error("expected non-decreasing server received timestamps")
	}
}

func TestListLocationsOrderAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedLocation(t, s, "dev-a", base.Add(time.Duration(i)*time.Minute))
	}

	// Unbounded list, newest first.
	all, err := s.ListLocations(ctx, 0, 0)
	if err != nil {
		t.Fatalf("ListLocations: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ServerReceivedAt.After(all[i-1].ServerReceivedAt) {
			t.Fatal("expected descending order by server_received_at")
		}
	}

	// Page size min(limit, total-offset).
	page, err := s.ListLocations(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListLocations limit: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("limit=2: got %d rows", len(page))
	}
	if !page[0].ServerReceivedAt.Equal(all[0].ServerReceivedAt) {
		t.Error("expected first page to start at newest row")
	}

	tail, err := s.ListLocations(ctx, 10, 3)
	if err != nil {
		t.Fatalf("ListLocations offset: %v", err)
	}
	if len(tail) != 2 {
		t.Errorf("limit=10 offset=3 with 5 rows: got %d rows, want 2", len(tail))
	}

	empty, err := s.ListLocations(ctx, 10, 5)
	if err != nil {
		t.Fatalf("ListLocations past end: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("offset past end: got %d rows, want 0", len(empty))
	}
}

func TestListLocationsByDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	seedLocation(t, s, "", day.Add(-time.Second)) // previous day 23:59:59
	first := seedLocation(t, s, "", day)          // midnight, inclusive
	last := seedLocation(t, s, "", day.Add(24*time.Hour-time.Second)) // 23:59:59, inclusive
	seedLocation(t, s, "", day.Add(24*time.Hour)) // next day midnight

	locs, err := s.ListLocationsByDate(ctx, day)
	if err != nil {
		t.Fatalf("ListLocationsByDate: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("expected 2 rows within the day, got %d", len(locs))
	}
	if locs[0].ID != first.ID || locs[1].ID != last.ID {
		t.Errorf("expected ascending order [%d %d], got [%d %d]",
			first.ID, last.ID, locs[0].ID, locs[1].ID)
	}
}

func TestListLocationsByDevice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	seedLocation(t, s, "pixel-8", base)
	seedLocation(t, s, "iphone-15", base.Add(time.Minute))
	seedLocation(t, s, "pixel-8", base.Add(2*time.Minute))

	locs, err := s.ListLocationsByDevice(ctx, "pixel-8")
	if err != nil {
		t.Fatalf("ListLocationsByDevice: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("expected 2 rows for pixel-8, got %d", len(locs))
	}
	if locs[0].ServerReceivedAt.Before(locs[1].ServerReceivedAt) {
		t.Error("expected newest-first order")
	}

	none, err := s.ListLocationsByDevice(ctx, "unknown")
	if err != nil {
		t.Fatalf("ListLocationsByDevice unknown: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no rows for unknown device, got %d", len(none))
	}
}

func TestCountLocations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.CountLocations(ctx)
	if err != nil {
		t.Fatalf("CountLocations: %v", err)
	}
	if n != 0 {
		t.Errorf("empty store: count %d", n)
	}

	base := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedLocation(t, s, "", base.Add(time.Duration(i)*time.Second))
	}

	n, err = s.CountLocations(ctx)
	if err != nil {
		t.Fatalf("CountLocations: %v", err)
	}
	if n != 3 {
		t.Errorf("count: got %d, want 3", n)
	}
}

func TestLocationRoundTripFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alt, acc := 56.0, 12.5
	batt := 87
	raw := `{"lat":3.139,"lon":101.6869,"vel":4}`
	loc := &model.Location{
		Latitude:   3.139,
		Longitude:  101.6869,
		Altitude:   &alt,
		Accuracy:   &acc,
		Timestamp:  time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC),
		DeviceID:   strPtr("pixel-8"),
		TrackerID:  strPtr("al"),
		Battery:    &batt,
		Connection: strPtr("w"),
		UserID:     strPtr("alice"),
		RawData:    &raw,
	}
	if err := s.CreateLocation(ctx, loc); err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}

	got, err := s.ListLocationsByDevice(ctx, "pixel-8")
	if err != nil {
		t.Fatalf("ListLocationsByDevice: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}

	g := got[0]
	if g.Latitude != 3.139 || g.Longitude != 101.6869 {
		t.Errorf("coordinates: got (%v, %v)", g.Latitude, g.Longitude)
	}
	if g.Altitude == nil || *g.Altitude != alt {
		t.Errorf("altitude: got %v", g.Altitude)
	}
	if g.Battery == nil || *g.Battery != batt {
		t.Errorf("battery: got %v", g.Battery)
	}
	if g.RawData == nil || *g.RawData != raw {
		t.Errorf("raw data: got %v", g.RawData)
	}
	if !g.Timestamp.Equal(loc.Timestamp) {
		t.Errorf("timestamp: got %v, want %v", g.Timestamp, loc.Timestamp)
	}
}
