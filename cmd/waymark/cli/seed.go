package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/waymark-io/waymark/internal/model"
	"github.com/waymark-io/waymark/internal/store"
)

// Fixed raw key for local development so clients can be pointed at a seeded
// instance without a key exchange. Stored through the same hashed-at-rest
// path as live issuance.
const devAPIKey = "wm_dev_0000000000000000000000000000000000000000000000000000000000"

type waypoint struct {
	lat, lon float64
}

// Route waypoints simulating movement across Kuala Lumpur.
var klWaypoints = []waypoint{
	{3.1390, 101.6869}, // KLCC
	{3.1466, 101.6958}, // Kampung Baru
	{3.1516, 101.7036}, // Titiwangsa
	{3.1579, 101.7123}, // Sentul
	{3.1350, 101.6883}, // Bukit Bintang
	{3.1285, 101.6868}, // Raja Chulan
	{3.1200, 101.6797}, // KL Sentral
	{3.1118, 101.6703}, // Brickfields
	{3.1048, 101.6626}, // Mid Valley
	{3.0833, 101.6500}, // Petaling Jaya
	{3.0670, 101.6068}, // Subang Jaya
	{3.0319, 101.5513}, // Shah Alam
	{2.9264, 101.6424}, // Putrajaya
	{2.7456, 101.7072}, // KLIA
}

// Secondary route across Tokyo for a second device.
var tokyoWaypoints = []waypoint{
	{35.6762, 139.6503}, // Shinjuku
	{35.6812, 139.7671}, // Tokyo Station
	{35.6595, 139.7004}, // Shibuya
	{35.7148, 139.7967}, // Ueno
	{35.6586, 139.7454}, // Roppongi
	{35.6938, 139.7034}, // Ikebukuro
	{35.6852, 139.7528}, // Akihabara
}

func newSeedCmd() *cobra.Command {
	var points int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the store with deterministic mock data",
		Long: `Populate the store with mock location routes (two devices, interpolated
waypoint paths with jitter and battery drain) and a fixed development API
key. Intended for local development only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(points)
		},
	}

	cmd.Flags().IntVar(&points, "points", 200, "Total number of location points to generate")

	return cmd
}

func runSeed(points int) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	start := time.Now().UTC().Add(-48 * time.Hour)

	n := 0
	n += seedRoute(ctx, st, klWaypoints, points*2/3, start, "pixel-8", "alice", "al")
	n += seedRoute(ctx, st, tokyoWaypoints, points/3, start.Add(24*time.Hour), "iphone-15", "bob", "bo")

	key := &model.APIKey{
		KeyHash:     store.HashKey(devAPIKey),
		KeyPrefix:   devAPIKey[:11],
		UserName:    "dev",
		Description: "fixed development key from waymark seed",
		IsActive:    true,
	}
	if err := st.CreateAPIKey(ctx, key); err != nil {
		return fmt.Errorf("create dev api key: %w", err)
	}

	fmt.Printf("Seeded %d locations across 2 devices.\n", n)
	fmt.Println()
	fmt.Printf("  Dev API key: %s\n", devAPIKey)
	return nil
}

// seedRoute inserts count points interpolated along the waypoints, with
// deterministic index-based jitter so reruns are reproducible.
func seedRoute(ctx context.Context, st *store.Store, route []waypoint, count int, start time.Time, deviceID, userID, trackerID string) int {
	segments := len(route) - 1
	perSegment := count / segments
	if perSegment < 1 {
		perSegment = 1
	}

	battery := 100
	inserted := 0
	current := start

	for seg := 0; seg < segments && inserted < count; seg++ {
		for i := 0; i < perSegment && inserted < count; i++ {
			t := float64(i) / float64(perSegment)
			lat := route[seg].lat + (route[seg+1].lat-route[seg].lat)*t
			lon := route[seg].lon + (route[seg+1].lon-route[seg].lon)*t

			lat += float64((inserted*7+3)%100-50) * 0.00001
			lon += float64((inserted*13+7)%100-50) * 0.00001

			if inserted%10 == 0 && battery > 5 {
				battery--
			}
			batt := battery
			alt := 40.0 + float64(inserted%20)
			acc := 10.0 + float64(inserted%5)*2.0
			conn := "m"
			if inserted%3 == 0 {
				conn = "w"
			}

			raw, _ := json.Marshal(map[string]interface{}{
				"_type": "location",
				"lat":   lat,
				"lon":   lon,
				"tst":   current.Unix(),
				"alt":   alt,
				"acc":   acc,
				"devid": deviceID,
				"tid":   trackerID,
				"batt":  batt,
				"conn":  conn,
				"user":  userID,
			})
			rawStr := string(raw)

			loc := &model.Location{
				Latitude:         lat,
				Longitude:        lon,
				Altitude:         &alt,
				Accuracy:         &acc,
				Timestamp:        current,
				DeviceID:         &deviceID,
				TrackerID:        &trackerID,
				Battery:          &batt,
				Connection:       &conn,
				UserID:           &userID,
				ServerReceivedAt: current.Add(2 * time.Second),
				RawData:          &rawStr,
			}
			if err := st.CreateLocation(ctx, loc); err != nil {
				fmt.Printf("warning: insert failed at point %d: %v\n", inserted, err)
				continue
			}

			inserted++
			current = current.Add(90 * time.Second)
		}
	}
	return inserted
}
