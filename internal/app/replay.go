package app

import (
	"fmt"
	"log"
	"time"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/journal"
)

// RunReplay prints a journal file in the console's fix format, so a
// session recorded on the boat can be inspected ashore.
func RunReplay(path string) error {
	records, err := journal.ReadFile(path)
	if err != nil {
		return err
	}

	for _, rec := range records {
		b := rec.Boat
		fmt.Printf(
			"[%s] seq=%d lat=%.6f lon=%.6f speed=%.1fkn heading=%.0f° sats=%d\n",
			time.Unix(b.GPSTimestamp, 0).UTC().Format(time.RFC3339),
			b.SequenceNumber, b.Latitude, b.Longitude, b.Speed, b.Heading, b.Satellites,
		)
	}

	log.Printf("replay: %d records from %s", len(records), path)
	return nil
}
