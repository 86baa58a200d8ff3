package gps

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sentence wraps an NMEA body with the leading $ and a computed checksum.
func sentence(body string) string {
	var cs byte
	for i := 0; i < len(body); i++ {
		cs ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, cs)
}

const (
	rmcValid = "GPRMC,110645,A,4339.700,N,00720.900,E,4.5,285.0,150625,003.1,W"
	rmcVoid  = "GPRMC,110645,V,4339.700,N,00720.900,E,4.5,285.0,150625,003.1,W"
)

func gga(satellites int) string {
	return fmt.Sprintf("GPGGA,110645,4339.700,N,00720.900,E,1,%02d,0.9,12.0,M,46.9,M,,", satellites)
}

func feed(t *testing.T, tr *Tracker, bodies ...string) {
	t.Helper()
	for _, body := range bodies {
		tr.Feed(sentence(body))
	}
	tr.Update()
}

func TestTrackerValidFix(t *testing.T) {
	tr := NewTracker()
	feed(t, tr, rmcValid, gga(5))

	fix := tr.Latest()
	require.True(t, fix.Valid)
	assert.True(t, tr.IsValid())

	assert.InDelta(t, 43.0+39.7/60.0, fix.Latitude, 1e-6)
	assert.InDelta(t, 7.0+20.9/60.0, fix.Longitude, 1e-6)
	assert.InDelta(t, 4.5, fix.Speed, 1e-9)
	assert.InDelta(t, 285.0, fix.Course, 1e-9)
	assert.Equal(t, 5, fix.Satellites)
	assert.Equal(t, 5, tr.Satellites())
	assert.InDelta(t, 0.9, tr.HDOP(), 1e-9)

	// Calendar fields and their epoch conversion
	assert.Equal(t, 2025, fix.Year)
	assert.Equal(t, 6, fix.Month)
	assert.Equal(t, 15, fix.Day)
	assert.Equal(t, 11, fix.Hour)
	assert.Equal(t, 6, fix.Minute)
	assert.Equal(t, 45, fix.Second)
	assert.Equal(t, EpochFromCalendar(2025, 6, 15, 11, 6, 45), fix.Timestamp)
}

func TestTrackerFewSatellitesInvalidates(t *testing.T) {
	tr := NewTracker()
	feed(t, tr, rmcValid, gga(3))

	assert.False(t, tr.IsValid())
	assert.Equal(t, 3, tr.Satellites())

	// Four satellites is the floor for a valid fix.
	feed(t, tr, gga(4))
	assert.True(t, tr.IsValid())
}

func TestTrackerVoidSolutionInvalidates(t *testing.T) {
	tr := NewTracker()
	feed(t, tr, rmcVoid, gga(8))

	// Plenty of satellites but the receiver flags the solution void.
	assert.False(t, tr.IsValid())
	assert.Equal(t, 8, tr.Satellites())
}

func TestTrackerAllValidFixesHaveEnoughSatellites(t *testing.T) {
	tr := NewTracker()
	for sats := 0; sats <= 12; sats++ {
		feed(t, tr, rmcValid, gga(sats))
		if tr.IsValid() {
			assert.GreaterOrEqual(t, tr.Latest().Satellites, 4)
		} else {
			assert.Less(t, tr.Latest().Satellites, 4)
		}
	}
}

func TestTrackerIgnoresGarbage(t *testing.T) {
	tr := NewTracker()
	tr.Feed("")
	tr.Feed("not nmea at all")
	tr.Feed("$GPRMC,malformed*00")
	tr.Update()

	assert.False(t, tr.IsValid())
	assert.Equal(t, Fix{}, tr.Latest())
}

func TestTrackerStaleFixStaysValid(t *testing.T) {
	now := time.Date(2025, 6, 15, 11, 6, 45, 0, time.UTC)
	tr := NewTracker()
	tr.now = func() time.Time { return now }

	feed(t, tr, rmcValid, gga(6))
	require.True(t, tr.IsValid())

	// Receiver goes quiet for a minute. The snapshot is not refreshed
	// and no timeout invalidation happens; only the age grows.
	now = now.Add(time.Minute)
	tr.Update()

	fix := tr.Latest()
	assert.True(t, fix.Valid)
	assert.Equal(t, int64(60000), fix.AgeMS)
}

func TestTrackerReadsFromStream(t *testing.T) {
	data := sentence(rmcValid) + "\r\n" + sentence(gga(7)) + "\r\n"
	tr := NewTracker()
	tr.Start(strings.NewReader(data))

	// The reader goroutine needs a moment to drain the stream.
	assert.Eventually(t, func() bool {
		tr.Update()
		return tr.IsValid() && tr.Satellites() == 7
	}, time.Second, 5*time.Millisecond)
}
