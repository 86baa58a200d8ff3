package gps

import (
	"bufio"
	"io"
	"log"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
)

// minSatellites is the minimum solution size for a fix to count as valid.
const minSatellites = 4

// maxFixAge is the staleness threshold for a fix. It is currently not
// consulted by the validity computation: a receiver that stops producing
// data leaves the last snapshot in place, valid flag included. Kept here
// until staleness handling is decided.
const maxFixAge = 2 * time.Second

// Tracker decodes incoming NMEA sentences from the positioning receiver
// and maintains the latest fix snapshot.
//
// RMC sentences carry position, speed, course, date and time; GGA carries
// the satellite count and HDOP. The snapshot is recomputed whenever a
// location sentence completes. Update must be called from the control
// loop; it never blocks.
type Tracker struct {
	lines chan string

	current    Fix
	posValid   bool // receiver reports an active positional solution
	hdop       float64
	lastUpdate time.Time

	now func() time.Time // stubbed in tests
}

// NewTracker creates a tracker with no fix.
func NewTracker() *Tracker {
	return &Tracker{
		lines: make(chan string, 512),
		now:   time.Now,
	}
}

// Start spawns a goroutine reading NMEA lines from r (usually the GPS
// serial port) into the tracker's buffer. The goroutine exits when r
// reports an error or EOF.
func (t *Tracker) Start(r io.Reader) {
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			t.Feed(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			log.Printf("gps: read error: %v", err)
		}
	}()
}

// Feed queues one raw line for the next Update call.
func (t *Tracker) Feed(line string) {
	t.lines <- line
}

// Update consumes all currently buffered lines and feeds them to the
// sentence decoder, refreshing the snapshot as location sentences
// complete. If the receiver has stopped producing data this is a no-op;
// no timeout invalidation is performed.
func (t *Tracker) Update() {
	for {
		select {
		case line := <-t.lines:
			t.consume(line)
		default:
			return
		}
	}
}

func (t *Tracker) consume(line string) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		// noisy receiver or partial sentence, skip it
		return
	}

	switch sentence.DataType() {
	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)

		t.current.Latitude = m.Latitude
		t.current.Longitude = m.Longitude
		t.current.Speed = m.Speed
		t.current.Course = m.Course
		t.posValid = m.Validity == nmea.ValidRMC

		// Date and time validity are independent of each other and of
		// the positional solution.
		if m.Date.Valid {
			t.current.Year = 2000 + m.Date.YY
			t.current.Month = m.Date.MM
			t.current.Day = m.Date.DD
		}
		if m.Time.Valid {
			t.current.Hour = m.Time.Hour
			t.current.Minute = m.Time.Minute
			t.current.Second = m.Time.Second
		}

		t.current.Timestamp = EpochFromCalendar(
			2000+m.Date.YY, m.Date.MM, m.Date.DD,
			m.Time.Hour, m.Time.Minute, m.Time.Second,
		)

		t.recompute()
		t.lastUpdate = t.now()

	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		t.current.Satellites = int(m.NumSatellites)
		t.hdop = m.HDOP
		t.recompute()
	}
}

func (t *Tracker) recompute() {
	t.current.Valid = t.posValid && t.current.Satellites >= minSatellites
}

// Latest returns a frozen copy of the current snapshot. Callers wanting
// fresh data must call Update first; the copy only gets staler with time.
func (t *Tracker) Latest() Fix {
	fix := t.current
	if !t.lastUpdate.IsZero() {
		fix.AgeMS = t.now().Sub(t.lastUpdate).Milliseconds()
	}
	return fix
}

// IsValid reports whether the last decoded fix is usable.
func (t *Tracker) IsValid() bool {
	return t.current.Valid
}

// Satellites returns the satellite count of the last decoded fix.
func (t *Tracker) Satellites() int {
	return t.current.Satellites
}

// HDOP returns the horizontal dilution of precision of the last decoded
// fix (lower is better).
func (t *Tracker) HDOP() float64 {
	return t.hdop
}
