package app

import (
	"log"
	"time"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/broadcast"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/gps"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/journal"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/statusled"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/telemetry"
)

// Pipeline couples the three telemetry stages for one boat: fix
// acquisition, broadcast, persistence. The components never call each
// other; every hop goes through here. It also owns the loop counters,
// which live in this struct rather than at package level on purpose.
type Pipeline struct {
	Tracker     *gps.Tracker
	Transmitter *broadcast.Transmitter
	Journal     *journal.Journal
	Mirror      *telemetry.Publisher
	LED         *statusled.LED

	BoatName   string
	DeviceID   string // hex hardware address, used in journal filenames
	MaxRetries int

	ValidPackets   uint32
	InvalidPackets uint32
}

// BroadcastTick runs one broadcast cycle: read the latest snapshot and,
// if valid, transmit it and journal it under the packet's sequence
// number. An invalid fix suppresses both silently; that is normal
// operation while waiting for satellites, not an error.
func (p *Pipeline) BroadcastTick() {
	fix := p.Tracker.Latest()

	if !fix.Valid {
		p.LED.Set(statusled.StateWaitingFix)
		p.InvalidPackets++
		log.Printf("waiting for GPS fix... (sats: %d, HDOP: %.1f)",
			p.Tracker.Satellites(), p.Tracker.HDOP())
		return
	}

	p.LED.Set(statusled.StateActive)

	if err := p.Transmitter.Transmit(fix, p.BoatName, p.MaxRetries); err != nil {
		log.Printf("broadcast failed: %v", err)
		return
	}
	p.ValidPackets++
	seq := p.Transmitter.SequenceNumber()

	log.Printf("[%d] GPS: %.6f,%.6f | %.1fkts %d° | %d sats | seq %d",
		fix.Timestamp, fix.Latitude, fix.Longitude,
		fix.Speed, int(fix.Course), fix.Satellites, seq)

	if err := p.Journal.WriteRecord(fix, p.DeviceID, seq); err != nil {
		log.Printf("journal write failed: %v", err)
	}
	if err := p.Mirror.PublishFix(fix, seq); err != nil {
		log.Printf("telemetry mirror: %v", err)
	}
}

// StatusTick logs the periodic status block.
func (p *Pipeline) StatusTick(uptime time.Duration) {
	fix := p.Tracker.Latest()

	state := "INVALID"
	if fix.Valid {
		state = "VALID"
	}

	log.Printf("--- status: uptime %s ---", uptime.Round(time.Second))
	log.Printf("gps: %s (%d satellites, HDOP: %.1f)", state, p.Tracker.Satellites(), p.Tracker.HDOP())
	log.Printf("packets: %d valid, %d invalid", p.ValidPackets, p.InvalidPackets)

	if n := p.Transmitter.AsyncFailures(); n > 0 {
		// Late radio-layer failures for attempts already counted as
		// accepted. Observed here, never retried.
		log.Printf("radio: %d late send failures reported (last ok: %v)",
			n, p.Transmitter.LastSendOK())
	}

	if p.Journal.Available() {
		name := p.Journal.CurrentFileName()
		if name == "" {
			name = "waiting for GPS fix"
		}
		log.Printf("storage: %s", name)
	} else {
		log.Println("storage: disabled")
	}

	if fix.Valid {
		log.Printf("position: %.6f, %.6f | %.1f kts, %.0f°",
			fix.Latitude, fix.Longitude, fix.Speed, fix.Course)
	}
}
