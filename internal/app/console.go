package app

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/broadcast"
)

// RunConsole listens on the broadcast group and prints every decoded fix
// packet. This is the display unit's role, useful for range tests and
// watching sequence numbers for packet loss.
func RunConsole(listenAddr string) error {
	addr, err := net.ResolveUDPAddr("udp4", listenAddr)
	if err != nil {
		return fmt.Errorf("console: resolve %q: %w", listenAddr, err)
	}

	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("console: listen: %w", err)
	}
	defer conn.Close()
	log.Printf("console: listening for fix broadcasts on %s", listenAddr)

	buf := make([]byte, 256)
	var lastSeq uint32

	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			log.Printf("console: read error: %v", err)
			continue
		}

		pkt, err := broadcast.Decode(buf[:n])
		if err != nil {
			log.Printf("console: %v", err)
			continue
		}
		if pkt.MessageType != broadcast.MessageTypeFix {
			continue
		}

		if lastSeq != 0 && pkt.SequenceNumber > lastSeq+1 {
			log.Printf("console: %d packets lost (seq %d -> %d)",
				pkt.SequenceNumber-lastSeq-1, lastSeq, pkt.SequenceNumber)
		}
		lastSeq = pkt.SequenceNumber

		fmt.Printf(
			"[FIX ]  boat=%s seq=%d time=%s lat=%.6f lon=%.6f speed=%.1fkn heading=%.0f° sats=%d\n",
			pkt.Name, pkt.SequenceNumber,
			time.Unix(int64(pkt.GPSTimestamp), 0).UTC().Format("15:04:05"),
			pkt.Latitude, pkt.Longitude, pkt.Speed, pkt.Heading, pkt.Satellites,
		)
	}
}
