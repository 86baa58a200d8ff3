package journal

import (
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/broadcast"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/gps"
)

// Record is one journal line: an envelope with the receive timestamp and
// message type around the packet-equivalent boat data. The layout matches
// the replay files the display units read, so field names are fixed.
type Record struct {
	Timestamp int64    `json:"timestamp"`
	Type      int8     `json:"type"`
	Boat      BoatData `json:"boat"`
}

// BoatData mirrors the broadcast packet fields.
type BoatData struct {
	MessageType    int8    `json:"messageType"`
	SequenceNumber uint32  `json:"sequenceNumber"`
	GPSTimestamp   int64   `json:"gpsTimestamp"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Speed          float64 `json:"speed"`
	Heading        float64 `json:"heading"`
	Satellites     int     `json:"satellites"`
}

// NewRecord builds the journal line for one fix and the sequence number
// of the packet that carried it.
func NewRecord(fix gps.Fix, seq uint32) Record {
	return Record{
		Timestamp: fix.Timestamp,
		Type:      broadcast.MessageTypeFix,
		Boat: BoatData{
			MessageType:    broadcast.MessageTypeFix,
			SequenceNumber: seq,
			GPSTimestamp:   fix.Timestamp,
			Latitude:       fix.Latitude,
			Longitude:      fix.Longitude,
			Speed:          fix.Speed,
			Heading:        fix.Course,
			Satellites:     fix.Satellites,
		},
	}
}
