package broadcast

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/gps"
)

// MessageTypeFix tags a packet carrying boat fix data. Display units use
// the tag to tell boats from other senders (anemometers use 2).
const MessageTypeFix int8 = 1

// NameLen is the fixed width of the identity field: up to 17 characters
// plus a NUL terminator. The identity is a custom boat name or the
// colon-separated hardware address string.
const NameLen = 18

// PacketSize is the fixed wire size of an encoded packet.
const PacketSize = 1 + NameLen + 4 + 4 + 4*4 + 1

// Packet is one broadcast datagram. Constructed fresh per transmit call,
// never persisted. The wire layout is fixed little-endian so every
// receiver decodes it identically regardless of host order.
type Packet struct {
	MessageType    int8
	Name           string // boat name or MAC string, truncated to NameLen-1
	SequenceNumber uint32 // monotonic per transmitter lifetime, wraps
	GPSTimestamp   uint32 // epoch seconds, UTC
	Latitude       float32
	Longitude      float32
	Speed          float32 // knots
	Heading        float32 // degrees
	Satellites     uint8
}

// NewFixPacket builds a packet from a fix, an identity label and a
// sequence number.
func NewFixPacket(fix gps.Fix, name string, seq uint32) Packet {
	return Packet{
		MessageType:    MessageTypeFix,
		Name:           name,
		SequenceNumber: seq,
		GPSTimestamp:   uint32(fix.Timestamp),
		Latitude:       float32(fix.Latitude),
		Longitude:      float32(fix.Longitude),
		Speed:          float32(fix.Speed),
		Heading:        float32(fix.Course),
		Satellites:     uint8(fix.Satellites),
	}
}

// Encode serializes the packet into its fixed PacketSize-byte layout.
func (p Packet) Encode() []byte {
	buf := make([]byte, PacketSize)
	buf[0] = byte(p.MessageType)

	name := p.Name
	if len(name) > NameLen-1 {
		name = name[:NameLen-1]
	}
	copy(buf[1:1+NameLen], name) // remainder stays zero, NUL-terminated

	off := 1 + NameLen
	binary.LittleEndian.PutUint32(buf[off:], p.SequenceNumber)
	binary.LittleEndian.PutUint32(buf[off+4:], p.GPSTimestamp)
	binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(p.Latitude))
	binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(p.Longitude))
	binary.LittleEndian.PutUint32(buf[off+16:], math.Float32bits(p.Speed))
	binary.LittleEndian.PutUint32(buf[off+20:], math.Float32bits(p.Heading))
	buf[off+24] = p.Satellites
	return buf
}

// Decode parses one encoded packet. Used by listening display tools and
// tests; the boat itself only encodes.
func Decode(buf []byte) (Packet, error) {
	if len(buf) < PacketSize {
		return Packet{}, fmt.Errorf("short packet: %d bytes, want %d", len(buf), PacketSize)
	}

	name := buf[1 : 1+NameLen]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}

	off := 1 + NameLen
	return Packet{
		MessageType:    int8(buf[0]),
		Name:           string(name),
		SequenceNumber: binary.LittleEndian.Uint32(buf[off:]),
		GPSTimestamp:   binary.LittleEndian.Uint32(buf[off+4:]),
		Latitude:       math.Float32frombits(binary.LittleEndian.Uint32(buf[off+8:])),
		Longitude:      math.Float32frombits(binary.LittleEndian.Uint32(buf[off+12:])),
		Speed:          math.Float32frombits(binary.LittleEndian.Uint32(buf[off+16:])),
		Heading:        math.Float32frombits(binary.LittleEndian.Uint32(buf[off+20:])),
		Satellites:     buf[off+24],
	}, nil
}
