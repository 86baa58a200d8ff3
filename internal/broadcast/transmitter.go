package broadcast

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/gps"
)

// retryDelay is the fixed pause between local-accept attempts.
const retryDelay = 10 * time.Millisecond

// Radio is the connectionless transport the transmitter hands packets to.
// Broadcast reports only whether the local radio layer accepted the
// datagram; in broadcast mode no receiver ever acknowledges anything.
// The send-result callback fires asynchronously after each attempt and
// must stay non-blocking and side-effect-minimal.
type Radio interface {
	Broadcast(payload []byte) error
	HardwareAddr() net.HardwareAddr
	NotifySendResult(fn func(ok bool))
	Close() error
}

// Transmitter encodes fixes into fixed-size packets and broadcasts them,
// retrying on local transmission failure.
//
// Known design tension: the asynchronous send-result notification is
// decoupled from the retry loop. A failure reported late for an attempt
// that was already accepted locally is counted and surfaced in the status
// report but never triggers another retry, so this is not an
// at-least-once protocol. Making it one would need per-peer unicast with
// acknowledgments or an application-level ack exchange, which would
// change the wire contract with deployed display units.
type Transmitter struct {
	radio Radio
	addr  net.HardwareAddr
	seq   uint32 // wraps; incremented once per Transmit call

	// Touched only by the radio's completion callback, read by the
	// status report. Atomic because the callback runs outside the
	// control loop.
	lastSendOK    atomic.Bool
	asyncFailures atomic.Uint32

	sleep func(time.Duration) // stubbed in tests
}

// New creates a transmitter over the given radio.
func New(r Radio) *Transmitter {
	return &Transmitter{radio: r, sleep: time.Sleep}
}

// Initialize captures the local hardware address and registers the
// send-result notification. Failure here is fatal upstream: a node that
// cannot bring its radio up has nothing left to do.
func (t *Transmitter) Initialize() error {
	if t.radio == nil {
		return fmt.Errorf("broadcast: no radio configured")
	}

	addr := t.radio.HardwareAddr()
	if len(addr) == 0 {
		return fmt.Errorf("broadcast: radio has no hardware address")
	}
	t.addr = addr
	t.lastSendOK.Store(true)

	t.radio.NotifySendResult(func(ok bool) {
		t.lastSendOK.Store(ok)
		if !ok {
			t.asyncFailures.Add(1)
		}
	})
	return nil
}

// Transmit broadcasts one fix. The sequence counter is incremented once
// per call, not per attempt, so receivers can count lost packets. On
// local accept failure the attempt is repeated up to maxRetries more
// times with a fixed delay. A nil return means at least one attempt was
// accepted by the local radio layer; it is not delivery confirmation.
func (t *Transmitter) Transmit(fix gps.Fix, name string, maxRetries int) error {
	t.seq++

	if name == "" {
		name = t.addr.String()
	}
	payload := NewFixPacket(fix, name, t.seq).Encode()

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = t.radio.Broadcast(payload); err == nil {
			return nil
		}
		if attempt < maxRetries {
			t.sleep(retryDelay)
		}
	}
	return fmt.Errorf("broadcast: all %d attempts rejected: %w", maxRetries+1, err)
}

// SequenceNumber returns the counter's current value: the total number of
// fixes ever handed to Transmit. The orchestrator uses it to correlate a
// successful transmission with the matching journal record.
func (t *Transmitter) SequenceNumber() uint32 {
	return t.seq
}

// HardwareAddr returns the radio's address captured at Initialize.
func (t *Transmitter) HardwareAddr() net.HardwareAddr {
	return t.addr
}

// LastSendOK reports the most recent asynchronous send result.
func (t *Transmitter) LastSendOK() bool {
	return t.lastSendOK.Load()
}

// AsyncFailures returns how many attempts the radio reported as failed
// after the fact. Observed and logged by the status report only.
func (t *Transmitter) AsyncFailures() uint32 {
	return t.asyncFailures.Load()
}
