package broadcast

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRadio accepts broadcasts after a configurable number of local
// rejections and records every payload it accepted.
type fakeRadio struct {
	mu        sync.Mutex
	failFirst int // reject this many attempts before accepting
	attempts  int
	accepted  [][]byte
	notify    func(ok bool)
}

func (f *fakeRadio) Broadcast(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failFirst {
		return fmt.Errorf("queue full")
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	f.accepted = append(f.accepted, buf)
	return nil
}

func (f *fakeRadio) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr{0xd0, 0xcf, 0x13, 0x0f, 0xd9, 0xdc}
}

func (f *fakeRadio) NotifySendResult(fn func(ok bool)) { f.notify = fn }
func (f *fakeRadio) Close() error                     { return nil }

func newTestTransmitter(t *testing.T, radio *fakeRadio) *Transmitter {
	t.Helper()
	tx := New(radio)
	tx.sleep = func(time.Duration) {} // no real 10 ms waits in tests
	require.NoError(t, tx.Initialize())
	return tx
}

func TestTransmitAcceptedFirstTry(t *testing.T) {
	radio := &fakeRadio{}
	tx := newTestTransmitter(t, radio)

	require.NoError(t, tx.Transmit(testFix(), "boat", 2))
	assert.Equal(t, 1, radio.attempts)
	assert.Equal(t, uint32(1), tx.SequenceNumber())
}

func TestTransmitRetriesUntilAccepted(t *testing.T) {
	// First 4 local-accept attempts fail, the 5th succeeds.
	radio := &fakeRadio{failFirst: 4}
	tx := newTestTransmitter(t, radio)

	require.NoError(t, tx.Transmit(testFix(), "boat", 4))
	assert.Equal(t, 5, radio.attempts)
}

func TestTransmitAllAttemptsRejected(t *testing.T) {
	radio := &fakeRadio{failFirst: 5}
	tx := newTestTransmitter(t, radio)

	err := tx.Transmit(testFix(), "boat", 4)
	assert.Error(t, err)
	assert.Equal(t, 5, radio.attempts)

	// The failed call still consumed a sequence number.
	assert.Equal(t, uint32(1), tx.SequenceNumber())
}

func TestSequenceNumberIncrementsOncePerCall(t *testing.T) {
	// Retries must not burn sequence numbers: receivers use gaps to
	// count lost packets, not local retries.
	radio := &fakeRadio{failFirst: 2}
	tx := newTestTransmitter(t, radio)

	require.NoError(t, tx.Transmit(testFix(), "boat", 3))
	require.NoError(t, tx.Transmit(testFix(), "boat", 3))
	require.NoError(t, tx.Transmit(testFix(), "boat", 3))
	assert.Equal(t, uint32(3), tx.SequenceNumber())

	var seqs []uint32
	for _, payload := range radio.accepted {
		pkt, err := Decode(payload)
		require.NoError(t, err)
		seqs = append(seqs, pkt.SequenceNumber)
	}
	assert.Equal(t, []uint32{1, 2, 3}, seqs)
}

func TestTransmitUsesMACWhenNameEmpty(t *testing.T) {
	radio := &fakeRadio{}
	tx := newTestTransmitter(t, radio)

	require.NoError(t, tx.Transmit(testFix(), "", 0))
	pkt, err := Decode(radio.accepted[0])
	require.NoError(t, err)
	assert.Equal(t, "d0:cf:13:0f:d9:dc", pkt.Name)
}

func TestAsyncSendResultDoesNotRetrigger(t *testing.T) {
	radio := &fakeRadio{}
	tx := newTestTransmitter(t, radio)
	require.NotNil(t, radio.notify)

	require.NoError(t, tx.Transmit(testFix(), "boat", 2))

	// A failure arriving after the attempt was counted as accepted is
	// recorded but never causes another attempt.
	radio.notify(false)
	assert.False(t, tx.LastSendOK())
	assert.Equal(t, uint32(1), tx.AsyncFailures())
	assert.Equal(t, 1, radio.attempts)

	radio.notify(true)
	assert.True(t, tx.LastSendOK())
	assert.Equal(t, uint32(1), tx.AsyncFailures())
}

func TestInitializeRequiresRadio(t *testing.T) {
	tx := New(nil)
	assert.Error(t, tx.Initialize())
}
