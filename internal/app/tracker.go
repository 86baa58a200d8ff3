package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/broadcast"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/config"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/gps"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/journal"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/radio"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/statusled"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/telemetry"
)

// pollInterval is how often the control loop drains the NMEA buffer.
// Broadcast and status cadence come from config and are checked against
// wall time inside the loop.
const pollInterval = 10 * time.Millisecond

// RunTracker wires the telemetry pipeline together and drives it with a
// single cooperative loop: tracker refresh every poll, broadcast and
// status blocks on their own intervals. GPS or radio bring-up failure is
// fatal; missing storage and an unreachable MQTT broker are not.
func RunTracker() error {
	cfg := config.Get()

	log.Println("starting BoatGPS tracker")

	// ---- 1) GPS receiver (fatal on failure) ----
	serialOpts := serial.OpenOptions{
		PortName:        cfg.GPSSerialPort,
		BaudRate:        uint(cfg.GPSBaudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}
	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("GPS bring-up on %s: %w", cfg.GPSSerialPort, err)
	}
	defer port.Close()
	log.Printf("GPS serial port opened on %s at %d baud", cfg.GPSSerialPort, cfg.GPSBaudRate)

	tracker := gps.NewTracker()
	tracker.Start(port)

	// ---- 2) Radio (fatal on failure) ----
	r, err := radio.NewUDPBroadcaster(cfg.BroadcastAddr)
	if err != nil {
		return fmt.Errorf("radio bring-up: %w", err)
	}
	defer r.Close()

	tx := broadcast.New(r)
	if err := tx.Initialize(); err != nil {
		return err
	}
	log.Printf("boat id (MAC): %s", strings.ToUpper(tx.HardwareAddr().String()))
	log.Printf("broadcasting to %s every %d ms", cfg.BroadcastAddr, cfg.BroadcastInterval)

	// ---- 3) Status LED (degrades to disabled) ----
	led := statusled.Disabled()
	if cfg.LEDEnabled {
		if l, err := statusled.New(cfg.LEDPin); err != nil {
			log.Printf("status LED unavailable: %v", err)
		} else {
			led = l
		}
	}
	defer led.Close()
	led.Set(statusled.StateInit)

	// ---- 4) Storage (degrades to unavailable) ----
	j := journal.New(cfg.StorageDir, cfg.StoragePrefix)
	if err := j.Initialize(cfg.StorageEnabled); err != nil {
		return err
	}
	defer j.Close()

	// ---- 5) MQTT mirror (optional) ----
	mirror := telemetry.Disabled()
	if cfg.MQTTEnabled {
		if m, err := telemetry.NewPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.TopicFix); err != nil {
			log.Printf("telemetry mirror unavailable: %v", err)
		} else {
			mirror = m
		}
	}
	defer mirror.Close()

	pipe := &Pipeline{
		Tracker:     tracker,
		Transmitter: tx,
		Journal:     j,
		Mirror:      mirror,
		LED:         led,
		BoatName:    cfg.BoatName,
		DeviceID:    deviceID(tx),
		MaxRetries:  cfg.BroadcastRetries,
	}

	led.Set(statusled.StateWaitingFix)
	log.Println("system ready, waiting for GPS fix")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	broadcastEvery := time.Duration(cfg.BroadcastInterval) * time.Millisecond
	statusEvery := time.Duration(cfg.StatusInterval) * time.Millisecond

	start := time.Now()
	var lastBroadcast, lastStatus time.Time

	for {
		select {
		case <-sigCh:
			log.Println("shutting down")
			return nil

		case now := <-poll.C:
			tracker.Update()

			if now.Sub(lastBroadcast) >= broadcastEvery {
				lastBroadcast = now
				pipe.BroadcastTick()
			}
			if now.Sub(lastStatus) >= statusEvery {
				lastStatus = now
				pipe.StatusTick(now.Sub(start))
			}
		}
	}
}

// deviceID renders the hardware address the way journal filenames want
// it: hex, no separators, upper case.
func deviceID(tx *broadcast.Transmitter) string {
	return strings.ToUpper(strings.ReplaceAll(tx.HardwareAddr().String(), ":", ""))
}
