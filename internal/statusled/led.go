// Copyright (c) 2026 FRA-222 / OpenSailingRC
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package statusled drives the single status LED on the hull. The RGB
// colors of the original hardware collapse to on/blink patterns on a
// plain GPIO LED: solid during init and while broadcasting valid fixes,
// slow blink while waiting for a fix, fast blink on fatal errors.
package statusled

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// State is what the node is currently doing, as far as the LED cares.
type State int

const (
	StateOff State = iota
	StateInit
	StateWaitingFix
	StateActive
	StateError
)

const (
	slowBlink = 500 * time.Millisecond
	fastBlink = 100 * time.Millisecond
)

// LED owns the GPIO pin and a small goroutine for blink patterns. A
// disabled LED accepts all calls and does nothing, so callers never
// branch on hardware presence.
type LED struct {
	pin     gpio.PinIO
	stateCh chan State
	done    chan struct{}
}

// New initializes periph and claims the named pin (e.g. "GPIO27").
func New(pinName string) (*LED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("statusled: periph host init: %w", err)
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("statusled: pin %q not found", pinName)
	}

	l := &LED{
		pin:     pin,
		stateCh: make(chan State, 1),
		done:    make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// Disabled returns an LED that ignores everything.
func Disabled() *LED {
	return &LED{}
}

// Set switches the LED to the pattern for the given state.
func (l *LED) Set(state State) {
	if l.pin == nil {
		return
	}
	// Only the latest state matters; drop a stale pending one.
	select {
	case <-l.stateCh:
	default:
	}
	l.stateCh <- state
}

// Close turns the LED off and stops the pattern goroutine.
func (l *LED) Close() {
	if l.pin == nil {
		return
	}
	close(l.done)
}

func (l *LED) run() {
	state := StateOff
	level := gpio.Low
	ticker := time.NewTicker(slowBlink)
	defer ticker.Stop()

	apply := func() {
		switch state {
		case StateInit, StateActive:
			level = gpio.High
		case StateOff:
			level = gpio.Low
		case StateWaitingFix:
			level = gpio.High
			ticker.Reset(slowBlink)
		case StateError:
			level = gpio.High
			ticker.Reset(fastBlink)
		}
		l.pin.Out(level)
	}
	apply()

	for {
		select {
		case state = <-l.stateCh:
			apply()
		case <-ticker.C:
			if state == StateWaitingFix || state == StateError {
				level = !level
				l.pin.Out(level)
			}
		case <-l.done:
			l.pin.Out(gpio.Low)
			return
		}
	}
}
