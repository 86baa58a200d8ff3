// Copyright (c) 2026 FRA-222 / OpenSailingRC
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package radio implements the boat's connectionless transport: UDP
// datagrams sent to the LAN broadcast group, standing in for the
// link-layer broadcast radio. There is no acknowledgment channel back
// from any receiver.
package radio

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// UDPBroadcaster sends fix packets to a UDP broadcast address. It
// satisfies broadcast.Radio.
type UDPBroadcaster struct {
	conn   *net.UDPConn
	addr   net.HardwareAddr
	notify func(ok bool)
}

// NewUDPBroadcaster brings the radio up: opens a datagram socket toward
// the broadcast group (e.g. "255.255.255.255:17017"), enables broadcast
// on it, and captures the local hardware address used as device identity.
func NewUDPBroadcaster(broadcastAddr string) (*UDPBroadcaster, error) {
	raddr, err := net.ResolveUDPAddr("udp4", broadcastAddr)
	if err != nil {
		return nil, fmt.Errorf("radio: resolve %q: %w", broadcastAddr, err)
	}

	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("radio: open socket: %w", err)
	}

	if err := enableBroadcast(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("radio: enable broadcast: %w", err)
	}

	addr, err := localHardwareAddr()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &UDPBroadcaster{conn: conn, addr: addr}, nil
}

// Broadcast hands one datagram to the network stack. A nil return means
// the local stack accepted it, nothing more. The registered send-result
// callback is invoked asynchronously afterwards, mirroring the radio
// completion interrupt.
func (u *UDPBroadcaster) Broadcast(payload []byte) error {
	_, err := u.conn.Write(payload)
	if fn := u.notify; fn != nil {
		go fn(err == nil)
	}
	if err != nil {
		return fmt.Errorf("radio: send: %w", err)
	}
	return nil
}

// HardwareAddr returns the MAC of the first usable network interface.
func (u *UDPBroadcaster) HardwareAddr() net.HardwareAddr {
	return u.addr
}

// NotifySendResult registers the completion callback. Must be called
// before the first Broadcast; the callback runs on its own goroutine and
// must not block.
func (u *UDPBroadcaster) NotifySendResult(fn func(ok bool)) {
	u.notify = fn
}

// Close shuts the socket down.
func (u *UDPBroadcaster) Close() error {
	return u.conn.Close()
}

func enableBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	err = raw.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return serr
}

// localHardwareAddr picks the MAC address of the first interface that is
// up, not loopback, and actually has one.
func localHardwareAddr() (net.HardwareAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("radio: list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		return iface.HardwareAddr, nil
	}
	return nil, fmt.Errorf("radio: no interface with a hardware address")
}
