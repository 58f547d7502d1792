// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.


package types

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

// MacAddr is a 48-bit link-layer address.
type MacAddr [6]byte

var (
	BroadcastMacAddr = MacAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	InvalidMacAddr   = MacAddr{}

	nextMacAddr uint64 = 1
)

// AllocateMacAddr returns a new, unique, unicast address. Addresses are handed out
// sequentially starting from 00:00:00:00:00:01.
func AllocateMacAddr() MacAddr {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], nextMacAddr)
	nextMacAddr++
	var addr MacAddr
	copy(addr[:], b[2:])
	return addr
}

// ResetMacAllocator restarts address allocation, for a fresh simulation run.
func ResetMacAllocator() {
	nextMacAddr = 1
}

// ParseMacAddr parses the colon-separated hex notation "aa:bb:cc:dd:ee:ff".
func ParseMacAddr(s string) (MacAddr, error) {
	var addr MacAddr
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return addr, errors.Errorf("invalid MAC address: %s", s)
	}
	for i, p := range parts {
		var v uint
		if len(p) != 2 {
			return addr, errors.Errorf("invalid MAC address: %s", s)
		}
		if _, err := fmt.Sscanf(p, "%02x", &v); err != nil {
			return addr, errors.Wrapf(err, "invalid MAC address: %s", s)
		}
		addr[i] = byte(v)
	}
	return addr, nil
}

func (a MacAddr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

func (a MacAddr) IsBroadcast() bool {
	return a == BroadcastMacAddr
}

// IsGroup is true for broadcast and multicast addresses (I/G bit set).
func (a MacAddr) IsGroup() bool {
	return a[0]&0x01 != 0
}

// MulticastMacAddr maps an IP multicast group onto its link-layer group address:
// 01:00:5e + low 23 bits for IPv4, 33:33 + low 32 bits for IPv6.
func MulticastMacAddr(group netip.Addr) MacAddr {
	var addr MacAddr
	if group.Is4() {
		ip := group.As4()
		addr = MacAddr{0x01, 0x00, 0x5e, ip[1] & 0x7f, ip[2], ip[3]}
	} else {
		ip := group.As16()
		addr = MacAddr{0x33, 0x33, ip[12], ip[13], ip[14], ip[15]}
	}
	return addr
}
