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
	"fmt"
	"math"

	"github.com/simonlingoogle/go-simplelogger"
)

type NodeId = int
type LinkIndex = int
type ChannelId = int

const (
	InvalidNodeId NodeId = 0
	MaxNodeId     NodeId = 0xffff
)

func GetNodeName(id NodeId) string {
	return fmt.Sprintf("node<%d>", id)
}

const (
	// PrimaryLink is the index of the link that carries broadcasts and grants the token.
	PrimaryLink LinkIndex = 0
	InvalidLink LinkIndex = -1
)

const (
	// Ever is the timestamp (in us) of an event that never happens.
	Ever uint64 = math.MaxUint64
)

// Protocol is the EtherType of a packet handed to or received from a link.
type Protocol uint16

const (
	ProtocolIpv4 Protocol = 0x0800
	ProtocolArp  Protocol = 0x0806
	ProtocolIpv6 Protocol = 0x86dd
)

func (p Protocol) String() string {
	switch p {
	case ProtocolIpv4:
		return "ipv4"
	case ProtocolArp:
		return "arp"
	case ProtocolIpv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

type NodeRole int

const (
	RoleStation     NodeRole = 0
	RoleAccessPoint NodeRole = 1
)

func (r NodeRole) String() string {
	switch r {
	case RoleStation:
		return "sta"
	case RoleAccessPoint:
		return "ap"
	default:
		simplelogger.Panicf("invalid node role: %d", r)
		return "invalid"
	}
}

// TokenState is the state of the device-wide transmit token for secondary links.
type TokenState byte

const (
	TokenReleased TokenState = 0
	TokenHeld     TokenState = 1
)

func (s TokenState) String() string {
	switch s {
	case TokenReleased:
		return "released"
	case TokenHeld:
		return "held"
	default:
		simplelogger.Panicf("invalid TokenState: %v", s)
		return "invalid"
	}
}
