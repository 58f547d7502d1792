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


// Package multiradio implements a network device that aggregates several radio links into one
// logical interface. Outgoing unicast traffic is spread over the links by queue depth, and the
// secondary links only get permission to transmit while the primary link sees its own acks.
package multiradio

import (
	"net/netip"

	"github.com/mrwifi/mrns/dispatcher"
	"github.com/mrwifi/mrns/event"
	. "github.com/mrwifi/mrns/types"
)

// EventPoster accepts the notifications a link raises for its owning device.
type EventPoster interface {
	Post(evt *event.Event)
}

// Scheduler is the part of the discrete-event dispatcher a Device depends on.
type Scheduler interface {
	EventPoster
	Register(nodeid NodeId, h dispatcher.EventHandler) error
	Unregister(nodeid NodeId)
	Now() uint64
}

// RadioLink is one underlying radio. The link notifies completion of its transmissions
// (ack received or missed), acks it overhears between other nodes, and received frames
// by posting events addressed to its owner with Link set to its index.
type RadioLink interface {
	// Attach wires the link's notifications to the owner. A link can be attached only once.
	Attach(owner NodeId, index LinkIndex, poster EventPoster) error
	Index() LinkIndex

	QueueDepth() int
	Send(pkt *Packet, dst MacAddr, protocol Protocol) bool
	SendFrom(pkt *Packet, src MacAddr, dst MacAddr, protocol Protocol) bool
	SupportsSendFrom() bool

	SetAddress(addr MacAddr)
	GetAddress() MacAddr

	// SetTransmitPermitted is a cooperative hint: a link that is not permitted holds back
	// queued frames, but never aborts a transmission in progress.
	SetTransmitPermitted(permitted bool)
	IsTransmitPermitted() bool

	IsLinkUp() bool
	GetChannel() ChannelId
	SetDebug(enabled bool)
	Dispose()
}

// LinkFactory creates the link with the given index, for a device under construction.
type LinkFactory func(index LinkIndex) (RadioLink, error)

// ReceiveCallback is the single upward receive path of a logical interface.
type ReceiveCallback func(ifc LogicalInterface, pkt *Packet, protocol Protocol, src MacAddr)

// RxTraceCallback observes every packet delivered upward, with the link that received it.
type RxTraceCallback func(nodeid NodeId, link LinkIndex, pkt *Packet, protocol Protocol)

type LinkChangeCallback func()

// LogicalInterface is the network-device contract a network layer consumes.
type LogicalInterface interface {
	Send(pkt *Packet, dst MacAddr, protocol Protocol) bool
	SetReceiveCallback(cb ReceiveCallback)
	GetAddress() MacAddr
	SetAddress(addr MacAddr)
	GetMtu() int
	SetMtu(mtu int) error
	IsLinkUp() bool
	GetBroadcast() MacAddr
	GetMulticast(group netip.Addr) MacAddr
}
