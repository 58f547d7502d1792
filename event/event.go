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


package event

import (
	"fmt"
	"math"

	. "github.com/mrwifi/mrns/types"
)

type EventType = uint8

const (
	// Link notifications, addressed to the device that owns the link.
	EventTypeAckReceived   EventType = 0
	EventTypeAckMissed     EventType = 1
	EventTypeAckOverheard  EventType = 2
	EventTypeFrameReceived EventType = 3

	// Scheduler-internal callback, not addressed to any node.
	EventTypeTimer EventType = 10
)

const (
	InvalidTimestamp uint64 = math.MaxUint64
)

// Event is a notification delivered by the dispatcher. Delay is relative to the
// dispatcher time at which the event is posted; Timestamp is set by the dispatcher.
type Event struct {
	Delay     uint64
	Type      EventType
	Timestamp uint64
	NodeId    NodeId
	Link      LinkIndex

	// FrameReceived fields.
	Packet   *Packet
	Protocol Protocol
	Src      MacAddr
	Dst      MacAddr
}

// IsAck is true for the three ack-outcome notifications.
func (e *Event) IsAck() bool {
	return e.Type == EventTypeAckReceived || e.Type == EventTypeAckMissed || e.Type == EventTypeAckOverheard
}

// Copy creates a (struct) copy of the event; the packet is copied as well.
func (e *Event) Copy() Event {
	ev := *e
	if e.Packet != nil {
		ev.Packet = e.Packet.Copy()
	}
	return ev
}

func (e *Event) String() string {
	var paylStr string
	if e.Type == EventTypeFrameReceived && e.Packet != nil {
		paylStr = fmt.Sprintf(",%s,%s>%s,%s", e.Packet, e.Src, e.Dst, e.Protocol)
	}
	return fmt.Sprintf("Ev{%2d,nid=%d,link=%d,dly=%v%s}", e.Type, e.NodeId, e.Link, e.Delay, paylStr)
}

func TypeName(tp EventType) string {
	switch tp {
	case EventTypeAckReceived:
		return "AckReceived"
	case EventTypeAckMissed:
		return "AckMissed"
	case EventTypeAckOverheard:
		return "AckOverheard"
	case EventTypeFrameReceived:
		return "FrameReceived"
	case EventTypeTimer:
		return "Timer"
	default:
		return fmt.Sprintf("EventType(%d)", tp)
	}
}
