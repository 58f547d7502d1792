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


package multiradio

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mrwifi/mrns/dispatcher"
	. "github.com/mrwifi/mrns/event"
	"github.com/mrwifi/mrns/progctx"
	. "github.com/mrwifi/mrns/types"
)

type sentPacket struct {
	pkt      *Packet
	src      MacAddr
	dst      MacAddr
	protocol Protocol
}

type fakeLink struct {
	owner     NodeId
	index     LinkIndex
	poster    EventPoster
	attached  bool
	depth     int
	addr      MacAddr
	permitted bool
	up        bool
	channel   ChannelId
	debug     bool
	disposed  bool
	sent      []sentPacket
}

func newFakeLink(channel ChannelId) *fakeLink {
	return &fakeLink{
		index:   InvalidLink,
		up:      true,
		channel: channel,
	}
}

func (l *fakeLink) Attach(owner NodeId, index LinkIndex, poster EventPoster) error {
	if l.attached {
		return errors.Errorf("link already attached to node %d", l.owner)
	}
	l.owner, l.index, l.poster, l.attached = owner, index, poster, true
	return nil
}

func (l *fakeLink) Index() LinkIndex { return l.index }
func (l *fakeLink) QueueDepth() int { return l.depth }

func (l *fakeLink) Send(pkt *Packet, dst MacAddr, protocol Protocol) bool {
	l.sent = append(l.sent, sentPacket{pkt: pkt, src: l.addr, dst: dst, protocol: protocol})
	return true
}

func (l *fakeLink) SendFrom(pkt *Packet, src MacAddr, dst MacAddr, protocol Protocol) bool {
	l.sent = append(l.sent, sentPacket{pkt: pkt, src: src, dst: dst, protocol: protocol})
	return true
}

func (l *fakeLink) SupportsSendFrom() bool { return true }
func (l *fakeLink) SetAddress(addr MacAddr) { l.addr = addr }
func (l *fakeLink) GetAddress() MacAddr { return l.addr }
func (l *fakeLink) SetTransmitPermitted(permitted bool) { l.permitted = permitted }
func (l *fakeLink) IsTransmitPermitted() bool { return l.permitted }
func (l *fakeLink) IsLinkUp() bool { return l.up }
func (l *fakeLink) GetChannel() ChannelId { return l.channel }
func (l *fakeLink) SetDebug(enabled bool) { l.debug = enabled }
func (l *fakeLink) Dispose() { l.disposed = true }

// notify posts a notification from this link to its owner.
func (l *fakeLink) notify(tp EventType, delay uint64) {
	l.poster.Post(&Event{Type: tp, Delay: delay, NodeId: l.owner, Link: l.index})
}

type testBed struct {
	d     *dispatcher.Dispatcher
	dev   *Device
	links []*fakeLink
}

func newTestBed(n int, policy bool) (*testBed, error) {
	return newTestBedConfig(&Config{NumLinks: n, PolicyEnabled: policy})
}

func newTestBedConfig(cfg *Config) (*testBed, error) {
	tb := &testBed{
		d: dispatcher.NewDispatcher(progctx.New(context.Background()), nil),
	}
	factory := func(index LinkIndex) (RadioLink, error) {
		l := newFakeLink(36 + 4*index)
		tb.links = append(tb.links, l)
		return l, nil
	}
	dev, err := New(1, tb.d, cfg, factory)
	tb.dev = dev
	return tb, err
}

func (tb *testBed) setDepths(depths ...int) {
	for i, dp := range depths {
		tb.links[i].depth = dp
	}
}

// run delivers every notification posted so far.
func (tb *testBed) run() {
	tb.d.RunUntil(tb.d.CurTime + 1000)
}

func (tb *testBed) secondariesPermitted() []bool {
	var res []bool
	for _, l := range tb.links[1:] {
		res = append(res, l.permitted)
	}
	return res
}
