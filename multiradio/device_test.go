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
	"net/netip"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrwifi/mrns/dispatcher"
	. "github.com/mrwifi/mrns/event"
	"github.com/mrwifi/mrns/progctx"
	. "github.com/mrwifi/mrns/types"
)

var unicastDst = MacAddr{0, 0, 0, 0, 0, 0x42}

func TestNew_NoLinks(t *testing.T) {
	for _, n := range []int{0, -1} {
		tb, err := newTestBed(n, true)
		assert.True(t, errors.Is(err, ErrNoLinks))
		assert.Nil(t, tb.dev)
		assert.Empty(t, tb.links)
		assert.False(t, tb.d.IsRegistered(1))
	}
}

func TestNew_FactoryFailure(t *testing.T) {
	d := dispatcher.NewDispatcher(progctx.New(context.Background()), nil)
	var created []*fakeLink
	factory := func(index LinkIndex) (RadioLink, error) {
		if index == 2 {
			return nil, errors.New("radio broken")
		}
		l := newFakeLink(36)
		created = append(created, l)
		return l, nil
	}
	dev, err := New(4, d, &Config{NumLinks: 3}, factory)
	assert.NotNil(t, err)
	assert.Nil(t, dev)
	assert.False(t, d.IsRegistered(4))
	assert.Equal(t, 2, len(created))
	for _, l := range created {
		assert.True(t, l.disposed)
	}

	factory = func(index LinkIndex) (RadioLink, error) {
		return nil, nil
	}
	_, err = New(4, d, &Config{NumLinks: 1}, factory)
	assert.True(t, errors.Is(err, ErrNilLink))
	assert.False(t, d.IsRegistered(4))
}

func TestNew_AttachFailure(t *testing.T) {
	d := dispatcher.NewDispatcher(progctx.New(context.Background()), nil)
	shared := newFakeLink(36)
	factory := func(index LinkIndex) (RadioLink, error) {
		return shared, nil
	}
	dev, err := New(2, d, &Config{NumLinks: 2}, factory)
	assert.NotNil(t, err)
	assert.Nil(t, dev)
	assert.False(t, d.IsRegistered(2))
}

func TestNew_AlreadyRegistered(t *testing.T) {
	tb, err := newTestBed(2, true)
	require.Nil(t, err)
	var second []*fakeLink
	_, err = New(1, tb.d, &Config{NumLinks: 2}, func(index LinkIndex) (RadioLink, error) {
		l := newFakeLink(36)
		second = append(second, l)
		return l, nil
	})
	assert.NotNil(t, err)
	for _, l := range second {
		assert.True(t, l.disposed)
	}
	tb.links[0].notify(EventTypeAckMissed, 1)
	tb.run()
	c, _ := tb.dev.GetAckCounters(0)
	assert.Equal(t, uint64(1), c.Missed)
}

func TestNew_SharedAddress(t *testing.T) {
	addr := MacAddr{0, 0, 0, 0, 0, 9}
	tb, err := newTestBedConfig(&Config{NumLinks: 4, PolicyEnabled: true, Address: addr})
	require.Nil(t, err)
	assert.Equal(t, addr, tb.dev.GetAddress())
	for i, l := range tb.links {
		assert.Equal(t, addr, l.addr)
		assert.Equal(t, LinkIndex(i), l.index)
		assert.Equal(t, NodeId(1), l.owner)
	}
	assert.True(t, tb.d.IsRegistered(1))
	assert.Equal(t, 4, tb.dev.NumLinks())

	addr2 := MacAddr{0, 0, 0, 0, 0, 10}
	tb.dev.SetAddress(addr2)
	assert.Equal(t, addr2, tb.dev.GetAddress())
	for _, l := range tb.links {
		assert.Equal(t, addr2, l.addr)
	}
}

func TestNew_AllocatesAddress(t *testing.T) {
	tb1, err := newTestBed(2, true)
	require.Nil(t, err)
	tb2, err := newTestBed(2, true)
	require.Nil(t, err)
	assert.NotEqual(t, InvalidMacAddr, tb1.dev.GetAddress())
	assert.NotEqual(t, tb1.dev.GetAddress(), tb2.dev.GetAddress())
	assert.False(t, tb1.dev.GetAddress().IsGroup())
}

func TestDevice_SendBroadcast(t *testing.T) {
	for n := 1; n <= 5; n++ {
		tb, err := newTestBed(n, true)
		require.Nil(t, err)
		depths := make([]int, n)
		depths[0] = 500
		tb.setDepths(depths...)
		pkt := NewPacket(100, 0)
		assert.True(t, tb.dev.Send(pkt, BroadcastMacAddr, ProtocolArp))
		require.Equal(t, 1, len(tb.links[0].sent))
		assert.Equal(t, pkt, tb.links[0].sent[0].pkt)
		assert.Equal(t, ProtocolArp, tb.links[0].sent[0].protocol)
		for _, l := range tb.links[1:] {
			assert.Empty(t, l.sent)
		}
	}
}

func TestDevice_SendUnicastBias(t *testing.T) {
	tb, err := newTestBed(2, true)
	require.Nil(t, err)

	tb.setDepths(5, 3)
	assert.True(t, tb.dev.Send(NewPacket(1472, 0), unicastDst, ProtocolIpv4))
	assert.Equal(t, 1, len(tb.links[0].sent))
	assert.Equal(t, 0, len(tb.links[1].sent))

	tb.setDepths(20, 1)
	assert.True(t, tb.dev.Send(NewPacket(1472, 0), unicastDst, ProtocolIpv4))
	assert.Equal(t, 1, len(tb.links[0].sent))
	assert.Equal(t, 1, len(tb.links[1].sent))
	assert.Equal(t, unicastDst, tb.links[1].sent[0].dst)
}

func TestDevice_SendIgnoresTokenByDefault(t *testing.T) {
	tb, err := newTestBed(2, true)
	require.Nil(t, err)
	require.False(t, tb.links[1].permitted)

	tb.setDepths(20, 1)
	tb.dev.Send(NewPacket(10, 0), unicastDst, ProtocolIpv4)
	assert.Equal(t, 1, len(tb.links[1].sent))
}

func TestDevice_SendHonorsToken(t *testing.T) {
	tb, err := newTestBedConfig(&Config{NumLinks: 2, PolicyEnabled: true, SelectorHonorsToken: true})
	require.Nil(t, err)

	tb.setDepths(20, 1)
	tb.dev.Send(NewPacket(10, 0), unicastDst, ProtocolIpv4)
	assert.Equal(t, 1, len(tb.links[0].sent))
	assert.Equal(t, 0, len(tb.links[1].sent))

	tb.links[0].notify(EventTypeAckReceived, 1)
	tb.run()
	tb.dev.Send(NewPacket(10, 0), unicastDst, ProtocolIpv4)
	assert.Equal(t, 1, len(tb.links[1].sent))
}

func TestDevice_SendFrom(t *testing.T) {
	tb, err := newTestBed(3, true)
	require.Nil(t, err)
	tb.setDepths(100, 0, 0)
	src := MacAddr{2, 0, 0, 0, 0, 1}
	assert.True(t, tb.dev.SendFrom(NewPacket(10, 0), src, unicastDst, ProtocolIpv6))
	require.Equal(t, 1, len(tb.links[0].sent))
	assert.Equal(t, src, tb.links[0].sent[0].src)
	assert.True(t, tb.dev.SupportsSendFrom())
}

func TestDevice_Receive(t *testing.T) {
	tb, err := newTestBed(3, true)
	require.Nil(t, err)

	var ifcs []LogicalInterface
	var srcs []MacAddr
	var traced []LinkIndex
	tb.dev.SetReceiveCallback(func(ifc LogicalInterface, pkt *Packet, protocol Protocol, src MacAddr) {
		ifcs = append(ifcs, ifc)
		srcs = append(srcs, src)
		assert.Equal(t, ProtocolIpv4, protocol)
	})
	tb.dev.SetRxTraceCallback(func(nodeid NodeId, link LinkIndex, pkt *Packet, protocol Protocol) {
		assert.Equal(t, NodeId(1), nodeid)
		traced = append(traced, link)
	})

	peer := MacAddr{0, 0, 0, 0, 0, 7}
	for _, i := range []LinkIndex{2, 0, 1} {
		tb.d.Post(&Event{Type: EventTypeFrameReceived, NodeId: 1, Link: i, Packet: NewPacket(64, 0),
			Protocol: ProtocolIpv4, Src: peer, Dst: tb.dev.GetAddress()})
	}
	tb.run()

	assert.Equal(t, []LinkIndex{2, 0, 1}, traced)
	require.Equal(t, 3, len(ifcs))
	for i := range ifcs {
		assert.Same(t, tb.dev, ifcs[i])
		assert.Equal(t, peer, srcs[i])
	}
}

func TestDevice_ResetStatistics(t *testing.T) {
	for _, held := range []bool{false, true} {
		tb, err := newTestBed(3, true)
		require.Nil(t, err)
		for i := 0; i < 3; i++ {
			tb.links[i].notify(EventTypeAckReceived, 1)
			tb.links[i].notify(EventTypeAckMissed, 1)
		}
		if !held {
			tb.links[1].notify(EventTypeAckOverheard, 2)
		}
		tb.run()
		require.Equal(t, held, tb.dev.IsTokenHeld())
		permitted := tb.secondariesPermitted()

		tb.dev.ResetStatistics()
		for i := 0; i < 3; i++ {
			c, err := tb.dev.GetAckCounters(i)
			assert.Nil(t, err)
			assert.Equal(t, uint64(0), c.Received)
			assert.Equal(t, uint64(0), c.Missed)
		}
		assert.Equal(t, held, tb.dev.IsTokenHeld())
		assert.Equal(t, permitted, tb.secondariesPermitted())
	}
}

func TestDevice_AckCounters(t *testing.T) {
	tb, err := newTestBed(3, true)
	require.Nil(t, err)
	tb.links[0].notify(EventTypeAckReceived, 1)
	tb.links[0].notify(EventTypeAckReceived, 2)
	tb.links[1].notify(EventTypeAckMissed, 3)
	tb.links[2].notify(EventTypeAckReceived, 4)
	tb.run()

	assert.Equal(t, []AckCounters{{Received: 2}, {Missed: 1}, {Received: 1}}, tb.dev.AllAckCounters())
	assert.Equal(t, AckCounters{Received: 3, Missed: 1}, tb.dev.TotalAckCounters())

	_, err = tb.dev.GetAckCounters(5)
	assert.True(t, errors.Is(err, ErrLinkIndexOutOfRange))
	_, err = tb.dev.GetAckCounters(3)
	assert.True(t, errors.Is(err, ErrLinkIndexOutOfRange))
	_, err = tb.dev.GetAckCounters(-1)
	assert.True(t, errors.Is(err, ErrLinkIndexOutOfRange))
}

func TestDevice_ManyLinks(t *testing.T) {
	tb, err := newTestBed(12, true)
	require.Nil(t, err)
	tb.links[11].notify(EventTypeAckMissed, 1)
	tb.run()
	c, err := tb.dev.GetAckCounters(11)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), c.Missed)
}

func TestDevice_EventLinkOutOfRange(t *testing.T) {
	tb, err := newTestBed(2, true)
	require.Nil(t, err)
	tb.d.Post(&Event{Type: EventTypeAckReceived, NodeId: 1, Link: 7})
	tb.d.Post(&Event{Type: EventTypeAckReceived, NodeId: 1, Link: -1})
	assert.NotPanics(t, tb.run)
	assert.Equal(t, AckCounters{}, tb.dev.TotalAckCounters())
	assert.False(t, tb.dev.IsTokenHeld())
}

func TestDevice_Link(t *testing.T) {
	tb, err := newTestBed(3, true)
	require.Nil(t, err)
	l, err := tb.dev.Link(2)
	assert.Nil(t, err)
	assert.Same(t, tb.links[2], l)
	_, err = tb.dev.Link(3)
	assert.True(t, errors.Is(err, ErrLinkIndexOutOfRange))
	assert.Equal(t, ChannelId(36), tb.dev.GetChannel())

	tb.setDepths(1, 2, 3)
	assert.Equal(t, []int{1, 2, 3}, tb.dev.QueueDepths())
}

func TestDevice_Mtu(t *testing.T) {
	tb, err := newTestBed(2, true)
	require.Nil(t, err)
	assert.Equal(t, 2296, tb.dev.GetMtu())
	assert.Nil(t, tb.dev.SetMtu(1500))
	assert.Equal(t, 1500, tb.dev.GetMtu())
	assert.True(t, errors.Is(tb.dev.SetMtu(2297), ErrMtuTooLarge))
	assert.NotNil(t, tb.dev.SetMtu(0))
	assert.Equal(t, 1500, tb.dev.GetMtu())

	_, err = newTestBedConfig(&Config{NumLinks: 1, Mtu: 3000})
	assert.True(t, errors.Is(err, ErrMtuTooLarge))
}

func TestDevice_LinkUpDown(t *testing.T) {
	tb, err := newTestBed(2, true)
	require.Nil(t, err)
	assert.True(t, tb.dev.IsLinkUp())
	changes := 0
	tb.dev.AddLinkChangeCallback(func() { changes++ })
	tb.dev.SetLinkDown()
	assert.False(t, tb.dev.IsLinkUp())
	tb.dev.SetLinkUp()
	assert.True(t, tb.dev.IsLinkUp())
	assert.Equal(t, 2, changes)
}

func TestDevice_AddressQueries(t *testing.T) {
	tb, err := newTestBed(1, false)
	require.Nil(t, err)
	assert.True(t, tb.dev.IsBroadcast())
	assert.Equal(t, BroadcastMacAddr, tb.dev.GetBroadcast())
	assert.True(t, tb.dev.IsMulticast())
	assert.Equal(t, MacAddr{0x01, 0x00, 0x5e, 0x01, 0x02, 0x03}, tb.dev.GetMulticast(netip.MustParseAddr("239.129.2.3")))
	assert.Equal(t, MacAddr{0x33, 0x33, 0, 0, 0, 0x01}, tb.dev.GetMulticast(netip.MustParseAddr("ff02::1")))
	assert.False(t, tb.dev.IsPointToPoint())
	assert.False(t, tb.dev.IsBridge())
	assert.True(t, tb.dev.NeedsArp())
	tb.dev.SetIfIndex(3)
	assert.Equal(t, 3, tb.dev.IfIndex())
	assert.Equal(t, NodeId(1), tb.dev.GetNode())

	var ifc LogicalInterface = tb.dev
	assert.NotNil(t, ifc)
}

func TestDevice_SetDebug(t *testing.T) {
	tb, err := newTestBed(3, true)
	require.Nil(t, err)
	assert.Equal(t, InvalidLink, tb.dev.GetDebug())
	assert.Nil(t, tb.dev.SetDebug(2))
	assert.Equal(t, LinkIndex(2), tb.dev.GetDebug())
	assert.Equal(t, []bool{false, false, true}, []bool{tb.links[0].debug, tb.links[1].debug, tb.links[2].debug})
	assert.True(t, errors.Is(tb.dev.SetDebug(3), ErrLinkIndexOutOfRange))

	tb.links[0].notify(EventTypeAckReceived, 1)
	tb.links[1].notify(EventTypeAckOverheard, 2)
	assert.NotPanics(t, tb.run)
}

func TestDevice_Dispose(t *testing.T) {
	tb, err := newTestBed(2, true)
	require.Nil(t, err)
	tb.links[0].notify(EventTypeAckReceived, 10)
	tb.dev.Dispose()
	assert.True(t, tb.dev.IsDisposed())
	assert.False(t, tb.d.IsRegistered(1))
	for _, l := range tb.links {
		assert.True(t, l.disposed)
	}

	// posted before Dispose: still applied
	tb.run()
	c, _ := tb.dev.GetAckCounters(0)
	assert.Equal(t, uint64(1), c.Received)

	// posted after: dropped by the dispatcher
	tb.links[0].notify(EventTypeAckReceived, 10)
	tb.run()
	c, _ = tb.dev.GetAckCounters(0)
	assert.Equal(t, uint64(1), c.Received)
	tb.dev.Dispose()
}
