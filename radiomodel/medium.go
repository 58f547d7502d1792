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


package radiomodel

import (
	"github.com/pkg/errors"

	. "github.com/mrwifi/mrns/event"
	"github.com/mrwifi/mrns/logger"
	"github.com/mrwifi/mrns/multiradio"
	"github.com/mrwifi/mrns/prng"
	. "github.com/mrwifi/mrns/types"
)

// EventScheduler is the part of the dispatcher the medium runs on.
type EventScheduler interface {
	multiradio.EventPoster
	Schedule(delay uint64, f func())
	Now() uint64
}

// PhyStats are the medium-wide frame exchange counters.
type PhyStats struct {
	DataFrames    uint64 `json:"data_frames"`
	Broadcasts    uint64 `json:"broadcasts"`
	AcksReceived  uint64 `json:"acks_received"`
	AcksMissed    uint64 `json:"acks_missed"`
	AcksOverheard uint64 `json:"acks_overheard"`
	RetryDrops    uint64 `json:"retry_drops"`
	QueueDrops    uint64 `json:"queue_drops"`
}

type channelState struct {
	id         ChannelId
	busyUntil  uint64
	busyTimeUs uint64
	links      []*SimLink
}

// Medium is an idealized shared wireless medium. Links on the same channel contend for it with a
// DCF-like random backoff; a unicast exchange (frame, SIFS, ack) keeps the channel busy for all
// of them. Reception follows the ideal disc model of the Topology.
type Medium struct {
	sched    EventScheduler
	params   MediumParams
	topo     *Topology
	nodes    map[NodeId]*RadioNode
	channels map[ChannelId]*channelState
	stats    PhyStats
}

func NewMedium(sched EventScheduler, params *MediumParams) *Medium {
	if params == nil {
		params = DefaultMediumParams()
	}
	return &Medium{
		sched:    sched,
		params:   *params,
		topo:     newTopology(),
		nodes:    map[NodeId]*RadioNode{},
		channels: map[ChannelId]*channelState{},
	}
}

func (m *Medium) Params() MediumParams {
	return m.params
}

func (m *Medium) AddNode(nodeid NodeId, cfg *RadioNodeConfig) (*RadioNode, error) {
	if _, ok := m.nodes[nodeid]; ok {
		return nil, errors.Errorf("node %d already exists", nodeid)
	}
	if cfg == nil {
		cfg = &RadioNodeConfig{RadioRange: defaultRadioRange}
	}
	rn := NewRadioNode(nodeid, cfg)
	m.nodes[nodeid] = rn
	m.topo.addNode(rn)
	return rn, nil
}

func (m *Medium) GetNode(nodeid NodeId) *RadioNode {
	return m.nodes[nodeid]
}

// RemoveNode disposes all links of the node and takes it off the medium.
func (m *Medium) RemoveNode(nodeid NodeId) {
	rn, ok := m.nodes[nodeid]
	if !ok {
		return
	}
	for _, l := range rn.links {
		l.Dispose()
	}
	delete(m.nodes, nodeid)
	m.topo.removeNode(nodeid)
}

func (m *Medium) SetNodePos(nodeid NodeId, x, y, z float64) error {
	rn, ok := m.nodes[nodeid]
	if !ok {
		return errors.Errorf("node %d not found", nodeid)
	}
	rn.SetNodePos(x, y, z)
	m.topo.rebuild()
	return nil
}

func (m *Medium) Topology() *Topology {
	return m.topo
}

func (m *Medium) GetStats() PhyStats {
	return m.stats
}

// ChannelBusyTimeUs is the total time the channel carried frame exchanges.
// ResetStats clears the medium counters and the channel busy times.
func (m *Medium) ResetStats() {
	m.stats = PhyStats{}
	for _, cs := range m.channels {
		cs.busyTimeUs = 0
	}
}

func (m *Medium) ChannelBusyTimeUs(ch ChannelId) uint64 {
	if cs, ok := m.channels[ch]; ok {
		return cs.busyTimeUs
	}
	return 0
}

// LinkConfig is the PHY configuration of one link. Zero Width or Mcs take the medium defaults.
type LinkConfig struct {
	Channel ChannelId
	Width   int
	Mcs     int
}

// NewLink creates a link of the node on the medium. It still has to be attached to its owner.
func (m *Medium) NewLink(nodeid NodeId, cfg *LinkConfig) (*SimLink, error) {
	rn, ok := m.nodes[nodeid]
	if !ok {
		return nil, errors.Errorf("node %d not found", nodeid)
	}
	width, mcs := cfg.Width, cfg.Mcs
	if width == 0 {
		width = m.params.ChannelWidth
	}
	if mcs == 0 {
		mcs = m.params.Mcs
	}
	rate, err := DataRateMbps(width, mcs)
	if err != nil {
		return nil, errors.Wrapf(err, "node %d link on channel %d", nodeid, cfg.Channel)
	}

	l := newSimLink(m, rn, cfg.Channel, width, mcs, rate)
	cs := m.channel(cfg.Channel)
	cs.links = append(cs.links, l)
	rn.links = append(rn.links, l)
	return l, nil
}

// LinkFactory creates the links of a multi-radio device for node nodeid; plan gives the PHY
// configuration of each link index.
func (m *Medium) LinkFactory(nodeid NodeId, plan func(index LinkIndex) LinkConfig) multiradio.LinkFactory {
	return func(index LinkIndex) (multiradio.RadioLink, error) {
		cfg := plan(index)
		l, err := m.NewLink(nodeid, &cfg)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
}

func (m *Medium) channel(ch ChannelId) *channelState {
	cs, ok := m.channels[ch]
	if !ok {
		cs = &channelState{id: ch}
		m.channels[ch] = cs
	}
	return cs
}

func (m *Medium) removeLink(l *SimLink) {
	cs := m.channels[l.channel]
	if cs == nil {
		return
	}
	for i, other := range cs.links {
		if other == l {
			cs.links = append(cs.links[:i], cs.links[i+1:]...)
			break
		}
	}
}

// transmit starts the exchange of the frame at the head of l's queue.
func (m *Medium) transmit(l *SimLink, f *txFrame) {
	now := m.sched.Now()
	cs := m.channel(l.channel)
	logger.AssertTrue(cs.busyUntil <= now)

	unicast := !f.dst.IsGroup()
	dur := ExchangeDurationUs(f.pkt.Size, l.rateMbps, unicast)
	cs.busyUntil = now + dur
	cs.busyTimeUs += dur
	l.Stats.TxFrames++
	l.Stats.TxBytes += uint64(f.pkt.Size)
	if unicast {
		m.stats.DataFrames++
	} else {
		m.stats.Broadcasts++
	}
	if m.params.DumpFrames {
		logger.Tracef("%11d medium: node %d link %d ch %d tx %s %s>%s dur=%d", now, l.node.Id, l.index,
			l.channel, f.pkt, f.src, f.dst, dur)
	}

	m.sched.Schedule(dur, func() {
		m.completeExchange(l, f, unicast)
	})
}

func (m *Medium) completeExchange(l *SimLink, f *txFrame, unicast bool) {
	if l.disposed {
		return
	}
	if !unicast {
		m.deliverBroadcast(l, f)
		l.frameDone()
		return
	}

	rx := m.findReceiver(l, f.dst)
	if rx == nil || prng.NewFrameErrorRandom() < m.params.FrameErrorRate {
		m.stats.AcksMissed++
		l.notify(&Event{Type: EventTypeAckMissed})
		l.frameMissed()
		return
	}

	m.stats.AcksReceived++
	rx.deliver(f)
	l.notify(&Event{Type: EventTypeAckReceived})
	m.overhearAck(l, rx)
	l.frameDone()
}

// findReceiver returns the link addressed by dst on l's channel that hears l.
func (m *Medium) findReceiver(l *SimLink, dst MacAddr) *SimLink {
	for _, other := range m.channel(l.channel).links {
		if other.node == l.node || other.addr != dst || !other.IsLinkUp() {
			continue
		}
		if m.topo.Hears(other.node.Id, l.node.Id) {
			return other
		}
	}
	return nil
}

func (m *Medium) deliverBroadcast(l *SimLink, f *txFrame) {
	delivered := map[NodeId]bool{}
	for _, other := range m.channel(l.channel).links {
		if other.node == l.node || delivered[other.node.Id] || !other.IsLinkUp() {
			continue
		}
		if m.topo.Hears(other.node.Id, l.node.Id) {
			delivered[other.node.Id] = true
			other.deliver(f)
		}
	}
}

// overhearAck notifies every other node that hears the ack sent by rx, on each of its links on
// the channel.
func (m *Medium) overhearAck(tx *SimLink, rx *SimLink) {
	for _, nid := range m.topo.Listeners(rx.node.Id) {
		if nid == tx.node.Id {
			continue
		}
		for _, other := range m.nodes[nid].links {
			if other.channel == rx.channel && other.IsLinkUp() {
				m.stats.AcksOverheard++
				other.notify(&Event{Type: EventTypeAckOverheard})
			}
		}
	}
}

// nextAccessDelay returns the delay until l may start its next transmission attempt: the
// channel must be idle for DIFS plus a random backoff.
func (m *Medium) nextAccessDelay(l *SimLink) uint64 {
	now := m.sched.Now()
	start := now
	cs := m.channel(l.channel)
	if cs.busyUntil > start {
		start = cs.busyUntil
	}
	start += DifsUs + SlotTimeUs*uint64(prng.NewBackoffSlots(l.cw))
	return start - now
}

func (m *Medium) isBusy(ch ChannelId) bool {
	return m.channel(ch).busyUntil > m.sched.Now()
}
