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
	. "github.com/mrwifi/mrns/types"
)

type txFrame struct {
	pkt      *Packet
	src      MacAddr
	dst      MacAddr
	protocol Protocol
}

type LinkStats struct {
	TxFrames   uint64
	TxBytes    uint64
	RxFrames   uint64
	QueueDrops uint64
	RetryDrops uint64
}

// SimLink is one radio of a node on the Medium. It queues frames and contends for its channel
// while it is permitted to transmit; a link that loses permission keeps its queue and resumes
// when permission is granted again.
type SimLink struct {
	medium   *Medium
	node     *RadioNode
	owner    NodeId
	index    LinkIndex
	poster   multiradio.EventPoster
	attached bool

	channel  ChannelId
	width    int
	mcs      int
	rateMbps float64

	addr       MacAddr
	queue      []*txFrame
	permitted  bool
	up         bool
	contending bool
	cw         int
	retries    int
	debug      bool
	disposed   bool

	Stats LinkStats
}

func newSimLink(m *Medium, rn *RadioNode, channel ChannelId, width int, mcs int, rate float64) *SimLink {
	return &SimLink{
		medium:    m,
		node:      rn,
		owner:     rn.Id,
		index:     InvalidLink,
		channel:   channel,
		width:     width,
		mcs:       mcs,
		rateMbps:  rate,
		permitted: true,
		up:        true,
		cw:        CwMin,
	}
}

func (l *SimLink) Attach(owner NodeId, index LinkIndex, poster multiradio.EventPoster) error {
	if l.attached {
		return errors.Errorf("link of node %d already attached as link %d", l.node.Id, l.index)
	}
	if owner != l.node.Id {
		return errors.Errorf("link of node %d cannot be attached to node %d", l.node.Id, owner)
	}
	l.owner, l.index, l.poster, l.attached = owner, index, poster, true
	return nil
}

func (l *SimLink) Index() LinkIndex {
	return l.index
}

func (l *SimLink) QueueDepth() int {
	return len(l.queue)
}

func (l *SimLink) Send(pkt *Packet, dst MacAddr, protocol Protocol) bool {
	return l.SendFrom(pkt, l.addr, dst, protocol)
}

func (l *SimLink) SendFrom(pkt *Packet, src MacAddr, dst MacAddr, protocol Protocol) bool {
	if !l.IsLinkUp() {
		return false
	}
	if len(l.queue) >= l.medium.params.QueueLimit {
		l.Stats.QueueDrops++
		l.medium.stats.QueueDrops++
		return false
	}
	l.queue = append(l.queue, &txFrame{pkt: pkt, src: src, dst: dst, protocol: protocol})
	if l.debug {
		logger.GetDeviceLogger(l.owner).Debugf("link %d queued %s, queue %d", l.index, pkt, len(l.queue))
	}
	l.kick()
	return true
}

func (l *SimLink) SupportsSendFrom() bool {
	return true
}

func (l *SimLink) SetAddress(addr MacAddr) {
	l.addr = addr
}

func (l *SimLink) GetAddress() MacAddr {
	return l.addr
}

func (l *SimLink) SetTransmitPermitted(permitted bool) {
	l.permitted = permitted
	if permitted {
		l.kick()
	}
}

func (l *SimLink) IsTransmitPermitted() bool {
	return l.permitted
}

func (l *SimLink) IsLinkUp() bool {
	return l.up && !l.disposed
}

// SetLinkUp takes the radio up or down. A link that is down neither sends nor receives.
func (l *SimLink) SetLinkUp(up bool) {
	l.up = up
	if up {
		l.kick()
	}
}

func (l *SimLink) GetChannel() ChannelId {
	return l.channel
}

func (l *SimLink) Width() int {
	return l.width
}

func (l *SimLink) Mcs() int {
	return l.mcs
}

func (l *SimLink) RateMbps() float64 {
	return l.rateMbps
}

func (l *SimLink) Node() *RadioNode {
	return l.node
}

func (l *SimLink) SetDebug(enabled bool) {
	l.debug = enabled
}

func (l *SimLink) Dispose() {
	if l.disposed {
		return
	}
	l.disposed = true
	l.queue = nil
	l.medium.removeLink(l)
}

// kick starts contention for the head-of-line frame, if the link may transmit and is not
// already contending.
func (l *SimLink) kick() {
	if l.contending || len(l.queue) == 0 || !l.permitted || !l.IsLinkUp() {
		return
	}
	l.contending = true
	l.medium.sched.Schedule(l.medium.nextAccessDelay(l), l.accessMedium)
}

func (l *SimLink) accessMedium() {
	if !l.permitted || len(l.queue) == 0 || !l.IsLinkUp() {
		l.contending = false
		return
	}
	if l.medium.isBusy(l.channel) {
		l.medium.sched.Schedule(l.medium.nextAccessDelay(l), l.accessMedium)
		return
	}
	l.medium.transmit(l, l.queue[0])
}

func (l *SimLink) frameDone() {
	l.queue = l.queue[1:]
	l.retries = 0
	l.cw = CwMin
	l.contending = false
	l.kick()
}

func (l *SimLink) frameMissed() {
	l.retries++
	if l.retries > l.medium.params.RetryLimit {
		l.Stats.RetryDrops++
		l.medium.stats.RetryDrops++
		l.frameDone()
		return
	}
	l.cw = 2*l.cw + 1
	if l.cw > CwMax {
		l.cw = CwMax
	}
	l.contending = false
	l.kick()
}

func (l *SimLink) deliver(f *txFrame) {
	l.Stats.RxFrames++
	l.notify(&Event{
		Type:     EventTypeFrameReceived,
		Packet:   f.pkt.Copy(),
		Protocol: f.protocol,
		Src:      f.src,
		Dst:      f.dst,
	})
}

// notify posts a notification of this link to its owner; nothing happens before Attach.
func (l *SimLink) notify(evt *Event) {
	if !l.attached || l.disposed {
		return
	}
	evt.NodeId = l.owner
	evt.Link = l.index
	if l.debug {
		logger.GetDeviceLogger(l.owner).Debugf("link %d %s, queue %d", l.index, TypeName(evt.Type), len(l.queue))
	}
	l.poster.Post(evt)
}

var _ multiradio.RadioLink = (*SimLink)(nil)
