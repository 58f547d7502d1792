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
	"net/netip"

	"github.com/pkg/errors"

	. "github.com/mrwifi/mrns/event"
	"github.com/mrwifi/mrns/logger"
	. "github.com/mrwifi/mrns/types"
)

const (
	MaxMsduSize         = 2304
	LlcSnapHeaderLength = 8
	MaxMtu              = MaxMsduSize - LlcSnapHeaderLength
)

type Config struct {
	NumLinks            int
	PolicyEnabled       bool
	SelectorHonorsToken bool
	Address             MacAddr // shared by all links; a new address is allocated if unset.
	Mtu                 int     // MaxMtu if unset.
}

func DefaultConfig() *Config {
	return &Config{
		NumLinks:      1,
		PolicyEnabled: true,
		Mtu:           MaxMtu,
	}
}

// Device is a logical network interface on top of a fixed set of radio links. All of its
// state is changed only from its own calls and from events the dispatcher delivers to it.
type Device struct {
	id       NodeId
	ifIndex  int
	sched    Scheduler
	links    *RadioLinkSet
	selector InterfaceSelector
	arbiter  *TokenArbiter
	stats    *Statistics
	log      *logger.DeviceLogger

	address         MacAddr
	mtu             int
	linkUp          bool
	linkChangeCbs   []LinkChangeCallback
	rxCallback      ReceiveCallback
	rxTraceCallback RxTraceCallback
	debugLink       LinkIndex
	disposed        bool
}

// New creates the device for node id with cfg.NumLinks links from factory, and registers it as
// the event handler of node id. Nothing is registered if any step fails.
func New(id NodeId, sched Scheduler, cfg *Config, factory LinkFactory) (*Device, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.NumLinks < 1 {
		return nil, errors.Wrapf(ErrNoLinks, "node %d: %d links requested", id, cfg.NumLinks)
	}
	mtu := cfg.Mtu
	if mtu == 0 {
		mtu = MaxMtu
	}
	if err := checkMtu(mtu); err != nil {
		return nil, errors.Wrapf(err, "node %d", id)
	}
	addr := cfg.Address
	if addr == InvalidMacAddr {
		addr = AllocateMacAddr()
	}

	links, err := newRadioLinkSet(id, cfg.NumLinks, addr, sched, factory)
	if err != nil {
		return nil, err
	}

	d := &Device{
		id:        id,
		sched:     sched,
		links:     links,
		selector:  InterfaceSelector{HonorsToken: cfg.SelectorHonorsToken},
		stats:     newStatistics(cfg.NumLinks),
		log:       logger.GetDeviceLogger(id),
		address:   addr,
		mtu:       mtu,
		linkUp:    true,
		debugLink: InvalidLink,
	}
	d.log.SetTimeSource(sched.Now)
	d.arbiter = newTokenArbiter(links, cfg.PolicyEnabled, d.onTokenTransition)

	if err = sched.Register(id, d); err != nil {
		links.dispose()
		return nil, errors.Wrapf(err, "node %d", id)
	}
	d.log.Debugf("multi-radio device created: links=%d addr=%s policy=%v", cfg.NumLinks, addr, cfg.PolicyEnabled)
	return d, nil
}

func checkMtu(mtu int) error {
	if mtu > MaxMtu {
		return errors.Wrapf(ErrMtuTooLarge, "mtu %d > %d", mtu, MaxMtu)
	}
	if mtu < 1 {
		return errors.Errorf("invalid mtu %d", mtu)
	}
	return nil
}

// HandleEvent applies a link notification. Counters are updated for every ack outcome, then the
// arbiter reacts to it.
func (d *Device) HandleEvent(evt *Event) {
	if !d.links.isValid(evt.Link) {
		d.log.Warnf("dropped %s: link index out of range", evt)
		return
	}
	switch evt.Type {
	case EventTypeAckReceived:
		d.stats.countReceived(evt.Link)
		d.arbiter.OnAckReceived(evt.Link)
	case EventTypeAckMissed:
		d.stats.countMissed(evt.Link)
	case EventTypeAckOverheard:
		d.stats.countOverheard(evt.Link)
		d.arbiter.OnAckOverheard(evt.Link)
	case EventTypeFrameReceived:
		d.receive(evt.Link, evt.Packet, evt.Protocol, evt.Src)
	default:
		d.log.Warnf("dropped %s: unexpected event type", evt)
	}
}

// Send hands pkt to the primary link for group destinations, otherwise to the link chosen by
// the selector. Whether the link accepts the packet is up to the link.
func (d *Device) Send(pkt *Packet, dst MacAddr, protocol Protocol) bool {
	idx := d.selector.Select(dst, d.links)
	if idx == d.debugLink {
		d.log.Debugf("send %s to %s on link %d, queued packets: %d", pkt, dst, idx, d.links.links[idx].QueueDepth())
	}
	d.links.links[idx].Send(pkt, dst, protocol)
	return true
}

// SendFrom sends with an explicit source address, always on the primary link.
func (d *Device) SendFrom(pkt *Packet, src MacAddr, dst MacAddr, protocol Protocol) bool {
	d.links.Primary().SendFrom(pkt, src, dst, protocol)
	return true
}

func (d *Device) SupportsSendFrom() bool {
	return d.links.Primary().SupportsSendFrom()
}

func (d *Device) receive(from LinkIndex, pkt *Packet, protocol Protocol, src MacAddr) {
	if d.rxTraceCallback != nil {
		d.rxTraceCallback(d.id, from, pkt, protocol)
	}
	if d.rxCallback != nil {
		d.rxCallback(d, pkt, protocol, src)
	}
}

func (d *Device) SetReceiveCallback(cb ReceiveCallback) {
	d.rxCallback = cb
}

func (d *Device) SetRxTraceCallback(cb RxTraceCallback) {
	d.rxTraceCallback = cb
}

func (d *Device) GetAddress() MacAddr {
	return d.address
}

// SetAddress changes the shared address of the device and all its links.
func (d *Device) SetAddress(addr MacAddr) {
	d.address = addr
	d.links.setAddress(addr)
}

func (d *Device) GetMtu() int {
	return d.mtu
}

func (d *Device) SetMtu(mtu int) error {
	if err := checkMtu(mtu); err != nil {
		return err
	}
	d.mtu = mtu
	return nil
}

func (d *Device) IsLinkUp() bool {
	return d.linkUp && d.links.Len() > 0
}

func (d *Device) AddLinkChangeCallback(cb LinkChangeCallback) {
	d.linkChangeCbs = append(d.linkChangeCbs, cb)
}

func (d *Device) SetLinkUp() {
	d.linkUp = true
	d.notifyLinkChange()
}

func (d *Device) SetLinkDown() {
	d.linkUp = false
	d.notifyLinkChange()
}

func (d *Device) notifyLinkChange() {
	for _, cb := range d.linkChangeCbs {
		cb()
	}
}

func (d *Device) IsBroadcast() bool {
	return true
}

func (d *Device) GetBroadcast() MacAddr {
	return BroadcastMacAddr
}

func (d *Device) IsMulticast() bool {
	return true
}

func (d *Device) GetMulticast(group netip.Addr) MacAddr {
	return MulticastMacAddr(group)
}

func (d *Device) IsPointToPoint() bool {
	return false
}

func (d *Device) IsBridge() bool {
	return false
}

func (d *Device) NeedsArp() bool {
	return true
}

// GetChannel returns the channel of the primary link.
func (d *Device) GetChannel() ChannelId {
	return d.links.Primary().GetChannel()
}

func (d *Device) GetNode() NodeId {
	return d.id
}

func (d *Device) IfIndex() int {
	return d.ifIndex
}

func (d *Device) SetIfIndex(index int) {
	d.ifIndex = index
}

func (d *Device) NumLinks() int {
	return d.links.Len()
}

// Link returns the link at index i, or ErrLinkIndexOutOfRange.
func (d *Device) Link(i LinkIndex) (RadioLink, error) {
	return d.links.Link(i)
}

// QueueDepths returns the current queue depth of every link.
func (d *Device) QueueDepths() []int {
	return d.links.QueueDepths()
}

func (d *Device) ResetStatistics() {
	d.stats.Reset()
}

// GetAckCounters returns the counters of link i, or ErrLinkIndexOutOfRange.
func (d *Device) GetAckCounters(i LinkIndex) (AckCounters, error) {
	return d.stats.Get(i)
}

func (d *Device) AllAckCounters() []AckCounters {
	return d.stats.All()
}

func (d *Device) TotalAckCounters() AckCounters {
	return d.stats.Total()
}

func (d *Device) IsTokenHeld() bool {
	return d.arbiter.IsTokenHeld()
}

func (d *Device) TokenState() TokenState {
	return d.arbiter.State()
}

// TokenTransitions returns how often the token was taken and released.
func (d *Device) TokenTransitions() (grants uint64, releases uint64) {
	return d.arbiter.Grants, d.arbiter.Releases
}

func (d *Device) PolicyEnabled() bool {
	return d.arbiter.PolicyEnabled()
}

func (d *Device) SetPolicyEnabled(enabled bool) {
	d.arbiter.SetPolicyEnabled(enabled)
}

// SetDebug traces token transitions together with the queue depth of the given link.
func (d *Device) SetDebug(link LinkIndex) error {
	if !d.links.isValid(link) {
		return errors.Wrapf(ErrLinkIndexOutOfRange, "link %d of %d", link, d.links.Len())
	}
	d.debugLink = link
	for i, l := range d.links.links {
		l.SetDebug(i == link)
	}
	return nil
}

func (d *Device) GetDebug() LinkIndex {
	return d.debugLink
}

func (d *Device) onTokenTransition(from, to TokenState) {
	if d.debugLink == InvalidLink {
		d.log.Tracef("%s token %s", d.address, to)
		return
	}
	d.log.Infof("%s token %s, link %d queued packets: %d", d.address, to, d.debugLink,
		d.links.links[d.debugLink].QueueDepth())
}

// Dispose unregisters the device and disposes its links. Events posted to the device before
// are still delivered.
func (d *Device) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.sched.Unregister(d.id)
	for _, l := range d.links.links {
		l.Dispose()
	}
	d.linkChangeCbs = nil
}

func (d *Device) IsDisposed() bool {
	return d.disposed
}
