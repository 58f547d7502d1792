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


package simulation

import (
	"github.com/mrwifi/mrns/multiradio"
	. "github.com/mrwifi/mrns/types"
)

// Sink counts the packets arriving on a logical interface while it is open.
type Sink struct {
	sched   Scheduler
	startUs uint64
	stopUs  uint64

	Received      uint64
	ReceivedBytes uint64
	DelaySumUs    uint64
	PerSource     map[MacAddr]uint64
	PerLink       []uint64
}

// NewSink creates a sink open from startSec (inclusive) to stopSec (exclusive) and attaches it to dev.
func NewSink(sched Scheduler, dev *multiradio.Device, startSec, stopSec float64) *Sink {
	s := &Sink{
		sched:     sched,
		startUs:   SecondsToUs(startSec),
		stopUs:    SecondsToUs(stopSec),
		PerSource: map[MacAddr]uint64{},
		PerLink:   make([]uint64, dev.NumLinks()),
	}
	dev.SetReceiveCallback(s.onReceive)
	dev.SetRxTraceCallback(s.onRxTrace)
	return s
}

func (s *Sink) isOpen() bool {
	now := s.sched.Now()
	return now >= s.startUs && now < s.stopUs
}

func (s *Sink) onReceive(ifc multiradio.LogicalInterface, pkt *Packet, protocol Protocol, src MacAddr) {
	if !s.isOpen() || protocol != ProtocolIpv4 {
		return
	}
	s.Received++
	s.ReceivedBytes += uint64(pkt.Size)
	s.DelaySumUs += s.sched.Now() - pkt.CreatedUs
	s.PerSource[src]++
}

func (s *Sink) onRxTrace(nodeid NodeId, link LinkIndex, pkt *Packet, protocol Protocol) {
	if s.isOpen() && link >= 0 && link < len(s.PerLink) {
		s.PerLink[link]++
	}
}

// MeanDelayUs returns the mean time from creation to reception of the counted packets.
func (s *Sink) MeanDelayUs() float64 {
	if s.Received == 0 {
		return 0
	}
	return float64(s.DelaySumUs) / float64(s.Received)
}

// ThroughputMbps returns the payload throughput over a measurement period of periodSec seconds.
func (s *Sink) ThroughputMbps(payload int, periodSec float64) float64 {
	if periodSec <= 0 {
		return 0
	}
	return float64(s.Received) * float64(payload) * 8 / (periodSec * 1e6)
}
