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
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/mrwifi/mrns/types"
)

func TestSink_Window(t *testing.T) {
	d := newTestDispatcher()
	s := &Sink{sched: d, startUs: 100, stopUs: 200, PerSource: map[MacAddr]uint64{}, PerLink: make([]uint64, 2)}
	src := MacAddr{0, 0, 0, 0, 0, 2}

	for _, at := range []uint64{50, 100, 150, 199, 200} {
		at := at
		d.Schedule(at, func() {
			s.onRxTrace(1, 1, NewPacket(1000, 0), ProtocolIpv4)
			s.onReceive(nil, NewPacket(1000, at-10), ProtocolIpv4, src)
			s.onReceive(nil, NewPacket(60, at), ProtocolArp, src)
		})
	}
	d.RunUntil(1000)

	assert.Equal(t, uint64(3), s.Received)
	assert.Equal(t, uint64(3000), s.ReceivedBytes)
	assert.Equal(t, uint64(3), s.PerSource[src])
	assert.Equal(t, []uint64{0, 3}, s.PerLink)
	assert.Equal(t, 10.0, s.MeanDelayUs())
	assert.InDelta(t, 2.4, s.ThroughputMbps(1000, 0.01), 1e-9)
	assert.Equal(t, 0.0, s.ThroughputMbps(1000, 0))
	assert.Equal(t, 0.0, (&Sink{}).MeanDelayUs())
}
