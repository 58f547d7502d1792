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
	"fmt"
	"math"

	"github.com/iti/rngstream"

	"github.com/mrwifi/mrns/logger"
	"github.com/mrwifi/mrns/multiradio"
	"github.com/mrwifi/mrns/prng"
	. "github.com/mrwifi/mrns/types"
)

// Scheduler is the part of the dispatcher that traffic sources and the run loop use.
type Scheduler interface {
	Schedule(delay uint64, f func())
	Now() uint64
}

// SecondsToUs converts simulated seconds to microseconds, rounding to the nearest microsecond.
func SecondsToUs(sec float64) uint64 {
	return uint64(math.Round(sec * 1e6))
}

type sendWindow struct {
	startUs uint64
	stopUs  uint64
}

// Client sends fixed-size packets at a constant interval to one destination while one of its
// send windows is open.
type Client struct {
	id         NodeId
	sched      Scheduler
	ifc        multiradio.LogicalInterface
	dst        MacAddr
	payload    int
	intervalUs float64
	jitter     float64
	rng        *rngstream.RngStream
	windows    []sendWindow

	Sent    uint64
	Refused uint64
}

// NewClient creates a client on node id. jitter is the largest relative deviation of a
// single interval; 0 sends at exactly intervalSec.
func NewClient(id NodeId, sched Scheduler, ifc multiradio.LogicalInterface, dst MacAddr, payload int,
	intervalSec float64, jitter float64) *Client {
	c := &Client{
		id:         id,
		sched:      sched,
		ifc:        ifc,
		dst:        dst,
		payload:    payload,
		intervalUs: intervalSec * 1e6,
		jitter:     jitter,
	}
	if jitter > 0 {
		c.rng = rngstream.New(fmt.Sprintf("%s-%d", GetNodeName(id), prng.NewStreamSeed()))
	}
	return c
}

// AddWindow opens the client between startSec (inclusive) and stopSec (exclusive).
func (c *Client) AddWindow(startSec, stopSec float64) {
	c.windows = append(c.windows, sendWindow{startUs: SecondsToUs(startSec), stopUs: SecondsToUs(stopSec)})
}

// Start schedules all windows. Windows that already started are skipped.
func (c *Client) Start() {
	now := c.sched.Now()
	for _, w := range c.windows {
		if w.startUs < now {
			logger.Warnf("%s: send window %d..%d already started, skipped", GetNodeName(c.id), w.startUs, w.stopUs)
			continue
		}
		w := w
		c.sched.Schedule(w.startUs-now, func() {
			c.send(w, float64(w.startUs))
		})
	}
}

// IntervalUs returns the mean sending interval in microseconds.
func (c *Client) IntervalUs() float64 {
	return c.intervalUs
}

func (c *Client) send(w sendWindow, at float64) {
	now := c.sched.Now()
	if now >= w.stopUs {
		return
	}
	pkt := NewPacket(c.payload, now)
	if c.ifc.Send(pkt, c.dst, ProtocolIpv4) {
		c.Sent++
	} else {
		c.Refused++
	}

	next := at + c.nextInterval()
	nextUs := uint64(next)
	if nextUs < now {
		nextUs = now
	}
	if nextUs >= w.stopUs {
		return
	}
	c.sched.Schedule(nextUs-now, func() {
		c.send(w, next)
	})
}

func (c *Client) nextInterval() float64 {
	if c.rng == nil {
		return c.intervalUs
	}
	return c.intervalUs * (1 + c.jitter*(2*c.rng.RandU01()-1))
}
