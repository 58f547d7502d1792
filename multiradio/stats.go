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
	"github.com/pkg/errors"

	. "github.com/mrwifi/mrns/types"
)

// AckCounters are the per-link transmission outcome counts since the last reset.
type AckCounters struct {
	Received  uint64 `yaml:"received" json:"received"`
	Missed    uint64 `yaml:"missed" json:"missed"`
	Overheard uint64 `yaml:"overheard" json:"overheard"`
}

func (c *AckCounters) add(o AckCounters) {
	c.Received += o.Received
	c.Missed += o.Missed
	c.Overheard += o.Overheard
}

// Statistics holds one AckCounters per link.
type Statistics struct {
	counters []AckCounters
}

func newStatistics(numLinks int) *Statistics {
	return &Statistics{
		counters: make([]AckCounters, numLinks),
	}
}

func (s *Statistics) Get(link LinkIndex) (AckCounters, error) {
	if link < 0 || link >= len(s.counters) {
		return AckCounters{}, errors.Wrapf(ErrLinkIndexOutOfRange, "link %d of %d", link, len(s.counters))
	}
	return s.counters[link], nil
}

// All returns a copy of the counters of all links.
func (s *Statistics) All() []AckCounters {
	res := make([]AckCounters, len(s.counters))
	copy(res, s.counters)
	return res
}

func (s *Statistics) Total() AckCounters {
	var total AckCounters
	for _, c := range s.counters {
		total.add(c)
	}
	return total
}

func (s *Statistics) Reset() {
	for i := range s.counters {
		s.counters[i] = AckCounters{}
	}
}

func (s *Statistics) countReceived(link LinkIndex) {
	s.counters[link].Received++
}

func (s *Statistics) countMissed(link LinkIndex) {
	s.counters[link].Missed++
}

func (s *Statistics) countOverheard(link LinkIndex) {
	s.counters[link].Overheard++
}
