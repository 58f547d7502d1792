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
	. "github.com/mrwifi/mrns/types"
)

// SelectionBias is added to the queue depth of every secondary link when choosing a link for
// a unicast packet, so traffic stays on the primary unless a secondary is much less loaded.
const SelectionBias = 10

// InterfaceSelector chooses the link for each outgoing packet.
type InterfaceSelector struct {
	// HonorsToken skips secondaries that are not currently permitted to transmit.
	HonorsToken bool
}

// Select returns the link index for a packet to dst. Broadcast and multicast packets always use
// the primary link.
func (s InterfaceSelector) Select(dst MacAddr, links *RadioLinkSet) LinkIndex {
	if dst.IsGroup() {
		return PrimaryLink
	}
	var permitted []bool
	if s.HonorsToken {
		permitted = links.Permitted()
	}
	return SelectLeastLoaded(links.QueueDepths(), permitted)
}

// SelectLeastLoaded returns the index with the smallest biased queue depth. The primary's depth is
// taken as is, each secondary's is increased by SelectionBias; ties go to the lowest index. If
// permitted is non-nil, secondaries with permitted[i] == false are not considered.
func SelectLeastLoaded(depths []int, permitted []bool) LinkIndex {
	if len(depths) == 0 {
		return InvalidLink
	}
	minLink := PrimaryLink
	minDepth := depths[PrimaryLink]
	for i := 1; i < len(depths); i++ {
		if permitted != nil && !permitted[i] {
			continue
		}
		adjusted := depths[i] + SelectionBias
		if adjusted < minDepth {
			minLink = i
			minDepth = adjusted
		}
	}
	return minLink
}
