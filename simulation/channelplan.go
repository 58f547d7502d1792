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
	"github.com/mrwifi/mrns/radiomodel"
	. "github.com/mrwifi/mrns/types"
)

// PlanWidth returns the channel width in MHz used by each radio when a device carries numRadios radios.
func PlanWidth(numRadios int) int {
	switch {
	case numRadios <= 1:
		return 160
	case numRadios <= 2:
		return 80
	case numRadios <= 4:
		return 40
	default:
		return 20
	}
}

// PlanChannel returns the channel number of radio index for the given width.
func PlanChannel(width int, index LinkIndex) ChannelId {
	switch width {
	case 160:
		return 50
	case 80:
		return 42 + 16*index
	case 40:
		return 38 + 8*index
	default:
		return 36 + 4*index
	}
}

// ChannelPlan assigns channel, width and MCS to the links of every device.
type ChannelPlan struct {
	Width int
	Mcs   int
}

func NewChannelPlan(cfg *Config) *ChannelPlan {
	return &ChannelPlan{Width: cfg.Width(), Mcs: cfg.Mcs}
}

// Link returns the configuration of radio index.
func (p *ChannelPlan) Link(index LinkIndex) radiomodel.LinkConfig {
	return radiomodel.LinkConfig{
		Channel: PlanChannel(p.Width, index),
		Width:   p.Width,
		Mcs:     p.Mcs,
	}
}

// Channels returns the channels used by numRadios radios.
func (p *ChannelPlan) Channels(numRadios int) []ChannelId {
	chans := make([]ChannelId, numRadios)
	for i := range chans {
		chans[i] = PlanChannel(p.Width, i)
	}
	return chans
}
