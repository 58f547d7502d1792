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
	"math"

	"github.com/pkg/errors"
)

// 802.11ac (VHT) OFDM timing, in us.
const (
	SlotTimeUs       uint64 = 9
	SifsUs           uint64 = 16
	DifsUs                  = SifsUs + 2*SlotTimeUs
	PhyPreambleUs    uint64 = 40 // VHT preamble and PHY header, one spatial stream.
	AckDurationUs    uint64 = 44 // legacy ack at the basic rate, preamble included.
	MacOverheadBytes        = 36 // MAC header, LLC/SNAP and FCS added to every MSDU.
	CwMin                   = 15
	CwMax                   = 1023
	MaxMcs                  = 9
)

var validWidths = []int{20, 40, 80, 160}

// vhtRatesMbps holds the single spatial stream, short guard interval data rates by width and MCS.
var vhtRatesMbps = map[int][MaxMcs + 1]float64{
	20:  {7.2, 14.4, 21.7, 28.9, 43.3, 57.8, 65.0, 72.2, 86.7, 86.7},
	40:  {15.0, 30.0, 45.0, 60.0, 90.0, 120.0, 135.0, 150.0, 180.0, 200.0},
	80:  {32.5, 65.0, 97.5, 130.0, 195.0, 260.0, 292.5, 325.0, 390.0, 433.3},
	160: {65.0, 130.0, 195.0, 260.0, 390.0, 520.0, 585.0, 650.0, 780.0, 866.7},
}

// IsValidWidth is true for the VHT channel widths (MHz).
func IsValidWidth(widthMhz int) bool {
	for _, w := range validWidths {
		if w == widthMhz {
			return true
		}
	}
	return false
}

// DataRateMbps returns the PHY data rate for the channel width (MHz) and MCS index.
func DataRateMbps(widthMhz int, mcs int) (float64, error) {
	rates, ok := vhtRatesMbps[widthMhz]
	if !ok {
		return 0, errors.Errorf("invalid channel width %d MHz", widthMhz)
	}
	if mcs < 0 || mcs > MaxMcs {
		return 0, errors.Errorf("invalid VHT MCS %d", mcs)
	}
	return rates[mcs], nil
}

// FrameAirtimeUs is the time on air of one data frame carrying an MSDU of sizeBytes.
func FrameAirtimeUs(sizeBytes int, rateMbps float64) uint64 {
	bits := float64((sizeBytes + MacOverheadBytes) * 8)
	return PhyPreambleUs + uint64(math.Ceil(bits/rateMbps))
}

// ExchangeDurationUs is the time the medium stays busy for a frame: the frame itself, and for
// unicast the SIFS plus the ack.
func ExchangeDurationUs(sizeBytes int, rateMbps float64, unicast bool) uint64 {
	d := FrameAirtimeUs(sizeBytes, rateMbps)
	if unicast {
		d += SifsUs + AckDurationUs
	}
	return d
}
