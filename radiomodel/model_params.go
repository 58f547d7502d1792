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

// default medium & simulation parameters
const (
	defaultRadioRange   float64 = 100.0 // meters
	defaultQueueLimit   int     = 400   // frames queued per link, like a Wi-Fi BE queue
	defaultRetryLimit   int     = 7
	defaultChannelWidth int     = 20
	defaultMcs          int     = 7
)

// MediumParams stores model parameters for the shared medium.
type MediumParams struct {
	FrameErrorRate float64 // probability that a unicast data frame (or its ack) is lost
	QueueLimit     int     // max frames queued per link; further sends are dropped
	RetryLimit     int     // retransmissions of a unicast frame after a missed ack
	ChannelWidth   int     // MHz, for every link created without an explicit width
	Mcs            int     // VHT MCS index for data frames
	DumpFrames     bool    // trace every frame exchange on the medium
}

// DefaultMediumParams gets a new set of parameters with default values, as a basis to configure further.
func DefaultMediumParams() *MediumParams {
	return &MediumParams{
		FrameErrorRate: 0.0,
		QueueLimit:     defaultQueueLimit,
		RetryLimit:     defaultRetryLimit,
		ChannelWidth:   defaultChannelWidth,
		Mcs:            defaultMcs,
	}
}
