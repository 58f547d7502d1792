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

	. "github.com/mrwifi/mrns/types"
)

// RadioNode is the physical node carrying one or more radio links: its position and radio range
// are shared by all of them.
type RadioNode struct {
	Id NodeId

	// RadioRange is the radio range as configured by the simulation for this node.
	RadioRange float64

	// Node position in meters.
	X, Y, Z float64

	links []*SimLink
}

type RadioNodeConfig struct {
	X, Y, Z    float64
	RadioRange float64
}

func NewRadioNode(nodeid NodeId, cfg *RadioNodeConfig) *RadioNode {
	rn := &RadioNode{
		Id:         nodeid,
		X:          cfg.X,
		Y:          cfg.Y,
		Z:          cfg.Z,
		RadioRange: cfg.RadioRange,
	}
	return rn
}

func (rn *RadioNode) SetNodePos(x, y, z float64) {
	rn.X, rn.Y, rn.Z = x, y, z
}

// GetDistanceTo gets the distance to another RadioNode (in meters).
func (rn *RadioNode) GetDistanceTo(other *RadioNode) (dist float64) {
	dx := other.X - rn.X
	dy := other.Y - rn.Y
	dz := other.Z - rn.Z
	dist = math.Sqrt(dx*dx + dy*dy + dz*dz)
	return
}

// InRangeOf is true if this node hears transmissions of other, under the ideal disc model.
func (rn *RadioNode) InRangeOf(other *RadioNode) bool {
	return rn != other && other.GetDistanceTo(rn) <= other.RadioRange
}

// Links returns the medium links of this node, in link index order.
func (rn *RadioNode) Links() []*SimLink {
	return rn.links
}
