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
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/mrwifi/mrns/types"
)

func TestTopology_Hears(t *testing.T) {
	topo := newTopology()
	topo.addNode(NewRadioNode(1, &RadioNodeConfig{X: 0, RadioRange: 10}))
	topo.addNode(NewRadioNode(2, &RadioNodeConfig{X: 8, RadioRange: 5}))
	topo.addNode(NewRadioNode(3, &RadioNodeConfig{X: 20, RadioRange: 15}))

	assert.True(t, topo.Hears(2, 1))  // 8 <= 10
	assert.False(t, topo.Hears(1, 2)) // 8 > 5
	assert.True(t, topo.Hears(2, 3))  // 12 <= 15
	assert.False(t, topo.Hears(1, 3)) // 20 > 15
	assert.False(t, topo.Hears(1, 1))

	assert.Equal(t, []NodeId{2}, topo.Listeners(1))
	assert.Equal(t, []NodeId{2}, topo.Listeners(3))
	assert.Empty(t, topo.Neighbors(1))

	topo.removeNode(2)
	assert.Empty(t, topo.Listeners(1))
	assert.False(t, topo.Hears(2, 1))
}

func TestTopology_Neighbors(t *testing.T) {
	topo := newTopology()
	for i := 1; i <= 4; i++ {
		topo.addNode(NewRadioNode(i, &RadioNodeConfig{X: float64(i), RadioRange: 1.5}))
	}
	assert.Equal(t, []NodeId{1, 3}, topo.Neighbors(2))
	assert.Equal(t, []NodeId{3}, topo.Neighbors(4))
}

func TestRadioNode_GetDistanceTo(t *testing.T) {
	a := NewRadioNode(1, &RadioNodeConfig{X: 0, Y: 0, Z: 0, RadioRange: 5})
	b := NewRadioNode(2, &RadioNodeConfig{X: 3, Y: 4, Z: 0, RadioRange: 1})
	assert.Equal(t, 5.0, a.GetDistanceTo(b))
	assert.True(t, b.InRangeOf(a))
	assert.False(t, a.InRangeOf(b))
	b.SetNodePos(30, 40, 0)
	assert.Equal(t, 50.0, a.GetDistanceTo(b))
}
