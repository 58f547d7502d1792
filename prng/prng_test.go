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


package prng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_Reproducible(t *testing.T) {
	Init(42)
	a := []int{NewBackoffSlots(15), NewBackoffSlots(15), NewBackoffSlots(1023)}
	f := NewFrameErrorRandom()
	s := NewStreamSeed()

	Init(42)
	b := []int{NewBackoffSlots(15), NewBackoffSlots(15), NewBackoffSlots(1023)}
	assert.Equal(t, a, b)
	assert.Equal(t, f, NewFrameErrorRandom())
	assert.Equal(t, s, NewStreamSeed())
}

func TestNewBackoffSlots_Range(t *testing.T) {
	Init(7)
	for i := 0; i < 1000; i++ {
		v := NewBackoffSlots(15)
		assert.True(t, v >= 0 && v <= 15)
	}
	assert.Equal(t, 0, NewBackoffSlots(0))
}

func TestNewFrameErrorRandom_Range(t *testing.T) {
	Init(0)
	for i := 0; i < 1000; i++ {
		v := NewFrameErrorRandom()
		assert.True(t, v >= 0 && v < 1)
	}
}
