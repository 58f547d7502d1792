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


// Package prng holds the seeded random generators used by the radio medium.
package prng

import (
	"math/rand"
	"time"
)

type RandomSeed int64

var (
	backoffRandGenerator    *rand.Rand
	frameErrorRandGenerator *rand.Rand
	streamSeedGenerator     *rand.Rand
)

func init() {
	Init(1)
}

// Init initializes the prng package, either with a fixed PRNG seed (rootSeed != 0) or a 'random' time-based PRNG
// seed (if rootSeed == 0). The same root seed always reproduces the same run.
func Init(rootSeed int64) {
	if rootSeed == 0 {
		rootSeed = time.Now().UnixNano()
	}
	root := rand.New(rand.NewSource(rootSeed))

	backoffRandGenerator = rand.New(rand.NewSource(rootSeed + root.Int63n(1e10)))
	frameErrorRandGenerator = rand.New(rand.NewSource(rootSeed + root.Int63n(1e10)))
	streamSeedGenerator = rand.New(rand.NewSource(rootSeed + root.Int63n(1e10)))
}

// NewBackoffSlots draws a contention backoff, uniform in [0, cw] slots.
func NewBackoffSlots(cw int) int {
	if cw <= 0 {
		return 0
	}
	return backoffRandGenerator.Intn(cw + 1)
}

// NewFrameErrorRandom generates a new random unit [0, 1) float, to compare against a frame error rate.
func NewFrameErrorRandom() float64 {
	return frameErrorRandGenerator.Float64()
}

// NewStreamSeed generates a seed for an independent random stream, e.g. a traffic source.
func NewStreamSeed() RandomSeed {
	return RandomSeed(streamSeedGenerator.Int63())
}
