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


package types

import "fmt"

var nextPacketUid uint64 = 1

// Packet is an opaque upper-layer payload handed across the logical interface. Only its
// size matters to the links; Payload may be nil.
type Packet struct {
	Uid       uint64
	Size      int
	Payload   []byte
	CreatedUs uint64 // simulation time at which a traffic source created the packet.
}

// NewPacket creates a packet of the given size with a fresh unique id.
func NewPacket(size int, createdUs uint64) *Packet {
	p := &Packet{
		Uid:       nextPacketUid,
		Size:      size,
		CreatedUs: createdUs,
	}
	nextPacketUid++
	return p
}

// Copy creates a copy of the packet that shares no payload storage with the original.
func (p *Packet) Copy() *Packet {
	np := *p
	if p.Payload != nil {
		np.Payload = make([]byte, len(p.Payload))
		copy(np.Payload, p.Payload)
	}
	return &np
}

func (p *Packet) String() string {
	return fmt.Sprintf("Pkt{uid=%d,size=%d}", p.Uid, p.Size)
}
