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


package dispatcher

import (
	"container/heap"

	. "github.com/mrwifi/mrns/event"
	"github.com/mrwifi/mrns/logger"
	. "github.com/mrwifi/mrns/types"
)

// queuedEvent is an event waiting for its timestamp. The handler (or timer callback) is
// bound when the event is posted.
type queuedEvent struct {
	evt     *Event
	seq     uint64
	handler EventHandler
	fn      func()

	index int
}

// sendQueue orders events by timestamp; events with equal timestamp pop in the order
// they were added.
type sendQueue struct {
	q       []*queuedEvent
	nextSeq uint64
}

func newSendQueue() *sendQueue {
	sq := &sendQueue{
		q: []*queuedEvent{},
	}
	heap.Init(sq)
	return sq
}

func (sq *sendQueue) Len() int {
	return len(sq.q)
}

func (sq *sendQueue) Less(i, j int) bool {
	a, b := sq.q[i], sq.q[j]
	if a.evt.Timestamp != b.evt.Timestamp {
		return a.evt.Timestamp < b.evt.Timestamp
	}
	return a.seq < b.seq
}

func (sq *sendQueue) Swap(i, j int) {
	a, b := sq.q[i], sq.q[j]
	if a.index != i || b.index != j {
		logger.Panicf("wrong index")
	}

	sq.q[i], sq.q[j] = b, a
	sq.q[i].index, sq.q[j].index = i, j
}

func (sq *sendQueue) Push(x interface{}) {
	e := x.(*queuedEvent)
	sq.q = append(sq.q, e)
	e.index = len(sq.q) - 1
}

func (sq *sendQueue) Pop() (elem interface{}) {
	qlen := len(sq.q)
	elem = sq.q[qlen-1]
	sq.q[qlen-1] = nil
	sq.q = sq.q[:qlen-1]
	return
}

// Add queues an event; evt.Timestamp must already be set.
func (sq *sendQueue) Add(evt *Event) *queuedEvent {
	qe := &queuedEvent{
		evt: evt,
		seq: sq.nextSeq,
	}
	sq.nextSeq++
	heap.Push(sq, qe)
	return qe
}

func (sq *sendQueue) NextTimestamp() uint64 {
	if len(sq.q) == 0 {
		return Ever
	}
	return sq.q[0].evt.Timestamp
}

func (sq *sendQueue) NextEvent() *Event {
	if len(sq.q) == 0 {
		return nil
	}
	return sq.q[0].evt
}

func (sq *sendQueue) PopNext() *queuedEvent {
	logger.AssertTrue(len(sq.q) > 0)
	return heap.Pop(sq).(*queuedEvent)
}
