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
	"sort"
	"time"

	"github.com/pkg/errors"

	. "github.com/mrwifi/mrns/event"
	"github.com/mrwifi/mrns/logger"
	"github.com/mrwifi/mrns/progctx"
	. "github.com/mrwifi/mrns/types"
)

// EventHandler receives the events posted to a registered node.
type EventHandler interface {
	HandleEvent(evt *Event)
}

type goDuration struct {
	duration time.Duration
	done     chan struct{}
}

// Dispatcher is the single-threaded discrete-event scheduler. Events run in timestamp
// order, and events with the same timestamp run in the order they were posted. All
// handlers and timer callbacks run to completion on the dispatcher's goroutine.
type Dispatcher struct {
	ctx            *progctx.ProgCtx
	cfg            Config
	CurTime        uint64
	pauseTime      uint64
	evtQueue       *sendQueue
	nodes          map[NodeId]EventHandler
	taskChan       chan func()
	goDurationChan chan goDuration
	stopped        bool

	Counters struct {
		PostedEvents     uint64
		DispatchedEvents uint64
		TimerEvents      uint64
		DroppedEvents    uint64
	}
}

func NewDispatcher(ctx *progctx.ProgCtx, cfg *Config) *Dispatcher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	d := &Dispatcher{
		ctx:            ctx,
		cfg:            *cfg,
		evtQueue:       newSendQueue(),
		nodes:          make(map[NodeId]EventHandler),
		taskChan:       make(chan func(), 100),
		goDurationChan: make(chan goDuration, 10),
	}
	logger.Debugf("dispatcher created: cfg=%+v", *cfg)
	return d
}

// Register makes the handler the target of all events posted to nodeid from now on.
func (d *Dispatcher) Register(nodeid NodeId, h EventHandler) error {
	if h == nil {
		return errors.Errorf("nil handler for node %d", nodeid)
	}
	if _, ok := d.nodes[nodeid]; ok {
		return errors.Errorf("node %d already registered", nodeid)
	}
	d.nodes[nodeid] = h
	return nil
}

// Unregister removes the node. Events that were posted to it before are still delivered.
func (d *Dispatcher) Unregister(nodeid NodeId) {
	delete(d.nodes, nodeid)
}

func (d *Dispatcher) IsRegistered(nodeid NodeId) bool {
	_, ok := d.nodes[nodeid]
	return ok
}

// Nodes returns the ids of all registered nodes in ascending order.
func (d *Dispatcher) Nodes() []NodeId {
	ids := make([]NodeId, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Post queues evt for delivery to evt.NodeId at CurTime + evt.Delay. Events for a node
// that is not registered are dropped.
func (d *Dispatcher) Post(evt *Event) {
	h, ok := d.nodes[evt.NodeId]
	if !ok {
		d.Counters.DroppedEvents++
		logger.Warnf("dispatcher: dropped %s, node %d not registered", evt, evt.NodeId)
		return
	}
	qe := d.enqueue(evt)
	if qe != nil {
		qe.handler = h
	}
}

// PostAfter is a convenience form of Post.
func (d *Dispatcher) PostAfter(delay uint64, evt *Event) {
	evt.Delay = delay
	d.Post(evt)
}

// Schedule runs f on the dispatcher after delay us.
func (d *Dispatcher) Schedule(delay uint64, f func()) {
	logger.AssertNotNil(f)
	qe := d.enqueue(&Event{Type: EventTypeTimer, Delay: delay, NodeId: InvalidNodeId, Link: InvalidLink})
	if qe != nil {
		qe.fn = f
	}
}

func (d *Dispatcher) enqueue(evt *Event) *queuedEvent {
	ts := d.CurTime + evt.Delay
	if ts < d.CurTime || ts == Ever {
		logger.Warnf("dispatcher: dropped %s, timestamp out of range", evt)
		d.Counters.DroppedEvents++
		return nil
	}
	evt.Timestamp = ts
	d.Counters.PostedEvents++
	return d.evtQueue.Add(evt)
}

// Now returns the current simulation time in us.
func (d *Dispatcher) Now() uint64 {
	return d.CurTime
}

func (d *Dispatcher) NextTimestamp() uint64 {
	return d.evtQueue.NextTimestamp()
}

func (d *Dispatcher) PendingEvents() int {
	return d.evtQueue.Len()
}

// RunUntil processes all events with timestamp <= untilUs, then advances CurTime to
// untilUs. It returns false if the program context was cancelled before that. It must
// not be called while Run is active.
func (d *Dispatcher) RunUntil(untilUs uint64) bool {
	logger.AssertTrue(untilUs >= d.CurTime, "cannot run backwards: %d < %d", untilUs, d.CurTime)
	d.pauseTime = untilUs
	return d.goUntilPauseTime()
}

// Go runs the simulation for the duration, on the goroutine executing Run.
func (d *Dispatcher) Go(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	d.goDurationChan <- goDuration{
		duration: duration,
		done:     done,
	}
	return done
}

// PostAsync queues a task to be run on the dispatcher goroutine.
func (d *Dispatcher) PostAsync(task func()) {
	d.taskChan <- task
}

// Run serves Go and PostAsync requests until the program context is done.
func (d *Dispatcher) Run() {
	d.ctx.WaitAdd("dispatcher", 1)
	defer d.ctx.WaitDone("dispatcher")
	defer logger.Debugf("dispatcher exit.")
	defer d.Stop()

	done := d.ctx.Done()
loop:
	for {
		select {
		case f := <-d.taskChan:
			f()
		case duration := <-d.goDurationChan:
			oldPauseTime := d.CurTime
			d.pauseTime = d.CurTime + uint64(duration.duration/time.Microsecond)
			if d.pauseTime >= Ever || d.pauseTime < oldPauseTime {
				d.pauseTime = Ever - 1
			}
			ok := d.goUntilPauseTime()
			close(duration.done)
			if !ok {
				break loop
			}
		case <-done:
			break loop
		}
	}
}

func (d *Dispatcher) Stop() {
	if d.stopped {
		return
	}
	d.stopped = true
	logger.Debugf("dispatcher stopped at %d us: %+v", d.CurTime, d.Counters)
}

func (d *Dispatcher) IsStopped() bool {
	return d.stopped
}

func (d *Dispatcher) goUntilPauseTime() bool {
	for {
		d.handleTasks()
		if d.ctx != nil && d.ctx.Err() != nil {
			return false
		}
		if d.evtQueue.Len() == 0 || d.evtQueue.NextTimestamp() > d.pauseTime {
			break
		}
		d.processNextEvent()
	}
	d.advanceTime(d.pauseTime)
	return true
}

func (d *Dispatcher) processNextEvent() {
	qe := d.evtQueue.PopNext()
	evt := qe.evt
	logger.AssertTrue(evt.Timestamp >= d.CurTime, "event in the past: %s", evt)
	d.CurTime = evt.Timestamp

	if d.cfg.DumpEvents {
		logger.Tracef("%11d dispatch %s", d.CurTime, evt)
	}
	if qe.fn != nil {
		d.Counters.TimerEvents++
		qe.fn()
		return
	}
	d.Counters.DispatchedEvents++
	qe.handler.HandleEvent(evt)
}

func (d *Dispatcher) advanceTime(ts uint64) {
	logger.AssertTrue(d.CurTime <= ts, "%v > %v", d.CurTime, ts)
	d.CurTime = ts
}

func (d *Dispatcher) handleTasks() {
	defer func() {
		err := recover()
		if err != nil {
			logger.Errorf("dispatcher handle task failed: %+v", err)
		}
	}()

loop:
	for {
		select {
		case t := <-d.taskChan:
			t()
		default:
			break loop
		}
	}
}
