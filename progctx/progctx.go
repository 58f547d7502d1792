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


package progctx

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/mrwifi/mrns/logger"
)

// ProgCtx represents the context of a simulation program during its lifetime.
type ProgCtx struct {
	context.Context
	wg           sync.WaitGroup
	cancel       context.CancelFunc
	routinesLock sync.Mutex
	routines     map[string]int
	deferLock    sync.Mutex
	deferred     []func()
	cause        interface{}
}

// WaitCount returns the number of routines to wait for.
func (ctx *ProgCtx) WaitCount() int {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	total := 0
	for _, c := range ctx.routines {
		total += c
	}
	return total
}

// Routines returns the names of the running routines, sorted.
func (ctx *ProgCtx) Routines() []string {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	var names []string
	for name, c := range ctx.routines {
		if c > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Cancel cancels the program context with the given cause.
// Only the first call has effect; deferred functions run in reverse registration order.
func (ctx *ProgCtx) Cancel(cause interface{}) {
	ctx.deferLock.Lock()
	if ctx.Err() != nil {
		ctx.deferLock.Unlock()
		return
	}
	ctx.cause = cause
	ctx.cancel()
	deferred := ctx.deferred
	ctx.deferred = nil
	ctx.deferLock.Unlock()

	if e, ok := cause.(error); ok {
		logger.TraceError("program exit: %v", e)
	} else {
		logger.Infof("program exit: %v", cause)
	}

	for i := len(deferred) - 1; i >= 0; i-- {
		deferred[i]()
	}
}

// Cause returns what was passed to the first Cancel, or nil.
func (ctx *ProgCtx) Cause() interface{} {
	ctx.deferLock.Lock()
	defer ctx.deferLock.Unlock()
	return ctx.cause
}

// CancelOnSignal cancels the context when one of the signals arrives.
func (ctx *ProgCtx) CancelOnSignal(sigs ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	ctx.WaitAdd("signal", 1)
	go func() {
		defer ctx.WaitDone("signal")
		defer signal.Stop(ch)

		select {
		case sig := <-ch:
			ctx.Cancel(errors.Errorf("signal %v", sig))
		case <-ctx.Done():
		}
	}()
}

// WaitAdd adds routines to wait for.
func (ctx *ProgCtx) WaitAdd(name string, delta int) {
	ctx.routinesLock.Lock()
	ctx.routines[name] += delta
	ctx.routinesLock.Unlock()

	ctx.wg.Add(delta)
}

// WaitDone notifies that a routine has finished.
func (ctx *ProgCtx) WaitDone(name string) {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	if ctx.routines[name] <= 0 {
		logger.Panicf("routine %s is not running, should not call WaitDone", name)
	}

	ctx.routines[name] -= 1
	ctx.wg.Done()
}

// Wait waits for all routines to finish.
func (ctx *ProgCtx) Wait() {
	logger.Debugf("program context waiting routines: %v", ctx.Routines())
	ctx.wg.Wait()
}

// Defer registers a function to be called when the program context is cancelled.
func (ctx *ProgCtx) Defer(f func()) {
	ctx.deferLock.Lock()
	defer ctx.deferLock.Unlock()

	if ctx.Err() != nil {
		logger.Panic(errors.Errorf("can not Defer after context is done"))
	}
	ctx.deferred = append(ctx.deferred, f)
}

// New creates a new ProgCtx from the parent context.
func New(parent context.Context) *ProgCtx {
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)

	return &ProgCtx{
		Context:  ctx,
		cancel:   cancel,
		routines: map[string]int{},
	}
}
