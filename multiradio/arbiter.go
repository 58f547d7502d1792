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


package multiradio

import (
	. "github.com/mrwifi/mrns/types"
)

// TokenArbiter grants transmit permission to all secondary links when the primary link gets an
// ack for its own transmission, and revokes it when any link overhears an ack between other
// nodes. With the policy disabled it does nothing and every link stays permitted.
type TokenArbiter struct {
	links         *RadioLinkSet
	policyEnabled bool
	state         TokenState
	onTransition  func(from, to TokenState)

	Grants   uint64
	Releases uint64
}

func newTokenArbiter(links *RadioLinkSet, policyEnabled bool, onTransition func(from, to TokenState)) *TokenArbiter {
	a := &TokenArbiter{
		links:         links,
		policyEnabled: policyEnabled,
		state:         TokenReleased,
		onTransition:  onTransition,
	}
	a.applyPolicy()
	return a
}

// applyPolicy sets the token released. Secondaries are revoked if the policy is enabled (they
// wait for the first primary ack), and permitted otherwise. The primary is always permitted.
func (a *TokenArbiter) applyPolicy() {
	a.state = TokenReleased
	a.links.Primary().SetTransmitPermitted(true)
	a.links.setSecondariesPermitted(!a.policyEnabled)
}

func (a *TokenArbiter) OnAckReceived(link LinkIndex) {
	if !a.policyEnabled || link != PrimaryLink {
		return
	}
	a.links.setSecondariesPermitted(true)
	a.setState(TokenHeld)
}

func (a *TokenArbiter) OnAckOverheard(link LinkIndex) {
	if !a.policyEnabled {
		return
	}
	a.links.setSecondariesPermitted(false)
	a.setState(TokenReleased)
}

func (a *TokenArbiter) setState(state TokenState) {
	if a.state == state {
		return
	}
	old := a.state
	a.state = state
	if state == TokenHeld {
		a.Grants++
	} else {
		a.Releases++
	}
	if a.onTransition != nil {
		a.onTransition(old, state)
	}
}

func (a *TokenArbiter) State() TokenState {
	return a.state
}

func (a *TokenArbiter) IsTokenHeld() bool {
	return a.state == TokenHeld
}

func (a *TokenArbiter) PolicyEnabled() bool {
	return a.policyEnabled
}

// SetPolicyEnabled switches the policy at runtime. Either way the token ends up released, as
// for a freshly constructed arbiter.
func (a *TokenArbiter) SetPolicyEnabled(enabled bool) {
	if a.policyEnabled == enabled {
		return
	}
	a.policyEnabled = enabled
	held := a.state == TokenHeld
	a.applyPolicy()
	if held {
		a.Releases++
		if a.onTransition != nil {
			a.onTransition(TokenHeld, TokenReleased)
		}
	}
}
