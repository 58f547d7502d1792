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
	"github.com/pkg/errors"

	. "github.com/mrwifi/mrns/types"
)

// RadioLinkSet is the fixed, ordered set of links owned by one device. Link 0 is the primary.
type RadioLinkSet struct {
	links []RadioLink
}

// newRadioLinkSet creates n links through the factory, gives each the shared address and
// attaches it to the owner. On any failure the links created so far are disposed and no
// set is returned.
func newRadioLinkSet(owner NodeId, n int, addr MacAddr, poster EventPoster, factory LinkFactory) (*RadioLinkSet, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrNoLinks, "node %d: %d links requested", owner, n)
	}
	if factory == nil {
		return nil, errors.Errorf("node %d: no link factory", owner)
	}

	ls := &RadioLinkSet{
		links: make([]RadioLink, 0, n),
	}
	for i := 0; i < n; i++ {
		l, err := factory(i)
		if err == nil && l == nil {
			err = ErrNilLink
		}
		if err == nil {
			l.SetAddress(addr)
			if err = l.Attach(owner, i, poster); err != nil {
				l.Dispose()
			}
		}
		if err != nil {
			ls.dispose()
			return nil, errors.Wrapf(err, "node %d: creating link %d", owner, i)
		}
		ls.links = append(ls.links, l)
	}
	return ls, nil
}

func (ls *RadioLinkSet) Len() int {
	return len(ls.links)
}

// Link returns the link at index i.
func (ls *RadioLinkSet) Link(i LinkIndex) (RadioLink, error) {
	if !ls.isValid(i) {
		return nil, errors.Wrapf(ErrLinkIndexOutOfRange, "link %d of %d", i, len(ls.links))
	}
	return ls.links[i], nil
}

func (ls *RadioLinkSet) Primary() RadioLink {
	return ls.links[PrimaryLink]
}

func (ls *RadioLinkSet) isValid(i LinkIndex) bool {
	return i >= 0 && i < len(ls.links)
}

// QueueDepths returns the current queue depth of every link, by index.
func (ls *RadioLinkSet) QueueDepths() []int {
	depths := make([]int, len(ls.links))
	for i, l := range ls.links {
		depths[i] = l.QueueDepth()
	}
	return depths
}

// Permitted returns the transmit permission of every link, by index.
func (ls *RadioLinkSet) Permitted() []bool {
	permitted := make([]bool, len(ls.links))
	for i, l := range ls.links {
		permitted[i] = l.IsTransmitPermitted()
	}
	return permitted
}

func (ls *RadioLinkSet) setAddress(addr MacAddr) {
	for _, l := range ls.links {
		l.SetAddress(addr)
	}
}

func (ls *RadioLinkSet) setSecondariesPermitted(permitted bool) {
	for _, l := range ls.links[1:] {
		l.SetTransmitPermitted(permitted)
	}
}

func (ls *RadioLinkSet) dispose() {
	for _, l := range ls.links {
		l.Dispose()
	}
	ls.links = nil
}
