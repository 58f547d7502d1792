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


package simulation

import (
	"github.com/pkg/errors"

	"github.com/mrwifi/mrns/multiradio"
	"github.com/mrwifi/mrns/radiomodel"
	. "github.com/mrwifi/mrns/types"
)

// Installer builds multi-radio devices on medium nodes, all with the same radio count and channel plan.
type Installer struct {
	Medium              *radiomodel.Medium
	Sched               multiradio.Scheduler
	Plan                *ChannelPlan
	NumRadios           int
	Proposed            bool
	SelectorHonorsToken bool
}

// Install creates the device of an existing medium node. All radios of the device share one newly
// allocated address.
func (in *Installer) Install(id NodeId) (*multiradio.Device, error) {
	if in.NumRadios < 1 {
		return nil, errors.Wrapf(multiradio.ErrNoLinks, "install node %d: %d radios", id, in.NumRadios)
	}
	if in.Medium.GetNode(id) == nil {
		return nil, errors.Errorf("install node %d: no such medium node", id)
	}

	cfg := &multiradio.Config{
		NumLinks:            in.NumRadios,
		PolicyEnabled:       in.Proposed,
		SelectorHonorsToken: in.SelectorHonorsToken,
		Address:             AllocateMacAddr(),
	}
	dev, err := multiradio.New(id, in.Sched, cfg, in.Medium.LinkFactory(id, in.Plan.Link))
	if err != nil {
		return nil, errors.Wrapf(err, "install node %d", id)
	}
	dev.SetIfIndex(0)
	return dev, nil
}

// Node is one simulated host: its position on the medium and its multi-radio device.
type Node struct {
	Id     NodeId
	Role   NodeRole
	Radio  *radiomodel.RadioNode
	Device *multiradio.Device
	Client *Client // nil on the access point.
}

func (n *Node) String() string {
	return GetNodeName(n.Id) + "/" + n.Role.String()
}
