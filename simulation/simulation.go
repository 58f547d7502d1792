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
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/mrwifi/mrns/dispatcher"
	"github.com/mrwifi/mrns/logger"
	"github.com/mrwifi/mrns/prng"
	"github.com/mrwifi/mrns/progctx"
	"github.com/mrwifi/mrns/radiomodel"
	. "github.com/mrwifi/mrns/types"
)

const (
	ApNodeId           NodeId = 1
	firstStationNodeId NodeId = 2
	stationOffsetSec          = 0.001 // spacing of the main-phase start times of consecutive stations.
	stopMarginSec             = 0.001
	antennaHeight             = 1.0
)

// Simulation is one access point and its stations on a shared medium, with traffic from every
// station to the access point.
type Simulation struct {
	ctx      *progctx.ProgCtx
	cfg      *Config
	d        *dispatcher.Dispatcher
	medium   *radiomodel.Medium
	plan     *ChannelPlan
	ap       *Node
	stations []*Node
	nodes    map[NodeId]*Node
	sink     *Sink

	beginUs       uint64
	stopUs        uint64
	progressCount int
	progressOut   io.Writer
	results       *Results
}

// NewSimulation builds the whole scenario: nodes, devices, traffic and the measurement schedule.
// placement overrides the default node positions.
func NewSimulation(ctx *progctx.ProgCtx, cfg *Config, placement []YamlNodeConfig) (*Simulation, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	prng.Init(int64(cfg.Run))
	ResetMacAllocator()

	dcfg := dispatcher.DefaultConfig()
	dcfg.DumpEvents = cfg.Debug != InvalidLink
	dcfg.SimulationId = cfg.Run

	s := &Simulation{
		ctx:         ctx,
		cfg:         cfg,
		d:           dispatcher.NewDispatcher(ctx, dcfg),
		plan:        NewChannelPlan(cfg),
		nodes:       map[NodeId]*Node{},
		beginUs:     SecondsToUs(cfg.BeginTime),
		stopUs:      SecondsToUs(cfg.BeginTime + cfg.SimTime + stopMarginSec),
		progressOut: os.Stderr,
	}

	logger.SetClock(s.d.Now)

	params := radiomodel.DefaultMediumParams()
	params.FrameErrorRate = cfg.FrameErrorRate
	params.QueueLimit = cfg.QueueLimit
	params.RetryLimit = cfg.RetryLimit
	params.ChannelWidth = s.plan.Width
	params.Mcs = cfg.Mcs
	s.medium = radiomodel.NewMedium(s.d, params)

	if err := s.createNodes(placement); err != nil {
		s.dispose()
		return nil, err
	}
	s.d.Schedule(s.beginUs, s.beginMeasurement)
	if cfg.Progress {
		s.d.Schedule(s.beginUs, s.printProgress)
	}
	s.createTraffic()
	return s, nil
}

func (s *Simulation) createNodes(placement []YamlNodeConfig) error {
	cfg := s.cfg
	in := &Installer{
		Medium:              s.medium,
		Sched:               s.d,
		Plan:                s.plan,
		NumRadios:           cfg.NumRadios,
		Proposed:            cfg.Proposed,
		SelectorHonorsToken: cfg.SelectorHonorsToken,
	}

	positions := map[NodeId]YamlNodeConfig{}
	for _, p := range placement {
		positions[p.ID] = p
	}

	add := func(id NodeId, role NodeRole, x float64) (*Node, error) {
		rcfg := &radiomodel.RadioNodeConfig{X: x, Z: antennaHeight, RadioRange: cfg.RadioRange}
		if p, ok := positions[id]; ok {
			rcfg.X, rcfg.Y, rcfg.Z = p.Position[0], p.Position[1], p.Position[2]
			if p.RadioRange != nil {
				rcfg.RadioRange = *p.RadioRange
			}
			delete(positions, id)
		}
		rn, err := s.medium.AddNode(id, rcfg)
		if err != nil {
			return nil, err
		}
		dev, err := in.Install(id)
		if err != nil {
			return nil, err
		}
		if cfg.Debug != InvalidLink {
			if err = dev.SetDebug(cfg.Debug); err != nil {
				return nil, err
			}
		}
		n := &Node{Id: id, Role: role, Radio: rn, Device: dev}
		s.nodes[id] = n
		return n, nil
	}

	var err error
	if s.ap, err = add(ApNodeId, RoleAccessPoint, 0); err != nil {
		return err
	}
	for i := 0; i < cfg.Stations; i++ {
		sta, err := add(firstStationNodeId+i, RoleStation, cfg.Distance)
		if err != nil {
			return err
		}
		s.stations = append(s.stations, sta)
	}
	for id := range positions {
		logger.Warnf("placement of unknown node %d ignored", id)
	}
	return nil
}

func (s *Simulation) createTraffic() {
	cfg := s.cfg
	s.sink = NewSink(s.d, s.ap.Device, cfg.BeginTime, cfg.BeginTime+cfg.SimTime)

	interval := cfg.BaseInterval / float64(cfg.NumRadios)
	for i, sta := range s.stations {
		c := NewClient(sta.Id, s.d, sta.Device, s.ap.Device.GetAddress(), cfg.PayloadSize, interval, cfg.Jitter)
		if cfg.PreDuration > 0 {
			preStart := cfg.PreBeginTime + cfg.PreInterval*float64(i)
			c.AddWindow(preStart, preStart+cfg.PreDuration)
		}
		c.AddWindow(cfg.BeginTime+stationOffsetSec*float64(i), cfg.BeginTime+cfg.SimTime)
		c.Start()
		sta.Client = c
	}
}

func (s *Simulation) beginMeasurement() {
	logger.Debugf("measurement begins at %d us", s.d.Now())
	s.ResetStatistics()
}

// ResetStatistics clears the ack counters of every device and the medium counters.
func (s *Simulation) ResetStatistics() {
	for _, n := range s.nodes {
		n.Device.ResetStatistics()
	}
	s.medium.ResetStats()
}

func (s *Simulation) printProgress() {
	if s.d.Now() >= s.stopUs {
		return
	}
	s.progressCount++
	if s.progressCount%10 != 0 {
		_, _ = fmt.Fprint(s.progressOut, ".")
	} else {
		_, _ = fmt.Fprintf(s.progressOut, "%d", s.progressCount/10)
	}
	s.d.Schedule(SecondsToUs(s.cfg.CheckPeriod), s.printProgress)
}

// SetProgressOutput redirects the progress indicator.
func (s *Simulation) SetProgressOutput(w io.Writer) {
	s.progressOut = w
}

// Run runs the simulation to its end and returns the results of the measurement window.
func (s *Simulation) Run() (*Results, error) {
	if err := s.Go(s.stopUs); err != nil {
		return s.Results(), err
	}
	if s.cfg.Progress {
		_, _ = fmt.Fprintln(s.progressOut)
	}
	return s.Results(), nil
}

// Go advances the simulation by durationUs, not beyond its end.
func (s *Simulation) Go(durationUs uint64) error {
	if s.IsFinished() {
		return nil
	}
	until := s.d.Now() + durationUs
	if until > s.stopUs || until < s.d.Now() {
		until = s.stopUs
	}
	if !s.d.RunUntil(until) {
		return errors.Wrapf(s.ctx.Err(), "simulation interrupted at %d us", s.d.Now())
	}
	if s.IsFinished() && s.results == nil {
		s.results = s.collectResults("ok")
	}
	return nil
}

// Results returns the results of a finished run, or a snapshot of the current window.
func (s *Simulation) Results() *Results {
	if s.results != nil {
		return s.results
	}
	status := "running"
	if s.ctx.Err() != nil {
		status = "interrupted"
	}
	return s.collectResults(status)
}

func (s *Simulation) IsFinished() bool {
	return s.d.Now() >= s.stopUs
}

// SetPolicyEnabled switches the token policy of every device.
func (s *Simulation) SetPolicyEnabled(enabled bool) {
	for _, n := range s.nodes {
		n.Device.SetPolicyEnabled(enabled)
	}
	s.cfg.Proposed = enabled
}

func (s *Simulation) Dispatcher() *dispatcher.Dispatcher {
	return s.d
}

func (s *Simulation) Medium() *radiomodel.Medium {
	return s.medium
}

func (s *Simulation) Config() *Config {
	return s.cfg
}

func (s *Simulation) AccessPoint() *Node {
	return s.ap
}

func (s *Simulation) Stations() []*Node {
	return s.stations
}

func (s *Simulation) GetNode(id NodeId) *Node {
	return s.nodes[id]
}

// GetNodes returns the ids of all nodes, sorted.
func (s *Simulation) GetNodes() []NodeId {
	ids := make([]NodeId, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// BeginTimeUs and StopTimeUs bound the measurement window.
func (s *Simulation) BeginTimeUs() uint64 {
	return s.beginUs
}

func (s *Simulation) StopTimeUs() uint64 {
	return s.stopUs
}

// ExportScenario returns the configuration and the current node positions.
func (s *Simulation) ExportScenario() *YamlScenarioFile {
	sf := &YamlScenarioFile{Scenario: s.cfg}
	for _, id := range s.GetNodes() {
		rn := s.nodes[id].Radio
		rr := rn.RadioRange
		sf.Nodes = append(sf.Nodes, YamlNodeConfig{ID: id, Position: [3]float64{rn.X, rn.Y, rn.Z}, RadioRange: &rr})
	}
	return sf
}

func (s *Simulation) dispose() {
	for _, n := range s.nodes {
		n.Device.Dispose()
	}
}

// Stop disposes all devices. The simulation can not be advanced afterwards.
func (s *Simulation) Stop() {
	s.dispose()
	s.d.Stop()
	logger.SetClock(nil)
}
