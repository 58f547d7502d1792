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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrwifi/mrns/progctx"
	. "github.com/mrwifi/mrns/types"
)

// smallConfig keeps the pre phase and the measurement window short.
func smallConfig() *Config {
	cfg := DefaultConfig()
	cfg.Stations = 2
	cfg.NumRadios = 2
	cfg.BaseInterval = 0.0001
	cfg.PreBeginTime = 0.01
	cfg.PreInterval = 0.001
	cfg.PreDuration = 0.0005
	cfg.BeginTime = 0.02
	cfg.SimTime = 0.01
	cfg.CheckPeriod = 0.001
	cfg.Progress = false
	return cfg
}

func newTestSimulation(t *testing.T, cfg *Config, placement []YamlNodeConfig) *Simulation {
	sim, err := NewSimulation(progctx.New(context.Background()), cfg, placement)
	require.Nil(t, err)
	return sim
}

func TestNewSimulation_Invalid(t *testing.T) {
	cfg := smallConfig()
	cfg.NumRadios = 0
	_, err := NewSimulation(progctx.New(context.Background()), cfg, nil)
	assert.NotNil(t, err)
}

func TestNewSimulation_Nodes(t *testing.T) {
	sim := newTestSimulation(t, smallConfig(), nil)
	assert.Equal(t, []NodeId{1, 2, 3}, sim.GetNodes())
	assert.Equal(t, RoleAccessPoint, sim.AccessPoint().Role)
	assert.Equal(t, "00:00:00:00:00:01", sim.AccessPoint().Device.GetAddress().String())
	assert.Equal(t, 2, len(sim.Stations()))
	assert.Nil(t, sim.AccessPoint().Client)

	for _, sta := range sim.Stations() {
		assert.Equal(t, RoleStation, sta.Role)
		assert.Equal(t, 2, sta.Device.NumLinks())
		assert.True(t, sta.Device.PolicyEnabled())
		l1, err := sta.Device.Link(1)
		require.Nil(t, err)
		assert.Equal(t, ChannelId(58), l1.GetChannel())
		assert.Equal(t, sta.Device.GetAddress(), l1.GetAddress())
		assert.Equal(t, 1.0, sta.Radio.X)
		assert.Equal(t, antennaHeight, sta.Radio.Z)
	}
	assert.Equal(t, "node<2>/sta", sim.GetNode(2).String())
	assert.Equal(t, uint64(20000), sim.BeginTimeUs())
	assert.Equal(t, uint64(31000), sim.StopTimeUs())
}

func TestSimulation_Run(t *testing.T) {
	sim := newTestSimulation(t, smallConfig(), nil)
	r, err := sim.Run()
	require.Nil(t, err)

	assert.True(t, sim.IsFinished())
	assert.Equal(t, sim.StopTimeUs(), sim.Dispatcher().Now())
	assert.Equal(t, "ok", r.Status)
	assert.True(t, r.ReceivedPackets > 0)
	assert.True(t, r.ThroughputMbps > 0)
	assert.Equal(t, 2, len(r.RadioTotals))
	assert.Equal(t, 2, len(r.StationResults))
	assert.True(t, r.Total.Received > 0)
	assert.True(t, r.MeanDelayUs > 0)
	assert.Equal(t, r.ReceivedPackets, r.StationResults[0].Delivered+r.StationResults[1].Delivered)
	assert.InDelta(t, r.ThroughputMbps, 2*r.StationMeanMbps, 1e-6)
	assert.Equal(t, 2, len(r.Channels))
	for _, sta := range r.StationResults {
		assert.True(t, sta.TokenGrants > 0)
		assert.True(t, sta.Sent >= sta.Delivered)
	}

	// a finished run can not be advanced
	assert.Nil(t, sim.Go(1000))
	assert.Equal(t, sim.StopTimeUs(), sim.Dispatcher().Now())
	assert.Same(t, r, sim.Results())
}

func TestSimulation_ResetAtBegin(t *testing.T) {
	sim := newTestSimulation(t, smallConfig(), nil)
	require.Nil(t, sim.Go(sim.BeginTimeUs()-1))
	for _, sta := range sim.Stations() {
		assert.True(t, sta.Device.TotalAckCounters().Received > 0)
	}

	require.Nil(t, sim.Go(1))
	for _, sta := range sim.Stations() {
		assert.Equal(t, uint64(0), sta.Device.TotalAckCounters().Received)
	}
	assert.Equal(t, "running", sim.Results().Status)
}

func TestSimulation_PolicyOff(t *testing.T) {
	cfg := smallConfig()
	cfg.Proposed = false
	sim := newTestSimulation(t, cfg, nil)
	r, err := sim.Run()
	require.Nil(t, err)
	for _, sta := range r.StationResults {
		assert.Equal(t, uint64(0), sta.TokenGrants)
		assert.True(t, sta.Radios[1].Received > 0)
	}
	assert.Equal(t, " 1 2 2 80 7 0 1", ResultLine(r)[:15])
}

func TestSimulation_Placement(t *testing.T) {
	far := []YamlNodeConfig{{ID: 3, Position: [3]float64{500, 0, 1}}, {ID: 9}}
	sim := newTestSimulation(t, smallConfig(), far)
	r, err := sim.Run()
	require.Nil(t, err)

	assert.True(t, r.StationResults[0].Delivered > 0)
	assert.Equal(t, uint64(0), r.StationResults[1].Delivered)
	assert.True(t, r.StationResults[1].Radios[0].Missed > 0)
	assert.Equal(t, uint64(0), r.StationResults[1].Radios[0].Received)

	sf := sim.ExportScenario()
	assert.Equal(t, 3, len(sf.Nodes))
	assert.Equal(t, [3]float64{500, 0, 1}, sf.Nodes[2].Position)
}

func TestSimulation_SetPolicyEnabled(t *testing.T) {
	sim := newTestSimulation(t, smallConfig(), nil)
	sim.SetPolicyEnabled(false)
	for _, n := range sim.Stations() {
		assert.False(t, n.Device.PolicyEnabled())
	}
	assert.False(t, sim.Config().Proposed)
}

func TestSimulation_Progress(t *testing.T) {
	cfg := smallConfig()
	cfg.Progress = true
	sim := newTestSimulation(t, cfg, nil)
	var out bytes.Buffer
	sim.SetProgressOutput(&out)
	_, err := sim.Run()
	require.Nil(t, err)
	assert.Equal(t, ".........1.\n", out.String())
}

func TestSimulation_Interrupted(t *testing.T) {
	ctx := progctx.New(context.Background())
	sim, err := NewSimulation(ctx, smallConfig(), nil)
	require.Nil(t, err)
	sim.Dispatcher().Schedule(sim.BeginTimeUs()+100, func() { ctx.Cancel("test") })
	r, err := sim.Run()
	assert.NotNil(t, err)
	assert.Equal(t, "interrupted", r.Status)
	assert.False(t, sim.IsFinished())
}

func TestSimulation_Debug(t *testing.T) {
	cfg := smallConfig()
	cfg.Debug = 1
	sim := newTestSimulation(t, cfg, nil)
	for _, id := range sim.GetNodes() {
		assert.Equal(t, 1, sim.GetNode(id).Device.GetDebug())
	}
}

func TestSaveResults(t *testing.T) {
	cfg := smallConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	sim := newTestSimulation(t, cfg, nil)
	r, err := sim.Run()
	require.Nil(t, err)
	LogResults(r)
	require.Nil(t, SaveResults(cfg.OutputDir, cfg, r))

	assert.Equal(t, "tput_c001_n002_r02_w080_m7_p1_s1.txt", ResultFileName(cfg))
	line, err := os.ReadFile(filepath.Join(cfg.OutputDir, ResultFileName(cfg)))
	require.Nil(t, err)
	fields := strings.Fields(string(line))
	assert.Equal(t, []string{"1", "2", "2", "80", "7", "1", "1"}, fields[:7])
	assert.Equal(t, 10, len(fields))

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "tput_c001_n002_r02_w080_m7_p1_s1_kpi.json"))
	require.Nil(t, err)
	var loaded Results
	require.Nil(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, r.ReceivedPackets, loaded.ReceivedPackets)
	assert.Equal(t, r.RadioTotals, loaded.RadioTotals)
	assert.NotEmpty(t, loaded.FileTime)
}

func TestResultLine(t *testing.T) {
	r := &Results{ConfigIndex: 3, Stations: 10, Radios: 2, Width: 80, Mcs: 9, Proposed: true, Run: 4,
		ThroughputMbps: 512.25}
	r.RadioTotals = append(r.RadioTotals, r.Total, r.Total)
	r.RadioTotals[0].Missed = 12
	r.RadioTotals[1].Missed = 345
	assert.Equal(t, " 3 10 2 80 9 1 4   512.25    12   345\n", ResultLine(r))
}
