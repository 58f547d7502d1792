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
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testScenarioFile = `
scenario:
    nodes: 8
    radios: 4
    mcs: 5
    proposed: false
    jitter: 0.1
nodes:
    - id: 1
      pos: [0, 0, 2]
    - id: 3
      pos: [5, 5, 1]
      radio-range: 20
`

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Stations)
	assert.Equal(t, 2, cfg.NumRadios)
	assert.Equal(t, 80, cfg.Width())
	assert.Equal(t, 1472, cfg.PayloadSize)
	assert.Equal(t, 1, cfg.ProposedFlag())
	assert.Equal(t, -1, cfg.Debug)
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stations = 0
	cfg.NumRadios = 0
	cfg.Mcs = 12

	err := cfg.Validate()
	require.NotNil(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Equal(t, 3, len(merr.Errors))
}

func TestConfig_ValidateRanges(t *testing.T) {
	for _, mod := range []func(cfg *Config){
		func(cfg *Config) { cfg.ChannelWidth = 30 },
		func(cfg *Config) { cfg.Debug = 2 },
		func(cfg *Config) { cfg.Debug = -2 },
		func(cfg *Config) { cfg.PayloadSize = 3000 },
		func(cfg *Config) { cfg.SimTime = 0 },
		func(cfg *Config) { cfg.CheckPeriod = -1 },
		func(cfg *Config) { cfg.BeginTime = 110 },
		func(cfg *Config) { cfg.Jitter = 1 },
		func(cfg *Config) { cfg.FrameErrorRate = 1.5 },
		func(cfg *Config) { cfg.QueueLimit = 0 },
		func(cfg *Config) { cfg.RetryLimit = -1 },
	} {
		cfg := DefaultConfig()
		mod(cfg)
		assert.NotNil(t, cfg.Validate(), "%+v", cfg)
	}

	cfg := DefaultConfig()
	cfg.Debug = 1
	cfg.ChannelWidth = 20
	assert.Nil(t, cfg.Validate())
	assert.Equal(t, 20, cfg.Width())
}

func TestParseScenario(t *testing.T) {
	sf, err := ParseScenario([]byte(testScenarioFile))
	require.Nil(t, err)
	cfg := sf.Scenario
	assert.Equal(t, 8, cfg.Stations)
	assert.Equal(t, 4, cfg.NumRadios)
	assert.Equal(t, 5, cfg.Mcs)
	assert.False(t, cfg.Proposed)
	assert.Equal(t, 0.1, cfg.Jitter)
	// not in the file, so defaults
	assert.Equal(t, DefaultBeginTime, cfg.BeginTime)
	assert.Equal(t, DefaultPayloadSize, cfg.PayloadSize)

	assert.Equal(t, 2, len(sf.Nodes))
	assert.Equal(t, [3]float64{0, 0, 2}, sf.Nodes[0].Position)
	assert.Nil(t, sf.Nodes[0].RadioRange)
	assert.Equal(t, 20.0, *sf.Nodes[1].RadioRange)
}

func TestParseScenario_Errors(t *testing.T) {
	_, err := ParseScenario([]byte("scenario: [1, 2"))
	assert.NotNil(t, err)

	_, err = ParseScenario([]byte("nodes:\n  - id: 2\n  - id: 2\n"))
	assert.NotNil(t, err)

	sf, err := ParseScenario([]byte("scenario:\n"))
	assert.Nil(t, err)
	assert.Equal(t, DefaultConfig(), sf.Scenario)
}

func TestScenarioFile_SaveLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "scenario.yaml")
	sf, err := ParseScenario([]byte(testScenarioFile))
	require.Nil(t, err)
	require.Nil(t, SaveScenarioFile(fn, sf))

	loaded, err := LoadScenarioFile(fn)
	require.Nil(t, err)
	assert.Equal(t, sf, loaded)

	_, err = LoadScenarioFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)
}
