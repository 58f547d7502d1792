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
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/mrwifi/mrns/multiradio"
	"github.com/mrwifi/mrns/radiomodel"
	. "github.com/mrwifi/mrns/types"
)

const (
	DefaultStations     = 4
	DefaultRadios       = 2
	DefaultMcs          = 7
	DefaultPayloadSize  = 1472
	DefaultBaseInterval = 0.00002 // seconds between packets of one station with a single radio
	DefaultSimTime      = 1.0
	DefaultBeginTime    = 1000.0
	DefaultPreBeginTime = 100.0
	DefaultPreInterval  = 10.0
	DefaultPreDuration  = 0.01
	DefaultCheckPeriod  = 0.01
	DefaultDistance     = 1.0
	DefaultRadioRange   = 100.0
	DefaultOutputDir    = "."
)

// Config describes one measurement run: one access point and Stations stations, each
// carrying NumRadios radios. Times are in seconds.
type Config struct {
	ConfigIndex         int     `yaml:"config"`
	Stations            int     `yaml:"nodes"`
	NumRadios           int     `yaml:"radios"`
	ChannelWidth        int     `yaml:"width,omitempty"` // 0 selects the width from NumRadios.
	Mcs                 int     `yaml:"mcs"`
	Proposed            bool    `yaml:"proposed"`
	SelectorHonorsToken bool    `yaml:"selector-honors-token,omitempty"`
	Run                 int     `yaml:"run"`
	Debug               int     `yaml:"debug"` // link index to trace, or -1.
	Distance            float64 `yaml:"distance"`
	RadioRange          float64 `yaml:"radio-range"`
	PayloadSize         int     `yaml:"payload"`
	BaseInterval        float64 `yaml:"base-interval"`
	Jitter              float64 `yaml:"jitter,omitempty"` // fraction of the interval, drawn uniformly per packet.
	SimTime             float64 `yaml:"time"`
	BeginTime           float64 `yaml:"begin"`
	PreBeginTime        float64 `yaml:"pre-begin"`
	PreInterval         float64 `yaml:"pre-interval"`
	PreDuration         float64 `yaml:"pre-duration"`
	CheckPeriod         float64 `yaml:"check-period"`
	FrameErrorRate      float64 `yaml:"frame-error-rate,omitempty"`
	QueueLimit          int     `yaml:"queue-limit"`
	RetryLimit          int     `yaml:"retry-limit"`
	Progress            bool    `yaml:"progress"`
	OutputDir           string  `yaml:"output-dir"`
}

func DefaultConfig() *Config {
	params := radiomodel.DefaultMediumParams()
	return &Config{
		ConfigIndex:  1,
		Stations:     DefaultStations,
		NumRadios:    DefaultRadios,
		Mcs:          DefaultMcs,
		Proposed:     true,
		Run:          1,
		Debug:        InvalidLink,
		Distance:     DefaultDistance,
		RadioRange:   DefaultRadioRange,
		PayloadSize:  DefaultPayloadSize,
		BaseInterval: DefaultBaseInterval,
		SimTime:      DefaultSimTime,
		BeginTime:    DefaultBeginTime,
		PreBeginTime: DefaultPreBeginTime,
		PreInterval:  DefaultPreInterval,
		PreDuration:  DefaultPreDuration,
		CheckPeriod:  DefaultCheckPeriod,
		QueueLimit:   params.QueueLimit,
		RetryLimit:   params.RetryLimit,
		Progress:     true,
		OutputDir:    DefaultOutputDir,
	}
}

// Validate reports every problem of the configuration at once.
func (cfg *Config) Validate() error {
	var result *multierror.Error
	addf := func(format string, args ...interface{}) {
		result = multierror.Append(result, errors.Errorf(format, args...))
	}

	if cfg.Stations < 1 {
		addf("nodes must be at least 1, got %d", cfg.Stations)
	}
	if cfg.NumRadios < 1 {
		addf("radios must be at least 1, got %d", cfg.NumRadios)
	}
	if cfg.ChannelWidth != 0 && !radiomodel.IsValidWidth(cfg.ChannelWidth) {
		addf("unknown channel width %d MHz", cfg.ChannelWidth)
	}
	if cfg.Mcs < 0 || cfg.Mcs > radiomodel.MaxMcs {
		addf("mcs must be in 0..%d, got %d", radiomodel.MaxMcs, cfg.Mcs)
	}
	if cfg.Debug < InvalidLink || (cfg.NumRadios > 0 && cfg.Debug >= cfg.NumRadios) {
		addf("debug link %d does not exist with %d radios", cfg.Debug, cfg.NumRadios)
	}
	if cfg.PayloadSize < 1 || cfg.PayloadSize > multiradio.MaxMtu {
		addf("payload must be in 1..%d bytes, got %d", multiradio.MaxMtu, cfg.PayloadSize)
	}
	for _, d := range []struct {
		name  string
		value float64
	}{
		{"time", cfg.SimTime},
		{"base-interval", cfg.BaseInterval},
		{"check-period", cfg.CheckPeriod},
		{"radio-range", cfg.RadioRange},
	} {
		if d.value <= 0 {
			addf("%s must be positive, got %v", d.name, d.value)
		}
	}
	if cfg.PreDuration < 0 || cfg.PreInterval < 0 || cfg.PreBeginTime < 0 || cfg.Distance < 0 {
		addf("pre-phase timing and distance must not be negative")
	}
	if cfg.BeginTime < cfg.PreBeginTime+cfg.PreInterval*float64(cfg.Stations) {
		addf("begin time %v overlaps the pre phase", cfg.BeginTime)
	}
	if cfg.Jitter < 0 || cfg.Jitter >= 1 {
		addf("jitter must be in [0,1), got %v", cfg.Jitter)
	}
	if cfg.FrameErrorRate < 0 || cfg.FrameErrorRate > 1 {
		addf("frame-error-rate must be in [0,1], got %v", cfg.FrameErrorRate)
	}
	if cfg.QueueLimit < 1 {
		addf("queue-limit must be at least 1, got %d", cfg.QueueLimit)
	}
	if cfg.RetryLimit < 0 {
		addf("retry-limit must not be negative, got %d", cfg.RetryLimit)
	}
	return result.ErrorOrNil()
}

// Width returns the configured channel width or the one the channel plan picks.
func (cfg *Config) Width() int {
	if cfg.ChannelWidth != 0 {
		return cfg.ChannelWidth
	}
	return PlanWidth(cfg.NumRadios)
}

// ProposedFlag renders Proposed the way result file names and lines carry it.
func (cfg *Config) ProposedFlag() int {
	if cfg.Proposed {
		return 1
	}
	return 0
}

// YamlNodeConfig places one node of a scenario file.
type YamlNodeConfig struct {
	ID         NodeId     `yaml:"id"`
	Position   [3]float64 `yaml:"pos"`
	RadioRange *float64   `yaml:"radio-range,omitempty"`
}

// YamlScenarioFile is the layout of a scenario file: run parameters plus optional node placement.
type YamlScenarioFile struct {
	Scenario *Config         `yaml:"scenario"`
	Nodes    []YamlNodeConfig `yaml:"nodes,omitempty"`
}

// ParseScenario decodes a scenario file on top of the default configuration.
func ParseScenario(data []byte) (*YamlScenarioFile, error) {
	sf := &YamlScenarioFile{Scenario: DefaultConfig()}
	if err := yaml.Unmarshal(data, sf); err != nil {
		return nil, errors.Wrap(err, "parse scenario")
	}
	if sf.Scenario == nil {
		sf.Scenario = DefaultConfig()
	}

	var ids []NodeId
	for _, n := range sf.Nodes {
		if slices.Contains(ids, n.ID) {
			return nil, errors.Errorf("node %d placed twice", n.ID)
		}
		ids = append(ids, n.ID)
	}
	return sf, nil
}

// LoadScenarioFile reads and decodes a scenario file.
func LoadScenarioFile(path string) (*YamlScenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scenario %s", path)
	}
	return ParseScenario(data)
}

// SaveScenarioFile writes the configuration and the node placement to path.
func SaveScenarioFile(path string, sf *YamlScenarioFile) error {
	data, err := yaml.Marshal(sf)
	if err != nil {
		return errors.Wrap(err, "encode scenario")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "write scenario %s", path)
}
