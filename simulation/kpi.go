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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/mrwifi/mrns/logger"
	"github.com/mrwifi/mrns/multiradio"
	"github.com/mrwifi/mrns/radiomodel"
	. "github.com/mrwifi/mrns/types"
)

type StationResult struct {
	Node           NodeId                   `json:"node"`
	Address        string                   `json:"address"`
	Radios         []multiradio.AckCounters `json:"radios"`
	Sent           uint64                   `json:"sent"`
	Delivered      uint64                   `json:"delivered"`
	ThroughputMbps float64                  `json:"throughput_mbps"`
	TokenGrants    uint64                   `json:"token_grants"`
	TokenReleases  uint64                   `json:"token_releases"`
}

type ChannelResult struct {
	BusyTimeUs  uint64  `json:"busy_time_us"`
	Utilization float64 `json:"utilization"`
}

type TimeResult struct {
	StartTimeUs uint64  `json:"start_time_us"`
	EndTimeUs   uint64  `json:"end_time_us"`
	PeriodSec   float64 `json:"period_sec"`
}

// Results is the outcome of one measurement run.
type Results struct {
	Status   string `json:"status"`
	FileTime string `json:"created"`

	ConfigIndex int  `json:"config"`
	Stations    int  `json:"nodes"`
	Radios      int  `json:"radios"`
	Width       int  `json:"width"`
	Mcs         int  `json:"mcs"`
	Proposed    bool `json:"proposed"`
	Run         int  `json:"run"`

	Time              TimeResult                  `json:"time"`
	ThroughputMbps    float64                     `json:"throughput_mbps"`
	StationMeanMbps   float64                     `json:"station_mean_mbps"`
	StationStdDevMbps float64                     `json:"station_stddev_mbps"`
	ReceivedPackets   uint64                      `json:"received_packets"`
	MeanDelayUs       float64                     `json:"mean_delay_us"`
	ApReceivedPerLink []uint64                    `json:"ap_received_per_radio"`
	RadioTotals       []multiradio.AckCounters    `json:"radio_totals"`
	Total             multiradio.AckCounters      `json:"total"`
	StationResults    []StationResult             `json:"stations"`
	Channels          map[ChannelId]ChannelResult `json:"channels"`
	Phy               radiomodel.PhyStats         `json:"phy"`
}

// collectResults gathers the results of the measurement window [startUs, now).
func (s *Simulation) collectResults(status string) *Results {
	cfg := s.cfg
	now := s.d.Now()
	r := &Results{
		Status:      status,
		ConfigIndex: cfg.ConfigIndex,
		Stations:    cfg.Stations,
		Radios:      cfg.NumRadios,
		Width:       cfg.Width(),
		Mcs:         cfg.Mcs,
		Proposed:    cfg.Proposed,
		Run:         cfg.Run,
		Time: TimeResult{
			StartTimeUs: s.beginUs,
			EndTimeUs:   now,
			PeriodSec:   cfg.SimTime,
		},
		RadioTotals: make([]multiradio.AckCounters, cfg.NumRadios),
		Channels:    map[ChannelId]ChannelResult{},
		Phy:         s.medium.GetStats(),
	}

	r.ReceivedPackets = s.sink.Received
	r.ThroughputMbps = s.sink.ThroughputMbps(cfg.PayloadSize, cfg.SimTime)
	r.MeanDelayUs = s.sink.MeanDelayUs()
	r.ApReceivedPerLink = append([]uint64(nil), s.sink.PerLink...)

	tputs := make([]float64, 0, len(s.stations))
	for _, sta := range s.stations {
		dev := sta.Device
		grants, releases := dev.TokenTransitions()
		delivered := s.sink.PerSource[dev.GetAddress()]
		sr := StationResult{
			Node:           sta.Id,
			Address:        dev.GetAddress().String(),
			Radios:         dev.AllAckCounters(),
			Sent:           sta.Client.Sent,
			Delivered:      delivered,
			ThroughputMbps: float64(delivered) * float64(cfg.PayloadSize) * 8 / (cfg.SimTime * 1e6),
			TokenGrants:    grants,
			TokenReleases:  releases,
		}
		for j, c := range sr.Radios {
			r.RadioTotals[j].Received += c.Received
			r.RadioTotals[j].Missed += c.Missed
			r.RadioTotals[j].Overheard += c.Overheard
		}
		r.StationResults = append(r.StationResults, sr)
		tputs = append(tputs, sr.ThroughputMbps)
	}
	for _, c := range r.RadioTotals {
		r.Total.Received += c.Received
		r.Total.Missed += c.Missed
		r.Total.Overheard += c.Overheard
	}
	if len(tputs) > 0 {
		r.StationMeanMbps, r.StationStdDevMbps = stat.MeanStdDev(tputs, nil)
		if len(tputs) == 1 {
			r.StationStdDevMbps = 0
		}
	}

	elapsed := now - s.beginUs
	if now < s.beginUs {
		elapsed = 0
	}
	for _, ch := range s.plan.Channels(cfg.NumRadios) {
		r.Channels[ch] = ChannelResult{
			BusyTimeUs:  s.medium.ChannelBusyTimeUs(ch),
			Utilization: s.medium.ChannelUtilization(ch, elapsed),
		}
	}
	return r
}

// ResultFileName returns the name of the one-line result file of a run.
func ResultFileName(cfg *Config) string {
	return fmt.Sprintf("tput_c%03d_n%03d_r%02d_w%03d_m%01d_p%01d_s%d.txt",
		cfg.ConfigIndex, cfg.Stations, cfg.NumRadios, cfg.Width(), cfg.Mcs, cfg.ProposedFlag(), cfg.Run)
}

// ResultLine formats the results as one line: config, nodes, radios, width, mcs, proposed, run,
// throughput and the missed acks of each radio over all stations.
func ResultLine(r *Results) string {
	var sb strings.Builder
	proposed := 0
	if r.Proposed {
		proposed = 1
	}
	for _, v := range []int{r.ConfigIndex, r.Stations, r.Radios, r.Width, r.Mcs, proposed, r.Run} {
		_, _ = fmt.Fprintf(&sb, " %d", v)
	}
	_, _ = fmt.Fprintf(&sb, " %8.2f", r.ThroughputMbps)
	for _, c := range r.RadioTotals {
		_, _ = fmt.Fprintf(&sb, " %5d", c.Missed)
	}
	sb.WriteString("\n")
	return sb.String()
}

// SaveResults writes the result line file and the KPI JSON file into dir.
func SaveResults(dir string, cfg *Config, r *Results) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create output dir %s", dir)
	}
	fn := filepath.Join(dir, ResultFileName(cfg))
	if err := os.WriteFile(fn, []byte(ResultLine(r)), 0644); err != nil {
		return errors.Wrapf(err, "write result file %s", fn)
	}
	return SaveKpiFile(filepath.Join(dir, strings.TrimSuffix(ResultFileName(cfg), ".txt")+"_kpi.json"), r)
}

// SaveKpiFile writes r as indented JSON to fn.
func SaveKpiFile(fn string, r *Results) error {
	r.FileTime = time.Now().Format(time.RFC3339)
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return errors.Wrap(err, "marshal KPI JSON data")
	}
	if err = os.WriteFile(fn, data, 0644); err != nil {
		return errors.Wrapf(err, "write KPI JSON file %s", fn)
	}
	logger.Debugf("KPI file written: %s", fn)
	return nil
}

// LogResults prints per-station and per-radio ack counters and the throughput.
func LogResults(r *Results) {
	for i, sta := range r.StationResults {
		for j, c := range sta.Radios {
			logger.Infof("[%d:%d] number of acks received: %d", i, j, c.Received)
			logger.Infof("[%d:%d] number of acks missed: %d", i, j, c.Missed)
		}
	}
	for j, c := range r.RadioTotals {
		logger.Infof("[ %d ] total number of acks received: %d", j, c.Received)
		logger.Infof("[ %d ] total number of acks missed  : %d", j, c.Missed)
	}
	logger.Infof("total number of acks received: %d", r.Total.Received)
	logger.Infof("total number of acks missed: %d", r.Total.Missed)
	logger.Infof("throughput: %.2f Mbps", r.ThroughputMbps)
}
