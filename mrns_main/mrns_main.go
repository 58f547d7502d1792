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


package mrns_main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/pkg/errors"

	"github.com/mrwifi/mrns/cli"
	"github.com/mrwifi/mrns/logger"
	"github.com/mrwifi/mrns/progctx"
	"github.com/mrwifi/mrns/simulation"
)

type MainArgs struct {
	Scenario string
	LogLevel string
	Cli      bool
	NoSave   bool
}

// newFlagSet binds the command line flags to args and cfg. The values already in cfg are the defaults.
func newFlagSet(args *MainArgs, cfg *simulation.Config, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("mrns", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&args.Scenario, "scenario", args.Scenario, "load scenario settings and node positions from a YAML file; other flags override it")
	fs.StringVar(&args.LogLevel, "log", args.LogLevel, "set logging level: trace, debug, info, warn, error, off.")
	fs.BoolVar(&args.Cli, "cli", args.Cli, "run an interactive console instead of running to the end")
	fs.BoolVar(&args.NoSave, "no-save", args.NoSave, "do not write the result and KPI files")

	fs.IntVar(&cfg.ConfigIndex, "config", cfg.ConfigIndex, "configuration index, used in the result file name")
	fs.IntVar(&cfg.Stations, "nodes", cfg.Stations, "number of stations")
	fs.IntVar(&cfg.NumRadios, "radios", cfg.NumRadios, "number of radios per device")
	fs.IntVar(&cfg.ChannelWidth, "width", cfg.ChannelWidth, "channel width in MHz (20, 40, 80 or 160); 0 derives it from -radios")
	fs.IntVar(&cfg.Mcs, "mcs", cfg.Mcs, "VHT MCS index of all links")
	fs.BoolVar(&cfg.Proposed, "proposed", cfg.Proposed, "enable the token policy on secondary links")
	fs.BoolVar(&cfg.SelectorHonorsToken, "selector-honors-token", cfg.SelectorHonorsToken, "skip secondary links that may not transmit when selecting a link")
	fs.IntVar(&cfg.Run, "run", cfg.Run, "run number, seeds the random generators")
	fs.IntVar(&cfg.Debug, "debug", cfg.Debug, "link index to trace, or -1")
	fs.Float64Var(&cfg.Distance, "distance", cfg.Distance, "distance in meters between the access point and the stations")
	fs.Float64Var(&cfg.RadioRange, "radio-range", cfg.RadioRange, "radio range in meters")
	fs.IntVar(&cfg.PayloadSize, "payload", cfg.PayloadSize, "UDP payload size in bytes")
	fs.Float64Var(&cfg.BaseInterval, "interval", cfg.BaseInterval, "packet interval in seconds of a single-radio station")
	fs.Float64Var(&cfg.Jitter, "jitter", cfg.Jitter, "packet interval jitter as a fraction of the interval")
	fs.Float64Var(&cfg.SimTime, "time", cfg.SimTime, "measurement duration in seconds")
	fs.Float64Var(&cfg.BeginTime, "begin", cfg.BeginTime, "start of the measurement window in seconds")
	fs.Float64Var(&cfg.PreBeginTime, "pre-begin", cfg.PreBeginTime, "start of the warm-up traffic in seconds")
	fs.Float64Var(&cfg.PreInterval, "pre-interval", cfg.PreInterval, "spacing of the warm-up bursts in seconds")
	fs.Float64Var(&cfg.PreDuration, "pre-duration", cfg.PreDuration, "duration of one warm-up burst in seconds")
	fs.Float64Var(&cfg.CheckPeriod, "check-period", cfg.CheckPeriod, "progress print period in seconds")
	fs.Float64Var(&cfg.FrameErrorRate, "fer", cfg.FrameErrorRate, "frame error rate of all links")
	fs.IntVar(&cfg.QueueLimit, "queue-limit", cfg.QueueLimit, "transmit queue limit per link")
	fs.IntVar(&cfg.RetryLimit, "retry-limit", cfg.RetryLimit, "retransmissions per unicast frame")
	fs.BoolVar(&cfg.Progress, "progress", cfg.Progress, "print progress while running")
	fs.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "directory of the result files")
	return fs
}

// parseArgs reads the scenario file named by -scenario, if any, and applies the other flags on top of it.
func parseArgs(argv []string, output io.Writer) (*MainArgs, *simulation.Config, []simulation.YamlNodeConfig, error) {
	args := &MainArgs{LogLevel: "warn"}
	if err := newFlagSet(args, simulation.DefaultConfig(), output).Parse(argv); err != nil {
		return nil, nil, nil, err
	}

	cfg := simulation.DefaultConfig()
	var placement []simulation.YamlNodeConfig
	if args.Scenario != "" {
		sf, err := simulation.LoadScenarioFile(args.Scenario)
		if err != nil {
			return nil, nil, nil, err
		}
		cfg = sf.Scenario
		placement = sf.Nodes
	}

	fs := newFlagSet(args, cfg, io.Discard)
	if err := fs.Parse(argv); err != nil {
		return nil, nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, nil, errors.Errorf("unexpected arguments: %v", fs.Args())
	}
	return args, cfg, placement, nil
}

// Main runs one simulation as given by the command line argv (without the program name).
func Main(ctx *progctx.ProgCtx, argv []string, cliOptions *cli.CliOptions) error {
	args, cfg, placement, err := parseArgs(argv, os.Stderr)
	if err != nil {
		return err
	}
	level, err := logger.ParseLevelString(args.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	ctx.CancelOnSignal(syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer ctx.Wait()
	defer ctx.Cancel("main exit")

	sim, err := simulation.NewSimulation(ctx, cfg, placement)
	if err != nil {
		return err
	}
	defer sim.Stop()

	var results *simulation.Results
	if args.Cli {
		results = runConsole(ctx, sim, cliOptions)
	} else if results, err = sim.Run(); err != nil {
		return err
	}

	if !sim.IsFinished() {
		logger.Infof("simulation %s at %d us, no results saved", results.Status, sim.Dispatcher().Now())
		return nil
	}
	simulation.LogResults(results)
	if args.NoSave {
		fmt.Print(simulation.ResultLine(results))
		return nil
	}
	return simulation.SaveResults(cfg.OutputDir, cfg, results)
}

// runConsole runs the console on the calling goroutine. The simulation only advances on 'go'.
func runConsole(ctx *progctx.ProgCtx, sim *simulation.Simulation, cliOptions *cli.CliOptions) *simulation.Results {
	rt := cli.NewCmdRunner(ctx, sim)
	console := cli.NewCliInstance()
	logger.SetStdoutCallback(console)
	defer logger.SetStdoutCallback(nil)

	sim.SetProgressOutput(io.Discard)
	console.RunCli(ctx, rt, cliOptions)
	return sim.Results()
}
