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


package cli

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mrwifi/mrns/logger"
	"github.com/mrwifi/mrns/progctx"
	"github.com/mrwifi/mrns/simulation"
	. "github.com/mrwifi/mrns/types"
)

const (
	Prompt = "> "
)

type CommandContext struct {
	*Command
	rt     *CmdRunner
	err    error
	output io.Writer
}

func (cc *CommandContext) outputStr(msg string) {
	_, _ = fmt.Fprint(cc.output, msg)
}

func (cc *CommandContext) outputf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cc.output, format, args...)
}

func (cc *CommandContext) errorf(format string, args ...interface{}) {
	cc.error(errors.Errorf(format, args...))
}

func (cc *CommandContext) error(err error) {
	if err != nil {
		if cc.err != nil { // if previous error, print it now and keep the last.
			cc.outputf("Error: %s\n", cc.err)
		}
		cc.err = err
	}
}

// Err returns the last error that occurred during command execution.
func (cc *CommandContext) Err() error {
	return cc.err
}

func (cc *CommandContext) outputItemsAsYaml(items interface{}) {
	var itemsYaml yaml.Node

	err := itemsYaml.Encode(items)
	logger.PanicIfError(err)

	if itemsYaml.Kind == yaml.MappingNode {
		itemsYaml.Style = yaml.FlowStyle
	}
	for _, content := range itemsYaml.Content {
		content.Style = yaml.FlowStyle
	}

	data, err := yaml.Marshal(&itemsYaml)
	logger.PanicIfError(err)

	_, err = cc.output.Write(data)
	logger.PanicIfError(err)
}

// CmdRunner executes console commands against one simulation. The simulation only advances
// while a 'go' command runs, on the goroutine calling HandleCommand.
type CmdRunner struct {
	sim           *simulation.Simulation
	ctx           *progctx.ProgCtx
	contextNodeId NodeId
	help          Help
}

func NewCmdRunner(ctx *progctx.ProgCtx, sim *simulation.Simulation) *CmdRunner {
	return &CmdRunner{
		ctx:           ctx,
		sim:           sim,
		contextNodeId: InvalidNodeId,
		help:          newHelp(),
	}
}

func (rt *CmdRunner) RunCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() == nil {
		cmd := Command{}
		if err := parseBytes([]byte(cmdline), &cmd); err != nil {
			if _, err := fmt.Fprintf(output, "Error: %v\n", err); err != nil {
				return err
			}
		} else {
			rt.execute(&cmd, output)
		}
	}
	return rt.ctx.Err()
}

// HandleCommand runs one console line. Inside a node context, 'exit' leaves the context.
func (rt *CmdRunner) HandleCommand(cmdline string, output io.Writer) error {
	if rt.contextNodeId != InvalidNodeId && strings.TrimSpace(cmdline) == "exit" {
		rt.contextNodeId = InvalidNodeId
		_, _ = fmt.Fprintf(output, "Done\n")
		return nil
	}
	return rt.RunCommand(cmdline, output)
}

func (rt *CmdRunner) GetPrompt() string {
	if rt.contextNodeId == InvalidNodeId {
		return Prompt
	} else {
		return fmt.Sprintf("node %d%s", rt.contextNodeId, Prompt)
	}
}

func (rt *CmdRunner) GetContextNodeId() NodeId {
	return rt.contextNodeId
}

func (rt *CmdRunner) execute(cmd *Command, output io.Writer) {
	cc := &CommandContext{
		Command: cmd,
		rt:      rt,
		output:  output,
	}

	defer func() {
		if cc.Err() != nil {
			cc.outputf("Error: %v\n", cc.Err())
		} else {
			cc.outputf("Done\n")
		}
	}()

	defer func() {
		rerr := recover()

		if rerr != nil {
			if err, ok := rerr.(error); ok {
				cc.err = errors.Wrapf(err, "panic: %v", err)
			} else {
				cc.err = errors.Errorf("panic: %v", rerr)
			}
		}
	}()

	if cmd.Go != nil {
		rt.executeGo(cc, cmd.Go)
	} else if cmd.Counters != nil {
		rt.executeCounters(cc, cmd.Counters)
	} else if cmd.Reset != nil {
		rt.executeReset(cc)
	} else if cmd.Nodes != nil {
		rt.executeLsNodes(cc, cmd.Nodes)
	} else if cmd.Node != nil {
		rt.executeNode(cc, cmd.Node)
	} else if cmd.Token != nil {
		rt.executeToken(cc, cmd.Token)
	} else if cmd.Policy != nil {
		rt.executePolicy(cc, cmd.Policy)
	} else if cmd.Move != nil {
		rt.executeMoveNode(cc, cmd.Move)
	} else if cmd.LogLevel != nil {
		rt.executeLogLevel(cc, cmd.LogLevel)
	} else if cmd.Save != nil {
		rt.executeSave(cc, cmd.Save)
	} else if cmd.Results != nil {
		rt.executeResults(cc)
	} else if cmd.Time != nil {
		rt.executeTime(cc, cmd.Time)
	} else if cmd.Help != nil {
		rt.executeHelp(cc, cmd.Help)
	} else if cmd.Exit != nil {
		rt.executeExit(cc, cmd.Exit)
	} else {
		logger.Panicf("unimplemented command: %#v", cmd)
	}
}

func parseGoDuration(s string) (time.Duration, error) {
	dur, err := time.ParseDuration(s)
	if err != nil {
		dur, err = time.ParseDuration(s + "s") // try parsing as seconds
	}
	if err == nil && dur < 0 {
		err = errors.Errorf("negative duration %s", s)
	}
	return dur, err
}

func (rt *CmdRunner) executeGo(cc *CommandContext, cmd *GoCmd) {
	var durUs uint64
	if cmd.Ever != nil {
		durUs = rt.sim.StopTimeUs()
	} else {
		dur, err := parseGoDuration(cmd.Time)
		if err != nil {
			cc.errorf("could not parse time duration: %s", cmd.Time)
			return
		}
		durUs = uint64(dur / time.Microsecond)
	}

	if rt.sim.IsFinished() {
		cc.errorf("simulation finished at %d us", rt.sim.Dispatcher().Now())
		return
	}
	cc.error(rt.sim.Go(durUs))
}

// getNode returns the node given by sel, or the context node if sel is nil.
func (rt *CmdRunner) getNode(sel *NodeSelector) (*simulation.Node, error) {
	id := rt.contextNodeId
	if sel != nil {
		id = sel.Id
	}
	if id == InvalidNodeId {
		return nil, nil
	}
	node := rt.sim.GetNode(id)
	if node == nil {
		return nil, errors.Errorf("node %d not found", id)
	}
	return node, nil
}

func (rt *CmdRunner) executeCounters(cc *CommandContext, cmd *CountersCmd) {
	node, err := rt.getNode(cmd.Node)
	if err != nil {
		cc.error(err)
		return
	}
	if node == nil {
		rt.outputStructCounters(cc, rt.sim.Dispatcher().Counters)
		rt.outputStructCounters(cc, rt.sim.Medium().GetStats())
		return
	}

	for i, c := range node.Device.AllAckCounters() {
		cc.outputf("link %d: ", i)
		cc.outputItemsAsYaml(c)
	}
	total := node.Device.TotalAckCounters()
	cc.outputf("total: ")
	cc.outputItemsAsYaml(total)
}

func (rt *CmdRunner) outputStructCounters(cc *CommandContext, counters interface{}) {
	countersVal := reflect.ValueOf(counters)
	countersTyp := reflect.TypeOf(counters)
	for i := 0; i < countersVal.NumField(); i++ {
		fname := countersTyp.Field(i).Name
		fval := countersVal.Field(i)
		cc.outputf("%-40s %v\n", fname, fval.Uint())
	}
}

func (rt *CmdRunner) executeReset(cc *CommandContext) {
	rt.sim.ResetStatistics()
}

type nodeInfo struct {
	Id      NodeId
	Role    string
	Address string
	Pos     [3]float64
	Token   string
	Queues  []int
}

func (rt *CmdRunner) executeLsNodes(cc *CommandContext, cmd *NodesCmd) {
	for _, id := range rt.sim.GetNodes() {
		node := rt.sim.GetNode(id)
		rn := node.Radio
		rt.outputNodeInfo(cc, nodeInfo{
			Id:      id,
			Role:    node.Role.String(),
			Address: node.Device.GetAddress().String(),
			Pos:     [3]float64{rn.X, rn.Y, rn.Z},
			Token:   node.Device.TokenState().String(),
			Queues:  node.Device.QueueDepths(),
		})
	}
}

func (rt *CmdRunner) outputNodeInfo(cc *CommandContext, info nodeInfo) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("id=%d\trole=%s\taddr=%s\tpos=(%g,%g,%g)\ttoken=%s\tqueues=",
		info.Id, info.Role, info.Address, info.Pos[0], info.Pos[1], info.Pos[2], info.Token))
	for i, q := range info.Queues {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strconv.Itoa(q))
	}
	cc.outputf("%s\n", sb.String())
}

func (rt *CmdRunner) executeNode(cc *CommandContext, cmd *NodeCmd) {
	if rt.sim.GetNode(cmd.Node.Id) == nil {
		cc.errorf("node %d not found", cmd.Node.Id)
		return
	}
	rt.contextNodeId = cmd.Node.Id
}

func (rt *CmdRunner) executeToken(cc *CommandContext, cmd *TokenCmd) {
	node, err := rt.getNode(cmd.Node)
	if err != nil {
		cc.error(err)
		return
	}

	nodes := []*simulation.Node{node}
	if node == nil {
		nodes = nodes[:0]
		for _, id := range rt.sim.GetNodes() {
			nodes = append(nodes, rt.sim.GetNode(id))
		}
	}
	for _, n := range nodes {
		grants, releases := n.Device.TokenTransitions()
		cc.outputf("%-4d %-8s grants=%d releases=%d\n", n.Id, n.Device.TokenState(), grants, releases)
	}
}

func (rt *CmdRunner) executePolicy(cc *CommandContext, cmd *PolicyCmd) {
	if cmd.OnOrOff == nil {
		if rt.sim.Config().Proposed {
			cc.outputf("on\n")
		} else {
			cc.outputf("off\n")
		}
		return
	}
	rt.sim.SetPolicyEnabled(cmd.OnOrOff.On != nil)
}

func (rt *CmdRunner) executeMoveNode(cc *CommandContext, cmd *MoveCmd) {
	node, err := rt.getNode(&cmd.Target)
	if err != nil {
		cc.error(err)
		return
	}
	z := node.Radio.Z
	if cmd.Z != nil {
		z = *cmd.Z
	}
	cc.error(rt.sim.Medium().SetNodePos(node.Id, cmd.X, cmd.Y, z))
}

func (rt *CmdRunner) executeLogLevel(cc *CommandContext, cmd *LogLevelCmd) {
	if cmd.Level == "" {
		cc.outputf("%v\n", logger.GetLevelString(logger.GetLevel()))
		return
	}
	level, err := logger.ParseLevelString(cmd.Level)
	if err != nil {
		cc.error(err)
		return
	}
	logger.SetLevel(level)
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}

func (rt *CmdRunner) executeSave(cc *CommandContext, cmd *SaveCmd) {
	fn := unquote(cmd.File)
	if err := simulation.SaveScenarioFile(fn, rt.sim.ExportScenario()); err != nil {
		cc.error(err)
		return
	}
	cc.outputf("saved %d nodes to %s\n", len(rt.sim.GetNodes()), fn)
}

func (rt *CmdRunner) executeResults(cc *CommandContext) {
	r := rt.sim.Results()
	cc.outputf("status: %s\n", r.Status)
	cc.outputf("throughput: %.2f Mbps\n", r.ThroughputMbps)
	cc.outputStr(simulation.ResultLine(r))
}

func (rt *CmdRunner) executeTime(cc *CommandContext, cmd *TimeCmd) {
	cc.outputf("%d\n", rt.sim.Dispatcher().Now())
}

func (rt *CmdRunner) executeExit(cc *CommandContext, cmd *ExitCmd) {
	rt.ctx.Cancel("exit")
}

func (rt *CmdRunner) executeHelp(cc *CommandContext, cmd *HelpCmd) {
	if len(cmd.HelpTopic) > 0 {
		cc.outputStr(rt.help.outputCommandHelp(cmd.HelpTopic))
	} else {
		cc.outputStr(rt.help.outputGeneralHelp())
	}
}
