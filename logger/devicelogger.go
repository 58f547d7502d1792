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


package logger

import (
	"fmt"
	"sync"

	. "github.com/mrwifi/mrns/types"
)

// DeviceLogger is a device-specific log object. Each device has its own level, and log lines are
// prefixed with the simulated time and the node name.
type DeviceLogger struct {
	Id         NodeId
	level      Level
	timeSource func() uint64
}

var (
	deviceLogs = make(map[NodeId]*DeviceLogger, 10)
	mutex      = sync.Mutex{}
)

// GetDeviceLogger gets (or creates) the DeviceLogger for the given node. A new logger
// follows the global level until SetLevel is called on it.
func GetDeviceLogger(nodeid NodeId) *DeviceLogger {
	mutex.Lock()
	defer mutex.Unlock()

	dl, ok := deviceLogs[nodeid]
	if !ok {
		dl = &DeviceLogger{
			Id:    nodeid,
			level: MinLevel - 1,
		}
		deviceLogs[nodeid] = dl
	}
	return dl
}

// ResetDeviceLoggers forgets all device loggers, for a new simulation.
func ResetDeviceLoggers() {
	mutex.Lock()
	defer mutex.Unlock()
	deviceLogs = make(map[NodeId]*DeviceLogger, 10)
}

// SetTimeSource sets the function returning current simulation time (us) for the log prefix. It is
// only used while no global clock is set.
func (dl *DeviceLogger) SetTimeSource(f func() uint64) {
	dl.timeSource = f
}

func (dl *DeviceLogger) SetLevel(level Level) {
	dl.level = level
}

func (dl *DeviceLogger) GetLevel() Level {
	if dl.level < MinLevel {
		return currentLevel
	}
	return dl.level
}

func (dl *DeviceLogger) IsLevelVisible(level Level) bool {
	return level <= dl.GetLevel() || level <= PanicLevel
}

func (dl *DeviceLogger) Logf(level Level, format string, args []interface{}) {
	if !dl.IsLevelVisible(level) {
		return
	}
	msg := fmt.Sprintf("%-10s %s", GetNodeName(dl.Id), getMessage(format, args))
	if clock == nil && dl.timeSource != nil {
		msg = fmt.Sprintf("%11d us %s", dl.timeSource(), msg)
	}
	logAlways(level, msg)
}

func (dl *DeviceLogger) Tracef(format string, args ...interface{}) {
	dl.Logf(TraceLevel, format, args)
}

func (dl *DeviceLogger) Debugf(format string, args ...interface{}) {
	dl.Logf(DebugLevel, format, args)
}

func (dl *DeviceLogger) Infof(format string, args ...interface{}) {
	dl.Logf(InfoLevel, format, args)
}

func (dl *DeviceLogger) Warnf(format string, args ...interface{}) {
	dl.Logf(WarnLevel, format, args)
}

func (dl *DeviceLogger) Errorf(format string, args ...interface{}) {
	dl.Logf(ErrorLevel, format, args)
}

func (dl *DeviceLogger) Error(err error) {
	if err == nil {
		return
	}
	dl.Logf(ErrorLevel, "%v", []interface{}{err})
}
