// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"fmt"
	"log"
	"os"
)

// Logger defines an interface for writing log messages.
type Logger interface {
	Infof(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// InfoWarner is a narrower logging surface with a Warningf level, used for
// the I/O monitor channel: latency warnings and hole-punch summaries that
// are noisier than general operational Infof traces and belong on their
// own sink.
type InfoWarner interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
}

// DefaultInfoWarner logs to the Go stdlib logs, prefixing warnings.
type DefaultInfoWarner struct{}

// Infof implements InfoWarner.
func (DefaultInfoWarner) Infof(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Warningf implements InfoWarner.
func (DefaultInfoWarner) Warningf(format string, args ...interface{}) {
	_ = log.Output(2, "[WARN] "+fmt.Sprintf(format, args...))
}

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger struct{}

// Infof implements the Logger.Infof interface.
func (DefaultLogger) Infof(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Fatalf implements the Logger.Fatalf interface.
func (DefaultLogger) Fatalf(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
	os.Exit(1)
}
