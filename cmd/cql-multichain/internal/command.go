/*
 * Copyright 2018 The CovenantSQL Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package internal

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
)

// A Command is an implementation of a cql-multichain command like cql-multichain head.
type Command struct {
	// Run runs the command.
	// The args are the arguments after the command name.
	Run func(cmd *Command, args []string)

	// UsageLine is the one-line usage message.
	// The words between "cql-multichain" and the first flag or argument in the line are
	// taken to be the command name.
	UsageLine string

	// Short is the short description shown in the 'cql-multichain help' output.
	Short string

	// Long is the long message shown in the 'cql-multichain help <this-command>' output.
	Long string

	// Flag is a set of flags specific to this command.
	Flag flag.FlagSet
}

// LongName returns the command's long name: all the words in the usage line between
// "cql-multichain" and a flag or argument.
func (c *Command) LongName() string {
	name := c.UsageLine
	if i := strings.Index(name, " ["); i >= 0 {
		name = name[:i]
	}
	if name == toolName {
		return ""
	}
	return strings.TrimPrefix(name, toolName+" ")
}

// Name returns the command's short name: the last word in the usage line before a flag
// or argument.
func (c *Command) Name() string {
	name := c.LongName()
	if i := strings.LastIndex(name, " "); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Usage prints the usage of the command and exits.
func (c *Command) Usage() {
	fmt.Fprintf(os.Stderr, "usage: %s\n", c.UsageLine)
	fmt.Fprintf(os.Stderr, "Run '%s help %s' for details.\n", toolName, c.LongName())
	SetExitStatus(2)
	Exit()
}

// Runnable reports whether the command can be run; otherwise it is a documentation
// pseudo-command.
func (c *Command) Runnable() bool {
	return c.Run != nil
}

var (
	exitStatus = 0
	exitMu     sync.Mutex
	atExitFns  []func()
)

// SetExitStatus raises the exit status of the process to n.
func SetExitStatus(n int) {
	exitMu.Lock()
	if exitStatus < n {
		exitStatus = n
	}
	exitMu.Unlock()
}

// GetExitStatus returns the current exit status.
func GetExitStatus() int {
	exitMu.Lock()
	defer exitMu.Unlock()
	return exitStatus
}

// AtExit registers f to run before the process exits.
func AtExit(f func()) {
	atExitFns = append(atExitFns, f)
}

// Exit runs the registered exit functions and exits with the current exit status.
func Exit() {
	for _, f := range atExitFns {
		f()
	}
	os.Exit(GetExitStatus())
}

// ExitIfErrors exits if the exit status is not zero.
func ExitIfErrors() {
	if GetExitStatus() != 0 {
		Exit()
	}
}
