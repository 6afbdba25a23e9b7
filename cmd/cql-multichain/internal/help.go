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
	"fmt"
	"os"
	"runtime"
	"strings"
)

var (
	// Version of command, set by main func of version
	Version = "unknown"
)

// CmdVersion is cql-multichain version command entity.
var CmdVersion = &Command{
	UsageLine: "cql-multichain version",
	Short:     "show build version information",
}

// CmdHelp is cql-multichain help command entity.
var CmdHelp = &Command{
	UsageLine: "cql-multichain help [command]",
	Short:     "show help of commands",
}

func init() {
	CmdVersion.Run = runVersion
	CmdHelp.Run = runHelp
}

// PrintVersion prints program git version.
func PrintVersion(printLog bool) string {
	version := fmt.Sprintf("%v %v %v %v %v\n",
		toolName, Version, runtime.GOOS, runtime.GOARCH, runtime.Version())

	if printLog {
		ConsoleLog.Debugf("%s build: %s", toolName, version)
	}

	return version
}

func runVersion(cmd *Command, args []string) {
	fmt.Print(PrintVersion(false))
}

func mainUsageText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is the tool of a bilateral co-signed block ledger.\n\n", toolName)
	fmt.Fprintf(&b, "Usage:\n\n\t%s <command> [arguments]\n\nThe commands are:\n\n", toolName)
	for _, cmd := range Commands {
		if cmd.Runnable() {
			fmt.Fprintf(&b, "\t%-10s %s\n", cmd.Name(), cmd.Short)
		}
	}
	fmt.Fprintf(&b, "\nUse \"%s help <command>\" for more information about a command.\n", toolName)
	return b.String()
}

// MainUsage prints the usage of the tool and exits.
func MainUsage() {
	fmt.Fprint(os.Stderr, mainUsageText())
	SetExitStatus(2)
	Exit()
}

func runHelp(cmd *Command, args []string) {
	if len(args) == 0 {
		fmt.Print(mainUsageText())
		return
	}
	if len(args) != 1 {
		ConsoleLog.Errorf("usage: %s help command\n\nToo many arguments given.", toolName)
		SetExitStatus(2)
		return
	}
	for _, c := range Commands {
		if c.Name() == args[0] {
			fmt.Printf("usage: %s\n", c.UsageLine)
			if c.Long != "" {
				fmt.Println(strings.TrimSpace(c.Long))
			}
			c.Flag.SetOutput(os.Stdout)
			c.Flag.PrintDefaults()
			return
		}
	}
	ConsoleLog.Errorf("unknown help topic %#q. Run '%s help'.", args[0], toolName)
	SetExitStatus(2)
}
