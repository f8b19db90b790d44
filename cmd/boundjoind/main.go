// Copyright 2026 The SPARQLfed Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// boundjoind is a small command line tool for exercising the bound join
// operator and the update consumer sink against either an in-memory
// graph or a federation of remote SPARQL endpoints.
package main

import (
	"context"
	"fmt"
	"os"
)

// Registration of the available commands. Please keep sorted.
var cmds = []*Command{
	NewEvalCommand(),
	NewUpdateCommand(),
	NewVersionCommand(),
}

func main() {
	ctx := context.Background()
	args := os.Args
	cmd := ""
	if len(args) >= 2 {
		cmd = args[1]
	}
	if cmd == "help" {
		os.Exit(help(args))
	}
	for _, c := range cmds {
		if c.Name() == cmd {
			os.Exit(c.Run(ctx, args))
		}
	}
	if cmd == "" {
		fmt.Fprintf(os.Stderr, "missing command. Usage:\n\n\t$ boundjoind [command]\n\nPlease run\n\n\t$ boundjoind help\n\n")
	} else {
		fmt.Fprintf(os.Stderr, "command %q not recognized. Usage:\n\n\t$ boundjoind [command]\n\nPlease run\n\n\t$ boundjoind help\n\n", cmd)
	}
	os.Exit(1)
}

func help(args []string) int {
	cmd := ""
	if len(args) >= 3 {
		cmd = args[2]
	}
	for _, c := range cmds {
		if c.Name() == cmd {
			return c.Usage()
		}
	}
	if cmd == "" {
		fmt.Fprintf(os.Stderr, "missing help command. Usage:\n\n\t$ boundjoind help [command]\n\nAvailable help commands\n\n")
		for _, c := range cmds {
			fmt.Fprintf(os.Stderr, "\t%s\t- %s\n", c.Name(), c.Short)
		}
		fmt.Fprintln(os.Stderr, "")
		return 0
	}
	fmt.Fprintf(os.Stderr, "help command %q not recognized. Usage:\n\n\t$ boundjoind help\n\n", cmd)
	return 2
}
