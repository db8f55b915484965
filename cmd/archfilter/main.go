// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

// Package main provides the entry point for archfilter, a streaming I/O
// filter pipeline and worker-protocol helper modeled on a backup tool's
// local/remote process split.
//
// archfilter has three faces, chosen by the final command-line argument:
//
//	archfilter ... run     main process: loads Config, dispatches one
//	                       filter job to a local or remote worker, and
//	                       records the result.
//	archfilter ... local   local worker: serves a filter request loop
//	                       over its own stdin/stdout.
//	archfilter ... remote  remote worker: identical serving loop, reached
//	                       only through the ssh command ProtocolHelper
//	                       builds for a configured --repo-host.
//
// The main process spawns local and remote workers as subprocesses of
// this same binary, re-invoking it with an argv ProtocolHelper builds
// from its own Config.Args.
package main

import (
	"log"
	"os"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		log.Fatalf("archfilter: missing subcommand (local|remote|run)")
	}

	subcommand := args[len(args)-1]
	switch subcommand {
	case "local":
		runLocal(args)
	case "remote":
		runRemote(args)
	case "run":
		runMain(args)
	default:
		log.Fatalf("archfilter: unknown subcommand %q (want local|remote|run)", subcommand)
	}
}
