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

// Package protocolhelper owns the cache of local and remote worker
// processes, lazily spawning each on first use and tearing every one of
// them down on ProtocolFree.
package protocolhelper

import (
	"fmt"
	"strconv"

	"archfilter/internal/config"
)

// replaceOption overwrites or appends a "--name=value" style flag in a
// cloned argument list, matching the original's KeyValue option-replace
// pattern.
func replaceOption(args []string, name, value string) []string {
	flagPrefix := "--" + name + "="
	out := make([]string, 0, len(args)+1)
	replaced := false
	for _, a := range args {
		if len(a) >= len(flagPrefix) && a[:len(flagPrefix)] == flagPrefix {
			out = append(out, flagPrefix+value)
			replaced = true
			continue
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, flagPrefix+value)
	}
	return out
}

// removeOption drops a "--name=" flag entirely, used to strip --stanza
// from the remote command line so one remote can serve multiple stanzas.
func removeOption(args []string, name string) []string {
	flagPrefix := "--" + name + "="
	out := make([]string, 0, len(args))
	for _, a := range args {
		if len(a) >= len(flagPrefix) && a[:len(flagPrefix)] == flagPrefix {
			continue
		}
		out = append(out, a)
	}
	return out
}

// hasOption reports whether a "--name=" flag is present in args.
func hasOption(args []string, name string) bool {
	flagPrefix := "--" + name + "="
	for _, a := range args {
		if len(a) >= len(flagPrefix) && a[:len(flagPrefix)] == flagPrefix {
			return true
		}
	}
	return false
}

// stripSubcommand drops a trailing local/remote/run token, since
// cfg.Args is the full inherited command line and localParam/
// remoteShellParam each append their own subcommand at the end.
func stripSubcommand(args []string) []string {
	if n := len(args); n > 0 {
		switch args[n-1] {
		case "local", "remote", "run":
			return args[:n-1]
		}
	}
	return args
}

// localParam builds the argument vector for a local worker: the current
// command line with command, process, host-id and type overridden.
func localParam(cfg *config.Config, processID int) []string {
	args := stripSubcommand(append([]string(nil), cfg.Args...))
	args = replaceOption(args, "command", cfg.Command.Value)
	args = replaceOption(args, "process", strconv.Itoa(processID))
	args = replaceOption(args, "host-id", "1")
	args = replaceOption(args, "type", "backup")
	return append(args, "local")
}

// remoteShellParam builds the full argv for the ssh invocation that
// starts the stanza-agnostic remote worker.
func remoteShellParam(cfg *config.Config, processID int) []string {
	result := []string{"-o", "LogLevel=error", "-o", "Compression=no", "-o", "PasswordAuthentication=no"}

	if !cfg.RepoHostPort.IsDefault() {
		result = append(result, "-p", strconv.Itoa(cfg.RepoHostPort.Value))
	}

	dest := fmt.Sprintf("%s@%s", cfg.RepoHostUser.Value, cfg.RepoHost.Value)
	result = append(result, dest)

	args := stripSubcommand(append([]string(nil), cfg.Args...))
	if cfg.RepoHostConfig.Source != config.SourceDefault {
		args = replaceOption(args, "config", cfg.RepoHostConfig.Value)
	}
	if cfg.RepoHostConfigIncludePath.Source != config.SourceDefault {
		args = replaceOption(args, "config-include-path", cfg.RepoHostConfigIncludePath.Value)
	}
	if cfg.RepoHostConfigPath.Source != config.SourceDefault {
		args = replaceOption(args, "config-path", cfg.RepoHostConfigPath.Value)
	}
	if !hasOption(args, "command") {
		args = replaceOption(args, "command", cfg.Command.Value)
	}
	if !hasOption(args, "process") {
		args = replaceOption(args, "process", strconv.Itoa(processID))
	}
	args = removeOption(args, "stanza")
	args = replaceOption(args, "type", "backup")
	args = append(args, "remote")

	remoteExe := append([]string{cfg.RepoHostCmd.Value}, args...)
	result = append(result, remoteExe...)
	return result
}
