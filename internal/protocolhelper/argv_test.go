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

package protocolhelper

import (
	"reflect"
	"testing"

	"archfilter/internal/config"
)

func TestReplaceOptionAppendsWhenAbsent(t *testing.T) {
	got := replaceOption([]string{"--stanza=main"}, "process", "2")
	want := []string{"--stanza=main", "--process=2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("replaceOption() = %v, want %v", got, want)
	}
}

func TestReplaceOptionOverwritesExisting(t *testing.T) {
	got := replaceOption([]string{"--process=1", "--stanza=main"}, "process", "2")
	want := []string{"--process=2", "--stanza=main"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("replaceOption() = %v, want %v", got, want)
	}
}

func TestRemoveOptionDropsMatchingFlag(t *testing.T) {
	got := removeOption([]string{"--stanza=main", "--process=1"}, "stanza")
	want := []string{"--process=1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("removeOption() = %v, want %v", got, want)
	}
}

func TestHasOption(t *testing.T) {
	args := []string{"--command=backup"}
	if !hasOption(args, "command") {
		t.Fatalf("hasOption(command) = false, want true")
	}
	if hasOption(args, "process") {
		t.Fatalf("hasOption(process) = true, want false")
	}
}

func TestStripSubcommandDropsTrailingToken(t *testing.T) {
	for _, sub := range []string{"local", "remote", "run"} {
		got := stripSubcommand([]string{"--stanza=main", sub})
		want := []string{"--stanza=main"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("stripSubcommand(..., %q) = %v, want %v", sub, got, want)
		}
	}
}

func TestStripSubcommandLeavesOtherArgsAlone(t *testing.T) {
	args := []string{"--stanza=main", "--process=1"}
	got := stripSubcommand(args)
	if !reflect.DeepEqual(got, args) {
		t.Fatalf("stripSubcommand() = %v, want unchanged %v", got, args)
	}
}

func TestLocalParamAppendsSingleLocalToken(t *testing.T) {
	cfg := &config.Config{Args: []string{"--stanza=main", "run"}}
	cfg.Command.Set("backup", config.SourceFlag)

	got := localParam(cfg, 2)
	if got[len(got)-1] != "local" {
		t.Fatalf("last token = %q, want local", got[len(got)-1])
	}
	count := 0
	for _, a := range got {
		if a == "local" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("local appears %d times, want exactly 1: %v", count, got)
	}
	if !hasOption(got, "process") {
		t.Fatalf("localParam() missing --process=: %v", got)
	}
}

func TestRemoteShellParamBuildsSshInvocation(t *testing.T) {
	cfg := &config.Config{Args: []string{"--stanza=main", "--process=9", "run"}}
	cfg.RepoHost.Set("backup.example.com", config.SourceFlag)
	cfg.RepoHostUser.Set("repouser", config.SourceFlag)
	cfg.RepoHostCmd.Set("/usr/bin/archfilter", config.SourceDefault)
	cfg.Command.Set("backup", config.SourceFlag)

	got := remoteShellParam(cfg, 3)
	if got[len(got)-1] == "local" {
		t.Fatalf("remoteShellParam() ended in local: %v", got)
	}

	found := false
	for _, a := range got {
		if a == "repouser@backup.example.com" {
			found = true
		}
	}
	if !found {
		t.Fatalf("remoteShellParam() missing user@host destination: %v", got)
	}

	remoteCount := 0
	for _, a := range got {
		if a == "remote" {
			remoteCount++
		}
	}
	if remoteCount != 1 {
		t.Fatalf("remote appears %d times, want exactly 1: %v", remoteCount, got)
	}

	for _, a := range got {
		if len(a) >= len("--stanza=") && a[:len("--stanza=")] == "--stanza=" {
			t.Fatalf("remoteShellParam() kept --stanza=: %v", got)
		}
	}
}

func TestRemoteShellParamAddsPortWhenSet(t *testing.T) {
	cfg := &config.Config{Args: []string{"run"}}
	cfg.RepoHost.Set("backup.example.com", config.SourceFlag)
	cfg.RepoHostPort.Set(2222, config.SourceFlag)
	cfg.RepoHostCmd.Set("/usr/bin/archfilter", config.SourceDefault)

	got := remoteShellParam(cfg, 1)
	portFound := false
	for i, a := range got {
		if a == "-p" && i+1 < len(got) && got[i+1] == "2222" {
			portFound = true
		}
	}
	if !portFound {
		t.Fatalf("remoteShellParam() missing -p 2222: %v", got)
	}
}
