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

// Package config loads the options archfilter needs to build worker
// command lines and wire up the filter chain, tracking where each value
// came from.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Source records where an Option's value came from.
type Source int

const (
	SourceDefault Source = iota
	SourceEnv
	SourceFlag
	SourceConfig
)

func (s Source) String() string {
	switch s {
	case SourceEnv:
		return "env"
	case SourceFlag:
		return "flag"
	case SourceConfig:
		return "config"
	default:
		return "default"
	}
}

// Option tracks a value alongside the provenance of that value, so
// decisions like cipher inheritance can tell a default apart from an
// explicit setting.
type Option[T any] struct {
	Value  T
	Source Source
}

// Set records an explicit value from src, overriding whatever was there.
func (o *Option[T]) Set(v T, src Source) {
	o.Value = v
	o.Source = src
}

// IsDefault reports whether the option's value still comes from
// SourceDefault, whether that value is the zero value or a built-in
// default.
func (o *Option[T]) IsDefault() bool { return o.Source == SourceDefault }

// Config holds every option the main process and its workers need: the
// remote-shell destination, per-process limits, and the ambient knobs
// (logging, metrics, persistence) a runnable command carries regardless
// of which filters it composes.
type Config struct {
	RepoHost      Option[string]
	RepoHostUser  Option[string]
	RepoHostCmd   Option[string]
	RepoHostPort  Option[int]

	RepoHostConfig            Option[string]
	RepoHostConfigIncludePath Option[string]
	RepoHostConfigPath        Option[string]

	CmdSsh           Option[string]
	ProtocolTimeout  Option[time.Duration]
	ProcessMax       Option[int]
	Process          Option[int]
	Command          Option[string]
	Stanza           Option[string]
	Type             Option[string]

	RepoCipherType Option[string]
	RepoCipherPass Option[string]

	SelfExe string
	Args    []string

	LogLevel            Option[string]
	MetricsAddr         Option[string]
	ResultSinkPath      Option[string]
	PersistenceAdapter  Option[string]

	InputPath  Option[string]
	OutputPath Option[string]
	Filters    Option[string]
	RedisAddr  Option[string]
}

// RepoHostSet reports whether a remote repository host is configured.
// Mirrors the original's repoIsLocal: the repository is local exactly
// when this is unset.
func (c *Config) RepoHostSet() bool { return !c.RepoHost.IsDefault() }

func defaultConfig() *Config {
	c := &Config{}
	c.ProcessMax.Set(1, SourceDefault)
	c.ProtocolTimeout.Set(60*time.Second, SourceDefault)
	c.Type.Set("backup", SourceDefault)
	c.RepoCipherType.Set("none", SourceDefault)
	c.LogLevel.Set("info", SourceDefault)
	c.PersistenceAdapter.Set("mock", SourceDefault)
	c.CmdSsh.Set("ssh", SourceDefault)
	return c
}

func envString(c *Config, o *Option[string], key string) {
	if v, ok := os.LookupEnv(key); ok {
		o.Set(v, SourceEnv)
	}
	_ = c
}

func envInt(c *Config, o *Option[int], key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			o.Set(n, SourceEnv)
		}
	}
	_ = c
}

// LoadConfig parses args (typically os.Args[1:]) with the standard flag
// package, layered over environment variable fallbacks, following
// precedence flag > env > default.
func LoadConfig(args []string) (*Config, error) {
	c := defaultConfig()
	c.Args = args

	envString(c, &c.RepoHost, "ARCHFILTER_REPO_HOST")
	envString(c, &c.RepoHostUser, "ARCHFILTER_REPO_HOST_USER")
	envString(c, &c.RepoHostCmd, "ARCHFILTER_REPO_HOST_CMD")
	envInt(c, &c.RepoHostPort, "ARCHFILTER_REPO_HOST_PORT")
	envString(c, &c.RepoCipherType, "ARCHFILTER_REPO_CIPHER_TYPE")
	envString(c, &c.RepoCipherPass, "ARCHFILTER_REPO_CIPHER_PASS")
	envString(c, &c.MetricsAddr, "ARCHFILTER_METRICS_ADDR")
	envString(c, &c.ResultSinkPath, "ARCHFILTER_RESULT_SINK")
	envString(c, &c.PersistenceAdapter, "ARCHFILTER_PERSISTENCE")
	envString(c, &c.RedisAddr, "ARCHFILTER_REDIS_ADDR")

	fs := flag.NewFlagSet("archfilter", flag.ContinueOnError)
	repoHost := fs.String("repo-host", c.RepoHost.Value, "remote repository host")
	repoHostUser := fs.String("repo-host-user", c.RepoHostUser.Value, "remote repository host user")
	repoHostCmd := fs.String("repo-host-cmd", c.RepoHostCmd.Value, "remote ssh command path")
	repoHostPort := fs.Int("repo-host-port", c.RepoHostPort.Value, "remote repository host port")
	processMax := fs.Int("process-max", c.ProcessMax.Value, "maximum local worker processes")
	process := fs.Int("process", c.Process.Value, "this process's worker id")
	command := fs.String("command", c.Command.Value, "the command being executed")
	stanza := fs.String("stanza", c.Stanza.Value, "the stanza being operated on")
	logLevel := fs.String("log-level", c.LogLevel.Value, "log verbosity")
	metricsAddr := fs.String("metrics-addr", c.MetricsAddr.Value, "address to serve Prometheus metrics on")
	resultSink := fs.String("result-sink", c.ResultSinkPath.Value, "path to the JSONL result sink")
	persistence := fs.String("persistence", c.PersistenceAdapter.Value, "persistence adapter: mock|redis|postgres")
	protocolTimeout := fs.Duration("protocol-timeout", c.ProtocolTimeout.Value, "worker protocol timeout")
	inputPath := fs.String("input", c.InputPath.Value, "path to the file run reads and dispatches to a worker")
	outputPath := fs.String("output", c.OutputPath.Value, "path the worker writes its filtered output to")
	filtersFlag := fs.String("filters", c.Filters.Value, "comma-separated filter chain, e.g. size,hash,gzip-compress")
	redisAddr := fs.String("redis-addr", c.RedisAddr.Value, "redis host:port, required by --persistence=redis")
	typ := fs.String("type", c.Type.Value, "repository type a worker serves")
	fs.Int("host-id", 0, "host id assigned to a local worker")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	setFlagString(fs, "repo-host", &c.RepoHost, *repoHost)
	setFlagString(fs, "repo-host-user", &c.RepoHostUser, *repoHostUser)
	setFlagString(fs, "repo-host-cmd", &c.RepoHostCmd, *repoHostCmd)
	setFlagInt(fs, "repo-host-port", &c.RepoHostPort, *repoHostPort)
	setFlagInt(fs, "process-max", &c.ProcessMax, *processMax)
	setFlagInt(fs, "process", &c.Process, *process)
	setFlagString(fs, "command", &c.Command, *command)
	setFlagString(fs, "stanza", &c.Stanza, *stanza)
	setFlagString(fs, "log-level", &c.LogLevel, *logLevel)
	setFlagString(fs, "metrics-addr", &c.MetricsAddr, *metricsAddr)
	setFlagString(fs, "result-sink", &c.ResultSinkPath, *resultSink)
	setFlagString(fs, "persistence", &c.PersistenceAdapter, *persistence)
	setFlagDuration(fs, "protocol-timeout", &c.ProtocolTimeout, *protocolTimeout)
	setFlagString(fs, "input", &c.InputPath, *inputPath)
	setFlagString(fs, "output", &c.OutputPath, *outputPath)
	setFlagString(fs, "filters", &c.Filters, *filtersFlag)
	setFlagString(fs, "redis-addr", &c.RedisAddr, *redisAddr)
	setFlagString(fs, "type", &c.Type, *typ)

	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	c.SelfExe = exe

	return c, nil
}

func setFlagString(fs *flag.FlagSet, name string, o *Option[string], v string) {
	if flagWasSet(fs, name) {
		o.Set(v, SourceFlag)
	} else if v != "" && o.IsDefault() {
		o.Value = v
	}
}

func setFlagInt(fs *flag.FlagSet, name string, o *Option[int], v int) {
	if flagWasSet(fs, name) {
		o.Set(v, SourceFlag)
	}
}

func setFlagDuration(fs *flag.FlagSet, name string, o *Option[time.Duration], v time.Duration) {
	if flagWasSet(fs, name) {
		o.Set(v, SourceFlag)
	}
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
