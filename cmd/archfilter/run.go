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

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"archfilter/internal/config"
	"archfilter/internal/metrics"
	"archfilter/internal/persistence"
	"archfilter/internal/protocol"
	"archfilter/internal/protocolhelper"
	"archfilter/internal/sinks"
)

// runMain is the main-process entry point: it loads Config, wires up
// metrics, persistence and the result sink, fans the requested filter
// job out to a local or remote worker via ProtocolHelper, and records
// the outcome before freeing every worker it spawned.
func runMain(args []string) {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.Fatalf("archfilter run: %v", err)
	}

	m := metrics.New()
	if cfg.MetricsAddr.Value != "" {
		go func() {
			fmt.Printf("archfilter: metrics listening on %s\n", cfg.MetricsAddr.Value)
			srv := &http.Server{Addr: cfg.MetricsAddr.Value, Handler: m.Handler()}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("archfilter: metrics server: %v", err)
			}
		}()
	}

	persister, err := persistence.Build(cfg.PersistenceAdapter.Value, persistence.Options{
		RedisAddr: cfg.RedisAddr.Value,
	})
	if err != nil {
		log.Fatalf("archfilter run: %v", err)
	}

	var sink *sinks.ResultSink
	if cfg.ResultSinkPath.Value != "" {
		sink, err = sinks.NewResultSink(cfg.ResultSinkPath.Value)
		if err != nil {
			log.Fatalf("archfilter run: result sink: %v", err)
		}
		defer sink.Close()
	}

	helper := protocolhelper.New(cfg, m)

	shutdownDone := make(chan struct{})
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-stop:
			fmt.Println("\narchfilter: received shutdown signal, freeing workers...")
			if err := helper.ProtocolFree(); err != nil {
				log.Printf("archfilter run: protocol free: %v", err)
			}
			os.Exit(130)
		case <-shutdownDone:
		}
	}()
	defer close(shutdownDone)
	defer func() {
		if err := helper.ProtocolFree(); err != nil {
			log.Printf("archfilter run: protocol free: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ProtocolTimeout.Value)
	defer cancel()

	client, err := dispatchClient(ctx, helper, cfg)
	if err != nil {
		log.Fatalf("archfilter run: %v", err)
	}

	value, err := client.Call(ctx, "filter", map[string]any{
		"input":   cfg.InputPath.Value,
		"output":  cfg.OutputPath.Value,
		"filters": cfg.Filters.Value,
	})
	m.ProtocolCall("filter", callStatus(err))
	if err != nil {
		log.Fatalf("archfilter run: filter call: %v", err)
	}

	chainID := fmt.Sprintf("%s-%d", cfg.Stanza.Value, time.Now().UnixNano())
	if err := recordResults(chainID, value, sink, persister); err != nil {
		log.Fatalf("archfilter run: record results: %v", err)
	}

	fmt.Println("archfilter: filter chain complete")
}

// dispatchClient returns the local or remote worker client for this job,
// depending on whether a remote repository host is configured.
func dispatchClient(ctx context.Context, helper *protocolhelper.Helper, cfg *config.Config) (*protocol.Client, error) {
	if helper.RepoIsLocal() {
		processID := cfg.Process.Value
		if processID <= 0 {
			processID = 1
		}
		return helper.ProtocolLocalGet(ctx, protocolhelper.StorageTypeRepo, processID)
	}
	return helper.ProtocolRemoteGet(ctx, protocolhelper.StorageTypeRepo, cfg.ProcessMax.Value, cfg.ProcessMax.Value)
}

func callStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
