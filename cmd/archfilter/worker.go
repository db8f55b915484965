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
	"errors"
	"fmt"
	"io"
	"os"

	"archfilter/internal/config"
	"archfilter/internal/iofilter"
	"archfilter/internal/protocol"
)

// serve runs a worker's request loop over stdin/stdout: a handshake,
// then requests until "terminate" or EOF. Both the local and remote
// binaries share this loop; only the announced service name differs.
func serve(cfg *config.Config, service string) error {
	if err := protocol.Handshake("worker", service, os.Stdout, os.Stdin); err != nil {
		return err
	}

	for {
		var req protocol.RequestFrame
		if err := protocol.ReadFrame(os.Stdin, &req); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch req.Command {
		case "terminate":
			return nil
		case "option":
			respondOption(cfg, req.Params)
		case "filter":
			respondFilter(req.Params)
		default:
			writeErrorResponse("unknown-command", fmt.Sprintf("worker: unknown command %q", req.Command))
		}
	}
}

func writeOKResponse(value any) {
	_ = protocol.WriteFrame(os.Stdout, protocol.ResponseFrame{OK: true, Value: value})
}

func writeErrorResponse(code, message string) {
	_ = protocol.WriteFrame(os.Stdout, protocol.ResponseFrame{
		OK:    false,
		Error: &protocol.ResponseError{Code: code, Message: message},
	})
}

// respondOption answers a cipher-inheritance style query: the remote
// worker's Config is asked for a named value so the main process can
// adopt it when it has none of its own configured.
func respondOption(cfg *config.Config, params map[string]any) {
	name, _ := params["name"].(string)
	switch name {
	case "repo-cipher-type":
		writeOKResponse(cfg.RepoCipherType.Value)
	case "repo-cipher-pass":
		writeOKResponse(cfg.RepoCipherPass.Value)
	default:
		writeErrorResponse("unknown-option", fmt.Sprintf("worker: unknown option %q", name))
	}
}

// respondFilter runs the requested filter chain between two local paths
// and returns each stage's summary result.
func respondFilter(params map[string]any) {
	inputPath, _ := params["input"].(string)
	outputPath, _ := params["output"].(string)
	spec, _ := params["filters"].(string)

	if inputPath == "" || outputPath == "" {
		writeErrorResponse("invalid-params", "worker: filter requires input and output paths")
		return
	}

	results, err := runFilterChain(inputPath, outputPath, spec)
	if err != nil {
		writeErrorResponse("filter-failed", err.Error())
		return
	}
	writeOKResponse(results)
}

type stageResult struct {
	Stage string `json:"stage"`
	Value any    `json:"value"`
}

// runFilterChain drives a chain from inputPath to outputPath using the
// pull-side IoReader, then reports each stage's Result().
func runFilterChain(inputPath, outputPath, spec string) ([]stageResult, error) {
	chain, types, err := buildChain(spec)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("worker: open %s: %w", inputPath, err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("worker: create %s: %w", outputPath, err)
	}
	defer out.Close()

	src := iofilter.NewHandleIO(inputPath, in)
	reader := iofilter.NewIoReader(src, chain, blockSize)

	if _, err := io.Copy(out, reader); err != nil {
		return nil, fmt.Errorf("worker: filter %s -> %s: %w", inputPath, outputPath, err)
	}

	results := make([]stageResult, 0, len(types))
	for _, typ := range types {
		v, err := chain.Result(typ)
		if err != nil {
			continue
		}
		results = append(results, stageResult{Stage: string(typ), Value: v})
	}
	return results, nil
}
