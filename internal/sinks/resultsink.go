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

// Package sinks persists FilterResult records to durable storage.
package sinks

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// FilterResult is one chain stage's final summary, durable enough to
// survive the process that produced it.
type FilterResult struct {
	ChainID   string    `json:"chainId"`
	Stage     string    `json:"stage"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// ResultSink appends FilterResult records to a JSONL log for audit and
// replay, buffering writes and flushing on a time cadence.
type ResultSink struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	path string

	lastFlush    time.Time
	flushPeriod  time.Duration
}

// NewResultSink opens path for append, creating it if necessary.
func NewResultSink(path string) (*ResultSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &ResultSink{
		f:           f,
		w:           bufio.NewWriterSize(f, 1<<20),
		path:        path,
		lastFlush:   time.Now(),
		flushPeriod: 100 * time.Millisecond,
	}, nil
}

// Record appends one result, flushing if the cadence has elapsed.
func (s *ResultSink) Record(r FilterResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.w)
	if err := enc.Encode(&r); err != nil {
		return err
	}
	if time.Since(s.lastFlush) > s.flushPeriod {
		s.lastFlush = time.Now()
		return s.w.Flush()
	}
	return nil
}

// RecordAll appends a batch of results under a single lock acquisition.
func (s *ResultSink) RecordAll(results []FilterResult) error {
	if len(results) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.w)
	for i := range results {
		if err := enc.Encode(&results[i]); err != nil {
			return err
		}
	}
	if time.Since(s.lastFlush) > s.flushPeriod {
		s.lastFlush = time.Now()
		return s.w.Flush()
	}
	return nil
}

// Flush forces buffered writes to disk.
func (s *ResultSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFlush = time.Now()
	return s.w.Flush()
}

// Close flushes and closes the underlying file.
func (s *ResultSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.w.Flush()
	return s.f.Close()
}

// ReadAllResults reads every record from path for replay or audit
// tooling.
func ReadAllResults(path string) ([]FilterResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []FilterResult
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 1<<20)
	scanner.Buffer(buf, 1<<26)
	for scanner.Scan() {
		var r FilterResult
		if err := json.Unmarshal(scanner.Bytes(), &r); err == nil {
			out = append(out, r)
		}
	}
	return out, scanner.Err()
}
