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

package sinks

import (
	"path/filepath"
	"testing"
	"time"
)

func TestResultSinkRecordAllAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	s, err := NewResultSink(path)
	if err != nil {
		t.Fatalf("NewResultSink: %v", err)
	}

	results := []FilterResult{
		{ChainID: "chain-1", Stage: "size", Value: float64(1024), Timestamp: time.Now()},
		{ChainID: "chain-1", Stage: "hash", Value: "deadbeef", Timestamp: time.Now()},
	}
	if err := s.RecordAll(results); err != nil {
		t.Fatalf("RecordAll: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadAllResults(path)
	if err != nil {
		t.Fatalf("ReadAllResults: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0].Stage != "size" || got[1].Stage != "hash" {
		t.Fatalf("got = %+v, want size then hash", got)
	}
}

func TestResultSinkRecordAllEmptyIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	s, err := NewResultSink(path)
	if err != nil {
		t.Fatalf("NewResultSink: %v", err)
	}
	defer s.Close()

	if err := s.RecordAll(nil); err != nil {
		t.Fatalf("RecordAll(nil): %v", err)
	}
}

func TestResultSinkFlushMakesRecordsVisibleBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	s, err := NewResultSink(path)
	if err != nil {
		t.Fatalf("NewResultSink: %v", err)
	}
	defer s.Close()

	if err := s.Record(FilterResult{ChainID: "chain-2", Stage: "size", Value: float64(10)}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := ReadAllResults(path)
	if err != nil {
		t.Fatalf("ReadAllResults: %v", err)
	}
	if len(got) != 1 || got[0].ChainID != "chain-2" {
		t.Fatalf("got = %+v, want one chain-2 record", got)
	}
}

func TestReadAllResultsMissingFile(t *testing.T) {
	if _, err := ReadAllResults(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Fatalf("ReadAllResults on missing file: want error, got nil")
	}
}
