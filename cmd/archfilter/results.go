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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"archfilter/internal/persistence"
	"archfilter/internal/sinks"
)

// recordResults decodes a worker's "filter" response (a JSON array of
// {stage, value} objects, arriving as the generic any the protocol layer
// hands back) into durable FilterResults and CommitEntries, and applies
// both the sink and the persister.
func recordResults(chainID string, value any, sink *sinks.ResultSink, persister persistence.IdempotentPersister) error {
	rows, ok := value.([]any)
	if !ok {
		return fmt.Errorf("archfilter: unexpected filter response shape %T", value)
	}

	results := make([]sinks.FilterResult, 0, len(rows))
	entries := make([]persistence.CommitEntry, 0, len(rows))
	now := time.Now()

	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		stage, _ := m["stage"].(string)
		results = append(results, sinks.FilterResult{
			ChainID:   chainID,
			Stage:     stage,
			Value:     m["value"],
			Timestamp: now,
		})
		entries = append(entries, persistence.CommitEntry{
			ChainID:  chainID,
			Stage:    stage,
			Digest:   digestOf(m["value"]),
			CommitID: fmt.Sprintf("%s/%s", chainID, stage),
		})
	}

	if sink != nil {
		if err := sink.RecordAll(results); err != nil {
			return err
		}
	}
	if persister != nil {
		if err := persister.CommitBatch(context.Background(), entries); err != nil {
			return err
		}
	}
	return nil
}

// digestOf renders a stage's result value as a stable hex digest. A
// HashFilter result is already a hex digest and is passed through
// unchanged; anything else is hashed so every CommitEntry carries a
// fixed-shape Digest regardless of which filter produced it.
func digestOf(value any) string {
	if s, ok := value.(string); ok && len(s) == hex.EncodedLen(sha256.Size) {
		if _, err := hex.DecodeString(s); err == nil {
			return s
		}
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%v", value)))
	return hex.EncodeToString(sum[:])
}
