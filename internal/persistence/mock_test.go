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

package persistence

import (
	"context"
	"testing"
)

func TestMockPersisterCommitBatchIsIdempotent(t *testing.T) {
	m := NewMockPersister()
	entries := []CommitEntry{
		{ChainID: "c1", Stage: "size", Digest: "10", CommitID: "c1/size"},
	}
	if err := m.CommitBatch(context.Background(), entries); err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}
	if err := m.CommitBatch(context.Background(), entries); err != nil {
		t.Fatalf("CommitBatch (repeat): %v", err)
	}
	if got := m.Applied(); len(got) != 1 {
		t.Fatalf("Applied() = %v, want exactly one entry", got)
	}
}

func TestMockPersisterRespectsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMockPersister()
	err := m.CommitBatch(ctx, []CommitEntry{{ChainID: "c1", Stage: "size", CommitID: "c1/size"}})
	if err == nil {
		t.Fatalf("CommitBatch with canceled context: want error, got nil")
	}
}

func TestMockPersisterAppliedReturnsAllDistinctCommits(t *testing.T) {
	m := NewMockPersister()
	entries := []CommitEntry{
		{ChainID: "c1", Stage: "size", CommitID: "c1/size"},
		{ChainID: "c1", Stage: "hash", CommitID: "c1/hash"},
	}
	if err := m.CommitBatch(context.Background(), entries); err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}
	if got := m.Applied(); len(got) != 2 {
		t.Fatalf("Applied() = %v, want 2 entries", got)
	}
}
