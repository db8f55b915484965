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
	"sync"
)

// MockPersister is an in-process IdempotentPersister for tests and
// demos: it keeps applied entries in memory, keyed by CommitID.
type MockPersister struct {
	mu      sync.Mutex
	applied map[string]CommitEntry
}

// NewMockPersister builds an empty MockPersister.
func NewMockPersister() *MockPersister {
	return &MockPersister{applied: make(map[string]CommitEntry)}
}

// CommitBatch records each entry once; a repeated CommitID is a no-op.
func (m *MockPersister) CommitBatch(ctx context.Context, entries []CommitEntry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if _, ok := m.applied[e.CommitID]; ok {
			continue
		}
		m.applied[e.CommitID] = e
	}
	return nil
}

// Applied returns a copy of every entry committed so far, for assertions
// in tests.
func (m *MockPersister) Applied() []CommitEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CommitEntry, 0, len(m.applied))
	for _, e := range m.applied {
		out = append(out, e)
	}
	return out
}
