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
	"context"
	"errors"
	"fmt"
	"sync"

	"archfilter/internal/config"
	"archfilter/internal/execchild"
	"archfilter/internal/protocol"
)

const (
	ServiceLocal  = "local"
	ServiceRemote = "remote"
)

var ErrSlotOutOfRange = errors.New("protocolhelper: worker id out of range")

type slotState int

const (
	slotEmpty slotState = iota
	slotOpening
	slotReady
	slotClosing
)

// slot pairs an ExecChild and the ProtocolClient wrapping its stdio; both
// fields are either both present or both absent.
type slot struct {
	state  slotState
	child  *execchild.Child
	client *protocol.Client
}

// Metrics is the subset of observability hooks the helper calls into.
// Implementations are expected to be no-op safe to leave nil.
type Metrics interface {
	WorkerSpawned(kind string)
	WorkerSpawnFailed(kind string)
}

// Helper is the process-wide cache of local and remote worker
// connections. Construct with New, which binds the Config every lookup
// reads; slots are allocated lazily.
type Helper struct {
	cfg     *config.Config
	metrics Metrics

	mu      sync.Mutex
	locals  []slot
	remotes []slot
}

// New builds a Helper bound to cfg. metrics may be nil.
func New(cfg *config.Config, metrics Metrics) *Helper {
	return &Helper{cfg: cfg, metrics: metrics}
}

// RepoIsLocal reports whether the repository is local: true exactly when
// no remote repository host is configured.
func (h *Helper) RepoIsLocal() bool { return !h.cfg.RepoHostSet() }

func (h *Helper) spawned(kind string) {
	if h.metrics != nil {
		h.metrics.WorkerSpawned(kind)
	}
}

func (h *Helper) spawnFailed(kind string) {
	if h.metrics != nil {
		h.metrics.WorkerSpawnFailed(kind)
	}
}

// ProtocolLocalGet returns the cached local worker client for processID,
// spawning it on first access. processID is 1-based to match the
// original's protocol id convention. storageType must be
// StorageTypeRepo; the helper does not yet support spawning workers
// against pg storage.
func (h *Helper) ProtocolLocalGet(ctx context.Context, storageType StorageType, processID int) (*protocol.Client, error) {
	if storageType != StorageTypeRepo {
		return nil, fmt.Errorf("%w: %s", ErrStorageTypeUnsupported, storageType)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.locals) == 0 {
		h.locals = make([]slot, h.cfg.ProcessMax.Value)
	}
	idx := processID - 1
	if idx < 0 || idx >= len(h.locals) {
		return nil, fmt.Errorf("%w: local process %d (max %d)", ErrSlotOutOfRange, processID, len(h.locals))
	}

	s := &h.locals[idx]
	if s.state == slotReady {
		return s.client, nil
	}

	s.state = slotOpening
	name := fmt.Sprintf("local-%d", processID)
	child := execchild.New(name+" process", h.cfg.SelfExe, localParam(h.cfg, processID), h.cfg.ProtocolTimeout.Value)
	if err := child.Open(ctx); err != nil {
		s.state = slotEmpty
		h.spawnFailed("local")
		return nil, fmt.Errorf("protocolhelper: spawn %s: %w", name, err)
	}

	client, err := protocol.NewClient(name+" protocol", ServiceLocal, child.Stdin(), child.Stdout(), child.Stdin())
	if err != nil {
		child.Free()
		s.state = slotEmpty
		h.spawnFailed("local")
		return nil, err
	}

	s.child = child
	s.client = client
	s.state = slotReady
	h.spawned("local")
	return client, nil
}

// ProtocolRemoteGet returns the cached remote worker client, spawning the
// ssh-wrapped remote process on first access and inheriting cipher
// settings from it if none are locally configured. storageType must be
// StorageTypeRepo; the helper does not yet support spawning workers
// against pg storage.
func (h *Helper) ProtocolRemoteGet(ctx context.Context, storageType StorageType, pgIndexTotal, repoIndexTotal int) (*protocol.Client, error) {
	if storageType != StorageTypeRepo {
		return nil, fmt.Errorf("%w: %s", ErrStorageTypeUnsupported, storageType)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if pgIndexTotal < repoIndexTotal {
		return nil, fmt.Errorf("protocolhelper: pg index total (%d) must be >= repo index total (%d)", pgIndexTotal, repoIndexTotal)
	}

	if len(h.remotes) == 0 {
		size := pgIndexTotal
		if repoIndexTotal > size {
			size = repoIndexTotal
		}
		h.remotes = make([]slot, size+1)
	}

	processID := 0
	if !h.cfg.Process.IsDefault() {
		processID = h.cfg.Process.Value
	}
	if processID < 0 || processID >= len(h.remotes) {
		return nil, fmt.Errorf("%w: remote process %d (max %d)", ErrSlotOutOfRange, processID, len(h.remotes)-1)
	}

	s := &h.remotes[processID]
	if s.state == slotReady {
		return s.client, nil
	}

	s.state = slotOpening
	name := fmt.Sprintf("remote-%d on '%s'", processID, h.cfg.RepoHost.Value)
	child := execchild.New(name+" process", h.cfg.CmdSsh.Value, remoteShellParam(h.cfg, processID), h.cfg.ProtocolTimeout.Value)
	if err := child.Open(ctx); err != nil {
		s.state = slotEmpty
		h.spawnFailed("remote")
		return nil, fmt.Errorf("protocolhelper: spawn %s: %w", name, err)
	}

	client, err := protocol.NewClient(name+" protocol", ServiceRemote, child.Stdin(), child.Stdout(), child.Stdin())
	if err != nil {
		child.Free()
		s.state = slotEmpty
		h.spawnFailed("remote")
		return nil, err
	}

	if h.cfg.RepoCipherType.Value == "none" || h.cfg.RepoCipherType.IsDefault() {
		values, err := client.Option(ctx, "repo-cipher-type", "repo-cipher-pass")
		if err == nil && len(values) == 2 {
			if cipherType, ok := values[0].(string); ok && cipherType != "none" {
				h.cfg.RepoCipherType.Set(cipherType, config.SourceConfig)
				if cipherPass, ok := values[1].(string); ok {
					h.cfg.RepoCipherPass.Set(cipherPass, config.SourceConfig)
				}
			}
		}
	}

	s.child = child
	s.client = client
	s.state = slotReady
	h.spawned("remote")
	return client, nil
}

// ProtocolFree tears down every cached slot in both arrays: closing the
// ProtocolClient first (it sends the session-terminate message the
// worker needs to exit cleanly) and then the ExecChild. Idempotent and
// safe to call even if nothing was ever spawned. Any non-clean child
// exit is returned as a sentinel-wrapped ExecStatus error, joined across
// every slot freed in this call.
func (h *Helper) ProtocolFree() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	freeAll := func(slots []slot) {
		for i := range slots {
			s := &slots[i]
			if s.state != slotReady {
				continue
			}
			s.state = slotClosing
			if s.client != nil {
				_ = s.client.Close()
			}
			if s.child != nil {
				if res := s.child.Free(); res.Err != nil {
					errs = append(errs, res.Err)
				}
			}
			s.client = nil
			s.child = nil
			s.state = slotEmpty
		}
	}

	freeAll(h.locals)
	freeAll(h.remotes)
	return errors.Join(errs...)
}
