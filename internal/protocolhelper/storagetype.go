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

import "errors"

// StorageType distinguishes which storage a worker connection is being
// requested for. The original protocol helper threads this through every
// local/remote lookup so the same cache can one day serve PostgreSQL
// remotes as well as repository ones; only StorageTypeRepo is wired up
// today.
type StorageType int

const (
	StorageTypeRepo StorageType = iota
	StorageTypePg
)

func (t StorageType) String() string {
	switch t {
	case StorageTypeRepo:
		return "repo"
	case StorageTypePg:
		return "pg"
	default:
		return "unknown"
	}
}

// ErrStorageTypeUnsupported is returned by ProtocolLocalGet/ProtocolRemoteGet
// for any StorageType other than StorageTypeRepo. Hard-coded until the
// helper supports pg remotes, matching the original's
// "ASSERT(protocolStorageType == protocolStorageTypeRepo)" until that
// feature lands.
var ErrStorageTypeUnsupported = errors.New("protocolhelper: storage type not supported")
