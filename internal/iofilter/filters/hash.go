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

package filters

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"

	"archfilter/internal/iofilter"
)

// TypeHash identifies a HashFilter in a chain.
const TypeHash iofilter.FilterType = "hash"

// HashFilter is a sink that feeds every byte it sees into a hash.Hash and
// reports the hex digest once the stream closes.
type HashFilter struct {
	mu sync.Mutex
	h  hash.Hash
}

// NewHashFilter builds the driver around newHash, e.g. sha256.New. Passing
// nil defaults to SHA-256.
func NewHashFilter(newHash func() hash.Hash) (*iofilter.Driver, *HashFilter) {
	if newHash == nil {
		newHash = sha256.New
	}
	f := &HashFilter{h: newHash()}
	d, err := iofilter.NewDriver(TypeHash, iofilter.Interface{
		ProcessIn: f.processIn,
		Result:    f.result,
	})
	if err != nil {
		panic(err)
	}
	return d, f
}

func (f *HashFilter) processIn(input *iofilter.Buffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.h.Write(input.Bytes())
	return err
}

// Digest returns the hex-encoded digest computed so far.
func (f *HashFilter) Digest() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return hex.EncodeToString(f.h.Sum(nil))
}

func (f *HashFilter) result() (any, error) {
	return f.Digest(), nil
}
