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
	"testing"

	"archfilter/internal/iofilter"
)

func TestHashFilterMatchesStandardLibrary(t *testing.T) {
	driver, f := NewHashFilter(nil)
	chain := iofilter.NewChain(16, []*iofilter.Driver{driver})

	payload := []byte("hash me please")
	in := iofilter.NewBuffer(32)
	in.Append(payload)
	out := iofilter.NewBuffer(16)
	if err := chain.Process(in, out); err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := sha256.Sum256(payload)
	if got := f.Digest(); got != hex.EncodeToString(want[:]) {
		t.Fatalf("Digest() = %s, want %s", got, hex.EncodeToString(want[:]))
	}
}

func TestHashFilterAccumulatesAcrossCalls(t *testing.T) {
	driver, f := NewHashFilter(nil)
	chain := iofilter.NewChain(16, []*iofilter.Driver{driver})

	for _, chunk := range []string{"part one ", "part two"} {
		in := iofilter.NewBuffer(16)
		in.Append([]byte(chunk))
		out := iofilter.NewBuffer(16)
		if err := chain.Process(in, out); err != nil {
			t.Fatalf("Process(%q): %v", chunk, err)
		}
	}

	want := sha256.Sum256([]byte("part one part two"))
	if got := f.Digest(); got != hex.EncodeToString(want[:]) {
		t.Fatalf("Digest() = %s, want %s", got, hex.EncodeToString(want[:]))
	}
}
