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

package iofilter

import "testing"

func TestBufferAppendAndBytes(t *testing.T) {
	b := NewBuffer(8)
	b.Append([]byte("abc"))
	if got := string(b.Bytes()); got != "abc" {
		t.Fatalf("Bytes() = %q, want %q", got, "abc")
	}
	if b.Used() != 3 {
		t.Fatalf("Used() = %d, want 3", b.Used())
	}
	if b.Remaining() != 5 {
		t.Fatalf("Remaining() = %d, want 5", b.Remaining())
	}
}

func TestBufferGrow(t *testing.T) {
	b := NewBuffer(4)
	copy(b.WritableTail(), []byte("xy"))
	b.Grow(2)
	if string(b.Bytes()) != "xy" {
		t.Fatalf("Bytes() = %q, want %q", b.Bytes(), "xy")
	}
	copy(b.WritableTail(), []byte("zz"))
	b.Grow(2)
	if !b.IsFull() {
		t.Fatalf("expected buffer to be full after growing to capacity")
	}
}

func TestBufferGrowOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic growing past remaining capacity")
		}
	}()
	b := NewBuffer(2)
	b.Grow(3)
}

func TestBufferAppendExceedsRemainingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic appending past remaining capacity")
		}
	}()
	b := NewBuffer(2)
	b.Append([]byte("abc"))
}

func TestBufferClearResetsUsed(t *testing.T) {
	b := NewBuffer(4)
	b.Append([]byte("ab"))
	b.Clear()
	if b.Used() != 0 {
		t.Fatalf("Used() after Clear() = %d, want 0", b.Used())
	}
	if len(b.Bytes()) != 0 {
		t.Fatalf("Bytes() after Clear() = %q, want empty", b.Bytes())
	}
}

func TestBufferAllocateGrowsCapacityPreservingContent(t *testing.T) {
	b := NewBuffer(2)
	b.Append([]byte("ab"))
	b.Allocate(8)
	if b.Size() != 8 {
		t.Fatalf("Size() after Allocate(8) = %d, want 8", b.Size())
	}
	if string(b.Bytes()) != "ab" {
		t.Fatalf("Bytes() after Allocate = %q, want %q", b.Bytes(), "ab")
	}
}
