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

import "archfilter/internal/iofilter"

// TypeBuffer identifies a BufferFilter in a chain.
const TypeBuffer iofilter.FilterType = "buffer"

// BufferFilter is an identity transform with an internal reservoir: it
// accepts a whole input chunk at once and drains it into the caller's
// output buffer across as many calls as the output capacity demands. It
// exercises InputSame on a trivial transform, independent of any real
// compression or encryption semantics.
type BufferFilter struct {
	reservoir []byte
	needInput bool
}

// NewBufferFilter builds the driver. capacity pre-sizes the reservoir; it
// is not a limit, and a larger input chunk grows the reservoir. 0 leaves
// the reservoir unallocated until the first input.
func NewBufferFilter(capacity int) (*iofilter.Driver, *BufferFilter) {
	f := &BufferFilter{needInput: true}
	if capacity > 0 {
		f.reservoir = make([]byte, 0, capacity)
	}
	d, err := iofilter.NewDriver(TypeBuffer, iofilter.Interface{
		ProcessInOut: f.processInOut,
		InputSame:    f.inputSame,
	})
	if err != nil {
		panic(err)
	}
	return d, f
}

func (f *BufferFilter) processInOut(input, output *iofilter.Buffer) error {
	if f.needInput && input != nil {
		f.reservoir = append(f.reservoir, input.Bytes()...)
		f.needInput = false
	}
	n := copy(output.WritableTail(), f.reservoir)
	output.Grow(n)
	f.reservoir = f.reservoir[n:]
	if len(f.reservoir) == 0 {
		f.needInput = true
	}
	return nil
}

func (f *BufferFilter) inputSame() bool { return len(f.reservoir) > 0 }
