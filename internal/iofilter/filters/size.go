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

// Package filters supplies concrete FilterDriver implementations: the
// algorithms the core chain engine is deliberately ignorant of.
package filters

import (
	"sync/atomic"

	"archfilter/internal/iofilter"
)

// TypeSize identifies a SizeFilter in a chain.
const TypeSize iofilter.FilterType = "size"

// SizeFilter is a sink that counts the bytes it sees.
type SizeFilter struct {
	total atomic.Int64
}

// NewSizeFilter builds the driver.
func NewSizeFilter() (*iofilter.Driver, *SizeFilter) {
	f := &SizeFilter{}
	d, err := iofilter.NewDriver(TypeSize, iofilter.Interface{
		ProcessIn: f.processIn,
		Result:    f.result,
	})
	if err != nil {
		// NewDriver only fails on an inconsistent capability record; this
		// one is fixed at compile time and always valid.
		panic(err)
	}
	return d, f
}

func (f *SizeFilter) processIn(input *iofilter.Buffer) error {
	f.total.Add(int64(input.Used()))
	return nil
}

// Total returns the running byte count.
func (f *SizeFilter) Total() int64 { return f.total.Load() }

func (f *SizeFilter) result() (any, error) {
	return f.total.Load(), nil
}
