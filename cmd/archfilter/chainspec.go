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
	"fmt"
	"strings"

	"archfilter/internal/iofilter"
	"archfilter/internal/iofilter/filters"
)

// blockSize is the scratch and staging buffer size used for every chain
// this binary builds. Chosen to match a typical archive block, not tuned
// for any particular filter.
const blockSize = 64 * 1024

// buildChain turns a comma-separated filter spec (e.g.
// "size,gzip-compress,hash") into an ordered Chain plus a lookup of each
// stage's FilterType, in the same order, for result collection after the
// chain closes.
func buildChain(spec string) (*iofilter.Chain, []iofilter.FilterType, error) {
	names := splitSpec(spec)
	if len(names) == 0 {
		names = []string{string(filters.TypeSize)}
	}

	drivers := make([]*iofilter.Driver, 0, len(names))
	types := make([]iofilter.FilterType, 0, len(names))

	for _, name := range names {
		var (
			d   *iofilter.Driver
			typ iofilter.FilterType
		)
		switch name {
		case string(filters.TypeSize):
			d, _ = filters.NewSizeFilter()
			typ = filters.TypeSize
		case string(filters.TypeHash):
			d, _ = filters.NewHashFilter(nil)
			typ = filters.TypeHash
		case string(filters.TypeBuffer):
			d, _ = filters.NewBufferFilter(blockSize)
			typ = filters.TypeBuffer
		case string(filters.TypeGzipCompress):
			var err error
			d, _, err = filters.NewGzipCompressFilter(0)
			if err != nil {
				return nil, nil, err
			}
			typ = filters.TypeGzipCompress
		case string(filters.TypeGzipDecompress):
			d, _ = filters.NewGzipDecompressFilter()
			typ = filters.TypeGzipDecompress
		default:
			return nil, nil, fmt.Errorf("archfilter: unknown filter %q", name)
		}
		drivers = append(drivers, d)
		types = append(types, typ)
	}

	return iofilter.NewChain(blockSize, drivers), types, nil
}

func splitSpec(spec string) []string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	parts := strings.Split(spec, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
