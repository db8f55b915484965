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
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"archfilter/internal/iofilter"
)

// TypeGzipCompress and TypeGzipDecompress identify the two gzip transform
// directions in a chain.
const (
	TypeGzipCompress   iofilter.FilterType = "gzip-compress"
	TypeGzipDecompress iofilter.FilterType = "gzip-decompress"
)

type gzipSink struct{ buf []byte }

func (s *gzipSink) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// GzipCompressFilter streams input through a gzip.Writer. Because the
// writer may emit more compressed bytes than fit in one output buffer, it
// buffers its own backlog and exercises InputSame draining that backlog.
type GzipCompressFilter struct {
	gzw       *gzip.Writer
	sink      *gzipSink
	needInput bool
	closed    bool
}

// NewGzipCompressFilter builds the driver at the given compress/gzip
// level (gzip.DefaultCompression if 0).
func NewGzipCompressFilter(level int) (*iofilter.Driver, *GzipCompressFilter, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	sink := &gzipSink{}
	gzw, err := gzip.NewWriterLevel(sink, level)
	if err != nil {
		return nil, nil, fmt.Errorf("filters: gzip writer: %w", err)
	}
	f := &GzipCompressFilter{gzw: gzw, sink: sink, needInput: true}
	d, err := iofilter.NewDriver(TypeGzipCompress, iofilter.Interface{
		ProcessInOut: f.processInOut,
		InputSame:    f.inputSame,
		Done:         f.done,
	})
	if err != nil {
		panic(err)
	}
	return d, f, nil
}

func (f *GzipCompressFilter) processInOut(input, output *iofilter.Buffer) error {
	if input != nil {
		if f.needInput {
			if _, err := f.gzw.Write(input.Bytes()); err != nil {
				return fmt.Errorf("filters: gzip compress: %w", err)
			}
			f.needInput = false
		}
	} else if !f.closed {
		if err := f.gzw.Close(); err != nil {
			return fmt.Errorf("filters: gzip compress close: %w", err)
		}
		f.closed = true
	}
	n := copy(output.WritableTail(), f.sink.buf)
	output.Grow(n)
	f.sink.buf = f.sink.buf[n:]
	if len(f.sink.buf) == 0 && input != nil {
		f.needInput = true
	}
	return nil
}

func (f *GzipCompressFilter) inputSame() bool { return len(f.sink.buf) > 0 }
func (f *GzipCompressFilter) done() bool      { return f.closed && len(f.sink.buf) == 0 }

// GzipDecompressFilter reconstructs the original bytes from a gzip
// stream. Decompression needs the full compressed stream to satisfy
// back-references, so this driver accumulates input and runs the actual
// inflate pass once at flush, then drains the result like any other
// InputSame-bearing transform.
type GzipDecompressFilter struct {
	compressed []byte
	decoded    []byte
	pos        int
	started    bool
}

// NewGzipDecompressFilter builds the driver.
func NewGzipDecompressFilter() (*iofilter.Driver, *GzipDecompressFilter) {
	f := &GzipDecompressFilter{}
	d, err := iofilter.NewDriver(TypeGzipDecompress, iofilter.Interface{
		ProcessInOut: f.processInOut,
		InputSame:    f.inputSame,
		Done:         f.done,
	})
	if err != nil {
		panic(err)
	}
	return d, f
}

func (f *GzipDecompressFilter) processInOut(input, output *iofilter.Buffer) error {
	if input != nil {
		f.compressed = append(f.compressed, input.Bytes()...)
		return nil
	}
	if !f.started {
		gr, err := gzip.NewReader(bytes.NewReader(f.compressed))
		if err != nil {
			return fmt.Errorf("filters: gzip decompress: %w", err)
		}
		decoded, err := io.ReadAll(gr)
		if err != nil {
			return fmt.Errorf("filters: gzip decompress: %w", err)
		}
		f.decoded = decoded
		f.started = true
	}
	n := copy(output.WritableTail(), f.decoded[f.pos:])
	f.pos += n
	output.Grow(n)
	return nil
}

func (f *GzipDecompressFilter) inputSame() bool { return f.started && f.pos < len(f.decoded) }
func (f *GzipDecompressFilter) done() bool      { return f.started && f.pos >= len(f.decoded) }
