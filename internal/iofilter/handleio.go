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

import (
	"fmt"
	"io"
)

// HandleIO wraps an *os.File-like endpoint (or any io.ReadWriteCloser) as
// the concrete byte source/sink a Chain pulls from or pushes to.
type HandleIO struct {
	name string
	rw   io.ReadWriteCloser
}

// NewHandleIO names an endpoint for error messages and wraps it.
func NewHandleIO(name string, rw io.ReadWriteCloser) *HandleIO {
	return &HandleIO{name: name, rw: rw}
}

func (h *HandleIO) Close() error { return h.rw.Close() }

// IoReader pulls bytes from a HandleIO source, runs them through a Chain,
// and exposes the filtered result as an io.Reader. It implements the pull
// side of the filter façade.
type IoReader struct {
	src    *HandleIO
	chain  *Chain
	input  *Buffer
	eof    bool
	closed bool
}

// NewIoReader wires src as the chain's source with the given block size
// for the chain's internal input staging buffer.
func NewIoReader(src *HandleIO, chain *Chain, blockSize int) *IoReader {
	return &IoReader{src: src, chain: chain, input: NewBuffer(blockSize)}
}

// Read fills p with filtered bytes, pulling more from the source and
// driving the chain as needed. Returns io.EOF once the chain has flushed
// fully and produced no further bytes.
func (r *IoReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, fmt.Errorf("%w: %s", ErrFilterClosed, r.src.name)
	}
	output := NewBuffer(len(p))
	for {
		if !r.eof && r.input.Used() == 0 {
			n, err := r.src.rw.Read(r.input.WritableTail())
			if n > 0 {
				r.input.Grow(n)
			}
			if err == io.EOF {
				r.eof = true
			} else if err != nil {
				return 0, fmt.Errorf("%w: %s: %v", ErrIoRead, r.src.name, err)
			}
		}

		if !r.eof {
			if err := r.chain.Process(r.input, output); err != nil {
				return 0, err
			}
			if !r.chain.Pending() {
				r.input.Clear()
			}
			if output.Used() > 0 {
				break
			}
			continue
		}

		done, err := r.chain.Close(output)
		if err != nil {
			return 0, err
		}
		if output.Used() > 0 {
			break
		}
		if done {
			return 0, io.EOF
		}
	}
	n := copy(p, output.Bytes())
	return n, nil
}

// IoWriter pushes caller-supplied bytes through a Chain into a HandleIO
// sink. It implements the push side of the filter façade.
type IoWriter struct {
	dst    *HandleIO
	chain  *Chain
	output *Buffer
	closed bool
}

// NewIoWriter wires dst as the chain's sink with the given block size for
// the chain's internal output staging buffer.
func NewIoWriter(dst *HandleIO, chain *Chain, blockSize int) *IoWriter {
	return &IoWriter{dst: dst, chain: chain, output: NewBuffer(blockSize)}
}

// Write drains p through the chain, flushing staged output to the sink
// whenever the chain's output buffer fills.
func (w *IoWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("%w: %s", ErrFilterClosed, w.dst.name)
	}
	input := NewBuffer(len(p))
	input.Append(p)
	for {
		w.output.Clear()
		if err := w.chain.Process(input, w.output); err != nil {
			return 0, err
		}
		if err := w.flush(); err != nil {
			return 0, err
		}
		if !w.chain.Pending() {
			break
		}
	}
	return len(p), nil
}

func (w *IoWriter) flush() error {
	if w.output.Used() == 0 {
		return nil
	}
	if _, err := w.dst.rw.Write(w.output.Bytes()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIoWrite, w.dst.name, err)
	}
	return nil
}

// Close flushes every remaining transform stage into the sink and marks
// the writer closed. Idempotent.
func (w *IoWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	for {
		w.output.Clear()
		done, err := w.chain.Close(w.output)
		if err != nil {
			return err
		}
		if err := w.flush(); err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}
