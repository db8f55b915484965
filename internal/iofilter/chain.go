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

import "fmt"

type chainState int

const (
	chainOpen chainState = iota
	chainFlushing
	chainClosed
)

// pendingFrame is one entry of the chain's resumption stack. stage is the
// driver index the frame is (or will be) fed into; buf is the chunk to
// feed it. A flush frame ignores buf (flushed stages are always fed nil)
// and loops on Done() instead of InputSame().
type pendingFrame struct {
	stage int
	buf   *Buffer
	off   int
	flush bool
}

// Chain composes an ordered list of filter drivers between one source and
// one sink. It is the engine behind both the IoRead and IoWrite façades;
// both drive the same Process/Close state machine below.
type Chain struct {
	drivers   []*Driver
	blockSize int
	scratch   map[int]*Buffer

	state   chainState
	err     error
	pending []pendingFrame
}

// NewChain constructs a chain over drivers, in registration order.
// blockSize sizes the scratch buffers allocated between adjacent transform
// stages.
func NewChain(blockSize int, drivers []*Driver) *Chain {
	return &Chain{
		drivers:   drivers,
		blockSize: blockSize,
		scratch:   make(map[int]*Buffer),
	}
}

func (c *Chain) scratchFor(stage int) *Buffer {
	b, ok := c.scratch[stage]
	if !ok {
		b = NewBuffer(c.blockSize)
		c.scratch[stage] = b
	}
	return b
}

func (c *Chain) fail(err error) error {
	c.state = chainClosed
	c.err = err
	c.pending = nil
	return err
}

// Process feeds input through the chain, writing as much transformed
// output as fits into output. If a transform stage's InputSame is true and
// output filled before input drained, Process returns nil having made
// partial progress; the caller must call Process again with the SAME
// input buffer and a fresh (cleared) output buffer to continue. Once a
// call fully drains input through every stage, the next Process call
// starts a new traversal.
func (c *Chain) Process(input, output *Buffer) error {
	if c.err != nil {
		return c.err
	}
	if c.state != chainOpen {
		return fmt.Errorf("%w", ErrFilterClosed)
	}
	if len(c.pending) == 0 {
		c.pending = append(c.pending, pendingFrame{stage: 0, buf: input})
	}
	return c.run(output)
}

func (c *Chain) run(output *Buffer) error {
	n := len(c.drivers)
	for len(c.pending) > 0 {
		idx := len(c.pending) - 1
		stage := c.pending[idx].stage
		if stage >= n {
			// A chunk that passed every stage without a final transform
			// writing it into output is copied there now.
			f := &c.pending[idx]
			if !f.flush && f.buf != nil {
				k := copy(output.WritableTail(), f.buf.Bytes()[f.off:])
				output.Grow(k)
				f.off += k
				if f.off < f.buf.Used() {
					return nil
				}
			}
			c.pending = c.pending[:idx]
			continue
		}
		d := c.drivers[stage]

		if d.IsSink() {
			if !c.pending[idx].flush {
				if err := d.processIn(c.pending[idx].buf); err != nil {
					return c.fail(err)
				}
			}
			c.pending[idx].stage = stage + 1
			continue
		}

		isLast := stage == n-1
		flush := c.pending[idx].flush
		cur := c.pending[idx].buf

		if isLast {
			for {
				in := cur
				if flush {
					in = nil
				}
				if err := d.processInOut(in, output); err != nil {
					return c.fail(err)
				}
				if flush {
					if d.done() {
						break
					}
					if output.IsFull() {
						return nil
					}
					continue
				}
				if !d.inputSame() {
					break
				}
				if output.IsFull() {
					return nil
				}
			}
			c.pending[idx].stage = stage + 1
			c.pending[idx].buf = nil
			continue
		}

		next := c.scratchFor(stage)
		next.Clear()
		in := cur
		if flush {
			in = nil
		}
		if err := d.processInOut(in, next); err != nil {
			return c.fail(err)
		}

		if flush {
			stageDone := d.done()
			if stageDone {
				c.pending[idx].stage = stage + 1
			}
			if !stageDone || next.Used() > 0 {
				c.pending = append(c.pending, pendingFrame{stage: stage + 1, buf: next})
			}
			continue
		}

		if d.inputSame() {
			c.pending = append(c.pending, pendingFrame{stage: stage + 1, buf: next})
			continue
		}
		c.pending[idx].stage = stage + 1
		c.pending[idx].buf = next
	}
	return nil
}

// Close moves the chain from open to flushing on its first call and
// drains every transform stage's buffered output, front to back, into
// output. Returns (done=true) once every stage reports Done and the chain
// has moved to closed. If output fills before flushing completes, Close
// returns (false, nil); call again with a fresh output buffer.
func (c *Chain) Close(output *Buffer) (done bool, err error) {
	if c.err != nil {
		return false, c.err
	}
	if c.state == chainClosed {
		return true, nil
	}
	if c.state == chainOpen {
		c.state = chainFlushing
		c.pending = []pendingFrame{{stage: 0, buf: nil, flush: true}}
	}
	if err := c.run(output); err != nil {
		return false, err
	}
	if len(c.pending) == 0 {
		c.state = chainClosed
		return true, nil
	}
	return false, nil
}

// Result locates the first driver of the given type and returns its
// result. Fails with ErrFilterResultMissing if no driver of that type is
// registered or the matching driver declares no result.
func (c *Chain) Result(typ FilterType) (any, error) {
	for _, d := range c.drivers {
		if d.Type() == typ {
			return d.Result()
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFilterResultMissing, typ)
}

// Err returns the first error recorded by the chain, if any.
func (c *Chain) Err() error { return c.err }

// Pending reports whether the last Process or Close call stopped mid
// traversal because output filled before a stage finished draining.
// Callers must re-invoke with the same input (Process) or a fresh output
// buffer (both) until Pending is false.
func (c *Chain) Pending() bool { return len(c.pending) > 0 }
