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

// FilterType identifies a driver's kind so a chain can locate it later for
// result retrieval. Two drivers of the same type may appear in one chain
// (e.g. size before and after compression); Chain.Result returns the first
// match in registration order.
type FilterType string

// Interface is the capability record a FilterDriver is constructed with.
// Exactly one of ProcessIn or ProcessInOut must be set. A driver with
// ProcessIn must set Result. Done defaults to "true once InputSame is
// false" when nil.
type Interface struct {
	// ProcessIn is a pure sink stage: consumes input, produces no bytes,
	// accumulates internal state towards a Result.
	ProcessIn func(input *Buffer) error

	// ProcessInOut is a transform stage: consumes some of input, writes
	// into output. input is nil during flush.
	ProcessInOut func(input, output *Buffer) error

	// InputSame reports whether the last input was not fully consumed:
	// "call me again with the same input and a fresh output buffer."
	InputSame func() bool

	// Done reports whether the driver has no more internally buffered
	// bytes to emit. May be nil, in which case the chain treats the
	// driver as done whenever InputSame (or its absence) says so.
	Done func() bool

	// Result returns the driver's final typed summary. May be nil for
	// pure transforms that produce no summary.
	Result func() (any, error)
}

// Driver pairs a FilterType and its capability record. The zero value is
// not valid; construct with NewDriver.
type Driver struct {
	typ   FilterType
	iface Interface
}

// NewDriver validates the capability record and returns a Driver, or
// ErrFilterInterface if the combination is internally inconsistent: a
// driver must implement exactly one of ProcessIn/ProcessInOut, and a
// ProcessIn driver must implement Result.
func NewDriver(typ FilterType, iface Interface) (*Driver, error) {
	hasIn := iface.ProcessIn != nil
	hasInOut := iface.ProcessInOut != nil
	switch {
	case hasIn == hasInOut:
		return nil, fmt.Errorf("%w: %s must implement exactly one of ProcessIn/ProcessInOut", ErrFilterInterface, typ)
	case hasIn && iface.Result == nil:
		return nil, fmt.Errorf("%w: %s implements ProcessIn without Result", ErrFilterInterface, typ)
	}
	return &Driver{typ: typ, iface: iface}, nil
}

// Type returns the driver's FilterType.
func (d *Driver) Type() FilterType { return d.typ }

// IsSink reports whether the driver is a pure ProcessIn stage.
func (d *Driver) IsSink() bool { return d.iface.ProcessIn != nil }

func (d *Driver) processIn(input *Buffer) error { return d.iface.ProcessIn(input) }

func (d *Driver) processInOut(input, output *Buffer) error {
	return d.iface.ProcessInOut(input, output)
}

func (d *Driver) inputSame() bool {
	if d.iface.InputSame == nil {
		return false
	}
	return d.iface.InputSame()
}

func (d *Driver) done() bool {
	if d.iface.Done != nil {
		return d.iface.Done()
	}
	return !d.inputSame()
}

// Result returns the driver's summary, or ErrFilterResultMissing if the
// driver declares none.
func (d *Driver) Result() (any, error) {
	if d.iface.Result == nil {
		return nil, ErrFilterResultMissing
	}
	return d.iface.Result()
}
