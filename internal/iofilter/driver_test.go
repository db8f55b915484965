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
	"errors"
	"testing"
)

func TestNewDriverRejectsNeitherProcessFunc(t *testing.T) {
	_, err := NewDriver("empty", Interface{})
	if !errors.Is(err, ErrFilterInterface) {
		t.Fatalf("err = %v, want ErrFilterInterface", err)
	}
}

func TestNewDriverRejectsBothProcessFuncs(t *testing.T) {
	_, err := NewDriver("both", Interface{
		ProcessIn:    func(*Buffer) error { return nil },
		ProcessInOut: func(*Buffer, *Buffer) error { return nil },
	})
	if !errors.Is(err, ErrFilterInterface) {
		t.Fatalf("err = %v, want ErrFilterInterface", err)
	}
}

func TestNewDriverRejectsSinkWithoutResult(t *testing.T) {
	_, err := NewDriver("sink", Interface{ProcessIn: func(*Buffer) error { return nil }})
	if !errors.Is(err, ErrFilterInterface) {
		t.Fatalf("err = %v, want ErrFilterInterface", err)
	}
}

func TestDriverIsSink(t *testing.T) {
	sink, err := NewDriver("sink", Interface{
		ProcessIn: func(*Buffer) error { return nil },
		Result:    func() (any, error) { return nil, nil },
	})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	if !sink.IsSink() {
		t.Fatal("expected sink driver to report IsSink() == true")
	}

	transform, err := NewDriver("transform", Interface{
		ProcessInOut: func(*Buffer, *Buffer) error { return nil },
	})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	if transform.IsSink() {
		t.Fatal("expected transform driver to report IsSink() == false")
	}
}

func TestDriverDoneDefaultsToNotInputSame(t *testing.T) {
	same := true
	d, err := NewDriver("t", Interface{
		ProcessInOut: func(*Buffer, *Buffer) error { return nil },
		InputSame:    func() bool { return same },
	})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	if d.done() {
		t.Fatal("done() should be false while InputSame() is true")
	}
	same = false
	if !d.done() {
		t.Fatal("done() should be true once InputSame() is false")
	}
}

func TestDriverResultMissing(t *testing.T) {
	d, err := NewDriver("t", Interface{ProcessInOut: func(*Buffer, *Buffer) error { return nil }})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	if _, err := d.Result(); !errors.Is(err, ErrFilterResultMissing) {
		t.Fatalf("Result() err = %v, want ErrFilterResultMissing", err)
	}
}
