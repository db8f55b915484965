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

package protocol

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

// chanConn is a buffered, non-rendezvous duplex connection: unlike
// io.Pipe, a Write does not block waiting for a matching Read, so a
// client and a fake server can each write their handshake frame before
// either has read the other's, exactly as real OS pipes behave.
type chanConn struct {
	in  chan []byte
	out chan []byte
	buf []byte
}

func (c *chanConn) Read(p []byte) (int, error) {
	if len(c.buf) == 0 {
		b, ok := <-c.in
		if !ok {
			return 0, io.EOF
		}
		c.buf = b
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, nil
}

func (c *chanConn) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	c.out <- cp
	return len(p), nil
}

func (c *chanConn) Close() error { return nil }

// pipePair wires a Client to a fake server goroutine over two chanConn
// endpoints, mirroring how a real Client talks to a worker's
// stdin/stdout.
type pipePair struct {
	clientW *chanConn
	clientR *chanConn
	serverW *chanConn
	serverR *chanConn
}

func newPipePair() *pipePair {
	a := make(chan []byte, 32)
	b := make(chan []byte, 32)
	client := &chanConn{in: a, out: b}
	server := &chanConn{in: b, out: a}
	return &pipePair{clientW: client, clientR: client, serverW: server, serverR: server}
}

func TestHandshakeSucceedsOnMatchingService(t *testing.T) {
	p := newPipePair()
	done := make(chan error, 1)
	go func() {
		done <- Handshake("server", "local", p.serverW, p.serverR)
	}()

	if err := Handshake("client", "local", p.clientW, p.clientR); err != nil {
		t.Fatalf("client handshake: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("server handshake: %v", err)
	}
}

func TestHandshakeFailsOnServiceMismatch(t *testing.T) {
	p := newPipePair()
	go func() { _ = Handshake("server", "remote", p.serverW, p.serverR) }()

	err := Handshake("client", "local", p.clientW, p.clientR)
	if !errors.Is(err, ErrHandshake) {
		t.Fatalf("err = %v, want ErrHandshake", err)
	}
}

func TestClientCallRoundTrip(t *testing.T) {
	p := newPipePair()
	go func() {
		_ = Handshake("server", "local", p.serverW, p.serverR)
		var req RequestFrame
		if err := ReadFrame(p.serverR, &req); err != nil {
			return
		}
		_ = WriteFrame(p.serverW, ResponseFrame{OK: true, Value: "pong"})
	}()

	client, err := NewClient("client", "local", p.clientW, p.clientR, p.clientW)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	v, err := client.Call(context.Background(), "ping", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != "pong" {
		t.Fatalf("Call result = %v, want %q", v, "pong")
	}
}

func TestClientCallReturnsPeerError(t *testing.T) {
	p := newPipePair()
	go func() {
		_ = Handshake("server", "local", p.serverW, p.serverR)
		var req RequestFrame
		if err := ReadFrame(p.serverR, &req); err != nil {
			return
		}
		_ = WriteFrame(p.serverW, ResponseFrame{
			OK:    false,
			Error: &ResponseError{Code: "bad-input", Message: "nope"},
		})
	}()

	client, err := NewClient("client", "local", p.clientW, p.clientR, p.clientW)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Call(context.Background(), "ping", nil)
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("err = %v, want *ResponseError", err)
	}
	if respErr.Code != "bad-input" {
		t.Fatalf("Code = %q, want %q", respErr.Code, "bad-input")
	}
}

func TestClientCallTimesOutAgainstUnresponsivePeer(t *testing.T) {
	p := newPipePair()
	go func() {
		_ = Handshake("server", "local", p.serverW, p.serverR)
		// Never reads the request or writes a response.
	}()

	client, err := NewClient("client", "local", p.clientW, p.clientR, p.clientW)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.Call(ctx, "ping", nil)
	if !errors.Is(err, ErrProtocolTimeout) {
		t.Fatalf("err = %v, want ErrProtocolTimeout", err)
	}
}
