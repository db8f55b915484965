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
	"fmt"
	"io"
	"sync"
)

// handshakeFrame is exchanged once, immediately after a client is
// constructed, to confirm both ends agree on the service name.
type handshakeFrame struct {
	Service string `json:"service"`
}

// Client frames requests and responses over a pair of endpoints (usually
// a worker's stdin/stdout). A Client serves one caller at a time; it does
// not multiplex concurrent calls.
type Client struct {
	name string
	w    io.Writer
	r    io.Reader
	c    io.Closer

	mu sync.Mutex
}

// Handshake exchanges a service identifier frame with the peer and fails
// with ErrHandshake if the peer announces a different service. Both the
// client and the worker-side server call this with the same service
// name, each from its own end of the pipe pair.
func Handshake(name, service string, w io.Writer, r io.Reader) error {
	if err := WriteFrame(w, handshakeFrame{Service: service}); err != nil {
		return fmt.Errorf("protocol: %s handshake send: %w", name, err)
	}
	var peer handshakeFrame
	if err := ReadFrame(r, &peer); err != nil {
		return fmt.Errorf("protocol: %s handshake recv: %w", name, err)
	}
	if peer.Service != service {
		return fmt.Errorf("%w: %s expected %q, peer announced %q", ErrHandshake, name, service, peer.Service)
	}
	return nil
}

// NewClient performs the handshake over w/r and returns a ready Client
// named name (used in diagnostics, e.g. "local-3" or "remote"). service
// is the identifier this side announces and expects back.
func NewClient(name, service string, w io.Writer, r io.Reader, c io.Closer) (*Client, error) {
	if err := Handshake(name, service, w, r); err != nil {
		return nil, err
	}
	return &Client{name: name, w: w, r: r, c: c}, nil
}

// Name returns the client's diagnostic name.
func (c *Client) Name() string { return c.name }

// callResult carries the outcome of a blocking write+read pair back to
// Call across the goroutine boundary.
type callResult struct {
	value any
	err   error
}

// Call writes a request and reads exactly one response, returning the
// response value or the peer's coded error. The write and read run on a
// background goroutine raced against ctx so a worker that never answers
// fails with ErrProtocolTimeout instead of blocking the caller forever;
// the underlying pipes have no portable deadline support, so the
// goroutine itself is left to unwind whenever the peer eventually closes
// or responds.
func (c *Client) Call(ctx context.Context, command string, params map[string]any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	done := make(chan callResult, 1)
	go func() {
		req := RequestFrame{Command: command, Params: params}
		if err := WriteFrame(c.w, req); err != nil {
			done <- callResult{err: fmt.Errorf("protocol: %s call %s: %w", c.name, command, err)}
			return
		}
		var resp ResponseFrame
		if err := ReadFrame(c.r, &resp); err != nil {
			done <- callResult{err: fmt.Errorf("protocol: %s call %s: %w", c.name, command, err)}
			return
		}
		if !resp.OK {
			if resp.Error != nil {
				done <- callResult{err: resp.Error}
				return
			}
			done <- callResult{err: fmt.Errorf("protocol: %s call %s: peer reported failure with no error detail", c.name, command)}
			return
		}
		done <- callResult{value: resp.Value}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s call %s: %w", ErrProtocolTimeout, c.name, command, ctx.Err())
	}
}

// Option asks the peer for the named configuration values, in order.
// Used by the worker cache to inherit cipher settings from a remote.
func (c *Client) Option(ctx context.Context, names ...string) ([]any, error) {
	values := make([]any, 0, len(names))
	for _, name := range names {
		v, err := c.Call(ctx, "option", map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Close sends a session-terminate request, best-effort, then closes the
// underlying transport. The worker on the other end is expected to exit
// once it observes EOF or the terminate command.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = WriteFrame(c.w, RequestFrame{Command: "terminate"})
	if c.c != nil {
		return c.c.Close()
	}
	return nil
}
