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

// Package protocol implements the length-framed request/response wire
// format used between the main process and its local and remote workers.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxFrameSize guards against a corrupt or hostile peer advertising an
// unreasonable frame length.
const maxFrameSize = 256 * 1024 * 1024

var (
	ErrFrameTooLarge   = errors.New("protocol: frame exceeds maximum size")
	ErrHandshake       = errors.New("protocol: handshake failed")
	ErrProtocolTimeout = errors.New("protocol: call timed out")
)

// RequestFrame is the wire shape of a call.
type RequestFrame struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params,omitempty"`
}

// ResponseFrame is the wire shape of a reply. Exactly one of Value or
// Error is meaningful, indicated by OK.
type ResponseFrame struct {
	OK    bool           `json:"ok"`
	Value any            `json:"value,omitempty"`
	Error *ResponseError `json:"error,omitempty"`
}

// ResponseError carries a coded failure from the peer.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ResponseError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// WriteFrame encodes v as JSON and writes it as a 4-byte big-endian
// length header followed by the body.
func WriteFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("protocol: encode frame: %w", err)
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("protocol: write frame header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("protocol: write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame and decodes it into v.
func ReadFrame(r io.Reader, v any) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return fmt.Errorf("protocol: read frame header: %w", err)
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return ErrFrameTooLarge
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("protocol: read frame body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("protocol: decode frame: %w", err)
	}
	return nil
}
