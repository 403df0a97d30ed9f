// Copyright 2015 Google Inc. All Rights Reserved.
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

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameSize bounds the total size field of an incoming frame, guarding
// against a misbehaving or malicious peer forcing an unbounded allocation.
// 64 MiB comfortably covers the largest READDIR/READ payloads this protocol
// produces.
const MaxFrameSize = 64 << 20

// Frame is one decoded protocol message: the opcode or status word from the
// header, plus the payload bytes that followed it.
type Frame struct {
	Code    uint16 // an Opcode on requests, a Status on responses
	Payload []byte
}

// WriteFrame writes code and payload to w as a single framed message: an
// 8-byte total size (inclusive of the 10-byte header) followed by the
// 2-byte code and the payload bytes.
func WriteFrame(w io.Writer, code uint16, payload []byte) error {
	total := uint64(HeaderSize + len(payload))
	hdr := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint64(hdr[0:8], total)
	binary.LittleEndian.PutUint16(hdr[8:10], code)

	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("wire: write header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("wire: write payload: %w", err)
		}
	}
	return nil
}

// ReadFrame reads one framed message from r.
func ReadFrame(r io.Reader) (Frame, error) {
	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return Frame{}, err
	}

	total := binary.LittleEndian.Uint64(hdr[0:8])
	code := binary.LittleEndian.Uint16(hdr[8:10])

	if total < HeaderSize {
		return Frame{}, fmt.Errorf("wire: frame total size %d shorter than header", total)
	}
	if total > MaxFrameSize {
		return Frame{}, fmt.Errorf("wire: frame total size %d exceeds maximum %d", total, MaxFrameSize)
	}

	payloadLen := total - HeaderSize
	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, fmt.Errorf("wire: read payload: %w", err)
		}
	}

	return Frame{Code: code, Payload: payload}, nil
}
