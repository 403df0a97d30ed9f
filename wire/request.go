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

// This file holds the request payload (de)serializers for each opcode. Each
// EncodeXRequest is called by the client, each DecodeXRequest by the server;
// keeping both directions next to each other keeps the wire layout they
// agree on in one place. Every path field is a "path block": a u16 length
// (including the trailing NUL) followed by that many bytes.

// AttrRequest / ReadDirRequest / UnlinkRequest / RmdirRequest / ReadlinkRequest
// all carry a single path.

func EncodePathRequest(path string) []byte {
	w := NewWriter(len(path) + 3)
	w.PutLenCString(path)
	return w.Bytes()
}

func DecodePathRequest(payload []byte) (path string, err error) {
	r := NewReader(payload)
	return r.LenCString()
}

// ReadRequest carries a path, the requested read size and an offset.
type ReadRequest struct {
	Path   string
	Size   uint64
	Offset int64
}

func EncodeReadRequest(req ReadRequest) []byte {
	w := NewWriter(len(req.Path) + 19)
	w.PutLenCString(req.Path)
	w.PutUint64(req.Size)
	w.PutInt64(req.Offset)
	return w.Bytes()
}

func DecodeReadRequest(payload []byte) (ReadRequest, error) {
	r := NewReader(payload)
	path, err := r.LenCString()
	if err != nil {
		return ReadRequest{}, err
	}
	size, err := r.Uint64()
	if err != nil {
		return ReadRequest{}, err
	}
	offset, err := r.Int64()
	if err != nil {
		return ReadRequest{}, err
	}
	return ReadRequest{Path: path, Size: size, Offset: offset}, nil
}

// WriteRequest carries a path, an offset and the bytes to write.
type WriteRequest struct {
	Path   string
	Offset int64
	Data   []byte
}

func EncodeWriteRequest(req WriteRequest) []byte {
	w := NewWriter(len(req.Path) + 19 + len(req.Data))
	w.PutLenCString(req.Path)
	w.PutUint64(uint64(len(req.Data)))
	w.PutInt64(req.Offset)
	w.PutBytes(req.Data)
	return w.Bytes()
}

func DecodeWriteRequest(payload []byte) (WriteRequest, error) {
	r := NewReader(payload)
	path, err := r.LenCString()
	if err != nil {
		return WriteRequest{}, err
	}
	size, err := r.Uint64()
	if err != nil {
		return WriteRequest{}, err
	}
	offset, err := r.Int64()
	if err != nil {
		return WriteRequest{}, err
	}
	data, err := r.Bytes(int(size))
	if err != nil {
		return WriteRequest{}, err
	}
	return WriteRequest{Path: path, Offset: offset, Data: data}, nil
}

// CreateRequest / MkdirRequest carry a path block and a mode.
type ModeRequest struct {
	Path string
	Mode uint32
}

func EncodeModeRequest(req ModeRequest) []byte {
	w := NewWriter(len(req.Path) + 7)
	w.PutLenCString(req.Path)
	w.PutUint32(req.Mode)
	return w.Bytes()
}

func DecodeModeRequest(payload []byte) (ModeRequest, error) {
	r := NewReader(payload)
	path, err := r.LenCString()
	if err != nil {
		return ModeRequest{}, err
	}
	mode, err := r.Uint32()
	if err != nil {
		return ModeRequest{}, err
	}
	return ModeRequest{Path: path, Mode: mode}, nil
}

// TruncateRequest carries a path block and the new size.
type TruncateRequest struct {
	Path string
	Size uint64
}

func EncodeTruncateRequest(req TruncateRequest) []byte {
	w := NewWriter(len(req.Path) + 11)
	w.PutLenCString(req.Path)
	w.PutUint64(req.Size)
	return w.Bytes()
}

func DecodeTruncateRequest(payload []byte) (TruncateRequest, error) {
	r := NewReader(payload)
	path, err := r.LenCString()
	if err != nil {
		return TruncateRequest{}, err
	}
	size, err := r.Uint64()
	if err != nil {
		return TruncateRequest{}, err
	}
	return TruncateRequest{Path: path, Size: size}, nil
}

// RenameRequest / LinkRequest carry two path blocks: from_len/from then
// to_len/to.
type TwoPathRequest struct {
	OldPath string
	NewPath string
}

func EncodeTwoPathRequest(req TwoPathRequest) []byte {
	w := NewWriter(len(req.OldPath) + len(req.NewPath) + 6)
	w.PutLenCString(req.OldPath)
	w.PutLenCString(req.NewPath)
	return w.Bytes()
}

func DecodeTwoPathRequest(payload []byte) (TwoPathRequest, error) {
	r := NewReader(payload)
	oldPath, err := r.LenCString()
	if err != nil {
		return TwoPathRequest{}, err
	}
	newPath, err := r.LenCString()
	if err != nil {
		return TwoPathRequest{}, err
	}
	return TwoPathRequest{OldPath: oldPath, NewPath: newPath}, nil
}

// SymlinkRequest carries the new link's path, its target, and whether the
// target is external to the exported tree (verbatim) rather than expressed
// relative to it. This mirrors the `ext` flag computed by
// relativeToMountpoint in the original client.
type SymlinkRequest struct {
	LinkPath string
	Target   string
	External bool
}

func EncodeSymlinkRequest(req SymlinkRequest) []byte {
	w := NewWriter(len(req.LinkPath) + len(req.Target) + 8)
	w.PutLenCString(req.LinkPath)
	w.PutLenCString(req.Target)
	w.PutUint16(boolToUint16(req.External))
	return w.Bytes()
}

func DecodeSymlinkRequest(payload []byte) (SymlinkRequest, error) {
	r := NewReader(payload)
	linkPath, err := r.LenCString()
	if err != nil {
		return SymlinkRequest{}, err
	}
	target, err := r.LenCString()
	if err != nil {
		return SymlinkRequest{}, err
	}
	ext, err := r.Uint16()
	if err != nil {
		return SymlinkRequest{}, err
	}
	return SymlinkRequest{LinkPath: linkPath, Target: target, External: ext != 0}, nil
}

func boolToUint16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
