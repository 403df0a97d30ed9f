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

// This file holds the success-path response payload (de)serializers. On
// failure the server sends an empty payload with the status word set to a
// non-zero Status; callers check the status before decoding a response body.
// CREATE, UNLINK, MKDIR, RMDIR, TRUNCATE, RENAME, LINK and SYMLINK all reply
// with an empty payload on success and need no (de)serializer here.

func EncodeAttrResponse(attr Attr) []byte {
	b, _ := attr.MarshalBinary()
	return b
}

func DecodeAttrResponse(payload []byte) (Attr, error) {
	var attr Attr
	err := attr.UnmarshalBinary(payload)
	return attr, err
}

// EncodeReadResponse wraps data with the `u64 bytes_read` length prefix the
// READ response carries ahead of the bytes themselves.
func EncodeReadResponse(data []byte) []byte {
	w := NewWriter(8 + len(data))
	w.PutUint64(uint64(len(data)))
	w.PutBytes(data)
	return w.Bytes()
}

func DecodeReadResponse(payload []byte) ([]byte, error) {
	r := NewReader(payload)
	n, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	return r.Bytes(int(n))
}

// EncodeWriteResponse carries the number of bytes actually written.
func EncodeWriteResponse(n uint64) []byte {
	w := NewWriter(8)
	w.PutUint64(n)
	return w.Bytes()
}

func DecodeWriteResponse(payload []byte) (uint64, error) {
	r := NewReader(payload)
	return r.Uint64()
}

// ReadlinkResponse carries the link target and whether it is external
// (verbatim) or expressed relative to the exported tree, the same ext flag
// SYMLINK uses.
type ReadlinkResponse struct {
	Target   string
	External bool
}

func EncodeReadlinkResponse(resp ReadlinkResponse) []byte {
	w := NewWriter(len(resp.Target) + 5)
	w.PutUint16(boolToUint16(resp.External))
	w.PutLenCString(resp.Target)
	return w.Bytes()
}

func DecodeReadlinkResponse(payload []byte) (ReadlinkResponse, error) {
	r := NewReader(payload)
	ext, err := r.Uint16()
	if err != nil {
		return ReadlinkResponse{}, err
	}
	target, err := r.LenCString()
	if err != nil {
		return ReadlinkResponse{}, err
	}
	return ReadlinkResponse{Target: target, External: ext != 0}, nil
}
