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

import "fmt"

// Dirent is one entry of a READDIR response: a child name and its
// attributes. The server sends the entire directory listing in a single
// response, mirroring the original HyperVSocks server's FindFirstFile/
// FindNextFile loop that accumulates the whole listing into one growable
// buffer before replying; the client caches it for the lifetime of the
// directory handle the same way the original xmp_dirp cursor does.
type Dirent struct {
	Name string
	Attr Attr
}

// EncodeDirents serializes entries as a READDIR response payload: for each
// entry, its length-prefixed name followed by its 64-byte Attr record, with
// no leading count; the reader consumes entries until the payload runs out.
func EncodeDirents(entries []Dirent) []byte {
	w := NewWriter(len(entries) * (AttrSize + 8))
	for _, e := range entries {
		w.PutLenCString(e.Name)
		b, _ := e.Attr.MarshalBinary()
		w.PutBytes(b)
	}
	return w.Bytes()
}

// DecodeDirents parses a READDIR response payload produced by EncodeDirents.
func DecodeDirents(payload []byte) ([]Dirent, error) {
	r := NewReader(payload)

	var entries []Dirent
	for r.Remaining() > 0 {
		name, err := r.LenCString()
		if err != nil {
			return nil, fmt.Errorf("wire: decode dirent %d name: %w", len(entries), err)
		}
		attrBytes, err := r.Bytes(AttrSize)
		if err != nil {
			return nil, fmt.Errorf("wire: decode dirent %d attrs: %w", len(entries), err)
		}
		var attr Attr
		if err := attr.UnmarshalBinary(attrBytes); err != nil {
			return nil, err
		}
		entries = append(entries, Dirent{Name: name, Attr: attr})
	}
	return entries, nil
}
