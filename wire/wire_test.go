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
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrRoundTrip(t *testing.T) {
	in := Attr{
		Fsid:   42,
		Fileid: 99,
		Size:   4096,
		Used:   4096,
		Atime:  time.Unix(1700000000, 0),
		Mtime:  time.Unix(1700000001, 0),
		Ctime:  time.Unix(1700000002, 0),
		Mode:   0755,
		Nlink:  2,
		Uid:    1000,
		Gid:    1000,
		Type:   TypeDir,
	}

	b, err := in.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, AttrSize)

	var out Attr
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, in, out)
}

func TestAttrUnmarshalRejectsWrongSize(t *testing.T) {
	var a Attr
	err := a.UnmarshalBinary(make([]byte, AttrSize-1))
	assert.Error(t, err)
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := EncodePathRequest("/foo/bar")

	require.NoError(t, WriteFrame(&buf, uint16(OpAttr), payload))

	frame, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(OpAttr), frame.Code)
	assert.Equal(t, payload, frame.Payload)

	path, err := DecodePathRequest(frame.Payload)
	require.NoError(t, err)
	assert.Equal(t, "/foo/bar", path)
}

func TestReadFrameRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	hdr := make([]byte, HeaderSize)
	// Claim a total size far beyond MaxFrameSize.
	for i := range hdr {
		hdr[i] = 0xff
	}
	buf.Write(hdr)

	_, err := ReadFrame(&buf)
	assert.Error(t, err)
}

func TestDirentRoundTrip(t *testing.T) {
	entries := []Dirent{
		{Name: "a.txt", Attr: Attr{Size: 10, Type: TypeRegular}},
		{Name: "sub", Attr: Attr{Size: 0, Type: TypeDir}},
		{Name: "link", Attr: Attr{Size: 3, Type: TypeSymlink}},
	}

	payload := EncodeDirents(entries)
	out, err := DecodeDirents(payload)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := range entries {
		assert.Equal(t, entries[i].Name, out[i].Name)
		assert.Equal(t, entries[i].Attr.Size, out[i].Attr.Size)
		assert.Equal(t, entries[i].Attr.Type, out[i].Attr.Type)
	}
}

func TestReadRequestRoundTrip(t *testing.T) {
	req := ReadRequest{Path: "/a/b", Offset: 4096, Size: 8192}
	out, err := DecodeReadRequest(EncodeReadRequest(req))
	require.NoError(t, err)
	assert.Equal(t, req, out)
}

func TestWriteRequestRoundTrip(t *testing.T) {
	req := WriteRequest{Path: "/a/b", Offset: 10, Data: []byte("hello world")}
	out, err := DecodeWriteRequest(EncodeWriteRequest(req))
	require.NoError(t, err)
	assert.Equal(t, req.Path, out.Path)
	assert.Equal(t, req.Offset, out.Offset)
	assert.Equal(t, req.Data, out.Data)
}

func TestSymlinkRequestRoundTrip(t *testing.T) {
	req := SymlinkRequest{LinkPath: "/a/link", Target: "../outside", External: true}
	out, err := DecodeSymlinkRequest(EncodeSymlinkRequest(req))
	require.NoError(t, err)
	assert.Equal(t, req, out)
}

func TestReadResponseRoundTrip(t *testing.T) {
	data := []byte("the quick brown fox")
	out, err := DecodeReadResponse(EncodeReadResponse(data))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestWriteResponseRoundTrip(t *testing.T) {
	out, err := DecodeWriteResponse(EncodeWriteResponse(123456789))
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789), out)
}

func TestReadlinkResponseRoundTrip(t *testing.T) {
	resp := ReadlinkResponse{Target: "../outside/file", External: true}
	out, err := DecodeReadlinkResponse(EncodeReadlinkResponse(resp))
	require.NoError(t, err)
	assert.Equal(t, resp, out)
}

func TestStatusErrnoMapping(t *testing.T) {
	for _, s := range []Status{StatusNoEnt, StatusExist, StatusNotDir, StatusIsDir, StatusInval, StatusNotEmpty, StatusNoSys} {
		err := s.ToErrno()
		require.Error(t, err)
		assert.Equal(t, s, StatusFromErrno(err))
	}
	assert.Nil(t, StatusOK.ToErrno())
}
