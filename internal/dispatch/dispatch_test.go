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

package dispatch

import (
	"net"
	"testing"

	"github.com/hypervfs/hypervfs/internal/hostfs"
	"github.com/hypervfs/hypervfs/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAttrUnknownPath(t *testing.T) {
	s := &Server{Root: hostfs.NewRoot(t.TempDir())}
	status, _ := s.handle(wire.OpAttr, wire.EncodePathRequest("/missing"))
	assert.Equal(t, wire.StatusNoEnt, status)
}

func TestHandleCreateAttrWriteReadRoundTrip(t *testing.T) {
	s := &Server{Root: hostfs.NewRoot(t.TempDir())}

	status, payload := s.handle(wire.OpCreate, wire.EncodeModeRequest(wire.ModeRequest{Path: "/a.txt", Mode: 0644}))
	require.Equal(t, wire.StatusOK, status)
	assert.Empty(t, payload)

	status, payload = s.handle(wire.OpAttr, wire.EncodePathRequest("/a.txt"))
	require.Equal(t, wire.StatusOK, status)
	attr, err := wire.DecodeAttrResponse(payload)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeRegular, attr.Type)

	status, payload = s.handle(wire.OpWrite, wire.EncodeWriteRequest(wire.WriteRequest{Path: "/a.txt", Offset: 0, Data: []byte("hi")}))
	require.Equal(t, wire.StatusOK, status)
	n, err := wire.DecodeWriteResponse(payload)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	status, payload = s.handle(wire.OpRead, wire.EncodeReadRequest(wire.ReadRequest{Path: "/a.txt", Offset: 0, Size: 2}))
	require.Equal(t, wire.StatusOK, status)
	data, err := wire.DecodeReadResponse(payload)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestHandleUnknownOpcodeReturnsNoSys(t *testing.T) {
	s := &Server{Root: hostfs.NewRoot(t.TempDir())}
	status, payload := s.handle(wire.Opcode(999), nil)
	assert.Equal(t, wire.StatusNoSys, status)
	assert.Nil(t, payload)
}

func TestServeOneConnectionRoundTrip(t *testing.T) {
	root := hostfs.NewRoot(t.TempDir())
	s := &Server{Root: root, Connections: 1}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	reqConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer reqConn.Close()

	invConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer invConn.Close()

	require.NoError(t, wire.WriteFrame(reqConn, uint16(wire.OpMkdir), wire.EncodeModeRequest(wire.ModeRequest{Path: "/d", Mode: 0755})))
	frame, err := wire.ReadFrame(reqConn)
	require.NoError(t, err)
	assert.Equal(t, uint16(wire.StatusOK), frame.Code)
	assert.Empty(t, frame.Payload)

	require.NoError(t, wire.WriteFrame(reqConn, uint16(wire.OpAttr), wire.EncodePathRequest("/d")))
	frame, err = wire.ReadFrame(reqConn)
	require.NoError(t, err)
	assert.Equal(t, uint16(wire.StatusOK), frame.Code)

	attr, err := wire.DecodeAttrResponse(frame.Payload)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeDir, attr.Type)
}
