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

package invalidate

import (
	"io"
	"log"
	"net"
	"testing"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypervfs/hypervfs/wire"
)

type fakeNotifier struct {
	entries []string
	inodes  []fuseops.InodeID
}

func (f *fakeNotifier) InvalidateEntry(parent fuseops.InodeID, name string) error {
	f.entries = append(f.entries, name)
	return nil
}

func (f *fakeNotifier) InvalidateInode(inode fuseops.InodeID, offset, size int64) error {
	f.inodes = append(f.inodes, inode)
	return nil
}

type fakeResolver struct {
	known map[string]fuseops.InodeID
}

func (f *fakeResolver) Resolve(path string) (fuseops.InodeID, string, fuseops.InodeID, bool) {
	id, ok := f.known["/"+path[1:]]
	if !ok {
		id, ok = f.known[path]
	}
	if !ok {
		return 0, "", 0, false
	}
	return fuseops.RootInodeID, path, id, true
}

func TestRunInvalidatesKnownPath(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	notifier := &fakeNotifier{}
	resolver := &fakeResolver{known: map[string]fuseops.InodeID{"/a.txt": 42}}

	errCh := make(chan error, 1)
	go func() { errCh <- Run(client, notifier, resolver, log.Default()) }()

	require.NoError(t, wire.WriteFrame(server, uint16(wire.OpInvalidate), wire.EncodePathRequest("/a.txt")))
	server.Close()

	err := <-errCh
	assert.NoError(t, err)
	assert.Equal(t, []string{"/a.txt"}, notifier.entries)
	assert.Equal(t, []fuseops.InodeID{42}, notifier.inodes)
}

func TestRunSkipsUnknownPath(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	notifier := &fakeNotifier{}
	resolver := &fakeResolver{known: map[string]fuseops.InodeID{}}

	errCh := make(chan error, 1)
	go func() { errCh <- Run(client, notifier, resolver, log.Default()) }()

	require.NoError(t, wire.WriteFrame(server, uint16(wire.OpInvalidate), wire.EncodePathRequest("/ghost")))
	server.Close()

	require.NoError(t, <-errCh)
	assert.Empty(t, notifier.entries)
	assert.Empty(t, notifier.inodes)
}

func TestRunReturnsNilOnCleanEOF(t *testing.T) {
	client, server := net.Pipe()
	server.Close()

	err := Run(client, &fakeNotifier{}, &fakeResolver{}, log.Default())
	assert.True(t, err == nil || err == io.EOF)
}
