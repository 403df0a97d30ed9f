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

package vfsadapter

import (
	"context"
	"net"
	"os"
	"testing"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypervfs/hypervfs/internal/clientpool"
	"github.com/hypervfs/hypervfs/internal/dispatch"
	"github.com/hypervfs/hypervfs/internal/hostfs"
)

// newTestAdapter wires an Adapter to a dispatch.Server over an in-memory
// net.Pipe connection, so these tests exercise the real wire round trips
// without any real socket or FUSE mount.
func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	root := hostfs.NewRoot(t.TempDir())
	server := &dispatch.Server{Root: root}

	client, serverConn := net.Pipe()
	go server.ServeOne(serverConn)

	pool := clientpool.NewFromConns([]net.Conn{client})
	t.Cleanup(func() { pool.Close() })

	return New(pool, "/mnt/hypervfs", nil)
}

func TestLookUpInodeAndGetAttributes(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	createOp := &fuseops.CreateFileOp{Parent: fuseops.RootInodeID, Name: "a.txt", Mode: 0644}
	require.NoError(t, a.CreateFile(ctx, createOp))
	assert.NotZero(t, createOp.Entry.Child)

	lookupOp := &fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "a.txt"}
	require.NoError(t, a.LookUpInode(ctx, lookupOp))
	assert.Equal(t, createOp.Entry.Child, lookupOp.Entry.Child)

	attrOp := &fuseops.GetInodeAttributesOp{Inode: lookupOp.Entry.Child}
	require.NoError(t, a.GetInodeAttributes(ctx, attrOp))
	assert.False(t, attrOp.Attributes.Mode.IsDir())
}

func TestLookUpInodeMissingReturnsENOENT(t *testing.T) {
	a := newTestAdapter(t)
	op := &fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "missing"}
	err := a.LookUpInode(context.Background(), op)
	assert.Error(t, err)
}

func TestWriteThenReadFile(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	createOp := &fuseops.CreateFileOp{Parent: fuseops.RootInodeID, Name: "a.txt", Mode: 0644}
	require.NoError(t, a.CreateFile(ctx, createOp))

	writeOp := &fuseops.WriteFileOp{Inode: createOp.Entry.Child, Offset: 0, Data: []byte("hello")}
	require.NoError(t, a.WriteFile(ctx, writeOp))

	readOp := &fuseops.ReadFileOp{Inode: createOp.Entry.Child, Offset: 0, Size: 5, Dst: make([]byte, 5)}
	require.NoError(t, a.ReadFile(ctx, readOp))
	assert.Equal(t, "hello", string(readOp.Dst[:readOp.BytesRead]))
}

func TestMkDirOpenReadDir(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	mkdirOp := &fuseops.MkDirOp{Parent: fuseops.RootInodeID, Name: "sub", Mode: os.ModeDir | 0755}
	require.NoError(t, a.MkDir(ctx, mkdirOp))

	createOp := &fuseops.CreateFileOp{Parent: mkdirOp.Entry.Child, Name: "f.txt", Mode: 0644}
	require.NoError(t, a.CreateFile(ctx, createOp))

	openOp := &fuseops.OpenDirOp{Inode: mkdirOp.Entry.Child}
	require.NoError(t, a.OpenDir(ctx, openOp))

	readOp := &fuseops.ReadDirOp{Inode: mkdirOp.Entry.Child, Handle: openOp.Handle, Offset: 0, Dst: make([]byte, 4096)}
	require.NoError(t, a.ReadDir(ctx, readOp))
	assert.Greater(t, readOp.BytesRead, 0)

	require.NoError(t, a.ReleaseDirHandle(ctx, &fuseops.ReleaseDirHandleOp{Handle: openOp.Handle}))
}

func TestRenameUpdatesInodeTable(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	createOp := &fuseops.CreateFileOp{Parent: fuseops.RootInodeID, Name: "old.txt", Mode: 0644}
	require.NoError(t, a.CreateFile(ctx, createOp))

	renameOp := &fuseops.RenameOp{OldParent: fuseops.RootInodeID, OldName: "old.txt", NewParent: fuseops.RootInodeID, NewName: "new.txt"}
	require.NoError(t, a.Rename(ctx, renameOp))

	lookupOp := &fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "new.txt"}
	require.NoError(t, a.LookUpInode(ctx, lookupOp))
	assert.Equal(t, createOp.Entry.Child, lookupOp.Entry.Child)
}

func TestSymlinkLocalVsExternal(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	createOp := &fuseops.CreateFileOp{Parent: fuseops.RootInodeID, Name: "target.txt", Mode: 0644}
	require.NoError(t, a.CreateFile(ctx, createOp))

	localOp := &fuseops.CreateSymlinkOp{Parent: fuseops.RootInodeID, Name: "local-link", Target: "/mnt/hypervfs/target.txt"}
	require.NoError(t, a.CreateSymlink(ctx, localOp))

	externalOp := &fuseops.CreateSymlinkOp{Parent: fuseops.RootInodeID, Name: "ext-link", Target: "/etc/hostname"}
	require.NoError(t, a.CreateSymlink(ctx, externalOp))

	readLocal := &fuseops.ReadSymlinkOp{Inode: localOp.Entry.Child}
	require.NoError(t, a.ReadSymlink(ctx, readLocal))
	assert.Equal(t, "/mnt/hypervfs/target.txt", readLocal.Target)

	readExternal := &fuseops.ReadSymlinkOp{Inode: externalOp.Entry.Child}
	require.NoError(t, a.ReadSymlink(ctx, readExternal))
	assert.Equal(t, "/etc/hostname", readExternal.Target)
}

func TestSetInodeAttributesTruncates(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	createOp := &fuseops.CreateFileOp{Parent: fuseops.RootInodeID, Name: "a.txt", Mode: 0644}
	require.NoError(t, a.CreateFile(ctx, createOp))

	writeOp := &fuseops.WriteFileOp{Inode: createOp.Entry.Child, Offset: 0, Data: []byte("hello world")}
	require.NoError(t, a.WriteFile(ctx, writeOp))

	size := uint64(5)
	setOp := &fuseops.SetInodeAttributesOp{Inode: createOp.Entry.Child, Size: &size}
	require.NoError(t, a.SetInodeAttributes(ctx, setOp))
	assert.EqualValues(t, 5, setOp.Attributes.Size)

	readOp := &fuseops.ReadFileOp{Inode: createOp.Entry.Child, Offset: 0, Size: 5, Dst: make([]byte, 5)}
	require.NoError(t, a.ReadFile(ctx, readOp))
	assert.Equal(t, "hello", string(readOp.Dst[:readOp.BytesRead]))
}

func TestRelativeToMountpoint(t *testing.T) {
	rel, ok := relativeToMountpoint("/mnt/hypervfs", "/mnt/hypervfs/a/b.txt")
	require.True(t, ok)
	assert.Equal(t, "/a/b.txt", rel)

	_, ok = relativeToMountpoint("/mnt/hypervfs", "/etc/hostname")
	assert.False(t, ok)

	_, ok = relativeToMountpoint("/mnt/hypervfs", "/mnt/hypervfs/../escape")
	assert.False(t, ok)
}
