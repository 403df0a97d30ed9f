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

package hostfs

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/hypervfs/hypervfs/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot(t *testing.T) *Root {
	t.Helper()
	dir := t.TempDir()
	return NewRoot(dir)
}

func TestHostPathGuestPathRoundTrip(t *testing.T) {
	r := newTestRoot(t)
	hostPath := r.HostPath("/a/b/c.txt")
	assert.Equal(t, filepath.Join(r.Dir(), "a", "b", "c.txt"), hostPath)
	assert.Equal(t, "/a/b/c.txt", r.GuestPath(hostPath))
	assert.Equal(t, "/", r.GuestPath(r.Dir()))
}

func TestCreateThenAttr(t *testing.T) {
	r := newTestRoot(t)
	a, err := r.Create("/foo.txt", 0644)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeRegular, a.Type)
	assert.Equal(t, uint64(0), a.Size)
}

func TestCreateRejectsCollisionWithEEXIST(t *testing.T) {
	r := newTestRoot(t)
	_, err := r.Create("/foo.txt", 0644)
	require.NoError(t, err)

	_, err = r.Create("/foo.txt", 0644)
	require.Error(t, err)
	assert.Equal(t, syscall.EEXIST, err)
}

func TestMkdirRmdir(t *testing.T) {
	r := newTestRoot(t)
	a, err := r.Mkdir("/sub", 0755)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeDir, a.Type)

	require.NoError(t, r.Rmdir("/sub"))
	_, err = r.Attr("/sub")
	assert.Equal(t, syscall.ENOENT, err)
}

func TestRmdirNonEmptyFails(t *testing.T) {
	r := newTestRoot(t)
	_, err := r.Mkdir("/sub", 0755)
	require.NoError(t, err)
	_, err = r.Create("/sub/file.txt", 0644)
	require.NoError(t, err)

	err = r.Rmdir("/sub")
	assert.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	r := newTestRoot(t)
	_, err := r.Create("/data.bin", 0644)
	require.NoError(t, err)

	n, err := r.Write("/data.bin", 0, []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	data, err := r.Read("/data.bin", 0, 11)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	data, err = r.Read("/data.bin", 6, 5)
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))
}

func TestTruncate(t *testing.T) {
	r := newTestRoot(t)
	_, err := r.Create("/data.bin", 0644)
	require.NoError(t, err)
	_, err = r.Write("/data.bin", 0, []byte("hello world"))
	require.NoError(t, err)

	require.NoError(t, r.Truncate("/data.bin", 5))
	a, err := r.Attr("/data.bin")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), a.Size)
}

func TestRename(t *testing.T) {
	r := newTestRoot(t)
	_, err := r.Create("/a.txt", 0644)
	require.NoError(t, err)

	require.NoError(t, r.Rename("/a.txt", "/b.txt"))
	_, err = r.Attr("/a.txt")
	assert.Equal(t, syscall.ENOENT, err)
	_, err = r.Attr("/b.txt")
	assert.NoError(t, err)
}

func TestLink(t *testing.T) {
	r := newTestRoot(t)
	_, err := r.Create("/a.txt", 0644)
	require.NoError(t, err)
	_, err = r.Write("/a.txt", 0, []byte("x"))
	require.NoError(t, err)

	a, err := r.Link("/a.txt", "/b.txt")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), a.Nlink)
}

func TestSymlinkAndReadlinkInternal(t *testing.T) {
	r := newTestRoot(t)
	_, err := r.Create("/target.txt", 0644)
	require.NoError(t, err)

	a, err := r.Symlink("/link.txt", "/target.txt", false)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeSymlink, a.Type)

	resp, err := r.Readlink("/link.txt")
	require.NoError(t, err)
	assert.False(t, resp.External)
	assert.Equal(t, "/target.txt", resp.Target)
}

func TestSymlinkExternalTarget(t *testing.T) {
	r := newTestRoot(t)
	_, err := r.Symlink("/link.txt", "/etc/hostname", true)
	require.NoError(t, err)

	resp, err := r.Readlink("/link.txt")
	require.NoError(t, err)
	assert.True(t, resp.External)
	assert.Equal(t, "/etc/hostname", resp.Target)
}

func TestReadDir(t *testing.T) {
	r := newTestRoot(t)
	_, err := r.Create("/a.txt", 0644)
	require.NoError(t, err)
	_, err = r.Mkdir("/sub", 0755)
	require.NoError(t, err)

	entries, err := r.ReadDir("/")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := map[string]wire.FileType{}
	for _, e := range entries {
		names[e.Name] = e.Attr.Type
	}
	assert.Equal(t, wire.TypeRegular, names["a.txt"])
	assert.Equal(t, wire.TypeDir, names["sub"])
}

func TestAttrZeroSizeSymlinkSubstitution(t *testing.T) {
	r := newTestRoot(t)
	if err := os.Symlink("", filepath.Join(r.Dir(), "empty-link")); err != nil {
		t.Skip("platform rejects empty symlink targets")
	}

	a, err := r.Attr("/empty-link")
	require.NoError(t, err)
	assert.Equal(t, wire.TypeSymlink, a.Type)
	assert.Equal(t, uint64(4096), a.Size)
}
