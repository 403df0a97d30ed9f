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
	"sync"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/hypervfs/hypervfs/wire"
)

// dirHandle caches a directory's full listing for the lifetime of an open
// directory handle, the same way the original client's xmp_dirp cursor
// caches the raw buffer returned by a single READDIR round trip across
// repeated readdir(3) calls instead of re-fetching per call.
type dirHandle struct {
	entries []wire.Dirent
}

// handleTable hands out HandleIDs for open directories and files and keeps
// the per-handle state associated with them.
type handleTable struct {
	mu    sync.Mutex
	next  fuseops.HandleID
	dirs  map[fuseops.HandleID]*dirHandle
	files map[fuseops.HandleID]struct{}
}

func newHandleTable() *handleTable {
	return &handleTable{
		dirs:  make(map[fuseops.HandleID]*dirHandle),
		files: make(map[fuseops.HandleID]struct{}),
	}
}

func (t *handleTable) newDirHandle(entries []wire.Dirent) fuseops.HandleID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	id := t.next
	t.dirs[id] = &dirHandle{entries: entries}
	return id
}

func (t *handleTable) dirHandle(id fuseops.HandleID) (*dirHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.dirs[id]
	return h, ok
}

func (t *handleTable) releaseDirHandle(id fuseops.HandleID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.dirs, id)
}

func (t *handleTable) newFileHandle() fuseops.HandleID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	id := t.next
	t.files[id] = struct{}{}
	return id
}

func (t *handleTable) releaseFileHandle(id fuseops.HandleID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.files, id)
}
