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
)

// inodeEntry mirrors roloopbackfs's inodeEntry: an inode ID paired with the
// (here, guest-relative rather than local) path it names. Unlike the
// read-only loopback sample, entries are also indexed by path so LookUpInode
// and invalidation resolution don't need a linear scan. fileid is the host
// inode number the entry's id was minted from, recorded so a later stat that
// reports the same fileid under a different path is recognized as the same
// file (the hard-link case) rather than handed a fresh id.
type inodeEntry struct {
	id     fuseops.InodeID
	path   string
	fileid uint64
}

// inodeTable is the client's view of which inode IDs it has handed out to
// the kernel for which guest paths, analogous to roloopbackfs's
// `inodes *sync.Map` but keyed both ways. Unlike roloopbackfs, which mints
// IDs from a local counter, inode IDs here are the host's own fileid: two
// guest paths that stat to the same host fileid (hard links) therefore
// share one fuseops.InodeID, matching the original server's inode semantics
// instead of inventing client-local ones.
type inodeTable struct {
	mu     sync.Mutex
	byID   map[fuseops.InodeID]*inodeEntry
	byPath map[string]*inodeEntry
}

func newInodeTable() *inodeTable {
	t := &inodeTable{
		byID:   make(map[fuseops.InodeID]*inodeEntry),
		byPath: make(map[string]*inodeEntry),
	}
	root := &inodeEntry{id: fuseops.RootInodeID, path: "/"}
	t.byID[root.id] = root
	t.byPath[root.path] = root
	return t
}

// getOrCreate returns the inode entry for path, deriving its id from the
// host's fileid so a hard-linked path resolves to the same id as the
// original. The root path always keeps fuseops.RootInodeID regardless of
// the fileid reported for it. If path was previously recorded under a
// different fileid (e.g. unlinked and recreated), the old mapping for that
// fileid's id is dropped in favor of the new one.
func (t *inodeTable) getOrCreate(path string, fileid uint64) *inodeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if path == "/" {
		return t.byID[fuseops.RootInodeID]
	}

	id := fuseops.InodeID(fileid)
	if e, ok := t.byPath[path]; ok && e.id == id {
		return e
	}

	if old, ok := t.byPath[path]; ok {
		delete(t.byID, old.id)
	}

	e := &inodeEntry{id: id, path: path, fileid: fileid}
	t.byID[id] = e
	t.byPath[path] = e
	return e
}

func (t *inodeTable) lookupByID(id fuseops.InodeID) (*inodeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byID[id]
	return e, ok
}

func (t *inodeTable) lookupByPath(path string) (*inodeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byPath[path]
	return e, ok
}

// forget removes id from the table. Safe to call for an id that was never
// recorded.
func (t *inodeTable) forget(id fuseops.InodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.byID[id]; ok {
		delete(t.byID, id)
		delete(t.byPath, e.path)
	}
}

// rename updates the path recorded for id, used after a successful Rename
// so later lookups and invalidation resolve against the new name.
func (t *inodeTable) rename(id fuseops.InodeID, newPath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byPath, e.path)
	e.path = newPath
	t.byPath[newPath] = e
}
