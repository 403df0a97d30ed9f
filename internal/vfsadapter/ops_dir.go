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
	"syscall"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/hypervfs/hypervfs/wire"
)

// MkDir creates a directory and returns its freshly minted inode entry.
func (a *Adapter) MkDir(ctx context.Context, op *fuseops.MkDirOp) error {
	parent, ok := a.inodes.lookupByID(op.Parent)
	if !ok {
		return syscall.ENOENT
	}

	p := childPath(parent.path, op.Name)
	if _, err := a.roundTrip(ctx, wire.OpMkdir, wire.EncodeModeRequest(wire.ModeRequest{Path: p, Mode: uint32(op.Mode.Perm())})); err != nil {
		return err
	}

	attr, err := a.attrAndEntry(ctx, p)
	if err != nil {
		return err
	}

	entry := a.inodes.getOrCreate(p, attr.Fileid)
	op.Entry.Child = entry.id
	op.Entry.Attributes = toInodeAttributes(attr)
	op.Entry.AttributesExpiration = expiration()
	op.Entry.EntryExpiration = expiration()
	return nil
}

// RmDir removes an empty directory.
func (a *Adapter) RmDir(ctx context.Context, op *fuseops.RmDirOp) error {
	parent, ok := a.inodes.lookupByID(op.Parent)
	if !ok {
		return syscall.ENOENT
	}

	p := childPath(parent.path, op.Name)
	_, err := a.roundTrip(ctx, wire.OpRmdir, wire.EncodePathRequest(p))
	return err
}

func direntType(t wire.FileType) fuseutil.DirentType {
	switch t {
	case wire.TypeDir:
		return fuseutil.DT_Directory
	case wire.TypeSymlink:
		return fuseutil.DT_Link
	default:
		return fuseutil.DT_File
	}
}

// OpenDir fetches the full directory listing up front and caches it behind
// a handle, mirroring the original client's xmp_opendir + xmp_dirp cursor.
func (a *Adapter) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	entry, ok := a.inodes.lookupByID(op.Inode)
	if !ok {
		return syscall.ENOENT
	}

	payload, err := a.roundTrip(ctx, wire.OpReadDir, wire.EncodePathRequest(entry.path))
	if err != nil {
		return err
	}

	entries, err := wire.DecodeDirents(payload)
	if err != nil {
		return err
	}

	op.Handle = a.handles.newDirHandle(entries)
	return nil
}

// ReadDir serves entries out of the handle's cached listing at op.Offset,
// writing as many as fit in op.Dst.
func (a *Adapter) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) error {
	h, ok := a.handles.dirHandle(op.Handle)
	if !ok {
		return syscall.EINVAL
	}

	i := int(op.Offset)
	for i < len(h.entries) {
		e := h.entries[i]
		i++

		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], fuseutil.Dirent{
			Offset: fuseops.DirOffset(i),
			Inode:  fuseops.InodeID(0), // child inode IDs are only minted on LookUpInode, matching roloopbackfs's lazy allocation
			Name:   e.Name,
			Type:   direntType(e.Attr.Type),
		})
		if n == 0 {
			break
		}
		op.BytesRead += n
	}
	return nil
}

// ReleaseDirHandle drops the cached listing for a closed directory handle.
func (a *Adapter) ReleaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) error {
	a.handles.releaseDirHandle(op.Handle)
	return nil
}
