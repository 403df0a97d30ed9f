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

	"github.com/hypervfs/hypervfs/wire"
)

// Init is a no-op: there is no handshake in this protocol beyond the
// connection pool already being dialed before the adapter is handed to
// fuse.Mount.
func (a *Adapter) Init(ctx context.Context, op *fuseops.InitOp) error {
	return nil
}

func (a *Adapter) attrAndEntry(ctx context.Context, path string) (wire.Attr, error) {
	payload, err := a.roundTrip(ctx, wire.OpAttr, wire.EncodePathRequest(path))
	if err != nil {
		return wire.Attr{}, err
	}
	return wire.DecodeAttrResponse(payload)
}

// LookUpInode resolves op.Name under op.Parent, minting an inode ID for it
// if this is the first time the adapter has seen that path.
func (a *Adapter) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	parent, ok := a.inodes.lookupByID(op.Parent)
	if !ok {
		return syscall.ENOENT
	}

	childPath := childPath(parent.path, op.Name)
	attr, err := a.attrAndEntry(ctx, childPath)
	if err != nil {
		return err
	}

	entry := a.inodes.getOrCreate(childPath, attr.Fileid)
	op.Entry.Child = entry.id
	op.Entry.Attributes = toInodeAttributes(attr)
	op.Entry.AttributesExpiration = expiration()
	op.Entry.EntryExpiration = expiration()
	return nil
}

// GetInodeAttributes re-fetches attributes for an already-known inode.
func (a *Adapter) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	entry, ok := a.inodes.lookupByID(op.Inode)
	if !ok {
		return syscall.ENOENT
	}

	attr, err := a.attrAndEntry(ctx, entry.path)
	if err != nil {
		return err
	}

	op.Attributes = toInodeAttributes(attr)
	op.AttributesExpiration = expiration()
	return nil
}

// ForgetInode drops the kernel's reference to op.ID; the adapter can stop
// tracking it.
func (a *Adapter) ForgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) error {
	a.inodes.forget(op.ID)
	return nil
}
