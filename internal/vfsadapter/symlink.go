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
	"strings"
	"syscall"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/hypervfs/hypervfs/wire"
)

// relativeToMountpoint decides whether an absolute symlink target lies
// inside the mounted tree, reproducing the original client's
// relativeToMountpoint: it walks target segment by segment against
// mountpoint, rejecting "." and ".." components (which would require
// resolving traversal to know whether the target actually stays inside the
// tree, something the client cannot verify without another round trip), and
// reports the path relative to the mountpoint on a clean prefix match.
//
// It returns ("", false) when target is not absolute, is not under
// mountpoint, or contains a "."/".." component anywhere in its path.
func relativeToMountpoint(mountpoint, target string) (string, bool) {
	if !strings.HasPrefix(target, "/") || mountpoint == "" {
		return "", false
	}

	mp := strings.Trim(mountpoint, "/")
	tgt := strings.Trim(target, "/")

	mpSegs := splitNonEmpty(mp)
	tgtSegs := splitNonEmpty(tgt)

	if len(tgtSegs) < len(mpSegs) {
		return "", false
	}

	for i, seg := range tgtSegs {
		if seg == "." || seg == ".." {
			return "", false
		}
		if i < len(mpSegs) && seg != mpSegs[i] {
			return "", false
		}
	}

	rel := "/" + strings.Join(tgtSegs[len(mpSegs):], "/")
	return rel, true
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

// CreateSymlink creates a new symlink, classifying op.Target as external
// (left verbatim) or local-to-the-mount (translated to a guest-relative
// path) via relativeToMountpoint, the same split the original client makes
// before sending a SYMLINK request.
func (a *Adapter) CreateSymlink(ctx context.Context, op *fuseops.CreateSymlinkOp) error {
	parent, ok := a.inodes.lookupByID(op.Parent)
	if !ok {
		return syscall.ENOENT
	}

	linkPath := childPath(parent.path, op.Name)

	target := op.Target
	external := true
	if rel, ok := relativeToMountpoint(a.mountpoint, op.Target); ok {
		target = rel
		external = false
	}

	_, err := a.roundTrip(ctx, wire.OpSymlink, wire.EncodeSymlinkRequest(wire.SymlinkRequest{
		LinkPath: linkPath,
		Target:   target,
		External: external,
	}))
	if err != nil {
		return err
	}

	attr, err := a.attrAndEntry(ctx, linkPath)
	if err != nil {
		return err
	}

	entry := a.inodes.getOrCreate(linkPath, attr.Fileid)
	op.Entry.Child = entry.id
	op.Entry.Attributes = toInodeAttributes(attr)
	op.Entry.AttributesExpiration = expiration()
	op.Entry.EntryExpiration = expiration()
	return nil
}

// ReadSymlink returns the target recorded for a symlink inode, translating
// a local (non-external) target back into an absolute path under the
// mountpoint so the kernel sees the same shape of path it would have if it
// had created the link itself.
func (a *Adapter) ReadSymlink(ctx context.Context, op *fuseops.ReadSymlinkOp) error {
	entry, ok := a.inodes.lookupByID(op.Inode)
	if !ok {
		return syscall.ENOENT
	}

	payload, err := a.roundTrip(ctx, wire.OpReadlink, wire.EncodePathRequest(entry.path))
	if err != nil {
		return err
	}

	resp, err := wire.DecodeReadlinkResponse(payload)
	if err != nil {
		return err
	}

	if resp.External {
		op.Target = resp.Target
	} else {
		op.Target = strings.TrimRight(a.mountpoint, "/") + resp.Target
	}
	return nil
}

// CreateLink creates a new hard link pointing at an existing inode's path.
func (a *Adapter) CreateLink(ctx context.Context, op *fuseops.CreateLinkOp) error {
	parent, ok := a.inodes.lookupByID(op.Parent)
	if !ok {
		return syscall.ENOENT
	}
	target, ok := a.inodes.lookupByID(op.Target)
	if !ok {
		return syscall.ENOENT
	}

	newPath := childPath(parent.path, op.Name)
	_, err := a.roundTrip(ctx, wire.OpLink, wire.EncodeTwoPathRequest(wire.TwoPathRequest{
		OldPath: target.path,
		NewPath: newPath,
	}))
	if err != nil {
		return err
	}

	attr, err := a.attrAndEntry(ctx, newPath)
	if err != nil {
		return err
	}

	entry := a.inodes.getOrCreate(newPath, attr.Fileid)
	op.Entry.Child = entry.id
	op.Entry.Attributes = toInodeAttributes(attr)
	op.Entry.AttributesExpiration = expiration()
	op.Entry.EntryExpiration = expiration()
	return nil
}
