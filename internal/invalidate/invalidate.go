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

// Package invalidate implements the client's reader for the dedicated
// invalidation connection (the N+1th connection, dialed outside the request
// pool): the host
// pushes a guest-relative path whenever it observes the export tree change,
// and this package turns that into kernel dentry/inode cache evictions via
// jacobsa/fuse's Notifier, the same mechanism the notify_inval sample uses
// to invalidate its own dynamic entries.
package invalidate

import (
	"io"
	"log"
	"net"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/hypervfs/hypervfs/wire"
)

// Notifier is the subset of *fuse.Notifier this package depends on.
type Notifier interface {
	InvalidateEntry(parent fuseops.InodeID, name string) error
	InvalidateInode(inode fuseops.InodeID, offset int64, size int64) error
}

// Resolver maps a guest-relative path to the cached inode identity the
// client's vfsadapter currently has for it, so invalidation can target the
// kernel's dentry cache (parent + name) and its inode attribute cache
// (inode) the way notifyInvalInodeFS.invalidateInodes does for its two
// dynamic entries.
type Resolver interface {
	Resolve(guestPath string) (parent fuseops.InodeID, name string, inode fuseops.InodeID, ok bool)
}

// Run reads OpInvalidate frames from conn until it is closed or ctx-less
// read fails, invalidating the resolved inode/entry for each one. It
// returns nil on a clean io.EOF (the server closed the channel) and the
// underlying error otherwise.
func Run(conn net.Conn, notifier Notifier, resolver Resolver, logger *log.Logger) error {
	for {
		frame, err := wire.ReadFrame(conn)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		if wire.Opcode(frame.Code) != wire.OpInvalidate {
			logger.Printf("invalidate: unexpected code %d on invalidation channel, ignoring", frame.Code)
			continue
		}

		path, err := wire.DecodePathRequest(frame.Payload)
		if err != nil {
			logger.Printf("invalidate: malformed path: %v", err)
			continue
		}

		parent, name, inode, ok := resolver.Resolve(path)
		if !ok {
			// Nothing cached for this path: the kernel never saw it, so
			// there is nothing to evict.
			continue
		}

		if err := notifier.InvalidateEntry(parent, name); err != nil {
			logger.Printf("invalidate: InvalidateEntry(%v, %q): %v", parent, name, err)
		}
		if err := notifier.InvalidateInode(inode, 0, 0); err != nil {
			logger.Printf("invalidate: InvalidateInode(%v): %v", inode, err)
		}
	}
}
