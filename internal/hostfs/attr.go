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
	"time"

	"github.com/hypervfs/hypervfs/wire"
)

// statExtra carries the stat fields golang.org/x/sys/unix exposes directly
// on unix.Stat_t but os.FileInfo does not: the device id a path lives on
// (Fsid) and its inode number (Fileid), which together give two hard-linked
// paths on the host the same identity on the wire.
type statExtra struct {
	Fsid, Fileid uint64
	Nlink        uint32
	Uid, Gid     uint32
	Atime, Ctime time.Time
}

// Attr probes hostPath and returns its wire.Attr without following
// symlinks: every field comes from Lstat, so a symlink is reported as a
// symlink rather than whatever it points to, matching getPathAttr's
// reparse-point handling in the original host server.
func Attr(hostPath string) (wire.Attr, error) {
	fi, err := os.Lstat(hostPath)
	if err != nil {
		return wire.Attr{}, mapStatErr(err)
	}

	extra, err := lstatExtra(hostPath)
	if err != nil {
		return wire.Attr{}, mapStatErr(err)
	}

	a := wire.Attr{
		Fsid:   extra.Fsid,
		Fileid: extra.Fileid,
		Size:   uint64(fi.Size()),
		Mode:   uint32(fi.Mode().Perm()),
		Nlink:  extra.Nlink,
		Uid:    extra.Uid,
		Gid:    extra.Gid,
		Atime:  extra.Atime,
	}
	a.Used = a.Size

	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		a.Type = wire.TypeSymlink
		a.Mode |= 0120000 // S_IFLNK
		// The original server substitutes a fixed 4096-byte size for
		// zero-length symlink attribute queries, since some guest
		// callers treat size 0 as "not a link". Preserve that behavior.
		if a.Size == 0 {
			a.Size = 4096
			a.Used = a.Size
		}
	case fi.IsDir():
		a.Type = wire.TypeDir
		a.Mode |= 0040000 // S_IFDIR
	default:
		a.Type = wire.TypeRegular
		a.Mode |= 0100000 // S_IFREG
	}

	a.Mtime = fi.ModTime()
	a.Ctime = extra.Ctime

	return a, nil
}

func mapStatErr(err error) error {
	if pe, ok := err.(*os.PathError); ok {
		return pe.Err
	}
	return err
}
