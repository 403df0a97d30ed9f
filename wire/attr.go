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

package wire

import (
	"fmt"
	"time"
)

// FileType classifies an Attr the way the host-side attribute probe does:
// directory, regular file, or symlink. Anything else the host filesystem can
// produce (device nodes, sockets, ...) is out of scope, per spec Non-goals.
type FileType uint32

const (
	TypeDir FileType = iota
	TypeRegular
	TypeSymlink
)

// Attr is the fixed 64-byte attributes record carried in ATTR responses and
// in each READDIR entry. Field widths and ordering are fixed
// by the wire format; see MarshalBinary for the exact byte layout. Fsid is
// the host volume id and Fileid the host inode number: together they give
// two paths that share a host inode (hard links) the same identity on the
// wire, which the client's inode table relies on to mint a single inode ID
// for both.
type Attr struct {
	Fsid   uint64
	Fileid uint64
	Size   uint64
	Used   uint64
	Type   FileType
	Mode   uint32
	Nlink  uint32
	Uid    uint32
	Gid    uint32
	Atime  time.Time
	Mtime  time.Time
	Ctime  time.Time
}

// MarshalBinary encodes a into the fixed 64-byte wire layout:
//
//	offset  0  Fsid    uint64
//	offset  8  Fileid  uint64
//	offset 16  Size    uint64
//	offset 24  Used    uint64
//	offset 32  Type    uint32
//	offset 36  Mode    uint32
//	offset 40  Nlink   uint32
//	offset 44  Uid     uint32
//	offset 48  Gid     uint32
//	offset 52  Atime   uint32 (POSIX seconds since epoch)
//	offset 56  Mtime   uint32 (POSIX seconds since epoch)
//	offset 60  Ctime   uint32 (POSIX seconds since epoch)
func (a Attr) MarshalBinary() ([]byte, error) {
	w := NewWriter(AttrSize)
	w.PutUint64(a.Fsid)
	w.PutUint64(a.Fileid)
	w.PutUint64(a.Size)
	w.PutUint64(a.Used)
	w.PutUint32(uint32(a.Type))
	w.PutUint32(a.Mode)
	w.PutUint32(a.Nlink)
	w.PutUint32(a.Uid)
	w.PutUint32(a.Gid)
	w.PutUint32(uint32(a.Atime.Unix()))
	w.PutUint32(uint32(a.Mtime.Unix()))
	w.PutUint32(uint32(a.Ctime.Unix()))
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a 64-byte attributes record produced by
// MarshalBinary.
func (a *Attr) UnmarshalBinary(b []byte) error {
	if len(b) != AttrSize {
		return fmt.Errorf("wire: attribute record must be %d bytes, got %d", AttrSize, len(b))
	}
	r := NewReader(b)
	fsid, _ := r.Uint64()
	fileid, _ := r.Uint64()
	size, _ := r.Uint64()
	used, _ := r.Uint64()
	typ, _ := r.Uint32()
	mode, _ := r.Uint32()
	nlink, _ := r.Uint32()
	uid, _ := r.Uint32()
	gid, _ := r.Uint32()
	atime, _ := r.Uint32()
	mtime, _ := r.Uint32()
	ctime, err := r.Uint32()
	if err != nil {
		return err
	}

	a.Fsid = fsid
	a.Fileid = fileid
	a.Size = size
	a.Used = used
	a.Type = FileType(typ)
	a.Mode = mode
	a.Nlink = nlink
	a.Uid = uid
	a.Gid = gid
	a.Atime = time.Unix(int64(atime), 0)
	a.Mtime = time.Unix(int64(mtime), 0)
	a.Ctime = time.Unix(int64(ctime), 0)
	return nil
}
