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
	"errors"
	"io"
	"os"
	"strings"

	"github.com/hypervfs/hypervfs/wire"
)

// Create creates a new regular file at guestPath with CREATE_NEW semantics:
// it fails with EEXIST if the file already exists. This corrects the
// original host server's opCreate, which returned HYPERV_NOENT on a name
// collision; see the Design Notes for this correction.
func (r *Root) Create(guestPath string, mode uint32) (wire.Attr, error) {
	hostPath := r.HostPath(guestPath)
	f, err := os.OpenFile(hostPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, os.FileMode(mode&0777))
	if err != nil {
		return wire.Attr{}, ToErrno(err)
	}
	f.Close()
	return r.Attr(guestPath)
}

// Attr is a convenience wrapper returning the Attr for a guest-relative path.
func (r *Root) Attr(guestPath string) (wire.Attr, error) {
	a, err := Attr(r.HostPath(guestPath))
	if err != nil {
		return wire.Attr{}, ToErrno(err)
	}
	return a, nil
}

// Unlink removes a regular file or symlink at guestPath.
func (r *Root) Unlink(guestPath string) error {
	return ToErrno(os.Remove(r.HostPath(guestPath)))
}

// Mkdir creates a directory at guestPath.
func (r *Root) Mkdir(guestPath string, mode uint32) (wire.Attr, error) {
	hostPath := r.HostPath(guestPath)
	if err := os.Mkdir(hostPath, os.FileMode(mode&0777)); err != nil {
		return wire.Attr{}, ToErrno(err)
	}
	return r.Attr(guestPath)
}

// Rmdir removes an empty directory at guestPath.
func (r *Root) Rmdir(guestPath string) error {
	return ToErrno(os.Remove(r.HostPath(guestPath)))
}

// Truncate sets the size of the regular file at guestPath.
func (r *Root) Truncate(guestPath string, size uint64) error {
	return ToErrno(os.Truncate(r.HostPath(guestPath), int64(size)))
}

// Rename moves oldPath to newPath, both guest-relative.
func (r *Root) Rename(oldPath, newPath string) error {
	return ToErrno(os.Rename(r.HostPath(oldPath), r.HostPath(newPath)))
}

// Link creates a new hard link newPath pointing at the same inode as
// oldPath, both guest-relative. Cross-filesystem hard links are out of
// scope per spec Non-goals; os.Link already rejects those with EXDEV.
func (r *Root) Link(oldPath, newPath string) (wire.Attr, error) {
	if err := os.Link(r.HostPath(oldPath), r.HostPath(newPath)); err != nil {
		return wire.Attr{}, ToErrno(err)
	}
	return r.Attr(newPath)
}

// Symlink creates a symlink at linkPath whose target is either taken
// verbatim (external, already host-native or absolute-outside-the-export
// paths computed by the client) or translated into a host path first,
// mirroring the ext flag's role in the original opSymlink.
func (r *Root) Symlink(linkPath, target string, external bool) (wire.Attr, error) {
	hostTarget := target
	if !external {
		hostTarget = r.HostPath(target)
	}
	if err := os.Symlink(hostTarget, r.HostPath(linkPath)); err != nil {
		return wire.Attr{}, ToErrno(err)
	}
	return r.Attr(linkPath)
}

// Readlink reads the target of the symlink at guestPath. A target that
// starts with the exported root directory is translated back through
// GuestPath and reported as local; any other target is reported as external
// and returned verbatim.
func (r *Root) Readlink(guestPath string) (wire.ReadlinkResponse, error) {
	target, err := os.Readlink(r.HostPath(guestPath))
	if err != nil {
		return wire.ReadlinkResponse{}, ToErrno(err)
	}

	if strings.HasPrefix(target, r.dir) {
		return wire.ReadlinkResponse{Target: r.GuestPath(target), External: false}, nil
	}
	return wire.ReadlinkResponse{Target: target, External: true}, nil
}

// Read reads up to size bytes from guestPath starting at offset.
func (r *Root) Read(guestPath string, offset int64, size uint64) ([]byte, error) {
	f, err := os.Open(r.HostPath(guestPath))
	if err != nil {
		return nil, ToErrno(err)
	}
	defer f.Close()

	buf := make([]byte, size)
	n, err := f.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, ToErrno(err)
	}
	return buf[:n], nil
}

// Write writes data to guestPath starting at offset, returning the number
// of bytes written.
func (r *Root) Write(guestPath string, offset int64, data []byte) (int, error) {
	f, err := os.OpenFile(r.HostPath(guestPath), os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return 0, ToErrno(err)
	}
	defer f.Close()

	n, err := f.WriteAt(data, offset)
	if err != nil {
		return n, ToErrno(err)
	}
	return n, nil
}

// ReadDir lists the directory at guestPath, resolving each child's
// attributes the same way a LookUp would. The whole listing is returned at
// once, matching the original server's accumulate-then-reply behavior.
func (r *Root) ReadDir(guestPath string) ([]wire.Dirent, error) {
	hostPath := r.HostPath(guestPath)
	entries, err := os.ReadDir(hostPath)
	if err != nil {
		return nil, ToErrno(err)
	}

	dirents := make([]wire.Dirent, 0, len(entries))
	for _, e := range entries {
		childGuestPath := guestPath
		if !strings.HasSuffix(childGuestPath, "/") {
			childGuestPath += "/"
		}
		childGuestPath += e.Name()

		a, err := r.Attr(childGuestPath)
		if err != nil {
			continue // racing deletion between ReadDir and Attr; skip rather than fail the whole listing
		}
		dirents = append(dirents, wire.Dirent{Name: e.Name(), Attr: a})
	}
	return dirents, nil
}
