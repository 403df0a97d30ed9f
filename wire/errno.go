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

import "syscall"

// Status values carried in a response frame's code word on failure. These
// mirror the subset of POSIX errno values the original HyperVSocks protocol
// distinguishes; anything else the host side can produce collapses to
// StatusIO.
const (
	StatusNoEnt    Status = 2
	StatusIO       Status = 5
	StatusExist    Status = 17
	StatusNotDir   Status = 20
	StatusIsDir    Status = 21
	StatusInval    Status = 22
	StatusNotEmpty Status = 39
	StatusNoSys    Status = 38
)

// ToErrno maps a wire Status to the syscall.Errno a FileSystem method should
// return, matching the errno-based contract jacobsa/fuse itself expects.
// FileSystem methods in this module return syscall.Errno for failed
// statuses and transport failures; a success payload that fails to decode
// is returned as the decoder's own error.
func (s Status) ToErrno() error {
	switch s {
	case StatusOK:
		return nil
	case StatusNoEnt:
		return syscall.ENOENT
	case StatusExist:
		return syscall.EEXIST
	case StatusNotDir:
		return syscall.ENOTDIR
	case StatusIsDir:
		return syscall.EISDIR
	case StatusInval:
		return syscall.EINVAL
	case StatusNotEmpty:
		return syscall.ENOTEMPTY
	case StatusNoSys:
		return syscall.ENOSYS
	default:
		return syscall.EIO
	}
}

// StatusFromErrno maps a host-side error to the wire Status sent back to the
// client. Errors that are not a recognized syscall.Errno collapse to
// StatusIO, matching the original server's catch-all error path.
func StatusFromErrno(err error) Status {
	if err == nil {
		return StatusOK
	}
	errno, ok := err.(syscall.Errno)
	if !ok {
		return StatusIO
	}
	switch errno {
	case syscall.ENOENT:
		return StatusNoEnt
	case syscall.EEXIST:
		return StatusExist
	case syscall.ENOTDIR:
		return StatusNotDir
	case syscall.EISDIR:
		return StatusIsDir
	case syscall.EINVAL:
		return StatusInval
	case syscall.ENOTEMPTY:
		return StatusNotEmpty
	case syscall.ENOSYS:
		return StatusNoSys
	default:
		return StatusIO
	}
}
