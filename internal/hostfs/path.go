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

// Package hostfs implements the host side of the protocol: translating the
// guest's POSIX-style relative paths into paths under an exported root
// directory, and performing the actual filesystem operations. It is
// grounded on HyperVSocks.cpp's makePath/makeLocalPath/makeRemotePath and
// per-opcode handlers, adapted from Win32 calls to the POSIX equivalents
// os/syscall already provide on the host this server runs on.
package hostfs

import (
	"path/filepath"
	"strings"
)

// Root translates between guest-relative paths (always POSIX-style,
// "/"-separated, rooted at "/") and absolute host paths under a configured
// export directory.
type Root struct {
	dir string
}

// NewRoot returns a Root exporting dir. dir must be an absolute, existing
// directory; callers are expected to have validated that before calling.
func NewRoot(dir string) *Root {
	return &Root{dir: filepath.Clean(dir)}
}

// Dir returns the exported root directory.
func (r *Root) Dir() string {
	return r.dir
}

// HostPath maps a guest-relative path (e.g. "/a/b.txt") to an absolute path
// under the exported root, mirroring makeLocalPath's leading-slash strip
// and separator translation.
func (r *Root) HostPath(guestPath string) string {
	guestPath = strings.TrimPrefix(guestPath, "/")
	if guestPath == "" {
		return r.dir
	}
	return filepath.Join(r.dir, filepath.FromSlash(guestPath))
}

// GuestPath maps an absolute host path back to the guest-relative,
// "/"-separated form, the inverse of makeRemotePath.
func (r *Root) GuestPath(hostPath string) string {
	rel, err := filepath.Rel(r.dir, hostPath)
	if err != nil || rel == "." {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}
