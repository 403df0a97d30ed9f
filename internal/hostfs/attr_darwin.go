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

//go:build darwin

package hostfs

import (
	"time"

	"golang.org/x/sys/unix"
)

// lstatExtra fills in the stat fields unix.Stat_t exposes on Darwin that
// os.Lstat does not surface on its own, following rclone's
// backend/local Fstatat-based metadata probe.
func lstatExtra(hostPath string) (statExtra, error) {
	var st unix.Stat_t
	if err := unix.Lstat(hostPath, &st); err != nil {
		return statExtra{}, err
	}
	return statExtra{
		Fsid:   uint64(st.Dev),
		Fileid: st.Ino,
		Nlink:  uint32(st.Nlink),
		Uid:    st.Uid,
		Gid:    st.Gid,
		Atime:  time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec),
		Ctime:  time.Unix(st.Ctimespec.Sec, st.Ctimespec.Nsec),
	}, nil
}
