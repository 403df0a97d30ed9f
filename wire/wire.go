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

// Package wire implements the length-prefixed binary protocol spoken between
// the hypervfs client (guest) and hypervfs server (host) over a HyperV socket
// or TCP connection. Every frame starts with an 8-byte total size (inclusive
// of the header itself) followed by a 2-byte opcode or status word.
package wire

// Opcode identifies the operation carried by a request frame.
type Opcode uint16

// Request opcodes. Values step by 10 to leave room for siblings without a
// wire-format renumbering, matching the layout of the HyperVSocks opcode
// table in the original source this protocol was distilled from.
const (
	OpAttr     Opcode = 10
	OpReadDir  Opcode = 20
	OpRead     Opcode = 30
	OpCreate   Opcode = 40
	OpWrite    Opcode = 50
	OpUnlink   Opcode = 60
	OpTruncate Opcode = 70
	OpMkdir    Opcode = 80
	OpRmdir    Opcode = 90
	OpRename   Opcode = 100
	OpSymlink  Opcode = 110
	OpLink     Opcode = 120
	OpReadlink Opcode = 130

	// OpInvalidate is not a request opcode at all: it is the only code ever
	// sent on the dedicated invalidation connection (the N+1th connection,
	// outside the request pool), always server-to-client, carrying a single
	// guest-relative path the client should evict from its kernel dentry
	// and inode caches.
	OpInvalidate Opcode = 200
)

func (o Opcode) String() string {
	switch o {
	case OpAttr:
		return "ATTR"
	case OpReadDir:
		return "READDIR"
	case OpRead:
		return "READ"
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpUnlink:
		return "UNLINK"
	case OpTruncate:
		return "TRUNCATE"
	case OpMkdir:
		return "MKDIR"
	case OpRmdir:
		return "RMDIR"
	case OpRename:
		return "RENAME"
	case OpSymlink:
		return "SYMLINK"
	case OpLink:
		return "LINK"
	case OpReadlink:
		return "READLINK"
	case OpInvalidate:
		return "INVALIDATE"
	default:
		return "UNKNOWN"
	}
}

// Status is the second word of a response frame. A value of StatusOK means
// the request succeeded; any other value is a POSIX-ish errno carried back
// to the caller. See errno.go for the mapping to syscall.Errno.
type Status uint16

const (
	StatusOK Status = 0
)

// HeaderSize is the number of bytes in the fixed frame header: an 8-byte
// total-size field (inclusive of itself) followed by a 2-byte opcode or
// status word.
const HeaderSize = 10

// AttrSize is the fixed width of a marshaled Attr record.
const AttrSize = 64

// DefaultPort is the TCP port (or vsock port) the server listens on and the
// client dials by default.
const DefaultPort = 5001

// DefaultConnections is the default size of the client's request connection
// pool, matching the four-connection layout of the original HyperVSocks
// server (SOCKET_NUM).
const DefaultConnections = 4
