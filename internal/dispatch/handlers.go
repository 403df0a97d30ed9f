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

package dispatch

import "github.com/hypervfs/hypervfs/wire"

// handle decodes payload per op, performs the corresponding hostfs
// operation, and returns the response status and body. On failure the body
// is always empty; callers only decode it after checking status == StatusOK.
func (s *Server) handle(op wire.Opcode, payload []byte) (wire.Status, []byte) {
	switch op {
	case wire.OpAttr:
		path, err := wire.DecodePathRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		attr, err := s.Root.Attr(path)
		if err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, wire.EncodeAttrResponse(attr)

	case wire.OpReadDir:
		path, err := wire.DecodePathRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		entries, err := s.Root.ReadDir(path)
		if err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, wire.EncodeDirents(entries)

	case wire.OpRead:
		req, err := wire.DecodeReadRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		data, err := s.Root.Read(req.Path, req.Offset, req.Size)
		if err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, wire.EncodeReadResponse(data)

	case wire.OpCreate:
		req, err := wire.DecodeModeRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		if _, err := s.Root.Create(req.Path, req.Mode); err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, nil

	case wire.OpWrite:
		req, err := wire.DecodeWriteRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		n, err := s.Root.Write(req.Path, req.Offset, req.Data)
		if err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, wire.EncodeWriteResponse(uint64(n))

	case wire.OpUnlink:
		path, err := wire.DecodePathRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		if err := s.Root.Unlink(path); err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, nil

	case wire.OpTruncate:
		req, err := wire.DecodeTruncateRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		if err := s.Root.Truncate(req.Path, req.Size); err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, nil

	case wire.OpMkdir:
		req, err := wire.DecodeModeRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		if _, err := s.Root.Mkdir(req.Path, req.Mode); err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, nil

	case wire.OpRmdir:
		path, err := wire.DecodePathRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		if err := s.Root.Rmdir(path); err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, nil

	case wire.OpRename:
		req, err := wire.DecodeTwoPathRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		if err := s.Root.Rename(req.OldPath, req.NewPath); err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, nil

	case wire.OpSymlink:
		req, err := wire.DecodeSymlinkRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		if _, err := s.Root.Symlink(req.LinkPath, req.Target, req.External); err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, nil

	case wire.OpLink:
		req, err := wire.DecodeTwoPathRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		if _, err := s.Root.Link(req.OldPath, req.NewPath); err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, nil

	case wire.OpReadlink:
		path, err := wire.DecodePathRequest(payload)
		if err != nil {
			return wire.StatusInval, nil
		}
		resp, err := s.Root.Readlink(path)
		if err != nil {
			return wire.StatusFromErrno(err), nil
		}
		return wire.StatusOK, wire.EncodeReadlinkResponse(resp)

	default:
		return wire.StatusNoSys, nil
	}
}
