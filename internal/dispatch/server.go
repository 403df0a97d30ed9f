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

// Package dispatch implements the host server: an accept loop bounded to a
// configured number of connections (one goroutine per connection, exactly
// as the original HyperVSocks.cpp main() spawns one thread per accepted
// socket up to SOCKET_NUM), an opcode switch over internal/hostfs, and an
// invalidation producer that pushes changed paths down the dedicated
// invalidation connection.
package dispatch

import (
	"io"
	"log"
	"net"
	"sync"

	"github.com/hypervfs/hypervfs/internal/hostfs"
	"github.com/hypervfs/hypervfs/wire"
)

// Server dispatches requests against a single exported root directory.
type Server struct {
	Root        *hostfs.Root
	Connections int // number of request connections; the next accepted connection becomes the invalidation channel
	Logger      *log.Logger

	invalidate *invalidator
}

func (s *Server) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

func (s *Server) connections() int {
	if s.Connections <= 0 {
		return wire.DefaultConnections
	}
	return s.Connections
}

// Serve accepts Connections()+1 connections from ln: the first Connections()
// are request connections, each served by its own goroutine; the last is
// the invalidation channel. Serve accepts no further connections after
// that; it returns nil once every accepted connection's goroutine has
// finished, or, on an accept error, returns that error once the goroutines
// started so far have finished.
func (s *Server) Serve(ln net.Listener) error {
	if s.invalidate == nil {
		s.invalidate = newInvalidator()
	}

	var wg sync.WaitGroup
	total := s.connections() + 1

	for i := 0; i < total; i++ {
		conn, err := ln.Accept()
		if err != nil {
			wg.Wait()
			return err
		}

		if i < s.connections() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.handleConn(conn)
			}()
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.invalidate.serve(conn, s.logger())
			}()
		}
	}

	wg.Wait()
	return nil
}

// Watch starts a host-filesystem change watcher rooted at s.Root and wires
// its output into the invalidation channel. Changed paths observed before a
// client has connected its invalidation channel are queued in the
// invalidator's 256-entry buffer and sent once the channel connects; paths
// observed while that buffer is full are dropped.
func (s *Server) Watch() (io.Closer, error) {
	if s.invalidate == nil {
		s.invalidate = newInvalidator()
	}
	return watchRoot(s.Root, s.invalidate, s.logger())
}

// ServeOne runs the request-handling loop for a single already-accepted
// connection, without the accept-loop bookkeeping Serve does. It is used
// directly by callers that hand the server a connection out of band (tests
// wiring a net.Pipe, or a future multiplexed transport).
func (s *Server) ServeOne(conn net.Conn) {
	s.handleConn(conn)
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	log := s.logger()

	for {
		frame, err := wire.ReadFrame(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("dispatch: read frame: %v", err)
			}
			return
		}

		status, payload := s.handle(wire.Opcode(frame.Code), frame.Payload)
		if err := wire.WriteFrame(conn, uint16(status), payload); err != nil {
			log.Printf("dispatch: write frame: %v", err)
			return
		}
	}
}
