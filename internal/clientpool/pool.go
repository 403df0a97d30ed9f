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

// Package clientpool implements the client's request connection pool: a
// fixed number of persistent connections to the server, each one handling
// at most one outstanding request at a time, handed out FIFO to callers
// that block when every connection is checked out.
package clientpool

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/hypervfs/hypervfs/transport"
	"github.com/hypervfs/hypervfs/wire"
)

// Conn is one pooled connection plus a scratch Writer allocated with it.
// RoundTrip does not use the scratch Writer; request payloads are built by
// the caller.
type Conn struct {
	net.Conn
	scratch *wire.Writer
}

// RoundTrip sends a request frame and returns the decoded response frame.
// There is never more than one outstanding request per connection, so no
// request IDs are needed: whatever comes back next is this request's reply.
func (c *Conn) RoundTrip(op wire.Opcode, payload []byte) (wire.Frame, error) {
	if err := wire.WriteFrame(c, uint16(op), payload); err != nil {
		return wire.Frame{}, fmt.Errorf("clientpool: send %s: %w", op, err)
	}
	frame, err := wire.ReadFrame(c)
	if err != nil {
		return wire.Frame{}, fmt.Errorf("clientpool: receive reply to %s: %w", op, err)
	}
	return frame, nil
}

// Pool is a fixed-size, FIFO pool of persistent connections to a single
// server address. Callers Acquire a connection, use it for exactly one
// round trip (or a short related sequence of them), then Release it.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	idle   []*Conn
	closed bool
}

// Dial opens n connections to addr and returns a ready Pool. n should match
// wire.DefaultConnections unless the caller has a specific reason to
// deviate.
func Dial(ctx context.Context, addr transport.Addr, n int) (*Pool, error) {
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < n; i++ {
		conn, err := transport.Dial(ctx, addr)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("clientpool: dial connection %d/%d: %w", i+1, n, err)
		}
		p.idle = append(p.idle, &Conn{Conn: conn, scratch: wire.NewWriter(256)})
	}

	return p, nil
}

// NewFromConns builds a Pool directly from already-established connections,
// bypassing Dial. Useful for tests that wire a pool to an in-memory
// net.Pipe rather than a real dialed socket.
func NewFromConns(conns []net.Conn) *Pool {
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)
	for _, c := range conns {
		p.idle = append(p.idle, &Conn{Conn: c, scratch: wire.NewWriter(256)})
	}
	return p
}

// Acquire blocks until a connection is available or ctx is done. Waiters
// are served FIFO with respect to Release, since sync.Cond wakes waiters in
// the order they called Wait.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.idle) == 0 && !p.closed && ctx.Err() == nil {
		p.cond.Wait()
	}
	if p.closed {
		return nil, fmt.Errorf("clientpool: pool is closed")
	}
	if len(p.idle) == 0 {
		return nil, ctx.Err()
	}

	c := p.idle[0]
	p.idle = p.idle[1:]
	return c, nil
}

// Release returns c to the idle list, waking one blocked Acquire call.
func (p *Pool) Release(c *Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		c.Close()
		return
	}
	p.idle = append(p.idle, c)
	p.cond.Signal()
}

// Close closes every idle connection and wakes all blocked callers with an
// error. A connection that is checked out at that moment is closed when it
// is Released.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	for _, c := range p.idle {
		c.Close()
	}
	p.idle = nil
	p.cond.Broadcast()
	return nil
}

// Len reports the number of currently idle connections, for tests.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
