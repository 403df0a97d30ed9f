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

// Package transport abstracts over the two carriers this protocol can run
// on: a HyperV socket (AF_VSOCK) between host and guest, or a plain TCP
// socket used as a fallback and for local development. Everything above
// this package only depends on net.Conn / net.Listener.
package transport

import (
	"context"
	"fmt"
	"net"
)

// Kind selects which concrete carrier Dial/Listen use.
type Kind int

const (
	// KindTCP dials/listens on a host:port TCP address. Works everywhere,
	// used as the default and as the local-development fallback.
	KindTCP Kind = iota
	// KindVSock dials/listens on an AF_VSOCK (HyperV socket) address. Only
	// available on platforms built with the vsock tag; see
	// transport_vsock.go.
	KindVSock
)

// Addr identifies a dial/listen target for either carrier.
type Addr struct {
	Kind Kind

	// TCP fields.
	Host string
	Port uint32

	// VSock fields: ContextID identifies the peer VM (or
	// vsock.Host/vsock.Local), Port is the vsock port number.
	ContextID uint32
}

// TCPAddr builds a TCP Addr.
func TCPAddr(host string, port uint32) Addr {
	return Addr{Kind: KindTCP, Host: host, Port: port}
}

// VSockAddr builds a vsock Addr.
func VSockAddr(contextID, port uint32) Addr {
	return Addr{Kind: KindVSock, ContextID: contextID, Port: port}
}

func (a Addr) String() string {
	switch a.Kind {
	case KindVSock:
		return fmt.Sprintf("vsock:%d:%d", a.ContextID, a.Port)
	default:
		return fmt.Sprintf("tcp:%s:%d", a.Host, a.Port)
	}
}

// Dial connects to addr using the carrier named by addr.Kind.
func Dial(ctx context.Context, addr Addr) (net.Conn, error) {
	switch addr.Kind {
	case KindVSock:
		return dialVSock(ctx, addr)
	default:
		var d net.Dialer
		return d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", addr.Host, addr.Port))
	}
}

// Listen opens a listener for addr using the carrier named by addr.Kind.
func Listen(addr Addr) (net.Listener, error) {
	switch addr.Kind {
	case KindVSock:
		return listenVSock(addr)
	default:
		return net.Listen("tcp", fmt.Sprintf("%s:%d", addr.Host, addr.Port))
	}
}
