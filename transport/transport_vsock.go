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

//go:build vsock

package transport

import (
	"context"
	"net"

	"github.com/mdlayher/vsock"
)

func dialVSock(ctx context.Context, addr Addr) (net.Conn, error) {
	conn, err := vsock.Dial(addr.ContextID, addr.Port, nil)
	if err != nil {
		return nil, err
	}

	// vsock.Dial has no context support of its own; honor cancellation the
	// same way net.Dialer.DialContext does for a connection that raced past
	// an already-expired context.
	if err := ctx.Err(); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

func listenVSock(addr Addr) (net.Listener, error) {
	return vsock.Listen(addr.Port, nil)
}
