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

package transport

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPDialListenRoundTrip(t *testing.T) {
	ln, err := Listen(TCPAddr("127.0.0.1", 0))
	require.NoError(t, err)
	defer ln.Close()

	acceptErr := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
		acceptErr <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	host, port := splitHostPort(t, ln.Addr().String())
	conn, err := Dial(ctx, TCPAddr(host, port))
	require.NoError(t, err)
	conn.Close()
	require.NoError(t, <-acceptErr)
}

func TestVSockUnavailableWithoutBuildTag(t *testing.T) {
	_, err := Dial(context.Background(), VSockAddr(3, 5001))
	assert.Error(t, err)

	_, err = Listen(VSockAddr(3, 5001))
	assert.Error(t, err)
}

func TestAddrString(t *testing.T) {
	assert.Equal(t, "tcp:127.0.0.1:5001", TCPAddr("127.0.0.1", 5001).String())
	assert.Equal(t, "vsock:3:5001", VSockAddr(3, 5001).String())
}

func splitHostPort(t *testing.T, addr string) (string, uint32) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	var port uint32
	_, err = fmt.Sscanf(portStr, "%d", &port)
	require.NoError(t, err)
	return host, port
}
