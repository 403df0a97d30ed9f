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

// Command hypervfs-server runs on the host and exports a directory tree to
// a hypervfs-client over a HyperV socket (or TCP) connection, the
// counterpart to the accept-bound, one-thread-per-connection server in the
// original HyperVSocks.cpp main().
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hypervfs/hypervfs/internal/dispatch"
	"github.com/hypervfs/hypervfs/internal/hostfs"
	"github.com/hypervfs/hypervfs/transport"
	"github.com/hypervfs/hypervfs/wire"
)

var (
	fRoot        = flag.String("root", "", "Directory to export.")
	fPort        = flag.Uint("port", wire.DefaultPort, "Port to listen on.")
	fConnections = flag.Int("connections", wire.DefaultConnections, "Number of request connections to accept before the invalidation channel.")
	fVSock       = flag.Bool("vsock", false, "Listen on AF_VSOCK instead of TCP (requires a vsock-tagged build).")
	fWatch       = flag.Bool("watch", true, "Watch the exported tree and push change notifications on the invalidation channel.")
)

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "hypervfs: ", log.Ldate|log.Ltime|log.Lmicroseconds)

	if err := run(logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(logger *log.Logger) error {
	if *fRoot == "" {
		return fmt.Errorf("--root is required")
	}

	fi, err := os.Stat(*fRoot)
	if err != nil {
		return fmt.Errorf("stat --root: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("--root %q is not a directory", *fRoot)
	}

	root := hostfs.NewRoot(*fRoot)
	server := &dispatch.Server{
		Root:        root,
		Connections: *fConnections,
		Logger:      logger,
	}

	var addr transport.Addr
	if *fVSock {
		addr = transport.VSockAddr(0, uint32(*fPort)) // 0 == bind on any context ID
	} else {
		addr = transport.TCPAddr("", uint32(*fPort))
	}

	ln, err := transport.Listen(addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	logger.Printf("exporting %s on %s", *fRoot, addr)

	if *fWatch {
		closer, err := server.Watch()
		if err != nil {
			logger.Printf("change watch disabled: %v", err)
		} else {
			defer closer.Close()
		}
	}

	return server.Serve(ln)
}
