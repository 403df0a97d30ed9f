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

// Command hypervfs-client mounts a directory exported by hypervfs-server
// over a HyperV socket (or TCP) connection, presenting it at a local mount
// point via jacobsa/fuse.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"

	"github.com/jacobsa/daemonize"
	"github.com/jacobsa/fuse"

	"github.com/hypervfs/hypervfs/internal/clientpool"
	"github.com/hypervfs/hypervfs/internal/invalidate"
	"github.com/hypervfs/hypervfs/internal/vfsadapter"
	"github.com/hypervfs/hypervfs/transport"
	"github.com/hypervfs/hypervfs/wire"
)

var (
	fMountPoint  = flag.String("mountpoint", "", "Path to mount point.")
	fServer      = flag.String("server", "", "host:port of the hypervfs-server to dial (TCP mode).")
	fContextID   = flag.Uint("vsock_cid", 0, "vsock context ID of the hypervfs-server (vsock mode; requires a vsock-tagged build).")
	fVSock       = flag.Bool("vsock", false, "Dial over AF_VSOCK instead of TCP.")
	fConnections = flag.Int("connections", wire.DefaultConnections, "Number of pooled request connections.")
	fForeground  = flag.Bool("foreground", false, "Run in the foreground instead of daemonizing.")
	fDebug       = flag.Bool("fuse.debug", false, "Enable verbose FUSE debug logging.")
	fVersion     = flag.Bool("version", false, "Print the version and exit.")
)

const version = "0.1.0"

func serverAddr() (transport.Addr, error) {
	if *fVSock {
		return transport.VSockAddr(uint32(*fContextID), wire.DefaultPort), nil
	}
	if *fServer == "" {
		return transport.Addr{}, fmt.Errorf("--server is required in TCP mode")
	}
	host, portStr, err := net.SplitHostPort(*fServer)
	if err != nil {
		// No port given: dial the bare host on the default port.
		return transport.TCPAddr(*fServer, wire.DefaultPort), nil
	}
	port, err := strconv.ParseUint(portStr, 10, 32)
	if err != nil {
		return transport.Addr{}, fmt.Errorf("--server: invalid port %q", portStr)
	}
	return transport.TCPAddr(host, uint32(port)), nil
}

func main() {
	flag.Parse()

	if *fVersion {
		fmt.Println(version)
		return
	}

	if *fMountPoint == "" {
		log.Fatalf("You must set --mountpoint.")
	}

	if !*fForeground {
		daemonizeSelf()
		return
	}

	errorLogger := log.New(os.Stderr, "hypervfs: ", log.Ldate|log.Ltime|log.Lmicroseconds)

	if err := run(errorLogger); err != nil {
		daemonize.SignalOutcome(err)
		errorLogger.Fatalf("%v", err)
	}
	daemonize.SignalOutcome(nil)
}

func run(logger *log.Logger) error {
	addr, err := serverAddr()
	if err != nil {
		return err
	}

	ctx := context.Background()

	// One connection is reserved for the dedicated invalidation channel, in
	// addition to the request pool.
	pool, err := clientpool.Dial(ctx, addr, *fConnections)
	if err != nil {
		return fmt.Errorf("dial request pool: %w", err)
	}

	invConn, err := transport.Dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("dial invalidation channel: %w", err)
	}

	adapter := vfsadapter.New(pool, *fMountPoint, logger)
	notifier := fuse.NewNotifier()
	server := fuse.NewServerWithNotifier(notifier, vfsadapter.NewFuseServer(adapter))

	go func() {
		if err := invalidate.Run(invConn, notifier, adapter, logger); err != nil {
			logger.Printf("invalidation channel closed: %v", err)
		}
	}()

	if err := os.MkdirAll(*fMountPoint, 0777); err != nil {
		return fmt.Errorf("create mount point: %w", err)
	}

	cfg := &fuse.MountConfig{ErrorLogger: logger}
	if *fDebug {
		cfg.DebugLogger = log.New(os.Stdout, "hypervfs: ", 0)
	}

	mfs, err := fuse.Mount(*fMountPoint, server, cfg)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	return mfs.Join(context.Background())
}

// daemonizeSelf re-execs this binary with --foreground in the background,
// the same pattern gcsfuse's legacy_main.go uses to implement
// background-by-default mounting.
func daemonizeSelf() {
	path, err := os.Executable()
	if err != nil {
		log.Fatalf("find executable: %v", err)
	}

	args := append(os.Args[1:], "--foreground")
	env := os.Environ()

	if err := daemonize.Run(path, args, env, os.Stdout); err != nil {
		log.Fatalf("daemonize: %v", err)
	}
}
