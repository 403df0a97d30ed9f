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

import (
	"io"
	"log"
	"net"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hypervfs/hypervfs/internal/hostfs"
	"github.com/hypervfs/hypervfs/wire"
)

// invalidator fans changed guest-relative paths out to whichever connection
// currently holds the invalidation channel. There is no precedent for this
// in the original HyperVSocks.cpp (it has no cache-push mechanism at all);
// this is purely the spec's own addition.
type invalidator struct {
	paths chan string
}

func newInvalidator() *invalidator {
	return &invalidator{paths: make(chan string, 256)}
}

// push enqueues a path for delivery, dropping it if the channel is full
// rather than blocking the filesystem watcher.
func (n *invalidator) push(path string) {
	select {
	case n.paths <- path:
	default:
	}
}

// serve writes every pushed path to conn as an OpInvalidate frame until conn
// or the invalidator is closed.
func (n *invalidator) serve(conn net.Conn, logger *log.Logger) {
	defer conn.Close()
	for path := range n.paths {
		payload := wire.EncodePathRequest(path)
		if err := wire.WriteFrame(conn, uint16(wire.OpInvalidate), payload); err != nil {
			logger.Printf("dispatch: invalidation push failed, dropping channel: %v", err)
			return
		}
	}
}

// watcher wraps an fsnotify.Watcher so Watch's caller gets a single Closer.
type watcher struct {
	fw *fsnotify.Watcher
}

func (w *watcher) Close() error {
	return w.fw.Close()
}

// watchRoot recursively watches root.Dir() with fsnotify and pushes every
// changed path's guest-relative form into inv. fsnotify does not watch
// subtrees on its own, so every directory under the root is added
// individually, and newly created directories are added as they appear.
func watchRoot(root *hostfs.Root, inv *invalidator, logger *log.Logger) (io.Closer, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root.Dir(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if werr := fw.Add(path); werr != nil {
				logger.Printf("dispatch: watch %s: %v", path, werr)
			}
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create != 0 {
					if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
						fw.Add(event.Name)
					}
				}
				inv.push(root.GuestPath(event.Name))
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Printf("dispatch: watch error: %v", err)
			}
		}
	}()

	return &watcher{fw: fw}, nil
}
