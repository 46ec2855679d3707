// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package chat

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	gerrors "github.com/tochemey/tcpchat/errors"
)

// Registry tracks the live connections. All operations are safe for
// concurrent use and the lock is only held for map operations, never across
// socket or mailbox I/O.
type Registry struct {
	mu      sync.Mutex
	entries map[ConnectionID]*Connection
	seq     uint64
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ConnectionID]*Connection)}
}

// Register adds a connection with an empty username.
func (r *Registry) Register(id ConnectionID, remoteAddr string, mailbox Mailbox) (Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; ok {
		return Connection{}, fmt.Errorf("register %s: %w", id, gerrors.ErrConnectionExists)
	}

	r.seq++
	conn := &Connection{
		ID:          id,
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
		mailbox:     mailbox,
		seq:         r.seq,
	}
	r.entries[id] = conn
	return *conn, nil
}

// SetUsername sets, or overwrites, the username of a connection. Usernames
// are not required to be unique.
func (r *Registry) SetUsername(id ConnectionID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("set username of %s: %w", id, gerrors.ErrConnectionNotFound)
	}
	conn.Username = username
	return nil
}

// Remove deletes a connection and reports whether it was present.
// Removing an absent id is a no-op.
func (r *Registry) Remove(id ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Get returns a copy of the connection record.
func (r *Registry) Get(id ConnectionID) (Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.entries[id]
	if !ok {
		return Connection{}, false
	}
	return *conn, true
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot returns a point-in-time copy of the registered connections in
// registration order. Later registry changes do not affect the copy.
func (r *Registry) Snapshot() []Connection {
	r.mu.Lock()
	snapshot := make([]Connection, 0, len(r.entries))
	for _, conn := range r.entries {
		snapshot = append(snapshot, *conn)
	}
	r.mu.Unlock()

	slices.SortFunc(snapshot, func(a, b Connection) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return snapshot
}
