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
	"net"
	"time"

	"github.com/google/uuid"
)

// ConnectionID identifies a connection among the registered ones.
type ConnectionID string

// IdentifierFunc allocates the id of an accepted connection.
type IdentifierFunc func(conn net.Conn) ConnectionID

// NewConnectionID returns a random connection id.
func NewConnectionID(net.Conn) ConnectionID {
	return ConnectionID(uuid.NewString())
}

// RemoteAddrID uses the remote address of the peer as connection id.
func RemoteAddrID(conn net.Conn) ConnectionID {
	return ConnectionID(conn.RemoteAddr().String())
}

// Connection is the registry record of a live connection. The socket itself
// is owned by the connection actor and never exposed here.
type Connection struct {
	// ID is the connection id
	ID ConnectionID
	// Username is empty until the first message registers it
	Username string
	// RemoteAddr is the peer address
	RemoteAddr string
	// ConnectedAt is the registration time
	ConnectedAt time.Time

	mailbox Mailbox
	seq     uint64
}

// HasUsername reports whether the connection registered a username.
func (c Connection) HasUsername() bool {
	return c.Username != ""
}

// Mailbox returns the outbound mailbox of the connection.
func (c Connection) Mailbox() Mailbox {
	return c.mailbox
}
