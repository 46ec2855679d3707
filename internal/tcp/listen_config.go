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

package tcp

import (
	"net"
	"syscall"
	"time"
)

// controlFunc configures a raw socket before it is bound. See [net.ListenConfig.Control].
type controlFunc func(network, address string, c syscall.RawConn) error

// DefaultKeepAlive is the keep-alive period of accepted chat connections.
// Terminal clients often sit idle, so dead peers are probed sooner than the
// system default.
const DefaultKeepAlive = 15 * time.Second

const defaultFastOpenQueueLen = 256

// ListenConfig holds the socket options applied to the listening socket.
// The address is never shared: SO_REUSEPORT stays off so a second server on
// the same port fails to bind.
type ListenConfig struct {
	// SocketFastOpen enables TCP_FASTOPEN on Linux, letting returning clients
	// send their username with the SYN.
	SocketFastOpen bool
	// SocketFastOpenQueueLen bounds the pending fast open requests (default 256)
	SocketFastOpenQueueLen int
	// KeepAlive is the keep-alive period of accepted connections.
	// Zero uses the operating system default and a negative value disables it.
	KeepAlive time.Duration
}

// NewListenConfig returns the default listen configuration
func NewListenConfig() *ListenConfig {
	return &ListenConfig{KeepAlive: DefaultKeepAlive}
}

func (c *ListenConfig) netListenConfig() net.ListenConfig {
	return net.ListenConfig{
		KeepAlive: c.KeepAlive,
		Control:   applyListenSocketOptions(c),
	}
}

func (c *ListenConfig) fastOpenQueueLen() int {
	if c.SocketFastOpenQueueLen <= 0 {
		return defaultFastOpenQueueLen
	}
	return c.SocketFastOpenQueueLen
}
