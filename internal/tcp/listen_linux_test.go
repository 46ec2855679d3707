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

//go:build linux

package tcp

import (
	"context"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenConfig(t *testing.T) {
	t.Run("fast open is set on the listening socket", func(t *testing.T) {
		config := NewListenConfig()
		config.SocketFastOpen = true
		config.SocketFastOpenQueueLen = 16

		srv, err := NewServer("127.0.0.1:0", WithListenConfig(config))
		require.NoError(t, err)
		require.NoError(t, srv.Listen(context.Background()))
		defer func() { require.NoError(t, srv.Shutdown(0)) }()

		assert.Equal(t, 16, fastOpenQueueLen(t, srv.listener))
	})

	t.Run("fast open default queue length", func(t *testing.T) {
		config := &ListenConfig{SocketFastOpen: true}
		assert.Equal(t, defaultFastOpenQueueLen, config.fastOpenQueueLen())
		assert.NotNil(t, applyListenSocketOptions(config))
	})

	t.Run("no control hook without fast open", func(t *testing.T) {
		assert.Nil(t, applyListenSocketOptions(NewListenConfig()))
	})

	t.Run("keep alive is passed to the listener", func(t *testing.T) {
		config := &ListenConfig{KeepAlive: -1}
		assert.EqualValues(t, -1, config.netListenConfig().KeepAlive)
	})
}

func fastOpenQueueLen(t *testing.T, listener net.Listener) int {
	t.Helper()
	tcpListener, ok := listener.(*net.TCPListener)
	require.True(t, ok)

	raw, err := tcpListener.SyscallConn()
	require.NoError(t, err)

	var (
		value  int
		optErr error
	)
	require.NoError(t, raw.Control(func(fd uintptr) {
		value, optErr = syscall.GetsockoptInt(int(fd), syscall.IPPROTO_TCP, tcpFastOpen)
	}))
	require.NoError(t, optErr)
	return value
}
