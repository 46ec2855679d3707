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
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/net/netutil"

	gerrors "github.com/tochemey/tcpchat/errors"
)

// HandlerFunc serves one accepted connection. The context is canceled when
// the server shuts down; the connection is closed once the handler returns.
type HandlerFunc func(ctx context.Context, conn net.Conn)

// ServerOption configures a [Server] before it is started.
type ServerOption func(*Server)

// Server accepts TCP connections on a single address and serves each of them
// on its own goroutine. Create it with [NewServer], call [Server.Listen] then
// [Server.Serve], and stop it with [Server.Shutdown].
type Server struct {
	listenAddr        *net.TCPAddr
	listener          net.Listener
	handler           HandlerFunc
	listenConfig      *ListenConfig
	maxConnections    int
	ctx               context.Context
	cancel            context.CancelFunc
	connWaitGroup     sync.WaitGroup
	mu                sync.Mutex
	shutdownTimeout   *atomic.Duration
	activeConnections *atomic.Int32
	shutdown          *atomic.Bool
}

// NewServer creates a [Server] bound to the given address (host:port).
func NewServer(listenAddr string, opts ...ServerOption) (*Server, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("resolving address %q: %w", listenAddr, err)
	}

	s := &Server{
		listenAddr:        tcpAddr,
		listenConfig:      NewListenConfig(),
		handler:           func(context.Context, net.Conn) {},
		shutdownTimeout:   atomic.NewDuration(0),
		activeConnections: atomic.NewInt32(0),
		shutdown:          atomic.NewBool(false),
	}

	for _, o := range opts {
		o(s)
	}

	return s, nil
}

// WithListenConfig overrides the default [ListenConfig].
func WithListenConfig(config *ListenConfig) ServerOption {
	return func(s *Server) {
		if config != nil {
			s.listenConfig = config
		}
	}
}

// WithRequestHandler sets the callback invoked for every accepted connection.
func WithRequestHandler(f HandlerFunc) ServerOption {
	return func(s *Server) {
		if f != nil {
			s.handler = f
		}
	}
}

// WithMaxConnections caps the number of connections served at once. Further
// clients wait in the accept backlog until a slot frees up. Zero means unlimited.
func WithMaxConnections(limit int) ServerOption {
	return func(s *Server) { s.maxConnections = limit }
}

// ListenConfig returns the [ListenConfig] used to create the listening socket.
func (s *Server) ListenConfig() *ListenConfig {
	return s.listenConfig
}

// ListenAddr returns the address the server is listening on, which is useful
// when the server was started on port 0. Returns nil before [Server.Listen].
func (s *Server) ListenAddr() *net.TCPAddr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	addr, _ := s.listener.Addr().(*net.TCPAddr)
	return addr
}

// Listen creates the TCP listener. The parent context bounds the lifetime of
// the contexts handed to request handlers.
func (s *Server) Listen(ctx context.Context) error {
	if s.shutdown.Load() {
		return gerrors.ErrServerShutdown
	}

	network := "tcp4"
	if IsIPv6Addr(s.listenAddr) {
		network = "tcp6"
	}

	lc := s.listenConfig.netListenConfig()
	listener, err := lc.Listen(ctx, network, s.listenAddr.String())
	if err != nil {
		return err
	}

	if _, ok := listener.(*net.TCPListener); !ok {
		return errors.Join(listener.Close(), gerrors.ErrInvalidListener)
	}

	if s.maxConnections > 0 {
		listener = netutil.LimitListener(listener, s.maxConnections)
	}

	s.mu.Lock()
	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Unlock()
	return nil
}

// Serve runs the accept loop and blocks until the server is shut down and the
// in-flight handlers returned, or the shutdown timeout elapsed.
func (s *Server) Serve() error {
	s.mu.Lock()
	listener := s.listener
	ctx := s.ctx
	s.mu.Unlock()

	if listener == nil {
		return gerrors.ErrNoListener
	}

	if err := s.acceptLoop(ctx, listener); err != nil {
		return err
	}

	return s.awaitConnections()
}

// Shutdown stops accepting connections and cancels the handler contexts.
// Serve then waits for the handlers depending on d:
//   - d > 0: wait up to d.
//   - d == 0: wait indefinitely.
//   - d < 0: return immediately.
//
// Shutdown is idempotent.
func (s *Server) Shutdown(d time.Duration) error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	s.shutdownTimeout.Store(d)

	s.mu.Lock()
	listener, cancel := s.listener, s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if listener == nil {
		return nil
	}
	return listener.Close()
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}

			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}

			return err
		}

		s.connWaitGroup.Add(1)
		go s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	s.activeConnections.Inc()
	defer func() {
		// the handler is done with the connection, the close error carries no information
		_ = conn.Close()
		s.activeConnections.Dec()
		s.connWaitGroup.Done()
	}()

	s.handler(ctx, conn)
}

func (s *Server) awaitConnections() error {
	timeout := s.shutdownTimeout.Load()
	if timeout < 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.connWaitGroup.Wait()
		close(done)
	}()

	if timeout == 0 {
		<-done
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("tcp: %d connections still active after %s", s.activeConnections.Load(), timeout)
	}
}

// IsIPv6Addr reports whether addr is an IPv6 address.
func IsIPv6Addr(addr *net.TCPAddr) bool {
	return addr.IP.To4() == nil && len(addr.IP) == net.IPv6len
}
