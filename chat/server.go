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
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	gerrors "github.com/tochemey/tcpchat/errors"
	"github.com/tochemey/tcpchat/internal/tcp"
	"github.com/tochemey/tcpchat/internal/validation"
	"github.com/tochemey/tcpchat/log"
)

const (
	// DefaultMailboxCapacity is the default number of pending messages per connection
	DefaultMailboxCapacity = 100
	// DefaultReadBufferSize is the default size of a single read
	DefaultReadBufferSize = 1024
	// DefaultUsernameAttempts is the default number of blank usernames tolerated
	DefaultUsernameAttempts = 3
	// DefaultWriteTimeout is the default bound of a single socket write
	DefaultWriteTimeout = 30 * time.Second
	// DefaultShutdownTimeout is the default time Stop waits for connections
	DefaultShutdownTimeout = 10 * time.Second
)

// Server is the chat server. It accepts clients, keeps them in a Registry
// and relays every message a client sends to all the other clients.
type Server struct {
	address          string
	logger           log.Logger
	mailboxCapacity  int
	readBufferSize   int
	usernameAttempts int
	idleTimeout      time.Duration
	writeTimeout     time.Duration
	shutdownTimeout  time.Duration
	maxConnections   int
	keepAlive        time.Duration
	fastOpenQueueLen int
	messageRate      rate.Limit
	messageBurst     int
	meterProvider    metric.MeterProvider
	identifier       IdentifierFunc

	registry    *Registry
	broadcaster *Broadcaster
	metrics     *Metrics
	mu          sync.RWMutex
	tcpServer   *tcp.Server
	serveDone   chan error
	started     *atomic.Bool
	stopped     *atomic.Bool
}

// NewServer creates a chat server listening on address once started.
func NewServer(address string, opts ...Option) (*Server, error) {
	server := &Server{
		address:          address,
		logger:           log.DefaultLogger,
		mailboxCapacity:  DefaultMailboxCapacity,
		readBufferSize:   DefaultReadBufferSize,
		usernameAttempts: DefaultUsernameAttempts,
		writeTimeout:     DefaultWriteTimeout,
		shutdownTimeout:  DefaultShutdownTimeout,
		keepAlive:        tcp.DefaultKeepAlive,
		messageBurst:     1,
		meterProvider:    otel.GetMeterProvider(),
		identifier:       NewConnectionID,
		registry:         NewRegistry(),
		started:          atomic.NewBool(false),
		stopped:          atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(server)
	}

	if err := server.validate(); err != nil {
		return nil, gerrors.NewInvalidConfigError(err)
	}

	metrics, err := NewMetrics(server.meterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}

	server.metrics = metrics
	server.broadcaster = NewBroadcaster(server.registry, server.logger, metrics)
	return server, nil
}

// Start binds the listener and starts accepting clients in the background.
// A bind failure is returned as is: no client can be served without it.
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return gerrors.ErrServerAlreadyStarted
	}

	tcpServer, err := tcp.NewServer(s.address,
		tcp.WithListenConfig(s.listenConfig()),
		tcp.WithRequestHandler(s.serveConn),
		tcp.WithMaxConnections(s.maxConnections))
	if err != nil {
		s.started.Store(false)
		return err
	}

	if err := tcpServer.Listen(ctx); err != nil {
		s.started.Store(false)
		return fmt.Errorf("failed to bind %s: %w", s.address, err)
	}

	serveDone := make(chan error, 1)
	s.mu.Lock()
	s.tcpServer = tcpServer
	s.serveDone = serveDone
	s.mu.Unlock()

	go func() {
		serveDone <- tcpServer.Serve()
	}()

	s.logger.Infof("chat server listening on %s", s.advertisedAddr())
	return nil
}

// Stop stops accepting clients, disconnects the connected ones and waits
// for their cleanup, bounded by the shutdown timeout and ctx.
func (s *Server) Stop(ctx context.Context) error {
	if !s.started.Load() {
		return gerrors.ErrServerNotStarted
	}

	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.RLock()
	tcpServer, serveDone := s.tcpServer, s.serveDone
	s.mu.RUnlock()

	if tcpServer == nil {
		// Start is still binding
		s.stopped.Store(false)
		return gerrors.ErrServerNotStarted
	}

	if err := tcpServer.Shutdown(s.shutdownTimeout); err != nil {
		s.logger.Warnf("failed to close the listener: %v", err)
	}

	select {
	case err := <-serveDone:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("chat server stopped")
	return s.logger.Flush()
}

// listenConfig returns the socket options of the listener
func (s *Server) listenConfig() *tcp.ListenConfig {
	config := tcp.NewListenConfig()
	config.KeepAlive = s.keepAlive
	if s.fastOpenQueueLen > 0 {
		config.SocketFastOpen = true
		config.SocketFastOpenQueueLen = s.fastOpenQueueLen
	}
	return config
}

// Run starts the server and blocks until ctx is done, then stops it.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout+time.Second)
	defer cancel()
	return s.Stop(stopCtx)
}

// Addr returns the listening address, nil before Start.
func (s *Server) Addr() *net.TCPAddr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tcpServer == nil {
		return nil
	}
	return s.tcpServer.ListenAddr()
}

// Registry returns the registry of live connections.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Broadcaster returns the broadcaster used to relay messages.
func (s *Server) Broadcaster() *Broadcaster {
	return s.broadcaster
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	id := s.identifier(conn)
	logger := s.logger.With("connection", string(id), "remote", conn.RemoteAddr().String())

	mailbox := NewBoundedMailbox(s.mailboxCapacity)
	if _, err := s.registry.Register(id, conn.RemoteAddr().String(), mailbox); err != nil {
		mailbox.Dispose()
		logger.Error(err)
		return
	}

	s.metrics.connectionOpened(ctx)
	defer s.metrics.connectionClosed(context.WithoutCancel(ctx))
	logger.Debug("connection accepted")

	actor := newConnectionActor(id, conn, mailbox, s.registry, s.broadcaster, logger, s.metrics, actorSettings{
		readBufferSize:   s.readBufferSize,
		usernameAttempts: s.usernameAttempts,
		idleTimeout:      s.idleTimeout,
		writeTimeout:     s.writeTimeout,
		messageRate:      s.messageRate,
		messageBurst:     s.messageBurst,
	})

	if err := actor.Run(ctx); err != nil {
		logger.Warnf("connection terminated: %v", err)
		return
	}
	logger.Debug("connection closed")
}

func (s *Server) advertisedAddr() string {
	addr := s.Addr()
	if addr == nil {
		return s.address
	}

	ip, err := tcp.GetBindIP(addr.String())
	if err != nil {
		return addr.String()
	}
	return net.JoinHostPort(ip, strconv.Itoa(addr.Port))
}

func (s *Server) validate() error {
	return validation.New(validation.AllErrors()).
		AddValidator(validation.NewTCPAddressValidator(s.address)).
		AddAssertion(s.logger != nil, "logger is required").
		AddAssertion(s.mailboxCapacity > 0, "mailbox capacity must be positive").
		AddAssertion(s.readBufferSize > 0, "read buffer size must be positive").
		AddAssertion(s.usernameAttempts > 0, "username attempts must be positive").
		AddAssertion(s.idleTimeout >= 0, "idle timeout cannot be negative").
		AddAssertion(s.writeTimeout >= 0, "write timeout cannot be negative").
		AddAssertion(s.shutdownTimeout >= 0, "shutdown timeout cannot be negative").
		AddAssertion(s.maxConnections >= 0, "max connections cannot be negative").
		AddAssertion(s.fastOpenQueueLen >= 0, "fast open queue length cannot be negative").
		AddAssertion(s.messageRate >= 0, "message rate cannot be negative").
		AddAssertion(s.meterProvider != nil, "meter provider is required").
		AddAssertion(s.identifier != nil, "identifier is required").
		Validate()
}
