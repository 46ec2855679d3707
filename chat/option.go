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
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/tochemey/tcpchat/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(server *Server)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Server)

// Apply implements Option.
func (f OptionFunc) Apply(server *Server) {
	f(server)
}

// WithLogger sets the server logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(s *Server) {
		s.logger = logger
	})
}

// WithMailboxCapacity sets the number of pending outbound messages kept per
// connection. Messages sent to a full mailbox are dropped for that recipient.
func WithMailboxCapacity(capacity int) Option {
	return OptionFunc(func(s *Server) {
		s.mailboxCapacity = capacity
	})
}

// WithReadBufferSize sets the size of a single socket read
func WithReadBufferSize(size int) Option {
	return OptionFunc(func(s *Server) {
		s.readBufferSize = size
	})
}

// WithUsernameAttempts sets how many blank usernames a client can send before
// being disconnected
func WithUsernameAttempts(attempts int) Option {
	return OptionFunc(func(s *Server) {
		s.usernameAttempts = attempts
	})
}

// WithIdleTimeout disconnects clients that stay silent for the given duration.
// Zero disables it.
func WithIdleTimeout(timeout time.Duration) Option {
	return OptionFunc(func(s *Server) {
		s.idleTimeout = timeout
	})
}

// WithWriteTimeout bounds a single socket write. Zero disables it.
func WithWriteTimeout(timeout time.Duration) Option {
	return OptionFunc(func(s *Server) {
		s.writeTimeout = timeout
	})
}

// WithShutdownTimeout bounds the time Stop waits for connections to close.
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(s *Server) {
		s.shutdownTimeout = timeout
	})
}

// WithMaxConnections caps the number of connections served at once.
// Zero means unlimited.
func WithMaxConnections(limit int) Option {
	return OptionFunc(func(s *Server) {
		s.maxConnections = limit
	})
}

// WithKeepAlive sets the TCP keep-alive period of client connections.
// Zero uses the system default and a negative value disables keep-alives.
func WithKeepAlive(period time.Duration) Option {
	return OptionFunc(func(s *Server) {
		s.keepAlive = period
	})
}

// WithTCPFastOpen enables TCP fast open on Linux listeners with the given
// queue length. Zero disables it.
func WithTCPFastOpen(queueLen int) Option {
	return OptionFunc(func(s *Server) {
		s.fastOpenQueueLen = queueLen
	})
}

// WithMessageRate limits the chat messages accepted per connection. Messages
// above the limit are dropped. A zero limit disables rate limiting.
func WithMessageRate(limit float64, burst int) Option {
	return OptionFunc(func(s *Server) {
		s.messageRate = rate.Limit(limit)
		s.messageBurst = burst
	})
}

// WithMeterProvider sets the meter provider used to record the chat metrics
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(s *Server) {
		s.meterProvider = provider
	})
}

// WithIdentifier sets the function allocating connection ids
func WithIdentifier(identifier IdentifierFunc) Option {
	return OptionFunc(func(s *Server) {
		s.identifier = identifier
	})
}
