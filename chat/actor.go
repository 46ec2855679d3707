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
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	gerrors "github.com/tochemey/tcpchat/errors"
	"github.com/tochemey/tcpchat/log"
)

type actorSettings struct {
	readBufferSize   int
	usernameAttempts int
	idleTimeout      time.Duration
	writeTimeout     time.Duration
	messageRate      rate.Limit
	messageBurst     int
}

// ConnectionActor serves a single client connection. Its reader drives the
// Connecting, Active, Closing, Closed state machine while its writer drains
// the mailbox and is the only goroutine writing to the socket.
type ConnectionActor struct {
	id          ConnectionID
	conn        net.Conn
	mailbox     Mailbox
	registry    *Registry
	broadcaster *Broadcaster
	logger      log.Logger
	metrics     *Metrics
	settings    actorSettings
	limiter     *rate.Limiter
	state       *atomic.Int32

	// owned by the reader
	username string
	attempts int
}

func newConnectionActor(
	id ConnectionID,
	conn net.Conn,
	mailbox Mailbox,
	registry *Registry,
	broadcaster *Broadcaster,
	logger log.Logger,
	metrics *Metrics,
	settings actorSettings,
) *ConnectionActor {
	actor := &ConnectionActor{
		id:          id,
		conn:        conn,
		mailbox:     mailbox,
		registry:    registry,
		broadcaster: broadcaster,
		logger:      logger,
		metrics:     metrics,
		settings:    settings,
		state:       atomic.NewInt32(int32(Connecting)),
	}

	if settings.readBufferSize < 1 {
		actor.settings.readBufferSize = DefaultReadBufferSize
	}

	if settings.usernameAttempts < 1 {
		actor.settings.usernameAttempts = 1
	}

	if settings.messageRate > 0 {
		actor.limiter = rate.NewLimiter(settings.messageRate, max(settings.messageBurst, 1))
	}
	return actor
}

// ID returns the connection id
func (a *ConnectionActor) ID() ConnectionID {
	return a.id
}

// State returns the current state
func (a *ConnectionActor) State() State {
	return State(a.state.Load())
}

// Run serves the connection until the peer goes away, violates the protocol
// or ctx is canceled. Normal disconnects and cancellation return nil.
// The connection must already be registered under the actor id.
func (a *ConnectionActor) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = a.conn.Close()
	})
	defer stop()

	writer := new(errgroup.Group)
	writer.Go(func() error {
		return a.writeLoop(ctx)
	})

	readErr := a.readLoop(ctx)
	writeErr := a.shutdown(ctx, writer)
	return a.outcome(ctx, readErr, writeErr)
}

func (a *ConnectionActor) readLoop(ctx context.Context) error {
	buf := make([]byte, a.settings.readBufferSize)
	for {
		if a.settings.idleTimeout > 0 {
			if err := a.conn.SetReadDeadline(time.Now().Add(a.settings.idleTimeout)); err != nil {
				return err
			}
		}

		n, err := a.conn.Read(buf)
		// bytes returned along with an error are still a message
		if n > 0 {
			if herr := a.handle(ctx, decode(buf[:n])); herr != nil {
				return herr
			}
		}

		if err != nil {
			return err
		}
	}
}

func (a *ConnectionActor) handle(ctx context.Context, text string) error {
	if a.State() == Connecting {
		return a.register(ctx, text)
	}

	if a.limiter != nil && !a.limiter.Allow() {
		a.metrics.deliveryDropped(ctx, "rate_limited")
		a.logger.Warnf("%s is over the message rate, dropping %d bytes", a.username, len(text))
		return nil
	}

	delivered := a.broadcaster.Broadcast(ctx, a.id, text)
	a.logger.Debugf("message from %s delivered to %d peers", a.username, delivered)
	return nil
}

func (a *ConnectionActor) register(ctx context.Context, text string) error {
	username := strings.TrimSpace(text)
	if username == "" {
		a.attempts++
		a.metrics.usernameRejected(ctx)
		if a.attempts >= a.settings.usernameAttempts {
			a.notify(tooManyAttemptsNotice)
			return fmt.Errorf("%d blank usernames: %w", a.attempts, gerrors.ErrProtocolViolation)
		}
		a.notify(emptyUsernameNotice)
		return nil
	}

	if err := a.registry.SetUsername(a.id, username); err != nil {
		return err
	}

	a.username = username
	a.state.Store(int32(Active))
	a.logger.Infof("%s joined the chat", username)
	a.broadcaster.Broadcast(ctx, a.id, joinNotice(username))
	return nil
}

// notify queues a message for this connection only
func (a *ConnectionActor) notify(text string) {
	if err := a.mailbox.Enqueue(text); err != nil {
		a.logger.Warnf("failed to notify %s: %v", a.id, err)
	}
}

func (a *ConnectionActor) writeLoop(ctx context.Context) error {
	for {
		msg, err := a.mailbox.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, gerrors.ErrMailboxClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		if a.settings.writeTimeout > 0 {
			_ = a.conn.SetWriteDeadline(time.Now().Add(a.settings.writeTimeout))
		}

		if _, err := io.WriteString(a.conn, msg); err != nil {
			// the reader notices the closed socket and starts the cleanup
			a.mailbox.Dispose()
			_ = a.conn.Close()
			return fmt.Errorf("write to %s: %w", a.id, err)
		}
	}
}

// shutdown runs the Closing to Closed transition once the reader stopped.
func (a *ConnectionActor) shutdown(ctx context.Context, writer *errgroup.Group) error {
	previous := State(a.state.Swap(int32(Closing)))
	if previous == Active {
		a.broadcaster.Broadcast(ctx, a.id, leaveNotice(a.username))
		a.logger.Infof("%s left the chat", a.username)
	}

	a.registry.Remove(a.id)

	// let the writer flush what is pending, including a rejection notice
	a.mailbox.Close()
	err := writer.Wait()
	a.mailbox.Dispose()

	_ = a.conn.Close()
	a.state.Store(int32(Closed))
	return err
}

func (a *ConnectionActor) outcome(ctx context.Context, readErr, writeErr error) error {
	switch {
	case readErr == nil:
	case errors.Is(readErr, gerrors.ErrProtocolViolation):
		return readErr
	case errors.Is(readErr, io.EOF), ctx.Err() != nil:
		// writes pending for a departed peer are expected to fail
		return nil
	case writeErr != nil && isClosed(readErr):
		// the writer closed the socket, its error tells why
		readErr = nil
	case isTimeout(readErr):
		a.logger.Infof("%s idle for more than %s, disconnecting", a.id, a.settings.idleTimeout)
		readErr = nil
	default:
		readErr = fmt.Errorf("read from %s: %w", a.id, readErr)
	}

	return multierr.Combine(readErr, writeErr)
}

// isClosed reports whether err comes from reading a socket closed locally
func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
