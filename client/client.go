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

// Package client implements the terminal side of the chat: it registers a
// username, forwards input lines to the server and prints what the server sends.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/flowchartsman/retry"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/tcpchat/errors"
	"github.com/tochemey/tcpchat/log"
)

const (
	// UsernamePrompt is printed before reading the username
	UsernamePrompt = "Please enter your username."

	defaultDialRetries    = 5
	defaultDialTimeout    = 5 * time.Second
	defaultReadBufferSize = 1024
)

// Client is a connection to a chat server
type Client struct {
	address        string
	logger         log.Logger
	dialRetries    int
	dialTimeout    time.Duration
	readBufferSize int

	conn    net.Conn
	writeMu sync.Mutex
	closed  *atomic.Bool
}

// New creates a Client for the server at address. Call Connect before use.
func New(address string, opts ...Option) *Client {
	client := &Client{
		address:        address,
		logger:         log.DiscardLogger,
		dialRetries:    defaultDialRetries,
		dialTimeout:    defaultDialTimeout,
		readBufferSize: defaultReadBufferSize,
		closed:         atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(client)
	}
	return client
}

// Dial creates a Client and connects it.
func Dial(ctx context.Context, address string, opts ...Option) (*Client, error) {
	client := New(address, opts...)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Connect dials the server, retrying with a backoff when it is not reachable yet.
func (c *Client) Connect(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: c.dialTimeout}
	retrier := retry.NewRetrier(max(c.dialRetries, 1), 100*time.Millisecond, time.Second)

	var conn net.Conn
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		var err error
		conn, err = dialer.DialContext(ctx, "tcp", c.address)
		if err != nil {
			c.logger.Debugf("failed to reach %s: %v", c.address, err)
		}
		return err
	})

	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.address, err)
	}

	c.conn = conn
	c.logger.Infof("connected to %s", c.address)
	return nil
}

// Join registers the username. It must be the first message sent.
func (c *Client) Join(username string) error {
	return c.Send(username)
}

// Send writes text as is to the server.
func (c *Client) Send(text string) error {
	if c.conn == nil {
		return gerrors.ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := io.WriteString(c.conn, text)
	return err
}

// Receive copies every chunk sent by the server to sink until the server
// closes the connection, which yields ErrConnectionSevered. It returns nil
// when the client was closed locally and ctx.Err() when ctx is done.
func (c *Client) Receive(ctx context.Context, sink io.Writer) error {
	if c.conn == nil {
		return gerrors.ErrNotConnected
	}

	stop := context.AfterFunc(ctx, func() {
		_ = c.Close()
	})
	defer stop()

	buf := make([]byte, c.readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return werr
			}
		}

		if err != nil {
			switch {
			case ctx.Err() != nil:
				return ctx.Err()
			case c.closed.Load():
				return nil
			default:
				return fmt.Errorf("%w: %v", gerrors.ErrConnectionSevered, err)
			}
		}
	}
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	if c.conn == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

// ReadUsername reads one line and returns it trimmed. A line that is not
// valid UTF-8 or blank after trimming is rejected.
func ReadUsername(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	if !utf8.ValidString(line) {
		return "", gerrors.ErrInvalidUsername
	}

	username := strings.TrimSpace(line)
	if username == "" {
		return "", gerrors.ErrEmptyUsername
	}
	return username, nil
}
