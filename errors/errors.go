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

// Package errors holds the sentinel errors shared by the chat server and client.
// Callers match them with errors.Is since most of them are returned wrapped.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionNotFound is returned when an operation targets a connection id
	// that is not present in the registry.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrConnectionExists is returned when a connection id is registered twice.
	ErrConnectionExists = errors.New("connection already registered")

	// ErrMailboxFull is returned when a message cannot be enqueued because the
	// recipient mailbox reached its capacity.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrMailboxClosed is returned when a message is enqueued to, or dequeued from,
	// a mailbox that no longer accepts messages.
	ErrMailboxClosed = errors.New("mailbox is closed")

	// ErrProtocolViolation is returned when a peer keeps sending input that the
	// chat protocol does not accept, such as blank usernames.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrEmptyUsername is returned when a username is blank after trimming.
	ErrEmptyUsername = errors.New("username cannot be empty")
	// ErrInvalidUsername is returned when a username is not valid UTF-8.
	ErrInvalidUsername = errors.New("username is not valid UTF-8")

	// ErrServerNotStarted is returned when stopping a server that has not been started.
	ErrServerNotStarted = errors.New("chat server is not started")
	// ErrServerAlreadyStarted is returned when starting a server twice.
	ErrServerAlreadyStarted = errors.New("chat server is already started")

	// ErrNoListener is returned when serving before the listener is created.
	ErrNoListener = errors.New("tcp: no listener, call Listen first")
	// ErrInvalidListener is returned when the listener is not a TCP listener.
	ErrInvalidListener = errors.New("tcp: invalid listener")
	// ErrServerShutdown is returned when listening on a server that already shut down.
	ErrServerShutdown = errors.New("tcp: server is shut down")

	// ErrConnectionSevered is returned by the client when the server closes the stream.
	ErrConnectionSevered = errors.New("connection with server was severed")
	// ErrNotConnected is returned when the client is used before dialing.
	ErrNotConnected = errors.New("client is not connected")
)

// InvalidConfigError wraps the violations found while validating a configuration.
type InvalidConfigError struct {
	err error
}

var _ error = (*InvalidConfigError)(nil)

// NewInvalidConfigError creates an instance of InvalidConfigError
func NewInvalidConfigError(err error) InvalidConfigError {
	return InvalidConfigError{err: err}
}

// Error implements the standard error interface
func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", e.err)
}

// Unwrap implements the standard error unwrapping
func (e InvalidConfigError) Unwrap() error {
	return e.err
}
