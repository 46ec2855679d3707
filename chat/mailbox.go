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
	"sync"

	"github.com/Workiva/go-datastructures/queue"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/tcpchat/errors"
)

// Mailbox is the outbound queue of a connection. Any goroutine may enqueue;
// only the connection writer dequeues.
type Mailbox interface {
	// Enqueue adds a message without blocking. It returns ErrMailboxFull when
	// the mailbox reached its capacity and ErrMailboxClosed once closed.
	Enqueue(msg string) error
	// Dequeue blocks until a message is available, the mailbox is closed and
	// drained, or ctx is done.
	Dequeue(ctx context.Context) (string, error)
	// Len returns the number of pending messages.
	Len() int
	// Cap returns the capacity of the mailbox.
	Cap() int
	// Close stops accepting messages. Pending messages can still be dequeued.
	Close()
	// Dispose closes the mailbox and drops pending messages.
	Dispose()
}

// BoundedMailbox is a fixed capacity Mailbox backed by a lock-free ring buffer.
type BoundedMailbox struct {
	underlying  *queue.RingBuffer
	capacity    int64
	size        *atomic.Int64
	signal      chan struct{}
	closed      chan struct{}
	closeOnce   sync.Once
	disposeOnce sync.Once
}

var _ Mailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox creates a BoundedMailbox holding at most capacity messages.
// A capacity below one is raised to one.
func NewBoundedMailbox(capacity int) *BoundedMailbox {
	if capacity < 1 {
		capacity = 1
	}
	return &BoundedMailbox{
		underlying: queue.NewRingBuffer(uint64(capacity)),
		capacity:   int64(capacity),
		size:       atomic.NewInt64(0),
		signal:     make(chan struct{}, 1),
		closed:     make(chan struct{}),
	}
}

// Enqueue implements Mailbox.
func (m *BoundedMailbox) Enqueue(msg string) error {
	if m.isClosed() {
		return gerrors.ErrMailboxClosed
	}

	// the slot is reserved before touching the ring so that concurrent
	// producers never go past the configured capacity
	if m.size.Inc() > m.capacity {
		m.size.Dec()
		return gerrors.ErrMailboxFull
	}

	ok, err := m.underlying.Offer(msg)
	if err != nil {
		m.size.Dec()
		return gerrors.ErrMailboxClosed
	}

	if !ok {
		m.size.Dec()
		return gerrors.ErrMailboxFull
	}

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue implements Mailbox.
func (m *BoundedMailbox) Dequeue(ctx context.Context) (string, error) {
	for {
		if m.size.Load() > 0 {
			item, err := m.underlying.Get()
			if err != nil {
				return "", gerrors.ErrMailboxClosed
			}
			m.size.Dec()
			return item.(string), nil
		}

		select {
		case <-m.signal:
		case <-m.closed:
			if m.size.Load() <= 0 {
				return "", gerrors.ErrMailboxClosed
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Len implements Mailbox.
func (m *BoundedMailbox) Len() int {
	return int(max(m.size.Load(), 0))
}

// Cap implements Mailbox.
func (m *BoundedMailbox) Cap() int {
	return int(m.capacity)
}

// Close implements Mailbox.
func (m *BoundedMailbox) Close() {
	m.closeOnce.Do(func() {
		close(m.closed)
	})
}

// Dispose implements Mailbox.
func (m *BoundedMailbox) Dispose() {
	m.Close()
	m.disposeOnce.Do(func() {
		m.underlying.Dispose()
		m.size.Store(0)
	})
}

func (m *BoundedMailbox) isClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}
