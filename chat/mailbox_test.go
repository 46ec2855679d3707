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
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/tcpchat/errors"
)

func TestBoundedMailbox(t *testing.T) {
	t.Run("dequeues in FIFO order", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		for _, msg := range []string{"a", "b", "c"} {
			require.NoError(t, mailbox.Enqueue(msg))
		}
		require.Equal(t, 3, mailbox.Len())

		expectMessage(t, mailbox, "a")
		expectMessage(t, mailbox, "b")
		expectMessage(t, mailbox, "c")
		assert.Zero(t, mailbox.Len())
	})

	t.Run("rejects messages once full", func(t *testing.T) {
		mailbox := NewBoundedMailbox(2)
		require.Equal(t, 2, mailbox.Cap())
		require.NoError(t, mailbox.Enqueue("a"))
		require.NoError(t, mailbox.Enqueue("b"))
		require.ErrorIs(t, mailbox.Enqueue("c"), gerrors.ErrMailboxFull)
		assert.Equal(t, 2, mailbox.Len())

		expectMessage(t, mailbox, "a")
		require.NoError(t, mailbox.Enqueue("c"))
	})

	t.Run("capacity is not rounded", func(t *testing.T) {
		mailbox := NewBoundedMailbox(100)
		for i := range 100 {
			require.NoError(t, mailbox.Enqueue(strconv.Itoa(i)))
		}
		require.ErrorIs(t, mailbox.Enqueue("overflow"), gerrors.ErrMailboxFull)
		assert.Equal(t, 100, mailbox.Cap())
	})

	t.Run("capacity below one", func(t *testing.T) {
		mailbox := NewBoundedMailbox(0)
		require.Equal(t, 1, mailbox.Cap())
		require.NoError(t, mailbox.Enqueue("a"))
		require.ErrorIs(t, mailbox.Enqueue("b"), gerrors.ErrMailboxFull)
	})

	t.Run("close drains pending messages", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		require.NoError(t, mailbox.Enqueue("a"))
		mailbox.Close()
		mailbox.Close()

		require.ErrorIs(t, mailbox.Enqueue("b"), gerrors.ErrMailboxClosed)
		expectMessage(t, mailbox, "a")

		_, err := mailbox.Dequeue(context.Background())
		require.ErrorIs(t, err, gerrors.ErrMailboxClosed)
	})

	t.Run("dispose drops pending messages", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		require.NoError(t, mailbox.Enqueue("a"))
		mailbox.Dispose()
		mailbox.Dispose()

		assert.Zero(t, mailbox.Len())
		require.ErrorIs(t, mailbox.Enqueue("b"), gerrors.ErrMailboxClosed)
		_, err := mailbox.Dequeue(context.Background())
		require.ErrorIs(t, err, gerrors.ErrMailboxClosed)
	})

	t.Run("dequeue waits for a message", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		received := make(chan string, 1)
		go func() {
			msg, _ := mailbox.Dequeue(context.Background())
			received <- msg
		}()

		time.Sleep(50 * time.Millisecond)
		require.NoError(t, mailbox.Enqueue("late"))

		select {
		case msg := <-received:
			assert.Equal(t, "late", msg)
		case <-time.After(2 * time.Second):
			t.Fatal("dequeue did not wake up")
		}
	})

	t.Run("close wakes a waiting consumer", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		done := make(chan error, 1)
		go func() {
			_, err := mailbox.Dequeue(context.Background())
			done <- err
		}()

		time.Sleep(50 * time.Millisecond)
		mailbox.Close()
		select {
		case err := <-done:
			require.ErrorIs(t, err, gerrors.ErrMailboxClosed)
		case <-time.After(2 * time.Second):
			t.Fatal("dequeue did not wake up")
		}
	})

	t.Run("dequeue honors the context", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := mailbox.Dequeue(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("keeps per producer order under concurrency", func(t *testing.T) {
		const producers, messages = 8, 200
		mailbox := NewBoundedMailbox(producers * messages)

		var wg sync.WaitGroup
		for p := range producers {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := range messages {
					assert.NoError(t, mailbox.Enqueue(fmt.Sprintf("%d:%d", p, i)))
				}
			}(p)
		}

		last := make(map[string]int)
		for range producers * messages {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			msg, err := mailbox.Dequeue(ctx)
			cancel()
			require.NoError(t, err)

			producer, seq, _ := strings.Cut(msg, ":")
			n, err := strconv.Atoi(seq)
			require.NoError(t, err)
			if previous, ok := last[producer]; ok {
				require.Greater(t, n, previous)
			}
			last[producer] = n
		}

		wg.Wait()
		assert.Len(t, last, producers)
		assert.Zero(t, mailbox.Len())
	})
}
