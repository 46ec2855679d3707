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
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/tcpchat/log"
)

func newTestRegistry(t *testing.T, capacity int, ids ...ConnectionID) (*Registry, map[ConnectionID]*BoundedMailbox) {
	t.Helper()
	registry := NewRegistry()
	mailboxes := make(map[ConnectionID]*BoundedMailbox, len(ids))
	for _, id := range ids {
		mailbox := NewBoundedMailbox(capacity)
		_, err := registry.Register(id, "", mailbox)
		require.NoError(t, err)
		mailboxes[id] = mailbox
	}
	return registry, mailboxes
}

func TestBroadcaster(t *testing.T) {
	ctx := context.Background()

	t.Run("never delivers to the sender", func(t *testing.T) {
		registry, mailboxes := newTestRegistry(t, 10, "alice", "bob", "carol")
		broadcaster := NewBroadcaster(registry, log.DiscardLogger, nil)

		delivered := broadcaster.Broadcast(ctx, "alice", "hi")
		assert.Equal(t, 2, delivered)
		assert.Zero(t, mailboxes["alice"].Len())
		expectMessage(t, mailboxes["bob"], "hi")
		expectMessage(t, mailboxes["carol"], "hi")
	})

	t.Run("an unregistered sender reaches everyone", func(t *testing.T) {
		registry, mailboxes := newTestRegistry(t, 10, "alice", "bob")
		broadcaster := NewBroadcaster(registry, nil, nil)

		assert.Equal(t, 2, broadcaster.Broadcast(ctx, "server", "notice"))
		expectMessage(t, mailboxes["alice"], "notice")
		expectMessage(t, mailboxes["bob"], "notice")
	})

	t.Run("a full mailbox only affects its owner", func(t *testing.T) {
		registry, mailboxes := newTestRegistry(t, 1, "alice", "bob", "carol")
		broadcaster := NewBroadcaster(registry, log.DiscardLogger, nil)
		require.NoError(t, mailboxes["bob"].Enqueue("pending"))

		delivered := broadcaster.Broadcast(ctx, "alice", "hi")
		assert.Equal(t, 1, delivered)
		expectMessage(t, mailboxes["carol"], "hi")
		expectMessage(t, mailboxes["bob"], "pending")
		assert.Zero(t, mailboxes["bob"].Len())
	})

	t.Run("a closed mailbox is skipped", func(t *testing.T) {
		registry, mailboxes := newTestRegistry(t, 10, "alice", "bob", "carol")
		broadcaster := NewBroadcaster(registry, log.DiscardLogger, nil)
		mailboxes["bob"].Dispose()

		assert.Equal(t, 1, broadcaster.Broadcast(ctx, "alice", "hi"))
		expectMessage(t, mailboxes["carol"], "hi")
	})

	t.Run("removed connections receive nothing", func(t *testing.T) {
		registry, mailboxes := newTestRegistry(t, 10, "alice", "bob")
		broadcaster := NewBroadcaster(registry, log.DiscardLogger, nil)
		registry.Remove("bob")

		assert.Zero(t, broadcaster.Broadcast(ctx, "alice", "hi"))
		assert.Zero(t, mailboxes["bob"].Len())
	})

	t.Run("keeps the order of a sender", func(t *testing.T) {
		registry, mailboxes := newTestRegistry(t, 100, "alice", "bob")
		broadcaster := NewBroadcaster(registry, log.DiscardLogger, nil)
		for i := range 20 {
			broadcaster.Broadcast(ctx, "alice", strconv.Itoa(i))
		}
		for i := range 20 {
			expectMessage(t, mailboxes["bob"], strconv.Itoa(i))
		}
	})
}
