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

	gerrors "github.com/tochemey/tcpchat/errors"
	"github.com/tochemey/tcpchat/log"
)

// Broadcaster fans a message out to every registered connection except its sender.
type Broadcaster struct {
	registry *Registry
	logger   log.Logger
	metrics  *Metrics
}

// NewBroadcaster creates a Broadcaster delivering to the connections of registry.
// A nil logger discards logs and nil metrics record nothing.
func NewBroadcaster(registry *Registry, logger log.Logger, metrics *Metrics) *Broadcaster {
	if logger == nil {
		logger = log.DiscardLogger
	}
	if metrics == nil {
		metrics = noopMetrics()
	}
	return &Broadcaster{registry: registry, logger: logger, metrics: metrics}
}

// Broadcast enqueues text to every connection but sender and returns the
// number of successful deliveries. A full or closed mailbox only skips that
// recipient; delivery to the others goes on and no error is reported.
func (b *Broadcaster) Broadcast(ctx context.Context, sender ConnectionID, text string) int {
	b.metrics.messageBroadcast(ctx)

	delivered := 0
	for _, conn := range b.registry.Snapshot() {
		if conn.ID == sender {
			continue
		}

		if err := conn.mailbox.Enqueue(text); err != nil {
			if errors.Is(err, gerrors.ErrMailboxFull) {
				b.metrics.deliveryDropped(ctx, "full")
				b.logger.Warnf("dropping message from %s to %s: %v", sender, conn.ID, err)
				continue
			}
			// the recipient is disconnecting
			b.metrics.deliveryDropped(ctx, "closed")
			b.logger.Debugf("dropping message from %s to %s: %v", sender, conn.ID, err)
			continue
		}
		delivered++
	}
	return delivered
}
