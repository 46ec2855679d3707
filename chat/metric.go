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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	instrumentationName = "github.com/tochemey/tcpchat"

	acceptedCounterName  = "chat.connections.accepted"
	activeCounterName    = "chat.connections.active"
	broadcastCounterName = "chat.messages.broadcast"
	droppedCounterName   = "chat.deliveries.dropped"
	rejectedCounterName  = "chat.usernames.rejected"
)

// Metrics holds the instruments recorded by the chat server.
type Metrics struct {
	accepted  metric.Int64Counter
	active    metric.Int64UpDownCounter
	broadcast metric.Int64Counter
	dropped   metric.Int64Counter
	rejected  metric.Int64Counter
}

// NewMetrics creates the chat instruments with the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	metrics := new(Metrics)
	var err error

	if metrics.accepted, err = meter.Int64Counter(
		acceptedCounterName,
		metric.WithDescription("The total number of accepted connections")); err != nil {
		return nil, fmt.Errorf("failed to create accepted connections instrument, %v", err)
	}

	if metrics.active, err = meter.Int64UpDownCounter(
		activeCounterName,
		metric.WithDescription("The number of connections currently served")); err != nil {
		return nil, fmt.Errorf("failed to create active connections instrument, %v", err)
	}

	if metrics.broadcast, err = meter.Int64Counter(
		broadcastCounterName,
		metric.WithDescription("The total number of broadcast messages, notices included")); err != nil {
		return nil, fmt.Errorf("failed to create broadcast count instrument, %v", err)
	}

	if metrics.dropped, err = meter.Int64Counter(
		droppedCounterName,
		metric.WithDescription("The total number of deliveries dropped because of a full or closed mailbox")); err != nil {
		return nil, fmt.Errorf("failed to create dropped deliveries instrument, %v", err)
	}

	if metrics.rejected, err = meter.Int64Counter(
		rejectedCounterName,
		metric.WithDescription("The total number of rejected usernames")); err != nil {
		return nil, fmt.Errorf("failed to create rejected usernames instrument, %v", err)
	}

	return metrics, nil
}

func noopMetrics() *Metrics {
	// the noop meter never fails
	metrics, _ := NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return metrics
}

func (m *Metrics) connectionOpened(ctx context.Context) {
	m.accepted.Add(ctx, 1)
	m.active.Add(ctx, 1)
}

func (m *Metrics) connectionClosed(ctx context.Context) {
	m.active.Add(ctx, -1)
}

func (m *Metrics) messageBroadcast(ctx context.Context) {
	m.broadcast.Add(ctx, 1)
}

func (m *Metrics) deliveryDropped(ctx context.Context, reason string) {
	m.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) usernameRejected(ctx context.Context) {
	m.rejected.Add(ctx, 1)
}
