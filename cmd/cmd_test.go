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

package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/tcpchat/chat"
	"github.com/tochemey/tcpchat/config"
	gerrors "github.com/tochemey/tcpchat/errors"
	"github.com/tochemey/tcpchat/log"
)

func TestServerOptions(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Port = 0

	opts := serverOptions(cfg, log.DiscardLogger)
	require.Len(t, opts, 11)

	server, err := chat.NewServer(cfg.Address(), opts...)
	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("CHAT_MAILBOX_CAPACITY", "0")

	t.Run("serve", func(t *testing.T) {
		serveCmd.SetContext(context.Background())
		err := serveCmd.RunE(serveCmd, nil)
		var configErr gerrors.InvalidConfigError
		require.ErrorAs(t, err, &configErr)
	})

	t.Run("connect", func(t *testing.T) {
		connectCmd.SetContext(context.Background())
		err := connectCmd.RunE(connectCmd, nil)
		var configErr gerrors.InvalidConfigError
		require.ErrorAs(t, err, &configErr)
	})
}

func TestCommands(t *testing.T) {
	names := make([]string, 0, 2)
	for _, command := range rootCmd.Commands() {
		names = append(names, command.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "connect")
}
