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
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tochemey/tcpchat/chat"
	"github.com/tochemey/tcpchat/config"
	"github.com/tochemey/tcpchat/log"
)

// serveCmd starts the chat server and blocks until SIGINT or SIGTERM
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := log.NewZap(cfg.Level(), os.Stdout)
		server, err := chat.NewServer(cfg.Address(), serverOptions(cfg, logger)...)
		if err != nil {
			return errors.Wrap(err, "failed to create the chat server")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := server.Run(ctx); err != nil {
			logger.Error(err)
			return err
		}
		return nil
	},
}

// serverOptions maps the configuration onto the chat server options
func serverOptions(cfg *config.Config, logger log.Logger) []chat.Option {
	return []chat.Option{
		chat.WithLogger(logger),
		chat.WithMailboxCapacity(cfg.MailboxCapacity),
		chat.WithReadBufferSize(cfg.ReadBufferSize),
		chat.WithUsernameAttempts(cfg.UsernameAttempts),
		chat.WithIdleTimeout(cfg.IdleTimeout),
		chat.WithWriteTimeout(cfg.WriteTimeout),
		chat.WithShutdownTimeout(cfg.ShutdownTimeout),
		chat.WithMaxConnections(cfg.MaxConnections),
		chat.WithKeepAlive(cfg.KeepAlive),
		chat.WithTCPFastOpen(cfg.FastOpenQueueLen),
		chat.WithMessageRate(cfg.MessageRate, cfg.MessageBurst),
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
