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

// Package config loads the chat server and client settings from the environment.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"

	gerrors "github.com/tochemey/tcpchat/errors"
	"github.com/tochemey/tcpchat/internal/validation"
	"github.com/tochemey/tcpchat/log"
)

// Config defines the chat settings. Every field has a default so that an
// empty environment yields a usable local server on 127.0.0.1:8080.
type Config struct {
	// Host is the interface the server binds to and the client dials.
	Host string `env:"CHAT_HOST" envDefault:"127.0.0.1"`
	// Port is the TCP port of the server.
	Port int `env:"SERVER_PORT" envDefault:"8080"`
	// MailboxCapacity bounds the number of pending outbound messages per connection.
	MailboxCapacity int `env:"CHAT_MAILBOX_CAPACITY" envDefault:"100"`
	// ReadBufferSize is the size of a single read, hence of a single chat message.
	ReadBufferSize int `env:"CHAT_READ_BUFFER_SIZE" envDefault:"1024"`
	// UsernameAttempts is the number of blank usernames tolerated before disconnecting.
	UsernameAttempts int `env:"CHAT_USERNAME_ATTEMPTS" envDefault:"3"`
	// IdleTimeout disconnects silent clients. Zero disables it.
	IdleTimeout time.Duration `env:"CHAT_IDLE_TIMEOUT" envDefault:"0s"`
	// WriteTimeout bounds a single socket write. Zero disables it.
	WriteTimeout time.Duration `env:"CHAT_WRITE_TIMEOUT" envDefault:"30s"`
	// ShutdownTimeout bounds the wait for connections on shutdown.
	ShutdownTimeout time.Duration `env:"CHAT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// MaxConnections caps concurrently served connections. Zero means unlimited.
	MaxConnections int `env:"CHAT_MAX_CONNECTIONS" envDefault:"0"`
	// KeepAlive is the TCP keep-alive period of client connections. A negative
	// value disables keep-alives.
	KeepAlive time.Duration `env:"CHAT_TCP_KEEP_ALIVE" envDefault:"15s"`
	// FastOpenQueueLen enables TCP fast open with this queue length. Zero disables it.
	FastOpenQueueLen int `env:"CHAT_TCP_FAST_OPEN_QUEUE" envDefault:"0"`
	// MessageRate is the number of chat messages per second allowed per connection.
	// Zero means unlimited.
	MessageRate float64 `env:"CHAT_MESSAGE_RATE" envDefault:"0"`
	// MessageBurst is the burst size associated with MessageRate.
	MessageBurst int `env:"CHAT_MESSAGE_BURST" envDefault:"1"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"CHAT_LOG_LEVEL" envDefault:"info"`
}

var _ validation.Validator = (*Config)(nil)

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	config := &Config{}
	opts := env.Options{RequiredIfNoDef: true, UseFieldNameByDefault: false}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return nil, gerrors.NewInvalidConfigError(err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Address returns the host:port address of the server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Level returns the parsed log level.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Validate implements validation.Validator and reports every violation at once.
func (c *Config) Validate() error {
	_, levelErr := log.ParseLevel(c.LogLevel)
	chain := validation.New(validation.AllErrors()).
		AddValidator(validation.NewTCPAddressValidator(c.Address())).
		AddValidator(validation.NewRangeValidator("SERVER_PORT", c.Port, 0, 65535)).
		AddValidator(validation.NewRangeValidator("CHAT_MAILBOX_CAPACITY", c.MailboxCapacity, 1, 1<<20)).
		AddValidator(validation.NewRangeValidator("CHAT_READ_BUFFER_SIZE", c.ReadBufferSize, 1, 1<<20)).
		AddValidator(validation.NewRangeValidator("CHAT_USERNAME_ATTEMPTS", c.UsernameAttempts, 1, 100)).
		AddAssertion(c.IdleTimeout >= 0, "the [CHAT_IDLE_TIMEOUT] cannot be negative").
		AddAssertion(c.WriteTimeout >= 0, "the [CHAT_WRITE_TIMEOUT] cannot be negative").
		AddAssertion(c.ShutdownTimeout >= 0, "the [CHAT_SHUTDOWN_TIMEOUT] cannot be negative").
		AddAssertion(c.MaxConnections >= 0, "the [CHAT_MAX_CONNECTIONS] cannot be negative").
		AddValidator(validation.NewRangeValidator("CHAT_TCP_FAST_OPEN_QUEUE", c.FastOpenQueueLen, 0, 1<<16)).
		AddAssertion(c.MessageRate >= 0, "the [CHAT_MESSAGE_RATE] cannot be negative").
		AddAssertion(c.MessageRate == 0 || c.MessageBurst > 0, "the [CHAT_MESSAGE_BURST] must be positive when a message rate is set").
		AddAssertion(levelErr == nil, "the [CHAT_LOG_LEVEL] must be one of debug, info, warn, error, fatal, panic")

	if err := chain.Validate(); err != nil {
		return gerrors.NewInvalidConfigError(err)
	}
	return nil
}
