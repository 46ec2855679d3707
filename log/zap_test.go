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

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZap(t *testing.T) {
	t.Run("unknown level falls back to debug", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InvalidLevel, buffer)
		require.Equal(t, DebugLevel, logger.LogLevel())

		logger.Debug("test debug")
		entry := decodeEntry(t, buffer)
		assert.Equal(t, "test debug", entry["msg"])
		assert.Equal(t, DebugLevel.String(), entry["level"])
	})

	t.Run("entries below the level are dropped", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(WarningLevel, buffer)
		require.Equal(t, WarningLevel, logger.LogLevel())

		logger.Info("not written")
		logger.Debugf("not %s", "written")
		require.Zero(t, buffer.Len())

		logger.Warnf("mailbox of %s is full", "bob")
		entry := decodeEntry(t, buffer)
		assert.Equal(t, "mailbox of bob is full", entry["msg"])
		assert.Equal(t, "warn", entry["level"])
	})

	t.Run("error entries", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(ErrorLevel, buffer)
		logger.Error("bind failed")
		entry := decodeEntry(t, buffer)
		assert.Equal(t, "bind failed", entry["msg"])
		assert.Equal(t, "error", entry["level"])
	})

	t.Run("panic entries", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(PanicLevel, buffer)
		require.Equal(t, PanicLevel, logger.LogLevel())
		assert.Panics(t, func() { logger.Panicf("boom %d", 1) })
		entry := decodeEntry(t, buffer)
		assert.Equal(t, "boom 1", entry["msg"])
	})

	t.Run("flush skips non file outputs", func(t *testing.T) {
		logger := NewZap(InfoLevel, new(bytes.Buffer), os.Stdout)
		assert.NoError(t, logger.Flush())
	})

	t.Run("flush syncs file outputs", func(t *testing.T) {
		file, err := os.CreateTemp(t.TempDir(), "chat-*.log")
		require.NoError(t, err)
		defer file.Close()

		logger := NewZap(InfoLevel, file)
		logger.Info("persisted")
		require.NoError(t, logger.Flush())

		content, err := os.ReadFile(file.Name())
		require.NoError(t, err)
		assert.Contains(t, string(content), "persisted")
	})
}

func TestZapWith(t *testing.T) {
	t.Run("adds structured fields", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With(
			"connection", "c-1",
			"delivered", 2,
			"reason", errors.New("eof"),
			"idle", time.Second,
		).Info("closed")

		entry := decodeEntry(t, buffer)
		assert.Equal(t, "closed", entry["msg"])
		assert.Equal(t, "c-1", entry["connection"])
		assert.EqualValues(t, 2, entry["delivered"])
		assert.Equal(t, "eof", entry["reason"])
		assert.Equal(t, "1s", entry["idle"])
	})

	t.Run("returns the same logger without fields", func(t *testing.T) {
		logger := NewZap(InfoLevel, new(bytes.Buffer))
		assert.Same(t, logger, logger.With())
		assert.Same(t, logger, logger.With(42, "value"))
	})

	t.Run("dangling key", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("orphan").Info("message")
		entry := decodeEntry(t, buffer)
		assert.Equal(t, "orphan", entry["_"])
	})
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger
	logger.Info("ignored")
	logger.Warnf("ignored %d", 1)
	assert.Equal(t, InfoLevel, logger.LogLevel())
	assert.Equal(t, logger, logger.With("key", "value"))
	assert.NoError(t, logger.Flush())
	assert.Panics(t, func() { logger.Panic("boom") })
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		"warn":    WarningLevel,
		"warning": WarningLevel,
		" error ": ErrorLevel,
		"fatal":   FatalLevel,
		"panic":   PanicLevel,
	}
	for name, expected := range cases {
		level, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, level, name)
	}

	level, err := ParseLevel("verbose")
	require.Error(t, err)
	assert.Equal(t, InvalidLevel, level)
	assert.Equal(t, "invalid", level.String())
}

func decodeEntry(t *testing.T, buffer *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
	return entry
}
