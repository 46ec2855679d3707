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

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTCPAddressValidator(t *testing.T) {
	t.Run("With happy path", func(t *testing.T) {
		assert.NoError(t, NewTCPAddressValidator("127.0.0.1:8080").Validate())
	})
	t.Run("With zero port number", func(t *testing.T) {
		assert.NoError(t, NewTCPAddressValidator("127.0.0.1:0").Validate())
	})
	t.Run("With surrounding spaces", func(t *testing.T) {
		assert.NoError(t, NewTCPAddressValidator(" localhost:8080 ").Validate())
	})
	t.Run("With negative port number", func(t *testing.T) {
		assert.Error(t, NewTCPAddressValidator("127.0.0.1:-1").Validate())
	})
	t.Run("With port number too large", func(t *testing.T) {
		assert.Error(t, NewTCPAddressValidator("127.0.0.1:655387").Validate())
	})
	t.Run("With non numeric port", func(t *testing.T) {
		assert.Error(t, NewTCPAddressValidator("127.0.0.1:chat").Validate())
	})
	t.Run("With missing host", func(t *testing.T) {
		assert.Error(t, NewTCPAddressValidator(":8080").Validate())
	})
	t.Run("With missing port", func(t *testing.T) {
		assert.Error(t, NewTCPAddressValidator("127.0.0.1").Validate())
	})
}

func TestRangeValidator(t *testing.T) {
	assert.NoError(t, NewRangeValidator("attempts", 1, 1, 3).Validate())
	assert.NoError(t, NewRangeValidator("attempts", 3, 1, 3).Validate())
	assert.EqualError(t, NewRangeValidator("attempts", int64(4), 1, 3).Validate(),
		"the [attempts] must be between 1 and 3, got 4")
}

func TestBooleanValidator(t *testing.T) {
	assert.NoError(t, NewBooleanValidator(true, "unused").Validate())
	assert.EqualError(t, NewBooleanValidator(false, "mailbox capacity must be positive").Validate(),
		"mailbox capacity must be positive")
}
