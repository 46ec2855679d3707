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

//go:build linux

package tcp

import (
	"fmt"
	"syscall"
)

// tcpFastOpen is the Linux socket option TCP_FASTOPEN.
const tcpFastOpen = 0x17

// applyListenSocketOptions returns a [controlFunc] enabling fast open on the
// listening socket when asked to, nil otherwise. A failing option aborts the bind.
func applyListenSocketOptions(config *ListenConfig) controlFunc {
	if !config.SocketFastOpen {
		return nil
	}

	qlen := config.fastOpenQueueLen()
	return func(_, address string, conn syscall.RawConn) error {
		var optErr error
		ctrlErr := conn.Control(func(fd uintptr) {
			optErr = setSockOpt(fd, syscall.IPPROTO_TCP, tcpFastOpen, qlen, "TCP_FASTOPEN")
		})

		if ctrlErr != nil {
			return ctrlErr
		}
		if optErr != nil {
			return fmt.Errorf("%s: %w", address, optErr)
		}
		return nil
	}
}

func setSockOpt(fd uintptr, level, opt, value int, name string) error {
	if err := syscall.SetsockoptInt(int(fd), level, opt, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}
	return nil
}
