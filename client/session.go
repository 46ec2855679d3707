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

package client

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// Chat runs an interactive session: it connects, asks for a username on in,
// then forwards every line of in to the server while copying the server
// output to out. It returns once in is exhausted, the server goes away or
// ctx is done.
func Chat(ctx context.Context, address string, in io.Reader, out io.Writer, opts ...Option) error {
	client, err := Dial(ctx, address, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	input := bufio.NewReader(in)
	if _, err := fmt.Fprintln(out, UsernamePrompt); err != nil {
		return err
	}

	username, err := ReadUsername(input)
	if err != nil {
		return err
	}

	if err := client.Join(username); err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	lines := readLines(ctx, input)
	eg.Go(func() error {
		return client.Receive(ctx, out)
	})

	eg.Go(func() error {
		// the session ends with the input
		defer client.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if err := client.Send(line); err != nil {
					return err
				}
			}
		}
	})

	return eg.Wait()
}

// readLines feeds the lines of input to a channel closed at the end of input.
// Reading cannot be interrupted, so the goroutine lives until input returns.
func readLines(ctx context.Context, input *bufio.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := input.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}
