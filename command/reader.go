/*
 * Altair Relaxed - Console reader loop.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/peterh/liner"
)

var commandWords = []string{"step", "run", "regs", "mem", "io", "load", "reset", "cpu", "quit", "exit"}

func completer(line string) []string {
	var matches []string
	for _, w := range commandWords {
		if len(line) <= len(w) && w[:len(line)] == line {
			matches = append(matches, w)
		}
	}
	return matches
}

// ConsoleReader runs an interactive liner-backed prompt loop against d
// until the user quits, sends EOF, or aborts with Ctrl-C.
func ConsoleReader(d *Dispatcher) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completer)

	for {
		input, err := line.Prompt("altair> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("console: %w", err)
		}
		line.AppendHistory(input)

		quit, err := d.Execute(input)
		if err != nil {
			fmt.Fprintln(d.out, err)
		}
		if quit {
			return nil
		}
	}
}
