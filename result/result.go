/*
 * Altair Relaxed - Wire-stable result codes for the processor and VM APIs.
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

// Package result defines the wire-stable integer result codes returned
// by the processor and vm packages.
package result

import "errors"

// Code is a wire-stable result code. Values match the fictional Altair
// Relaxed ABI: zero is success, positive is a non-error terminal
// condition, negative is an error.
type Code int32

const (
	Success                   Code = 0
	EndOfCode                 Code = 1
	IllegalInstruction        Code = -1
	InvalidCode               Code = -2
	MemoryOutOfRange          Code = -3
	PhysicalMemoryOutOfRange  Code = -4
	HostOutOfMemory           Code = -256
)

func (c Code) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case EndOfCode:
		return "END_OF_CODE"
	case IllegalInstruction:
		return "ILLEGAL_INSTRUCTION"
	case InvalidCode:
		return "INVALID_CODE"
	case MemoryOutOfRange:
		return "MEMORY_OUT_OF_RANGE"
	case PhysicalMemoryOutOfRange:
		return "PHYSICAL_MEMORY_OUT_OF_RANGE"
	case HostOutOfMemory:
		return "HOST_OUT_OF_MEMORY"
	default:
		return "UNKNOWN_RESULT"
	}
}

func (c Code) Error() string {
	return c.String()
}

// Is lets errors.Is(err, result.IllegalInstruction) match an error built
// with fmt.Errorf("...: %w", result.IllegalInstruction).
func (c Code) Is(target error) bool {
	var other Code
	if errors.As(target, &other) {
		return other == c
	}
	return false
}

// From extracts the Code wrapped in err, if any. Returns Success for a
// nil error so callers can treat "no error" and "SUCCESS" uniformly.
func From(err error) Code {
	if err == nil {
		return Success
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return IllegalInstruction
}
