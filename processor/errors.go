/*
 * Altair Relaxed - Processor-level error construction.
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

package processor

import (
	"fmt"

	"github.com/rcornwell/altair-relaxed/result"
)

// Sentinel codes for errors.Is/result.From. These are result.Code values,
// not package-level sentinel errors, so a caller can match either the
// code or the wrapping message.
var (
	ErrIllegalInstruction = result.IllegalInstruction
	ErrInvalidCode        = result.InvalidCode
	ErrMemoryOutOfRange   = result.MemoryOutOfRange
	ErrPhysicalOutOfRange = result.PhysicalMemoryOutOfRange
)

func wrapf(code result.Code, format string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), code)
}
