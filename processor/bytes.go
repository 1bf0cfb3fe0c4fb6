/*
 * Altair Relaxed - Little-endian byte helpers shared by decode/execute/DMA.
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
	"encoding/binary"
	"math"
)

// Each bundle word is a little-endian 32-bit opcode (spec.md §6). The
// register files and SRAM/cache buffers use the same byte order
// throughout so that a memory move is a plain byte copy.

func getLE32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func putLE32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func getLE64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
func putLE64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

func float32FromBits(v uint32) float32 { return math.Float32frombits(v) }
func float32Bits(v float32) uint32     { return math.Float32bits(v) }
func float64FromBits(v uint64) float64 { return math.Float64frombits(v) }
func float64Bits(v float64) uint64     { return math.Float64bits(v) }

// readIntoRegister copies n bytes (1, 2, 4, or 8) from src into the low
// n bytes of integer register dest, leaving the remaining upper bytes of
// the 64-bit lane untouched, mirroring the original's
// memcpy(&ireg[dest], src, n) into an existing uint64_t slot.
func (p *Processor) readIntoRegister(dest uint32, src []byte, n int) {
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = (v << 8) | uint64(src[i])
	}
	mask := uint64(1)<<(uint(n)*8) - 1
	p.ireg[dest] = (p.ireg[dest] &^ mask) | v
}

// writeFromRegister copies the low n bytes of integer register src into
// dst, mirroring the original's memcpy from a uint64_t* source.
func (p *Processor) writeFromRegister(dst []byte, src uint32, n int) {
	v := p.ireg[src]
	for i := 0; i < n; i++ {
		dst[i] = byte(v)
		v >>= 8
	}
}
