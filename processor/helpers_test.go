/*
 * Altair Relaxed - Bundle-encoding test helpers shared by processor tests.
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
	"io"
	"log/slog"
	"testing"

	"github.com/rcornwell/altair-relaxed/result"
)

// The encoders below pack opcode words using exactly the bit layout
// decode.go reads, so that tests exercise the real decoder rather than
// hand-built Operation values. They are test-only: this project has no
// public assembler (spec.md §1 Non-goal).

func encodeCMP(size, left, right uint32) uint32 {
	return 0 | (0 << 2) | (0 << 4) | (size << 8) | (right << 20) | (left << 26)
}

func encodeFCMP(left, right uint32) uint32 {
	return 0 | (0 << 2) | (1 << 4) | (right << 18) | (left << 25)
}

func encodeDCMP(left, right uint32) uint32 {
	return 0 | (0 << 2) | (2 << 4) | (right << 20) | (left << 26)
}

func encodeBcc(compIdx, label uint32) uint32 {
	return 0 | (0 << 2) | (3 << 4) | (0 << 6) | (compIdx << 8) | (label << 12)
}

func encodeJumpCall(kindIdx, label uint32) uint32 {
	return 0 | (0 << 2) | (3 << 4) | (2 << 6) | (kindIdx << 8) | (label << 12)
}

func encodeRet() uint32 {
	return 0 | (0 << 2) | (3 << 4) | (3 << 6)
}

func encodeCMPI(size, reg, imm uint32) uint32 {
	return 0 | (1 << 2) | (size << 4) | (imm << 6) | (reg << 26)
}

func encodeFCMPI(reg, imm uint32) uint32 {
	return 0 | (2 << 2) | (imm << 4) | (reg << 25)
}

func encodeDCMPI(reg, imm uint32) uint32 {
	return 0 | (3 << 2) | (imm << 4) | (reg << 26)
}

func encodeLDM(store, incr, size, disp, src, dest uint32) uint32 {
	return 1 | (0 << 2) | (incr << 4) | (store << 5) | (size << 6) | (disp << 8) | (src << 20) | (dest << 26)
}

func encodeLDC(store, incr, size, disp, src, dest uint32) uint32 {
	return 1 | (2 << 2) | (incr << 4) | (store << 5) | (size << 6) | (disp << 8) | (src << 20) | (dest << 26)
}

func encodeMOVEI(dest, imm22 uint32) uint32 {
	return 2 | (3 << 2) | (imm22 << 4) | (dest << 26)
}

func encodeALUCat0Arith(opIdx, size, src1, src2, dest uint32) uint32 {
	return 2 | (0 << 2) | (0 << 4) | (opIdx << 8) | (size << 12) | (src1 << 14) | (src2 << 20) | (dest << 26)
}

func encodeXCHG() uint32 {
	return 2 | (0 << 2) | (2 << 4)
}

func encodeNOP(end uint32) uint32 {
	return 2 | (0 << 2) | (6 << 4) | (end << 7)
}

func encodeALUCat1(opIdx, size, src, imm10, dest uint32) uint32 {
	return 2 | (1 << 2) | (opIdx << 4) | (size << 8) | (imm10 << 10) | (src << 20) | (dest << 26)
}

func encodeALUCat2(opIdx, size, imm16, dest uint32) uint32 {
	return 2 | (2 << 2) | (opIdx << 4) | (size << 8) | (imm16 << 10) | (dest << 26)
}

func encodeLDDMA(store, size, sramIdxRaw, ramIdxRaw, sramb, ramb uint32) uint32 {
	return 0 | (0 << 2) | (store << 3) | (size << 4) | (sramIdxRaw << 5) | (ramIdxRaw << 7) | (sramb << 8) | (ramb << 20)
}

func encodeLDDMAR(store, ram, size, sram uint32) uint32 {
	return 0 | (1 << 2) | (store << 3) | (0 << 4) | (ram << 8) | (size << 14) | (sram << 20)
}

func encodeDMAIR(ram, size, sram uint32) uint32 {
	return 0 | (1 << 2) | (0 << 3) | (1 << 4) | (ram << 8) | (size << 14) | (sram << 20)
}

func encodeWAIT() uint32 {
	return 0 | (1 << 2) | (15 << 4)
}

// fillerMOVEI is a harmless ALU op valid in either slot 0 or slot 1: a
// plain immediate write to an unused scratch register, never staged.
func fillerMOVEI() uint32 {
	return encodeMOVEI(63, 0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePhysicalMemory struct {
	buf []byte
}

func (m *fakePhysicalMemory) Bytes() []byte { return m.buf }
func (m *fakePhysicalMemory) Size() uint64  { return uint64(len(m.buf)) }

type fakeMachine struct {
	mem *fakePhysicalMemory
}

func (m *fakeMachine) FirstPhysicalMemory() (PhysicalMemory, bool) {
	if m.mem == nil {
		return nil, false
	}
	return m.mem, true
}

func newTestProcessor(t *testing.T, words []uint32, parent weakMachine) *Processor {
	t.Helper()
	p, err := New(words, parent, testLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return p
}

// runToEnd drives Decode/Execute/ExecuteDMA until END_OF_CODE, an
// error, or max steps elapse.
func runToEnd(t *testing.T, p *Processor, max int) {
	t.Helper()
	for i := 0; i < max; i++ {
		if _, err := p.Decode(); err != nil {
			t.Fatalf("step %d: Decode() error: %v", i, err)
		}
		code, err := p.Execute()
		if err != nil && code != result.EndOfCode {
			t.Fatalf("step %d: Execute() error: %v", i, err)
		}
		if _, err := p.ExecuteDMA(); err != nil {
			t.Fatalf("step %d: ExecuteDMA() error: %v", i, err)
		}
		if code == result.EndOfCode {
			return
		}
	}
	t.Fatalf("did not reach END_OF_CODE within %d steps", max)
}
