/*
 * Altair Relaxed - Bundle decoder test cases.
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

import "testing"

func TestDecodeBRUCompareRoundTrip(t *testing.T) {
	op, err := decodeBRU(encodeCMP(2, 9, 17), 0)
	if err != nil {
		t.Fatalf("decodeBRU: %v", err)
	}
	if op.Op != OpCMP || op.Size != 2 || op.Operands[0] != 9 || op.Operands[1] != 17 {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeBRUDCMPIRoundTrip(t *testing.T) {
	op, err := decodeBRU(encodeDCMPI(5, 12345), 0)
	if err != nil {
		t.Fatalf("decodeBRU: %v", err)
	}
	if op.Op != OpDCMPI || op.Operands[0] != 5 || op.Operands[1] != 12345 {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeBccTargetIsPCRelative(t *testing.T) {
	// label=3 means a forward target of pc+6 words.
	op, err := decodeBRU(encodeBcc(1, 3), 100)
	if err != nil {
		t.Fatalf("decodeBRU: %v", err)
	}
	if op.Op != OpBEQ || op.Operands[0] != 106 {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeBccNegativeLabel(t *testing.T) {
	// 14-bit label -1 (0x3FFF) means a backward target of pc-2.
	op, err := decodeBRU(encodeBcc(0, 0x3FFF), 100)
	if err != nil {
		t.Fatalf("decodeBRU: %v", err)
	}
	if op.Op != OpBNE || op.Operands[0] != 98 {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeCallTargetIsAbsolute(t *testing.T) {
	op, err := decodeBRU(encodeJumpCall(0, 200), 1000)
	if err != nil {
		t.Fatalf("decodeBRU: %v", err)
	}
	if op.Op != OpCALL || op.Operands[0] != 400 {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeIllegalBccComparator(t *testing.T) {
	if _, err := decodeBRU(encodeBcc(12, 0), 0); err == nil {
		t.Fatalf("expected illegal comparator error")
	}
}

func TestDecodeIllegalBranchingSubKind(t *testing.T) {
	word := uint32(0 | (0 << 2) | (3 << 4) | (1 << 6))
	if _, err := decodeBRU(word, 0); err == nil {
		t.Fatalf("expected illegal branching sub-kind error")
	}
}

func TestDecodeLSUDirectRoundTrip(t *testing.T) {
	op, err := decodeLSU(encodeLDM(1, 1, 2, 100, 5, 6))
	if err != nil {
		t.Fatalf("decodeLSU: %v", err)
	}
	if op.Op != OpSTM || op.Size != 2 || op.Operands[0] != 100 ||
		op.Operands[1] != 5 || op.Operands[2] != 6 || op.Data != 1 {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeLSUDirectLoadNoIncrement(t *testing.T) {
	op, err := decodeLSU(encodeLDM(0, 0, 1, 50, 2, 3))
	if err != nil {
		t.Fatalf("decodeLSU: %v", err)
	}
	if op.Op != OpLDM || op.Data != 0 {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeLSUCacheVariant(t *testing.T) {
	op, err := decodeLSU(encodeLDC(1, 0, 0, 10, 1, 2))
	if err != nil {
		t.Fatalf("decodeLSU: %v", err)
	}
	if op.Op != OpSTC {
		t.Fatalf("got %+v", op)
	}
}

// TestDecodeLSUSubfamilyRoundTrip pins the LDMX/STMX and vector-variant
// bit layout documented in DESIGN.md as this implementation's own
// resolution of an underspecified sub-family.
func TestDecodeLSUSubfamilyRoundTrip(t *testing.T) {
	word := uint32(1) | (1 << 2) | (0 << 4) | (1 << 6) | (1 << 7) | (1 << 8) | (0x123 << 10) | (0x1F << 22) | (0xA << 28)
	op, err := decodeLSU(word)
	if err != nil {
		t.Fatalf("decodeLSU: %v", err)
	}
	if op.Op != OpSTMX || op.Size != 1 || op.Operands[0] != 0x123 ||
		op.Operands[1] != 0x1F || op.Operands[2] != 0xA || op.Data != 1 {
		t.Fatalf("got %+v", op)
	}

	vecWord := uint32(1) | (1 << 2) | (3 << 4) | (1 << 6) | (1 << 7) | (2 << 8) | (0x3FF << 10) | (0x5 << 20) | (0x1F << 23)
	vecOp, err := decodeLSU(vecWord)
	if err != nil {
		t.Fatalf("decodeLSU vector: %v", err)
	}
	if vecOp.Op != OpSTCV || vecOp.Size != 2 || vecOp.Operands[0] != 0x3FF ||
		vecOp.Operands[1] != 0x5+vectorRegBias || vecOp.Operands[2] != 0x1F {
		t.Fatalf("got %+v", vecOp)
	}
}

func TestDecodeALUArithmeticRoundTrip(t *testing.T) {
	op, err := decodeALU(encodeALUCat0Arith(1, 3, 4, 5, 6))
	if err != nil {
		t.Fatalf("decodeALU: %v", err)
	}
	if op.Op != OpSUB || op.Size != 3 || op.Operands[0] != 4 ||
		op.Operands[1] != 5 || op.Operands[2] != 6 {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeALUIllegalArithmeticIndex(t *testing.T) {
	if _, err := decodeALU(encodeALUCat0Arith(14, 0, 0, 0, 0)); err == nil {
		t.Fatalf("expected illegal ALU op error")
	}
}

func TestDecodeMOVEIRoundTrip(t *testing.T) {
	op, err := decodeALU(encodeMOVEI(9, 0x3FFFFF))
	if err != nil {
		t.Fatalf("decodeALU: %v", err)
	}
	if op.Op != OpMOVEI || op.Operands[0] != 0x3FFFFF || op.Operands[2] != 9 {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeNOPEndOfCodeBit(t *testing.T) {
	op, err := decodeALU(encodeNOP(1))
	if err != nil {
		t.Fatalf("decodeALU: %v", err)
	}
	if op.Op != OpNOP || op.Data != 1 {
		t.Fatalf("got %+v", op)
	}
}

// TestDecodeLDDMARFieldLayout pins the non-overlapping ram/size/sram
// split this implementation resolves the spec.md §9 field collision
// with (see DESIGN.md): each of the three reads its own 6-bit range.
func TestDecodeLDDMARFieldLayout(t *testing.T) {
	op, err := decodeAGUList(encodeLDDMAR(1, 10, 20, 30))
	if err != nil {
		t.Fatalf("decodeAGUList: %v", err)
	}
	if op.Op != OpSTDMAR {
		t.Fatalf("got op %v, want STDMAR", op.Op)
	}
	if op.Size != 20 {
		t.Fatalf("size = %d, want 20 (must not collide with ram/sram)", op.Size)
	}
	if op.Operands[0] != 30 {
		t.Fatalf("operands[0] (sram) = %d, want 30", op.Operands[0])
	}
	if op.Operands[1] != 10 {
		t.Fatalf("operands[1] (ram) = %d, want 10", op.Operands[1])
	}
}

func TestDecodeDMAIRRoundTrip(t *testing.T) {
	op, err := decodeAGUList(encodeDMAIR(4, 2, 6))
	if err != nil {
		t.Fatalf("decodeAGUList: %v", err)
	}
	if op.Op != OpDMAIR || op.Size != 2 || op.Operands[0] != 6 || op.Operands[1] != 4 {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeWAITRoundTrip(t *testing.T) {
	op, err := decodeAGUList(encodeWAIT())
	if err != nil {
		t.Fatalf("decodeAGUList: %v", err)
	}
	if op.Op != OpWAIT {
		t.Fatalf("got %+v", op)
	}
}

func TestDecodeAGUListIllegalSubtype(t *testing.T) {
	word := uint32(0) | (1 << 2) | (0 << 3) | (7 << 4)
	if _, err := decodeAGUList(word); err == nil {
		t.Fatalf("expected illegal AGU list subtype error")
	}
}

// TestDecodeSlotLegality checks the per-slot unit table (spec.md §4.2):
// slot 0 reads unit 0 as BRU and slot 1 reads the same unit value as
// AGU, while slots 2/3 reject unit 0 and 1 outright since nothing maps
// a BRU or AGU word there.
func TestDecodeSlotLegality(t *testing.T) {
	p := newTestProcessor(t, []uint32{0}, nil)

	if op, err := p.decodeSlot(0, encodeCMP(0, 0, 0)); err != nil || op.Op != OpCMP {
		t.Fatalf("slot 0 unit 0 should decode as BRU CMP, got %+v, err %v", op, err)
	}
	if op, err := p.decodeSlot(1, encodeLDDMAR(0, 0, 1, 0)); err != nil || op.Op != OpLDDMAR {
		t.Fatalf("slot 1 unit 0 should decode as AGU LDDMAR, got %+v, err %v", op, err)
	}

	// Slots 2/3: only ALU and VFPU legal, unit 0/1 illegal regardless of
	// the word's bit pattern.
	for _, slot := range []int{2, 3} {
		if _, err := p.decodeSlot(slot, encodeMOVEI(0, 0)); err != nil {
			t.Fatalf("slot %d ALU should be legal: %v", slot, err)
		}
		if _, err := p.decodeSlot(slot, uint32(0)); err == nil {
			t.Fatalf("slot %d unit 0 should be illegal", slot)
		}
		if _, err := p.decodeSlot(slot, uint32(1)); err == nil {
			t.Fatalf("slot %d unit 1 should be illegal", slot)
		}
	}
}

func TestOpcodeSetSizeTruncatesNearISRAMEnd(t *testing.T) {
	p := newTestProcessor(t, []uint32{0}, nil)

	if got := opcodeSetSize(p); got != 2 {
		t.Fatalf("without XCHG, want bundle size 2, got %d", got)
	}

	p.flags |= flagXCHG
	lastWord := uint32(ISRAMSize/4) - 1

	p.pc = 0
	if got := opcodeSetSize(p); got != 4 {
		t.Fatalf("mid-buffer with XCHG, want 4, got %d", got)
	}

	p.pc = lastWord
	if got := opcodeSetSize(p); got != 1 {
		t.Fatalf("one word from the end, want 1, got %d", got)
	}

	p.pc = lastWord - 1
	if got := opcodeSetSize(p); got != 2 {
		t.Fatalf("two words from the end, want 2, got %d", got)
	}
}
