/*
 * Altair Relaxed - Bundle decoder: per-slot unit dispatch and the four
 * per-unit decoders (BRU, LSU, ALU, AGU) plus the VFPU no-op sink.
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
	"github.com/rcornwell/altair-relaxed/result"
)

// opcodeSetSize returns the number of 32-bit words in the next bundle.
// XCHG mode allows up to 4 words, truncated so a decode near the end of
// ISRAM never runs past it; otherwise a bundle is always 2 words.
func opcodeSetSize(p *Processor) int {
	if p.flags&flagXCHG == 0 {
		return 2
	}
	available := uint32(ISRAMSize/4) - p.pc
	if available > 4 {
		return 4
	}
	return int(available)
}

// Decode fetches the next bundle from ISRAM at pc, decodes each slot, and
// advances pc by the bundle size. Any slot that fails to decode aborts
// the whole bundle with ILLEGAL_INSTRUCTION (spec.md §4.1).
func (p *Processor) Decode() (result.Code, error) {
	size := opcodeSetSize(p)
	base := p.pc * 4

	for i := 0; i < size; i++ {
		word := getLE32(p.isram[base+uint32(i)*4:])
		p.opcodes[i] = word

		op, err := p.decodeSlot(i, word)
		if err != nil {
			return result.IllegalInstruction, err
		}
		p.operations[i] = op
	}
	for i := size; i < 4; i++ {
		p.operations[i] = Operation{}
	}

	p.pc += uint32(size)
	return result.Success, nil
}

// decodeSlot picks the functional-unit decoder legal for this slot
// (spec.md §4.2) and dispatches to it.
func (p *Processor) decodeSlot(index int, word uint32) (Operation, error) {
	unit := word & 0x3

	switch index {
	case 0:
		switch unit {
		case 0:
			return decodeBRU(word, p.pc)
		case 1:
			return decodeLSU(word)
		case 2:
			return decodeALU(word)
		default:
			return decodeVFPU(word)
		}
	case 1:
		switch unit {
		case 0:
			return decodeAGU(word)
		case 1:
			return decodeLSU(word)
		case 2:
			return decodeALU(word)
		default:
			return decodeVFPU(word)
		}
	default:
		switch unit {
		case 2:
			return decodeALU(word)
		case 3:
			return decodeVFPU(word)
		default:
			return Operation{}, wrapf(ErrIllegalInstruction,
				"slot %d: unit %d not permitted", index, unit)
		}
	}
}

// decodeVFPU is the reserved functional unit: always a structural no-op
// (spec.md §4.2).
func decodeVFPU(word uint32) (Operation, error) {
	return Operation{Op: OpVFPUNoOp}, nil
}

// decodeBRU decodes a branch-unit word (spec.md §4.3). pc is the
// bundle's program counter, in words, used to resolve PC-relative
// targets.
func decodeBRU(word uint32, pc uint32) (Operation, error) {
	outerType := (word >> 2) & 0x3

	switch outerType {
	case 0:
		return decodeBRUCompareOrBranch(word, pc)
	case 1:
		size := (word >> 4) & 0x3
		imm := (word >> 6) & 0xFFFFF
		reg := (word >> 26) & 0x3F
		return Operation{Op: OpCMPI, Size: uint8(size), Operands: [3]uint32{reg, imm, 0}}, nil
	case 2:
		imm := (word >> 4) & 0x1FFFFF
		reg := (word >> 25) & 0x7F
		return Operation{Op: OpFCMPI, Operands: [3]uint32{reg, imm, 0}}, nil
	default: // 3
		imm := (word >> 4) & 0x3FFFFF
		reg := (word >> 26) & 0x3F
		return Operation{Op: OpDCMPI, Operands: [3]uint32{reg, imm, 0}}, nil
	}
}

func decodeBRUCompareOrBranch(word uint32, pc uint32) (Operation, error) {
	sub := (word >> 4) & 0x3

	switch sub {
	case 0: // CMP
		size := (word >> 8) & 0x3
		right := (word >> 20) & 0x3F
		left := (word >> 26) & 0x3F
		return Operation{Op: OpCMP, Size: uint8(size), Operands: [3]uint32{left, right, 0}}, nil
	case 1: // FCMP
		right := (word >> 18) & 0x7F
		left := (word >> 25) & 0x7F
		return Operation{Op: OpFCMP, Operands: [3]uint32{left, right, 0}}, nil
	case 2: // DCMP
		right := (word >> 20) & 0x3F
		left := (word >> 26) & 0x3F
		return Operation{Op: OpDCMP, Operands: [3]uint32{left, right, 0}}, nil
	default: // 3, branching
		return decodeBranching(word, pc)
	}
}

func decodeBranching(word uint32, pc uint32) (Operation, error) {
	kind := (word >> 6) & 0x3

	switch kind {
	case 0: // Bcc
		comp := (word >> 8) & 0xF
		op := bruComparators[comp]
		if op == OpUnknown {
			return Operation{}, wrapf(ErrIllegalInstruction, "illegal branch comparator %d", comp)
		}
		label := (word >> 12) & 0x3FFF
		target := pc + uint32(extendSign(label, 14))*2
		return Operation{Op: op, Operands: [3]uint32{target, 0, 0}}, nil
	case 2: // jump/call
		kindIdx := (word >> 8) & 0x3
		op := bruJumpsCalls[kindIdx]
		label := (word >> 12) & 0x3FFF
		var target uint32
		if op == OpCALL || op == OpJMP {
			target = label * 2
		} else {
			target = pc + uint32(extendSign(label, 14))*2
		}
		return Operation{Op: op, Operands: [3]uint32{target, 0, 0}}, nil
	case 3: // RET
		return Operation{Op: OpRET}, nil
	default: // 1, illegal
		return Operation{}, wrapf(ErrIllegalInstruction, "illegal branching sub-kind %d", kind)
	}
}

// decodeLSU decodes a load/store-unit word (spec.md §4.3).
func decodeLSU(word uint32) (Operation, error) {
	family := (word >> 2) & 0x3

	switch family {
	case 0:
		return decodeLSUDirect(word, false)
	case 1:
		return decodeLSUSubfamily(word)
	case 2:
		return decodeLSUDirect(word, true)
	default: // 3
		return decodeLSUFloatDouble(word)
	}
}

// decodeLSUDirect handles LDM/STM (toCache=false) and LDC/STC
// (toCache=true): identical field layout, different target buffer
// (spec.md §4.3).
func decodeLSUDirect(word uint32, toCache bool) (Operation, error) {
	incr := (word >> 4) & 0x1
	store := (word >> 5) & 0x1
	size := (word >> 6) & 0x3
	disp := (word >> 8) & 0xFFF
	src := (word >> 20) & 0x3F
	dest := (word >> 26) & 0x3F

	var op Opcode
	switch {
	case toCache && store != 0:
		op = OpSTC
	case toCache:
		op = OpLDC
	case store != 0:
		op = OpSTM
	default:
		op = OpLDM
	}
	return Operation{Op: op, Size: uint8(size), Operands: [3]uint32{disp, src, dest}, Data: incr}, nil
}

// decodeLSUSubfamily handles the type=1 group: LDMX/STMX, IN/OUT, OUTI,
// and the vector LDMV/STMV/LDCV/STCV variants. spec.md §4.3 describes
// this family only in outline (the vector variant's cache/dsram bit and
// its 56-biased source); the intra-field widths below are this
// implementation's own consistent choice, documented in DESIGN.md.
func decodeLSUSubfamily(word uint32) (Operation, error) {
	sub := (word >> 4) & 0x3

	switch sub {
	case 0: // LDMX/STMX
		incr := (word >> 6) & 0x1
		store := (word >> 7) & 0x1
		size := (word >> 8) & 0x3
		disp := (word >> 10) & 0xFFF
		src := (word >> 22) & 0x3F
		dest := (word >> 28) & 0xF
		op := OpLDMX
		if store != 0 {
			op = OpSTMX
		}
		return Operation{Op: op, Size: uint8(size), Operands: [3]uint32{disp, src, dest}, Data: incr}, nil
	case 1: // IN/OUT
		store := (word >> 6) & 0x1
		size := (word >> 7) & 0x3
		value := (word >> 9) & 0xFF
		dest := (word >> 17) & 0x3F
		op := OpIN
		if store != 0 {
			op = OpOUT
		}
		return Operation{Op: op, Size: uint8(size), Operands: [3]uint32{value, 0, dest}}, nil
	case 2: // OUTI
		size := (word >> 6) & 0x1
		value := (word >> 7) & 0xFFFF
		dest := (word >> 23) & 0x3F
		return Operation{Op: OpOUTI, Size: uint8(size), Operands: [3]uint32{value, 0, dest}}, nil
	default: // 3, vector
		cacheSel := (word >> 6) & 0x1
		store := (word >> 7) & 0x1
		size := (word >> 8) & 0x3
		disp := (word >> 10) & 0x3FF
		src := (word>>20)&0x7 + vectorRegBias
		dest := (word >> 23) & 0x1F // 5 bits: the vector view has 32 lanes
		var op Opcode
		switch {
		case cacheSel != 0 && store != 0:
			op = OpSTCV
		case cacheSel != 0:
			op = OpLDCV
		case store != 0:
			op = OpSTMV
		default:
			op = OpLDMV
		}
		return Operation{Op: op, Size: uint8(size), Operands: [3]uint32{disp, src, dest}}, nil
	}
}

// decodeLSUFloatDouble handles the type=3 float/double family (spec.md
// §4.3).
func decodeLSUFloatDouble(word uint32) (Operation, error) {
	isDouble := (word >> 4) & 0x1
	cacheSel := (word >> 5) & 0x1
	store := (word >> 6) & 0x1
	incr := (word >> 7) & 0x1

	if isDouble == 0 {
		disp := (word >> 8) & 0x7FFF
		src := (word>>23)&0x3 + floatRegBias
		dest := (word >> 25) & 0x7F
		var op Opcode
		switch {
		case cacheSel != 0 && store != 0:
			op = OpSTCF
		case cacheSel != 0:
			op = OpLDCF
		case store != 0:
			op = OpSTMF
		default:
			op = OpLDMF
		}
		return Operation{Op: op, Operands: [3]uint32{disp, src, dest}, Data: incr}, nil
	}

	disp := (word >> 8) & 0xFFFF
	src := (word>>24)&0x3 + floatRegBias
	dest := (word >> 26) & 0x3F
	var op Opcode
	switch {
	case cacheSel != 0 && store != 0:
		op = OpSTCD
	case cacheSel != 0:
		op = OpLDCD
	case store != 0:
		op = OpSTMD
	default:
		op = OpLDMD
	}
	return Operation{Op: op, Operands: [3]uint32{disp, src, dest}, Data: incr}, nil
}

// decodeALU decodes an ALU word (spec.md §4.3).
func decodeALU(word uint32) (Operation, error) {
	category := (word >> 2) & 0x3

	switch category {
	case 0:
		return decodeALUCategory0(word)
	case 1:
		opIdx := (word >> 4) & 0xF
		size := (word >> 8) & 0x3
		imm10 := (word >> 10) & 0x3FF
		src := (word >> 20) & 0x3F
		dest := (word >> 26) & 0x3F
		op := aluRegRegImmOpcodes[opIdx]
		if op == OpUnknown {
			return Operation{}, wrapf(ErrIllegalInstruction, "illegal ALU reg-reg-imm op %d", opIdx)
		}
		return Operation{Op: op, Size: uint8(size), Operands: [3]uint32{src, imm10, dest}}, nil
	case 2:
		opIdx := (word >> 4) & 0xF
		size := (word >> 8) & 0x3
		imm16 := (word >> 10) & 0xFFFF
		dest := (word >> 26) & 0x3F
		op := aluRegImmOpcodes[opIdx]
		if op == OpUnknown {
			return Operation{}, wrapf(ErrIllegalInstruction, "illegal ALU reg-imm op %d", opIdx)
		}
		return Operation{Op: op, Size: uint8(size), Operands: [3]uint32{imm16, 0, dest}}, nil
	default: // 3, MOVEI
		imm22 := (word >> 4) & 0x3FFFFF
		dest := (word >> 26) & 0x3F
		return Operation{Op: OpMOVEI, Operands: [3]uint32{imm22, 0, dest}}, nil
	}
}

func decodeALUCategory0(word uint32) (Operation, error) {
	typ := (word >> 4) & 0x7

	switch typ {
	case 0: // arithmetic table
		opIdx := (word >> 8) & 0xF
		size := (word >> 12) & 0x3
		src1 := (word >> 14) & 0x3F
		src2 := (word >> 20) & 0x3F
		dest := (word >> 26) & 0x3F
		op := aluRegRegRegOpcodes[opIdx]
		if op == OpUnknown {
			return Operation{}, wrapf(ErrIllegalInstruction, "illegal ALU reg-reg-reg op %d", opIdx)
		}
		return Operation{Op: op, Size: uint8(size), Operands: [3]uint32{src1, src2, dest}}, nil
	case 2: // XCHG
		return Operation{Op: OpXCHG}, nil
	case 6: // NOP, possibly end-of-code
		end := (word >> 7) & 0x1
		return Operation{Op: OpNOP, Data: end}, nil
	default:
		return Operation{}, wrapf(ErrIllegalInstruction, "illegal ALU category-0 type %d", typ)
	}
}

// decodeAGU decodes an address-generation/DMA-unit word (spec.md §4.3).
// AGU ops are staged rather than executed directly; see processor/dma.go.
func decodeAGU(word uint32) (Operation, error) {
	list := (word >> 2) & 0x1
	if list == 0 {
		store := (word >> 3) & 0x1
		size := (word >> 4) & 0x1
		sramIdx := (word>>5)&0x3 + dmaSRAMBias
		ramIdx := (word>>7)&0x1 + dmaRAMBias
		sramb := (word >> 8) & 0xFFF
		ramb := (word >> 20) & 0xFFF
		data := (ramb << 12) | sramb

		op := OpLDDMA
		if store != 0 {
			op = OpSTDMA
		}
		return Operation{Op: op, Size: uint8(size), Operands: [3]uint32{sramIdx, ramIdx, 0}, Data: data}, nil
	}

	return decodeAGUList(word)
}

// decodeAGUList handles LDDMAR/STDMAR/DMAIR/WAIT. The source overlaps
// the `size` and `ram` fields at the same bit range for these three ops
// (spec.md §9); this implementation resolves the collision with its own
// non-overlapping 6-bit split, documented in DESIGN.md.
func decodeAGUList(word uint32) (Operation, error) {
	store := (word >> 3) & 0x1
	subtype := (word >> 4) & 0xF

	switch subtype {
	case 0: // LDDMAR/STDMAR
		ram := (word >> 8) & 0x3F
		size := (word >> 14) & 0x3F
		sram := (word >> 20) & 0x3F
		op := OpLDDMAR
		if store != 0 {
			op = OpSTDMAR
		}
		return Operation{Op: op, Size: uint8(size), Operands: [3]uint32{sram, ram, 0}}, nil
	case 1: // DMAIR
		ram := (word >> 8) & 0x3F
		size := (word >> 14) & 0x3F
		sram := (word >> 20) & 0x3F
		return Operation{Op: OpDMAIR, Size: uint8(size), Operands: [3]uint32{sram, ram, 0}}, nil
	case 15: // WAIT
		return Operation{Op: OpWAIT}, nil
	default:
		return Operation{}, wrapf(ErrIllegalInstruction, "illegal AGU list type %d", subtype)
	}
}
