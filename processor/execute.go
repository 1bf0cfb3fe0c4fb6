/*
 * Altair Relaxed - Immediate executor: memory moves, arithmetic/logic,
 * compares, and staging of control-flow/XCHG/NOP/AGU operations.
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

// Execute runs the delayed operations staged by the previous bundle,
// then this bundle's immediate effects, in that order (spec.md §2, §4.4,
// §4.5).
func (p *Processor) Execute() (result.Code, error) {
	if code, err := p.runDelayed(); err != nil {
		return code, err
	} else if code == result.EndOfCode {
		return code, nil
	}

	for i := 0; i < 4; i++ {
		op := p.operations[i]
		if op.Op == OpUnknown {
			continue
		}
		if code, err := p.executeImmediate(i, op); err != nil {
			return code, err
		}
	}
	return result.Success, nil
}

func isALUOp(op Opcode) bool {
	return op >= OpADD && op <= OpLSRQ
}

// executeImmediate applies the non-control-flow effect of one decoded
// operation, or stages it for the delayed executor / DMA engine
// (spec.md §4.4).
func (p *Processor) executeImmediate(index int, op Operation) (result.Code, error) {
	if isALUOp(op.Op) {
		return p.executeALU(op)
	}

	switch op.Op {
	case OpLDM, OpSTM:
		return p.executeIntMemoryMove(op, p.dsram)
	case OpLDC, OpSTC:
		return p.executeIntMemoryMove(op, p.cache)
	case OpLDMX, OpSTMX:
		return p.executeIntMemoryMove(op, p.dsram)
	case OpIN, OpOUT, OpOUTI:
		return p.executeIOMemoryMove(op)
	case OpLDMV, OpSTMV:
		return p.executeVectorMemoryMove(op, p.dsram)
	case OpLDCV, OpSTCV:
		return p.executeVectorMemoryMove(op, p.cache)
	case OpLDMF, OpSTMF:
		return p.executeFloatMemoryMove(op, p.dsram)
	case OpLDCF, OpSTCF:
		return p.executeFloatMemoryMove(op, p.cache)
	case OpLDMD, OpSTMD:
		return p.executeDoubleMemoryMove(op, p.dsram)
	case OpLDCD, OpSTCD:
		return p.executeDoubleMemoryMove(op, p.cache)

	case OpMOVEI:
		p.ireg[op.Operands[2]] = uint64(op.Operands[0])
		return result.Success, nil

	case OpCMP, OpCMPI:
		return p.executeIntCompare(op)
	case OpFCMP, OpFCMPI:
		return p.executeFloatCompare(op)
	case OpDCMP, OpDCMPI:
		return p.executeDoubleCompare(op)

	case OpXCHG, OpNOP,
		OpBNE, OpBEQ, OpBL, OpBLE, OpBG, OpBGE, OpBLS, OpBLES, OpBGS, OpBGES,
		OpJMP, OpCALL, OpJMPR, OpCALLR, OpRET:
		p.delayed[index] = op
		p.delayedBits |= 1 << uint(index)
		return result.Success, nil

	case OpLDDMA, OpSTDMA, OpLDDMAR, OpSTDMAR, OpDMAIR, OpWAIT:
		if p.dma {
			return result.IllegalInstruction, wrapf(ErrIllegalInstruction,
				"DMA already pending, cannot stage another before the host drains it")
		}
		p.dma = true
		p.dmaOperation = op
		return result.Success, nil

	case OpVFPUNoOp:
		return result.Success, nil

	default:
		return result.IllegalInstruction, wrapf(ErrIllegalInstruction, "unexecutable op %v", op.Op)
	}
}

func isStoreOp(op Opcode) bool {
	switch op {
	case OpSTM, OpSTC, OpSTMX, OpSTMV, OpSTCV, OpSTMF, OpSTCF, OpSTMD, OpSTCD, OpOUT, OpOUTI:
		return true
	default:
		return false
	}
}

// executeIntMemoryMove handles LDM/STM, LDC/STC, LDMX/STMX: n = 1<<size
// bytes between ireg[dest] and buf[disp+ireg[src]], then ireg[src] +=
// incr (spec.md §4.4).
func (p *Processor) executeIntMemoryMove(op Operation, buf []byte) (result.Code, error) {
	disp, src, dest := op.Operands[0], op.Operands[1], op.Operands[2]
	addr := disp + uint32(p.ireg[src])
	n := 1 << op.Size

	if uint64(addr)+uint64(n) > uint64(len(buf)) {
		return result.MemoryOutOfRange, wrapf(ErrMemoryOutOfRange,
			"memory move at %#x size %d exceeds buffer of %d bytes", addr, n, len(buf))
	}
	if isStoreOp(op.Op) {
		p.writeFromRegister(buf[addr:], dest, n)
	} else {
		p.readIntoRegister(dest, buf[addr:addr+uint32(n)], n)
	}
	p.ireg[src] += uint64(op.Data)
	return result.Success, nil
}

// executeIOMemoryMove handles IN/OUT/OUTI: a direct offset into iosram,
// no base register or increment (spec.md §4.3, §4.4).
func (p *Processor) executeIOMemoryMove(op Operation) (result.Code, error) {
	addr, dest := op.Operands[0], op.Operands[2]
	n := 1 << op.Size

	if uint64(addr)+uint64(n) > uint64(len(p.iosram)) {
		return result.MemoryOutOfRange, wrapf(ErrMemoryOutOfRange,
			"I/O move at %#x size %d exceeds IOSRAM of %d bytes", addr, n, len(p.iosram))
	}
	if isStoreOp(op.Op) {
		p.writeFromRegister(p.iosram[addr:], dest, n)
	} else {
		p.readIntoRegister(dest, p.iosram[addr:addr+uint32(n)], n)
	}
	return result.Success, nil
}

// executeVectorMemoryMove handles LDMV/STMV/LDCV/STCV: 16 bytes between
// the vector view of freg[dest] and buf[disp+ireg[src]], where src is an
// integer base register and dest the float-register index (spec.md §4.4).
func (p *Processor) executeVectorMemoryMove(op Operation, buf []byte) (result.Code, error) {
	disp, src, dest := op.Operands[0], op.Operands[1], op.Operands[2]
	addr := disp + uint32(p.ireg[src])

	if uint64(addr)+16 > uint64(len(buf)) {
		return result.MemoryOutOfRange, wrapf(ErrMemoryOutOfRange,
			"vector move at %#x exceeds buffer of %d bytes", addr, len(buf))
	}
	if isStoreOp(op.Op) {
		copy(buf[addr:addr+16], p.vector4fBytes(dest))
	} else {
		p.setVector4fBytes(dest, buf[addr:addr+16])
	}
	return result.Success, nil
}

// executeFloatMemoryMove handles LDMF/STMF/LDCF/STCF: 4 bytes between
// the float32 view of freg[dest] and buf[disp+ireg[src]] (spec.md §4.4).
func (p *Processor) executeFloatMemoryMove(op Operation, buf []byte) (result.Code, error) {
	disp, src, dest := op.Operands[0], op.Operands[1], op.Operands[2]
	addr := disp + uint32(p.ireg[src])

	if uint64(addr)+4 > uint64(len(buf)) {
		return result.MemoryOutOfRange, wrapf(ErrMemoryOutOfRange,
			"float move at %#x exceeds buffer of %d bytes", addr, len(buf))
	}
	if isStoreOp(op.Op) {
		putLE32(buf[addr:], float32Bits(p.float32At(dest)))
	} else {
		p.setFloat32At(dest, float32FromBits(getLE32(buf[addr:])))
	}
	return result.Success, nil
}

// executeDoubleMemoryMove handles LDMD/STMD/LDCD/STCD: 8 bytes between
// the float64 view of freg[dest] and buf[disp+ireg[src]] (spec.md §4.4).
func (p *Processor) executeDoubleMemoryMove(op Operation, buf []byte) (result.Code, error) {
	disp, src, dest := op.Operands[0], op.Operands[1], op.Operands[2]
	addr := disp + uint32(p.ireg[src])

	if uint64(addr)+8 > uint64(len(buf)) {
		return result.MemoryOutOfRange, wrapf(ErrMemoryOutOfRange,
			"double move at %#x exceeds buffer of %d bytes", addr, len(buf))
	}
	if isStoreOp(op.Op) {
		putLE64(buf[addr:], float64Bits(p.float64At(dest)))
	} else {
		p.setFloat64At(dest, float64FromBits(getLE64(buf[addr:])))
	}
	return result.Success, nil
}

// signExtendSized sign-extends the low 8/16/32/64 bits of v (selected by
// size 0..3) to a full int64.
func signExtendSized(v uint64, size uint8) int64 {
	switch size {
	case 0:
		return int64(int8(v))
	case 1:
		return int64(int16(v))
	case 2:
		return int64(int32(v))
	default:
		return int64(v)
	}
}

// aluFamily strips the immediate/quick suffix from an ALU opcode,
// returning the shared reg-reg-reg base so the three operand shapes can
// share one compute function.
func aluFamily(op Opcode) Opcode {
	switch op {
	case OpADD, OpADDI, OpADDQ:
		return OpADD
	case OpSUB, OpSUBI, OpSUBQ:
		return OpSUB
	case OpMULS, OpMULSI, OpMULSQ:
		return OpMULS
	case OpMULU, OpMULUI, OpMULUQ:
		return OpMULU
	case OpDIVS, OpDIVSI, OpDIVSQ:
		return OpDIVS
	case OpDIVU, OpDIVUI, OpDIVUQ:
		return OpDIVU
	case OpAND, OpANDI, OpANDQ:
		return OpAND
	case OpOR, OpORI, OpORQ:
		return OpOR
	case OpXOR, OpXORI, OpXORQ:
		return OpXOR
	case OpASL, OpASLI, OpASLQ:
		return OpASL
	case OpLSL, OpLSLI, OpLSLQ:
		return OpLSL
	case OpASR, OpASRI, OpASRQ:
		return OpASR
	case OpLSR, OpLSRI, OpLSRQ:
		return OpLSR
	default:
		return OpUnknown
	}
}

// computeALU applies the arithmetic/logic operation named by family to
// operands a, b, which arrive unmasked (the signed operations sign-extend
// their low size-selected bytes first) (spec.md §4.4). The result is the signed/unsigned
// 64-bit store the operation implies, not yet masked by sizemask — the
// caller does that (spec.md §9: MULS/DIVS/ASL/ASR write a full 64-bit
// signed result before masking).
func computeALU(family Opcode, size uint8, a, b uint64) uint64 {
	shift := uint(b & 0x3F)
	switch family {
	case OpADD:
		return a + b
	case OpSUB:
		return a - b
	case OpMULS:
		return uint64(signExtendSized(a, size) * signExtendSized(b, size))
	case OpMULU:
		return a * b
	case OpDIVS:
		rb := signExtendSized(b, size)
		if rb == 0 {
			return 0
		}
		return uint64(signExtendSized(a, size) / rb)
	case OpDIVU:
		if b == 0 {
			return 0
		}
		return a / b
	case OpAND:
		return a & b
	case OpOR:
		return a | b
	case OpXOR:
		return a ^ b
	case OpASL, OpLSL:
		return a << shift
	case OpASR:
		return uint64(signExtendSized(a, size) >> shift)
	case OpLSR:
		return a >> shift
	default:
		return 0
	}
}

func (p *Processor) executeALU(op Operation) (result.Code, error) {
	family := aluFamily(op.Op)
	if family == OpUnknown {
		return result.IllegalInstruction, wrapf(ErrIllegalInstruction, "unexecutable ALU op %v", op.Op)
	}

	var a, b uint64
	var dest uint32
	switch {
	case op.Op >= OpADD && op.Op <= OpLSR: // reg-reg-reg
		a = p.ireg[op.Operands[0]]
		b = p.ireg[op.Operands[1]]
		dest = op.Operands[2]
	case op.Op >= OpADDI && op.Op <= OpLSRI: // reg-reg-imm
		a = p.ireg[op.Operands[0]]
		b = uint64(op.Operands[1])
		dest = op.Operands[2]
	default: // reg-imm (Q variants): no source register field, so the
		// destination's current value is the implicit left operand
		// (spec.md §8 E1: ADDQ.b r0,5 accumulates onto r0).
		dest = op.Operands[2]
		a = p.ireg[dest]
		b = uint64(op.Operands[0])
	}

	r := computeALU(family, op.Size, a, b)
	p.ireg[dest] = r & sizemask[op.Size]
	return result.Success, nil
}

func (p *Processor) executeIntCompare(op Operation) (result.Code, error) {
	var left, right uint64
	if op.Op == OpCMP {
		left = p.ireg[op.Operands[0]] & sizemask[op.Size]
		right = p.ireg[op.Operands[1]] & sizemask[op.Size]
	} else { // CMPI
		left = p.ireg[op.Operands[0]] & sizemask[op.Size]
		right = uint64(op.Operands[1]) & sizemask[op.Size]
	}

	p.flags &^= flagZSUMask | flagCMPTMask
	if left != right {
		p.flags |= flagZ
	}
	if int64(left) < int64(right) {
		p.flags |= flagS
	}
	if left < right {
		p.flags |= flagU
	}
	return result.Success, nil
}

func (p *Processor) executeFloatCompare(op Operation) (result.Code, error) {
	var left, right float32
	if op.Op == OpFCMP {
		left = p.float32At(op.Operands[0])
		right = p.float32At(op.Operands[1])
	} else { // FCMPI
		left = p.float32At(op.Operands[0])
		right = float32FromBits(op.Operands[1] << 11)
	}

	p.flags &^= flagZSUMask | flagCMPTMask
	if left != right {
		p.flags |= flagZ
	}
	if left < right {
		p.flags |= flagS
	}
	p.flags |= cmptFloat
	return result.Success, nil
}

func (p *Processor) executeDoubleCompare(op Operation) (result.Code, error) {
	var left, right float64
	if op.Op == OpDCMP {
		left = p.float64At(op.Operands[0])
		right = p.float64At(op.Operands[1])
	} else { // DCMPI
		left = p.float64At(op.Operands[0])
		right = float64FromBits(uint64(op.Operands[1]) << 42)
	}

	p.flags &^= flagZSUMask | flagCMPTMask
	if left != right {
		p.flags |= flagZ
	}
	if left < right {
		p.flags |= flagS
	}
	p.flags |= cmptDouble // includes DCMPI, per the corrected tag (spec.md §9)
	return result.Success, nil
}
