/*
 * Altair Relaxed - Delayed executor: branches, jumps, calls, return,
 * XCHG toggle, and the terminal NOP.
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

// runDelayed drains the operations staged by the previous bundle, in
// slot order, clearing each slot's bit as it is consumed (spec.md §4.5).
func (p *Processor) runDelayed() (result.Code, error) {
	for i := 0; i < 4; i++ {
		bit := uint8(1) << uint(i)
		if p.delayedBits&bit == 0 {
			continue
		}
		op := p.delayed[i]
		p.delayedBits &^= bit

		code, err := p.executeDelayedOp(op)
		if err != nil {
			return code, err
		}
		if code == result.EndOfCode {
			return code, nil
		}
	}
	return result.Success, nil
}

// branchTaken evaluates the Bcc truth table against the current flags
// (spec.md §4.5). Z means "not equal" in this design — kept as canonical
// per spec.md §9, not "fixed" to a conventional polarity.
func branchTaken(op Opcode, flags Flags) bool {
	z := flags&flagZ != 0
	s := flags&flagS != 0
	u := flags&flagU != 0

	switch op {
	case OpBNE:
		return z
	case OpBEQ:
		return !z
	case OpBL:
		return u
	case OpBLE:
		return u || !z
	case OpBG:
		return !u
	case OpBGE:
		return !u || !z
	case OpBLS:
		return s
	case OpBLES:
		return s || !z
	case OpBGS:
		return !s
	case OpBGES:
		return !s || !z
	default:
		return false
	}
}

func isBcc(op Opcode) bool {
	switch op {
	case OpBNE, OpBEQ, OpBL, OpBLE, OpBG, OpBGE, OpBLS, OpBLES, OpBGS, OpBGES:
		return true
	default:
		return false
	}
}

func (p *Processor) executeDelayedOp(op Operation) (result.Code, error) {
	switch {
	case isBcc(op.Op):
		if branchTaken(op.Op, p.flags) {
			p.pc = op.Operands[0]
		}
		p.flags &^= flagZSUMask
		return result.Success, nil

	case op.Op == OpJMP || op.Op == OpJMPR:
		p.pc = op.Operands[0]
		return result.Success, nil

	case op.Op == OpCALL || op.Op == OpCALLR:
		p.flags &^= flagRMask
		p.flags |= (p.pc << 4) & flagRMask
		p.pc = op.Operands[0]
		return result.Success, nil

	case op.Op == OpRET:
		p.pc = (p.flags & flagRMask) >> 4
		return result.Success, nil

	case op.Op == OpXCHG:
		p.flags ^= flagXCHG
		return result.Success, nil

	case op.Op == OpNOP:
		if op.Data != 0 {
			return result.EndOfCode, nil
		}
		return result.Success, nil

	default:
		return result.IllegalInstruction, wrapf(ErrIllegalInstruction, "illegal delayed op %v", op.Op)
	}
}
