/*
 * Altair Relaxed - DMA engine: materialises the pending RAM<->SRAM
 * transfer staged by an AGU operation.
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

// ExecuteDMA materialises the pending RAM<->SRAM transfer, if any. The
// host calls this between Execute steps (spec.md §2, §4.6). The pending
// flag is cleared before dispatch, so a failure never leaves the
// processor thinking a DMA is still outstanding.
func (p *Processor) ExecuteDMA() (result.Code, error) {
	if !p.dma {
		return result.Success, nil
	}
	op := p.dmaOperation
	p.dma = false

	switch op.Op {
	case OpLDDMA, OpSTDMA:
		return p.executeDMA(op)
	case OpLDDMAR, OpSTDMAR:
		return p.executeDMAR(op)
	case OpDMAIR:
		return p.executeDMAIR(op)
	case OpWAIT:
		return result.Success, nil
	default:
		return result.IllegalInstruction, wrapf(ErrIllegalInstruction, "illegal DMA op %v", op.Op)
	}
}

// executeDMA handles LDDMA/STDMA: packed 12-bit sram/ram offsets in
// Data, biased base registers, (size+1)*32-byte chunks (spec.md §4.6).
func (p *Processor) executeDMA(op Operation) (result.Code, error) {
	sramb := op.Data & 0xFFF
	ramb := (op.Data >> 12) & 0xFFF

	sram := uint32((p.ireg[op.Operands[0]] + uint64(sramb)) * 32)
	ram := (p.ireg[op.Operands[1]] + uint64(ramb)) * 32
	size := uint32(op.Size+1) * 32

	if uint64(sram)+uint64(size) > uint64(len(p.dsram)) {
		return result.MemoryOutOfRange, wrapf(ErrMemoryOutOfRange,
			"DMA at dsram %#x size %d exceeds DSRAM of %d bytes", sram, size, len(p.dsram))
	}

	store := op.Op == OpSTDMA
	if store {
		return p.copyToRAM(ram, p.dsram[sram:sram+size])
	}
	return p.copyFromRAM(ram, p.dsram[sram:sram+size])
}

// executeDMAR handles LDDMAR/STDMAR: unbiased register-indexed offsets,
// size*32-byte chunks (spec.md §4.6).
func (p *Processor) executeDMAR(op Operation) (result.Code, error) {
	sram := uint32(p.ireg[op.Operands[0]] * 32)
	ram := p.ireg[op.Operands[1]] * 32
	size := uint32(op.Size) * 32

	if uint64(sram)+uint64(size) > uint64(len(p.dsram)) {
		return result.MemoryOutOfRange, wrapf(ErrMemoryOutOfRange,
			"DMA at dsram %#x size %d exceeds DSRAM of %d bytes", sram, size, len(p.dsram))
	}

	store := op.Op == OpSTDMAR
	if store {
		return p.copyToRAM(ram, p.dsram[sram:sram+size])
	}
	return p.copyFromRAM(ram, p.dsram[sram:sram+size])
}

// executeDMAIR handles DMAIR: an instruction-SRAM-only load from RAM
// (spec.md §4.6).
func (p *Processor) executeDMAIR(op Operation) (result.Code, error) {
	sram := uint32(p.ireg[op.Operands[0]] * 32)
	ram := p.ireg[op.Operands[1]] * 32
	size := uint32(op.Size) * 32

	if uint64(sram)+uint64(size) > uint64(len(p.isram)) {
		return result.MemoryOutOfRange, wrapf(ErrMemoryOutOfRange,
			"DMA at isram %#x size %d exceeds ISRAM of %d bytes", sram, size, len(p.isram))
	}

	return p.copyFromRAM(ram, p.isram[sram:sram+size])
}

// copyFromRAM copies len(dst) bytes from the first attached physical
// memory at ramAddress into dst (spec.md §4.6).
func (p *Processor) copyFromRAM(ramAddress uint64, dst []byte) (result.Code, error) {
	mem, ok := p.firstPhysicalMemory()
	if !ok {
		return result.IllegalInstruction, wrapf(ErrIllegalInstruction, "no physical memory attached")
	}
	size := uint64(len(dst))
	if ramAddress+size < ramAddress || ramAddress+size > mem.Size() {
		return result.PhysicalMemoryOutOfRange, wrapf(ErrPhysicalOutOfRange,
			"RAM read at %#x size %d exceeds physical memory of %d bytes", ramAddress, size, mem.Size())
	}
	copy(dst, mem.Bytes()[ramAddress:ramAddress+size])
	return result.Success, nil
}

// copyToRAM copies src into the first attached physical memory at
// ramAddress (spec.md §4.6).
func (p *Processor) copyToRAM(ramAddress uint64, src []byte) (result.Code, error) {
	mem, ok := p.firstPhysicalMemory()
	if !ok {
		return result.IllegalInstruction, wrapf(ErrIllegalInstruction, "no physical memory attached")
	}
	size := uint64(len(src))
	if ramAddress+size < ramAddress || ramAddress+size > mem.Size() {
		return result.PhysicalMemoryOutOfRange, wrapf(ErrPhysicalOutOfRange,
			"RAM write at %#x size %d exceeds physical memory of %d bytes", ramAddress, size, mem.Size())
	}
	copy(mem.Bytes()[ramAddress:ramAddress+size], src)
	return result.Success, nil
}

func (p *Processor) firstPhysicalMemory() (PhysicalMemory, bool) {
	if p.parent == nil {
		return nil, false
	}
	return p.parent.FirstPhysicalMemory()
}
