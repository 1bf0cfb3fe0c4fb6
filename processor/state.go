/*
 * Altair Relaxed - Processor architectural state.
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

// Package processor implements the Altair Relaxed VLIW bundle decoder
// and its three-phase (decode, execute, DMA) execution model.
//
// A Processor is not safe for concurrent use: the host is expected to
// drive Decode, Execute, and ExecuteDMA from a single goroutine per
// processor, in that order, once per bundle (spec.md §5).
package processor

import (
	"log/slog"
)

// Default buffer sizes. ISRAMSize must be a multiple of 16 (spec.md §3).
const (
	ISRAMSize  = 64 * 1024
	DSRAMSize  = 64 * 1024
	IOSRAMSize = 4 * 1024
	CacheSize  = 16 * 1024

	// Flag bit-field layout (spec.md §3).
	flagXCHG Flags = 1 << 0
	flagZ    Flags = 1 << 1
	flagS    Flags = 1 << 2
	flagU    Flags = 1 << 3
	flagR    Flags = 0x3FFFFFF << 4 // bits 4..29
	flagCMPT Flags = 0x3 << 30      // bits 30..31

	flagZSUMask  = flagZ | flagS | flagU
	flagCMPTMask = flagCMPT
	flagRMask    = flagR

	cmptInt    Flags = 0 << 30
	cmptFloat  Flags = 1 << 30
	cmptDouble Flags = 2 << 30
)

// Flags is the processor's 32-bit flag/status word type.
type Flags = uint32

// Vector4f is a four-lane single-precision float vector, one of three
// aliased views over the float register file (spec.md §9).
type Vector4f [4]float32

// Operation is the decoded form of one opcode word: a discriminant plus
// a fixed-size operand/data payload shared uniformly across variants
// (spec.md §3, §9).
type Operation struct {
	Op       Opcode
	Size     uint8 // 0..3 encoding byte widths 1/2/4/8
	Operands [3]uint32
	Data     uint32 // increment deltas, end-of-code marker, packed DMA offsets
}

// Processor is one Altair Relaxed VLIW core: its private instruction and
// data SRAM, register files, flags, and the staged state carried between
// bundles (delayed operations, a pending DMA).
type Processor struct {
	ireg [64]uint64  // integer registers, 56..63 conventionally pointer bases
	freg [512]byte   // 128 float32 / 64 float64 / 32 Vector4f aliased lanes

	flags Flags
	pc    uint32 // word-aligned instruction SRAM index

	isram  []byte
	dsram  []byte
	iosram []byte
	cache  []byte

	opcodes    [4]uint32
	operations [4]Operation
	delayed    [4]Operation
	delayedBits uint8

	dma          bool
	dmaOperation Operation

	parent weakMachine // non-owning back-reference, resolved at DMA time

	log *slog.Logger
}

// weakMachine is the narrow surface Processor needs from its owning
// vm.Machine: the first attached physical memory, for DMA (spec.md §4.6,
// §9 "parent back-reference"). Kept as an interface here so the
// processor package never imports vm, avoiding an import cycle while
// still letting vm.Machine hand each Processor a live, non-owning view
// of itself.
type weakMachine interface {
	FirstPhysicalMemory() (PhysicalMemory, bool)
}

// PhysicalMemory is the narrow interface the DMA engine needs against an
// attached device: a borrowed byte buffer of a known size (spec.md §3).
type PhysicalMemory interface {
	Bytes() []byte
	Size() uint64
}

// New creates a Processor with zeroed register files and flags, boot
// code copied into ISRAM at offset 0 (remaining ISRAM zeroed), PC at 0.
// bootCode must be non-empty (spec.md §6, INVALID_CODE).
func New(bootCode []uint32, parent weakMachine, log *slog.Logger) (*Processor, error) {
	if len(bootCode) == 0 {
		return nil, wrapf(ErrInvalidCode, "boot code must not be empty")
	}
	if len(bootCode)*4 > ISRAMSize {
		return nil, wrapf(ErrInvalidCode, "boot code of %d words exceeds ISRAM capacity", len(bootCode))
	}

	p := &Processor{
		isram:  make([]byte, ISRAMSize),
		dsram:  make([]byte, DSRAMSize),
		iosram: make([]byte, IOSRAMSize),
		cache:  make([]byte, CacheSize),
		parent: parent,
		log:    log,
	}
	for i, word := range bootCode {
		putLE32(p.isram[i*4:], word)
	}
	return p, nil
}

// PC returns the current program counter, in 32-bit-word units.
func (p *Processor) PC() uint32 { return p.pc }

// Flags returns the current flag word.
func (p *Processor) Flags() Flags { return p.flags }

// Register returns the value of integer register r (0..63).
func (p *Processor) Register(r int) uint64 { return p.ireg[r] }

// SetRegister sets integer register r (0..63). Exposed for test fixtures,
// not part of the decode/execute/DMA driver contract.
func (p *Processor) SetRegister(r int, v uint64) { p.ireg[r] = v }

// DSRAM returns the processor's data SRAM buffer for inspection or
// pre-seeding (tests, CLI memory commands).
func (p *Processor) DSRAM() []byte { return p.dsram }

// ISRAM returns the processor's instruction SRAM buffer.
func (p *Processor) ISRAM() []byte { return p.isram }

// Cache returns the processor's cache buffer.
func (p *Processor) Cache() []byte { return p.cache }

// IOSRAM returns the processor's I/O SRAM buffer.
func (p *Processor) IOSRAM() []byte { return p.iosram }

// float32At, float64At, and vector4fAt give the three simultaneous views
// over the float register file (spec.md §9): writes through one view are
// visible to all, since they share the same backing bytes.
func (p *Processor) float32At(i uint32) float32 {
	return float32FromBits(getLE32(p.freg[i*4:]))
}

func (p *Processor) setFloat32At(i uint32, v float32) {
	putLE32(p.freg[i*4:], float32Bits(v))
}

func (p *Processor) float64At(i uint32) float64 {
	return float64FromBits(getLE64(p.freg[i*8:]))
}

func (p *Processor) setFloat64At(i uint32, v float64) {
	putLE64(p.freg[i*8:], float64Bits(v))
}

func (p *Processor) vector4fAt(i uint32) Vector4f {
	var v Vector4f
	for lane := 0; lane < 4; lane++ {
		v[lane] = float32FromBits(getLE32(p.freg[i*16+uint32(lane)*4:]))
	}
	return v
}

func (p *Processor) setVector4fBytes(i uint32, data []byte) {
	copy(p.freg[i*16:i*16+16], data)
}

func (p *Processor) vector4fBytes(i uint32) []byte {
	return p.freg[i*16 : i*16+16]
}
