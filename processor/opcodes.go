/*
 * Altair Relaxed - Opcode tables for the VLIW bundle decoder.
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

// Opcode identifies the decoded kind of an Operation.
type Opcode uint8

const (
	OpUnknown Opcode = iota

	// BRU - branch unit.
	OpCMP
	OpCMPI
	OpFCMP
	OpFCMPI
	OpDCMP
	OpDCMPI
	OpBNE
	OpBEQ
	OpBL
	OpBLE
	OpBG
	OpBGE
	OpBLS
	OpBLES
	OpBGS
	OpBGES
	OpJMP
	OpCALL
	OpJMPR
	OpCALLR
	OpRET

	// LSU - load/store unit.
	OpLDM
	OpSTM
	OpLDC
	OpSTC
	OpLDMX
	OpSTMX
	OpIN
	OpOUT
	OpOUTI
	OpLDMV
	OpSTMV
	OpLDCV
	OpSTCV
	OpLDMF
	OpSTMF
	OpLDCF
	OpSTCF
	OpLDMD
	OpSTMD
	OpLDCD
	OpSTCD

	// ALU - integer/logic unit.
	OpADD
	OpSUB
	OpMULS
	OpMULU
	OpDIVS
	OpDIVU
	OpAND
	OpOR
	OpXOR
	OpASL
	OpLSL
	OpASR
	OpLSR
	OpADDI
	OpSUBI
	OpMULSI
	OpMULUI
	OpDIVSI
	OpDIVUI
	OpANDI
	OpORI
	OpXORI
	OpASLI
	OpLSLI
	OpASRI
	OpLSRI
	OpADDQ
	OpSUBQ
	OpMULSQ
	OpMULUQ
	OpDIVSQ
	OpDIVUQ
	OpANDQ
	OpORQ
	OpXORQ
	OpASLQ
	OpLSLQ
	OpASRQ
	OpLSRQ
	OpMOVEI
	OpXCHG
	OpNOP

	// AGU - address-generation/DMA unit.
	OpLDDMA
	OpSTDMA
	OpLDDMAR
	OpSTDMAR
	OpDMAIR
	OpWAIT

	// VFPU - reserved, always decodes as a structural no-op.
	OpVFPUNoOp
)

// bruComparators maps a Bcc comparator index (bits 8..11 of a reg-reg
// branch word) to its Opcode. Indices 10..15 are reserved and illegal.
var bruComparators = [16]Opcode{
	OpBNE, OpBEQ, OpBL, OpBLE, OpBG, OpBGE, OpBLS, OpBLES, OpBGS, OpBGES,
	OpUnknown, OpUnknown, OpUnknown, OpUnknown, OpUnknown, OpUnknown,
}

// bruJumpsCalls maps the 2-bit jump/call subtype to its Opcode.
var bruJumpsCalls = [4]Opcode{OpCALL, OpJMP, OpCALLR, OpJMPR}

// aluRegRegRegOpcodes maps the 4-bit category-0 ALU op index to its
// Opcode. Indices 13..15 are reserved and illegal.
var aluRegRegRegOpcodes = [16]Opcode{
	OpADD, OpSUB, OpMULS, OpMULU, OpDIVS, OpDIVU, OpAND, OpOR, OpXOR,
	OpASL, OpLSL, OpASR, OpLSR, OpUnknown, OpUnknown, OpUnknown,
}

// aluRegRegImmOpcodes maps the 4-bit category-1 ALU op index to its
// Opcode.
var aluRegRegImmOpcodes = [16]Opcode{
	OpADDI, OpSUBI, OpMULSI, OpMULUI, OpDIVSI, OpDIVUI, OpANDI, OpORI,
	OpXORI, OpASLI, OpLSLI, OpASRI, OpLSRI, OpUnknown, OpUnknown, OpUnknown,
}

// aluRegImmOpcodes maps the 4-bit category-2 ALU op index to its Opcode.
var aluRegImmOpcodes = [16]Opcode{
	OpADDQ, OpSUBQ, OpMULSQ, OpMULUQ, OpDIVSQ, OpDIVUQ, OpANDQ, OpORQ,
	OpXORQ, OpASLQ, OpLSLQ, OpASRQ, OpLSRQ, OpUnknown, OpUnknown, OpUnknown,
}

// sizemask masks an ALU/compare result to the low 1/2/4/8 bytes
// selected by an Operation's Size field (0..3).
var sizemask = [4]uint64{
	0x00000000000000FF,
	0x000000000000FFFF,
	0x00000000FFFFFFFF,
	0xFFFFFFFFFFFFFFFF,
}

// Bias added to a small source-field register index to reach the
// conventional pointer-base registers (ireg[56..63], spec.md §3).
const (
	vectorRegBias = 56
	floatRegBias  = 60
	dmaSRAMBias   = 60
	dmaRAMBias    = 58
)

// extendSign sign-extends the low bits-wide field of value to a 32-bit
// signed integer, per spec.md §3. Only a value strictly greater than
// 1<<(bits-1) is treated as negative; exactly 1<<(bits-1) stays positive.
func extendSign(value uint32, bits uint32) int32 {
	if value > (1 << (bits - 1)) {
		return int32((uint32(0xFFFFFFFF) << bits) | value)
	}
	return int32(value)
}
