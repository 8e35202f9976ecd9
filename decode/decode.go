/*
 * rv64sim - RV64IM decoder: pure function from a 32-bit word to an Instruction.
 *
 * Copyright (c) 2024
 *
 * Permission is hereby granted, free of charge, to any person obtaining a
 * copy of this software and associated documentation files (the "Software"),
 * to deal in the Software without restriction, including without limitation
 * the rights to use, copy, modify, merge, publish, distribute, sublicense,
 * and/or sell copies of the Software, and to permit persons to whom the
 * Software is furnished to do so, subject to the following conditions:
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

// Package decode implements the RV64IM instruction decoder and the
// per-variant execute/hazard/latency semantics. Decode is total: every
// 32-bit word produces an Instruction, invalid opcodes become FaultIllegal.
package decode

import (
	"rv64sim/fault"
	"rv64sim/register"
)

// Opcode values, low 7 bits of the instruction word.
const (
	OpRArith   = 0x33 // R-type, 64-bit arithmetic
	OpRArithW  = 0x3B // R-type, word-sized arithmetic
	OpLoad     = 0x03 // I-type, load
	OpIArith   = 0x13 // I-type, 64-bit immediate arithmetic (incl. shift-imm)
	OpIArithW  = 0x1B // I-type, word-sized immediate arithmetic (incl. shift-imm)
	OpJalr     = 0x67 // I-type, jump and link register
	OpEcall    = 0x73 // I-type, transfer control (ecall)
	OpStore    = 0x23 // S-type, store
	OpBranch   = 0x63 // SB-type, conditional branch
	OpAuipc    = 0x17 // U-type, add upper immediate to PC
	OpLui      = 0x37 // U-type, load upper immediate
	OpJal      = 0x6F // UJ-type, jump and link
)

// OutcomeKind tags the sum type execute() returns, replacing the original's
// throw/catch control flow (Design Note "Exception-as-control-flow").
type OutcomeKind int

const (
	Normal OutcomeKind = iota
	MemRequest
	JumpTaken
	SyscallRaised
	IllegalRaised
)

// Outcome is what Execute returns. Normal means the instruction already
// wrote its own rd (or touched nothing, for stores/branches that fall
// through); the other kinds carry the in-band signal or fault that resulted.
type Outcome struct {
	Kind  OutcomeKind
	Mem   fault.MemoryAccess
	Jump  fault.ControlFlowJump
	Fault *fault.Fault
}

func normal() Outcome { return Outcome{Kind: Normal} }

func memRequest(req fault.MemoryAccess) Outcome {
	return Outcome{Kind: MemRequest, Mem: req}
}

func jump(target uint64) Outcome {
	return Outcome{Kind: JumpTaken, Jump: fault.ControlFlowJump{TargetAddr: target}}
}

func syscall(pc uint64) Outcome {
	return Outcome{Kind: SyscallRaised, Fault: fault.NewSyscall(pc)}
}

func illegal(pc uint64, reason string) Outcome {
	return Outcome{Kind: IllegalRaised, Fault: fault.Illegal(pc, reason)}
}

// HazardKind is the data-hazard relationship between two back-to-back
// instructions, as observed by data_hazard on the architectural registers
// each variant reads and writes. The zero value is NoHazard.
type HazardKind int

const (
	NoHazard HazardKind = iota
	RAW
	WAR
	WAW
)

func (h HazardKind) String() string {
	switch h {
	case RAW:
		return "RAW"
	case WAR:
		return "WAR"
	case WAW:
		return "WAW"
	default:
		return "none"
	}
}

// RegSet is the static operand-register set an instruction variant reads
// and writes, used only for hazard detection. x0 is never reported in
// Writes: a write to x0 is a write to nothing (Design Note (b)).
type RegSet struct {
	Reads  []uint8
	Writes []uint8
}

func hazardBetween(this, next RegSet) HazardKind {
	raw := intersects(this.Writes, next.Reads)
	war := intersects(this.Reads, next.Writes)
	waw := intersects(this.Writes, next.Writes)
	switch {
	case raw:
		return RAW
	case war:
		return WAR
	case waw:
		return WAW
	default:
		return NoHazard
	}
}

func intersects(a, b []uint8) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func writeSet(rd uint8) []uint8 {
	if rd == 0 {
		return nil
	}
	return []uint8{rd}
}

// Instruction is the polymorphic decoded value the decoder produces. It is
// owned by exactly one pipeline stage at a time and is a plain value
// (variants are structs, not pointers to a class hierarchy) — transferring
// ownership between stages is just assignment.
type Instruction interface {
	// Disasm renders the RISC-V ABI-register disassembly of the instruction.
	// It takes no PC: branch and jump offsets are printed relative, and a
	// caller that wants the absolute target adds it itself.
	Disasm() string
	// Mnemonic is the bare instruction name ("add", "lw", "undefined", ...).
	Mnemonic() string
	// Registers returns the static operand-register set used for hazard
	// detection.
	Registers() RegSet
	// Execute computes the instruction's effect. For variants that write a
	// register normally, the write already happened to reg; the in-band
	// signals (MemRequest/JumpTaken/SyscallRaised) are returned, not thrown.
	Execute(reg *register.File) Outcome
	// MemFinish performs the memory-stage half of a two-phase load/store:
	// loads write reg[rd], stores read reg[rs2] and write to mem.
	MemFinish(reg *register.File, mem memFinisher, req fault.MemoryAccess) *fault.Fault
	// WriteBack copies the architectural side effect from the latched
	// snapshot src into the committed register file dest. Fault variants
	// return a Halt fault here, stopping whichever engine calls it.
	WriteBack(src, dest *register.File) *fault.Fault
	// Latency is exec_cycle(): the instruction's intrinsic latency in
	// cycles, before any engine-level bookkeeping is added.
	Latency() int
	// DataHazard classifies the hazard this instruction has against a
	// subsequent one, per the static register sets of both.
	DataHazard(next Instruction) HazardKind
	// DivRemOK reports whether (this, next) are a fusable (div,rem) or
	// (divu,remu) pair the multi-cycle engine may retire in one dispatch.
	DivRemOK(next Instruction) bool
}

// memFinisher is the subset of *memory.Memory MemFinish needs. Declared
// here (rather than importing package memory) to keep decode's only
// dependency on the memory package limited to this interface, avoiding an
// import cycle risk if memory ever needs decode for diagnostics.
type memFinisher interface {
	Load(addr uint64, width uint8, signExtend bool) (uint64, *fault.Fault)
	Store(addr uint64, width uint8, value uint64) *fault.Fault
}

// Decode is total: every 32-bit word produces an Instruction. Invalid
// opcodes decode to FaultIllegal.
func Decode(inst uint32) Instruction {
	switch inst & 0x7F {
	case OpRArith, OpRArithW:
		return newRInst(inst)
	case OpLoad, OpIArith, OpIArithW, OpJalr, OpEcall:
		return newIInst(inst)
	case OpStore:
		return newSInst(inst)
	case OpBranch:
		return newSBInst(inst)
	case OpAuipc, OpLui:
		return newUInst(inst)
	case OpJal:
		return newUJInst(inst)
	default:
		return FaultIllegal{}
	}
}

func getOpcode(inst uint32) uint8  { return uint8(inst & 0x7F) }
func getRd(inst uint32) uint8      { return uint8((inst >> 7) & 0x1F) }
func getFunct3(inst uint32) uint8  { return uint8((inst >> 12) & 0x7) }
func getRs1(inst uint32) uint8     { return uint8((inst >> 15) & 0x1F) }
func getRs2(inst uint32) uint8     { return uint8((inst >> 20) & 0x1F) }
func getFunct7(inst uint32) uint8  { return uint8(inst >> 25) }

func getIImm(inst uint32) int64 {
	return (int64(inst) << 32) >> 52
}

func getSImm(inst uint32) int64 {
	result := (int64(inst) << 32) >> 57
	return (result << 5) | int64((inst&0b111110000000)>>7)
}

func getSBImm(inst uint32) int64 {
	var result int64
	if inst&0x80000000 != 0 {
		result = ^int64(0xfff)
	}
	return result | int64((inst&0x7E000000)>>20) | int64((inst&0x00000F00)>>7) | int64((inst&0x00000080)<<4)
}

func getUImm(inst uint32) int64 {
	return (int64(inst&0xfffff000) << 32) >> 32
}

func getUJImm(inst uint32) int64 {
	var result int64
	if inst&0x80000000 != 0 {
		result = ^int64(0xfffff)
	}
	return result | int64((inst&0x7fe00000)>>20) | int64((inst&0x00100000)>>9) | int64(inst&0x0000ff000)
}
