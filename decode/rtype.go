/*
 * rv64sim - R-type (register-register) instructions.
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

package decode

import (
	"fmt"

	"rv64sim/fault"
	"rv64sim/register"
)

type rOp struct {
	name   string
	cycles int
	fn     func(rs1, rs2 uint64) uint64
}

// rTable64 covers opcode 0x33: funct3, then funct7.
var rTable64 = map[uint8]map[uint8]rOp{
	0x0: {
		0x00: {"add", 1, func(a, b uint64) uint64 { return a + b }},
		0x20: {"sub", 1, func(a, b uint64) uint64 { return a - b }},
		0x01: {"mul", 2, func(a, b uint64) uint64 { return a * b }},
	},
	0x1: {
		0x00: {"sll", 1, func(a, b uint64) uint64 { return a << (b & 0x3f) }},
		0x01: {"mulh", 2, func(a, b uint64) uint64 { return uint64(mulhSigned(int64(a), int64(b))) }},
	},
	0x2: {
		0x00: {"slt", 1, func(a, b uint64) uint64 { return boolU64(int64(a) < int64(b)) }},
		0x01: {"mulhsu", 2, func(a, b uint64) uint64 { return uint64(mulhSignedUnsigned(int64(a), b)) }},
	},
	0x3: {
		0x00: {"sltu", 1, func(a, b uint64) uint64 { return boolU64(a < b) }},
		0x01: {"mulhu", 2, func(a, b uint64) uint64 { return mulhUnsigned(a, b) }},
	},
	0x4: {
		0x00: {"xor", 1, func(a, b uint64) uint64 { return a ^ b }},
		0x01: {"div", 40, func(a, b uint64) uint64 { return uint64(divS64(int64(a), int64(b))) }},
	},
	0x5: {
		0x00: {"srl", 1, func(a, b uint64) uint64 { return a >> (b & 0x3f) }},
		0x20: {"sra", 1, func(a, b uint64) uint64 { return uint64(int64(a) >> (b & 0x3f)) }},
		0x01: {"divu", 40, func(a, b uint64) uint64 { return divU64(a, b) }},
	},
	0x6: {
		0x00: {"or", 1, func(a, b uint64) uint64 { return a | b }},
		0x01: {"rem", 40, func(a, b uint64) uint64 { return uint64(remS64(int64(a), int64(b))) }},
	},
	0x7: {
		0x00: {"and", 1, func(a, b uint64) uint64 { return a & b }},
		0x01: {"remu", 40, func(a, b uint64) uint64 { return remU64(a, b) }},
	},
}

// rTableW covers opcode 0x3B (word-sized arithmetic): results are computed on
// the low 32 bits of each operand, then sign-extended back to 64 bits.
var rTableW = map[uint8]map[uint8]rOp{
	0x0: {
		0x00: {"addw", 1, func(a, b uint64) uint64 { return signExtend32(uint32(a) + uint32(b)) }},
		0x20: {"subw", 1, func(a, b uint64) uint64 { return signExtend32(uint32(a) - uint32(b)) }},
		0x01: {"mulw", 1, func(a, b uint64) uint64 { return signExtend32(uint32(a) * uint32(b)) }},
	},
	0x1: {
		0x00: {"sllw", 1, func(a, b uint64) uint64 { return signExtend32(uint32(a) << (b & 0x1f)) }},
	},
	0x4: {
		0x01: {"divw", 40, func(a, b uint64) uint64 { return signExtend32(uint32(divS32(int32(a), int32(b)))) }},
	},
	0x5: {
		0x00: {"srlw", 1, func(a, b uint64) uint64 { return signExtend32(uint32(a) >> (b & 0x1f)) }},
		0x20: {"sraw", 1, func(a, b uint64) uint64 { return signExtend32(uint32(int32(a) >> (b & 0x1f))) }},
		0x01: {"divuw", 40, func(a, b uint64) uint64 { return signExtend32(divU32(uint32(a), uint32(b))) }},
	},
	0x6: {
		0x01: {"remw", 40, func(a, b uint64) uint64 { return signExtend32(uint32(remS32(int32(a), int32(b)))) }},
	},
	0x7: {
		0x01: {"remuw", 40, func(a, b uint64) uint64 { return signExtend32(remU32(uint32(a), uint32(b))) }},
	},
}

var divRemPair = map[string]string{
	"div": "rem", "divu": "remu", "divw": "remw", "divuw": "remuw",
}

func boolU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func signExtend32(v uint32) uint64 { return uint64(int64(int32(v))) }

func divS64(a, b int64) int64 {
	if b == 0 {
		return -1
	}
	if a == -1<<63 && b == -1 {
		return a
	}
	return a / b
}

func remS64(a, b int64) int64 {
	if b == 0 {
		return a
	}
	if a == -1<<63 && b == -1 {
		return 0
	}
	return a % b
}

func divU64(a, b uint64) uint64 {
	if b == 0 {
		return ^uint64(0)
	}
	return a / b
}

func remU64(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	return a % b
}

func divS32(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	if a == -1<<31 && b == -1 {
		return a
	}
	return a / b
}

func remS32(a, b int32) int32 {
	if b == 0 {
		return a
	}
	if a == -1<<31 && b == -1 {
		return 0
	}
	return a % b
}

func divU32(a, b uint32) uint32 {
	if b == 0 {
		return ^uint32(0)
	}
	return a / b
}

func remU32(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}

// RInst is a decoded R-type (register-register) instruction: add, sub, the
// logical/shift/compare family, and the M-extension multiply/divide/remainder
// ops, in both 64-bit and word (W-suffixed) forms.
type RInst struct {
	Rs1, Rs2, Rd uint8
	op           rOp
}

func newRInst(inst uint32) Instruction {
	funct3 := getFunct3(inst)
	funct7 := getFunct7(inst)
	table := rTable64
	if getOpcode(inst) == OpRArithW {
		table = rTableW
	}
	sub, ok := table[funct3]
	if !ok {
		return FaultIllegal{}
	}
	op, ok := sub[funct7]
	if !ok {
		return FaultIllegal{}
	}
	return RInst{Rs1: getRs1(inst), Rs2: getRs2(inst), Rd: getRd(inst), op: op}
}

func (i RInst) Mnemonic() string { return i.op.name }

func (i RInst) Disasm() string {
	return fmt.Sprintf("%s %s, %s, %s", i.op.name, register.ABINames[i.Rd], register.ABINames[i.Rs1], register.ABINames[i.Rs2])
}

func (i RInst) Registers() RegSet {
	return RegSet{Reads: []uint8{i.Rs1, i.Rs2}, Writes: writeSet(i.Rd)}
}

func (i RInst) Execute(reg *register.File) Outcome {
	reg.Set(i.Rd, i.op.fn(reg.Get(i.Rs1), reg.Get(i.Rs2)))
	return normal()
}

func (i RInst) MemFinish(*register.File, memFinisher, fault.MemoryAccess) *fault.Fault {
	return nil
}

func (i RInst) WriteBack(src, dest *register.File) *fault.Fault {
	dest.Set(i.Rd, src.Get(i.Rd))
	return nil
}

func (i RInst) Latency() int { return i.op.cycles }

func (i RInst) DataHazard(next Instruction) HazardKind {
	return hazardBetween(i.Registers(), next.Registers())
}

func (i RInst) DivRemOK(next Instruction) bool {
	nr, ok := next.(RInst)
	if !ok {
		return false
	}
	want, isDiv := divRemPair[i.op.name]
	if !isDiv {
		return false
	}
	if nr.op.name != want || i.Rs1 != nr.Rs1 || i.Rs2 != nr.Rs2 {
		return false
	}
	// The fused divider produces quotient and remainder from one operation,
	// so the two results must land in genuinely independent registers: x0 is
	// a discard, not a destination, and neither rd may alias a source.
	if i.Rd == 0 || nr.Rd == 0 || i.Rd == nr.Rd {
		return false
	}
	if i.Rd == i.Rs1 || i.Rd == i.Rs2 || nr.Rd == nr.Rs1 || nr.Rd == nr.Rs2 {
		return false
	}
	return true
}
