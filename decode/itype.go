/*
 * rv64sim - I-type instructions: loads, immediate arithmetic, jalr, ecall.
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

type iOp struct {
	name   string
	cycles int
	fn     func(a uint64, imm int64) uint64
}

// iTable64 covers opcode 0x13's non-shift funct3 values.
var iTable64 = map[uint8]iOp{
	0x0: {"addi", 1, func(a uint64, imm int64) uint64 { return uint64(int64(a) + imm) }},
	0x2: {"slti", 1, func(a uint64, imm int64) uint64 { return boolU64(int64(a) < imm) }},
	0x3: {"sltiu", 1, func(a uint64, imm int64) uint64 { return boolU64(a < uint64(imm)) }},
	0x4: {"xori", 1, func(a uint64, imm int64) uint64 { return a ^ uint64(imm) }},
	0x6: {"ori", 1, func(a uint64, imm int64) uint64 { return a | uint64(imm) }},
	0x7: {"andi", 1, func(a uint64, imm int64) uint64 { return a & uint64(imm) }},
}

// iTableW covers opcode 0x1B's non-shift funct3 values (only addiw exists).
var iTableW = map[uint8]iOp{
	0x0: {"addiw", 1, func(a uint64, imm int64) uint64 { return signExtend32(uint32(a) + uint32(imm)) }},
}

func loadWidth(funct3 uint8) (width uint8, signExt bool, name string, ok bool) {
	switch funct3 {
	case 0x0:
		return 1, true, "lb", true
	case 0x1:
		return 2, true, "lh", true
	case 0x2:
		return 4, true, "lw", true
	case 0x3:
		return 8, false, "ld", true
	case 0x4:
		return 1, false, "lbu", true
	case 0x5:
		return 2, false, "lhu", true
	case 0x6:
		return 4, false, "lwu", true
	default:
		return 0, false, "", false
	}
}

// IInst is a decoded I-type instruction: a load, a non-shift/shift immediate
// arithmetic op (64-bit or W-suffixed), jalr, or ecall.
type IInst struct {
	Rs1, Rd     uint8
	Imm         int64
	name        string
	cycles      int
	width       uint8 // nonzero only for loads
	signExt     bool
	isJalr      bool
	isEcall     bool
	fn          func(a uint64, imm int64) uint64
}

func newIInst(inst uint32) Instruction {
	opcode := getOpcode(inst)
	funct3 := getFunct3(inst)
	rs1, rd := getRs1(inst), getRd(inst)

	switch opcode {
	case OpLoad:
		width, signExt, name, ok := loadWidth(funct3)
		if !ok {
			return FaultIllegal{}
		}
		return IInst{Rs1: rs1, Rd: rd, Imm: getIImm(inst), name: name, cycles: 1, width: width, signExt: signExt}

	case OpIArith, OpIArithW:
		if funct3 == 1 || funct3 == 5 {
			return newShiftInst(inst, opcode, funct3, rs1, rd)
		}
		table := iTable64
		if opcode == OpIArithW {
			table = iTableW
		}
		op, ok := table[funct3]
		if !ok {
			return FaultIllegal{}
		}
		return IInst{Rs1: rs1, Rd: rd, Imm: getIImm(inst), name: op.name, cycles: op.cycles, fn: op.fn}

	case OpJalr:
		if funct3 != 0 {
			return FaultIllegal{}
		}
		return IInst{Rs1: rs1, Rd: rd, Imm: getIImm(inst), name: "jalr", cycles: 1, isJalr: true}

	case OpEcall:
		if funct3 != 0 {
			return FaultIllegal{}
		}
		return IInst{Rs1: rs1, Rd: rd, Imm: getIImm(inst), name: "ecall", cycles: 1, isEcall: true}

	default:
		return FaultIllegal{}
	}
}

// newShiftInst re-parses the shift-immediate forms at 0x13/0x1B funct3 in
// {1,5}: funct7 is recovered masked by 0x7E (0xFE truncated to the 7-bit
// field) to admit a 6-bit shamt on 64-bit shifts, and the immediate is
// truncated to the shift-width's shamt field.
func newShiftInst(inst uint32, opcode, funct3 uint8, rs1, rd uint8) Instruction {
	funct7 := getFunct7(inst) & 0x7E
	isWord := opcode == OpIArithW
	var shamtMask uint32 = 0x3f
	if isWord {
		shamtMask = 0x1f
	}
	shamt := uint64((inst >> 20) & shamtMask)

	var name string
	var fn func(a, s uint64) uint64
	switch {
	case funct3 == 1 && funct7 == 0x00:
		name, fn = "slli", func(a, s uint64) uint64 { return a << s }
	case funct3 == 5 && funct7 == 0x00:
		name, fn = "srli", func(a, s uint64) uint64 { return a >> s }
	case funct3 == 5 && funct7 == 0x20:
		name, fn = "srai", func(a, s uint64) uint64 { return uint64(int64(a) >> s) }
	default:
		return FaultIllegal{}
	}
	if isWord {
		switch name {
		case "slli":
			name, fn = "slliw", func(a, s uint64) uint64 { return signExtend32(uint32(a) << s) }
		case "srli":
			name, fn = "srliw", func(a, s uint64) uint64 { return signExtend32(uint32(a) >> s) }
		case "srai":
			name, fn = "sraiw", func(a, s uint64) uint64 { return signExtend32(uint32(int32(uint32(a)) >> s)) }
		}
	}
	return IInst{Rs1: rs1, Rd: rd, Imm: int64(shamt), name: name, cycles: 1,
		fn: func(a uint64, imm int64) uint64 { return fn(a, uint64(imm)) }}
}

func (i IInst) Mnemonic() string { return i.name }

func (i IInst) Disasm() string {
	switch {
	case i.width > 0:
		return fmt.Sprintf("%s %s, %d(%s)", i.name, register.ABINames[i.Rd], i.Imm, register.ABINames[i.Rs1])
	case i.isEcall:
		return "ecall"
	default:
		return fmt.Sprintf("%s %s, %s, %d", i.name, register.ABINames[i.Rd], register.ABINames[i.Rs1], i.Imm)
	}
}

func (i IInst) Registers() RegSet {
	if i.isEcall {
		return RegSet{}
	}
	return RegSet{Reads: []uint8{i.Rs1}, Writes: writeSet(i.Rd)}
}

func (i IInst) Execute(reg *register.File) Outcome {
	switch {
	case i.isEcall:
		return syscall(reg.PC)
	case i.isJalr:
		target := uint64(int64(reg.Get(i.Rs1))+i.Imm) &^ 1
		reg.Set(i.Rd, reg.PC+4)
		return jump(target)
	case i.width > 0:
		addr := uint64(int64(reg.Get(i.Rs1)) + i.Imm)
		return memRequest(fault.MemoryAccess{TargetAddr: addr, Width: i.width, SignExtend: i.signExt, Dir: fault.Read})
	default:
		reg.Set(i.Rd, i.fn(reg.Get(i.Rs1), i.Imm))
		return normal()
	}
}

func (i IInst) MemFinish(reg *register.File, mem memFinisher, req fault.MemoryAccess) *fault.Fault {
	if i.width == 0 {
		return nil
	}
	v, err := mem.Load(req.TargetAddr, req.Width, req.SignExtend)
	if err != nil {
		return err
	}
	reg.Set(i.Rd, v)
	return nil
}

func (i IInst) WriteBack(src, dest *register.File) *fault.Fault {
	dest.Set(i.Rd, src.Get(i.Rd))
	return nil
}

func (i IInst) Latency() int { return i.cycles }

func (i IInst) DataHazard(next Instruction) HazardKind {
	return hazardBetween(i.Registers(), next.Registers())
}

func (i IInst) DivRemOK(Instruction) bool { return false }
