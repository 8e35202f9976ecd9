/*
 * rv64sim - SB-type (conditional branch) instructions.
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

type sbOp struct {
	name string
	cond func(a, b uint64) bool
}

var sbTable = map[uint8]sbOp{
	0x0: {"beq", func(a, b uint64) bool { return a == b }},
	0x1: {"bne", func(a, b uint64) bool { return a != b }},
	0x4: {"blt", func(a, b uint64) bool { return int64(a) < int64(b) }},
	0x5: {"bge", func(a, b uint64) bool { return int64(a) >= int64(b) }},
	0x6: {"bltu", func(a, b uint64) bool { return a < b }},
	0x7: {"bgeu", func(a, b uint64) bool { return a >= b }},
}

// SBInst is a decoded SB-type conditional branch. Its exported type lets
// the cpu package distinguish branches from jumps when feeding a branch
// predictor, without a dedicated IsBranch flag on the Instruction interface.
type SBInst struct {
	Rs1, Rs2 uint8
	Imm      int64
	op       sbOp
}

func newSBInst(inst uint32) Instruction {
	op, ok := sbTable[getFunct3(inst)]
	if !ok {
		return FaultIllegal{}
	}
	return SBInst{Rs1: getRs1(inst), Rs2: getRs2(inst), Imm: getSBImm(inst), op: op}
}

func (i SBInst) Mnemonic() string { return i.op.name }

func (i SBInst) Disasm() string {
	return fmt.Sprintf("%s %s, %s, %d", i.op.name, register.ABINames[i.Rs1], register.ABINames[i.Rs2], i.Imm)
}

func (i SBInst) Registers() RegSet {
	return RegSet{Reads: []uint8{i.Rs1, i.Rs2}}
}

// Taken reports the architectural branch outcome given the current registers.
func (i SBInst) Taken(reg *register.File) bool {
	return i.op.cond(reg.Get(i.Rs1), reg.Get(i.Rs2))
}

// Target returns the branch's absolute target given the PC it executes at.
func (i SBInst) Target(pc uint64) uint64 {
	return uint64(int64(pc) + i.Imm)
}

func (i SBInst) Execute(reg *register.File) Outcome {
	if i.Taken(reg) {
		return jump(i.Target(reg.PC))
	}
	return normal()
}

func (i SBInst) MemFinish(*register.File, memFinisher, fault.MemoryAccess) *fault.Fault { return nil }

func (i SBInst) WriteBack(src, dest *register.File) *fault.Fault { return nil }

func (i SBInst) Latency() int { return 1 }

func (i SBInst) DataHazard(next Instruction) HazardKind {
	return hazardBetween(i.Registers(), next.Registers())
}

func (i SBInst) DivRemOK(Instruction) bool { return false }
