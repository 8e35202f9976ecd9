/*
 * rv64sim - S-type (store) instructions.
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

func storeWidth(funct3 uint8) (width uint8, name string, ok bool) {
	switch funct3 {
	case 0x0:
		return 1, "sb", true
	case 0x1:
		return 2, "sh", true
	case 0x2:
		return 4, "sw", true
	case 0x3:
		return 8, "sd", true
	default:
		return 0, "", false
	}
}

// SInst is a decoded S-type store instruction.
type SInst struct {
	Rs1, Rs2 uint8
	Imm      int64
	name     string
	width    uint8
}

func newSInst(inst uint32) Instruction {
	width, name, ok := storeWidth(getFunct3(inst))
	if !ok {
		return FaultIllegal{}
	}
	return SInst{Rs1: getRs1(inst), Rs2: getRs2(inst), Imm: getSImm(inst), name: name, width: width}
}

func (i SInst) Mnemonic() string { return i.name }

func (i SInst) Disasm() string {
	return fmt.Sprintf("%s %s, %d(%s)", i.name, register.ABINames[i.Rs2], i.Imm, register.ABINames[i.Rs1])
}

func (i SInst) Registers() RegSet {
	return RegSet{Reads: []uint8{i.Rs1, i.Rs2}}
}

func (i SInst) Execute(reg *register.File) Outcome {
	addr := uint64(int64(reg.Get(i.Rs1)) + i.Imm)
	return memRequest(fault.MemoryAccess{TargetAddr: addr, Width: i.width, Dir: fault.Write})
}

func (i SInst) MemFinish(reg *register.File, mem memFinisher, req fault.MemoryAccess) *fault.Fault {
	return mem.Store(req.TargetAddr, req.Width, reg.Get(i.Rs2))
}

func (i SInst) WriteBack(src, dest *register.File) *fault.Fault { return nil }

func (i SInst) Latency() int { return 1 }

func (i SInst) DataHazard(next Instruction) HazardKind {
	return hazardBetween(i.Registers(), next.Registers())
}

func (i SInst) DivRemOK(Instruction) bool { return false }
