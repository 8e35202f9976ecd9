/*
 * rv64sim - U-type instructions: lui, auipc.
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

// UInst is a decoded U-type instruction: lui or auipc.
type UInst struct {
	Rd      uint8
	Imm     int64
	isAuipc bool
}

func newUInst(inst uint32) Instruction {
	return UInst{Rd: getRd(inst), Imm: getUImm(inst), isAuipc: getOpcode(inst) == OpAuipc}
}

func (i UInst) Mnemonic() string {
	if i.isAuipc {
		return "auipc"
	}
	return "lui"
}

func (i UInst) Disasm() string {
	return fmt.Sprintf("%s %s, 0x%x", i.Mnemonic(), register.ABINames[i.Rd], uint64(i.Imm)>>12)
}

func (i UInst) Registers() RegSet {
	return RegSet{Writes: writeSet(i.Rd)}
}

func (i UInst) Execute(reg *register.File) Outcome {
	if i.isAuipc {
		reg.Set(i.Rd, reg.PC+uint64(i.Imm))
	} else {
		reg.Set(i.Rd, uint64(i.Imm))
	}
	return normal()
}

func (i UInst) MemFinish(*register.File, memFinisher, fault.MemoryAccess) *fault.Fault { return nil }

func (i UInst) WriteBack(src, dest *register.File) *fault.Fault {
	dest.Set(i.Rd, src.Get(i.Rd))
	return nil
}

func (i UInst) Latency() int { return 1 }

func (i UInst) DataHazard(next Instruction) HazardKind {
	return hazardBetween(i.Registers(), next.Registers())
}

func (i UInst) DivRemOK(Instruction) bool { return false }
