/*
 * rv64sim - UJ-type instruction: jal.
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

// UJInst is a decoded UJ-type jump-and-link instruction (jal).
type UJInst struct {
	Rd  uint8
	Imm int64
}

func newUJInst(inst uint32) Instruction {
	return UJInst{Rd: getRd(inst), Imm: getUJImm(inst)}
}

func (i UJInst) Mnemonic() string { return "jal" }

func (i UJInst) Disasm() string {
	return fmt.Sprintf("jal %s, %d", register.ABINames[i.Rd], i.Imm)
}

func (i UJInst) Registers() RegSet {
	return RegSet{Writes: writeSet(i.Rd)}
}

func (i UJInst) Execute(reg *register.File) Outcome {
	target := reg.PC + uint64(i.Imm)
	reg.Set(i.Rd, reg.PC+4)
	return jump(target)
}

func (i UJInst) MemFinish(*register.File, memFinisher, fault.MemoryAccess) *fault.Fault { return nil }

func (i UJInst) WriteBack(src, dest *register.File) *fault.Fault {
	dest.Set(i.Rd, src.Get(i.Rd))
	return nil
}

func (i UJInst) Latency() int { return 1 }

func (i UJInst) DataHazard(next Instruction) HazardKind {
	return hazardBetween(i.Registers(), next.Registers())
}

func (i UJInst) DivRemOK(Instruction) bool { return false }
