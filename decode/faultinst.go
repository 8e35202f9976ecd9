/*
 * rv64sim - FaultIllegal: the Instruction an undecodable opcode produces.
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
	"rv64sim/fault"
	"rv64sim/register"
)

// FaultIllegal is what Decode returns for a word whose opcode (or whose
// opcode/funct3/funct7 combination) is not defined. It carries no operands:
// an undecodable word reads and writes nothing, so it never participates in
// a data hazard.
type FaultIllegal struct{}

func (FaultIllegal) Mnemonic() string { return "undefined" }
func (FaultIllegal) Disasm() string   { return "undefined" }
func (FaultIllegal) Registers() RegSet { return RegSet{} }

func (FaultIllegal) Execute(reg *register.File) Outcome {
	return illegal(reg.PC, "undefined instruction")
}

func (FaultIllegal) MemFinish(*register.File, memFinisher, fault.MemoryAccess) *fault.Fault {
	return nil
}

func (FaultIllegal) WriteBack(src, dest *register.File) *fault.Fault {
	return fault.NewHalt(dest.PC)
}

func (FaultIllegal) Latency() int { return 1 }

func (FaultIllegal) DataHazard(Instruction) HazardKind { return NoHazard }

func (FaultIllegal) DivRemOK(Instruction) bool { return false }
