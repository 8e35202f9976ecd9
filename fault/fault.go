/*
 * rv64sim - Fault channel: control-transfer conditions raised mid-execution.
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

// Package fault defines the closed set of control-transfer conditions a
// decoded instruction can raise: five true faults that carry a Kind an
// engine can switch on, plus two in-band signals (MemoryAccess, ControlFlowJump)
// that are not errors at all.
package fault

import "fmt"

// Kind is the closed set of fault conditions. It intentionally excludes the
// in-band signals MemoryAccess and ControlFlowJump, which are not faults.
type Kind int

const (
	IllegalInstruction Kind = iota
	AccessViolation
	Misalign
	Halt
	Syscall
)

func (k Kind) String() string {
	switch k {
	case IllegalInstruction:
		return "illegal instruction"
	case AccessViolation:
		return "access violation"
	case Misalign:
		return "misaligned access"
	case Halt:
		return "halt"
	case Syscall:
		return "syscall"
	default:
		return "unknown fault"
	}
}

// Fault is a typed error carrying the faulting PC and, for AccessViolation,
// the offending address. Engines type-switch on Kind rather than parsing
// error strings.
type Fault struct {
	Kind   Kind
	PC     uint64
	Addr   uint64
	Reason string
}

func (f *Fault) Error() string {
	if f.Kind == AccessViolation {
		return fmt.Sprintf("%s at pc=0x%x addr=0x%x: %s", f.Kind, f.PC, f.Addr, f.Reason)
	}
	return fmt.Sprintf("%s at pc=0x%x: %s", f.Kind, f.PC, f.Reason)
}

func Illegal(pc uint64, reason string) *Fault {
	return &Fault{Kind: IllegalInstruction, PC: pc, Reason: reason}
}

func AccessVio(pc, addr uint64, reason string) *Fault {
	return &Fault{Kind: AccessViolation, PC: pc, Addr: addr, Reason: reason}
}

func MisalignedAccess(pc, addr uint64, reason string) *Fault {
	return &Fault{Kind: Misalign, PC: pc, Addr: addr, Reason: reason}
}

func NewHalt(pc uint64) *Fault {
	return &Fault{Kind: Halt, PC: pc, Reason: "processor halted"}
}

func NewSyscall(pc uint64) *Fault {
	return &Fault{Kind: Syscall, PC: pc, Reason: "ecall"}
}

// Direction is the access direction of a MemoryAccess signal.
type Direction int

const (
	Read Direction = iota
	Write
)

func (d Direction) String() string {
	if d == Write {
		return "write"
	}
	return "read"
}

// MemoryAccess is the in-band signal an instruction's execute phase raises
// when it needs to touch memory. It is produced by execute and consumed by
// the memory stage/finish phase of an engine; it is not an error.
type MemoryAccess struct {
	TargetAddr uint64
	Width      uint8 // one of 1, 2, 4, 8
	SignExtend bool
	Dir        Direction
}

// ControlFlowJump is the in-band signal an instruction's execute phase raises
// when it redirects the program counter (taken branch, jal, jalr).
type ControlFlowJump struct {
	TargetAddr uint64
}
