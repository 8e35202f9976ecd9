/*
 * rv64sim - Single-cycle execution engine.
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

package cpu

import (
	"log/slog"

	"rv64sim/decode"
	"rv64sim/fault"
	"rv64sim/memory"
	"rv64sim/register"
)

// SingleCycle retires exactly one instruction per Step call: fetch, decode,
// execute, memory, and write-back all happen within the same call, the way
// RvSimpleCpu::step does it.
type SingleCycle struct {
	Reg register.File
	Mem *memory.Memory

	breakpoints
	log *slog.Logger
}

// NewSingleCycle builds a single-cycle engine over mem. PC starts at zero;
// callers set Reg.PC (and pre-populate Mem) before the first Step/Exec.
func NewSingleCycle(mem *memory.Memory, opts ...Option) *SingleCycle {
	cfg := newEngineConfig(opts)
	return &SingleCycle{Mem: mem, breakpoints: newBreakpoints(), log: cfg.log}
}

// Step retires one instruction. A nil return means the instruction
// committed normally; a non-nil *fault.Fault with Kind==fault.Halt means the
// instruction committed and the engine should stop; any other fault means
// the instruction did not commit.
func (c *SingleCycle) Step() *fault.Fault {
	word, ferr := c.Mem.Fetch(c.Reg.PC)
	if ferr != nil {
		return ferr
	}
	inst := decode.Decode(word)
	outcome := inst.Execute(&c.Reg)

	switch outcome.Kind {
	case decode.Normal:
		c.Reg.PC += 4

	case decode.MemRequest:
		if err := inst.MemFinish(&c.Reg, c.Mem, outcome.Mem); err != nil {
			return err
		}
		c.Reg.PC += 4

	case decode.JumpTaken:
		c.Reg.PC = outcome.Jump.TargetAddr

	case decode.SyscallRaised:
		pc := c.Reg.PC
		c.Reg.PC += 4
		if handleSyscall(c.log, &c.Reg) {
			return fault.NewHalt(pc)
		}

	case decode.IllegalRaised:
		return outcome.Fault
	}
	return nil
}

// Exec runs up to maxCycles instructions (0 means unrun until halt or
// fault), stopping early at a breakpoint (unless ignoreBreakpoints) or a
// Halt. Exec returns nil on a clean Halt, or the fault that stopped it.
func (c *SingleCycle) Exec(maxCycles uint64, ignoreBreakpoints bool) *fault.Fault {
	for i := uint64(0); maxCycles == 0 || i < maxCycles; i++ {
		if i > 0 && !ignoreBreakpoints && c.Has(c.Reg.PC) {
			return nil
		}
		if err := c.Step(); err != nil {
			if err.Kind == fault.Halt {
				return nil
			}
			return err
		}
	}
	return nil
}
