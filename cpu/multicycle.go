/*
 * rv64sim - Multi-cycle execution engine: per-instruction cycle accounting,
 * mnemonic frequency statistics, and opportunistic div/rem fusion.
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
	"rv64sim/stats"
)

// bookkeepingCycles is the fixed per-instruction overhead the multi-cycle
// engine adds on top of an instruction's own Latency(), modeling the
// decode/write-back cycles the single-cycle engine folds into cycle zero.
const bookkeepingCycles = 2

// MultiCycle retires one instruction per Step like SingleCycle, but spends
// Latency()+bookkeepingCycles cycles doing it (plus, for a load or store, the
// memory's access latency, one cycle more for a read), and opportunistically fuses a
// (div,rem) or (divu,remu) pair sharing the same operands into a single
// division latency charge, since real divider hardware produces both the
// quotient and the remainder from one operation.
type MultiCycle struct {
	Reg   register.File
	Mem   *memory.Memory
	Stats *stats.Counters

	breakpoints
	log *slog.Logger

	fusedDiscount bool
}

func NewMultiCycle(mem *memory.Memory, opts ...Option) *MultiCycle {
	cfg := newEngineConfig(opts)
	return &MultiCycle{Mem: mem, Stats: stats.New(), breakpoints: newBreakpoints(), log: cfg.log}
}

// Step retires one instruction, charging its cycle cost to Stats.
func (c *MultiCycle) Step() *fault.Fault {
	word, ferr := c.Mem.Fetch(c.Reg.PC)
	if ferr != nil {
		return ferr
	}
	inst := decode.Decode(word)
	outcome := inst.Execute(&c.Reg)

	cycles := c.chargeCycles(inst)
	c.Stats.Cycles += uint64(cycles)

	if _, ok := inst.(decode.SBInst); ok {
		c.Stats.Branch(false) // no predictor at this engine: never mispredicted
	}

	switch outcome.Kind {
	case decode.Normal:
		c.Stats.Retire(inst.Mnemonic())
		c.Reg.PC += 4

	case decode.MemRequest:
		if err := inst.MemFinish(&c.Reg, c.Mem, outcome.Mem); err != nil {
			return err
		}
		// The access costs the memory's latency; a read costs one cycle
		// more than a write.
		memCycles := c.Mem.Latency(outcome.Mem.TargetAddr, outcome.Mem.Width, outcome.Mem.Dir)
		if outcome.Mem.Dir == fault.Read {
			memCycles++
		}
		c.Stats.Cycles += uint64(memCycles)
		c.Stats.Retire(inst.Mnemonic())
		c.Reg.PC += 4

	case decode.JumpTaken:
		c.Stats.Retire(inst.Mnemonic())
		c.Reg.PC = outcome.Jump.TargetAddr

	case decode.SyscallRaised:
		pc := c.Reg.PC
		c.Reg.PC += 4
		c.Stats.Retire(inst.Mnemonic())
		if handleSyscall(c.log, &c.Reg) {
			return fault.NewHalt(pc)
		}

	case decode.IllegalRaised:
		return outcome.Fault
	}
	return nil
}

// chargeCycles computes this instruction's cycle cost, discounting it to a
// single cycle if it is the second half of a div/rem pair whose first half
// already paid the division latency.
func (c *MultiCycle) chargeCycles(inst decode.Instruction) int {
	if c.fusedDiscount {
		c.fusedDiscount = false
		return 1 + bookkeepingCycles
	}
	cycles := inst.Latency() + bookkeepingCycles
	if nextWord, ferr := c.Mem.Fetch(c.Reg.PC + 4); ferr == nil {
		next := decode.Decode(nextWord)
		if inst.DivRemOK(next) {
			c.fusedDiscount = true
		}
	}
	return cycles
}

// Exec runs up to maxCycles instructions (0 means until halt or fault).
func (c *MultiCycle) Exec(maxCycles uint64, ignoreBreakpoints bool) *fault.Fault {
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
