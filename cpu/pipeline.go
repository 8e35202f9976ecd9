/*
 * rv64sim - 5-stage pipeline execution engine with branch prediction and
 * RAW-hazard stalling.
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

	"rv64sim/branchpred"
	"rv64sim/decode"
	"rv64sim/fault"
	"rv64sim/memory"
	"rv64sim/register"
	"rv64sim/stats"
)

type ifidLatch struct {
	valid bool
	pc    uint64
	word  uint32
}

type idexLatch struct {
	valid           bool
	pc              uint64
	inst            decode.Instruction
	reg             register.File
	executed        bool
	remaining       int
	outcome         decode.Outcome
	predictedTaken  bool
	predictedTarget uint64
}

type exmemLatch struct {
	valid   bool
	pc      uint64
	inst    decode.Instruction
	reg     register.File
	outcome decode.Outcome
}

type memwbLatch struct {
	valid   bool
	pc      uint64
	inst    decode.Instruction
	reg     register.File
	outcome decode.Outcome
}

// Pipeline is a 5-stage (Fetch, Decode, Execute, Memory, Write-back)
// in-order engine. It stalls on RAW hazards (no forwarding network), and
// resolves control-flow speculatively: jal is always correctly "predicted"
// at decode (its target needs no register read), conditional branches are
// predicted by Predictor, and jalr is always mispredicted-as-not-taken (no
// indirect-branch predictor), so every jalr costs a flush.
type Pipeline struct {
	Reg       register.File
	Mem       *memory.Memory
	Predictor branchpred.Predictor
	Stats     *stats.Counters

	breakpoints
	log *slog.Logger

	fetchPC uint64
	ifid    ifidLatch
	idex    idexLatch
	exmem   exmemLatch
	memwb   memwbLatch
}

// NewPipeline builds a pipeline engine over mem, predicting conditional
// branches with predictor.
func NewPipeline(mem *memory.Memory, predictor branchpred.Predictor, opts ...Option) *Pipeline {
	cfg := newEngineConfig(opts)
	return &Pipeline{
		Mem:         mem,
		Predictor:   predictor,
		Stats:       stats.New(),
		breakpoints: newBreakpoints(),
		log:         cfg.log,
	}
}

// Reset clears every latch and starts fetching at pc.
func (p *Pipeline) Reset(pc uint64) {
	p.Reg.PC = pc
	p.fetchPC = pc
	p.ifid = ifidLatch{}
	p.idex = idexLatch{}
	p.exmem = exmemLatch{}
	p.memwb = memwbLatch{}
}

// predictBranch decides where Fetch should go next given the instruction
// just decoded at pc: jal resolves at decode (its target is immediate-only),
// conditional branches consult Predictor, and everything else (including
// jalr, whose target needs a register read) defaults to pc+4.
func predictBranch(predictor branchpred.Predictor, inst decode.Instruction, pc uint64) (taken bool, target uint64, nextPC uint64) {
	switch v := inst.(type) {
	case decode.UJInst:
		target = pc + uint64(v.Imm)
		return true, target, target
	case decode.SBInst:
		target = v.Target(pc)
		taken = predictor.Predict(pc, target)
		nextPC = pc + 4
		if taken {
			nextPC = target
		}
		return taken, target, nextPC
	default:
		return false, 0, pc + 4
	}
}

// Tick advances every stage by one clock cycle. A nil return means the
// cycle completed normally; fault.Halt means an ecall(exit) committed or an
// illegal instruction reached Write-back, and the caller should stop; any
// other fault means an instruction faulted before committing.
func (p *Pipeline) Tick() *fault.Fault {
	p.Stats.Cycles++

	oldIfid, oldIdex, oldExmem, oldMemwb := p.ifid, p.idex, p.exmem, p.memwb

	// --- Write-back ---
	if oldMemwb.valid {
		if oldMemwb.outcome.Kind == decode.IllegalRaised {
			p.log.Debug("halt", "pc", oldMemwb.pc, "reason", "illegal instruction")
			p.memwb = memwbLatch{}
			return fault.NewHalt(oldMemwb.pc)
		}
		if err := oldMemwb.inst.WriteBack(&oldMemwb.reg, &p.Reg); err != nil {
			p.memwb = memwbLatch{}
			return err
		}
		p.Stats.Retire(oldMemwb.inst.Mnemonic())
		if oldMemwb.outcome.Kind == decode.JumpTaken {
			p.Reg.PC = oldMemwb.outcome.Jump.TargetAddr
		} else {
			p.Reg.PC = oldMemwb.pc + 4
		}
		if oldMemwb.outcome.Kind == decode.SyscallRaised {
			if handleSyscall(p.log, &p.Reg) {
				p.log.Debug("halt", "pc", oldMemwb.pc, "reason", "exit")
				return fault.NewHalt(oldMemwb.pc)
			}
		}
	}

	// --- Memory ---
	var newMemwb memwbLatch
	if oldExmem.valid {
		regCopy := oldExmem.reg
		if oldExmem.outcome.Kind == decode.MemRequest {
			if err := oldExmem.inst.MemFinish(&regCopy, p.Mem, oldExmem.outcome.Mem); err != nil {
				return err
			}
		}
		newMemwb = memwbLatch{valid: true, pc: oldExmem.pc, inst: oldExmem.inst, reg: regCopy, outcome: oldExmem.outcome}
	}

	// --- Execute ---
	var newExmem exmemLatch
	stallEX := false
	squashed := false
	var redirectPC uint64
	if oldIdex.valid {
		if !oldIdex.executed {
			regCopy := oldIdex.reg
			outcome := oldIdex.inst.Execute(&regCopy)
			// An illegal opcode is not acted on here: it rides MEM/WB like any
			// other outcome and only halts the pipeline once it reaches
			// Write-back, so in-flight older instructions still retire.
			oldIdex.reg = regCopy
			oldIdex.outcome = outcome
			oldIdex.executed = true
			oldIdex.remaining = oldIdex.inst.Latency()

			actualTaken := outcome.Kind == decode.JumpTaken
			if _, isBranch := oldIdex.inst.(decode.SBInst); isBranch {
				p.Stats.Branch(actualTaken != oldIdex.predictedTaken)
				p.Predictor.Update(oldIdex.pc, actualTaken)
			}
			if actualTaken != oldIdex.predictedTaken {
				squashed = true
				if actualTaken {
					redirectPC = outcome.Jump.TargetAddr
				} else {
					redirectPC = oldIdex.pc + 4
				}
			}
		}
		oldIdex.remaining--
		if oldIdex.remaining <= 0 {
			newExmem = exmemLatch{valid: true, pc: oldIdex.pc, inst: oldIdex.inst, reg: oldIdex.reg, outcome: oldIdex.outcome}
		} else {
			stallEX = true
		}
	}
	if squashed {
		n := uint64(0)
		if oldIfid.valid {
			n++
		}
		p.log.Debug("squash", "pc", oldIdex.pc, "redirect", redirectPC, "count", n)
		p.Stats.Squash(n)
	}

	// --- Decode ---
	var decoded decode.Instruction
	if oldIfid.valid {
		decoded = decode.Decode(oldIfid.word)
	}
	rawHazard := false
	if oldIfid.valid {
		if oldIdex.valid && oldIdex.inst.DataHazard(decoded) == decode.RAW {
			rawHazard = true
		}
		if oldExmem.valid && oldExmem.inst.DataHazard(decoded) == decode.RAW {
			rawHazard = true
		}
		if oldMemwb.valid && oldMemwb.inst.DataHazard(decoded) == decode.RAW {
			rawHazard = true
		}
	}

	var newIdex idexLatch
	if stallEX {
		newIdex = oldIdex // still occupying Execute for its remaining latency
	}
	keepIfid := false
	switch {
	case squashed:
		// oldIfid and whatever would have entered idex are on the wrong path.
	case rawHazard:
		p.log.Debug("raw stall", "pc", oldIfid.pc)
		p.Stats.Stall(1)
		keepIfid = true
	case stallEX:
		keepIfid = true
	case oldIfid.valid:
		taken, target, nextPC := predictBranch(p.Predictor, decoded, oldIfid.pc)
		p.fetchPC = nextPC
		regSnapshot := p.Reg.Copy()
		regSnapshot.PC = oldIfid.pc // auipc/jal/jalr/ecall read reg.PC as their own address
		newIdex = idexLatch{valid: true, pc: oldIfid.pc, inst: decoded, reg: regSnapshot,
			predictedTaken: taken, predictedTarget: target}
	}

	// --- Fetch ---
	var newIfid ifidLatch
	if keepIfid {
		newIfid = oldIfid
	} else {
		if squashed {
			p.fetchPC = redirectPC
		}
		word, ferr := p.Mem.Fetch(p.fetchPC)
		if ferr != nil {
			return ferr
		}
		newIfid = ifidLatch{valid: true, pc: p.fetchPC, word: word}
		p.fetchPC += 4
	}

	p.ifid, p.idex, p.exmem, p.memwb = newIfid, newIdex, newExmem, newMemwb
	return nil
}

// Exec runs up to maxCycles ticks (0 means until halt or fault), stopping
// early when a commit moves the architectural PC (the address of the next
// instruction to commit) onto a breakpoint.
func (p *Pipeline) Exec(maxCycles uint64, ignoreBreakpoints bool) *fault.Fault {
	lastPC := p.Reg.PC
	for i := uint64(0); maxCycles == 0 || i < maxCycles; i++ {
		if err := p.Tick(); err != nil {
			if err.Kind == fault.Halt {
				return nil
			}
			return err
		}
		if !ignoreBreakpoints && p.Reg.PC != lastPC && p.Has(p.Reg.PC) {
			return nil
		}
		lastPC = p.Reg.PC
	}
	return nil
}
