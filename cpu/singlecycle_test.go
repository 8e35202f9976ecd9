package cpu

import (
	"testing"

	"rv64sim/fault"
	"rv64sim/memory"
)

func assembleWord(t *testing.T, opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	t.Helper()
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func TestSingleCycleAddiSequence(t *testing.T) {
	mem := memory.New()
	mem.NewPage(0x1000, memory.PermRead|memory.PermWrite|memory.PermExecute)
	// addi x1, x0, 5 ; addi x2, x1, 7
	mem.Store(0x1000, 4, uint64(assembleWord(t, 0x13, 1, 0, 0, 5)))
	mem.Store(0x1004, 4, uint64(assembleWord(t, 0x13, 2, 0, 1, 7)))

	c := NewSingleCycle(mem)
	c.Reg.PC = 0x1000
	if err := c.Step(); err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if c.Reg.Get(1) != 5 {
		t.Fatalf("x1 = %d, want 5", c.Reg.Get(1))
	}
	if err := c.Step(); err != nil {
		t.Fatalf("step 2: %v", err)
	}
	if c.Reg.Get(2) != 12 {
		t.Fatalf("x2 = %d, want 12", c.Reg.Get(2))
	}
	if c.Reg.PC != 0x1008 {
		t.Errorf("PC = 0x%x, want 0x1008", c.Reg.PC)
	}
}

func TestSingleCycleAddiX0IsNoOp(t *testing.T) {
	mem := memory.New()
	mem.NewPage(0x2000, memory.PermRead|memory.PermWrite|memory.PermExecute)
	// addi x0, x0, 123: a write to x0 commits nothing.
	mem.Store(0x2000, 4, uint64(assembleWord(t, 0x13, 0, 0, 0, 123)))

	c := NewSingleCycle(mem)
	c.Reg.PC = 0x2000
	if err := c.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if c.Reg.Get(0) != 0 {
		t.Errorf("x0 = %d, want 0", c.Reg.Get(0))
	}
}

func TestSingleCycleExecStopsAtBreakpoint(t *testing.T) {
	mem := memory.New()
	mem.NewPage(0x3000, memory.PermRead|memory.PermWrite|memory.PermExecute)
	for i := uint64(0); i < 4; i++ {
		mem.Store(0x3000+i*4, 4, uint64(assembleWord(t, 0x13, 1, 0, 1, 1)))
	}
	c := NewSingleCycle(mem)
	c.Reg.PC = 0x3000
	c.Add(0x3008)
	if err := c.Exec(0, false); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if c.Reg.PC != 0x3008 {
		t.Errorf("PC = 0x%x, want 0x3008 (stopped at breakpoint)", c.Reg.PC)
	}
}

func TestSingleCycleAccessViolationDoesNotCommit(t *testing.T) {
	mem := memory.New()
	mem.NewPage(0x4000, memory.PermRead|memory.PermWrite|memory.PermExecute)
	// sw x1, 0(x2) with x2 pointing into unmapped memory.
	sw := (uint32(0) << 25) | (1 << 20) | (2 << 15) | (0x2 << 12) | (0 << 7) | 0x23
	mem.Store(0x4000, 4, uint64(sw))

	c := NewSingleCycle(mem)
	c.Reg.PC = 0x4000
	c.Reg.Set(1, 0xdeadbeef)
	c.Reg.Set(2, 0x9000) // unmapped
	err := c.Step()
	if err == nil || err.Kind != fault.AccessViolation {
		t.Fatalf("Step = %v, want AccessViolation", err)
	}
	if c.Reg.PC != 0x4000 {
		t.Errorf("PC advanced past a faulting store: 0x%x", c.Reg.PC)
	}
}

func TestSingleCycleEcallExitHalts(t *testing.T) {
	mem := memory.New()
	mem.NewPage(0x5000, memory.PermRead|memory.PermWrite|memory.PermExecute)
	ecall := uint32(0x73)
	mem.Store(0x5000, 4, uint64(ecall))

	c := NewSingleCycle(mem)
	c.Reg.PC = 0x5000
	c.Reg.Set(17, 93) // a7 = exit
	err := c.Step()
	if err == nil || err.Kind != fault.Halt {
		t.Fatalf("Step on exit ecall = %v, want Halt", err)
	}
	if c.Reg.PC != 0x5004 {
		t.Errorf("PC = 0x%x, want 0x5004 (ecall still advances PC before halting)", c.Reg.PC)
	}
}

func TestSingleCycleEcallNonExitContinues(t *testing.T) {
	mem := memory.New()
	mem.NewPage(0x6000, memory.PermRead|memory.PermWrite|memory.PermExecute)
	ecall := uint32(0x73)
	mem.Store(0x6000, 4, uint64(ecall))
	mem.Store(0x6004, 4, uint64(assembleWord(t, 0x13, 1, 0, 0, 1)))

	c := NewSingleCycle(mem)
	c.Reg.PC = 0x6000
	c.Reg.Set(17, 64) // a7 = write, not exit
	if err := c.Step(); err != nil {
		t.Fatalf("Step on non-exit ecall: %v", err)
	}
	if c.Reg.PC != 0x6004 {
		t.Fatalf("PC = 0x%x, want 0x6004", c.Reg.PC)
	}
	if err := c.Step(); err != nil {
		t.Fatalf("Step after ecall: %v", err)
	}
	if c.Reg.Get(1) != 1 {
		t.Errorf("execution did not continue past a non-exit ecall")
	}
}
