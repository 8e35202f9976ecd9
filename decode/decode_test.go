package decode

import (
	"testing"

	"rv64sim/register"
)

// encRType assembles an R-type word: funct7|rs2|rs1|funct3|rd|opcode.
func encRType(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encIType(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encSType(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	lo := (u >> 0) & 0x1f
	hi := (u >> 5) & 0x7f
	return hi<<25 | rs2<<20 | rs1<<15 | funct3<<12 | lo<<7 | opcode
}

func encUType(opcode, rd uint32, imm20 uint32) uint32 {
	return imm20<<12 | rd<<7 | opcode
}

func TestDecodeAddi(t *testing.T) {
	word := encIType(OpIArith, 5, 0x0, 6, -1) // addi x5, x6, -1
	inst := Decode(word)
	ii, ok := inst.(IInst)
	if !ok {
		t.Fatalf("Decode = %T, want IInst", inst)
	}
	if ii.Mnemonic() != "addi" || ii.Imm != -1 || ii.Rd != 5 || ii.Rs1 != 6 {
		t.Errorf("addi decode = %+v", ii)
	}
	var reg register.File
	reg.Set(6, 10)
	inst.Execute(&reg)
	if reg.Get(5) != 9 {
		t.Errorf("addi x5, x6, -1 with x6=10: x5 = %d, want 9", reg.Get(5))
	}
}

func TestDecodeAddImmSignExtension(t *testing.T) {
	// addi x1, x0, -2048: verify the 12-bit immediate sign-extends correctly
	// at the boundary value -2048.
	word := encIType(OpIArith, 1, 0x0, 0, -2048)
	inst := Decode(word)
	var reg register.File
	inst.Execute(&reg)
	if reg.GetSigned(1) != -2048 {
		t.Errorf("addi x1, x0, -2048: x1 = %d, want -2048", reg.GetSigned(1))
	}
}

func TestDecodeLuiThenAddi(t *testing.T) {
	// lui x1, 0x12345 ; addi x1, x1, 0x678 should yield 0x12345678 ignoring
	// the well-known off-by-one adjustment real assemblers make (this
	// decoder operates on raw encoded immediates, not assembler pseudo-ops).
	lui := Decode(encUType(OpLui, 1, 0x12345))
	var reg register.File
	lui.Execute(&reg)
	if reg.Get(1) != 0x12345000 {
		t.Errorf("lui x1, 0x12345: x1 = 0x%x, want 0x12345000", reg.Get(1))
	}
	addi := Decode(encIType(OpIArith, 1, 0x0, 1, 0x678))
	addi.Execute(&reg)
	if reg.Get(1) != 0x12345678 {
		t.Errorf("after addi: x1 = 0x%x, want 0x12345678", reg.Get(1))
	}
}

func TestDecodeRTypeAdd(t *testing.T) {
	word := encRType(OpRArith, 3, 0x0, 1, 2, 0x00) // add x3, x1, x2
	inst := Decode(word)
	var reg register.File
	reg.Set(1, 40)
	reg.Set(2, 2)
	inst.Execute(&reg)
	if reg.Get(3) != 42 {
		t.Errorf("add x3, x1, x2 = %d, want 42", reg.Get(3))
	}
}

func TestDecodeRTypeSub(t *testing.T) {
	word := encRType(OpRArith, 3, 0x0, 1, 2, 0x20) // sub x3, x1, x2
	inst := Decode(word)
	var reg register.File
	reg.Set(1, 10)
	reg.Set(2, 3)
	inst.Execute(&reg)
	if reg.Get(3) != 7 {
		t.Errorf("sub = %d, want 7", reg.Get(3))
	}
}

func TestDecodeMulhSigned(t *testing.T) {
	word := encRType(OpRArith, 3, 0x1, 1, 2, 0x01) // mulh x3, x1, x2
	inst := Decode(word)
	var reg register.File
	reg.Set(1, ^uint64(0))
	reg.Set(2, ^uint64(0))
	inst.Execute(&reg)
	if reg.Get(3) != 0 {
		t.Errorf("mulh(-1,-1) high word = 0x%x, want 0", reg.Get(3))
	}
}

func TestDecodeDivByZero(t *testing.T) {
	word := encRType(OpRArith, 3, 0x4, 1, 2, 0x01) // div x3, x1, x2
	inst := Decode(word)
	var reg register.File
	reg.Set(1, 10)
	reg.Set(2, 0)
	inst.Execute(&reg)
	if reg.GetSigned(3) != -1 {
		t.Errorf("div by zero = %d, want -1", reg.GetSigned(3))
	}
}

func TestDecodeRemByZero(t *testing.T) {
	word := encRType(OpRArith, 3, 0x6, 1, 2, 0x01) // rem x3, x1, x2
	inst := Decode(word)
	var reg register.File
	reg.Set(1, 10)
	reg.Set(2, 0)
	inst.Execute(&reg)
	if reg.GetSigned(3) != 10 {
		t.Errorf("rem by zero = %d, want dividend 10", reg.GetSigned(3))
	}
}

func TestDecodeDivOverflow(t *testing.T) {
	word := encRType(OpRArith, 3, 0x4, 1, 2, 0x01) // div x3, x1, x2
	inst := Decode(word)
	var reg register.File
	reg.Set(1, 1<<63)
	reg.Set(2, ^uint64(0))
	inst.Execute(&reg)
	if reg.Get(3) != 1<<63 {
		t.Errorf("MinInt/-1 = 0x%x, want 0x%x", reg.Get(3), uint64(1)<<63)
	}
}

func TestDecodeShiftImmReparse64(t *testing.T) {
	// srai x1, x2, 32: the funct7 field reads 0x21 because its bit 0 is
	// shamt bit 5; the decoder must mask it off, leaving 0x20 (srai).
	word := (uint32(0x21) << 25) | (2 << 15) | (0x5 << 12) | (1 << 7) | OpIArith
	inst := Decode(word)
	ii, ok := inst.(IInst)
	if !ok {
		t.Fatalf("Decode = %T, want IInst", inst)
	}
	if ii.name != "srai" {
		t.Errorf("funct7=0x21 decoded as %q, want srai (bit0 masked off)", ii.name)
	}
}

func TestDecodeShiftImmShamt6Bit(t *testing.T) {
	// slli x1, x2, 33: needs the 6th shamt bit, which lives in the funct7
	// field's bit 0 before masking.
	shamt := uint32(33)
	word := (shamt << 20) | (2 << 15) | (0x1 << 12) | (1 << 7) | OpIArith
	inst := Decode(word)
	var reg register.File
	reg.Set(2, 1)
	inst.Execute(&reg)
	if reg.Get(1) != 1<<33 {
		t.Errorf("slli x1, x2, 33 = 0x%x, want 0x%x", reg.Get(1), uint64(1)<<33)
	}
}

func TestDecodeLoadRequestsMemory(t *testing.T) {
	word := encIType(OpLoad, 1, 0x2, 2, 4) // lw x1, 4(x2)
	inst := Decode(word)
	var reg register.File
	reg.Set(2, 0x1000)
	out := inst.Execute(&reg)
	if out.Kind != MemRequest {
		t.Fatalf("lw Execute kind = %v, want MemRequest", out.Kind)
	}
	if out.Mem.TargetAddr != 0x1004 || out.Mem.Width != 4 || !out.Mem.SignExtend {
		t.Errorf("lw request = %+v", out.Mem)
	}
}

func TestDecodeStoreRequestsMemory(t *testing.T) {
	word := encSType(OpStore, 0x3, 2, 3, 8) // sd x3, 8(x2)
	inst := Decode(word)
	var reg register.File
	reg.Set(2, 0x2000)
	out := inst.Execute(&reg)
	if out.Kind != MemRequest {
		t.Fatalf("sd Execute kind = %v, want MemRequest", out.Kind)
	}
	if out.Mem.TargetAddr != 0x2008 || out.Mem.Width != 8 {
		t.Errorf("sd request = %+v", out.Mem)
	}
}

func TestDecodeBranchTakenAndNotTaken(t *testing.T) {
	word := (uint32(0x0) << 25) | (2 << 20) | (1 << 15) | (0x0 << 12) | (0x8 << 7) | OpBranch // beq x1, x2, 8
	inst := Decode(word)
	sb, ok := inst.(SBInst)
	if !ok {
		t.Fatalf("Decode = %T, want SBInst", inst)
	}
	var reg register.File
	reg.PC = 0x1000
	reg.Set(1, 5)
	reg.Set(2, 5)
	if !sb.Taken(&reg) {
		t.Errorf("beq with equal operands should be taken")
	}
	reg.Set(2, 6)
	if sb.Taken(&reg) {
		t.Errorf("beq with unequal operands should not be taken")
	}
}

func TestDataHazardRAW(t *testing.T) {
	// add x1, x2, x3 followed by add x4, x1, x5: RAW on x1.
	a := Decode(encRType(OpRArith, 1, 0x0, 2, 3, 0x00))
	b := Decode(encRType(OpRArith, 4, 0x0, 1, 5, 0x00))
	if h := a.DataHazard(b); h != RAW {
		t.Errorf("DataHazard = %v, want RAW", h)
	}
}

func TestDataHazardWAR(t *testing.T) {
	// add x1, x2, x3 followed by add x2, x4, x5: WAR on x2.
	a := Decode(encRType(OpRArith, 1, 0x0, 2, 3, 0x00))
	b := Decode(encRType(OpRArith, 2, 0x0, 4, 5, 0x00))
	if h := a.DataHazard(b); h != WAR {
		t.Errorf("DataHazard = %v, want WAR", h)
	}
}

func TestDataHazardWAW(t *testing.T) {
	a := Decode(encRType(OpRArith, 1, 0x0, 2, 3, 0x00))
	b := Decode(encRType(OpRArith, 1, 0x0, 4, 5, 0x00))
	if h := a.DataHazard(b); h != WAW {
		t.Errorf("DataHazard = %v, want WAW", h)
	}
}

func TestDataHazardNoneThroughX0(t *testing.T) {
	// addi x0, x2, 1 (a write to x0 is a write to nothing) followed by a
	// read of x0 must not register as a hazard.
	a := Decode(encIType(OpIArith, 0, 0x0, 2, 1))
	b := Decode(encRType(OpRArith, 4, 0x0, 0, 5, 0x00))
	if h := a.DataHazard(b); h != NoHazard {
		t.Errorf("DataHazard through x0 = %v, want NoHazard", h)
	}
}

func TestDivRemOKFusesMatchingOperands(t *testing.T) {
	div := Decode(encRType(OpRArith, 1, 0x4, 2, 3, 0x01))
	rem := Decode(encRType(OpRArith, 4, 0x6, 2, 3, 0x01))
	if !div.DivRemOK(rem) {
		t.Errorf("div/rem with matching rs1,rs2 should fuse")
	}
}

func TestDivRemOKRejectsMismatchedOperands(t *testing.T) {
	div := Decode(encRType(OpRArith, 1, 0x4, 2, 3, 0x01))
	rem := Decode(encRType(OpRArith, 4, 0x6, 2, 6, 0x01)) // different rs2
	if div.DivRemOK(rem) {
		t.Errorf("div/rem with mismatched operands should not fuse")
	}
}

func TestDivRemOKRejectsSharedDestination(t *testing.T) {
	// div x3,x1,x2; rem x3,x1,x2 — a single destination can't hold both
	// the quotient and the remainder.
	div := Decode(encRType(OpRArith, 3, 0x4, 1, 2, 0x01))
	rem := Decode(encRType(OpRArith, 3, 0x6, 1, 2, 0x01))
	if div.DivRemOK(rem) {
		t.Errorf("div/rem sharing a destination register should not fuse")
	}
}

func TestDivRemOKRejectsDestinationOverlappingSource(t *testing.T) {
	// div x1,x1,x2; rem x4,x1,x2 — div's destination aliases its own rs1.
	div := Decode(encRType(OpRArith, 1, 0x4, 1, 2, 0x01))
	rem := Decode(encRType(OpRArith, 4, 0x6, 1, 2, 0x01))
	if div.DivRemOK(rem) {
		t.Errorf("div/rem where a destination overlaps a source should not fuse")
	}
}

func TestDecodeUndefinedOpcodeIsIllegal(t *testing.T) {
	inst := Decode(0x0000007F) // opcode field 0x7F names no instruction family
	if _, ok := inst.(FaultIllegal); !ok {
		t.Errorf("Decode(undefined opcode) = %T, want FaultIllegal", inst)
	}
}

func TestFaultIllegalExecuteReturnsIllegal(t *testing.T) {
	inst := FaultIllegal{}
	var reg register.File
	reg.PC = 0x400
	out := inst.Execute(&reg)
	if out.Kind != IllegalRaised || out.Fault == nil {
		t.Fatalf("FaultIllegal.Execute = %+v, want IllegalRaised with a fault", out)
	}
	if out.Fault.PC != 0x400 {
		t.Errorf("fault PC = 0x%x, want 0x400", out.Fault.PC)
	}
}

func TestJalrClearsLowBitAndLinks(t *testing.T) {
	word := encIType(OpJalr, 1, 0x0, 2, 5) // jalr x1, x2, 5
	inst := Decode(word)
	var reg register.File
	reg.PC = 0x100
	reg.Set(2, 0x2003) // +5 = 0x2008, low bit already clear
	out := inst.Execute(&reg)
	if out.Kind != JumpTaken || out.Jump.TargetAddr != 0x2008 {
		t.Errorf("jalr target = %+v, want 0x2008", out.Jump)
	}
	if reg.Get(1) != 0x104 {
		t.Errorf("jalr link = 0x%x, want 0x104", reg.Get(1))
	}
}

func TestJalLinksAndTargets(t *testing.T) {
	// jal x1, 0x20
	word := (uint32(0) << 31) | (0x10 << 21) | (0 << 20) | (0 << 12) | (1 << 7) | OpJal
	inst := Decode(word)
	var reg register.File
	reg.PC = 0x1000
	out := inst.Execute(&reg)
	if out.Kind != JumpTaken {
		t.Fatalf("jal kind = %v, want JumpTaken", out.Kind)
	}
	if reg.Get(1) != 0x1004 {
		t.Errorf("jal link = 0x%x, want 0x1004", reg.Get(1))
	}
	if out.Jump.TargetAddr != 0x1020 {
		t.Errorf("jal target = 0x%x, want 0x1020", out.Jump.TargetAddr)
	}
}

func TestEcallRaisesSyscall(t *testing.T) {
	word := encIType(OpEcall, 0, 0x0, 0, 0)
	inst := Decode(word)
	var reg register.File
	reg.PC = 0x300
	out := inst.Execute(&reg)
	if out.Kind != SyscallRaised || out.Fault.PC != 0x300 {
		t.Errorf("ecall outcome = %+v", out)
	}
}
